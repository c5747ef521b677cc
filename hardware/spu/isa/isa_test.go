// This file is part of GopherCell.
//
// GopherCell is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GopherCell is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GopherCell.  If not, see <https://www.gnu.org/licenses/>.

package isa_test

import (
	"strings"
	"testing"

	"github.com/jetsetilly/gophercell/hardware/memory/mainmem"
	"github.com/jetsetilly/gophercell/hardware/memory/reservation"
	"github.com/jetsetilly/gophercell/hardware/spu"
	"github.com/jetsetilly/gophercell/hardware/spu/channels"
	"github.com/jetsetilly/gophercell/hardware/spu/faults"
	"github.com/jetsetilly/gophercell/hardware/spu/isa"
	"github.com/jetsetilly/gophercell/hardware/spu/mfc"
	"github.com/jetsetilly/gophercell/test"
)

func newCore(t *testing.T) *spu.Core {
	t.Helper()
	sys := &mfc.System{
		Memory:       mainmem.NewMemory(),
		Reservations: reservation.NewTable(),
	}
	return spu.NewCore(0, sys, &channels.ManualClock{})
}

func rr(rt, ra, rb int) uint32 {
	return uint32(rb)<<14 | uint32(ra)<<7 | uint32(rt)
}

func rrr(rt, ra, rb, rc int) uint32 {
	return uint32(rt)<<21 | uint32(rb)<<14 | uint32(ra)<<7 | uint32(rc)
}

func ri7(rt, ra int, i int32) uint32 {
	return uint32(i&0x7f)<<14 | uint32(ra)<<7 | uint32(rt)
}

func ri10(rt, ra int, i int32) uint32 {
	return uint32(i&0x3ff)<<14 | uint32(ra)<<7 | uint32(rt)
}

func ri16(rt int, i int32) uint32 {
	return uint32(i&0xffff)<<7 | uint32(rt)
}

func encode(t *testing.T, mnemonic string, operands uint32) uint32 {
	t.Helper()
	defn, ok := isa.ByMnemonic(mnemonic)
	test.DemandSuccess(t, ok, mnemonic)
	return defn.Encode(operands)
}

// execute a single instruction at the core's PC and retire it
func execute(t *testing.T, c *spu.Core, mnemonic string, operands uint32) spu.Status {
	t.Helper()
	word := encode(t, mnemonic, operands)
	defn := isa.Lookup(word)
	test.DemandSuccess(t, defn != nil, mnemonic)
	test.DemandEquality(t, defn.Mnemonic, mnemonic)
	defn.Execute(c, isa.Fields(word))
	_, st := c.Retire(c.PC())
	return st
}

func TestTable(t *testing.T) {
	for _, defn := range isa.Definitions() {
		test.ExpectEquality(t, isa.Lookup(defn.Encode(0)), defn, defn.Mnemonic)
		test.ExpectEquality(t, isa.Lookup(defn.Encode(0xffffffff)), defn, defn.Mnemonic)

		d, ok := isa.ByMnemonic(defn.Mnemonic)
		test.ExpectSuccess(t, ok, defn.Mnemonic)
		test.ExpectEquality(t, d, defn, defn.Mnemonic)
	}

	// not every opcode is a valid instruction
	test.ExpectEquality(t, isa.Lookup(0xafe00000), nil)

	_, ok := isa.ByMnemonic("nonsense")
	test.ExpectFailure(t, ok)
}

func TestFields(t *testing.T) {
	f := isa.Fields(ri10(3, 4, -1))
	test.ExpectEquality(t, f.RT(), 3)
	test.ExpectEquality(t, f.RA(), 4)
	test.ExpectEquality(t, f.I10(), -1)

	f = isa.Fields(ri7(0, 0, -64))
	test.ExpectEquality(t, f.I7(), -64)

	f = isa.Fields(ri16(0, -2))
	test.ExpectEquality(t, f.S16(), -2)
	test.ExpectEquality(t, f.I16(), 0xfffe)

	f = isa.Fields(rrr(10, 20, 30, 40))
	test.ExpectEquality(t, f.RT4(), 10)
	test.ExpectEquality(t, f.RA(), 20)
	test.ExpectEquality(t, f.RB(), 30)
	test.ExpectEquality(t, f.RC(), 40)
}

func TestIntegerArithmetic(t *testing.T) {
	c := newCore(t)

	execute(t, c, "il", ri16(1, 5))
	for i := range 4 {
		test.ExpectEquality(t, c.GPR[1].U32(i), 5)
	}

	execute(t, c, "ai", ri10(2, 1, -3))
	test.ExpectEquality(t, c.GPR[2].U32(3), 2)

	execute(t, c, "a", rr(3, 1, 2))
	test.ExpectEquality(t, c.GPR[3].U32(0), 7)

	// subtract from. rt = rb - ra
	execute(t, c, "sf", rr(4, 2, 1))
	test.ExpectEquality(t, c.GPR[4].U32(1), 3)

	// immediate load of an upper halfword followed by or-immediate of the
	// lower halfword is how 32 bit constants are formed
	execute(t, c, "ilhu", ri16(5, 0x1234))
	execute(t, c, "iohl", ri16(5, 0x5678))
	test.ExpectEquality(t, c.GPR[5].U32(0), 0x12345678)
	test.ExpectEquality(t, c.GPR[5].U32(2), 0x12345678)

	// carry generate
	c.GPR[6].SplatU32(0xffffffff)
	c.GPR[7].SplatU32(1)
	execute(t, c, "cg", rr(8, 6, 7))
	test.ExpectEquality(t, c.GPR[8].U32(0), 1)
	execute(t, c, "a", rr(8, 6, 7))
	test.ExpectEquality(t, c.GPR[8].U32(0), 0)

	test.ExpectEquality(t, c.PC(), 8*4)
}

func TestCompare(t *testing.T) {
	c := newCore(t)

	c.GPR[1].SplatU32(0xfffffffe)
	execute(t, c, "cgti", ri10(2, 1, 0))
	test.ExpectEquality(t, c.GPR[2].U32(0), 0)
	execute(t, c, "clgti", ri10(2, 1, 0))
	test.ExpectEquality(t, c.GPR[2].U32(0), 0xffffffff)
	execute(t, c, "ceqi", ri10(2, 1, -2))
	test.ExpectEquality(t, c.GPR[2].U32(0), 0xffffffff)
}

func TestShift(t *testing.T) {
	c := newCore(t)

	c.GPR[1].SplatU32(0x80000001)
	execute(t, c, "shli", ri7(2, 1, 1))
	test.ExpectEquality(t, c.GPR[2].U32(0), 2)

	execute(t, c, "roti", ri7(2, 1, 1))
	test.ExpectEquality(t, c.GPR[2].U32(0), 3)

	// the rotate-and-mask instructions take a negative shift count
	execute(t, c, "rotmi", ri7(2, 1, -1))
	test.ExpectEquality(t, c.GPR[2].U32(0), 0x40000000)
	execute(t, c, "rotmai", ri7(2, 1, -1))
	test.ExpectEquality(t, c.GPR[2].U32(0), 0xc0000000)

	// quadword byte shift moves the preferred slot out of the register
	c.GPR[3] = [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	execute(t, c, "shlqbyi", ri7(4, 3, 4))
	test.ExpectEquality(t, c.GPR[4].U32(0), 0x05060708)
	test.ExpectEquality(t, c.GPR[4].U32(3), 0)
	execute(t, c, "rotqbyi", ri7(4, 3, 4))
	test.ExpectEquality(t, c.GPR[4].U32(3), 0x01020304)
}

func TestLoadStore(t *testing.T) {
	c := newCore(t)

	c.GPR[1].SplatU32(0x100)
	c.GPR[2] = [16]byte{0xde, 0xad, 0xbe, 0xef}
	execute(t, c, "stqd", ri10(2, 1, 1))
	test.ExpectEquality(t, c.LocalStore().Read32(0x110), 0xdeadbeef)

	// addresses are truncated to a quadword boundary
	c.GPR[3].SplatU32(0x11c)
	execute(t, c, "lqd", ri10(4, 3, 0))
	test.ExpectEquality(t, c.GPR[4], c.GPR[2])

	// the address of a relative load is calculated from the PC of the
	// instruction
	c.SetPC(0x100)
	execute(t, c, "lqr", ri16(5, 4))
	test.ExpectEquality(t, c.GPR[5], c.GPR[2])
}

func TestInsertion(t *testing.T) {
	c := newCore(t)

	// generate the control pattern for a word at offset 4 and use it to insert
	// the preferred slot of register 1 into register 2
	c.GPR[1].SplatU32(0x11111111)
	c.GPR[2].SplatU32(0x22222222)
	execute(t, c, "cwd", ri7(3, 0, 4))
	execute(t, c, "shufb", rrr(4, 1, 2, 3))

	test.ExpectEquality(t, c.GPR[4].U32(0), 0x22222222)
	test.ExpectEquality(t, c.GPR[4].U32(1), 0x11111111)
	test.ExpectEquality(t, c.GPR[4].U32(2), 0x22222222)
}

func TestBranch(t *testing.T) {
	c := newCore(t)
	c.SetPC(0x200)

	execute(t, c, "brsl", ri16(0, 0x10))
	test.ExpectEquality(t, c.PC(), 0x240)
	test.ExpectEquality(t, c.GPR[0].U32(0), 0x204)

	// conditional branch not taken
	c.GPR[1].SplatU32(1)
	execute(t, c, "brz", ri16(1, 0x10))
	test.ExpectEquality(t, c.PC(), 0x244)

	// return through the link register
	execute(t, c, "bi", rr(0, 0, 0))
	test.ExpectEquality(t, c.PC(), 0x204)
}

func TestInterruptEnable(t *testing.T) {
	c := newCore(t)
	c.GPR[1].SplatU32(0x80)

	// E bit
	st := execute(t, c, "bi", 1<<18|rr(0, 1, 0))
	test.ExpectEquality(t, st, spu.InterruptToggle)
	test.ExpectSuccess(t, c.Interrupts())

	// D bit
	st = execute(t, c, "bi", 1<<19|rr(0, 1, 0))
	test.ExpectEquality(t, st, spu.InterruptToggle)
	test.ExpectFailure(t, c.Interrupts())
}

func TestStop(t *testing.T) {
	c := newCore(t)
	st := execute(t, c, "stop", 0x2000)
	test.ExpectEquality(t, st, spu.Halt)
	test.ExpectEquality(t, c.PC(), 4)
}

func TestHalt(t *testing.T) {
	c := newCore(t)
	c.GPR[1].SplatU32(7)

	// not halting
	st := execute(t, c, "heqi", ri10(0, 1, 6))
	test.ExpectEquality(t, st, 0)

	st = execute(t, c, "heqi", ri10(0, 1, 7))
	test.ExpectEquality(t, st, spu.Fault)
	test.ExpectEquality(t, c.PC(), 4)

	e, ok := c.Faults().Last()
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, e.Category, faults.HaltInstruction)
}

func TestChannelInstructions(t *testing.T) {
	c := newCore(t)

	// write to the outbound mailbox and count the inbound mailbox
	c.GPR[1].SplatU32(0x55)
	execute(t, c, "wrch", rr(1, int(channels.WrOutMbox), 0))
	v, ok := c.TryReadOutMbox()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, v, 0x55)

	test.DemandSuccess(t, c.TryWriteInMbox(0x66))
	execute(t, c, "rchcnt", rr(2, int(channels.RdInMbox), 0))
	test.ExpectEquality(t, c.GPR[2].U32(0), 1)
	execute(t, c, "rdch", rr(2, int(channels.RdInMbox), 0))
	test.ExpectEquality(t, c.GPR[2].U32(0), 0x66)

	// reading a write-only channel is a fault
	st := execute(t, c, "rdch", rr(2, int(channels.WrOutMbox), 0))
	test.ExpectEquality(t, st, spu.Fault)
}

func TestFloat(t *testing.T) {
	c := newCore(t)
	for i := range 4 {
		c.GPR[1].SetF32(i, 1.5)
		c.GPR[2].SetF32(i, 2.0)
		c.GPR[3].SetF32(i, 0.5)
	}
	execute(t, c, "fma", rrr(4, 1, 2, 3))
	test.ExpectEquality(t, c.GPR[4].F32(2), 3.5)

	execute(t, c, "fcgt", rr(5, 2, 1))
	test.ExpectEquality(t, c.GPR[5].U32(0), 0xffffffff)

	// integer to float conversion with a scale of zero
	c.GPR[6].SplatU32(3)
	execute(t, c, "csflt", 155<<14|rr(7, 6, 0))
	test.ExpectEquality(t, c.GPR[7].F32(0), 3.0)
	execute(t, c, "cflts", 173<<14|rr(8, 7, 0))
	test.ExpectEquality(t, c.GPR[8].U32(0), 3)
}

func TestDisassemble(t *testing.T) {
	s := isa.Disassemble(encode(t, "ai", ri10(3, 4, -1)), 0)
	test.ExpectEquality(t, strings.Fields(s)[0], "ai")
	test.ExpectEquality(t, strings.Fields(s)[1], "$3,$4,-1")

	s = isa.Disassemble(encode(t, "br", ri16(0, 4)), 0x100)
	test.ExpectEquality(t, strings.Fields(s)[1], "0x110")

	s = isa.Disassemble(encode(t, "lqd", ri10(5, 1, 2)), 0)
	test.ExpectEquality(t, strings.Fields(s)[1], "$5,32($1)")

	s = isa.Disassemble(0xafe00000, 0)
	test.ExpectEquality(t, strings.HasPrefix(s, ".long"), true)
}
