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

package isa

import (
	"github.com/jetsetilly/gophercell/hardware/spu"
	"github.com/jetsetilly/gophercell/hardware/spu/localstore"
	"github.com/jetsetilly/gophercell/hardware/spu/registers"
)

// addresses used by the load and store instructions are quadword aligned and
// wrap at the end of the local store
func quadAddr(addr uint32) uint32 {
	return addr & localstore.Mask &^ 15
}

// LoadStoreAddress returns the local store address accessed by a load or store
// instruction at the PC. Returns false if the instruction is not a load or
// store.
func LoadStoreAddress(c *spu.Core, defn *Definition, f Fields, pc uint32) (uint32, bool) {
	switch defn.Mnemonic {
	case "lqd", "stqd":
		return quadAddr(c.GPR[f.RA()].U32(0) + uint32(f.I10()<<4)), true
	case "lqx", "stqx":
		return quadAddr(c.GPR[f.RA()].U32(0) + c.GPR[f.RB()].U32(0)), true
	case "lqa", "stqa":
		return quadAddr(uint32(f.S16() << 2)), true
	case "lqr", "stqr":
		return quadAddr(pc + uint32(f.S16()<<2)), true
	}
	return 0, false
}

func load(c *spu.Core, f Fields, addr uint32) {
	c.GPR[f.RT()] = registers.Reg(c.LocalStore().ReadQuad(quadAddr(addr)))
}

func store(c *spu.Core, f Fields, addr uint32) {
	c.LocalStore().WriteQuad(quadAddr(addr), c.GPR[f.RT()])
}

func opLQD(c *spu.Core, f Fields) {
	load(c, f, c.GPR[f.RA()].U32(0)+uint32(f.I10()<<4))
}

func opLQX(c *spu.Core, f Fields) {
	load(c, f, c.GPR[f.RA()].U32(0)+c.GPR[f.RB()].U32(0))
}

func opLQA(c *spu.Core, f Fields) {
	load(c, f, uint32(f.S16()<<2))
}

func opLQR(c *spu.Core, f Fields) {
	load(c, f, c.PC()+uint32(f.S16()<<2))
}

func opSTQD(c *spu.Core, f Fields) {
	store(c, f, c.GPR[f.RA()].U32(0)+uint32(f.I10()<<4))
}

func opSTQX(c *spu.Core, f Fields) {
	store(c, f, c.GPR[f.RA()].U32(0)+c.GPR[f.RB()].U32(0))
}

func opSTQA(c *spu.Core, f Fields) {
	store(c, f, uint32(f.S16()<<2))
}

func opSTQR(c *spu.Core, f Fields) {
	store(c, f, c.PC()+uint32(f.S16()<<2))
}

// immediate loads

func opIL(c *spu.Core, f Fields) {
	c.GPR[f.RT()].SplatU32(uint32(f.S16()))
}

func opILH(c *spu.Core, f Fields) {
	c.GPR[f.RT()].SplatU16(uint16(f.I16()))
}

func opILHU(c *spu.Core, f Fields) {
	c.GPR[f.RT()].SplatU32(f.I16() << 16)
}

func opILA(c *spu.Core, f Fields) {
	c.GPR[f.RT()].SplatU32(f.I18())
}

func opIOHL(c *spu.Core, f Fields) {
	t := &c.GPR[f.RT()]
	for i := range 4 {
		t.SetU32(i, t.U32(i)|f.I16())
	}
}

// generate controls for insertion. the result is a shuffle pattern that
// inserts the preferred slot of a register at the addressed position

var insertionBase = registers.Reg{
	0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17,
	0x18, 0x19, 0x1a, 0x1b, 0x1c, 0x1d, 0x1e, 0x1f,
}

func insertion(addr uint32, size int) registers.Reg {
	r := insertionBase
	addr &= 0x0f &^ uint32(size-1)

	// the preferred slot for elements smaller than a word is at the right
	// hand end of the word
	first := 0
	if size < 4 {
		first = 4 - size
	}
	for i := range size {
		r[addr+uint32(i)] = uint8(first + i)
	}
	return r
}

func opCBD(c *spu.Core, f Fields) {
	c.GPR[f.RT()] = insertion(c.GPR[f.RA()].U32(0)+uint32(f.I7()), 1)
}

func opCHD(c *spu.Core, f Fields) {
	c.GPR[f.RT()] = insertion(c.GPR[f.RA()].U32(0)+uint32(f.I7()), 2)
}

func opCWD(c *spu.Core, f Fields) {
	c.GPR[f.RT()] = insertion(c.GPR[f.RA()].U32(0)+uint32(f.I7()), 4)
}

func opCDD(c *spu.Core, f Fields) {
	c.GPR[f.RT()] = insertion(c.GPR[f.RA()].U32(0)+uint32(f.I7()), 8)
}

func opCBX(c *spu.Core, f Fields) {
	c.GPR[f.RT()] = insertion(c.GPR[f.RA()].U32(0)+c.GPR[f.RB()].U32(0), 1)
}

func opCHX(c *spu.Core, f Fields) {
	c.GPR[f.RT()] = insertion(c.GPR[f.RA()].U32(0)+c.GPR[f.RB()].U32(0), 2)
}

func opCWX(c *spu.Core, f Fields) {
	c.GPR[f.RT()] = insertion(c.GPR[f.RA()].U32(0)+c.GPR[f.RB()].U32(0), 4)
}

func opCDX(c *spu.Core, f Fields) {
	c.GPR[f.RT()] = insertion(c.GPR[f.RA()].U32(0)+c.GPR[f.RB()].U32(0), 8)
}
