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

// Package assembler converts SPU assembly language into a program image that
// can be loaded into a local store. The notation is the same as that produced
// by isa.Disassemble().
//
// Each line contains at most one label, instruction or directive. Comments
// start with a '#' or a ';' and continue to the end of the line.
//
//	start:	il	$3,10
//	loop:	ai	$3,$3,-1
//		brnz	$3,loop
//		stop	0x2000
//
// The following directives are supported:
//
//	.org	address		move the assembly address forward
//	.long	value[,value]	32-bit data
//	.space	n		n bytes of zero
//	.entry	label		entry point of the program
//
// Operands that are addresses or immediate values can be a number or a label
// with an optional offset (eg. data+16).
package assembler

import (
	"bufio"
	"encoding/binary"
	"io"
	"strconv"
	"strings"

	"github.com/jetsetilly/gophercell/curated"
	"github.com/jetsetilly/gophercell/hardware/spu"
	"github.com/jetsetilly/gophercell/hardware/spu/isa"
	"github.com/jetsetilly/gophercell/hardware/spu/localstore"
)

// Sentinel error patterns.
const (
	AssemblyError  = "assembler: line %d: %v"
	UnknownOp      = "unknown instruction or directive (%s)"
	OperandCount   = "%s expects %d operand(s)"
	BadRegister    = "not a register (%s)"
	BadValue       = "not a value (%s)"
	DuplicateLabel = "duplicate label (%s)"
	OutOfRange     = "value out of range (%d)"
	Misaligned     = "displacement not a multiple of 16 (%d)"
	OrgBackwards   = ".org cannot move backwards (%#x)"
)

// Program is the result of assembly.
type Program struct {
	// the address of the first byte of Code. always zero
	Origin uint32

	// the assembled bytes. instructions are big-endian
	Code []byte

	// address of every label
	Labels map[string]uint32

	// the value given by the .entry directive or zero
	Entry uint32
}

// a line of source after the label and comment have been removed
type line struct {
	num      int
	addr     uint32
	op       string
	operands []string
}

// Assemble the source read from the reader.
func Assemble(r io.Reader) (*Program, error) {
	prg := &Program{
		Labels: make(map[string]uint32),
	}

	// first pass finds the address of each label
	var lines []line
	var addr uint32
	var entry string

	scanner := bufio.NewScanner(r)
	num := 0
	for scanner.Scan() {
		num++
		s := scanner.Text()
		if i := strings.IndexAny(s, "#;"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)

		if i := strings.Index(s, ":"); i >= 0 && !strings.ContainsAny(s[:i], " \t,$(") {
			label := s[:i]
			if _, ok := prg.Labels[label]; ok {
				return nil, curated.Errorf(AssemblyError, num, curated.Errorf(DuplicateLabel, label))
			}
			prg.Labels[label] = addr
			s = strings.TrimSpace(s[i+1:])
		}

		if s == "" {
			continue
		}

		l := line{num: num, addr: addr}
		fields := strings.Fields(s)
		l.op = strings.ToLower(fields[0])
		if rest := strings.TrimSpace(s[len(fields[0]):]); rest != "" {
			for _, o := range strings.Split(rest, ",") {
				l.operands = append(l.operands, strings.TrimSpace(o))
			}
		}

		switch l.op {
		case ".org":
			if len(l.operands) != 1 {
				return nil, curated.Errorf(AssemblyError, num, curated.Errorf(OperandCount, l.op, 1))
			}
			v, err := number(l.operands[0])
			if err != nil {
				return nil, curated.Errorf(AssemblyError, num, err)
			}
			if uint32(v) < addr {
				return nil, curated.Errorf(AssemblyError, num, curated.Errorf(OrgBackwards, v))
			}
			addr = uint32(v)
			continue
		case ".long":
			addr += uint32(len(l.operands)) * 4
		case ".space":
			if len(l.operands) != 1 {
				return nil, curated.Errorf(AssemblyError, num, curated.Errorf(OperandCount, l.op, 1))
			}
			v, err := number(l.operands[0])
			if err != nil {
				return nil, curated.Errorf(AssemblyError, num, err)
			}
			addr += uint32(v)
		case ".entry":
			if len(l.operands) != 1 {
				return nil, curated.Errorf(AssemblyError, num, curated.Errorf(OperandCount, l.op, 1))
			}
			entry = l.operands[0]
			continue
		default:
			// instructions are word aligned
			addr = (addr + 3) &^ 3
			l.addr = addr
			addr += 4
		}

		if addr > localstore.Size {
			return nil, curated.Errorf(AssemblyError, num, curated.Errorf(OutOfRange, addr))
		}

		lines = append(lines, l)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// second pass produces the code
	prg.Code = make([]byte, addr)
	for _, l := range lines {
		switch l.op {
		case ".long":
			for i, o := range l.operands {
				v, err := prg.value(o)
				if err != nil {
					return nil, curated.Errorf(AssemblyError, l.num, err)
				}
				binary.BigEndian.PutUint32(prg.Code[l.addr+uint32(i)*4:], uint32(v))
			}
		case ".space":
		default:
			word, err := prg.instruction(l)
			if err != nil {
				return nil, curated.Errorf(AssemblyError, l.num, err)
			}
			binary.BigEndian.PutUint32(prg.Code[l.addr:], word)
		}
	}

	if entry != "" {
		v, err := prg.value(entry)
		if err != nil {
			return nil, curated.Errorf(AssemblyError, num, err)
		}
		prg.Entry = uint32(v)
	}

	return prg, nil
}

// AssembleString is a convenience function that assembles the source in the
// string.
func AssembleString(src string) (*Program, error) {
	return Assemble(strings.NewReader(src))
}

// Image returns the program as an image that can be loaded into a core.
func (prg *Program) Image() *spu.Image {
	return &spu.Image{
		Entry:    prg.Entry,
		Segments: []spu.Segment{{Addr: prg.Origin, Data: prg.Code}},
	}
}

func (prg *Program) instruction(l line) (uint32, error) {
	defn, flags, ok := lookup(l.op)
	if !ok {
		return 0, curated.Errorf(UnknownOp, l.op)
	}

	shape := isa.ShapeOf(defn)
	want := operandCount(shape)
	if len(l.operands) != want {
		return 0, curated.Errorf(OperandCount, l.op, want)
	}

	ops := l.operands
	var operands uint32

	switch shape {
	case isa.NoOperands, isa.ShapeBranch:
	case isa.ShapeT:
		rt, err := register(ops[0])
		if err != nil {
			return 0, err
		}
		operands = rt
	case isa.ShapeA, isa.ShapeBranchA:
		ra, err := register(ops[0])
		if err != nil {
			return 0, err
		}
		operands = ra << 7
	case isa.ShapeTA, isa.ShapeBranchTA:
		rt, ra, err := registers2(ops[0], ops[1])
		if err != nil {
			return 0, err
		}
		operands = ra<<7 | rt
	case isa.ShapeTAB:
		rt, ra, err := registers2(ops[0], ops[1])
		if err != nil {
			return 0, err
		}
		rb, err := register(ops[2])
		if err != nil {
			return 0, err
		}
		operands = rb<<14 | ra<<7 | rt
	case isa.ShapeTABC:
		rt, ra, err := registers2(ops[0], ops[1])
		if err != nil {
			return 0, err
		}
		rb, rc, err := registers2(ops[2], ops[3])
		if err != nil {
			return 0, err
		}
		operands = rt<<21 | rb<<14 | ra<<7 | rc
	case isa.ShapeTAImm:
		rt, ra, err := registers2(ops[0], ops[1])
		if err != nil {
			return 0, err
		}
		bits := 10
		if defn.Format == isa.RI7 {
			bits = 7
		}
		imm, err := prg.immediate(ops[2], bits)
		if err != nil {
			return 0, err
		}
		operands = imm<<14 | ra<<7 | rt
	case isa.ShapeTAScale:
		rt, ra, err := registers2(ops[0], ops[1])
		if err != nil {
			return 0, err
		}
		scale, err := prg.value(ops[2])
		if err != nil {
			return 0, err
		}
		i8 := int64(isa.ScaleBias(defn)) - scale
		if i8 < 0 || i8 > 0xff {
			return 0, curated.Errorf(OutOfRange, scale)
		}
		operands = uint32(i8)<<14 | ra<<7 | rt
	case isa.ShapeTDisp:
		rt, err := register(ops[0])
		if err != nil {
			return 0, err
		}
		disp, base, ok := strings.Cut(ops[1], "(")
		if !ok || !strings.HasSuffix(base, ")") {
			return 0, curated.Errorf(BadValue, ops[1])
		}
		ra, err := register(strings.TrimSuffix(base, ")"))
		if err != nil {
			return 0, err
		}
		bits := 7
		if defn.Format == isa.RI10 {
			bits = 10
			v, err := prg.value(disp)
			if err != nil {
				return 0, err
			}
			if v&15 != 0 {
				return 0, curated.Errorf(Misaligned, v)
			}
			disp = strconv.FormatInt(v>>4, 10)
		}
		imm, err := prg.immediate(disp, bits)
		if err != nil {
			return 0, err
		}
		operands = imm<<14 | ra<<7 | rt
	case isa.ShapeTImm:
		rt, err := register(ops[0])
		if err != nil {
			return 0, err
		}
		bits := 16
		if defn.Format == isa.RI18 {
			bits = 18
		}
		imm, err := prg.immediate(ops[1], bits)
		if err != nil {
			return 0, err
		}
		operands = imm<<7 | rt
	case isa.ShapeTTarget:
		rt, err := register(ops[0])
		if err != nil {
			return 0, err
		}
		imm, err := prg.target(defn, ops[1], l.addr)
		if err != nil {
			return 0, err
		}
		operands = imm<<7 | rt
	case isa.ShapeTarget:
		imm, err := prg.target(defn, ops[0], l.addr)
		if err != nil {
			return 0, err
		}
		operands = imm << 7
	case isa.ShapeImm:
		v, err := prg.value(ops[0])
		if err != nil {
			return 0, err
		}
		if defn.Format == isa.Stop {
			if v < 0 || v > 0x3fff {
				return 0, curated.Errorf(OutOfRange, v)
			}
			operands = uint32(v)
		} else {
			operands = (uint32(v) & 0x3ffff) << 7
		}
	case isa.ShapeTChan:
		rt, err := register(ops[0])
		if err != nil {
			return 0, err
		}
		ch, err := channel(ops[1])
		if err != nil {
			return 0, err
		}
		operands = ch<<7 | rt
	case isa.ShapeChanT:
		ch, err := channel(ops[0])
		if err != nil {
			return 0, err
		}
		rt, err := register(ops[1])
		if err != nil {
			return 0, err
		}
		operands = ch<<7 | rt
	}

	return defn.Encode(operands | flags), nil
}

// lookup the mnemonic. indirect branches can have a suffix of 'e' or 'd' to
// enable or disable interrupts
func lookup(mnemonic string) (*isa.Definition, uint32, bool) {
	if defn, ok := isa.ByMnemonic(mnemonic); ok {
		return defn, 0, true
	}
	if len(mnemonic) < 2 {
		return nil, 0, false
	}

	var flags uint32
	switch mnemonic[len(mnemonic)-1] {
	case 'e':
		flags = 1 << 18
	case 'd':
		flags = 1 << 19
	default:
		return nil, 0, false
	}

	defn, ok := isa.ByMnemonic(mnemonic[:len(mnemonic)-1])
	if !ok || defn.Format != isa.Branch {
		return nil, 0, false
	}
	return defn, flags, true
}

func operandCount(shape isa.Shape) int {
	switch shape {
	case isa.NoOperands, isa.ShapeBranch:
		return 0
	case isa.ShapeT, isa.ShapeA, isa.ShapeBranchA, isa.ShapeTarget, isa.ShapeImm:
		return 1
	case isa.ShapeTA, isa.ShapeBranchTA, isa.ShapeTDisp, isa.ShapeTImm, isa.ShapeTTarget,
		isa.ShapeTChan, isa.ShapeChanT:
		return 2
	case isa.ShapeTAB, isa.ShapeTAImm, isa.ShapeTAScale:
		return 3
	case isa.ShapeTABC:
		return 4
	}
	return 0
}

// register names are a dollar sign followed by the register number. the link
// register and the stack pointer can also be named $lr and $sp
func register(s string) (uint32, error) {
	switch s {
	case "$lr":
		return 0, nil
	case "$sp":
		return 1, nil
	}
	if !strings.HasPrefix(s, "$") {
		return 0, curated.Errorf(BadRegister, s)
	}
	v, err := strconv.ParseUint(s[1:], 10, 8)
	if err != nil || v > 127 {
		return 0, curated.Errorf(BadRegister, s)
	}
	return uint32(v), nil
}

func registers2(a, b string) (uint32, uint32, error) {
	ra, err := register(a)
	if err != nil {
		return 0, 0, err
	}
	rb, err := register(b)
	if err != nil {
		return 0, 0, err
	}
	return ra, rb, nil
}

// channels are named $chN or with a plain number
func channel(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "$ch"), 0, 8)
	if err != nil || v > 127 {
		return 0, curated.Errorf(BadRegister, s)
	}
	return uint32(v), nil
}

func number(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, curated.Errorf(BadValue, s)
	}
	return v, nil
}

// value of a number or a label with an optional offset
func (prg *Program) value(s string) (int64, error) {
	if v, err := number(s); err == nil {
		return v, nil
	}

	label, offset := s, int64(0)
	if i := strings.LastIndexAny(s, "+-"); i > 0 {
		o, err := number(s[i:])
		if err != nil {
			return 0, err
		}
		label, offset = s[:i], o
	}

	addr, ok := prg.Labels[label]
	if !ok {
		return 0, curated.Errorf(BadValue, s)
	}
	return int64(addr) + offset, nil
}

// an immediate value that must fit in a field of the number of bits. the value
// can be signed or unsigned
func (prg *Program) immediate(s string, bits int) (uint32, error) {
	v, err := prg.value(s)
	if err != nil {
		return 0, err
	}
	if v < -(1<<(bits-1)) || v >= 1<<bits {
		return 0, curated.Errorf(OutOfRange, v)
	}
	return uint32(v) & (1<<bits - 1), nil
}

// the encoded 16-bit word offset for an instruction with an address operand
func (prg *Program) target(defn *isa.Definition, s string, pc uint32) (uint32, error) {
	v, err := prg.value(s)
	if err != nil {
		return 0, err
	}
	if v&3 != 0 {
		return 0, curated.Errorf(OutOfRange, v)
	}
	if !isa.Absolute(defn) {
		v -= int64(pc)
	}
	v >>= 2
	if v < -(1<<15) || v >= 1<<15 {
		return 0, curated.Errorf(OutOfRange, v)
	}
	return uint32(v) & 0xffff, nil
}
