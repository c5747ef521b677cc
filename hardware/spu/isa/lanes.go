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
	"github.com/jetsetilly/gophercell/hardware/spu/registers"
)

// the lane helpers compute into a temporary register so that the target
// register can be the same as a source register

func words(c *spu.Core, f Fields, op func(a, b uint32) uint32) {
	a, b := &c.GPR[f.RA()], &c.GPR[f.RB()]
	var r registers.Reg
	for i := range 4 {
		r.SetU32(i, op(a.U32(i), b.U32(i)))
	}
	c.GPR[f.RT()] = r
}

func wordsImm(c *spu.Core, f Fields, imm uint32, op func(a, b uint32) uint32) {
	a := &c.GPR[f.RA()]
	var r registers.Reg
	for i := range 4 {
		r.SetU32(i, op(a.U32(i), imm))
	}
	c.GPR[f.RT()] = r
}

func halfs(c *spu.Core, f Fields, op func(a, b uint16) uint16) {
	a, b := &c.GPR[f.RA()], &c.GPR[f.RB()]
	var r registers.Reg
	for i := range 8 {
		r.SetU16(i, op(a.U16(i), b.U16(i)))
	}
	c.GPR[f.RT()] = r
}

func halfsImm(c *spu.Core, f Fields, imm uint16, op func(a, b uint16) uint16) {
	a := &c.GPR[f.RA()]
	var r registers.Reg
	for i := range 8 {
		r.SetU16(i, op(a.U16(i), imm))
	}
	c.GPR[f.RT()] = r
}

func bytewise(c *spu.Core, f Fields, op func(a, b uint8) uint8) {
	a, b := &c.GPR[f.RA()], &c.GPR[f.RB()]
	var r registers.Reg
	for i := range 16 {
		r[i] = op(a[i], b[i])
	}
	c.GPR[f.RT()] = r
}

func bytewiseImm(c *spu.Core, f Fields, imm uint8, op func(a, b uint8) uint8) {
	a := &c.GPR[f.RA()]
	var r registers.Reg
	for i := range 16 {
		r[i] = op(a[i], imm)
	}
	c.GPR[f.RT()] = r
}

// unary operation on the words of RA
func wordsUnary(c *spu.Core, f Fields, op func(a uint32) uint32) {
	a := &c.GPR[f.RA()]
	var r registers.Reg
	for i := range 4 {
		r.SetU32(i, op(a.U32(i)))
	}
	c.GPR[f.RT()] = r
}

// words of RA and RB combined with the words of the target register. used by
// the extended arithmetic and the multiply-accumulate instructions
func wordsAcc(c *spu.Core, f Fields, op func(a, b, t uint32) uint32) {
	a, b, t := &c.GPR[f.RA()], &c.GPR[f.RB()], &c.GPR[f.RT()]
	var r registers.Reg
	for i := range 4 {
		r.SetU32(i, op(a.U32(i), b.U32(i), t.U32(i)))
	}
	c.GPR[f.RT()] = r
}

func mask32(b bool) uint32 {
	if b {
		return 0xffffffff
	}
	return 0
}

func mask16(b bool) uint16 {
	if b {
		return 0xffff
	}
	return 0
}

func mask8(b bool) uint8 {
	if b {
		return 0xff
	}
	return 0
}
