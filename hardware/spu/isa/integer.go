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
	"fmt"
	"math/bits"

	"github.com/jetsetilly/gophercell/hardware/spu"
	"github.com/jetsetilly/gophercell/hardware/spu/faults"
	"github.com/jetsetilly/gophercell/hardware/spu/registers"
)

func opA(c *spu.Core, f Fields) {
	words(c, f, func(a, b uint32) uint32 { return a + b })
}

func opAH(c *spu.Core, f Fields) {
	halfs(c, f, func(a, b uint16) uint16 { return a + b })
}

func opAI(c *spu.Core, f Fields) {
	wordsImm(c, f, uint32(f.I10()), func(a, b uint32) uint32 { return a + b })
}

func opAHI(c *spu.Core, f Fields) {
	halfsImm(c, f, uint16(f.I10()), func(a, b uint16) uint16 { return a + b })
}

func opSF(c *spu.Core, f Fields) {
	words(c, f, func(a, b uint32) uint32 { return b - a })
}

func opSFH(c *spu.Core, f Fields) {
	halfs(c, f, func(a, b uint16) uint16 { return b - a })
}

func opSFI(c *spu.Core, f Fields) {
	wordsImm(c, f, uint32(f.I10()), func(a, b uint32) uint32 { return b - a })
}

func opSFHI(c *spu.Core, f Fields) {
	halfsImm(c, f, uint16(f.I10()), func(a, b uint16) uint16 { return b - a })
}

func opCG(c *spu.Core, f Fields) {
	words(c, f, func(a, b uint32) uint32 {
		_, carry := bits.Add32(a, b, 0)
		return carry
	})
}

func opBG(c *spu.Core, f Fields) {
	words(c, f, func(a, b uint32) uint32 {
		if b >= a {
			return 1
		}
		return 0
	})
}

func opADDX(c *spu.Core, f Fields) {
	wordsAcc(c, f, func(a, b, t uint32) uint32 { return a + b + t&1 })
}

func opSFX(c *spu.Core, f Fields) {
	wordsAcc(c, f, func(a, b, t uint32) uint32 { return b - a - (1 - t&1) })
}

func opCGX(c *spu.Core, f Fields) {
	wordsAcc(c, f, func(a, b, t uint32) uint32 {
		_, carry := bits.Add32(a, b, t&1)
		return carry
	})
}

func opBGX(c *spu.Core, f Fields) {
	wordsAcc(c, f, func(a, b, t uint32) uint32 {
		if int64(b)-int64(a)-int64(1-t&1) >= 0 {
			return 1
		}
		return 0
	})
}

func opAND(c *spu.Core, f Fields) {
	words(c, f, func(a, b uint32) uint32 { return a & b })
}

func opANDC(c *spu.Core, f Fields) {
	words(c, f, func(a, b uint32) uint32 { return a &^ b })
}

func opOR(c *spu.Core, f Fields) {
	words(c, f, func(a, b uint32) uint32 { return a | b })
}

func opORC(c *spu.Core, f Fields) {
	words(c, f, func(a, b uint32) uint32 { return a | ^b })
}

func opXOR(c *spu.Core, f Fields) {
	words(c, f, func(a, b uint32) uint32 { return a ^ b })
}

func opNAND(c *spu.Core, f Fields) {
	words(c, f, func(a, b uint32) uint32 { return ^(a & b) })
}

func opNOR(c *spu.Core, f Fields) {
	words(c, f, func(a, b uint32) uint32 { return ^(a | b) })
}

func opEQV(c *spu.Core, f Fields) {
	words(c, f, func(a, b uint32) uint32 { return ^(a ^ b) })
}

func opANDI(c *spu.Core, f Fields) {
	wordsImm(c, f, uint32(f.I10()), func(a, b uint32) uint32 { return a & b })
}

func opANDHI(c *spu.Core, f Fields) {
	halfsImm(c, f, uint16(f.I10()), func(a, b uint16) uint16 { return a & b })
}

func opANDBI(c *spu.Core, f Fields) {
	bytewiseImm(c, f, uint8(f.I10()), func(a, b uint8) uint8 { return a & b })
}

func opORI(c *spu.Core, f Fields) {
	wordsImm(c, f, uint32(f.I10()), func(a, b uint32) uint32 { return a | b })
}

func opORHI(c *spu.Core, f Fields) {
	halfsImm(c, f, uint16(f.I10()), func(a, b uint16) uint16 { return a | b })
}

func opORBI(c *spu.Core, f Fields) {
	bytewiseImm(c, f, uint8(f.I10()), func(a, b uint8) uint8 { return a | b })
}

func opXORI(c *spu.Core, f Fields) {
	wordsImm(c, f, uint32(f.I10()), func(a, b uint32) uint32 { return a ^ b })
}

func opXORHI(c *spu.Core, f Fields) {
	halfsImm(c, f, uint16(f.I10()), func(a, b uint16) uint16 { return a ^ b })
}

func opXORBI(c *spu.Core, f Fields) {
	bytewiseImm(c, f, uint8(f.I10()), func(a, b uint8) uint8 { return a ^ b })
}

func opORX(c *spu.Core, f Fields) {
	a := &c.GPR[f.RA()]
	c.GPR[f.RT()].SetPreferred(a.U32(0) | a.U32(1) | a.U32(2) | a.U32(3))
}

// compare instructions

func opCEQ(c *spu.Core, f Fields) {
	words(c, f, func(a, b uint32) uint32 { return mask32(a == b) })
}

func opCEQH(c *spu.Core, f Fields) {
	halfs(c, f, func(a, b uint16) uint16 { return mask16(a == b) })
}

func opCEQB(c *spu.Core, f Fields) {
	bytewise(c, f, func(a, b uint8) uint8 { return mask8(a == b) })
}

func opCEQI(c *spu.Core, f Fields) {
	wordsImm(c, f, uint32(f.I10()), func(a, b uint32) uint32 { return mask32(a == b) })
}

func opCEQHI(c *spu.Core, f Fields) {
	halfsImm(c, f, uint16(f.I10()), func(a, b uint16) uint16 { return mask16(a == b) })
}

func opCEQBI(c *spu.Core, f Fields) {
	bytewiseImm(c, f, uint8(f.I10()), func(a, b uint8) uint8 { return mask8(a == b) })
}

func opCGT(c *spu.Core, f Fields) {
	words(c, f, func(a, b uint32) uint32 { return mask32(int32(a) > int32(b)) })
}

func opCGTH(c *spu.Core, f Fields) {
	halfs(c, f, func(a, b uint16) uint16 { return mask16(int16(a) > int16(b)) })
}

func opCGTB(c *spu.Core, f Fields) {
	bytewise(c, f, func(a, b uint8) uint8 { return mask8(int8(a) > int8(b)) })
}

func opCGTI(c *spu.Core, f Fields) {
	wordsImm(c, f, uint32(f.I10()), func(a, b uint32) uint32 { return mask32(int32(a) > int32(b)) })
}

func opCGTHI(c *spu.Core, f Fields) {
	halfsImm(c, f, uint16(f.I10()), func(a, b uint16) uint16 { return mask16(int16(a) > int16(b)) })
}

func opCGTBI(c *spu.Core, f Fields) {
	bytewiseImm(c, f, uint8(f.I10()), func(a, b uint8) uint8 { return mask8(int8(a) > int8(b)) })
}

func opCLGT(c *spu.Core, f Fields) {
	words(c, f, func(a, b uint32) uint32 { return mask32(a > b) })
}

func opCLGTH(c *spu.Core, f Fields) {
	halfs(c, f, func(a, b uint16) uint16 { return mask16(a > b) })
}

func opCLGTB(c *spu.Core, f Fields) {
	bytewise(c, f, func(a, b uint8) uint8 { return mask8(a > b) })
}

func opCLGTI(c *spu.Core, f Fields) {
	wordsImm(c, f, uint32(f.I10()), func(a, b uint32) uint32 { return mask32(a > b) })
}

func opCLGTHI(c *spu.Core, f Fields) {
	halfsImm(c, f, uint16(f.I10()), func(a, b uint16) uint16 { return mask16(a > b) })
}

func opCLGTBI(c *spu.Core, f Fields) {
	bytewiseImm(c, f, uint8(f.I10()), func(a, b uint8) uint8 { return mask8(a > b) })
}

// halt instructions. the comparison is made on the preferred slot

func halt(c *spu.Core, f Fields, cond bool, mnemonic string) {
	if cond {
		c.Fault(faults.HaltInstruction, fmt.Sprintf("%s: %s", mnemonic, f.haltOperands(c)), 0)
	}
}

func (f Fields) haltOperands(c *spu.Core) string {
	return fmt.Sprintf("%08x %08x", c.GPR[f.RA()].U32(0), c.GPR[f.RB()].U32(0))
}

func opHEQ(c *spu.Core, f Fields) {
	halt(c, f, c.GPR[f.RA()].U32(0) == c.GPR[f.RB()].U32(0), "heq")
}

func opHGT(c *spu.Core, f Fields) {
	halt(c, f, c.GPR[f.RA()].S32(0) > c.GPR[f.RB()].S32(0), "hgt")
}

func opHLGT(c *spu.Core, f Fields) {
	halt(c, f, c.GPR[f.RA()].U32(0) > c.GPR[f.RB()].U32(0), "hlgt")
}

func opHEQI(c *spu.Core, f Fields) {
	halt(c, f, c.GPR[f.RA()].S32(0) == f.I10(), "heqi")
}

func opHGTI(c *spu.Core, f Fields) {
	halt(c, f, c.GPR[f.RA()].S32(0) > f.I10(), "hgti")
}

func opHLGTI(c *spu.Core, f Fields) {
	halt(c, f, c.GPR[f.RA()].U32(0) > uint32(f.I10()), "hlgti")
}

// multiply instructions. operands are the low halfword of each word unless
// otherwise stated

func opMPY(c *spu.Core, f Fields) {
	words(c, f, func(a, b uint32) uint32 { return uint32(int32(int16(a)) * int32(int16(b))) })
}

func opMPYU(c *spu.Core, f Fields) {
	words(c, f, func(a, b uint32) uint32 { return (a & 0xffff) * (b & 0xffff) })
}

func opMPYH(c *spu.Core, f Fields) {
	words(c, f, func(a, b uint32) uint32 { return ((a >> 16) * (b & 0xffff)) << 16 })
}

func opMPYHH(c *spu.Core, f Fields) {
	words(c, f, func(a, b uint32) uint32 { return uint32(int32(int16(a>>16)) * int32(int16(b>>16))) })
}

func opMPYHHU(c *spu.Core, f Fields) {
	words(c, f, func(a, b uint32) uint32 { return (a >> 16) * (b >> 16) })
}

func opMPYS(c *spu.Core, f Fields) {
	words(c, f, func(a, b uint32) uint32 { return uint32((int32(int16(a)) * int32(int16(b))) >> 16) })
}

func opMPYHHA(c *spu.Core, f Fields) {
	wordsAcc(c, f, func(a, b, t uint32) uint32 { return t + uint32(int32(int16(a>>16))*int32(int16(b>>16))) })
}

func opMPYHHAU(c *spu.Core, f Fields) {
	wordsAcc(c, f, func(a, b, t uint32) uint32 { return t + (a>>16)*(b>>16) })
}

func opMPYI(c *spu.Core, f Fields) {
	wordsImm(c, f, uint32(f.I10()), func(a, b uint32) uint32 { return uint32(int32(int16(a)) * int32(b)) })
}

func opMPYUI(c *spu.Core, f Fields) {
	wordsImm(c, f, uint32(f.I10()), func(a, b uint32) uint32 { return (a & 0xffff) * (b & 0xffff) })
}

func opMPYA(c *spu.Core, f Fields) {
	a, b, cc := &c.GPR[f.RA()], &c.GPR[f.RB()], &c.GPR[f.RC()]
	var r registers.Reg
	for i := range 4 {
		r.SetU32(i, uint32(int32(int16(a.U32(i)))*int32(int16(b.U32(i))))+cc.U32(i))
	}
	c.GPR[f.RT4()] = r
}

// miscellaneous

func opCLZ(c *spu.Core, f Fields) {
	wordsUnary(c, f, func(a uint32) uint32 { return uint32(bits.LeadingZeros32(a)) })
}

func opCNTB(c *spu.Core, f Fields) {
	a := &c.GPR[f.RA()]
	var r registers.Reg
	for i := range 16 {
		r[i] = uint8(bits.OnesCount8(a[i]))
	}
	c.GPR[f.RT()] = r
}

func opAVGB(c *spu.Core, f Fields) {
	bytewise(c, f, func(a, b uint8) uint8 { return uint8((uint16(a) + uint16(b) + 1) >> 1) })
}

func opABSDB(c *spu.Core, f Fields) {
	bytewise(c, f, func(a, b uint8) uint8 {
		if a > b {
			return a - b
		}
		return b - a
	})
}

func opSUMB(c *spu.Core, f Fields) {
	a, b := &c.GPR[f.RA()], &c.GPR[f.RB()]
	var r registers.Reg
	for i := range 4 {
		var sa, sb uint16
		for j := range 4 {
			sa += uint16(a[i*4+j])
			sb += uint16(b[i*4+j])
		}
		r.SetU16(i*2, sb)
		r.SetU16(i*2+1, sa)
	}
	c.GPR[f.RT()] = r
}

func opXSBH(c *spu.Core, f Fields) {
	a := &c.GPR[f.RA()]
	var r registers.Reg
	for i := range 8 {
		r.SetU16(i, uint16(int16(int8(a.U16(i)))))
	}
	c.GPR[f.RT()] = r
}

func opXSHW(c *spu.Core, f Fields) {
	wordsUnary(c, f, func(a uint32) uint32 { return uint32(int32(int16(a))) })
}

func opXSWD(c *spu.Core, f Fields) {
	a := &c.GPR[f.RA()]
	var r registers.Reg
	for i := range 2 {
		r.SetU64(i, uint64(int64(int32(a.U64(i)))))
	}
	c.GPR[f.RT()] = r
}

// gather bits

func opGB(c *spu.Core, f Fields) {
	a := &c.GPR[f.RA()]
	var v uint32
	for i := range 4 {
		v = v<<1 | a.U32(i)&1
	}
	c.GPR[f.RT()].SetPreferred(v)
}

func opGBH(c *spu.Core, f Fields) {
	a := &c.GPR[f.RA()]
	var v uint32
	for i := range 8 {
		v = v<<1 | uint32(a.U16(i)&1)
	}
	c.GPR[f.RT()].SetPreferred(v)
}

func opGBB(c *spu.Core, f Fields) {
	a := &c.GPR[f.RA()]
	var v uint32
	for i := range 16 {
		v = v<<1 | uint32(a[i]&1)
	}
	c.GPR[f.RT()].SetPreferred(v)
}

// form select mask

func opFSM(c *spu.Core, f Fields) {
	v := c.GPR[f.RA()].U32(0)
	var r registers.Reg
	for i := range 4 {
		r.SetU32(i, mask32(v&(8>>i) != 0))
	}
	c.GPR[f.RT()] = r
}

func opFSMH(c *spu.Core, f Fields) {
	v := c.GPR[f.RA()].U32(0)
	var r registers.Reg
	for i := range 8 {
		r.SetU16(i, mask16(v&(0x80>>i) != 0))
	}
	c.GPR[f.RT()] = r
}

func fsmb(v uint32) registers.Reg {
	var r registers.Reg
	for i := range 16 {
		r[i] = mask8(v&(0x8000>>i) != 0)
	}
	return r
}

func opFSMB(c *spu.Core, f Fields) {
	c.GPR[f.RT()] = fsmb(c.GPR[f.RA()].U32(0))
}

func opFSMBI(c *spu.Core, f Fields) {
	c.GPR[f.RT()] = fsmb(f.I16())
}

// select and shuffle

func opSELB(c *spu.Core, f Fields) {
	a, b, m := &c.GPR[f.RA()], &c.GPR[f.RB()], &c.GPR[f.RC()]
	var r registers.Reg
	for i := range 16 {
		r[i] = a[i]&^m[i] | b[i]&m[i]
	}
	c.GPR[f.RT4()] = r
}

func opSHUFB(c *spu.Core, f Fields) {
	a, b, m := &c.GPR[f.RA()], &c.GPR[f.RB()], &c.GPR[f.RC()]
	var r registers.Reg
	for i := range 16 {
		sel := m[i]
		switch {
		case sel&0xc0 == 0x80:
			r[i] = 0x00
		case sel&0xe0 == 0xc0:
			r[i] = 0xff
		case sel&0xe0 == 0xe0:
			r[i] = 0x80
		case sel&0x10 == 0:
			r[i] = a[sel&0x0f]
		default:
			r[i] = b[sel&0x0f]
		}
	}
	c.GPR[f.RT4()] = r
}
