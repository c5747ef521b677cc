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
	"math/bits"

	"github.com/jetsetilly/gophercell/hardware/spu"
	"github.com/jetsetilly/gophercell/hardware/spu/registers"
)

// shift amounts are taken modulo a power of two larger than the element
// width. a shift of the element width or more produces zero, or the sign for
// arithmetic shifts

func shl32(a, n uint32) uint32 {
	n &= 0x3f
	if n > 31 {
		return 0
	}
	return a << n
}

func shr32(a, n uint32) uint32 {
	n = -n & 0x3f
	if n > 31 {
		return 0
	}
	return a >> n
}

func sra32(a, n uint32) uint32 {
	n = min(-n&0x3f, 31)
	return uint32(int32(a) >> n)
}

func shl16(a, n uint16) uint16 {
	n &= 0x1f
	if n > 15 {
		return 0
	}
	return a << n
}

func shr16(a, n uint16) uint16 {
	n = -n & 0x1f
	if n > 15 {
		return 0
	}
	return a >> n
}

func sra16(a, n uint16) uint16 {
	n = min(-n&0x1f, 15)
	return uint16(int16(a) >> n)
}

func rot32(a, n uint32) uint32 {
	return bits.RotateLeft32(a, int(n&0x1f))
}

func rot16(a, n uint16) uint16 {
	return bits.RotateLeft16(a, int(n&0x0f))
}

func opSHL(c *spu.Core, f Fields) { words(c, f, shl32) }
func opSHLH(c *spu.Core, f Fields) { halfs(c, f, shl16) }
func opROT(c *spu.Core, f Fields) { words(c, f, rot32) }
func opROTH(c *spu.Core, f Fields) { halfs(c, f, rot16) }
func opROTM(c *spu.Core, f Fields) { words(c, f, shr32) }
func opROTHM(c *spu.Core, f Fields) { halfs(c, f, shr16) }
func opROTMA(c *spu.Core, f Fields) { words(c, f, sra32) }
func opROTMAH(c *spu.Core, f Fields) {
	halfs(c, f, sra16)
}

func opSHLI(c *spu.Core, f Fields) { wordsImm(c, f, uint32(f.I7()), shl32) }
func opSHLHI(c *spu.Core, f Fields) { halfsImm(c, f, uint16(f.I7()), shl16) }
func opROTI(c *spu.Core, f Fields) { wordsImm(c, f, uint32(f.I7()), rot32) }
func opROTHI(c *spu.Core, f Fields) { halfsImm(c, f, uint16(f.I7()), rot16) }
func opROTMI(c *spu.Core, f Fields) { wordsImm(c, f, uint32(f.I7()), shr32) }
func opROTHMI(c *spu.Core, f Fields) { halfsImm(c, f, uint16(f.I7()), shr16) }
func opROTMAI(c *spu.Core, f Fields) { wordsImm(c, f, uint32(f.I7()), sra32) }
func opROTMAHI(c *spu.Core, f Fields) {
	halfsImm(c, f, uint16(f.I7()), sra16)
}

// quadword operations. the whole register is treated as a 128-bit value

func quadShlBytes(a registers.Reg, n uint32) registers.Reg {
	var r registers.Reg
	for i := range 16 {
		if j := uint32(i) + n; j < 16 {
			r[i] = a[j]
		}
	}
	return r
}

func quadShrBytes(a registers.Reg, n uint32) registers.Reg {
	var r registers.Reg
	for i := range 16 {
		if j := i - int(n); j >= 0 {
			r[i] = a[j]
		}
	}
	return r
}

func quadRotBytes(a registers.Reg, n uint32) registers.Reg {
	var r registers.Reg
	for i := range 16 {
		r[i] = a[(uint32(i)+n)&0x0f]
	}
	return r
}

func quadShlBits(a registers.Reg, n uint32) registers.Reg {
	if n == 0 {
		return a
	}
	hi, lo := a.U64(0), a.U64(1)
	var r registers.Reg
	r.SetU64(0, hi<<n|lo>>(64-n))
	r.SetU64(1, lo<<n)
	return r
}

func quadShrBits(a registers.Reg, n uint32) registers.Reg {
	if n == 0 {
		return a
	}
	hi, lo := a.U64(0), a.U64(1)
	var r registers.Reg
	r.SetU64(0, hi>>n)
	r.SetU64(1, lo>>n|hi<<(64-n))
	return r
}

func quadRotBits(a registers.Reg, n uint32) registers.Reg {
	if n == 0 {
		return a
	}
	hi, lo := a.U64(0), a.U64(1)
	var r registers.Reg
	r.SetU64(0, hi<<n|lo>>(64-n))
	r.SetU64(1, lo<<n|hi>>(64-n))
	return r
}

func quad(c *spu.Core, f Fields, n uint32, op func(registers.Reg, uint32) registers.Reg) {
	c.GPR[f.RT()] = op(c.GPR[f.RA()], n)
}

func prefB(c *spu.Core, f Fields) uint32 {
	return c.GPR[f.RB()].U32(0)
}

func opSHLQBI(c *spu.Core, f Fields) { quad(c, f, prefB(c, f)&7, quadShlBits) }
func opSHLQBII(c *spu.Core, f Fields) { quad(c, f, uint32(f.I7())&7, quadShlBits) }
func opSHLQBY(c *spu.Core, f Fields) { quad(c, f, prefB(c, f)&0x1f, quadShlBytes) }
func opSHLQBYI(c *spu.Core, f Fields) { quad(c, f, uint32(f.I7())&0x1f, quadShlBytes) }
func opSHLQBYBI(c *spu.Core, f Fields) {
	quad(c, f, prefB(c, f)>>3&0x1f, quadShlBytes)
}

func opROTQBI(c *spu.Core, f Fields) { quad(c, f, prefB(c, f)&7, quadRotBits) }
func opROTQBII(c *spu.Core, f Fields) { quad(c, f, uint32(f.I7())&7, quadRotBits) }
func opROTQBY(c *spu.Core, f Fields) { quad(c, f, prefB(c, f)&0x0f, quadRotBytes) }
func opROTQBYI(c *spu.Core, f Fields) { quad(c, f, uint32(f.I7())&0x0f, quadRotBytes) }
func opROTQBYBI(c *spu.Core, f Fields) {
	quad(c, f, prefB(c, f)>>3&0x0f, quadRotBytes)
}

func opROTQMBI(c *spu.Core, f Fields) { quad(c, f, -prefB(c, f)&7, quadShrBits) }
func opROTQMBII(c *spu.Core, f Fields) { quad(c, f, -uint32(f.I7())&7, quadShrBits) }
func opROTQMBY(c *spu.Core, f Fields) { quad(c, f, -prefB(c, f)&0x1f, quadShrBytes) }
func opROTQMBYI(c *spu.Core, f Fields) { quad(c, f, -uint32(f.I7())&0x1f, quadShrBytes) }
func opROTQMBYBI(c *spu.Core, f Fields) {
	quad(c, f, -(prefB(c, f)>>3)&0x1f, quadShrBytes)
}
