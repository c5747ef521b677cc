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

package translator

import (
	"github.com/jetsetilly/gophercell/hardware/spu"
	"github.com/jetsetilly/gophercell/hardware/spu/isa"
	"github.com/jetsetilly/gophercell/hardware/spu/localstore"
	"github.com/jetsetilly/gophercell/hardware/spu/registers"
)

// compilers for common instructions. the immediate operands, and anything
// that depends only on the PC, are computed once at compile time. every
// other instruction is compiled into a call to its isa definition
var specialised = map[string]func(f isa.Fields, pc uint32) func(c *spu.Core){
	"il": func(f isa.Fields, _ uint32) func(c *spu.Core) {
		var r registers.Reg
		r.SplatU32(uint32(f.S16()))
		return constant(f.RT(), r)
	},
	"ilhu": func(f isa.Fields, _ uint32) func(c *spu.Core) {
		var r registers.Reg
		r.SplatU32(f.I16() << 16)
		return constant(f.RT(), r)
	},
	"ilh": func(f isa.Fields, _ uint32) func(c *spu.Core) {
		var r registers.Reg
		r.SplatU16(uint16(f.I16()))
		return constant(f.RT(), r)
	},
	"ila": func(f isa.Fields, _ uint32) func(c *spu.Core) {
		var r registers.Reg
		r.SplatU32(f.I18())
		return constant(f.RT(), r)
	},
	"ai": func(f isa.Fields, _ uint32) func(c *spu.Core) {
		rt, ra, imm := f.RT(), f.RA(), uint32(f.I10())
		return func(c *spu.Core) {
			a := &c.GPR[ra]
			var r registers.Reg
			for i := range 4 {
				r.SetU32(i, a.U32(i)+imm)
			}
			c.GPR[rt] = r
		}
	},
	"lqd": func(f isa.Fields, _ uint32) func(c *spu.Core) {
		rt, ra, offset := f.RT(), f.RA(), uint32(f.I10()<<4)
		return func(c *spu.Core) {
			c.GPR[rt] = c.LocalStore().ReadQuad(quadAddr(c.GPR[ra].U32(0) + offset))
		}
	},
	"stqd": func(f isa.Fields, _ uint32) func(c *spu.Core) {
		rt, ra, offset := f.RT(), f.RA(), uint32(f.I10()<<4)
		return func(c *spu.Core) {
			c.LocalStore().WriteQuad(quadAddr(c.GPR[ra].U32(0)+offset), c.GPR[rt])
		}
	},
	"lqr": func(f isa.Fields, pc uint32) func(c *spu.Core) {
		rt, addr := f.RT(), quadAddr(pc+uint32(f.S16()<<2))
		return func(c *spu.Core) {
			c.GPR[rt] = c.LocalStore().ReadQuad(addr)
		}
	},
	"stqr": func(f isa.Fields, pc uint32) func(c *spu.Core) {
		rt, addr := f.RT(), quadAddr(pc+uint32(f.S16()<<2))
		return func(c *spu.Core) {
			c.LocalStore().WriteQuad(addr, c.GPR[rt])
		}
	},
	"br": func(f isa.Fields, pc uint32) func(c *spu.Core) {
		target := pc + uint32(f.S16()<<2)
		return func(c *spu.Core) {
			c.Branch(target)
		}
	},
	"bra": func(f isa.Fields, _ uint32) func(c *spu.Core) {
		target := uint32(f.S16() << 2)
		return func(c *spu.Core) {
			c.Branch(target)
		}
	},
	"brsl": func(f isa.Fields, pc uint32) func(c *spu.Core) {
		rt, target := f.RT(), pc+uint32(f.S16()<<2)
		return func(c *spu.Core) {
			c.GPR[rt].SetPreferred(pc + 4)
			c.Branch(target)
		}
	},
	"brnz": func(f isa.Fields, pc uint32) func(c *spu.Core) {
		rt, target := f.RT(), pc+uint32(f.S16()<<2)
		return func(c *spu.Core) {
			if c.GPR[rt].U32(0) != 0 {
				c.Branch(target)
			}
		}
	},
	"brz": func(f isa.Fields, pc uint32) func(c *spu.Core) {
		rt, target := f.RT(), pc+uint32(f.S16()<<2)
		return func(c *spu.Core) {
			if c.GPR[rt].U32(0) == 0 {
				c.Branch(target)
			}
		}
	},
	"nop":  nothing,
	"lnop": nothing,
	"hbr":  nothing,
	"hbra": nothing,
	"hbrr": nothing,
}

func constant(rt int, r registers.Reg) func(c *spu.Core) {
	return func(c *spu.Core) {
		c.GPR[rt] = r
	}
}

func nothing(_ isa.Fields, _ uint32) func(c *spu.Core) {
	return func(_ *spu.Core) {}
}

func quadAddr(addr uint32) uint32 {
	return addr & localstore.Mask &^ 15
}
