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
	"github.com/jetsetilly/gophercell/hardware/spu/channels"
)

// StopdCode is the stop code used by the STOPD instruction.
const StopdCode = 0x3fff

func relative(c *spu.Core, f Fields) uint32 {
	return c.PC() + uint32(f.S16()<<2)
}

func absolute(f Fields) uint32 {
	return uint32(f.S16() << 2)
}

func link(c *spu.Core, f Fields) {
	c.GPR[f.RT()].SetPreferred(c.PC() + 4)
}

// the indirect branches can enable or disable interrupts
func interruptBits(c *spu.Core, f Fields) {
	if f.E() {
		c.SetInterrupts(true)
	} else if f.D() {
		c.SetInterrupts(false)
	}
}

func opBR(c *spu.Core, f Fields) {
	c.Branch(relative(c, f))
}

func opBRA(c *spu.Core, f Fields) {
	c.Branch(absolute(f))
}

func opBRSL(c *spu.Core, f Fields) {
	target := relative(c, f)
	link(c, f)
	c.Branch(target)
}

func opBRASL(c *spu.Core, f Fields) {
	link(c, f)
	c.Branch(absolute(f))
}

func opBRZ(c *spu.Core, f Fields) {
	if c.GPR[f.RT()].U32(0) == 0 {
		c.Branch(relative(c, f))
	}
}

func opBRNZ(c *spu.Core, f Fields) {
	if c.GPR[f.RT()].U32(0) != 0 {
		c.Branch(relative(c, f))
	}
}

func opBRHZ(c *spu.Core, f Fields) {
	if c.GPR[f.RT()].U16(1) == 0 {
		c.Branch(relative(c, f))
	}
}

func opBRHNZ(c *spu.Core, f Fields) {
	if c.GPR[f.RT()].U16(1) != 0 {
		c.Branch(relative(c, f))
	}
}

func opBI(c *spu.Core, f Fields) {
	c.Branch(c.GPR[f.RA()].U32(0))
	interruptBits(c, f)
}

func opBISL(c *spu.Core, f Fields) {
	target := c.GPR[f.RA()].U32(0)
	link(c, f)
	c.Branch(target)
	interruptBits(c, f)
}

func opBISLED(c *spu.Core, f Fields) {
	target := c.GPR[f.RA()].U32(0)
	link(c, f)
	if c.ChannelCount(channels.RdEventStat) != 0 {
		c.Branch(target)
	}
	interruptBits(c, f)
}

func opIRET(c *spu.Core, f Fields) {
	c.Branch(c.Channels().SRR0())
	interruptBits(c, f)
}

func indirectIf(c *spu.Core, f Fields, cond bool) {
	if cond {
		c.Branch(c.GPR[f.RA()].U32(0))
		interruptBits(c, f)
	}
}

func opBIZ(c *spu.Core, f Fields) {
	indirectIf(c, f, c.GPR[f.RT()].U32(0) == 0)
}

func opBINZ(c *spu.Core, f Fields) {
	indirectIf(c, f, c.GPR[f.RT()].U32(0) != 0)
}

func opBIHZ(c *spu.Core, f Fields) {
	indirectIf(c, f, c.GPR[f.RT()].U16(1) == 0)
}

func opBIHNZ(c *spu.Core, f Fields) {
	indirectIf(c, f, c.GPR[f.RT()].U16(1) != 0)
}

// channel instructions. the channel number is in the RA field

func opRDCH(c *spu.Core, f Fields) {
	if v, ok := c.ReadChannel(channels.ID(f.RA())); ok {
		c.GPR[f.RT()].SetPreferred(v)
	}
}

func opWRCH(c *spu.Core, f Fields) {
	c.WriteChannel(channels.ID(f.RA()), c.GPR[f.RT()].U32(0))
}

func opRCHCNT(c *spu.Core, f Fields) {
	id := channels.ID(f.RA())
	v := c.ChannelCount(id)
	if id.Direction() != channels.Illegal {
		c.GPR[f.RT()].SetPreferred(v)
	}
}

// control instructions

func opSTOP(c *spu.Core, f Fields) {
	c.StopAndSignal(f.StopCode())
}

func opSTOPD(c *spu.Core, f Fields) {
	c.StopAndSignal(StopdCode)
}

// instructions with no effect on the emulated core. hints, no-ops and
// synchronisation
func opNone(c *spu.Core, f Fields) {
}

// special purpose registers all read as zero
func opZero(c *spu.Core, f Fields) {
	c.GPR[f.RT()] = [16]byte{}
}
