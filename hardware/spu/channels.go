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

package spu

import (
	"fmt"

	"github.com/jetsetilly/gophercell/hardware/spu/channels"
	"github.com/jetsetilly/gophercell/hardware/spu/faults"
	"github.com/jetsetilly/gophercell/hardware/spu/localstore"
	"github.com/jetsetilly/gophercell/hardware/spu/mfc"
)

// ReadChannel is used by the rdch instruction. Returns false if the channel
// read could not complete, either because the wait was cancelled or because
// the read was a protocol violation. In both cases the instruction must have
// no effect.
func (c *Core) ReadChannel(id channels.ID) (uint32, bool) {
	if id.Direction() != channels.Read {
		c.illegalChannel("read", id)
		return 0, false
	}

	var v uint32
	ok := true

	switch id {
	case channels.RdEventStat:
		v, ok = c.block.ReadEventStat()
	case channels.RdSigNotify1:
		v, ok = c.block.ReadSignal(0)
	case channels.RdSigNotify2:
		v, ok = c.block.ReadSignal(1)
	case channels.RdDec:
		v = c.block.ReadDecrementer()
	case channels.RdEventMask:
		v = c.block.EventMask()
	case channels.RdTagMask:
		v = c.block.TagMask()
	case channels.RdMachStat:
		if c.interrupts {
			v = 1
		}
	case channels.RdSRR0:
		v = c.block.SRR0()
	case channels.RdTagStat:
		v, ok = c.block.ReadTagStatus()
	case channels.RdListStallStat:
		v, ok = c.block.ReadStallStatus()
	case channels.RdAtomicStat:
		v, ok = c.block.ReadAtomicStatus()
	case channels.RdInMbox:
		v, ok = c.block.ReadInMbox()
	}

	if !ok {
		c.yield()
	}
	return v, ok
}

// WriteChannel is used by the wrch instruction. Returns false if the channel
// write could not complete. See ReadChannel() for details.
func (c *Core) WriteChannel(id channels.ID, v uint32) bool {
	if id.Direction() != channels.Write {
		c.illegalChannel("write", id)
		return false
	}

	switch id {
	case channels.WrEventMask:
		c.block.SetEventMask(v)
	case channels.WrEventAck:
		c.block.AckEvents(v)
	case channels.WrDec:
		c.block.WriteDecrementer(v)
	case channels.WrMSSyncReq:
		c.block.RequestMSSync()
	case channels.WrSRR0:
		c.block.SetSRR0(v & localstore.Mask &^ 3)
	case channels.MFCLSA:
		c.mfcArgs.LSA = v & localstore.Mask
	case channels.MFCEAH:
		c.mfcArgs.EA = uint64(v)<<32 | c.mfcArgs.EA&0xffffffff
	case channels.MFCEAL:
		c.mfcArgs.EA = c.mfcArgs.EA&^0xffffffff | uint64(v)
	case channels.MFCSize:
		c.mfcArgs.Size = v & 0xffff
	case channels.MFCTagID:
		c.mfcArgs.Tag = uint8(v & (mfc.NumTags - 1))
	case channels.MFCCmd:
		return c.issue(mfc.Opcode(v))
	case channels.WrTagMask:
		c.block.SetTagMask(v)
	case channels.WrTagUpdate:
		if v > channels.TagUpdateAll {
			c.Fault(faults.ProtocolViolation, fmt.Sprintf("%s: illegal tag update mode %d", id, v), 0)
			return false
		}
		c.block.SetTagUpdate(v)
	case channels.WrListStallAck:
		c.mfc.AckStall(v)
	case channels.WrOutMbox:
		if !c.block.WriteOutMbox(v) {
			c.yield()
			return false
		}
	case channels.WrOutIntrMbox:
		return c.writeOutIntrMbox(v)
	}

	return true
}

// ChannelCount is used by the rchcnt instruction.
func (c *Core) ChannelCount(id channels.ID) uint32 {
	switch id {
	case channels.RdEventStat:
		return c.block.EventCount()
	case channels.RdSigNotify1:
		return c.block.SignalCount(0)
	case channels.RdSigNotify2:
		return c.block.SignalCount(1)
	case channels.MFCCmd:
		return c.mfc.Space()
	case channels.RdTagStat:
		return c.block.TagStatusCount()
	case channels.RdListStallStat:
		return c.block.StallCount()
	case channels.RdAtomicStat:
		return c.block.AtomicCount()
	case channels.WrOutMbox:
		return c.block.OutMboxSpace()
	case channels.RdInMbox:
		return c.block.InMboxCount()
	case channels.WrOutIntrMbox:
		return c.block.OutIntrMboxSpace()
	}

	if id.Direction() == channels.Illegal {
		c.illegalChannel("count", id)
		return 0
	}

	// single slot channels are always available
	return 1
}

func (c *Core) illegalChannel(access string, id channels.ID) {
	c.Fault(faults.IllegalChannel, fmt.Sprintf("%s of %s", access, id), uint64(id))
}

// issue the command described by the MFC parameter channels. blocks while the
// command queue is full
func (c *Core) issue(op mfc.Opcode) bool {
	cmd := c.mfcArgs
	cmd.Opcode = op

	for {
		ok, err := c.mfc.Issue(cmd)
		if err != nil {
			c.Fault(faults.ProtocolViolation, err.Error(), cmd.EA)
			return false
		}
		if ok {
			return true
		}
		if !c.block.Wait(func() bool { return c.mfc.Space() > 0 }) {
			c.yield()
			return false
		}
	}
}

// writes to the interrupt mailbox go to the supervisor if there is one.
// otherwise the mailbox is an ordinary FIFO
func (c *Core) writeOutIntrMbox(v uint32) bool {
	s := c.currentSupervisor()
	if s == nil {
		if !c.block.WriteOutIntrMbox(v) {
			c.yield()
			return false
		}
		return true
	}

	ok, err := s.InterruptMailbox(c, v)
	if err != nil {
		c.Fault(faults.BridgeViolation, err.Error(), uint64(v))
		return false
	}
	if !ok {
		c.yield()
	}
	return ok
}
