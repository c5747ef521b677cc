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
	"context"

	"github.com/jetsetilly/gophercell/hardware/spu/channels"
	"github.com/jetsetilly/gophercell/hardware/spu/faults"
	"github.com/jetsetilly/gophercell/hardware/spu/mfc"
	"github.com/jetsetilly/gophercell/hardware/spu/registers"
)

// WriteInMbox writes a value to the inbound mailbox of the core, waiting for
// space if necessary.
func (c *Core) WriteInMbox(ctx context.Context, v uint32) error {
	return c.block.WaitPushInMbox(ctx, v)
}

// TryWriteInMbox writes a value to the inbound mailbox without waiting.
// Returns false if the mailbox is full.
func (c *Core) TryWriteInMbox(v uint32) bool {
	return c.block.PushInMbox(v)
}

// ReadOutMbox reads the outbound mailbox of the core, waiting for a value if
// necessary.
func (c *Core) ReadOutMbox(ctx context.Context) (uint32, error) {
	return c.block.WaitPopOutMbox(ctx)
}

// TryReadOutMbox reads the outbound mailbox without waiting.
func (c *Core) TryReadOutMbox() (uint32, bool) {
	return c.block.PopOutMbox()
}

// ReadOutIntrMbox reads the outbound interrupt mailbox of the core, waiting
// for a value if necessary.
func (c *Core) ReadOutIntrMbox(ctx context.Context) (uint32, error) {
	return c.block.WaitPopOutIntrMbox(ctx)
}

// SetConfig sets the configuration word of the core. Bit 0 selects OR mode for
// signal-notify register 1 and bit 1 for signal-notify register 2.
func (c *Core) SetConfig(config uint32) {
	c.block.SetSignalMode(0, config&0x01 != 0)
	c.block.SetSignalMode(1, config&0x02 != 0)
}

// Config returns the configuration word of the core.
func (c *Core) Config() uint32 {
	return signalConfig([2]bool{c.block.SignalMode(0), c.block.SignalMode(1)})
}

// WriteLS copies bytes into the local store of the core. Addresses wrap at the
// end of the local store.
func (c *Core) WriteLS(addr uint32, p []byte) {
	c.ls.Write(addr, p)
}

// ReadLS copies bytes from the local store of the core.
func (c *Core) ReadLS(addr uint32, p []byte) {
	c.ls.Read(addr, p)
}

// Snapshot is a copy of the state of a core for diagnostic purposes.
type Snapshot struct {
	Label      string
	PC         uint32
	Interrupts bool
	StopCode   uint32
	Report     Report
	Backend    string
	GPR        registers.File
	Channels   channels.State
	Faults     []faults.Entry

	// outstanding MFC commands and the reservation held by the core
	Outstanding     int
	Reservation     uint32
	ReservationHeld bool

	LocalStore []byte
}

// Snapshot quiesces the core momentarily and takes a copy of its state. The
// core does not need to be stopped.
func (c *Core) Snapshot(ctx context.Context) (*Snapshot, error) {
	c.Pause()
	defer c.Resume()

	release, err := c.quiesce(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	s := &Snapshot{
		Label:       c.label,
		PC:          c.pc,
		Interrupts:  c.interrupts,
		StopCode:    c.stopCode,
		Report:      c.Status(),
		GPR:         c.GPR,
		Channels:    c.block.State(),
		Faults:      c.faults.Log(),
		Outstanding: c.mfc.Outstanding(),
		LocalStore:  c.ls.Snapshot(),
	}
	if b := c.Backend(); b != nil {
		s.Backend = b.String()
	}
	s.Reservation, s.ReservationHeld = c.mfc.Reservation().Held()

	return s, nil
}

// Restore the architectural state of a stopped core from a snapshot. The
// channel block and the MFC are reset.
func (c *Core) Restore(s *Snapshot) {
	c.Reset()
	c.GPR = s.GPR
	c.pc = s.PC
	c.interrupts = s.Interrupts
	c.stopCode = s.StopCode
	c.ls.Write(0, s.LocalStore)
	c.block.SetEventMask(s.Channels.EventMask)
	c.block.SetTagMask(s.Channels.TagMask)
	c.block.SetSRR0(s.Channels.SRR0)
	c.SetConfig(signalConfig(s.Channels.SignalOr))
}

func signalConfig(or [2]bool) uint32 {
	var config uint32
	if or[0] {
		config |= 0x01
	}
	if or[1] {
		config |= 0x02
	}
	return config
}

// Issue an MFC command on behalf of the host. Used by tests and by the script
// interface to drive the DMA engine without a program. The core must not be
// running.
func (c *Core) Issue(cmd mfc.Command) (bool, error) {
	return c.mfc.Issue(cmd)
}

// Segment of a program image.
type Segment struct {
	Addr uint32
	Data []byte
}

// Image is a program ready to be placed in the local store of a core.
type Image struct {
	Entry    uint32
	Segments []Segment
}

// Size returns the number of bytes covered by the segments of the image.
func (img *Image) Size() int {
	var n int
	for _, s := range img.Segments {
		n += len(s.Data)
	}
	return n
}

// Load the image into the local store and set the PC to the entry point. The
// core must not be running. The local store is cleared first.
func (c *Core) Load(img *Image) {
	c.ls.Clear()
	for _, s := range img.Segments {
		c.ls.Write(s.Addr, s.Data)
	}
	c.SetPC(img.Entry)
}
