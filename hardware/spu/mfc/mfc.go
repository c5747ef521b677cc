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

package mfc

import (
	"sync/atomic"

	"github.com/jetsetilly/gophercell/assert"
	"github.com/jetsetilly/gophercell/hardware/memory/reservation"
	"github.com/jetsetilly/gophercell/hardware/spu/localstore"
)

// QueueDepth is the number of commands that can be outstanding.
const QueueDepth = 16

// NumTags is the number of tag groups.
const NumTags = 32

// Port is how the MFC reaches the core that owns it.
//
// RaiseEvent(), TagsUpdated() and QueueVacancy() are called by the
// coordinator goroutine and by the reservation table. DMAFault() is called by
// the coordinator when a queued command turns out to be a protocol violation.
type Port interface {
	ID() int
	LocalStore() *localstore.LocalStore
	RaiseEvent(bits uint32)
	TagsUpdated()
	QueueVacancy()
	SetAtomicStatus(v uint32)
	DMAFault(err error)
}

// System is the part of the machine shared by every MFC.
type System struct {
	Memory       Memory
	Reservations *reservation.Table
	Resolver     Resolver
}

// entry in the active list. owned by the coordinator
type entry struct {
	cmd     Command
	stalled bool
}

// MFC is the DMA engine of a single core.
//
// Commands are submitted by the core goroutine and executed by the
// coordinator goroutine through Step(). The counters that the core reads
// (queue occupancy, outstanding commands per tag, list stall bits) are
// atomic.
type MFC struct {
	sys  *System
	port Port

	owner  assert.Owner
	submit *ring

	queued atomic.Int32
	tags   [NumTags]atomic.Int32
	stall  atomic.Uint32
	acks   atomic.Uint32

	// the following fields are only accessed by the coordinator
	active  []*entry
	scratch [MaxTransfer]byte

	rsv Reservation
}

// NewMFC is the preferred method of initialisation for the MFC type.
func NewMFC(sys *System, port Port) *MFC {
	m := &MFC{
		sys:    sys,
		port:   port,
		submit: newRing(QueueDepth),
		active: make([]*entry, 0, QueueDepth),
	}
	m.rsv.port = port
	return m
}

// Issue a command. Called by the core goroutine only.
//
// Atomic commands other than PUTQLLUC are executed immediately and their
// result written to the atomic status channel. Other commands are queued.
//
// Returns false if the queue is full, in which case the caller should wait
// for space and issue the command again. An error is a protocol violation.
func (m *MFC) Issue(cmd Command) (bool, error) {
	cmd.Tag &= NumTags - 1
	if err := cmd.Validate(); err != nil {
		return false, err
	}

	switch cmd.Kind() {
	case KindGetLLAR:
		return true, m.getllar(cmd)
	case KindPutLLC:
		return true, m.putllc(cmd)
	case KindPutLLUC:
		return true, m.putlluc(cmd)
	}

	m.owner.Claim("mfc command queue")
	defer m.owner.Release()

	if m.queued.Load() >= QueueDepth {
		return false, nil
	}

	// counters are updated before the command is visible to the coordinator
	m.queued.Add(1)
	m.tags[cmd.Tag].Add(1)
	if !m.submit.push(cmd) {
		m.queued.Add(-1)
		m.tags[cmd.Tag].Add(-1)
		return false, nil
	}

	return true, nil
}

// Space returns the number of free slots in the queue.
func (m *MFC) Space() uint32 {
	n := QueueDepth - m.queued.Load()
	if n < 0 {
		return 0
	}
	return uint32(n)
}

// Outstanding returns the number of queued commands that have not completed.
func (m *MFC) Outstanding() int {
	return int(m.queued.Load())
}

// Idle returns true if there are no outstanding commands.
func (m *MFC) Idle() bool {
	return m.queued.Load() == 0
}

// CompletedTags returns a bit mask of the tag groups with no outstanding
// commands.
func (m *MFC) CompletedTags() uint32 {
	var mask uint32
	for i := range m.tags {
		if m.tags[i].Load() == 0 {
			mask |= 1 << i
		}
	}
	return mask
}

// StallStatus returns the tag groups with a list stalled at a
// stall-and-notify element.
func (m *MFC) StallStatus() uint32 {
	return m.stall.Load()
}

// TakeStallStatus returns and clears the stall status.
func (m *MFC) TakeStallStatus() uint32 {
	return m.stall.Swap(0)
}

// AckStall acknowledges a stalled list. The list resumes the next time the
// coordinator steps the MFC.
func (m *MFC) AckStall(tag uint32) {
	m.acks.Or(1 << (tag & (NumTags - 1)))
}

// Reservation returns the reservation state of the core.
func (m *MFC) Reservation() *Reservation {
	return &m.rsv
}
