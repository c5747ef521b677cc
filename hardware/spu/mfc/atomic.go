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
	"sync"

	"github.com/jetsetilly/gophercell/curated"
	"github.com/jetsetilly/gophercell/hardware/memory/reservation"
	"github.com/jetsetilly/gophercell/hardware/spu/channels"
)

// Reservation is the lock-line reservation state of one core. It is the
// Holder registered with the reservation table.
//
// The lock order is reservation line, then Reservation, then channel block.
// The table must never be called while the Reservation lock is held.
type Reservation struct {
	port Port

	crit sync.Mutex
	held bool
	line uint32
	gen  uint64
}

// ReservationLost implements the reservation.Holder interface. The loss is
// reported to the core with the LR event.
func (r *Reservation) ReservationLost(line uint32) {
	r.crit.Lock()
	lost := r.held && r.line == line
	if lost {
		r.held = false
	}
	r.crit.Unlock()

	if lost {
		r.port.RaiseEvent(channels.EventLR)
	}
}

// Held returns the line of the current reservation.
func (r *Reservation) Held() (uint32, bool) {
	r.crit.Lock()
	defer r.crit.Unlock()
	return r.line, r.held
}

func (r *Reservation) current() (bool, uint32, uint64) {
	r.crit.Lock()
	defer r.crit.Unlock()
	return r.held, r.line, r.gen
}

func (r *Reservation) clear() {
	r.crit.Lock()
	defer r.crit.Unlock()
	r.held = false
}

// atomic commands must address main memory
func (m *MFC) line(cmd Command) (uint32, error) {
	t := m.sys.classify(m.port.ID(), cmd.EA&^uint64(reservation.LineSize-1), reservation.LineSize)
	if t.Kind != MainMemory {
		return 0, curated.Errorf(IllegalTarget, cmd.Opcode, cmd.EA)
	}
	return t.Addr & reservation.LineMask, nil
}

// getllar loads a line into the local store and takes a reservation on it
func (m *MFC) getllar(cmd Command) error {
	line, err := m.line(cmd)
	if err != nil {
		return err
	}

	// a previous reservation that was lost without the core being told is
	// reported now
	if held, prev, gen := m.rsv.current(); held {
		if m.sys.Reservations.Generation(prev) != gen {
			m.port.RaiseEvent(channels.EventLR)
		}
		m.sys.Reservations.Release(&m.rsv, prev)
		m.rsv.clear()
	}

	var buf [reservation.LineSize]byte
	gen, err := m.sys.Reservations.Acquire(&m.rsv, line, func() error {
		if err := m.sys.Memory.Read(line, buf[:]); err != nil {
			return err
		}
		// the holder is recorded inside the line lock so that a loss can
		// not be missed between acquiring and recording
		m.rsv.crit.Lock()
		m.rsv.held = true
		m.rsv.line = line
		m.rsv.gen = 0
		m.rsv.crit.Unlock()
		return nil
	})
	if err != nil {
		return curated.Errorf(TransferFailed, cmd.Opcode, err)
	}

	m.rsv.crit.Lock()
	if m.rsv.held && m.rsv.line == line {
		m.rsv.gen = gen
	}
	m.rsv.crit.Unlock()

	m.port.LocalStore().Write(cmd.LSA&^uint32(reservation.LineSize-1), buf[:])
	m.port.SetAtomicStatus(AtomicGetLLARSuccess)
	return nil
}

// putllc stores a line from the local store if the reservation is intact
func (m *MFC) putllc(cmd Command) error {
	line, err := m.line(cmd)
	if err != nil {
		return err
	}

	held, rline, gen := m.rsv.current()
	if !held || rline != line {
		if held {
			m.sys.Reservations.Release(&m.rsv, rline)
			m.rsv.clear()
		}
		m.port.SetAtomicStatus(AtomicPutLLCFailure)
		return nil
	}

	var buf [reservation.LineSize]byte
	m.port.LocalStore().Read(cmd.LSA&^uint32(reservation.LineSize-1), buf[:])

	ok, err := m.sys.Reservations.Conditional(&m.rsv, line, gen, func() error {
		return m.sys.Memory.Write(line, buf[:])
	})
	if err != nil {
		return curated.Errorf(TransferFailed, cmd.Opcode, err)
	}

	// the reservation is consumed whatever the outcome. if it was still
	// recorded as held then the loss has not been reported
	m.rsv.crit.Lock()
	unreported := m.rsv.held
	m.rsv.held = false
	m.rsv.crit.Unlock()

	if ok {
		m.port.SetAtomicStatus(AtomicPutLLCSuccess)
		return nil
	}

	if unreported {
		m.port.RaiseEvent(channels.EventLR)
	}
	m.port.SetAtomicStatus(AtomicPutLLCFailure)
	return nil
}

// unconditional store of a line. shared by PUTLLUC and PUTQLLUC
func (m *MFC) unconditional(cmd Command) error {
	line, err := m.line(cmd)
	if err != nil {
		return err
	}

	var buf [reservation.LineSize]byte
	m.port.LocalStore().Read(cmd.LSA&^uint32(reservation.LineSize-1), buf[:])

	err = m.sys.Reservations.Unconditional(&m.rsv, line, func() error {
		return m.sys.Memory.Write(line, buf[:])
	})
	if err != nil {
		return curated.Errorf(TransferFailed, cmd.Opcode, err)
	}

	// a reservation on the stored line is lost silently
	m.rsv.crit.Lock()
	if m.rsv.held && m.rsv.line == line {
		m.rsv.held = false
	}
	m.rsv.crit.Unlock()

	return nil
}

func (m *MFC) putlluc(cmd Command) error {
	if err := m.unconditional(cmd); err != nil {
		return err
	}
	m.port.SetAtomicStatus(AtomicPutLLUCSuccess)
	return nil
}

// putqlluc is the queued form of putlluc. it is executed by the coordinator
// and does not write the atomic status
func (m *MFC) putqlluc(cmd Command) error {
	return m.unconditional(cmd)
}
