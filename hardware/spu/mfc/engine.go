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
	"github.com/jetsetilly/gophercell/curated"
	"github.com/jetsetilly/gophercell/hardware/spu/channels"
	"github.com/jetsetilly/gophercell/hardware/spu/localstore"
	"github.com/jetsetilly/gophercell/logger"
)

// InconsistentQueue is returned by Step() when the queue counters no longer
// agree with the queue contents. The error is fatal to the whole machine.
const InconsistentQueue = "mfc: inconsistent queue: core %d: %s"

// TransferFailed wraps the error from the memory collaborator.
const TransferFailed = "mfc: %v: %v"

// maximum number of list elements processed by a single call to Step()
const elementsPerStep = 16

// drain the submission ring into the active list
func (m *MFC) drain() {
	for {
		cmd, ok := m.submit.pop()
		if !ok {
			return
		}
		m.active = append(m.active, &entry{cmd: cmd})
	}
}

// apply stall acknowledgements from the core
func (m *MFC) acknowledge() bool {
	acks := m.acks.Swap(0)
	if acks == 0 {
		return false
	}

	var progress bool
	for tag := range uint32(NumTags) {
		if acks&(1<<tag) == 0 {
			continue
		}
		var found bool
		for _, e := range m.active {
			if e.stalled && uint32(e.cmd.Tag) == tag {
				e.stalled = false
				found = true
				progress = true
				break
			}
		}
		if !found {
			logger.Logf(logger.Allow, "mfc", "core %d: stall acknowledgement for tag %d with no stalled list", m.port.ID(), tag)
		}
	}
	return progress
}

// Step advances the queue by executing the first eligible command. Called by
// the coordinator goroutine only.
//
// Returns true if anything happened. A protocol violation by a command is
// reported to the core through the Port and is not returned. The error
// returned is an engine fault.
func (m *MFC) Step() (bool, error) {
	m.drain()
	progress := m.acknowledge()

	// tags of commands earlier in the queue
	var earlier uint32

	// tags held back by a barrier flagged command that is not at the head
	var held uint32

	for i, e := range m.active {
		bit := uint32(1) << e.cmd.Tag

		if e.cmd.Kind() == KindBarrier {
			if i == 0 {
				return true, m.complete(0)
			}
			break
		}

		eligible := !e.stalled && held&bit == 0
		if e.cmd.Barrier() && i != 0 {
			eligible = false
			held |= bit
		}
		if e.cmd.Fence() && earlier&bit != 0 {
			eligible = false
		}
		earlier |= bit

		if eligible {
			return true, m.execute(i)
		}
	}

	return progress, nil
}

// execute the command at the index in the active list
func (m *MFC) execute(i int) error {
	e := m.active[i]

	var err error
	var done bool

	switch {
	case e.cmd.List():
		done, err = m.list(e)
	case e.cmd.Kind() == KindPutQLLUC:
		err = m.putqlluc(e.cmd)
		done = true
	default:
		err = m.transfer(e.cmd.Opcode, e.cmd.LSA, e.cmd.EA, e.cmd.Size)
		done = true
	}

	if err != nil {
		logger.Logf(logger.Allow, "mfc", "core %d: %v", m.port.ID(), err)
		m.port.DMAFault(err)
		return m.abort()
	}

	if done {
		return m.complete(i)
	}
	return nil
}

// complete removes the command at the index from the active list
func (m *MFC) complete(i int) error {
	e := m.active[i]
	m.active = append(m.active[:i], m.active[i+1:]...)
	return m.retire(e.cmd)
}

func (m *MFC) retire(cmd Command) error {
	t := m.tags[cmd.Tag].Add(-1)
	q := m.queued.Add(-1)
	if t < 0 {
		return curated.Errorf(InconsistentQueue, m.port.ID(), "negative tag count")
	}
	if q < 0 {
		return curated.Errorf(InconsistentQueue, m.port.ID(), "negative queue count")
	}
	if t == 0 {
		m.port.TagsUpdated()
	}
	m.port.QueueVacancy()
	return nil
}

// abort drops every queued command. used after a protocol violation
func (m *MFC) abort() error {
	m.drain()
	active := m.active
	m.active = m.active[:0]
	m.stall.Store(0)
	m.acks.Store(0)
	for _, e := range active {
		if err := m.retire(e.cmd); err != nil {
			return err
		}
	}
	return nil
}

// list executes elements of a list command until the list is exhausted or a
// stall-and-notify element is reached. Returns true if the list is complete.
func (m *MFC) list(e *entry) (bool, error) {
	ls := m.port.LocalStore()
	eah := e.cmd.EA &^ 0xffffffff

	for n := 0; n < elementsPerStep && e.cmd.Size > 0; n++ {
		addr := uint32(e.cmd.EA) & localstore.Mask
		hdr := ls.Read32(addr)
		eal := ls.Read32(addr + 4)

		stall := hdr&0x80000000 != 0
		size := hdr & 0x7fff
		ea := eah | uint64(eal)

		lsa := e.cmd.LSA
		if size < 16 {
			lsa |= eal & 0xf
		}

		if err := checkTransfer(e.cmd.Opcode, lsa, ea, size); err != nil {
			return false, curated.Errorf(IllegalElement, addr, err)
		}
		if err := m.transfer(e.cmd.Opcode, lsa, ea, size); err != nil {
			return false, curated.Errorf(IllegalElement, addr, err)
		}

		e.cmd.LSA = (e.cmd.LSA + max(size, 16)) & localstore.Mask
		e.cmd.EA = eah | uint64(uint32(e.cmd.EA)+ListElementSize)
		e.cmd.Size -= ListElementSize

		if stall && e.cmd.Size > 0 {
			e.stalled = true
			m.stall.Or(1 << e.cmd.Tag)
			m.port.RaiseEvent(channels.EventSN)
			return false, nil
		}
	}

	return e.cmd.Size == 0, nil
}

// transfer copies bytes between the local store and the target of the
// effective address. puts, gets and signals are distinguished by the opcode
func (m *MFC) transfer(op Opcode, lsa uint32, ea uint64, size uint32) error {
	if size == 0 {
		return nil
	}

	kind := opcodes[op].kind
	ls := m.port.LocalStore()
	t := m.sys.classify(m.port.ID(), ea, size)
	buf := m.scratch[:size]

	switch t.Kind {
	case MainMemory:
		if kind == KindSignal {
			break
		}
		if kind == KindGet {
			if err := m.sys.Memory.Read(t.Addr, buf); err != nil {
				return curated.Errorf(TransferFailed, op, err)
			}
			ls.Write(lsa, buf)
			return nil
		}
		ls.Read(lsa, buf)
		if err := m.sys.Memory.Write(t.Addr, buf); err != nil {
			return curated.Errorf(TransferFailed, op, err)
		}
		if m.sys.Reservations != nil {
			m.sys.Reservations.Touch(t.Addr, int(size))
		}
		return nil

	case PeerLocalStore:
		if kind == KindSignal {
			break
		}
		peer := t.Peer.LocalStore()
		if kind == KindGet {
			peer.Read(t.Addr, buf)
			ls.Write(lsa, buf)
		} else {
			ls.Read(lsa, buf)
			peer.Write(t.Addr, buf)
		}
		return nil

	case PeerSignal:
		if kind == KindGet || size != 4 {
			break
		}
		t.Peer.WriteSignal(t.Signal, ls.Read32(lsa))
		return nil
	}

	return curated.Errorf(IllegalTarget, op, ea)
}
