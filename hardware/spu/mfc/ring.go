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
)

type slot struct {
	sequence atomic.Uint64
	cmd      Command
}

// ring is a bounded queue of commands with one producer (the core goroutine)
// and one consumer (the coordinator). Each slot carries a sequence number
// that says whether it is ready for the producer or for the consumer, so
// neither side takes a lock.
type ring struct {
	mask uint64

	_    [48]byte
	head atomic.Uint64
	_    [48]byte
	tail atomic.Uint64
	_    [48]byte

	slots []slot
}

// capacity must be a power of two
func newRing(capacity uint64) *ring {
	if capacity < 2 || capacity&(capacity-1) != 0 {
		panic("mfc: ring capacity must be a power of two")
	}
	r := &ring{
		mask:  capacity - 1,
		slots: make([]slot, capacity),
	}
	for i := range r.slots {
		r.slots[i].sequence.Store(uint64(i))
	}
	return r
}

// push returns false if the ring is full
func (r *ring) push(cmd Command) bool {
	pos := r.tail.Load()
	s := &r.slots[pos&r.mask]
	if s.sequence.Load() != pos {
		return false
	}
	s.cmd = cmd
	s.sequence.Store(pos + 1)
	r.tail.Store(pos + 1)
	return true
}

// pop returns false if the ring is empty
func (r *ring) pop() (Command, bool) {
	pos := r.head.Load()
	s := &r.slots[pos&r.mask]
	if s.sequence.Load() != pos+1 {
		return Command{}, false
	}
	cmd := s.cmd
	s.cmd = Command{}
	s.sequence.Store(pos + r.mask + 1)
	r.head.Store(pos + 1)
	return cmd, true
}
