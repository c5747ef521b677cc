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

// Package reservation implements the process-wide table of lock-line
// reservations used by the atomic MFC commands.
//
// A core takes a reservation on a 128 byte line of main memory with GETLLAR.
// The reservation is a record of the line's generation at the time of the
// read. A conditional store (PUTLLC) succeeds only if the line's generation is
// unchanged and the core still holds the reservation. There is therefore at
// most one winner for any generation of a line.
//
// Successful conditional stores and unconditional stores (PUTLLUC and
// PUTQLLUC) advance the generation of the line and cancel the reservations of
// the other holders. Cancelled holders are told through the Holder interface.
//
// Plain DMA puts to main memory advance the generation of the line but do not
// tell the holders. A holder discovers the loss the next time it uses the
// reservation.
//
// The table is sharded and each line has its own lock. The data transfer for
// an atomic command happens inside the line lock, via a callback, so that the
// compare and the store are a single step with respect to every other atomic
// command on that line.
package reservation

import (
	"sync"
)

// LineSize is the size of a reservation line in bytes.
const LineSize = 128

// LineMask clears the offset within a line from an address.
const LineMask = ^uint32(LineSize - 1)

const numShards = 64

// Holder is implemented by anything that can hold a reservation. In practice
// this is the reservation state of a core.
//
// ReservationLost() is called with the line lock held. Implementations must
// not call back into the table.
type Holder interface {
	ReservationLost(line uint32)
}

type entry struct {
	crit    sync.Mutex
	gen     uint64
	holders map[Holder]struct{}
}

type shard struct {
	crit  sync.Mutex
	lines map[uint32]*entry
}

// Table of reservations. Entries are created on first use and are never
// removed, so the generation of a line is never reset.
type Table struct {
	shards [numShards]shard
}

// NewTable is the preferred method of initialisation for the Table type.
func NewTable() *Table {
	tbl := &Table{}
	for i := range tbl.shards {
		tbl.shards[i].lines = make(map[uint32]*entry)
	}
	return tbl
}

func (tbl *Table) lookup(line uint32, create bool) *entry {
	s := &tbl.shards[(line/LineSize)%numShards]
	s.crit.Lock()
	defer s.crit.Unlock()

	e, ok := s.lines[line]
	if !ok && create {
		e = &entry{holders: make(map[Holder]struct{})}
		s.lines[line] = e
	}
	return e
}

// cancel every holder except the one specified. the entry lock must be held
func (e *entry) cancel(line uint32, except Holder) {
	for h := range e.holders {
		if h == except {
			continue
		}
		delete(e.holders, h)
		h.ReservationLost(line)
	}
}

// Acquire registers the holder on the line containing the address and
// returns the generation of the line. The read function is called with the
// line lock held and should copy the line from memory.
//
// If the read function returns an error the reservation is not taken.
func (tbl *Table) Acquire(h Holder, addr uint32, read func() error) (uint64, error) {
	line := addr & LineMask
	e := tbl.lookup(line, true)

	e.crit.Lock()
	defer e.crit.Unlock()

	if err := read(); err != nil {
		return 0, err
	}
	e.holders[h] = struct{}{}
	return e.gen, nil
}

// Release removes the holder from the line without changing the generation.
func (tbl *Table) Release(h Holder, addr uint32) {
	e := tbl.lookup(addr&LineMask, false)
	if e == nil {
		return
	}
	e.crit.Lock()
	defer e.crit.Unlock()
	delete(e.holders, h)
}

// Holds returns true if the holder is registered on the line.
func (tbl *Table) Holds(h Holder, addr uint32) bool {
	e := tbl.lookup(addr&LineMask, false)
	if e == nil {
		return false
	}
	e.crit.Lock()
	defer e.crit.Unlock()
	_, ok := e.holders[h]
	return ok
}

// Generation returns the current generation of the line containing the
// address.
func (tbl *Table) Generation(addr uint32) uint64 {
	e := tbl.lookup(addr&LineMask, false)
	if e == nil {
		return 0
	}
	e.crit.Lock()
	defer e.crit.Unlock()
	return e.gen
}

// Conditional performs the conditional store. The write function is called,
// with the line lock held, only if the line is still at the expected
// generation and the holder is still registered. On success the generation
// advances and every other holder loses its reservation.
//
// The holder is removed from the line whatever the outcome.
func (tbl *Table) Conditional(h Holder, addr uint32, gen uint64, write func() error) (bool, error) {
	line := addr & LineMask
	e := tbl.lookup(line, true)

	e.crit.Lock()
	defer e.crit.Unlock()

	_, held := e.holders[h]
	delete(e.holders, h)

	if !held || e.gen != gen {
		return false, nil
	}

	if err := write(); err != nil {
		return false, err
	}

	e.gen++
	e.cancel(line, h)

	return true, nil
}

// Unconditional performs the unconditional store. The write function is
// always called. The generation advances and every holder loses its
// reservation. The issuing holder, if it had a reservation on the line, loses
// it silently.
func (tbl *Table) Unconditional(h Holder, addr uint32, write func() error) error {
	line := addr & LineMask
	e := tbl.lookup(line, true)

	e.crit.Lock()
	defer e.crit.Unlock()

	if err := write(); err != nil {
		return err
	}

	e.gen++
	delete(e.holders, h)
	e.cancel(line, h)

	return nil
}

// Touch records a plain store to main memory. The generation of every line
// overlapping the range is advanced. Holders are not told. Lines that have
// never been reserved are unaffected.
func (tbl *Table) Touch(addr uint32, size int) {
	if size <= 0 {
		return
	}
	first := addr & LineMask
	last := (addr + uint32(size) - 1) & LineMask
	for line := first; ; line += LineSize {
		if e := tbl.lookup(line, false); e != nil {
			e.crit.Lock()
			e.gen++
			e.crit.Unlock()
		}
		if line == last {
			break
		}
	}
}
