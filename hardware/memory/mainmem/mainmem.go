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

// Package mainmem implements the main memory shared by every core and by the
// host. Cores never access main memory directly. They reach it through DMA
// transfers and the atomic reservation commands of the MFC.
//
//	   core 0 ---- MFC ----\
//	                        \
//	   core 1 ---- MFC ------*---- main memory ---- host
//	                        /          |
//	   core n ---- MFC ----/           |
//	                            reservation table
//
// Main memory is sparse. Pages must be mapped before they can be accessed.
// Accessing an unmapped page is an error, which the MFC reports as a protocol
// violation of the issuing core.
//
// Every page has its own lock so that transfers to unrelated pages do not
// contend.
package mainmem

import (
	"sync"

	"github.com/jetsetilly/gophercell/curated"
)

// PageSize is the mapping granularity.
const PageSize = 0x1000

// Sentinel error patterns returned by main memory.
const (
	UnmappedAddress = "main memory: unmapped address: %#08x"
	MappingOverflow = "main memory: mapping overflows address space: %#08x + %#x"
)

type page struct {
	crit sync.Mutex
	data [PageSize]byte
}

// Memory is the sparse main memory.
type Memory struct {
	crit  sync.RWMutex
	pages map[uint32]*page
}

// NewMemory is the preferred method of initialisation for the Memory type.
func NewMemory() *Memory {
	return &Memory{
		pages: make(map[uint32]*page),
	}
}

// Map allocates the pages covering the address range. Pages that are already
// mapped are left untouched.
func (mem *Memory) Map(addr uint32, size uint32) error {
	if size == 0 {
		return nil
	}
	end := uint64(addr) + uint64(size)
	if end > 1<<32 {
		return curated.Errorf(MappingOverflow, addr, size)
	}

	mem.crit.Lock()
	defer mem.crit.Unlock()

	for p := uint64(addr &^ (PageSize - 1)); p < end; p += PageSize {
		if _, ok := mem.pages[uint32(p)]; !ok {
			mem.pages[uint32(p)] = &page{}
		}
	}

	return nil
}

// Mapped returns true if every page of the address range is mapped.
func (mem *Memory) Mapped(addr uint32, size uint32) bool {
	mem.crit.RLock()
	defer mem.crit.RUnlock()

	end := uint64(addr) + uint64(size)
	for p := uint64(addr &^ (PageSize - 1)); p < end; p += PageSize {
		if _, ok := mem.pages[uint32(p)]; !ok {
			return false
		}
	}
	return true
}

// access calls f for every page segment of the address range. the page lock is
// held for the duration of each call. no page is touched if any page in the
// range is unmapped.
func (mem *Memory) access(addr uint32, l int, f func(pg *page, off uint32, n int, done int)) error {
	if l == 0 {
		return nil
	}
	if uint64(addr)+uint64(l) > 1<<32 {
		return curated.Errorf(UnmappedAddress, addr)
	}

	mem.crit.RLock()
	segs := make([]*page, 0, l/PageSize+2)
	for p := uint64(addr &^ (PageSize - 1)); p < uint64(addr)+uint64(l); p += PageSize {
		pg, ok := mem.pages[uint32(p)]
		if !ok {
			mem.crit.RUnlock()
			return curated.Errorf(UnmappedAddress, max(uint32(p), addr))
		}
		segs = append(segs, pg)
	}
	mem.crit.RUnlock()

	done := 0
	for _, pg := range segs {
		off := (addr + uint32(done)) & (PageSize - 1)
		n := min(l-done, PageSize-int(off))
		pg.crit.Lock()
		f(pg, off, n, done)
		pg.crit.Unlock()
		done += n
	}

	return nil
}

// Read copies len(p) bytes from main memory into p.
func (mem *Memory) Read(addr uint32, p []byte) error {
	return mem.access(addr, len(p), func(pg *page, off uint32, n int, done int) {
		copy(p[done:done+n], pg.data[off:])
	})
}

// Write copies p into main memory.
func (mem *Memory) Write(addr uint32, p []byte) error {
	return mem.access(addr, len(p), func(pg *page, off uint32, n int, done int) {
		copy(pg.data[off:], p[done:done+n])
	})
}

// Read32 is a convenience function to read a big-endian word.
func (mem *Memory) Read32(addr uint32) (uint32, error) {
	var b [4]byte
	if err := mem.Read(addr, b[:]); err != nil {
		return 0, err
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

// Write32 is a convenience function to write a big-endian word.
func (mem *Memory) Write32(addr uint32, v uint32) error {
	return mem.Write(addr, []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}
