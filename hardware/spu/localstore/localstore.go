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

// Package localstore implements the private memory of a core.
//
// The local store is written by the owning core, by the DMA coordinator
// (transfers into the local store from main memory or from a peer) and by the
// host. Storage is a slice of atomic words so that these writers never race
// with each other or with the executing core. Accesses are atomic at a word
// granularity.
//
// Every write bumps the generation counter of each region it touches and a
// single store-wide write counter. The code cache uses the counters to decide
// cheaply whether a compiled block might have been overwritten.
package localstore

import (
	"encoding/binary"
	"sync/atomic"
)

// Size of the local store in bytes.
const Size = 0x40000

// Mask is applied to every local store address.
const Mask = Size - 1

// RegionSize is the granularity of generation tracking.
const RegionSize = 0x400

// NumRegions in the local store.
const NumRegions = Size / RegionSize

// LocalStore is a 256KiB memory.
type LocalStore struct {
	words  [Size / 4]atomic.Uint32
	gens   [NumRegions]atomic.Uint64
	writes atomic.Uint64
}

// NewLocalStore is the preferred method of initialisation for the LocalStore
// type.
func NewLocalStore() *LocalStore {
	return &LocalStore{}
}

// Region returns the region number for an address.
func Region(addr uint32) int {
	return int((addr & Mask) / RegionSize)
}

// Read32 returns the word at the address. The address is aligned down to a
// word boundary.
func (ls *LocalStore) Read32(addr uint32) uint32 {
	return ls.words[(addr&Mask)>>2].Load()
}

// Write32 stores a word at the address. The address is aligned down to a word
// boundary.
func (ls *LocalStore) Write32(addr uint32, v uint32) {
	addr &= Mask
	ls.words[addr>>2].Store(v)
	ls.touch(addr, 4)
}

// ReadQuad returns the quadword at the address. The address is aligned down to
// a quadword boundary.
func (ls *LocalStore) ReadQuad(addr uint32) [16]byte {
	var q [16]byte
	w := (addr & Mask &^ 15) >> 2
	for i := range uint32(4) {
		binary.BigEndian.PutUint32(q[i*4:], ls.words[w+i].Load())
	}
	return q
}

// WriteQuad stores a quadword at the address. The address is aligned down to a
// quadword boundary.
func (ls *LocalStore) WriteQuad(addr uint32, q [16]byte) {
	addr = addr & Mask &^ 15
	w := addr >> 2
	for i := range uint32(4) {
		ls.words[w+i].Store(binary.BigEndian.Uint32(q[i*4:]))
	}
	ls.touch(addr, 16)
}

// Read copies len(p) bytes starting at the address into p. Reads wrap around
// at the end of the local store.
func (ls *LocalStore) Read(addr uint32, p []byte) {
	addr &= Mask
	for len(p) > 0 {
		w := ls.words[addr>>2].Load()
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], w)
		n := copy(p, b[addr&3:])
		p = p[n:]
		addr = (addr + uint32(n)) & Mask
	}
}

// Write copies p into the local store starting at the address. Writes wrap
// around at the end of the local store.
func (ls *LocalStore) Write(addr uint32, p []byte) {
	addr &= Mask
	start := addr
	l := len(p)

	for len(p) > 0 {
		off := addr & 3
		if off == 0 && len(p) >= 4 {
			ls.words[addr>>2].Store(binary.BigEndian.Uint32(p))
			p = p[4:]
			addr = (addr + 4) & Mask
			continue
		}

		// partial word. merge with the existing contents
		n := min(4-int(off), len(p))
		w := &ls.words[addr>>2]
		for {
			old := w.Load()
			var b [4]byte
			binary.BigEndian.PutUint32(b[:], old)
			copy(b[off:], p[:n])
			if w.CompareAndSwap(old, binary.BigEndian.Uint32(b[:])) {
				break
			}
		}
		p = p[n:]
		addr = (addr + uint32(n)) & Mask
	}

	ls.touch(start, l)
}

// touch bumps the generation of every region in the range and the write
// counter
func (ls *LocalStore) touch(addr uint32, l int) {
	if l <= 0 {
		return
	}
	if l >= Size {
		for i := range ls.gens {
			ls.gens[i].Add(1)
		}
	} else {
		first := Region(addr)
		last := Region(addr + uint32(l) - 1)
		for r := first; ; r = (r + 1) % NumRegions {
			ls.gens[r].Add(1)
			if r == last {
				break
			}
		}
	}
	ls.writes.Add(1)
}

// Generation returns the write generation of a region.
func (ls *LocalStore) Generation(region int) uint64 {
	return ls.gens[region].Load()
}

// Writes returns the number of writes made to the local store. The value only
// ever increases.
func (ls *LocalStore) Writes() uint64 {
	return ls.writes.Load()
}

// Snapshot returns a copy of the entire local store.
func (ls *LocalStore) Snapshot() []byte {
	b := make([]byte, Size)
	for i := range ls.words {
		binary.BigEndian.PutUint32(b[i*4:], ls.words[i].Load())
	}
	return b
}

// Clear sets every byte of the local store to zero.
func (ls *LocalStore) Clear() {
	for i := range ls.words {
		ls.words[i].Store(0)
	}
	ls.touch(0, Size)
}
