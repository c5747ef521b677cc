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

package translator

import (
	"sync"
	"sync/atomic"

	"github.com/jetsetilly/gophercell/hardware/spu/localstore"
	"github.com/jetsetilly/gophercell/logger"
)

// index of the blocks that overlap a region of the local store. entries may
// be stale and are removed when they are next seen
type regionIndex struct {
	crit   sync.Mutex
	starts map[uint32]struct{}
}

// Cache of compiled blocks for one local store. Blocks are found by the
// address of their first instruction.
//
// The entry for each word address is an atomic pointer so the lookup on the
// execution path takes no locks. The region index is only used when a block is
// installed or when modified bytes are found and blocks need to be
// invalidated.
type Cache struct {
	ls *localstore.LocalStore

	entries [localstore.Size / 4]atomic.Pointer[block]
	regions [localstore.NumRegions]regionIndex

	// number of instructions in installed blocks
	resident atomic.Int64

	// statistics
	compiled      atomic.Uint64
	invalidations atomic.Uint64
}

// newCache is the preferred method of initialisation for the Cache type.
func newCache(ls *localstore.LocalStore) *Cache {
	cc := &Cache{ls: ls}
	for i := range cc.regions {
		cc.regions[i].starts = make(map[uint32]struct{})
	}
	return cc
}

func (cc *Cache) lookup(addr uint32) *block {
	return cc.entries[(addr&localstore.Mask)>>2].Load()
}

func (cc *Cache) install(blk *block) {
	if old := cc.entries[blk.start>>2].Swap(blk); old != nil {
		cc.resident.Add(-int64(len(old.ops)))
	}
	cc.resident.Add(int64(len(blk.ops)))
	cc.compiled.Add(1)

	for _, g := range blk.gens {
		idx := &cc.regions[g.region]
		idx.crit.Lock()
		idx.starts[blk.start] = struct{}{}
		idx.crit.Unlock()
	}
}

// invalidate every block that overlaps the address range. returns the number
// of blocks removed
func (cc *Cache) invalidate(addr uint32, l uint32) int {
	var n int

	first := localstore.Region(addr)
	last := localstore.Region(addr + l - 1)
	for r := first; r <= last; r++ {
		idx := &cc.regions[r]
		idx.crit.Lock()
		for start := range idx.starts {
			blk := cc.entries[start>>2].Load()
			if blk == nil || !blk.inRegion(r) {
				delete(idx.starts, start)
				continue
			}
			if !blk.overlaps(addr, l) {
				continue
			}
			if cc.entries[start>>2].CompareAndSwap(blk, nil) {
				cc.resident.Add(-int64(len(blk.ops)))
				n++
			}
			delete(idx.starts, start)
		}
		idx.crit.Unlock()
	}

	if n > 0 {
		cc.invalidations.Add(uint64(n))
		logger.Logf(logger.Allow, "translator", "invalidated %d block(s) overlapping %#05x", n, addr)
	}

	return n
}

// Flush removes every block from the cache.
func (cc *Cache) Flush() {
	for r := range cc.regions {
		idx := &cc.regions[r]
		idx.crit.Lock()
		for start := range idx.starts {
			if blk := cc.entries[start>>2].Swap(nil); blk != nil {
				cc.resident.Add(-int64(len(blk.ops)))
			}
		}
		clear(idx.starts)
		idx.crit.Unlock()
	}
}

// Stats is a summary of the activity of a Cache.
type Stats struct {
	Resident      int64
	Compiled      uint64
	Invalidations uint64
}

// Stats returns a summary of the activity of the cache.
func (cc *Cache) Stats() Stats {
	return Stats{
		Resident:      cc.resident.Load(),
		Compiled:      cc.compiled.Load(),
		Invalidations: cc.invalidations.Load(),
	}
}
