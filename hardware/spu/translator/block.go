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
	"sync/atomic"

	"github.com/jetsetilly/gophercell/hardware/spu"
	"github.com/jetsetilly/gophercell/hardware/spu/isa"
	"github.com/jetsetilly/gophercell/hardware/spu/localstore"
)

// a single compiled instruction
type op struct {
	exec func(c *spu.Core)

	// the instruction writes to the local store
	store bool
}

// the write generation of a region at the time the block was compiled or
// last validated
type generation struct {
	region int
	gen    atomic.Uint64
}

// a straight-line run of compiled instructions
type block struct {
	start uint32

	// the instruction words at the time the block was compiled
	words []uint32
	ops   []op
	gens  []generation

	// value of the local store write counter when the block was last known
	// to be valid
	writes atomic.Uint64
}

func (blk *block) end() uint32 {
	return blk.start + uint32(len(blk.words))*4
}

func (blk *block) overlaps(addr uint32, l uint32) bool {
	return addr < blk.end() && addr+l > blk.start
}

func (blk *block) inRegion(region int) bool {
	for i := range blk.gens {
		if blk.gens[i].region == region {
			return true
		}
	}
	return false
}

// stale returns true if any of the regions covered by the block have been
// written to since the block was last validated
func (blk *block) stale(ls *localstore.LocalStore) bool {
	for i := range blk.gens {
		g := &blk.gens[i]
		if ls.Generation(g.region) != g.gen.Load() {
			return true
		}
	}
	return false
}

// validate the block against the current contents of the local store. the
// cheap checks come first: the global write counter, then the generations of
// the regions covered by the block and finally the instruction words
// themselves. if any of the words have changed then every block that overlaps
// the changed words is invalidated
func (cc *Cache) validate(blk *block) bool {
	w := cc.ls.Writes()
	if w == blk.writes.Load() {
		return true
	}

	current := make([]uint64, len(blk.gens))
	changed := false
	for i := range blk.gens {
		current[i] = cc.ls.Generation(blk.gens[i].region)
		if current[i] != blk.gens[i].gen.Load() {
			changed = true
		}
	}

	if changed {
		modified := false
		for i, word := range blk.words {
			addr := blk.start + uint32(i)*4
			if cc.ls.Read32(addr) != word {
				cc.invalidate(addr, 4)
				modified = true
			}
		}
		if modified {
			return false
		}

		// the writes were to other parts of the regions
		for i := range blk.gens {
			blk.gens[i].gen.Store(current[i])
		}
	}

	blk.writes.Store(w)
	return true
}

// compile a block starting at the address
func (t *Translator) compile(cc *Cache, start uint32) (*block, error) {
	ls := cc.ls
	start &= localstore.Mask &^ 3

	// the write counter and the generations are read before the instruction
	// words so that a write that happens during compilation is seen the next
	// time the block is validated
	w := ls.Writes()
	limit := min(start+uint32(t.blockLimit)*4, localstore.Size)
	first := localstore.Region(start)
	last := localstore.Region(limit - 1)
	gens := make([]uint64, last-first+1)
	for r := first; r <= last; r++ {
		gens[r-first] = ls.Generation(r)
	}

	var words []uint32
	for addr := start; addr < limit; addr += 4 {
		// stop at the start of another block
		if addr != start && cc.lookup(addr) != nil {
			break
		}

		word := ls.Read32(addr)
		words = append(words, word)

		defn := isa.Lookup(word)
		if defn == nil || defn.Terminal {
			break
		}
	}

	// blocks that overlap the new block are dropped before the budget is
	// checked. a jump into the middle of a block leaves only the newer block
	// resident
	cc.invalidate(start, uint32(len(words))*4)

	if err := t.reserve(cc, start, len(words)); err != nil {
		return nil, err
	}

	blk := &block{
		start: start,
		words: words,
		ops:   make([]op, len(words)),
	}
	blk.writes.Store(w)

	for i, word := range words {
		blk.ops[i] = compileInstruction(word, start+uint32(i)*4)
	}

	end := localstore.Region(blk.end() - 1)
	blk.gens = make([]generation, end-first+1)
	for r := first; r <= end; r++ {
		blk.gens[r-first].region = r
		blk.gens[r-first].gen.Store(gens[r-first])
	}

	cc.install(blk)

	return blk, nil
}

// compile a single instruction into a closure. the PC is the address of the
// instruction
func compileInstruction(word uint32, pc uint32) op {
	defn := isa.Lookup(word)
	if defn == nil {
		return op{exec: func(c *spu.Core) {
			isa.Illegal(c, word)
		}}
	}

	f := isa.Fields(word)
	o := op{store: defn.Effect == isa.Store}

	if compile, ok := specialised[defn.Mnemonic]; ok {
		o.exec = compile(f, pc)
		return o
	}

	execute := defn.Execute
	o.exec = func(c *spu.Core) {
		execute(c, f)
	}
	return o
}
