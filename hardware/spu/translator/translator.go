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

// Package translator is the compiling execution backend. Straight-line runs of
// instructions are decoded once, compiled into a list of closures and kept in
// a code cache keyed by the address of the first instruction.
//
// The effects of a compiled block are the same as the effects of the same
// instructions run by the interpreter package. Instructions are retired one by
// one through spu.Core.Retire() so faults, stops and host requests are noticed
// at the same points.
//
// Code in the local store can be changed at any time by the program itself, by
// a DMA transfer or by the host. A block is validated every time it is entered
// and is recompiled if the instruction words it was compiled from have
// changed. A store instruction inside a block that writes to one of the
// regions covered by the block ends the block early so the remaining
// instructions are validated before they run.
package translator

import (
	"sync"
	"sync/atomic"

	"github.com/jetsetilly/gophercell/curated"
	"github.com/jetsetilly/gophercell/hardware/spu"
	"github.com/jetsetilly/gophercell/hardware/spu/faults"
	"github.com/jetsetilly/gophercell/hardware/spu/localstore"
)

// Sentinel error patterns.
const (
	CompileBudget = "translator: compile budget of %d instructions exceeded at %#05x"
)

// Default values used by NewTranslator() when a value of zero is given.
const (
	DefaultBlockLimit = 256
	DefaultBudget     = 1 << 16
)

// Translator implements the spu.Backend interface.
type Translator struct {
	blockLimit int
	budget     int

	// one cache for each local store the translator has been used with
	crit   sync.Mutex
	caches map[*localstore.LocalStore]*Cache

	executed atomic.Uint64
}

// NewTranslator is the preferred method of initialisation for the Translator
// type. The blockLimit is the maximum number of instructions in a block and the
// budget is the maximum number of compiled instructions that can be resident
// in the cache of a single core.
func NewTranslator(blockLimit int, budget int) *Translator {
	if blockLimit <= 0 {
		blockLimit = DefaultBlockLimit
	}
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Translator{
		blockLimit: blockLimit,
		budget:     budget,
		caches:     make(map[*localstore.LocalStore]*Cache),
	}
}

func (t *Translator) String() string {
	return "translator"
}

// Executed returns the number of instructions executed.
func (t *Translator) Executed() uint64 {
	return t.executed.Load()
}

// Cache returns the code cache for the local store.
func (t *Translator) Cache(ls *localstore.LocalStore) *Cache {
	t.crit.Lock()
	defer t.crit.Unlock()
	cc, ok := t.caches[ls]
	if !ok {
		cc = newCache(ls)
		t.caches[ls] = cc
	}
	return cc
}

// make room in the cache for a block of n instructions
func (t *Translator) reserve(cc *Cache, start uint32, n int) error {
	if cc.resident.Load()+int64(n) > int64(t.budget) {
		return curated.Errorf(CompileBudget, t.budget, start)
	}
	return nil
}

// Run implements the spu.Backend interface.
func (t *Translator) Run(c *spu.Core) spu.Result {
	cc := t.Cache(c.LocalStore())
	pc := c.PC()

	blk := cc.lookup(pc)
	if blk == nil || !cc.validate(blk) {
		var err error
		blk, err = t.compile(cc, pc)
		if err != nil {
			c.Fault(faults.CompileFailure, err.Error(), uint64(pc))
			next, st := c.Retire(pc)
			return spu.Result{PC: next, Status: st}
		}
	}

	return t.execute(c, cc, blk)
}

func (t *Translator) execute(c *spu.Core, cc *Cache, blk *block) spu.Result {
	var n uint64
	defer func() {
		t.executed.Add(n)
	}()

	for i := range blk.ops {
		pc := blk.start + uint32(i)*4
		o := &blk.ops[i]

		o.exec(c)
		next, st := c.Retire(pc)
		n++

		if st != 0 {
			return spu.Result{PC: next, Status: st}
		}
		if next != (pc+4)&localstore.Mask {
			return spu.Result{PC: next}
		}
		if o.store && blk.stale(cc.ls) {
			return spu.Result{PC: next}
		}
	}

	return spu.Result{PC: blk.end() & localstore.Mask}
}
