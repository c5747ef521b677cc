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

// Package interpreter is the simplest of the two execution backends. Each
// instruction word is fetched from the local store, looked up in the dispatch
// table of the isa package and executed.
//
// The interpreter has no state of its own that affects execution and so a
// single instance can be bound to any number of cores.
package interpreter

import (
	"sync/atomic"

	"github.com/jetsetilly/gophercell/hardware/spu"
	"github.com/jetsetilly/gophercell/hardware/spu/isa"
	"github.com/jetsetilly/gophercell/hardware/spu/localstore"
)

// DefaultSlice is the number of instructions executed by one call to Run()
// if no other value is specified.
const DefaultSlice = 1024

// Interpreter implements the spu.Backend interface.
type Interpreter struct {
	slice int

	// instructions executed over the lifetime of the interpreter. shared by
	// all cores the interpreter is bound to
	executed atomic.Uint64
}

// NewInterpreter is the preferred method of initialisation for the
// Interpreter type. The slice value is the maximum number of instructions
// executed by one call to Run(). A value of zero or less means DefaultSlice.
func NewInterpreter(slice int) *Interpreter {
	if slice <= 0 {
		slice = DefaultSlice
	}
	return &Interpreter{slice: slice}
}

func (itp *Interpreter) String() string {
	return "interpreter"
}

// Executed returns the number of instructions executed.
func (itp *Interpreter) Executed() uint64 {
	return itp.executed.Load()
}

// Run implements the spu.Backend interface.
func (itp *Interpreter) Run(c *spu.Core) spu.Result {
	var n uint64
	defer func() {
		itp.executed.Add(n)
	}()

	pc := c.PC()
	for range itp.slice {
		next, st := Step(c)
		n++
		if st != 0 {
			return spu.Result{PC: next, Status: st}
		}

		// a control transfer ends the run so that the core can poll for
		// interrupts
		if next != (pc+4)&localstore.Mask {
			return spu.Result{PC: next}
		}
		pc = next
	}

	return spu.Result{PC: pc}
}

// Step executes and retires the single instruction at the core's PC. The
// translator uses this for instructions it does not compile.
func Step(c *spu.Core) (uint32, spu.Status) {
	pc := c.PC()
	word := c.LocalStore().Read32(pc)
	defn := isa.Lookup(word)
	if defn == nil {
		isa.Illegal(c, word)
		return c.Retire(pc)
	}
	defn.Execute(c, isa.Fields(word))
	return c.Retire(pc)
}
