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

package spu

import (
	"strings"

	"github.com/jetsetilly/gophercell/hardware/spu/localstore"
)

// Status bits returned by a Backend.
type Status uint32

// List of valid Status bits.
const (
	// a STOP instruction halted the core
	Halt Status = 1 << iota

	// interrupts were enabled or disabled
	InterruptToggle

	// a fault occurred and the core must stop immediately. the faulting
	// instruction has not been retired
	Fault

	// the backend returned early because of a host request (stop, pause) or
	// because a blocking channel operation was cancelled
	Yield
)

func (st Status) String() string {
	if st == 0 {
		return "-"
	}
	s := strings.Builder{}
	if st&Halt != 0 {
		s.WriteString("halt ")
	}
	if st&InterruptToggle != 0 {
		s.WriteString("interrupt ")
	}
	if st&Fault != 0 {
		s.WriteString("fault ")
	}
	if st&Yield != 0 {
		s.WriteString("yield ")
	}
	return strings.TrimSpace(s.String())
}

// Result of a call to Backend.Run().
type Result struct {
	PC     uint32
	Status Status
}

// Backend runs the program of a core. Run() executes instructions from the
// core's PC until a control transfer is taken, a non-zero Status is produced
// or some backend defined number of instructions have been executed.
//
// Backends must produce the same effects on the core as each other. The
// effects of an instruction are defined by the isa package and the retirement
// of each instruction must be through Core.Retire().
type Backend interface {
	Run(c *Core) Result
	String() string
}

// state of the instruction being executed. owned by the executing goroutine
type execution struct {
	branch bool
	target uint32
	halt   bool
	code   uint32
	fault  bool
	yield  bool
	toggle bool
}

// Branch is called by control transfer instructions. The branch is committed
// when the instruction is retired.
func (c *Core) Branch(target uint32) {
	c.exec.branch = true
	c.exec.target = target & localstore.Mask &^ 3
}

// Retire the instruction at the address. The PC of the core is updated and
// returned along with the status bits produced by the instruction.
//
// A faulting or yielding instruction is not retired and the PC remains at the
// address of the instruction.
func (c *Core) Retire(pc uint32) (uint32, Status) {
	var st Status
	next := (pc + 4) & localstore.Mask

	switch {
	case c.exec.fault:
		st = Fault
		next = pc
	case c.exec.yield:
		st = Yield
		next = pc
	case c.exec.halt:
		st = Halt
		c.stopCode = c.exec.code
	case c.exec.branch:
		next = c.exec.target
	}

	if c.exec.toggle {
		st |= InterruptToggle
	}

	c.exec = execution{}

	// host requests are noticed after every instruction
	if c.attention.Load() {
		st |= Yield
	}

	c.pc = next
	return next, st
}

// SetInterrupts enables or disables interrupts. Used by the indirect branch
// instructions.
func (c *Core) SetInterrupts(enable bool) {
	if c.interrupts != enable {
		c.interrupts = enable
		c.exec.toggle = true
	}
}

// Interrupts returns true if interrupts are enabled.
func (c *Core) Interrupts() bool {
	return c.interrupts
}

// yield is used when a blocking operation was cancelled. the instruction is
// not retired and will be executed again
func (c *Core) yield() {
	c.exec.yield = true
}
