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
	"github.com/jetsetilly/gophercell/hardware/spu/faults"
)

// StopAction is returned by a Supervisor to say what should happen to a core
// that has executed a STOP instruction.
type StopAction int

// List of valid StopAction values.
const (
	// the core halts with the stop code recorded in its status
	StopHalt StopAction = iota

	// the STOP instruction is retired and execution continues
	StopContinue

	// the STOP instruction is not retired and will be executed again after
	// the core has serviced host requests. used when the supervisor's wait was
	// cancelled
	StopRetry
)

// Supervisor is the layer above the core that interprets stop-and-signal
// codes and outbound interrupt mailbox traffic. The machine package
// implements this for cores that belong to a thread group.
//
// Both functions are called by the goroutine running the core and may block
// using Core.WaitFor().
type Supervisor interface {
	StopAndSignal(c *Core, code uint32) (StopAction, error)

	// returns false if the write should be tried again
	InterruptMailbox(c *Core, value uint32) (bool, error)
}

func (c *Core) currentSupervisor() Supervisor {
	c.ctrl.Lock()
	defer c.ctrl.Unlock()
	return c.supervisor
}

// StopAndSignal is used by the STOP instruction.
func (c *Core) StopAndSignal(code uint32) {
	s := c.currentSupervisor()
	if s == nil {
		c.exec.halt = true
		c.exec.code = code
		return
	}

	action, err := s.StopAndSignal(c, code)
	if err != nil {
		c.Fault(faults.BridgeViolation, err.Error(), uint64(code))
		return
	}

	switch action {
	case StopHalt:
		c.exec.halt = true
		c.exec.code = code
	case StopRetry:
		c.yield()
	}
}
