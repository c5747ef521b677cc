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
	"context"

	"github.com/jetsetilly/gophercell/curated"
	"github.com/jetsetilly/gophercell/hardware/spu/localstore"
	"github.com/jetsetilly/gophercell/hardware/spu/registers"
	"github.com/jetsetilly/gophercell/logger"
)

// FastCallBusy is returned by FastCall() when another fast call is in
// progress.
const FastCallBusy = "%s: fast call already in progress"

// Run the core until it halts, faults or is stopped. Run() blocks and should be
// called from the goroutine dedicated to the core. Cancelling the context is
// the same as calling Stop().
//
// A core that halts or faults is not an error. The reason for the core
// stopping is found with Status().
func (c *Core) Run(ctx context.Context) error {
	c.ctrl.Lock()
	if c.running || c.fastcall {
		c.ctrl.Unlock()
		return curated.Errorf(AlreadyRunning, c.label)
	}
	if c.backend == nil {
		c.ctrl.Unlock()
		return curated.Errorf(NoBackend, c.label)
	}
	c.running = true
	backend := c.backend
	c.report = Report{State: Running, PC: c.pc}
	c.lastErr = nil
	c.ctrl.Unlock()

	stop := context.AfterFunc(ctx, c.Stop)
	defer stop()

	var st Status
	for {
		if c.attention.Load() && !c.poll() {
			st |= Yield
			break
		}

		c.deliverInterrupt()

		res := backend.Run(c)
		st = res.Status
		if st&(Halt|Fault) != 0 {
			break
		}
	}

	c.finish(st)
	return nil
}

// poll is called when the attention flag is set. it blocks while the core is
// paused. returns false if the core should stop
func (c *Core) poll() bool {
	c.ctrl.Lock()
	defer c.ctrl.Unlock()

	for {
		req := c.requests.Load()
		if !c.fastcall {
			if req&(requestStop|requestFault) != 0 {
				return false
			}
			if req&requestPause == 0 {
				return true
			}
		}

		if !c.paused {
			c.paused = true
			c.report.State = Paused
			c.report.PC = c.pc
			c.ctrlCond.Broadcast()
		}
		c.ctrlCond.Wait()

		if c.requests.Load()&requestPause == 0 && !c.fastcall {
			c.paused = false
			c.report.State = Running
		}
	}
}

// interrupts are taken at poll points only
func (c *Core) deliverInterrupt() {
	if !c.interrupts || !c.block.PendingInterrupt() {
		return
	}
	c.block.SetSRR0(c.pc)
	c.pc = 0
	c.interrupts = false
}

func (c *Core) finish(st Status) {
	c.ctrl.Lock()

	req := c.requests.Load()
	c.running = false
	c.paused = false

	c.report.PC = c.pc
	c.report.Status = st

	switch {
	case st&Fault != 0 || req&requestFault != 0:
		c.report.State = Halted
		c.report.Status |= Fault
		if c.lastErr != nil {
			c.report.Diagnostic = c.lastErr.Error()
		}
	case st&Halt != 0:
		c.report.State = Halted
		c.report.StopCode = c.stopCode
	default:
		c.report.State = Stopped
	}

	// stop and fault requests are consumed. pause requests remain until
	// Resume() is called
	c.requests.And(requestPause)
	c.updateAttention()

	observer := c.observer
	report := c.report
	c.ctrl.Unlock()

	logger.Logf(logger.Allow, c.label, "%s", report)

	if observer != nil {
		observer(c)
	}
}

// Pause the core at its next poll point. Calls to Pause() nest and each must
// be matched by a call to Resume().
func (c *Core) Pause() {
	c.ctrl.Lock()
	defer c.ctrl.Unlock()
	c.pauses++
	c.requests.Or(requestPause)
	c.updateAttention()
}

// Resume a paused core.
func (c *Core) Resume() {
	c.ctrl.Lock()
	defer c.ctrl.Unlock()
	if c.pauses > 0 {
		c.pauses--
	}
	if c.pauses == 0 {
		c.requests.And(^requestPause)
	}
	c.updateAttention()
}

// Stop the core at its next poll point. A stop requested before Run() is
// called is honoured by the next call to Run().
func (c *Core) Stop() {
	c.ctrl.Lock()
	defer c.ctrl.Unlock()
	c.requests.Or(requestStop)
	c.updateAttention()
}

// Running returns true if Run() is executing.
func (c *Core) Running() bool {
	c.ctrl.Lock()
	defer c.ctrl.Unlock()
	return c.running
}

// FastCall runs a routine on the core and returns the value of register 3 at
// the end of the routine. The core is quiesced for the duration of the call and
// the registers, PC and interrupt state are restored afterwards.
//
// The setup function is called with the register file before the routine is
// started and can be used to place arguments. The link register is set to the
// interrupted PC and the routine is complete when it branches to that address
// or executes a STOP instruction.
//
// The routine runs on the calling goroutine. The context bounds the wait for
// the core to quiesce, the routine itself is interrupted by Stop().
func (c *Core) FastCall(ctx context.Context, entry uint32, setup func(*registers.File)) (registers.Reg, error) {
	c.ctrl.Lock()
	busy := c.fastcall
	c.ctrl.Unlock()
	if busy {
		return registers.Reg{}, curated.Errorf(FastCallBusy, c.label)
	}

	c.Pause()
	defer c.Resume()

	release, err := c.quiesce(ctx)
	if err != nil {
		return registers.Reg{}, curated.Errorf(FastCallFailed, c.label, err)
	}
	defer release()

	c.ctrl.Lock()
	backend := c.backend
	if backend == nil {
		c.ctrl.Unlock()
		return registers.Reg{}, curated.Errorf(NoBackend, c.label)
	}
	c.fastcall = true
	c.updateAttention()
	c.ctrl.Unlock()

	defer func() {
		c.ctrl.Lock()
		c.fastcall = false
		c.updateAttention()
		c.ctrl.Unlock()
	}()

	gpr := c.GPR
	pc := c.pc
	interrupts := c.interrupts
	stopCode := c.stopCode

	c.GPR[0] = registers.Reg{}
	c.GPR[0].SetPreferred(pc)
	if setup != nil {
		setup(&c.GPR)
	}
	c.pc = entry & localstore.Mask &^ 3

	for {
		if c.attention.Load() {
			err = curated.Errorf(FastCallFailed, c.label, "interrupted")
			break
		}

		res := backend.Run(c)
		if res.Status&Fault != 0 {
			err = curated.Errorf(FastCallFailed, c.label, c.Err())
			break
		}
		if res.Status&Halt != 0 || c.pc == pc {
			break
		}
	}

	result := c.GPR[3]

	c.GPR = gpr
	c.pc = pc
	c.interrupts = interrupts
	c.stopCode = stopCode
	c.exec = execution{}

	return result, err
}
