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
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jetsetilly/gophercell/curated"
	"github.com/jetsetilly/gophercell/hardware/spu/channels"
	"github.com/jetsetilly/gophercell/hardware/spu/faults"
	"github.com/jetsetilly/gophercell/hardware/spu/localstore"
	"github.com/jetsetilly/gophercell/hardware/spu/mfc"
	"github.com/jetsetilly/gophercell/hardware/spu/registers"
	"github.com/jetsetilly/gophercell/logger"
)

// Sentinel error patterns.
const (
	CoreFault      = "%s: %s: %s"
	AlreadyRunning = "%s: core is already running"
	NoBackend      = "%s: no backend bound to core"
	BindRunning    = "%s: cannot bind backend to a running core"
	FastCallFailed = "%s: fast call: %v"
)

// RunState of a core as seen by the host.
type RunState int

// List of valid RunState values.
const (
	Idle RunState = iota
	Running
	Paused
	Stopped
	Halted
)

func (s RunState) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	case Halted:
		return "halted"
	}
	return "idle"
}

// Report is the status of a core as reported to the host.
type Report struct {
	State RunState

	// address of the next instruction to execute
	PC uint32

	// code of the STOP instruction that halted the core
	StopCode uint32

	// status bits returned by the backend when the core last stopped
	Status Status

	// description of the fault that halted the core. empty if there was no
	// fault
	Diagnostic string
}

func (r Report) String() string {
	s := fmt.Sprintf("%s pc=%05x", r.State, r.PC)
	if r.State == Halted && r.Status&Halt != 0 {
		s = fmt.Sprintf("%s stop=%#04x", s, r.StopCode)
	}
	if r.Diagnostic != "" {
		s = fmt.Sprintf("%s (%s)", s, r.Diagnostic)
	}
	return s
}

// host request bits
const (
	requestPause uint32 = 1 << iota
	requestStop
	requestFault
)

// Core is a single SPU.
type Core struct {
	id    int
	label string

	// the register file is exported for the benefit of the isa package. it
	// must only be accessed by the goroutine running the core or while the
	// core is quiesced
	GPR registers.File

	pc         uint32
	interrupts bool
	stopCode   uint32
	exec       execution

	ls     *localstore.LocalStore
	block  *channels.Block
	mfc    *mfc.MFC
	faults *faults.Faults

	backend    Backend
	supervisor Supervisor

	// values written to the MFC parameter channels
	mfcArgs mfc.Command

	// host control. the lock order is ctrl then channel block
	ctrl     sync.Mutex
	ctrlCond *sync.Cond
	requests atomic.Uint32
	pauses   int
	paused   bool
	running  bool
	fastcall bool
	held     bool
	report   Report
	lastErr  error
	observer func(*Core)

	// attention is true when the core should stop what it is doing and
	// return to the run loop. checked after every instruction
	attention atomic.Bool

	// closed when attention is set. used by WaitFor()
	cancel       chan struct{}
	cancelClosed bool
}

// NewCore is the preferred method of initialisation for the Core type.
func NewCore(id int, sys *mfc.System, clock channels.Clock) *Core {
	c := &Core{
		id:     id,
		label:  fmt.Sprintf("spu%d", id),
		ls:     localstore.NewLocalStore(),
		faults: faults.NewFaults(),
		cancel: make(chan struct{}),
	}
	c.ctrlCond = sync.NewCond(&c.ctrl)
	c.mfc = mfc.NewMFC(sys, c)
	c.block = channels.NewBlock(clock, c.mfc)
	return c
}

func (c *Core) String() string {
	return c.label
}

// ID implements the mfc.Port interface.
func (c *Core) ID() int {
	return c.id
}

// Label is the name of the core used in log entries.
func (c *Core) Label() string {
	return c.label
}

// LocalStore implements the mfc.Port and mfc.Peer interfaces.
func (c *Core) LocalStore() *localstore.LocalStore {
	return c.ls
}

// Channels returns the channel block of the core.
func (c *Core) Channels() *channels.Block {
	return c.block
}

// MFC returns the DMA engine of the core.
func (c *Core) MFC() *mfc.MFC {
	return c.mfc
}

// Faults returns the fault log of the core.
func (c *Core) Faults() *faults.Faults {
	return c.faults
}

// PC returns the address of the current instruction. Only meaningful to the
// goroutine running the core or while the core is quiesced.
func (c *Core) PC() uint32 {
	return c.pc
}

// SetPC sets the address of the next instruction. The core must not be
// running.
func (c *Core) SetPC(pc uint32) {
	c.pc = pc & localstore.Mask &^ 3
}

// Bind a backend to the core. The core must not be running.
func (c *Core) Bind(backend Backend) error {
	c.ctrl.Lock()
	defer c.ctrl.Unlock()
	if c.running {
		return curated.Errorf(BindRunning, c.label)
	}
	c.backend = backend
	return nil
}

// Backend returns the bound backend.
func (c *Core) Backend() Backend {
	c.ctrl.Lock()
	defer c.ctrl.Unlock()
	return c.backend
}

// SetSupervisor attaches the supervisor that handles STOP instructions and
// outbound interrupt mailbox writes. A core without a supervisor halts on
// every STOP instruction and treats the interrupt mailbox as an ordinary
// mailbox.
func (c *Core) SetSupervisor(s Supervisor) {
	c.ctrl.Lock()
	defer c.ctrl.Unlock()
	c.supervisor = s
}

// SetObserver sets a function to be called, from the core's goroutine, every
// time Run() returns.
func (c *Core) SetObserver(f func(*Core)) {
	c.ctrl.Lock()
	defer c.ctrl.Unlock()
	c.observer = f
}

// Status returns the report of the core.
func (c *Core) Status() Report {
	c.ctrl.Lock()
	defer c.ctrl.Unlock()
	return c.report
}

// Err returns the error that caused the most recent fault.
func (c *Core) Err() error {
	c.ctrl.Lock()
	defer c.ctrl.Unlock()
	return c.lastErr
}

// Reset the architectural state of the core. The core must not be running.
// The local store is not cleared. Pending stop requests are discarded but
// pause requests remain.
func (c *Core) Reset() {
	c.GPR.Reset()
	c.pc = 0
	c.interrupts = false
	c.stopCode = 0
	c.exec = execution{}
	c.mfcArgs = mfc.Command{}
	c.block.Reset()
	c.faults.Clear()

	c.ctrl.Lock()
	defer c.ctrl.Unlock()
	c.report = Report{}
	c.lastErr = nil
	c.requests.And(requestPause)
	c.updateAttention()
}

// Fault is called during the execution of an instruction when the instruction
// can not complete. The instruction is not retired and the core halts.
func (c *Core) Fault(category faults.Category, event string, access uint64) {
	c.exec.fault = true
	c.faults.NewEntry(event, category, c.pc, access)
	err := curated.Errorf(CoreFault, c.label, category, event)
	logger.Log(logger.Allow, c.label, err)

	c.ctrl.Lock()
	defer c.ctrl.Unlock()
	c.lastErr = err
}

// DMAFault implements the mfc.Port interface. The fault is noticed by the core
// at its next poll point.
func (c *Core) DMAFault(err error) {
	c.faults.NewEntry(err.Error(), faults.ProtocolViolation, 0, 0)
	err = curated.Errorf(CoreFault, c.label, faults.ProtocolViolation, err)
	logger.Log(logger.Allow, c.label, err)

	c.ctrl.Lock()
	defer c.ctrl.Unlock()
	c.lastErr = err
	c.requests.Or(requestFault)
	c.updateAttention()
}

// RaiseEvent implements the mfc.Port interface.
func (c *Core) RaiseEvent(bits uint32) {
	c.block.RaiseEvent(bits)
}

// TagsUpdated implements the mfc.Port interface.
func (c *Core) TagsUpdated() {
	c.block.TagsUpdated()
}

// QueueVacancy implements the mfc.Port interface.
func (c *Core) QueueVacancy() {
	if c.mfc.Space() == 1 {
		c.block.RaiseEvent(channels.EventQV)
	}
	c.block.Notify()
}

// SetAtomicStatus implements the mfc.Port interface.
func (c *Core) SetAtomicStatus(v uint32) {
	c.block.SetAtomicStatus(v)
}

// WriteSignal implements the mfc.Peer interface. It is also the host's way of
// writing to a signal-notify register.
func (c *Core) WriteSignal(n int, v uint32) {
	c.block.WriteSignal(n&1, v)
}

// Service is called by the coordinator once per pass. It checks the
// decrementer, advances the MFC by one command and completes a multisource
// synchronisation request if the MFC is idle.
func (c *Core) Service() (bool, error) {
	progress := c.block.CheckDecrementer()

	p, err := c.mfc.Step()
	if err != nil {
		return true, err
	}
	progress = progress || p

	if c.mfc.Idle() {
		c.block.CompleteMSSync()
	}

	return progress, nil
}

// updateAttention recalculates the attention flag and the state of channel
// cancellation from the pending requests. the ctrl lock must be held
func (c *Core) updateAttention() {
	req := c.requests.Load()
	attention := req&(requestStop|requestFault) != 0 || (req&requestPause != 0 && !c.fastcall)

	c.attention.Store(attention)
	if attention {
		c.block.Cancel()
		if !c.cancelClosed {
			close(c.cancel)
			c.cancelClosed = true
		}
	} else {
		c.block.Uncancel()
		if c.cancelClosed {
			c.cancel = make(chan struct{})
			c.cancelClosed = false
		}
	}
	c.ctrlCond.Broadcast()
}

// WaitFor blocks the core until the ready channel is closed. Returns false
// if the wait was cancelled by a host request. Used by supervisors that
// need to block the core outside of a channel operation.
func (c *Core) WaitFor(ready <-chan struct{}) bool {
	c.ctrl.Lock()
	cancel := c.cancel
	c.ctrl.Unlock()

	select {
	case <-ready:
		return true
	case <-cancel:
		return false
	}
}

// wait until the core is parked at a poll point or is not running and no
// other host operation holds it. the returned function must be called when the
// host has finished with the core
func (c *Core) quiesce(ctx context.Context) (func(), error) {
	stop := context.AfterFunc(ctx, func() {
		c.ctrl.Lock()
		c.ctrlCond.Broadcast()
		c.ctrl.Unlock()
	})
	defer stop()

	c.ctrl.Lock()
	defer c.ctrl.Unlock()
	for (c.running && !c.paused) || c.held {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c.ctrlCond.Wait()
	}
	c.held = true
	return c.release, nil
}

func (c *Core) release() {
	c.ctrl.Lock()
	defer c.ctrl.Unlock()
	c.held = false
	c.ctrlCond.Broadcast()
}
