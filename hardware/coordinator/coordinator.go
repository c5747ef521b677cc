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

// Package coordinator runs the DMA engines of every core in the machine from a
// single goroutine.
//
// Each pass of the coordinator services every registered Unit once. A unit
// checks its decrementer, advances its MFC queue by one command and reports
// whether anything happened. When a whole pass makes no progress the
// coordinator backs off: first by rechecking for a number of passes, yielding
// the processor between each, and then by sleeping for a fixed interval. Any
// progress returns the coordinator to full speed.
//
// Units are added and removed with control messages which are processed at
// the start of a pass. Adding a unit, or calling Wake(), interrupts a sleeping
// coordinator.
package coordinator

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jetsetilly/gophercell/curated"
	"github.com/jetsetilly/gophercell/logger"
)

// EngineFault is returned by Run() when a unit reports an error. An engine
// fault means the emulation can not continue.
const EngineFault = "coordinator: %s: %v"

// Unit is serviced by the coordinator once per pass. The spu.Core type
// satisfies this interface.
type Unit interface {
	// returns true if anything happened. an error is an engine fault
	Service() (bool, error)
	String() string
}

// State of the backoff state machine.
type State int

// List of valid State values.
const (
	Progress State = iota
	Recheck
	Sleep
)

func (s State) String() string {
	switch s {
	case Recheck:
		return "recheck"
	case Sleep:
		return "sleep"
	}
	return "progress"
}

type controlKind int

const (
	controlAdd controlKind = iota
	controlRemove
)

type control struct {
	kind controlKind
	unit Unit
}

// Coordinator services the units of the machine.
type Coordinator struct {
	recheck  int
	interval time.Duration

	crit     sync.Mutex
	controls []control

	// a pending wake-up. buffered so that Wake() never blocks
	wake chan struct{}

	// units and idle are only accessed by the coordinator goroutine
	units []Unit
	idle  int

	state    atomic.Int32
	passes   atomic.Uint64
	progress atomic.Uint64
	sleeps   atomic.Uint64
	count    atomic.Int32
}

// NewCoordinator is the preferred method of initialisation for the Coordinator
// type. The recheck value is the number of passes without progress before the
// coordinator sleeps and the interval is the length of each sleep.
func NewCoordinator(recheck int, interval time.Duration) *Coordinator {
	if recheck < 0 {
		recheck = 0
	}
	if interval <= 0 {
		interval = time.Millisecond
	}
	return &Coordinator{
		recheck:  recheck,
		interval: interval,
		wake:     make(chan struct{}, 1),
	}
}

// Add a unit to the coordinator. The unit is serviced from the next pass.
func (co *Coordinator) Add(u Unit) {
	co.send(control{kind: controlAdd, unit: u})
}

// Remove a unit from the coordinator. The unit is not serviced after the
// current pass.
func (co *Coordinator) Remove(u Unit) {
	co.send(control{kind: controlRemove, unit: u})
}

func (co *Coordinator) send(ctl control) {
	co.crit.Lock()
	co.controls = append(co.controls, ctl)
	co.crit.Unlock()
	co.Wake()
}

// Wake a sleeping coordinator. Safe to call from any goroutine.
func (co *Coordinator) Wake() {
	select {
	case co.wake <- struct{}{}:
	default:
	}
}

// process pending control messages. returns true if there were any
func (co *Coordinator) controlMessages() bool {
	co.crit.Lock()
	controls := co.controls
	co.controls = nil
	co.crit.Unlock()

	for _, ctl := range controls {
		switch ctl.kind {
		case controlAdd:
			co.units = append(co.units, ctl.unit)
			logger.Logf(logger.Allow, "coordinator", "added %s", ctl.unit)
		case controlRemove:
			for i, u := range co.units {
				if u == ctl.unit {
					co.units = append(co.units[:i], co.units[i+1:]...)
					logger.Logf(logger.Allow, "coordinator", "removed %s", ctl.unit)
					break
				}
			}
		}
	}
	co.count.Store(int32(len(co.units)))

	return len(controls) > 0
}

// Pass services every unit once and updates the backoff state. Returns true
// if any unit made progress. Pass() is called by Run() and should only be
// called directly when Run() is not running.
func (co *Coordinator) Pass() (bool, error) {
	progress := co.controlMessages()

	for _, u := range co.units {
		p, err := u.Service()
		if err != nil {
			return true, curated.Errorf(EngineFault, u, err)
		}
		progress = progress || p
	}

	co.passes.Add(1)

	if progress {
		co.progress.Add(1)
		co.idle = 0
		co.state.Store(int32(Progress))
	} else {
		co.idle++
		if co.idle <= co.recheck {
			co.state.Store(int32(Recheck))
		} else {
			co.state.Store(int32(Sleep))
		}
	}

	return progress, nil
}

// Run the coordinator until the context is cancelled or an engine fault
// occurs. A cancelled context is not an error.
func (co *Coordinator) Run(ctx context.Context) error {
	timer := time.NewTimer(co.interval)
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}

		if _, err := co.Pass(); err != nil {
			logger.Log(logger.Allow, "coordinator", err)
			return err
		}

		switch co.State() {
		case Recheck:
			runtime.Gosched()
		case Sleep:
			co.sleeps.Add(1)
			timer.Reset(co.interval)
			select {
			case <-ctx.Done():
				return nil
			case <-co.wake:
			case <-timer.C:
			}
		}
	}
}

// State returns the current state of the backoff state machine.
func (co *Coordinator) State() State {
	return State(co.state.Load())
}

// Stats are the counters of the coordinator.
type Stats struct {
	Passes   uint64
	Progress uint64
	Sleeps   uint64
	Units    int
	State    State
}

// Stats returns the current counters. Safe to call from any goroutine.
func (co *Coordinator) Stats() Stats {
	return Stats{
		Passes:   co.passes.Load(),
		Progress: co.progress.Load(),
		Sleeps:   co.sleeps.Load(),
		Units:    int(co.count.Load()),
		State:    co.State(),
	}
}
