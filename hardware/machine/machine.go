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

// Package machine is the root of the emulation. A Machine owns main memory,
// the reservation table, the DMA coordinator, the event bridge and every core.
//
// Cores are either raw cores, controlled individually by the host, or belong
// to a thread group, which is started, suspended and joined as a whole. The
// goroutines of the coordinator and of every running core are supervised by an
// errgroup so that an engine fault in the coordinator stops the entire
// machine.
//
// The Machine also implements the mfc.Resolver interface, which classifies the
// effective addresses used in DMA transfers: main memory or the problem state
// window of another core.
package machine

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jetsetilly/gophercell/curated"
	"github.com/jetsetilly/gophercell/hardware/coordinator"
	"github.com/jetsetilly/gophercell/hardware/events"
	"github.com/jetsetilly/gophercell/hardware/memory/mainmem"
	"github.com/jetsetilly/gophercell/hardware/memory/reservation"
	"github.com/jetsetilly/gophercell/hardware/preferences"
	"github.com/jetsetilly/gophercell/hardware/spu"
	"github.com/jetsetilly/gophercell/hardware/spu/channels"
	"github.com/jetsetilly/gophercell/hardware/spu/interpreter"
	"github.com/jetsetilly/gophercell/hardware/spu/mfc"
	"github.com/jetsetilly/gophercell/hardware/spu/translator"
	"github.com/jetsetilly/gophercell/logger"
)

// Sentinel error patterns.
const (
	UnknownBackend = "machine: unknown backend: %s"
	NotStarted     = "machine: not started"
	AlreadyStarted = "machine: already started"
	TooManyCores   = "machine: too many raw cores (max %d)"
	GroupSize      = "machine: group %s: invalid number of threads: %d"
	GroupState     = "machine: group %s: %s"
	NoImage        = "machine: group %s: no image for thread %d"
	EmptyMailbox   = "machine: %s: outbound mailbox is empty for %s"

	NotRawCore        = "machine: %s: not a raw core"
	InterruptClass    = "machine: %s: invalid interrupt class: %d"
	InterruptTagInUse = "machine: %s: interrupt class %d already has a tag"

	GroupEventKind      = "machine: group %s: unknown event kind: %d"
	GroupEventInUse     = "machine: group %s: %s event is already connected"
	GroupEventNotBound  = "machine: group %s: no queue bound to %#x"
	GroupEventNotActive = "machine: group %s: %s event is not connected"
)

// Config is the configuration of a new Machine.
type Config struct {
	// name of the execution backend
	Backend string

	// the translator's block length limit and compile budget
	BlockLimit int
	Budget     int

	// the coordinator's backoff values
	Recheck int
	Sleep   time.Duration

	// timebase frequency in MHz. not used if Clock is not nil
	Timebase float64
	Clock    channels.Clock
}

// DefaultConfig returns the configuration used when no preferences are
// available.
func DefaultConfig() Config {
	return Config{
		Backend:    preferences.BackendTranslator,
		BlockLimit: translator.DefaultBlockLimit,
		Budget:     translator.DefaultBudget,
		Recheck:    64,
		Sleep:      100 * time.Microsecond,
		Timebase:   channels.DefaultTimebase,
	}
}

// ConfigFromPreferences returns the configuration described by the
// preferences.
func ConfigFromPreferences(p *preferences.Preferences) Config {
	return Config{
		Backend:    p.BackendName(),
		BlockLimit: p.BlockLimit.Get().(int),
		Budget:     p.CodeCacheBudget.Get().(int),
		Recheck:    p.Recheck.Get().(int),
		Sleep:      p.SleepInterval(),
		Timebase:   p.Timebase.Get().(float64),
	}
}

// Machine is the root of the emulation.
type Machine struct {
	Memory       *mainmem.Memory
	Reservations *reservation.Table
	Coordinator  *coordinator.Coordinator
	Bridge       *events.Bridge

	sys     *mfc.System
	clock   channels.Clock
	backend spu.Backend

	crit   sync.RWMutex
	cores  []*spu.Core
	raw    []*spu.Core
	groups []*Group
	member map[*spu.Core]*Thread

	// interrupt controllers of the raw cores
	intr map[*spu.Core]*interrupts

	// closed when the goroutine started by StartCore() returns
	done map[*spu.Core]chan struct{}

	// set by Start()
	eg     *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
}

// NewMachine is the preferred method of initialisation for the Machine type.
func NewMachine(cfg Config) (*Machine, error) {
	m := &Machine{
		Memory:       mainmem.NewMemory(),
		Reservations: reservation.NewTable(),
		Coordinator:  coordinator.NewCoordinator(cfg.Recheck, cfg.Sleep),
		Bridge:       events.NewBridge(),
		clock:        cfg.Clock,
		member:       make(map[*spu.Core]*Thread),
		intr:         make(map[*spu.Core]*interrupts),
		done:         make(map[*spu.Core]chan struct{}),
	}

	switch cfg.Backend {
	case preferences.BackendInterpreter:
		m.backend = interpreter.NewInterpreter(0)
	case preferences.BackendTranslator, "":
		m.backend = translator.NewTranslator(cfg.BlockLimit, cfg.Budget)
	default:
		return nil, curated.Errorf(UnknownBackend, cfg.Backend)
	}

	if m.clock == nil {
		m.clock = channels.NewTimebase(cfg.Timebase)
	}

	m.sys = &mfc.System{
		Memory:       m.Memory,
		Reservations: m.Reservations,
		Resolver:     m,
	}

	return m, nil
}

// Backend returns the execution backend shared by every core.
func (m *Machine) Backend() spu.Backend {
	return m.backend
}

// create a new core and register it with the coordinator
func (m *Machine) newCore() *spu.Core {
	m.crit.Lock()
	c := spu.NewCore(len(m.cores), m.sys, m.clock)
	m.cores = append(m.cores, c)
	m.crit.Unlock()

	// binding to a new core can not fail
	_ = c.Bind(m.backend)

	m.Coordinator.Add(c)
	return c
}

// NewRawCore creates a core that is controlled directly by the host. Writes
// to the outbound interrupt mailbox and the halting of the core raise
// interrupts that are read with IntStat().
func (m *Machine) NewRawCore() (*spu.Core, error) {
	m.crit.RLock()
	n := len(m.raw)
	m.crit.RUnlock()
	if n >= MaxRawCores {
		return nil, curated.Errorf(TooManyCores, MaxRawCores)
	}

	c := m.newCore()
	ic := newInterrupts(c)
	c.SetSupervisor(ic)
	c.SetObserver(ic.observe)

	m.crit.Lock()
	m.raw = append(m.raw, c)
	m.intr[c] = ic
	m.crit.Unlock()

	logger.Logf(logger.Allow, "machine", "raw core %s", c)
	return c, nil
}

// Core returns the core with the id.
func (m *Machine) Core(id int) (*spu.Core, bool) {
	m.crit.RLock()
	defer m.crit.RUnlock()
	if id < 0 || id >= len(m.cores) {
		return nil, false
	}
	return m.cores[id], true
}

// Cores returns every core in the machine in order of creation.
func (m *Machine) Cores() []*spu.Core {
	m.crit.RLock()
	defer m.crit.RUnlock()
	return append([]*spu.Core(nil), m.cores...)
}

// RawCores returns the raw cores in order of creation.
func (m *Machine) RawCores() []*spu.Core {
	m.crit.RLock()
	defer m.crit.RUnlock()
	return append([]*spu.Core(nil), m.raw...)
}

// Groups returns the thread groups in order of creation.
func (m *Machine) Groups() []*Group {
	m.crit.RLock()
	defer m.crit.RUnlock()
	return append([]*Group(nil), m.groups...)
}

// Start the machine. The coordinator goroutine is started and cores can be
// started from now on. The context bounds the life of the machine.
func (m *Machine) Start(ctx context.Context) error {
	m.crit.Lock()
	defer m.crit.Unlock()
	if m.eg != nil {
		return curated.Errorf(AlreadyStarted)
	}

	var ectx context.Context
	m.eg, ectx = errgroup.WithContext(ctx)
	m.ctx, m.cancel = context.WithCancel(ectx)

	co := m.Coordinator
	runCtx := m.ctx
	m.eg.Go(func() error {
		return co.Run(runCtx)
	})

	logger.Log(logger.Allow, "machine", "started")
	return nil
}

// StartCore runs the core in a goroutine of its own. The machine must have
// been started.
func (m *Machine) StartCore(c *spu.Core) error {
	m.crit.RLock()
	eg, ctx := m.eg, m.ctx
	m.crit.RUnlock()

	if eg == nil {
		return curated.Errorf(NotStarted)
	}
	if ctx.Err() != nil {
		return curated.Errorf(NotStarted)
	}
	if c.Running() {
		return curated.Errorf(spu.AlreadyRunning, c)
	}

	done := make(chan struct{})
	m.crit.Lock()
	m.done[c] = done
	m.crit.Unlock()

	eg.Go(func() error {
		defer close(done)

		// a core that can not run is not fatal to the machine
		if err := c.Run(ctx); err != nil {
			logger.Log(logger.Allow, "machine", err)
		}
		return nil
	})

	return nil
}

// WaitCore waits for the goroutine started by the most recent call to
// StartCore() to finish and returns the status of the core. A core that has
// never been started returns immediately.
func (m *Machine) WaitCore(ctx context.Context, c *spu.Core) (spu.Report, error) {
	m.crit.RLock()
	done := m.done[c]
	m.crit.RUnlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return c.Status(), ctx.Err()
		}
	}
	return c.Status(), nil
}

// Wait for the machine to finish. The machine finishes when the context given
// to Start() is cancelled, when Shutdown() is called or when the coordinator
// fails. Returns the coordinator's error if there was one.
func (m *Machine) Wait() error {
	m.crit.RLock()
	eg := m.eg
	m.crit.RUnlock()
	if eg == nil {
		return curated.Errorf(NotStarted)
	}
	return eg.Wait()
}

// Shutdown stops every core and the coordinator and waits for them to finish.
func (m *Machine) Shutdown() error {
	m.crit.RLock()
	cancel := m.cancel
	m.crit.RUnlock()
	if cancel == nil {
		return curated.Errorf(NotStarted)
	}
	cancel()
	err := m.Wait()
	logger.Log(logger.Allow, "machine", "shutdown")
	return err
}

// Run the machine until the context is cancelled. The equivalent of calling
// Start() followed by Wait().
func (m *Machine) Run(ctx context.Context) error {
	if err := m.Start(ctx); err != nil {
		return err
	}
	return m.Wait()
}
