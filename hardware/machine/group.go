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

package machine

import (
	"context"
	"fmt"
	"sync"

	"github.com/jetsetilly/gophercell/curated"
	"github.com/jetsetilly/gophercell/hardware/events"
	"github.com/jetsetilly/gophercell/hardware/spu"
	"github.com/jetsetilly/gophercell/logger"
)

// Stop codes interpreted by the group supervisor. Any other code halts the
// core.
const (
	StopGroupExit       = 0x101
	StopThreadExit      = 0x102
	StopReceiveEvent    = 0x110
	StopTryReceiveEvent = 0x111
)

// Cause of a group finishing.
type Cause int

// List of valid Cause values.
const (
	// the group has not finished
	NoCause Cause = iota

	// a thread executed the group exit stop code
	GroupExit

	// every thread executed the thread exit stop code
	AllThreadsExit

	// the host terminated the group
	Terminated

	// every thread stopped but not every thread exited. for example, because
	// of a fault
	ThreadsStopped
)

func (c Cause) String() string {
	switch c {
	case GroupExit:
		return "group exit"
	case AllThreadsExit:
		return "all threads exit"
	case Terminated:
		return "terminated"
	case ThreadsStopped:
		return "threads stopped"
	}
	return "none"
}

// State of a thread group.
type State int

// List of valid State values.
const (
	Initialized State = iota
	Running
	Suspended
	Finished
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Suspended:
		return "suspended"
	case Finished:
		return "finished"
	}
	return "initialized"
}

// GroupEvent is a kind of event that a group posts to a connected queue.
type GroupEvent int

// List of valid GroupEvent values.
const (
	// posted when the group finishes. data1 is the Cause and data2 the exit
	// status
	ExitEvent GroupEvent = 1

	// posted when a thread halts with a fault. data1 is the index of the
	// thread and data2 the PC
	ExceptionEvent GroupEvent = 2
)

func (k GroupEvent) String() string {
	switch k {
	case ExitEvent:
		return "exit"
	case ExceptionEvent:
		return "exception"
	}
	return "unknown"
}

// Thread is a core in a thread group.
type Thread struct {
	Core *spu.Core

	group *Group
	index int
	image *spu.Image
	args  [4]uint64

	// set when the thread executes the thread exit stop code. guarded by the
	// group lock
	exited bool
	status uint32
}

// Index of the thread in its group.
func (th *Thread) Index() int {
	return th.index
}

// ExitStatus returns the status of the thread exit stop code. The bool is false
// if the thread did not exit with the stop code.
func (th *Thread) ExitStatus() (uint32, bool) {
	th.group.crit.Lock()
	defer th.group.crit.Unlock()
	return th.status, th.exited
}

// Group is a set of cores that are started, suspended and joined together.
type Group struct {
	m       *Machine
	name    string
	threads []*Thread

	crit    sync.Mutex
	state   State
	cause   Cause
	status  uint32
	running int
	done    chan struct{}

	// queues that group events are posted to
	queues map[GroupEvent]*events.Queue
}

// NewGroup creates a thread group with the number of threads.
func (m *Machine) NewGroup(name string, n int) (*Group, error) {
	if n < 1 || n > MaxThreads {
		return nil, curated.Errorf(GroupSize, name, n)
	}

	g := &Group{
		m:      m,
		name:   name,
		done:   make(chan struct{}),
		queues: make(map[GroupEvent]*events.Queue),
	}

	for i := range n {
		c := m.newCore()
		th := &Thread{Core: c, group: g, index: i}
		g.threads = append(g.threads, th)
		c.SetSupervisor(g)
		c.SetObserver(func(*spu.Core) {
			g.threadStopped(th)
		})
	}

	m.crit.Lock()
	m.groups = append(m.groups, g)
	for _, th := range g.threads {
		m.member[th.Core] = th
	}
	m.crit.Unlock()

	logger.Logf(logger.Allow, "machine", "group %s: %d threads", name, n)
	return g, nil
}

func (g *Group) String() string {
	return g.name
}

// Threads returns the threads in the group.
func (g *Group) Threads() []*Thread {
	return g.threads
}

// State returns the state of the group.
func (g *Group) State() State {
	g.crit.Lock()
	defer g.crit.Unlock()
	return g.state
}

// Initialize sets the image and arguments of a thread. The image is loaded
// when the group is started.
func (g *Group) Initialize(i int, img *spu.Image, args ...uint64) error {
	if i < 0 || i >= len(g.threads) {
		return curated.Errorf(GroupState, g.name, fmt.Sprintf("no thread %d", i))
	}

	g.crit.Lock()
	defer g.crit.Unlock()
	if g.state == Running || g.state == Suspended {
		return curated.Errorf(GroupState, g.name, "cannot initialize a running thread")
	}

	th := g.threads[i]
	th.image = img
	th.args = [4]uint64{}
	copy(th.args[:], args)
	return nil
}

// Start the group. Each thread's image is placed in the local store of its
// core, the PC is set to the entry point and registers 3 to 6 are set to the
// thread arguments. A finished group can be started again.
func (g *Group) Start() error {
	g.crit.Lock()
	if g.state == Running || g.state == Suspended {
		g.crit.Unlock()
		return curated.Errorf(GroupState, g.name, "already running")
	}
	for _, th := range g.threads {
		if th.image == nil {
			g.crit.Unlock()
			return curated.Errorf(NoImage, g.name, th.index)
		}
	}

	for _, th := range g.threads {
		c := th.Core
		c.Reset()
		c.Load(th.image)
		for a, v := range th.args {
			c.GPR[3+a].SetU64(0, v)
		}
		th.exited = false
		th.status = 0
	}

	g.state = Running
	g.cause = NoCause
	g.status = 0
	g.running = len(g.threads)
	g.done = make(chan struct{})
	g.crit.Unlock()

	for _, th := range g.threads {
		if err := g.m.StartCore(th.Core); err != nil {
			// threads that have already been started are stopped. the group
			// finishes when they have all stopped
			g.crit.Lock()
			g.cause = Terminated
			g.running -= len(g.threads) - th.index
			finished := g.running == 0
			if finished {
				g.finish()
			}
			g.crit.Unlock()
			for _, o := range g.threads[:th.index] {
				o.Core.Stop()
			}
			return err
		}
	}

	logger.Logf(logger.Allow, "machine", "group %s: started", g.name)
	return nil
}

// Suspend every thread in the group.
func (g *Group) Suspend() error {
	g.crit.Lock()
	defer g.crit.Unlock()
	if g.state != Running {
		return curated.Errorf(GroupState, g.name, "not running")
	}
	for _, th := range g.threads {
		th.Core.Pause()
	}
	g.state = Suspended
	return nil
}

// Resume a suspended group.
func (g *Group) Resume() error {
	g.crit.Lock()
	defer g.crit.Unlock()
	if g.state != Suspended {
		return curated.Errorf(GroupState, g.name, "not suspended")
	}
	for _, th := range g.threads {
		th.Core.Resume()
	}
	g.state = Running
	return nil
}

// Terminate the group. The value is reported by Join() as the exit status.
func (g *Group) Terminate(value uint32) error {
	g.crit.Lock()
	if g.state != Running && g.state != Suspended {
		g.crit.Unlock()
		return curated.Errorf(GroupState, g.name, "not running")
	}
	suspended := g.state == Suspended
	if g.cause == NoCause {
		g.cause = Terminated
		g.status = value
	}
	g.crit.Unlock()

	for _, th := range g.threads {
		th.Core.Stop()
		if suspended {
			th.Core.Resume()
		}
	}

	if suspended {
		g.crit.Lock()
		if g.state == Suspended {
			g.state = Running
		}
		g.crit.Unlock()
	}

	return nil
}

// Join waits for the group to finish and returns the cause and the exit
// status.
func (g *Group) Join(ctx context.Context) (Cause, uint32, error) {
	g.crit.Lock()
	done := g.done
	state := g.state
	g.crit.Unlock()

	if state == Initialized {
		return NoCause, 0, curated.Errorf(GroupState, g.name, "not started")
	}

	select {
	case <-ctx.Done():
		return NoCause, 0, ctx.Err()
	case <-done:
	}

	g.crit.Lock()
	defer g.crit.Unlock()
	return g.cause, g.status, nil
}

// ConnectEvent posts events of the kind to the queue bound to the queue number
// in the event bridge.
func (g *Group) ConnectEvent(kind GroupEvent, num uint32) error {
	if kind != ExitEvent && kind != ExceptionEvent {
		return curated.Errorf(GroupEventKind, g.name, int(kind))
	}

	q, ok := g.m.Bridge.Queue(num)
	if !ok {
		return curated.Errorf(GroupEventNotBound, g.name, num)
	}

	g.crit.Lock()
	defer g.crit.Unlock()
	if _, ok := g.queues[kind]; ok {
		return curated.Errorf(GroupEventInUse, g.name, kind)
	}
	g.queues[kind] = q
	return nil
}

// DisconnectEvent stops events of the kind being posted.
func (g *Group) DisconnectEvent(kind GroupEvent) error {
	g.crit.Lock()
	defer g.crit.Unlock()
	if _, ok := g.queues[kind]; !ok {
		return curated.Errorf(GroupEventNotActive, g.name, kind)
	}
	delete(g.queues, kind)
	return nil
}

// the lock must be held
func (g *Group) post(kind GroupEvent, ev events.Event) {
	q, ok := g.queues[kind]
	if !ok {
		return
	}
	if q.Send(ev) != events.OK {
		logger.Logf(logger.Allow, "machine", "group %s: %s event: queue %s is full", g.name, kind, q)
	}
}

// called by the observer of each core when its Run() returns
func (g *Group) threadStopped(th *Thread) {
	g.crit.Lock()
	defer g.crit.Unlock()

	if g.running == 0 {
		return
	}

	if rep := th.Core.Status(); rep.Status&spu.Fault != 0 {
		g.post(ExceptionEvent, events.Event{
			Source: events.ExceptionKey,
			Data1:  uint64(th.index),
			Data2:  uint64(rep.PC),
		})
	}

	g.running--
	if g.running > 0 {
		return
	}

	if g.cause == NoCause {
		g.cause = AllThreadsExit
		for _, o := range g.threads {
			if !o.exited {
				g.cause = ThreadsStopped
				break
			}
		}
	}

	g.finish()
}

// the lock must be held
func (g *Group) finish() {
	g.state = Finished
	g.post(ExitEvent, events.Event{
		Source: events.GroupExitKey,
		Data1:  uint64(g.cause),
		Data2:  uint64(g.status),
	})
	close(g.done)
	logger.Logf(logger.Allow, "machine", "group %s: %s (%#x)", g.name, g.cause, g.status)
}

func (g *Group) thread(c *spu.Core) *Thread {
	for _, th := range g.threads {
		if th.Core == c {
			return th
		}
	}
	return nil
}

// StopAndSignal implements the spu.Supervisor interface.
func (g *Group) StopAndSignal(c *spu.Core, code uint32) (spu.StopAction, error) {
	switch code {
	case StopGroupExit:
		status, ok := c.Channels().PopOutMbox()
		if !ok {
			return spu.StopHalt, curated.Errorf(EmptyMailbox, c, "group exit")
		}

		g.crit.Lock()
		if g.cause == NoCause {
			g.cause = GroupExit
			g.status = status
		}
		g.crit.Unlock()

		for _, th := range g.threads {
			if th.Core != c {
				th.Core.Stop()
			}
		}
		return spu.StopHalt, nil

	case StopThreadExit:
		status, ok := c.Channels().PopOutMbox()
		if !ok {
			return spu.StopHalt, curated.Errorf(EmptyMailbox, c, "thread exit")
		}

		g.crit.Lock()
		if th := g.thread(c); th != nil {
			th.exited = true
			th.status = status
		}
		g.crit.Unlock()
		return spu.StopHalt, nil

	case StopReceiveEvent:
		return g.receive(c, true)

	case StopTryReceiveEvent:
		return g.receive(c, false)
	}

	return spu.StopHalt, nil
}

// receive an event for the core. the queue number is in the outbound mailbox
// and the reply is placed in the inbound mailbox
func (g *Group) receive(c *spu.Core, wait bool) (spu.StopAction, error) {
	ch := c.Channels()

	// the queue number is left in the mailbox until the stop code completes
	// so that a cancelled wait can be retried
	num, ok := ch.PeekOutMbox()
	if !ok {
		return spu.StopHalt, curated.Errorf(EmptyMailbox, c, "receive event")
	}

	q, ok := g.m.Bridge.Queue(num)
	if !ok {
		ch.PopOutMbox()
		ch.SetInMbox(events.EINVAL)
		return spu.StopContinue, nil
	}

	for {
		if ev, ok := q.TryReceive(); ok {
			ch.PopOutMbox()
			ch.SetInMbox(events.OK, uint32(ev.Data1), uint32(ev.Data2), uint32(ev.Data3))
			return spu.StopContinue, nil
		}

		if !wait {
			ch.PopOutMbox()
			ch.SetInMbox(events.EBUSY)
			return spu.StopContinue, nil
		}

		if !c.WaitFor(q.Ready()) {
			return spu.StopRetry, nil
		}
	}
}

// InterruptMailbox implements the spu.Supervisor interface. The value is a
// request to the event bridge.
func (g *Group) InterruptMailbox(c *spu.Core, value uint32) (bool, error) {
	data0, ok := c.Channels().PopOutMbox()
	if !ok {
		return false, curated.Errorf(EmptyMailbox, c, "event bridge request")
	}

	r, err := events.Decode(value, data0)
	if err != nil {
		return false, err
	}

	res := g.m.Bridge.Handle(c.ID(), r)
	if r.Reply() {
		c.Channels().SetInMbox(res)
	}

	return true, nil
}
