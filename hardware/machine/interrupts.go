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
	"github.com/jetsetilly/gophercell/hardware/spu"
	"github.com/jetsetilly/gophercell/hardware/spu/faults"
	"github.com/jetsetilly/gophercell/logger"
)

// Interrupt classes of a raw core.
const (
	ErrorClass       = 0
	ApplicationClass = 2
)

// Status bits of the error class.
const (
	IntSPUError uint64 = 0x2
)

// Status bits of the application class.
const (
	IntMailbox uint64 = 0x1
	IntStop    uint64 = 0x2
	IntHalt    uint64 = 0x4
)

type interruptClass struct {
	mask uint64
	stat uint64
	tag  *InterruptTag
}

// interrupt controller of a raw core. the status bits of a class are set
// regardless of the mask. the mask decides whether the tag of the class is
// raised
type interrupts struct {
	core *spu.Core

	crit    sync.Mutex
	classes [ApplicationClass + 1]interruptClass

	// closed and replaced when the status or mask of any class changes
	changed chan struct{}
}

func newInterrupts(c *spu.Core) *interrupts {
	return &interrupts{
		core:    c,
		changed: make(chan struct{}),
	}
}

// the lock must be held
func (ic *interrupts) notify() {
	close(ic.changed)
	ic.changed = make(chan struct{})
}

func (ic *interrupts) raise(class int, bits uint64) {
	ic.crit.Lock()
	defer ic.crit.Unlock()
	ic.classes[class].stat |= bits
	ic.notify()
	logger.Logf(logger.Allow, "machine", "%s: class %d interrupt %#x", ic.core, class, bits)
}

// StopAndSignal implements the spu.Supervisor interface. Every stop code halts
// a raw core. The interrupt is raised by observe() when the core has halted.
func (ic *interrupts) StopAndSignal(_ *spu.Core, _ uint32) (spu.StopAction, error) {
	return spu.StopHalt, nil
}

// InterruptMailbox implements the spu.Supervisor interface. The value stays in
// the outbound interrupt mailbox until the host reads it.
func (ic *interrupts) InterruptMailbox(c *spu.Core, value uint32) (bool, error) {
	if !c.Channels().WriteOutIntrMbox(value) {
		return false, nil
	}
	ic.raise(ApplicationClass, IntMailbox)
	return true, nil
}

// called when Run() returns
func (ic *interrupts) observe(c *spu.Core) {
	rep := c.Status()
	if rep.State != spu.Halted {
		return
	}

	if rep.Status&spu.Fault != 0 {
		if e, ok := c.Faults().Last(); ok && e.Category == faults.HaltInstruction {
			ic.raise(ApplicationClass, IntHalt)
			return
		}
		ic.raise(ErrorClass, IntSPUError)
		return
	}

	if rep.Status&spu.Halt != 0 {
		ic.raise(ApplicationClass, IntStop)
	}
}

// InterruptTag is raised when an unmasked interrupt of its class is pending on
// a raw core.
type InterruptTag struct {
	ic    *interrupts
	class int
}

func (tag *InterruptTag) String() string {
	return fmt.Sprintf("%s: class %d", tag.ic.core, tag.class)
}

// Class of the interrupt that raises the tag.
func (tag *InterruptTag) Class() int {
	return tag.class
}

// Pending returns the unmasked status bits of the tag's class.
func (tag *InterruptTag) Pending() uint64 {
	tag.ic.crit.Lock()
	defer tag.ic.crit.Unlock()
	cls := &tag.ic.classes[tag.class]
	return cls.stat & cls.mask
}

// Wait until the tag is raised and return the unmasked status bits. The bits
// are not cleared.
func (tag *InterruptTag) Wait(ctx context.Context) (uint64, error) {
	for {
		tag.ic.crit.Lock()
		cls := &tag.ic.classes[tag.class]
		pending := cls.stat & cls.mask
		changed := tag.ic.changed
		tag.ic.crit.Unlock()

		if pending != 0 {
			return pending, nil
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-changed:
		}
	}
}

// the interrupt controller of a raw core
func (m *Machine) rawInterrupts(c *spu.Core, class int) (*interrupts, error) {
	m.crit.RLock()
	ic, ok := m.intr[c]
	m.crit.RUnlock()
	if !ok {
		return nil, curated.Errorf(NotRawCore, c)
	}
	if class != ErrorClass && class != ApplicationClass {
		return nil, curated.Errorf(InterruptClass, c, class)
	}
	return ic, nil
}

// CreateInterruptTag creates the interrupt tag for a class of a raw core. A
// class has at most one tag.
func (m *Machine) CreateInterruptTag(c *spu.Core, class int) (*InterruptTag, error) {
	ic, err := m.rawInterrupts(c, class)
	if err != nil {
		return nil, err
	}

	ic.crit.Lock()
	defer ic.crit.Unlock()
	if ic.classes[class].tag != nil {
		return nil, curated.Errorf(InterruptTagInUse, c, class)
	}
	tag := &InterruptTag{ic: ic, class: class}
	ic.classes[class].tag = tag
	return tag, nil
}

// SetIntMask sets the interrupt mask of a class of a raw core.
func (m *Machine) SetIntMask(c *spu.Core, class int, mask uint64) error {
	ic, err := m.rawInterrupts(c, class)
	if err != nil {
		return err
	}
	ic.crit.Lock()
	defer ic.crit.Unlock()
	ic.classes[class].mask = mask
	ic.notify()
	return nil
}

// IntMask returns the interrupt mask of a class of a raw core.
func (m *Machine) IntMask(c *spu.Core, class int) (uint64, error) {
	ic, err := m.rawInterrupts(c, class)
	if err != nil {
		return 0, err
	}
	ic.crit.Lock()
	defer ic.crit.Unlock()
	return ic.classes[class].mask, nil
}

// SetIntStat clears the status bits of a class of a raw core that are set in
// the value.
func (m *Machine) SetIntStat(c *spu.Core, class int, stat uint64) error {
	ic, err := m.rawInterrupts(c, class)
	if err != nil {
		return err
	}
	ic.crit.Lock()
	defer ic.crit.Unlock()
	ic.classes[class].stat &^= stat
	ic.notify()
	return nil
}

// IntStat returns the interrupt status of a class of a raw core.
func (m *Machine) IntStat(c *spu.Core, class int) (uint64, error) {
	ic, err := m.rawInterrupts(c, class)
	if err != nil {
		return 0, err
	}
	ic.crit.Lock()
	defer ic.crit.Unlock()
	return ic.classes[class].stat, nil
}

// ReadInterruptMailbox pops the outbound interrupt mailbox of a raw core
// without waiting.
func (m *Machine) ReadInterruptMailbox(c *spu.Core) (uint32, error) {
	if _, err := m.rawInterrupts(c, ApplicationClass); err != nil {
		return 0, err
	}
	v, ok := c.Channels().PopOutIntrMbox()
	if !ok {
		return 0, curated.Errorf(EmptyMailbox, c, "interrupt mailbox read")
	}
	return v, nil
}
