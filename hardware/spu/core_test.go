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

package spu_test

import (
	"context"
	"testing"
	"time"

	"github.com/jetsetilly/gophercell/hardware/memory/mainmem"
	"github.com/jetsetilly/gophercell/hardware/memory/reservation"
	"github.com/jetsetilly/gophercell/hardware/spu"
	"github.com/jetsetilly/gophercell/hardware/spu/assembler"
	"github.com/jetsetilly/gophercell/hardware/spu/channels"
	"github.com/jetsetilly/gophercell/hardware/spu/interpreter"
	"github.com/jetsetilly/gophercell/hardware/spu/mfc"
	"github.com/jetsetilly/gophercell/hardware/spu/registers"
	"github.com/jetsetilly/gophercell/test"
)

func newCore(t *testing.T, src string) (*spu.Core, *assembler.Program) {
	t.Helper()

	prg, err := assembler.AssembleString(src)
	test.DemandSuccess(t, err)

	sys := &mfc.System{
		Memory:       mainmem.NewMemory(),
		Reservations: reservation.NewTable(),
	}
	c := spu.NewCore(0, sys, &channels.ManualClock{})
	c.WriteLS(0, prg.Code)
	c.SetPC(prg.Entry)
	test.DemandSuccess(t, c.Bind(interpreter.NewInterpreter(0)))
	return c, prg
}

// start the core in a goroutine. the returned channel receives the result of
// Run()
func start(c *spu.Core) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- c.Run(context.Background())
	}()
	return done
}

func wait(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		test.DemandSuccess(t, err)
	case <-time.After(5 * time.Second):
		t.Fatalf("core did not stop")
	}
}

// wait until Run() has started
func running(t *testing.T, c *spu.Core) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !c.Running() {
		if time.Now().After(deadline) {
			t.Fatalf("core did not start")
		}
		time.Sleep(time.Millisecond)
	}
}

// reads the inbound mailbox, adds one and writes the result to the outbound
// mailbox
const echo = `
	rdch	$3,$ch29
	ai	$3,$3,1
	wrch	$ch28,$3
	stop	0x3
double:	a	$3,$3,$3
	bi	$lr
`

func TestMailbox(t *testing.T) {
	c, _ := newCore(t, echo)
	done := start(c)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	test.DemandSuccess(t, c.WriteInMbox(ctx, 41))
	v, err := c.ReadOutMbox(ctx)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, v, 42)

	wait(t, done)
	r := c.Status()
	test.ExpectEquality(t, r.State, spu.Halted)
	test.ExpectEquality(t, r.StopCode, 3)
}

func TestStopDuringWait(t *testing.T) {
	c, _ := newCore(t, echo)
	done := start(c)
	c.Stop()
	wait(t, done)

	// the blocked read was not retired
	r := c.Status()
	test.ExpectEquality(t, r.State, spu.Stopped)
	test.ExpectEquality(t, r.PC, 0)
	test.ExpectEquality(t, c.GPR[3].U32(0), 0)

	// the stop request has been consumed and the core can run again
	done = start(c)
	test.DemandSuccess(t, c.TryWriteInMbox(1))
	wait(t, done)
	test.ExpectEquality(t, c.Status().StopCode, 3)
}

func TestStopBeforeRun(t *testing.T) {
	c, _ := newCore(t, echo)
	c.Stop()
	test.DemandSuccess(t, c.Run(context.Background()))
	test.ExpectEquality(t, c.Status().State, spu.Stopped)
}

func TestAlreadyRunning(t *testing.T) {
	c, _ := newCore(t, echo)
	done := start(c)
	running(t, c)

	test.ExpectFailure(t, c.Run(context.Background()))
	test.ExpectFailure(t, c.Bind(interpreter.NewInterpreter(0)))

	c.Stop()
	wait(t, done)
}

func TestSnapshot(t *testing.T) {
	c, _ := newCore(t, echo)
	c.GPR[5].SplatU32(0x55)
	done := start(c)
	running(t, c)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := c.Snapshot(ctx)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, s.Report.State, spu.Paused)
	test.ExpectEquality(t, s.PC, 0)
	test.ExpectEquality(t, s.GPR[5].U32(3), 0x55)
	test.ExpectEquality(t, s.Backend, "interpreter")
	test.ExpectEquality(t, len(s.LocalStore), 0x40000)

	// the core carries on after the snapshot
	test.DemandSuccess(t, c.WriteInMbox(ctx, 1))
	v, err := c.ReadOutMbox(ctx)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, v, 2)
	wait(t, done)
}

func TestPauseResume(t *testing.T) {
	c, _ := newCore(t, echo)
	c.Pause()
	done := start(c)
	running(t, c)

	// the mailbox can be written while the core is paused but the core does
	// not read it until resumed
	test.DemandSuccess(t, c.TryWriteInMbox(9))
	_, ok := c.TryReadOutMbox()
	test.ExpectFailure(t, ok)

	c.Resume()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	v, err := c.ReadOutMbox(ctx)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, v, 10)
	wait(t, done)
}

func TestFastCall(t *testing.T) {
	c, prg := newCore(t, echo)
	c.GPR[3].SplatU32(0x1234)
	done := start(c)
	running(t, c)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r, err := c.FastCall(ctx, prg.Labels["double"], func(gpr *registers.File) {
		gpr[3].SetPreferred(21)
	})
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, r.U32(0), 42)

	// the core continues from where it was and with the same registers
	test.DemandSuccess(t, c.WriteInMbox(ctx, 99))
	v, err := c.ReadOutMbox(ctx)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, v, 100)
	wait(t, done)
}

const spin = `
	stop	0x1
spin:	il	$4,20000
loop:	ai	$4,$4,-1
	brnz	$4,loop
	il	$3,7
	bi	$lr
`

// snapshots taken while a fast call is running see the state from before or
// after the call, never the state of the routine
func TestSnapshotDuringFastCall(t *testing.T) {
	c, prg := newCore(t, spin)
	c.GPR[3].SplatU32(0x77)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var r registers.Reg
	done := make(chan error, 1)
	go func() {
		var err error
		r, err = c.FastCall(ctx, prg.Labels["spin"], nil)
		done <- err
	}()

	for range 200 {
		s, err := c.Snapshot(ctx)
		test.DemandSuccess(t, err)
		test.ExpectEquality(t, s.PC, 0)
		test.ExpectEquality(t, s.GPR[3].U32(0), 0x77)
		test.ExpectEquality(t, s.GPR[4].U32(0), 0)
	}

	test.DemandSuccess(t, <-done)
	test.ExpectEquality(t, r.U32(0), 7)
	test.ExpectEquality(t, c.PC(), 0)
}

type supervisor struct {
	calls []uint32
}

func (s *supervisor) StopAndSignal(c *spu.Core, code uint32) (spu.StopAction, error) {
	s.calls = append(s.calls, code)
	if code == 0x100 {
		return spu.StopContinue, nil
	}
	return spu.StopHalt, nil
}

func (s *supervisor) InterruptMailbox(c *spu.Core, value uint32) (bool, error) {
	return true, nil
}

func TestSupervisor(t *testing.T) {
	c, _ := newCore(t, `
	stop	0x100
	il	$3,5
	stop	0x200
`)
	s := &supervisor{}
	c.SetSupervisor(s)
	test.DemandSuccess(t, c.Run(context.Background()))

	test.ExpectEquality(t, len(s.calls), 2)
	test.ExpectEquality(t, c.GPR[3].U32(0), 5)
	test.ExpectEquality(t, c.Status().StopCode, 0x200)
}

func TestObserver(t *testing.T) {
	c, _ := newCore(t, `
	stop	0x1
`)
	var observed spu.Report
	c.SetObserver(func(c *spu.Core) {
		observed = c.Status()
	})
	test.DemandSuccess(t, c.Run(context.Background()))
	test.ExpectEquality(t, observed.State, spu.Halted)
	test.ExpectEquality(t, observed.StopCode, 1)
}
