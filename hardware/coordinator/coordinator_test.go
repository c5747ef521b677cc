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

package coordinator_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jetsetilly/gophercell/curated"
	"github.com/jetsetilly/gophercell/hardware/coordinator"
	"github.com/jetsetilly/gophercell/hardware/memory/mainmem"
	"github.com/jetsetilly/gophercell/hardware/memory/reservation"
	"github.com/jetsetilly/gophercell/hardware/spu"
	"github.com/jetsetilly/gophercell/hardware/spu/assembler"
	"github.com/jetsetilly/gophercell/hardware/spu/channels"
	"github.com/jetsetilly/gophercell/hardware/spu/interpreter"
	"github.com/jetsetilly/gophercell/hardware/spu/mfc"
	"github.com/jetsetilly/gophercell/test"
)

// unit that makes progress for a fixed number of calls
type unit struct {
	work     atomic.Int32
	serviced atomic.Int32
	err      error
}

func (u *unit) Service() (bool, error) {
	u.serviced.Add(1)
	if u.err != nil {
		return false, u.err
	}
	if u.work.Load() > 0 {
		u.work.Add(-1)
		return true, nil
	}
	return false, nil
}

func (u *unit) String() string {
	return "unit"
}

func TestBackoff(t *testing.T) {
	co := coordinator.NewCoordinator(2, time.Millisecond)
	u := &unit{}
	u.work.Store(1)
	co.Add(u)

	// the control message counts as progress
	p, err := co.Pass()
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, p)
	test.ExpectEquality(t, co.State(), coordinator.Progress)
	test.ExpectEquality(t, co.Stats().Units, 1)

	// no work left
	_, _ = co.Pass()
	test.ExpectEquality(t, co.State(), coordinator.Recheck)
	_, _ = co.Pass()
	test.ExpectEquality(t, co.State(), coordinator.Recheck)
	_, _ = co.Pass()
	test.ExpectEquality(t, co.State(), coordinator.Sleep)

	// new work returns the coordinator to full speed
	u.work.Store(1)
	_, _ = co.Pass()
	test.ExpectEquality(t, co.State(), coordinator.Progress)

	test.ExpectEquality(t, co.Stats().Passes, 5)
	test.ExpectEquality(t, co.Stats().Progress, 2)
	test.ExpectEquality(t, u.serviced.Load(), 5)
}

func TestRemove(t *testing.T) {
	co := coordinator.NewCoordinator(0, time.Millisecond)
	u := &unit{}
	co.Add(u)
	_, _ = co.Pass()
	co.Remove(u)
	_, _ = co.Pass()
	test.ExpectEquality(t, u.serviced.Load(), 1)
	test.ExpectEquality(t, co.Stats().Units, 0)
}

func TestEngineFault(t *testing.T) {
	co := coordinator.NewCoordinator(0, time.Millisecond)
	co.Add(&unit{err: errors.New("broken")})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := co.Run(ctx)
	test.ExpectSuccess(t, curated.Is(err, coordinator.EngineFault))
}

func TestCancel(t *testing.T) {
	co := coordinator.NewCoordinator(0, time.Hour)
	co.Add(&unit{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- co.Run(ctx)
	}()

	// wait for the coordinator to go to sleep
	deadline := time.Now().Add(5 * time.Second)
	for co.Stats().Sleeps == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("coordinator did not sleep")
		}
		time.Sleep(time.Millisecond)
	}

	// adding a unit wakes the coordinator even though the sleep interval is
	// very long
	u := &unit{}
	co.Add(u)
	for u.serviced.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("coordinator did not wake")
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		test.ExpectSuccess(t, err)
	case <-time.After(5 * time.Second):
		t.Fatalf("coordinator did not stop")
	}
}

// a program that fetches a quadword from main memory and waits for the
// transfer to complete
const fetch = `
	il	$3,buf
	wrch	$ch16,$3
	il	$4,0
	wrch	$ch17,$4
	ilhu	$5,1
	wrch	$ch18,$5
	il	$6,16
	wrch	$ch19,$6
	il	$7,1
	wrch	$ch20,$7
	il	$8,0x40
	wrch	$ch21,$8
	il	$9,2
	wrch	$ch22,$9
	il	$10,2
	wrch	$ch23,$10
	rdch	$11,$ch24
	lqa	$12,buf
	stop	0x1
	.org	0x100
buf:	.long	0,0,0,0
`

func TestCoreDMA(t *testing.T) {
	mem := mainmem.NewMemory()
	test.DemandSuccess(t, mem.Map(0x10000, 0x1000))
	test.DemandSuccess(t, mem.Write32(0x10000, 0xcafef00d))

	sys := &mfc.System{
		Memory:       mem,
		Reservations: reservation.NewTable(),
	}
	c := spu.NewCore(0, sys, &channels.ManualClock{})

	prg, err := assembler.AssembleString(fetch)
	test.DemandSuccess(t, err)
	c.WriteLS(0, prg.Code)
	test.DemandSuccess(t, c.Bind(interpreter.NewInterpreter(0)))

	co := coordinator.NewCoordinator(4, 50*time.Microsecond)
	co.Add(c)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- co.Run(ctx)
	}()

	test.DemandSuccess(t, c.Run(ctx))
	cancel()
	test.ExpectSuccess(t, <-done)

	test.ExpectEquality(t, c.Status().StopCode, 1)
	test.ExpectEquality(t, c.GPR[11].U32(0), 2)
	test.ExpectEquality(t, c.GPR[12].U32(0), 0xcafef00d)
}
