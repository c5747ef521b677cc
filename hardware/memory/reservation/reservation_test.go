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

package reservation_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jetsetilly/gophercell/hardware/memory/reservation"
	"github.com/jetsetilly/gophercell/test"
)

type holder struct {
	lost atomic.Int32
}

func (h *holder) ReservationLost(line uint32) {
	h.lost.Add(1)
}

func nop() error { return nil }

func TestSingleWinner(t *testing.T) {
	tbl := reservation.NewTable()

	const n = 8
	var holders [n]holder
	var gens [n]uint64

	for i := range holders {
		g, err := tbl.Acquire(&holders[i], 0x1000, nop)
		test.DemandSuccess(t, err)
		gens[i] = g
	}

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := range holders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := tbl.Conditional(&holders[i], 0x1040, gens[i], nop)
			test.ExpectSuccess(t, err)
			if ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	test.ExpectEquality(t, wins.Load(), int32(1))
	test.ExpectEquality(t, tbl.Generation(0x1000), uint64(1))

	// every loser except the winner was notified exactly once
	var notified int32
	for i := range holders {
		notified += holders[i].lost.Load()
		test.ExpectFailure(t, tbl.Holds(&holders[i], 0x1000))
	}
	test.ExpectEquality(t, notified, int32(n-1))
}

func TestUnconditionalInvalidates(t *testing.T) {
	tbl := reservation.NewTable()
	var a, b holder

	ga, _ := tbl.Acquire(&a, 0x2000, nop)
	_, _ = tbl.Acquire(&b, 0x2000, nop)

	written := false
	err := tbl.Unconditional(&b, 0x2000, func() error {
		written = true
		return nil
	})
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, written)
	test.ExpectEquality(t, a.lost.Load(), int32(1))

	// the issuer loses its reservation silently
	test.ExpectEquality(t, b.lost.Load(), int32(0))
	test.ExpectFailure(t, tbl.Holds(&b, 0x2000))

	ok, err := tbl.Conditional(&a, 0x2000, ga, nop)
	test.ExpectSuccess(t, err)
	test.ExpectFailure(t, ok)
}

func TestTouch(t *testing.T) {
	tbl := reservation.NewTable()
	var a, b holder

	_, _ = tbl.Acquire(&a, 0x3000, nop)
	_, _ = tbl.Acquire(&b, 0x3100, nop)

	// touching a line nobody holds changes nothing
	tbl.Touch(0x3080, 4)
	test.ExpectEquality(t, a.lost.Load(), int32(0))
	test.ExpectEquality(t, b.lost.Load(), int32(0))

	// a store straddling both lines advances both generations but the
	// holders are not told
	ga := tbl.Generation(0x3000)
	gb := tbl.Generation(0x3100)
	tbl.Touch(0x307c, 0x90)
	test.ExpectEquality(t, a.lost.Load(), int32(0))
	test.ExpectEquality(t, b.lost.Load(), int32(0))
	test.ExpectEquality(t, tbl.Generation(0x3000), ga+1)
	test.ExpectEquality(t, tbl.Generation(0x3100), gb+1)

	// the conditional store by b fails because the line has moved on
	ok, err := tbl.Conditional(&b, 0x3100, gb, nop)
	test.ExpectSuccess(t, err)
	test.ExpectFailure(t, ok)

	tbl.Release(&a, 0x3000)
	test.ExpectFailure(t, tbl.Holds(&a, 0x3000))
}
