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

package channels

import (
	"sync/atomic"
	"time"
)

// Clock is the source of timebase ticks for the decrementer.
type Clock interface {
	Ticks() uint64
}

// DefaultTimebase is the frequency of the timebase in MHz.
const DefaultTimebase = 79.8

// Timebase is a Clock driven by the host's monotonic clock.
type Timebase struct {
	start time.Time
	mhz   float64
}

// NewTimebase is the preferred method of initialisation for the Timebase type.
func NewTimebase(mhz float64) *Timebase {
	if mhz <= 0 {
		mhz = DefaultTimebase
	}
	return &Timebase{start: time.Now(), mhz: mhz}
}

// Ticks implements the Clock interface.
func (tb *Timebase) Ticks() uint64 {
	return uint64(float64(time.Since(tb.start).Microseconds()) * tb.mhz)
}

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	ticks atomic.Uint64
}

// Ticks implements the Clock interface.
func (c *ManualClock) Ticks() uint64 {
	return c.ticks.Load()
}

// Advance the clock by a number of ticks.
func (c *ManualClock) Advance(n uint64) {
	c.ticks.Add(n)
}
