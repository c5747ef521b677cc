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

package events

import (
	"context"
	"sync"
)

// Flag is a set of 64 event bits.
type Flag struct {
	crit sync.Mutex
	bits uint64

	// closed and replaced when a bit is set
	change chan struct{}
}

// NewFlag is the preferred method of initialisation for the Flag type.
func NewFlag() *Flag {
	return &Flag{change: make(chan struct{})}
}

// Set a bit. Returns EINVAL if the bit number is out of range.
func (f *Flag) Set(bit uint32) uint32 {
	if bit > 63 {
		return EINVAL
	}
	f.crit.Lock()
	defer f.crit.Unlock()
	f.bits |= 1 << bit
	close(f.change)
	f.change = make(chan struct{})
	return OK
}

// Bits returns the current value of the flag.
func (f *Flag) Bits() uint64 {
	f.crit.Lock()
	defer f.crit.Unlock()
	return f.bits
}

// Clear the bits in the mask.
func (f *Flag) Clear(mask uint64) {
	f.crit.Lock()
	defer f.crit.Unlock()
	f.bits &^= mask
}

// Wait until any bit in the mask is set, or every bit if all is true. The
// value of the flag is returned and the bits in the mask are cleared.
func (f *Flag) Wait(ctx context.Context, mask uint64, all bool) (uint64, error) {
	for {
		f.crit.Lock()
		bits := f.bits
		satisfied := bits&mask != 0
		if all {
			satisfied = bits&mask == mask
		}
		if satisfied {
			f.bits &^= mask
			f.crit.Unlock()
			return bits, nil
		}
		change := f.change
		f.crit.Unlock()

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-change:
		}
	}
}
