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

// FIFO is a bounded first-in-first-out queue of channel values. It is not safe
// for concurrent use. The Block type guards every FIFO with its lock.
type FIFO struct {
	buf  []uint32
	head int
	n    int
}

// NewFIFO is the preferred method of initialisation for the FIFO type.
func NewFIFO(depth int) FIFO {
	return FIFO{buf: make([]uint32, depth)}
}

// Len returns the number of values in the FIFO.
func (f *FIFO) Len() int {
	return f.n
}

// Space returns the number of values that can be pushed before the FIFO is
// full.
func (f *FIFO) Space() int {
	return len(f.buf) - f.n
}

// Push a value. Returns false if the FIFO is full.
func (f *FIFO) Push(v uint32) bool {
	if f.n == len(f.buf) {
		return false
	}
	f.buf[(f.head+f.n)%len(f.buf)] = v
	f.n++
	return true
}

// Pop the oldest value. Returns false if the FIFO is empty.
func (f *FIFO) Pop() (uint32, bool) {
	if f.n == 0 {
		return 0, false
	}
	v := f.buf[f.head]
	f.head = (f.head + 1) % len(f.buf)
	f.n--
	return v, true
}

// Values returns a copy of the contents, oldest first.
func (f *FIFO) Values() []uint32 {
	v := make([]uint32, f.n)
	for i := range v {
		v[i] = f.buf[(f.head+i)%len(f.buf)]
	}
	return v
}

// Clear the FIFO.
func (f *FIFO) Clear() {
	f.head = 0
	f.n = 0
}
