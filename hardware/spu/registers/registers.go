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

// Package registers implements the 128 x 128-bit general purpose register file
// of a core.
//
// Registers are stored as big-endian byte arrays. Lanes are numbered from the
// most significant end, so word lane 0 occupies bytes 0 to 3. Word lane 0 is
// also the preferred slot, the lane used by scalar operations such as branches,
// channel instructions and address calculations.
package registers

import (
	"encoding/binary"
	"fmt"
	"math"
)

// NumRegisters is the number of general purpose registers.
const NumRegisters = 128

// Reg is a single 128-bit register.
type Reg [16]byte

func (r Reg) String() string {
	return fmt.Sprintf("%08x %08x %08x %08x", r.U32(0), r.U32(1), r.U32(2), r.U32(3))
}

// U8 returns byte lane n (0 to 15).
func (r *Reg) U8(n int) uint8 {
	return r[n]
}

// SetU8 sets byte lane n (0 to 15).
func (r *Reg) SetU8(n int, v uint8) {
	r[n] = v
}

// U16 returns halfword lane n (0 to 7).
func (r *Reg) U16(n int) uint16 {
	return binary.BigEndian.Uint16(r[n*2:])
}

// SetU16 sets halfword lane n (0 to 7).
func (r *Reg) SetU16(n int, v uint16) {
	binary.BigEndian.PutUint16(r[n*2:], v)
}

// U32 returns word lane n (0 to 3).
func (r *Reg) U32(n int) uint32 {
	return binary.BigEndian.Uint32(r[n*4:])
}

// SetU32 sets word lane n (0 to 3).
func (r *Reg) SetU32(n int, v uint32) {
	binary.BigEndian.PutUint32(r[n*4:], v)
}

// S32 returns word lane n as a signed value.
func (r *Reg) S32(n int) int32 {
	return int32(r.U32(n))
}

// U64 returns doubleword lane n (0 or 1).
func (r *Reg) U64(n int) uint64 {
	return binary.BigEndian.Uint64(r[n*8:])
}

// SetU64 sets doubleword lane n (0 or 1).
func (r *Reg) SetU64(n int, v uint64) {
	binary.BigEndian.PutUint64(r[n*8:], v)
}

// F32 returns word lane n as a single precision float.
func (r *Reg) F32(n int) float32 {
	return math.Float32frombits(r.U32(n))
}

// SetF32 sets word lane n from a single precision float.
func (r *Reg) SetF32(n int, v float32) {
	r.SetU32(n, math.Float32bits(v))
}

// Preferred returns the value in the preferred slot.
func (r *Reg) Preferred() uint32 {
	return r.U32(0)
}

// SetPreferred sets the preferred slot. The other lanes are cleared.
func (r *Reg) SetPreferred(v uint32) {
	*r = Reg{}
	r.SetU32(0, v)
}

// SplatU32 sets every word lane to v.
func (r *Reg) SplatU32(v uint32) {
	for i := range 4 {
		r.SetU32(i, v)
	}
}

// SplatU16 sets every halfword lane to v.
func (r *Reg) SplatU16(v uint16) {
	for i := range 8 {
		r.SetU16(i, v)
	}
}

// SplatU8 sets every byte lane to v.
func (r *Reg) SplatU8(v uint8) {
	for i := range 16 {
		r[i] = v
	}
}

// File is the complete register file.
type File [NumRegisters]Reg

// Reset clears every register.
func (f *File) Reset() {
	*f = File{}
}
