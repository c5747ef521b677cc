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

package isa

// Fields is an instruction word with accessor functions for each of the
// operand fields. Which fields are meaningful depends on the Format of the
// instruction.
//
// Bits are numbered from the least significant end, which is the reverse of
// the numbering used in the architecture documents.
type Fields uint32

// RT is the target register of every format except RRR.
func (f Fields) RT() int {
	return int(f & 0x7f)
}

// RA is the first source register.
func (f Fields) RA() int {
	return int(f >> 7 & 0x7f)
}

// RB is the second source register.
func (f Fields) RB() int {
	return int(f >> 14 & 0x7f)
}

// RC is the third source register of the RRR format.
func (f Fields) RC() int {
	return int(f & 0x7f)
}

// RT4 is the target register of the RRR format.
func (f Fields) RT4() int {
	return int(f >> 21 & 0x7f)
}

// I7 is the sign extended 7-bit immediate of the RI7 format.
func (f Fields) I7() int32 {
	return int32(f<<11) >> 25
}

// I8 is the unsigned 8-bit immediate of the RI8 format.
func (f Fields) I8() uint32 {
	return uint32(f >> 14 & 0xff)
}

// I10 is the sign extended 10-bit immediate of the RI10 format.
func (f Fields) I10() int32 {
	return int32(f<<8) >> 22
}

// I16 is the unsigned 16-bit immediate of the RI16 format.
func (f Fields) I16() uint32 {
	return uint32(f >> 7 & 0xffff)
}

// S16 is the sign extended 16-bit immediate of the RI16 format.
func (f Fields) S16() int32 {
	return int32(int16(f >> 7))
}

// I18 is the unsigned 18-bit immediate of the RI18 format.
func (f Fields) I18() uint32 {
	return uint32(f >> 7 & 0x3ffff)
}

// StopCode is the signal type of the STOP instruction.
func (f Fields) StopCode() uint32 {
	return uint32(f & 0x3fff)
}

// D is the interrupt disable bit of the indirect branch instructions.
func (f Fields) D() bool {
	return f&(1<<19) != 0
}

// E is the interrupt enable bit of the indirect branch instructions.
func (f Fields) E() bool {
	return f&(1<<18) != 0
}
