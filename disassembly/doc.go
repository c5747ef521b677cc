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

// Package disassembly produces listings of SPU programs, from the local store
// of a core or from a program image.
//
// Should not be confused with the Disassemble() function of the isa package,
// which disassembles a single instruction word. The Disassembly type in this
// package caches the decoded entries so that repeated listings, such as the
// listing around the PC that the monitor shows every time a core is paused,
// do not decode the same instructions over and over.
//
// Entries are cached by instruction word and address. The address is part of
// the key because the operand of a relative branch is shown as the target
// address.
package disassembly
