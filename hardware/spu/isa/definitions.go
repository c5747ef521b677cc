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

import (
	"fmt"

	"github.com/jetsetilly/gophercell/hardware/spu"
	"github.com/jetsetilly/gophercell/hardware/spu/faults"
)

// Format of an instruction word. The format determines the length of the
// opcode and the operand fields.
type Format int

// List of valid instruction formats.
const (
	RR Format = iota
	RRR
	RI7
	RI8
	RI10
	RI16
	RI18

	// formats with the RR opcode length but with special operand fields
	Stop
	Channel
	Branch
)

// OpcodeBits returns the length of the opcode for the format.
func (f Format) OpcodeBits() int {
	switch f {
	case RRR:
		return 4
	case RI18:
		return 7
	case RI10:
		return 8
	case RI16:
		return 9
	case RI8:
		return 10
	}
	return 11
}

func (f Format) String() string {
	switch f {
	case RR:
		return "RR"
	case RRR:
		return "RRR"
	case RI7:
		return "RI7"
	case RI8:
		return "RI8"
	case RI10:
		return "RI10"
	case RI16:
		return "RI16"
	case RI18:
		return "RI18"
	case Stop:
		return "stop"
	case Channel:
		return "channel"
	case Branch:
		return "branch"
	}
	return "unknown format"
}

// Effect categorises an instruction by the effect it has on the core.
type Effect int

// List of valid Effect values.
const (
	Compute Effect = iota
	Load
	Store
	Flow
	ChannelAccess
	Control
)

func (e Effect) String() string {
	switch e {
	case Compute:
		return "compute"
	case Load:
		return "load"
	case Store:
		return "store"
	case Flow:
		return "flow"
	case ChannelAccess:
		return "channel"
	case Control:
		return "control"
	}
	return "unknown effect"
}

// Definition defines each instruction in the instruction set. One per
// instruction.
type Definition struct {
	Mnemonic string

	// value of the opcode field. the length of the field is given by the
	// format
	Opcode uint32
	Format Format
	Effect Effect

	// the instruction always transfers control or stops the core. a
	// straight-line run of instructions ends with an instruction that has
	// this flag set
	Terminal bool

	// the effect of the instruction on the core. the instruction is retired
	// by the backend afterwards
	Execute func(c *spu.Core, f Fields)
}

func (defn Definition) String() string {
	return fmt.Sprintf("%s [%s %#x] %s", defn.Mnemonic, defn.Format, defn.Opcode, defn.Effect)
}

// Lookup returns the definition for the instruction word. Returns nil if the
// word is not a valid instruction.
func Lookup(word uint32) *Definition {
	return table[word>>21]
}

// Definitions returns every instruction definition. The order is fixed but
// not significant.
func Definitions() []*Definition {
	d := make([]*Definition, len(definitions))
	for i := range definitions {
		d[i] = &definitions[i]
	}
	return d
}

// ByMnemonic returns the definition with the mnemonic. The mnemonic must be
// in lower case.
func ByMnemonic(mnemonic string) (*Definition, bool) {
	d, ok := mnemonics[mnemonic]
	return d, ok
}

// Encode returns the instruction word with the opcode of the definition and
// the operand bits. Operand bits that overlap the opcode are discarded.
func (defn Definition) Encode(operands uint32) uint32 {
	n := defn.Format.OpcodeBits()
	return defn.Opcode<<(32-n) | operands&(1<<(32-n)-1)
}

// the dispatch table is indexed by the eleven most significant bits of the
// instruction word. instructions with shorter opcodes occupy more than one
// entry. the table is built once by init() and is read-only afterwards
var table [2048]*Definition

var mnemonics map[string]*Definition

func init() {
	mnemonics = make(map[string]*Definition, len(definitions))

	for i := range definitions {
		defn := &definitions[i]
		mnemonics[defn.Mnemonic] = defn

		shift := 11 - defn.Format.OpcodeBits()
		first := defn.Opcode << shift
		for j := range uint32(1 << shift) {
			if table[first|j] != nil {
				panic(fmt.Sprintf("isa: %s overlaps %s", defn.Mnemonic, table[first|j].Mnemonic))
			}
			table[first|j] = defn
		}
	}
}

// Illegal is the effect of an instruction word that is not a valid
// instruction. The core faults at the current PC.
func Illegal(c *spu.Core, word uint32) {
	pc := c.PC()
	c.Fault(faults.IllegalInstruction, fmt.Sprintf("%#08x at %#05x", word, pc), uint64(pc))
}
