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

package mfc

import (
	"fmt"
	"strings"

	"github.com/jetsetilly/gophercell/curated"
)

// Opcode of an MFC command, as written to the MFC_Cmd channel.
type Opcode uint8

// List of valid Opcode values.
const (
	PUT    Opcode = 0x20
	PUTB   Opcode = 0x21
	PUTF   Opcode = 0x22
	PUTL   Opcode = 0x24
	PUTLB  Opcode = 0x25
	PUTLF  Opcode = 0x26
	PUTR   Opcode = 0x30
	PUTRB  Opcode = 0x31
	PUTRF  Opcode = 0x32
	PUTRL  Opcode = 0x34
	PUTRLB Opcode = 0x35
	PUTRLF Opcode = 0x36

	GET   Opcode = 0x40
	GETB  Opcode = 0x41
	GETF  Opcode = 0x42
	GETL  Opcode = 0x44
	GETLB Opcode = 0x45
	GETLF Opcode = 0x46

	SNDSIG  Opcode = 0xa0
	SNDSIGB Opcode = 0xa1
	SNDSIGF Opcode = 0xa2

	PUTLLUC  Opcode = 0xb0
	PUTLLC   Opcode = 0xb4
	PUTQLLUC Opcode = 0xb8

	BARRIER Opcode = 0xc0
	EIEIO   Opcode = 0xc8
	SYNC    Opcode = 0xcc

	GETLLAR Opcode = 0xd0
)

// Kind is the broad class of a command.
type Kind int

// List of valid Kind values.
const (
	KindPut Kind = iota
	KindGet
	KindSignal
	KindBarrier
	KindGetLLAR
	KindPutLLC
	KindPutLLUC
	KindPutQLLUC
)

type opcodeInfo struct {
	name    string
	kind    Kind
	barrier bool
	fence   bool
	list    bool
}

var opcodes = map[Opcode]opcodeInfo{
	PUT:      {name: "PUT", kind: KindPut},
	PUTB:     {name: "PUTB", kind: KindPut, barrier: true},
	PUTF:     {name: "PUTF", kind: KindPut, fence: true},
	PUTL:     {name: "PUTL", kind: KindPut, list: true},
	PUTLB:    {name: "PUTLB", kind: KindPut, list: true, barrier: true},
	PUTLF:    {name: "PUTLF", kind: KindPut, list: true, fence: true},
	PUTR:     {name: "PUTR", kind: KindPut},
	PUTRB:    {name: "PUTRB", kind: KindPut, barrier: true},
	PUTRF:    {name: "PUTRF", kind: KindPut, fence: true},
	PUTRL:    {name: "PUTRL", kind: KindPut, list: true},
	PUTRLB:   {name: "PUTRLB", kind: KindPut, list: true, barrier: true},
	PUTRLF:   {name: "PUTRLF", kind: KindPut, list: true, fence: true},
	GET:      {name: "GET", kind: KindGet},
	GETB:     {name: "GETB", kind: KindGet, barrier: true},
	GETF:     {name: "GETF", kind: KindGet, fence: true},
	GETL:     {name: "GETL", kind: KindGet, list: true},
	GETLB:    {name: "GETLB", kind: KindGet, list: true, barrier: true},
	GETLF:    {name: "GETLF", kind: KindGet, list: true, fence: true},
	SNDSIG:   {name: "SNDSIG", kind: KindSignal},
	SNDSIGB:  {name: "SNDSIGB", kind: KindSignal, barrier: true},
	SNDSIGF:  {name: "SNDSIGF", kind: KindSignal, fence: true},
	PUTLLUC:  {name: "PUTLLUC", kind: KindPutLLUC},
	PUTLLC:   {name: "PUTLLC", kind: KindPutLLC},
	PUTQLLUC: {name: "PUTQLLUC", kind: KindPutQLLUC},
	BARRIER:  {name: "BARRIER", kind: KindBarrier},
	EIEIO:    {name: "EIEIO", kind: KindBarrier},
	SYNC:     {name: "SYNC", kind: KindBarrier},
	GETLLAR:  {name: "GETLLAR", kind: KindGetLLAR},
}

func (op Opcode) String() string {
	if i, ok := opcodes[op]; ok {
		return i.name
	}
	return fmt.Sprintf("MFC_%02x", uint8(op))
}

// Valid returns true if the opcode is a known command.
func (op Opcode) Valid() bool {
	_, ok := opcodes[op]
	return ok
}

// ParseOpcode returns the opcode with the name. The name is not case
// sensitive.
func ParseOpcode(name string) (Opcode, bool) {
	name = strings.ToUpper(name)
	for op, i := range opcodes {
		if i.name == name {
			return op, true
		}
	}
	return 0, false
}

// Atomic status values written to the RdAtomicStat channel.
const (
	AtomicPutLLCSuccess  = 0
	AtomicPutLLCFailure  = 1
	AtomicPutLLUCSuccess = 2
	AtomicGetLLARSuccess = 4
)

// MaxTransfer is the largest single transfer and the largest list.
const MaxTransfer = 0x4000

// ListElementSize is the stride of elements in a transfer list.
const ListElementSize = 8

// Sentinel error patterns. All are protocol violations and are fatal to the
// issuing core.
const (
	IllegalOpcode    = "mfc: illegal command opcode: %#02x"
	IllegalSize      = "mfc: %v: illegal transfer size: %d"
	IllegalAlignment = "mfc: %v: misaligned transfer: lsa %#05x ea %#x size %d"
	IllegalAtomic    = "mfc: %v: atomic command size must be 128 bytes (size %d)"
	IllegalTarget    = "mfc: %v: no backing for effective address: %#x"
	IllegalElement   = "mfc: list element at %#05x: %v"
)

// Command is a single MFC command as it is submitted by the core.
type Command struct {
	LSA    uint32
	EA     uint64
	Size   uint32
	Tag    uint8
	Opcode Opcode
}

func (cmd Command) String() string {
	return fmt.Sprintf("%v lsa=%#05x ea=%#x size=%#x tag=%d", cmd.Opcode, cmd.LSA, cmd.EA, cmd.Size, cmd.Tag)
}

// Kind returns the class of the command.
func (cmd Command) Kind() Kind {
	return opcodes[cmd.Opcode].kind
}

// Barrier returns true if the command carries the barrier flag.
func (cmd Command) Barrier() bool {
	return opcodes[cmd.Opcode].barrier
}

// Fence returns true if the command carries the fence flag.
func (cmd Command) Fence() bool {
	return opcodes[cmd.Opcode].fence
}

// List returns true if the command is a list transfer. For list commands
// the low word of EA is the local store address of the list and Size is the
// size of the list in bytes.
func (cmd Command) List() bool {
	return opcodes[cmd.Opcode].list
}

// Atomic returns true for the commands that operate on a reservation line.
func (cmd Command) Atomic() bool {
	switch cmd.Kind() {
	case KindGetLLAR, KindPutLLC, KindPutLLUC, KindPutQLLUC:
		return true
	}
	return false
}

// Validate the command before it is queued or executed.
func (cmd Command) Validate() error {
	if !cmd.Opcode.Valid() {
		return curated.Errorf(IllegalOpcode, uint8(cmd.Opcode))
	}

	switch cmd.Kind() {
	case KindBarrier:
		return nil
	case KindGetLLAR, KindPutLLC, KindPutLLUC, KindPutQLLUC:
		if cmd.Size != 128 {
			return curated.Errorf(IllegalAtomic, cmd.Opcode, cmd.Size)
		}
		return nil
	case KindSignal:
		if cmd.Size != 4 {
			return curated.Errorf(IllegalSize, cmd.Opcode, cmd.Size)
		}
	}

	if cmd.List() {
		if cmd.Size == 0 || cmd.Size > MaxTransfer || cmd.Size%ListElementSize != 0 {
			return curated.Errorf(IllegalSize, cmd.Opcode, cmd.Size)
		}
		if cmd.EA%ListElementSize != 0 {
			return curated.Errorf(IllegalAlignment, cmd.Opcode, cmd.LSA, cmd.EA, cmd.Size)
		}
		return nil
	}

	return checkTransfer(cmd.Opcode, cmd.LSA, cmd.EA, cmd.Size)
}

// checkTransfer applies the size and alignment rules for a single transfer
func checkTransfer(op Opcode, lsa uint32, ea uint64, size uint32) error {
	switch size {
	case 0:
		return nil
	case 1, 2, 4, 8:
		if ea%uint64(size) != 0 || uint64(lsa&0xf) != ea&0xf {
			return curated.Errorf(IllegalAlignment, op, lsa, ea, size)
		}
		return nil
	}

	if size%16 != 0 || size > MaxTransfer {
		return curated.Errorf(IllegalSize, op, size)
	}
	if lsa%16 != 0 || ea%16 != 0 {
		return curated.Errorf(IllegalAlignment, op, lsa, ea, size)
	}
	return nil
}
