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

package disassembly

import (
	"encoding/binary"
	"fmt"
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jetsetilly/gophercell/curated"
	"github.com/jetsetilly/gophercell/hardware/spu/isa"
	"github.com/jetsetilly/gophercell/hardware/spu/localstore"
)

// DefaultCacheSize is the number of entries cached when NewDisassembly() is
// called with a size of zero.
const DefaultCacheSize = 4096

// CacheError is returned when the entry cache can not be created.
const CacheError = "disassembly: %v"

// Entry is a single disassembled instruction.
type Entry struct {
	Address  uint32
	Word     uint32
	Mnemonic string
	Operands string

	// false if the word is not a valid instruction
	Valid bool
}

func (e Entry) String() string {
	if e.Operands == "" {
		return e.Mnemonic
	}
	return fmt.Sprintf("%s %s", e.Mnemonic, e.Operands)
}

// Memory is the source of instruction words. The localstore.LocalStore type
// satisfies this interface.
type Memory interface {
	Read32(addr uint32) uint32
}

type key struct {
	word uint32
	addr uint32
}

// Disassembly represents a cache of disassembled instructions.
type Disassembly struct {
	cache *lru.Cache[key, Entry]

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewDisassembly is the preferred method of initialisation for the
// Disassembly type.
func NewDisassembly(size int) (*Disassembly, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[key, Entry](size)
	if err != nil {
		return nil, curated.Errorf(CacheError, err)
	}
	return &Disassembly{cache: cache}, nil
}

// Decode the instruction word found at the address.
func (dsm *Disassembly) Decode(word uint32, addr uint32) Entry {
	k := key{word: word, addr: addr}
	if e, ok := dsm.cache.Get(k); ok {
		dsm.hits.Add(1)
		return e
	}
	dsm.misses.Add(1)

	s := isa.Disassemble(word, addr)
	mnemonic, operands, _ := strings.Cut(s, " ")

	e := Entry{
		Address:  addr,
		Word:     word,
		Mnemonic: mnemonic,
		Operands: strings.TrimSpace(operands),
		Valid:    isa.Lookup(word) != nil,
	}
	dsm.cache.Add(k, e)
	return e
}

// FromMemory disassembles the instructions in the range. The end address is
// not included.
func (dsm *Disassembly) FromMemory(mem Memory, from uint32, to uint32) []Entry {
	from &^= 3
	var entries []Entry
	for addr := from; addr < to && addr < localstore.Size; addr += 4 {
		entries = append(entries, dsm.Decode(mem.Read32(addr), addr))
	}
	return entries
}

// Around disassembles n instructions either side of the address.
func (dsm *Disassembly) Around(mem Memory, pc uint32, n int) []Entry {
	pc &= localstore.Mask &^ 3
	from := uint32(0)
	if d := uint32(n * 4); pc > d {
		from = pc - d
	}
	return dsm.FromMemory(mem, from, pc+uint32(n*4)+4)
}

// FromBytes disassembles a program held in a byte slice. The origin is the
// address of the first byte.
func (dsm *Disassembly) FromBytes(data []byte, origin uint32) []Entry {
	var entries []Entry
	for i := 0; i+4 <= len(data); i += 4 {
		addr := origin + uint32(i)
		entries = append(entries, dsm.Decode(binary.BigEndian.Uint32(data[i:]), addr))
	}
	return entries
}

// Stats returns the number of cache hits and misses.
func (dsm *Disassembly) Stats() (uint64, uint64) {
	return dsm.hits.Load(), dsm.misses.Load()
}
