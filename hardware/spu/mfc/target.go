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

	"github.com/jetsetilly/gophercell/hardware/spu/localstore"
)

// Memory is the effective address space behind DMA transfers to and from
// main memory.
type Memory interface {
	Read(addr uint32, p []byte) error
	Write(addr uint32, p []byte) error
}

// Peer is another core, reached through an MMIO window.
type Peer interface {
	LocalStore() *localstore.LocalStore
	WriteSignal(n int, v uint32)
}

// TargetKind says where an effective address points.
type TargetKind int

// List of valid TargetKind values.
const (
	NoBacking TargetKind = iota
	MainMemory
	PeerLocalStore
	PeerSignal
)

func (k TargetKind) String() string {
	switch k {
	case MainMemory:
		return "main memory"
	case PeerLocalStore:
		return "peer local store"
	case PeerSignal:
		return "peer signal"
	}
	return "no backing"
}

// Target is the result of classifying an effective address. For MainMemory
// Addr is the main memory address. For PeerLocalStore Addr is the offset in
// the peer's local store. For PeerSignal, Signal is the register number (0
// or 1).
type Target struct {
	Kind   TargetKind
	Addr   uint32
	Peer   Peer
	Signal int
}

func (t Target) String() string {
	switch t.Kind {
	case MainMemory, PeerLocalStore:
		return fmt.Sprintf("%v %#x", t.Kind, t.Addr)
	case PeerSignal:
		return fmt.Sprintf("%v %d", t.Kind, t.Signal+1)
	}
	return t.Kind.String()
}

// Resolver classifies an effective address issued by a core. The issuer
// value is the identity of the issuing core and is used to resolve the
// addresses of sibling cores in a thread group.
type Resolver interface {
	Classify(issuer int, ea uint64, size uint32) Target
}

// classify with the resolver if there is one. without a resolver every 32
// bit address is main memory
func (sys *System) classify(issuer int, ea uint64, size uint32) Target {
	if sys.Resolver != nil {
		return sys.Resolver.Classify(issuer, ea, size)
	}
	if ea+uint64(size) > 1<<32 {
		return Target{Kind: NoBacking}
	}
	return Target{Kind: MainMemory, Addr: uint32(ea)}
}
