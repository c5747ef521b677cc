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

package machine

import (
	"github.com/jetsetilly/gophercell/hardware/spu/localstore"
	"github.com/jetsetilly/gophercell/hardware/spu/mfc"
)

// Base addresses and size of the problem state windows.
const (
	RawBase    = 0xe0000000
	GroupBase  = 0xf0000000
	WindowSize = 0x100000
)

// Offsets of the signal-notify registers in a problem state window.
const (
	Signal1Offset = 0x5400c
	Signal2Offset = 0x5c00c
)

// MaxRawCores is the number of raw cores a machine can have.
const MaxRawCores = 8

// MaxThreads is the largest number of threads in a group.
const MaxThreads = 8

// Classify implements the mfc.Resolver interface.
func (m *Machine) Classify(issuer int, ea uint64, size uint32) mfc.Target {
	end := ea + uint64(size)

	switch {
	case ea >= RawBase && ea < RawBase+MaxRawCores*WindowSize:
		n := int((ea - RawBase) / WindowSize)
		m.crit.RLock()
		var peer mfc.Peer
		if n < len(m.raw) {
			peer = m.raw[n]
		}
		m.crit.RUnlock()
		return window(peer, (ea-RawBase)%WindowSize, end-ea)

	case ea >= GroupBase && ea < GroupBase+MaxThreads*WindowSize:
		n := int((ea - GroupBase) / WindowSize)
		m.crit.RLock()
		var peer mfc.Peer
		if issuer >= 0 && issuer < len(m.cores) {
			if th, ok := m.member[m.cores[issuer]]; ok && n < len(th.group.threads) {
				peer = th.group.threads[n].Core
			}
		}
		m.crit.RUnlock()
		return window(peer, (ea-GroupBase)%WindowSize, end-ea)
	}

	if end > 1<<32 {
		return mfc.Target{Kind: mfc.NoBacking}
	}
	return mfc.Target{Kind: mfc.MainMemory, Addr: uint32(ea)}
}

// classify an offset in the problem state window of a peer
func window(peer mfc.Peer, offset uint64, size uint64) mfc.Target {
	if peer == nil {
		return mfc.Target{Kind: mfc.NoBacking}
	}

	if offset+size <= localstore.Size {
		return mfc.Target{Kind: mfc.PeerLocalStore, Addr: uint32(offset), Peer: peer}
	}

	if size == 4 {
		switch offset {
		case Signal1Offset:
			return mfc.Target{Kind: mfc.PeerSignal, Peer: peer, Signal: 0}
		case Signal2Offset:
			return mfc.Target{Kind: mfc.PeerSignal, Peer: peer, Signal: 1}
		}
	}

	return mfc.Target{Kind: mfc.NoBacking}
}
