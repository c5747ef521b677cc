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

package dump

import (
	"fmt"
	"io"
	"strings"

	"github.com/jetsetilly/gophercell/disassembly"
	"github.com/jetsetilly/gophercell/hardware/spu"
	"github.com/jetsetilly/gophercell/hardware/spu/localstore"
)

// number of instructions either side of the PC shown by Summary()
const summaryContext = 4

// lsMemory presents the local store copy in a snapshot as disassembly.Memory
type lsMemory []byte

func (m lsMemory) Read32(addr uint32) uint32 {
	addr &= localstore.Mask &^ 3
	if int(addr)+4 > len(m) {
		return 0
	}
	return uint32(m[addr])<<24 | uint32(m[addr+1])<<16 | uint32(m[addr+2])<<8 | uint32(m[addr+3])
}

// Summary writes a human readable report of the snapshot to io.Writer. The
// disassembly argument can be nil, in which case a temporary instance is
// used.
func Summary(w io.Writer, snap *spu.Snapshot, dsm *disassembly.Disassembly) error {
	if dsm == nil {
		var err error
		dsm, err = disassembly.NewDisassembly(summaryContext*2 + 1)
		if err != nil {
			return err
		}
	}

	b := &strings.Builder{}

	fmt.Fprintf(b, "%s: %s\n", snap.Label, snap.Report)
	if snap.Backend != "" {
		fmt.Fprintf(b, "backend: %s\n", snap.Backend)
	}
	fmt.Fprintf(b, "interrupts: %v\n", snap.Interrupts)

	ch := snap.Channels
	fmt.Fprintf(b, "mailboxes: in=%d out=%d intr=%d\n", len(ch.InMbox), len(ch.OutMbox), len(ch.OutIntrMbox))
	fmt.Fprintf(b, "events: stat=%08x mask=%08x\n", ch.EventStat, ch.EventMask)
	fmt.Fprintf(b, "signals: %08x %08x\n", ch.Signal[0], ch.Signal[1])
	fmt.Fprintf(b, "tags: mask=%08x mode=%d\n", ch.TagMask, ch.TagMode)
	fmt.Fprintf(b, "decrementer: %08x\n", ch.Decrementer)
	fmt.Fprintf(b, "mfc: outstanding=%d", snap.Outstanding)
	if snap.ReservationHeld {
		fmt.Fprintf(b, " reservation=%08x", snap.Reservation)
	}
	b.WriteString("\n")

	for _, f := range snap.Faults {
		fmt.Fprintf(b, "fault: %s\n", f)
	}

	b.WriteString("\n")
	for i, r := range snap.GPR {
		fmt.Fprintf(b, "$%-3d %s\n", i, r)
	}

	if len(snap.LocalStore) > 0 {
		b.WriteString("\n")
		entries := dsm.Around(lsMemory(snap.LocalStore), snap.PC, summaryContext)
		disassembly.Write(b, disassembly.WriteAttr{Cursor: snap.PC, UseCursor: true, ByteCode: true}, entries)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
