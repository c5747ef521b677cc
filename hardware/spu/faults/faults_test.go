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

package faults_test

import (
	"testing"

	"github.com/jetsetilly/gophercell/hardware/spu/faults"
	"github.com/jetsetilly/gophercell/test"
)

func TestFaults(t *testing.T) {
	flt := faults.NewFaults()

	_, ok := flt.Last()
	test.ExpectFailure(t, ok)

	flt.NewEntry("read of write-only channel", faults.IllegalChannel, 0x100, 28)
	flt.NewEntry("read of write-only channel", faults.IllegalChannel, 0x100, 28)
	flt.NewEntry("unmapped address", faults.ProtocolViolation, 0x200, 0x90000000)

	l := flt.Log()
	test.DemandEquality(t, len(l), 2)
	test.ExpectEquality(t, l[0].Count, 2)
	test.ExpectEquality(t, l[1].Category, faults.ProtocolViolation)

	e, ok := flt.Last()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, e.InstructionAddr, uint32(0x200))

	w := &test.CompareWriter{}
	flt.WriteLog(w)
	test.ExpectSuccess(t, w.Compare("illegal channel: read of write-only channel: 0000001c (PC: 00100)\nprotocol violation: unmapped address: 90000000 (PC: 00200)\n"))

	flt.Clear()
	test.ExpectEquality(t, len(flt.Log()), 0)
}
