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

package registers_test

import (
	"testing"

	"github.com/jetsetilly/gophercell/hardware/spu/registers"
	"github.com/jetsetilly/gophercell/test"
)

func TestLanes(t *testing.T) {
	var r registers.Reg

	r.SetU32(0, 0x01020304)
	test.ExpectEquality(t, r.U8(0), uint8(0x01))
	test.ExpectEquality(t, r.U8(3), uint8(0x04))
	test.ExpectEquality(t, r.U16(1), uint16(0x0304))
	test.ExpectEquality(t, r.Preferred(), uint32(0x01020304))

	r.SetU64(1, 0x1122334455667788)
	test.ExpectEquality(t, r.U32(2), uint32(0x11223344))
	test.ExpectEquality(t, r.U32(3), uint32(0x55667788))

	r.SetPreferred(0xdeadbeef)
	test.ExpectEquality(t, r.U64(1), uint64(0))
	test.ExpectEquality(t, r.String(), "deadbeef 00000000 00000000 00000000")

	r.SplatU16(0xabcd)
	test.ExpectEquality(t, r.U32(3), uint32(0xabcdabcd))

	r.SetF32(2, 1.5)
	test.ExpectEquality(t, r.U32(2), uint32(0x3fc00000))
	test.ExpectEquality(t, r.S32(2), int32(0x3fc00000))
}
