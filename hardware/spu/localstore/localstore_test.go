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

package localstore_test

import (
	"bytes"
	"testing"

	"github.com/jetsetilly/gophercell/hardware/spu/localstore"
	"github.com/jetsetilly/gophercell/test"
)

func TestReadWrite(t *testing.T) {
	ls := localstore.NewLocalStore()

	ls.Write32(0x100, 0x11223344)
	test.ExpectEquality(t, ls.Read32(0x100), uint32(0x11223344))
	test.ExpectEquality(t, ls.Read32(0x102), uint32(0x11223344))

	// unaligned write across two words
	ls.Write(0x102, []byte{0xaa, 0xbb, 0xcc})
	test.ExpectEquality(t, ls.Read32(0x100), uint32(0x1122aabb))
	test.ExpectEquality(t, ls.Read32(0x104), uint32(0xcc000000))

	p := make([]byte, 5)
	ls.Read(0x101, p)
	test.ExpectSuccess(t, bytes.Equal(p, []byte{0x22, 0xaa, 0xbb, 0xcc, 0x00}))

	var q [16]byte
	for i := range q {
		q[i] = byte(i)
	}
	ls.WriteQuad(0x20f, q)
	test.ExpectEquality(t, ls.ReadQuad(0x200), q)
	test.ExpectEquality(t, ls.Read32(0x20c), uint32(0x0c0d0e0f))
}

func TestWrapAround(t *testing.T) {
	ls := localstore.NewLocalStore()
	ls.Write(localstore.Size-2, []byte{1, 2, 3, 4})
	test.ExpectEquality(t, ls.Read32(localstore.Size-4), uint32(0x00000102))
	test.ExpectEquality(t, ls.Read32(0), uint32(0x03040000))

	// addresses are masked
	test.ExpectEquality(t, ls.Read32(localstore.Size), uint32(0x03040000))
}

func TestGenerations(t *testing.T) {
	ls := localstore.NewLocalStore()

	w := ls.Writes()
	g0 := ls.Generation(0)
	g1 := ls.Generation(1)
	g2 := ls.Generation(2)

	// a write spanning regions 0 and 1
	ls.Write(localstore.RegionSize-4, make([]byte, 8))
	test.ExpectEquality(t, ls.Writes(), w+1)
	test.ExpectEquality(t, ls.Generation(0), g0+1)
	test.ExpectEquality(t, ls.Generation(1), g1+1)
	test.ExpectEquality(t, ls.Generation(2), g2)

	ls.Write32(2*localstore.RegionSize, 1)
	test.ExpectEquality(t, ls.Generation(2), g2+1)
	test.ExpectEquality(t, localstore.Region(2*localstore.RegionSize+5), 2)
}

func TestSnapshot(t *testing.T) {
	ls := localstore.NewLocalStore()
	ls.Write(0x3fff0, []byte("local store"))
	s := ls.Snapshot()
	test.ExpectEquality(t, len(s), localstore.Size)
	test.ExpectEquality(t, string(s[0x3fff0:0x3fffb]), "local store")

	ls.Clear()
	test.ExpectEquality(t, ls.Read32(0x3fff0), uint32(0))
}
