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

package test_test

import (
	"errors"
	"testing"

	"github.com/jetsetilly/gophercell/test"
)

func TestExpectations(t *testing.T) {
	test.ExpectEquality(t, 10, 10)
	test.ExpectEquality(t, "spu", "spu", "string")
	test.ExpectInequality(t, uint32(1), uint32(2))
	test.ExpectSuccess(t, true)
	test.ExpectSuccess(t, nil)
	test.ExpectFailure(t, false)
	test.ExpectFailure(t, errors.New("test error"))
	test.DemandSuccess(t, true)
	test.DemandFailure(t, false)
}

func TestCompareWriter(t *testing.T) {
	tw := &test.CompareWriter{}
	test.ExpectSuccess(t, tw.Compare(""))
	tw.Write([]byte("mailbox"))
	test.ExpectSuccess(t, tw.Compare("mailbox"))
	tw.Clear()
	test.ExpectEquality(t, tw.String(), "")
}
