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

package assert_test

import (
	"testing"

	"github.com/jetsetilly/gophercell/assert"
	"github.com/jetsetilly/gophercell/test"
)

func TestGoRoutineID(t *testing.T) {
	a := assert.GetGoRoutineID()
	test.ExpectEquality(t, assert.GetGoRoutineID(), a)

	ch := make(chan uint64)
	go func() {
		ch <- assert.GetGoRoutineID()
	}()
	test.ExpectInequality(t, <-ch, a)
}

func TestOwner(t *testing.T) {
	if !assert.Enabled {
		t.Skip("assertions not enabled")
	}

	var o assert.Owner
	o.Claim("test")
	o.Claim("test")

	panicked := make(chan bool)
	go func() {
		defer func() {
			panicked <- recover() != nil
		}()
		o.Claim("test")
	}()
	test.ExpectSuccess(t, <-panicked)

	o.Release()
	done := make(chan bool)
	go func() {
		o.Claim("test")
		done <- true
	}()
	test.ExpectSuccess(t, <-done)
}
