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

package prefs_test

import (
	"fmt"
	"testing"

	"github.com/spf13/afero"

	"github.com/jetsetilly/gophercell/prefs"
	"github.com/jetsetilly/gophercell/test"
)

const prefsFile = "/gophercell/preferences"

func cmpFile(t *testing.T, fs afero.Fs, expected string) {
	t.Helper()
	data, err := afero.ReadFile(fs, prefsFile)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, string(data), fmt.Sprintf("%s\n%s", prefs.WarningBoilerPlate, expected))
}

func TestBool(t *testing.T) {
	fs := afero.NewMemMapFs()
	dsk, err := prefs.NewDisk(fs, prefsFile)
	test.DemandSuccess(t, err)

	var v, w, x prefs.Bool
	test.ExpectSuccess(t, dsk.Add("test", &v))
	test.ExpectSuccess(t, dsk.Add("testB", &w))
	test.ExpectSuccess(t, dsk.Add("testC", &x))

	test.ExpectSuccess(t, v.Set(true))
	test.ExpectSuccess(t, w.Set("foo"))
	test.ExpectSuccess(t, x.Set("true"))

	test.DemandSuccess(t, dsk.Save())
	cmpFile(t, fs, "test :: true\ntestB :: false\ntestC :: true\n")
}

func TestInt(t *testing.T) {
	fs := afero.NewMemMapFs()
	dsk, err := prefs.NewDisk(fs, prefsFile)
	test.DemandSuccess(t, err)

	var v, w prefs.Int
	test.ExpectSuccess(t, dsk.Add("number", &v))
	test.ExpectSuccess(t, dsk.Add("numberB", &w))
	test.ExpectSuccess(t, v.Set(10))
	test.ExpectSuccess(t, w.Set("0x10"))

	test.DemandSuccess(t, dsk.Save())
	cmpFile(t, fs, "number :: 10\nnumberB :: 16\n")

	test.ExpectFailure(t, v.Set("---"))
	test.ExpectFailure(t, v.Set(1.0))
	test.ExpectEquality(t, v.Get().(int), 10)
}

func TestFloatAndHooks(t *testing.T) {
	var f prefs.Float
	var seen float64
	f.SetHookPost(func(v prefs.Value) error {
		seen = v.(float64)
		return nil
	})
	test.ExpectSuccess(t, f.Set("79.8"))
	test.ExpectEquality(t, seen, 79.8)
	test.ExpectEquality(t, f.String(), "79.800")

	f.SetHookPre(func(v prefs.Value) error {
		return fmt.Errorf("refused")
	})
	test.ExpectFailure(t, f.Set(1.0))
	test.ExpectEquality(t, f.Get().(float64), 79.8)
}

// write bool and then a string from a different prefs.Disk instance. tests
// that the second writing doesn't clobber the results of the first write.
func TestBoolAndString(t *testing.T) {
	fs := afero.NewMemMapFs()
	dsk, err := prefs.NewDisk(fs, prefsFile)
	test.DemandSuccess(t, err)

	var v prefs.Bool
	test.ExpectSuccess(t, dsk.Add("test", &v))
	test.ExpectSuccess(t, v.Set(true))
	test.DemandSuccess(t, dsk.Save())

	dsk, err = prefs.NewDisk(fs, prefsFile)
	test.DemandSuccess(t, err)

	var s prefs.String
	test.ExpectSuccess(t, dsk.Add("foo", &s))
	test.ExpectSuccess(t, s.Set("bar"))
	test.DemandSuccess(t, dsk.Save())

	cmpFile(t, fs, "foo :: bar\ntest :: true\n")

	// load into a third instance
	dsk, err = prefs.NewDisk(fs, prefsFile)
	test.DemandSuccess(t, err)
	var u prefs.Bool
	test.ExpectSuccess(t, dsk.Add("test", &u))
	test.DemandSuccess(t, dsk.Load(false))
	test.ExpectEquality(t, u.Get().(bool), true)
}

func TestMaxStringLength(t *testing.T) {
	var s prefs.String
	test.ExpectSuccess(t, s.Set("123456789"))
	test.ExpectEquality(t, s.String(), "123456789")

	// setting maximum length will crop the existing string
	s.SetMaxLen(5)
	test.ExpectEquality(t, s.String(), "12345")

	// unsetting a maximum length will not result in cropped information
	// reappearing
	s.SetMaxLen(0)
	test.ExpectEquality(t, s.String(), "12345")

	s.SetMaxLen(3)
	test.ExpectSuccess(t, s.Set("abcdefghi"))
	test.ExpectEquality(t, s.String(), "abc")
}

func TestIllegalKey(t *testing.T) {
	dsk, err := prefs.NewDisk(afero.NewMemMapFs(), prefsFile)
	test.DemandSuccess(t, err)
	var v prefs.Bool
	test.ExpectFailure(t, dsk.Add("a :: b", &v))
	test.ExpectFailure(t, dsk.Add("", &v))
}
