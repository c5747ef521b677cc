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

package preferences_test

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/jetsetilly/gophercell/curated"
	"github.com/jetsetilly/gophercell/hardware/preferences"
	"github.com/jetsetilly/gophercell/resources"
	"github.com/jetsetilly/gophercell/test"
)

// use an in-memory filesystem with the portable resources directory present
func memFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	test.DemandSuccess(t, fs.MkdirAll(".gophercell", 0700))

	prev := resources.Fs
	resources.Fs = fs
	t.Cleanup(func() { resources.Fs = prev })

	return fs
}

func TestDefaults(t *testing.T) {
	memFs(t)

	p, err := preferences.NewPreferences()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p.BackendName(), preferences.BackendTranslator)
	test.ExpectEquality(t, p.Timebase.Get(), 79.8)
	test.ExpectEquality(t, p.Recheck.Get(), 64)
	test.ExpectEquality(t, p.SleepInterval(), 100*time.Microsecond)
	test.ExpectEquality(t, p.Compression.String(), preferences.CompressionZstd)
}

func TestSaveAndLoad(t *testing.T) {
	fs := memFs(t)

	p, err := preferences.NewPreferences()
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, p.Backend.Set(preferences.BackendInterpreter))
	test.DemandSuccess(t, p.Sleep.Set(250))
	test.DemandSuccess(t, p.Save())

	data, err := afero.ReadFile(fs, ".gophercell/preferences")
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, strings.Contains(string(data), "spu.backend :: interpreter\n"))
	test.ExpectSuccess(t, strings.Contains(string(data), "coordinator.sleep :: 250\n"))

	// a new instance picks up the saved values
	q, err := preferences.NewPreferences()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, q.BackendName(), preferences.BackendInterpreter)
	test.ExpectEquality(t, q.SleepInterval(), 250*time.Microsecond)

	test.DemandSuccess(t, q.Reset())
	test.ExpectEquality(t, q.BackendName(), preferences.BackendTranslator)
}

func TestInvalidValues(t *testing.T) {
	memFs(t)

	p, err := preferences.NewPreferences()
	test.DemandSuccess(t, err)

	err = p.Backend.Set("jit")
	test.ExpectSuccess(t, curated.Is(err, preferences.InvalidValue))
	test.ExpectEquality(t, p.BackendName(), preferences.BackendTranslator)

	err = p.Compression.Set("bzip2")
	test.ExpectSuccess(t, curated.Is(err, preferences.InvalidValue))

	test.ExpectFailure(t, p.Timebase.Set(-1.0))
}
