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

package performance_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/jetsetilly/gophercell/hardware/machine"
	"github.com/jetsetilly/gophercell/hardware/preferences"
	"github.com/jetsetilly/gophercell/hardware/spu/assembler"
	"github.com/jetsetilly/gophercell/performance"
	"github.com/jetsetilly/gophercell/test"
)

func TestParseProfileString(t *testing.T) {
	p, err := performance.ParseProfileString("cpu, mem")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p, performance.ProfileCPU|performance.ProfileMem)
	test.ExpectEquality(t, p.String(), "CPU,MEM")

	p, err = performance.ParseProfileString("")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p, performance.ProfileNone)
	test.ExpectEquality(t, p.String(), "NONE")

	p, err = performance.ParseProfileString("all")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p, performance.ProfileAll)

	_, err = performance.ParseProfileString("gpu")
	test.ExpectFailure(t, err)
}

func TestRunProfiler(t *testing.T) {
	fs := afero.NewMemMapFs()

	var ran bool
	err := performance.RunProfiler(fs, performance.ProfileMem, "test", func() error {
		ran = true
		return nil
	})
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, ran)

	fi, err := fs.Stat("test_mem.profile")
	test.DemandSuccess(t, err)
	test.ExpectInequality(t, fi.Size(), int64(0))
}

func TestCheck(t *testing.T) {
	prg, err := assembler.AssembleString(`
	il	$3,100
loop:	ai	$3,$3,-1
	brnz	$3,loop
	stop	0x1
`)
	test.DemandSuccess(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, backend := range []string{preferences.BackendInterpreter, preferences.BackendTranslator} {
		cfg := machine.DefaultConfig()
		cfg.Backend = backend

		out := &strings.Builder{}
		res, err := performance.Check(ctx, out, afero.NewMemMapFs(), performance.ProfileNone, cfg, prg.Image(), 50*time.Millisecond)
		test.DemandSuccess(t, err)
		test.ExpectEquality(t, res.Backend, backend)
		test.ExpectSuccess(t, res.Runs > 0)
		test.ExpectSuccess(t, strings.HasPrefix(out.String(), backend+": "))
	}
}

func TestCheckNoHalt(t *testing.T) {
	prg, err := assembler.AssembleString(`
loop:	br	loop
`)
	test.DemandSuccess(t, err)

	cfg := machine.DefaultConfig()
	cfg.Backend = preferences.BackendInterpreter

	_, err = performance.Check(context.Background(), &strings.Builder{}, afero.NewMemMapFs(), performance.ProfileNone, cfg, prg.Image(), 20*time.Millisecond)
	test.ExpectFailure(t, err)
}
