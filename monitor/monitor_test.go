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

package monitor_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/jetsetilly/gophercell/hardware/machine"
	"github.com/jetsetilly/gophercell/hardware/preferences"
	"github.com/jetsetilly/gophercell/hardware/spu/assembler"
	"github.com/jetsetilly/gophercell/hardware/spu/channels"
	"github.com/jetsetilly/gophercell/monitor"
	"github.com/jetsetilly/gophercell/test"
)

// a raw core waiting on its inbound mailbox
func newMachine(t *testing.T) *machine.Machine {
	t.Helper()

	cfg := machine.DefaultConfig()
	cfg.Backend = preferences.BackendInterpreter
	cfg.Clock = &channels.ManualClock{}
	cfg.Sleep = 50 * time.Microsecond

	m, err := machine.NewMachine(cfg)
	test.DemandSuccess(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	test.DemandSuccess(t, m.Start(ctx))
	t.Cleanup(func() {
		cancel()
		_ = m.Wait()
	})

	prg, err := assembler.AssembleString(`
	rdch	$3,$ch29
	stop	0x1
`)
	test.DemandSuccess(t, err)

	c, err := m.NewRawCore()
	test.DemandSuccess(t, err)
	c.Load(prg.Image())
	test.DemandSuccess(t, m.StartCore(c))

	return m
}

func TestRun(t *testing.T) {
	m := newMachine(t)

	out := &strings.Builder{}
	mon, err := monitor.NewMonitor(m, strings.NewReader("s\nx q s"), out)
	test.DemandSuccess(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	quit, err := mon.Run(ctx)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, quit)

	s := out.String()
	test.ExpectSuccess(t, strings.Contains(s, "spu0: "))
	test.ExpectSuccess(t, strings.Contains(s, "coordinator: "))
	test.ExpectSuccess(t, strings.Contains(s, "unknown command (x)"))

	// the status command after quit is never seen
	test.ExpectEquality(t, strings.Count(s, "coordinator: "), 1)
}

func TestEndOfInput(t *testing.T) {
	m := newMachine(t)

	mon, err := monitor.NewMonitor(m, strings.NewReader("h"), &strings.Builder{})
	test.DemandSuccess(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	quit, err := mon.Run(ctx)
	test.DemandSuccess(t, err)
	test.ExpectFailure(t, quit)
}

func TestPauseAndDump(t *testing.T) {
	m := newMachine(t)
	c := m.RawCores()[0]

	out := &strings.Builder{}
	mon, err := monitor.NewMonitor(m, nil, out)
	test.DemandSuccess(t, err)
	mon.Fs = afero.NewMemMapFs()
	mon.Compression = "none"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	test.ExpectFailure(t, mon.Command(ctx, 'p'))
	test.ExpectFailure(t, mon.Command(ctx, 'P'))
	test.ExpectEquality(t, strings.Count(out.String(), "paused\n"), 1)

	test.ExpectFailure(t, mon.Command(ctx, 'd'))
	files, err := afero.ReadDir(mon.Fs, "dumps")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(files), 1)

	test.ExpectFailure(t, mon.Command(ctx, 'l'))
	test.ExpectSuccess(t, strings.Contains(out.String(), "rdch"))

	test.ExpectFailure(t, mon.Command(ctx, 'r'))
	test.ExpectSuccess(t, strings.Contains(out.String(), "resumed\n"))

	// the core carries on once resumed
	test.DemandSuccess(t, c.WriteInMbox(ctx, 1))
	rep, err := m.WaitCore(ctx, c)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, rep.StopCode, 0x1)
}
