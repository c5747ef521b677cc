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

package performance

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/afero"

	"github.com/jetsetilly/gophercell/curated"
	"github.com/jetsetilly/gophercell/hardware/machine"
	"github.com/jetsetilly/gophercell/hardware/spu"
)

// Sentinel error patterns.
const (
	PerformanceError = "performance: %v"
	DidNotHalt       = "performance: %s: program did not halt (%s)"
)

// Result of a performance check.
type Result struct {
	Backend  string
	Runs     int
	Duration time.Duration
}

// RunsPerSecond is the number of complete runs of the program per second.
func (r Result) RunsPerSecond() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Runs) / r.Duration.Seconds()
}

func (r Result) String() string {
	return fmt.Sprintf("%s: %d runs in %.2f seconds (%.1f runs/sec)",
		r.Backend, r.Runs, r.Duration.Seconds(), r.RunsPerSecond())
}

// Check runs the image on a raw core until the duration has elapsed. The
// program is expected to halt with a STOP instruction and is restarted every
// time it does. A program that faults or that is still running when the
// duration has elapsed is an error.
func Check(ctx context.Context, output io.Writer, fs afero.Fs, profile Profile, cfg machine.Config, img *spu.Image, duration time.Duration) (Result, error) {
	res := Result{Backend: cfg.Backend}

	m, err := machine.NewMachine(cfg)
	if err != nil {
		return res, curated.Errorf(PerformanceError, err)
	}

	c, err := m.NewRawCore()
	if err != nil {
		return res, curated.Errorf(PerformanceError, err)
	}
	res.Backend = m.Backend().String()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := m.Start(runCtx); err != nil {
		return res, curated.Errorf(PerformanceError, err)
	}
	defer m.Shutdown()

	runner := func() error {
		deadline := time.Now().Add(duration)
		start := time.Now()
		defer func() {
			res.Duration = time.Since(start)
		}()

		for time.Now().Before(deadline) {
			c.Reset()
			c.Load(img)
			if err := m.StartCore(c); err != nil {
				return err
			}

			waitCtx, waitCancel := context.WithDeadline(runCtx, deadline)
			rep, err := m.WaitCore(waitCtx, c)
			waitCancel()
			if err != nil {
				c.Stop()
				_, _ = m.WaitCore(runCtx, c)
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return curated.Errorf(DidNotHalt, res.Backend, c.Status())
			}

			if rep.State != spu.Halted || rep.Diagnostic != "" {
				return curated.Errorf(DidNotHalt, res.Backend, rep)
			}
			res.Runs++
		}
		return nil
	}

	if err := RunProfiler(fs, profile, res.Backend, runner); err != nil {
		return res, err
	}

	fmt.Fprintln(output, res)
	return res, nil
}
