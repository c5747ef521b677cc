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

package monitor

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/spf13/afero"
	"golang.org/x/term"

	"github.com/jetsetilly/gophercell/curated"
	"github.com/jetsetilly/gophercell/disassembly"
	"github.com/jetsetilly/gophercell/dump"
	"github.com/jetsetilly/gophercell/hardware/machine"
	"github.com/jetsetilly/gophercell/logger"
)

// TerminalError is returned when the input terminal can not be prepared.
const TerminalError = "monitor: terminal: %v"

// width of the rule printed by the status command when the output is not a
// terminal
const defaultWidth = 40

// number of log entries shown by the log command
const logEntries = 10

// number of instructions either side of the PC shown by the listing command
const listingContext = 3

// Monitor reads commands from the input and applies them to the machine.
type Monitor struct {
	m   *machine.Machine
	in  io.Reader
	out io.Writer
	dsm *disassembly.Disassembly

	// filesystem, directory and compression for the dump command
	Fs            afero.Fs
	DumpDirectory string
	Compression   dump.Compression

	// whether the cores have been paused by the monitor
	paused bool
}

// NewMonitor is the preferred method of initialisation for the Monitor type.
func NewMonitor(m *machine.Machine, in io.Reader, out io.Writer) (*Monitor, error) {
	dsm, err := disassembly.NewDisassembly(0)
	if err != nil {
		return nil, err
	}
	return &Monitor{
		m:             m,
		in:            in,
		out:           out,
		dsm:           dsm,
		Fs:            afero.NewOsFs(),
		DumpDirectory: "dumps",
		Compression:   dump.Zstd,
	}, nil
}

// IsTerminal returns true if the file is a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Run the monitor until the quit command is received, the input is exhausted
// or the context is cancelled. Returns true if the quit command was received.
func (mon *Monitor) Run(ctx context.Context) (bool, error) {
	if f, ok := mon.in.(*os.File); ok && IsTerminal(f) {
		t, err := newTerminal(f)
		if err != nil {
			logger.Log(logger.Allow, "monitor", curated.Errorf(TerminalError, err))
		} else {
			if err := t.cbreakMode(); err != nil {
				return false, curated.Errorf(TerminalError, err)
			}
			defer t.canonicalMode()
		}
	}

	mon.help()

	keys := make(chan byte)
	go func() {
		defer close(keys)
		var b [1]byte
		for {
			n, err := mon.in.Read(b[:])
			if n > 0 {
				select {
				case keys <- b[0]:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return false, nil
		case k, ok := <-keys:
			if !ok {
				return false, nil
			}
			if mon.Command(ctx, k) {
				return true, nil
			}
		}
	}
}

// Command applies the command named by the key. Returns true if the command
// is the quit command.
func (mon *Monitor) Command(ctx context.Context, key byte) bool {
	if unicode.IsSpace(rune(key)) {
		return false
	}

	switch unicode.ToLower(rune(key)) {
	case 'q':
		mon.resume()
		return true
	case 'p':
		mon.pause()
	case 'r':
		mon.resume()
	case 's':
		mon.status()
	case 'l':
		mon.listing()
	case 'd':
		mon.dump(ctx)
	case 'g':
		logger.Tail(mon.out, logEntries)
	case 'h', '?':
		mon.help()
	default:
		fmt.Fprintf(mon.out, "unknown command (%c)\n", key)
	}

	return false
}

func (mon *Monitor) help() {
	io.WriteString(mon.out, "p pause  r resume  s status  l listing  d dump  g log  h help  q quit\n")
}

func (mon *Monitor) pause() {
	if mon.paused {
		return
	}
	for _, c := range mon.m.Cores() {
		c.Pause()
	}
	mon.paused = true
	io.WriteString(mon.out, "paused\n")
}

func (mon *Monitor) resume() {
	if !mon.paused {
		return
	}
	for _, c := range mon.m.Cores() {
		c.Resume()
	}
	mon.paused = false
	io.WriteString(mon.out, "resumed\n")
}

func (mon *Monitor) width() int {
	if f, ok := mon.out.(*os.File); ok && IsTerminal(f) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return defaultWidth
}

func (mon *Monitor) status() {
	io.WriteString(mon.out, strings.Repeat("-", mon.width()))
	io.WriteString(mon.out, "\n")
	for _, c := range mon.m.Cores() {
		fmt.Fprintf(mon.out, "%s: %s\n", c, c.Status())
	}
	for _, g := range mon.m.Groups() {
		fmt.Fprintf(mon.out, "group %s: %s\n", g, g.State())
	}
	st := mon.m.Coordinator.Stats()
	fmt.Fprintf(mon.out, "coordinator: %s passes=%d sleeps=%d\n", st.State, st.Passes, st.Sleeps)
}

func (mon *Monitor) listing() {
	for _, c := range mon.m.Cores() {
		rep := c.Status()
		fmt.Fprintf(mon.out, "%s:\n", c)
		entries := mon.dsm.Around(c.LocalStore(), rep.PC, listingContext)
		disassembly.Write(mon.out, disassembly.WriteAttr{Cursor: rep.PC, UseCursor: true}, entries)
	}
}

func (mon *Monitor) dump(ctx context.Context) {
	for _, c := range mon.m.Cores() {
		snap, err := c.Snapshot(ctx)
		if err != nil {
			fmt.Fprintf(mon.out, "%s: %v\n", c, err)
			continue
		}
		pth, err := dump.Save(mon.Fs, mon.DumpDirectory, snap, mon.Compression)
		if err != nil {
			fmt.Fprintf(mon.out, "%s: %v\n", c, err)
			continue
		}
		fmt.Fprintf(mon.out, "%s: %s\n", c, pth)
	}
}
