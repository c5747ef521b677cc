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

//go:build linux || darwin

package monitor

import (
	"os"
	"syscall"

	"github.com/pkg/term/termios"
)

// terminal wraps the termios attributes of the input terminal
type terminal struct {
	fd         uintptr
	canAttr    syscall.Termios
	cbreakAttr syscall.Termios
}

func newTerminal(f *os.File) (*terminal, error) {
	t := &terminal{fd: f.Fd()}
	if err := termios.Tcgetattr(t.fd, &t.canAttr); err != nil {
		return nil, err
	}
	t.cbreakAttr = t.canAttr
	termios.Cfmakecbreak(&t.cbreakAttr)
	return t, nil
}

// cbreakMode puts the terminal into cbreak mode
func (t *terminal) cbreakMode() error {
	return termios.Tcsetattr(t.fd, termios.TCIFLUSH, &t.cbreakAttr)
}

// canonicalMode puts the terminal back into normal, everyday canonical mode
func (t *terminal) canonicalMode() error {
	return termios.Tcsetattr(t.fd, termios.TCIFLUSH, &t.canAttr)
}
