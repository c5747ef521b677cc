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

// Package monitor is an interactive control surface for a running machine.
//
// Commands are single key presses. When the input is a terminal it is put
// into cbreak mode, so that a key takes effect without the return key being
// pressed. Otherwise every non-space byte read from the input is a command.
//
//	p	pause every core
//	r	resume every core
//	s	status of every core and group
//	l	listing around the PC of every core
//	d	dump every core
//	g	recent log entries
//	h	help
//	q	quit
package monitor
