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

// Package spu implements a single synergistic processing unit core: its
// register file, local store, channels and MFC, and the goroutine that runs
// the core's program through a Backend.
//
// The instruction set itself is in the isa package and the two backends are
// in the interpreter and translator packages. Both backends use the Retire()
// function of this package after each instruction so that the rules for
// branches, stops, faults and cancellation are the same whichever backend is
// bound to the core.
//
// A core is run with Run(), normally in a goroutine of its own. The host
// controls the core with Stop(), Pause(), Resume() and FastCall(). The state
// of the core can be captured at any time with Snapshot(), which pauses the
// core momentarily.
package spu
