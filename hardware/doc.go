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

// Package hardware is the base package for the SPU emulation. It and its
// sub-packages contain everything required for a headless emulation.
//
// The machine package is the root of the emulation. A Machine owns main
// memory, the reservation table, the DMA coordinator and the event bridge, and
// creates the cores found in the spu package. Cores are either controlled
// individually by the host or are the threads of a thread group.
//
// Each core is run by a backend, either the interpreter or the translator,
// which can be chosen with the spu.backend preference found in the
// preferences package.
package hardware
