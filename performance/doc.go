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

// Package performance measures the speed of the execution backends.
//
// Check() runs a program repeatedly on a raw core for a fixed duration and
// reports the number of complete runs. Running the same program with each
// backend gives a quick comparison of the interpreter and the translator.
//
// RunProfiler() can be used to generate the various profile types. On its own
// it does not limit the amount of time the function runs for.
package performance
