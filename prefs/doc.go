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

// Package prefs facilitates the storage of preferential values in the
// application. It wraps Go values with typed wrappers (Bool, Int, Float and
// String) that are safe to read from any goroutine.
//
// The Disk type collects preference values under string keys and saves them
// to, and loads them from, a preferences file. The file is accessed through an
// afero.Fs so tests can use an in-memory filesystem.
//
// The preferences file is a list of "key :: value" lines preceded by a warning
// line. Lines in the file that are not managed by a Disk instance are
// preserved when that Disk instance saves.
//
// Values can also be set from the command line with the command line stack.
// See the PushCommandLineStack() function.
package prefs
