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

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface.
//
// Curated errors are created with the Errorf() function. This is similar to
// the Errorf() function in the fmt package. It takes a formatting pattern,
// placeholder values and returns an error.
//
// The Is() function can be used to check whether an error was created with a
// specific pattern:
//
//	e := curated.Errorf(mfc.IllegalSize, size)
//
//	if curated.Is(e, mfc.IllegalSize) {
//		fmt.Println("true")
//	}
//
// The Has() function is similar but checks if a pattern occurs somewhere in
// the error chain.
//
//	f := curated.Errorf(spu.ProtocolViolation, e)
//
//	if curated.Has(f, mfc.IllegalSize) {
//		fmt.Println("true")
//	}
//
// Sentinel patterns are stored as a const string in the package that creates
// the error, suitably named and commented.
//
// The Error() function implementation for curated errors ensures that the
// error chain is normalised. Specifically, that the chain does not contain
// duplicate adjacent parts. We think of chains as being composed of parts
// separated by the sub-string ': '. For example:
//
//	part 1: part 2: part 3
//
// Curated errors that wrap another error (by using it as one of the values)
// also support the Unwrap() method, so errors.Is() and errors.As() from the
// standard library work as expected.
package curated
