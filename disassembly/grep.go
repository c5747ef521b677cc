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

package disassembly

import (
	"bytes"
	"io"
	"strings"
)

// GrepScope limits the scope of the search.
type GrepScope int

// List of available scopes.
const (
	GrepMnemonic GrepScope = iota
	GrepOperand
	GrepAll
)

// Grep searches the entries for the specified search string and writes the
// matching lines to io.Writer. Returns the number of matches.
func Grep(output io.Writer, scope GrepScope, search string, caseSensitive bool, entries []Entry) int {
	var s string
	var matches int

	if !caseSensitive {
		search = strings.ToUpper(search)
	}

	for _, e := range entries {
		// line representation of the entry. we'll print this in case of a
		// match
		line := &bytes.Buffer{}
		WriteLine(line, WriteAttr{}, e)

		// limit scope of grep to the correct field
		switch scope {
		case GrepMnemonic:
			s = e.Mnemonic
		case GrepOperand:
			s = e.Operands
		case GrepAll:
			s = line.String()
		}

		if !caseSensitive {
			s = strings.ToUpper(s)
		}

		if strings.Contains(s, search) {
			output.Write(line.Bytes())
			matches++
		}
	}

	return matches
}
