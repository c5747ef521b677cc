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
	"fmt"
	"io"
)

// WriteAttr controls what is printed by the Write*() functions.
type WriteAttr struct {
	ByteCode bool

	// mark the line with this address
	Cursor    uint32
	UseCursor bool
}

// Write the entries to io.Writer.
func Write(output io.Writer, attr WriteAttr, entries []Entry) {
	for _, e := range entries {
		WriteLine(output, attr, e)
	}
}

// WriteLine writes a single entry to io.Writer.
func WriteLine(output io.Writer, attr WriteAttr, e Entry) {
	if attr.UseCursor {
		if e.Address == attr.Cursor {
			io.WriteString(output, "> ")
		} else {
			io.WriteString(output, "  ")
		}
	}

	io.WriteString(output, fmt.Sprintf("%05x ", e.Address))

	if attr.ByteCode {
		io.WriteString(output, fmt.Sprintf("%08x ", e.Word))
	}

	io.WriteString(output, fmt.Sprintf("%-9s %s\n", e.Mnemonic, e.Operands))
}
