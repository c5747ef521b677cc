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

package assert

import (
	"fmt"
	"sync/atomic"
)

// Owner records the goroutine that claims a resource. A claim from a second
// goroutine, while the first claim is held, panics. Claims are only checked
// when the program is built with the "assertions" build tag.
//
// The MFC command queue uses an Owner to check that only the core goroutine
// submits commands.
type Owner struct {
	id atomic.Uint64
}

// Claim the resource for the calling goroutine. Claiming a resource that is
// already held by the calling goroutine is allowed.
func (o *Owner) Claim(what string) {
	if !Enabled {
		return
	}
	id := GetGoRoutineID()
	if o.id.CompareAndSwap(0, id) {
		return
	}
	if held := o.id.Load(); held != id {
		panic(fmt.Sprintf("assert: %s claimed by goroutine %d but held by goroutine %d", what, id, held))
	}
}

// Release the resource. The next call to Claim() from any goroutine will
// succeed.
func (o *Owner) Release() {
	o.id.Store(0)
}
