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

// Package faults records the conditions that halt a core.
package faults

import (
	"fmt"
	"io"
	"sync"
)

// Category classifies the reason a core was halted.
type Category string

// List of valid Category values.
const (
	IllegalChannel     Category = "illegal channel"
	IllegalInstruction Category = "illegal instruction"
	ProtocolViolation  Category = "protocol violation"
	CompileFailure     Category = "compile failure"
	BridgeViolation    Category = "event bridge"
	HaltInstruction    Category = "halt instruction"
)

// Entry is a single entry in the fault log.
type Entry struct {
	Category Category

	// description of the event that caused the fault
	Event string

	// address of the instruction that caused the fault and, where relevant,
	// the address or channel that was being accessed
	InstructionAddr uint32
	AccessAddr      uint64

	// number of times this specific fault has been seen
	Count int
}

func (e Entry) String() string {
	return fmt.Sprintf("%s: %s: %08x (PC: %05x)", e.Category, e.Event, e.AccessAddr, e.InstructionAddr)
}

// Faults is the fault log of a core. Entries are added by the core goroutine
// and by the coordinator. The log can be read at any time.
type Faults struct {
	crit sync.Mutex

	// entries are keyed by the category and addresses
	entries map[string]*Entry

	// all the faults in order of the first time they appear
	log []*Entry
}

// NewFaults is the preferred method of initialisation for the Faults type.
func NewFaults() *Faults {
	return &Faults{
		entries: make(map[string]*Entry),
	}
}

// Clear all entries from faults log.
func (flt *Faults) Clear() {
	flt.crit.Lock()
	defer flt.crit.Unlock()
	clear(flt.entries)
	flt.log = flt.log[:0]
}

// NewEntry adds a new entry to the list of faults. A fault with the same
// category and addresses as an existing entry increases the count of that
// entry.
func (flt *Faults) NewEntry(event string, category Category, instructionAddr uint32, accessAddr uint64) {
	flt.crit.Lock()
	defer flt.crit.Unlock()

	key := fmt.Sprintf("%s%08x%016x", category, instructionAddr, accessAddr)

	e, found := flt.entries[key]
	if !found {
		e = &Entry{
			Category:        category,
			Event:           event,
			InstructionAddr: instructionAddr,
			AccessAddr:      accessAddr,
		}
		flt.entries[key] = e
		flt.log = append(flt.log, e)
	}

	e.Count++
}

// Log returns a copy of the log in the order the entries were added.
func (flt *Faults) Log() []Entry {
	flt.crit.Lock()
	defer flt.crit.Unlock()
	l := make([]Entry, len(flt.log))
	for i, e := range flt.log {
		l[i] = *e
	}
	return l
}

// Last returns the most recently added entry.
func (flt *Faults) Last() (Entry, bool) {
	flt.crit.Lock()
	defer flt.crit.Unlock()
	if len(flt.log) == 0 {
		return Entry{}, false
	}
	return *flt.log[len(flt.log)-1], true
}

// WriteLog writes the list of faults in the order they were added.
func (flt *Faults) WriteLog(w io.Writer) {
	for _, e := range flt.Log() {
		io.WriteString(w, e.String())
		io.WriteString(w, "\n")
	}
}
