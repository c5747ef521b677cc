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

// Package events is an in-memory implementation of the event queues and event
// flags that cores in a thread group use to talk to the host. The Bridge type
// decodes the requests a core makes through its outbound interrupt mailbox
// and applies them to the queues and flags.
package events

import (
	"context"
	"fmt"
	"sync"
)

// Result codes returned to programs in the inbound mailbox.
const (
	OK       uint32 = 0
	EAGAIN   uint32 = 0x80010001
	EINVAL   uint32 = 0x80010002
	ESRCH    uint32 = 0x80010005
	EBUSY    uint32 = 0x8001000a
	ENOTCONN uint32 = 0x80010016
)

// Source values of events.
const (
	// events sent by a core
	UserKey uint64 = 0xffffffff53505501

	// events posted by a thread group when it finishes and when one of its
	// threads faults
	GroupExitKey uint64 = 0xffffffff53505500
	ExceptionKey uint64 = 0xffffffff53505503
)

// Event is a single entry in a Queue.
type Event struct {
	Source uint64
	Data1  uint64
	Data2  uint64
	Data3  uint64
}

func (ev Event) String() string {
	return fmt.Sprintf("%#x: %#x %#x %#x", ev.Source, ev.Data1, ev.Data2, ev.Data3)
}

// DefaultQueueSize is the capacity of a queue created with a size of zero.
const DefaultQueueSize = 127

// Queue is a bounded queue of events.
type Queue struct {
	name string
	size int

	crit   sync.Mutex
	events []Event

	// closed and replaced when an event is sent
	arrival chan struct{}
}

// NewQueue is the preferred method of initialisation for the Queue type.
func NewQueue(name string, size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{
		name:    name,
		size:    size,
		arrival: make(chan struct{}),
	}
}

func (q *Queue) String() string {
	return q.name
}

// Send an event. Returns EBUSY if the queue is full.
func (q *Queue) Send(ev Event) uint32 {
	q.crit.Lock()
	defer q.crit.Unlock()
	if len(q.events) >= q.size {
		return EBUSY
	}
	q.events = append(q.events, ev)
	close(q.arrival)
	q.arrival = make(chan struct{})
	return OK
}

// TryReceive takes the oldest event without waiting.
func (q *Queue) TryReceive() (Event, bool) {
	q.crit.Lock()
	defer q.crit.Unlock()
	if len(q.events) == 0 {
		return Event{}, false
	}
	ev := q.events[0]
	q.events = q.events[1:]
	return ev, true
}

// Ready returns a channel that is closed when the queue has an event. The
// event might be taken by another receiver before the caller gets to it.
func (q *Queue) Ready() <-chan struct{} {
	q.crit.Lock()
	defer q.crit.Unlock()
	if len(q.events) > 0 {
		c := make(chan struct{})
		close(c)
		return c
	}
	return q.arrival
}

// Receive takes the oldest event, waiting for one if necessary.
func (q *Queue) Receive(ctx context.Context) (Event, error) {
	for {
		if ev, ok := q.TryReceive(); ok {
			return ev, nil
		}
		select {
		case <-ctx.Done():
			return Event{}, ctx.Err()
		case <-q.Ready():
		}
	}
}

// Len returns the number of events in the queue.
func (q *Queue) Len() int {
	q.crit.Lock()
	defer q.crit.Unlock()
	return len(q.events)
}
