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

package events

import (
	"fmt"
	"sync"

	"github.com/jetsetilly/gophercell/curated"
	"github.com/jetsetilly/gophercell/logger"
)

// Sentinel error patterns.
const (
	UnknownRequest = "events: unknown bridge request: %#08x"
	PortInUse      = "events: core %d: port %d is already connected"
	PortRange      = "events: port %d out of range"
	NotConnected   = "events: core %d: port %d is not connected"
	QueueInUse     = "events: queue number %#x is already bound"
)

// NumPorts is the number of event ports of each core.
const NumPorts = 64

// Operation requested by a core through its outbound interrupt mailbox.
type Operation int

// List of valid Operation values.
const (
	SendEvent Operation = iota
	ThrowEvent
	SetFlag
	SetFlagNoReply
)

func (op Operation) String() string {
	switch op {
	case SendEvent:
		return "send event"
	case ThrowEvent:
		return "throw event"
	case SetFlag:
		return "set flag"
	case SetFlagNoReply:
		return "set flag (no reply)"
	}
	return "unknown"
}

// Request is a decoded outbound interrupt mailbox value.
type Request struct {
	Operation Operation

	// port number for events. zero for flags
	Port int

	// value taken from the outbound mailbox
	Data0 uint32

	// low 24 bits of the interrupt mailbox value
	Data1 uint32
}

func (r Request) String() string {
	return fmt.Sprintf("%v port=%d data0=%#x data1=%#06x", r.Operation, r.Port, r.Data0, r.Data1)
}

// Reply returns true if the core expects a result in its inbound mailbox.
func (r Request) Reply() bool {
	return r.Operation == SendEvent || r.Operation == SetFlag
}

// Decode the value written to the outbound interrupt mailbox. The data0 value
// is the value in the outbound mailbox.
func Decode(value uint32, data0 uint32) (Request, error) {
	code := value >> 24
	r := Request{
		Data0: data0,
		Data1: value & 0x00ffffff,
	}

	switch {
	case code < 64:
		r.Operation = SendEvent
		r.Port = int(code)
	case code < 128:
		r.Operation = ThrowEvent
		r.Port = int(code - 64)
	case code == 128:
		r.Operation = SetFlag
	case code == 192:
		r.Operation = SetFlagNoReply
	default:
		return Request{}, curated.Errorf(UnknownRequest, value)
	}

	return r, nil
}

type portKey struct {
	core int
	port int
}

// Bridge connects the ports of cores to event queues and holds the event
// flags and the queues that cores receive from.
type Bridge struct {
	crit   sync.Mutex
	ports  map[portKey]*Queue
	queues map[uint32]*Queue
	flags  map[uint32]*Flag
}

// NewBridge is the preferred method of initialisation for the Bridge type.
func NewBridge() *Bridge {
	return &Bridge{
		ports:  make(map[portKey]*Queue),
		queues: make(map[uint32]*Queue),
		flags:  make(map[uint32]*Flag),
	}
}

// Connect a port of a core to a queue. Events sent or thrown by the core on
// the port are placed in the queue.
func (br *Bridge) Connect(core int, port int, q *Queue) error {
	if port < 0 || port >= NumPorts {
		return curated.Errorf(PortRange, port)
	}
	br.crit.Lock()
	defer br.crit.Unlock()
	k := portKey{core: core, port: port}
	if _, ok := br.ports[k]; ok {
		return curated.Errorf(PortInUse, core, port)
	}
	br.ports[k] = q
	return nil
}

// Disconnect a port of a core.
func (br *Bridge) Disconnect(core int, port int) error {
	br.crit.Lock()
	defer br.crit.Unlock()
	k := portKey{core: core, port: port}
	if _, ok := br.ports[k]; !ok {
		return curated.Errorf(NotConnected, core, port)
	}
	delete(br.ports, k)
	return nil
}

// Bind a queue to a queue number. Cores receive events from the queue with
// the receive-event stop codes.
func (br *Bridge) Bind(num uint32, q *Queue) error {
	br.crit.Lock()
	defer br.crit.Unlock()
	if _, ok := br.queues[num]; ok {
		return curated.Errorf(QueueInUse, num)
	}
	br.queues[num] = q
	return nil
}

// Unbind the queue number.
func (br *Bridge) Unbind(num uint32) {
	br.crit.Lock()
	defer br.crit.Unlock()
	delete(br.queues, num)
}

// Queue returns the queue bound to the queue number.
func (br *Bridge) Queue(num uint32) (*Queue, bool) {
	br.crit.Lock()
	defer br.crit.Unlock()
	q, ok := br.queues[num]
	return q, ok
}

// AddFlag makes an event flag available to cores with the flag id.
func (br *Bridge) AddFlag(id uint32, f *Flag) {
	br.crit.Lock()
	defer br.crit.Unlock()
	br.flags[id] = f
}

// Flag returns the event flag with the id.
func (br *Bridge) Flag(id uint32) (*Flag, bool) {
	br.crit.Lock()
	defer br.crit.Unlock()
	f, ok := br.flags[id]
	return f, ok
}

func (br *Bridge) port(core int, port int) (*Queue, bool) {
	br.crit.Lock()
	defer br.crit.Unlock()
	q, ok := br.ports[portKey{core: core, port: port}]
	return q, ok
}

// Handle a request from a core. The result should be placed in the inbound
// mailbox of the core if Request.Reply() is true.
func (br *Bridge) Handle(core int, r Request) uint32 {
	switch r.Operation {
	case SendEvent, ThrowEvent:
		q, ok := br.port(core, r.Port)
		if !ok {
			if r.Operation == ThrowEvent {
				logger.Logf(logger.Allow, "events", "core %d: %v: port not connected", core, r)
			}
			return ENOTCONN
		}
		res := q.Send(Event{
			Source: UserKey,
			Data1:  uint64(core),
			Data2:  uint64(r.Port)<<32 | uint64(r.Data1),
			Data3:  uint64(r.Data0),
		})
		if res != OK && r.Operation == ThrowEvent {
			logger.Logf(logger.Allow, "events", "core %d: %v: queue %s is full", core, r, q)
		}
		return res

	case SetFlag, SetFlagNoReply:
		f, ok := br.Flag(r.Data0)
		if !ok {
			return ESRCH
		}
		return f.Set(r.Data1)
	}

	return EINVAL
}
