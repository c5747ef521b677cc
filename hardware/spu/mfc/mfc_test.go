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

package mfc_test

import (
	"bytes"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jetsetilly/gophercell/curated"
	"github.com/jetsetilly/gophercell/hardware/memory/mainmem"
	"github.com/jetsetilly/gophercell/hardware/memory/reservation"
	"github.com/jetsetilly/gophercell/hardware/spu/channels"
	"github.com/jetsetilly/gophercell/hardware/spu/localstore"
	"github.com/jetsetilly/gophercell/hardware/spu/mfc"
	"github.com/jetsetilly/gophercell/test"
)

type port struct {
	id     int
	ls     *localstore.LocalStore
	events atomic.Uint32
	stat   atomic.Uint32
	tags   atomic.Int32

	crit  sync.Mutex
	fault error
}

func newPort(id int) *port {
	return &port{id: id, ls: localstore.NewLocalStore()}
}

func (p *port) ID() int                            { return p.id }
func (p *port) LocalStore() *localstore.LocalStore { return p.ls }
func (p *port) RaiseEvent(bits uint32)             { p.events.Or(bits) }
func (p *port) TagsUpdated()                       { p.tags.Add(1) }
func (p *port) QueueVacancy()                      {}
func (p *port) SetAtomicStatus(v uint32)           { p.stat.Store(v) }

func (p *port) DMAFault(err error) {
	p.crit.Lock()
	defer p.crit.Unlock()
	p.fault = err
}

func (p *port) err() error {
	p.crit.Lock()
	defer p.crit.Unlock()
	return p.fault
}

func newSystem(t *testing.T) *mfc.System {
	t.Helper()
	mem := mainmem.NewMemory()
	test.DemandSuccess(t, mem.Map(0x10000, 0x40000))
	return &mfc.System{
		Memory:       mem,
		Reservations: reservation.NewTable(),
	}
}

// step the MFC until nothing more happens
func run(t *testing.T, m *mfc.MFC) {
	t.Helper()
	for range 1000 {
		progress, err := m.Step()
		test.DemandSuccess(t, err)
		if !progress {
			return
		}
	}
	t.Fatalf("MFC did not settle")
}

func issue(t *testing.T, m *mfc.MFC, cmd mfc.Command) {
	t.Helper()
	ok, err := m.Issue(cmd)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, ok)
}

func fill(p []byte, seed byte) []byte {
	for i := range p {
		p[i] = seed + byte(i)
	}
	return p
}

func TestPutGet(t *testing.T) {
	sys := newSystem(t)
	p := newPort(0)
	m := mfc.NewMFC(sys, p)

	data := fill(make([]byte, 0x80), 1)
	p.ls.Write(0x100, data)

	issue(t, m, mfc.Command{Opcode: mfc.PUT, LSA: 0x100, EA: 0x10000, Size: 0x80, Tag: 1})
	test.ExpectEquality(t, m.Outstanding(), 1)
	test.ExpectEquality(t, m.CompletedTags()&0x2, uint32(0))

	run(t, m)
	test.ExpectSuccess(t, m.Idle())
	test.ExpectEquality(t, m.CompletedTags(), uint32(0xffffffff))
	test.ExpectEquality(t, p.tags.Load(), int32(1))

	out := make([]byte, 0x80)
	test.DemandSuccess(t, sys.Memory.Read(0x10000, out))
	test.ExpectSuccess(t, bytes.Equal(out, data))

	// small transfers keep the low bits of the address
	issue(t, m, mfc.Command{Opcode: mfc.GET, LSA: 0x204, EA: 0x10004, Size: 4, Tag: 2})
	run(t, m)
	test.ExpectEquality(t, p.ls.Read32(0x204), uint32(0x05060708))
}

func TestValidation(t *testing.T) {
	m := mfc.NewMFC(newSystem(t), newPort(0))

	_, err := m.Issue(mfc.Command{Opcode: 0x99, Size: 16})
	test.ExpectSuccess(t, curated.Is(err, mfc.IllegalOpcode))

	_, err = m.Issue(mfc.Command{Opcode: mfc.PUT, LSA: 0, EA: 0x10000, Size: 24})
	test.ExpectSuccess(t, curated.Is(err, mfc.IllegalSize))

	_, err = m.Issue(mfc.Command{Opcode: mfc.PUT, LSA: 0, EA: 0x10000, Size: 0x4010})
	test.ExpectSuccess(t, curated.Is(err, mfc.IllegalSize))

	_, err = m.Issue(mfc.Command{Opcode: mfc.GET, LSA: 0x8, EA: 0x10000, Size: 32})
	test.ExpectSuccess(t, curated.Is(err, mfc.IllegalAlignment))

	_, err = m.Issue(mfc.Command{Opcode: mfc.GET, LSA: 0x2, EA: 0x10004, Size: 4})
	test.ExpectSuccess(t, curated.Is(err, mfc.IllegalAlignment))

	_, err = m.Issue(mfc.Command{Opcode: mfc.GETLLAR, EA: 0x10000, Size: 64})
	test.ExpectSuccess(t, curated.Is(err, mfc.IllegalAtomic))

	// nothing was queued
	test.ExpectSuccess(t, m.Idle())
}

func TestQueueFull(t *testing.T) {
	m := mfc.NewMFC(newSystem(t), newPort(0))
	for range mfc.QueueDepth {
		issue(t, m, mfc.Command{Opcode: mfc.PUT, LSA: 0, EA: 0x10000, Size: 16})
	}
	test.ExpectEquality(t, m.Space(), uint32(0))

	ok, err := m.Issue(mfc.Command{Opcode: mfc.PUT, LSA: 0, EA: 0x10000, Size: 16})
	test.ExpectSuccess(t, err)
	test.ExpectFailure(t, ok)

	_, err = m.Step()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, m.Space(), uint32(1))
}

// writeList writes a transfer list to the local store. each element is
// stall bit, size and effective address
func writeList(ls *localstore.LocalStore, addr uint32, elements ...[3]uint32) uint32 {
	for i, e := range elements {
		hdr := e[1] & 0x7fff
		if e[0] != 0 {
			hdr |= 0x80000000
		}
		ls.Write32(addr+uint32(i)*8, hdr)
		ls.Write32(addr+uint32(i)*8+4, e[2])
	}
	return uint32(len(elements)) * mfc.ListElementSize
}

func TestListStall(t *testing.T) {
	sys := newSystem(t)
	p := newPort(0)
	m := mfc.NewMFC(sys, p)

	src := fill(make([]byte, 0x300), 0x40)
	test.DemandSuccess(t, sys.Memory.Write(0x20000, src))

	size := writeList(p.ls, 0x3000,
		[3]uint32{0, 16, 0x20000},
		[3]uint32{1, 8, 0x20108},
		[3]uint32{0, 32, 0x20200},
	)
	issue(t, m, mfc.Command{Opcode: mfc.GETL, LSA: 0x1000, EA: 0x3000, Size: size, Tag: 7})

	progress, err := m.Step()
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, progress)

	// the first two elements have been transferred. the local store cursor
	// advances by at least 16 bytes per element
	buf := make([]byte, 16)
	p.ls.Read(0x1000, buf)
	test.ExpectSuccess(t, bytes.Equal(buf, src[:16]))
	buf = make([]byte, 8)
	p.ls.Read(0x1018, buf)
	test.ExpectSuccess(t, bytes.Equal(buf, src[0x108:0x110]))
	test.ExpectEquality(t, p.ls.Read32(0x1020), uint32(0))

	// stalled
	test.ExpectEquality(t, m.StallStatus(), uint32(1<<7))
	test.ExpectEquality(t, p.events.Load()&channels.EventSN, channels.EventSN)
	test.ExpectEquality(t, m.CompletedTags()&(1<<7), uint32(0))

	progress, err = m.Step()
	test.DemandSuccess(t, err)
	test.ExpectFailure(t, progress)

	// reading the stall status clears it but does not resume the list
	test.ExpectEquality(t, m.TakeStallStatus(), uint32(1<<7))
	progress, _ = m.Step()
	test.ExpectFailure(t, progress)

	m.AckStall(7)
	run(t, m)
	buf = make([]byte, 32)
	p.ls.Read(0x1020, buf)
	test.ExpectSuccess(t, bytes.Equal(buf, src[0x200:0x220]))
	test.ExpectSuccess(t, m.Idle())
	test.ExpectEquality(t, m.CompletedTags()&(1<<7), uint32(1<<7))
}

// stallList queues a two element list on the tag that stalls after the
// first element
func stallList(t *testing.T, m *mfc.MFC, p *port, tag uint8) {
	t.Helper()
	size := writeList(p.ls, 0x3000,
		[3]uint32{1, 16, 0x20000},
		[3]uint32{0, 16, 0x20010},
	)
	issue(t, m, mfc.Command{Opcode: mfc.PUTL, LSA: 0x1000, EA: 0x3000, Size: size, Tag: tag})
}

func read32(t *testing.T, sys *mfc.System, addr uint32) uint32 {
	t.Helper()
	v, err := sys.Memory.(*mainmem.Memory).Read32(addr)
	test.DemandSuccess(t, err)
	return v
}

func TestFenceOrdering(t *testing.T) {
	sys := newSystem(t)
	p := newPort(0)
	m := mfc.NewMFC(sys, p)

	p.ls.Write32(0x2000, 0xaaaaaaaa)
	p.ls.Write32(0x2010, 0xbbbbbbbb)

	stallList(t, m, p, 3)
	issue(t, m, mfc.Command{Opcode: mfc.PUTF, LSA: 0x2000, EA: 0x30000, Size: 16, Tag: 3})
	issue(t, m, mfc.Command{Opcode: mfc.PUTF, LSA: 0x2010, EA: 0x30010, Size: 16, Tag: 4})
	run(t, m)

	// the fenced command on tag 3 waits for the stalled list. the fence on
	// tag 4 has no earlier command to wait for
	test.ExpectEquality(t, read32(t, sys, 0x30000), uint32(0))
	test.ExpectEquality(t, read32(t, sys, 0x30010), uint32(0xbbbbbbbb))
	test.ExpectEquality(t, m.CompletedTags()&(1<<3), uint32(0))
	test.ExpectEquality(t, m.CompletedTags()&(1<<4), uint32(1<<4))

	m.AckStall(3)
	run(t, m)
	test.ExpectEquality(t, read32(t, sys, 0x30000), uint32(0xaaaaaaaa))
	test.ExpectSuccess(t, m.Idle())
}

func TestBarrierCommand(t *testing.T) {
	sys := newSystem(t)
	p := newPort(0)
	m := mfc.NewMFC(sys, p)
	p.ls.Write32(0x2000, 0x12345678)

	stallList(t, m, p, 1)
	issue(t, m, mfc.Command{Opcode: mfc.BARRIER})
	issue(t, m, mfc.Command{Opcode: mfc.PUT, LSA: 0x2000, EA: 0x30000, Size: 16, Tag: 2})
	run(t, m)

	// nothing behind the barrier has happened
	test.ExpectEquality(t, read32(t, sys, 0x30000), uint32(0))
	test.ExpectEquality(t, m.Outstanding(), 3)

	m.AckStall(1)
	run(t, m)
	test.ExpectEquality(t, read32(t, sys, 0x30000), uint32(0x12345678))
	test.ExpectSuccess(t, m.Idle())
}

func TestBarrierFlag(t *testing.T) {
	sys := newSystem(t)
	p := newPort(0)
	m := mfc.NewMFC(sys, p)
	p.ls.Write32(0x2000, 0x11111111)
	p.ls.Write32(0x2010, 0x22222222)
	p.ls.Write32(0x2020, 0x33333333)

	stallList(t, m, p, 1)
	issue(t, m, mfc.Command{Opcode: mfc.PUTB, LSA: 0x2000, EA: 0x30000, Size: 16, Tag: 2})
	issue(t, m, mfc.Command{Opcode: mfc.PUT, LSA: 0x2010, EA: 0x30010, Size: 16, Tag: 2})
	issue(t, m, mfc.Command{Opcode: mfc.PUT, LSA: 0x2020, EA: 0x30020, Size: 16, Tag: 3})
	run(t, m)

	// the barrier flagged command and the later command with the same tag
	// wait. the command with a different tag goes ahead
	test.ExpectEquality(t, read32(t, sys, 0x30000), uint32(0))
	test.ExpectEquality(t, read32(t, sys, 0x30010), uint32(0))
	test.ExpectEquality(t, read32(t, sys, 0x30020), uint32(0x33333333))

	m.AckStall(1)
	run(t, m)
	test.ExpectEquality(t, read32(t, sys, 0x30000), uint32(0x11111111))
	test.ExpectEquality(t, read32(t, sys, 0x30010), uint32(0x22222222))
}

func TestFaultAtExecution(t *testing.T) {
	sys := newSystem(t)
	p := newPort(0)
	m := mfc.NewMFC(sys, p)

	issue(t, m, mfc.Command{Opcode: mfc.GET, LSA: 0, EA: 0x90000000, Size: 16, Tag: 1})
	issue(t, m, mfc.Command{Opcode: mfc.GET, LSA: 0, EA: 0x10000, Size: 16, Tag: 2})
	run(t, m)

	test.ExpectSuccess(t, curated.Has(p.err(), mainmem.UnmappedAddress))
	test.ExpectSuccess(t, m.Idle())
	test.ExpectEquality(t, m.CompletedTags(), uint32(0xffffffff))
}

func TestReservationSingleWinner(t *testing.T) {
	sys := newSystem(t)
	pa, pb := newPort(0), newPort(1)
	a, b := mfc.NewMFC(sys, pa), mfc.NewMFC(sys, pb)

	const line = 0x20080

	issue(t, a, mfc.Command{Opcode: mfc.GETLLAR, LSA: 0x400, EA: line, Size: 128})
	issue(t, b, mfc.Command{Opcode: mfc.GETLLAR, LSA: 0x400, EA: line, Size: 128})
	test.ExpectEquality(t, pa.stat.Load(), uint32(mfc.AtomicGetLLARSuccess))
	test.ExpectEquality(t, pb.stat.Load(), uint32(mfc.AtomicGetLLARSuccess))

	pa.ls.Write32(0x400, 0xaaaaaaaa)
	pb.ls.Write32(0x400, 0xbbbbbbbb)

	var wg sync.WaitGroup
	for _, m := range []*mfc.MFC{a, b} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Issue(mfc.Command{Opcode: mfc.PUTLLC, LSA: 0x400, EA: line, Size: 128})
			test.ExpectSuccess(t, err)
		}()
	}
	wg.Wait()

	sa := pa.stat.Load()
	sb := pb.stat.Load()
	test.ExpectEquality(t, sa+sb, uint32(mfc.AtomicPutLLCFailure))

	winner, loser := pa, pb
	if sa != mfc.AtomicPutLLCSuccess {
		winner, loser = pb, pa
	}
	test.ExpectEquality(t, loser.events.Load()&channels.EventLR, channels.EventLR)
	test.ExpectEquality(t, winner.events.Load()&channels.EventLR, uint32(0))
	test.ExpectEquality(t, read32(t, sys, line), winner.ls.Read32(0x400))
}

func TestUnconditionalInvalidates(t *testing.T) {
	sys := newSystem(t)
	pa, pb := newPort(0), newPort(1)
	a, b := mfc.NewMFC(sys, pa), mfc.NewMFC(sys, pb)

	issue(t, a, mfc.Command{Opcode: mfc.GETLLAR, LSA: 0x400, EA: 0x20000, Size: 128})

	pb.ls.Write32(0x400, 0xcafef00d)
	issue(t, b, mfc.Command{Opcode: mfc.PUTLLUC, LSA: 0x400, EA: 0x20000, Size: 128})
	test.ExpectEquality(t, pb.stat.Load(), uint32(mfc.AtomicPutLLUCSuccess))
	test.ExpectEquality(t, pa.events.Load()&channels.EventLR, channels.EventLR)
	test.ExpectEquality(t, read32(t, sys, 0x20000), uint32(0xcafef00d))

	issue(t, a, mfc.Command{Opcode: mfc.PUTLLC, LSA: 0x400, EA: 0x20000, Size: 128})
	test.ExpectEquality(t, pa.stat.Load(), uint32(mfc.AtomicPutLLCFailure))
	test.ExpectEquality(t, read32(t, sys, 0x20000), uint32(0xcafef00d))
}

func TestPlainPutLosesReservation(t *testing.T) {
	sys := newSystem(t)
	pa, pb := newPort(0), newPort(1)
	a, b := mfc.NewMFC(sys, pa), mfc.NewMFC(sys, pb)

	issue(t, a, mfc.Command{Opcode: mfc.GETLLAR, LSA: 0x400, EA: 0x20000, Size: 128})
	_, held := a.Reservation().Held()
	test.ExpectSuccess(t, held)

	// the loss to a plain put is found when the reservation is next used
	issue(t, b, mfc.Command{Opcode: mfc.PUT, LSA: 0, EA: 0x20040, Size: 16})
	run(t, b)
	test.ExpectEquality(t, pa.events.Load()&channels.EventLR, uint32(0))

	issue(t, a, mfc.Command{Opcode: mfc.PUTLLC, LSA: 0x400, EA: 0x20000, Size: 128})
	test.ExpectEquality(t, pa.stat.Load(), uint32(mfc.AtomicPutLLCFailure))
	test.ExpectEquality(t, pa.events.Load()&channels.EventLR, channels.EventLR)
	_, held = a.Reservation().Held()
	test.ExpectFailure(t, held)

	// and by a second GETLLAR
	pa.events.Store(0)
	issue(t, a, mfc.Command{Opcode: mfc.GETLLAR, LSA: 0x400, EA: 0x20000, Size: 128})
	issue(t, b, mfc.Command{Opcode: mfc.PUT, LSA: 0, EA: 0x20000, Size: 16})
	run(t, b)
	issue(t, a, mfc.Command{Opcode: mfc.GETLLAR, LSA: 0x400, EA: 0x20100, Size: 128})
	test.ExpectEquality(t, pa.events.Load()&channels.EventLR, channels.EventLR)
}

func TestQueuedUnconditional(t *testing.T) {
	sys := newSystem(t)
	pa, pb := newPort(0), newPort(1)
	a, b := mfc.NewMFC(sys, pa), mfc.NewMFC(sys, pb)

	issue(t, a, mfc.Command{Opcode: mfc.GETLLAR, LSA: 0x400, EA: 0x20000, Size: 128})
	pb.ls.Write32(0x480, 0x600dd00d)
	issue(t, b, mfc.Command{Opcode: mfc.PUTQLLUC, LSA: 0x480, EA: 0x20000, Size: 128, Tag: 9})
	test.ExpectEquality(t, b.CompletedTags()&(1<<9), uint32(0))

	run(t, b)
	test.ExpectEquality(t, read32(t, sys, 0x20000), uint32(0x600dd00d))
	test.ExpectEquality(t, pa.events.Load()&channels.EventLR, channels.EventLR)
	test.ExpectEquality(t, b.CompletedTags()&(1<<9), uint32(1<<9))
}

type peer struct {
	ls  *localstore.LocalStore
	snr [2]uint32
}

func (p *peer) LocalStore() *localstore.LocalStore { return p.ls }
func (p *peer) WriteSignal(n int, v uint32)        { p.snr[n] = v }

type resolver struct {
	peer *peer
}

func (r resolver) Classify(issuer int, ea uint64, size uint32) mfc.Target {
	switch {
	case ea >= 0xe0000000 && ea+uint64(size) <= 0xe0040000:
		return mfc.Target{Kind: mfc.PeerLocalStore, Addr: uint32(ea - 0xe0000000), Peer: r.peer}
	case ea == 0xe005400c && size == 4:
		return mfc.Target{Kind: mfc.PeerSignal, Peer: r.peer, Signal: 0}
	case ea < 0xe0000000:
		return mfc.Target{Kind: mfc.MainMemory, Addr: uint32(ea)}
	}
	return mfc.Target{Kind: mfc.NoBacking}
}

func TestPeerTargets(t *testing.T) {
	sys := newSystem(t)
	other := &peer{ls: localstore.NewLocalStore()}
	sys.Resolver = resolver{peer: other}
	p := newPort(0)
	m := mfc.NewMFC(sys, p)

	p.ls.Write32(0x100, 0xdeadbeef)
	issue(t, m, mfc.Command{Opcode: mfc.PUT, LSA: 0x100, EA: 0xe0000200, Size: 16})
	run(t, m)
	test.ExpectEquality(t, other.ls.Read32(0x200), uint32(0xdeadbeef))

	other.ls.Write32(0x300, 0x01020304)
	issue(t, m, mfc.Command{Opcode: mfc.GET, LSA: 0x500, EA: 0xe0000300, Size: 16})
	run(t, m)
	test.ExpectEquality(t, p.ls.Read32(0x500), uint32(0x01020304))

	p.ls.Write32(0x60c, 0x55)
	issue(t, m, mfc.Command{Opcode: mfc.SNDSIG, LSA: 0x60c, EA: 0xe005400c, Size: 4})
	run(t, m)
	test.ExpectEquality(t, other.snr[0], uint32(0x55))
	test.DemandSuccess(t, p.err() == nil)

	// an address in the window that is not the local store or a signal
	// register
	issue(t, m, mfc.Command{Opcode: mfc.PUT, LSA: 0x100, EA: 0xe0050000, Size: 16})
	run(t, m)
	test.ExpectSuccess(t, curated.Is(p.err(), mfc.IllegalTarget))
}

func TestParseOpcode(t *testing.T) {
	op, ok := mfc.ParseOpcode("getllar")
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, op, mfc.GETLLAR)

	op, ok = mfc.ParseOpcode("PUTLF")
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, op, mfc.PUTLF)

	_, ok = mfc.ParseOpcode("FROB")
	test.ExpectFailure(t, ok)
}
