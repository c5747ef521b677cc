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

package channels

import (
	"context"
	"sync"
	"sync/atomic"
)

// MFCStatus is the view of the MFC command queue required by the tag status
// and list stall channels.
type MFCStatus interface {
	// tags with no outstanding commands
	CompletedTags() uint32

	// stall-and-notify bits. TakeStallStatus() clears the bits it returns
	StallStatus() uint32
	TakeStallStatus() uint32
}

// Block is the set of channels belonging to one core.
//
// Every channel in the block is protected by a single lock. Blocking reads and
// writes wait on a condition variable that is broadcast whenever any channel
// changes. There is only one waiter, the core goroutine, so a broadcast is
// cheap.
//
// Host, peer and coordinator access uses the Push*(), Pop*(), WriteSignal()
// and RaiseEvent() functions. Core access uses the Read*() and Write*()
// functions, which block and which return false if the wait was cancelled.
type Block struct {
	crit sync.Mutex
	cond *sync.Cond

	clock Clock
	mfc   MFCStatus

	// cancelled is set by Cancel(). blocking waits by the core return
	// immediately while it is set
	cancelled bool

	// waiting is true while the core goroutine is blocked in a channel wait
	waiting atomic.Bool

	inMbox      FIFO
	outMbox     FIFO
	outIntrMbox FIFO

	eventStat uint32
	eventMask uint32

	snr        [2]uint32
	snrPending [2]bool
	snrOr      [2]bool

	decStored  uint32
	decStart   uint64
	decRunning bool
	decFired   bool

	tagMask    uint32
	tagMode    uint32
	tagRequest bool

	atomicStat    uint32
	atomicPending bool

	srr0 uint32

	msSync bool
}

// NewBlock is the preferred method of initialisation for the Block type.
func NewBlock(clock Clock, mfc MFCStatus) *Block {
	b := &Block{
		clock:       clock,
		mfc:         mfc,
		inMbox:      NewFIFO(InMboxDepth),
		outMbox:     NewFIFO(OutMboxDepth),
		outIntrMbox: NewFIFO(OutIntrMboxDepth),
	}
	b.cond = sync.NewCond(&b.crit)
	return b
}

// Reset every channel to its initial state. The cancelled state is not
// changed.
func (b *Block) Reset() {
	b.crit.Lock()
	defer b.crit.Unlock()

	b.inMbox.Clear()
	b.outMbox.Clear()
	b.outIntrMbox.Clear()
	b.eventStat = 0
	b.eventMask = 0
	b.snr = [2]uint32{}
	b.snrPending = [2]bool{}
	b.decStored = 0
	b.decStart = 0
	b.decRunning = false
	b.decFired = false
	b.tagMask = 0
	b.tagMode = 0
	b.tagRequest = false
	b.atomicStat = 0
	b.atomicPending = false
	b.srr0 = 0
	b.msSync = false
	b.cond.Broadcast()
}

// Cancel every current and future blocking wait by the core.
func (b *Block) Cancel() {
	b.crit.Lock()
	defer b.crit.Unlock()
	b.cancelled = true
	b.cond.Broadcast()
}

// Uncancel allows blocking waits again.
func (b *Block) Uncancel() {
	b.crit.Lock()
	defer b.crit.Unlock()
	b.cancelled = false
}

// Waiting returns true if the core is blocked in a channel wait.
func (b *Block) Waiting() bool {
	return b.waiting.Load()
}

// Notify wakes the waiting core so that it can reevaluate its wait condition.
// Used when state outside of the block changes, such as the number of free
// slots in the MFC command queue.
func (b *Block) Notify() {
	b.crit.Lock()
	defer b.crit.Unlock()
	b.cond.Broadcast()
}

// wait until cond() is true. the lock must be held. returns false if the wait
// was cancelled
func (b *Block) wait(cond func() bool) bool {
	if cond() {
		return true
	}
	b.waiting.Store(true)
	defer b.waiting.Store(false)
	for !cond() {
		if b.cancelled {
			return false
		}
		b.cond.Wait()
	}
	return true
}

// wait with a context. used by the host. the lock must be held
func (b *Block) waitCtx(ctx context.Context, cond func() bool) error {
	stop := context.AfterFunc(ctx, func() {
		b.crit.Lock()
		b.cond.Broadcast()
		b.crit.Unlock()
	})
	defer stop()
	for !cond() {
		if err := ctx.Err(); err != nil {
			return err
		}
		b.cond.Wait()
	}
	return nil
}

// Wait blocks the core until cond() returns true. The function is called with
// the block lock held so it must not call back into the block. Returns false
// if the wait was cancelled.
func (b *Block) Wait(cond func() bool) bool {
	b.crit.Lock()
	defer b.crit.Unlock()
	return b.wait(cond)
}

// raise event bits. the lock must be held
func (b *Block) raise(bits uint32) {
	b.eventStat |= bits & EventAll
	b.cond.Broadcast()
}

// RaiseEvent sets event bits in the event status. Bits accumulate until they
// are acknowledged.
func (b *Block) RaiseEvent(bits uint32) {
	b.crit.Lock()
	defer b.crit.Unlock()
	b.raise(bits)
}

// ReadEventStat blocks until at least one unmasked event is pending and
// returns the pending unmasked events. Events are not cleared by reading.
func (b *Block) ReadEventStat() (uint32, bool) {
	b.crit.Lock()
	defer b.crit.Unlock()
	b.checkDecrementer()
	if !b.wait(func() bool { return b.eventStat&b.eventMask != 0 }) {
		return 0, false
	}
	return b.eventStat & b.eventMask, true
}

// EventCount is the channel count for SPU_RdEventStat.
func (b *Block) EventCount() uint32 {
	b.crit.Lock()
	defer b.crit.Unlock()
	b.checkDecrementer()
	if b.eventStat&b.eventMask != 0 {
		return 1
	}
	return 0
}

// EventStat returns the raw event status without waiting.
func (b *Block) EventStat() uint32 {
	b.crit.Lock()
	defer b.crit.Unlock()
	return b.eventStat
}

// SetEventMask writes SPU_WrEventMask.
func (b *Block) SetEventMask(mask uint32) {
	b.crit.Lock()
	defer b.crit.Unlock()
	b.eventMask = mask & EventAll
	b.cond.Broadcast()
}

// EventMask reads SPU_RdEventMask.
func (b *Block) EventMask() uint32 {
	b.crit.Lock()
	defer b.crit.Unlock()
	return b.eventMask
}

// AckEvents writes SPU_WrEventAck. The acknowledged bits are cleared.
func (b *Block) AckEvents(bits uint32) {
	b.crit.Lock()
	defer b.crit.Unlock()
	b.eventStat &^= bits
}

// PendingInterrupt returns true if an unmasked event is pending. Used to
// decide whether an interrupt should be taken.
func (b *Block) PendingInterrupt() bool {
	b.crit.Lock()
	defer b.crit.Unlock()
	b.checkDecrementer()
	return b.eventStat&b.eventMask != 0
}

// ReadInMbox blocks until the inbound mailbox has a value and pops it.
func (b *Block) ReadInMbox() (uint32, bool) {
	b.crit.Lock()
	defer b.crit.Unlock()
	if !b.wait(func() bool { return b.inMbox.Len() > 0 }) {
		return 0, false
	}
	v, _ := b.inMbox.Pop()
	b.cond.Broadcast()
	return v, true
}

// InMboxCount is the channel count for SPU_RdInMbox.
func (b *Block) InMboxCount() uint32 {
	b.crit.Lock()
	defer b.crit.Unlock()
	return uint32(b.inMbox.Len())
}

// PushInMbox pushes a value into the inbound mailbox without blocking. Returns
// false if the mailbox is full. The MB event is raised if the mailbox was
// empty.
func (b *Block) PushInMbox(v uint32) bool {
	b.crit.Lock()
	defer b.crit.Unlock()
	return b.pushInMbox(v)
}

func (b *Block) pushInMbox(v uint32) bool {
	empty := b.inMbox.Len() == 0
	if !b.inMbox.Push(v) {
		return false
	}
	if empty {
		b.raise(EventMB)
	}
	b.cond.Broadcast()
	return true
}

// WaitPushInMbox pushes a value into the inbound mailbox, waiting for space if
// necessary.
func (b *Block) WaitPushInMbox(ctx context.Context, v uint32) error {
	b.crit.Lock()
	defer b.crit.Unlock()
	if err := b.waitCtx(ctx, func() bool { return b.inMbox.Space() > 0 }); err != nil {
		return err
	}
	b.pushInMbox(v)
	return nil
}

// SetInMbox replaces the contents of the inbound mailbox. Used to place
// replies to requests made by the core through its outbound mailboxes.
func (b *Block) SetInMbox(v ...uint32) {
	b.crit.Lock()
	defer b.crit.Unlock()
	b.inMbox.Clear()
	for _, w := range v {
		b.inMbox.Push(w)
	}
	if len(v) > 0 {
		b.raise(EventMB)
	}
	b.cond.Broadcast()
}

// WriteOutMbox blocks until the outbound mailbox has space and pushes the
// value.
func (b *Block) WriteOutMbox(v uint32) bool {
	b.crit.Lock()
	defer b.crit.Unlock()
	if !b.wait(func() bool { return b.outMbox.Space() > 0 }) {
		return false
	}
	b.outMbox.Push(v)
	b.cond.Broadcast()
	return true
}

// OutMboxSpace is the channel count for SPU_WrOutMbox.
func (b *Block) OutMboxSpace() uint32 {
	b.crit.Lock()
	defer b.crit.Unlock()
	return uint32(b.outMbox.Space())
}

// PopOutMbox pops the outbound mailbox without blocking. The LE event is
// raised if a value was popped.
func (b *Block) PopOutMbox() (uint32, bool) {
	b.crit.Lock()
	defer b.crit.Unlock()
	v, ok := b.outMbox.Pop()
	if ok {
		b.raise(EventLE)
	}
	return v, ok
}

// PeekOutMbox returns the value in the outbound mailbox without removing it.
func (b *Block) PeekOutMbox() (uint32, bool) {
	b.crit.Lock()
	defer b.crit.Unlock()
	v := b.outMbox.Values()
	if len(v) == 0 {
		return 0, false
	}
	return v[0], true
}

// WaitPopOutMbox pops the outbound mailbox, waiting for a value if necessary.
func (b *Block) WaitPopOutMbox(ctx context.Context) (uint32, error) {
	b.crit.Lock()
	defer b.crit.Unlock()
	if err := b.waitCtx(ctx, func() bool { return b.outMbox.Len() > 0 }); err != nil {
		return 0, err
	}
	v, _ := b.outMbox.Pop()
	b.raise(EventLE)
	return v, nil
}

// WriteOutIntrMbox blocks until the outbound interrupt mailbox has space and
// pushes the value.
func (b *Block) WriteOutIntrMbox(v uint32) bool {
	b.crit.Lock()
	defer b.crit.Unlock()
	if !b.wait(func() bool { return b.outIntrMbox.Space() > 0 }) {
		return false
	}
	b.outIntrMbox.Push(v)
	b.cond.Broadcast()
	return true
}

// OutIntrMboxSpace is the channel count for SPU_WrOutIntrMbox.
func (b *Block) OutIntrMboxSpace() uint32 {
	b.crit.Lock()
	defer b.crit.Unlock()
	return uint32(b.outIntrMbox.Space())
}

// PopOutIntrMbox pops the outbound interrupt mailbox without blocking. The ME
// event is raised if a value was popped.
func (b *Block) PopOutIntrMbox() (uint32, bool) {
	b.crit.Lock()
	defer b.crit.Unlock()
	v, ok := b.outIntrMbox.Pop()
	if ok {
		b.raise(EventME)
	}
	return v, ok
}

// WaitPopOutIntrMbox pops the outbound interrupt mailbox, waiting for a value
// if necessary.
func (b *Block) WaitPopOutIntrMbox(ctx context.Context) (uint32, error) {
	b.crit.Lock()
	defer b.crit.Unlock()
	if err := b.waitCtx(ctx, func() bool { return b.outIntrMbox.Len() > 0 }); err != nil {
		return 0, err
	}
	v, _ := b.outIntrMbox.Pop()
	b.raise(EventME)
	return v, nil
}

// ReadSignal blocks until signal-notify register n (0 or 1) has a pending
// value. The value is returned and the register is cleared.
func (b *Block) ReadSignal(n int) (uint32, bool) {
	b.crit.Lock()
	defer b.crit.Unlock()
	if !b.wait(func() bool { return b.snrPending[n] }) {
		return 0, false
	}
	v := b.snr[n]
	b.snr[n] = 0
	b.snrPending[n] = false
	return v, true
}

// SignalCount is the channel count for SPU_RdSigNotify1 and SPU_RdSigNotify2.
func (b *Block) SignalCount(n int) uint32 {
	b.crit.Lock()
	defer b.crit.Unlock()
	if b.snrPending[n] {
		return 1
	}
	return 0
}

// WriteSignal writes to signal-notify register n (0 or 1). In OR mode the
// value is combined with any pending value, otherwise the pending value is
// replaced.
func (b *Block) WriteSignal(n int, v uint32) {
	b.crit.Lock()
	defer b.crit.Unlock()
	if b.snrOr[n] && b.snrPending[n] {
		b.snr[n] |= v
	} else {
		b.snr[n] = v
	}
	b.snrPending[n] = true
	if n == 0 {
		b.raise(EventS1)
	} else {
		b.raise(EventS2)
	}
}

// SetSignalMode selects OR mode (true) or overwrite mode (false) for
// signal-notify register n.
func (b *Block) SetSignalMode(n int, or bool) {
	b.crit.Lock()
	defer b.crit.Unlock()
	b.snrOr[n] = or
}

// SignalMode returns true if signal-notify register n is in OR mode.
func (b *Block) SignalMode(n int) bool {
	b.crit.Lock()
	defer b.crit.Unlock()
	return b.snrOr[n]
}

// WriteDecrementer writes SPU_WrDec and starts the decrementer.
func (b *Block) WriteDecrementer(v uint32) {
	b.crit.Lock()
	defer b.crit.Unlock()
	b.decStored = v
	b.decStart = b.clock.Ticks()
	b.decRunning = true
	b.decFired = false
}

// ReadDecrementer reads SPU_RdDec.
func (b *Block) ReadDecrementer() uint32 {
	b.crit.Lock()
	defer b.crit.Unlock()
	b.checkDecrementer()
	return b.decrementer()
}

func (b *Block) decrementer() uint32 {
	if !b.decRunning {
		return b.decStored
	}
	return b.decStored - uint32(b.clock.Ticks()-b.decStart)
}

// CheckDecrementer raises the TM event if the decrementer has passed zero
// since it was last written. Returns true if the event was raised by this
// call.
func (b *Block) CheckDecrementer() bool {
	b.crit.Lock()
	defer b.crit.Unlock()
	return b.checkDecrementer()
}

func (b *Block) checkDecrementer() bool {
	if !b.decRunning || b.decFired || b.decStored&0x80000000 != 0 {
		return false
	}
	if b.clock.Ticks()-b.decStart > uint64(b.decStored) {
		b.decFired = true
		b.raise(EventTM)
		return true
	}
	return false
}

// SetTagMask writes MFC_WrTagMask.
func (b *Block) SetTagMask(mask uint32) {
	b.crit.Lock()
	defer b.crit.Unlock()
	b.tagMask = mask
	b.cond.Broadcast()
}

// TagMask reads MFC_RdTagMask.
func (b *Block) TagMask() uint32 {
	b.crit.Lock()
	defer b.crit.Unlock()
	return b.tagMask
}

// SetTagUpdate writes MFC_WrTagUpdate. The value must be one of the
// TagUpdate* values.
func (b *Block) SetTagUpdate(mode uint32) {
	b.crit.Lock()
	defer b.crit.Unlock()
	b.tagMode = mode
	b.tagRequest = true
	b.tagsUpdated()
}

// TagsUpdated is called when MFC tag groups complete.
func (b *Block) TagsUpdated() {
	b.crit.Lock()
	defer b.crit.Unlock()
	b.tagsUpdated()
}

func (b *Block) tagsUpdated() {
	if _, ok := b.tagStatus(); ok && b.tagMode != TagUpdateImmediate {
		b.raise(EventTG)
	}
	b.cond.Broadcast()
}

// the tag status and whether the pending request is satisfied. the lock must
// be held
func (b *Block) tagStatus() (uint32, bool) {
	if !b.tagRequest {
		return 0, false
	}
	done := b.mfc.CompletedTags() & b.tagMask
	switch b.tagMode {
	case TagUpdateAny:
		return done, done != 0
	case TagUpdateAll:
		return done, done == b.tagMask
	}
	return done, true
}

// ReadTagStatus blocks until the pending tag update request is satisfied and
// returns the completed tags of the tag mask. The request is consumed.
func (b *Block) ReadTagStatus() (uint32, bool) {
	b.crit.Lock()
	defer b.crit.Unlock()
	if !b.wait(func() bool { _, ok := b.tagStatus(); return ok }) {
		return 0, false
	}
	v, _ := b.tagStatus()
	b.tagRequest = false
	return v, true
}

// TagStatusCount is the channel count for MFC_RdTagStat.
func (b *Block) TagStatusCount() uint32 {
	b.crit.Lock()
	defer b.crit.Unlock()
	if _, ok := b.tagStatus(); ok {
		return 1
	}
	return 0
}

// ReadStallStatus blocks until at least one list command is stalled and
// returns the stalled tags. The stall status is cleared.
func (b *Block) ReadStallStatus() (uint32, bool) {
	b.crit.Lock()
	defer b.crit.Unlock()
	if !b.wait(func() bool { return b.mfc.StallStatus() != 0 }) {
		return 0, false
	}
	return b.mfc.TakeStallStatus(), true
}

// StallCount is the channel count for MFC_RdListStallStat.
func (b *Block) StallCount() uint32 {
	if b.mfc.StallStatus() != 0 {
		return 1
	}
	return 0
}

// SetAtomicStatus makes a value available on MFC_RdAtomicStat.
func (b *Block) SetAtomicStatus(v uint32) {
	b.crit.Lock()
	defer b.crit.Unlock()
	b.atomicStat = v
	b.atomicPending = true
	b.cond.Broadcast()
}

// ReadAtomicStatus blocks until an atomic command has completed and returns
// its status.
func (b *Block) ReadAtomicStatus() (uint32, bool) {
	b.crit.Lock()
	defer b.crit.Unlock()
	if !b.wait(func() bool { return b.atomicPending }) {
		return 0, false
	}
	b.atomicPending = false
	return b.atomicStat, true
}

// AtomicCount is the channel count for MFC_RdAtomicStat.
func (b *Block) AtomicCount() uint32 {
	b.crit.Lock()
	defer b.crit.Unlock()
	if b.atomicPending {
		return 1
	}
	return 0
}

// SRR0 reads SPU_RdSRR0.
func (b *Block) SRR0() uint32 {
	b.crit.Lock()
	defer b.crit.Unlock()
	return b.srr0
}

// SetSRR0 writes SPU_WrSRR0.
func (b *Block) SetSRR0(v uint32) {
	b.crit.Lock()
	defer b.crit.Unlock()
	b.srr0 = v
}

// RequestMSSync writes MFC_WrMSSyncReq.
func (b *Block) RequestMSSync() {
	b.crit.Lock()
	defer b.crit.Unlock()
	b.msSync = true
}

// CompleteMSSync raises the MS event if a synchronisation request is
// outstanding. Called by the coordinator when the MFC queue is empty.
func (b *Block) CompleteMSSync() {
	b.crit.Lock()
	defer b.crit.Unlock()
	if b.msSync {
		b.msSync = false
		b.raise(EventMS)
	}
}

// State is a copy of the channel block for diagnostics.
type State struct {
	InMbox      []uint32
	OutMbox     []uint32
	OutIntrMbox []uint32
	EventStat   uint32
	EventMask   uint32
	Signal      [2]uint32
	SignalOr    [2]bool
	Decrementer uint32
	TagMask     uint32
	TagMode     uint32
	AtomicStat  uint32
	SRR0        uint32
}

// State returns a copy of the channel block.
func (b *Block) State() State {
	b.crit.Lock()
	defer b.crit.Unlock()
	return State{
		InMbox:      b.inMbox.Values(),
		OutMbox:     b.outMbox.Values(),
		OutIntrMbox: b.outIntrMbox.Values(),
		EventStat:   b.eventStat,
		EventMask:   b.eventMask,
		Signal:      b.snr,
		SignalOr:    b.snrOr,
		Decrementer: b.decrementer(),
		TagMask:     b.tagMask,
		TagMode:     b.tagMode,
		AtomicStat:  b.atomicStat,
		SRR0:        b.srr0,
	}
}
