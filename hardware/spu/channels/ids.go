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

import "fmt"

// ID is a channel number as used by the rdch, wrch and rchcnt instructions.
type ID uint32

// List of valid channel numbers.
const (
	RdEventStat     ID = 0
	WrEventMask     ID = 1
	WrEventAck      ID = 2
	RdSigNotify1    ID = 3
	RdSigNotify2    ID = 4
	WrDec           ID = 7
	RdDec           ID = 8
	WrMSSyncReq     ID = 9
	RdEventMask     ID = 11
	RdTagMask       ID = 12
	RdMachStat      ID = 13
	WrSRR0          ID = 14
	RdSRR0          ID = 15
	MFCLSA          ID = 16
	MFCEAH          ID = 17
	MFCEAL          ID = 18
	MFCSize         ID = 19
	MFCTagID        ID = 20
	MFCCmd          ID = 21
	WrTagMask       ID = 22
	WrTagUpdate     ID = 23
	RdTagStat       ID = 24
	RdListStallStat ID = 25
	WrListStallAck  ID = 26
	RdAtomicStat    ID = 27
	WrOutMbox       ID = 28
	RdInMbox        ID = 29
	WrOutIntrMbox   ID = 30
)

// Direction of a channel.
type Direction int

// List of valid Direction values.
const (
	Illegal Direction = iota
	Read
	Write
)

var names = map[ID]string{
	RdEventStat:     "SPU_RdEventStat",
	WrEventMask:     "SPU_WrEventMask",
	WrEventAck:      "SPU_WrEventAck",
	RdSigNotify1:    "SPU_RdSigNotify1",
	RdSigNotify2:    "SPU_RdSigNotify2",
	WrDec:           "SPU_WrDec",
	RdDec:           "SPU_RdDec",
	WrMSSyncReq:     "MFC_WrMSSyncReq",
	RdEventMask:     "SPU_RdEventMask",
	RdTagMask:       "MFC_RdTagMask",
	RdMachStat:      "SPU_RdMachStat",
	WrSRR0:          "SPU_WrSRR0",
	RdSRR0:          "SPU_RdSRR0",
	MFCLSA:          "MFC_LSA",
	MFCEAH:          "MFC_EAH",
	MFCEAL:          "MFC_EAL",
	MFCSize:         "MFC_Size",
	MFCTagID:        "MFC_TagID",
	MFCCmd:          "MFC_Cmd",
	WrTagMask:       "MFC_WrTagMask",
	WrTagUpdate:     "MFC_WrTagUpdate",
	RdTagStat:       "MFC_RdTagStat",
	RdListStallStat: "MFC_RdListStallStat",
	WrListStallAck:  "MFC_WrListStallAck",
	RdAtomicStat:    "MFC_RdAtomicStat",
	WrOutMbox:       "SPU_WrOutMbox",
	RdInMbox:        "SPU_RdInMbox",
	WrOutIntrMbox:   "SPU_WrOutIntrMbox",
}

func (id ID) String() string {
	if n, ok := names[id]; ok {
		return n
	}
	return fmt.Sprintf("channel %d", uint32(id))
}

// Direction returns whether the channel can be read or written. Channels that
// do not exist are Illegal.
func (id ID) Direction() Direction {
	switch id {
	case RdEventStat, RdSigNotify1, RdSigNotify2, RdDec, RdEventMask, RdTagMask,
		RdMachStat, RdSRR0, RdTagStat, RdListStallStat, RdAtomicStat, RdInMbox:
		return Read
	case WrEventMask, WrEventAck, WrDec, WrMSSyncReq, WrSRR0, MFCLSA, MFCEAH,
		MFCEAL, MFCSize, MFCTagID, MFCCmd, WrTagMask, WrTagUpdate, WrListStallAck,
		WrOutMbox, WrOutIntrMbox:
		return Write
	}
	return Illegal
}

// Event bits as seen in the SPU_RdEventStat channel.
const (
	EventMS uint32 = 0x1000 // multisource synchronisation
	EventA  uint32 = 0x0800 // privileged attention
	EventLR uint32 = 0x0400 // lock line reservation lost
	EventS1 uint32 = 0x0200 // signal notification register 1
	EventS2 uint32 = 0x0100 // signal notification register 2
	EventLE uint32 = 0x0080 // outbound mailbox available
	EventME uint32 = 0x0040 // outbound interrupt mailbox available
	EventTM uint32 = 0x0020 // decrementer
	EventMB uint32 = 0x0010 // inbound mailbox available
	EventQV uint32 = 0x0008 // MFC command queue vacancy
	EventSN uint32 = 0x0002 // list command stall-and-notify
	EventTG uint32 = 0x0001 // tag-group status update

	// every implemented event bit
	EventAll uint32 = 0x1ffb
)

// Tag update modes written to MFC_WrTagUpdate.
const (
	TagUpdateImmediate uint32 = 0
	TagUpdateAny       uint32 = 1
	TagUpdateAll       uint32 = 2
)

// Mailbox depths.
const (
	InMboxDepth      = 4
	OutMboxDepth     = 1
	OutIntrMboxDepth = 1
)
