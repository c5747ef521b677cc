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

package script

import (
	"context"
	"encoding/binary"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/jetsetilly/gophercell/disassembly"
	"github.com/jetsetilly/gophercell/dump"
	"github.com/jetsetilly/gophercell/hardware/machine"
	"github.com/jetsetilly/gophercell/hardware/spu"
	"github.com/jetsetilly/gophercell/hardware/spu/mfc"
	"github.com/jetsetilly/gophercell/hardware/spu/registers"
)

func statusTable(L *lua.LState, rep spu.Report) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("state", lua.LString(rep.State.String()))
	t.RawSetString("pc", lua.LNumber(rep.PC))
	t.RawSetString("stop", lua.LNumber(rep.StopCode))
	t.RawSetString("diagnostic", lua.LString(rep.Diagnostic))
	return t
}

func (s *Script) coreMethods() map[string]lua.LGFunction {
	core := func(L *lua.LState) *spu.Core {
		return check[*spu.Core](L, 1, coreType)
	}

	return map[string]lua.LGFunction{
		"id": func(L *lua.LState) int {
			L.Push(lua.LNumber(core(L).ID()))
			return 1
		},
		"label": func(L *lua.LState) int {
			L.Push(lua.LString(core(L).Label()))
			return 1
		},
		"load": func(L *lua.LState) int {
			c := core(L)
			img := check[*spu.Image](L, 2, imageType)
			if c.Running() {
				L.RaiseError("%s: core is running", c)
			}
			c.Reset()
			c.Load(img)
			return 0
		},
		"start": func(L *lua.LState) int {
			raise(L, s.m.StartCore(core(L)))
			return 0
		},
		"stop": func(L *lua.LState) int {
			core(L).Stop()
			return 0
		},
		"pause": func(L *lua.LState) int {
			core(L).Pause()
			return 0
		},
		"resume": func(L *lua.LState) int {
			core(L).Resume()
			return 0
		},
		"running": func(L *lua.LState) int {
			L.Push(lua.LBool(core(L).Running()))
			return 1
		},

		// wait for the core to stop. an optional timeout is in milliseconds
		"wait": func(L *lua.LState) int {
			ctx := s.ctx
			if ms := L.OptInt(2, 0); ms > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, time.Duration(ms)*time.Millisecond)
				defer cancel()
			}
			rep, err := s.m.WaitCore(ctx, core(L))
			raise(L, err)
			L.Push(statusTable(L, rep))
			return 1
		},
		"status": func(L *lua.LState) int {
			L.Push(statusTable(L, core(L).Status()))
			return 1
		},
		"write_mbox": func(L *lua.LState) int {
			raise(L, core(L).WriteInMbox(s.ctx, checkU32(L, 2)))
			return 0
		},
		"try_write_mbox": func(L *lua.LState) int {
			L.Push(lua.LBool(core(L).TryWriteInMbox(checkU32(L, 2))))
			return 1
		},
		"read_mbox": func(L *lua.LState) int {
			v, err := core(L).ReadOutMbox(s.ctx)
			raise(L, err)
			pushU32(L, v)
			return 1
		},
		"try_read_mbox": func(L *lua.LState) int {
			v, ok := core(L).TryReadOutMbox()
			if !ok {
				L.Push(lua.LNil)
				return 1
			}
			pushU32(L, v)
			return 1
		},
		"read_intr_mbox": func(L *lua.LState) int {
			v, err := core(L).ReadOutIntrMbox(s.ctx)
			raise(L, err)
			pushU32(L, v)
			return 1
		},

		// interrupt control of raw cores. the class is 0 or 2
		"interrupt_tag": func(L *lua.LState) int {
			tag, err := s.m.CreateInterruptTag(core(L), L.CheckInt(2))
			raise(L, err)
			push(L, tagType, tag)
			return 1
		},
		"int_mask": func(L *lua.LState) int {
			c := core(L)
			class := L.CheckInt(2)
			if L.GetTop() >= 3 {
				raise(L, s.m.SetIntMask(c, class, uint64(L.CheckNumber(3))))
			}
			mask, err := s.m.IntMask(c, class)
			raise(L, err)
			L.Push(lua.LNumber(mask))
			return 1
		},
		"int_stat": func(L *lua.LState) int {
			stat, err := s.m.IntStat(core(L), L.CheckInt(2))
			raise(L, err)
			L.Push(lua.LNumber(stat))
			return 1
		},
		"clear_int_stat": func(L *lua.LState) int {
			raise(L, s.m.SetIntStat(core(L), L.CheckInt(2), uint64(L.CheckNumber(3))))
			return 0
		},
		"pop_intr_mbox": func(L *lua.LState) int {
			v, err := s.m.ReadInterruptMailbox(core(L))
			raise(L, err)
			pushU32(L, v)
			return 1
		},

		"signal": func(L *lua.LState) int {
			core(L).WriteSignal(L.CheckInt(2)-1, checkU32(L, 3))
			return 0
		},
		"config": func(L *lua.LState) int {
			c := core(L)
			if L.GetTop() >= 2 {
				c.SetConfig(checkU32(L, 2))
			}
			pushU32(L, c.Config())
			return 1
		},
		"peek": func(L *lua.LState) int {
			var b [4]byte
			core(L).ReadLS(checkU32(L, 2), b[:])
			pushU32(L, binary.BigEndian.Uint32(b[:]))
			return 1
		},
		"poke": func(L *lua.LState) int {
			var b [4]byte
			binary.BigEndian.PutUint32(b[:], checkU32(L, 3))
			core(L).WriteLS(checkU32(L, 2), b[:])
			return 0
		},
		"read": func(L *lua.LState) int {
			p := make([]byte, L.CheckInt(3))
			core(L).ReadLS(checkU32(L, 2), p)
			L.Push(lua.LString(p))
			return 1
		},
		"write": func(L *lua.LState) int {
			core(L).WriteLS(checkU32(L, 2), []byte(L.CheckString(3)))
			return 0
		},

		// word of a register. the word is zero, the preferred slot, if not
		// specified
		"reg": func(L *lua.LState) int {
			c := core(L)
			n := L.CheckInt(2)
			if n < 0 || n >= registers.NumRegisters {
				L.ArgError(2, "register out of range")
			}
			w := L.OptInt(3, 0)
			if w < 0 || w > 3 {
				L.ArgError(3, "word out of range")
			}
			pushU32(L, c.GPR[n].U32(w))
			return 1
		},
		"pc": func(L *lua.LState) int {
			pushU32(L, core(L).Status().PC)
			return 1
		},
		"dma": func(L *lua.LState) int {
			c := core(L)
			op, ok := mfc.ParseOpcode(L.CheckString(2))
			if !ok {
				L.ArgError(2, "unknown command")
			}
			cmd := mfc.Command{
				Opcode: op,
				LSA:    checkU32(L, 3),
				EA:     uint64(L.CheckNumber(4)),
				Size:   optU32(L, 5, 0),
				Tag:    uint8(optU32(L, 6, 0)),
			}
			queued, err := c.Issue(cmd)
			raise(L, err)
			L.Push(lua.LBool(queued))
			return 1
		},
		"listing": func(L *lua.LState) int {
			c := core(L)
			pc := c.Status().PC
			entries := s.dsm.Around(c.LocalStore(), pc, L.OptInt(2, 4))
			b := &strings.Builder{}
			disassembly.Write(b, disassembly.WriteAttr{Cursor: pc, UseCursor: true}, entries)
			L.Push(lua.LString(b.String()))
			return 1
		},
		"summary": func(L *lua.LState) int {
			snap, err := core(L).Snapshot(s.ctx)
			raise(L, err)
			b := &strings.Builder{}
			raise(L, dump.Summary(b, snap, s.dsm))
			L.Push(lua.LString(b.String()))
			return 1
		},
		"dump": func(L *lua.LState) int {
			snap, err := core(L).Snapshot(s.ctx)
			raise(L, err)
			compression := dump.Compression(L.OptString(2, string(s.Compression)))
			pth, err := dump.Save(s.fs, s.DumpDirectory, snap, compression)
			raise(L, err)
			L.Push(lua.LString(pth))
			return 1
		},
	}
}

func (s *Script) tagMethods() map[string]lua.LGFunction {
	tag := func(L *lua.LState) *machine.InterruptTag {
		return check[*machine.InterruptTag](L, 1, tagType)
	}

	return map[string]lua.LGFunction{
		"class": func(L *lua.LState) int {
			L.Push(lua.LNumber(tag(L).Class()))
			return 1
		},
		"pending": func(L *lua.LState) int {
			L.Push(lua.LNumber(tag(L).Pending()))
			return 1
		},

		// wait for an unmasked interrupt. an optional timeout is in
		// milliseconds
		"wait": func(L *lua.LState) int {
			ctx := s.ctx
			if ms := L.OptInt(2, 0); ms > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, time.Duration(ms)*time.Millisecond)
				defer cancel()
			}
			bits, err := tag(L).Wait(ctx)
			raise(L, err)
			L.Push(lua.LNumber(bits))
			return 1
		},
	}
}
