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
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/jetsetilly/gophercell/hardware/events"
	"github.com/jetsetilly/gophercell/hardware/spu"
	"github.com/jetsetilly/gophercell/hardware/spu/assembler"
	"github.com/jetsetilly/gophercell/loader"
)

func (s *Script) assemble(L *lua.LState) int {
	prg, err := assembler.AssembleString(L.CheckString(1))
	raise(L, err)
	push(L, imageType, prg.Image())
	return 1
}

func (s *Script) load(L *lua.LState) int {
	ld := loader.NewLoader(L.CheckString(1))
	ld.Hash = L.OptString(2, "")
	raise(L, ld.Load(s.fs))
	push(L, imageType, ld.Image)
	return 1
}

func (s *Script) raw(L *lua.LState) int {
	c, err := s.m.NewRawCore()
	raise(L, err)
	push(L, coreType, c)
	return 1
}

func (s *Script) group(L *lua.LState) int {
	g, err := s.m.NewGroup(L.CheckString(1), L.CheckInt(2))
	raise(L, err)
	push(L, groupType, g)
	return 1
}

func (s *Script) core(L *lua.LState) int {
	c, ok := s.m.Core(L.CheckInt(1))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	push(L, coreType, c)
	return 1
}

func (s *Script) queue(L *lua.LState) int {
	push(L, queueType, events.NewQueue(L.CheckString(1), L.OptInt(2, events.DefaultQueueSize)))
	return 1
}

func (s *Script) bind(L *lua.LState) int {
	q := check[*events.Queue](L, 2, queueType)
	raise(L, s.m.Bridge.Bind(checkU32(L, 1), q))
	return 0
}

func (s *Script) connect(L *lua.LState) int {
	c := check[*spu.Core](L, 1, coreType)
	q := check[*events.Queue](L, 3, queueType)
	raise(L, s.m.Bridge.Connect(c.ID(), L.CheckInt(2), q))
	return 0
}

func (s *Script) flag(L *lua.LState) int {
	f := events.NewFlag()
	s.m.Bridge.AddFlag(checkU32(L, 1), f)
	push(L, flagType, f)
	return 1
}

func (s *Script) mapMemory(L *lua.LState) int {
	raise(L, s.m.Memory.Map(checkU32(L, 1), checkU32(L, 2)))
	return 0
}

func (s *Script) read(L *lua.LState) int {
	p := make([]byte, L.CheckInt(2))
	raise(L, s.m.Memory.Read(checkU32(L, 1), p))
	L.Push(lua.LString(p))
	return 1
}

func (s *Script) write(L *lua.LState) int {
	raise(L, s.m.Memory.Write(checkU32(L, 1), []byte(L.CheckString(2))))
	return 0
}

func (s *Script) read32(L *lua.LState) int {
	v, err := s.m.Memory.Read32(checkU32(L, 1))
	raise(L, err)
	pushU32(L, v)
	return 1
}

func (s *Script) write32(L *lua.LState) int {
	raise(L, s.m.Memory.Write32(checkU32(L, 1), checkU32(L, 2)))
	return 0
}

func (s *Script) sleep(L *lua.LState) int {
	t := time.NewTimer(time.Duration(L.CheckInt(1)) * time.Millisecond)
	defer t.Stop()
	select {
	case <-t.C:
	case <-s.ctx.Done():
		raise(L, s.ctx.Err())
	}
	return 0
}

func (s *Script) imageMethods() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"entry": func(L *lua.LState) int {
			pushU32(L, check[*spu.Image](L, 1, imageType).Entry)
			return 1
		},
		"size": func(L *lua.LState) int {
			L.Push(lua.LNumber(check[*spu.Image](L, 1, imageType).Size()))
			return 1
		},
		"hash": func(L *lua.LState) int {
			L.Push(lua.LString(loader.Hash(check[*spu.Image](L, 1, imageType))))
			return 1
		},
	}
}

func eventTable(L *lua.LState, ev events.Event) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("source", lua.LNumber(ev.Source))
	t.RawSetString("data1", lua.LNumber(ev.Data1))
	t.RawSetString("data2", lua.LNumber(ev.Data2))
	t.RawSetString("data3", lua.LNumber(ev.Data3))
	return t
}

func (s *Script) queueMethods() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"len": func(L *lua.LState) int {
			L.Push(lua.LNumber(check[*events.Queue](L, 1, queueType).Len()))
			return 1
		},
		"send": func(L *lua.LState) int {
			q := check[*events.Queue](L, 1, queueType)
			ev := events.Event{
				Source: events.UserKey,
				Data1:  uint64(L.OptNumber(2, 0)),
				Data2:  uint64(L.OptNumber(3, 0)),
				Data3:  uint64(L.OptNumber(4, 0)),
			}
			pushU32(L, q.Send(ev))
			return 1
		},
		"receive": func(L *lua.LState) int {
			ev, err := check[*events.Queue](L, 1, queueType).Receive(s.ctx)
			raise(L, err)
			L.Push(eventTable(L, ev))
			return 1
		},
		"try_receive": func(L *lua.LState) int {
			ev, ok := check[*events.Queue](L, 1, queueType).TryReceive()
			if !ok {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(eventTable(L, ev))
			return 1
		},
	}
}

func (s *Script) flagMethods() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"set": func(L *lua.LState) int {
			pushU32(L, check[*events.Flag](L, 1, flagType).Set(checkU32(L, 2)))
			return 1
		},
		"bits": func(L *lua.LState) int {
			L.Push(lua.LNumber(check[*events.Flag](L, 1, flagType).Bits()))
			return 1
		},
		"clear": func(L *lua.LState) int {
			check[*events.Flag](L, 1, flagType).Clear(uint64(L.CheckNumber(2)))
			return 0
		},
		"wait": func(L *lua.LState) int {
			f := check[*events.Flag](L, 1, flagType)
			bits, err := f.Wait(s.ctx, uint64(L.CheckNumber(2)), L.OptBool(3, false))
			raise(L, err)
			L.Push(lua.LNumber(bits))
			return 1
		},
	}
}
