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
	lua "github.com/yuin/gopher-lua"

	"github.com/jetsetilly/gophercell/hardware/machine"
	"github.com/jetsetilly/gophercell/hardware/spu"
)

func checkEvent(L *lua.LState, n int) machine.GroupEvent {
	switch L.CheckString(n) {
	case "exit":
		return machine.ExitEvent
	case "exception":
		return machine.ExceptionEvent
	}
	L.ArgError(n, "unknown group event")
	return 0
}

func (s *Script) groupMethods() map[string]lua.LGFunction {
	group := func(L *lua.LState) *machine.Group {
		return check[*machine.Group](L, 1, groupType)
	}

	thread := func(L *lua.LState, g *machine.Group, n int) *machine.Thread {
		th := g.Threads()
		i := L.CheckInt(n)
		if i < 0 || i >= len(th) {
			L.ArgError(n, "thread out of range")
		}
		return th[i]
	}

	return map[string]lua.LGFunction{
		"name": func(L *lua.LState) int {
			L.Push(lua.LString(group(L).String()))
			return 1
		},
		"size": func(L *lua.LState) int {
			L.Push(lua.LNumber(len(group(L).Threads())))
			return 1
		},

		// initialise a thread with an image and up to four arguments
		"init": func(L *lua.LState) int {
			g := group(L)
			i := L.CheckInt(2)
			img := check[*spu.Image](L, 3, imageType)
			var args []uint64
			for n := 4; n <= L.GetTop() && len(args) < 4; n++ {
				args = append(args, uint64(L.CheckNumber(n)))
			}
			raise(L, g.Initialize(i, img, args...))
			return 0
		},
		"start": func(L *lua.LState) int {
			raise(L, group(L).Start())
			return 0
		},
		"suspend": func(L *lua.LState) int {
			raise(L, group(L).Suspend())
			return 0
		},
		"resume": func(L *lua.LState) int {
			raise(L, group(L).Resume())
			return 0
		},
		"terminate": func(L *lua.LState) int {
			raise(L, group(L).Terminate(optU32(L, 2, 0)))
			return 0
		},
		"state": func(L *lua.LState) int {
			L.Push(lua.LString(group(L).State().String()))
			return 1
		},

		// wait for the group to finish. returns the cause and the exit status
		"join": func(L *lua.LState) int {
			cause, status, err := group(L).Join(s.ctx)
			raise(L, err)
			L.Push(lua.LString(cause.String()))
			pushU32(L, status)
			return 2
		},

		// post group events to the queue bound to a queue number. the kind is
		// "exit" or "exception"
		"connect_event": func(L *lua.LState) int {
			raise(L, group(L).ConnectEvent(checkEvent(L, 2), checkU32(L, 3)))
			return 0
		},
		"disconnect_event": func(L *lua.LState) int {
			raise(L, group(L).DisconnectEvent(checkEvent(L, 2)))
			return 0
		},
		"thread": func(L *lua.LState) int {
			g := group(L)
			push(L, coreType, thread(L, g, 2).Core)
			return 1
		},
		"exit_status": func(L *lua.LState) int {
			g := group(L)
			v, ok := thread(L, g, 2).ExitStatus()
			if !ok {
				L.Push(lua.LNil)
				return 1
			}
			pushU32(L, v)
			return 1
		},
	}
}
