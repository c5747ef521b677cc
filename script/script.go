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
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	lua "github.com/yuin/gopher-lua"

	"github.com/jetsetilly/gophercell/curated"
	"github.com/jetsetilly/gophercell/disassembly"
	"github.com/jetsetilly/gophercell/dump"
	"github.com/jetsetilly/gophercell/hardware/machine"
	"github.com/jetsetilly/gophercell/logger"
)

// ScriptError is returned when a script fails to compile or raises an error.
const ScriptError = "script: %s: %v"

// names of the userdata metatables
const (
	coreType  = "spu.core"
	groupType = "spu.group"
	imageType = "spu.image"
	queueType = "spu.queue"
	flagType  = "spu.flag"
	tagType   = "spu.interrupt_tag"
)

// Script runs Lua scripts against a machine.
type Script struct {
	m   *machine.Machine
	fs  afero.Fs
	out io.Writer
	dsm *disassembly.Disassembly

	// directory and compression used by the dump() method of a core
	DumpDirectory string
	Compression   dump.Compression

	// context of the running script
	ctx context.Context
}

// NewScript is the preferred method of initialisation for the Script type. The
// filesystem is used by spu.load() and by core dumps.
func NewScript(m *machine.Machine, fs afero.Fs, out io.Writer) (*Script, error) {
	dsm, err := disassembly.NewDisassembly(0)
	if err != nil {
		return nil, err
	}
	return &Script{
		m:             m,
		fs:            fs,
		out:           out,
		dsm:           dsm,
		DumpDirectory: "dumps",
		Compression:   dump.Zstd,
	}, nil
}

// Run the script file. The machine is started if it has not been started
// already.
func (s *Script) Run(ctx context.Context, filename string) error {
	src, err := afero.ReadFile(s.fs, filename)
	if err != nil {
		return curated.Errorf(ScriptError, filename, err)
	}
	return s.RunString(ctx, filename, string(src))
}

// RunString runs the script source. The name is used in error messages.
func (s *Script) RunString(ctx context.Context, name string, src string) error {
	if err := s.m.Start(ctx); err != nil && !curated.Is(err, machine.AlreadyStarted) {
		return curated.Errorf(ScriptError, name, err)
	}

	L := lua.NewState()
	defer L.Close()
	L.SetContext(ctx)
	s.ctx = ctx

	s.register(L)

	fn, err := L.Load(strings.NewReader(src), name)
	if err != nil {
		return curated.Errorf(ScriptError, name, err)
	}

	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		return curated.Errorf(ScriptError, name, err)
	}

	logger.Logf(logger.Allow, "script", "%s: finished", name)
	return nil
}

func (s *Script) register(L *lua.LState) {
	L.SetGlobal("print", L.NewFunction(s.print))

	tbl := L.NewTable()
	L.SetFuncs(tbl, map[string]lua.LGFunction{
		"assemble": s.assemble,
		"load":     s.load,
		"raw":      s.raw,
		"group":    s.group,
		"core":     s.core,
		"queue":    s.queue,
		"bind":     s.bind,
		"connect":  s.connect,
		"flag":     s.flag,
		"map":      s.mapMemory,
		"read":     s.read,
		"write":    s.write,
		"read32":   s.read32,
		"write32":  s.write32,
		"sleep":    s.sleep,
		"log":      s.log,
	})
	L.SetGlobal("spu", tbl)

	s.registerType(L, coreType, s.coreMethods())
	s.registerType(L, groupType, s.groupMethods())
	s.registerType(L, imageType, s.imageMethods())
	s.registerType(L, queueType, s.queueMethods())
	s.registerType(L, flagType, s.flagMethods())
	s.registerType(L, tagType, s.tagMethods())
}

func (s *Script) registerType(L *lua.LState, name string, methods map[string]lua.LGFunction) {
	mt := L.NewTypeMetatable(name)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), methods))
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		ud := L.CheckUserData(1)
		L.Push(lua.LString(fmt.Sprint(ud.Value)))
		return 1
	}))
}

// push a userdata value with the named metatable
func push(L *lua.LState, typ string, v any) {
	ud := L.NewUserData()
	ud.Value = v
	L.SetMetatable(ud, L.GetTypeMetatable(typ))
	L.Push(ud)
}

// check that the argument is a userdata value of type T
func check[T any](L *lua.LState, n int, typ string) T {
	ud := L.CheckUserData(n)
	v, ok := ud.Value.(T)
	if !ok {
		L.ArgError(n, fmt.Sprintf("%s expected", typ))
	}
	return v
}

func checkU32(L *lua.LState, n int) uint32 {
	return uint32(int64(L.CheckNumber(n)))
}

func optU32(L *lua.LState, n int, d uint32) uint32 {
	if L.GetTop() < n || L.Get(n) == lua.LNil {
		return d
	}
	return checkU32(L, n)
}

func pushU32(L *lua.LState, v uint32) {
	L.Push(lua.LNumber(v))
}

// raise a Lua error if err is not nil
func raise(L *lua.LState, err error) {
	if err != nil {
		L.RaiseError("%v", err)
	}
}

func (s *Script) print(L *lua.LState) int {
	top := L.GetTop()
	parts := make([]string, top)
	for i := 1; i <= top; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	io.WriteString(s.out, strings.Join(parts, "\t"))
	io.WriteString(s.out, "\n")
	return 0
}

func (s *Script) log(L *lua.LState) int {
	logger.Log(logger.Allow, "script", L.CheckString(1))
	return 0
}
