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

package script_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/jetsetilly/gophercell/curated"
	"github.com/jetsetilly/gophercell/hardware/machine"
	"github.com/jetsetilly/gophercell/hardware/preferences"
	"github.com/jetsetilly/gophercell/hardware/spu/channels"
	"github.com/jetsetilly/gophercell/script"
	"github.com/jetsetilly/gophercell/test"
)

func newScript(t *testing.T) (*script.Script, afero.Fs, *strings.Builder, context.Context) {
	t.Helper()

	cfg := machine.DefaultConfig()
	cfg.Backend = preferences.BackendInterpreter
	cfg.Clock = &channels.ManualClock{}
	cfg.Sleep = 50 * time.Microsecond

	m, err := machine.NewMachine(cfg)
	test.DemandSuccess(t, err)

	fs := afero.NewMemMapFs()
	out := &strings.Builder{}
	s, err := script.NewScript(m, fs, out)
	test.DemandSuccess(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(func() {
		cancel()
		_ = m.Wait()
	})

	return s, fs, out, ctx
}

func TestRawCore(t *testing.T) {
	s, _, out, ctx := newScript(t)

	err := s.RunString(ctx, "raw", `
local c = spu.raw()
c:load(spu.assemble([[
	rdch	$3,$ch29
	ai	$3,$3,1
	wrch	$ch28,$3
	stop	0x3
]]))
c:start()
c:write_mbox(41)
print(c:read_mbox())
local st = c:wait(5000)
print(st.state, st.stop)
print(c:reg(3))
print(c:try_read_mbox())
c:poke(0x1000, 0xdeadbeef)
print(c:peek(0x1000))
`)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, out.String(), "42\nhalted\t3\n42\nnil\n3735928559\n")
}

func TestGroup(t *testing.T) {
	s, _, out, ctx := newScript(t)

	err := s.RunString(ctx, "group", `
local g = spu.group("workers", 2)
local img = spu.assemble([[
	rotqbyi	$3,$3,4
	ai	$4,$3,1
	wrch	$ch28,$4
	stop	0x102
]])
g:init(0, img, 10)
g:init(1, img, 20)
g:start()
local cause, status = g:join()
print(g:name(), g:state(), cause)
print(g:exit_status(0), g:exit_status(1))
`)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, out.String(), "workers\tfinished\tall threads exit\n11\t21\n")
}

func TestMemory(t *testing.T) {
	s, _, out, ctx := newScript(t)

	err := s.RunString(ctx, "memory", `
spu.map(0x10000, 0x1000)
spu.write32(0x10000, 0xcafef00d)
spu.write(0x10004, "hello")
print(spu.read32(0x10000), spu.read(0x10004, 5))
`)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, out.String(), "3405705229\thello\n")
}

func TestQueue(t *testing.T) {
	s, _, out, ctx := newScript(t)

	err := s.RunString(ctx, "queue", `
local q = spu.queue("q", 2)
print(q:send(1, 2, 3), q:send(4), q:send(5))
print(q:len())
local ev = q:try_receive()
print(ev.data1, ev.data2, ev.data3)
ev = q:receive()
print(ev.data1)
print(q:try_receive())
`)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, out.String(), "0\t0\t2147549194\n2\n1\t2\t3\n4\nnil\n")
}

func TestDump(t *testing.T) {
	s, fs, out, ctx := newScript(t)

	err := s.RunString(ctx, "dump", `
local c = spu.raw()
c:load(spu.assemble([[
	il	$3,5
	stop	0x9
]]))
c:start()
c:wait()
local p = c:dump("none")
print(p ~= nil)
print(c:summary() ~= "")
`)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, out.String(), "true\ntrue\n")

	files, err := afero.ReadDir(fs, "dumps")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(files), 1)
}

func TestFile(t *testing.T) {
	s, fs, out, ctx := newScript(t)

	test.DemandSuccess(t, afero.WriteFile(fs, "hello.lua", []byte(`print("hello", 1 + 2)`), 0644))
	test.DemandSuccess(t, s.Run(ctx, "hello.lua"))
	test.ExpectEquality(t, out.String(), "hello\t3\n")

	err := s.Run(ctx, "missing.lua")
	test.ExpectSuccess(t, curated.Is(err, script.ScriptError))
}

func TestErrors(t *testing.T) {
	s, _, _, ctx := newScript(t)

	err := s.RunString(ctx, "syntax", `this is not lua`)
	test.ExpectSuccess(t, curated.Is(err, script.ScriptError))

	err = s.RunString(ctx, "raise", `error("boom")`)
	test.ExpectSuccess(t, curated.Is(err, script.ScriptError))
	test.ExpectSuccess(t, strings.Contains(err.Error(), "boom"))

	err = s.RunString(ctx, "assemble", `spu.assemble("frobnicate $1")`)
	test.ExpectSuccess(t, curated.Is(err, script.ScriptError))
	test.ExpectSuccess(t, strings.Contains(err.Error(), "frobnicate"))

	err = s.RunString(ctx, "args", `spu.core(0):reg(200)`)
	test.ExpectFailure(t, err)
}

func TestRawInterrupts(t *testing.T) {
	s, _, out, ctx := newScript(t)

	err := s.RunString(ctx, "interrupts", `
local c = spu.raw()
local tag = c:interrupt_tag(2)
c:int_mask(2, 3)
c:load(spu.assemble([[
	il	$3,0x21
	wrch	$ch30,$3
	stop	0x4
]]))
c:start()
c:wait(5000)
print(tag:wait(5000), c:int_stat(2), c:pop_intr_mbox())
c:clear_int_stat(2, 3)
print(c:int_stat(2), tag:pending(), tag:class())
`)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, out.String(), "3\t3\t33\n0\t0\t2\n")
}

func TestGroupEvents(t *testing.T) {
	s, _, out, ctx := newScript(t)

	err := s.RunString(ctx, "group events", `
local q = spu.queue("events", 4)
spu.bind(0x40, q)
local g = spu.group("workers", 1)
g:connect_event("exit", 0x40)
g:init(0, spu.assemble([[
	il	$3,9
	wrch	$ch28,$3
	stop	0x101
]]))
g:start()
print(g:join())
local ev = q:try_receive()
print(ev.data1, ev.data2, q:len())
`)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, out.String(), "group exit\t9\n1\t9\t0\n")
}
