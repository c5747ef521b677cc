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

package interpreter_test

import (
	"context"
	"testing"
	"time"

	"github.com/jetsetilly/gophercell/hardware/memory/mainmem"
	"github.com/jetsetilly/gophercell/hardware/memory/reservation"
	"github.com/jetsetilly/gophercell/hardware/spu"
	"github.com/jetsetilly/gophercell/hardware/spu/assembler"
	"github.com/jetsetilly/gophercell/hardware/spu/channels"
	"github.com/jetsetilly/gophercell/hardware/spu/faults"
	"github.com/jetsetilly/gophercell/hardware/spu/interpreter"
	"github.com/jetsetilly/gophercell/hardware/spu/mfc"
	"github.com/jetsetilly/gophercell/test"
)

func run(t *testing.T, src string) *spu.Core {
	t.Helper()

	prg, err := assembler.AssembleString(src)
	test.DemandSuccess(t, err)

	sys := &mfc.System{
		Memory:       mainmem.NewMemory(),
		Reservations: reservation.NewTable(),
	}
	c := spu.NewCore(0, sys, &channels.ManualClock{})
	c.WriteLS(0, prg.Code)
	c.SetPC(prg.Entry)
	test.DemandSuccess(t, c.Bind(interpreter.NewInterpreter(0)))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	test.DemandSuccess(t, c.Run(ctx))

	return c
}

func TestLoop(t *testing.T) {
	c := run(t, `
	il	$3,0
	il	$4,100
loop:	a	$3,$3,$4
	ai	$4,$4,-1
	brnz	$4,loop
	stop	0x42
`)
	r := c.Status()
	test.ExpectEquality(t, r.State, spu.Halted)
	test.ExpectEquality(t, r.StopCode, 0x42)
	test.ExpectEquality(t, c.GPR[3].U32(0), 5050)
	test.ExpectEquality(t, r.PC, 24)
}

func TestCall(t *testing.T) {
	c := run(t, `
	il	$3,6
	brsl	$lr,double
	stop	0x1
double:	a	$3,$3,$3
	bi	$lr
`)
	test.ExpectEquality(t, c.Status().StopCode, 1)
	test.ExpectEquality(t, c.GPR[3].U32(0), 12)
}

func TestIllegalInstruction(t *testing.T) {
	c := run(t, `
	nop
	nop
	.long	0xafe00000
`)
	r := c.Status()
	test.ExpectEquality(t, r.State, spu.Halted)
	test.ExpectEquality(t, r.Status&spu.Fault, spu.Fault)

	// the address of the faulting instruction
	test.ExpectEquality(t, r.PC, 8)

	e, ok := c.Faults().Last()
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, e.Category, faults.IllegalInstruction)
}

func TestExecuted(t *testing.T) {
	itp := interpreter.NewInterpreter(0)
	test.ExpectEquality(t, itp.String(), "interpreter")
	test.ExpectEquality(t, itp.Executed(), 0)
}
