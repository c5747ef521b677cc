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

package translator_test

import (
	"bytes"
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
	"github.com/jetsetilly/gophercell/hardware/spu/translator"
	"github.com/jetsetilly/gophercell/test"
)

func newCore(t *testing.T, backend spu.Backend, src string) *spu.Core {
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
	test.DemandSuccess(t, c.Bind(backend))
	return c
}

func run(t *testing.T, c *spu.Core) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	test.DemandSuccess(t, c.Run(ctx))
	test.DemandEquality(t, c.Status().State, spu.Halted)
}

const program = `
	ila	$10,data
	lqd	$4,0($10)
	il	$5,3
	cwd	$6,4($10)
	shufb	$7,$5,$4,$6
	stqd	$7,16($10)
	il	$3,0
	il	$8,10
loop:	ai	$3,$3,7
	shli	$9,$3,2
	xor	$3,$3,$9
	ai	$8,$8,-1
	brnz	$8,loop
	brsl	$lr,sub
	fsmbi	$11,0xf0f0
	selb	$12,$3,$4,$11
	stqd	$12,32($10)
	stop	0x7
sub:	rotqbyi	$13,$4,5
	cgt	$14,$13,$4
	bi	$lr
	.org	0x200
data:	.long	1,2,3,4
`

func TestEquivalence(t *testing.T) {
	itp := newCore(t, interpreter.NewInterpreter(0), program)
	run(t, itp)

	trn := newCore(t, translator.NewTranslator(0, 0), program)
	run(t, trn)

	test.ExpectEquality(t, trn.Status(), itp.Status())
	test.ExpectEquality(t, trn.GPR, itp.GPR)
	test.ExpectSuccess(t, bytes.Equal(trn.LocalStore().Snapshot(), itp.LocalStore().Snapshot()))

	// the shuffle inserted the preferred word of $5 at offset 4 of the data
	test.ExpectEquality(t, trn.LocalStore().Read32(0x214), 3)
}

// a store into the block that is running replaces an instruction that has not
// been executed yet
const selfModifying = `
	lqa	$2,patch
	stqa	$2,target
	nop
	nop
	nop
	nop
	nop
	nop
target:	il	$3,1
	stop	0x10
	stop	0x10
	stop	0x10
	.org	0x100
patch:	il	$3,99
	stop	0x20
	stop	0x20
	stop	0x20
`

func TestSelfModifying(t *testing.T) {
	for _, backend := range []spu.Backend{
		interpreter.NewInterpreter(0),
		translator.NewTranslator(0, 0),
	} {
		c := newCore(t, backend, selfModifying)
		run(t, c)
		test.ExpectEquality(t, c.Status().StopCode, 0x20, backend)
		test.ExpectEquality(t, c.GPR[3].U32(0), 99, backend)
	}
}

func TestHostWriteInvalidates(t *testing.T) {
	trn := translator.NewTranslator(0, 0)
	c := newCore(t, trn, `
	il	$3,1
	stop	0x10
`)
	run(t, c)
	test.ExpectEquality(t, c.GPR[3].U32(0), 1)

	cc := trn.Cache(c.LocalStore())
	test.ExpectEquality(t, cc.Stats().Compiled, 1)
	test.ExpectEquality(t, cc.Stats().Resident, 2)

	// replace the program and run again from the start
	prg, err := assembler.AssembleString(`
	il	$3,7
	stop	0x11
`)
	test.DemandSuccess(t, err)
	c.WriteLS(0, prg.Code)
	c.SetPC(0)
	run(t, c)

	test.ExpectEquality(t, c.GPR[3].U32(0), 7)
	test.ExpectEquality(t, c.Status().StopCode, 0x11)
	test.ExpectEquality(t, cc.Stats().Invalidations, 1)
	test.ExpectEquality(t, cc.Stats().Compiled, 2)
}

func TestUnrelatedWrite(t *testing.T) {
	trn := translator.NewTranslator(0, 0)
	c := newCore(t, trn, `
	il	$3,1
	stop	0x10
`)
	run(t, c)

	// a write to the same region that does not change the program does not
	// cause a recompilation
	c.WriteLS(0x200, []byte{1, 2, 3, 4})
	c.SetPC(0)
	run(t, c)

	cc := trn.Cache(c.LocalStore())
	test.ExpectEquality(t, cc.Stats().Invalidations, 0)
	test.ExpectEquality(t, cc.Stats().Compiled, 1)
}

func TestCompileBudget(t *testing.T) {
	c := newCore(t, translator.NewTranslator(0, 2), `
	nop
	nop
	nop
	stop	0x1
`)
	run(t, c)

	r := c.Status()
	test.ExpectEquality(t, r.Status&spu.Fault, spu.Fault)
	test.ExpectEquality(t, r.PC, 0)

	e, ok := c.Faults().Last()
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, e.Category, faults.CompileFailure)
}

func TestBlockLimit(t *testing.T) {
	trn := translator.NewTranslator(2, 0)
	c := newCore(t, trn, `
	il	$3,1
	ai	$3,$3,1
	ai	$3,$3,1
	ai	$3,$3,1
	stop	0x1
`)
	run(t, c)
	test.ExpectEquality(t, c.GPR[3].U32(0), 4)
	test.ExpectEquality(t, trn.Cache(c.LocalStore()).Stats().Compiled, 3)
	test.ExpectEquality(t, trn.Executed(), 5)
}

// the branch target is in the middle of the first block. the block compiled
// at the target replaces the first block and the budget is only large enough
// for one of them
const midBlockBranch = `
	il	$3,0
	il	$4,3
mid:	ai	$3,$3,5
	ai	$4,$4,-1
	brnz	$4,mid
	stop	0x1
`

func TestOverlappingBlocks(t *testing.T) {
	itp := newCore(t, interpreter.NewInterpreter(0), midBlockBranch)
	run(t, itp)

	trn := translator.NewTranslator(0, 6)
	c := newCore(t, trn, midBlockBranch)
	run(t, c)

	test.ExpectEquality(t, c.Status(), itp.Status())
	test.ExpectEquality(t, c.GPR[3].U32(0), 15)

	_, ok := c.Faults().Last()
	test.ExpectFailure(t, ok)

	st := trn.Cache(c.LocalStore()).Stats()
	test.ExpectEquality(t, st.Compiled, 2)
	test.ExpectEquality(t, st.Invalidations, 1)
	test.ExpectEquality(t, st.Resident, 4)
}
