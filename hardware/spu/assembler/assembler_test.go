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

package assembler_test

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/jetsetilly/gophercell/curated"
	"github.com/jetsetilly/gophercell/hardware/spu/assembler"
	"github.com/jetsetilly/gophercell/hardware/spu/isa"
	"github.com/jetsetilly/gophercell/test"
)

func word(prg *assembler.Program, addr uint32) uint32 {
	return binary.BigEndian.Uint32(prg.Code[addr:])
}

func TestAssemble(t *testing.T) {
	src := `
	.entry	start
	.long	0xdeadbeef
start:	il	$3,10		# loop counter
loop:	ai	$3,$3,-1
	brnz	$3,loop
	lqd	$4,32($sp)
	wrch	$ch28,$3
	rdch	$5,$ch29
	bie	$lr
	stop	0x2000
`
	prg, err := assembler.AssembleString(src)
	test.DemandSuccess(t, err)

	test.ExpectEquality(t, prg.Entry, 4)
	test.ExpectEquality(t, prg.Labels["loop"], 8)
	test.ExpectEquality(t, len(prg.Code), 36)
	test.ExpectEquality(t, word(prg, 0), 0xdeadbeef)

	// disassembly of the assembled code should match the source
	expected := []string{
		"il $3,10",
		"ai $3,$3,-1",
		"brnz $3,0x008",
		"lqd $4,32($1)",
		"wrch $ch28,$3",
		"rdch $5,$ch29",
		"bie $0",
		"stop 0x2000",
	}
	for i, e := range expected {
		addr := uint32(4 + i*4)
		s := strings.Join(strings.Fields(isa.Disassemble(word(prg, addr), addr)), " ")
		test.ExpectEquality(t, s, e)
	}
}

func TestRoundTrip(t *testing.T) {
	// every instruction disassembled with zero operands can be assembled back
	// into the same word
	for _, defn := range isa.Definitions() {
		w := defn.Encode(0)
		src := isa.Disassemble(w, 0)
		prg, err := assembler.AssembleString(src)
		if !test.ExpectSuccess(t, err, defn.Mnemonic, src) {
			continue
		}
		test.ExpectEquality(t, word(prg, 0), w, defn.Mnemonic, src)
	}
}

func TestErrors(t *testing.T) {
	_, err := assembler.AssembleString("frobnicate $1")
	test.ExpectSuccess(t, curated.Has(err, assembler.UnknownOp))

	_, err = assembler.AssembleString("ai $3,$3")
	test.ExpectSuccess(t, curated.Has(err, assembler.OperandCount))

	_, err = assembler.AssembleString("ai $3,$3,2000")
	test.ExpectSuccess(t, curated.Has(err, assembler.OutOfRange))

	_, err = assembler.AssembleString("lqd $3,8($1)")
	test.ExpectSuccess(t, curated.Has(err, assembler.Misaligned))

	_, err = assembler.AssembleString("a: nop\na: nop")
	test.ExpectSuccess(t, curated.Has(err, assembler.DuplicateLabel))

	_, err = assembler.AssembleString("br nowhere")
	test.ExpectSuccess(t, curated.Has(err, assembler.BadValue))
}
