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

package isa

import (
	"fmt"
)

// Shape is the layout of the operands of an instruction in assembly language
// notation. It is used by Disassemble() and by the assembler package.
type Shape int

// List of valid Shape values.
const (
	NoOperands  Shape = iota
	ShapeT            // $rt
	ShapeA            // $ra
	ShapeTA           // $rt,$ra
	ShapeTAB          // $rt,$ra,$rb
	ShapeTABC         // $rt,$ra,$rb,$rc
	ShapeTAImm        // $rt,$ra,imm
	ShapeTAScale      // $rt,$ra,scale
	ShapeTDisp        // $rt,disp($ra)
	ShapeTImm         // $rt,imm
	ShapeTTarget      // $rt,address
	ShapeTarget       // address
	ShapeImm          // imm
	ShapeTChan        // $rt,$chN
	ShapeChanT        // $chN,$rt
	ShapeBranchA      // $ra with optional interrupt suffix
	ShapeBranchTA     // $rt,$ra with optional interrupt suffix
	ShapeBranch       // no operands with optional interrupt suffix
)

// ShapeOf returns the operand layout of an instruction.
func ShapeOf(defn *Definition) Shape {
	switch defn.Format {
	case RR:
		switch defn.Mnemonic {
		case "lnop", "nop", "sync", "dsync", "stopd":
			return NoOperands
		case "mfspr", "fscrrd":
			return ShapeT
		case "mtspr", "fscrwr", "hbr":
			return ShapeA
		case "clz", "cntb", "fsm", "fsmh", "fsmb", "gb", "gbh", "gbb",
			"xsbh", "xshw", "xswd", "frest", "frsqest", "fesd", "frds", "orx":
			return ShapeTA
		}
		return ShapeTAB
	case RRR:
		return ShapeTABC
	case RI7:
		switch defn.Mnemonic {
		case "cbd", "chd", "cwd", "cdd":
			return ShapeTDisp
		}
		return ShapeTAImm
	case RI8:
		return ShapeTAScale
	case RI10:
		if defn.Effect == Load || defn.Effect == Store {
			return ShapeTDisp
		}
		return ShapeTAImm
	case RI16:
		switch defn.Mnemonic {
		case "br", "bra":
			return ShapeTarget
		case "il", "ilh", "ilhu", "iohl", "fsmbi":
			return ShapeTImm
		}
		return ShapeTTarget
	case RI18:
		if defn.Mnemonic == "ila" {
			return ShapeTImm
		}
		return ShapeImm
	case Stop:
		return ShapeImm
	case Channel:
		if defn.Mnemonic == "wrch" {
			return ShapeChanT
		}
		return ShapeTChan
	case Branch:
		switch defn.Mnemonic {
		case "iret":
			return ShapeBranch
		case "bi":
			return ShapeBranchA
		}
		return ShapeBranchTA
	}
	return NoOperands
}

// Absolute returns true if the address operand of the instruction is an
// absolute address rather than relative to the PC.
func Absolute(defn *Definition) bool {
	switch defn.Mnemonic {
	case "bra", "brasl", "lqa", "stqa":
		return true
	}
	return false
}

// Target returns the address referred to by the 16-bit immediate of a branch
// or a load/store instruction.
func Target(defn *Definition, f Fields, pc uint32) uint32 {
	if Absolute(defn) {
		return uint32(f.S16()<<2) & 0x3ffff
	}
	return (pc + uint32(f.S16()<<2)) & 0x3ffff
}

// ScaleBias is the bias of the scale factor of a conversion instruction.
func ScaleBias(defn *Definition) int {
	switch defn.Mnemonic {
	case "csflt", "cuflt":
		return 155
	}
	return 173
}

// Disassemble returns the instruction word at the PC in assembly language
// notation. Invalid instruction words are shown as data.
func Disassemble(word uint32, pc uint32) string {
	defn := Lookup(word)
	if defn == nil {
		return fmt.Sprintf(".long %#08x", word)
	}

	f := Fields(word)
	mnemonic := defn.Mnemonic
	if defn.Format == Branch {
		if f.E() {
			mnemonic += "e"
		} else if f.D() {
			mnemonic += "d"
		}
	}

	operands := Operands(defn, f, pc)
	if operands == "" {
		return mnemonic
	}
	return fmt.Sprintf("%-9s %s", mnemonic, operands)
}

// Operands returns the operand part of an instruction in assembly language
// notation. Branch targets and relative addresses are resolved using the PC.
func Operands(defn *Definition, f Fields, pc uint32) string {
	switch ShapeOf(defn) {
	case ShapeT:
		return fmt.Sprintf("$%d", f.RT())
	case ShapeA, ShapeBranchA:
		return fmt.Sprintf("$%d", f.RA())
	case ShapeTA, ShapeBranchTA:
		return fmt.Sprintf("$%d,$%d", f.RT(), f.RA())
	case ShapeTAB:
		return fmt.Sprintf("$%d,$%d,$%d", f.RT(), f.RA(), f.RB())
	case ShapeTABC:
		return fmt.Sprintf("$%d,$%d,$%d,$%d", f.RT4(), f.RA(), f.RB(), f.RC())
	case ShapeTAImm:
		if defn.Format == RI7 {
			return fmt.Sprintf("$%d,$%d,%d", f.RT(), f.RA(), f.I7())
		}
		return fmt.Sprintf("$%d,$%d,%d", f.RT(), f.RA(), f.I10())
	case ShapeTAScale:
		return fmt.Sprintf("$%d,$%d,%d", f.RT(), f.RA(), ScaleBias(defn)-int(f.I8()))
	case ShapeTDisp:
		if defn.Format == RI7 {
			return fmt.Sprintf("$%d,%d($%d)", f.RT(), f.I7(), f.RA())
		}
		return fmt.Sprintf("$%d,%d($%d)", f.RT(), f.I10()<<4, f.RA())
	case ShapeTImm:
		switch defn.Mnemonic {
		case "il":
			return fmt.Sprintf("$%d,%d", f.RT(), f.S16())
		case "ila":
			return fmt.Sprintf("$%d,%#x", f.RT(), f.I18())
		}
		return fmt.Sprintf("$%d,%#x", f.RT(), f.I16())
	case ShapeTTarget:
		return fmt.Sprintf("$%d,%#05x", f.RT(), Target(defn, f, pc))
	case ShapeTarget:
		return fmt.Sprintf("%#05x", Target(defn, f, pc))
	case ShapeImm:
		if defn.Format == Stop {
			return fmt.Sprintf("%#x", f.StopCode())
		}
		return fmt.Sprintf("%#x", f.I18())
	case ShapeTChan:
		return fmt.Sprintf("$%d,$ch%d", f.RT(), f.RA())
	case ShapeChanT:
		return fmt.Sprintf("$ch%d,$%d", f.RA(), f.RT())
	}
	return ""
}
