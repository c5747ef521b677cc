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
	"math"

	"github.com/jetsetilly/gophercell/hardware/spu"
	"github.com/jetsetilly/gophercell/hardware/spu/registers"
)

// floating point uses the host's IEEE arithmetic. the extended range and the
// denormal handling of the single precision hardware are not reproduced

func floats(c *spu.Core, f Fields, op func(a, b float32) float32) {
	a, b := &c.GPR[f.RA()], &c.GPR[f.RB()]
	var r registers.Reg
	for i := range 4 {
		r.SetF32(i, op(a.F32(i), b.F32(i)))
	}
	c.GPR[f.RT()] = r
}

func floatsCompare(c *spu.Core, f Fields, op func(a, b float32) bool) {
	a, b := &c.GPR[f.RA()], &c.GPR[f.RB()]
	var r registers.Reg
	for i := range 4 {
		r.SetU32(i, mask32(op(a.F32(i), b.F32(i))))
	}
	c.GPR[f.RT()] = r
}

func floatsUnary(c *spu.Core, f Fields, op func(a float32) float32) {
	a := &c.GPR[f.RA()]
	var r registers.Reg
	for i := range 4 {
		r.SetF32(i, op(a.F32(i)))
	}
	c.GPR[f.RT()] = r
}

func floatsMultiplyAdd(c *spu.Core, f Fields, op func(a, b, t float32) float32) {
	a, b, cc := &c.GPR[f.RA()], &c.GPR[f.RB()], &c.GPR[f.RC()]
	var r registers.Reg
	for i := range 4 {
		r.SetF32(i, op(a.F32(i), b.F32(i), cc.F32(i)))
	}
	c.GPR[f.RT4()] = r
}

func opFA(c *spu.Core, f Fields) {
	floats(c, f, func(a, b float32) float32 { return a + b })
}

func opFS(c *spu.Core, f Fields) {
	floats(c, f, func(a, b float32) float32 { return a - b })
}

func opFM(c *spu.Core, f Fields) {
	floats(c, f, func(a, b float32) float32 { return a * b })
}

func opFMA(c *spu.Core, f Fields) {
	floatsMultiplyAdd(c, f, func(a, b, t float32) float32 { return float32(a*b) + t })
}

func opFMS(c *spu.Core, f Fields) {
	floatsMultiplyAdd(c, f, func(a, b, t float32) float32 { return float32(a*b) - t })
}

func opFNMS(c *spu.Core, f Fields) {
	floatsMultiplyAdd(c, f, func(a, b, t float32) float32 { return t - float32(a*b) })
}

func opFCEQ(c *spu.Core, f Fields) {
	floatsCompare(c, f, func(a, b float32) bool { return a == b })
}

func opFCGT(c *spu.Core, f Fields) {
	floatsCompare(c, f, func(a, b float32) bool { return a > b })
}

func opFCMEQ(c *spu.Core, f Fields) {
	floatsCompare(c, f, func(a, b float32) bool { return abs32(a) == abs32(b) })
}

func opFCMGT(c *spu.Core, f Fields) {
	floatsCompare(c, f, func(a, b float32) bool { return abs32(a) > abs32(b) })
}

func abs32(v float32) float32 {
	return math.Float32frombits(math.Float32bits(v) &^ 0x80000000)
}

func opFREST(c *spu.Core, f Fields) {
	floatsUnary(c, f, func(a float32) float32 { return 1 / a })
}

func opFRSQEST(c *spu.Core, f Fields) {
	floatsUnary(c, f, func(a float32) float32 { return float32(1 / math.Sqrt(float64(abs32(a)))) })
}

// the estimates above are exact so interpolation returns the estimate in RB
func opFI(c *spu.Core, f Fields) {
	c.GPR[f.RT()] = c.GPR[f.RB()]
}

// conversions. the RI8 immediate is a scale factor

func opCSFLT(c *spu.Core, f Fields) {
	scale := int(f.I8()) - 155
	a := &c.GPR[f.RA()]
	var r registers.Reg
	for i := range 4 {
		r.SetF32(i, float32(math.Ldexp(float64(a.S32(i)), scale)))
	}
	c.GPR[f.RT()] = r
}

func opCUFLT(c *spu.Core, f Fields) {
	scale := int(f.I8()) - 155
	a := &c.GPR[f.RA()]
	var r registers.Reg
	for i := range 4 {
		r.SetF32(i, float32(math.Ldexp(float64(a.U32(i)), scale)))
	}
	c.GPR[f.RT()] = r
}

func opCFLTS(c *spu.Core, f Fields) {
	scale := 173 - int(f.I8())
	a := &c.GPR[f.RA()]
	var r registers.Reg
	for i := range 4 {
		v := math.Ldexp(float64(a.F32(i)), scale)
		switch {
		case math.IsNaN(v):
			r.SetU32(i, 0)
		case v >= math.MaxInt32:
			r.SetU32(i, math.MaxInt32)
		case v <= math.MinInt32:
			r.SetU32(i, 0x80000000)
		default:
			r.SetU32(i, uint32(int32(v)))
		}
	}
	c.GPR[f.RT()] = r
}

func opCFLTU(c *spu.Core, f Fields) {
	scale := 173 - int(f.I8())
	a := &c.GPR[f.RA()]
	var r registers.Reg
	for i := range 4 {
		v := math.Ldexp(float64(a.F32(i)), scale)
		switch {
		case math.IsNaN(v) || v <= 0:
			r.SetU32(i, 0)
		case v >= math.MaxUint32:
			r.SetU32(i, math.MaxUint32)
		default:
			r.SetU32(i, uint32(v))
		}
	}
	c.GPR[f.RT()] = r
}

// double precision. each register holds two values

func doubles(c *spu.Core, f Fields, op func(a, b, t float64) float64) {
	a, b, t := &c.GPR[f.RA()], &c.GPR[f.RB()], &c.GPR[f.RT()]
	var r registers.Reg
	for i := range 2 {
		v := op(math.Float64frombits(a.U64(i)), math.Float64frombits(b.U64(i)), math.Float64frombits(t.U64(i)))
		r.SetU64(i, math.Float64bits(v))
	}
	c.GPR[f.RT()] = r
}

func opDFA(c *spu.Core, f Fields) {
	doubles(c, f, func(a, b, _ float64) float64 { return a + b })
}

func opDFS(c *spu.Core, f Fields) {
	doubles(c, f, func(a, b, _ float64) float64 { return a - b })
}

func opDFM(c *spu.Core, f Fields) {
	doubles(c, f, func(a, b, _ float64) float64 { return a * b })
}

func opDFMA(c *spu.Core, f Fields) {
	doubles(c, f, func(a, b, t float64) float64 { return float64(a*b) + t })
}

func opDFMS(c *spu.Core, f Fields) {
	doubles(c, f, func(a, b, t float64) float64 { return float64(a*b) - t })
}

func opDFNMS(c *spu.Core, f Fields) {
	doubles(c, f, func(a, b, t float64) float64 { return t - float64(a*b) })
}

func opDFNMA(c *spu.Core, f Fields) {
	doubles(c, f, func(a, b, t float64) float64 { return -(float64(a*b) + t) })
}

// single to double conversion uses the high word of each doubleword
func opFESD(c *spu.Core, f Fields) {
	a := &c.GPR[f.RA()]
	var r registers.Reg
	for i := range 2 {
		r.SetU64(i, math.Float64bits(float64(a.F32(i*2))))
	}
	c.GPR[f.RT()] = r
}

func opFRDS(c *spu.Core, f Fields) {
	a := &c.GPR[f.RA()]
	var r registers.Reg
	for i := range 2 {
		r.SetF32(i*2, float32(math.Float64frombits(a.U64(i))))
	}
	c.GPR[f.RT()] = r
}
