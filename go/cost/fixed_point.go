// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package cost

import (
	"math/big"

	"github.com/holiman/uint256"
)

// FixedPoint is a signed rational number with a fixed denominator of 2^64.
// The represented value is raw / 2^64, where raw is a signed 128-bit integer.
//
// The raw value is kept in a 256-bit two's complement word. Since all operands
// are bound to 128 bits, every intermediate result of an operation fits into
// 256 bits and no operation can wrap. Results outside of the representable
// range are saturated to MinFixedPoint or MaxFixedPoint. None of the
// operations panic, for any input.
//
// FixedPoint values are comparable using ==.
type FixedPoint struct {
	raw uint256.Int
}

var (
	one128  = new(uint256.Int).Lsh(uint256.NewInt(1), 127)
	maxRaw  = new(uint256.Int).Sub(one128, uint256.NewInt(1))
	minRaw  = new(uint256.Int).Neg(one128)
	maxU128 = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))
)

var (
	FixedPointZero = FixedPoint{}
	FixedPointOne  = FixedPoint{raw: *new(uint256.Int).Lsh(uint256.NewInt(1), 64)}
	MaxFixedPoint  = FixedPoint{raw: *maxRaw}
	MinFixedPoint  = FixedPoint{raw: *minRaw}
)

// saturate clamps a signed 256-bit value into the FixedPoint range.
func saturate(x *uint256.Int) FixedPoint {
	if x.Sgt(maxRaw) {
		return MaxFixedPoint
	}
	if x.Slt(minRaw) {
		return MinFixedPoint
	}
	return FixedPoint{raw: *x}
}

// FixedPointFromRaw creates a FixedPoint with the raw value hi * 2^64 + lo,
// thus hi is the integer part and lo the fractional part of the value.
func FixedPointFromRaw(hi int64, lo uint64) FixedPoint {
	z := new(uint256.Int).SetUint64(uint64(hi))
	if hi < 0 {
		// sign-extend the upper word into all 256 bits
		z[1], z[2], z[3] = ^uint64(0), ^uint64(0), ^uint64(0)
	}
	z.Lsh(z, 64)
	z.Or(z, uint256.NewInt(lo))
	return saturate(z)
}

// FixedPointFromUint64 converts an integer into a FixedPoint value. Values
// beyond the representable range saturate.
func FixedPointFromUint64(a uint64) FixedPoint {
	z := new(uint256.Int).SetUint64(a)
	return saturate(z.Lsh(z, 64))
}

// FixedPointFromUint64Div computes a / b, truncated to the next lower multiple
// of 2^-64. A division by zero results in MaxFixedPoint.
func FixedPointFromUint64Div(a, b uint64) FixedPoint {
	if b == 0 {
		return MaxFixedPoint
	}
	z := new(uint256.Int).SetUint64(a)
	z.Lsh(z, 64)
	z.Div(z, uint256.NewInt(b))
	return saturate(z)
}

func (a FixedPoint) Add(b FixedPoint) FixedPoint {
	return saturate(new(uint256.Int).Add(&a.raw, &b.raw))
}

func (a FixedPoint) Sub(b FixedPoint) FixedPoint {
	return saturate(new(uint256.Int).Sub(&a.raw, &b.raw))
}

func (a FixedPoint) Neg() FixedPoint {
	return saturate(new(uint256.Int).Neg(&a.raw))
}

// Mul computes a * b, rounded down to the next multiple of 2^-64.
func (a FixedPoint) Mul(b FixedPoint) FixedPoint {
	z := new(uint256.Int).Mul(&a.raw, &b.raw)
	return saturate(z.SRsh(z, 64))
}

// Div computes a / b, rounded up to the next multiple of 2^-64. A division by
// zero results in MaxFixedPoint.
func (a FixedPoint) Div(b FixedPoint) FixedPoint {
	if b.raw.IsZero() {
		return MaxFixedPoint
	}
	n := new(uint256.Int).Lsh(&a.raw, 64)
	negative := (n.Sign() < 0) != (b.raw.Sign() < 0)
	absN := new(uint256.Int).Abs(n)
	absB := new(uint256.Int).Abs(&b.raw)
	q, r := new(uint256.Int).DivMod(absN, absB, new(uint256.Int))
	if negative {
		// truncating a negative quotient towards zero rounds it up
		return saturate(q.Neg(q))
	}
	if !r.IsZero() {
		q.AddUint64(q, 1)
	}
	return saturate(q)
}

// Powi computes a^exp by repeated squaring. For negative exponents the
// reciprocal of a is raised to -exp.
func (a FixedPoint) Powi(exp int32) FixedPoint {
	e := int64(exp)
	if e < 0 {
		a = FixedPointOne.Div(a)
		e = -e
	}
	res := FixedPointOne
	for e > 0 {
		if e&1 == 1 {
			res = res.Mul(a)
		}
		e >>= 1
		if e > 0 {
			a = a.Mul(a)
		}
	}
	return res
}

// IntoAtomicUnits converts a FixedPoint ratio of a token unit into the
// number of atomic units, where base is the number of atomic units per token.
// The result is rounded up and clamped to [0, 2^128-1].
func (a FixedPoint) IntoAtomicUnits(base *uint256.Int) *uint256.Int {
	if a.raw.Sign() <= 0 || base.IsZero() {
		return new(uint256.Int)
	}
	z, overflow := new(uint256.Int).MulOverflow(&a.raw, base)
	if overflow {
		return new(uint256.Int).Set(maxU128)
	}
	fractional := z[0] != 0
	z.Rsh(z, 64)
	if fractional {
		z.AddUint64(z, 1)
	}
	if z.Gt(maxU128) {
		return z.Set(maxU128)
	}
	return z
}

// Cmp returns -1, 0, or +1 depending on whether a is less than, equal to, or
// greater than b.
func (a FixedPoint) Cmp(b FixedPoint) int {
	switch {
	case a.raw.Slt(&b.raw):
		return -1
	case a.raw.Sgt(&b.raw):
		return 1
	}
	return 0
}

// ToBig returns the signed raw value, i.e. the value multiplied by 2^64.
func (a FixedPoint) ToBig() *big.Int {
	if a.raw.Sign() < 0 {
		abs := new(uint256.Int).Abs(&a.raw).ToBig()
		return abs.Neg(abs)
	}
	return a.raw.ToBig()
}

func (a FixedPoint) String() string {
	denominator := new(big.Int).Lsh(big.NewInt(1), 64)
	return new(big.Rat).SetFrac(a.ToBig(), denominator).FloatString(8)
}
