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
	"fmt"
	"math"
	"math/bits"

	"github.com/dsnet/golib/unitconv"
)

// CostDuration is a synthetic, non-negative duration with a resolution of one
// picosecond. It is the unit in which time-like costs of VM instructions are
// expressed. All arithmetic on durations saturates instead of wrapping.
type CostDuration uint64

const (
	Picosecond  CostDuration = 1
	Nanosecond               = 1000 * Picosecond
	Microsecond              = 1000 * Nanosecond
	Millisecond              = 1000 * Microsecond
	Second                   = 1000 * Millisecond

	MaxCostDuration CostDuration = math.MaxUint64
)

func (d CostDuration) Picoseconds() uint64 {
	return uint64(d)
}

func (d CostDuration) Add(o CostDuration) CostDuration {
	sum, carry := bits.Add64(uint64(d), uint64(o), 0)
	if carry != 0 {
		return MaxCostDuration
	}
	return CostDuration(sum)
}

// Sub subtracts o from d, saturating at zero.
func (d CostDuration) Sub(o CostDuration) CostDuration {
	if o > d {
		return 0
	}
	return d - o
}

// Mul scales the duration by the given factor.
func (d CostDuration) Mul(n uint64) CostDuration {
	hi, lo := bits.Mul64(uint64(d), n)
	if hi != 0 {
		return MaxCostDuration
	}
	return CostDuration(lo)
}

// DivCeil divides the duration by n, rounding up. A division by zero results
// in MaxCostDuration.
func (d CostDuration) DivCeil(n uint64) CostDuration {
	if n == 0 {
		return MaxCostDuration
	}
	res := uint64(d) / n
	if uint64(d)%n != 0 {
		res++
	}
	return CostDuration(res)
}

// IntoFixedPoint converts the duration into a FixedPoint number of seconds,
// rounding up.
func (d CostDuration) IntoFixedPoint() FixedPoint {
	return FixedPointFromUint64(uint64(d)).Div(FixedPointFromUint64(uint64(Second)))
}

func (d CostDuration) String() string {
	return fmt.Sprintf("%dps", uint64(d))
}

// Humanize renders the duration using SI prefixes with the given precision,
// e.g. "1.50µs". It is intended for human-readable reports only.
func (d CostDuration) Humanize(prec int) string {
	return unitconv.FormatPrefix(float64(d)*1e-12, unitconv.SI, prec) + "s"
}
