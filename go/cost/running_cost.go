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

	gmath "github.com/ethereum/go-ethereum/common/math"
)

// RunningCost is the four-dimensional resource currency charged for VM
// instructions. All fields accumulate with saturation.
type RunningCost struct {
	ReadTime     CostDuration `json:"readTime"`
	ComputeTime  CostDuration `json:"computeTime"`
	BytesWritten uint64       `json:"bytesWritten"`
	BytesDeleted uint64       `json:"bytesDeleted"`
}

// ComputeCost is a RunningCost only consuming compute time.
func ComputeCost(d CostDuration) RunningCost {
	return RunningCost{ComputeTime: d}
}

// ReadCost is a RunningCost only consuming read time.
func ReadCost(d CostDuration) RunningCost {
	return RunningCost{ReadTime: d}
}

func (c RunningCost) Add(o RunningCost) RunningCost {
	return RunningCost{
		ReadTime:     c.ReadTime.Add(o.ReadTime),
		ComputeTime:  c.ComputeTime.Add(o.ComputeTime),
		BytesWritten: saturatingAdd(c.BytesWritten, o.BytesWritten),
		BytesDeleted: saturatingAdd(c.BytesDeleted, o.BytesDeleted),
	}
}

// Exceeds reports whether the read time or the compute time of this cost is
// beyond the respective dimension of the given limit. The two dimensions are
// checked independently.
func (c RunningCost) Exceeds(limit RunningCost) bool {
	return c.ReadTime > limit.ReadTime || c.ComputeTime > limit.ComputeTime
}

// Covers reports whether every dimension of c is at least as large as the
// corresponding dimension of o.
func (c RunningCost) Covers(o RunningCost) bool {
	return c.ReadTime >= o.ReadTime &&
		c.ComputeTime >= o.ComputeTime &&
		c.BytesWritten >= o.BytesWritten &&
		c.BytesDeleted >= o.BytesDeleted
}

// MaxTime is the larger of the two time dimensions. Read and compute are
// performed in parallel, so this is the wall time an execution is billed for.
func (c RunningCost) MaxTime() CostDuration {
	return max(c.ReadTime, c.ComputeTime)
}

func (c RunningCost) String() string {
	return fmt.Sprintf("read=%v compute=%v written=%dB deleted=%dB",
		c.ReadTime, c.ComputeTime, c.BytesWritten, c.BytesDeleted)
}

func saturatingAdd(a, b uint64) uint64 {
	sum, overflow := gmath.SafeAdd(a, b)
	if overflow {
		return math.MaxUint64
	}
	return sum
}
