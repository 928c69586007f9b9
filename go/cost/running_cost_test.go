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
	"math"
	"testing"
)

func TestRunningCost_Add_SaturatesEveryDimension(t *testing.T) {
	full := RunningCost{
		ReadTime:     MaxCostDuration,
		ComputeTime:  MaxCostDuration,
		BytesWritten: math.MaxUint64,
		BytesDeleted: math.MaxUint64,
	}
	one := RunningCost{ReadTime: 1, ComputeTime: 1, BytesWritten: 1, BytesDeleted: 1}
	if want, got := full, full.Add(one); want != got {
		t.Errorf("wanted %v, got %v", want, got)
	}
	if want, got := (RunningCost{ReadTime: 2, ComputeTime: 2, BytesWritten: 2, BytesDeleted: 2}), one.Add(one); want != got {
		t.Errorf("wanted %v, got %v", want, got)
	}
}

func TestRunningCost_Exceeds_ChecksTimeDimensionsIndependently(t *testing.T) {
	limit := RunningCost{ReadTime: 10, ComputeTime: 10}
	tests := map[string]struct {
		cost RunningCost
		want bool
	}{
		"within":          {RunningCost{ReadTime: 10, ComputeTime: 10}, false},
		"read beyond":     {RunningCost{ReadTime: 11}, true},
		"compute beyond":  {RunningCost{ComputeTime: 11}, true},
		"bytes ignored":   {RunningCost{BytesWritten: 100, BytesDeleted: 100}, false},
		"sum not checked": {RunningCost{ReadTime: 8, ComputeTime: 8}, false},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if got := test.cost.Exceeds(limit); test.want != got {
				t.Errorf("wanted %t, got %t", test.want, got)
			}
		})
	}
}

func TestRunningCost_MaxTime(t *testing.T) {
	c := RunningCost{ReadTime: 3, ComputeTime: 7}
	if want, got := CostDuration(7), c.MaxTime(); want != got {
		t.Errorf("wanted %v, got %v", want, got)
	}
}
