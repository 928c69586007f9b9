// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"math"
	"testing"
)

func TestLogSize(t *testing.T) {
	tests := map[uint64]uint64{
		0:              0,
		1:              0,
		2:              1,
		3:              2,
		4:              2,
		5:              3,
		1024:           10,
		1025:           11,
		math.MaxUint64: 64,
	}
	for size, want := range tests {
		if got := LogSize(size); want != got {
			t.Errorf("LogSize(%d): wanted %d, got %d", size, want, got)
		}
	}
}
