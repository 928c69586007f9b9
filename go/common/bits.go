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

import "math/bits"

// LogSize returns ceil(log2(size)), the depth of a balanced binary tree
// holding size elements. LogSize(0) and LogSize(1) are 0.
func LogSize(size uint64) uint64 {
	if size <= 1 {
		return 0
	}
	return uint64(bits.Len64(size - 1))
}
