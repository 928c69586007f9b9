// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package state

import (
	"math"

	gmath "github.com/ethereum/go-ethereum/common/math"
)

// DataSize is the number of bytes a value occupies in storage: the length of
// cells, the sum of key and value sizes of maps, the sum of element sizes of
// arrays, and 32 bytes per stored leaf of trees. The result saturates.
func DataSize(v StateValue) uint64 {
	switch v := v.(type) {
	case Cell:
		return uint64(len(v))
	case Map:
		res := uint64(0)
		v.ForEach(func(k Cell, e StateValue) {
			res = addSize(res, addSize(uint64(len(k)), DataSize(e)))
		})
		return res
	case Array:
		res := uint64(0)
		for _, e := range v.elements {
			res = addSize(res, DataSize(e))
		}
		return res
	case BoundedMerkleTree:
		res, overflow := gmath.SafeMul(v.tree.Size(), 32)
		if overflow {
			return math.MaxUint64
		}
		return res
	}
	return 0
}

func addSize(a, b uint64) uint64 {
	res, overflow := gmath.SafeAdd(a, b)
	if overflow {
		return math.MaxUint64
	}
	return res
}
