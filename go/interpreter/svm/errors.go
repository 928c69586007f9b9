// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package svm

import "github.com/Fantom-foundation/Strata/go/common"

const (
	ErrArithmeticOverflow = common.ConstError("arithmetic overflow")
	ErrCacheMiss          = common.ConstError("cache miss")
	ErrCellBoundExceeded  = common.ConstError("cell bound exceeded")
	ErrInvalidArgument    = common.ConstError("invalid instruction argument")
	ErrInvalidOpCode      = common.ConstError("invalid opcode")
	ErrOutOfGas           = common.ConstError("out of gas")
	ErrPcOutOfBounds      = common.ConstError("program counter out of bounds")
	ErrStackOverflow      = common.ConstError("stack overflow")
	ErrStackUnderflow     = common.ConstError("stack underflow")
	ErrWeakStateReturned  = common.ConstError("weak state returned")
)
