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

import (
	"github.com/Fantom-foundation/Strata/go/common"
	"github.com/Fantom-foundation/Strata/go/cost"
	"github.com/Fantom-foundation/Strata/go/state"
	"github.com/Fantom-foundation/Strata/go/strata/vm"
)

// staticCosts lists the compute time charged for each instruction before it
// is executed. Costs depending on arguments or operands are charged by the
// instructions themselves.
type staticCosts = opCodePropertyMap[cost.CostDuration]

func getStaticCosts(m *cost.CostModel) *staticCosts {
	res := newOpCodePropertyMap(func(op vm.OpCode) cost.CostDuration {
		switch op {
		case vm.NOOP:
			return m.NoopConstant
		case vm.BRANCH:
			return m.BranchConstant
		case vm.JMP:
			return m.JmpConstant
		case vm.CKPT:
			return m.CkptConstant
		case vm.LT:
			return m.LtConstant
		case vm.EQ:
			return m.EqConstant
		case vm.AND:
			return m.AndConstant
		case vm.OR:
			return m.OrConstant
		case vm.NEG:
			return m.NegConstant
		case vm.ADD:
			return m.AddConstant
		case vm.SUB:
			return m.SubConstant
		case vm.ADDI:
			return m.AddiConstant
		case vm.SUBI:
			return m.SubiConstant
		case vm.TYPE:
			return m.TypeConstant
		case vm.ROOT:
			return m.RootConstant
		case vm.PUSH, vm.PUSHS:
			return m.PushConstant
		case vm.POP:
			return m.PopConstant
		case vm.DUP:
			return m.DupConstant
		case vm.SWAP:
			return m.SwapConstant
		case vm.POPEQ, vm.POPEQC:
			return m.PopeqConstant
		case vm.LOG:
			return m.LogConstant
		case vm.CONCAT, vm.CONCATC:
			return m.ConcatConstant
		}
		// SIZE, NEW and container accesses are priced per operand.
		return 0
	})
	return &res
}

// accessCosts are the coefficients of a single container access.
type accessCosts struct {
	constant, keySize, logSize cost.CostDuration
}

func (a accessCosts) compute(key state.Cell, containerLen uint64) cost.CostDuration {
	return a.constant.
		Add(a.keySize.Mul(uint64(len(key)))).
		Add(a.logSize.Mul(common.LogSize(containerLen)))
}

func memberCosts(m *cost.CostModel) accessCosts {
	return accessCosts{m.MemberConstant, m.MemberCoeffKeySize, m.MemberCoeffContainerLogSize}
}

func remCosts(m *cost.CostModel) accessCosts {
	return accessCosts{m.RemConstant, m.RemCoeffKeySize, m.RemCoeffContainerLogSize}
}

func idxCosts(m *cost.CostModel) accessCosts {
	return accessCosts{m.IdxConstant, m.IdxCoeffKeySize, m.IdxCoeffContainerLogSize}
}

func insCosts(m *cost.CostModel) accessCosts {
	return accessCosts{m.InsConstant, m.InsCoeffKeySize, m.InsCoeffContainerLogSize}
}

// readCost is the read time of fetching a value of the given size from a
// container of the given length.
func readCost(m *cost.CostModel, containerLen uint64, valueSize uint64) cost.CostDuration {
	return m.ReadConstant.
		Add(m.ReadCoeffContainerLogSize.Mul(common.LogSize(containerLen))).
		Add(m.ReadCoeffValueSize.Mul(valueSize))
}

// sizeCost is the cost of SIZE for the given kind of container.
func sizeCost(m *cost.CostModel, kind state.Kind) (cost.CostDuration, bool) {
	switch kind {
	case state.KindMap:
		return m.SizeMap, true
	case state.KindArray:
		return m.SizeArray, true
	case state.KindBmt:
		return m.SizeBmt, true
	}
	return 0, false
}

// newCost is the cost of NEW creating a value of the given kind.
func newCost(m *cost.CostModel, kind state.Kind) cost.CostDuration {
	switch kind {
	case state.KindNull:
		return m.NewNull
	case state.KindCell:
		return m.NewCell
	case state.KindMap:
		return m.NewMap
	case state.KindArray:
		return m.NewArray
	}
	return m.NewBmt
}

// cellSize is the size of the given value if it is a cell, zero otherwise.
func cellSize(v state.StateValue) uint64 {
	if c, ok := v.(state.Cell); ok {
		return uint64(len(c))
	}
	return 0
}
