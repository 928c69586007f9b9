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
	"testing"

	"github.com/Fantom-foundation/Strata/go/cost"
	"github.com/Fantom-foundation/Strata/go/state"
	"github.com/Fantom-foundation/Strata/go/strata/vm"
)

func TestStaticCosts_ArgumentAndOperandDependentOpsAreFree(t *testing.T) {
	model := cost.DefaultCostModel()
	costs := getStaticCosts(&model)
	for _, op := range []vm.OpCode{vm.SIZE, vm.NEW, vm.IDX, vm.IDXC, vm.INS, vm.MEMBER, vm.REM} {
		if got := costs.get(op); got != 0 {
			t.Errorf("unexpected static cost for %v: %v", op, got)
		}
	}
	if want, got := model.AddConstant, costs.get(vm.ADD); want != got {
		t.Errorf("unexpected static cost for ADD, wanted %v, got %v", want, got)
	}
	if want, got := model.PushConstant, costs.get(vm.PUSHS); want != got {
		t.Errorf("unexpected static cost for PUSHS, wanted %v, got %v", want, got)
	}
}

func TestAccessCosts_LinearInKeySizeAndLogSize(t *testing.T) {
	costs := accessCosts{constant: 100, keySize: 10, logSize: 1}
	tests := map[string]struct {
		key    state.Cell
		length uint64
		want   cost.CostDuration
	}{
		"empty":       {nil, 0, 100},
		"single":      {state.Cell("a"), 1, 110},
		"long key":    {state.Cell("abcd"), 2, 141},
		"large":       {state.Cell("ab"), 1 << 20, 140},
		"non-power-2": {nil, 5, 103},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if want, got := test.want, costs.compute(test.key, test.length); want != got {
				t.Errorf("unexpected cost, wanted %v, got %v", want, got)
			}
		})
	}
}

func TestReadCost_CombinesAllCoefficients(t *testing.T) {
	model := cost.CostModel{ReadConstant: 1000, ReadCoeffContainerLogSize: 100, ReadCoeffValueSize: 1}
	if want, got := cost.CostDuration(1000+3*100+7), readCost(&model, 8, 7); want != got {
		t.Errorf("unexpected read cost, wanted %v, got %v", want, got)
	}
}

func TestSizeCost_OnlyDefinedForContainers(t *testing.T) {
	model := cost.DefaultCostModel()
	for _, kind := range []state.Kind{state.KindNull, state.KindCell} {
		if _, ok := sizeCost(&model, kind); ok {
			t.Errorf("size of %v should not be priced", kind)
		}
	}
	for kind, want := range map[state.Kind]cost.CostDuration{
		state.KindMap:   model.SizeMap,
		state.KindArray: model.SizeArray,
		state.KindBmt:   model.SizeBmt,
	} {
		got, ok := sizeCost(&model, kind)
		if !ok || want != got {
			t.Errorf("unexpected size cost for %v, wanted %v, got %v", kind, want, got)
		}
	}
}

func TestCellSize_IsZeroForNonCells(t *testing.T) {
	if want, got := uint64(3), cellSize(state.Cell("abc")); want != got {
		t.Errorf("unexpected size, wanted %d, got %d", want, got)
	}
	if want, got := uint64(0), cellSize(state.Null{}); want != got {
		t.Errorf("unexpected size, wanted %d, got %d", want, got)
	}
}
