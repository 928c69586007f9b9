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
	"encoding/json"
	"fmt"
	"os"
)

// CostModel is the table of coefficients used to price VM instructions. Each
// instruction is priced by a constant term and, where applicable, by terms
// linear in the size of its arguments:
//
//   - CoeffArg: the immediate argument of the instruction (noop, dup, swap)
//   - CoeffKeySize: the size of the key in bytes
//   - CoeffContainerLogSize: the base-2 logarithm of the size of the container
//   - CoeffValueSize: the size of the processed value in bytes
//
// Read* coefficients are charged as read time by instructions fetching data
// that has not been declared as cached. All other coefficients are charged
// as compute time.
type CostModel struct {
	NoopConstant CostDuration `json:"noopConstant"`
	NoopCoeffArg CostDuration `json:"noopCoeffArg"`

	BranchConstant CostDuration `json:"branchConstant"`
	JmpConstant    CostDuration `json:"jmpConstant"`
	CkptConstant   CostDuration `json:"ckptConstant"`

	LtConstant  CostDuration `json:"ltConstant"`
	EqConstant  CostDuration `json:"eqConstant"`
	AndConstant CostDuration `json:"andConstant"`
	OrConstant  CostDuration `json:"orConstant"`
	NegConstant CostDuration `json:"negConstant"`

	TypeConstant CostDuration `json:"typeConstant"`
	SizeMap      CostDuration `json:"sizeMap"`
	SizeArray    CostDuration `json:"sizeArray"`
	SizeBmt      CostDuration `json:"sizeBmt"`
	RootConstant CostDuration `json:"rootConstant"`

	NewNull  CostDuration `json:"newNull"`
	NewCell  CostDuration `json:"newCell"`
	NewMap   CostDuration `json:"newMap"`
	NewArray CostDuration `json:"newArray"`
	NewBmt   CostDuration `json:"newBmt"`

	LogConstant       CostDuration `json:"logConstant"`
	LogCoeffValueSize CostDuration `json:"logCoeffValueSize"`

	PopConstant         CostDuration `json:"popConstant"`
	PopeqConstant       CostDuration `json:"popeqConstant"`
	PopeqCoeffValueSize CostDuration `json:"popeqCoeffValueSize"`

	AddiConstant CostDuration `json:"addiConstant"`
	SubiConstant CostDuration `json:"subiConstant"`
	AddConstant  CostDuration `json:"addConstant"`
	SubConstant  CostDuration `json:"subConstant"`

	PushConstant CostDuration `json:"pushConstant"`
	DupConstant  CostDuration `json:"dupConstant"`
	DupCoeffArg  CostDuration `json:"dupCoeffArg"`
	SwapConstant CostDuration `json:"swapConstant"`
	SwapCoeffArg CostDuration `json:"swapCoeffArg"`

	ConcatConstant       CostDuration `json:"concatConstant"`
	ConcatCoeffValueSize CostDuration `json:"concatCoeffValueSize"`

	MemberConstant              CostDuration `json:"memberConstant"`
	MemberCoeffKeySize          CostDuration `json:"memberCoeffKeySize"`
	MemberCoeffContainerLogSize CostDuration `json:"memberCoeffContainerLogSize"`

	RemConstant              CostDuration `json:"remConstant"`
	RemCoeffKeySize          CostDuration `json:"remCoeffKeySize"`
	RemCoeffContainerLogSize CostDuration `json:"remCoeffContainerLogSize"`

	IdxConstant              CostDuration `json:"idxConstant"`
	IdxCoeffKeySize          CostDuration `json:"idxCoeffKeySize"`
	IdxCoeffContainerLogSize CostDuration `json:"idxCoeffContainerLogSize"`

	InsConstant              CostDuration `json:"insConstant"`
	InsCoeffKeySize          CostDuration `json:"insCoeffKeySize"`
	InsCoeffContainerLogSize CostDuration `json:"insCoeffContainerLogSize"`

	ReadConstant              CostDuration `json:"readConstant"`
	ReadCoeffContainerLogSize CostDuration `json:"readCoeffContainerLogSize"`
	ReadCoeffValueSize        CostDuration `json:"readCoeffValueSize"`
}

// DefaultCostModel returns the built-in cost table. The values are
// benchmark-derived and expressed in picoseconds.
func DefaultCostModel() CostModel {
	return CostModel{
		NoopConstant: 1_200,
		NoopCoeffArg: 150,

		BranchConstant: 18_000,
		JmpConstant:    9_500,
		CkptConstant:   7_800,

		LtConstant:  24_000,
		EqConstant:  26_500,
		AndConstant: 23_000,
		OrConstant:  23_000,
		NegConstant: 17_500,

		TypeConstant: 14_000,
		SizeMap:      21_000,
		SizeArray:    16_500,
		SizeBmt:      16_000,
		RootConstant: 31_000,

		NewNull:  9_000,
		NewCell:  11_000,
		NewMap:   27_000,
		NewArray: 24_000,
		NewBmt:   52_000,

		LogConstant:       45_000,
		LogCoeffValueSize: 320,

		PopConstant:         8_000,
		PopeqConstant:       36_000,
		PopeqCoeffValueSize: 280,

		AddiConstant: 21_500,
		SubiConstant: 21_500,
		AddConstant:  25_000,
		SubConstant:  25_000,

		PushConstant: 12_000,
		DupConstant:  10_500,
		DupCoeffArg:  350,
		SwapConstant: 11_000,
		SwapCoeffArg: 400,

		ConcatConstant:       33_000,
		ConcatCoeffValueSize: 160,

		MemberConstant:              41_000,
		MemberCoeffKeySize:          240,
		MemberCoeffContainerLogSize: 6_500,

		RemConstant:              58_000,
		RemCoeffKeySize:          260,
		RemCoeffContainerLogSize: 9_000,

		IdxConstant:              39_000,
		IdxCoeffKeySize:          230,
		IdxCoeffContainerLogSize: 6_000,

		InsConstant:              64_000,
		InsCoeffKeySize:          270,
		InsCoeffContainerLogSize: 11_500,

		ReadConstant:              2 * Microsecond,
		ReadCoeffContainerLogSize: 650 * Nanosecond,
		ReadCoeffValueSize:        1_100,
	}
}

// LoadCostModel reads a cost model from a JSON file. Coefficients missing in
// the file retain their default values.
func LoadCostModel(path string) (CostModel, error) {
	model := DefaultCostModel()
	data, err := os.ReadFile(path)
	if err != nil {
		return model, fmt.Errorf("failed to read cost model: %w", err)
	}
	if err := json.Unmarshal(data, &model); err != nil {
		return model, fmt.Errorf("failed to parse cost model %s: %w", path, err)
	}
	return model, nil
}
