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

import "fmt"

// Strength tags values on the VM stack. Weak values are present for
// inspection only and need not be retained; Strong values are results of
// computations which have been paid for and are durable.
type Strength byte

const (
	Weak Strength = iota
	Strong
)

func (s Strength) String() string {
	switch s {
	case Weak:
		return "weak"
	case Strong:
		return "strong"
	}
	return fmt.Sprintf("Strength(%d)", byte(s))
}

// VmValue is a state value tagged with its strength.
type VmValue struct {
	Value    StateValue
	Strength Strength
}

func NewWeak(v StateValue) VmValue {
	return VmValue{Value: v, Strength: Weak}
}

func NewStrong(v StateValue) VmValue {
	return VmValue{Value: v, Strength: Strong}
}

// Equal reports whether both values have the same strength and are
// structurally equal.
func (v VmValue) Equal(other VmValue) bool {
	return v.Strength == other.Strength && Equal(v.Value, other.Value)
}

func (v VmValue) String() string {
	return fmt.Sprintf("%v(%v)", v.Strength, v.Value)
}
