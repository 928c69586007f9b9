// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package state defines the values contract state is composed of. A value is
// either Null, a Cell holding a byte string, or one of the containers Map,
// Array and BoundedMerkleTree. All values are immutable; modifications of
// containers produce new containers sharing their children with the
// original.
package state

import (
	"fmt"

	"github.com/Fantom-foundation/Strata/go/common"
)

const (
	ErrNotUint64        = common.ConstError("cell is not an encoded uint64")
	ErrNotBoolean       = common.ConstError("cell is not an encoded boolean")
	ErrTypeMismatch     = common.ConstError("unexpected value kind")
	ErrIndexOutOfBounds = common.ConstError("index out of bounds")
	ErrInvalidKind      = common.ConstError("invalid kind tag")
	ErrUnsupported      = common.ConstError("operation not supported by container")
	ErrLogBoundExceeded = common.ConstError("log bound exceeded")
)

// Kind enumerates the variants of state values. The numeric values are the
// tags used by the instruction set and the node list encoding.
type Kind byte

const (
	KindNull  Kind = 0
	KindCell  Kind = 1
	KindMap   Kind = 2
	KindArray Kind = 3
	KindBmt   Kind = 4
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindCell:
		return "cell"
	case KindMap:
		return "map"
	case KindArray:
		return "array"
	case KindBmt:
		return "bmt"
	}
	return fmt.Sprintf("Kind(%d)", byte(k))
}

// StateValue is implemented by Null, Cell, Map, Array and BoundedMerkleTree.
// The set of implementations is closed.
type StateValue interface {
	Kind() Kind
	stateValue()
}

// Null is the empty value.
type Null struct{}

func (Null) Kind() Kind  { return KindNull }
func (Null) stateValue() {}

func (Null) String() string { return "null" }

// Container is implemented by Map, Array and BoundedMerkleTree. Keys of all
// containers are cells; arrays and trees interpret them as uint64 indexes.
type Container interface {
	StateValue
	// Get returns the value stored under key, or Null if there is none.
	Get(key Cell) (StateValue, error)
	Contains(key Cell) (bool, error)
	Insert(key Cell, value StateValue) (Container, error)
	Remove(key Cell) (Container, error)
	// Len returns the number of entries of a map or array. For trees the
	// number of leaf positions is reported, saturating at the maximum uint64.
	Len() uint64
}

// AsContainer converts the given value into a container, failing with
// ErrTypeMismatch for non-container values.
func AsContainer(v StateValue) (Container, error) {
	if c, ok := v.(Container); ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: expected container, got %v", ErrTypeMismatch, kindOf(v))
}

// AsCell converts the given value into a cell, failing with ErrTypeMismatch
// for any other kind.
func AsCell(v StateValue) (Cell, error) {
	if c, ok := v.(Cell); ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: expected cell, got %v", ErrTypeMismatch, kindOf(v))
}

func kindOf(v StateValue) Kind {
	if v == nil {
		return KindNull
	}
	return v.Kind()
}

// NewOfKind creates the zero value of the kind selected by the given tag. The
// low 3 bits of the tag select the kind, the remaining bits the length of
// arrays or the height of trees.
func NewOfKind(tag byte) (StateValue, error) {
	size := tag >> 3
	switch Kind(tag & 0x7) {
	case KindNull:
		return Null{}, nil
	case KindCell:
		return Cell{}, nil
	case KindMap:
		return Map{}, nil
	case KindArray:
		if size > MaxArrayLength {
			return nil, fmt.Errorf("%w: array length %d exceeds %d", ErrInvalidKind, size, MaxArrayLength)
		}
		return NewArray(int(size)), nil
	case KindBmt:
		return NewBoundedMerkleTree(size), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrInvalidKind, tag&0x7)
}

// Equal reports whether two values are structurally equal. Trees are equal if
// they have the same height and root.
func Equal(a, b StateValue) bool {
	if kindOf(a) != kindOf(b) {
		return false
	}
	switch a := a.(type) {
	case Cell:
		return a.Equal(b.(Cell))
	case Map:
		return a.equal(b.(Map))
	case Array:
		return a.equal(b.(Array))
	case BoundedMerkleTree:
		return a.equal(b.(BoundedMerkleTree))
	}
	return true
}
