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
	"fmt"
	"strings"
)

// MaxArrayLength is the maximum number of elements of an Array.
const MaxArrayLength = 16

// Array is a container of fixed length, indexed by uint64 cells.
type Array struct {
	elements []StateValue
}

func (Array) Kind() Kind  { return KindArray }
func (Array) stateValue() {}

// NewArray creates an array of the given length with all elements Null.
func NewArray(length int) Array {
	if length < 0 || length > MaxArrayLength {
		panic(fmt.Sprintf("invalid array length %d", length))
	}
	res := Array{elements: make([]StateValue, length)}
	for i := range res.elements {
		res.elements[i] = Null{}
	}
	return res
}

// NewArrayOf creates an array holding the given elements.
func NewArrayOf(elements ...StateValue) Array {
	res := NewArray(len(elements))
	for i, e := range elements {
		if e != nil {
			res.elements[i] = e
		}
	}
	return res
}

func (a Array) Len() uint64 {
	return uint64(len(a.elements))
}

func (a Array) index(key Cell) (int, error) {
	i, err := key.Uint64()
	if err != nil {
		return 0, err
	}
	if i >= uint64(len(a.elements)) {
		return 0, fmt.Errorf("%w: index %d of array of length %d", ErrIndexOutOfBounds, i, len(a.elements))
	}
	return int(i), nil
}

func (a Array) Get(key Cell) (StateValue, error) {
	i, err := a.index(key)
	if err != nil {
		return nil, err
	}
	return a.elements[i], nil
}

// Contains reports whether the element at the given index is not Null.
func (a Array) Contains(key Cell) (bool, error) {
	v, err := a.Get(key)
	if err != nil {
		return false, err
	}
	return v.Kind() != KindNull, nil
}

func (a Array) Insert(key Cell, value StateValue) (Container, error) {
	i, err := a.index(key)
	if err != nil {
		return nil, err
	}
	if value == nil {
		value = Null{}
	}
	res := Array{elements: make([]StateValue, len(a.elements))}
	copy(res.elements, a.elements)
	res.elements[i] = value
	return res, nil
}

// Remove is not supported by arrays since their length is fixed.
func (a Array) Remove(Cell) (Container, error) {
	return nil, fmt.Errorf("%w: remove from array", ErrUnsupported)
}

// Elements returns a copy of the elements of the array.
func (a Array) Elements() []StateValue {
	return append([]StateValue(nil), a.elements...)
}

func (a Array) equal(other Array) bool {
	if len(a.elements) != len(other.elements) {
		return false
	}
	for i := range a.elements {
		if !Equal(a.elements[i], other.elements[i]) {
			return false
		}
	}
	return true
}

func (a Array) String() string {
	parts := make([]string, len(a.elements))
	for i, e := range a.elements {
		parts[i] = fmt.Sprint(e)
	}
	return "array[" + strings.Join(parts, ", ") + "]"
}
