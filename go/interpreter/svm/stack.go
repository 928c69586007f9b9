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
	"fmt"
	"strings"
	"sync"

	"github.com/Fantom-foundation/Strata/go/cache"
	"github.com/Fantom-foundation/Strata/go/state"
)

const maxStackSize = 1024 // Maximum size of VM stack allowed.

// slot is a stack entry: a value and the position in the initial state it
// was read from. Values not derived from the initial state have a nil key.
type slot struct {
	value state.VmValue
	key   *cache.CacheKey
}

type stack struct {
	data         [maxStackSize]slot
	stackPointer int
}

func (s *stack) push(v slot) {
	s.data[s.stackPointer] = v
	s.stackPointer++
}

func (s *stack) pushStrong(v state.StateValue) {
	s.push(slot{value: state.NewStrong(v)})
}

func (s *stack) pop() slot {
	s.stackPointer--
	res := s.data[s.stackPointer]
	s.data[s.stackPointer] = slot{}
	return res
}

func (s *stack) peek() *slot {
	return &s.data[s.len()-1]
}

func (s *stack) peekN(n int) *slot {
	return &s.data[s.len()-n-1]
}

func (s *stack) len() int {
	return s.stackPointer
}

func (s *stack) swap(n int) {
	s.data[s.len()-n-1], s.data[s.len()-1] = s.data[s.len()-1], s.data[s.len()-n-1]
}

func (s *stack) dup(n int) {
	s.data[s.stackPointer] = s.data[s.stackPointer-n-1]
	s.stackPointer++
}

func (s *stack) get(i int) *slot {
	return &s.data[i]
}

// values returns a copy of the stack content, the last element being the
// top of the stack.
func (s *stack) values() []state.VmValue {
	res := make([]state.VmValue, s.len())
	for i := range res {
		res[i] = s.data[i].value
	}
	return res
}

func (s *stack) String() string {
	b := strings.Builder{}
	for i := 0; i < s.len(); i++ {
		cur := s.peekN(i)
		b.WriteString(fmt.Sprintf("    [%4d] %v @ %v\n", s.len()-i-1, cur.value, cur.key))
	}
	return b.String()
}

// ------------------ Stack Pool ------------------

var stackPool = sync.Pool{
	New: func() interface{} {
		return &stack{}
	},
}

func NewStack() *stack {
	return stackPool.Get().(*stack)
}

func ReturnStack(s *stack) {
	clear(s.data[:s.stackPointer])
	s.stackPointer = 0
	stackPool.Put(s)
}
