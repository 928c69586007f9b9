// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package gen produces random programs for benchmarks and property tests.
package gen

import (
	"math"

	"pgregory.net/rand"

	"github.com/Fantom-foundation/Strata/go/state"
	"github.com/Fantom-foundation/Strata/go/strata/vm"
	gmath "github.com/ethereum/go-ethereum/common/math"
)

// ProgramGenerator produces random programs which complete successfully when
// run against an empty initial stack without gas limit. All values left on
// the stack are strong.
type ProgramGenerator struct {
	length   int
	maxDepth int
}

func NewProgramGenerator() *ProgramGenerator {
	return &ProgramGenerator{
		length:   32,
		maxDepth: 16,
	}
}

// SetLength sets the minimum number of instructions of generated programs.
// Programs may exceed it by one instruction.
func (g *ProgramGenerator) SetLength(length int) {
	g.length = length
}

// SetMaxDepth limits the stack depth reached by generated programs.
func (g *ProgramGenerator) SetMaxDepth(depth int) {
	g.maxDepth = max(depth, 3)
}

// valueType is the information the generator tracks about stack values.
type valueType byte

const (
	typeNumber valueType = iota // a cell holding a uint64
	typeBytes                   // any other cell
	typeMap
	typeAny
)

type entry struct {
	typ   valueType
	bound uint64 // upper bound of numbers
	size  int    // upper bound of the length of cells
}

func number(bound uint64) entry {
	return entry{typ: typeNumber, bound: bound, size: 8}
}

func (e entry) isCell() bool {
	return e.typ == typeNumber || e.typ == typeBytes
}

const maxConcatSize = 64

func (g *ProgramGenerator) Generate(rnd *rand.Rand) []vm.Instruction {
	res := make([]vm.Instruction, 0, g.length+1)
	stack := make([]entry, 0, g.maxDepth)

	top := func(n int) entry {
		return stack[len(stack)-n-1]
	}
	pop := func(n int) {
		stack = stack[:len(stack)-n]
	}
	push := func(e entry) {
		stack = append(stack, e)
	}

	for len(res) < g.length {
		depth := len(stack)
		candidates := []func(){
			func() {
				n := rnd.Uint64n(4)
				res = append(res, vm.Instruction{Op: vm.NOOP, Arg: n})
			},
			func() {
				res = append(res, vm.Instruction{Op: vm.CKPT})
			},
			func() {
				v := rnd.Uint64n(1 << 16)
				res = append(res,
					vm.Instruction{Op: vm.PUSH, Value: state.CellFromUint64(v)},
					vm.Instruction{Op: vm.POPEQ},
				)
			},
		}
		if depth < g.maxDepth {
			candidates = append(candidates,
				func() {
					v := rnd.Uint64n(1 << 16)
					res = append(res, vm.Instruction{Op: vm.PUSHS, Value: state.CellFromUint64(v)})
					push(number(v))
				},
				func() {
					res = append(res, vm.Instruction{Op: vm.NEW, Arg: uint64(state.KindMap)})
					push(entry{typ: typeMap})
				},
			)
			if depth > 0 {
				candidates = append(candidates, func() {
					n := rnd.Intn(depth)
					res = append(res, vm.Instruction{Op: vm.DUP, Arg: uint64(n)})
					push(top(n))
				})
			}
		}
		if depth > 0 {
			candidates = append(candidates,
				func() {
					res = append(res, vm.Instruction{Op: vm.POP})
					pop(1)
				},
				func() {
					res = append(res, vm.Instruction{Op: vm.LOG})
					pop(1)
				},
				func() {
					res = append(res, vm.Instruction{Op: vm.TYPE})
					pop(1)
					push(number(uint64(state.KindBmt)))
				},
			)
		}
		if depth > 1 {
			candidates = append(candidates,
				func() {
					n := 1 + rnd.Intn(depth-1)
					res = append(res, vm.Instruction{Op: vm.SWAP, Arg: uint64(n)})
					stack[depth-1], stack[depth-n-1] = stack[depth-n-1], stack[depth-1]
				},
				func() {
					res = append(res, vm.Instruction{Op: vm.EQ})
					pop(2)
					push(number(1))
				},
			)
		}
		if depth > 0 && top(0).typ == typeNumber && top(0).bound < math.MaxUint64-(1<<8) {
			a := top(0)
			candidates = append(candidates, func() {
				imm := rnd.Uint64n(1 << 8)
				res = append(res, vm.Instruction{Op: vm.ADDI, Arg: imm})
				pop(1)
				push(number(saturatingAdd(a.bound, imm)))
			})
			if a.bound <= 1 {
				candidates = append(candidates,
					func() {
						res = append(res, vm.Instruction{Op: vm.NEG})
						pop(1)
						push(number(1))
					},
					func() {
						res = append(res, vm.Instruction{Op: vm.BRANCH, Arg: 0})
						pop(1)
					},
				)
			}
		}
		if depth > 1 && top(0).typ == typeNumber && top(1).typ == typeNumber {
			a, b := top(1), top(0)
			if _, overflow := gmath.SafeAdd(a.bound, b.bound); !overflow {
				candidates = append(candidates, func() {
					res = append(res, vm.Instruction{Op: vm.ADD})
					pop(2)
					push(number(a.bound + b.bound))
				})
			}
			candidates = append(candidates, func() {
				res = append(res, vm.Instruction{Op: vm.LT})
				pop(2)
				push(number(1))
			})
		}
		if depth > 1 && top(0).isCell() && top(1).isCell() && top(0).size+top(1).size <= maxConcatSize {
			size := top(0).size + top(1).size
			candidates = append(candidates, func() {
				res = append(res, vm.Instruction{Op: vm.CONCAT, Arg: maxConcatSize})
				pop(2)
				push(entry{typ: typeBytes, size: size})
			})
		}
		if depth > 0 && top(0).typ == typeMap {
			candidates = append(candidates,
				func() {
					res = append(res, vm.Instruction{Op: vm.SIZE})
					pop(1)
					push(number(1 << 16))
				},
				func() {
					key := state.CellFromUint64(rnd.Uint64n(4))
					res = append(res, vm.Instruction{Op: vm.IDX, Path: []vm.Key{vm.LiteralKey(key)}})
					pop(1)
					push(entry{typ: typeAny})
				},
			)
		}
		if depth > 1 && top(1).typ == typeMap && top(0).isCell() {
			candidates = append(candidates,
				func() {
					res = append(res, vm.Instruction{Op: vm.MEMBER})
					pop(2)
					push(number(1))
				},
				func() {
					res = append(res, vm.Instruction{Op: vm.IDX, Path: []vm.Key{vm.StackKey()}})
					pop(2)
					push(entry{typ: typeAny})
				},
				func() {
					res = append(res, vm.Instruction{Op: vm.REM})
					pop(2)
					push(entry{typ: typeMap})
				},
			)
		}
		if depth > 2 && top(2).typ == typeMap && top(1).isCell() {
			candidates = append(candidates, func() {
				res = append(res, vm.Instruction{Op: vm.INS, Arg: 1})
				pop(3)
				push(entry{typ: typeMap})
			})
		}

		candidates[rnd.Intn(len(candidates))]()
	}
	return res
}

func saturatingAdd(a, b uint64) uint64 {
	sum, overflow := gmath.SafeAdd(a, b)
	if overflow {
		return math.MaxUint64
	}
	return sum
}
