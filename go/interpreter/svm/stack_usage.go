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

import "github.com/Fantom-foundation/Strata/go/strata/vm"

// stackUsage describes the effect of an instruction on the stack: the number
// of elements it requires and the number of elements it leaves in their
// place.
type stackUsage struct {
	pops, pushes int
}

// staticStackUsage covers all instructions whose stack usage does not depend
// on their arguments.
var staticStackUsage = newOpCodePropertyMap(func(op vm.OpCode) stackUsage {
	switch op {
	case vm.NOOP, vm.JMP, vm.CKPT:
		return stackUsage{0, 0}
	case vm.NEW, vm.PUSH, vm.PUSHS:
		return stackUsage{0, 1}
	case vm.BRANCH, vm.POP, vm.POPEQ, vm.POPEQC, vm.LOG:
		return stackUsage{1, 0}
	case vm.NEG, vm.ADDI, vm.SUBI, vm.TYPE, vm.SIZE, vm.ROOT:
		return stackUsage{1, 1}
	case vm.LT, vm.EQ, vm.AND, vm.OR, vm.ADD, vm.SUB,
		vm.CONCAT, vm.CONCATC, vm.MEMBER, vm.REM, vm.REMC:
		return stackUsage{2, 1}
	}
	return stackUsage{}
})

func computeStackUsage(instr *vm.Instruction) stackUsage {
	switch instr.Op {
	case vm.DUP:
		return stackUsage{clampArg(instr.Arg) + 1, clampArg(instr.Arg) + 2}
	case vm.SWAP:
		return stackUsage{clampArg(instr.Arg) + 1, clampArg(instr.Arg) + 1}
	case vm.IDX, vm.IDXC:
		return stackUsage{instr.StackKeys() + 1, 1}
	case vm.IDXP, vm.IDXPC:
		return stackUsage{instr.StackKeys() + 1, 2*len(instr.Path) + 1}
	case vm.INS, vm.INSC:
		return stackUsage{2*clampArg(instr.Arg) + 1, 1}
	}
	return staticStackUsage.get(instr.Op)
}

// clampArg converts an argument into a stack distance. Distances beyond the
// maximum stack size are clamped, making them fail the limit check.
func clampArg(arg uint64) int {
	if arg > maxStackSize {
		return maxStackSize
	}
	return int(arg)
}

// checkStackLimits checks that the instruction will not make an out of
// bounds access with the current stack size.
func checkStackLimits(stackLen int, instr *vm.Instruction) error {
	usage := computeStackUsage(instr)
	if stackLen < usage.pops {
		return ErrStackUnderflow
	}
	if stackLen-usage.pops+usage.pushes > maxStackSize {
		return ErrStackOverflow
	}
	return nil
}
