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

	"github.com/Fantom-foundation/Strata/go/cost"
	"github.com/Fantom-foundation/Strata/go/merkle"
	"github.com/Fantom-foundation/Strata/go/state"
	"github.com/Fantom-foundation/Strata/go/strata/vm"
	gmath "github.com/ethereum/go-ethereum/common/math"
)

// execute runs a single instruction. Stack limits have been checked and the
// static cost of the instruction has been charged before.
func execute(c *context, instr *vm.Instruction) error {
	switch instr.Op {
	case vm.NOOP:
		return c.useCompute(c.model.NoopCoeffArg.Mul(instr.Arg))
	case vm.BRANCH:
		return opBranch(c, instr.Arg)
	case vm.JMP:
		return jump(c, instr.Arg)
	case vm.CKPT:
		// nothing
	case vm.LT:
		return opLt(c)
	case vm.EQ:
		opEq(c)
	case vm.AND:
		return opAnd(c)
	case vm.OR:
		return opOr(c)
	case vm.NEG:
		return opNeg(c)
	case vm.ADD:
		return opAdd(c)
	case vm.SUB:
		return opSub(c)
	case vm.ADDI:
		return opAddi(c, instr.Arg)
	case vm.SUBI:
		return opSubi(c, instr.Arg)
	case vm.TYPE:
		opType(c)
	case vm.SIZE:
		return opSize(c)
	case vm.ROOT:
		return opRoot(c)
	case vm.NEW:
		return opNew(c, instr.Arg)
	case vm.PUSH:
		opPush(c, instr.Value, state.Weak)
	case vm.PUSHS:
		opPush(c, instr.Value, state.Strong)
	case vm.POP:
		c.stack.pop()
	case vm.DUP:
		return opDup(c, instr.Arg)
	case vm.SWAP:
		return opSwap(c, instr.Arg)
	case vm.POPEQ:
		return opPopeq(c, instr.Value, false)
	case vm.POPEQC:
		return opPopeq(c, instr.Value, true)
	case vm.LOG:
		return opLog(c)
	case vm.CONCAT:
		return opConcat(c, instr.Arg, false)
	case vm.CONCATC:
		return opConcat(c, instr.Arg, true)
	case vm.MEMBER:
		return opMember(c)
	case vm.REM:
		return opRem(c, false)
	case vm.REMC:
		return opRem(c, true)
	case vm.IDX:
		return opIdx(c, instr.Path, false, false)
	case vm.IDXC:
		return opIdx(c, instr.Path, true, false)
	case vm.IDXP:
		return opIdx(c, instr.Path, false, true)
	case vm.IDXPC:
		return opIdx(c, instr.Path, true, true)
	case vm.INS:
		return opIns(c, instr.Arg, false)
	case vm.INSC:
		return opIns(c, instr.Arg, true)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidOpCode, instr.Op)
	}
	return nil
}

// --- Operand decoding ---

func popCell(c *context) (state.Cell, error) {
	return state.AsCell(c.stack.pop().value.Value)
}

func popUint64(c *context) (uint64, error) {
	cell, err := popCell(c)
	if err != nil {
		return 0, err
	}
	return cell.Uint64()
}

func popBool(c *context) (bool, error) {
	cell, err := popCell(c)
	if err != nil {
		return false, err
	}
	return cell.Bool()
}

// --- Control flow ---

func opBranch(c *context, skip uint64) error {
	cond, err := popBool(c)
	if err != nil || !cond {
		return err
	}
	return jump(c, skip)
}

// jump skips the given number of instructions following the current one.
// Skipping to the end of the program is allowed, skipping beyond it is not.
func jump(c *context, skip uint64) error {
	if skip > uint64(len(c.program)-c.pc-1) {
		return fmt.Errorf("%w: skipping %d of %d remaining instructions", ErrPcOutOfBounds, skip, len(c.program)-c.pc-1)
	}
	c.pc += int(skip)
	return nil
}

// --- Comparison and logic ---

func opLt(c *context) error {
	b, err := popUint64(c)
	if err != nil {
		return err
	}
	a, err := popUint64(c)
	if err != nil {
		return err
	}
	c.stack.pushStrong(state.CellFromBool(a < b))
	return nil
}

func opEq(c *context) {
	b := c.stack.pop()
	a := c.stack.pop()
	c.stack.pushStrong(state.CellFromBool(state.Equal(a.value.Value, b.value.Value)))
}

func opAnd(c *context) error {
	return binaryBoolOp(c, func(a, b bool) bool { return a && b })
}

func opOr(c *context) error {
	return binaryBoolOp(c, func(a, b bool) bool { return a || b })
}

func binaryBoolOp(c *context, op func(a, b bool) bool) error {
	b, err := popBool(c)
	if err != nil {
		return err
	}
	a, err := popBool(c)
	if err != nil {
		return err
	}
	c.stack.pushStrong(state.CellFromBool(op(a, b)))
	return nil
}

func opNeg(c *context) error {
	a, err := popBool(c)
	if err != nil {
		return err
	}
	c.stack.pushStrong(state.CellFromBool(!a))
	return nil
}

// --- Arithmetic ---

func opAdd(c *context) error {
	b, err := popUint64(c)
	if err != nil {
		return err
	}
	return addImmediate(c, b)
}

func opSub(c *context) error {
	b, err := popUint64(c)
	if err != nil {
		return err
	}
	return subImmediate(c, b)
}

func opAddi(c *context, imm uint64) error {
	return addImmediate(c, imm)
}

func opSubi(c *context, imm uint64) error {
	return subImmediate(c, imm)
}

func addImmediate(c *context, b uint64) error {
	a, err := popUint64(c)
	if err != nil {
		return err
	}
	sum, overflow := gmath.SafeAdd(a, b)
	if overflow {
		return fmt.Errorf("%w: %d + %d", ErrArithmeticOverflow, a, b)
	}
	c.stack.pushStrong(state.CellFromUint64(sum))
	return nil
}

func subImmediate(c *context, b uint64) error {
	a, err := popUint64(c)
	if err != nil {
		return err
	}
	diff, overflow := gmath.SafeSub(a, b)
	if overflow {
		return fmt.Errorf("%w: %d - %d", ErrArithmeticOverflow, a, b)
	}
	c.stack.pushStrong(state.CellFromUint64(diff))
	return nil
}

// --- Introspection and construction ---

func opType(c *context) {
	v := c.stack.pop().value.Value
	c.stack.pushStrong(state.CellFromUint64(uint64(v.Kind())))
}

func opSize(c *context) error {
	v := c.stack.peek().value.Value
	price, ok := sizeCost(c.model, v.Kind())
	if !ok {
		return fmt.Errorf("%w: size of %v", state.ErrTypeMismatch, v.Kind())
	}
	if err := c.useCompute(price); err != nil {
		return err
	}
	c.stack.pop()
	var size uint64
	switch v := v.(type) {
	case state.BoundedMerkleTree:
		size = uint64(v.Height())
	case state.Container:
		size = v.Len()
	}
	c.stack.pushStrong(state.CellFromUint64(size))
	return nil
}

func opRoot(c *context) error {
	v := c.stack.pop().value.Value
	tree, ok := v.(state.BoundedMerkleTree)
	if !ok {
		return fmt.Errorf("%w: root of %v", state.ErrTypeMismatch, v.Kind())
	}
	root, ok := tree.Root()
	if !ok {
		return merkle.ErrNotRehashed
	}
	c.stack.pushStrong(state.DigestCell(root))
	return nil
}

func opNew(c *context, tag uint64) error {
	if tag > 0xFF {
		return fmt.Errorf("%w: tag %d", state.ErrInvalidKind, tag)
	}
	v, err := state.NewOfKind(byte(tag))
	if err != nil {
		return err
	}
	if err := c.useCompute(newCost(c.model, v.Kind())); err != nil {
		return err
	}
	c.stack.pushStrong(v)
	return nil
}

// --- Stack operations ---

func opPush(c *context, v state.StateValue, strength state.Strength) {
	if v == nil {
		v = state.Null{}
	}
	c.stack.push(slot{value: state.VmValue{Value: v, Strength: strength}})
}

func opDup(c *context, n uint64) error {
	if err := c.useCompute(c.model.DupCoeffArg.Mul(n)); err != nil {
		return err
	}
	c.stack.dup(int(n))
	return nil
}

func opSwap(c *context, n uint64) error {
	if n == 0 {
		return fmt.Errorf("%w: swap distance must be positive", ErrInvalidArgument)
	}
	if err := c.useCompute(c.model.SwapCoeffArg.Mul(n)); err != nil {
		return err
	}
	c.stack.swap(int(n))
	return nil
}

// --- Results ---

// opPopeq hands the top of the stack to the result mode. Values read from
// the initial state are charged as reads, unless the instruction is cached.
func opPopeq(c *context, expected state.StateValue, cached bool) error {
	top := c.stack.pop()
	size := state.DataSize(top.value.Value)
	if err := c.useCompute(c.model.PopeqCoeffValueSize.Mul(size)); err != nil {
		return err
	}
	if top.key != nil {
		if cached {
			if !c.cache.Visit(top.key) {
				return fmt.Errorf("%w: %v", ErrCacheMiss, top.key)
			}
		} else {
			if err := c.useRead(c.model.ReadConstant.Add(c.model.ReadCoeffValueSize.Mul(size))); err != nil {
				return err
			}
		}
	}
	event, err := c.mode.Read(top.value.Value, expected)
	if err != nil {
		return err
	}
	c.emit(event)
	return nil
}

// opLog emits the top of the stack as an event. Logged data is ephemeral, so
// it is charged as written and deleted at the same time.
func opLog(c *context) error {
	v := c.stack.pop().value.Value
	_, size, err := state.ToNodeList(v, state.MaxLogSize)
	if err != nil {
		return err
	}
	err = c.charge(cost.RunningCost{
		ComputeTime:  c.model.LogCoeffValueSize.Mul(size),
		BytesWritten: size,
		BytesDeleted: size,
	})
	if err != nil {
		return err
	}
	c.emit(c.mode.Log(v))
	return nil
}

// --- Cells ---

func opConcat(c *context, bound uint64, cached bool) error {
	bSlot := c.stack.pop()
	aSlot := c.stack.pop()
	a, err := state.AsCell(aSlot.value.Value)
	if err != nil {
		return err
	}
	b, err := state.AsCell(bSlot.value.Value)
	if err != nil {
		return err
	}
	lenA, lenB := uint64(len(a)), uint64(len(b))
	if lenA > bound || lenB > bound || lenA+lenB > bound {
		return fmt.Errorf("%w: concatenating %d and %d bytes, bound %d", ErrCellBoundExceeded, lenA, lenB, bound)
	}
	if err := c.useCompute(c.model.ConcatCoeffValueSize.Mul(lenA + lenB)); err != nil {
		return err
	}
	for _, operand := range []slot{aSlot, bSlot} {
		if operand.key == nil {
			continue
		}
		if cached {
			if !c.cache.Visit(operand.key) {
				return fmt.Errorf("%w: %v", ErrCacheMiss, operand.key)
			}
		} else {
			size := cellSize(operand.value.Value)
			if err := c.useRead(c.model.ReadCoeffValueSize.Mul(size)); err != nil {
				return err
			}
		}
	}
	res := make(state.Cell, 0, lenA+lenB)
	res = append(append(res, a...), b...)
	c.stack.pushStrong(res)
	return nil
}

// --- Containers ---

// access charges a single access of a container with the given key and
// records it in the cache. Cached instructions require the accessed position
// to have been visited before and are not charged for reading it.
func (c *context) access(costs accessCosts, container slot, length uint64, key state.Cell, readSize uint64, cached bool) error {
	if err := c.useCompute(costs.compute(key, length)); err != nil {
		return err
	}
	position := container.key.Child(key)
	hit := c.cache.Visit(position)
	if cached {
		if !hit {
			return fmt.Errorf("%w: %v", ErrCacheMiss, position)
		}
		return nil
	}
	return c.useRead(readCost(c.model, length, readSize))
}

// popContainer removes a key and the container below it from the stack.
func popContainer(c *context) (slot, state.Container, state.Cell, error) {
	key, err := popCell(c)
	if err != nil {
		return slot{}, nil, nil, err
	}
	s := c.stack.pop()
	container, err := state.AsContainer(s.value.Value)
	if err != nil {
		return slot{}, nil, nil, err
	}
	return s, container, key, nil
}

func opMember(c *context) error {
	s, container, key, err := popContainer(c)
	if err != nil {
		return err
	}
	found, err := container.Contains(key)
	if err != nil {
		return err
	}
	if err := c.access(memberCosts(c.model), s, container.Len(), key, 0, false); err != nil {
		return err
	}
	c.stack.pushStrong(state.CellFromBool(found))
	return nil
}

func opRem(c *context, cached bool) error {
	s, container, key, err := popContainer(c)
	if err != nil {
		return err
	}
	old, err := container.Get(key)
	if err != nil {
		return err
	}
	if err := c.access(remCosts(c.model), s, container.Len(), key, cellSize(old), cached); err != nil {
		return err
	}
	res, err := container.Remove(key)
	if err != nil {
		return err
	}
	if err := c.charge(cost.RunningCost{BytesDeleted: state.DataSize(old)}); err != nil {
		return err
	}
	c.stack.push(slot{value: state.NewStrong(res), key: s.key})
	return nil
}

// opIdx descends into the container below the keys taken from the stack
// following the given path. The result retains the strength of the
// container. Path preserving variants push each traversed container and key
// before the result.
func opIdx(c *context, path []vm.Key, cached, preserve bool) error {
	stackKeys := make([]slot, 0, len(path))
	for _, k := range path {
		if k.FromStack {
			stackKeys = append(stackKeys, slot{})
		}
	}
	for i := len(stackKeys) - 1; i >= 0; i-- {
		stackKeys[i] = c.stack.pop()
	}
	cur := c.stack.pop()

	for _, k := range path {
		keySlot := slot{value: state.NewStrong(k.Literal)}
		if k.FromStack {
			keySlot, stackKeys = stackKeys[0], stackKeys[1:]
		}
		key, err := state.AsCell(keySlot.value.Value)
		if err != nil {
			return err
		}
		container, err := state.AsContainer(cur.value.Value)
		if err != nil {
			return err
		}
		child, err := container.Get(key)
		if err != nil {
			return err
		}
		if err := c.access(idxCosts(c.model), cur, container.Len(), key, cellSize(child), cached); err != nil {
			return err
		}
		if preserve {
			c.stack.push(cur)
			c.stack.push(keySlot)
		}
		cur = slot{
			value: state.VmValue{Value: child, Strength: cur.value.Strength},
			key:   cur.key.Child(key),
		}
	}
	c.stack.push(cur)
	return nil
}

// opIns consumes a value and the given number of (container, key) pairs
// below it, as left by a path preserving index instruction, and inserts the
// value into the innermost container. The modified containers are inserted
// into their parents up to the outermost container, which is pushed.
func opIns(c *context, levels uint64, cached bool) error {
	if levels == 0 {
		return fmt.Errorf("%w: insertion requires at least one level", ErrInvalidArgument)
	}
	value := c.stack.pop()
	containers := make([]slot, levels)
	keys := make([]state.Cell, levels)
	for i := int(levels) - 1; i >= 0; i-- {
		key, err := popCell(c)
		if err != nil {
			return err
		}
		keys[i] = key
		containers[i] = c.stack.pop()
	}

	cur := value.value.Value
	for i := int(levels) - 1; i >= 0; i-- {
		container, err := state.AsContainer(containers[i].value.Value)
		if err != nil {
			return err
		}
		old, err := container.Get(keys[i])
		if err != nil {
			return err
		}
		if err := c.access(insCosts(c.model), containers[i], container.Len(), keys[i], cellSize(old), cached); err != nil {
			return err
		}
		res, err := container.Insert(keys[i], cur)
		if err != nil {
			return err
		}
		cur = res
	}
	if err := c.charge(cost.RunningCost{BytesWritten: state.DataSize(value.value.Value)}); err != nil {
		return err
	}
	c.stack.push(slot{value: state.NewStrong(cur), key: containers[0].key})
	return nil
}
