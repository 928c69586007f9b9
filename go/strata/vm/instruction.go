// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package vm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Fantom-foundation/Strata/go/state"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Key is an element of the path of an indexing instruction. It is either a
// literal cell or taken from the stack.
type Key struct {
	FromStack bool
	Literal   state.Cell
}

func LiteralKey(key state.Cell) Key {
	return Key{Literal: key}
}

func StackKey() Key {
	return Key{FromStack: true}
}

func (k Key) String() string {
	if k.FromStack {
		return "<stack>"
	}
	return fmt.Sprintf("0x%x", []byte(k.Literal))
}

// Instruction is a single step of a program.
//
// Arg is the immediate argument of NOOP, BRANCH, JMP (number of instructions
// to skip), ADDI, SUBI, CONCAT, CONCATC (maximum cell size), DUP, SWAP
// (stack distance), INS, INSC (number of nesting levels) and NEW (kind
// tag). Value is the literal pushed by PUSH and PUSHS and the expected result
// of POPEQ and POPEQC. Path lists the keys of the IDX family.
type Instruction struct {
	Op    OpCode
	Arg   uint64
	Value state.StateValue
	Path  []Key
}

// StackKeys returns the number of path keys taken from the stack.
func (i Instruction) StackKeys() int {
	res := 0
	for _, k := range i.Path {
		if k.FromStack {
			res++
		}
	}
	return res
}

func (i Instruction) String() string {
	switch i.Op {
	case NOOP, BRANCH, JMP, ADDI, SUBI, CONCAT, CONCATC, DUP, SWAP, INS, INSC, NEW:
		return fmt.Sprintf("%v %d", i.Op, i.Arg)
	case PUSH, PUSHS, POPEQ, POPEQC:
		return fmt.Sprintf("%v %v", i.Op, i.Value)
	case IDX, IDXC, IDXP, IDXPC:
		keys := make([]string, len(i.Path))
		for j, k := range i.Path {
			keys[j] = k.String()
		}
		return fmt.Sprintf("%v [%s]", i.Op, strings.Join(keys, ", "))
	}
	return i.Op.String()
}

type jsonKey struct {
	Stack bool          `json:"stack,omitempty"`
	Key   hexutil.Bytes `json:"key,omitempty"`
}

type jsonInstruction struct {
	Op    string          `json:"op"`
	Arg   uint64          `json:"arg,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
	Path  []jsonKey       `json:"path,omitempty"`
}

func (i Instruction) MarshalJSON() ([]byte, error) {
	res := jsonInstruction{Op: strings.ToLower(i.Op.String()), Arg: i.Arg}
	if i.Value != nil {
		value, err := state.MarshalValue(i.Value)
		if err != nil {
			return nil, err
		}
		res.Value = value
	}
	for _, k := range i.Path {
		res.Path = append(res.Path, jsonKey{Stack: k.FromStack, Key: hexutil.Bytes(k.Literal)})
	}
	return json.Marshal(res)
}

func (i *Instruction) UnmarshalJSON(data []byte) error {
	var in jsonInstruction
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	op, err := ParseOpCode(in.Op)
	if err != nil {
		return err
	}
	res := Instruction{Op: op, Arg: in.Arg}
	if len(in.Value) > 0 {
		if res.Value, err = state.UnmarshalValue(in.Value); err != nil {
			return fmt.Errorf("invalid value of %v: %w", op, err)
		}
	}
	for _, k := range in.Path {
		if k.Stack {
			res.Path = append(res.Path, StackKey())
		} else {
			res.Path = append(res.Path, LiteralKey(state.Cell(k.Key)))
		}
	}
	*i = res
	return nil
}
