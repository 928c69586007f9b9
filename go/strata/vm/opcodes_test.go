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
	"strings"
	"testing"

	"github.com/Fantom-foundation/Strata/go/state"
)

func TestOpCode_NamesAreUniqueAndParsable(t *testing.T) {
	for _, op := range ValidOpCodes() {
		got, err := ParseOpCode(strings.ToLower(op.String()))
		if err != nil {
			t.Fatalf("failed to parse name of %v: %v", op, err)
		}
		if got != op {
			t.Errorf("name of %v resolves to %v", op, got)
		}
	}
	if want, got := 36, len(ValidOpCodes()); want != got {
		t.Errorf("unexpected number of instructions, wanted %d, got %d", want, got)
	}
}

func TestOpCode_UnknownOpCodes(t *testing.T) {
	op := OpCode(0xFF)
	if op.IsValid() {
		t.Errorf("0xFF should not be a valid instruction")
	}
	if want, got := "op(0xFF)", op.String(); want != got {
		t.Errorf("unexpected name, wanted %s, got %s", want, got)
	}
	if _, err := ParseOpCode("jumpdest"); err == nil {
		t.Errorf("expected an error for an unknown instruction")
	}
}

func TestOpCode_CachedVariants(t *testing.T) {
	cached := map[OpCode]bool{POPEQC: true, CONCATC: true, REMC: true, IDXC: true, IDXPC: true, INSC: true}
	for _, op := range ValidOpCodes() {
		if want, got := cached[op], op.IsCached(); want != got {
			t.Errorf("unexpected cache flag of %v, wanted %t, got %t", op, want, got)
		}
	}
}

func TestInstruction_ParseJson(t *testing.T) {
	input := `[
		{"op":"push","value":{"kind":"cell","uint":3}},
		{"op":"idxc","path":[{"key":"0x01"},{"stack":true}]},
		{"op":"dup","arg":2}
	]`
	var program []Instruction
	if err := json.Unmarshal([]byte(input), &program); err != nil {
		t.Fatal(err)
	}
	if len(program) != 3 {
		t.Fatalf("unexpected program length %d", len(program))
	}
	if program[0].Op != PUSH || !state.Equal(program[0].Value, state.CellFromUint64(3)) {
		t.Errorf("unexpected first instruction %v", program[0])
	}
	if want, got := "IDXC [0x01, <stack>]", program[1].String(); want != got {
		t.Errorf("unexpected second instruction, wanted %s, got %s", want, got)
	}
	if want, got := 1, program[1].StackKeys(); want != got {
		t.Errorf("unexpected number of stack keys, wanted %d, got %d", want, got)
	}
	if want, got := "DUP 2", program[2].String(); want != got {
		t.Errorf("unexpected third instruction, wanted %s, got %s", want, got)
	}

	data, err := json.Marshal(program)
	if err != nil {
		t.Fatal(err)
	}
	var restored []Instruction
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatal(err)
	}
	for i := range program {
		if want, got := program[i].String(), restored[i].String(); want != got {
			t.Errorf("instruction %d changed by encoding, wanted %s, got %s", i, want, got)
		}
	}
}

func TestInstruction_ParseJsonRejectsUnknownOps(t *testing.T) {
	var instruction Instruction
	if err := json.Unmarshal([]byte(`{"op":"call"}`), &instruction); err == nil {
		t.Errorf("expected an error for an unknown instruction")
	}
}
