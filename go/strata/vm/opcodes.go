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
	"fmt"
	"strings"
)

type OpCode byte

const (
	// Control flow
	NOOP   OpCode = 0x00
	BRANCH OpCode = 0x01
	JMP    OpCode = 0x02
	CKPT   OpCode = 0x03

	// Comparison and logic
	LT  OpCode = 0x10
	EQ  OpCode = 0x11
	AND OpCode = 0x12
	OR  OpCode = 0x13
	NEG OpCode = 0x14

	// Arithmetic
	ADD  OpCode = 0x18
	SUB  OpCode = 0x19
	ADDI OpCode = 0x1A
	SUBI OpCode = 0x1B

	// Introspection and construction
	TYPE OpCode = 0x20
	SIZE OpCode = 0x21
	ROOT OpCode = 0x22
	NEW  OpCode = 0x23

	// Stack operations
	PUSH  OpCode = 0x30
	PUSHS OpCode = 0x31
	POP   OpCode = 0x32
	DUP   OpCode = 0x33
	SWAP  OpCode = 0x34

	// Results
	POPEQ  OpCode = 0x38
	POPEQC OpCode = 0x39
	LOG    OpCode = 0x3A

	// Cells
	CONCAT  OpCode = 0x40
	CONCATC OpCode = 0x41

	// Containers
	MEMBER OpCode = 0x50
	REM    OpCode = 0x51
	REMC   OpCode = 0x52
	IDX    OpCode = 0x53
	IDXC   OpCode = 0x54
	IDXP   OpCode = 0x55
	IDXPC  OpCode = 0x56
	INS    OpCode = 0x57
	INSC   OpCode = 0x58
)

var opCodeNames = map[OpCode]string{
	NOOP:    "NOOP",
	BRANCH:  "BRANCH",
	JMP:     "JMP",
	CKPT:    "CKPT",
	LT:      "LT",
	EQ:      "EQ",
	AND:     "AND",
	OR:      "OR",
	NEG:     "NEG",
	ADD:     "ADD",
	SUB:     "SUB",
	ADDI:    "ADDI",
	SUBI:    "SUBI",
	TYPE:    "TYPE",
	SIZE:    "SIZE",
	ROOT:    "ROOT",
	NEW:     "NEW",
	PUSH:    "PUSH",
	PUSHS:   "PUSHS",
	POP:     "POP",
	DUP:     "DUP",
	SWAP:    "SWAP",
	POPEQ:   "POPEQ",
	POPEQC:  "POPEQC",
	LOG:     "LOG",
	CONCAT:  "CONCAT",
	CONCATC: "CONCATC",
	MEMBER:  "MEMBER",
	REM:     "REM",
	REMC:    "REMC",
	IDX:     "IDX",
	IDXC:    "IDXC",
	IDXP:    "IDXP",
	IDXPC:   "IDXPC",
	INS:     "INS",
	INSC:    "INSC",
}

var opCodesByName = func() map[string]OpCode {
	res := make(map[string]OpCode, len(opCodeNames))
	for op, name := range opCodeNames {
		res[name] = op
	}
	return res
}()

func (op OpCode) String() string {
	if name, found := opCodeNames[op]; found {
		return name
	}
	return fmt.Sprintf("op(0x%02X)", byte(op))
}

// IsValid reports whether op is part of the instruction set.
func (op OpCode) IsValid() bool {
	_, found := opCodeNames[op]
	return found
}

// IsCached reports whether op is the cached variant of an instruction. Cached
// variants may only access state visited before and are not charged for
// reading it.
func (op OpCode) IsCached() bool {
	switch op {
	case POPEQC, CONCATC, REMC, IDXC, IDXPC, INSC:
		return true
	}
	return false
}

// ParseOpCode resolves the case-insensitive name of an instruction.
func ParseOpCode(name string) (OpCode, error) {
	if op, found := opCodesByName[strings.ToUpper(name)]; found {
		return op, nil
	}
	return 0, fmt.Errorf("unknown instruction %q", name)
}

// ValidOpCodes returns all instructions in ascending order.
func ValidOpCodes() []OpCode {
	res := make([]OpCode, 0, len(opCodeNames))
	for i := 0; i < 256; i++ {
		if op := OpCode(i); op.IsValid() {
			res = append(res, op)
		}
	}
	return res
}
