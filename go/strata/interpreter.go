// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package strata

import (
	"fmt"

	"github.com/Fantom-foundation/Strata/go/cost"
	"github.com/Fantom-foundation/Strata/go/state"
	"github.com/Fantom-foundation/Strata/go/strata/vm"
)

//go:generate mockgen -source interpreter.go -destination interpreter_mock.go -package strata

// Interpreter is a component capable of executing state VM programs. To
// obtain an Interpreter instance, client code should use NewInterpreter()
// provided by the registry file in this package.
type Interpreter interface {
	// Run executes the program provided by the parameters against the given
	// initial stack. Any violation of the execution rules aborts the run with
	// an error, in which case the result is undefined; partial results are
	// never produced. Interpreters are required to be thread-safe, so
	// multiple runs may be conducted in parallel.
	Run(Parameters) (Result, error)
}

// Parameters summarizes the inputs of a single run.
type Parameters struct {
	Program []vm.Instruction
	// Stack is the initial stack, the last element being the top.
	Stack []state.VmValue
	// CostModel prices instructions. If nil, the default model is used.
	CostModel *cost.CostModel
	// GasLimit is an optional limit for the read and compute time of the run.
	GasLimit *cost.RunningCost
	// StepLimit is an optional limit on the number of executed instructions.
	// Zero means unlimited.
	StepLimit int
	// Mode interprets results and events. If nil, a GatherMode is used.
	Mode ResultMode
}

// Status distinguishes complete runs from runs truncated by a step limit.
type Status byte

const (
	StatusCompleted Status = iota
	StatusStepLimit
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusStepLimit:
		return "step limit reached"
	}
	return fmt.Sprintf("Status(%d)", byte(s))
}

// Result summarizes the outcome of a successful run.
type Result struct {
	Stack  []state.VmValue
	Events []Event
	Cost   cost.RunningCost
	Status Status
	// Steps is the number of executed instructions.
	Steps int
}

// EventKind enumerates the kinds of events emitted by a run.
type EventKind byte

const (
	EventLog EventKind = iota
	EventRead
)

func (k EventKind) String() string {
	switch k {
	case EventLog:
		return "log"
	case EventRead:
		return "read"
	}
	return fmt.Sprintf("EventKind(%d)", byte(k))
}

// Event is an observable effect of a run.
type Event struct {
	Kind  EventKind
	Value state.StateValue
}

func (e Event) String() string {
	return fmt.Sprintf("%v(%v)", e.Kind, e.Value)
}

// ResultMode determines how results read by POPEQ and values emitted by LOG
// are interpreted. Implementations return the event to be recorded, or nil if
// nothing shall be recorded.
type ResultMode interface {
	// Read is called with each value consumed by POPEQ or POPEQC and the
	// result the instruction expects. A non-nil error aborts the run.
	Read(value, expected state.StateValue) (*Event, error)
	// Log is called with each value emitted by LOG.
	Log(value state.StateValue) *Event
}
