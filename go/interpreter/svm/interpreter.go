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

	"github.com/Fantom-foundation/Strata/go/cache"
	"github.com/Fantom-foundation/Strata/go/cost"
	"github.com/Fantom-foundation/Strata/go/state"
	"github.com/Fantom-foundation/Strata/go/strata"
	"github.com/Fantom-foundation/Strata/go/strata/vm"
)

// status is enumeration of the execution state of an interpreter run.
type status byte

const (
	statusRunning   status = iota // < all fine, instructions are processed
	statusCompleted               // < the end of the program was reached
	statusStepLimit               // < execution stopped at the step limit
)

// context is the execution environment of an interpreter run. It contains
// the program, the cost model, the result mode and the internal execution
// state such as the program counter, the stack and the access cache. For
// each run, a new context is created.
type context struct {
	// Inputs
	params  strata.Parameters
	program []vm.Instruction
	model   *cost.CostModel
	mode    strata.ResultMode

	// Execution state
	pc     int
	steps  int
	cost   cost.RunningCost
	stack  *stack
	cache  *cache.Cache
	events []strata.Event

	// Precomputed data
	staticCosts *staticCosts
}

// charge adds the given cost to the accumulated cost of the run. An error is
// returned if the result exceeds the gas limit in either time dimension.
func (c *context) charge(amount cost.RunningCost) error {
	c.cost = c.cost.Add(amount)
	if c.params.GasLimit != nil && c.cost.Exceeds(*c.params.GasLimit) {
		return fmt.Errorf("%w: consumed %v, limit %v", ErrOutOfGas, c.cost, *c.params.GasLimit)
	}
	return nil
}

func (c *context) useCompute(d cost.CostDuration) error {
	return c.charge(cost.ComputeCost(d))
}

func (c *context) useRead(d cost.CostDuration) error {
	return c.charge(cost.ReadCost(d))
}

func (c *context) emit(event *strata.Event) {
	if event != nil {
		c.events = append(c.events, *event)
	}
}

func (c *context) stepLimitReached() bool {
	return c.params.StepLimit > 0 && c.steps >= c.params.StepLimit
}

// --- Interpreter ---

type runner interface {
	// run executes the program in the given context. The resulting status
	// is statusCompleted or statusStepLimit unless an error occurred.
	run(*context) (status, error)
}

func run(
	config Config,
	params strata.Parameters,
) (strata.Result, error) {
	if len(params.Stack) > maxStackSize {
		return strata.Result{}, fmt.Errorf("%w: initial stack of %d elements", ErrStackOverflow, len(params.Stack))
	}

	model := params.CostModel
	if model == nil {
		model = config.CostModel
	}
	if model == nil {
		defaultModel := cost.DefaultCostModel()
		model = &defaultModel
	}
	mode := params.Mode
	if mode == nil {
		mode = strata.GatherMode{}
	}

	// Set up execution context.
	var ctxt = context{
		params:      params,
		program:     params.Program,
		model:       model,
		mode:        mode,
		stack:       NewStack(),
		staticCosts: getStaticCosts(model),
	}
	defer ReturnStack(ctxt.stack)

	strengths := make([]state.Strength, len(params.Stack))
	for i, v := range params.Stack {
		strengths[i] = v.Strength
		if v.Value == nil {
			v.Value = state.Null{}
		}
		ctxt.stack.push(slot{value: v, key: cache.Root(i)})
	}
	ctxt.cache = cache.New(strengths)

	runner := config.runner
	if runner == nil {
		runner = vanillaRunner{}
	}
	status, err := runner.run(&ctxt)
	if err != nil {
		return strata.Result{}, err
	}

	return generateResult(status, &ctxt)
}

func generateResult(status status, ctxt *context) (strata.Result, error) {
	res := strata.Result{
		Stack:  ctxt.stack.values(),
		Events: ctxt.events,
		Cost:   ctxt.cost,
		Steps:  ctxt.steps,
	}
	switch status {
	case statusCompleted:
		for i, v := range res.Stack {
			if v.Strength == state.Weak {
				return strata.Result{}, fmt.Errorf("%w: stack position %d holds %v", ErrWeakStateReturned, i, v)
			}
		}
		res.Status = strata.StatusCompleted
		return res, nil
	case statusStepLimit:
		res.Status = strata.StatusStepLimit
		return res, nil
	default:
		return strata.Result{}, fmt.Errorf("unexpected error in interpreter, unknown status: %v", status)
	}
}

// --- Runners ---

// vanillaRunner is the default runner that executes the program without any
// additional features.
type vanillaRunner struct{}

func (r vanillaRunner) run(c *context) (status, error) {
	return steps(c, false)
}

// --- Execution ---

// step executes the instruction pointed to by the program counter.
func step(c *context) (status, error) {
	return steps(c, true)
}

// steps executes the program in the given context. If oneStepOnly is true,
// only the instruction pointed to by the program counter will be executed.
// steps returns the status of the execution and an error if the program
// yields any execution violation (i.e. out of gas, stack underflow, etc).
func steps(c *context, oneStepOnly bool) (status, error) {
	for {
		if c.pc >= len(c.program) {
			return statusCompleted, nil
		}
		if c.stepLimitReached() {
			return statusStepLimit, nil
		}

		instr := &c.program[c.pc]

		// Check stack boundary for every instruction
		if err := checkStackLimits(c.stack.len(), instr); err != nil {
			return statusRunning, wrapError(c, instr, err)
		}

		// Consume static cost of the instruction before execution
		if err := c.useCompute(c.staticCosts.get(instr.Op)); err != nil {
			return statusRunning, wrapError(c, instr, err)
		}

		if err := execute(c, instr); err != nil {
			return statusRunning, wrapError(c, instr, err)
		}
		c.steps++
		c.pc++

		if oneStepOnly {
			return statusRunning, nil
		}
	}
}

func wrapError(c *context, instr *vm.Instruction, err error) error {
	return fmt.Errorf("instruction %d (%v): %w", c.pc, instr, err)
}
