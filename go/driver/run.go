// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	cliUtils "github.com/Fantom-foundation/Strata/go/driver/cli"
	"github.com/Fantom-foundation/Strata/go/cost"
	"github.com/Fantom-foundation/Strata/go/state"
	"github.com/Fantom-foundation/Strata/go/strata"
	"github.com/Fantom-foundation/Strata/go/strata/vm"
	"github.com/urfave/cli/v2"
)

var verifyFlag = &cli.BoolFlag{
	Name:  "verify",
	Usage: "check values consumed by POPEQ against the expected results of the program",
}

var RunCmd = cliUtils.AddCommonFlags(cli.Command{
	Action:    doRun,
	Name:      "run",
	Usage:     "Runs a program against an initial stack",
	ArgsUsage: "<program.json> [<stack.json>]",
	Flags: []cli.Flag{
		cliUtils.InterpreterFlag,
		cliUtils.CostModelFlag,
		cliUtils.ReadLimitFlag,
		cliUtils.ComputeLimitFlag,
		cliUtils.StepLimitFlag,
		verifyFlag,
	},
})

func doRun(context *cli.Context) error {
	if context.Args().Len() < 1 || context.Args().Len() > 2 {
		return fmt.Errorf("expected a program file and an optional stack file, got %d arguments", context.Args().Len())
	}

	var program []vm.Instruction
	if err := readJson(context.Args().Get(0), &program); err != nil {
		return err
	}
	var stack []state.VmValue
	if context.Args().Len() > 1 {
		if err := readJson(context.Args().Get(1), &stack); err != nil {
			return err
		}
	}

	model, err := cliUtils.CostModelFlag.Fetch(context)
	if err != nil {
		return err
	}
	name := cliUtils.InterpreterFlag.Fetch(context)
	interpreter, err := newInterpreter(name, model)
	if err != nil {
		return err
	}

	params := strata.Parameters{
		Program:   program,
		Stack:     stack,
		GasLimit:  cliUtils.FetchGasLimit(context),
		StepLimit: cliUtils.StepLimitFlag.Fetch(context),
	}
	if context.Bool(verifyFlag.Name) {
		params.Mode = strata.VerifyMode{}
	}

	slog.Info("running program", "interpreter", name, "instructions", len(program), "stack", len(stack))
	res, err := interpreter.Run(params)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	slog.Info("run finished", "status", res.Status, "steps", res.Steps,
		"read", res.Cost.ReadTime.Humanize(2), "compute", res.Cost.ComputeTime.Humanize(2))

	summary, err := newReport(res)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(context.App.Writer, string(out))
	return err
}

func newInterpreter(name string, model *cost.CostModel) (strata.Interpreter, error) {
	if model == nil {
		return strata.NewInterpreter(name)
	}
	return strata.NewInterpreter(name, model)
}

func readJson(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// report is the JSON summary of a run printed by the run command.
type report struct {
	Status string          `json:"status"`
	Steps  int             `json:"steps"`
	Cost   costReport      `json:"cost"`
	Stack  []state.VmValue `json:"stack"`
	Events []eventReport   `json:"events"`
}

type costReport struct {
	cost.RunningCost
	Summary string `json:"summary"`
}

type eventReport struct {
	Kind  string          `json:"kind"`
	Value json.RawMessage `json:"value"`
}

func newReport(res strata.Result) (report, error) {
	stack := res.Stack
	if stack == nil {
		stack = []state.VmValue{}
	}
	events := make([]eventReport, 0, len(res.Events))
	for _, e := range res.Events {
		value, err := state.MarshalValue(e.Value)
		if err != nil {
			return report{}, err
		}
		events = append(events, eventReport{Kind: e.Kind.String(), Value: value})
	}
	return report{
		Status: res.Status.String(),
		Steps:  res.Steps,
		Cost: costReport{
			RunningCost: res.Cost,
			Summary: fmt.Sprintf("read %s, compute %s",
				res.Cost.ReadTime.Humanize(2), res.Cost.ComputeTime.Humanize(2)),
		},
		Stack:  stack,
		Events: events,
	}, nil
}
