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
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"pgregory.net/rand"

	cliUtils "github.com/Fantom-foundation/Strata/go/driver/cli"
	"github.com/Fantom-foundation/Strata/go/cost"
	"github.com/Fantom-foundation/Strata/go/strata"
	"github.com/Fantom-foundation/Strata/go/strata/gen"
	"github.com/dsnet/golib/unitconv"
	"github.com/urfave/cli/v2"
)

var programsFlag = &cli.IntFlag{
	Name:  "programs",
	Usage: "number of random programs to run",
	Value: 1000,
}

var lengthFlag = &cli.IntFlag{
	Name:  "length",
	Usage: "minimum number of instructions of the random programs",
	Value: 32,
}

var BenchCmd = cliUtils.AddCommonFlags(cli.Command{
	Action: doBench,
	Name:   "bench",
	Usage:  "Runs seeded random programs and summarizes their cost",
	Flags: []cli.Flag{
		cliUtils.InterpreterFlag,
		cliUtils.CostModelFlag,
		cliUtils.SeedFlag,
		cliUtils.JobsFlag,
		programsFlag,
		lengthFlag,
	},
})

func doBench(context *cli.Context) error {
	model, err := cliUtils.CostModelFlag.Fetch(context)
	if err != nil {
		return err
	}
	name := cliUtils.InterpreterFlag.Fetch(context)
	interpreter, err := newInterpreter(name, model)
	if err != nil {
		return err
	}

	seed := cliUtils.SeedFlag.Fetch(context)
	jobs := cliUtils.JobsFlag.Fetch(context)
	numPrograms := context.Int(programsFlag.Name)
	generator := gen.NewProgramGenerator()
	generator.SetLength(context.Int(lengthFlag.Name))

	slog.Info("starting benchmark", "interpreter", name, "seed", seed, "programs", numPrograms, "jobs", jobs)

	start := time.Now()
	summary, err := runPrograms(interpreter, generator, seed, numPrograms, jobs)
	if err != nil {
		return err
	}
	duration := time.Since(start)

	rate := float64(summary.steps) / duration.Seconds()
	fmt.Fprintf(context.App.Writer, "Executed %d programs with %d steps in %v (~%s steps per second)\n",
		numPrograms, summary.steps, duration.Round(time.Millisecond), unitconv.FormatPrefix(rate, unitconv.SI, 0))
	fmt.Fprintf(context.App.Writer, "Total cost: read %s, compute %s, written %d bytes, deleted %d bytes\n",
		summary.cost.ReadTime.Humanize(2), summary.cost.ComputeTime.Humanize(2),
		summary.cost.BytesWritten, summary.cost.BytesDeleted)
	fmt.Fprintf(context.App.Writer, "Total cost checksum: %v\n", summary.cost)
	return nil
}

type benchSummary struct {
	steps uint64
	cost  cost.RunningCost
}

// runPrograms generates and runs the given number of programs using the given
// number of parallel jobs. The i-th program is generated from a random
// source seeded with the seed and i, so the summary does not depend on the
// number of jobs.
func runPrograms(
	interpreter strata.Interpreter,
	generator *gen.ProgramGenerator,
	seed uint64,
	numPrograms int,
	jobs int,
) (benchSummary, error) {
	var (
		next    atomic.Int64
		mutex   sync.Mutex
		summary benchSummary
		errs    []error
		wg      sync.WaitGroup
	)
	for i := 0; i < max(jobs, 1); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				index := next.Add(1) - 1
				if index >= int64(numPrograms) {
					return
				}
				program := generator.Generate(rand.New(seed, uint64(index)))
				res, err := interpreter.Run(strata.Parameters{Program: program})

				mutex.Lock()
				if err != nil {
					errs = append(errs, fmt.Errorf("program %d: %w", index, err))
				} else {
					summary.steps += uint64(res.Steps)
					summary.cost = summary.cost.Add(res.Cost)
				}
				mutex.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(errs) > 0 {
		slog.Error("benchmark programs failed", "failures", len(errs))
		return summary, errors.Join(errs...)
	}
	return summary, nil
}
