// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package cliUtils provides the flags shared by the driver commands.
package cliUtils

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"

	"github.com/Fantom-foundation/Strata/go/cost"
	"github.com/urfave/cli/v2"
)

type seedFlagType struct {
	cli.Uint64Flag
}

var SeedFlag = &seedFlagType{
	cli.Uint64Flag{
		Name:    "seed",
		Aliases: []string{"s"},
		Usage:   "seed for the random number generator",
	},
}

func (f *seedFlagType) Fetch(context *cli.Context) uint64 {
	return context.Uint64(f.Name)
}

type jobsFlagType struct {
	cli.IntFlag
}

var JobsFlag = &jobsFlagType{
	cli.IntFlag{
		Name:    "jobs",
		Aliases: []string{"j"},
		Usage:   "number of jobs run simultaneously",
		Value:   runtime.NumCPU(),
	},
}

func (f *jobsFlagType) Fetch(context *cli.Context) int {
	if jobs := context.Int(f.Name); jobs > 0 {
		return jobs
	}
	return runtime.NumCPU()
}

type interpreterFlagType struct {
	cli.StringFlag
}

var InterpreterFlag = &interpreterFlagType{
	cli.StringFlag{
		Name:    "interpreter",
		Aliases: []string{"i"},
		Usage:   "name of the registered interpreter to use",
		Value:   "svm",
	},
}

func (f *interpreterFlagType) Fetch(context *cli.Context) string {
	return context.String(f.Name)
}

type costModelFlagType struct {
	cli.StringFlag
}

var CostModelFlag = &costModelFlagType{
	cli.StringFlag{
		Name:      "cost-model",
		Usage:     "JSON file overriding coefficients of the default cost model",
		TakesFile: true,
	},
}

// Fetch loads the selected cost model. The result is nil if no file is
// given, in which case interpreters use their default model.
func (f *costModelFlagType) Fetch(context *cli.Context) (*cost.CostModel, error) {
	path := context.String(f.Name)
	if path == "" {
		return nil, nil
	}
	model, err := cost.LoadCostModel(path)
	if err != nil {
		return nil, err
	}
	return &model, nil
}

var ReadLimitFlag = &cli.Uint64Flag{
	Name:  "read-limit",
	Usage: "limit of the read time in picoseconds, 0 for no limit",
}

var ComputeLimitFlag = &cli.Uint64Flag{
	Name:  "compute-limit",
	Usage: "limit of the compute time in picoseconds, 0 for no limit",
}

// FetchGasLimit combines the read and compute limit flags. The result is nil
// if neither limit is set.
func FetchGasLimit(context *cli.Context) *cost.RunningCost {
	read := context.Uint64(ReadLimitFlag.Name)
	compute := context.Uint64(ComputeLimitFlag.Name)
	if read == 0 && compute == 0 {
		return nil
	}
	limit := cost.RunningCost{
		ReadTime:    cost.MaxCostDuration,
		ComputeTime: cost.MaxCostDuration,
	}
	if read != 0 {
		limit.ReadTime = cost.CostDuration(read)
	}
	if compute != 0 {
		limit.ComputeTime = cost.CostDuration(compute)
	}
	return &limit
}

type stepLimitFlagType struct {
	cli.IntFlag
}

var StepLimitFlag = &stepLimitFlagType{
	cli.IntFlag{
		Name:  "step-limit",
		Usage: "maximum number of executed instructions, 0 for no limit",
	},
}

func (f *stepLimitFlagType) Fetch(context *cli.Context) int {
	return max(context.Int(f.Name), 0)
}

type logLevelFlagType struct {
	cli.StringFlag
}

var LogLevelFlag = &logLevelFlagType{
	cli.StringFlag{
		Name:  "log-level",
		Usage: "verbosity of the driver log (debug, info, warn, error)",
		Value: "info",
	},
}

func (f *logLevelFlagType) Fetch(context *cli.Context) (slog.Level, error) {
	return ParseLevel(context.String(f.Name))
}

// ParseLevel converts a textual log level into a slog level. The name is not
// case-sensitive.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToUpper(level) {
	case "MAX", "ALL":
		return math.MinInt, nil
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid level: %s", level)
}

var commonFlags = []cli.Flag{
	cpuProfileFlag,
}

var cpuProfileFlag = &cli.StringFlag{
	Name:      "cpuprofile",
	Usage:     "store CPU profile in the provided filename",
	TakesFile: true,
}

func AddCommonFlags(command cli.Command) cli.Command {
	command.Flags = append(command.Flags, commonFlags...)

	action := command.Action
	command.Action = func(ctx *cli.Context) (err error) {

		if cpuprofileFilename := ctx.String(cpuProfileFlag.Name); cpuprofileFilename != "" {
			f, err := os.Create(cpuprofileFilename)
			if err != nil {
				return fmt.Errorf("could not create CPU profile: %w", err)
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				return fmt.Errorf("could not start CPU profile: %w", err)
			}
			defer pprof.StopCPUProfile()
		}

		return action(ctx)
	}
	return command
}
