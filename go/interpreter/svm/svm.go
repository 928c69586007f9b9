// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package svm implements the state VM: a loop-free stack machine executing
// programs against contract state values and accounting for the resources
// they consume.
package svm

import (
	"fmt"
	"os"

	"github.com/Fantom-foundation/Strata/go/cost"
	"github.com/Fantom-foundation/Strata/go/strata"
)

// Registers the state VM as a possible interpreter implementation.
func init() {
	configs := map[string]Config{
		// This is the officially supported configuration to be used for
		// production purposes.
		"svm": {},

		// Prints a trace of every executed instruction to stderr.
		"svm-logging": {runner: newLogger(os.Stderr)},

		// Collects instruction statistics, see DumpProfile.
		"svm-stats": {runner: &statisticRunner{stats: newStatistics()}},
	}

	for name, config := range configs {
		name, config := name, config
		strata.MustRegisterInterpreterFactory(name, func(options any) (strata.Interpreter, error) {
			switch options := options.(type) {
			case nil:
				return NewVm(config)
			case *cost.CostModel:
				res := config
				res.CostModel = options
				return NewVm(res)
			}
			return nil, fmt.Errorf("unsupported configuration for %s: %T", name, options)
		})
	}
}

type Config struct {
	// CostModel is used for runs not providing a cost model. If nil, the
	// default cost model is used.
	CostModel *cost.CostModel
	runner    runner
}

type svm struct {
	config Config
}

func NewVm(config Config) (*svm, error) {
	if config.CostModel != nil {
		model := *config.CostModel
		config.CostModel = &model
	}
	return &svm{config: config}, nil
}

func (v *svm) Run(params strata.Parameters) (strata.Result, error) {
	return run(v.config, params)
}

// DumpProfile prints the collected instruction statistics, if this VM is
// configured to collect them.
func (v *svm) DumpProfile() {
	if statsRunner, ok := v.config.runner.(*statisticRunner); ok {
		fmt.Print(statsRunner.getSummary())
	}
}

func (v *svm) ResetProfile() {
	if statsRunner, ok := v.config.runner.(*statisticRunner); ok {
		statsRunner.reset()
	}
}
