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
	"strings"
	"testing"

	"github.com/Fantom-foundation/Strata/go/state"
	"github.com/Fantom-foundation/Strata/go/strata"
	"github.com/Fantom-foundation/Strata/go/strata/vm"
)

func TestStatisticsRunner_RunWithStatistics(t *testing.T) {
	statsRunner := &statisticRunner{
		stats: newStatistics(),
	}
	config := Config{
		runner: statsRunner,
	}
	_, err := run(config, strata.Parameters{
		Program: []vm.Instruction{{Op: vm.PUSHS}, {Op: vm.POP}},
	})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if got := statsRunner.stats.singleCount[uint32(vm.POP)]; got != 1 {
		t.Errorf("unexpected statistics: want 1 pop, got %v", got)
	}
	if got := statsRunner.stats.pairCount[uint32(vm.PUSHS)<<8|uint32(vm.POP)]; got != 1 {
		t.Errorf("unexpected statistics: want 1 push-pop pair, got %v", got)
	}
}

func TestStatisticsRunner_FailedRunsAreCounted(t *testing.T) {
	statsRunner := &statisticRunner{}
	_, err := run(Config{runner: statsRunner}, strata.Parameters{
		Program: []vm.Instruction{{Op: vm.PUSHS}, {Op: vm.SWAP, Arg: 0}, {Op: vm.POP}},
	})
	if err == nil {
		t.Fatalf("expected an error")
	}
	if want, got := uint64(2), statsRunner.stats.count; want != got {
		t.Errorf("unexpected number of counted steps, want %d, got %d", want, got)
	}
}

func TestStatisticsRunner_DumpProfilePrintsExpectedOutput(t *testing.T) {
	line := func(ops ...vm.OpCode) string {
		res := ""
		for _, op := range ops {
			res += fmt.Sprintf("%-10v", op)
		}
		return fmt.Sprintf("%-40s: ", res)
	}

	tests := map[string]struct {
		program      []vm.Instruction
		findInOutput []string
	}{
		"singles": {[]vm.Instruction{{Op: vm.NOOP}},
			[]string{
				"Steps: 1",
				line(vm.NOOP) + "1 (100.00%)",
			}},
		"pairs": {[]vm.Instruction{{Op: vm.PUSHS}, {Op: vm.POP}},
			[]string{
				"Steps: 2",
				line(vm.PUSHS) + "1 (50.00%)",
				line(vm.POP) + "1 (50.00%)",
				line(vm.PUSHS, vm.POP) + "1"}},
		"triples": {[]vm.Instruction{{Op: vm.PUSHS}, {Op: vm.PUSHS}, {Op: vm.EQ}},
			[]string{
				"Steps: 3",
				line(vm.PUSHS) + "2 (66.67%)",
				line(vm.EQ) + "1 (33.33%)",
				line(vm.PUSHS, vm.PUSHS, vm.EQ) + "1"}},
		"quads": {[]vm.Instruction{{Op: vm.PUSHS}, {Op: vm.PUSHS}, {Op: vm.PUSHS}, {Op: vm.POP}},
			[]string{
				"Steps: 4",
				line(vm.PUSHS) + "3 (75.00%)",
				line(vm.POP) + "1 (25.00%)",
				line(vm.PUSHS, vm.PUSHS, vm.PUSHS) + "1 (25.00%)",
				line(vm.PUSHS, vm.PUSHS, vm.POP) + "1 (25.00%)",
				line(vm.PUSHS, vm.PUSHS, vm.PUSHS, vm.POP) + "1 (25.00%)",
			}},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			statsRunner := &statisticRunner{
				stats: newStatistics(),
			}

			instance, err := NewVm(Config{
				runner: statsRunner,
			})
			if err != nil {
				t.Fatalf("Failed to create VM: %v", err)
			}
			instance.ResetProfile()
			_, err = instance.Run(strata.Parameters{Program: test.program})
			if err != nil {
				t.Fatalf("Failed to run program: %v", err)
			}

			out := statsRunner.getSummary()
			for _, s := range test.findInOutput {
				if !strings.Contains(out, s) {
					t.Errorf("did not find occurrences of %q in %v", s, out)
				}
			}
		})
	}
}

func TestStatisticsRunner_ResetProfileClearsStatistics(t *testing.T) {
	statsRunner := &statisticRunner{}
	instance, err := NewVm(Config{runner: statsRunner})
	if err != nil {
		t.Fatalf("Failed to create VM: %v", err)
	}
	params := strata.Parameters{
		Program: []vm.Instruction{{Op: vm.POPEQ}},
		Stack:   []state.VmValue{strong(u64(1))},
	}
	for i := 0; i < 3; i++ {
		if _, err := instance.Run(params); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if want, got := uint64(3), statsRunner.stats.singleCount[uint32(vm.POPEQ)]; want != got {
		t.Errorf("unexpected count, want %d, got %d", want, got)
	}
	instance.ResetProfile()
	if want, got := uint64(0), statsRunner.stats.count; want != got {
		t.Errorf("unexpected count after reset, want %d, got %d", want, got)
	}
}
