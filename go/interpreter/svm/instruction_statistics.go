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
	"sort"
	"strings"
	"sync"

	"github.com/Fantom-foundation/Strata/go/strata/vm"
)

// statisticRunner is a runner that collects statistics about the sequence of
// instructions executed by programs. Statistics of all runs are accumulated
// until the runner is reset.
type statisticRunner struct {
	mutex sync.Mutex
	stats *statistics
}

func (s *statisticRunner) run(c *context) (status, error) {
	stats := statsCollector{stats: newStatistics()}
	status := statusRunning
	var executionError error
	for status == statusRunning {
		if c.pc < len(c.program) && !c.stepLimitReached() {
			stats.nextOp(c.program[c.pc].Op)
		}
		status, executionError = step(c)
		if executionError != nil {
			break
		}
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.stats == nil {
		s.stats = newStatistics()
	}
	s.stats.insert(stats.stats)
	return status, executionError
}

// getSummary returns a summary of the collected statistics in a
// human-readable format.
func (s *statisticRunner) getSummary() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.stats == nil {
		s.stats = newStatistics()
	}
	return s.stats.print()
}

// reset clears the collected statistics.
func (s *statisticRunner) reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.stats = newStatistics()
}

// statistics counts executed instructions and sequences of up to four
// consecutive instructions. Sequences are packed into a single key, one byte
// per instruction.
type statistics struct {
	count       uint64
	singleCount map[uint32]uint64
	pairCount   map[uint32]uint64
	tripleCount map[uint32]uint64
	quadCount   map[uint32]uint64
}

func newStatistics() *statistics {
	return &statistics{
		singleCount: map[uint32]uint64{},
		pairCount:   map[uint32]uint64{},
		tripleCount: map[uint32]uint64{},
		quadCount:   map[uint32]uint64{},
	}
}

// insert adds the counts of src to the receiver.
func (s *statistics) insert(src *statistics) {
	s.count += src.count
	for k, v := range src.singleCount {
		s.singleCount[k] += v
	}
	for k, v := range src.pairCount {
		s.pairCount[k] += v
	}
	for k, v := range src.tripleCount {
		s.tripleCount[k] += v
	}
	for k, v := range src.quadCount {
		s.quadCount[k] += v
	}
}

// print renders the step count and the five most frequent instructions and
// instruction sequences of each length, together with their share of all
// executed steps.
func (s *statistics) print() string {
	type entry struct {
		value uint32
		count uint64
	}

	getTopN := func(data map[uint32]uint64, n int) []entry {
		list := make([]entry, 0, len(data))
		for k, c := range data {
			list = append(list, entry{k, c})
		}
		sort.Slice(list, func(i, j int) bool {
			if list[i].count == list[j].count {
				return list[i].value < list[j].value
			}
			return list[i].count > list[j].count
		})
		if len(list) < n {
			return list
		}
		return list[0:n]
	}

	sequence := func(value uint32, length int) string {
		ops := make([]string, length)
		for i := range ops {
			ops[i] = fmt.Sprintf("%-10v", vm.OpCode(value>>(8*(length-i-1))))
		}
		return strings.Join(ops, "")
	}

	builder := strings.Builder{}
	write := func(format string, args ...interface{}) {
		builder.WriteString(fmt.Sprintf(format, args...))
	}

	write("\n----- Statistics ------\n")
	write("\nSteps: %d\n", s.count)
	sections := []struct {
		name   string
		length int
		data   map[uint32]uint64
	}{
		{"Singles", 1, s.singleCount},
		{"Pairs", 2, s.pairCount},
		{"Triples", 3, s.tripleCount},
		{"Quads", 4, s.quadCount},
	}
	for _, section := range sections {
		write("\n%s:\n", section.name)
		for _, e := range getTopN(section.data, 5) {
			write("\t%-40s: %d (%.2f%%)\n", sequence(e.value, section.length), e.count, float32(e.count*100)/float32(s.count))
		}
	}
	write("\n")

	return builder.String()
}

// statsCollector records the instructions of a single run. It remembers the
// last three instructions to count the sequences ending in the next one.
type statsCollector struct {
	stats *statistics

	last       uint32
	secondLast uint32
	thirdLast  uint32
	seen       int
}

func (s *statsCollector) nextOp(op vm.OpCode) {
	cur := uint32(op)
	s.stats.count++
	s.stats.singleCount[cur]++
	if s.seen >= 1 {
		s.stats.pairCount[s.last<<8|cur]++
	}
	if s.seen >= 2 {
		s.stats.tripleCount[s.secondLast<<16|s.last<<8|cur]++
	}
	if s.seen >= 3 {
		s.stats.quadCount[s.thirdLast<<24|s.secondLast<<16|s.last<<8|cur]++
	}
	s.seen++
	s.last, s.secondLast, s.thirdLast = cur, s.last, s.secondLast
}
