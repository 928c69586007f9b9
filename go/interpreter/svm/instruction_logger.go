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
	"io"
)

// loggingRunner is a runner that logs every executed instruction to an
// io.Writer, along with the accumulated compute and read time and the top of
// the stack before the instruction. Nothing is logged if no writer is set.
type loggingRunner struct {
	log io.Writer
}

// newLogger creates a new logging runner that writes to the provided
// io.Writer.
func newLogger(writer io.Writer) loggingRunner {
	return loggingRunner{log: writer}
}

func (l loggingRunner) run(c *context) (status, error) {
	status := statusRunning
	var err error
	for status == statusRunning {
		// log format: <instruction>, <compute time>, <read time>, <top-of-stack>\n
		if c.pc < len(c.program) && !c.stepLimitReached() {
			top := "-empty-"
			if c.stack.len() > 0 {
				top = c.stack.peek().value.String()
			}
			if l.log != nil {
				_, err = fmt.Fprintf(l.log, "%v, %d, %d, %v\n", c.program[c.pc], c.cost.ComputeTime, c.cost.ReadTime, top)
				if err != nil {
					return status, err
				}
			}
		}
		status, err = step(c)
		if err != nil {
			return status, err
		}
	}
	return status, nil
}
