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

	"github.com/Fantom-foundation/Strata/go/common"
	"github.com/Fantom-foundation/Strata/go/state"
)

const ErrReadMismatch = common.ConstError("read value does not match expected result")

// VerifyMode replays a previously gathered transcript. Values read by POPEQ
// must match the expected results; only log events are recorded.
type VerifyMode struct{}

func (VerifyMode) Read(value, expected state.StateValue) (*Event, error) {
	if expected == nil || !state.Equal(value, expected) {
		return nil, fmt.Errorf("%w: got %v, expected %v", ErrReadMismatch, value, expected)
	}
	return nil, nil
}

func (VerifyMode) Log(value state.StateValue) *Event {
	return &Event{Kind: EventLog, Value: value}
}

// GatherMode records a transcript of a run. Expected results are ignored and
// every read value is recorded as an event along with the log events.
type GatherMode struct{}

func (GatherMode) Read(value, _ state.StateValue) (*Event, error) {
	return &Event{Kind: EventRead, Value: value}, nil
}

func (GatherMode) Log(value state.StateValue) *Event {
	return &Event{Kind: EventLog, Value: value}
}
