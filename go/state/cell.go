// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package state

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Cell is the scalar value kind, an arbitrary byte string. Integers are
// encoded in little-endian order with trailing zero bytes stripped, so zero
// and false are both encoded by the empty cell.
type Cell []byte

func (Cell) Kind() Kind  { return KindCell }
func (Cell) stateValue() {}

var (
	False = Cell{}
	True  = Cell{1}
)

func CellFromUint64(v uint64) Cell {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	n := 8
	for n > 0 && buf[n-1] == 0 {
		n--
	}
	return Cell(buf[:n])
}

func CellFromBool(b bool) Cell {
	if b {
		return True
	}
	return False
}

// Uint64 decodes the cell as an integer. Only the canonical encoding produced
// by CellFromUint64 is accepted.
func (c Cell) Uint64() (uint64, error) {
	if len(c) > 8 || (len(c) > 0 && c[len(c)-1] == 0) {
		return 0, fmt.Errorf("%w: %x", ErrNotUint64, []byte(c))
	}
	var buf [8]byte
	copy(buf[:], c)
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func (c Cell) Bool() (bool, error) {
	switch {
	case len(c) == 0:
		return false, nil
	case len(c) == 1 && c[0] == 1:
		return true, nil
	}
	return false, fmt.Errorf("%w: %x", ErrNotBoolean, []byte(c))
}

func (c Cell) Equal(other Cell) bool {
	return bytes.Equal(c, other)
}

func (c Cell) String() string {
	return fmt.Sprintf("cell(0x%x)", []byte(c))
}
