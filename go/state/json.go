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
	"encoding/json"
	"fmt"

	"github.com/Fantom-foundation/Strata/go/merkle"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// jsonValue is the JSON representation of state values used by tooling.
// Cells may be given either as hex encoded bytes or as an integer.
type jsonValue struct {
	Kind     string         `json:"kind"`
	Value    *hexutil.Bytes `json:"value,omitempty"`
	Uint     *uint64        `json:"uint,omitempty"`
	Entries  []jsonMapEntry `json:"entries,omitempty"`
	Elements []jsonValue    `json:"elements,omitempty"`
	Height   *uint8         `json:"height,omitempty"`
	Leaves   []jsonTreeLeaf `json:"leaves,omitempty"`
	Length   *int           `json:"length,omitempty"`
}

type jsonMapEntry struct {
	Key   hexutil.Bytes `json:"key"`
	Value jsonValue     `json:"value"`
}

type jsonTreeLeaf struct {
	Index hexutil.Uint64 `json:"index"`
	Hash  hexutil.Bytes  `json:"hash"`
}

func toJson(v StateValue) jsonValue {
	switch v := v.(type) {
	case Cell:
		b := hexutil.Bytes(v)
		return jsonValue{Kind: "cell", Value: &b}
	case Map:
		res := jsonValue{Kind: "map", Entries: []jsonMapEntry{}}
		v.ForEach(func(key Cell, value StateValue) {
			res.Entries = append(res.Entries, jsonMapEntry{Key: hexutil.Bytes(key), Value: toJson(value)})
		})
		return res
	case Array:
		res := jsonValue{Kind: "array", Elements: make([]jsonValue, len(v.elements))}
		for i, e := range v.elements {
			res.Elements[i] = toJson(e)
		}
		return res
	case BoundedMerkleTree:
		height := v.Height()
		res := jsonValue{Kind: "bmt", Height: &height, Leaves: []jsonTreeLeaf{}}
		v.tree.ForEachLeaf(func(index uint64, hash merkle.Digest, _ struct{}) {
			h := hash.Bytes()
			res.Leaves = append(res.Leaves, jsonTreeLeaf{Index: hexutil.Uint64(index), Hash: h[:]})
		})
		return res
	}
	return jsonValue{Kind: "null"}
}

func (j jsonValue) toValue() (StateValue, error) {
	switch j.Kind {
	case "null", "":
		return Null{}, nil
	case "cell":
		if j.Uint != nil {
			return CellFromUint64(*j.Uint), nil
		}
		if j.Value == nil {
			return Cell{}, nil
		}
		return Cell(*j.Value), nil
	case "map":
		entries := make(map[string]StateValue, len(j.Entries))
		for _, e := range j.Entries {
			v, err := e.Value.toValue()
			if err != nil {
				return nil, err
			}
			entries[string(e.Key)] = v
		}
		return NewMap(entries), nil
	case "array":
		if j.Length != nil {
			if *j.Length < 0 || *j.Length > MaxArrayLength {
				return nil, fmt.Errorf("%w: array length %d", ErrInvalidKind, *j.Length)
			}
			if len(j.Elements) > *j.Length {
				return nil, fmt.Errorf("%w: %d elements for array of length %d", ErrIndexOutOfBounds, len(j.Elements), *j.Length)
			}
		}
		if len(j.Elements) > MaxArrayLength {
			return nil, fmt.Errorf("%w: array length %d", ErrInvalidKind, len(j.Elements))
		}
		length := len(j.Elements)
		if j.Length != nil {
			length = *j.Length
		}
		res := NewArray(length)
		for i, e := range j.Elements {
			v, err := e.toValue()
			if err != nil {
				return nil, err
			}
			res.elements[i] = v
		}
		return res, nil
	case "bmt":
		var height uint8
		if j.Height != nil {
			height = *j.Height
		}
		if height > merkle.MaxHeight {
			return nil, fmt.Errorf("%w: tree height %d", ErrInvalidKind, height)
		}
		tree := merkle.Blank[struct{}](height)
		for _, leaf := range j.Leaves {
			index := uint64(leaf.Index)
			if index > tree.MaxIndex() {
				return nil, fmt.Errorf("%w: leaf %d of tree of height %d", ErrIndexOutOfBounds, index, height)
			}
			tree = tree.UpdateHash(index, merkle.DigestFromBytes(leaf.Hash), struct{}{})
		}
		return WrapMerkleTree(tree.Rehash()), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidKind, j.Kind)
}

// MarshalValue encodes a value in its JSON representation.
func MarshalValue(v StateValue) ([]byte, error) {
	return json.Marshal(toJson(v))
}

// UnmarshalValue decodes a value from its JSON representation.
func UnmarshalValue(data []byte) (StateValue, error) {
	var j jsonValue
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, err
	}
	return j.toValue()
}

type jsonVmValue struct {
	jsonValue
	Strength string `json:"strength,omitempty"`
}

func (v VmValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonVmValue{jsonValue: toJson(v.Value), Strength: v.Strength.String()})
}

// UnmarshalJSON decodes a value with an optional strength, which defaults to
// weak.
func (v *VmValue) UnmarshalJSON(data []byte) error {
	var j jsonVmValue
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	value, err := j.toValue()
	if err != nil {
		return err
	}
	switch j.Strength {
	case "", "weak":
		*v = NewWeak(value)
	case "strong":
		*v = NewStrong(value)
	default:
		return fmt.Errorf("unknown strength %q", j.Strength)
	}
	return nil
}
