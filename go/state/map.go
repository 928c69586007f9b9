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
	"fmt"
	"strings"
	"sync"

	"github.com/google/btree"
)

// mapDegree is the branching factor of the B-tree backing maps. An update
// copies at most one node of 2*mapDegree entries per level.
const mapDegree = 8

type mapEntry struct {
	key   string
	value StateValue
}

func lessMapEntry(a, b mapEntry) bool {
	return a.key < b.key
}

// mapTree is one version of a map. Its B-tree is never modified after the
// version is published. Cloning updates the copy-on-write bookkeeping of the
// source tree, which is why it is guarded.
type mapTree struct {
	mutex   sync.Mutex
	entries *btree.BTreeG[mapEntry]
}

// derive returns a private copy of the entries which may be modified freely.
// Nodes are shared with t and only copied when written to.
func (t *mapTree) derive() *btree.BTreeG[mapEntry] {
	if t == nil {
		return btree.NewG(mapDegree, lessMapEntry)
	}
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.entries.Clone()
}

func (t *mapTree) get(key string) (StateValue, bool) {
	if t == nil {
		return nil, false
	}
	e, found := t.entries.Get(mapEntry{key: key})
	return e.value, found
}

// Map is a persistent container mapping cells to values. The zero value is
// the empty map. Entries holding Null are not stored, so inserting Null
// removes a key. Updates share all untouched B-tree nodes with the original
// map.
type Map struct {
	tree *mapTree
}

func (Map) Kind() Kind  { return KindMap }
func (Map) stateValue() {}

// NewMap creates a map from the given entries.
func NewMap(entries map[string]StateValue) Map {
	res := btree.NewG(mapDegree, lessMapEntry)
	for k, v := range entries {
		if v != nil && v.Kind() != KindNull {
			res.ReplaceOrInsert(mapEntry{key: k, value: v})
		}
	}
	if res.Len() == 0 {
		return Map{}
	}
	return Map{tree: &mapTree{entries: res}}
}

func (m Map) Len() uint64 {
	if m.tree == nil {
		return 0
	}
	return uint64(m.tree.entries.Len())
}

func (m Map) Get(key Cell) (StateValue, error) {
	if v, found := m.tree.get(string(key)); found {
		return v, nil
	}
	return Null{}, nil
}

func (m Map) Contains(key Cell) (bool, error) {
	_, found := m.tree.get(string(key))
	return found, nil
}

// Insert returns a copy of the map with key set to value. The copy shares
// all values and all B-tree nodes off the path to key with the original.
func (m Map) Insert(key Cell, value StateValue) (Container, error) {
	if value == nil || value.Kind() == KindNull {
		return m.Remove(key)
	}
	res := m.tree.derive()
	res.ReplaceOrInsert(mapEntry{key: string(key), value: value})
	return Map{tree: &mapTree{entries: res}}, nil
}

func (m Map) Remove(key Cell) (Container, error) {
	if _, found := m.tree.get(string(key)); !found {
		return m, nil
	}
	res := m.tree.derive()
	res.Delete(mapEntry{key: string(key)})
	if res.Len() == 0 {
		return Map{}, nil
	}
	return Map{tree: &mapTree{entries: res}}, nil
}

// Keys returns the keys of the map in ascending byte order.
func (m Map) Keys() []Cell {
	res := make([]Cell, 0, m.Len())
	m.ForEach(func(key Cell, _ StateValue) {
		res = append(res, key)
	})
	return res
}

// ForEach calls fn for all entries in ascending key order.
func (m Map) ForEach(fn func(key Cell, value StateValue)) {
	if m.tree == nil {
		return
	}
	m.tree.entries.Ascend(func(e mapEntry) bool {
		fn(Cell(e.key), e.value)
		return true
	})
}

func (m Map) equal(other Map) bool {
	if m.tree == other.tree {
		return true
	}
	if m.Len() != other.Len() {
		return false
	}
	res := true
	m.ForEach(func(key Cell, value StateValue) {
		if !res {
			return
		}
		v, found := other.tree.get(string(key))
		res = found && Equal(value, v)
	})
	return res
}

func (m Map) String() string {
	var b strings.Builder
	b.WriteString("map{")
	i := 0
	m.ForEach(func(key Cell, value StateValue) {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "0x%x: %v", []byte(key), value)
		i++
	})
	b.WriteString("}")
	return b.String()
}
