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
	"sync"
	"testing"
)

func largeMap(size int) Map {
	entries := make(map[string]StateValue, size)
	for i := 0; i < size; i++ {
		entries[fmt.Sprintf("key-%08d", i)] = CellFromUint64(uint64(i))
	}
	return NewMap(entries)
}

func TestMap_InsertSharesStructureWithOriginal(t *testing.T) {
	// Allocations of a single insert are bounded by the depth of the
	// B-tree, not by the number of entries.
	for _, size := range []int{1_000, 100_000} {
		t.Run(fmt.Sprintf("size=%d", size), func(t *testing.T) {
			m := largeMap(size)
			allocs := testing.AllocsPerRun(10, func() {
				if _, err := m.Insert(Cell("new-key"), CellFromUint64(1)); err != nil {
					t.Fatal(err)
				}
			})
			if allocs > 64 {
				t.Errorf("insert into map of %d entries took %v allocations", size, allocs)
			}
			if want, got := uint64(size), m.Len(); want != got {
				t.Errorf("insert modified original map, wanted length %d, got %d", want, got)
			}
		})
	}
}

func TestMap_RemoveSharesStructureWithOriginal(t *testing.T) {
	m := largeMap(100_000)
	key := Cell(fmt.Sprintf("key-%08d", 4711))
	allocs := testing.AllocsPerRun(10, func() {
		if _, err := m.Remove(key); err != nil {
			t.Fatal(err)
		}
	})
	if allocs > 64 {
		t.Errorf("remove took %v allocations", allocs)
	}
	if found, _ := m.Contains(key); !found {
		t.Errorf("remove modified original map")
	}
}

func TestMap_DerivedVersionsAreIndependent(t *testing.T) {
	base := largeMap(1_000)
	a, _ := base.Insert(Cell("key-00000001"), Cell("a"))
	b, _ := base.Insert(Cell("key-00000001"), Cell("b"))
	c, _ := a.Remove(Cell("key-00000002"))

	for name, test := range map[string]struct {
		m    Container
		want StateValue
		len  uint64
	}{
		"base": {base, CellFromUint64(1), 1_000},
		"a":    {a, Cell("a"), 1_000},
		"b":    {b, Cell("b"), 1_000},
		"c":    {c, Cell("a"), 999},
	} {
		got, _ := test.m.Get(Cell("key-00000001"))
		if !Equal(test.want, got) {
			t.Errorf("%s: unexpected value, wanted %v, got %v", name, test.want, got)
		}
		if want, got := test.len, test.m.Len(); want != got {
			t.Errorf("%s: unexpected length, wanted %d, got %d", name, want, got)
		}
	}
	if found, _ := a.Contains(Cell("key-00000002")); !found {
		t.Errorf("removal from derived map modified its source")
	}
}

func TestMap_ConcurrentUpdatesOfSharedMap(t *testing.T) {
	base := largeMap(1_000)
	var wg sync.WaitGroup
	results := make([]Container, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var cur Container = base
			for j := 0; j < 100; j++ {
				next, err := cur.Insert(Cell(fmt.Sprintf("extra-%d-%d", i, j)), CellFromUint64(uint64(j)))
				if err != nil {
					t.Error(err)
					return
				}
				if j%2 == 0 {
					cur = next
				} else {
					cur, _ = base.Insert(Cell(fmt.Sprintf("extra-%d", i)), CellFromUint64(uint64(j)))
				}
			}
			results[i] = cur
		}(i)
	}
	wg.Wait()
	if want, got := uint64(1_000), base.Len(); want != got {
		t.Errorf("shared map was modified, wanted length %d, got %d", want, got)
	}
	for i, res := range results {
		if res == nil {
			continue
		}
		if want, got := uint64(1_001), res.Len(); want != got {
			t.Errorf("result %d: unexpected length, wanted %d, got %d", i, want, got)
		}
	}
}

func TestMap_EqualIgnoresConstructionOrder(t *testing.T) {
	a, _ := Map{}.Insert(Cell("x"), CellFromUint64(1))
	a, _ = a.(Map).Insert(Cell("y"), CellFromUint64(2))
	b, _ := Map{}.Insert(Cell("y"), CellFromUint64(2))
	b, _ = b.(Map).Insert(Cell("x"), CellFromUint64(1))
	if !Equal(a, b) {
		t.Errorf("maps with equal content should be equal: %v vs %v", a, b)
	}
	c, _ := b.(Map).Insert(Cell("x"), CellFromUint64(3))
	if Equal(a, c) {
		t.Errorf("maps with different content should differ: %v vs %v", a, c)
	}
	empty, _ := a.(Map).Remove(Cell("x"))
	empty, _ = empty.(Map).Remove(Cell("y"))
	if !Equal(empty, Map{}) {
		t.Errorf("map emptied by removal should equal the empty map, got %v", empty)
	}
}
