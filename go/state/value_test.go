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
	"errors"
	"testing"

	"github.com/Fantom-foundation/Strata/go/merkle"
)

func TestNewOfKind_CreatesZeroValues(t *testing.T) {
	tests := map[byte]struct {
		kind Kind
		len  uint64
	}{
		0x00:         {KindNull, 0},
		0x01:         {KindCell, 0},
		0x02:         {KindMap, 0},
		0x03:         {KindArray, 0},
		4<<3 | 0x03:  {KindArray, 4},
		16<<3 | 0x03: {KindArray, 16},
		0x04:         {KindBmt, 1},
		3<<3 | 0x04:  {KindBmt, 8},
		31<<3 | 0x04: {KindBmt, 1 << 31},
	}
	for tag, test := range tests {
		value, err := NewOfKind(tag)
		if err != nil {
			t.Fatalf("failed to create value for tag 0x%x: %v", tag, err)
		}
		if want, got := test.kind, value.Kind(); want != got {
			t.Errorf("unexpected kind for tag 0x%x, wanted %v, got %v", tag, want, got)
		}
		if c, ok := value.(Container); ok {
			if want, got := test.len, c.Len(); want != got {
				t.Errorf("unexpected length for tag 0x%x, wanted %d, got %d", tag, want, got)
			}
		}
	}
}

func TestNewOfKind_RejectsInvalidTags(t *testing.T) {
	for _, tag := range []byte{0x05, 0x06, 0x07, 17<<3 | 0x03, 31<<3 | 0x03} {
		if _, err := NewOfKind(tag); !errors.Is(err, ErrInvalidKind) {
			t.Errorf("expected ErrInvalidKind for tag 0x%x, got %v", tag, err)
		}
	}
}

func TestNewOfKind_ArrayElementsAreNull(t *testing.T) {
	value, err := NewOfKind(2<<3 | 0x03)
	if err != nil {
		t.Fatal(err)
	}
	got, err := value.(Array).Get(CellFromUint64(1))
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind() != KindNull {
		t.Errorf("expected null element, got %v", got)
	}
}

func TestMap_InsertIsPersistent(t *testing.T) {
	empty := Map{}
	one, err := empty.Insert(Cell("a"), CellFromUint64(1))
	if err != nil {
		t.Fatal(err)
	}
	two, err := one.Insert(Cell("b"), CellFromUint64(2))
	if err != nil {
		t.Fatal(err)
	}
	if empty.Len() != 0 || one.Len() != 1 || two.Len() != 2 {
		t.Errorf("unexpected lengths %d, %d, %d", empty.Len(), one.Len(), two.Len())
	}
	if found, _ := one.Contains(Cell("b")); found {
		t.Errorf("insertion modified the original map")
	}
	removed, err := two.Remove(Cell("a"))
	if err != nil {
		t.Fatal(err)
	}
	if found, _ := two.Contains(Cell("a")); !found {
		t.Errorf("removal modified the original map")
	}
	if found, _ := removed.Contains(Cell("a")); found {
		t.Errorf("key was not removed")
	}
}

func TestMap_GetOfMissingKeyIsNull(t *testing.T) {
	v, err := Map{}.Get(Cell("missing"))
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind() != KindNull {
		t.Errorf("expected null, got %v", v)
	}
}

func TestMap_InsertingNullRemovesKey(t *testing.T) {
	m := NewMap(map[string]StateValue{"a": CellFromUint64(1)})
	res, err := m.Insert(Cell("a"), Null{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Len() != 0 {
		t.Errorf("expected empty map, got %v", res)
	}
}

func TestMap_KeysAreSorted(t *testing.T) {
	m := NewMap(map[string]StateValue{
		"c":  Cell{},
		"a":  Cell{},
		"b":  Cell{},
		"ab": Cell{},
	})
	want := []string{"a", "ab", "b", "c"}
	keys := m.Keys()
	if len(keys) != len(want) {
		t.Fatalf("unexpected number of keys: %d", len(keys))
	}
	for i, k := range keys {
		if string(k) != want[i] {
			t.Errorf("unexpected key at position %d, wanted %s, got %s", i, want[i], k)
		}
	}
}

func TestArray_BoundsAreChecked(t *testing.T) {
	a := NewArray(3)
	if _, err := a.Get(CellFromUint64(3)); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("expected ErrIndexOutOfBounds, got %v", err)
	}
	if _, err := a.Insert(CellFromUint64(7), Cell{}); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("expected ErrIndexOutOfBounds, got %v", err)
	}
	if _, err := a.Get(Cell{1, 0}); !errors.Is(err, ErrNotUint64) {
		t.Errorf("expected ErrNotUint64, got %v", err)
	}
}

func TestArray_RemoveIsUnsupported(t *testing.T) {
	if _, err := NewArray(2).Remove(CellFromUint64(0)); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestArray_InsertIsPersistent(t *testing.T) {
	a := NewArray(2)
	b, err := a.Insert(CellFromUint64(1), CellFromUint64(5))
	if err != nil {
		t.Fatal(err)
	}
	if found, _ := a.Contains(CellFromUint64(1)); found {
		t.Errorf("insertion modified the original array")
	}
	got, _ := b.Get(CellFromUint64(1))
	if !Equal(got, CellFromUint64(5)) {
		t.Errorf("unexpected element %v", got)
	}
}

func TestBoundedMerkleTree_InsertStoresLeafHash(t *testing.T) {
	tree := NewBoundedMerkleTree(3)
	res, err := tree.Insert(CellFromUint64(2), Cell("x"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := res.Get(CellFromUint64(2))
	if err != nil {
		t.Fatal(err)
	}
	if want := DigestCell(merkle.LeafHash([]byte("x"))); !Equal(want, got) {
		t.Errorf("unexpected leaf, wanted %v, got %v", want, got)
	}
	if _, ok := res.(BoundedMerkleTree).Root(); !ok {
		t.Errorf("tree should be rehashed after insertion")
	}
	if found, _ := tree.Contains(CellFromUint64(2)); found {
		t.Errorf("insertion modified the original tree")
	}
}

func TestBoundedMerkleTree_RejectsNonCellValues(t *testing.T) {
	if _, err := NewBoundedMerkleTree(2).Insert(CellFromUint64(0), Map{}); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
	if _, err := NewBoundedMerkleTree(2).Insert(CellFromUint64(4), Cell{}); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("expected ErrIndexOutOfBounds, got %v", err)
	}
}

func TestBoundedMerkleTree_RemoveRestoresRoot(t *testing.T) {
	tree := NewBoundedMerkleTree(4)
	with, err := tree.Insert(CellFromUint64(9), Cell("v"))
	if err != nil {
		t.Fatal(err)
	}
	without, err := with.Remove(CellFromUint64(9))
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(tree, without) {
		t.Errorf("removal did not restore the original tree")
	}
	if Equal(tree, with) {
		t.Errorf("trees with different content should differ")
	}
}

func TestEqual_ComparesStructurally(t *testing.T) {
	a := NewArrayOf(CellFromUint64(1), NewMap(map[string]StateValue{"k": Cell("v")}))
	b := NewArrayOf(CellFromUint64(1), NewMap(map[string]StateValue{"k": Cell("v")}))
	c := NewArrayOf(CellFromUint64(1), NewMap(map[string]StateValue{"k": Cell("w")}))

	if !Equal(a, b) {
		t.Errorf("equal values reported as different")
	}
	if Equal(a, c) {
		t.Errorf("different values reported as equal")
	}
	if Equal(Null{}, Cell{}) {
		t.Errorf("values of different kinds reported as equal")
	}
	if !Equal(NewBoundedMerkleTree(2), NewBoundedMerkleTree(2)) || Equal(NewBoundedMerkleTree(2), NewBoundedMerkleTree(3)) {
		t.Errorf("trees should be compared by height and root")
	}
}

func TestAsContainer_RejectsScalars(t *testing.T) {
	for _, v := range []StateValue{Null{}, Cell{}} {
		if _, err := AsContainer(v); !errors.Is(err, ErrTypeMismatch) {
			t.Errorf("expected ErrTypeMismatch for %v, got %v", v, err)
		}
	}
	if _, err := AsCell(Map{}); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestDataSize_SumsStoredBytes(t *testing.T) {
	tree, err := NewBoundedMerkleTree(2).Insert(CellFromUint64(1), Cell("x"))
	if err != nil {
		t.Fatalf("failed to insert: %v", err)
	}
	tests := map[string]struct {
		value StateValue
		size  uint64
	}{
		"null":  {Null{}, 0},
		"cell":  {Cell("abc"), 3},
		"empty": {Cell{}, 0},
		"map":   {NewMap(map[string]StateValue{"ab": Cell("cde"), "f": Null{}}), 5},
		"array": {NewArrayOf(Cell("a"), Null{}, Cell("bc")), 3},
		"tree":  {tree, 32},
		"deep":  {NewMap(map[string]StateValue{"k": NewArrayOf(Cell("abcd"))}), 5},
	}
	for name, test := range tests {
		if want, got := test.size, DataSize(test.value); want != got {
			t.Errorf("unexpected size of %s, wanted %d, got %d", name, want, got)
		}
	}
}
