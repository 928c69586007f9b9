// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package merkle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rand"
)

func TestSteps_Decomposition(t *testing.T) {
	tests := map[string]struct {
		start, end uint64
		want       []Step
	}{
		"single leaf":   {5, 5, []Step{{5, 0}}},
		"aligned pair":  {4, 5, []Step{{4, 1}}},
		"aligned block": {0, 7, []Step{{0, 3}}},
		"unaligned":     {1, 6, []Step{{1, 0}, {2, 1}, {4, 1}, {6, 0}}},
		"mixed":         {3, 12, []Step{{3, 0}, {4, 2}, {8, 2}, {12, 0}}},
		"full range":    {0, ^uint64(0), []Step{{0, 64}}},
		"upper half":    {1 << 63, ^uint64(0), []Step{{1 << 63, 63}}},
		"empty":         {3, 2, nil},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.want, Steps(test.start, test.end))
		})
	}
}

func TestSteps_CoverRangeWithAlignedBlocks(t *testing.T) {
	rnd := rand.New(42)
	for i := 0; i < 1000; i++ {
		start := rnd.Uint64() % 4096
		end := start + rnd.Uint64()%4096
		next := start
		for _, step := range Steps(start, end) {
			require.Equal(t, next, step.Index)
			require.Zero(t, step.Index&lowMask(step.Height), "block %v is not aligned", step)
			next = step.last() + 1
		}
		require.Equal(t, end+1, next)
	}
}

func TestMerkleTree_CollapseRetainsRoot(t *testing.T) {
	tree := buildTree(t, 4, 0, 1, 2, 3, 4, 5, 6, 9)
	want, _ := tree.Root()

	collapsed := tree.Collapse(1, 5)
	got, ok := collapsed.Root()
	require.True(t, ok)
	assert.Equal(t, want, got)

	got, _ = collapsed.Rehash().Root()
	assert.Equal(t, want, got)
}

func TestMerkleTree_CollapseFullRangeThenRehashRetainsRoot(t *testing.T) {
	var indexes []uint64
	for i := uint64(0); i < 16; i++ {
		indexes = append(indexes, i)
	}
	tree := buildTree(t, 4, indexes...)
	want, _ := tree.Root()

	got, _ := tree.Collapse(0, 15).Rehash().Root()
	assert.Equal(t, want, got)
}

func TestMerkleTree_UpdatesOutsideCollapsedRangeMatchUncollapsed(t *testing.T) {
	tree := buildTree(t, 4, 0, 1, 2, 3)
	plain, _ := tree.Update(10, []byte("v"), 0).Rehash().Root()
	pruned, _ := tree.Collapse(0, 3).Update(10, []byte("v"), 0).Rehash().Root()
	assert.Equal(t, plain, pruned)
}

func TestMerkleTree_AccessInsideCollapsedRangePanics(t *testing.T) {
	tree := buildTree(t, 4, 0, 1, 2, 3).Collapse(0, 3)
	assert.Panics(t, func() { tree.Index(2) })
	assert.Panics(t, func() { tree.Update(1, []byte("v"), 0) })
	assert.Panics(t, func() { tree.Remove(3) })
	assert.NotPanics(t, func() { tree.Index(4) })
}

func TestMerkleTree_CollapseRequiresFullRange(t *testing.T) {
	tree := buildTree(t, 4, 0, 1, 3)
	assert.Panics(t, func() { tree.Collapse(0, 3) })
	assert.NotPanics(t, func() { tree.Collapse(0, 1) })
}

func TestMerkleTree_CollapseRequiresRehash(t *testing.T) {
	tree := Blank[int](2).Update(0, nil, 0).Update(1, nil, 0)
	assert.Panics(t, func() { tree.Collapse(0, 1) })
}

func TestMerkleTree_CollapsedRangeCountsInSize(t *testing.T) {
	tree := buildTree(t, 4, 0, 1, 2, 3, 8)
	assert.Equal(t, uint64(5), tree.Collapse(0, 3).Size())
}

func TestMerkleTree_InsertionEvidenceReplaysIntoCollapsedTree(t *testing.T) {
	base := buildTree(t, 4, 0, 1, 2, 3, 9)
	source := base.Update(6, []byte("new"), 42).Rehash()
	evidence, err := source.InsertionEvidence(6)
	require.NoError(t, err)
	assert.Len(t, evidence.Path, 4)
	assert.Equal(t, 42, evidence.Aux)

	target := base.Collapse(0, 3)
	replayed, err := target.ApplyInsertionEvidence(evidence)
	require.NoError(t, err)

	want, _ := source.Root()
	got, _ := replayed.Root()
	assert.Equal(t, want, got)
	assert.True(t, replayed.Contains(6))
}

func TestMerkleTree_InsertionEvidenceMismatchIsDetected(t *testing.T) {
	base := buildTree(t, 4, 0, 1)
	source := base.Update(6, []byte("new"), 0).Rehash()
	evidence, err := source.InsertionEvidence(6)
	require.NoError(t, err)

	other := buildTree(t, 4, 0, 2)
	res, err := other.ApplyInsertionEvidence(evidence)
	assert.ErrorIs(t, err, ErrEvidenceMismatch)
	assert.False(t, res.Contains(6))

	evidence.Path = evidence.Path[:2]
	_, err = base.ApplyInsertionEvidence(evidence)
	assert.ErrorIs(t, err, ErrEvidenceMismatch)
}

func TestMerkleTree_InsertionEvidenceOfMissingLeafFails(t *testing.T) {
	_, err := buildTree(t, 3, 1).InsertionEvidence(2)
	assert.ErrorIs(t, err, ErrLeafNotFound)
}

func TestMerkleTree_CollapsedUpdateSplicesRange(t *testing.T) {
	source := buildTree(t, 5, 3, 4, 5, 6, 7, 8, 9, 10)
	update, err := NewCollapsedUpdate(source, 3, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), update.Start)
	assert.Equal(t, uint64(10), update.End)
	assert.Len(t, update.Hashes, len(Steps(3, 10)))

	target := Blank[int](5).ApplyCollapsedUpdate(update).Rehash()
	want, _ := source.Root()
	got, _ := target.Root()
	assert.Equal(t, want, got)
}

func TestMerkleTree_CollapsedUpdateOfSparseRange(t *testing.T) {
	source := buildTree(t, 5, 2, 17)
	update, err := NewCollapsedUpdate(source, 0, 31)
	require.NoError(t, err)

	target := buildTree(t, 5, 1, 2, 3).ApplyCollapsedUpdate(update).Rehash()
	want, _ := source.Root()
	got, _ := target.Root()
	assert.Equal(t, want, got)
}

func TestMerkleTree_CollapsedUpdateChecksArguments(t *testing.T) {
	tree := Blank[int](3)
	_, err := NewCollapsedUpdate(tree, 4, 2)
	assert.ErrorIs(t, err, ErrInvalidRange)
	_, err = NewCollapsedUpdate(tree, 0, 8)
	assert.ErrorIs(t, err, ErrInvalidRange)
	_, err = NewCollapsedUpdate(tree.Update(1, nil, 0), 0, 1)
	assert.ErrorIs(t, err, ErrNotRehashed)

	assert.Panics(t, func() {
		tree.ApplyCollapsedUpdate(CollapsedUpdate{Hashes: []PartialHash{{Index: 1, Height: 1}}})
	})
}
