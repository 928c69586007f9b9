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

import "fmt"

// InsertionEvidence records the insertion of a leaf into a tree. In contrast
// to a MerklePath it lists the digests of the nodes on the path itself, so
// Path[k] is the digest of the ancestor of the leaf at height k+1.
//
// Evidence can be replayed into a different tree of the same height sharing
// the content of the original one, even if the ranges next to the leaf have
// been collapsed in the target tree.
type InsertionEvidence[A any] struct {
	Index uint64
	Leaf  Digest
	Aux   A
	Path  []Digest
}

// InsertionEvidence produces the evidence of the leaf currently located at
// index. The tree must be rehashed and the leaf must be set.
func (t MerkleTree[A]) InsertionEvidence(index uint64) (InsertionEvidence[A], error) {
	t.checkIndex(index)
	if !t.IsRehashed() {
		return InsertionEvidence[A]{}, ErrNotRehashed
	}
	hash, aux, found := t.Index(index)
	if !found {
		return InsertionEvidence[A]{}, fmt.Errorf("%w: index %d", ErrLeafNotFound, index)
	}
	return InsertionEvidence[A]{
		Index: index,
		Leaf:  hash,
		Aux:   aux,
		Path:  ownHashes(t.top(), index),
	}, nil
}

// ownHashes lists the digests of all branches on the path to index, from the
// lowest to the highest one.
func ownHashes[A any](n node[A], index uint64) []Digest {
	res := make([]Digest, n.height())
	for n.height() > 0 {
		b := expand(n)
		res[b.h-1], _ = b.root()
		n = b.child(index)
	}
	return res
}

// ApplyInsertionEvidence inserts the leaf described by the evidence and
// rehashes the tree. Each digest re-derived on the path to the leaf is checked
// against the evidence; on a mismatch, the original tree is retained and
// ErrEvidenceMismatch is returned.
func (t MerkleTree[A]) ApplyInsertionEvidence(ev InsertionEvidence[A]) (MerkleTree[A], error) {
	if len(ev.Path) != int(t.height) {
		return t, fmt.Errorf("%w: path of length %d for tree of height %d", ErrEvidenceMismatch, len(ev.Path), t.height)
	}
	if ev.Index > t.MaxIndex() {
		return t, fmt.Errorf("%w: index %d out of range", ErrEvidenceMismatch, ev.Index)
	}
	res := t.UpdateHash(ev.Index, ev.Leaf, ev.Aux).Rehash()
	for height, got := range ownHashes(res.top(), ev.Index) {
		if want := ev.Path[height]; want != got {
			return t, fmt.Errorf("%w: digest at height %d is %v, expected %v", ErrEvidenceMismatch, height+1, got, want)
		}
	}
	return res, nil
}
