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

// PathEntry is one step of a MerklePath.
type PathEntry struct {
	Sibling Digest
	// GoesLeft is set if the path continues through the left child of the
	// branch, and hence the sibling is the right child.
	GoesLeft bool
}

// MerklePath proves the membership of a leaf in a tree. Entries are ordered
// from the leaf towards the root.
type MerklePath[A any] struct {
	Leaf Digest
	Aux  A
	Path []PathEntry
}

// Root folds the path into the root digest of the tree it was taken from.
func (p MerklePath[A]) Root() Digest {
	cur := p.Leaf
	for _, entry := range p.Path {
		if entry.GoesLeft {
			cur = nodeHash(cur, entry.Sibling)
		} else {
			cur = nodeHash(entry.Sibling, cur)
		}
	}
	return cur
}

// PathForLeaf produces a path for the given value located at index.
func (t MerkleTree[A]) PathForLeaf(index uint64, value []byte, aux A) (MerklePath[A], error) {
	return t.PathForLeafHash(index, defaultLeafHasher.Hash(value), aux)
}

// PathForLeafHash produces a path for the leaf hash located at index. The
// path is formed by the siblings of all nodes on the way to the leaf; the
// tree must be rehashed.
func (t MerkleTree[A]) PathForLeafHash(index uint64, hash Digest, aux A) (MerklePath[A], error) {
	t.checkIndex(index)
	if !t.IsRehashed() {
		return MerklePath[A]{}, ErrNotRehashed
	}
	entries := make([]PathEntry, t.height)
	n := t.top()
	for n.height() > 0 {
		b := expand(n)
		left := goesLeft(index, b.h)
		sibling := b.right
		if !left {
			sibling = b.left
		}
		digest, _ := sibling.root()
		entries[b.h-1] = PathEntry{Sibling: digest, GoesLeft: left}
		n = b.child(index)
	}
	return MerklePath[A]{Leaf: hash, Aux: aux, Path: entries}, nil
}

// FindPathForLeaf locates the leaf with the lowest index holding the given
// value and returns its path.
func (t MerkleTree[A]) FindPathForLeaf(value []byte) (MerklePath[A], error) {
	if !t.IsRehashed() {
		return MerklePath[A]{}, ErrNotRehashed
	}
	hash := defaultLeafHasher.Hash(value)
	index, aux, found := findLeaf(t.top(), 0, hash)
	if !found {
		return MerklePath[A]{}, ErrLeafNotFound
	}
	return t.PathForLeafHash(index, hash, aux)
}

func findLeaf[A any](n node[A], offset uint64, hash Digest) (uint64, A, bool) {
	switch n := n.(type) {
	case *leaf[A]:
		if n.hash == hash {
			return offset, n.aux, true
		}
	case *branch[A]:
		if index, aux, found := findLeaf(n.left, offset, hash); found {
			return index, aux, true
		}
		return findLeaf(n.right, offset|uint64(1)<<(n.h-1), hash)
	}
	var zero A
	return 0, zero, false
}
