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
	"fmt"

	"github.com/Fantom-foundation/Strata/go/common"
)

const (
	ErrNotRehashed      = common.ConstError("tree has not been rehashed")
	ErrLeafNotFound     = common.ConstError("leaf not found")
	ErrEvidenceMismatch = common.ConstError("insertion evidence does not match tree")
	ErrInvalidRange     = common.ConstError("invalid leaf range")
)

// MerkleTree is a sparse binary Merkle tree of fixed height. Leaves are
// addressed by indexes in [0, 2^height) and carry a leaf hash plus an
// auxiliary payload of type A.
//
// Trees are immutable values. All modifying operations return a new tree
// sharing all unaffected subtrees with the original one, so updates cost
// O(height) allocations. Hashes of inner nodes are only computed by Rehash.
//
// Ranges of a tree may be collapsed, dropping their content and retaining only
// their digest. Reading or modifying leaves inside a collapsed range is a
// programming error and causes a panic.
type MerkleTree[A any] struct {
	root   node[A]
	height uint8
}

// Blank creates a tree of the given height in which all leaves are default.
func Blank[A any](height uint8) MerkleTree[A] {
	if height > MaxHeight {
		panic(fmt.Sprintf("tree height %d exceeds maximum of %d", height, MaxHeight))
	}
	return MerkleTree[A]{root: &stub[A]{h: height}, height: height}
}

func (t MerkleTree[A]) Height() uint8 {
	return t.height
}

// MaxIndex returns the highest leaf index of the tree.
func (t MerkleTree[A]) MaxIndex() uint64 {
	return lowMask(t.height)
}

// Root returns the digest of the tree. If the tree has pending updates that
// have not been rehashed, false is returned.
func (t MerkleTree[A]) Root() (Digest, bool) {
	if t.root == nil {
		return defaultDigests[t.height], true
	}
	return t.root.root()
}

// IsRehashed reports whether the root of the tree is available.
func (t MerkleTree[A]) IsRehashed() bool {
	_, ok := t.Root()
	return ok
}

func (t MerkleTree[A]) top() node[A] {
	if t.root == nil {
		return &stub[A]{h: t.height}
	}
	return t.root
}

func (t MerkleTree[A]) checkIndex(index uint64) {
	if index > t.MaxIndex() {
		panic(fmt.Sprintf("index %d out of range for tree of height %d", index, t.height))
	}
}

// UpdateHash sets the leaf with the given index to the given leaf hash.
func (t MerkleTree[A]) UpdateHash(index uint64, hash Digest, aux A) MerkleTree[A] {
	t.checkIndex(index)
	return MerkleTree[A]{
		root:   replace(t.top(), index, 0, node[A](&leaf[A]{hash: hash, aux: aux})),
		height: t.height,
	}
}

// Update sets the leaf with the given index to the leaf hash of value.
func (t MerkleTree[A]) Update(index uint64, value []byte, aux A) MerkleTree[A] {
	return t.UpdateHash(index, defaultLeafHasher.Hash(value), aux)
}

// Remove resets the leaf with the given index to its default.
func (t MerkleTree[A]) Remove(index uint64) MerkleTree[A] {
	t.checkIndex(index)
	return MerkleTree[A]{root: remove(t.top(), index), height: t.height}
}

// Rehash computes all pending node hashes.
func (t MerkleTree[A]) Rehash() MerkleTree[A] {
	return MerkleTree[A]{root: rehash(t.top()), height: t.height}
}

// Index returns the leaf hash and payload of the given leaf. If the leaf is
// default, false is returned.
func (t MerkleTree[A]) Index(index uint64) (Digest, A, bool) {
	t.checkIndex(index)
	n := lookup(t.top(), index, 0)
	if _, ok := n.(*collapsed[A]); ok {
		panic(fmt.Sprintf("index %d is in a collapsed range", index))
	}
	if aux := n.payload(); aux != nil {
		hash, _ := n.root()
		return hash, *aux, true
	}
	var zero A
	return Digest{}, zero, false
}

// Contains reports whether the given leaf is set.
func (t MerkleTree[A]) Contains(index uint64) bool {
	_, _, found := t.Index(index)
	return found
}

// Size returns the number of non-default leaves. Collapsed ranges count
// in full.
func (t MerkleTree[A]) Size() uint64 {
	return countLeaves(t.top())
}

// ForEachLeaf calls fn for every non-default leaf in ascending index order.
// Collapsed ranges are skipped.
func (t MerkleTree[A]) ForEachLeaf(fn func(index uint64, hash Digest, aux A)) {
	forEachLeaf(t.top(), 0, fn)
}

func forEachLeaf[A any](n node[A], offset uint64, fn func(uint64, Digest, A)) {
	switch n := n.(type) {
	case *leaf[A]:
		fn(offset, n.hash, n.aux)
	case *branch[A]:
		forEachLeaf(n.left, offset, fn)
		forEachLeaf(n.right, offset|uint64(1)<<(n.h-1), fn)
	}
}

func (t MerkleTree[A]) String() string {
	if root, ok := t.Root(); ok {
		return fmt.Sprintf("MerkleTree(height=%d, root=%v)", t.height, root)
	}
	return fmt.Sprintf("MerkleTree(height=%d, not rehashed)", t.height)
}
