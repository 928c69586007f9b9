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

// node is an immutable element of a tree. Nodes are shared between all trees
// derived from each other and must never be modified after construction.
type node[A any] interface {
	height() uint8
	// root returns the digest of the subtree rooted by this node, or false if
	// the subtree has pending changes that have not been rehashed.
	root() (Digest, bool)
	// payload returns the auxiliary data of a leaf, nil for all other nodes.
	payload() *A
}

// leaf is a terminal node holding a leaf hash and an auxiliary payload.
type leaf[A any] struct {
	hash Digest
	aux  A
}

// branch is an inner node. If hash is set, both children have roots and hash
// is the digest of the two. The height of a branch is one more than the
// height of both of its children.
type branch[A any] struct {
	left, right node[A]
	h           uint8
	hash        *Digest
}

// stub is an all-default subtree that has not been materialized.
type stub[A any] struct {
	h uint8
}

// collapsed is a subtree pruned down to its digest.
type collapsed[A any] struct {
	hash Digest
	h    uint8
}

func (*leaf[A]) height() uint8          { return 0 }
func (n *leaf[A]) root() (Digest, bool) { return n.hash, true }
func (n *leaf[A]) payload() *A          { return &n.aux }

func (n *branch[A]) height() uint8 { return n.h }
func (n *branch[A]) root() (Digest, bool) {
	if n.hash == nil {
		return Digest{}, false
	}
	return *n.hash, true
}
func (*branch[A]) payload() *A { return nil }

func (n *stub[A]) height() uint8        { return n.h }
func (n *stub[A]) root() (Digest, bool) { return defaultDigests[n.h], true }
func (*stub[A]) payload() *A            { return nil }

func (n *collapsed[A]) height() uint8        { return n.h }
func (n *collapsed[A]) root() (Digest, bool) { return n.hash, true }
func (*collapsed[A]) payload() *A            { return nil }

// expand returns the given node as a branch, materializing stubs.
func expand[A any](n node[A]) *branch[A] {
	switch n := n.(type) {
	case *branch[A]:
		return n
	case *stub[A]:
		return &branch[A]{left: &stub[A]{h: n.h - 1}, right: &stub[A]{h: n.h - 1}, h: n.h}
	case *collapsed[A]:
		panic(fmt.Sprintf("access to collapsed subtree of height %d", n.h))
	}
	panic(fmt.Sprintf("unexpected node of type %T", n))
}

// goesLeft reports whether the leaf with the given index is located in the
// left subtree of a branch of the given height.
func goesLeft(index uint64, height uint8) bool {
	return (index>>(height-1))&1 == 0
}

// child returns the child of b containing the given index.
func (b *branch[A]) child(index uint64) node[A] {
	if goesLeft(index, b.h) {
		return b.left
	}
	return b.right
}

// withChild returns a copy of b with the child containing index replaced.
// The cached hash is dropped unless keepHash is set.
func (b *branch[A]) withChild(index uint64, child node[A], keepHash bool) *branch[A] {
	res := &branch[A]{left: b.left, right: b.right, h: b.h}
	if keepHash {
		res.hash = b.hash
	}
	if goesLeft(index, b.h) {
		res.left = child
	} else {
		res.right = child
	}
	return res
}

// replace substitutes the subtree of the given height containing index by
// repl and returns the new root of the subtree n.
func replace[A any](n node[A], index uint64, target uint8, repl node[A]) node[A] {
	if n.height() == target {
		return repl
	}
	b := expand(n)
	return b.withChild(index, replace(b.child(index), index, target, repl), false)
}

// remove resets the leaf with the given index to a stub and folds branches
// with two stub children back into stubs.
func remove[A any](n node[A], index uint64) node[A] {
	switch n := n.(type) {
	case *stub[A]:
		return n
	case *leaf[A]:
		return &stub[A]{h: 0}
	case *collapsed[A]:
		panic(fmt.Sprintf("removal from collapsed subtree of height %d", n.h))
	}
	b := n.(*branch[A])
	before := b.child(index)
	after := remove(before, index)
	if after == before {
		return b
	}
	res := b.withChild(index, after, false)
	_, leftStub := res.left.(*stub[A])
	_, rightStub := res.right.(*stub[A])
	if leftStub && rightStub {
		return &stub[A]{h: b.h}
	}
	return res
}

// rehash computes all missing hashes in the subtree n.
func rehash[A any](n node[A]) node[A] {
	b, ok := n.(*branch[A])
	if !ok || b.hash != nil {
		return n
	}
	left := rehash(b.left)
	right := rehash(b.right)
	l, _ := left.root()
	r, _ := right.root()
	hash := nodeHash(l, r)
	return &branch[A]{left: left, right: right, h: b.h, hash: &hash}
}

// lookup returns the node of the given height containing index. Traversal
// stops early at stubs and collapsed nodes, which are returned instead.
func lookup[A any](n node[A], index uint64, target uint8) node[A] {
	for n.height() > target {
		b, ok := n.(*branch[A])
		if !ok {
			return n
		}
		n = b.child(index)
	}
	return n
}

// isFull reports whether the subtree n contains no stubs.
func isFull[A any](n node[A]) bool {
	switch n := n.(type) {
	case *stub[A]:
		return false
	case *branch[A]:
		return isFull(n.left) && isFull(n.right)
	}
	return true
}

// countLeaves returns the number of non-stub leaves, saturating at the
// maximum uint64 value.
func countLeaves[A any](n node[A]) uint64 {
	switch n := n.(type) {
	case *leaf[A]:
		return 1
	case *stub[A]:
		return 0
	case *collapsed[A]:
		if n.h >= 64 {
			return ^uint64(0)
		}
		return lowMask(n.h) + 1
	case *branch[A]:
		l, r := countLeaves(n.left), countLeaves(n.right)
		if l+r < l {
			return ^uint64(0)
		}
		return l + r
	}
	return 0
}

// lowMask returns a mask covering the lowest h bits.
func lowMask(h uint8) uint64 {
	if h >= 64 {
		return ^uint64(0)
	}
	return uint64(1)<<h - 1
}
