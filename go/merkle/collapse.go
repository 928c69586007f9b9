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

// Step is an aligned block of 2^Height leaves starting at leaf Index.
type Step struct {
	Index  uint64
	Height uint8
}

func (s Step) last() uint64 {
	return s.Index + lowMask(s.Height)
}

// Steps decomposes the inclusive leaf range [start, end] into the smallest
// number of aligned power-of-two blocks, in ascending order. Each block is
// chosen greedily as the largest aligned block starting at the first
// uncovered leaf that does not exceed end.
func Steps(start, end uint64) []Step {
	if start > end {
		return nil
	}
	var res []Step
	cur := start
	for {
		var h uint8
		for h < MaxHeight {
			mask := lowMask(h + 1)
			if cur&mask != 0 || end-cur < mask {
				break
			}
			h++
		}
		step := Step{Index: cur, Height: h}
		res = append(res, step)
		if step.last() == end {
			return res
		}
		cur = step.last() + 1
	}
}

// Collapse prunes the inclusive leaf range [start, end] down to the digests
// of its aligned blocks. The range must be fully populated and rehashed.
// Digests of ancestors of the range are retained.
func (t MerkleTree[A]) Collapse(start, end uint64) MerkleTree[A] {
	if start > end || end > t.MaxIndex() {
		panic(fmt.Sprintf("invalid range [%d, %d] for tree of height %d", start, end, t.height))
	}
	root := t.top()
	for _, step := range Steps(start, end) {
		root = collapseBlock(root, step)
	}
	return MerkleTree[A]{root: root, height: t.height}
}

func collapseBlock[A any](n node[A], step Step) node[A] {
	if _, ok := n.(*collapsed[A]); ok {
		return n
	}
	if n.height() == step.Height {
		hash, ok := n.root()
		if !ok {
			panic(fmt.Sprintf("collapsing block %d of height %d before rehashing", step.Index, step.Height))
		}
		if !isFull(n) {
			panic(fmt.Sprintf("collapsing block %d of height %d containing default leaves", step.Index, step.Height))
		}
		return &collapsed[A]{hash: hash, h: step.Height}
	}
	b, ok := n.(*branch[A])
	if !ok {
		panic(fmt.Sprintf("collapsing block %d of height %d containing default leaves", step.Index, step.Height))
	}
	return b.withChild(step.Index, collapseBlock(b.child(step.Index), step), true)
}

// PartialHash is the digest of the aligned block of 2^Height leaves starting
// at leaf Index.
type PartialHash struct {
	Index  uint64
	Height uint8
	Hash   Digest
}

// CollapsedUpdate transfers the content of a leaf range between trees in
// collapsed form. It lists the digests of the fewest aligned blocks covering
// the range.
type CollapsedUpdate struct {
	Start  uint64
	End    uint64
	Hashes []PartialHash
}

// NewCollapsedUpdate extracts the digests covering the inclusive leaf range
// [start, end] of a rehashed tree.
func NewCollapsedUpdate[A any](tree MerkleTree[A], start, end uint64) (CollapsedUpdate, error) {
	if start > end || end > tree.MaxIndex() {
		return CollapsedUpdate{}, fmt.Errorf("%w: [%d, %d] for tree of height %d", ErrInvalidRange, start, end, tree.height)
	}
	if !tree.IsRehashed() {
		return CollapsedUpdate{}, ErrNotRehashed
	}
	steps := Steps(start, end)
	res := CollapsedUpdate{Start: start, End: end, Hashes: make([]PartialHash, 0, len(steps))}
	for _, step := range steps {
		n := lookup(tree.top(), step.Index, step.Height)
		var hash Digest
		switch n := n.(type) {
		case *stub[A]:
			// a default subtree above the block covers it with defaults
			hash = defaultDigests[step.Height]
		case *collapsed[A]:
			if n.h != step.Height {
				panic(fmt.Sprintf("block %d of height %d is in a collapsed range", step.Index, step.Height))
			}
			hash = n.hash
		default:
			hash, _ = n.root()
		}
		res.Hashes = append(res.Hashes, PartialHash{Index: step.Index, Height: step.Height, Hash: hash})
	}
	return res, nil
}

// ApplyCollapsedUpdate splices the blocks of the update into the tree as
// collapsed subtrees, replacing their previous content. The result needs to
// be rehashed.
func (t MerkleTree[A]) ApplyCollapsedUpdate(update CollapsedUpdate) MerkleTree[A] {
	root := t.top()
	for _, partial := range update.Hashes {
		if partial.Height > t.height || partial.Index&lowMask(partial.Height) != 0 || partial.Index > t.MaxIndex() {
			panic(fmt.Sprintf("misaligned block %d of height %d for tree of height %d", partial.Index, partial.Height, t.height))
		}
		repl := node[A](&collapsed[A]{hash: partial.Hash, h: partial.Height})
		root = replace(root, partial.Index, partial.Height, repl)
	}
	return MerkleTree[A]{root: root, height: t.height}
}
