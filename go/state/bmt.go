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

	"github.com/Fantom-foundation/Strata/go/merkle"
)

// BoundedMerkleTree is a container backed by a sparse Merkle tree of fixed
// height. Keys are leaf indexes, values are cells which are stored as their
// leaf hashes. Reading a leaf yields its hash, not the inserted cell.
//
// All trees produced by the operations of this type are rehashed.
type BoundedMerkleTree struct {
	tree merkle.MerkleTree[struct{}]
}

func (BoundedMerkleTree) Kind() Kind  { return KindBmt }
func (BoundedMerkleTree) stateValue() {}

func NewBoundedMerkleTree(height uint8) BoundedMerkleTree {
	return BoundedMerkleTree{tree: merkle.Blank[struct{}](height)}
}

// WrapMerkleTree turns the given tree into a state value.
func WrapMerkleTree(tree merkle.MerkleTree[struct{}]) BoundedMerkleTree {
	return BoundedMerkleTree{tree: tree}
}

func (t BoundedMerkleTree) Tree() merkle.MerkleTree[struct{}] {
	return t.tree
}

func (t BoundedMerkleTree) Height() uint8 {
	return t.tree.Height()
}

// Root returns the root digest of the tree, false if it is not rehashed.
func (t BoundedMerkleTree) Root() (merkle.Digest, bool) {
	return t.tree.Root()
}

// Len returns the number of leaf positions of the tree.
func (t BoundedMerkleTree) Len() uint64 {
	if t.tree.Height() >= 64 {
		return ^uint64(0)
	}
	return uint64(1) << t.tree.Height()
}

func (t BoundedMerkleTree) index(key Cell) (uint64, error) {
	i, err := key.Uint64()
	if err != nil {
		return 0, err
	}
	if i > t.tree.MaxIndex() {
		return 0, fmt.Errorf("%w: index %d of tree of height %d", ErrIndexOutOfBounds, i, t.tree.Height())
	}
	return i, nil
}

// Get returns the leaf hash stored at the given index as a cell, or Null for
// default leaves.
func (t BoundedMerkleTree) Get(key Cell) (StateValue, error) {
	i, err := t.index(key)
	if err != nil {
		return nil, err
	}
	hash, _, found := t.tree.Index(i)
	if !found {
		return Null{}, nil
	}
	return DigestCell(hash), nil
}

func (t BoundedMerkleTree) Contains(key Cell) (bool, error) {
	i, err := t.index(key)
	if err != nil {
		return false, err
	}
	return t.tree.Contains(i), nil
}

// Insert stores the leaf hash of the given cell at the given index. Inserting
// Null resets the leaf.
func (t BoundedMerkleTree) Insert(key Cell, value StateValue) (Container, error) {
	i, err := t.index(key)
	if err != nil {
		return nil, err
	}
	if value == nil || value.Kind() == KindNull {
		return BoundedMerkleTree{tree: t.tree.Remove(i).Rehash()}, nil
	}
	cell, err := AsCell(value)
	if err != nil {
		return nil, err
	}
	return BoundedMerkleTree{tree: t.tree.Update(i, cell, struct{}{}).Rehash()}, nil
}

func (t BoundedMerkleTree) Remove(key Cell) (Container, error) {
	i, err := t.index(key)
	if err != nil {
		return nil, err
	}
	return BoundedMerkleTree{tree: t.tree.Remove(i).Rehash()}, nil
}

func (t BoundedMerkleTree) equal(other BoundedMerkleTree) bool {
	if t.tree.Height() != other.tree.Height() {
		return false
	}
	a, okA := t.tree.Root()
	b, okB := other.tree.Root()
	return okA && okB && a == b
}

func (t BoundedMerkleTree) String() string {
	return t.tree.String()
}

// DigestCell encodes a digest as a cell of its 32 big-endian bytes.
func DigestCell(d merkle.Digest) Cell {
	b := d.Bytes()
	return Cell(b[:])
}
