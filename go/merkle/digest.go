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

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/mimc"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/sha3"
)

// Digest is the hash type of tree nodes, an element of the BLS12-381 scalar
// field. Digests are comparable using ==.
type Digest struct {
	fr.Element
}

// DigestFromBytes interprets the given big-endian bytes as a field element,
// reducing it modulo the field order.
func DigestFromBytes(data []byte) Digest {
	var d Digest
	d.SetBytes(data)
	return d
}

func (d Digest) String() string {
	b := d.Bytes()
	return fmt.Sprintf("0x%x", b[:])
}

// leafDomainTag separates leaf hashes from all other uses of the leaf hash
// function.
const leafDomainTag = "strata:merkle:leaf"

// LeafHash computes the domain-tagged hash of a leaf value.
func LeafHash(value []byte) Digest {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(leafDomainTag))
	h.Write(value)
	return DigestFromBytes(h.Sum(nil))
}

// nodeHash computes the digest of a branch from the digests of its children.
func nodeHash(left, right Digest) Digest {
	h := mimc.NewMiMC()
	l, r := left.Bytes(), right.Bytes()
	// canonical field element encodings are always accepted by the hasher
	h.Write(l[:])
	h.Write(r[:])
	return DigestFromBytes(h.Sum(nil))
}

// MaxHeight is the maximum height of a tree. Trees of this height are indexed
// by the full range of uint64.
const MaxHeight = 64

// defaultDigests[h] is the digest of an all-default subtree of height h.
var defaultDigests [MaxHeight + 1]Digest

func init() {
	for h := 1; h <= MaxHeight; h++ {
		defaultDigests[h] = nodeHash(defaultDigests[h-1], defaultDigests[h-1])
	}
}

// DefaultDigest returns the root of a blank tree of the given height.
func DefaultDigest(height uint8) Digest {
	return defaultDigests[height]
}

// LeafHasher is an LRU governed cache of leaf hashes. Values hashed into
// trees are frequently re-inserted, so their leaf hashes are worth retaining.
// The hasher is thread-safe.
type LeafHasher struct {
	cache *lru.Cache[string, Digest]
}

// maxCachedValueLength is the maximum length of values whose leaf hash is
// retained by a LeafHasher. Longer values are hashed on demand.
const maxCachedValueLength = 1 << 10

func NewLeafHasher(capacity int) (*LeafHasher, error) {
	cache, err := lru.New[string, Digest](capacity)
	if err != nil {
		return nil, err
	}
	return &LeafHasher{cache: cache}, nil
}

// Hash fetches a cached leaf hash or computes the hash for the provided value.
func (h *LeafHasher) Hash(value []byte) Digest {
	if len(value) > maxCachedValueLength {
		return LeafHash(value)
	}
	if res, found := h.cache.Get(string(value)); found {
		return res
	}
	res := LeafHash(value)
	h.cache.Add(string(value), res)
	return res
}

var defaultLeafHasher = func() *LeafHasher {
	hasher, err := NewLeafHasher(1 << 14)
	if err != nil {
		panic(fmt.Sprintf("failed to create leaf hasher: %v", err))
	}
	return hasher
}()
