// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package cache tracks which parts of the initial state of a run have been
// accessed. Cached instruction variants may only touch state that has been
// visited before, which allows a prover to declare the accessed state of an
// execution in advance.
package cache

import (
	"fmt"
	"strings"

	"github.com/Fantom-foundation/Strata/go/state"
)

// CacheKey names a position in the initial state: the slot of the initial
// stack the position originates from, and the sequence of keys used to
// descend into it. A nil *CacheKey denotes a value not derived from the
// initial state, which is never subject to cache checks.
type CacheKey struct {
	Slot int
	Path [][]byte
}

// Root returns the key of the given initial stack slot.
func Root(slot int) *CacheKey {
	return &CacheKey{Slot: slot}
}

// Child derives the key of the value reached by indexing k with key.
func (k *CacheKey) Child(key []byte) *CacheKey {
	if k == nil {
		return nil
	}
	path := make([][]byte, len(k.Path), len(k.Path)+1)
	copy(path, k.Path)
	return &CacheKey{Slot: k.Slot, Path: append(path, key)}
}

func (k *CacheKey) String() string {
	if k == nil {
		return "untracked"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "slot(%d)", k.Slot)
	for _, p := range k.Path {
		fmt.Fprintf(&b, "/0x%x", p)
	}
	return b.String()
}

// InnerCache is the visited part of a single value. A fully cached entry
// covers all positions below it.
type InnerCache struct {
	full     bool
	children map[string]*InnerCache
}

func (c *InnerCache) child(key []byte) (*InnerCache, bool) {
	if c.children == nil {
		c.children = map[string]*InnerCache{}
	}
	if next, found := c.children[string(key)]; found {
		return next, true
	}
	next := &InnerCache{}
	c.children[string(key)] = next
	return next, false
}

// Cache is the per-run access tracker. It is not safe for concurrent use.
type Cache struct {
	slots []*InnerCache
}

// New creates a cache for an initial stack with the given strengths. Strong
// values are fully cached, weak values start out unvisited.
func New(strengths []state.Strength) *Cache {
	res := &Cache{slots: make([]*InnerCache, len(strengths))}
	for i, s := range strengths {
		res.slots[i] = &InnerCache{full: s == state.Strong}
	}
	return res
}

// Visit marks the position named by key as visited, creating all missing
// entries on the way. The result reports whether the full path had been
// visited before. Untracked keys always report true.
func (c *Cache) Visit(key *CacheKey) bool {
	if key == nil {
		return true
	}
	if key.Slot < 0 || key.Slot >= len(c.slots) {
		return false
	}
	cur := c.slots[key.Slot]
	existed := true
	for _, k := range key.Path {
		if cur.full {
			return existed
		}
		next, found := cur.child(k)
		existed = existed && found
		cur = next
	}
	return existed
}

// IsCached reports whether the position named by key has been visited,
// without recording a visit.
func (c *Cache) IsCached(key *CacheKey) bool {
	if key == nil {
		return true
	}
	if key.Slot < 0 || key.Slot >= len(c.slots) {
		return false
	}
	cur := c.slots[key.Slot]
	for _, k := range key.Path {
		if cur.full {
			return true
		}
		next, found := cur.children[string(k)]
		if !found {
			return false
		}
		cur = next
	}
	return true
}
