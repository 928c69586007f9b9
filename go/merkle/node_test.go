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
)

func TestNode_OnlyLeavesCarryPayload(t *testing.T) {
	nodes := map[string]node[string]{
		"branch":    &branch[string]{left: &stub[string]{}, right: &stub[string]{}, h: 1},
		"stub":      &stub[string]{h: 3},
		"collapsed": &collapsed[string]{h: 2},
	}
	for name, n := range nodes {
		t.Run(name, func(t *testing.T) {
			assert.Nil(t, n.payload())
		})
	}
	l := &leaf[string]{hash: LeafHash([]byte("x")), aux: "payload"}
	require.NotNil(t, l.payload())
	assert.Equal(t, "payload", *l.payload())
}

func TestNode_HelpersWorkOnInterfaceValues(t *testing.T) {
	var n node[string] = &stub[string]{h: 2}
	b := expand(n)
	require.Equal(t, uint8(2), b.height())
	assert.False(t, isFull(n))
	assert.Equal(t, uint64(0), countLeaves(n))

	l := &leaf[string]{hash: LeafHash([]byte("x")), aux: "a"}
	n = replace(n, 3, 0, node[string](l))
	assert.Equal(t, uint64(1), countLeaves(n))
	assert.Equal(t, l, lookup(n, 3, 0))

	n = rehash(n)
	_, ok := n.root()
	assert.True(t, ok)
}

func TestMerkleTree_IndexReturnsLeafPayload(t *testing.T) {
	tree := Blank[string](4).Update(5, []byte("five"), "aux").Rehash()
	hash, aux, found := tree.Index(5)
	require.True(t, found)
	assert.Equal(t, LeafHash([]byte("five")), hash)
	assert.Equal(t, "aux", aux)

	_, aux, found = tree.Index(6)
	assert.False(t, found)
	assert.Equal(t, "", aux)
}
