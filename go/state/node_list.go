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
	"encoding/binary"
	"fmt"

	"github.com/Fantom-foundation/Strata/go/common"
	"github.com/Fantom-foundation/Strata/go/merkle"
)

const ErrMalformedNodeList = common.ConstError("malformed node list")

// MaxLogSize is the maximum encoded size of a logged value in bytes.
const MaxLogSize = 1 << 19

// Node is an element of a NodeList. Children refer to nodes listed earlier.
type Node struct {
	Tag      Kind
	Payload  []byte
	Children []uint32
}

func (n Node) encodedSize() uint64 {
	return 1 + 4 + uint64(len(n.Payload)) + 4 + 4*uint64(len(n.Children))
}

// NodeList is the flattened form of a value. Nodes are listed children first,
// the last node is the root.
//
// Payloads: cells carry their bytes; trees carry their height followed by an
// 8 byte index and a 32 byte leaf hash per set leaf. Map nodes list key and
// value nodes alternately as children, array nodes their elements.
type NodeList struct {
	Nodes []Node
}

type nodeListBuilder struct {
	nodes []Node
	size  uint64
	limit uint64
}

func (b *nodeListBuilder) add(n Node) (uint32, error) {
	b.size += n.encodedSize()
	if b.size > b.limit {
		return 0, fmt.Errorf("%w: encoding exceeds %d bytes", ErrLogBoundExceeded, b.limit)
	}
	b.nodes = append(b.nodes, n)
	return uint32(len(b.nodes) - 1), nil
}

func (b *nodeListBuilder) addValue(v StateValue) (uint32, error) {
	switch v := v.(type) {
	case nil, Null:
		return b.add(Node{Tag: KindNull})
	case Cell:
		return b.add(Node{Tag: KindCell, Payload: v})
	case Map:
		children := make([]uint32, 0, 2*v.Len())
		var err error
		v.ForEach(func(key Cell, value StateValue) {
			if err != nil {
				return
			}
			var k, c uint32
			if k, err = b.addValue(key); err != nil {
				return
			}
			if c, err = b.addValue(value); err != nil {
				return
			}
			children = append(children, k, c)
		})
		if err != nil {
			return 0, err
		}
		return b.add(Node{Tag: KindMap, Children: children})
	case Array:
		children := make([]uint32, 0, len(v.elements))
		for _, e := range v.elements {
			c, err := b.addValue(e)
			if err != nil {
				return 0, err
			}
			children = append(children, c)
		}
		return b.add(Node{Tag: KindArray, Children: children})
	case BoundedMerkleTree:
		// check the bound before materializing the payload of large trees
		if size := 1 + 40*v.tree.Size(); v.tree.Size() > b.limit || b.size+size > b.limit {
			return 0, fmt.Errorf("%w: tree with %d leaves", ErrLogBoundExceeded, v.tree.Size())
		}
		payload := []byte{v.tree.Height()}
		v.tree.ForEachLeaf(func(index uint64, hash merkle.Digest, _ struct{}) {
			payload = binary.BigEndian.AppendUint64(payload, index)
			h := hash.Bytes()
			payload = append(payload, h[:]...)
		})
		return b.add(Node{Tag: KindBmt, Payload: payload})
	}
	panic(fmt.Sprintf("unexpected value of type %T", v))
}

// ToNodeList flattens a value into a node list whose encoding does not exceed
// limit bytes. The encoded size is returned along with the list.
func ToNodeList(v StateValue, limit uint64) (NodeList, uint64, error) {
	b := nodeListBuilder{limit: limit}
	if _, err := b.addValue(v); err != nil {
		return NodeList{}, 0, err
	}
	return NodeList{Nodes: b.nodes}, b.size, nil
}

// Size returns the length of the encoding of the list.
func (l NodeList) Size() uint64 {
	var res uint64
	for _, n := range l.Nodes {
		res += n.encodedSize()
	}
	return res
}

// Bytes encodes the list. Each node is encoded as its tag, the length
// prefixed payload and the length prefixed list of children, all integers
// in big-endian order.
func (l NodeList) Bytes() []byte {
	res := make([]byte, 0, l.Size())
	for _, n := range l.Nodes {
		res = append(res, byte(n.Tag))
		res = binary.BigEndian.AppendUint32(res, uint32(len(n.Payload)))
		res = append(res, n.Payload...)
		res = binary.BigEndian.AppendUint32(res, uint32(len(n.Children)))
		for _, c := range n.Children {
			res = binary.BigEndian.AppendUint32(res, c)
		}
	}
	return res
}

// DecodeNodeList parses the encoding produced by NodeList.Bytes.
func DecodeNodeList(data []byte) (NodeList, error) {
	var res NodeList
	readUint32 := func() (uint32, error) {
		if len(data) < 4 {
			return 0, fmt.Errorf("%w: truncated length", ErrMalformedNodeList)
		}
		v := binary.BigEndian.Uint32(data)
		data = data[4:]
		return v, nil
	}
	for len(data) > 0 {
		n := Node{Tag: Kind(data[0])}
		data = data[1:]
		length, err := readUint32()
		if err != nil {
			return NodeList{}, err
		}
		if uint64(len(data)) < uint64(length) {
			return NodeList{}, fmt.Errorf("%w: truncated payload", ErrMalformedNodeList)
		}
		n.Payload = append([]byte(nil), data[:length]...)
		data = data[length:]
		count, err := readUint32()
		if err != nil {
			return NodeList{}, err
		}
		if uint64(len(data)) < 4*uint64(count) {
			return NodeList{}, fmt.Errorf("%w: truncated children", ErrMalformedNodeList)
		}
		n.Children = make([]uint32, count)
		for i := range n.Children {
			n.Children[i], _ = readUint32()
		}
		res.Nodes = append(res.Nodes, n)
	}
	return res, nil
}

// Value reconstructs the value encoded by the list.
func (l NodeList) Value() (StateValue, error) {
	if len(l.Nodes) == 0 {
		return nil, fmt.Errorf("%w: empty list", ErrMalformedNodeList)
	}
	values := make([]StateValue, len(l.Nodes))
	for i, n := range l.Nodes {
		for _, c := range n.Children {
			if int(c) >= i {
				return nil, fmt.Errorf("%w: node %d refers to node %d", ErrMalformedNodeList, i, c)
			}
		}
		v, err := n.value(values)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		values[i] = v
	}
	return values[len(values)-1], nil
}

func (n Node) value(values []StateValue) (StateValue, error) {
	switch n.Tag {
	case KindNull:
		return Null{}, nil
	case KindCell:
		return Cell(n.Payload), nil
	case KindMap:
		if len(n.Children)%2 != 0 {
			return nil, fmt.Errorf("%w: odd number of map children", ErrMalformedNodeList)
		}
		entries := make(map[string]StateValue, len(n.Children)/2)
		for i := 0; i < len(n.Children); i += 2 {
			key, err := AsCell(values[n.Children[i]])
			if err != nil {
				return nil, err
			}
			entries[string(key)] = values[n.Children[i+1]]
		}
		return NewMap(entries), nil
	case KindArray:
		if len(n.Children) > MaxArrayLength {
			return nil, fmt.Errorf("%w: array of length %d", ErrMalformedNodeList, len(n.Children))
		}
		elements := make([]StateValue, len(n.Children))
		for i, c := range n.Children {
			elements[i] = values[c]
		}
		return NewArrayOf(elements...), nil
	case KindBmt:
		if len(n.Payload) == 0 || (len(n.Payload)-1)%40 != 0 || n.Payload[0] > merkle.MaxHeight {
			return nil, fmt.Errorf("%w: misaligned tree payload", ErrMalformedNodeList)
		}
		tree := merkle.Blank[struct{}](n.Payload[0])
		for rest := n.Payload[1:]; len(rest) > 0; rest = rest[40:] {
			index := binary.BigEndian.Uint64(rest)
			if index > tree.MaxIndex() {
				return nil, fmt.Errorf("%w: leaf %d out of range", ErrMalformedNodeList, index)
			}
			tree = tree.UpdateHash(index, merkle.DigestFromBytes(rest[8:40]), struct{}{})
		}
		return WrapMerkleTree(tree.Rehash()), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrInvalidKind, n.Tag)
}
