// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/scnode/scnode/chainhash"
	"github.com/scnode/scnode/wire"
)

// blockStatus is a bitmask describing the validation state of a blockNode,
// per spec.md §3 "Block index node: validity status bits".
type blockStatus uint8

const (
	statusDataStored blockStatus = 1 << iota
	statusValid
	statusValidateFailed
	statusInvalidAncestor
)

// medianTimeBlocks is the number of previous blocks used to calculate the
// median time used to validate block timestamps, per spec.md §4.5 step 3b.
const medianTimeBlocks = 11

// blockNode is the in-memory representation of one entry in the block
// index arena. It carries the header fields needed by consensus rules plus
// the cumulative sidechain/shielded-pool bookkeeping spec.md §4.1 and §3
// require to be available without re-reading every ancestor block from
// disk on every query.
type blockNode struct {
	parent *blockNode
	hash   chainhash.Hash
	height int64

	version   int32
	bits      uint32
	timestamp int64
	nonce     [32]byte
	merkleRoot chainhash.Hash
	equihashSolution []byte

	status blockStatus

	// cumShieldedCommitments is a slot for the count of shielded output
	// commitments appended by every block up to and including this one.
	// Nothing in this package assigns it: newBlockNode and Connect leave
	// it at zero.
	cumShieldedCommitments uint64

	// cumSidechainTreeRoot is the slot HeightForCumulativeRoot matches a
	// certificate's end-epoch cumulative root against. Nothing in this
	// package assigns it: newBlockNode and Connect leave it at the zero
	// hash, so HeightForCumulativeRoot resolves only the zero root.
	cumSidechainTreeRoot chainhash.Hash

	children []*blockNode
}

// newBlockNode returns a new block node for the given header, wired to the
// given parent.
func newBlockNode(header *wire.BlockHeader, parent *blockNode) *blockNode {
	node := &blockNode{
		parent:           parent,
		hash:             header.BlockHash(),
		version:          header.Version,
		bits:             header.Bits,
		timestamp:        header.Timestamp.Unix(),
		nonce:            header.Nonce,
		merkleRoot:       header.MerkleRoot,
		equihashSolution: append([]byte(nil), header.EquihashSolution...),
	}
	if parent != nil {
		node.height = parent.height + 1
		node.parent = parent
		parent.children = append(parent.children, node)
	}
	return node
}

// Header reconstructs the wire representation of the node's block header.
func (n *blockNode) Header() wire.BlockHeader {
	var prevHash chainhash.Hash
	if n.parent != nil {
		prevHash = n.parent.hash
	}
	return wire.BlockHeader{
		Version:          n.version,
		PrevBlock:        prevHash,
		MerkleRoot:       n.merkleRoot,
		Timestamp:        time.Unix(n.timestamp, 0),
		Bits:             n.bits,
		Nonce:            n.nonce,
		EquihashSolution: append([]byte(nil), n.equihashSolution...),
	}
}

// Ancestor returns the ancestor block node at the provided height by
// walking backwards from this node, following parent links. It returns nil
// if the height is not in the range [0, n.height] or is otherwise invalid.
func (n *blockNode) Ancestor(height int64) *blockNode {
	if height < 0 || height > n.height {
		return nil
	}

	node := n
	for node != nil && node.height != height {
		node = node.parent
	}
	return node
}

// RelativeAncestor returns the ancestor block node a relative distance
// blocks before this node.
func (n *blockNode) RelativeAncestor(distance int64) *blockNode {
	return n.Ancestor(n.height - distance)
}

// BlockIndex provides facilities for keeping track of an in-memory arena of
// block nodes, indexed by block hash, along with the set of current chain
// tips, per spec.md §4.1's block index namespace.
type BlockIndex struct {
	sync.RWMutex
	index     map[chainhash.Hash]*blockNode
	chainTips map[int64][]*blockNode
}

// NewBlockIndex returns a new, empty block index.
func NewBlockIndex() *BlockIndex {
	return &BlockIndex{
		index:     make(map[chainhash.Hash]*blockNode),
		chainTips: make(map[int64][]*blockNode),
	}
}

// HaveBlock returns whether the block index contains the provided hash.
func (bi *BlockIndex) HaveBlock(hash *chainhash.Hash) bool {
	bi.RLock()
	_, ok := bi.index[*hash]
	bi.RUnlock()
	return ok
}

// LookupNode returns the block node identified by the provided hash, or nil
// if it is not known.
func (bi *BlockIndex) LookupNode(hash *chainhash.Hash) *blockNode {
	bi.RLock()
	node := bi.index[*hash]
	bi.RUnlock()
	return node
}

// AddNode adds the provided node to the block index and updates the set of
// chain tips accordingly: the node becomes a tip at its own height, and its
// parent (if it was previously a tip at the parent's height) is removed
// from the tip set.
func (bi *BlockIndex) AddNode(node *blockNode) {
	bi.Lock()
	defer bi.Unlock()

	bi.index[node.hash] = node
	bi.chainTips[node.height] = append(bi.chainTips[node.height], node)

	if node.parent != nil {
		tips := bi.chainTips[node.parent.height]
		for i, tip := range tips {
			if tip == node.parent {
				bi.chainTips[node.parent.height] = append(tips[:i], tips[i+1:]...)
				break
			}
		}
		if len(bi.chainTips[node.parent.height]) == 0 {
			delete(bi.chainTips, node.parent.height)
		}
	}
}

// CalcPastMedianTime calculates the median time of the previous few blocks
// prior to, and including, the passed block node, per spec.md §4.5 step
// 3b's "median time past" rule.
func (bi *BlockIndex) CalcPastMedianTime(node *blockNode) (time.Time, error) {
	if node == nil {
		return time.Time{}, fmt.Errorf("CalcPastMedianTime called with a nil node")
	}

	timestamps := make([]int64, 0, medianTimeBlocks)
	iterNode := node
	for i := 0; i < medianTimeBlocks && iterNode != nil; i++ {
		timestamps = append(timestamps, iterNode.timestamp)
		iterNode = iterNode.parent
	}

	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })

	medianTimestamp := timestamps[len(timestamps)/2]
	return time.Unix(medianTimestamp, 0), nil
}
