// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2017 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/scnode/scnode/chaincfg"
)

// regNetTestParams returns the regression test network parameters used
// throughout this package's tests, so the synthetic chains built here run
// fast and deterministically.
func regNetTestParams() *chaincfg.Params {
	return chaincfg.RegNetParams()
}

// chainedFakeNode builds a single synthetic child of parent carrying the
// given timestamp, with every other header field left at its zero value.
// It exists purely to drive the block-index bookkeeping tests without
// needing a fully solved, consensus-valid block.
func chainedFakeNode(parent *blockNode, timestamp int64) *blockNode {
	node := &blockNode{
		parent:    parent,
		timestamp: timestamp,
		bits:      parent.bits,
	}
	node.height = parent.height + 1
	// Derive a distinguishing, deterministic hash from the parent hash and
	// height so each synthetic node is unique in the index.
	node.hash = parent.hash
	node.hash[0]++
	node.hash[1] = byte(node.height)
	parent.children = append(parent.children, node)
	return node
}

// chainedFakeNodes builds a chain of numNodes synthetic nodes extending
// parent, returned in order from the one nearest the genesis to the tip.
func chainedFakeNodes(parent *blockNode, numNodes int) []*blockNode {
	nodes := make([]*blockNode, 0, numNodes)
	tip := parent
	for i := 0; i < numNodes; i++ {
		tip = chainedFakeNode(tip, tip.timestamp+150)
		// Perturb the hash further by position and by the node's index
		// among its parent's children, so sibling branches built from the
		// same parent don't collide.
		tip.hash[2] = byte(i + 1)
		tip.hash[3] += byte(len(tip.parent.children) - 1)
		nodes = append(nodes, tip)
	}
	return nodes
}

func TestChainContextBestTip(t *testing.T) {
	params := regNetTestParams()
	cc := NewChainContext(params)

	if cc.BestHeight() != 0 {
		t.Fatalf("expected genesis height 0, got %d", cc.BestHeight())
	}
	if cc.BestHash() != cc.bestNode.hash {
		t.Fatalf("BestHash did not match genesis node hash")
	}
}

func TestMainChainHasBlock(t *testing.T) {
	params := regNetTestParams()
	cc := NewChainContext(params)
	genesis := cc.bestNode

	branchA := chainedFakeNodes(genesis, 3)
	branchB := chainedFakeNodes(genesis, 2)
	for _, n := range branchA {
		cc.index.AddNode(n)
	}
	for _, n := range branchB {
		cc.index.AddNode(n)
	}
	cc.bestNode = branchA[len(branchA)-1]

	if !cc.MainChainHasBlock(&branchA[0].hash) {
		t.Fatalf("expected branch A node to be on the main chain")
	}
	if cc.MainChainHasBlock(&branchB[0].hash) {
		t.Fatalf("expected branch B node to not be on the main chain")
	}
}
