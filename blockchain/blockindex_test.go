// Copyright (c) 2018 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"reflect"
	"testing"
	"time"

	"github.com/scnode/scnode/chainhash"
	"github.com/scnode/scnode/wire"
)

// mustParseHash converts the passed big-endian hex string into a
// chainhash.Hash and will panic if there is an error. It only differs from
// the one available in chainhash in that it will panic so errors in the
// source code be detected. It must only be called with hard-coded, and
// therefore known good, hashes.
func mustParseHash(s string) *chainhash.Hash {
	hash, err := chainhash.NewHashFromStr(s)
	if err != nil {
		panic("invalid hash in source file: " + s)
	}
	return hash
}

func TestBlockNodeHeader(t *testing.T) {
	params := regNetTestParams()
	cc := NewChainContext(params)

	testHeader := wire.BlockHeader{
		Version:          1,
		PrevBlock:        cc.bestNode.hash,
		MerkleRoot:       *mustParseHash("09876543210987654321"),
		Timestamp:        time.Unix(1454954400, 0),
		Bits:             0x1234,
		Nonce:            [32]byte{7},
		EquihashSolution: []byte{0xaa, 0xbb, 0xcc},
	}
	node := newBlockNode(&testHeader, cc.bestNode)
	cc.index.AddNode(node)

	gotHeader := node.Header()
	if !reflect.DeepEqual(gotHeader, testHeader) {
		t.Fatalf("node.Header: mismatched headers: got %+v, want %+v", gotHeader, testHeader)
	}

	testHeaderHash := testHeader.BlockHash()
	gotHeader, err := cc.FetchHeader(&testHeaderHash)
	if err != nil {
		t.Fatalf("FetchHeader: unexpected error: %v", err)
	}
	if !reflect.DeepEqual(gotHeader, testHeader) {
		t.Fatalf("FetchHeader: mismatched headers: got %+v, want %+v", gotHeader, testHeader)
	}
}

func TestCalcPastMedianTime(t *testing.T) {
	tests := []struct {
		name       string
		timestamps []int64
		expected   int64
	}{
		{
			name:       "one block",
			timestamps: []int64{1517188771},
			expected:   1517188771,
		},
		{
			name:       "two blocks, in order",
			timestamps: []int64{1517188771, 1517188831},
			expected:   1517188771,
		},
		{
			name:       "three blocks, in order",
			timestamps: []int64{1517188771, 1517188831, 1517188891},
			expected:   1517188831,
		},
		{
			name:       "three blocks, out of order",
			timestamps: []int64{1517188771, 1517188891, 1517188831},
			expected:   1517188831,
		},
		{
			name:       "eleven blocks, in order",
			timestamps: []int64{1517188771, 1517188831, 1517188891, 1517188951,
				1517189011, 1517189071, 1517189131, 1517189191, 1517189251,
				1517189311, 1517189371},
			expected: 1517189071,
		},
	}

	params := regNetTestParams()
	for _, test := range tests {
		cc := NewChainContext(params)
		node := cc.bestNode
		for _, timestamp := range test.timestamps {
			node = chainedFakeNode(node, timestamp)
			cc.index.AddNode(node)
			cc.bestNode = node
		}

		gotTime, err := cc.index.CalcPastMedianTime(node)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", test.name, err)
			continue
		}
		wantTime := time.Unix(test.expected, 0)
		if !gotTime.Equal(wantTime) {
			t.Errorf("%s: mismatched timestamps -- got: %v, want: %v", test.name, gotTime, wantTime)
		}
	}
}

func TestChainTips(t *testing.T) {
	params := regNetTestParams()
	cc := NewChainContext(params)
	genesis := cc.bestNode

	branches := make([][]*blockNode, 4)
	branches[0] = chainedFakeNodes(genesis, 4)
	branches[1] = chainedFakeNodes(branches[0][0], 6)
	branches[2] = chainedFakeNodes(genesis, 1)
	branches[3] = chainedFakeNodes(genesis, 1)

	for _, branch := range branches {
		for _, node := range branch {
			cc.index.AddNode(node)
		}
	}

	chainTips := make(map[*blockNode]struct{})
	cc.index.RLock()
	for _, nodes := range cc.index.chainTips {
		for _, node := range nodes {
			chainTips[node] = struct{}{}
		}
	}
	cc.index.RUnlock()

	tip := func(nodes []*blockNode) *blockNode { return nodes[len(nodes)-1] }
	expectedTips := make(map[*blockNode]struct{})
	for _, branch := range branches {
		expectedTips[tip(branch)] = struct{}{}
	}

	if len(chainTips) != len(expectedTips) {
		t.Fatalf("block index reports %d chain tips, but %d were expected",
			len(chainTips), len(expectedTips))
	}
	for node := range expectedTips {
		if _, ok := chainTips[node]; !ok {
			t.Fatalf("block index does not contain expected tip %s (height %d)",
				node.hash, node.height)
		}
	}
}
