// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/scnode/scnode/blockchain/coinview"
	"github.com/scnode/scnode/chainhash"
	"github.com/scnode/scnode/wire"
)

// TestConnectRejectsUnknownParent verifies that Connect rejects a block
// whose declared previous hash is not present in the block index without
// needing a fully solved block, since the parent/tip relationship is
// checked before the expensive context-free validation runs.
func TestConnectRejectsUnknownParent(t *testing.T) {
	cc := NewChainContext(regNetTestParams())
	block := &wire.MsgBlock{Header: wire.BlockHeader{PrevBlock: chainhash.HashH([]byte("nowhere"))}}

	err := cc.Connect(block)
	if !IsErrorCode(err, ErrMissingParent) {
		t.Fatalf("expected ErrMissingParent, got %v", err)
	}
}

// TestConnectRejectsNonTipParent verifies that Connect refuses to extend a
// known block index entry that isn't the current best tip.
func TestConnectRejectsNonTipParent(t *testing.T) {
	cc := NewChainContext(regNetTestParams())
	genesis := cc.bestNode
	sideBranch := chainedFakeNodes(genesis, 1)[0]
	cc.index.AddNode(sideBranch)
	// genesis remains the tip; sideBranch is known but stale.

	block := &wire.MsgBlock{Header: wire.BlockHeader{PrevBlock: sideBranch.hash}}
	err := cc.Connect(block)
	if err == nil {
		t.Fatalf("expected an error extending a non-tip parent")
	}
	if IsErrorCode(err, ErrMissingParent) {
		t.Fatalf("expected the non-tip rejection, not ErrMissingParent: %v", err)
	}
}

func TestNextAnchorIsDeterministicAndOrderSensitive(t *testing.T) {
	cmA := chainhash.HashH([]byte("a"))
	cmB := chainhash.HashH([]byte("b"))

	forward := nextAnchor(coinview.EmptyAnchor, []chainhash.Hash{cmA, cmB})
	backward := nextAnchor(coinview.EmptyAnchor, []chainhash.Hash{cmB, cmA})
	again := nextAnchor(coinview.EmptyAnchor, []chainhash.Hash{cmA, cmB})

	if forward != again {
		t.Fatalf("nextAnchor is not deterministic for the same input order")
	}
	if forward == backward {
		t.Fatalf("nextAnchor should be sensitive to commitment order")
	}
	if forward.CommitmentCount != 2 {
		t.Fatalf("expected CommitmentCount 2, got %d", forward.CommitmentCount)
	}
}

func TestNextAnchorNoCommitmentsIsNoop(t *testing.T) {
	prev := coinview.Anchor{Root: chainhash.HashH([]byte("root")), CommitmentCount: 5}
	got := nextAnchor(prev, nil)
	if got != prev {
		t.Fatalf("expected nextAnchor with no commitments to return prev unchanged, got %+v", got)
	}
}

func TestRemoveScheduledTransferRemovesByIdentity(t *testing.T) {
	a := &wire.ForwardTransfer{Scid: chainhash.HashH([]byte("a"))}
	b := &wire.ForwardTransfer{Scid: chainhash.HashH([]byte("b"))}
	list := []scheduledTransfer{{Transfer: a}, {Transfer: b}}

	got := removeScheduledTransfer(list, scheduledTransfer{Transfer: a})
	if len(got) != 1 || got[0].Transfer != b {
		t.Fatalf("expected only b to remain, got %+v", got)
	}
}

func TestRemoveScheduledTransferNoMatchIsNoop(t *testing.T) {
	a := &wire.ForwardTransfer{Scid: chainhash.HashH([]byte("a"))}
	c := &wire.ForwardTransfer{Scid: chainhash.HashH([]byte("c"))}
	list := []scheduledTransfer{{Transfer: a}}

	got := removeScheduledTransfer(list, scheduledTransfer{Transfer: c})
	if len(got) != 1 || got[0].Transfer != a {
		t.Fatalf("expected list unchanged, got %+v", got)
	}
}

func TestFindForkCommonAncestor(t *testing.T) {
	cc := NewChainContext(regNetTestParams())
	genesis := cc.bestNode

	shared := chainedFakeNodes(genesis, 2)
	branchA := chainedFakeNodes(shared[len(shared)-1], 3)
	branchB := chainedFakeNodes(shared[len(shared)-1], 1)

	fork := findFork(branchA[len(branchA)-1], branchB[len(branchB)-1])
	if fork != shared[len(shared)-1] {
		t.Fatalf("expected fork at the shared tip, got height %d", fork.height)
	}
}

func TestFindForkUnrelatedChainsReturnsNil(t *testing.T) {
	ccA := NewChainContext(regNetTestParams())
	ccB := NewChainContext(regNetTestParams())
	a := chainedFakeNodes(ccA.bestNode, 2)
	b := chainedFakeNodes(ccB.bestNode, 2)

	if fork := findFork(a[len(a)-1], b[len(b)-1]); fork != nil {
		t.Fatalf("expected no common ancestor between independently rooted chains, got %v", fork)
	}
}

// TestDisconnectRejectsGenesis verifies the chain tip can never be rewound
// past the genesis block.
func TestDisconnectRejectsGenesis(t *testing.T) {
	cc := NewChainContext(regNetTestParams())
	if err := cc.Disconnect(); err == nil {
		t.Fatalf("expected an error disconnecting the genesis block")
	}
}

// TestDisconnectRejectsMissingUndoRecord verifies Disconnect refuses to
// rewind a tip whose undo record fell out of reorg reach (or was never
// recorded, as with a node manually spliced into the index by a test).
func TestDisconnectRejectsMissingUndoRecord(t *testing.T) {
	cc := NewChainContext(regNetTestParams())
	genesis := cc.bestNode
	tip := chainedFakeNodes(genesis, 1)[0]
	cc.index.AddNode(tip)
	cc.bestNode = tip

	if err := cc.Disconnect(); err == nil {
		t.Fatalf("expected an error disconnecting a block with no undo record")
	}
}

// TestDisconnectRestoresCoinViewAndTip drives disconnectTip directly
// against a hand-built blockUndo, the way Connect would have left it, to
// verify the coin view and chain tip are fully restored without needing a
// solved block to reach this code path through Connect.
func TestDisconnectRestoresCoinViewAndTip(t *testing.T) {
	cc := NewChainContext(regNetTestParams())
	genesis := cc.bestNode
	tip := chainedFakeNodes(genesis, 1)[0]
	cc.index.AddNode(tip)
	cc.bestNode = tip

	spentTxid := chainhash.HashH([]byte("spent"))
	newTxid := chainhash.HashH([]byte("new"))
	preBlockCoins := &coinview.Coins{Height: 1, Outputs: []*wire.TxOut{{Value: 5}}}

	// Simulate what Connect left behind: spentTxid's pre-block record is
	// restored on disconnect, newTxid (created by the block) is deleted.
	cc.view.PutCoins(spentTxid, nil)
	cc.view.PutCoins(newTxid, &coinview.Coins{Height: 1, Outputs: []*wire.TxOut{{Value: 1}}})
	if err := cc.view.Flush(); err != nil {
		t.Fatalf("unexpected error priming the view: %v", err)
	}

	cc.undoLog[tip.hash] = &blockUndo{
		PrevTip: genesis.hash,
		Coins: map[chainhash.Hash]*coinview.Coins{
			spentTxid: preBlockCoins,
			newTxid:   nil,
		},
		Sidechains:    make(map[chainhash.Hash]*coinview.SidechainRecord),
		Nullifiers:    make(map[chainhash.Hash]bool),
		CswNullifiers: make(map[coinview.CswNullifierKey]bool),
	}
	cc.filters[tip.hash] = nil

	if err := cc.Disconnect(); err != nil {
		t.Fatalf("unexpected error disconnecting: %v", err)
	}

	if cc.bestNode != genesis {
		t.Fatalf("expected tip to rewind to genesis, got height %d", cc.bestNode.height)
	}
	if _, ok := cc.undoLog[tip.hash]; ok {
		t.Fatalf("expected the disconnected block's undo record to be removed")
	}
	if _, ok := cc.filters[tip.hash]; ok {
		t.Fatalf("expected the disconnected block's filter to be removed")
	}

	restored, ok := cc.view.GetCoins(spentTxid)
	if !ok || len(restored.Outputs) != 1 || restored.Outputs[0].Value != 5 {
		t.Fatalf("expected spentTxid's coin record restored to its pre-block value, got %+v (ok=%v)", restored, ok)
	}
	if _, ok := cc.view.GetCoins(newTxid); ok {
		t.Fatalf("expected newTxid's coin record to be deleted on disconnect")
	}
}

// TestDisconnectUnschedulesForwardTransfersConfirmedInTheBlock verifies a
// forward transfer confirmed (but not yet matured) in the disconnected
// block is removed from the pending-maturity schedule.
func TestDisconnectUnschedulesForwardTransfersConfirmedInTheBlock(t *testing.T) {
	cc := NewChainContext(regNetTestParams())
	genesis := cc.bestNode
	tip := chainedFakeNodes(genesis, 1)[0]
	cc.index.AddNode(tip)
	cc.bestNode = tip

	transfer := scheduledTransfer{
		Scid:     chainhash.HashH([]byte("scid")),
		Transfer: &wire.ForwardTransfer{Scid: chainhash.HashH([]byte("scid"))},
	}
	maturityHeight := tip.height + 10
	cc.pendingForwardTransfers[maturityHeight] = []scheduledTransfer{transfer}

	cc.undoLog[tip.hash] = &blockUndo{
		PrevTip:            genesis.hash,
		Coins:              make(map[chainhash.Hash]*coinview.Coins),
		Sidechains:         make(map[chainhash.Hash]*coinview.SidechainRecord),
		Nullifiers:         make(map[chainhash.Hash]bool),
		CswNullifiers:      make(map[coinview.CswNullifierKey]bool),
		ScheduledTransfers: []scheduledTransfer{transfer},
		ScheduledAtHeight:  maturityHeight,
	}

	if err := cc.Disconnect(); err != nil {
		t.Fatalf("unexpected error disconnecting: %v", err)
	}
	if due := cc.pendingForwardTransfers[maturityHeight]; len(due) != 0 {
		t.Fatalf("expected the block's scheduled transfer to be unscheduled, got %+v", due)
	}
}

// TestDisconnectReschedulesMaturedForwardTransfers verifies a forward
// transfer that matured (ApplyForwardTransfer ran) in the disconnected
// block is placed back on the pending-maturity schedule at the
// disconnected block's own height.
func TestDisconnectReschedulesMaturedForwardTransfers(t *testing.T) {
	cc := NewChainContext(regNetTestParams())
	genesis := cc.bestNode
	tip := chainedFakeNodes(genesis, 1)[0]
	cc.index.AddNode(tip)
	cc.bestNode = tip

	transfer := scheduledTransfer{
		Scid:     chainhash.HashH([]byte("scid")),
		Transfer: &wire.ForwardTransfer{Scid: chainhash.HashH([]byte("scid"))},
	}
	cc.undoLog[tip.hash] = &blockUndo{
		PrevTip:          genesis.hash,
		Coins:            make(map[chainhash.Hash]*coinview.Coins),
		Sidechains:       make(map[chainhash.Hash]*coinview.SidechainRecord),
		Nullifiers:       make(map[chainhash.Hash]bool),
		CswNullifiers:    make(map[coinview.CswNullifierKey]bool),
		MaturedTransfers: []scheduledTransfer{transfer},
	}

	if err := cc.Disconnect(); err != nil {
		t.Fatalf("unexpected error disconnecting: %v", err)
	}
	due := cc.pendingForwardTransfers[tip.height]
	if len(due) != 1 || due[0].Transfer != transfer.Transfer {
		t.Fatalf("expected the matured transfer rescheduled at height %d, got %+v", tip.height, due)
	}
}
