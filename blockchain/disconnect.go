// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"

	"github.com/scnode/scnode/blockchain/coinview"
	"github.com/scnode/scnode/chainhash"
	"github.com/scnode/scnode/wire"
)

// Disconnect reverses the current best chain tip using its recorded
// blockUndo, restoring the coin view and sidechain registry to their
// pre-connect snapshot and moving the tip back to the disconnected
// block's parent, per spec.md §4.5 "disconnect". A nil entry in
// undo.Coins or undo.Sidechains means the record did not exist before
// the block, so restoring it means deleting it; PutCoins/PutSidechain
// already implement that convention for a nil value.
//
// This function acquires the chain state lock for its duration.
func (c *ChainContext) Disconnect() error {
	c.chainLock.Lock()
	defer c.chainLock.Unlock()
	return c.disconnectTip()
}

// disconnectTip does the work of Disconnect; Reorganize calls it directly
// while already holding chainLock.
func (c *ChainContext) disconnectTip() error {
	tip := c.bestNode
	if tip.parent == nil {
		return fmt.Errorf("blockchain: cannot disconnect the genesis block")
	}
	undo, ok := c.undoLog[tip.hash]
	if !ok {
		return fmt.Errorf("blockchain: no undo record for block %s; it is out of reorg reach", tip.hash)
	}

	for txid, coins := range undo.Coins {
		c.view.PutCoins(txid, coins)
	}
	for scid, sc := range undo.Sidechains {
		c.view.PutSidechain(scid, sc)
	}
	for nf, wasSpent := range undo.Nullifiers {
		if err := c.view.BatchWrite(&coinview.Batch{Nullifiers: map[chainhash.Hash]bool{nf: wasSpent}}); err != nil {
			return err
		}
	}
	for key, wasSpent := range undo.CswNullifiers {
		if err := c.view.BatchWrite(&coinview.Batch{CswNullifiers: map[coinview.CswNullifierKey]bool{key: wasSpent}}); err != nil {
			return err
		}
	}

	// Forward-transfer scheduling lives on ChainContext, not in the coin
	// view, so it needs its own bookkeeping rather than a view restore.
	if len(undo.ScheduledTransfers) > 0 {
		remaining := c.pendingForwardTransfers[undo.ScheduledAtHeight]
		for _, st := range undo.ScheduledTransfers {
			remaining = removeScheduledTransfer(remaining, st)
		}
		if len(remaining) == 0 {
			delete(c.pendingForwardTransfers, undo.ScheduledAtHeight)
		} else {
			c.pendingForwardTransfers[undo.ScheduledAtHeight] = remaining
		}
	}
	if len(undo.MaturedTransfers) > 0 {
		c.pendingForwardTransfers[tip.height] = append(c.pendingForwardTransfers[tip.height], undo.MaturedTransfers...)
	}

	if undo.HadNewAnchor {
		c.latestAnchor = undo.PreviousAnchor
		// The anchor record itself is intentionally left in the view:
		// anchors are never removed on disconnect, since a joinsplit
		// confirmed elsewhere in still-valid history may reference it.
	}

	c.view.SetBestBlock(tip.parent.hash)
	if err := c.view.Flush(); err != nil {
		return err
	}

	delete(c.undoLog, tip.hash)
	delete(c.filters, tip.hash)
	c.bestNode = tip.parent
	if c.mempool != nil && undo.Block != nil {
		c.mempool.ReinsertFromBlock(undo.Block)
	}
	log.Debugf("Disconnected block %s, tip now %s at height %d", tip.hash, tip.parent.hash, tip.parent.height)
	return nil
}

// removeScheduledTransfer removes the first occurrence of target from
// scheduled, by identity of its Transfer pointer.
func removeScheduledTransfer(scheduled []scheduledTransfer, target scheduledTransfer) []scheduledTransfer {
	for i, st := range scheduled {
		if st.Transfer == target.Transfer {
			return append(scheduled[:i], scheduled[i+1:]...)
		}
	}
	return scheduled
}

// Reorganize moves the active chain tip onto newTip's branch, per spec.md
// §4.5's reorg procedure: disconnect from the current tip down to the
// lowest common ancestor, innermost block first, then connect newTip's
// branch from the ancestor up, in height order. blocks supplies the full
// wire.MsgBlock for every node on newTip's branch above the ancestor,
// keyed by block hash; every one of those blocks must already be
// CheckBlock-valid and present in the block index (newBlockNode'd) via a
// prior call that discovered the competing branch.
func (c *ChainContext) Reorganize(newTip *blockNode, blocks map[chainhash.Hash]*wire.MsgBlock) error {
	c.chainLock.Lock()
	defer c.chainLock.Unlock()

	fork := findFork(c.bestNode, newTip)
	if fork == nil {
		return fmt.Errorf("blockchain: no common ancestor between current tip and reorganize target")
	}

	for c.bestNode != fork {
		if err := c.disconnectTip(); err != nil {
			return err
		}
	}

	var branch []*blockNode
	for node := newTip; node != fork; node = node.parent {
		branch = append(branch, node)
	}
	for i := len(branch) - 1; i >= 0; i-- {
		node := branch[i]
		block, ok := blocks[node.hash]
		if !ok {
			return fmt.Errorf("blockchain: Reorganize missing block data for %s", node.hash)
		}
		if err := c.connectLocked(block); err != nil {
			return err
		}
	}
	return nil
}

// findFork walks both nodes back to equal height, then together, to find
// their lowest common ancestor.
func findFork(a, b *blockNode) *blockNode {
	for a.height > b.height {
		a = a.parent
	}
	for b.height > a.height {
		b = b.parent
	}
	for a != b {
		if a == nil || b == nil {
			return nil
		}
		a = a.parent
		b = b.parent
	}
	return a
}
