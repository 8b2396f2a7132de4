// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"

	"github.com/scnode/scnode/blockchain/coinview"
	"github.com/scnode/scnode/blockchain/sidechain"
	"github.com/scnode/scnode/blockchain/validation"
	"github.com/scnode/scnode/chainhash"
	"github.com/scnode/scnode/scutil"
	"github.com/scnode/scnode/wire"
)

// scheduledTransfer is a forward transfer waiting for its originating
// output to reach coin maturity before sidechain.ApplyForwardTransfer runs
// against it, per spec.md §4.2.
type scheduledTransfer struct {
	Scid     chainhash.Hash
	Transfer *wire.ForwardTransfer
}

// certUndoEntry captures ApplyCertificate's pre-image for one certificate,
// everything sidechain.UndoCertificate needs to reverse it.
type certUndoEntry struct {
	Scid                     chainhash.Hash
	Epoch                    uint32
	BwtTotal                 int64
	Previous                 *coinview.CertTableEntry
	PreviousCeaseHeight      int64
	PreviousReferencedHeight int64
}

// blockUndo is the pre-block snapshot Disconnect needs to reverse
// everything Connect did for one block, per spec.md §4.5 "undo records".
// A nil entry in Coins or Sidechains means the record did not exist before
// this block, so disconnecting it means deleting the record rather than
// restoring a prior value.
type blockUndo struct {
	PrevTip chainhash.Hash

	// Block is the full block this undo record reverses, kept so
	// Disconnect can hand every transaction and certificate it contained
	// back to the mempool notifier for re-admission, per spec.md §4.5
	// step 2 ("re-inject evicted transactions and certificates into the
	// mempool").
	Block *wire.MsgBlock

	Coins         map[chainhash.Hash]*coinview.Coins
	Nullifiers    map[chainhash.Hash]bool
	CswNullifiers map[coinview.CswNullifierKey]bool
	Sidechains    map[chainhash.Hash]*coinview.SidechainRecord

	Certificates []certUndoEntry

	// PreviousAnchor is the commitment-tree snapshot in effect before this
	// block appended any shielded commitments. The anchor record itself is
	// never deleted on disconnect (historical anchors remain valid
	// joinsplit references even after a reorg); only the chain's "current
	// anchor" pointer rewinds.
	HadNewAnchor   bool
	PreviousAnchor coinview.Anchor

	// MaturedTransfers are forward transfers whose ApplyForwardTransfer
	// ran because this block's height reached their maturity height.
	MaturedTransfers []scheduledTransfer

	// ScheduledTransfers are forward transfers first confirmed in this
	// block, scheduled for ScheduledAtHeight.
	ScheduledTransfers []scheduledTransfer
	ScheduledAtHeight  int64
}

// Connect validates block against the current best chain tip and, if
// valid, extends it, per spec.md §4.5. block's declared previous hash must
// equal the current tip; extending any other branch requires Reorganize.
//
// This function acquires the chain state lock for its duration.
func (c *ChainContext) Connect(block *wire.MsgBlock) error {
	c.chainLock.Lock()
	defer c.chainLock.Unlock()
	return c.connectLocked(block)
}

// connectLocked does the work of Connect; Reorganize calls it directly
// while already holding chainLock.
func (c *ChainContext) connectLocked(block *wire.MsgBlock) error {
	parent := c.index.LookupNode(&block.Header.PrevBlock)
	if parent == nil {
		return ruleError(ErrMissingParent, "block's declared previous hash is not known to the block index")
	}
	if parent != c.bestNode {
		return fmt.Errorf("blockchain: Connect called with a block that does not extend the current tip; use Reorganize")
	}

	// Check the cheap, index-only relationship to the tip before running
	// the full context-free validation below, so a block that can't
	// possibly extend the chain never pays for signature, PoW, and proof
	// verification.
	if err := CheckBlock(block, c.params); err != nil {
		return err
	}
	if err := c.contextualCheckBlock(parent, block); err != nil {
		return err
	}

	height := parent.height + 1
	undo := newBlockUndo(c.bestNode.hash, block)

	touchCoins := func(txid chainhash.Hash) {
		if _, seen := undo.Coins[txid]; seen {
			return
		}
		coins, _ := c.view.GetCoins(txid)
		undo.Coins[txid] = coins
	}
	touchSidechain := func(scid chainhash.Hash) (*coinview.SidechainRecord, bool) {
		sc, ok := c.view.GetSidechain(scid)
		if _, seen := undo.Sidechains[scid]; !seen {
			undo.Sidechains[scid] = sc
		}
		return sc, ok
	}

	var totalFees scutil.Amount
	var newCommitments []chainhash.Hash

	for _, tx := range block.Transactions {
		if !tx.IsCoinBase() {
			for _, in := range tx.TxIn {
				touchCoins(in.PreviousOutPoint.Hash)
			}
			fee, err := validation.CheckTxInputs(tx, c.view, height, c.params)
			if err != nil {
				return err
			}
			if err := validation.CheckTransactionScripts(tx, c.view, c.sigCache, c.BlockAtHeight, int32(height), int32(c.params.ReplayProtectionDeepHistoryWindow)); err != nil {
				return err
			}
			totalFees += fee

			for _, in := range tx.TxIn {
				c.view.SpendOutput(in.PreviousOutPoint.Hash, int(in.PreviousOutPoint.Index))
			}
		}

		if tx.HasShieldedData() {
			if err := validation.CheckShieldedContext(tx, c.view); err != nil {
				return err
			}
			if err := validation.CheckJoinSplitProofs(c.verifier, tx, c.proofMode); err != nil {
				return err
			}
			for _, js := range tx.JoinSplits {
				for _, nf := range js.Nullifiers {
					if _, seen := undo.Nullifiers[nf]; !seen {
						undo.Nullifiers[nf] = c.view.GetNullifier(nf)
					}
					c.view.MarkNullifierSpent(nf)
				}
				newCommitments = append(newCommitments, chainhash.Hash(js.Commitments[0]), chainhash.Hash(js.Commitments[1]))
			}
		}

		if tx.HasSidechainData() {
			if err := validation.CheckSidechainContext(tx, c.view); err != nil {
				return err
			}
			for i, sc := range tx.SidechainCreations {
				scid := sidechain.ComputeScid(tx.TxHash(), uint32(i))
				touchSidechain(scid)
				record := sidechain.ApplyCreation(scid, sc, tx.TxHash(), height)
				c.view.PutSidechain(scid, record)
			}
			for _, ft := range tx.ForwardTransfers {
				undo.ScheduledTransfers = append(undo.ScheduledTransfers, scheduledTransfer{Scid: ft.Scid, Transfer: ft})
			}
			for _, csw := range tx.CswInputs {
				sc, _ := touchSidechain(csw.Scid)
				updated := sidechain.ApplyCsw(sc, csw)
				c.view.PutSidechain(csw.Scid, updated)

				key := coinview.CswNullifierKey{Scid: csw.Scid, Nullifier: csw.Nullifier}
				if _, seen := undo.CswNullifiers[key]; !seen {
					undo.CswNullifiers[key] = c.view.HaveCswNullifier(key)
				}
				c.view.MarkCswNullifierSpent(key)
			}
		}

		touchCoins(tx.TxHash())
		c.view.PutCoins(tx.TxHash(), coinview.NewCoinsFromTx(tx, height))
	}

	if len(newCommitments) > 0 {
		undo.HadNewAnchor = true
		undo.PreviousAnchor = c.latestAnchor
		c.latestAnchor = nextAnchor(c.latestAnchor, newCommitments)
		c.view.PutAnchor(c.latestAnchor)
	}

	if due := c.pendingForwardTransfers[height]; len(due) > 0 {
		for _, st := range due {
			sc, _ := touchSidechain(st.Scid)
			updated := sidechain.ApplyForwardTransfer(sc, st.Transfer)
			c.view.PutSidechain(st.Scid, updated)
		}
		undo.MaturedTransfers = due
		delete(c.pendingForwardTransfers, height)
	}
	if len(undo.ScheduledTransfers) > 0 {
		maturityHeight := height + int64(c.params.CoinMaturity)
		undo.ScheduledAtHeight = maturityHeight
		c.pendingForwardTransfers[maturityHeight] = append(c.pendingForwardTransfers[maturityHeight], undo.ScheduledTransfers...)
	}

	for _, cert := range block.Certificates {
		sc, _ := touchSidechain(cert.Scid)
		if err := validation.CheckCertificateContext(cert, sc, c); err != nil {
			return err
		}
		if err := validation.CheckCertificateProof(c.verifier, cert, sc, c.proofMode); err != nil {
			return err
		}

		var referencedHeight int64
		if sc.IsNonCeasing() {
			referencedHeight, _ = sidechain.ResolveReferencedHeight(c, cert.EndEpochCumCommTreeRoot)
		}

		var previousEntry *coinview.CertTableEntry
		if prev, had := sc.TopCertByEpoch[cert.EpochNumber]; had {
			entry := prev
			previousEntry = &entry
		}
		bwtTotal := cert.BackwardTransferTotal()
		undo.Certificates = append(undo.Certificates, certUndoEntry{
			Scid:                     cert.Scid,
			Epoch:                    cert.EpochNumber,
			BwtTotal:                 bwtTotal,
			Previous:                 previousEntry,
			PreviousCeaseHeight:      sc.CeaseHeight,
			PreviousReferencedHeight: sc.LastReferencedHeight,
		})

		updated := sidechain.ApplyCertificate(sc, cert.EpochNumber, cert.Quality, cert.CertHash(), bwtTotal, height, referencedHeight)
		c.view.PutSidechain(cert.Scid, updated)

		bwtMaturity := height + int64(c.params.CoinMaturity)
		touchCoins(cert.CertHash())
		c.view.PutCoins(cert.CertHash(), coinview.NewCoinsFromCert(cert, height, bwtMaturity))
	}

	for scid := range undo.Sidechains {
		sc, ok := c.view.GetSidechain(scid)
		if !ok {
			continue
		}
		if fired := sidechain.MaybeFireCease(sc, height); fired.CeaseHeight != sc.CeaseHeight || fired.State != sc.State {
			c.view.PutSidechain(scid, fired)
		}
	}

	var coinbaseOut scutil.Amount
	for _, out := range block.Transactions[0].TxOut {
		coinbaseOut += scutil.Amount(out.Value)
	}
	if int64(coinbaseOut) > CalcCoinbaseValue(height, int64(totalFees), c.params) {
		return ruleError(ErrBadCoinbaseValue, "coinbase claims more than the allowed subsidy plus fees")
	}

	node := newBlockNode(&block.Header, parent)
	node.status = statusDataStored | statusValid
	c.index.AddNode(node)
	c.bestNode = node
	c.view.SetBestBlock(node.hash)
	if err := c.view.Flush(); err != nil {
		return err
	}

	if filter, err := buildBlockFilter(block); err == nil {
		c.filters[node.hash] = filter
	}

	c.undoLog[node.hash] = undo
	if c.mempool != nil {
		c.mempool.RemoveConflicts(block)
	}
	log.Debugf("Connected block %s at height %d (%d transactions, %d certificates)",
		node.hash, node.height, len(block.Transactions), len(block.Certificates))
	return nil
}

func newBlockUndo(prevTip chainhash.Hash, block *wire.MsgBlock) *blockUndo {
	return &blockUndo{
		PrevTip:       prevTip,
		Block:         block,
		Coins:         make(map[chainhash.Hash]*coinview.Coins),
		Nullifiers:    make(map[chainhash.Hash]bool),
		CswNullifiers: make(map[coinview.CswNullifierKey]bool),
		Sidechains:    make(map[chainhash.Hash]*coinview.SidechainRecord),
	}
}

// nextAnchor folds newCommitments into prev, producing the commitment-tree
// snapshot a shielded joinsplit confirmed in a later block may anchor to.
// No incremental-merkle-tree implementation exists anywhere in the
// retrieval pack to ground a real accumulator on, so this models the
// snapshot directly against spec.md §4.1's abstract contract ("get_anchor
// returns the commitment-tree snapshot"): each commitment is folded into
// the running root in the order it appears on chain.
func nextAnchor(prev coinview.Anchor, commitments []chainhash.Hash) coinview.Anchor {
	root := prev.Root
	for _, cm := range commitments {
		var buf [chainhash.HashSize * 2]byte
		copy(buf[:chainhash.HashSize], root[:])
		copy(buf[chainhash.HashSize:], cm[:])
		root = chainhash.HashH(buf[:])
	}
	return coinview.Anchor{Root: root, CommitmentCount: prev.CommitmentCount + uint64(len(commitments))}
}
