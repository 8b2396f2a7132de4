// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"github.com/scnode/scnode/blockchain/sidechain"
	"github.com/scnode/scnode/chainhash"
	"github.com/scnode/scnode/wire"
)

// TxPool's RemoveConflicts and ReinsertFromBlock below give it the exact
// method set of blockchain.MempoolNotifier; mempool does not import
// package blockchain to assert this (that would cycle back against
// blockchain/chain.go's own "blockchain stays the dependency root"
// seam), so the satisfaction is checked only where a caller imports both
// packages and calls ChainContext.SetMempool with a *TxPool.

// Remove evicts hash and, transitively, every pending transaction that
// spends one of its outputs, per spec.md §4.3's BFS-over-outpoint-edges
// removal contract. It is the public entry point invalidation callers
// (RPC, a rejected reorg branch) use directly; RemoveConflicts and
// ReinsertFromBlock below are ChainContext's own callers.
func (mp *TxPool) Remove(hash chainhash.Hash) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	mp.removeRecursiveLocked(hash)
}

// removeRecursiveLocked walks the adjacency list of "transactions that
// spend one of hash's outputs" breadth-first, removing every transaction
// it reaches, plus cascading through any sidechain hash happens to have
// created (its pending forward transfers, mbtrs, certificates and csw
// inputs die with it, since the sidechain they target no longer exists
// anywhere the mempool can see).
func (mp *TxPool) removeRecursiveLocked(start chainhash.Hash) {
	queue := []chainhash.Hash{start}
	seen := make(map[chainhash.Hash]bool)

	for len(queue) > 0 {
		hash := queue[0]
		queue = queue[1:]
		if seen[hash] {
			continue
		}
		seen[hash] = true

		desc, ok := mp.txs[hash]
		if !ok {
			continue
		}
		tx := desc.Tx
		log.Debugf("Removing transaction %s from the pool", hash)

		for i := range tx.TxOut {
			op := wire.OutPoint{Hash: hash, Index: uint32(i)}
			if spender, ok := mp.byOutpointSpent[op]; ok {
				queue = append(queue, spender)
			}
		}

		for i := range tx.SidechainCreations {
			scid := sidechain.ComputeScid(hash, uint32(i))
			entry, ok := mp.byScid[scid]
			if !ok {
				continue
			}
			for txHash := range entry.ForwardTransfers {
				queue = append(queue, txHash)
			}
			for txHash := range entry.BwtRequests {
				queue = append(queue, txHash)
			}
			for _, txHash := range entry.Certs.All() {
				mp.removeCertificateLocked(txHash)
			}
			for _, txHash := range entry.CswByNullifier {
				queue = append(queue, txHash)
			}
		}

		mp.removeTxIndexesLocked(hash, tx)
	}
}

// removeTxIndexesLocked deletes hash's own bookkeeping without cascading
// to anything that spends its outputs; used both by the recursive walk
// above (after it has already queued hash's dependents) and by
// RemoveConflicts' confirm path (where dependents remain valid, since the
// transaction's outputs now exist on-chain instead of in the mempool).
func (mp *TxPool) removeTxIndexesLocked(hash chainhash.Hash, tx *wire.MsgTx) {
	delete(mp.txs, hash)

	for _, in := range tx.TxIn {
		delete(mp.byOutpointSpent, in.PreviousOutPoint)
	}
	for _, js := range tx.JoinSplits {
		for _, nf := range js.Nullifiers {
			delete(mp.byShieldedNullifier, nf)
		}
	}
	for i := range tx.SidechainCreations {
		scid := sidechain.ComputeScid(hash, uint32(i))
		delete(mp.byScid, scid)
	}
	for _, ft := range tx.ForwardTransfers {
		if entry, ok := mp.byScid[ft.Scid]; ok {
			delete(entry.ForwardTransfers, hash)
		}
	}
	for _, req := range tx.BwtRequests {
		if entry, ok := mp.byScid[req.Scid]; ok {
			delete(entry.BwtRequests, hash)
		}
	}
	for _, csw := range tx.CswInputs {
		if entry, ok := mp.byScid[csw.Scid]; ok {
			delete(entry.CswByNullifier, csw.Nullifier)
			entry.CswTotal -= csw.Amount
		}
		mp.cswCap.Release(csw.Scid, csw.Nullifier)
	}
}

// removeCertificateLocked deletes a pending certificate and, if it held
// the top-quality slot for its (scid, epoch), promotes whichever
// certificate ranks next.
func (mp *TxPool) removeCertificateLocked(hash chainhash.Hash) {
	desc, ok := mp.certs[hash]
	if !ok {
		return
	}
	entry, ok := mp.byScid[desc.Cert.Scid]
	if ok {
		_, newTop, hasNewTop := entry.Certs.Remove(desc.Cert.EpochNumber, hash)
		if hasNewTop {
			if promoted, ok := mp.certs[newTop]; ok {
				promoted.IsTopQuality = true
			}
		}
	}
	delete(mp.certs, hash)
}

// RemoveConflicts implements blockchain.MempoolNotifier: it drops every
// pending transaction and certificate a newly-connected block confirms
// outright, and evicts every pending object left conflicting with what
// just confirmed (a double-spend of the same outpoint, shielded
// nullifier, or csw nullifier; a certificate for the same (scid, epoch)
// ranked at or below the one that just confirmed), per spec.md §4.3
// "Conflict removal on block connect".
func (mp *TxPool) RemoveConflicts(block *wire.MsgBlock) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	for _, tx := range block.Transactions {
		hash := tx.TxHash()

		for _, in := range tx.TxIn {
			if spender, ok := mp.byOutpointSpent[in.PreviousOutPoint]; ok && spender != hash {
				mp.removeRecursiveLocked(spender)
			}
		}
		for _, js := range tx.JoinSplits {
			for _, nf := range js.Nullifiers {
				if spender, ok := mp.byShieldedNullifier[nf]; ok && spender != hash {
					mp.removeRecursiveLocked(spender)
				}
			}
		}
		for _, csw := range tx.CswInputs {
			if entry, ok := mp.byScid[csw.Scid]; ok {
				if spender, ok := entry.CswByNullifier[csw.Nullifier]; ok && spender != hash {
					mp.removeRecursiveLocked(spender)
				}
			}
		}

		if desc, ok := mp.txs[hash]; ok {
			mp.removeTxIndexesLocked(hash, desc.Tx)
		}
	}

	for _, cert := range block.Certificates {
		if entry, ok := mp.byScid[cert.Scid]; ok {
			for _, hash := range entry.Certs.BelowOrEqual(cert.EpochNumber, cert.Quality) {
				mp.removeCertificateLocked(hash)
			}
		}
	}
}

// ReinsertFromBlock implements blockchain.MempoolNotifier: it offers every
// transaction and certificate a disconnected block contained back to the
// admission pipeline, per spec.md §4.5 step 2 ("re-inject evicted
// transactions and certificates into the mempool"). Objects that no
// longer validate against the rewound chain (e.g. because something else
// already re-spent their inputs) are silently dropped rather than
// reported, matching a reorg's best-effort re-relay semantics.
func (mp *TxPool) ReinsertFromBlock(block *wire.MsgBlock) {
	for _, tx := range block.Transactions {
		if tx.IsCoinBase() {
			continue
		}
		mp.MaybeAcceptEntry(tx)
	}
	for _, cert := range block.Certificates {
		mp.AcceptCertificate(cert)
	}
}
