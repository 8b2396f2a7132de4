// Copyright (c) 2018-2021 The Horizen developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"github.com/scnode/scnode/blockchain/coinview"
	"github.com/scnode/scnode/blockchain/sidechain"
	"github.com/scnode/scnode/chainhash"
	"github.com/scnode/scnode/wire"
)

var _ coinview.Feed = (*TxPool)(nil)

// LookupTx implements coinview.Feed for callers composing a view over this
// pool from outside the admission pipeline (e.g. a wallet or RPC reader).
// Admission itself goes through lockedFeed instead, since it already holds
// mp.mtx for the duration of the pipeline and mp.mtx is not reentrant.
func (mp *TxPool) LookupTx(txid chainhash.Hash) (*wire.MsgTx, bool) {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()
	return mp.lookupTxLocked(txid)
}

// LookupCert implements coinview.Feed.
func (mp *TxPool) LookupCert(certHash chainhash.Hash) (*wire.MsgCert, bool, bool) {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()
	return mp.lookupCertLocked(certHash)
}

// HasNullifier implements coinview.Feed.
func (mp *TxPool) HasNullifier(nf chainhash.Hash) bool {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()
	return mp.hasNullifierLocked(nf)
}

// HasCswNullifier implements coinview.Feed.
func (mp *TxPool) HasCswNullifier(key coinview.CswNullifierKey) bool {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()
	return mp.hasCswNullifierLocked(key)
}

// OverlaySidechain implements coinview.Feed.
func (mp *TxPool) OverlaySidechain(scid chainhash.Hash, confirmed *coinview.SidechainRecord) (*coinview.SidechainRecord, bool) {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()
	return mp.overlaySidechainLocked(scid, confirmed)
}

func (mp *TxPool) lookupTxLocked(txid chainhash.Hash) (*wire.MsgTx, bool) {
	desc, ok := mp.txs[txid]
	if !ok {
		return nil, false
	}
	return desc.Tx, true
}

func (mp *TxPool) lookupCertLocked(certHash chainhash.Hash) (*wire.MsgCert, bool, bool) {
	desc, ok := mp.certs[certHash]
	if !ok {
		return nil, false, false
	}
	return desc.Cert, desc.IsTopQuality, true
}

func (mp *TxPool) hasNullifierLocked(nf chainhash.Hash) bool {
	_, ok := mp.byShieldedNullifier[nf]
	return ok
}

func (mp *TxPool) hasCswNullifierLocked(key coinview.CswNullifierKey) bool {
	entry, ok := mp.byScid[key.Scid]
	if !ok {
		return false
	}
	_, ok = entry.CswByNullifier[key.Nullifier]
	return ok
}

// overlaySidechainLocked folds this pool's pending creation, forward
// transfers, certificates and csw inputs for scid on top of confirmed, per
// spec.md §4.1's "sidechain lookups compose" rule. Callers must already
// hold mp.mtx, for reading or writing.
func (mp *TxPool) overlaySidechainLocked(scid chainhash.Hash, confirmed *coinview.SidechainRecord) (*coinview.SidechainRecord, bool) {
	entry, hasEntry := mp.byScid[scid]

	var record *coinview.SidechainRecord
	switch {
	case confirmed != nil:
		record = confirmed.Clone()
	case hasEntry && !entry.Creation.IsZero():
		creationTx, ok := mp.txs[entry.Creation]
		if !ok {
			return nil, false
		}
		sc := findCreation(creationTx.Tx.SidechainCreations, entry.Creation, scid)
		if sc == nil {
			return nil, false
		}
		record = &coinview.SidechainRecord{
			Scid:                         scid,
			State:                        coinview.SidechainAlive,
			CreatingTxHash:               entry.Creation,
			CreationHeight:               coinview.MempoolHeight,
			WithdrawalEpochLength:        sc.WithdrawalEpochLength,
			Balance:                      sc.Amount,
			CurrentForwardTransferMinFee: sc.ForwardTransferMinFee,
			CurrentBwtRequestMinFee:      sc.MainchainBackwardTransferRequestMinFee,
			CertVerificationKey:          sc.CertVerificationKey,
			CeasedVerificationKey:        sc.CeasedVerificationKey,
			CustomFieldConfigs:           sc.CustomFieldConfigs,
			MbtrDataLength:               sc.MbtrDataLength,
			TopCertByEpoch:               make(map[uint32]coinview.CertTableEntry),
		}
	default:
		return nil, false
	}

	if !hasEntry {
		return record, true
	}

	for txHash := range entry.ForwardTransfers {
		desc, ok := mp.txs[txHash]
		if !ok {
			continue
		}
		for _, ft := range desc.Tx.ForwardTransfers {
			if ft.Scid == scid {
				record.Balance += ft.Amount
			}
		}
	}

	for _, epoch := range entry.Certs.Epochs() {
		topHash, ok := entry.Certs.Top(epoch)
		if !ok {
			continue
		}
		desc, ok := mp.certs[topHash]
		if !ok {
			continue
		}
		current, hasCurrent := record.TopCertByEpoch[epoch]
		if !hasCurrent || desc.Cert.Quality > current.Quality {
			record.TopCertByEpoch[epoch] = coinview.CertTableEntry{
				Epoch:   epoch,
				Quality: desc.Cert.Quality,
				Hash:    topHash,
			}
		}
	}

	record.CswTotalWithdrawn += entry.CswTotal
	record.Balance -= entry.CswTotal

	return record, true
}

// findCreation recovers the SidechainCreation output within txHash's
// transaction that derives scid, since scidEntry only remembers the
// creating transaction's hash, not which output index it was.
func findCreation(creations []*wire.SidechainCreation, txHash, scid chainhash.Hash) *wire.SidechainCreation {
	for i, sc := range creations {
		if sidechain.ComputeScid(txHash, uint32(i)) == scid {
			return sc
		}
	}
	return nil
}

// lockedFeed adapts TxPool's already-locked internal lookups to
// coinview.Feed, for use by admission (MaybeAcceptEntry, AcceptCertificate)
// which already holds mp.mtx for the whole pipeline and would deadlock
// calling the exported, self-locking Feed methods above.
type lockedFeed struct {
	mp *TxPool
}

func (f lockedFeed) LookupTx(txid chainhash.Hash) (*wire.MsgTx, bool) {
	return f.mp.lookupTxLocked(txid)
}

func (f lockedFeed) LookupCert(certHash chainhash.Hash) (*wire.MsgCert, bool, bool) {
	return f.mp.lookupCertLocked(certHash)
}

func (f lockedFeed) HasNullifier(nf chainhash.Hash) bool {
	return f.mp.hasNullifierLocked(nf)
}

func (f lockedFeed) HasCswNullifier(key coinview.CswNullifierKey) bool {
	return f.mp.hasCswNullifierLocked(key)
}

func (f lockedFeed) OverlaySidechain(scid chainhash.Hash, confirmed *coinview.SidechainRecord) (*coinview.SidechainRecord, bool) {
	return f.mp.overlaySidechainLocked(scid, confirmed)
}

var _ coinview.Feed = lockedFeed{}
