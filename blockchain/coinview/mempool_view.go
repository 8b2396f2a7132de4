// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coinview

import (
	"errors"

	"github.com/scnode/scnode/chainhash"
	"github.com/scnode/scnode/wire"
)

// errMempoolViewReadOnly is returned by MempoolView.BatchWrite: the overlay
// is a read projection of whatever the mempool currently holds, not an
// independent durable layer — mempool admission and removal mutate the
// underlying mempool state directly rather than through batch_write.
var errMempoolViewReadOnly = errors.New("coinview: mempool overlay does not accept batch_write")

// Feed is the seam between the mempool overlay and the mempool package's
// indexed store. coinview only needs to ask these questions of the
// mempool; it knows nothing about tx/cert bookkeeping, the derived
// indexes, or the certificate quality-ordering logic that answers them,
// per spec.md §4.1 ("mempool overlay") staying a thin composition layer
// over whatever package mempool actually tracks.
type Feed interface {
	// LookupTx returns the pending transaction with the given hash.
	LookupTx(txid chainhash.Hash) (*wire.MsgTx, bool)

	// LookupCert returns the pending certificate with the given hash,
	// plus whether it currently holds the top-quality slot for its
	// (scid, epoch), per spec.md §4.1 ("marks only top-quality
	// certificates' outputs as coins").
	LookupCert(certHash chainhash.Hash) (cert *wire.MsgCert, isTopQuality bool, ok bool)

	// HasNullifier reports whether nf is consumed by some pending
	// shielded transaction.
	HasNullifier(nf chainhash.Hash) bool

	// HasCswNullifier reports whether key is consumed by some pending
	// csw input.
	HasCswNullifier(key CswNullifierKey) bool

	// OverlaySidechain returns the sidechain record for scid as seen
	// through the mempool: starting from confirmed (nil if the sidechain
	// has no confirmed creation yet), folding in any pending creation,
	// forward transfers, certificates and csw inputs per spec.md §4.1's
	// "Sidechain lookups compose" rule. ok is false only if scid is
	// unknown both on-chain and in the mempool.
	OverlaySidechain(scid chainhash.Hash, confirmed *SidechainRecord) (overlay *SidechainRecord, ok bool)
}

// MempoolView is the outermost layer of the coin view stack: a read-only
// projection that makes unconfirmed mempool state visible through the same
// Source contract the cache and base layers implement, so admission
// checks for a new transaction can see outputs created by an
// already-accepted-but-unconfirmed one (spec.md §4.1, mempool overlay).
type MempoolView struct {
	confirmed Source
	feed      Feed
}

// NewMempoolView returns a mempool overlay reading confirmed state through
// confirmed (typically the active chain's cache view) and unconfirmed
// state through feed.
func NewMempoolView(confirmed Source, feed Feed) *MempoolView {
	return &MempoolView{confirmed: confirmed, feed: feed}
}

func (v *MempoolView) GetCoins(txid chainhash.Hash) (*Coins, bool) {
	if tx, ok := v.feed.LookupTx(txid); ok {
		return NewCoinsFromTx(tx, MempoolHeight), true
	}
	if cert, isTop, ok := v.feed.LookupCert(txid); ok && isTop {
		// An unconfirmed certificate's backward-transfer maturity height
		// cannot be known until it is mined (it is computed from the
		// confirming block's height); MempoolHeight keeps any
		// maturity comparison against it always in the future.
		return NewCoinsFromCert(cert, MempoolHeight, MempoolHeight), true
	}
	return v.confirmed.GetCoins(txid)
}

func (v *MempoolView) HaveCoins(txid chainhash.Hash) bool {
	_, ok := v.GetCoins(txid)
	return ok
}

func (v *MempoolView) GetNullifier(nf chainhash.Hash) bool {
	if v.feed.HasNullifier(nf) {
		return true
	}
	return v.confirmed.GetNullifier(nf)
}

// GetAnchor is served from confirmed state only: an anchor is a
// commitment-tree snapshot, and unconfirmed joinsplits never mint new
// snapshots ahead of confirmation.
func (v *MempoolView) GetAnchor(root chainhash.Hash) (Anchor, bool) {
	return v.confirmed.GetAnchor(root)
}

func (v *MempoolView) GetSidechain(scid chainhash.Hash) (*SidechainRecord, bool) {
	confirmed, _ := v.confirmed.GetSidechain(scid)
	return v.feed.OverlaySidechain(scid, confirmed)
}

func (v *MempoolView) HaveCswNullifier(key CswNullifierKey) bool {
	if v.feed.HasCswNullifier(key) {
		return true
	}
	return v.confirmed.HaveCswNullifier(key)
}

func (v *MempoolView) BestBlock() chainhash.Hash {
	return v.confirmed.BestBlock()
}

// BatchWrite always fails: see errMempoolViewReadOnly.
func (v *MempoolView) BatchWrite(*Batch) error {
	return errMempoolViewReadOnly
}
