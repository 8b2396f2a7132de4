// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coinview

import "github.com/scnode/scnode/chainhash"

// CswNullifierKey identifies one ceased-sidechain-withdrawal nullifier,
// scoped per scid as required by spec.md §3 ("csw nullifier is globally
// scoped per scid").
type CswNullifierKey struct {
	Scid      chainhash.Hash
	Nullifier [32]byte
}

// Batch collects every delta produced while processing one block (or one
// mempool admission, for the mempool overlay), applied atomically via
// Source.BatchWrite per spec.md §4.1's batch_write operation. A nil map
// means "no changes of that kind"; an explicit zero-value entry in Coins
// or Sidechains means "delete this record" (its IsPruned()/nil form).
type Batch struct {
	Coins       map[chainhash.Hash]*Coins
	Nullifiers  map[chainhash.Hash]bool
	Anchors     map[chainhash.Hash]Anchor
	Sidechains  map[chainhash.Hash]*SidechainRecord
	CswNullifiers map[CswNullifierKey]bool

	BestBlock chainhash.Hash
}

// NewBatch returns an empty Batch ready for accumulation.
func NewBatch() *Batch {
	return &Batch{
		Coins:         make(map[chainhash.Hash]*Coins),
		Nullifiers:    make(map[chainhash.Hash]bool),
		Anchors:       make(map[chainhash.Hash]Anchor),
		Sidechains:    make(map[chainhash.Hash]*SidechainRecord),
		CswNullifiers: make(map[CswNullifierKey]bool),
	}
}

// Source is the uniform read/write contract shared by every layer of the
// coin view stack (base, cache, mempool overlay), per spec.md §4.1's
// operation table. Reads from an inner layer are expected to be cached on
// first access by whichever layer wraps it; the base layer is the only one
// backed by durable storage.
type Source interface {
	// GetCoins returns the full coin record for txid, or ok=false if
	// unknown to this layer.
	GetCoins(txid chainhash.Hash) (coins *Coins, ok bool)

	// HaveCoins reports whether any coin record exists for txid, without
	// necessarily materializing it.
	HaveCoins(txid chainhash.Hash) bool

	// GetNullifier reports whether nf has been recorded spent in the
	// shielded pool.
	GetNullifier(nf chainhash.Hash) bool

	// GetAnchor returns the commitment-tree snapshot stored under root,
	// or ok=false if root is not a known anchor.
	GetAnchor(root chainhash.Hash) (anchor Anchor, ok bool)

	// GetSidechain returns the sidechain record for scid, or ok=false if
	// no sidechain with that id has been created.
	GetSidechain(scid chainhash.Hash) (sc *SidechainRecord, ok bool)

	// HaveCswNullifier reports whether the given csw nullifier has
	// already been spent against scid.
	HaveCswNullifier(key CswNullifierKey) bool

	// BestBlock returns the hash of the tip this view represents.
	BestBlock() chainhash.Hash

	// BatchWrite atomically applies every delta in b to this layer.
	BatchWrite(b *Batch) error
}
