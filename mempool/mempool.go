// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mempool implements the indexed store of unconfirmed
// transactions and sidechain certificates described by spec.md §4.3: an
// admission pipeline layered on top of blockchain/validation's stateless
// rule checks, derived indexes for conflict detection and dependency
// tracking, and the removal/reinsertion machinery blockchain.ChainContext
// drives on connect and disconnect via the MempoolNotifier and
// coinview.Feed seams. The dependency-tracking and eviction semantics
// are grounded on original_source/src/txmempool.cpp, translated to
// explicit adjacency-list BFS (spec.md §9 Design Notes' redesign flag)
// in place of the original's recursive BOOST_FOREACH traversal.
package mempool

import (
	"sync"
	"time"

	"github.com/scnode/scnode/blockchain/coinview"
	"github.com/scnode/scnode/blockchain/sidechain"
	"github.com/scnode/scnode/blockchain/validation"
	"github.com/scnode/scnode/chaincfg"
	"github.com/scnode/scnode/chainhash"
	"github.com/scnode/scnode/scutil"
	"github.com/scnode/scnode/txscript"
	"github.com/scnode/scnode/wire"
)

// ChainSource is the seam mempool uses to reach the confirmed chain
// without importing package blockchain directly, matching the
// dependency-inversion convention coinview.Feed already established for
// the reverse direction. *blockchain.ChainContext implements this,
// including sidechain.HeightResolver for non-ceasing certificate checks.
type ChainSource interface {
	sidechain.HeightResolver

	View() coinview.Source
	SigCache() *txscript.SigCache
	ProofVerifier() (validation.ProofVerifier, validation.ProofVerificationMode)
	BlockAtHeight(height int32) (chainhash.Hash, bool)
	BestHeight() int64
	Params() *chaincfg.Params
}

// Policy holds the admission-time policy knobs (free relay, absurd-fee
// rejection, standardness) plus the pool's own resource caps. The
// proof-verification mode is not a Policy field; admission takes it from
// ChainSource.ProofVerifier.
type Policy struct {
	// AllowFree admits transactions below the relay fee floor, per
	// spec.md §4.4 stage 7.
	AllowFree bool

	// RejectAbsurdFee rejects implausibly high fees rather than treating
	// them as a (generous) tip, per spec.md §4.4 stage 7.
	RejectAbsurdFee bool

	// RequireStandard runs spec.md §4.4 stage 2 in MaybeAcceptEntry. It
	// applies to every call, including the re-admission of transactions
	// from disconnected blocks.
	RequireStandard bool

	// MaxCswInputsPerSidechain enforces spec.md §4.3's
	// SC_MAX_NUM_OF_CSW_INPUTS_IN_MEMPOOL cap.
	MaxCswInputsPerSidechain int

	// DeepHistoryWindow parameterizes OP_CHECKBLOCKATHEIGHT's
	// deep-history exemption for mempool admission (spec.md §6).
	DeepHistoryWindow int32
}

// TxDesc describes one pool-resident transaction to external consumers
// (wallet/indexer notifications, RPC listing), mirroring the entry
// metadata spec.md §4.3's add_unchecked records.
type TxDesc struct {
	Tx       *wire.MsgTx
	Hash     chainhash.Hash
	Fee      scutil.Amount
	Size     int
	Time     int64
	Height   int64
	Sequence uint64
}

// CertDesc is TxDesc's counterpart for a pool-resident certificate.
type CertDesc struct {
	Cert         *wire.MsgCert
	Hash         chainhash.Hash
	Time         int64
	Height       int64
	Sequence     uint64
	IsTopQuality bool
}

// scidEntry is the by_scid derived index entry of spec.md §4.3: every
// pending object touching one sidechain, keyed for conflict detection and
// BFS dependency traversal.
type scidEntry struct {
	Creation chainhash.Hash // zero if the sidechain is already confirmed

	ForwardTransfers map[chainhash.Hash]bool
	BwtRequests      map[chainhash.Hash]bool

	// CswByNullifier maps a pending csw input's nullifier to the
	// transaction hash that spends it, for both duplicate-nullifier
	// rejection and the per-scid CSW cap (spec.md §4.3).
	CswByNullifier map[[32]byte]chainhash.Hash
	CswTotal       int64

	Certs *certIndex
}

func newScidEntry() *scidEntry {
	return &scidEntry{
		ForwardTransfers: make(map[chainhash.Hash]bool),
		BwtRequests:      make(map[chainhash.Hash]bool),
		CswByNullifier:   make(map[[32]byte]chainhash.Hash),
		Certs:            newCertIndex(),
	}
}

// TxPool is the mempool of spec.md §4.3: a mutex-guarded indexed store of
// transactions and certificates plus their derived indexes, matching the
// teacher's blockindex.go convention of one RWMutex-guarded map-of-nodes
// rather than a package-global table.
type TxPool struct {
	cfg Config

	mtx sync.RWMutex

	txs   map[chainhash.Hash]*TxDesc
	certs map[chainhash.Hash]*CertDesc

	byOutpointSpent     map[wire.OutPoint]chainhash.Hash
	byShieldedNullifier map[chainhash.Hash]chainhash.Hash
	byScid              map[chainhash.Hash]*scidEntry

	cswCap *cswCapTracker

	sequence uint64
}

// Config bundles everything NewTxPool needs: the chain seam and the
// admission policy.
type Config struct {
	Chain  ChainSource
	Policy Policy
}

// NewTxPool returns an empty pool.
func NewTxPool(cfg Config) *TxPool {
	return &TxPool{
		cfg:                 cfg,
		txs:                 make(map[chainhash.Hash]*TxDesc),
		certs:               make(map[chainhash.Hash]*CertDesc),
		byOutpointSpent:     make(map[wire.OutPoint]chainhash.Hash),
		byShieldedNullifier: make(map[chainhash.Hash]chainhash.Hash),
		byScid:              make(map[chainhash.Hash]*scidEntry),
		cswCap:              newCswCapTracker(cfg.Policy.MaxCswInputsPerSidechain),
	}
}

// Count returns the number of pending transactions and certificates.
func (mp *TxPool) Count() (txs, certs int) {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()
	return len(mp.txs), len(mp.certs)
}

// HaveTransaction reports whether hash is already pool-resident.
func (mp *TxPool) HaveTransaction(hash chainhash.Hash) bool {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()
	_, ok := mp.txs[hash]
	return ok
}

// HaveCertificate reports whether hash is already pool-resident.
func (mp *TxPool) HaveCertificate(hash chainhash.Hash) bool {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()
	_, ok := mp.certs[hash]
	return ok
}

// FetchTransaction returns the pool-resident transaction for hash.
func (mp *TxPool) FetchTransaction(hash chainhash.Hash) (*wire.MsgTx, bool) {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()
	desc, ok := mp.txs[hash]
	if !ok {
		return nil, false
	}
	return desc.Tx, true
}

// TxDescs returns a point-in-time snapshot of every pending transaction,
// for RPC listing and relay.
func (mp *TxPool) TxDescs() []*TxDesc {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()
	out := make([]*TxDesc, 0, len(mp.txs))
	for _, desc := range mp.txs {
		out = append(out, desc)
	}
	return out
}

// scidEntryLocked returns the by_scid entry for scid, creating one if
// absent. Callers must hold mp.mtx for writing.
func (mp *TxPool) scidEntryLocked(scid chainhash.Hash) *scidEntry {
	entry, ok := mp.byScid[scid]
	if !ok {
		entry = newScidEntry()
		mp.byScid[scid] = entry
	}
	return entry
}

func now() int64 {
	return time.Now().Unix()
}
