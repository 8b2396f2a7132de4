// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"sync"

	"github.com/scnode/scnode/blockchain/coinview"
	"github.com/scnode/scnode/blockchain/validation"
	"github.com/scnode/scnode/chaincfg"
	"github.com/scnode/scnode/chainhash"
	"github.com/scnode/scnode/gcs"
	"github.com/scnode/scnode/txscript"
	"github.com/scnode/scnode/wire"
)

// ChainContext gathers the single set of mutable chain-state values that
// the Design Notes of spec.md §9 call out as replacing the scattered
// global mutables (chain tip, coin view, sidechain registry, mempool
// handle, block index) of the original implementation. Every consensus
// operation takes a *ChainContext instead of reading package-level
// variables, which is what makes §5's concurrency story ("cs_main
// equivalent guards exactly this value") meaningful in Go.
type ChainContext struct {
	params *chaincfg.Params
	index  *BlockIndex

	chainLock sync.RWMutex
	bestNode  *blockNode

	// view is the confirmed-chain coin view: a write-back Cache in front
	// of the durable base layer (package database in production, an
	// in-memory coinview.MemSource by default/in tests). Connect mutates
	// it in place and Flushes once a block is fully validated;
	// Disconnect reverses it from the matching blockUndo.
	view     *coinview.Cache
	sigCache *txscript.SigCache

	// verifier/proofMode wire spec.md §4.4 stage 8's external SNARK
	// verification seam into block connect. A nil verifier with
	// validation.ProofVerificationDisabled is the zero-value default,
	// matching a node that trusts upstream proof checks (e.g. replaying
	// a chain already checkpointed).
	verifier  validation.ProofVerifier
	proofMode validation.ProofVerificationMode

	// latestAnchor is the most recently appended shielded commitment-tree
	// snapshot, threaded forward block-by-block since no single block
	// carries "the previous anchor" directly.
	latestAnchor coinview.Anchor

	// pendingForwardTransfers holds forward transfers confirmed but not
	// yet mature, keyed by the height at which sidechain.ApplyForwardTransfer
	// must run for them (spec.md §4.2: "credit the scheduled immature
	// balance at h + coin_maturity").
	pendingForwardTransfers map[int64][]scheduledTransfer

	// undoLog holds one blockUndo per connected block still within reorg
	// reach, keyed by block hash, so Disconnect can reverse it without
	// replaying history.
	undoLog map[chainhash.Hash]*blockUndo

	// filters holds the GCS compact filter built for each connected
	// block (spec.md §6), keyed by block hash.
	filters map[chainhash.Hash]*gcs.Filter

	// mempool is the conflict-removal/reinsertion seam into package
	// mempool, set via SetMempool. A nil value (the default, e.g. in
	// tests) means Connect/Disconnect skip mempool bookkeeping entirely.
	mempool MempoolNotifier
}

// MempoolNotifier is the interface ChainContext uses to keep an
// in-memory mempool consistent with the confirmed chain, per spec.md
// §4.3 "Conflict removal on block connect" and §4.5 step 2 ("re-inject
// evicted transactions and certificates into the mempool"). Defined here
// rather than imported from package mempool so blockchain stays the
// dependency root; package mempool implements this interface instead of
// blockchain depending on it directly.
type MempoolNotifier interface {
	// RemoveConflicts strips from the mempool every object made
	// redundant by block having just connected: anything spending an
	// input, shielded nullifier, or csw nullifier the block already
	// spent, and any lower-or-equal-quality certificate for a
	// (scid, epoch) the block just confirmed a certificate for.
	RemoveConflicts(block *wire.MsgBlock)

	// ReinsertFromBlock re-offers every transaction and certificate in a
	// just-disconnected block to the mempool, subject to its normal
	// admission and stale-sweep rules.
	ReinsertFromBlock(block *wire.MsgBlock)
}

// NewChainContext creates a ChainContext seeded with the network's genesis
// block as the only entry in the block index and the current best chain
// tip. The coin view defaults to an empty in-memory MemSource; production
// callers wire the durable database-backed store via SetSource before
// connecting any block beyond genesis.
func NewChainContext(params *chaincfg.Params) *ChainContext {
	index := NewBlockIndex()
	genesis := newBlockNode(&params.GenesisBlock.Header, nil)
	genesis.status = statusDataStored | statusValid
	index.AddNode(genesis)

	sigCache, _ := txscript.NewSigCache(defaultSigCacheSize)

	return &ChainContext{
		params:                  params,
		index:                   index,
		bestNode:                genesis,
		view:                    coinview.NewCache(coinview.NewMemSource()),
		sigCache:                sigCache,
		proofMode:               validation.ProofVerificationDisabled,
		latestAnchor:            coinview.EmptyAnchor,
		pendingForwardTransfers: make(map[int64][]scheduledTransfer),
		undoLog:                 make(map[chainhash.Hash]*blockUndo),
		filters:                 make(map[chainhash.Hash]*gcs.Filter),
	}
}

// defaultSigCacheSize bounds the signature-verification cache Connect
// shares across every transaction it scripts-checks, mirroring the
// teacher's own sig-cache sizing order of magnitude.
const defaultSigCacheSize = 100_000

// SetSource replaces the durable base layer behind the chain's coin view,
// for wiring the goleveldb-backed database package in at node startup. It
// must be called before connecting any block past genesis.
func (c *ChainContext) SetSource(source coinview.Source) {
	c.chainLock.Lock()
	defer c.chainLock.Unlock()
	c.view = coinview.NewCache(source)
}

// SetProofVerifier wires an external SNARK verifier into block connect's
// stage-8 checks, per spec.md §4.4. Passing mode
// ProofVerificationDisabled (the default) skips proof checks entirely.
func (c *ChainContext) SetProofVerifier(verifier validation.ProofVerifier, mode validation.ProofVerificationMode) {
	c.chainLock.Lock()
	defer c.chainLock.Unlock()
	c.verifier = verifier
	c.proofMode = mode
}

// SetMempool wires a mempool notifier into Connect/Disconnect's conflict
// removal and reinsertion hooks. It must be called before connecting any
// block once the node's mempool has been constructed.
func (c *ChainContext) SetMempool(m MempoolNotifier) {
	c.chainLock.Lock()
	defer c.chainLock.Unlock()
	c.mempool = m
}

// View returns the chain's confirmed-state coin view, for composing into
// a coinview.MempoolView or running read-only admission checks against.
func (c *ChainContext) View() coinview.Source {
	c.chainLock.RLock()
	defer c.chainLock.RUnlock()
	return c.view
}

// SigCache returns the signature-verification cache Connect shares across
// every transaction it scripts-checks, for reuse by mempool admission so
// a signature verified once at admission isn't re-verified at connect.
func (c *ChainContext) SigCache() *txscript.SigCache {
	return c.sigCache
}

// ProofVerifier returns the external SNARK verifier and mode wired via
// SetProofVerifier, for reuse by mempool admission's own stage-8 check.
func (c *ChainContext) ProofVerifier() (validation.ProofVerifier, validation.ProofVerificationMode) {
	c.chainLock.RLock()
	defer c.chainLock.RUnlock()
	return c.verifier, c.proofMode
}

// Filter returns the GCS compact filter built when the given block was
// connected, if it is still within reorg reach.
func (c *ChainContext) Filter(hash chainhash.Hash) (*gcs.Filter, bool) {
	c.chainLock.RLock()
	defer c.chainLock.RUnlock()
	f, ok := c.filters[hash]
	return f, ok
}

// BestHeight returns the height of the current best chain tip.
func (c *ChainContext) BestHeight() int64 {
	c.chainLock.RLock()
	defer c.chainLock.RUnlock()
	return c.bestNode.height
}

// BestHash returns the hash of the current best chain tip.
func (c *ChainContext) BestHash() chainhash.Hash {
	c.chainLock.RLock()
	defer c.chainLock.RUnlock()
	return c.bestNode.hash
}

// Params returns the network parameters the chain is operating under.
func (c *ChainContext) Params() *chaincfg.Params {
	return c.params
}

// FetchHeader returns the reconstructed header for the given block hash.
func (c *ChainContext) FetchHeader(hash *chainhash.Hash) (wire.BlockHeader, error) {
	node := c.index.LookupNode(hash)
	if node == nil {
		return wire.BlockHeader{}, unknownBlockError(hash)
	}
	return node.Header(), nil
}

// MainChainHasBlock reports whether hash is an ancestor of the current best
// chain tip. It backs OP_CHECKBLOCKATHEIGHT resolution (spec.md §6) via
// BlockAtHeight.
func (c *ChainContext) MainChainHasBlock(hash *chainhash.Hash) bool {
	node := c.index.LookupNode(hash)
	if node == nil {
		return false
	}
	c.chainLock.RLock()
	defer c.chainLock.RUnlock()
	return c.bestNode.Ancestor(node.height) == node
}

// HeightForCumulativeRoot implements sidechain.HeightResolver: it
// resolves an end-epoch cumulative commitment-tree root to the mainchain
// height it was recorded at, required by non-ceasing sidechain
// certificates (spec.md §4.2).
func (c *ChainContext) HeightForCumulativeRoot(root [32]byte) (int64, bool) {
	c.chainLock.RLock()
	defer c.chainLock.RUnlock()

	node := c.bestNode
	for node != nil {
		if node.cumSidechainTreeRoot == chainhash.Hash(root) {
			return node.height, true
		}
		node = node.parent
	}
	return 0, false
}

// BlockAtHeight resolves the main-chain block hash at the given height, as
// required by txscript.BlockAtHeightFunc for evaluating
// OP_CHECKBLOCKATHEIGHT.
func (c *ChainContext) BlockAtHeight(height int32) (chainhash.Hash, bool) {
	c.chainLock.RLock()
	defer c.chainLock.RUnlock()

	node := c.bestNode.Ancestor(int64(height))
	if node == nil {
		return chainhash.Hash{}, false
	}
	return node.hash, true
}
