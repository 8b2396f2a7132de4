// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coinview

import (
	"sync"

	"github.com/scnode/scnode/chainhash"
	"github.com/scnode/scnode/wire"
)

// cacheEntry wraps a cached value together with a dirty bit so Flush only
// has to walk entries touched since the last flush, matching the "writes
// go to the cache, then propagate via batch_write" contract of spec.md
// §4.1.
type cacheEntry[T any] struct {
	value T
	dirty bool
}

// Cache is the middle layer of the coin view stack: a read-through,
// write-back cache in front of another Source (typically the base disk
// store, but a cache can also sit in front of another cache to represent a
// view at some point other than the current tip). DbCache-style size
// limits (spec.md §5 "DbCache size caps the coin view cache; on overflow,
// flush to base") are the caller's responsibility — Flush is always safe
// to call early.
type Cache struct {
	mtx sync.RWMutex

	source Source

	coins         map[chainhash.Hash]*cacheEntry[*Coins]
	nullifiers    map[chainhash.Hash]*cacheEntry[bool]
	anchors       map[chainhash.Hash]*cacheEntry[Anchor]
	sidechains    map[chainhash.Hash]*cacheEntry[*SidechainRecord]
	cswNullifiers map[CswNullifierKey]*cacheEntry[bool]

	bestBlock      chainhash.Hash
	bestBlockDirty bool
}

// NewCache returns a cache overlay reading through to source.
func NewCache(source Source) *Cache {
	return &Cache{
		source:        source,
		coins:         make(map[chainhash.Hash]*cacheEntry[*Coins]),
		nullifiers:    make(map[chainhash.Hash]*cacheEntry[bool]),
		anchors:       make(map[chainhash.Hash]*cacheEntry[Anchor]),
		sidechains:    make(map[chainhash.Hash]*cacheEntry[*SidechainRecord]),
		cswNullifiers: make(map[CswNullifierKey]*cacheEntry[bool]),
		bestBlock:     source.BestBlock(),
	}
}

func (c *Cache) GetCoins(txid chainhash.Hash) (*Coins, bool) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if e, ok := c.coins[txid]; ok {
		return e.value.Clone(), e.value != nil
	}
	coins, ok := c.source.GetCoins(txid)
	c.coins[txid] = &cacheEntry[*Coins]{value: coins}
	return coins.Clone(), ok
}

func (c *Cache) HaveCoins(txid chainhash.Hash) bool {
	_, ok := c.GetCoins(txid)
	return ok
}

// PutCoins installs coins as the cached, dirty record for txid. Passing a
// nil or fully-pruned record marks it for deletion on Flush.
func (c *Cache) PutCoins(txid chainhash.Hash, coins *Coins) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if coins != nil && coins.IsPruned() {
		coins = nil
	}
	c.coins[txid] = &cacheEntry[*Coins]{value: coins, dirty: true}
}

// SpendOutput marks one output of txid's coin record spent in the cache.
// It returns the spent output, or nil if the coin or output was already
// unavailable.
func (c *Cache) SpendOutput(txid chainhash.Hash, index int) *wire.TxOut {
	c.mtx.Lock()
	coins, ok := c.coins[txid]
	c.mtx.Unlock()

	var record *Coins
	if ok {
		record = coins.value.Clone()
	} else {
		fetched, found := c.source.GetCoins(txid)
		if !found {
			return nil
		}
		record = fetched
	}
	if record == nil {
		return nil
	}
	out := record.Spend(index)
	if out == nil {
		return nil
	}
	c.PutCoins(txid, record)
	return out
}

func (c *Cache) GetNullifier(nf chainhash.Hash) bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if e, ok := c.nullifiers[nf]; ok {
		return e.value
	}
	spent := c.source.GetNullifier(nf)
	c.nullifiers[nf] = &cacheEntry[bool]{value: spent}
	return spent
}

// MarkNullifierSpent records nf as spent in the cache.
func (c *Cache) MarkNullifierSpent(nf chainhash.Hash) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.nullifiers[nf] = &cacheEntry[bool]{value: true, dirty: true}
}

func (c *Cache) GetAnchor(root chainhash.Hash) (Anchor, bool) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if e, ok := c.anchors[root]; ok {
		return e.value, true
	}
	a, ok := c.source.GetAnchor(root)
	if ok {
		c.anchors[root] = &cacheEntry[Anchor]{value: a}
	}
	return a, ok
}

// PutAnchor records a new commitment-tree snapshot in the cache.
func (c *Cache) PutAnchor(a Anchor) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.anchors[a.Root] = &cacheEntry[Anchor]{value: a, dirty: true}
}

func (c *Cache) GetSidechain(scid chainhash.Hash) (*SidechainRecord, bool) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if e, ok := c.sidechains[scid]; ok {
		return e.value.Clone(), e.value != nil
	}
	sc, ok := c.source.GetSidechain(scid)
	c.sidechains[scid] = &cacheEntry[*SidechainRecord]{value: sc}
	return sc.Clone(), ok
}

// PutSidechain installs sc as the cached, dirty record for scid.
func (c *Cache) PutSidechain(scid chainhash.Hash, sc *SidechainRecord) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.sidechains[scid] = &cacheEntry[*SidechainRecord]{value: sc, dirty: true}
}

func (c *Cache) HaveCswNullifier(key CswNullifierKey) bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if e, ok := c.cswNullifiers[key]; ok {
		return e.value
	}
	spent := c.source.HaveCswNullifier(key)
	c.cswNullifiers[key] = &cacheEntry[bool]{value: spent}
	return spent
}

// MarkCswNullifierSpent records key as a spent csw nullifier in the cache.
func (c *Cache) MarkCswNullifierSpent(key CswNullifierKey) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.cswNullifiers[key] = &cacheEntry[bool]{value: true, dirty: true}
}

func (c *Cache) BestBlock() chainhash.Hash {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.bestBlock
}

// SetBestBlock updates the cache's notion of the tip it represents. It
// takes effect in the underlying source only once Flush is called.
func (c *Cache) SetBestBlock(hash chainhash.Hash) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.bestBlock = hash
	c.bestBlockDirty = true
}

// BatchWrite applies every delta in b directly into the cache as dirty
// entries, without touching the underlying source. This is how a block
// connect's accumulated changes enter the cache before an eventual Flush.
func (c *Cache) BatchWrite(b *Batch) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	for txid, coin := range b.Coins {
		c.coins[txid] = &cacheEntry[*Coins]{value: coin, dirty: true}
	}
	for nf, spent := range b.Nullifiers {
		c.nullifiers[nf] = &cacheEntry[bool]{value: spent, dirty: true}
	}
	for root, a := range b.Anchors {
		c.anchors[root] = &cacheEntry[Anchor]{value: a, dirty: true}
	}
	for scid, sc := range b.Sidechains {
		c.sidechains[scid] = &cacheEntry[*SidechainRecord]{value: sc, dirty: true}
	}
	for key, spent := range b.CswNullifiers {
		c.cswNullifiers[key] = &cacheEntry[bool]{value: spent, dirty: true}
	}
	if !b.BestBlock.IsZero() {
		c.bestBlock = b.BestBlock
		c.bestBlockDirty = true
	}
	return nil
}

// Flush propagates every dirty entry to the underlying source via a single
// batch_write call and clears the dirty bits, per spec.md §4.1's "the base
// layer is the only durable store" contract. Clean entries remain cached.
func (c *Cache) Flush() error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	b := NewBatch()
	for txid, e := range c.coins {
		if !e.dirty {
			continue
		}
		b.Coins[txid] = e.value
		e.dirty = false
	}
	for nf, e := range c.nullifiers {
		if !e.dirty {
			continue
		}
		b.Nullifiers[nf] = e.value
		e.dirty = false
	}
	for root, e := range c.anchors {
		if !e.dirty {
			continue
		}
		b.Anchors[root] = e.value
		e.dirty = false
	}
	for scid, e := range c.sidechains {
		if !e.dirty {
			continue
		}
		b.Sidechains[scid] = e.value
		e.dirty = false
	}
	for key, e := range c.cswNullifiers {
		if !e.dirty {
			continue
		}
		b.CswNullifiers[key] = e.value
		e.dirty = false
	}
	if c.bestBlockDirty {
		b.BestBlock = c.bestBlock
		c.bestBlockDirty = false
	}

	return c.source.BatchWrite(b)
}
