// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coinview

import (
	"sync"

	"github.com/scnode/scnode/chainhash"
)

// MemSource is an in-memory Source. It is the reference implementation of
// the base layer's contract and backs tests throughout blockchain/ and
// mempool/; a production node instead runs the goleveldb-backed store in
// package database behind the same Source interface (spec.md §4.1's "the
// base layer is the only durable store").
type MemSource struct {
	mtx sync.RWMutex

	coins         map[chainhash.Hash]*Coins
	nullifiers    map[chainhash.Hash]bool
	anchors       map[chainhash.Hash]Anchor
	sidechains    map[chainhash.Hash]*SidechainRecord
	cswNullifiers map[CswNullifierKey]bool
	bestBlock     chainhash.Hash
}

// NewMemSource returns an empty in-memory base layer. Callers typically
// seed it with the genesis anchor via BatchWrite before use.
func NewMemSource() *MemSource {
	return &MemSource{
		coins:         make(map[chainhash.Hash]*Coins),
		nullifiers:    make(map[chainhash.Hash]bool),
		anchors:       map[chainhash.Hash]Anchor{EmptyAnchor.Root: EmptyAnchor},
		sidechains:    make(map[chainhash.Hash]*SidechainRecord),
		cswNullifiers: make(map[CswNullifierKey]bool),
	}
}

func (m *MemSource) GetCoins(txid chainhash.Hash) (*Coins, bool) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	c, ok := m.coins[txid]
	return c.Clone(), ok
}

func (m *MemSource) HaveCoins(txid chainhash.Hash) bool {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	_, ok := m.coins[txid]
	return ok
}

func (m *MemSource) GetNullifier(nf chainhash.Hash) bool {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.nullifiers[nf]
}

func (m *MemSource) GetAnchor(root chainhash.Hash) (Anchor, bool) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	a, ok := m.anchors[root]
	return a, ok
}

func (m *MemSource) GetSidechain(scid chainhash.Hash) (*SidechainRecord, bool) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	sc, ok := m.sidechains[scid]
	return sc.Clone(), ok
}

func (m *MemSource) HaveCswNullifier(key CswNullifierKey) bool {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.cswNullifiers[key]
}

func (m *MemSource) BestBlock() chainhash.Hash {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.bestBlock
}

func (m *MemSource) BatchWrite(b *Batch) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	for txid, c := range b.Coins {
		if c == nil || c.IsPruned() {
			delete(m.coins, txid)
			continue
		}
		m.coins[txid] = c
	}
	for nf, spent := range b.Nullifiers {
		if spent {
			m.nullifiers[nf] = true
		} else {
			delete(m.nullifiers, nf)
		}
	}
	for root, a := range b.Anchors {
		m.anchors[root] = a
	}
	for scid, sc := range b.Sidechains {
		if sc == nil {
			delete(m.sidechains, scid)
			continue
		}
		m.sidechains[scid] = sc
	}
	for key, spent := range b.CswNullifiers {
		if spent {
			m.cswNullifiers[key] = true
		} else {
			delete(m.cswNullifiers, key)
		}
	}
	if !b.BestBlock.IsZero() {
		m.bestBlock = b.BestBlock
	}
	return nil
}
