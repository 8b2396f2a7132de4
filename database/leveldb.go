// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package database implements the durable base layer of the layered coin
// view stack (spec.md §4.1): a goleveldb-backed coinview.Source, the only
// layer a restarted node actually reads its chain state back from. Every
// other layer (coinview.Cache, coinview.MempoolView) is an in-memory
// overlay in front of a Source; in production that Source is a *DB from
// this package, wired in via ChainContext.SetSource at node startup.
package database

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	leveldberrors "github.com/syndtr/goleveldb/leveldb/errors"

	"github.com/scnode/scnode/blockchain/coinview"
	"github.com/scnode/scnode/chainhash"
)

// Key prefixes partition the single goleveldb keyspace into the coin
// view's five record families plus the best-block singleton, matching the
// per-record-kind get/put operations of spec.md §4.1's Source contract.
var (
	coinsPrefix         = []byte{'c'}
	nullifiersPrefix    = []byte{'n'}
	anchorsPrefix       = []byte{'a'}
	sidechainsPrefix    = []byte{'s'}
	cswNullifiersPrefix = []byte{'w'}
	bestBlockKey        = []byte{'B'}
)

// DB is a goleveldb-backed coinview.Source. The zero value is not usable;
// construct one with Open.
type DB struct {
	ldb *leveldb.DB
}

// Open opens (creating if necessary) the goleveldb database rooted at
// dataDir as the node's durable chain-state store.
func Open(dataDir string) (*DB, error) {
	ldb, err := leveldb.OpenFile(dataDir, &opt.Options{})
	if err != nil {
		return nil, fmt.Errorf("database: open %s: %w", dataDir, err)
	}
	log.Infof("Opened chain-state database at %s", dataDir)
	return &DB{ldb: ldb}, nil
}

// Close releases the underlying goleveldb handle. It is safe to call once
// a node is shutting down; further calls against the DB are invalid
// afterward.
func (db *DB) Close() error {
	log.Infof("Closing chain-state database")
	return db.ldb.Close()
}

func keyFor(prefix []byte, id []byte) []byte {
	key := make([]byte, 0, len(prefix)+len(id))
	key = append(key, prefix...)
	key = append(key, id...)
	return key
}

func (db *DB) getGob(key []byte, v interface{}) (bool, error) {
	raw, err := db.ldb.Get(key, nil)
	if errors.Is(err, leveldberrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(v); err != nil {
		return false, fmt.Errorf("database: decode %x: %w", key, err)
	}
	return true, nil
}

func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GetCoins implements coinview.Source.
func (db *DB) GetCoins(txid chainhash.Hash) (*coinview.Coins, bool) {
	var coins coinview.Coins
	ok, err := db.getGob(keyFor(coinsPrefix, txid[:]), &coins)
	if err != nil || !ok {
		return nil, false
	}
	return &coins, true
}

// HaveCoins implements coinview.Source.
func (db *DB) HaveCoins(txid chainhash.Hash) bool {
	_, ok := db.GetCoins(txid)
	return ok
}

// GetNullifier implements coinview.Source.
func (db *DB) GetNullifier(nf chainhash.Hash) bool {
	has, err := db.ldb.Has(keyFor(nullifiersPrefix, nf[:]), nil)
	return err == nil && has
}

// GetAnchor implements coinview.Source.
func (db *DB) GetAnchor(root chainhash.Hash) (coinview.Anchor, bool) {
	var anchor coinview.Anchor
	ok, err := db.getGob(keyFor(anchorsPrefix, root[:]), &anchor)
	if err != nil || !ok {
		return coinview.Anchor{}, false
	}
	return anchor, true
}

// GetSidechain implements coinview.Source.
func (db *DB) GetSidechain(scid chainhash.Hash) (*coinview.SidechainRecord, bool) {
	var sc coinview.SidechainRecord
	ok, err := db.getGob(keyFor(sidechainsPrefix, scid[:]), &sc)
	if err != nil || !ok {
		return nil, false
	}
	return &sc, true
}

// HaveCswNullifier implements coinview.Source.
func (db *DB) HaveCswNullifier(key coinview.CswNullifierKey) bool {
	raw := keyFor(cswNullifiersPrefix, cswNullifierKeyBytes(key))
	has, err := db.ldb.Has(raw, nil)
	return err == nil && has
}

func cswNullifierKeyBytes(key coinview.CswNullifierKey) []byte {
	out := make([]byte, 0, chainhash.HashSize+len(key.Nullifier))
	out = append(out, key.Scid[:]...)
	out = append(out, key.Nullifier[:]...)
	return out
}

// BestBlock implements coinview.Source.
func (db *DB) BestBlock() chainhash.Hash {
	raw, err := db.ldb.Get(bestBlockKey, nil)
	if err != nil || len(raw) != chainhash.HashSize {
		return chainhash.Hash{}
	}
	var hash chainhash.Hash
	copy(hash[:], raw)
	return hash
}

// BatchWrite implements coinview.Source, applying every delta in b as a
// single goleveldb write batch so a crash mid-flush never leaves the
// durable store with a partially-applied block (spec.md §4.1's batch_write
// atomicity requirement).
func (db *DB) BatchWrite(b *coinview.Batch) error {
	batch := new(leveldb.Batch)

	for txid, coins := range b.Coins {
		key := keyFor(coinsPrefix, txid[:])
		if coins == nil {
			batch.Delete(key)
			continue
		}
		raw, err := encodeGob(coins)
		if err != nil {
			return err
		}
		batch.Put(key, raw)
	}
	for nf, spent := range b.Nullifiers {
		key := keyFor(nullifiersPrefix, nf[:])
		if spent {
			batch.Put(key, []byte{1})
		} else {
			batch.Delete(key)
		}
	}
	for root, anchor := range b.Anchors {
		raw, err := encodeGob(anchor)
		if err != nil {
			return err
		}
		batch.Put(keyFor(anchorsPrefix, root[:]), raw)
	}
	for scid, sc := range b.Sidechains {
		key := keyFor(sidechainsPrefix, scid[:])
		if sc == nil {
			batch.Delete(key)
			continue
		}
		raw, err := encodeGob(sc)
		if err != nil {
			return err
		}
		batch.Put(key, raw)
	}
	for cswKey, spent := range b.CswNullifiers {
		key := keyFor(cswNullifiersPrefix, cswNullifierKeyBytes(cswKey))
		if spent {
			batch.Put(key, []byte{1})
		} else {
			batch.Delete(key)
		}
	}
	if !b.BestBlock.IsZero() {
		batch.Put(bestBlockKey, b.BestBlock[:])
	}

	return db.ldb.Write(batch, nil)
}

var _ coinview.Source = (*DB)(nil)
