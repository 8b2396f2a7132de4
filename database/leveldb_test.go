// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database

import (
	"testing"

	"github.com/scnode/scnode/blockchain/coinview"
	"github.com/scnode/scnode/chainhash"
	"github.com/scnode/scnode/wire"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	})
	return db
}

func TestDBRoundTripsCoins(t *testing.T) {
	db := openTestDB(t)

	txid := chainhash.HashH([]byte("tx"))
	coins := &coinview.Coins{
		Version: 1,
		Height:  10,
		Outputs: []*wire.TxOut{{Value: 5000}},
	}

	if err := db.BatchWrite(&coinview.Batch{
		Coins: map[chainhash.Hash]*coinview.Coins{txid: coins},
	}); err != nil {
		t.Fatalf("BatchWrite: %v", err)
	}

	got, ok := db.GetCoins(txid)
	if !ok {
		t.Fatalf("GetCoins: not found")
	}
	if got.Height != coins.Height || len(got.Outputs) != 1 || got.Outputs[0].Value != 5000 {
		t.Fatalf("GetCoins returned %+v, want %+v", got, coins)
	}
	if !db.HaveCoins(txid) {
		t.Fatalf("HaveCoins: false, want true")
	}

	if err := db.BatchWrite(&coinview.Batch{
		Coins: map[chainhash.Hash]*coinview.Coins{txid: nil},
	}); err != nil {
		t.Fatalf("BatchWrite delete: %v", err)
	}
	if db.HaveCoins(txid) {
		t.Fatalf("HaveCoins after delete: true, want false")
	}
}

func TestDBRoundTripsNullifiers(t *testing.T) {
	db := openTestDB(t)
	nf := chainhash.HashH([]byte("nullifier"))

	if db.GetNullifier(nf) {
		t.Fatalf("GetNullifier before write: true, want false")
	}

	if err := db.BatchWrite(&coinview.Batch{
		Nullifiers: map[chainhash.Hash]bool{nf: true},
	}); err != nil {
		t.Fatalf("BatchWrite: %v", err)
	}
	if !db.GetNullifier(nf) {
		t.Fatalf("GetNullifier after write: false, want true")
	}

	if err := db.BatchWrite(&coinview.Batch{
		Nullifiers: map[chainhash.Hash]bool{nf: false},
	}); err != nil {
		t.Fatalf("BatchWrite unset: %v", err)
	}
	if db.GetNullifier(nf) {
		t.Fatalf("GetNullifier after unset: true, want false")
	}
}

func TestDBRoundTripsAnchor(t *testing.T) {
	db := openTestDB(t)
	root := chainhash.HashH([]byte("root"))
	anchor := coinview.Anchor{Root: root, CommitmentCount: 42}

	if err := db.BatchWrite(&coinview.Batch{
		Anchors: map[chainhash.Hash]coinview.Anchor{root: anchor},
	}); err != nil {
		t.Fatalf("BatchWrite: %v", err)
	}

	got, ok := db.GetAnchor(root)
	if !ok {
		t.Fatalf("GetAnchor: not found")
	}
	if got != anchor {
		t.Fatalf("GetAnchor returned %+v, want %+v", got, anchor)
	}

	if _, ok := db.GetAnchor(chainhash.HashH([]byte("other"))); ok {
		t.Fatalf("GetAnchor for unknown root: found, want not found")
	}
}

func TestDBRoundTripsSidechain(t *testing.T) {
	db := openTestDB(t)
	scid := chainhash.HashH([]byte("scid"))
	sc := &coinview.SidechainRecord{
		Scid:    scid,
		State:   coinview.SidechainAlive,
		Balance: 1000,
		TopCertByEpoch: map[uint32]coinview.CertTableEntry{
			0: {Epoch: 0, Quality: 7},
		},
	}

	if err := db.BatchWrite(&coinview.Batch{
		Sidechains: map[chainhash.Hash]*coinview.SidechainRecord{scid: sc},
	}); err != nil {
		t.Fatalf("BatchWrite: %v", err)
	}

	got, ok := db.GetSidechain(scid)
	if !ok {
		t.Fatalf("GetSidechain: not found")
	}
	if got.Balance != sc.Balance || got.TopCertByEpoch[0].Quality != 7 {
		t.Fatalf("GetSidechain returned %+v, want %+v", got, sc)
	}

	if err := db.BatchWrite(&coinview.Batch{
		Sidechains: map[chainhash.Hash]*coinview.SidechainRecord{scid: nil},
	}); err != nil {
		t.Fatalf("BatchWrite delete: %v", err)
	}
	if _, ok := db.GetSidechain(scid); ok {
		t.Fatalf("GetSidechain after delete: found, want not found")
	}
}

func TestDBRoundTripsCswNullifier(t *testing.T) {
	db := openTestDB(t)
	key := coinview.CswNullifierKey{
		Scid:      chainhash.HashH([]byte("scid")),
		Nullifier: [32]byte{1, 2, 3},
	}

	if db.HaveCswNullifier(key) {
		t.Fatalf("HaveCswNullifier before write: true, want false")
	}
	if err := db.BatchWrite(&coinview.Batch{
		CswNullifiers: map[coinview.CswNullifierKey]bool{key: true},
	}); err != nil {
		t.Fatalf("BatchWrite: %v", err)
	}
	if !db.HaveCswNullifier(key) {
		t.Fatalf("HaveCswNullifier after write: false, want true")
	}

	// A nullifier is scoped per scid: the same nullifier bytes under a
	// different scid must not collide.
	other := key
	other.Scid = chainhash.HashH([]byte("different scid"))
	if db.HaveCswNullifier(other) {
		t.Fatalf("HaveCswNullifier for a different scid: true, want false")
	}
}

func TestDBBestBlock(t *testing.T) {
	db := openTestDB(t)

	if best := db.BestBlock(); !best.IsZero() {
		t.Fatalf("BestBlock before any write: %v, want zero hash", best)
	}

	tip := chainhash.HashH([]byte("tip"))
	if err := db.BatchWrite(&coinview.Batch{BestBlock: tip}); err != nil {
		t.Fatalf("BatchWrite: %v", err)
	}
	if got := db.BestBlock(); got != tip {
		t.Fatalf("BestBlock: %v, want %v", got, tip)
	}
}

func TestDBPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	tip := chainhash.HashH([]byte("tip"))
	if err := db.BatchWrite(&coinview.Batch{BestBlock: tip}); err != nil {
		t.Fatalf("BatchWrite: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if got := reopened.BestBlock(); got != tip {
		t.Fatalf("BestBlock after reopen: %v, want %v", got, tip)
	}
}
