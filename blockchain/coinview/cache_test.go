// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coinview

import (
	"testing"

	"github.com/scnode/scnode/chainhash"
	"github.com/scnode/scnode/txscript"
	"github.com/scnode/scnode/wire"
)

func sampleTx(value int64) *wire.MsgTx {
	tx := wire.NewMsgTx()
	tx.AddTxOut(&wire.TxOut{Value: value, PkScript: []byte{txscript.OP_1}})
	return tx
}

func TestCacheReadThroughAndFlush(t *testing.T) {
	base := NewMemSource()
	tx := sampleTx(7777)
	txid := tx.TxHash()

	seed := NewBatch()
	seed.Coins[txid] = NewCoinsFromTx(tx, 50)
	seed.BestBlock = chainhash.HashH([]byte("seed"))
	if err := base.BatchWrite(seed); err != nil {
		t.Fatalf("seeding base failed: %v", err)
	}

	cache := NewCache(base)
	coins, ok := cache.GetCoins(txid)
	if !ok || coins.Outputs[0].Value != 7777 {
		t.Fatalf("expected cache to read through to base, got %+v, ok=%v", coins, ok)
	}

	spentTx := sampleTx(1)
	spentTxid := spentTx.TxHash()
	cache.PutCoins(spentTxid, NewCoinsFromTx(spentTx, 51))
	cache.SetBestBlock(chainhash.HashH([]byte("next")))

	if _, ok := base.GetCoins(spentTxid); ok {
		t.Fatalf("dirty cache entries must not be visible in the base layer before Flush")
	}

	if err := cache.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if _, ok := base.GetCoins(spentTxid); !ok {
		t.Fatalf("expected Flush to propagate new coin record to base")
	}
	if base.BestBlock() != cache.BestBlock() {
		t.Fatalf("expected Flush to propagate best block to base")
	}
}

func TestCacheSpendOutput(t *testing.T) {
	base := NewMemSource()
	tx := sampleTx(123)
	txid := tx.TxHash()
	seed := NewBatch()
	seed.Coins[txid] = NewCoinsFromTx(tx, 1)
	base.BatchWrite(seed)

	cache := NewCache(base)
	out := cache.SpendOutput(txid, 0)
	if out == nil || out.Value != 123 {
		t.Fatalf("SpendOutput returned unexpected value: %+v", out)
	}
	if cache.SpendOutput(txid, 0) != nil {
		t.Fatalf("spending the same output twice through the cache should yield nil")
	}

	if err := cache.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if _, ok := base.GetCoins(txid); ok {
		t.Fatalf("fully-spent coin record should be pruned from base after Flush")
	}
}

// memFeed is a minimal Feed implementation for exercising MempoolView.
type memFeed struct {
	txs        map[chainhash.Hash]*wire.MsgTx
	nullifiers map[chainhash.Hash]bool
}

func newMemFeed() *memFeed {
	return &memFeed{
		txs:        make(map[chainhash.Hash]*wire.MsgTx),
		nullifiers: make(map[chainhash.Hash]bool),
	}
}

func (f *memFeed) LookupTx(txid chainhash.Hash) (*wire.MsgTx, bool) {
	tx, ok := f.txs[txid]
	return tx, ok
}

func (f *memFeed) LookupCert(chainhash.Hash) (*wire.MsgCert, bool, bool) {
	return nil, false, false
}

func (f *memFeed) HasNullifier(nf chainhash.Hash) bool {
	return f.nullifiers[nf]
}

func (f *memFeed) HasCswNullifier(CswNullifierKey) bool {
	return false
}

func (f *memFeed) OverlaySidechain(scid chainhash.Hash, confirmed *SidechainRecord) (*SidechainRecord, bool) {
	return confirmed, confirmed != nil
}

func TestMempoolViewSeesUnconfirmedOutputs(t *testing.T) {
	base := NewMemSource()
	cache := NewCache(base)
	feed := newMemFeed()

	pending := sampleTx(999)
	pendingTxid := pending.TxHash()
	feed.txs[pendingTxid] = pending

	view := NewMempoolView(cache, feed)
	coins, ok := view.GetCoins(pendingTxid)
	if !ok {
		t.Fatalf("expected mempool overlay to see unconfirmed transaction")
	}
	if coins.Height != MempoolHeight {
		t.Fatalf("expected MempoolHeight, got %d", coins.Height)
	}

	if err := view.BatchWrite(NewBatch()); err == nil {
		t.Fatalf("expected MempoolView.BatchWrite to reject writes")
	}
}
