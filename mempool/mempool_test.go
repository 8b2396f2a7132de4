// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/scnode/scnode/blockchain/coinview"
	"github.com/scnode/scnode/blockchain/sidechain"
	"github.com/scnode/scnode/blockchain/validation"
	"github.com/scnode/scnode/chaincfg"
	"github.com/scnode/scnode/chainhash"
	"github.com/scnode/scnode/txscript"
	"github.com/scnode/scnode/wire"
)

// fakeChainSource is a minimal mempool.ChainSource fake, in the style of
// blockchain/connect_test.go's hand-built fixtures: just enough surface for
// the admission pipeline to exercise, with no disk or consensus engine
// behind it.
type fakeChainSource struct {
	view      coinview.Source
	params    *chaincfg.Params
	sigCache  *txscript.SigCache
	height    int64
	blocks    map[int32]chainhash.Hash
	verifier  validation.ProofVerifier
	proofMode validation.ProofVerificationMode
}

func newFakeChainSource(t *testing.T) *fakeChainSource {
	t.Helper()
	sigCache, err := txscript.NewSigCache(10)
	if err != nil {
		t.Fatalf("failed to build sig cache: %v", err)
	}
	return &fakeChainSource{
		view:      coinview.NewMemSource(),
		params:    chaincfg.RegNetParams(),
		sigCache:  sigCache,
		blocks:    make(map[int32]chainhash.Hash),
		verifier:  stubVerifier{ok: true},
		proofMode: validation.ProofVerificationSync,
	}
}

func (f *fakeChainSource) View() coinview.Source        { return f.view }
func (f *fakeChainSource) SigCache() *txscript.SigCache { return f.sigCache }
func (f *fakeChainSource) ProofVerifier() (validation.ProofVerifier, validation.ProofVerificationMode) {
	return f.verifier, f.proofMode
}
func (f *fakeChainSource) BlockAtHeight(height int32) (chainhash.Hash, bool) {
	h, ok := f.blocks[height]
	return h, ok
}
func (f *fakeChainSource) BestHeight() int64        { return f.height }
func (f *fakeChainSource) Params() *chaincfg.Params { return f.params }
func (f *fakeChainSource) HeightForCumulativeRoot([32]byte) (int64, bool) {
	return 0, false
}

type stubVerifier struct{ ok bool }

func (s stubVerifier) VerifyCertificate(*wire.MsgCert, *coinview.SidechainRecord) bool { return s.ok }
func (s stubVerifier) VerifyCsw(*wire.CswInput, *coinview.SidechainRecord) bool        { return s.ok }
func (s stubVerifier) VerifyJoinSplit(*wire.JoinSplit) bool                            { return s.ok }

func defaultPolicy() Policy {
	return Policy{
		AllowFree:                true,
		MaxCswInputsPerSidechain: 2,
		DeepHistoryWindow:        0,
	}
}

// seedSpendableCoin installs a spendable, already-confirmed output in
// chain's view and returns the outpoint spending it produces.
func seedSpendableCoin(t *testing.T, chain *fakeChainSource, value int64) wire.OutPoint {
	t.Helper()
	seed := wire.NewMsgTx()
	seed.AddTxOut(&wire.TxOut{Value: value, PkScript: []byte{txscript.OP_TRUE}})
	seedHash := seed.TxHash()

	batch := coinview.NewBatch()
	batch.Coins[seedHash] = coinview.NewCoinsFromTx(seed, 1)
	if err := chain.view.BatchWrite(batch); err != nil {
		t.Fatalf("failed to seed spendable coin: %v", err)
	}
	return wire.OutPoint{Hash: seedHash, Index: 0}
}

func spendTx(op wire.OutPoint, value int64) *wire.MsgTx {
	tx := wire.NewMsgTx()
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: op, Sequence: wire.MaxTxInSequenceNum})
	tx.AddTxOut(&wire.TxOut{Value: value, PkScript: []byte{txscript.OP_TRUE}})
	return tx
}

func TestMaybeAcceptEntryAcceptsSpendableTransaction(t *testing.T) {
	chain := newFakeChainSource(t)
	mp := NewTxPool(Config{Chain: chain, Policy: defaultPolicy()})

	op := seedSpendableCoin(t, chain, 5000)
	tx := spendTx(op, 4000)

	state := mp.MaybeAcceptEntry(tx)
	if !state.IsValid() {
		t.Fatalf("expected acceptance, got %s", spew.Sdump(state))
	}
	if !mp.HaveTransaction(tx.TxHash()) {
		t.Fatalf("accepted transaction should be pool-resident")
	}
	txs, _ := mp.Count()
	if txs != 1 {
		t.Fatalf("expected exactly one pending transaction, got %d", txs)
	}
}

func TestMaybeAcceptEntryRejectsDuplicate(t *testing.T) {
	chain := newFakeChainSource(t)
	mp := NewTxPool(Config{Chain: chain, Policy: defaultPolicy()})

	op := seedSpendableCoin(t, chain, 5000)
	tx := spendTx(op, 4000)

	if state := mp.MaybeAcceptEntry(tx); !state.IsValid() {
		t.Fatalf("expected first admission to succeed, got %s", spew.Sdump(state))
	}
	state := mp.MaybeAcceptEntry(tx)
	if state.IsValid() {
		t.Fatalf("expected the second admission of the same transaction to be rejected")
	}
	if state.RejectCode != validation.RejectDuplicate {
		t.Fatalf("expected RejectDuplicate, got %v", state.RejectCode)
	}
}

func TestMaybeAcceptEntryRejectsConflictingSpend(t *testing.T) {
	chain := newFakeChainSource(t)
	mp := NewTxPool(Config{Chain: chain, Policy: defaultPolicy()})

	op := seedSpendableCoin(t, chain, 5000)
	first := spendTx(op, 4000)
	second := spendTx(op, 3000)

	if state := mp.MaybeAcceptEntry(first); !state.IsValid() {
		t.Fatalf("expected first spend to be accepted, got %s", spew.Sdump(state))
	}
	state := mp.MaybeAcceptEntry(second)
	if state.IsValid() {
		t.Fatalf("expected the conflicting spend to be rejected")
	}
	if state.RejectCode != validation.RejectHasConflicts {
		t.Fatalf("expected RejectHasConflicts, got %v", state.RejectCode)
	}
}

func TestMaybeAcceptEntryRejectsMissingInput(t *testing.T) {
	chain := newFakeChainSource(t)
	mp := NewTxPool(Config{Chain: chain, Policy: defaultPolicy()})

	tx := spendTx(wire.OutPoint{Hash: chainhash.HashH([]byte("nowhere"))}, 1000)
	state := mp.MaybeAcceptEntry(tx)
	if state.IsValid() {
		t.Fatalf("expected rejection for a transaction spending an unknown output")
	}
}

func TestRemoveCascadesToDependentTransactions(t *testing.T) {
	chain := newFakeChainSource(t)
	mp := NewTxPool(Config{Chain: chain, Policy: defaultPolicy()})

	op := seedSpendableCoin(t, chain, 5000)
	parent := spendTx(op, 4000)
	if state := mp.MaybeAcceptEntry(parent); !state.IsValid() {
		t.Fatalf("expected parent to be accepted, got %s", spew.Sdump(state))
	}
	parentHash := parent.TxHash()

	child := spendTx(wire.OutPoint{Hash: parentHash, Index: 0}, 3000)
	if state := mp.MaybeAcceptEntry(child); !state.IsValid() {
		t.Fatalf("expected child to be accepted, got %s", spew.Sdump(state))
	}
	childHash := child.TxHash()

	mp.Remove(parentHash)

	if mp.HaveTransaction(parentHash) {
		t.Fatalf("expected parent to be removed")
	}
	if mp.HaveTransaction(childHash) {
		t.Fatalf("expected child to be cascaded away with its parent")
	}
	txs, _ := mp.Count()
	if txs != 0 {
		t.Fatalf("expected an empty pool after cascading removal, got %d", txs)
	}
}

func TestRemoveConflictsEvictsDoubleSpendOnConnect(t *testing.T) {
	chain := newFakeChainSource(t)
	mp := NewTxPool(Config{Chain: chain, Policy: defaultPolicy()})

	op := seedSpendableCoin(t, chain, 5000)
	pending := spendTx(op, 4000)
	if state := mp.MaybeAcceptEntry(pending); !state.IsValid() {
		t.Fatalf("expected pending spend to be accepted, got %s", spew.Sdump(state))
	}

	confirmed := spendTx(op, 3000)
	block := wire.NewMsgBlock(&wire.BlockHeader{})
	block.AddTransaction(confirmed)

	mp.RemoveConflicts(block)

	if mp.HaveTransaction(pending.TxHash()) {
		t.Fatalf("expected the conflicting pending spend to be evicted on connect")
	}
}

func TestReinsertFromBlockRestoresDisconnectedTransaction(t *testing.T) {
	chain := newFakeChainSource(t)
	mp := NewTxPool(Config{Chain: chain, Policy: defaultPolicy()})

	op := seedSpendableCoin(t, chain, 5000)
	tx := spendTx(op, 4000)

	block := wire.NewMsgBlock(&wire.BlockHeader{})
	block.AddTransaction(tx)

	mp.ReinsertFromBlock(block)

	if !mp.HaveTransaction(tx.TxHash()) {
		t.Fatalf("expected a disconnected transaction to be re-admitted")
	}
}

func TestCheckCswCapLockedEnforcesPerSidechainLimit(t *testing.T) {
	chain := newFakeChainSource(t)
	policy := defaultPolicy()
	policy.MaxCswInputsPerSidechain = 1
	mp := NewTxPool(Config{Chain: chain, Policy: policy})

	scid := chainhash.HashH([]byte("scid"))
	record := sidechain.ApplyCreation(scid, &wire.SidechainCreation{
		CertVerificationKey:   []byte{0x01},
		CeasedVerificationKey: []byte{0x02},
		WithdrawalEpochLength: 100,
	}, chainhash.HashH([]byte("creation")), 1)
	record.State = coinview.SidechainCeased

	batch := coinview.NewBatch()
	batch.Sidechains[scid] = record
	if err := chain.view.BatchWrite(batch); err != nil {
		t.Fatalf("failed to seed sidechain: %v", err)
	}

	first := wire.NewMsgTx()
	first.Version = wire.TxVersionSidechain
	first.CswInputs = []*wire.CswInput{{Scid: scid, Amount: 10, Nullifier: [32]byte{0x01}}}

	if err := mp.checkCswCapLocked(first); err != nil {
		t.Fatalf("expected the first csw to fit under the cap, got %v", err)
	}

	second := wire.NewMsgTx()
	second.Version = wire.TxVersionSidechain
	second.CswInputs = []*wire.CswInput{{Scid: scid, Amount: 10, Nullifier: [32]byte{0x02}}}

	if err := mp.checkCswCapLocked(second); err == nil {
		t.Fatalf("expected the second csw to exceed the per-sidechain cap")
	}
}

func TestAcceptCertificatePromotesRunnerUpOnRemoval(t *testing.T) {
	chain := newFakeChainSource(t)
	mp := NewTxPool(Config{Chain: chain, Policy: defaultPolicy()})

	scid := chainhash.HashH([]byte("scid"))
	record := sidechain.ApplyCreation(scid, &wire.SidechainCreation{
		CertVerificationKey:   []byte{0x01},
		CeasedVerificationKey: []byte{0x02},
		WithdrawalEpochLength: 100,
	}, chainhash.HashH([]byte("creation")), 1)

	batch := coinview.NewBatch()
	batch.Sidechains[scid] = record
	if err := chain.view.BatchWrite(batch); err != nil {
		t.Fatalf("failed to seed sidechain: %v", err)
	}

	low := &wire.MsgCert{Scid: scid, EpochNumber: 0, Quality: 1}
	high := &wire.MsgCert{Scid: scid, EpochNumber: 0, Quality: 5}

	if state := mp.AcceptCertificate(low); !state.IsValid() {
		t.Fatalf("expected the low-quality certificate to be accepted, got %s", spew.Sdump(state))
	}
	if state := mp.AcceptCertificate(high); !state.IsValid() {
		t.Fatalf("expected the high-quality certificate to be accepted, got %s", spew.Sdump(state))
	}

	entry := mp.byScid[scid]
	if top, ok := entry.Certs.Top(0); !ok || top != high.CertHash() {
		t.Fatalf("expected the high-quality certificate to hold the top slot")
	}

	mp.removeCertificateLocked(high.CertHash())

	if top, ok := entry.Certs.Top(0); !ok || top != low.CertHash() {
		t.Fatalf("expected the low-quality certificate to be promoted after the top one is removed")
	}
}
