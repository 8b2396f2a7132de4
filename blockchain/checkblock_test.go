// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"
	"time"

	"github.com/scnode/scnode/chainhash"
	"github.com/scnode/scnode/wire"
)

// coinbaseTx builds a minimal, well-shaped coinbase transaction: a single
// input with a null prevout and one output.
func coinbaseTx() *wire.MsgTx {
	tx := wire.NewMsgTx()
	tx.Version = wire.TxVersionBase
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Index: wire.NullOutpointIndex},
		SignatureScript:  []byte{0x01, 0x02},
		Sequence:         wire.MaxTxInSequenceNum,
	})
	tx.AddTxOut(&wire.TxOut{Value: 1, PkScript: []byte{0x51}})
	return tx
}

// regularTx builds a minimal, well-shaped non-coinbase transaction.
func regularTx() *wire.MsgTx {
	tx := wire.NewMsgTx()
	tx.Version = wire.TxVersionBase
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Hash: chainhash.HashH([]byte("prevout")), Index: 0},
		Sequence:         wire.MaxTxInSequenceNum,
	})
	tx.AddTxOut(&wire.TxOut{Value: 1, PkScript: []byte{0x51}})
	return tx
}

func TestCheckBlockRejectsEmptyTransactions(t *testing.T) {
	block := &wire.MsgBlock{}
	err := CheckBlock(block, regNetTestParams())
	if !IsErrorCode(err, ErrNoTransactions) {
		t.Fatalf("expected ErrNoTransactions, got %v", err)
	}
}

func TestCheckBlockRejectsNonCoinbaseFirst(t *testing.T) {
	block := &wire.MsgBlock{Transactions: []*wire.MsgTx{regularTx()}}
	err := CheckBlock(block, regNetTestParams())
	if !IsErrorCode(err, ErrFirstTxNotCoinbase) {
		t.Fatalf("expected ErrFirstTxNotCoinbase, got %v", err)
	}
}

func TestCheckBlockRejectsMultipleCoinbases(t *testing.T) {
	block := &wire.MsgBlock{Transactions: []*wire.MsgTx{coinbaseTx(), coinbaseTx()}}
	err := CheckBlock(block, regNetTestParams())
	if !IsErrorCode(err, ErrMultipleCoinbases) {
		t.Fatalf("expected ErrMultipleCoinbases, got %v", err)
	}
}

func TestCheckBlockRejectsBadMerkleRoot(t *testing.T) {
	block := &wire.MsgBlock{
		Header:       wire.BlockHeader{MerkleRoot: chainhash.HashH([]byte("wrong"))},
		Transactions: []*wire.MsgTx{coinbaseTx(), regularTx()},
	}
	err := CheckBlock(block, regNetTestParams())
	if !IsErrorCode(err, ErrBadMerkleRoot) {
		t.Fatalf("expected ErrBadMerkleRoot, got %v", err)
	}
}

func TestCheckBlockAcceptsMatchingMerkleRootBeforeProofOfWork(t *testing.T) {
	block := &wire.MsgBlock{Transactions: []*wire.MsgTx{coinbaseTx(), regularTx()}}
	block.Header.MerkleRoot = blockMerkleRoot(block)

	err := CheckBlock(block, regNetTestParams())
	// The merkle root now matches, so the failure (if any) must come from a
	// later check, never ErrBadMerkleRoot.
	if IsErrorCode(err, ErrBadMerkleRoot) {
		t.Fatalf("did not expect ErrBadMerkleRoot once the merkle root matches, got %v", err)
	}
}

func TestCheckProofOfWorkRejectsOutOfRangeBits(t *testing.T) {
	params := regNetTestParams()
	// Exponent 0xFF yields an astronomically large target, certainly above PowLimit.
	header := &wire.BlockHeader{Bits: 0xFF123456}
	err := checkProofOfWork(header, params)
	if !IsErrorCode(err, ErrDifficultyTooLow) {
		t.Fatalf("expected ErrDifficultyTooLow, got %v", err)
	}
}

func TestCheckProofOfWorkRejectsBadSolution(t *testing.T) {
	params := regNetTestParams()
	header := &wire.BlockHeader{
		Bits:             params.PowLimitBits,
		EquihashSolution: []byte{0x00, 0x01, 0x02, 0x03},
	}
	err := checkProofOfWork(header, params)
	if !IsErrorCode(err, ErrBadProofOfWork) {
		t.Fatalf("expected ErrBadProofOfWork, got %v", err)
	}
}

func certWith(scid chainhash.Hash, epoch uint32, quality uint64) *wire.MsgCert {
	return &wire.MsgCert{Scid: scid, EpochNumber: epoch, Quality: quality}
}

func TestCheckCertificateOrderingAcceptsSortedCerts(t *testing.T) {
	scidA := chainhash.HashH([]byte("a"))
	scidB := chainhash.HashH([]byte("b"))
	if scidA.Compare(scidB) > 0 {
		scidA, scidB = scidB, scidA
	}
	certs := []*wire.MsgCert{
		certWith(scidA, 0, 10),
		certWith(scidA, 0, 20),
		certWith(scidA, 1, 5),
		certWith(scidB, 0, 1),
	}
	if err := checkCertificateOrdering(certs); err != nil {
		t.Fatalf("unexpected error for sorted certificates: %v", err)
	}
}

func TestCheckCertificateOrderingRejectsOutOfOrderScid(t *testing.T) {
	scidA := chainhash.HashH([]byte("a"))
	scidB := chainhash.HashH([]byte("b"))
	if scidA.Compare(scidB) > 0 {
		scidA, scidB = scidB, scidA
	}
	certs := []*wire.MsgCert{certWith(scidB, 0, 1), certWith(scidA, 0, 1)}
	if err := checkCertificateOrdering(certs); !IsErrorCode(err, ErrCertificateOrderInvalid) {
		t.Fatalf("expected ErrCertificateOrderInvalid, got %v", err)
	}
}

func TestCheckCertificateOrderingRejectsNonIncreasingQuality(t *testing.T) {
	scid := chainhash.HashH([]byte("a"))
	certs := []*wire.MsgCert{certWith(scid, 0, 10), certWith(scid, 0, 10)}
	if err := checkCertificateOrdering(certs); !IsErrorCode(err, ErrCertificateOrderInvalid) {
		t.Fatalf("expected ErrCertificateOrderInvalid for equal quality, got %v", err)
	}
}

func TestCheckCertificateOrderingRejectsDecreasingEpoch(t *testing.T) {
	scid := chainhash.HashH([]byte("a"))
	certs := []*wire.MsgCert{certWith(scid, 1, 1), certWith(scid, 0, 1)}
	if err := checkCertificateOrdering(certs); !IsErrorCode(err, ErrCertificateOrderInvalid) {
		t.Fatalf("expected ErrCertificateOrderInvalid for decreasing epoch, got %v", err)
	}
}

func TestContextualCheckBlockRejectsWrongParent(t *testing.T) {
	params := regNetTestParams()
	cc := NewChainContext(params)
	block := &wire.MsgBlock{Header: wire.BlockHeader{PrevBlock: chainhash.HashH([]byte("not the tip"))}}
	err := cc.contextualCheckBlock(cc.bestNode, block)
	if !IsErrorCode(err, ErrMissingParent) {
		t.Fatalf("expected ErrMissingParent, got %v", err)
	}
}

func TestContextualCheckBlockRejectsStaleTimestamp(t *testing.T) {
	params := regNetTestParams()
	cc := NewChainContext(params)
	parent := cc.bestNode

	block := &wire.MsgBlock{Header: wire.BlockHeader{
		PrevBlock: parent.hash,
		Bits:      cc.calcNextRequiredDifficulty(parent, time.Unix(parent.timestamp, 0)),
		Timestamp: time.Unix(parent.timestamp, 0),
	}}
	err := cc.contextualCheckBlock(parent, block)
	if !IsErrorCode(err, ErrTimeTooOld) {
		t.Fatalf("expected ErrTimeTooOld, got %v", err)
	}
}

func TestContextualCheckBlockRejectsFutureTimestamp(t *testing.T) {
	params := regNetTestParams()
	cc := NewChainContext(params)
	parent := cc.bestNode

	future := time.Now().Add(maxTimeOffset + time.Hour)
	block := &wire.MsgBlock{Header: wire.BlockHeader{
		PrevBlock: parent.hash,
		Bits:      cc.calcNextRequiredDifficulty(parent, future),
		Timestamp: future,
	}}
	err := cc.contextualCheckBlock(parent, block)
	if !IsErrorCode(err, ErrTimeTooNew) {
		t.Fatalf("expected ErrTimeTooNew, got %v", err)
	}
}
