// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package validation

import (
	"testing"

	"github.com/scnode/scnode/chaincfg"
	"github.com/scnode/scnode/wire"
)

func simpleSpendTx() *wire.MsgTx {
	tx := wire.NewMsgTx()
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Hash: [32]byte{0x01}, Index: 0},
		Sequence:         wire.MaxTxInSequenceNum,
	})
	tx.AddTxOut(&wire.TxOut{Value: 1000, PkScript: []byte{0x51}})
	return tx
}

func TestCheckTransactionSanityRejectsEmptyRegularTx(t *testing.T) {
	tx := wire.NewMsgTx()
	params := chaincfg.RegNetParams()
	if err := CheckTransactionSanity(tx, params); !IsErrorCode(err, ErrNoTxInputs) {
		t.Fatalf("expected ErrNoTxInputs, got %v", err)
	}
}

func TestCheckTransactionSanityAllowsSidechainOnlyTxWithNoRegularInOut(t *testing.T) {
	tx := wire.NewMsgTx()
	tx.Version = wire.TxVersionSidechain
	tx.SidechainCreations = []*wire.SidechainCreation{{
		Amount:              100,
		CertVerificationKey: []byte{0x01},
	}}
	params := chaincfg.RegNetParams()
	if err := CheckTransactionSanity(tx, params); err != nil {
		t.Fatalf("unexpected error for a sidechain-only transaction: %v", err)
	}
}

func TestCheckTransactionSanityRejectsDuplicateInputs(t *testing.T) {
	tx := simpleSpendTx()
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: tx.TxIn[0].PreviousOutPoint})

	params := chaincfg.RegNetParams()
	if err := CheckTransactionSanity(tx, params); !IsErrorCode(err, ErrDuplicateTxInputs) {
		t.Fatalf("expected ErrDuplicateTxInputs, got %v", err)
	}
}

func TestCheckTransactionSanityRejectsUnknownVersion(t *testing.T) {
	tx := simpleSpendTx()
	tx.Version = 0xdead

	params := chaincfg.RegNetParams()
	if err := CheckTransactionSanity(tx, params); !IsErrorCode(err, ErrUnknownTxVersion) {
		t.Fatalf("expected ErrUnknownTxVersion, got %v", err)
	}
}

func TestCheckTransactionSanityRejectsNullPrevoutOnNonCoinbase(t *testing.T) {
	tx := simpleSpendTx()
	tx.TxIn[0].PreviousOutPoint = wire.OutPoint{Index: wire.NullOutpointIndex}

	params := chaincfg.RegNetParams()
	if err := CheckTransactionSanity(tx, params); !IsErrorCode(err, ErrBadCoinbaseShape) {
		t.Fatalf("expected ErrBadCoinbaseShape for a null prevout outside a coinbase, got %v", err)
	}
}

func TestCheckTransactionSanityEnforcesCoinbaseScriptLength(t *testing.T) {
	tx := wire.NewMsgTx()
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Index: wire.NullOutpointIndex},
		SignatureScript:  []byte{0x01},
	})
	tx.AddTxOut(&wire.TxOut{Value: 1000, PkScript: []byte{0x51}})

	params := chaincfg.RegNetParams()
	if err := CheckTransactionSanity(tx, params); !IsErrorCode(err, ErrBadCoinbaseShape) {
		t.Fatalf("expected ErrBadCoinbaseShape for an undersize coinbase script, got %v", err)
	}
}

func TestIsFinalTxZeroLockTimeAlwaysFinal(t *testing.T) {
	tx := simpleSpendTx()
	tx.LockTime = 0
	if !IsFinalTx(tx, 0, 0) {
		t.Fatalf("expected a zero-locktime transaction to always be final")
	}
}

func TestIsFinalTxHeightLockedBeforeThreshold(t *testing.T) {
	tx := simpleSpendTx()
	tx.LockTime = 100
	tx.TxIn[0].Sequence = 0

	if IsFinalTx(tx, 50, 0) {
		t.Fatalf("expected tx locked to height 100 to not be final at height 50")
	}
	if !IsFinalTx(tx, 100, 0) {
		t.Fatalf("expected tx locked to height 100 to be final at height 100")
	}
}

func TestIsFinalTxTimeLockedAboveThreshold(t *testing.T) {
	tx := simpleSpendTx()
	tx.LockTime = LockTimeThreshold + 1000
	tx.TxIn[0].Sequence = 0

	if IsFinalTx(tx, 1_000_000, LockTimeThreshold+500) {
		t.Fatalf("expected tx locked to a timestamp to not be final before that time")
	}
	if !IsFinalTx(tx, 1_000_000, LockTimeThreshold+1000) {
		t.Fatalf("expected tx locked to a timestamp to be final at that time")
	}
}

func TestIsFinalTxAllMaxSequenceOverridesPendingLockTime(t *testing.T) {
	tx := simpleSpendTx()
	tx.LockTime = 1_000_000
	tx.TxIn[0].Sequence = wire.MaxTxInSequenceNum

	if !IsFinalTx(tx, 0, 0) {
		t.Fatalf("expected an all-max-sequence transaction to be final regardless of LockTime")
	}
}

func TestCheckCertificateSanityRejectsOutOfRangeBwtSplit(t *testing.T) {
	cert := &wire.MsgCert{
		TxOut:       []*wire.TxOut{{Value: 100}},
		FirstBwtPos: 5,
	}
	if err := CheckCertificateSanity(cert); !IsErrorCode(err, ErrCertificateBwtSplitInvalid) {
		t.Fatalf("expected ErrCertificateBwtSplitInvalid, got %v", err)
	}
}

func TestCheckCertificateSanityRejectsNegativeFee(t *testing.T) {
	cert := &wire.MsgCert{
		TxOut:                []*wire.TxOut{{Value: 100}},
		ForwardTransferScFee: -1,
	}
	if err := CheckCertificateSanity(cert); err == nil {
		t.Fatalf("expected an error for a negative forward-transfer fee")
	}
}
