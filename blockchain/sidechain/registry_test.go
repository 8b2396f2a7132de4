// Copyright (c) 2018-2021 The Horizen developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sidechain

import (
	"testing"

	"github.com/scnode/scnode/blockchain/coinview"
	"github.com/scnode/scnode/chainhash"
	"github.com/scnode/scnode/wire"
)

func testScid() chainhash.Hash {
	return chainhash.HashH([]byte("test-scid"))
}

func TestApplyCreationSchedulesCeaseForCeasingSidechain(t *testing.T) {
	sc := &wire.SidechainCreation{
		WithdrawalEpochLength: 100,
		CertVerificationKey:   []byte{0x01},
		CeasedVerificationKey: []byte{0x02},
	}
	record := ApplyCreation(testScid(), sc, chainhash.HashH([]byte("tx")), 1000)

	if record.State != coinview.SidechainAlive {
		t.Fatalf("expected a freshly created sidechain to be ALIVE")
	}
	wantCease := int64(1000) + 100*2 - 1
	if record.CeaseHeight != wantCease {
		t.Fatalf("expected cease height %d, got %d", wantCease, record.CeaseHeight)
	}
}

func TestApplyCreationNonCeasingHasNoCeaseHeight(t *testing.T) {
	sc := &wire.SidechainCreation{
		WithdrawalEpochLength: 0,
		CertVerificationKey:   []byte{0x01},
	}
	record := ApplyCreation(testScid(), sc, chainhash.HashH([]byte("tx")), 500)
	if record.CeaseHeight != 0 {
		t.Fatalf("non-ceasing sidechain should have no scheduled cease height, got %d", record.CeaseHeight)
	}
	if !record.IsNonCeasing() {
		t.Fatalf("expected IsNonCeasing to be true")
	}
}

// CoinsInScCreationModifyScBalanceAtCoinMaturity (test_sideChain.cpp):
// forward-transfer value only lands in the balance once applied, matching
// the maturity-gated application the chain manager schedules.
func TestForwardTransferCreditsBalance(t *testing.T) {
	record := ApplyCreation(testScid(), &wire.SidechainCreation{CertVerificationKey: []byte{0x01}},
		chainhash.HashH([]byte("tx")), 10)

	ft := &wire.ForwardTransfer{Amount: 500, Scid: record.Scid}
	if err := ValidateForwardTransfer(record, ft); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	updated := ApplyForwardTransfer(record, ft)
	if updated.Balance != 500 {
		t.Fatalf("expected balance 500, got %d", updated.Balance)
	}
	if record.Balance != 0 {
		t.Fatalf("ApplyForwardTransfer must not mutate its input record")
	}
}

// YouCannotRestoreMoreCoinsThanAvailableBalance (test_sideChain.cpp):
// undoing a forward transfer never drives the balance negative.
func TestUndoForwardTransferClampsAtZero(t *testing.T) {
	record := ApplyCreation(testScid(), &wire.SidechainCreation{CertVerificationKey: []byte{0x01}},
		chainhash.HashH([]byte("tx")), 10)
	ft := &wire.ForwardTransfer{Amount: 100}

	updated := UndoForwardTransfer(record, ft)
	if updated.Balance != 0 {
		t.Fatalf("expected balance to clamp at zero, got %d", updated.Balance)
	}
}

func TestForwardTransferRejectedForCeasedSidechain(t *testing.T) {
	record := ApplyCreation(testScid(), &wire.SidechainCreation{CertVerificationKey: []byte{0x01}},
		chainhash.HashH([]byte("tx")), 10)
	record.State = coinview.SidechainCeased

	err := ValidateForwardTransfer(record, &wire.ForwardTransfer{Amount: 10})
	if !IsErrorCode(err, ErrForwardTransferSidechainNotAlive) {
		t.Fatalf("expected ErrForwardTransferSidechainNotAlive, got %v", err)
	}
}

func TestCswRequiresCeasedState(t *testing.T) {
	record := ApplyCreation(testScid(), &wire.SidechainCreation{CertVerificationKey: []byte{0x01}, CeasedVerificationKey: []byte{0x02}, WithdrawalEpochLength: 10},
		chainhash.HashH([]byte("tx")), 1)

	err := ValidateCsw(record, &wire.CswInput{Amount: 1}, false, 0, 0, 0)
	if !IsErrorCode(err, ErrCswSidechainNotCeased) {
		t.Fatalf("expected ErrCswSidechainNotCeased, got %v", err)
	}

	record.State = coinview.SidechainCeased
	record.Balance = 1000
	if err := ValidateCsw(record, &wire.CswInput{Amount: 500}, false, 0, 0, 0); err != nil {
		t.Fatalf("unexpected error for a valid csw: %v", err)
	}
	if err := ValidateCsw(record, &wire.CswInput{Amount: 1500}, false, 0, 0, 0); !IsErrorCode(err, ErrCswAboveSidechainBalance) {
		t.Fatalf("expected ErrCswAboveSidechainBalance, got %v", err)
	}
}

func TestMaybeFireCeaseTransitionsAtScheduledHeight(t *testing.T) {
	record := ApplyCreation(testScid(), &wire.SidechainCreation{CertVerificationKey: []byte{0x01}, CeasedVerificationKey: []byte{0x02}, WithdrawalEpochLength: 10},
		chainhash.HashH([]byte("tx")), 0)

	stillAlive := MaybeFireCease(record, record.CeaseHeight-1)
	if stillAlive.State != coinview.SidechainAlive {
		t.Fatalf("expected sidechain to remain ALIVE before its cease height")
	}

	ceased := MaybeFireCease(record, record.CeaseHeight)
	if ceased.State != coinview.SidechainCeased {
		t.Fatalf("expected sidechain to transition to CEASED at its scheduled cease height")
	}
}
