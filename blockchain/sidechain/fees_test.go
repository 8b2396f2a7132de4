// Copyright (c) 2018-2021 The Horizen developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sidechain

import (
	"testing"

	"github.com/scnode/scnode/chainhash"
	"github.com/scnode/scnode/wire"
)

func TestScFeeCheckUsesCurrentNotCreationFloor(t *testing.T) {
	record := ApplyCreation(testScid(), &wire.SidechainCreation{
		CertVerificationKey:   []byte{0x01},
		ForwardTransferMinFee: 10,
	}, chainhash.HashH([]byte("tx")), 0)

	if err := ScFeeCheck(record, ForwardTransferFee, 10); err != nil {
		t.Fatalf("unexpected error at the creation-time floor: %v", err)
	}

	raised := RaiseFeeFloors(record, 50, 0)
	if err := ScFeeCheck(raised, ForwardTransferFee, 10); !IsErrorCode(err, ErrForwardTransferFeeBelowFloor) {
		t.Fatalf("expected the raised floor to reject the old minimum, got %v", err)
	}
	if err := ScFeeCheck(raised, ForwardTransferFee, 50); err != nil {
		t.Fatalf("unexpected error at the raised floor: %v", err)
	}
}

func TestRaiseFeeFloorsNeverLowers(t *testing.T) {
	record := ApplyCreation(testScid(), &wire.SidechainCreation{
		CertVerificationKey:   []byte{0x01},
		ForwardTransferMinFee: 100,
	}, chainhash.HashH([]byte("tx")), 0)

	lowered := RaiseFeeFloors(record, 10, 0)
	if lowered.CurrentForwardTransferMinFee != 100 {
		t.Fatalf("expected fee floor to stay at 100, got %d", lowered.CurrentForwardTransferMinFee)
	}
}
