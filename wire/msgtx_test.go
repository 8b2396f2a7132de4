// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"testing"

	"github.com/scnode/scnode/chainhash"
)

func TestMsgTxSerializeRoundTrip(t *testing.T) {
	tx := NewMsgTx()
	tx.AddTxIn(&TxIn{
		PreviousOutPoint: OutPoint{Index: NullOutpointIndex},
		SignatureScript:  []byte{0x00, 0x00},
		Sequence:         MaxTxInSequenceNum,
	})
	tx.AddTxOut(&TxOut{Value: 5000000000, PkScript: []byte{0x51}})

	if !tx.IsCoinBase() {
		t.Fatalf("expected coinbase shape")
	}

	serialized, err := tx.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	var got MsgTx
	if err := got.Deserialize(bytes.NewReader(serialized)); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	if got.Version != tx.Version || len(got.TxIn) != 1 || len(got.TxOut) != 1 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.TxOut[0].Value != 5000000000 {
		t.Fatalf("value mismatch: got %d", got.TxOut[0].Value)
	}
	if tx.TxHash() != got.TxHash() {
		t.Fatalf("hash mismatch after round trip")
	}
}

func TestMsgTxShieldedRoundTrip(t *testing.T) {
	tx := &MsgTx{Version: TxVersionShielded}
	tx.JoinSplits = []*JoinSplit{{
		VpubOld: 0,
		VpubNew: 50000000,
		Anchor:  chainhash.HashH([]byte("anchor")),
	}}
	tx.JoinSplitPubKey = [JoinSplitPubKeySize]byte{0x01}

	serialized, err := tx.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	var got MsgTx
	if err := got.Deserialize(bytes.NewReader(serialized)); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if !got.HasShieldedData() {
		t.Fatalf("expected shielded data to round trip")
	}
	if got.JoinSplits[0].VpubNew != 50000000 {
		t.Fatalf("vpub_new mismatch: got %d", got.JoinSplits[0].VpubNew)
	}
}

func TestMsgTxSidechainRoundTrip(t *testing.T) {
	tx := &MsgTx{Version: TxVersionSidechain}
	tx.SidechainCreations = []*SidechainCreation{{
		Amount:                100000000,
		WithdrawalEpochLength: 10,
	}}
	tx.ForwardTransfers = []*ForwardTransfer{{Amount: 50000000}}

	serialized, err := tx.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	var got MsgTx
	if err := got.Deserialize(bytes.NewReader(serialized)); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if !got.HasSidechainData() {
		t.Fatalf("expected sidechain data to round trip")
	}
	if len(got.SidechainCreations) != 1 || got.SidechainCreations[0].WithdrawalEpochLength != 10 {
		t.Fatalf("sidechain creation mismatch: %+v", got.SidechainCreations)
	}
}

func TestOutPointIsNull(t *testing.T) {
	op := OutPoint{Index: NullOutpointIndex}
	if !op.IsNull() {
		t.Fatalf("expected null outpoint")
	}
	op.Hash[0] = 1
	if op.IsNull() {
		t.Fatalf("expected non-null outpoint once hash is set")
	}
}
