// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/scnode/scnode/chainhash"
	"github.com/scnode/scnode/scutil"
	"github.com/scnode/scnode/wire"
)

func buildSpendingTx(prevScript []byte, prevValue int64) (*wire.MsgTx, *wire.MsgTx) {
	prevTx := wire.NewMsgTx()
	prevTx.AddTxOut(&wire.TxOut{Value: prevValue, PkScript: prevScript})

	spendTx := wire.NewMsgTx()
	spendTx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Hash: prevTx.TxHash(), Index: 0},
		Sequence:         wire.MaxTxInSequenceNum,
	})
	spendTx.AddTxOut(&wire.TxOut{Value: prevValue - 1000, PkScript: prevScript})
	return prevTx, spendTx
}

func TestCheckSigPubKeyHashRoundTrip(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	pkHash := scutil.Hash160(priv.PubKey().SerializeCompressed())

	pkScript, err := PayToAddrScript(pkHash)
	if err != nil {
		t.Fatalf("PayToAddrScript: %v", err)
	}

	_, spendTx := buildSpendingTx(pkScript, 5000)

	sigHash, err := CalcSignatureHash(pkScript, SigHashAll, spendTx, 0)
	if err != nil {
		t.Fatalf("CalcSignatureHash: %v", err)
	}
	sig := ecdsa.Sign(priv, sigHash[:])

	sigScript := make([]byte, 0)
	sigBytes := append(sig.Serialize(), byte(SigHashAll))
	sigScript = append(sigScript, byte(len(sigBytes)))
	sigScript = append(sigScript, sigBytes...)
	pubKeyBytes := priv.PubKey().SerializeCompressed()
	sigScript = append(sigScript, byte(len(pubKeyBytes)))
	sigScript = append(sigScript, pubKeyBytes...)

	spendTx.TxIn[0].SignatureScript = sigScript

	engine, err := NewEngine(pkScript, sigScript, spendTx, 0, nil, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if err := engine.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
}

func TestGetScriptClass(t *testing.T) {
	pkHash := make([]byte, 20)
	pkScript, _ := PayToAddrScript(pkHash)
	if class := GetScriptClass(pkScript); class != PubKeyHashTy {
		t.Fatalf("expected PubKeyHashTy, got %v", class)
	}

	redeem := []byte{OP_1, OP_CHECKSIG}
	shScript := PayToScriptHashScript(redeem)
	if class := GetScriptClass(shScript); class != ScriptHashTy {
		t.Fatalf("expected ScriptHashTy, got %v", class)
	}

	nullData := []byte{OP_RETURN, OP_DATA_1, 0x01}
	if class := GetScriptClass(nullData); class != NullDataTy {
		t.Fatalf("expected NullDataTy, got %v", class)
	}
}

func TestCheckBlockAtHeight(t *testing.T) {
	var blockHash chainhash.Hash
	blockHash[0] = 0xAB

	script := NewCheckBlockAtHeightScript(100, blockHash)

	tx := wire.NewMsgTx()
	tx.AddTxIn(&wire.TxIn{Sequence: wire.MaxTxInSequenceNum})
	tx.AddTxOut(&wire.TxOut{Value: 1})

	resolved := func(height int32) (chainhash.Hash, bool) {
		if height == 100 {
			return blockHash, true
		}
		return chainhash.Hash{}, false
	}

	engine, err := NewEngine(script, nil, tx, 0, nil, resolved)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if err := engine.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	wrongHeight := func(height int32) (chainhash.Hash, bool) {
		return chainhash.Hash{}, false
	}
	engine2, err := NewEngine(script, nil, tx, 0, nil, wrongHeight)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if err := engine2.Execute(); err == nil {
		t.Fatalf("expected failure when block at height cannot be resolved")
	}
}

func TestIsReplayProtected(t *testing.T) {
	if !IsReplayProtected(100, 100+52596, 52596) {
		t.Fatalf("expected deep enough history to be replay protected")
	}
	if IsReplayProtected(100, 100+100, 52596) {
		t.Fatalf("expected shallow history to not be replay protected")
	}
}
