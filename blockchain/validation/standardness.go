// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package validation

import (
	"github.com/scnode/scnode/chaincfg"
	"github.com/scnode/scnode/txscript"
	"github.com/scnode/scnode/wire"
)

// maxStandardTxSigOps bounds the signature-operation cost a relay-policy
// accepted transaction may carry, independent of its byte size, matching
// the conservative per-tx cap the teacher's policy layer imposes ahead of
// the heavier block-level sigop budget.
const maxStandardTxSigOps = 4000

// dustRelayFee is the fee rate, in zatoshi per byte, used to derive the
// per-output dust threshold: an output is dust if spending it back would
// cost more in fees than its own value at this rate (spec.md §3
// "outputs not below the dust threshold").
const dustRelayFee = 3

// CheckStandardness applies the policy-layer checks of spec.md §4.4 stage
// 2: every output script must match a known standard template —
// including the OP_CHECKBLOCKATHEIGHT replay-protection variants — and
// the transaction's own signature-operation cost must stay under the
// relay policy cap. It is skipped entirely when params.RelayNonStdTxs is
// set.
func CheckStandardness(tx *wire.MsgTx, params *chaincfg.Params) error {
	if params.RelayNonStdTxs {
		return nil
	}

	sigOps := 0
	for _, out := range tx.TxOut {
		if !isStandardOutputScript(out.PkScript) {
			return ruleError(ErrNonStandard, "transaction output does not pay to a standard script")
		}
		if isDustOutput(out) {
			return ruleError(ErrNonStandard, "transaction output value is below the dust threshold")
		}
		sigOps += txscript.GetSigOpCount(out.PkScript)
	}
	for _, in := range tx.TxIn {
		sigOps += txscript.GetSigOpCount(in.SignatureScript)
	}
	if sigOps > maxStandardTxSigOps {
		return ruleError(ErrTooManySigOps, "transaction exceeds the standard signature-operation limit")
	}
	return nil
}

// isStandardOutputScript recognizes the standard templates plus their
// OP_CHECKBLOCKATHEIGHT replay-protected variants.
func isStandardOutputScript(pkScript []byte) bool {
	if base, ok := txscript.StripCheckBlockAtHeightSuffix(pkScript); ok {
		pkScript = base
	}
	switch txscript.GetScriptClass(pkScript) {
	case txscript.PubKeyHashTy, txscript.ScriptHashTy, txscript.NullDataTy:
		return true
	default:
		return false
	}
}

// isDustOutput reports whether out's value is below the cost of spending
// it back at the dust relay fee rate. OP_RETURN data carriers are exempt:
// they can never be spent, so the dust rule does not apply to them.
func isDustOutput(out *wire.TxOut) bool {
	if txscript.GetScriptClass(out.PkScript) == txscript.NullDataTy {
		return false
	}
	// A spending input for a standard P2PKH/P2SH output costs roughly
	// 148 bytes; below dustRelayFee*148 zatoshi the output costs more to
	// redeem than it is worth.
	const typicalSpendInputSize = 148
	return out.Value < int64(typicalSpendInputSize*dustRelayFee)
}
