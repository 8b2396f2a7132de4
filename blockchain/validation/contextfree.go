// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package validation

import (
	"github.com/scnode/scnode/chaincfg"
	"github.com/scnode/scnode/scutil"
	"github.com/scnode/scnode/wire"
)

// LockTimeThreshold marks the boundary between a transaction's LockTime
// being interpreted as a block height versus a Unix timestamp, matching
// the long-standing Bitcoin-lineage convention (Tue Nov 5 00:53:20 1985
// UTC as a height would be absurd, so anything at or above it is a time).
const LockTimeThreshold = 500_000_000

// minCoinbaseScriptLen and maxCoinbaseScriptLen bound a coinbase's
// signature script, the space miners use to embed extra nonce and the
// BIP34-style height commitment (spec.md §4.4 stage 1 "coinbase shape").
const (
	minCoinbaseScriptLen = 2
	maxCoinbaseScriptLen = 100
)

// CheckTransactionSanity performs the context-free checks of spec.md
// §4.4 stage 1 against a transaction in isolation: no coin view, no
// active chain, and no knowledge of its position within a block.
func CheckTransactionSanity(tx *wire.MsgTx, params *chaincfg.Params) error {
	switch tx.Version {
	case wire.TxVersionBase, wire.TxVersionShielded, wire.TxVersionSidechain:
	default:
		return ruleError(ErrUnknownTxVersion, "transaction carries an unrecognized version")
	}

	// Sidechain-only transactions (pure scCreation/fwd/mbtr/csw, no
	// regular spend) are allowed to carry no regular inputs or outputs.
	sidechainOnly := tx.HasSidechainData()
	if len(tx.TxIn) == 0 && !sidechainOnly {
		return ruleError(ErrNoTxInputs, "transaction has no inputs")
	}
	if len(tx.TxOut) == 0 && !sidechainOnly {
		return ruleError(ErrNoTxOutputs, "transaction has no outputs")
	}

	serialized, err := tx.Serialize()
	if err != nil {
		return ruleError(ErrOversizeTx, "transaction could not be serialized")
	}
	if len(serialized) > params.MaxTxSize {
		return ruleError(ErrOversizeTx, "transaction exceeds the maximum allowed size")
	}

	seenOutpoints := make(map[wire.OutPoint]struct{}, len(tx.TxIn))
	for _, in := range tx.TxIn {
		if _, dup := seenOutpoints[in.PreviousOutPoint]; dup {
			return ruleError(ErrDuplicateTxInputs, "transaction spends the same outpoint more than once")
		}
		seenOutpoints[in.PreviousOutPoint] = struct{}{}
	}

	amounts := make([]scutil.Amount, 0, len(tx.TxOut)+len(tx.SidechainCreations)+len(tx.ForwardTransfers)+len(tx.CswInputs))
	for _, out := range tx.TxOut {
		amounts = append(amounts, scutil.Amount(out.Value))
	}
	for _, sc := range tx.SidechainCreations {
		amounts = append(amounts, scutil.Amount(sc.Amount))
	}
	for _, ft := range tx.ForwardTransfers {
		amounts = append(amounts, scutil.Amount(ft.Amount))
	}
	for _, csw := range tx.CswInputs {
		amounts = append(amounts, scutil.Amount(csw.Amount))
	}
	if _, err := scutil.SumInRange(amounts...); err != nil {
		return ruleError(ErrBadTxOutValue, "transaction output value out of range or overflows in sum")
	}

	if tx.IsCoinBase() {
		sigLen := len(tx.TxIn[0].SignatureScript)
		if sigLen < minCoinbaseScriptLen || sigLen > maxCoinbaseScriptLen {
			return ruleError(ErrBadCoinbaseShape, "coinbase signature script length out of bounds")
		}
		if tx.HasShieldedData() {
			return ruleError(ErrBadCoinbaseShape, "coinbase transaction carries shielded data")
		}
	} else {
		for _, in := range tx.TxIn {
			if in.PreviousOutPoint.IsNull() {
				return ruleError(ErrBadCoinbaseShape, "non-coinbase transaction contains a null previous outpoint")
			}
		}
	}

	if tx.HasShieldedData() {
		if err := CheckShieldedSanity(tx); err != nil {
			return err
		}
	}

	return nil
}

// CheckCertificateSanity performs the context-free shape checks on a
// certificate: amounts in range, and the backward-transfer split point
// addressing a valid prefix of TxOut.
func CheckCertificateSanity(cert *wire.MsgCert) error {
	if cert.FirstBwtPos > uint32(len(cert.TxOut)) {
		return ruleError(ErrCertificateBwtSplitInvalid, "certificate backward-transfer split point exceeds its output count")
	}
	amounts := make([]scutil.Amount, len(cert.TxOut))
	for i, out := range cert.TxOut {
		amounts[i] = scutil.Amount(out.Value)
	}
	if _, err := scutil.SumInRange(amounts...); err != nil {
		return ruleError(ErrBadTxOutValue, "certificate output value out of range or overflows in sum")
	}
	if cert.ForwardTransferScFee < 0 || cert.MainchainBwtRequestScFee < 0 {
		return ruleError(ErrBadTxOutValue, "certificate declares a negative fee")
	}
	return nil
}

// IsFinalTx reports whether tx may be included in a block at the given
// height and median time, following the classic Bitcoin-lineage
// LockTime rule: a zero LockTime or an all-final sequence set always
// finalizes the transaction; otherwise LockTime is compared as either a
// height or a timestamp depending on which side of LockTimeThreshold it
// falls.
func IsFinalTx(tx *wire.MsgTx, blockHeight int64, blockTime int64) bool {
	if tx.LockTime == 0 {
		return true
	}

	threshold := blockHeight
	if tx.LockTime >= LockTimeThreshold {
		threshold = blockTime
	}
	if int64(tx.LockTime) < threshold {
		return true
	}

	for _, in := range tx.TxIn {
		if in.Sequence != wire.MaxTxInSequenceNum {
			return false
		}
	}
	return true
}
