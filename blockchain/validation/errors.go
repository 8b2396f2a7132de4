// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package validation implements the admission pipeline of spec.md §4.4:
// the stateless, ordered sequence of context-free and contextual rule
// checks shared by mempool admission (mempool.TxPool.MaybeAcceptEntry)
// and block connect (blockchain.ChainContext's per-transaction replay).
// It also owns the error taxonomy of spec.md §7 (RuleError, State) for everything below block-structural granularity.
//
// validation must not import package blockchain: blockchain imports
// validation to drive per-transaction checks during block connect, and
// package mempool imports validation directly for admission. Giving this
// package its own ErrorCode space (rather than reusing blockchain's)
// keeps that dependency edge acyclic, the same convention already used
// by blockchain/sidechain.
package validation

import (
	"errors"
	"fmt"
)

// ErrorCode identifies the consensus or policy rule that a validation
// failure violated.
type ErrorCode int

const (
	ErrNoTxInputs ErrorCode = iota
	ErrNoTxOutputs
	ErrBadTxOutValue
	ErrDuplicateTxInputs
	ErrMissingTxOut
	ErrUnfinalizedTx
	ErrDuplicateTx
	ErrImmatureSpend
	ErrSpendTooHigh
	ErrBadFees
	ErrTooManySigOps
	ErrOversizeTx
	ErrUnknownTxVersion
	ErrBadCoinbaseShape
	ErrScriptMalformed
	ErrScriptValidation
	ErrNonStandard
	ErrCheckBlockAtHeightFailed
	ErrJoinSplitAnchorUnknown
	ErrNullifierAlreadySeen
	ErrNullifierDuplicateInTx
	ErrJoinSplitValueBalanceInvalid
	ErrJoinSplitSignatureInvalid
	ErrJoinSplitProofInvalid
	ErrFeeTooLow
	ErrAbsurdlyHighFee
	ErrMissingInput
	ErrConflict
	ErrProofVerificationFailed
	ErrSidechainCreationDuplicate
	ErrCertificateBwtSplitInvalid
)

var errorCodeStrings = map[ErrorCode]string{
	ErrNoTxInputs:                   "ErrNoTxInputs",
	ErrNoTxOutputs:                  "ErrNoTxOutputs",
	ErrBadTxOutValue:                "ErrBadTxOutValue",
	ErrDuplicateTxInputs:            "ErrDuplicateTxInputs",
	ErrMissingTxOut:                 "ErrMissingTxOut",
	ErrUnfinalizedTx:                "ErrUnfinalizedTx",
	ErrDuplicateTx:                  "ErrDuplicateTx",
	ErrImmatureSpend:                "ErrImmatureSpend",
	ErrSpendTooHigh:                 "ErrSpendTooHigh",
	ErrBadFees:                      "ErrBadFees",
	ErrTooManySigOps:                "ErrTooManySigOps",
	ErrOversizeTx:                   "ErrOversizeTx",
	ErrUnknownTxVersion:             "ErrUnknownTxVersion",
	ErrBadCoinbaseShape:             "ErrBadCoinbaseShape",
	ErrScriptMalformed:              "ErrScriptMalformed",
	ErrScriptValidation:             "ErrScriptValidation",
	ErrNonStandard:                  "ErrNonStandard",
	ErrCheckBlockAtHeightFailed:     "ErrCheckBlockAtHeightFailed",
	ErrJoinSplitAnchorUnknown:       "ErrJoinSplitAnchorUnknown",
	ErrNullifierAlreadySeen:         "ErrNullifierAlreadySeen",
	ErrNullifierDuplicateInTx:       "ErrNullifierDuplicateInTx",
	ErrJoinSplitValueBalanceInvalid: "ErrJoinSplitValueBalanceInvalid",
	ErrJoinSplitSignatureInvalid:    "ErrJoinSplitSignatureInvalid",
	ErrJoinSplitProofInvalid:        "ErrJoinSplitProofInvalid",
	ErrFeeTooLow:                    "ErrFeeTooLow",
	ErrAbsurdlyHighFee:              "ErrAbsurdlyHighFee",
	ErrMissingInput:                 "ErrMissingInput",
	ErrConflict:                     "ErrConflict",
	ErrProofVerificationFailed:      "ErrProofVerificationFailed",
	ErrSidechainCreationDuplicate:   "ErrSidechainCreationDuplicate",
	ErrCertificateBwtSplitInvalid:   "ErrCertificateBwtSplitInvalid",
}

func (e ErrorCode) String() string {
	if s, ok := errorCodeStrings[e]; ok {
		return s
	}
	return fmt.Sprintf("ErrorCode(%d)", int(e))
}

// RuleError pairs an ErrorCode with a human-readable description,
// replacing the exception-based validation flow of the original
// implementation (spec.md §9 Design Notes).
type RuleError struct {
	ErrorCode   ErrorCode
	Description string
}

func (e RuleError) Error() string {
	return e.Description
}

func ruleError(c ErrorCode, desc string) RuleError {
	return RuleError{ErrorCode: c, Description: desc}
}

// IsErrorCode returns whether err is a RuleError carrying the given code.
func IsErrorCode(err error, c ErrorCode) bool {
	var ruleErr RuleError
	if errors.As(err, &ruleErr) {
		return ruleErr.ErrorCode == c
	}
	return false
}
