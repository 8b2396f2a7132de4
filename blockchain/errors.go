// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"errors"
	"fmt"

	"github.com/scnode/scnode/chainhash"
)

// ErrorCode identifies the consensus rule that a validation failure
// violated, per spec.md §7 "error taxonomy". It is carried by RuleError and
// mapped to a wire.RejectCode at the network boundary.
type ErrorCode int

// Per-transaction rule codes (malformed shape, script failure, shielded
// pool violations, sidechain-rule violations) live in
// blockchain/validation's own ErrorCode space, not here: package
// validation is driven directly by package mempool as well as by this
// package, so it cannot import blockchain to reuse this one. The codes
// below belong to this package's own block-level checks (CheckBlock,
// contextualCheckBlock and Connect). ErrDuplicateBlock, ErrInvalidTime,
// ErrUnfinalizedTx, ErrDuplicateTx and ErrForkTooDeep are defined but not
// raised anywhere in this package.
const (
	ErrMissingParent ErrorCode = iota
	ErrDuplicateBlock
	ErrBlockTooBig
	ErrBadProofOfWork
	ErrInvalidTime
	ErrTimeTooOld
	ErrTimeTooNew
	ErrDifficultyTooLow
	ErrUnexpectedDifficulty
	ErrNoTransactions
	ErrFirstTxNotCoinbase
	ErrMultipleCoinbases
	ErrBadMerkleRoot
	ErrTooManySigOps
	ErrCertificateOrderInvalid
	ErrBadCoinbaseValue
	ErrUnfinalizedTx
	ErrDuplicateTx
	ErrForkTooDeep
)

var errorCodeStrings = map[ErrorCode]string{
	ErrMissingParent:           "ErrMissingParent",
	ErrDuplicateBlock:          "ErrDuplicateBlock",
	ErrBlockTooBig:             "ErrBlockTooBig",
	ErrBadProofOfWork:          "ErrBadProofOfWork",
	ErrInvalidTime:             "ErrInvalidTime",
	ErrTimeTooOld:              "ErrTimeTooOld",
	ErrTimeTooNew:              "ErrTimeTooNew",
	ErrDifficultyTooLow:        "ErrDifficultyTooLow",
	ErrUnexpectedDifficulty:    "ErrUnexpectedDifficulty",
	ErrNoTransactions:          "ErrNoTransactions",
	ErrFirstTxNotCoinbase:      "ErrFirstTxNotCoinbase",
	ErrMultipleCoinbases:       "ErrMultipleCoinbases",
	ErrBadMerkleRoot:           "ErrBadMerkleRoot",
	ErrTooManySigOps:           "ErrTooManySigOps",
	ErrCertificateOrderInvalid: "ErrCertificateOrderInvalid",
	ErrBadCoinbaseValue:        "ErrBadCoinbaseValue",
	ErrUnfinalizedTx:           "ErrUnfinalizedTx",
	ErrDuplicateTx:             "ErrDuplicateTx",
	ErrForkTooDeep:             "ErrForkTooDeep",
}

func (e ErrorCode) String() string {
	if s, ok := errorCodeStrings[e]; ok {
		return s
	}
	return fmt.Sprintf("ErrorCode(%d)", int(e))
}

// RuleError identifies a rule violation encountered while validating a
// block, transaction, or certificate. It replaces the exception-based
// validation flow of the original implementation with an explicit,
// three-valued result: nil (valid), a RuleError value (invalid, carrying
// an ErrorCode and a description), or any other error (an internal/IO failure, per spec.md §7's
// Design Notes redesign flag).
type RuleError struct {
	ErrorCode   ErrorCode
	Description string
}

func (e RuleError) Error() string {
	return e.Description
}

// ruleError creates a RuleError given a set of arguments.
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

// unknownBlockError builds the not-found error returned when a lookup by
// hash misses the block index.
func unknownBlockError(hash *chainhash.Hash) error {
	return fmt.Errorf("block %s is not known", hash)
}
