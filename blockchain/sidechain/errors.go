// Copyright (c) 2018-2021 The Horizen developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package sidechain implements the sidechain registry and state machine of
// spec.md §4.2: per-scid records, the ALIVE/CEASED lifecycle, epoch and
// quality rules for certificates, forward-transfer/mbtr fee floors, and
// ceased-sidechain-withdrawal accounting. Its functions take the affected
// *coinview.SidechainRecord directly and return the updated record;
// reading and writing the coin view is left to the caller. It follows the
// same "no exceptions, explicit RuleError"
// discipline as package blockchain.
package sidechain

import (
	"errors"
	"fmt"
)

// ErrorCode identifies which sidechain consensus rule a transition
// violated, scoped to this package the same way blockchain.ErrorCode is
// scoped to block/tx-level rules — each package in this module owns its
// own error-code space rather than sharing one global enum.
type ErrorCode int

const (
	ErrSidechainUnknown ErrorCode = iota
	ErrSidechainAlreadyExists
	ErrSidechainCeased
	ErrInvalidWithdrawalEpochLength
	ErrInvalidVerificationKey
	ErrInvalidCustomFieldConfig
	ErrNegativeFee
	ErrCertEpochInvalid
	ErrCertQualityNotHigher
	ErrCertReferencedHeightUnknown
	ErrCertReferencedHeightNotIncreasing
	ErrCertProofInvalid
	ErrCertFeeBelowFloor
	ErrForwardTransferFeeBelowFloor
	ErrForwardTransferSidechainNotAlive
	ErrBwtRequestFeeBelowFloor
	ErrBwtRequestDataLengthMismatch
	ErrCswSidechainNotCeased
	ErrCswNullifierAlreadySpent
	ErrCswAboveSidechainBalance
	ErrCswTooManyInMempool
	ErrCswProofInvalid
)

var errorCodeStrings = map[ErrorCode]string{
	ErrSidechainUnknown:                  "ErrSidechainUnknown",
	ErrSidechainAlreadyExists:            "ErrSidechainAlreadyExists",
	ErrSidechainCeased:                   "ErrSidechainCeased",
	ErrInvalidWithdrawalEpochLength:      "ErrInvalidWithdrawalEpochLength",
	ErrInvalidVerificationKey:            "ErrInvalidVerificationKey",
	ErrInvalidCustomFieldConfig:          "ErrInvalidCustomFieldConfig",
	ErrNegativeFee:                       "ErrNegativeFee",
	ErrCertEpochInvalid:                  "ErrCertEpochInvalid",
	ErrCertQualityNotHigher:              "ErrCertQualityNotHigher",
	ErrCertReferencedHeightUnknown:       "ErrCertReferencedHeightUnknown",
	ErrCertReferencedHeightNotIncreasing: "ErrCertReferencedHeightNotIncreasing",
	ErrCertProofInvalid:                  "ErrCertProofInvalid",
	ErrCertFeeBelowFloor:                 "ErrCertFeeBelowFloor",
	ErrForwardTransferFeeBelowFloor:      "ErrForwardTransferFeeBelowFloor",
	ErrForwardTransferSidechainNotAlive:  "ErrForwardTransferSidechainNotAlive",
	ErrBwtRequestFeeBelowFloor:           "ErrBwtRequestFeeBelowFloor",
	ErrBwtRequestDataLengthMismatch:      "ErrBwtRequestDataLengthMismatch",
	ErrCswSidechainNotCeased:             "ErrCswSidechainNotCeased",
	ErrCswNullifierAlreadySpent:          "ErrCswNullifierAlreadySpent",
	ErrCswAboveSidechainBalance:          "ErrCswAboveSidechainBalance",
	ErrCswTooManyInMempool:               "ErrCswTooManyInMempool",
	ErrCswProofInvalid:                   "ErrCswProofInvalid",
}

func (e ErrorCode) String() string {
	if s, ok := errorCodeStrings[e]; ok {
		return s
	}
	return fmt.Sprintf("ErrorCode(%d)", int(e))
}

// RuleError reports a sidechain consensus rule violation. It mirrors
// blockchain.RuleError's shape so the root package's stage-6 dispatch
// (spec.md §4.4) can wrap it uniformly, without this package importing
// blockchain and creating an import cycle.
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
