// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a pool-level (rather than consensus-level) rule
// violation: these are admission failures specific to being one object
// among many in a shared pool (duplication, conflicts, resource caps)
// rather than failures of the object's own well-formedness, which live in
// blockchain/validation's ErrorCode space instead. Giving mempool its own
// space keeps it independent of blockchain/validation's numbering, the
// same convention blockchain/sidechain and blockchain/validation already
// follow relative to each other.
type ErrorCode int

const (
	ErrAlreadyInPool ErrorCode = iota
	ErrDoubleSpend
	ErrNullifierConflict
	ErrCswNullifierConflict
	ErrCswCapExceeded
	ErrCertificateNotHigherQuality
	ErrOrphan
)

var errorCodeStrings = map[ErrorCode]string{
	ErrAlreadyInPool:               "ErrAlreadyInPool",
	ErrDoubleSpend:                 "ErrDoubleSpend",
	ErrNullifierConflict:           "ErrNullifierConflict",
	ErrCswNullifierConflict:        "ErrCswNullifierConflict",
	ErrCswCapExceeded:              "ErrCswCapExceeded",
	ErrCertificateNotHigherQuality: "ErrCertificateNotHigherQuality",
	ErrOrphan:                      "ErrOrphan",
}

func (e ErrorCode) String() string {
	if s, ok := errorCodeStrings[e]; ok {
		return s
	}
	return fmt.Sprintf("ErrorCode(%d)", int(e))
}

// RuleError pairs an ErrorCode with a human-readable description.
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
