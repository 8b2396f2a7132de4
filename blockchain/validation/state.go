// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package validation

// Verdict is the three-valued outcome spec.md §7 requires every
// validation call to carry: VALID, INVALID (a consensus verdict), or
// ERROR (an operational failure that implies nothing about peer
// misbehavior).
type Verdict int

const (
	Valid Verdict = iota
	Invalid
	Error
)

func (v Verdict) String() string {
	switch v {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// RejectCode is the wire-visible reject reason of spec.md §6.
type RejectCode uint8

const (
	RejectMalformed           RejectCode = 0x01
	RejectInvalid             RejectCode = 0x10
	RejectObsolete            RejectCode = 0x11
	RejectDuplicate           RejectCode = 0x12
	RejectNonStandard         RejectCode = 0x40
	RejectInsufficientFee     RejectCode = 0x42
	RejectCheckBlockAtHeight  RejectCode = 0x44
	RejectSidechainNotFound   RejectCode = 0x45
	RejectInsufficientScFunds RejectCode = 0x46
	RejectAbsurdlyHighFee     RejectCode = 0x47
	RejectHasConflicts        RejectCode = 0x48
	RejectNoCoinsForInput     RejectCode = 0x49
	RejectProofVerification   RejectCode = 0x4a
	RejectScCommTreeMismatch  RejectCode = 0x4b
	RejectActiveCertDataHash  RejectCode = 0x4c
)

// State is the rich result spec.md §7 requires from every validation
// call: a verdict, a DoS score in [0, 100], a reject code, a short
// human-readable reason, and whether the failure may indicate the
// reporting peer is simply desynchronized rather than malicious
// ("corruption possible" in the original implementation's terms — kept
// here as CorruptionPossible to describe the same caller-facing signal
// without reusing the original's phrase for the field name).
type State struct {
	Verdict            Verdict
	DoSScore           int
	RejectCode         RejectCode
	Reason             string
	CorruptionPossible bool
}

// IsValid reports whether s represents a valid, accepted object.
func (s State) IsValid() bool {
	return s.Verdict == Valid
}

// ValidState returns the canonical accepted State.
func ValidState() State {
	return State{Verdict: Valid}
}

// InvalidState builds an INVALID State from a RuleError and a DoS score.
func InvalidState(err RuleError, reject RejectCode, dos int) State {
	return State{
		Verdict:    Invalid,
		DoSScore:   dos,
		RejectCode: reject,
		Reason:     err.Description,
	}
}

// ErrorState builds an ERROR State for an operational failure: it never
// contributes to a peer's ban score.
func ErrorState(reason string) State {
	return State{Verdict: Error, Reason: reason}
}

// MissingInputState is the admission-only outcome routing the caller to
// the orphan pool, per spec.md §7's propagation policy: "connect-block
// never returns missing-input ... only VALID or INVALID".
func MissingInputState() State {
	return State{Verdict: Invalid, RejectCode: RejectNoCoinsForInput, Reason: "missing input"}
}
