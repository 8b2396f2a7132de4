// Copyright (c) 2018-2021 The Horizen developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sidechain

import "github.com/scnode/scnode/blockchain/coinview"

// ValidateCertificateEpoch checks a certificate's referenced epoch against
// the sidechain's history. A non-ceasing sidechain's epochs must strictly
// increase. A ceasing sidechain's first certificate must reference epoch
// zero; a later one must reference either the last certified epoch again
// (ValidateCertificateQuality then decides whether it supersedes the
// current top) or exactly the next epoch.
func ValidateCertificateEpoch(sc *coinview.SidechainRecord, epoch uint32) error {
	if sc == nil {
		return ruleError(ErrSidechainUnknown, "certificate targets an unknown sidechain")
	}
	if sc.State == coinview.SidechainCeased {
		return ruleError(ErrSidechainCeased, "certificate targets a ceased sidechain")
	}
	lastEpoch, hasPrior := lastCertifiedEpoch(sc)
	if sc.IsNonCeasing() {
		if hasPrior && epoch <= lastEpoch {
			return ruleError(ErrCertEpochInvalid, "non-ceasing sidechain certificate epoch must strictly increase")
		}
		return nil
	}
	if hasPrior && epoch != lastEpoch && epoch != lastEpoch+1 {
		return ruleError(ErrCertEpochInvalid, "ceasing sidechain certificate must reference the last certified epoch or the next one")
	}
	if !hasPrior && epoch != 0 {
		return ruleError(ErrCertEpochInvalid, "sidechain's first certificate must reference epoch zero")
	}
	return nil
}

// lastCertifiedEpoch returns the highest epoch number with a recorded
// top-quality certificate, if any.
func lastCertifiedEpoch(sc *coinview.SidechainRecord) (epoch uint32, ok bool) {
	for e := range sc.TopCertByEpoch {
		if !ok || e > epoch {
			epoch, ok = e, true
		}
	}
	return epoch, ok
}

// ValidateCertificateQuality enforces spec.md §4.2's ordering tie-break:
// "strictly higher quality wins" within an (scid, epoch) slot. A
// certificate with quality no higher than the current top for its epoch is
// rejected outright (it is the mempool's job, not this function's, to keep
// it around as a non-winning entry for wallet-visibility purposes).
func ValidateCertificateQuality(sc *coinview.SidechainRecord, epoch uint32, quality uint64) error {
	if current, ok := sc.TopCertByEpoch[epoch]; ok && quality <= current.Quality {
		return ruleError(ErrCertQualityNotHigher, "certificate quality does not exceed the current top quality for its epoch")
	}
	return nil
}

// ValidateCertificateReferencedHeight enforces the non-ceasing-sidechain
// monotonicity rule of spec.md §4.2: "two consecutive certificates for
// such a sidechain must have strictly increasing referenced heights".
func ValidateCertificateReferencedHeight(sc *coinview.SidechainRecord, referencedHeight int64) error {
	if !sc.IsNonCeasing() {
		return nil
	}
	if referencedHeight <= sc.LastReferencedHeight {
		return ruleError(ErrCertReferencedHeightNotIncreasing,
			"non-ceasing sidechain certificate's referenced height does not strictly increase")
	}
	return nil
}

// ResolveReferencedHeight looks up the mainchain height an
// end-epoch-cumulative-commitment root refers to, required for non-ceasing
// sidechains (spec.md §4.2: "must resolve to a mainchain height in the
// block-index map").
func ResolveReferencedHeight(resolver HeightResolver, root [32]byte) (int64, error) {
	height, ok := resolver.HeightForCumulativeRoot(root)
	if !ok {
		return 0, ruleError(ErrCertReferencedHeightUnknown,
			"certificate's end-epoch cumulative commitment root does not resolve to a known mainchain height")
	}
	return height, nil
}

// ApplyCertificate folds a newly-confirmed top-quality certificate into
// the sidechain record, per spec.md §4.2 "Certificate (top quality for its
// epoch)". bwtTotal is the certificate's total backward-transfer value;
// referencedHeight is only meaningful for non-ceasing sidechains (pass 0
// for ceasing ones, where it is unused).
func ApplyCertificate(sc *coinview.SidechainRecord, epoch uint32, quality uint64, certHash [32]byte, bwtTotal, certHeight, referencedHeight int64) *coinview.SidechainRecord {
	updated := sc.Clone()
	updated.Balance -= bwtTotal
	updated.TopCertByEpoch[epoch] = coinview.CertTableEntry{Epoch: epoch, Quality: quality, Hash: certHash}

	if updated.IsNonCeasing() {
		updated.LastReferencedHeight = referencedHeight
		return updated
	}

	// Ceasing sidechain: reschedule the cease event per spec.md §4.2
	// "reschedule the cease event to h + withdrawal_epoch_length past the
	// certificate's referenced epoch end".
	updated.CeaseHeight = certHeight + int64(updated.WithdrawalEpochLength)
	return updated
}

// ApplyLowQualityCertificate records a certificate that was admissible but
// did not win its epoch's quality slot: per spec.md §4.2, it "does not
// move balance; superseded by any higher-quality certificate included
// later." The sidechain record is returned unchanged; this function exists
// to make that a documented no-op rather than an implicit omission at call
// sites.
func ApplyLowQualityCertificate(sc *coinview.SidechainRecord) *coinview.SidechainRecord {
	return sc
}

// UndoCertificate reverses ApplyCertificate during a disconnect. previous
// is the TopCertByEpoch entry (if any) that held the epoch slot before the
// certificate being undone, and previousCeaseHeight/previousReferencedHeight
// are the fields' pre-application values, all captured in the block's undo
// record at connect time (spec.md §4.5 "undo records").
func UndoCertificate(sc *coinview.SidechainRecord, epoch uint32, bwtTotal int64, previous *coinview.CertTableEntry, previousCeaseHeight, previousReferencedHeight int64) *coinview.SidechainRecord {
	updated := sc.Clone()
	updated.Balance += bwtTotal
	if previous != nil {
		updated.TopCertByEpoch[epoch] = *previous
	} else {
		delete(updated.TopCertByEpoch, epoch)
	}
	if updated.IsNonCeasing() {
		updated.LastReferencedHeight = previousReferencedHeight
	} else {
		updated.CeaseHeight = previousCeaseHeight
	}
	return updated
}
