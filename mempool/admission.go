// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"github.com/scnode/scnode/blockchain/coinview"
	"github.com/scnode/scnode/blockchain/sidechain"
	"github.com/scnode/scnode/blockchain/validation"
	"github.com/scnode/scnode/chainhash"
	"github.com/scnode/scnode/scutil"
	"github.com/scnode/scnode/wire"
)

// view composes the confirmed chain's coin view with this pool's own
// pending state, implementing spec.md §4.1's "mempool overlay" so
// admission sees outputs and sidechain adjustments an already-accepted,
// still-unconfirmed object produced. Callers must already hold mp.mtx:
// view feeds coinview.NewMempoolView a lockedFeed, which reaches into
// this pool's maps directly rather than through the self-locking
// exported Feed methods, since mp.mtx is not reentrant.
func (mp *TxPool) view() coinview.Source {
	return coinview.NewMempoolView(mp.cfg.Chain.View(), lockedFeed{mp})
}

// MaybeAcceptEntry runs spec.md §4.4's pipeline against tx and, on
// success, commits it via add_unchecked (stage 9), returning the
// validation.State the caller relays to its own collaborators (wallet
// notification, P2P INV). A non-Valid State never panics and never
// leaves the pool mutated.
func (mp *TxPool) MaybeAcceptEntry(tx *wire.MsgTx) validation.State {
	params := mp.cfg.Chain.Params()
	hash := tx.TxHash()

	// Stage 1: context-free checks.
	if err := validation.CheckTransactionSanity(tx, params); err != nil {
		return stateFromRuleError(err)
	}

	// Stage 2: standardness, policy-gated.
	if mp.cfg.Policy.RequireStandard {
		if err := validation.CheckStandardness(tx, params); err != nil {
			return stateFromRuleError(err)
		}
	}

	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	if _, already := mp.txs[hash]; already {
		return validation.InvalidState(ruleErrorAsValidation(ruleError(ErrAlreadyInPool, "transaction is already in the pool")), validation.RejectDuplicate, 0)
	}

	// Stage 3: mempool conflict rejection.
	if err := mp.checkConflictsLocked(tx); err != nil {
		return stateFromPoolError(err)
	}

	view := mp.view()
	tipHeight := mp.cfg.Chain.BestHeight()
	spendHeight := tipHeight + 1

	// Stage 4: coin view availability + maturity, also yields the fee.
	fee, err := validation.CheckTxInputs(tx, view, spendHeight, params)
	if err != nil {
		return stateFromRuleError(err)
	}

	// Stage 5: script verification.
	if err := validation.CheckTransactionScripts(tx, view, mp.cfg.Chain.SigCache(), mp.cfg.Chain.BlockAtHeight, int32(tipHeight), mp.cfg.Policy.DeepHistoryWindow); err != nil {
		return stateFromRuleError(err)
	}

	// Stage 6: shielded and sidechain contextual checks.
	if tx.HasShieldedData() {
		if err := validation.CheckShieldedContext(tx, view); err != nil {
			return stateFromRuleError(err)
		}
	}
	if tx.HasSidechainData() {
		if err := validation.CheckSidechainContext(tx, view); err != nil {
			return stateFromRuleError(err)
		}
		if err := mp.checkCswCapLocked(tx); err != nil {
			return stateFromPoolError(err)
		}
		// Give the claimed csw slots back if a later stage rejects tx.
		defer func() {
			if _, added := mp.txs[hash]; !added {
				for _, csw := range tx.CswInputs {
					mp.cswCap.Release(csw.Scid, csw.Nullifier)
				}
			}
		}()
	}

	// Stage 7: fee gating.
	serialized, err := tx.Serialize()
	if err != nil {
		return validation.ErrorState(err.Error())
	}
	if err := validation.CheckFeeRate(fee, len(serialized), params, mp.cfg.Policy.AllowFree, mp.cfg.Policy.RejectAbsurdFee); err != nil {
		return stateFromRuleError(err)
	}

	// Stage 8: proof verification (joinsplits; sidechain creations/mbtr
	// carry no proof of their own, csw inputs are proof-checked once
	// their sidechain exists via AcceptCsw through certificate/cease
	// processing at connect time, matching spec.md's stage-8 scope of
	// "proofs carried by certificates and csw inputs").
	verifier, mode := mp.cfg.Chain.ProofVerifier()
	if tx.HasShieldedData() {
		if err := validation.CheckJoinSplitProofs(verifier, tx, mode); err != nil {
			return stateFromRuleError(err)
		}
	}

	// Stage 9: commit.
	mp.addUncheckedLocked(tx, hash, fee, len(serialized), spendHeight)
	log.Debugf("Accepted transaction %s (%d bytes, fee %d)", hash, len(serialized), fee)
	return validation.ValidState()
}

// AcceptCertificate is MaybeAcceptEntry's counterpart for a certificate,
// running the certificate half of spec.md §4.4 stage 6 plus its own
// quality-ranking invariant (§4.3).
func (mp *TxPool) AcceptCertificate(cert *wire.MsgCert) validation.State {
	if err := validation.CheckCertificateSanity(cert); err != nil {
		return stateFromRuleError(err)
	}

	hash := cert.CertHash()

	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	if _, already := mp.certs[hash]; already {
		return validation.InvalidState(ruleErrorAsValidation(ruleError(ErrAlreadyInPool, "certificate is already in the pool")), validation.RejectDuplicate, 0)
	}

	view := mp.view()
	sc, ok := view.GetSidechain(cert.Scid)
	if !ok {
		return validation.InvalidState(ruleErrorAsValidation(ruleError(ErrOrphan, "certificate targets an unknown sidechain")), validation.RejectSidechainNotFound, 0)
	}

	if err := validation.CheckCertificateContext(cert, sc, mp.cfg.Chain); err != nil {
		return stateFromRuleError(err)
	}

	verifier, mode := mp.cfg.Chain.ProofVerifier()
	if err := validation.CheckCertificateProof(verifier, cert, sc, mode); err != nil {
		return stateFromRuleError(err)
	}

	entry := mp.scidEntryLocked(cert.Scid)
	entry.Certs.Insert(cert.EpochNumber, hash, cert.Quality)

	mp.sequence++
	mp.certs[hash] = &CertDesc{
		Cert:         cert,
		Hash:         hash,
		Time:         now(),
		Height:       mp.cfg.Chain.BestHeight(),
		Sequence:     mp.sequence,
		IsTopQuality: entry.Certs.IsTopQuality(cert.EpochNumber, hash),
	}
	log.Debugf("Accepted certificate %s for scid %s epoch %d quality %d", hash, cert.Scid, cert.EpochNumber, cert.Quality)
	return validation.ValidState()
}

// checkConflictsLocked runs spec.md §4.3's conflict rejection: a
// transaction whose inputs, shielded nullifiers, or csw nullifiers
// collide with an already-pending object is rejected outright (the
// mempool never holds two spends of the same resource, unlike a
// replace-by-fee policy).
func (mp *TxPool) checkConflictsLocked(tx *wire.MsgTx) error {
	for _, in := range tx.TxIn {
		if _, conflict := mp.byOutpointSpent[in.PreviousOutPoint]; conflict {
			return ruleError(ErrDoubleSpend, "transaction conflicts with a pending transaction spending the same output")
		}
	}
	for _, js := range tx.JoinSplits {
		for _, nf := range js.Nullifiers {
			if _, conflict := mp.byShieldedNullifier[nf]; conflict {
				return ruleError(ErrNullifierConflict, "transaction conflicts with a pending transaction spending the same shielded nullifier")
			}
		}
	}
	for _, csw := range tx.CswInputs {
		entry := mp.byScid[csw.Scid]
		if entry != nil {
			if _, conflict := entry.CswByNullifier[csw.Nullifier]; conflict {
				return ruleError(ErrCswNullifierConflict, "transaction conflicts with a pending csw spending the same nullifier")
			}
		}
	}
	return nil
}

// checkCswCapLocked enforces spec.md §4.3's per-sidechain CSW cap against
// this transaction's csw inputs before admission commits any of them.
func (mp *TxPool) checkCswCapLocked(tx *wire.MsgTx) error {
	claimed := make([]*wire.CswInput, 0, len(tx.CswInputs))
	for _, csw := range tx.CswInputs {
		if mp.cswCap.Full(csw.Scid) {
			for _, c := range claimed {
				mp.cswCap.Release(c.Scid, c.Nullifier)
			}
			return ruleError(ErrCswCapExceeded, "sidechain already has the maximum number of pending csw inputs in the mempool")
		}
		mp.cswCap.Claim(csw.Scid, csw.Nullifier)
		claimed = append(claimed, csw)
	}
	return nil
}

// addUncheckedLocked installs tx and updates every derived index,
// matching spec.md §4.3's add_unchecked contract. Callers must already
// hold mp.mtx and must have already run the full pipeline.
func (mp *TxPool) addUncheckedLocked(tx *wire.MsgTx, hash chainhash.Hash, fee scutil.Amount, size int, spendHeight int64) {
	mp.sequence++
	mp.txs[hash] = &TxDesc{
		Tx:       tx,
		Hash:     hash,
		Fee:      fee,
		Size:     size,
		Time:     now(),
		Height:   spendHeight,
		Sequence: mp.sequence,
	}

	for _, in := range tx.TxIn {
		mp.byOutpointSpent[in.PreviousOutPoint] = hash
	}
	for _, js := range tx.JoinSplits {
		for _, nf := range js.Nullifiers {
			mp.byShieldedNullifier[nf] = hash
		}
	}

	for i := range tx.SidechainCreations {
		scid := sidechain.ComputeScid(hash, uint32(i))
		mp.scidEntryLocked(scid).Creation = hash
	}
	for _, ft := range tx.ForwardTransfers {
		mp.scidEntryLocked(ft.Scid).ForwardTransfers[hash] = true
	}
	for _, req := range tx.BwtRequests {
		mp.scidEntryLocked(req.Scid).BwtRequests[hash] = true
	}
	for _, csw := range tx.CswInputs {
		entry := mp.scidEntryLocked(csw.Scid)
		entry.CswByNullifier[csw.Nullifier] = hash
		entry.CswTotal += csw.Amount
	}
}

func stateFromRuleError(err error) validation.State {
	var ruleErr validation.RuleError
	if as, ok := err.(validation.RuleError); ok {
		ruleErr = as
		return validation.InvalidState(ruleErr, rejectCodeFor(ruleErr.ErrorCode), 0)
	}
	return validation.ErrorState(err.Error())
}

func stateFromPoolError(err error) validation.State {
	if as, ok := err.(RuleError); ok {
		return validation.InvalidState(ruleErrorAsValidation(as), validation.RejectHasConflicts, 0)
	}
	return validation.ErrorState(err.Error())
}

// ruleErrorAsValidation adapts a mempool.RuleError into a
// validation.RuleError so it can flow through validation.InvalidState
// without validation importing mempool (which would cycle back through
// coinview.Feed).
func ruleErrorAsValidation(err RuleError) validation.RuleError {
	return validation.RuleError{Description: err.Description}
}

func rejectCodeFor(code validation.ErrorCode) validation.RejectCode {
	switch code {
	case validation.ErrFeeTooLow:
		return validation.RejectInsufficientFee
	case validation.ErrAbsurdlyHighFee:
		return validation.RejectAbsurdlyHighFee
	case validation.ErrCheckBlockAtHeightFailed:
		return validation.RejectCheckBlockAtHeight
	case validation.ErrSidechainCreationDuplicate:
		return validation.RejectSidechainNotFound
	case validation.ErrProofVerificationFailed:
		return validation.RejectProofVerification
	case validation.ErrNonStandard:
		return validation.RejectNonStandard
	case validation.ErrDuplicateTx:
		return validation.RejectDuplicate
	default:
		return validation.RejectInvalid
	}
}
