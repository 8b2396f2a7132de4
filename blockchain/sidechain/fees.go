// Copyright (c) 2018-2021 The Horizen developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sidechain

import "github.com/scnode/scnode/blockchain/coinview"

// ScFeeCheck validates amount against a sidechain's *current* fee floor
// for the given kind, per SPEC_FULL.md §3's supplemented feature: "mbtr /
// ft scFeeCheck against the sidechain's current minimum fee, not just its
// creation-time default — sidechains can only raise their own mbtr/ft fee
// floor via certificate parameters."
func ScFeeCheck(sc *coinview.SidechainRecord, kind FeeKind, amount int64) error {
	floor := currentFloor(sc, kind)
	if amount < floor {
		switch kind {
		case ForwardTransferFee:
			return ruleError(ErrForwardTransferFeeBelowFloor, "forward transfer amount is below the sidechain's current fee floor")
		default:
			return ruleError(ErrBwtRequestFeeBelowFloor, "mbtr fee is below the sidechain's current fee floor")
		}
	}
	return nil
}

// FeeKind distinguishes which of a sidechain's two fee floors a check
// applies to.
type FeeKind int

const (
	ForwardTransferFee FeeKind = iota
	BwtRequestFee
)

func currentFloor(sc *coinview.SidechainRecord, kind FeeKind) int64 {
	if kind == ForwardTransferFee {
		return sc.CurrentForwardTransferMinFee
	}
	return sc.CurrentBwtRequestMinFee
}

// RaiseFeeFloors applies a certificate's fee-floor parameters to the
// sidechain record. A certificate may only raise a floor, never lower it
// — the mainchain has no mechanism for a sidechain to cut its own fees
// below what mempool-resident unconfirmed transactions already assumed.
func RaiseFeeFloors(sc *coinview.SidechainRecord, newForwardTransferFee, newBwtRequestFee int64) *coinview.SidechainRecord {
	updated := sc.Clone()
	if newForwardTransferFee > updated.CurrentForwardTransferMinFee {
		updated.CurrentForwardTransferMinFee = newForwardTransferFee
	}
	if newBwtRequestFee > updated.CurrentBwtRequestMinFee {
		updated.CurrentBwtRequestMinFee = newBwtRequestFee
	}
	return updated
}
