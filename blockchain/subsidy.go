// Copyright (c) 2013-2015 The btcsuite developers
// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "github.com/scnode/scnode/chaincfg"

// CalcBlockSubsidy returns the proof-of-work block subsidy for the block at
// the given height, halving every SubsidyReductionInterval blocks per
// spec.md §3 "coinbase" until it bottoms out at zero.
func CalcBlockSubsidy(height int64, params *chaincfg.Params) int64 {
	if params.SubsidyReductionInterval <= 0 {
		return params.BaseSubsidy
	}

	reductions := height / params.SubsidyReductionInterval
	if reductions >= 64 {
		return 0
	}

	subsidy := params.BaseSubsidy
	for i := int64(0); i < reductions; i++ {
		subsidy *= params.MulSubsidy
		subsidy /= params.DivSubsidy
		if subsidy == 0 {
			break
		}
	}
	return subsidy
}

// CalcCoinbaseValue returns the maximum value a coinbase output for the
// block at the given height is permitted to claim: the block subsidy plus
// the accumulated transaction fees pooled during admission/connect, per
// spec.md §4.5 "coinbase value check".
func CalcCoinbaseValue(height int64, totalFees int64, params *chaincfg.Params) int64 {
	return CalcBlockSubsidy(height, params) + totalFees
}
