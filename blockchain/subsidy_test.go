// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2013-2015 The btcsuite developers
// Copyright (c) 2015-2018 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/scnode/scnode/chaincfg"
)

func TestCalcBlockSubsidyHalves(t *testing.T) {
	params := chaincfg.MainNetParams()

	first := CalcBlockSubsidy(0, params)
	if first != params.BaseSubsidy {
		t.Fatalf("expected base subsidy at height 0, got %d", first)
	}

	afterOneHalving := CalcBlockSubsidy(params.SubsidyReductionInterval, params)
	if afterOneHalving != params.BaseSubsidy/2 {
		t.Fatalf("expected halved subsidy at first reduction interval, got %d", afterOneHalving)
	}

	afterManyHalvings := CalcBlockSubsidy(params.SubsidyReductionInterval*64, params)
	if afterManyHalvings != 0 {
		t.Fatalf("expected subsidy to bottom out at zero, got %d", afterManyHalvings)
	}
}

func TestCalcCoinbaseValue(t *testing.T) {
	params := chaincfg.MainNetParams()
	value := CalcCoinbaseValue(0, 500, params)
	if value != params.BaseSubsidy+500 {
		t.Fatalf("expected subsidy plus fees, got %d", value)
	}
}
