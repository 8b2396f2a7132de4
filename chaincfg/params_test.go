// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import "testing"

func TestMainNetParamsSane(t *testing.T) {
	p := MainNetParams()
	if p.CoinbaseMaturity == 0 {
		t.Fatalf("expected non-zero coinbase maturity")
	}
	if p.MinSidechainWithdrawalEpochLength == 0 {
		t.Fatalf("expected non-zero minimum withdrawal epoch length")
	}
	if p.MaxSidechainWithdrawalEpochLength <= p.MinSidechainWithdrawalEpochLength {
		t.Fatalf("max epoch length must exceed min")
	}
	if p.GenesisBlock == nil {
		t.Fatalf("expected genesis block")
	}
}

func TestRegNetParamsFastMaturity(t *testing.T) {
	reg := RegNetParams()
	main := MainNetParams()
	if reg.CoinbaseMaturity >= main.CoinbaseMaturity {
		t.Fatalf("regtest maturity should be far shorter than mainnet")
	}
}
