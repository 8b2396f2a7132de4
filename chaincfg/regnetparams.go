// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"math/big"
	"time"

	"github.com/decred/dcrd/blockchain/standalone/v2"

	"github.com/scnode/scnode/chainhash"
	"github.com/scnode/scnode/wire"
)

// RegNetParams returns the network parameters for the regression test
// network. It uses trivial proof of work and short maturities so the
// block-connect and sidechain state-machine scenarios of spec.md §8 can be
// driven quickly in tests.
func RegNetParams() *Params {
	regNetPowLimit := new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)

	genesisBlock := wire.MsgBlock{
		Header: wire.BlockHeader{
			Version:   1,
			PrevBlock: chainhash.Hash{},
			Timestamp: time.Unix(1296688602, 0),
			Bits:      standalone.BigToCompact(regNetPowLimit),
		},
	}

	return &Params{
		Name:        "regtest",
		Net:         wire.RegNet,
		DefaultPort: "19033",

		EquihashN: 48,
		EquihashK: 5,

		GenesisBlock: &genesisBlock,

		PowLimit:                 regNetPowLimit,
		PowLimitBits:             standalone.BigToCompact(regNetPowLimit),
		ReduceMinDifficulty:      true,
		MinDiffReductionTime:     int64(2 * time.Minute / time.Second),
		TargetTimePerBlock:       10,
		WorkDiffWindowSize:       8,
		WorkDiffWindows:          4,
		RetargetAdjustmentFactor: 4,

		MaximumBlockSize: 2_000_000,
		MaxTxSize:        1_000_000,

		BaseSubsidy:              int64(50 * 1e8),
		MulSubsidy:               1,
		DivSubsidy:               2,
		SubsidyReductionInterval: 150,

		CoinbaseMaturity: 2,
		CoinMaturity:     2,

		MinSidechainWithdrawalEpochLength: 2,
		MaxSidechainWithdrawalEpochLength: 4032,

		MaxCswInputsPerSidechainInMempool: 500,

		ReplayProtectionDeepHistoryWindow: 10,

		RelayNonStdTxs: true,
		MinRelayTxFee:  0,

		PubKeyHashAddrID: 0x7f,
		ScriptHashAddrID: 0x7c,
		PrivateKeyID:     0xef,
	}
}
