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

// MainNetParams returns the network parameters for the main network.
func MainNetParams() *Params {
	// mainPowLimit is the highest proof of work value a block can have on
	// the main network. It is the value 2^240 - 1.
	mainPowLimit := new(big.Int).Sub(new(big.Int).Lsh(bigOne, 240), bigOne)

	genesisBlock := wire.MsgBlock{
		Header: wire.BlockHeader{
			Version:    1,
			PrevBlock:  chainhash.Hash{},
			Timestamp:  time.Unix(1531731600, 0),
			Bits:       standalone.BigToCompact(mainPowLimit),
			Nonce:      [32]byte{},
		},
	}
	genesisBlock.Header.MerkleRoot = chainhash.Hash{}

	return &Params{
		Name:        "mainnet",
		Net:         wire.MainNet,
		DefaultPort: "9033",

		EquihashN: wire.MainEquihashN,
		EquihashK: wire.MainEquihashK,

		GenesisBlock: &genesisBlock,

		PowLimit:                 mainPowLimit,
		PowLimitBits:             standalone.BigToCompact(mainPowLimit),
		ReduceMinDifficulty:      false,
		TargetTimePerBlock:       150,
		WorkDiffWindowSize:       144,
		WorkDiffWindows:          20,
		RetargetAdjustmentFactor: 4,

		MaximumBlockSize: 2_000_000,
		MaxTxSize:        1_000_000,

		BaseSubsidy:              int64(12.5 * 1e8),
		MulSubsidy:               1,
		DivSubsidy:               2,
		SubsidyReductionInterval: 840_000,

		CoinbaseMaturity: 100,
		CoinMaturity:     100,

		MinSidechainWithdrawalEpochLength: 2,
		MaxSidechainWithdrawalEpochLength: 4032,

		MaxCswInputsPerSidechainInMempool: 500,

		ReplayProtectionDeepHistoryWindow: 52596,

		Checkpoints: []Checkpoint{},

		RelayNonStdTxs: false,
		MinRelayTxFee:  1,

		PubKeyHashAddrID: 0x21,
		ScriptHashAddrID: 0x55,
		PrivateKeyID:     0x80,
	}
}
