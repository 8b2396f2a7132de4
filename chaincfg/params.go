// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"math/big"

	"github.com/scnode/scnode/chainhash"
	"github.com/scnode/scnode/wire"
)

var bigOne = big.NewInt(1)

// Checkpoint identifies a known good point in the block chain. Nothing in
// this module reads Params.Checkpoints: reorganization depth is not limited
// by it, and there is no initial-block-download logic that consults it.
type Checkpoint struct {
	Height int64
	Hash   *chainhash.Hash
}

// Params defines the network parameters for a specific instance of the
// chain. Exactly one of MainNetParams or RegNetParams should be active
// at a time.
type Params struct {
	Name        string
	Net         wire.CurrencyNet
	DefaultPort string

	// Equihash parameters.
	EquihashN uint32
	EquihashK uint32

	// Genesis block.
	GenesisBlock *wire.MsgBlock

	// Proof of work parameters.
	PowLimit                 *big.Int
	PowLimitBits             uint32
	ReduceMinDifficulty      bool
	MinDiffReductionTime     int64
	TargetTimePerBlock       int64
	WorkDiffWindowSize       int64
	WorkDiffWindows          int64
	RetargetAdjustmentFactor int64

	// MaximumBlockSize and MaxTxSize bound the context-free size checks of
	// spec.md §4.4 stage 1 / §4.5 step 3a.
	MaximumBlockSize int
	MaxTxSize        int

	// Subsidy parameters (spec.md §8 "Ledger conservation").
	BaseSubsidy              int64
	MulSubsidy               int64
	DivSubsidy               int64
	SubsidyReductionInterval int64

	// CoinbaseMaturity is the number of blocks required before a coinbase
	// output may be spent (spec.md §3 coin record invariant).
	CoinbaseMaturity uint32

	// Coin maturity is the number of confirmations before an immature
	// forward-transfer credit becomes spendable sidechain balance
	// (spec.md §4.2 "Forward transfer").
	CoinMaturity uint32

	// Sidechain epoch-length bounds (spec.md §4.4 stage 6 "epoch length in
	// valid range").
	MinSidechainWithdrawalEpochLength uint32
	MaxSidechainWithdrawalEpochLength uint32

	// MaxCswInputsPerSidechainInMempool is SC_MAX_NUM_OF_CSW_INPUTS_IN_MEMPOOL
	// of spec.md §4.3.
	MaxCswInputsPerSidechainInMempool int

	// ReplayProtectionDeepHistoryWindow is the height-delta below which
	// OP_CHECKBLOCKATHEIGHT always succeeds without matching the referenced
	// block hash (spec.md §6 "Replay-protection opcode"). Matches the
	// literal constant named in spec.md §4.4 stage 2.
	ReplayProtectionDeepHistoryWindow int64

	// Checkpoints, ordered from oldest to newest.
	Checkpoints []Checkpoint

	// RelayNonStdTxs mirrors the policy flag gating spec.md §4.4 stage 2
	// "Standardness".
	RelayNonStdTxs bool

	// MinRelayTxFee is the fee rate, in zatoshi per byte, below which an
	// unconfirmed transaction is rejected unless limit-free relay applies
	// (spec.md §4.4 stage 7).
	MinRelayTxFee int64

	// PubKeyHashAddrID and ScriptHashAddrID are the base58check version
	// bytes prepended to a hash160 before encoding a pay-to-pubkey-hash
	// or pay-to-script-hash address for this network, per the standard
	// script templates the txscript package recognizes.
	PubKeyHashAddrID byte
	ScriptHashAddrID byte

	// PrivateKeyID is the base58check version byte used when WIF-encoding
	// a private key for this network.
	PrivateKeyID byte
}

// CalcWorkDiffWindow returns the number of blocks in one complete work
// difficulty window.
func (p *Params) CalcWorkDiffWindow() int64 {
	return p.WorkDiffWindowSize * p.WorkDiffWindows
}

// TotalSubsidyProportions returns 1, used as the denominator when this
// core splits the subsidy; no stake/vote proportion exists in this chain
// (unlike the teacher's Decred-specific ticket/vote reward split).
func (p *Params) TotalSubsidyProportions() int64 {
	return 1
}
