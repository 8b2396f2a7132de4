// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"time"

	"github.com/decred/dcrd/blockchain/standalone/v2"

	"github.com/scnode/scnode/blockchain/validation"
	"github.com/scnode/scnode/chaincfg"
	"github.com/scnode/scnode/equihash"
	"github.com/scnode/scnode/txscript"
	"github.com/scnode/scnode/wire"
)

// maxBlockSigOps bounds the total signature-operation cost of a block,
// independent of CheckStandardness's per-transaction relay-policy cap,
// per spec.md §4.5 step 3a's block-level consensus budget.
const maxBlockSigOps = 20_000

// maxTimeOffset is how far into the future, relative to the validating
// node's clock, a block's timestamp may claim to be, per spec.md §4.5 step
// 3b's "time too new" rule.
const maxTimeOffset = 2 * time.Hour

// CheckBlock runs spec.md §4.5's context-free block checks: the ones that
// require only the block itself, never the active chain.
func CheckBlock(block *wire.MsgBlock, params *chaincfg.Params) error {
	if len(block.Transactions) == 0 {
		return ruleError(ErrNoTransactions, "block has no transactions")
	}
	if !block.Transactions[0].IsCoinBase() {
		return ruleError(ErrFirstTxNotCoinbase, "block's first transaction is not a coinbase")
	}
	for _, tx := range block.Transactions[1:] {
		if tx.IsCoinBase() {
			return ruleError(ErrMultipleCoinbases, "block contains more than one coinbase transaction")
		}
	}

	serialized, err := block.Serialize()
	if err != nil || len(serialized) > params.MaximumBlockSize {
		return ruleError(ErrBlockTooBig, "block exceeds the maximum allowed size")
	}

	if got, want := blockMerkleRoot(block), block.Header.MerkleRoot; got != want {
		return ruleError(ErrBadMerkleRoot, "block merkle root does not match its transactions and certificates")
	}

	if err := checkProofOfWork(&block.Header, params); err != nil {
		return err
	}

	sigOps := 0
	for _, tx := range block.Transactions {
		if err := validation.CheckTransactionSanity(tx, params); err != nil {
			return err
		}
		for _, out := range tx.TxOut {
			sigOps += txscript.GetSigOpCount(out.PkScript)
		}
		for _, in := range tx.TxIn {
			sigOps += txscript.GetSigOpCount(in.SignatureScript)
		}
	}
	if sigOps > maxBlockSigOps {
		return ruleError(ErrTooManySigOps, "block exceeds the maximum allowed signature-operation count")
	}

	for _, cert := range block.Certificates {
		if err := validation.CheckCertificateSanity(cert); err != nil {
			return err
		}
	}
	if err := checkCertificateOrdering(block.Certificates); err != nil {
		return err
	}

	return nil
}

// checkProofOfWork verifies the header's claimed difficulty bits are
// within the network's PoW limit and that its equihash solution actually
// solves the header, per spec.md §4.5 step 3a.
func checkProofOfWork(header *wire.BlockHeader, params *chaincfg.Params) error {
	target := standalone.CompactToBig(header.Bits)
	if target.Sign() <= 0 || target.Cmp(params.PowLimit) > 0 {
		return ruleError(ErrDifficultyTooLow, "block target difficulty is outside the network's proof-of-work limit")
	}

	ok, err := equihash.VerifyBlockSolution(int(params.EquihashN), int(params.EquihashK), header.PreSolutionBytes(), header.EquihashSolution)
	if err != nil || !ok {
		return ruleError(ErrBadProofOfWork, "block equihash solution does not solve its header")
	}
	return nil
}

// checkCertificateOrdering enforces spec.md §4.5's within-block certificate
// shape rule: certificates are grouped by scid in ascending order, and
// within each scid's group, ascending by (epoch, quality).
func checkCertificateOrdering(certs []*wire.MsgCert) error {
	for i := 1; i < len(certs); i++ {
		prev, cur := certs[i-1], certs[i]
		cmp := prev.Scid.Compare(cur.Scid)
		if cmp > 0 {
			return ruleError(ErrCertificateOrderInvalid, "block certificates are not grouped in ascending scid order")
		}
		if cmp < 0 {
			continue
		}
		switch {
		case cur.EpochNumber < prev.EpochNumber:
			return ruleError(ErrCertificateOrderInvalid, "block certificates for a sidechain are not ordered by ascending epoch")
		case cur.EpochNumber == prev.EpochNumber && cur.Quality <= prev.Quality:
			return ruleError(ErrCertificateOrderInvalid, "block certificates for the same sidechain epoch are not ordered by strictly ascending quality")
		}
	}
	return nil
}

// contextualCheckBlock runs spec.md §4.5's chain-dependent block checks:
// the ones requiring the parent node's position in the active chain.
//
// This function MUST be called with the chain state lock held.
func (c *ChainContext) contextualCheckBlock(parent *blockNode, block *wire.MsgBlock) error {
	if block.Header.PrevBlock != parent.hash {
		return ruleError(ErrMissingParent, "block's declared previous hash does not match the given parent")
	}

	wantBits := c.calcNextRequiredDifficulty(parent, block.Header.Timestamp)
	if block.Header.Bits != wantBits {
		return ruleError(ErrUnexpectedDifficulty, "block difficulty bits do not match the retarget rule")
	}

	medianTime, err := c.index.CalcPastMedianTime(parent)
	if err != nil {
		return err
	}
	if !block.Header.Timestamp.After(medianTime) {
		return ruleError(ErrTimeTooOld, "block timestamp is not after the median of the last 11 blocks")
	}
	if block.Header.Timestamp.After(time.Now().Add(maxTimeOffset)) {
		return ruleError(ErrTimeTooNew, "block timestamp is too far in the future")
	}

	return nil
}
