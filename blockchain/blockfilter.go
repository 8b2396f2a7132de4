// Copyright (c) 2016-2017 The btcsuite developers
// Copyright (c) 2018 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/scnode/scnode/chainhash"
	"github.com/scnode/scnode/gcs"
	"github.com/scnode/scnode/wire"
)

// filterFalsePositiveP is the GCS collision probability exponent used for
// every per-block compact filter, matching BIP 158's P=19 default.
const filterFalsePositiveP = 19

// filterKeyFromBlockHash derives the SipHash key a block's compact filter
// is built and matched under from the block's own hash, so no separate key
// material needs to be stored or transmitted alongside the filter.
func filterKeyFromBlockHash(hash chainhash.Hash) [gcs.KeySize]byte {
	var key [gcs.KeySize]byte
	copy(key[:], hash[:gcs.KeySize])
	return key
}

// buildBlockFilter builds the compact filter a light client uses to test
// whether a block is interesting without downloading it, per spec.md §6's
// GCS filter mention. It indexes the public-key script of every transaction
// and certificate output, and the transaction hash of every spent input's
// previous outpoint (the outpoint's output index is not included).
func buildBlockFilter(block *wire.MsgBlock) (*gcs.Filter, error) {
	var elements [][]byte
	for _, tx := range block.Transactions {
		for _, out := range tx.TxOut {
			if len(out.PkScript) > 0 {
				elements = append(elements, out.PkScript)
			}
		}
		if !tx.IsCoinBase() {
			for _, in := range tx.TxIn {
				op := in.PreviousOutPoint
				elements = append(elements, op.Hash[:])
			}
		}
	}
	for _, cert := range block.Certificates {
		for _, out := range cert.TxOut {
			if len(out.PkScript) > 0 {
				elements = append(elements, out.PkScript)
			}
		}
	}
	if len(elements) == 0 {
		return nil, gcs.ErrNoData
	}

	key := filterKeyFromBlockHash(block.BlockHash())
	return gcs.NewFilter(filterFalsePositiveP, key, elements)
}
