// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/scnode/scnode/chainhash"
	"github.com/scnode/scnode/wire"
)

// calcMerkleRoot builds the classic Bitcoin-lineage merkle tree over the
// given leaves (a block's transaction hashes followed by its certificate
// hashes, per spec.md §6) and returns its root. An odd-sized level
// duplicates its last node, matching the original implementation's
// CBlock::BuildMerkleTree behavior.
func calcMerkleRoot(leaves []chainhash.Hash) chainhash.Hash {
	if len(leaves) == 0 {
		return chainhash.Hash{}
	}

	level := make([]chainhash.Hash, len(leaves))
	copy(level, leaves)

	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}
		next := make([]chainhash.Hash, len(level)/2)
		for i := range next {
			var buf [chainhash.HashSize * 2]byte
			copy(buf[:chainhash.HashSize], level[2*i][:])
			copy(buf[chainhash.HashSize:], level[2*i+1][:])
			next[i] = chainhash.HashH(buf[:])
		}
		level = next
	}
	return level[0]
}

// blockMerkleRoot computes the merkle root a candidate block's header must
// declare: every transaction hash followed by every certificate hash, in
// block order.
func blockMerkleRoot(block *wire.MsgBlock) chainhash.Hash {
	leaves := make([]chainhash.Hash, 0, len(block.Transactions)+len(block.Certificates))
	for _, tx := range block.Transactions {
		leaves = append(leaves, tx.TxHash())
	}
	for _, cert := range block.Certificates {
		leaves = append(leaves, cert.CertHash())
	}
	return calcMerkleRoot(leaves)
}
