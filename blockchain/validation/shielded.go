// Copyright (c) 2016-2021 The Zcash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package validation

import (
	"golang.org/x/crypto/ed25519"

	"github.com/scnode/scnode/chainhash"
	"github.com/scnode/scnode/wire"
)

// CheckShieldedSanity runs the context-free shielded-pool checks of
// spec.md §4.4 stage 1: `vpub_old * vpub_new == 0` in every joinsplit,
// no nullifier reused within the transaction, and a valid ed25519
// joinsplit signature binding the whole transaction.
func CheckShieldedSanity(tx *wire.MsgTx) error {
	seen := make(map[chainhash.Hash]struct{}, len(tx.JoinSplits)*2)
	for _, js := range tx.JoinSplits {
		if js.VpubOld != 0 && js.VpubNew != 0 {
			return ruleError(ErrJoinSplitValueBalanceInvalid,
				"joinsplit declares both vpub_old and vpub_new nonzero")
		}
		for _, nf := range js.Nullifiers {
			if _, dup := seen[nf]; dup {
				return ruleError(ErrNullifierDuplicateInTx, "joinsplit nullifier repeated within the same transaction")
			}
			seen[nf] = struct{}{}
		}
	}

	if len(tx.JoinSplits) == 0 {
		return nil
	}
	return checkJoinSplitSig(tx)
}

// checkJoinSplitSig verifies the ed25519 signature binding a shielded
// transaction's joinsplits to the rest of the transaction, per spec.md
// §6 "the joinsplit signature ... covers the transaction with empty
// joinsplit signature field".
func checkJoinSplitSig(tx *wire.MsgTx) error {
	digest := joinSplitSigHash(tx)
	pubKey := ed25519.PublicKey(tx.JoinSplitPubKey[:])
	sig := tx.JoinSplitSig[:]
	if !ed25519.Verify(pubKey, digest[:], sig) {
		return ruleError(ErrJoinSplitSignatureInvalid, "joinsplit signature verification failed")
	}
	return nil
}

// joinSplitSigHash computes the message a valid joinsplit signature must
// cover: the transaction's canonical serialization with its own
// JoinSplitSig field blanked.
func joinSplitSigHash(tx *wire.MsgTx) chainhash.Hash {
	cleared := tx.Copy()
	cleared.JoinSplitSig = [wire.JoinSplitSigSize]byte{}

	raw, err := cleared.Serialize()
	if err != nil {
		// A copy of an already-decoded transaction with only its
		// signature field zeroed cannot fail to serialize.
		panic(err)
	}
	return chainhash.HashH(raw)
}
