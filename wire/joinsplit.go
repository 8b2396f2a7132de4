// Copyright (c) 2016-2021 The Zcash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/scnode/scnode/chainhash"
)

// JoinSplitPubKeySize and JoinSplitSigSize are the fixed sizes, in bytes, of
// the ed25519 key material binding a shielded transaction's joinsplits to
// the rest of the transaction (spec.md §3 "shielded variant").
const (
	JoinSplitPubKeySize = 32
	JoinSplitSigSize    = 64
)

// ProofSize and CommitmentSize are treated as opaque, fixed-size byte
// containers per spec.md §2 ("field elements and proofs treated as opaque
// byte containers validated by an external verifier").
const (
	ProofSize      = 192
	CommitmentSize = 32
)

// JoinSplit is one shielded state-transition unit inside a transaction,
// consuming two notes (via their nullifiers) and producing two notes (via
// their commitments), with optional public value deltas. See spec.md §3 and
// the GLOSSARY entry for "Joinsplit".
type JoinSplit struct {
	VpubOld    int64
	VpubNew    int64
	Anchor     chainhash.Hash
	Nullifiers [2]chainhash.Hash
	Commitments [2][CommitmentSize]byte
	Proof      [ProofSize]byte
	// EncryptedCiphertexts carry the note plaintexts to the recipient; their
	// internal structure belongs to the wallet layer and is opaque here.
	EncryptedCiphertexts [2][]byte
}

func readJoinSplit(r io.Reader, pver uint32, js *JoinSplit) error {
	if err := readElement(r, &js.VpubOld); err != nil {
		return err
	}
	if err := readElement(r, &js.VpubNew); err != nil {
		return err
	}
	if err := readElement(r, &js.Anchor); err != nil {
		return err
	}
	for i := range js.Nullifiers {
		if err := readElement(r, &js.Nullifiers[i]); err != nil {
			return err
		}
	}
	for i := range js.Commitments {
		if _, err := io.ReadFull(r, js.Commitments[i][:]); err != nil {
			return err
		}
	}
	if _, err := io.ReadFull(r, js.Proof[:]); err != nil {
		return err
	}
	for i := range js.EncryptedCiphertexts {
		ct, err := ReadVarBytes(r, pver, MaxMessagePayload, "joinsplit ciphertext")
		if err != nil {
			return err
		}
		js.EncryptedCiphertexts[i] = ct
	}
	return nil
}

func writeJoinSplit(w io.Writer, pver uint32, js *JoinSplit) error {
	if err := writeElement(w, js.VpubOld); err != nil {
		return err
	}
	if err := writeElement(w, js.VpubNew); err != nil {
		return err
	}
	if err := writeElement(w, &js.Anchor); err != nil {
		return err
	}
	for i := range js.Nullifiers {
		if err := writeElement(w, &js.Nullifiers[i]); err != nil {
			return err
		}
	}
	for i := range js.Commitments {
		if _, err := w.Write(js.Commitments[i][:]); err != nil {
			return err
		}
	}
	if _, err := w.Write(js.Proof[:]); err != nil {
		return err
	}
	for i := range js.EncryptedCiphertexts {
		if err := WriteVarBytes(w, pver, js.EncryptedCiphertexts[i]); err != nil {
			return err
		}
	}
	return nil
}
