// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MaxTxInSequenceNum is the maximum sequence number a TxIn can have.
const MaxTxInSequenceNum uint32 = 0xffffffff

// maxTxInPerMessage and maxTxOutPerMessage bound the allocation a peer may
// force on decode; they are generous since a single transaction may
// legitimately carry thousands of shielded or sidechain outputs.
const (
	maxTxInPerMessage  = 1_000_000
	maxTxOutPerMessage = 1_000_000
)

// TxIn defines a core transaction input.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Sequence         uint32
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction input.
func (t *TxIn) SerializeSize() int {
	return 32 + 4 + VarIntSerializeSize(uint64(len(t.SignatureScript))) +
		len(t.SignatureScript) + 4
}

func readTxIn(r io.Reader, pver uint32, ti *TxIn) error {
	if err := readOutPoint(r, &ti.PreviousOutPoint); err != nil {
		return err
	}
	sigScript, err := ReadVarBytes(r, pver, MaxMessagePayload, "signature script")
	if err != nil {
		return err
	}
	ti.SignatureScript = sigScript
	return readElement(r, &ti.Sequence)
}

func writeTxIn(w io.Writer, pver uint32, ti *TxIn) error {
	if err := writeOutPoint(w, &ti.PreviousOutPoint); err != nil {
		return err
	}
	if err := WriteVarBytes(w, pver, ti.SignatureScript); err != nil {
		return err
	}
	return writeElement(w, ti.Sequence)
}

// TxOut defines a core transaction output.
type TxOut struct {
	Value    int64
	Version  uint16
	PkScript []byte
}

// SerializeSize returns the number of bytes it would take to serialize the
// the transaction output.
func (t *TxOut) SerializeSize() int {
	return 8 + 2 + VarIntSerializeSize(uint64(len(t.PkScript))) + len(t.PkScript)
}

func readTxOut(r io.Reader, pver uint32, to *TxOut) error {
	if err := readElement(r, &to.Value); err != nil {
		return err
	}
	if err := readElement(r, &to.Version); err != nil {
		return err
	}
	pkScript, err := ReadVarBytes(r, pver, MaxMessagePayload, "public key script")
	if err != nil {
		return err
	}
	to.PkScript = pkScript
	return nil
}

func writeTxOut(w io.Writer, pver uint32, to *TxOut) error {
	if err := writeElement(w, to.Value); err != nil {
		return err
	}
	if err := writeElement(w, to.Version); err != nil {
		return err
	}
	return WriteVarBytes(w, pver, to.PkScript)
}
