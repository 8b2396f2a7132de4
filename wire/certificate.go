// Copyright (c) 2018-2021 The Horizen developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"

	"github.com/scnode/scnode/chainhash"
)

// MsgCert is the distinguished transaction-like object associated with one
// sidechain, per spec.md §3 "Certificate".
type MsgCert struct {
	Scid    chainhash.Hash
	EpochNumber uint32
	Quality uint64

	EndEpochCumCommTreeRoot [FieldElementSize]byte
	Proof                   []byte
	FieldElementCertificateFields [][]byte

	// TxOut holds the regular outputs followed by the backward-transfer
	// outputs; FirstBwtPos is the index at which backward transfers begin
	// (spec.md §3).
	TxOut       []*TxOut
	FirstBwtPos uint32

	ForwardTransferScFee        int64
	MainchainBwtRequestScFee    int64
}

// IsBackwardTransferPos reports whether output index i is a backward
// transfer output rather than a regular one.
func (c *MsgCert) IsBackwardTransferPos(i int) bool {
	return uint32(i) >= c.FirstBwtPos
}

// BackwardTransferTotal sums the value of every backward-transfer output.
func (c *MsgCert) BackwardTransferTotal() int64 {
	var total int64
	for i := int(c.FirstBwtPos); i < len(c.TxOut); i++ {
		total += c.TxOut[i].Value
	}
	return total
}

func (c *MsgCert) BtcDecode(r io.Reader, pver uint32) error {
	if err := readElement(r, &c.Scid); err != nil {
		return err
	}
	if err := readElement(r, &c.EpochNumber); err != nil {
		return err
	}
	if err := readElement(r, &c.Quality); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, c.EndEpochCumCommTreeRoot[:]); err != nil {
		return err
	}
	proof, err := ReadVarBytes(r, pver, MaxMessagePayload, "certificate proof")
	if err != nil {
		return err
	}
	c.Proof = proof

	fCount, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	c.FieldElementCertificateFields = make([][]byte, fCount)
	for i := range c.FieldElementCertificateFields {
		f, err := ReadVarBytes(r, pver, MaxMessagePayload, "certificate field element")
		if err != nil {
			return err
		}
		c.FieldElementCertificateFields[i] = f
	}

	outCount, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	c.TxOut = make([]*TxOut, outCount)
	for i := range c.TxOut {
		to := new(TxOut)
		if err := readTxOut(r, pver, to); err != nil {
			return err
		}
		c.TxOut[i] = to
	}
	if err := readElement(r, &c.FirstBwtPos); err != nil {
		return err
	}
	if err := readElement(r, &c.ForwardTransferScFee); err != nil {
		return err
	}
	return readElement(r, &c.MainchainBwtRequestScFee)
}

func (c *MsgCert) BtcEncode(w io.Writer, pver uint32) error {
	if err := writeElement(w, &c.Scid); err != nil {
		return err
	}
	if err := writeElement(w, c.EpochNumber); err != nil {
		return err
	}
	if err := writeElement(w, c.Quality); err != nil {
		return err
	}
	if _, err := w.Write(c.EndEpochCumCommTreeRoot[:]); err != nil {
		return err
	}
	if err := WriteVarBytes(w, pver, c.Proof); err != nil {
		return err
	}
	if err := WriteVarIntFixed(w, pver, uint64(len(c.FieldElementCertificateFields))); err != nil {
		return err
	}
	for _, f := range c.FieldElementCertificateFields {
		if err := WriteVarBytes(w, pver, f); err != nil {
			return err
		}
	}
	if err := WriteVarIntFixed(w, pver, uint64(len(c.TxOut))); err != nil {
		return err
	}
	for _, to := range c.TxOut {
		if err := writeTxOut(w, pver, to); err != nil {
			return err
		}
	}
	if err := writeElement(w, c.FirstBwtPos); err != nil {
		return err
	}
	if err := writeElement(w, c.ForwardTransferScFee); err != nil {
		return err
	}
	return writeElement(w, c.MainchainBwtRequestScFee)
}

// Serialize encodes the certificate to its canonical byte representation.
func (c *MsgCert) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.BtcEncode(&buf, ProtocolVersion); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CertHash computes the certificate identifier: the double hash of its
// canonical serialization. Certificates share the outpoint namespace with
// transactions (a certificate hash may be spent as a txid).
func (c *MsgCert) CertHash() chainhash.Hash {
	b, err := c.Serialize()
	if err != nil {
		panic(err)
	}
	return chainhash.HashH(b)
}

func (c *MsgCert) Command() string {
	return CmdCert
}

func (c *MsgCert) MaxPayloadLength(pver uint32) uint32 {
	return MaxMessagePayload
}
