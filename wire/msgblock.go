// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"

	"github.com/scnode/scnode/chainhash"
)

const (
	maxTxPerBlock   = 1_000_000
	maxCertPerBlock = 1_000_000
)

// MsgBlock defines a core block: a header followed by a count-prefixed
// transaction list then a count-prefixed certificate list, matching
// spec.md §6 "Block on-disk format".
type MsgBlock struct {
	Header       BlockHeader
	Transactions []*MsgTx
	Certificates []*MsgCert
}

// AddTransaction adds a transaction to the message.
func (msg *MsgBlock) AddTransaction(tx *MsgTx) {
	msg.Transactions = append(msg.Transactions, tx)
}

// AddCertificate adds a certificate to the message.
func (msg *MsgBlock) AddCertificate(cert *MsgCert) {
	msg.Certificates = append(msg.Certificates, cert)
}

// BlockHash computes the block identifier via the header.
func (msg *MsgBlock) BlockHash() chainhash.Hash {
	return msg.Header.BlockHash()
}

func (msg *MsgBlock) BtcDecode(r io.Reader, pver uint32) error {
	if err := readBlockHeaderWithSolution(r, pver, &msg.Header); err != nil {
		return err
	}

	txCount, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	if txCount > maxTxPerBlock {
		return messageError("MsgBlock.BtcDecode", "too many transactions to fit into a block")
	}
	msg.Transactions = make([]*MsgTx, txCount)
	for i := range msg.Transactions {
		tx := NewMsgTx()
		if err := tx.BtcDecode(r, pver); err != nil {
			return err
		}
		msg.Transactions[i] = tx
	}

	certCount, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	if certCount > maxCertPerBlock {
		return messageError("MsgBlock.BtcDecode", "too many certificates to fit into a block")
	}
	msg.Certificates = make([]*MsgCert, certCount)
	for i := range msg.Certificates {
		cert := new(MsgCert)
		if err := cert.BtcDecode(r, pver); err != nil {
			return err
		}
		msg.Certificates[i] = cert
	}

	return nil
}

func (msg *MsgBlock) BtcEncode(w io.Writer, pver uint32) error {
	if err := writeBlockHeaderWithSolution(w, pver, &msg.Header); err != nil {
		return err
	}

	if err := WriteVarIntFixed(w, pver, uint64(len(msg.Transactions))); err != nil {
		return err
	}
	for _, tx := range msg.Transactions {
		if err := tx.BtcEncode(w, pver); err != nil {
			return err
		}
	}

	if err := WriteVarIntFixed(w, pver, uint64(len(msg.Certificates))); err != nil {
		return err
	}
	for _, cert := range msg.Certificates {
		if err := cert.BtcEncode(w, pver); err != nil {
			return err
		}
	}

	return nil
}

// Serialize encodes the block to its canonical on-disk byte representation.
func (msg *MsgBlock) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	if err := msg.BtcEncode(&buf, ProtocolVersion); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Deserialize decodes a block from its canonical on-disk byte representation.
func (msg *MsgBlock) Deserialize(r io.Reader) error {
	return msg.BtcDecode(r, ProtocolVersion)
}

func (msg *MsgBlock) Command() string {
	return CmdBlock
}

func (msg *MsgBlock) MaxPayloadLength(pver uint32) uint32 {
	return MaxMessagePayload
}

// NewMsgBlock returns a new block message that conforms to the Message
// interface, built around the given header.
func NewMsgBlock(header *BlockHeader) *MsgBlock {
	return &MsgBlock{Header: *header}
}

// BlockFileSegmentSize is the bounded size of an append-only block file
// segment, per spec.md §6.
const BlockFileSegmentSize = 128 * 1024 * 1024
