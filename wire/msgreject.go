// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/scnode/scnode/chainhash"
)

// MaxRejectReasonLen is the maximum length of a rejection reason string
// accepted over the wire.
const MaxRejectReasonLen = 250

// MsgReject implements the Message interface and represents a message that
// is sent in response to an admission or block-connect rejection, carrying
// one of the codes in spec.md §6.
type MsgReject struct {
	// Cmd identifies the command that produced the rejection (e.g. "tx",
	// "block", "cert").
	Cmd string

	// Code is the reject code as defined in spec.md §6.
	Code RejectCode

	// Reason is a human-readable description of the rejection.
	Reason string

	// Hash identifies the transaction, certificate, or block being
	// rejected. It is only present for cmd values of "tx", "cert", and
	// "block".
	Hash chainhash.Hash
}

func (msg *MsgReject) BtcDecode(r io.Reader, pver uint32) error {
	cmd, err := ReadVarBytes(r, pver, uint32(CommandSize*4), "reject command")
	if err != nil {
		return err
	}
	msg.Cmd = string(cmd)

	code, err := binarySerializer.Uint8(r)
	if err != nil {
		return err
	}
	msg.Code = RejectCode(code)

	reason, err := ReadVarBytes(r, pver, MaxRejectReasonLen, "reject reason")
	if err != nil {
		return err
	}
	msg.Reason = string(reason)

	if msg.Cmd == CmdBlock || msg.Cmd == CmdTx || msg.Cmd == CmdCert {
		if err := readElement(r, &msg.Hash); err != nil {
			return err
		}
	}
	return nil
}

func (msg *MsgReject) BtcEncode(w io.Writer, pver uint32) error {
	if err := WriteVarBytes(w, pver, []byte(msg.Cmd)); err != nil {
		return err
	}
	if err := binarySerializer.PutUint8(w, uint8(msg.Code)); err != nil {
		return err
	}
	if err := WriteVarBytes(w, pver, []byte(msg.Reason)); err != nil {
		return err
	}
	if msg.Cmd == CmdBlock || msg.Cmd == CmdTx || msg.Cmd == CmdCert {
		return writeElement(w, &msg.Hash)
	}
	return nil
}

func (msg *MsgReject) Command() string {
	return CmdReject
}

func (msg *MsgReject) MaxPayloadLength(pver uint32) uint32 {
	return uint32(CommandSize) + 1 + uint32(MaxRejectReasonLen) + chainhash.HashSize + 16
}

// NewMsgReject returns a new reject message that conforms to the Message
// interface.
func NewMsgReject(cmd string, code RejectCode, reason string) *MsgReject {
	return &MsgReject{Cmd: cmd, Code: code, Reason: reason}
}
