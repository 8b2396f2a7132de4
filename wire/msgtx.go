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

// TxVersion identifies which optional extension blocks a MsgTx carries, per
// spec.md §3 "Transaction: variant over version codes".
type TxVersion uint32

// The set of transaction versions the core understands. Unknown versions
// are rejected as malformed by context-free checks (spec.md §4.4 stage 1).
const (
	TxVersionBase      TxVersion = 1
	TxVersionShielded  TxVersion = 2
	TxVersionSidechain TxVersion = 0xFCFFFFFF // mirrors the sidechain-tx marker used upstream.
)

// MsgTx implements the core transaction shape of spec.md §3: fields common
// to every variant, plus the shielded and sidechain-capable extension
// blocks, gated by Version.
type MsgTx struct {
	Version  TxVersion
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32

	// Shielded variant extension (TxVersionShielded).
	JoinSplits      []*JoinSplit
	JoinSplitPubKey [JoinSplitPubKeySize]byte
	JoinSplitSig    [JoinSplitSigSize]byte

	// Sidechain-capable variant extension (TxVersionSidechain).
	SidechainCreations []*SidechainCreation
	ForwardTransfers   []*ForwardTransfer
	BwtRequests        []*BwtRequest
	CswInputs          []*CswInput
}

// HasShieldedData reports whether the transaction carries the shielded
// extension block.
func (msg *MsgTx) HasShieldedData() bool {
	return len(msg.JoinSplits) > 0
}

// HasSidechainData reports whether the transaction carries any sidechain
// extension output.
func (msg *MsgTx) HasSidechainData() bool {
	return len(msg.SidechainCreations) > 0 || len(msg.ForwardTransfers) > 0 ||
		len(msg.BwtRequests) > 0 || len(msg.CswInputs) > 0
}

// IsCoinBase determines whether a transaction is a coinbase, matching
// spec.md §3's invariant "coinbase has exactly one input with a null
// prevout".
func (msg *MsgTx) IsCoinBase() bool {
	return len(msg.TxIn) == 1 && msg.TxIn[0].PreviousOutPoint.IsNull()
}

// AddTxIn adds a transaction input to the message.
func (msg *MsgTx) AddTxIn(ti *TxIn) {
	msg.TxIn = append(msg.TxIn, ti)
}

// AddTxOut adds a transaction output to the message.
func (msg *MsgTx) AddTxOut(to *TxOut) {
	msg.TxOut = append(msg.TxOut, to)
}

// BtcDecode decodes r using the wire protocol encoding into the receiver.
func (msg *MsgTx) BtcDecode(r io.Reader, pver uint32) error {
	var version uint32
	if err := readElement(r, &version); err != nil {
		return err
	}
	msg.Version = TxVersion(version)

	txInCount, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	if txInCount > maxTxInPerMessage {
		return messageError("MsgTx.BtcDecode", "too many input transactions")
	}
	msg.TxIn = make([]*TxIn, txInCount)
	for i := range msg.TxIn {
		ti := new(TxIn)
		if err := readTxIn(r, pver, ti); err != nil {
			return err
		}
		msg.TxIn[i] = ti
	}

	txOutCount, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	if txOutCount > maxTxOutPerMessage {
		return messageError("MsgTx.BtcDecode", "too many output transactions")
	}
	msg.TxOut = make([]*TxOut, txOutCount)
	for i := range msg.TxOut {
		to := new(TxOut)
		if err := readTxOut(r, pver, to); err != nil {
			return err
		}
		msg.TxOut[i] = to
	}

	if err := readElement(r, &msg.LockTime); err != nil {
		return err
	}

	if msg.Version == TxVersionShielded {
		jsCount, err := ReadVarInt(r, pver)
		if err != nil {
			return err
		}
		msg.JoinSplits = make([]*JoinSplit, jsCount)
		for i := range msg.JoinSplits {
			js := new(JoinSplit)
			if err := readJoinSplit(r, pver, js); err != nil {
				return err
			}
			msg.JoinSplits[i] = js
		}
		if len(msg.JoinSplits) > 0 {
			if _, err := io.ReadFull(r, msg.JoinSplitPubKey[:]); err != nil {
				return err
			}
			if _, err := io.ReadFull(r, msg.JoinSplitSig[:]); err != nil {
				return err
			}
		}
	}

	if msg.Version == TxVersionSidechain {
		if err := readSidechainBlock(r, pver, msg); err != nil {
			return err
		}
	}

	return nil
}

func readSidechainBlock(r io.Reader, pver uint32, msg *MsgTx) error {
	n, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	msg.SidechainCreations = make([]*SidechainCreation, n)
	for i := range msg.SidechainCreations {
		sc := new(SidechainCreation)
		if err := readSidechainCreation(r, pver, sc); err != nil {
			return err
		}
		msg.SidechainCreations[i] = sc
	}

	n, err = ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	msg.ForwardTransfers = make([]*ForwardTransfer, n)
	for i := range msg.ForwardTransfers {
		ft := new(ForwardTransfer)
		if err := readForwardTransfer(r, ft); err != nil {
			return err
		}
		msg.ForwardTransfers[i] = ft
	}

	n, err = ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	msg.BwtRequests = make([]*BwtRequest, n)
	for i := range msg.BwtRequests {
		b := new(BwtRequest)
		if err := readBwtRequest(r, pver, b); err != nil {
			return err
		}
		msg.BwtRequests[i] = b
	}

	n, err = ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	msg.CswInputs = make([]*CswInput, n)
	for i := range msg.CswInputs {
		c := new(CswInput)
		if err := readCswInput(r, pver, c); err != nil {
			return err
		}
		msg.CswInputs[i] = c
	}
	return nil
}

// BtcEncode encodes the receiver to w using the wire protocol encoding.
func (msg *MsgTx) BtcEncode(w io.Writer, pver uint32) error {
	if err := writeElement(w, uint32(msg.Version)); err != nil {
		return err
	}

	if err := WriteVarIntFixed(w, pver, uint64(len(msg.TxIn))); err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if err := writeTxIn(w, pver, ti); err != nil {
			return err
		}
	}

	if err := WriteVarIntFixed(w, pver, uint64(len(msg.TxOut))); err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		if err := writeTxOut(w, pver, to); err != nil {
			return err
		}
	}

	if err := writeElement(w, msg.LockTime); err != nil {
		return err
	}

	if msg.Version == TxVersionShielded {
		if err := WriteVarIntFixed(w, pver, uint64(len(msg.JoinSplits))); err != nil {
			return err
		}
		for _, js := range msg.JoinSplits {
			if err := writeJoinSplit(w, pver, js); err != nil {
				return err
			}
		}
		if len(msg.JoinSplits) > 0 {
			if _, err := w.Write(msg.JoinSplitPubKey[:]); err != nil {
				return err
			}
			if _, err := w.Write(msg.JoinSplitSig[:]); err != nil {
				return err
			}
		}
	}

	if msg.Version == TxVersionSidechain {
		if err := writeSidechainBlock(w, pver, msg); err != nil {
			return err
		}
	}

	return nil
}

func writeSidechainBlock(w io.Writer, pver uint32, msg *MsgTx) error {
	if err := WriteVarIntFixed(w, pver, uint64(len(msg.SidechainCreations))); err != nil {
		return err
	}
	for _, sc := range msg.SidechainCreations {
		if err := writeSidechainCreation(w, pver, sc); err != nil {
			return err
		}
	}
	if err := WriteVarIntFixed(w, pver, uint64(len(msg.ForwardTransfers))); err != nil {
		return err
	}
	for _, ft := range msg.ForwardTransfers {
		if err := writeForwardTransfer(w, ft); err != nil {
			return err
		}
	}
	if err := WriteVarIntFixed(w, pver, uint64(len(msg.BwtRequests))); err != nil {
		return err
	}
	for _, b := range msg.BwtRequests {
		if err := writeBwtRequest(w, pver, b); err != nil {
			return err
		}
	}
	if err := WriteVarIntFixed(w, pver, uint64(len(msg.CswInputs))); err != nil {
		return err
	}
	for _, c := range msg.CswInputs {
		if err := writeCswInput(w, pver, c); err != nil {
			return err
		}
	}
	return nil
}

// Serialize encodes the transaction to a byte slice using the canonical,
// storage/consensus-stable encoding (equivalent to BtcEncode at the latest
// protocol version).
func (msg *MsgTx) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	if err := msg.BtcEncode(&buf, ProtocolVersion); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Deserialize decodes a transaction from its canonical encoding.
func (msg *MsgTx) Deserialize(r io.Reader) error {
	return msg.BtcDecode(r, ProtocolVersion)
}

// TxHash computes the transaction identifier: the double hash of the
// canonical serialization. It is stable across the lifetime of the
// transaction once constructed and is used as the txid/outpoint key
// throughout the coin view and mempool (spec.md §3 "Outpoint").
func (msg *MsgTx) TxHash() chainhash.Hash {
	b, err := msg.Serialize()
	if err != nil {
		// Serialization of an in-memory, already-validated-shape MsgTx
		// cannot fail; a failure here indicates a construction bug.
		panic(err)
	}
	return chainhash.HashH(b)
}

// Command returns the protocol command string for the message.
func (msg *MsgTx) Command() string {
	return CmdTx
}

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.
func (msg *MsgTx) MaxPayloadLength(pver uint32) uint32 {
	return MaxMessagePayload
}

// Copy returns a deep copy of the transaction suitable for mutation, such
// as blanking signature scripts while computing a signature hash.
func (msg *MsgTx) Copy() *MsgTx {
	newTx := &MsgTx{
		Version:  msg.Version,
		LockTime: msg.LockTime,
	}

	for _, ti := range msg.TxIn {
		newTx.TxIn = append(newTx.TxIn, &TxIn{
			PreviousOutPoint: ti.PreviousOutPoint,
			SignatureScript:  append([]byte(nil), ti.SignatureScript...),
			Sequence:         ti.Sequence,
		})
	}
	for _, to := range msg.TxOut {
		newTx.TxOut = append(newTx.TxOut, &TxOut{
			Value:    to.Value,
			Version:  to.Version,
			PkScript: append([]byte(nil), to.PkScript...),
		})
	}
	for _, js := range msg.JoinSplits {
		jsCopy := *js
		newTx.JoinSplits = append(newTx.JoinSplits, &jsCopy)
	}
	newTx.JoinSplitPubKey = msg.JoinSplitPubKey
	newTx.JoinSplitSig = msg.JoinSplitSig

	for _, sc := range msg.SidechainCreations {
		scCopy := *sc
		newTx.SidechainCreations = append(newTx.SidechainCreations, &scCopy)
	}
	for _, ft := range msg.ForwardTransfers {
		ftCopy := *ft
		newTx.ForwardTransfers = append(newTx.ForwardTransfers, &ftCopy)
	}
	for _, bt := range msg.BwtRequests {
		btCopy := *bt
		newTx.BwtRequests = append(newTx.BwtRequests, &btCopy)
	}
	for _, csw := range msg.CswInputs {
		cswCopy := *csw
		newTx.CswInputs = append(newTx.CswInputs, &cswCopy)
	}

	return newTx
}

// NewMsgTx returns a new base-variant transaction that conforms to the
// Message interface.
func NewMsgTx() *MsgTx {
	return &MsgTx{Version: TxVersionBase}
}
