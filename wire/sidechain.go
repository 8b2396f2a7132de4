// Copyright (c) 2018-2021 The Horizen developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/scnode/scnode/chainhash"
)

// FieldElementSize is the fixed size, in bytes, of a custom field-element
// commitment carried by a sidechain creation or a certificate (spec.md §3).
const FieldElementSize = 32

// CustomFieldConfig describes one custom field-element slot a sidechain
// declared at creation time. MsgCert carries no field-element vector, so
// no certificate is checked against these configs.
type CustomFieldConfig struct {
	// BitSize is the declared bit width of this field; sidechain creation
	// validation rejects a zero width.
	BitSize uint32
}

// SidechainCreation is a sidechain-capable transaction's output that
// declares a new sidechain (spec.md §3 "sidechain-capable variant",
// §4.2 "Creation").
type SidechainCreation struct {
	Amount                   int64
	Address                  chainhash.Hash
	WithdrawalEpochLength    uint32
	CertVerificationKey      []byte
	CeasedVerificationKey    []byte
	CustomFieldConfigs       []CustomFieldConfig
	MbtrDataLength           uint8
	ForwardTransferMinFee    int64
	MainchainBackwardTransferRequestMinFee int64
	Version                  uint32
}

// ForwardTransfer moves mainchain value into a sidechain's immature balance
// schedule (spec.md §4.2 "Forward transfer").
type ForwardTransfer struct {
	Amount  int64
	Address chainhash.Hash
	Scid    chainhash.Hash
}

// BwtRequest is a mainchain-backward-transfer request: a balance-preserving
// output carrying a fee paid to the target sidechain (spec.md §4.2 "mbtr").
type BwtRequest struct {
	Scid          chainhash.Hash
	ScFee         int64
	ScRequestData [][]byte
	ScriptPubKey  []byte
}

// CswInput reclaims sidechain balance after cease, proven via a SNARK
// against the last known cumulative commitment tree (GLOSSARY "csw").
type CswInput struct {
	Scid          chainhash.Hash
	Amount        int64
	Nullifier     [FieldElementSize]byte
	ActiveCertDataHash [FieldElementSize]byte
	Proof         []byte
	RedeemScript  []byte
}

func readFieldElementConfigs(r io.Reader, pver uint32) ([]CustomFieldConfig, error) {
	count, err := ReadVarInt(r, pver)
	if err != nil {
		return nil, err
	}
	out := make([]CustomFieldConfig, count)
	for i := range out {
		if err := readElement(r, &out[i].BitSize); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func writeFieldElementConfigs(w io.Writer, pver uint32, cfgs []CustomFieldConfig) error {
	if err := WriteVarIntFixed(w, pver, uint64(len(cfgs))); err != nil {
		return err
	}
	for _, c := range cfgs {
		if err := writeElement(w, c.BitSize); err != nil {
			return err
		}
	}
	return nil
}

func readSidechainCreation(r io.Reader, pver uint32, sc *SidechainCreation) error {
	if err := readElement(r, &sc.Amount); err != nil {
		return err
	}
	if err := readElement(r, &sc.Address); err != nil {
		return err
	}
	if err := readElement(r, &sc.WithdrawalEpochLength); err != nil {
		return err
	}
	vk, err := ReadVarBytes(r, pver, MaxMessagePayload, "cert verification key")
	if err != nil {
		return err
	}
	sc.CertVerificationKey = vk
	cvk, err := ReadVarBytes(r, pver, MaxMessagePayload, "ceased verification key")
	if err != nil {
		return err
	}
	sc.CeasedVerificationKey = cvk
	cfgs, err := readFieldElementConfigs(r, pver)
	if err != nil {
		return err
	}
	sc.CustomFieldConfigs = cfgs
	if err := readElement(r, &sc.MbtrDataLength); err != nil {
		return err
	}
	if err := readElement(r, &sc.ForwardTransferMinFee); err != nil {
		return err
	}
	if err := readElement(r, &sc.MainchainBackwardTransferRequestMinFee); err != nil {
		return err
	}
	return readElement(r, &sc.Version)
}

func writeSidechainCreation(w io.Writer, pver uint32, sc *SidechainCreation) error {
	if err := writeElement(w, sc.Amount); err != nil {
		return err
	}
	if err := writeElement(w, &sc.Address); err != nil {
		return err
	}
	if err := writeElement(w, sc.WithdrawalEpochLength); err != nil {
		return err
	}
	if err := WriteVarBytes(w, pver, sc.CertVerificationKey); err != nil {
		return err
	}
	if err := WriteVarBytes(w, pver, sc.CeasedVerificationKey); err != nil {
		return err
	}
	if err := writeFieldElementConfigs(w, pver, sc.CustomFieldConfigs); err != nil {
		return err
	}
	if err := writeElement(w, sc.MbtrDataLength); err != nil {
		return err
	}
	if err := writeElement(w, sc.ForwardTransferMinFee); err != nil {
		return err
	}
	if err := writeElement(w, sc.MainchainBackwardTransferRequestMinFee); err != nil {
		return err
	}
	return writeElement(w, sc.Version)
}

func readForwardTransfer(r io.Reader, ft *ForwardTransfer) error {
	if err := readElement(r, &ft.Amount); err != nil {
		return err
	}
	if err := readElement(r, &ft.Address); err != nil {
		return err
	}
	return readElement(r, &ft.Scid)
}

func writeForwardTransfer(w io.Writer, ft *ForwardTransfer) error {
	if err := writeElement(w, ft.Amount); err != nil {
		return err
	}
	if err := writeElement(w, &ft.Address); err != nil {
		return err
	}
	return writeElement(w, &ft.Scid)
}

func readBwtRequest(r io.Reader, pver uint32, b *BwtRequest) error {
	if err := readElement(r, &b.Scid); err != nil {
		return err
	}
	if err := readElement(r, &b.ScFee); err != nil {
		return err
	}
	count, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	b.ScRequestData = make([][]byte, count)
	for i := range b.ScRequestData {
		data, err := ReadVarBytes(r, pver, MaxMessagePayload, "sc request data")
		if err != nil {
			return err
		}
		b.ScRequestData[i] = data
	}
	script, err := ReadVarBytes(r, pver, MaxMessagePayload, "bwt request script")
	if err != nil {
		return err
	}
	b.ScriptPubKey = script
	return nil
}

func writeBwtRequest(w io.Writer, pver uint32, b *BwtRequest) error {
	if err := writeElement(w, &b.Scid); err != nil {
		return err
	}
	if err := writeElement(w, b.ScFee); err != nil {
		return err
	}
	if err := WriteVarIntFixed(w, pver, uint64(len(b.ScRequestData))); err != nil {
		return err
	}
	for _, d := range b.ScRequestData {
		if err := WriteVarBytes(w, pver, d); err != nil {
			return err
		}
	}
	return WriteVarBytes(w, pver, b.ScriptPubKey)
}

func readCswInput(r io.Reader, pver uint32, c *CswInput) error {
	if err := readElement(r, &c.Scid); err != nil {
		return err
	}
	if err := readElement(r, &c.Amount); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, c.Nullifier[:]); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, c.ActiveCertDataHash[:]); err != nil {
		return err
	}
	proof, err := ReadVarBytes(r, pver, MaxMessagePayload, "csw proof")
	if err != nil {
		return err
	}
	c.Proof = proof
	redeem, err := ReadVarBytes(r, pver, MaxMessagePayload, "csw redeem script")
	if err != nil {
		return err
	}
	c.RedeemScript = redeem
	return nil
}

func writeCswInput(w io.Writer, pver uint32, c *CswInput) error {
	if err := writeElement(w, &c.Scid); err != nil {
		return err
	}
	if err := writeElement(w, c.Amount); err != nil {
		return err
	}
	if _, err := w.Write(c.Nullifier[:]); err != nil {
		return err
	}
	if _, err := w.Write(c.ActiveCertDataHash[:]); err != nil {
		return err
	}
	if err := WriteVarBytes(w, pver, c.Proof); err != nil {
		return err
	}
	return WriteVarBytes(w, pver, c.RedeemScript)
}
