// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"
	"time"

	"github.com/scnode/scnode/chainhash"
)

// MaxBlockHeaderPayload is the number of bytes a block header can be, not
// including the variable-length equihash solution.
const MaxBlockHeaderPayload = 4 + (chainhash.HashSize * 2) + 4 + 4 + 32

// BlockHeader defines the fixed-width fields of a block header, per
// spec.md §6 "Block on-disk format": "version, previous-hash, merkle-root,
// time, bits, nonce, equihash solution".
type BlockHeader struct {
	Version    int32
	PrevBlock  chainhash.Hash
	MerkleRoot chainhash.Hash
	Timestamp  time.Time
	Bits       uint32
	Nonce      [32]byte

	// EquihashSolution is the variable-length proof-of-work solution
	// verified by the equihash package against (header-minus-solution, N, K).
	EquihashSolution []byte
}

// BlockHash computes the block identifier: the double hash of the header
// serialization excluding the equihash solution, matching the convention
// that the solution is a proof *about* the header rather than part of its
// identity.
func (h *BlockHeader) BlockHash() chainhash.Hash {
	var buf bytes.Buffer
	_ = writeBlockHeader(&buf, h)
	return chainhash.HashH(buf.Bytes())
}

// PreSolutionBytes returns the header serialization the equihash solution is
// a proof about, i.e. everything but EquihashSolution itself.
func (h *BlockHeader) PreSolutionBytes() []byte {
	var buf bytes.Buffer
	_ = writeBlockHeader(&buf, h)
	return buf.Bytes()
}

func readBlockHeader(r io.Reader, pver uint32, h *BlockHeader) error {
	if err := readElement(r, &h.Version); err != nil {
		return err
	}
	if err := readElement(r, &h.PrevBlock); err != nil {
		return err
	}
	if err := readElement(r, &h.MerkleRoot); err != nil {
		return err
	}
	var ts uint32
	if err := readElement(r, &ts); err != nil {
		return err
	}
	h.Timestamp = time.Unix(int64(ts), 0)
	if err := readElement(r, &h.Bits); err != nil {
		return err
	}
	_, err := io.ReadFull(r, h.Nonce[:])
	return err
}

func writeBlockHeader(w io.Writer, h *BlockHeader) error {
	if err := writeElement(w, h.Version); err != nil {
		return err
	}
	if err := writeElement(w, &h.PrevBlock); err != nil {
		return err
	}
	if err := writeElement(w, &h.MerkleRoot); err != nil {
		return err
	}
	if err := writeElement(w, uint32(h.Timestamp.Unix())); err != nil {
		return err
	}
	if err := writeElement(w, h.Bits); err != nil {
		return err
	}
	_, err := w.Write(h.Nonce[:])
	return err
}

func readBlockHeaderWithSolution(r io.Reader, pver uint32, h *BlockHeader) error {
	if err := readBlockHeader(r, pver, h); err != nil {
		return err
	}
	sol, err := ReadVarBytes(r, pver, MaxMessagePayload, "equihash solution")
	if err != nil {
		return err
	}
	h.EquihashSolution = sol
	return nil
}

func writeBlockHeaderWithSolution(w io.Writer, pver uint32, h *BlockHeader) error {
	if err := writeBlockHeader(w, h); err != nil {
		return err
	}
	return WriteVarBytes(w, pver, h.EquihashSolution)
}
