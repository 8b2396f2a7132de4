// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"

	"github.com/scnode/scnode/chainhash"
)

// NullOutpointIndex is the value used for the index in a null previous
// outpoint, i.e. the single input of a coinbase transaction.
const NullOutpointIndex = 0xffffffff

// OutPoint defines a core data type that is used to track previous
// transaction outputs, per spec.md §3 "Outpoint".
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutPoint returns a new core outpoint point with the provided hash and
// index.
func NewOutPoint(hash *chainhash.Hash, index uint32) *OutPoint {
	return &OutPoint{Hash: *hash, Index: index}
}

// String returns the OutPoint in the human-readable form "hash:index".
func (o OutPoint) String() string {
	return fmt.Sprintf("%s:%d", o.Hash, o.Index)
}

// IsNull reports whether the outpoint is the null prevout used by the single
// input of a coinbase transaction.
func (o OutPoint) IsNull() bool {
	return o.Index == NullOutpointIndex && o.Hash.IsZero()
}

func readOutPoint(r io.Reader, op *OutPoint) error {
	if err := readElement(r, &op.Hash); err != nil {
		return err
	}
	return readElement(r, &op.Index)
}

func writeOutPoint(w io.Writer, op *OutPoint) error {
	if err := writeElement(w, &op.Hash); err != nil {
		return err
	}
	return writeElement(w, op.Index)
}
