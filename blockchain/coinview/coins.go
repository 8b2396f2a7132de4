// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package coinview implements the layered coin-view contract of spec.md
// §4.1: a disk-backed base, a cache overlay, and a mempool overlay, each
// exposing the same read contract (get_coins/have_coins/get_nullifier/
// get_anchor/get_sidechain/have_csw_nullifier/get_best_block) with writes
// flowing outward through an explicit batch-apply rather than being
// committed layer-by-layer as they happen.
package coinview

import (
	"github.com/scnode/scnode/txscript"
	"github.com/scnode/scnode/wire"
)

// MempoolHeight is the sentinel height recorded against a coin produced by
// an unconfirmed transaction sitting in the mempool overlay, per spec.md
// §4.1 "the mempool overlay interprets a txid-present-in-mempool as
// producing an ephemeral coin at height MEMPOOL_HEIGHT".
const MempoolHeight = 0x7fffffff

// Coins is the full coin record associated with one confirmed transaction
// or certificate, following the per-txid CCoins model the original
// implementation's coin database uses: one entry per txid holding every
// output, with spent outputs nilled out in place rather than removed from
// a separate per-outpoint table.
type Coins struct {
	Version    int32
	Height     int64
	IsCoinBase bool

	// IsCertificate and BwtMaturityHeight distinguish a certificate's
	// coin record from a transaction's, per spec.md §3's coin-record
	// ownership tag {regular, coinbase, certificate}: certificate
	// backward-transfer outputs may not be spent before
	// BwtMaturityHeight, separately from the record's creation Height.
	IsCertificate     bool
	BwtMaturityHeight int64

	// FirstBwtPos marks the output index at which backward-transfer
	// outputs begin for a certificate coin record; regular (pre-bwt)
	// certificate outputs carry no maturity floor of their own. Zero for
	// transaction coin records, where every output is a regular output.
	FirstBwtPos int

	// Outputs holds one slot per original output index; a spent (or
	// never-storable, i.e. provably unspendable) output is represented by
	// a nil entry at that index so indices stay stable.
	Outputs []*wire.TxOut
}

// IsBwtOutput reports whether output index belongs to a certificate's
// backward-transfer range and is therefore subject to BwtMaturityHeight.
func (c *Coins) IsBwtOutput(index int) bool {
	return c.IsCertificate && index >= c.FirstBwtPos
}

// NewCoinsFromTx builds a Coins record from a confirmed transaction's
// outputs, at the given block height. Provably unspendable outputs (e.g.
// OP_RETURN data carriers) are never stored, matching the admission-time
// pruning spec.md §4.1 assumes of the coin view.
func NewCoinsFromTx(tx *wire.MsgTx, height int64) *Coins {
	c := &Coins{
		Version:    int32(tx.Version),
		Height:     height,
		IsCoinBase: tx.IsCoinBase(),
		Outputs:    make([]*wire.TxOut, len(tx.TxOut)),
	}
	for i, out := range tx.TxOut {
		if txscript.IsUnspendable(out.PkScript) {
			continue
		}
		c.Outputs[i] = out
	}
	return c
}

// NewCoinsFromCert builds a Coins record from a top-quality certificate's
// outputs (regular plus backward-transfer), per spec.md §4.1's note that
// the mempool overlay "marks only top-quality certificates' outputs as
// coins" — the same rule applies to confirmed certificates in the base/
// cache layers, since a superseded certificate never reaches the chain.
// bwtMaturityHeight is the height at or after which the backward-transfer
// range (cert.TxOut[cert.FirstBwtPos:]) may be spent.
func NewCoinsFromCert(cert *wire.MsgCert, height, bwtMaturityHeight int64) *Coins {
	c := &Coins{
		Height:            height,
		IsCoinBase:        false,
		IsCertificate:     true,
		BwtMaturityHeight: bwtMaturityHeight,
		FirstBwtPos:       int(cert.FirstBwtPos),
		Outputs:           make([]*wire.TxOut, len(cert.TxOut)),
	}
	for i, out := range cert.TxOut {
		if txscript.IsUnspendable(out.PkScript) {
			continue
		}
		c.Outputs[i] = out
	}
	return c
}

// Clone returns a deep copy of c suitable for mutation by a cache overlay
// without aliasing the original's Outputs slice.
func (c *Coins) Clone() *Coins {
	if c == nil {
		return nil
	}
	clone := &Coins{
		Version:           c.Version,
		Height:            c.Height,
		IsCoinBase:        c.IsCoinBase,
		IsCertificate:     c.IsCertificate,
		BwtMaturityHeight: c.BwtMaturityHeight,
		FirstBwtPos:       c.FirstBwtPos,
		Outputs:           make([]*wire.TxOut, len(c.Outputs)),
	}
	copy(clone.Outputs, c.Outputs)
	return clone
}

// IsAvailable reports whether output index is present and unspent.
func (c *Coins) IsAvailable(index int) bool {
	return index >= 0 && index < len(c.Outputs) && c.Outputs[index] != nil
}

// Spend marks output index as spent, returning the spent output, or nil if
// it was already spent or out of range.
func (c *Coins) Spend(index int) *wire.TxOut {
	if !c.IsAvailable(index) {
		return nil
	}
	out := c.Outputs[index]
	c.Outputs[index] = nil
	return out
}

// IsPruned reports whether every output has been spent, meaning the whole
// record can be dropped from the coin map.
func (c *Coins) IsPruned() bool {
	for _, out := range c.Outputs {
		if out != nil {
			return false
		}
	}
	return true
}

// FetchOutput resolves a single previous output through a Source, the
// common operation behind input resolution during contextual validation
// (spec.md §4.4 stages 3-5).
func FetchOutput(source Source, op wire.OutPoint) (*wire.TxOut, *Coins, bool) {
	coins, ok := source.GetCoins(op.Hash)
	if !ok {
		return nil, nil, false
	}
	if !coins.IsAvailable(int(op.Index)) {
		return nil, coins, false
	}
	return coins.Outputs[op.Index], coins, true
}
