// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2013-2014 The btcsuite developers
// Copyright (c) 2015-2016 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package scutil

import (
	"hash"

	"github.com/decred/dcrd/crypto/ripemd160"

	"github.com/scnode/scnode/chainhash"
)

// calcHash calculates the hash of hasher over buf.
func calcHash(buf []byte, hasher hash.Hash) []byte {
	hasher.Write(buf)
	return hasher.Sum(nil)
}

// Hash160 calculates the hash ripemd160(sha256d(b)), used to derive
// pay-to-pubkey-hash and pay-to-script-hash addresses for the standard
// script templates in the txscript package.
func Hash160(buf []byte) []byte {
	return calcHash(chainhash.HashB(buf), ripemd160.New())
}
