// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2016 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package scutil

import (
	"bytes"
	"errors"

	"github.com/EXCCoin/base58"

	"github.com/scnode/scnode/chainhash"
)

// addrChecksumLen is the number of bytes of the double-SHA256 digest
// appended to a base58check payload, per the standard base58check
// encoding exccutil/wif.go uses for WIF strings and this package reuses
// for pay-to-pubkey-hash/pay-to-script-hash addresses.
const addrChecksumLen = 4

// ErrMalformedAddress indicates a base58check string didn't decode to a
// version byte plus a 20-byte hash160 plus a valid checksum.
var ErrMalformedAddress = errors.New("malformed address")

// ErrAddressChecksumMismatch indicates a base58check string's trailing
// four bytes didn't match the double-SHA256 checksum of the rest of the
// payload.
var ErrAddressChecksumMismatch = errors.New("address checksum mismatch")

// checksum returns the first addrChecksumLen bytes of the double-SHA256 of
// b, the standard base58check checksum.
func checksum(b []byte) []byte {
	sum := chainhash.HashH(b)
	return sum[:addrChecksumLen]
}

// EncodeAddress base58check-encodes a 20-byte hash160 under the given
// version byte (chaincfg.Params.PubKeyHashAddrID or ScriptHashAddrID),
// producing the address string form of a standard pay-to-pubkey-hash or
// pay-to-script-hash script.
func EncodeAddress(hash160 []byte, version byte) string {
	payload := make([]byte, 0, 1+len(hash160)+addrChecksumLen)
	payload = append(payload, version)
	payload = append(payload, hash160...)
	payload = append(payload, checksum(payload)...)
	return base58.Encode(payload)
}

// DecodeAddress reverses EncodeAddress, returning the version byte and the
// 20-byte hash160 it commits to.
func DecodeAddress(addr string) (version byte, hash160 []byte, err error) {
	decoded := base58.Decode(addr)
	const hash160Len = 20
	if len(decoded) != 1+hash160Len+addrChecksumLen {
		return 0, nil, ErrMalformedAddress
	}

	payload := decoded[:1+hash160Len]
	want := checksum(payload)
	got := decoded[1+hash160Len:]
	if !bytes.Equal(want, got) {
		return 0, nil, ErrAddressChecksumMismatch
	}

	return payload[0], payload[1:], nil
}
