// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package scutil

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeAddressRoundTrip(t *testing.T) {
	hash160 := Hash160([]byte("a public key"))
	const version = 0x7f

	addr := EncodeAddress(hash160, version)
	gotVersion, gotHash, err := DecodeAddress(addr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotVersion != version {
		t.Fatalf("got version %#x, want %#x", gotVersion, version)
	}
	if !bytes.Equal(gotHash, hash160) {
		t.Fatalf("got hash160 %x, want %x", gotHash, hash160)
	}
}

func TestDecodeAddressRejectsBadChecksum(t *testing.T) {
	addr := EncodeAddress(Hash160([]byte("x")), 0x7f)
	tampered := addr[:len(addr)-1] + "9"
	if _, _, err := DecodeAddress(tampered); err == nil {
		t.Fatalf("expected an error decoding an address with a tampered checksum")
	}
}

func TestDecodeAddressRejectsWrongLength(t *testing.T) {
	if _, _, err := DecodeAddress("1"); err != ErrMalformedAddress {
		t.Fatalf("expected ErrMalformedAddress, got %v", err)
	}
}
