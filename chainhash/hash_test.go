// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainhash

import (
	"bytes"
	"testing"
)

// mustParseHash converts the passed big-endian hex string into a Hash and
// will panic if there is an error. It only differs from NewHashFromStr in
// that it panics on error, so only hard-coded, known-good hashes may be
// passed to it.
func mustParseHash(s string) *Hash {
	hash, err := NewHashFromStr(s)
	if err != nil {
		panic("invalid hash in source file: " + s)
	}
	return hash
}

func TestHashString(t *testing.T) {
	wantStr := "0000000000000000000000000000000000000000000000000000000000000001"
	h := mustParseHash(wantStr)
	if got := h.String(); got != wantStr {
		t.Fatalf("String() = %q, want %q", got, wantStr)
	}
}

func TestHashCompare(t *testing.T) {
	low := mustParseHash("00")
	high := mustParseHash("ff")
	if low.Compare(*high) >= 0 {
		t.Fatalf("expected low < high")
	}
	if high.Compare(*low) <= 0 {
		t.Fatalf("expected high > low")
	}
	if low.Compare(*low) != 0 {
		t.Fatalf("expected equal hashes to compare to 0")
	}
}

func TestHashIsEqual(t *testing.T) {
	a := mustParseHash("aa")
	b := mustParseHash("aa")
	c := mustParseHash("bb")
	if !a.IsEqual(b) {
		t.Fatalf("expected a == b")
	}
	if a.IsEqual(c) {
		t.Fatalf("expected a != c")
	}
	var nilHash *Hash
	if !nilHash.IsEqual(nil) {
		t.Fatalf("expected nil == nil")
	}
}

func TestHashBRoundTrip(t *testing.T) {
	data := []byte("scnode consensus core")
	sum := HashH(data)
	sum2 := HashB(data)
	if !bytes.Equal(sum[:], sum2) {
		t.Fatalf("HashH and HashB disagree")
	}
}

func TestHashIsZero(t *testing.T) {
	var z Hash
	if !z.IsZero() {
		t.Fatalf("expected zero value hash to report IsZero")
	}
	nz := mustParseHash("01")
	if nz.IsZero() {
		t.Fatalf("expected non-zero hash to report !IsZero")
	}
}
