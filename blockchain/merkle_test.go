// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/scnode/scnode/chainhash"
)

func TestCalcMerkleRootSingleLeaf(t *testing.T) {
	leaf := chainhash.HashH([]byte("only"))
	if got := calcMerkleRoot([]chainhash.Hash{leaf}); got != leaf {
		t.Fatalf("expected a single-leaf tree's root to equal the leaf, got %s", got)
	}
}

func TestCalcMerkleRootDuplicatesOddLevel(t *testing.T) {
	a := chainhash.HashH([]byte("a"))
	b := chainhash.HashH([]byte("b"))
	c := chainhash.HashH([]byte("c"))

	viaOdd := calcMerkleRoot([]chainhash.Hash{a, b, c})
	viaDuplicated := calcMerkleRoot([]chainhash.Hash{a, b, c, c})
	if viaOdd != viaDuplicated {
		t.Fatalf("expected an odd leaf count to duplicate its last leaf, got %s vs %s", viaOdd, viaDuplicated)
	}
}

func TestCalcMerkleRootEmpty(t *testing.T) {
	if got := calcMerkleRoot(nil); got != (chainhash.Hash{}) {
		t.Fatalf("expected the empty tree's root to be the zero hash, got %s", got)
	}
}
