// Copyright (c) 2016-2021 The Zcash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coinview

import "github.com/scnode/scnode/chainhash"

// Anchor is the commitment-tree snapshot recorded under a root, per
// spec.md §4.1's "get_anchor(root) -> the commitment-tree snapshot or
// missing". A shielded joinsplit's Anchor field must resolve to one of
// these to be admissible (spec.md §4.4 stage 6).
type Anchor struct {
	// Root is the merkle root of the commitment tree at the snapshot
	// point. It is also the map key under which the anchor is stored, but
	// is kept on the struct so callers that enumerate anchors don't need
	// to carry the key separately.
	Root chainhash.Hash

	// CommitmentCount is the number of commitments appended to the tree
	// up to and including this snapshot, letting a cache invalidate or
	// rebuild a tree incrementally rather than replaying from genesis.
	CommitmentCount uint64
}

// EmptyAnchor is the anchor of the commitment tree before any shielded
// output has ever been added, i.e. the tree every chain starts with.
var EmptyAnchor = Anchor{}
