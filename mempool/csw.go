// Copyright (c) 2018-2021 The Horizen developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"github.com/jrick/bitset"

	"github.com/scnode/scnode/chainhash"
)

// cswCapTracker enforces spec.md §4.3's per-sidechain CSW count cap
// (SC_MAX_NUM_OF_CSW_INPUTS_IN_MEMPOOL) with a fixed-size bitset of slot
// indices per scid, rather than just counting entries in scidEntry's
// CswByNullifier map: a bitset gives admission an O(1) "is there a free
// slot" test independent of map iteration order, and frees a specific
// slot back to the pool on removal instead of merely decrementing a
// counter, so a sidechain that churns csw inputs never accumulates
// fragmentation in which slot indices are considered free.
type cswCapTracker struct {
	max  int
	sets map[chainhash.Hash]bitset.Bytes
	// slotOf records which slot index a given (scid, nullifier) pair
	// occupies, so Release can find it without scanning.
	slotOf map[chainhash.Hash]map[[32]byte]int
}

func newCswCapTracker(max int) *cswCapTracker {
	return &cswCapTracker{
		max:    max,
		sets:   make(map[chainhash.Hash]bitset.Bytes),
		slotOf: make(map[chainhash.Hash]map[[32]byte]int),
	}
}

// Count reports how many csw slots are currently claimed for scid.
func (t *cswCapTracker) Count(scid chainhash.Hash) int {
	set, ok := t.sets[scid]
	if !ok {
		return 0
	}
	n := 0
	for i := 0; i < t.max; i++ {
		if set.Get(i) {
			n++
		}
	}
	return n
}

// Full reports whether scid has no free csw slot, per the
// SC_MAX_NUM_OF_CSW_INPUTS_IN_MEMPOOL cap. A zero max means uncapped.
func (t *cswCapTracker) Full(scid chainhash.Hash) bool {
	if t.max <= 0 {
		return false
	}
	return t.Count(scid) >= t.max
}

// Claim reserves the lowest free slot for nullifier under scid, reporting
// false if the cap is already exhausted.
func (t *cswCapTracker) Claim(scid chainhash.Hash, nullifier [32]byte) bool {
	if t.max <= 0 {
		return true
	}
	set, ok := t.sets[scid]
	if !ok {
		set = bitset.NewBytes(t.max)
		t.sets[scid] = set
	}
	for i := 0; i < t.max; i++ {
		if !set.Get(i) {
			set.Set(i)
			if t.slotOf[scid] == nil {
				t.slotOf[scid] = make(map[[32]byte]int)
			}
			t.slotOf[scid][nullifier] = i
			return true
		}
	}
	return false
}

// Release frees nullifier's slot under scid.
func (t *cswCapTracker) Release(scid chainhash.Hash, nullifier [32]byte) {
	set, ok := t.sets[scid]
	if !ok {
		return
	}
	slot, ok := t.slotOf[scid][nullifier]
	if !ok {
		return
	}
	set.Unset(slot)
	delete(t.slotOf[scid], nullifier)
	if len(t.slotOf[scid]) == 0 {
		delete(t.slotOf, scid)
		delete(t.sets, scid)
	}
}
