// Copyright (c) 2018-2021 The Horizen developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import "github.com/scnode/scnode/chainhash"

// certSlot is one pending certificate's entry in a (scid, epoch)'s
// quality-ranked table.
type certSlot struct {
	Hash    chainhash.Hash
	Quality uint64
}

// certIndex is the mempool-only half of spec.md §4.3's
// "certs_by_(epoch,quality)" index: unlike coinview.SidechainRecord's
// TopCertByEpoch, which only ever needs the single winning entry once a
// certificate confirms, the mempool must keep every pending certificate
// for an epoch ranked so that removing the top-quality one exposes
// exactly which runner-up becomes top-quality next (SPEC_FULL.md §3's
// "what is the current second-best certificate" supplemented feature).
type certIndex struct {
	byEpoch map[uint32][]certSlot
}

func newCertIndex() *certIndex {
	return &certIndex{byEpoch: make(map[uint32][]certSlot)}
}

// Insert adds hash at quality into epoch's ranked slice, keeping it
// sorted ascending by quality to match spec.md §4.5 step 3d's canonical
// within-block ordering ("ascending quality for each (scid, epoch)
// group").
func (idx *certIndex) Insert(epoch uint32, hash chainhash.Hash, quality uint64) {
	slots := idx.byEpoch[epoch]
	i := 0
	for i < len(slots) && slots[i].Quality <= quality {
		i++
	}
	slots = append(slots, certSlot{})
	copy(slots[i+1:], slots[i:])
	slots[i] = certSlot{Hash: hash, Quality: quality}
	idx.byEpoch[epoch] = slots
}

// Remove deletes hash from epoch's ranked slice. It reports whether hash
// was the top-quality (last) entry before removal, and the hash that
// becomes top-quality afterward (the zero hash and false if none
// remains), so callers can re-fire BWT_ON/BWT_OFF notifications for the
// newly-promoted certificate per spec.md §4.5 step 4.
func (idx *certIndex) Remove(epoch uint32, hash chainhash.Hash) (wasTop bool, newTop chainhash.Hash, hasNewTop bool) {
	slots := idx.byEpoch[epoch]
	for i, slot := range slots {
		if slot.Hash != hash {
			continue
		}
		wasTop = i == len(slots)-1
		slots = append(slots[:i], slots[i+1:]...)
		if len(slots) == 0 {
			delete(idx.byEpoch, epoch)
		} else {
			idx.byEpoch[epoch] = slots
		}
		if wasTop && len(slots) > 0 {
			return true, slots[len(slots)-1].Hash, true
		}
		return wasTop, chainhash.Hash{}, false
	}
	return false, chainhash.Hash{}, false
}

// Top returns the current top-quality certificate hash for epoch, if any.
func (idx *certIndex) Top(epoch uint32) (chainhash.Hash, bool) {
	slots := idx.byEpoch[epoch]
	if len(slots) == 0 {
		return chainhash.Hash{}, false
	}
	return slots[len(slots)-1].Hash, true
}

// IsTopQuality reports whether hash currently holds the top slot for
// epoch.
func (idx *certIndex) IsTopQuality(epoch uint32, hash chainhash.Hash) bool {
	top, ok := idx.Top(epoch)
	return ok && top == hash
}

// BelowOrEqual returns every hash in epoch ranked at or below quality,
// for spec.md §4.3's block-connect conflict removal ("remove every
// mempool certificate for the same (scid, epoch) whose quality is ≤
// c.quality").
func (idx *certIndex) BelowOrEqual(epoch uint32, quality uint64) []chainhash.Hash {
	var out []chainhash.Hash
	for _, slot := range idx.byEpoch[epoch] {
		if slot.Quality <= quality {
			out = append(out, slot.Hash)
		}
	}
	return out
}

// Epochs returns every epoch with at least one pending certificate.
func (idx *certIndex) Epochs() []uint32 {
	out := make([]uint32, 0, len(idx.byEpoch))
	for epoch := range idx.byEpoch {
		out = append(out, epoch)
	}
	return out
}

// All returns every pending hash across every epoch, for scid-level
// descendant removal.
func (idx *certIndex) All() []chainhash.Hash {
	var out []chainhash.Hash
	for _, slots := range idx.byEpoch {
		for _, s := range slots {
			out = append(out, s.Hash)
		}
	}
	return out
}
