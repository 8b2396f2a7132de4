// Copyright (c) 2016-2021 The Zcash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"encoding/binary"

	"github.com/scnode/scnode/chainhash"
)

// NewCheckBlockAtHeightScript builds the canonical replay-protection
// scriptPubKey suffix described in spec.md §6: a push of the little-endian
// block height followed by a push of that block's hash and the
// OP_CHECKBLOCKATHEIGHT opcode. Wallets and the sidechain-facing scripts
// append this after their primary encumbrance so that a transaction can
// only be replayed on a chain that shares the referenced history.
func NewCheckBlockAtHeightScript(height int32, blockHash [32]byte) []byte {
	heightBytes := minimalHeightEncoding(height)

	script := make([]byte, 0, 1+len(heightBytes)+1+32+1)
	script = append(script, byte(len(heightBytes)))
	script = append(script, heightBytes...)
	script = append(script, 32)
	script = append(script, blockHash[:]...)
	script = append(script, OP_CHECKBLOCKATHEIGHT)
	return script
}

// minimalHeightEncoding returns the smallest little-endian byte encoding of
// a non-negative height, dropping trailing zero bytes the way script number
// encoding requires so that two semantically-equal heights never produce
// two different pushes.
func minimalHeightEncoding(height int32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(height))

	n := 4
	for n > 1 && buf[n-1] == 0 {
		n--
	}
	return buf[:n]
}

// IsReplayProtected reports whether height lies at least
// deepHistoryWindow blocks behind tip, the minimum depth spec.md §6
// requires before a block may be referenced by OP_CHECKBLOCKATHEIGHT.
func IsReplayProtected(height, tip int32, deepHistoryWindow int64) bool {
	return int64(tip-height) >= deepHistoryWindow
}

// StripCheckBlockAtHeightSuffix recognizes a script built by
// NewCheckBlockAtHeightScript appended to some other encumbrance, and
// returns that encumbrance's script with the replay-protection suffix
// removed. ok is false if script does not end in the recognized
// <height-push> <hash-push> OP_CHECKBLOCKATHEIGHT form, used by the
// standardness policy (spec.md §4.4 stage 2) to classify replay-protected
// variants of the standard templates.
func StripCheckBlockAtHeightSuffix(script []byte) (prefix []byte, ok bool) {
	ops, err := parseScript(script)
	if err != nil || len(ops) < 3 {
		return nil, false
	}
	last := ops[len(ops)-1]
	heightPush := ops[len(ops)-3]
	hashPush := ops[len(ops)-2]
	if last.Opcode != OP_CHECKBLOCKATHEIGHT {
		return nil, false
	}
	if heightPush.Opcode < OP_DATA_1 || heightPush.Opcode > OP_DATA_75 ||
		hashPush.Opcode < OP_DATA_1 || hashPush.Opcode > OP_DATA_75 {
		return nil, false
	}
	if len(hashPush.Data) != chainhash.HashSize || len(heightPush.Data) == 0 || len(heightPush.Data) > 4 {
		return nil, false
	}
	suffixLen := (1 + len(heightPush.Data)) + (1 + len(hashPush.Data)) + 1
	if suffixLen > len(script) {
		return nil, false
	}
	return script[:len(script)-suffixLen], true
}
