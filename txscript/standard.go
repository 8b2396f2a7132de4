// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import "github.com/scnode/scnode/scutil"

// ScriptClass identifies the recognized standard script forms.
type ScriptClass byte

const (
	// NonStandardTy is a script that doesn't match any of the recognized
	// standard forms.
	NonStandardTy ScriptClass = iota

	// PubKeyHashTy is a standard pay-to-pubkey-hash script.
	PubKeyHashTy

	// ScriptHashTy is a standard pay-to-script-hash script.
	ScriptHashTy

	// NullDataTy is a provably unspendable OP_RETURN data carrier.
	NullDataTy
)

func (c ScriptClass) String() string {
	switch c {
	case PubKeyHashTy:
		return "pubkeyhash"
	case ScriptHashTy:
		return "scripthash"
	case NullDataTy:
		return "nulldata"
	default:
		return "nonstandard"
	}
}

// opDataPush20 is the push opcode for a 20-byte datum, the overwhelmingly
// common case for address scripts.
const opDataPush20 = 0x14

var errInvalidHashLen = errLen("pubkey hash must be 20 bytes")

type errLen string

func (e errLen) Error() string { return string(e) }

// PayToAddrScript creates a standard pay-to-pubkey-hash script that pays
// to the given 20-byte hash160.
func PayToAddrScript(pkHash []byte) ([]byte, error) {
	if len(pkHash) != 20 {
		return nil, errInvalidHashLen
	}
	script := make([]byte, 0, 25)
	script = append(script, OP_DUP, OP_HASH160, opDataPush20)
	script = append(script, pkHash...)
	script = append(script, OP_EQUALVERIFY, OP_CHECKSIG)
	return script, nil
}

// ExtractPubKeyHash returns the 20-byte hash encumbering a standard
// pay-to-pubkey-hash script, or nil if script does not match that form.
func ExtractPubKeyHash(script []byte) []byte {
	if len(script) == 25 &&
		script[0] == OP_DUP &&
		script[1] == OP_HASH160 &&
		script[2] == opDataPush20 &&
		script[23] == OP_EQUALVERIFY &&
		script[24] == OP_CHECKSIG {
		return script[3:23]
	}
	return nil
}

// ExtractScriptHash returns the 20-byte hash encumbering a standard
// pay-to-script-hash script, or nil if script does not match that form.
func ExtractScriptHash(script []byte) []byte {
	if len(script) == 23 &&
		script[0] == OP_HASH160 &&
		script[1] == opDataPush20 &&
		script[22] == OP_EQUAL {
		return script[2:22]
	}
	return nil
}

// GetScriptClass classifies a script into one of the recognized standard
// forms, used by the admission pipeline's standardness policy checks
// (spec.md §4.4, policy layer).
func GetScriptClass(script []byte) ScriptClass {
	switch {
	case ExtractPubKeyHash(script) != nil:
		return PubKeyHashTy
	case ExtractScriptHash(script) != nil:
		return ScriptHashTy
	case len(script) >= 1 && script[0] == OP_RETURN:
		return NullDataTy
	default:
		return NonStandardTy
	}
}

// PayToScriptHashScript builds a standard pay-to-script-hash script that
// pays to the hash160 of redeemScript.
func PayToScriptHashScript(redeemScript []byte) []byte {
	h := scutil.Hash160(redeemScript)
	script := make([]byte, 0, 23)
	script = append(script, OP_HASH160, opDataPush20)
	script = append(script, h...)
	script = append(script, OP_EQUAL)
	return script
}

// IsUnspendable returns whether the passed public key script is
// unspendable, or guaranteed to fail at execution. This allows inputs to be
// pruned instantly when entering the coin view rather than leaving them to
// be swept up by the unspendable output pruning that occurs during the next
// block connect.
func IsUnspendable(pkScript []byte) bool {
	pops, err := parseScript(pkScript)
	if err != nil {
		return true
	}
	return len(pops) > 0 && pops[0].Opcode == OP_RETURN
}

// maxPubKeysPerMultiSig bounds the signature-operation weight charged to an
// OP_CHECKMULTISIG that is not preceded by a small immediate pushing its
// key count, mirroring the conservative accounting the teacher's upstream
// uses for non-analyzable multisig scripts.
const maxPubKeysPerMultiSig = 20

// GetSigOpCount returns a script's signature-operation count, used by the
// context-free block-size rule (spec.md §4.4 stage 1, "sigop budget") to
// bound the cost of script verification independent of byte size.
// An OP_CHECKMULTISIG directly preceded by OP_1..OP_16 is charged that key
// count; any other OP_CHECKMULTISIG is charged maxPubKeysPerMultiSig.
func GetSigOpCount(script []byte) int {
	pops, err := parseScript(script)
	if err != nil {
		return 0
	}
	count := 0
	for i, pop := range pops {
		switch pop.Opcode {
		case OP_CHECKSIG, OP_CHECKSIGVERIFY, OP_CHECKSIGALT, OP_CHECKSIGALTVERIFY:
			count++
		case OP_CHECKMULTISIG, OP_CHECKMULTISIGVERIFY:
			if i > 0 && pops[i-1].Opcode >= OP_1 && pops[i-1].Opcode <= OP_16 {
				count += int(pops[i-1].Opcode-OP_1) + 1
			} else {
				count += maxPubKeysPerMultiSig
			}
		}
	}
	return count
}
