// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txscript implements the bytecode scripting language and
// evaluator used to gate spending of transaction outputs, per spec.md
// §2 "scripts (bytecode + evaluator)" and §4.4 stage 5, "script
// verification".
package txscript

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/scnode/scnode/chainhash"
	"github.com/scnode/scnode/scutil"
	"github.com/scnode/scnode/wire"
)

// SigHashType represents the signature hash type used to determine which
// parts of a transaction a signature commits to.
type SigHashType uint32

const (
	SigHashAll          SigHashType = 0x1
	SigHashNone         SigHashType = 0x2
	SigHashSingle       SigHashType = 0x3
	SigHashAnyOneCanPay SigHashType = 0x80

	sigHashMask = 0x1f
)

// maxStackSize and maxScriptSize bound resource consumption of the
// evaluator, following the same shape of limit the teacher imposes.
const (
	maxStackSize  = 1000
	maxScriptSize = 10000
)

// BlockAtHeightFunc resolves the main-chain block hash at a given height, as
// seen by the validating context. It backs OP_CHECKBLOCKATHEIGHT.
type BlockAtHeightFunc func(height int32) (chainhash.Hash, bool)

// Engine is a reusable bytecode interpreter for one (signature script,
// public key script) pair belonging to a single transaction input.
type Engine struct {
	scriptSig    []byte
	scriptPubKey []byte
	tx           *wire.MsgTx
	txIdx        int
	sigCache     *SigCache
	blockAtHeight BlockAtHeightFunc

	// tipHeight and deepHistoryWindow back OP_CHECKBLOCKATHEIGHT's deep
	// history exemption (spec.md §6): a reference older than the window
	// always succeeds without consulting blockAtHeight. Left at zero,
	// no height is ever deep enough and every reference is checked
	// against the chain.
	tipHeight         int32
	deepHistoryWindow int32

	stack [][]byte
}

// SetReplayProtectionWindow configures the deep-history exemption that
// OP_CHECKBLOCKATHEIGHT consults, per spec.md §6: "evaluation succeeds if
// height is within the deep history window ... or if the referenced
// block's hash ... matches". tipHeight is the height the evaluating
// context considers the chain tip to be at; window is typically
// chaincfg.Params.ReplayProtectionDeepHistoryWindow.
func (e *Engine) SetReplayProtectionWindow(tipHeight, window int32) {
	e.tipHeight = tipHeight
	e.deepHistoryWindow = window
}

// NewEngine constructs an Engine that will evaluate scriptSig against
// scriptPubKey in the context of spending input txIdx of tx.
func NewEngine(scriptPubKey, scriptSig []byte, tx *wire.MsgTx, txIdx int, sigCache *SigCache, blockAtHeight BlockAtHeightFunc) (*Engine, error) {
	if len(scriptSig) > maxScriptSize || len(scriptPubKey) > maxScriptSize {
		return nil, fmt.Errorf("script size exceeds maximum allowed size")
	}
	if !IsPushOnly(scriptSig) {
		return nil, fmt.Errorf("signature script is not push only")
	}
	if txIdx < 0 || txIdx >= len(tx.TxIn) {
		return nil, fmt.Errorf("transaction input index %d is out of range", txIdx)
	}
	return &Engine{
		scriptSig:     scriptSig,
		scriptPubKey:  scriptPubKey,
		tx:            tx,
		txIdx:         txIdx,
		sigCache:      sigCache,
		blockAtHeight: blockAtHeight,
	}, nil
}

// Execute runs the signature script followed by the public key script and
// returns an error unless the final stack holds a single truthy element.
func (e *Engine) Execute() error {
	if err := e.execScript(e.scriptSig); err != nil {
		return err
	}
	if err := e.execScript(e.scriptPubKey); err != nil {
		return err
	}
	if len(e.stack) == 0 {
		return fmt.Errorf("script evaluated without leaving a result on the stack")
	}
	if !asBool(e.stack[len(e.stack)-1]) {
		return fmt.Errorf("script evaluated to false")
	}
	return nil
}

func (e *Engine) execScript(script []byte) error {
	ops, err := parseScript(script)
	if err != nil {
		return err
	}
	for _, pop := range ops {
		if err := e.step(pop); err != nil {
			return err
		}
		if len(e.stack) > maxStackSize {
			return fmt.Errorf("stack size exceeds maximum allowed size")
		}
	}
	return nil
}

func (e *Engine) push(data []byte) { e.stack = append(e.stack, data) }

func (e *Engine) pop() ([]byte, error) {
	if len(e.stack) == 0 {
		return nil, fmt.Errorf("pop on empty stack")
	}
	v := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	return v, nil
}

func asBool(v []byte) bool {
	for i, b := range v {
		if b != 0 {
			if i == len(v)-1 && b == 0x80 {
				return false
			}
			return true
		}
	}
	return false
}

func (e *Engine) step(pop ParsedOpcode) error {
	switch {
	case pop.Opcode == OP_0:
		e.push(nil)
		return nil

	case pop.Opcode >= OP_DATA_1 && pop.Opcode <= OP_DATA_75,
		pop.Opcode == OP_PUSHDATA1, pop.Opcode == OP_PUSHDATA2, pop.Opcode == OP_PUSHDATA4:
		e.push(pop.Data)
		return nil

	case pop.Opcode == OP_1NEGATE:
		e.push([]byte{0x81})
		return nil

	case pop.Opcode >= OP_1 && pop.Opcode <= OP_16:
		e.push([]byte{pop.Opcode - OP_1 + 1})
		return nil

	case pop.Opcode == OP_NOP:
		return nil

	case pop.Opcode == OP_VERIFY:
		v, err := e.pop()
		if err != nil {
			return err
		}
		if !asBool(v) {
			return fmt.Errorf("OP_VERIFY failed")
		}
		return nil

	case pop.Opcode == OP_RETURN:
		return fmt.Errorf("OP_RETURN encountered")

	case pop.Opcode == OP_DUP:
		if len(e.stack) == 0 {
			return fmt.Errorf("OP_DUP on empty stack")
		}
		e.push(e.stack[len(e.stack)-1])
		return nil

	case pop.Opcode == OP_EQUAL || pop.Opcode == OP_EQUALVERIFY:
		a, err := e.pop()
		if err != nil {
			return err
		}
		b, err := e.pop()
		if err != nil {
			return err
		}
		eq := bytes.Equal(a, b)
		if pop.Opcode == OP_EQUALVERIFY {
			if !eq {
				return fmt.Errorf("OP_EQUALVERIFY failed")
			}
			return nil
		}
		if eq {
			e.push([]byte{1})
		} else {
			e.push(nil)
		}
		return nil

	case pop.Opcode == OP_HASH160:
		v, err := e.pop()
		if err != nil {
			return err
		}
		e.push(scutil.Hash160(v))
		return nil

	case pop.Opcode == OP_HASH256:
		v, err := e.pop()
		if err != nil {
			return err
		}
		h := chainhash.HashH(v)
		e.push(h[:])
		return nil

	case pop.Opcode == OP_CHECKSIG || pop.Opcode == OP_CHECKSIGVERIFY:
		return e.execCheckSig(pop.Opcode == OP_CHECKSIGVERIFY)

	case pop.Opcode == OP_CHECKBLOCKATHEIGHT:
		return e.execCheckBlockAtHeight()

	default:
		return fmt.Errorf("unsupported opcode %s", opcodeName(pop.Opcode))
	}
}

func (e *Engine) execCheckSig(verify bool) error {
	pubKeyBytes, err := e.pop()
	if err != nil {
		return err
	}
	sigBytes, err := e.pop()
	if err != nil {
		return err
	}
	if len(sigBytes) == 0 {
		e.push(nil)
		return nil
	}

	hashType := SigHashType(sigBytes[len(sigBytes)-1])
	rawSig := sigBytes[:len(sigBytes)-1]

	pubKey, err := secp256k1.ParsePubKey(pubKeyBytes)
	if err != nil {
		return fmt.Errorf("invalid public key: %w", err)
	}
	sig, err := ecdsa.ParseDERSignature(rawSig)
	if err != nil {
		return fmt.Errorf("invalid signature: %w", err)
	}

	sigHash, err := CalcSignatureHash(e.scriptPubKey, hashType, e.tx, e.txIdx)
	if err != nil {
		return err
	}

	valid := false
	if e.sigCache != nil && e.sigCache.Exists(sigHash, sig, pubKey) {
		valid = true
	} else if sig.Verify(sigHash[:], pubKey) {
		valid = true
		if e.sigCache != nil {
			e.sigCache.Add(sigHash, sig, pubKey, e.tx)
		}
	}

	if verify {
		if !valid {
			return fmt.Errorf("OP_CHECKSIGVERIFY failed")
		}
		return nil
	}
	if valid {
		e.push([]byte{1})
	} else {
		e.push(nil)
	}
	return nil
}

// execCheckBlockAtHeight implements spec.md §6's replay-protection opcode:
// the stack holds <little-endian height> <32-byte block hash>, the hash on
// top, and the opcode succeeds when either the given height lies at least
// deepHistoryWindow blocks behind tipHeight, or the referenced hash is the
// main-chain block at that height.
func (e *Engine) execCheckBlockAtHeight() error {
	hashBytes, err := e.pop()
	if err != nil {
		return err
	}
	heightBytes, err := e.pop()
	if err != nil {
		return err
	}
	if len(hashBytes) != chainhash.HashSize {
		return fmt.Errorf("OP_CHECKBLOCKATHEIGHT block hash must be %d bytes", chainhash.HashSize)
	}
	if len(heightBytes) == 0 || len(heightBytes) > 4 {
		return fmt.Errorf("OP_CHECKBLOCKATHEIGHT height encoding out of range")
	}

	var padded [4]byte
	copy(padded[:], heightBytes)
	height := int32(binary.LittleEndian.Uint32(padded[:]))

	if e.deepHistoryWindow > 0 && IsReplayProtected(height, e.tipHeight, int64(e.deepHistoryWindow)) {
		e.push([]byte{1})
		return nil
	}

	if e.blockAtHeight == nil {
		return fmt.Errorf("OP_CHECKBLOCKATHEIGHT has no chain context to verify against")
	}
	var want chainhash.Hash
	copy(want[:], hashBytes)

	got, ok := e.blockAtHeight(height)
	if !ok || !got.IsEqual(&want) {
		e.push(nil)
		return fmt.Errorf("OP_CHECKBLOCKATHEIGHT: height %d does not resolve to the referenced block", height)
	}
	e.push([]byte{1})
	return nil
}

// CalcSignatureHash computes the digest that a signature over the given
// input of tx must commit to, given the referenced output's scriptPubKey
// (used as the substituted scriptCode) and sighash type. It follows the
// legacy Bitcoin/Decred sighash algorithm: other inputs' signature scripts
// are blanked, outputs are trimmed or preserved according to hashType, and
// the result is serialized with the hash type appended before hashing.
func CalcSignatureHash(scriptCode []byte, hashType SigHashType, tx *wire.MsgTx, idx int) (chainhash.Hash, error) {
	if idx < 0 || idx >= len(tx.TxIn) {
		return chainhash.Hash{}, fmt.Errorf("signature hash index %d is out of range", idx)
	}

	txCopy := tx.Copy()
	for i := range txCopy.TxIn {
		if i == idx {
			txCopy.TxIn[i].SignatureScript = scriptCode
		} else {
			txCopy.TxIn[i].SignatureScript = nil
		}
	}

	switch hashType & sigHashMask {
	case SigHashNone:
		txCopy.TxOut = nil
		for i := range txCopy.TxIn {
			if i != idx {
				txCopy.TxIn[i].Sequence = 0
			}
		}
	case SigHashSingle:
		if idx >= len(txCopy.TxOut) {
			return chainhash.Hash{}, fmt.Errorf("SigHashSingle index %d out of bounds for outputs", idx)
		}
		txCopy.TxOut = txCopy.TxOut[:idx+1]
		for i := range txCopy.TxOut[:idx] {
			txCopy.TxOut[i].Value = -1
			txCopy.TxOut[i].PkScript = nil
		}
		for i := range txCopy.TxIn {
			if i != idx {
				txCopy.TxIn[i].Sequence = 0
			}
		}
	}

	if hashType&SigHashAnyOneCanPay != 0 {
		txCopy.TxIn = []*wire.TxIn{txCopy.TxIn[idx]}
	}

	raw, err := txCopy.Serialize()
	if err != nil {
		return chainhash.Hash{}, err
	}
	var buf bytes.Buffer
	buf.Write(raw)
	var hashTypeBytes [4]byte
	binary.LittleEndian.PutUint32(hashTypeBytes[:], uint32(hashType))
	buf.Write(hashTypeBytes[:])

	return chainhash.HashH(buf.Bytes()), nil
}
