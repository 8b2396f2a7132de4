// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math/big"
	"time"

	"github.com/decred/dcrd/blockchain/standalone/v2"

	"github.com/scnode/scnode/chainhash"
)

// bigZero is 0 represented as a big.Int. It is defined here to avoid the
// overhead of creating it multiple times.
var bigZero = big.NewInt(0)

// findPrevTestNetDifficulty returns the difficulty of the previous block
// which did not have the special reduced-difficulty rule applied.
//
// This function MUST be called with the chain state lock held (for writes).
func (c *ChainContext) findPrevTestNetDifficulty(startNode *blockNode) uint32 {
	blocksPerRetarget := c.params.WorkDiffWindowSize * c.params.WorkDiffWindows
	iterNode := startNode
	for iterNode != nil && iterNode.height%blocksPerRetarget != 0 &&
		iterNode.bits == c.params.PowLimitBits {

		iterNode = iterNode.parent
	}

	lastBits := c.params.PowLimitBits
	if iterNode != nil {
		lastBits = iterNode.bits
	}
	return lastBits
}

// calcNextRequiredDifficulty calculates the required proof-of-work
// difficulty for the block after the passed previous block node, per
// spec.md §4.5 step 3a's reference to the retarget rule.
//
// This function MUST be called with the chain state lock held (for writes).
func (c *ChainContext) calcNextRequiredDifficulty(prevNode *blockNode, newBlockTime time.Time) uint32 {
	if prevNode == nil {
		return c.params.PowLimitBits
	}

	params := c.params
	nextHeight := prevNode.height + 1

	if nextHeight%params.WorkDiffWindowSize != 0 {
		if params.ReduceMinDifficulty {
			reductionTime := params.MinDiffReductionTime
			allowMinTime := prevNode.timestamp + reductionTime
			if newBlockTime.Unix() > allowMinTime {
				return params.PowLimitBits
			}
			return c.findPrevTestNetDifficulty(prevNode)
		}
		return prevNode.bits
	}

	oldDiffBig := standalone.CompactToBig(prevNode.bits)

	raf := big.NewInt(params.RetargetAdjustmentFactor)
	nextDiffBigMin := new(big.Int).Div(oldDiffBig, raf)
	nextDiffBigMax := new(big.Int).Mul(oldDiffBig, raf)

	nodesToTraverse := params.WorkDiffWindowSize * params.WorkDiffWindows

	var olderTime, windowPeriod int64
	var weights uint64
	oldNode := prevNode
	recentTime := prevNode.timestamp
	windowChanges := make([]*big.Int, params.WorkDiffWindows)

	const alpha = 3

	for i := int64(0); ; i++ {
		if i%params.WorkDiffWindowSize == 0 && i != 0 {
			olderTime = oldNode.timestamp
			timeDifference := recentTime - olderTime
			if oldNode.height == 0 {
				timeDifference = params.TargetTimePerBlock * params.WorkDiffWindowSize
			}

			timeDifBig := big.NewInt(timeDifference)
			timeDifBig.Lsh(timeDifBig, 32)
			targetTemp := big.NewInt(params.TargetTimePerBlock * params.WorkDiffWindowSize)

			windowAdjusted := new(big.Int).Div(timeDifBig, targetTemp)
			windowAdjusted.Lsh(windowAdjusted, uint((params.WorkDiffWindows-windowPeriod)*alpha))

			weights += 1 << uint64((params.WorkDiffWindows-windowPeriod)*alpha)
			windowChanges[windowPeriod] = windowAdjusted
			windowPeriod++
			recentTime = olderTime
		}

		if i == nodesToTraverse {
			break
		}

		tempNode := oldNode
		oldNode = oldNode.parent
		if oldNode == nil {
			oldNode = tempNode
		}
	}

	weightedSum := big.NewInt(0)
	for i := int64(0); i < params.WorkDiffWindows; i++ {
		weightedSum.Add(weightedSum, windowChanges[i])
	}

	weightsBig := big.NewInt(int64(weights))
	weightedSumDiv := weightedSum.Div(weightedSum, weightsBig)

	nextDiffBig := weightedSumDiv.Mul(weightedSumDiv, oldDiffBig)
	nextDiffBig = nextDiffBig.Rsh(nextDiffBig, 32)

	switch {
	case oldDiffBig.Cmp(bigZero) == 0:
		// Should never happen; leave nextDiffBig as computed.
	case nextDiffBig.Cmp(bigZero) == 0:
		nextDiffBig.Set(params.PowLimit)
	case nextDiffBig.Cmp(nextDiffBigMax) > 0:
		nextDiffBig.Set(nextDiffBigMax)
	case nextDiffBig.Cmp(nextDiffBigMin) < 0:
		nextDiffBig.Set(nextDiffBigMin)
	}

	if nextDiffBig.Cmp(params.PowLimit) > 0 {
		nextDiffBig.Set(params.PowLimit)
	}

	nextDiffBits := standalone.BigToCompact(nextDiffBig)
	log.Debugf("Difficulty retarget at block height %d", prevNode.height+1)
	log.Debugf("Old target %08x (%064x)", prevNode.bits, oldDiffBig)
	log.Debugf("New target %08x (%064x)", nextDiffBits, standalone.CompactToBig(nextDiffBits))

	return nextDiffBits
}

// CalcNextRequiredDifficulty calculates the required difficulty for the
// block after the given block based on the difficulty retarget rules.
//
// This function is safe for concurrent access.
func (c *ChainContext) CalcNextRequiredDifficulty(hash *chainhash.Hash, timestamp time.Time) (uint32, error) {
	node := c.index.LookupNode(hash)
	if node == nil {
		return 0, unknownBlockError(hash)
	}

	c.chainLock.Lock()
	difficulty := c.calcNextRequiredDifficulty(node, timestamp)
	c.chainLock.Unlock()
	return difficulty, nil
}
