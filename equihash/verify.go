// Copyright (c) 2016-2021 The Zcash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package equihash

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// SolutionIndicesFromBytes decodes a block header's packed equihash solution
// byte string into the index vector ValidateSolution expects.
func SolutionIndicesFromBytes(n, k int, solution []byte) ([]int, error) {
	indicesLen := 8 * len(solution) / (collisionLength(n, k) + 1)
	bitLen := collisionLength(n, k) + 1
	expanded, err := expandArray(solution, indicesLen*4, bitLen, 4-(bitLen+7)/8)
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(expanded)
	indices := make([]int, indicesLen)
	for i := range indices {
		var v uint32
		if err := binary.Read(r, binary.BigEndian, &v); err != nil {
			return nil, fmt.Errorf("decode equihash solution index %d: %w", i, err)
		}
		indices[i] = int(v)
	}
	return indices, nil
}

// VerifyBlockSolution verifies a block header's equihash proof of work
// solution against the given (N, K) parameters, per spec.md §4.5 step 3a
// "equihash solution verification".
func VerifyBlockSolution(n, k int, headerBytes []byte, solution []byte) (bool, error) {
	indices, err := SolutionIndicesFromBytes(n, k, solution)
	if err != nil {
		return false, err
	}
	return ValidateSolution(n, k, headerBytes, indices)
}
