// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines the consensus-relevant network parameters
// consulted throughout block validation: proof-of-work limits and retarget
// windows, subsidy schedule, coinbase/backward-transfer maturity, the
// replay-protection deep-history window, and sidechain epoch-length bounds
// (spec.md §3-§4).
//
// A (typically global) var may be assigned the address of one of the
// standard Params vars for use as the application's "active" network:
//
//	var activeNetParams = chaincfg.MainNetParams()
//
//	func main() {
//	        if *regnet {
//	                activeNetParams = chaincfg.RegNetParams()
//	        }
//	}
package chaincfg
