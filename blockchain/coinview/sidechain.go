// Copyright (c) 2018-2021 The Horizen developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coinview

import (
	"github.com/scnode/scnode/chainhash"
	"github.com/scnode/scnode/wire"
)

// SidechainState is the coarse lifecycle state of a sidechain record, per
// spec.md §4.2's state-transition rules.
type SidechainState uint8

const (
	// SidechainAlive is the state a sidechain is created into and stays
	// in until its scheduled cease event fires.
	SidechainAlive SidechainState = iota
	// SidechainCeased is the terminal state: no further forward
	// transfers, mbtrs, or certificates are admissible; only csw inputs
	// draining its remaining balance are.
	SidechainCeased
)

func (s SidechainState) String() string {
	switch s {
	case SidechainAlive:
		return "ALIVE"
	case SidechainCeased:
		return "CEASED"
	default:
		return "UNKNOWN"
	}
}

// CertTableEntry is one (epoch, quality) slot of a sidechain's certificate
// table, per spec.md §4.3's "certs_by_(epoch,quality)" index and §4.2's
// quality ordering rule.
type CertTableEntry struct {
	Epoch   uint32
	Quality uint64
	Hash    [32]byte
}

// SidechainRecord is the durable state the coin view stores per scid, the
// data half of the sidechain registry (spec.md §4.1's get_sidechain /
// §4.2's state machine). The blockchain/sidechain package owns the
// transition logic that produces new values of this type; coinview only
// stores and serves them as part of the layered view contract.
type SidechainRecord struct {
	Scid chainhash.Hash

	State SidechainState

	CreatingTxHash        chainhash.Hash
	CreationHeight        int64
	WithdrawalEpochLength uint32

	Balance int64

	// LastReferencedHeight is the mainchain height pinned by the most
	// recently applied certificate's end-epoch cumulative commitment
	// root, used to enforce strict referenced-height monotonicity for
	// non-ceasing sidechains (spec.md §4.2).
	LastReferencedHeight int64

	// CeaseHeight is the scheduled height at which the cease event fires
	// for a ceasing sidechain (WithdrawalEpochLength > 0). Zero for
	// non-ceasing sidechains, which never cease on a schedule.
	CeaseHeight int64

	CurrentForwardTransferMinFee int64
	CurrentBwtRequestMinFee      int64

	CertVerificationKey   []byte
	CeasedVerificationKey []byte
	CustomFieldConfigs    []wire.CustomFieldConfig
	MbtrDataLength        uint8

	// TopCertByEpoch records, for every epoch with at least one confirmed
	// certificate, the currently-winning (highest quality) entry.
	TopCertByEpoch map[uint32]CertTableEntry

	// CswTotalWithdrawn is the cumulative amount drained via confirmed
	// csw inputs, enforced against Balance by the CSW cap rule (spec.md
	// §4.3 "CSW cap per sidechain").
	CswTotalWithdrawn int64
}

// Clone returns a deep copy suitable for mutation by a cache overlay.
func (s *SidechainRecord) Clone() *SidechainRecord {
	if s == nil {
		return nil
	}
	clone := *s
	clone.CustomFieldConfigs = append([]wire.CustomFieldConfig(nil), s.CustomFieldConfigs...)
	clone.CertVerificationKey = append([]byte(nil), s.CertVerificationKey...)
	clone.CeasedVerificationKey = append([]byte(nil), s.CeasedVerificationKey...)
	clone.TopCertByEpoch = make(map[uint32]CertTableEntry, len(s.TopCertByEpoch))
	for k, v := range s.TopCertByEpoch {
		clone.TopCertByEpoch[k] = v
	}
	return &clone
}

// IsNonCeasing reports whether the sidechain was created with a
// withdrawal epoch length of zero, per the GLOSSARY's "non-ceasing
// sidechain" definition.
func (s *SidechainRecord) IsNonCeasing() bool {
	return s.WithdrawalEpochLength == 0
}
