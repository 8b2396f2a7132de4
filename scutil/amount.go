// Copyright (c) 2013, 2014 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package scutil provides monetary amount and address-hashing primitives
// shared by the validation, mempool, and sidechain packages.
package scutil

import (
	"errors"
	"math"
	"strconv"
)

// AmountUnit describes a method of converting an Amount to something other
// than the base unit (zatoshi).
type AmountUnit int

// These constants define the amount units that Amount.Format and
// Amount.ToUnit support.
const (
	AmountMegaCoin  AmountUnit = 6
	AmountKiloCoin  AmountUnit = 3
	AmountCoin      AmountUnit = 0
	AmountMilliCoin AmountUnit = -3
	AmountMicroCoin AmountUnit = -6
	AmountZatoshi   AmountUnit = -8
)

// String returns the unit as a string.
func (u AmountUnit) String() string {
	switch u {
	case AmountMegaCoin:
		return "MCOIN"
	case AmountKiloCoin:
		return "kCOIN"
	case AmountCoin:
		return "COIN"
	case AmountMilliCoin:
		return "mCOIN"
	case AmountMicroCoin:
		return "μCOIN"
	case AmountZatoshi:
		return "Zatoshi"
	default:
		return "1e" + strconv.FormatInt(int64(u), 10) + " COIN"
	}
}

// AmountsPerCoin is the number of smallest units (zatoshi) in one whole coin.
const AmountsPerCoin = 1e8

// MaxAmount is the maximum transaction amount allowed in zatoshi, matching
// spec.md §3's "valid range [0, MAX_MONEY]".
const MaxAmount = 21e6 * AmountsPerCoin

// ErrAmountRange indicates a value fell outside [0, MaxAmount] or that a sum
// of amounts overflowed that range.
var ErrAmountRange = errors.New("amount out of range")

// Amount represents the base coin monetary unit (zatoshi). A single Amount is
// equal to 1 / AmountsPerCoin of a coin.
type Amount int64

// round converts a floating point number, which may or may not be negative,
// to its nearest integer value, which may or may not be negative.
func round(f float64) Amount {
	if f < 0 {
		return Amount(f - 0.5)
	}
	return Amount(f + 0.5)
}

// NewAmount creates an Amount from a floating point value representing
// whole coins. NewAmount errors if f is NaN or +-Infinity, but does not
// check that the amount is within the valid monetary range.
func NewAmount(f float64) (Amount, error) {
	switch {
	case math.IsNaN(f):
		fallthrough
	case math.IsInf(f, 1):
		fallthrough
	case math.IsInf(f, -1):
		return 0, errors.New("invalid coin amount")
	}
	return round(f * AmountsPerCoin), nil
}

// InRange reports whether a represents a value within the consensus-valid
// [0, MaxAmount] range.
func (a Amount) InRange() bool {
	return a >= 0 && a <= MaxAmount
}

// SumInRange sums amounts, returning ErrAmountRange if any partial sum or
// the final total leaves the valid [0, MaxAmount] range. Spec.md §3 requires
// that "sums must stay in range or validation fails".
func SumInRange(amounts ...Amount) (Amount, error) {
	var total Amount
	for _, a := range amounts {
		if !a.InRange() {
			return 0, ErrAmountRange
		}
		total += a
		if !total.InRange() {
			return 0, ErrAmountRange
		}
	}
	return total, nil
}

// ToUnit converts a monetary amount counted in base units to a floating
// point value representing an amount of the given units.
func (a Amount) ToUnit(u AmountUnit) float64 {
	return float64(a) / math.Pow10(int(u+8))
}

// ToCoin is a convenience function for ToUnit(AmountCoin).
func (a Amount) ToCoin() float64 {
	return a.ToUnit(AmountCoin)
}

// Format formats a monetary amount counted in base units as a string for a
// given unit.
func (a Amount) Format(u AmountUnit) string {
	units := " " + u.String()
	formatted := strconv.FormatFloat(a.ToUnit(u), 'f', -int(u+8), 64)
	return formatted + units
}

// String is the equivalent of calling Format with AmountCoin.
func (a Amount) String() string {
	return a.Format(AmountCoin)
}

// MulF64 multiplies an Amount by a floating point value, rounding to the
// nearest Amount.
func (a Amount) MulF64(f float64) Amount {
	return round(float64(a) * f)
}
