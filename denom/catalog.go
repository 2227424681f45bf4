// Package denom defines the fixed denomination catalog PrivateSend mixes
// against and the amount predicates built on top of it (spec.md §4.A). The
// set is a process-wide constant: the core never chooses it, only consults
// it.
package denom

import "github.com/decred/dcrd/dcrutil/v4"

// Denom identifies one of the standard denominations.
type Denom int

// standard is the fixed, ordered (largest first) set of denominations, in
// atoms. Mirrors PrivateSend's 10 / 1 / 0.1 / 0.01 / 0.001 ladder.
var standard = []dcrutil.Amount{
	10 * dcrutil.AmountPerCoin,
	1 * dcrutil.AmountPerCoin,
	dcrutil.AmountPerCoin / 10,
	dcrutil.AmountPerCoin / 100,
	dcrutil.AmountPerCoin / 1000,
}

const (
	// MinCollateral is the smallest amount the collateral predicate
	// accepts.
	MinCollateral dcrutil.Amount = dcrutil.Amount(dcrutil.AmountPerCoin / 1000 / 10)

	// MaxCollateral is the largest amount the collateral predicate
	// accepts, and the size create_denominated places for
	// also_create_collateral_output.
	MaxCollateral dcrutil.Amount = MinCollateral * 4
)

// All returns the denomination ladder, largest first. The returned slice is
// a defensive copy; callers must not mutate the catalog.
func All() []dcrutil.Amount {
	out := make([]dcrutil.Amount, len(standard))
	copy(out, standard)
	return out
}

// Largest returns the largest standard denomination.
func Largest() dcrutil.Amount { return standard[0] }

// Smallest returns the smallest standard denomination.
func Smallest() dcrutil.Amount { return standard[len(standard)-1] }

// IsDenominatedAmount reports whether v is exactly one of the standard
// denominations.
func IsDenominatedAmount(v dcrutil.Amount) bool {
	_, ok := indexOf(v)
	return ok
}

// DenominationOf returns the Denom index (0 == largest) for v, or false if v
// is not a standard denomination.
func DenominationOf(v dcrutil.Amount) (Denom, bool) {
	i, ok := indexOf(v)
	return Denom(i), ok
}

// AmountOf returns the amount for denomination d.
func AmountOf(d Denom) dcrutil.Amount {
	return standard[int(d)]
}

func indexOf(v dcrutil.Amount) (int, bool) {
	for i, d := range standard {
		if d == v {
			return i, true
		}
	}
	return 0, false
}

// IsCollateralAmount reports whether v falls within [MinCollateral,
// MaxCollateral]. Collateral amounts are deliberately never a standard
// denomination so coordinators (and chain observers) can't mistake a
// collateral UTXO for a mixed one.
func IsCollateralAmount(v dcrutil.Amount) bool {
	return v >= MinCollateral && v <= MaxCollateral && !IsDenominatedAmount(v)
}
