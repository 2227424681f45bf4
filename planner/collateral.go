package planner

import (
	"github.com/dashpay/privatesend/denom"
	"github.com/dashpay/privatesend/external"
	"github.com/dashpay/privatesend/protocol"
	"github.com/dashpay/privatesend/txbuilder"
	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/go-errors/errors"
)

// ErrNoCollateralCase is returned when none of the three collateral cases
// fit item's available amount_left.
var ErrNoCollateralCase = errors.New("planner: no collateral case fits this tally item")

// CreateCollateral plans and commits a collateral transaction from item
// spending whatever fits one of the three cases in spec.md §4.E. The
// caller (the orchestrator) is responsible for the "non-denominated first,
// then denominated" retry policy across tally items.
func CreateCollateral(wallet external.Wallet, item external.TallyItem,
	feeRate txbuilder.FeeRate) (chainhash.Hash, error) {

	// Each case gets its own builder attempt: a failed case must not
	// leave placeholder outputs behind for the next case to trip over,
	// since the builder has no way to remove an output once added.
	attempts := []func(*txbuilder.Builder) bool{tryCase1, tryCase2, tryCase3}
	names := []string{"case 1 (max_collateral + remainder)", "case 2 (two equal halves)", "case 3 (single output)"}

	for i, try := range attempts {
		builder := txbuilder.New(wallet, feeRate, item.Inputs)
		if !try(builder) {
			continue
		}

		if left := builder.GetAmountLeft(); left > protocol.DustThreshold {
			continue
		}

		log.Debugf("collateral %v", names[i])
		return builder.Commit()
	}

	return chainhash.Hash{}, ErrNoCollateralCase
}

// tryCase1 places a fixed max_collateral output plus a second output sized
// to whatever remains, as long as the remainder is itself collateral-sized.
func tryCase1(b *txbuilder.Builder) bool {
	if !b.CouldAddOutputs([]dcrutil.Amount{denom.MaxCollateral, denom.MinCollateral}) {
		return false
	}

	if _, err := b.AddOutput(denom.MaxCollateral); err != nil {
		return false
	}

	h, err := b.AddOutput(0)
	if err != nil {
		return false
	}

	remaining := b.GetAmountLeft()
	if denom.IsDenominatedAmount(remaining) {
		// Nudge it off an exact denomination so the output can't be
		// mistaken for a mixed one.
		remaining--
	}
	if !denom.IsCollateralAmount(remaining) {
		return false
	}

	if err := b.UpdateAmount(h, remaining); err != nil {
		return false
	}
	return true
}

// tryCase2 splits amount_left into two equal collateral-sized halves; an
// odd atom left over becomes fee.
func tryCase2(b *txbuilder.Builder) bool {
	if !b.CouldAddOutputs([]dcrutil.Amount{denom.MinCollateral, denom.MinCollateral}) {
		return false
	}

	h1, err := b.AddOutput(0)
	if err != nil {
		return false
	}
	h2, err := b.AddOutput(0)
	if err != nil {
		return false
	}

	half := b.GetAmountLeft() / 2
	if !denom.IsCollateralAmount(half) {
		return false
	}

	if err := b.UpdateAmount(h1, half); err != nil {
		return false
	}
	if err := b.UpdateAmount(h2, half); err != nil {
		return false
	}
	return true
}

// tryCase3 places a single output sized to whatever amount_left allows.
func tryCase3(b *txbuilder.Builder) bool {
	if !b.CouldAddOutputs([]dcrutil.Amount{denom.MinCollateral}) {
		return false
	}

	h, err := b.AddOutput(0)
	if err != nil {
		return false
	}

	left := b.GetAmountLeft()
	if !denom.IsCollateralAmount(left) {
		return false
	}

	return b.UpdateAmount(h, left) == nil
}
