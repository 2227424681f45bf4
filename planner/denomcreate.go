// Package planner implements the two UTXO-grouping algorithms that turn a
// wallet tally item into a committed transaction: denomination creation
// (spec.md §4.D) and collateral creation (spec.md §4.E).
package planner

import (
	"github.com/dashpay/privatesend/denom"
	"github.com/dashpay/privatesend/external"
	"github.com/dashpay/privatesend/txbuilder"
	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/decred/slog"
	"github.com/go-errors/errors"
)

var log = slog.Disabled

// UseLogger sets the package-wide logger.
func UseLogger(logger slog.Logger) { log = logger }

// ErrNothingToDenominate is returned when a create-denoms attempt produced
// no (or only the pointless collateral) output and was abandoned without
// committing.
var ErrNothingToDenominate = errors.New("planner: nothing to denominate from this tally item")

// DenomCreateParams bundles the knobs spec.md §6.3/§6.4 gives the
// denomination-creation planner.
type DenomCreateParams struct {
	FeeRate   txbuilder.FeeRate
	Goal      int // denoms_goal
	HardCap   int // denoms_hard_cap
	Threshold int // COINJOIN_DENOM_OUTPUTS_THRESHOLD

	// AlsoCreateCollateralOutput additionally places one
	// max-collateral-sized output ahead of the denomination fill.
	AlsoCreateCollateralOutput bool
}

// denomPlan is the mutable state threaded through both fill phases; the
// single add_final flag is carried here rather than closed over, per
// spec.md §9's nested-callables note.
type denomPlan struct {
	builder  *txbuilder.Builder
	counts   map[dcrutil.Amount]int
	addFinal bool
	params   DenomCreateParams
}

// CreateDenominated plans and commits a single create-denoms transaction
// spending item's inputs, trying to turn balanceToDenominate worth of coin
// into standard denominations (spec.md §4.D).
func CreateDenominated(wallet external.Wallet, item external.TallyItem,
	balanceToDenominate dcrutil.Amount, params DenomCreateParams) (chainhash.Hash, error) {

	builder := txbuilder.New(wallet, params.FeeRate, item.Inputs)
	plan := &denomPlan{
		builder:  builder,
		counts:   make(map[dcrutil.Amount]int),
		addFinal: true,
		params:   params,
	}

	collateralAdded := false
	if params.AlsoCreateCollateralOutput && builder.CouldAddOutput(denom.MaxCollateral) {
		if _, err := builder.AddOutput(denom.MaxCollateral); err == nil {
			collateralAdded = true
		}
	}

	remaining, err := plan.fillRoundRobin(balanceToDenominate)
	if err != nil {
		return chainhash.Hash{}, err
	}

	if err := plan.fillRemainder(remaining); err != nil {
		return chainhash.Hash{}, err
	}

	if collateralAdded && builder.CountOutputs() == 1 {
		log.Debugf("create_denominated: only the collateral output fit, abandoning")
		return chainhash.Hash{}, ErrNothingToDenominate
	}
	if builder.CountOutputs() == 0 {
		return chainhash.Hash{}, ErrNothingToDenominate
	}

	for d, count := range plan.counts {
		if d != denom.Largest() && count > params.HardCap {
			return chainhash.Hash{}, errors.Errorf(
				"planner: internal invariant broken, denom %v placed %d times (hard cap %d)",
				d, count, params.HardCap)
		}
	}

	return builder.Commit()
}

// fillRoundRobin is Phase 1 (spec.md §4.D): round-robin smallest to largest
// up to the per-denomination goal, at most 11 outputs of a given
// denomination per outer iteration.
func (p *denomPlan) fillRoundRobin(balance dcrutil.Amount) (dcrutil.Amount, error) {
	all := denom.All()

	for p.builder.CouldAddOutput(denom.Smallest()) && p.builder.CountOutputs() < p.params.Threshold {
		progressed := false

		for i := len(all) - 1; i >= 0; i-- {
			d := all[i]
			perIterCount := 0

			for perIterCount < 11 && p.counts[d] < p.params.Goal {
				if p.builder.CountOutputs() >= p.params.Threshold {
					return balance, nil
				}

				needMore, usedFinal := p.needMoreOutputs(d, balance)
				if !needMore {
					break
				}
				if usedFinal {
					p.addFinal = false
				}

				if _, err := p.builder.AddOutput(d); err != nil {
					return 0, errors.Errorf("planner: add_output(%v): %v", d, err)
				}

				p.counts[d]++
				balance -= d
				perIterCount++
				progressed = true
			}
		}

		if !progressed {
			break
		}
	}

	return balance, nil
}

// needMoreOutputs implements the "need-more" predicate from spec.md §4.D
// Phase 1: there is room, and either the remaining balance still covers a
// full d, or this is the single final-smaller-output opportunity.
func (p *denomPlan) needMoreOutputs(d, balance dcrutil.Amount) (needMore, usedFinal bool) {
	if !p.builder.CouldAddOutput(d) {
		return false, false
	}
	if balance >= d {
		return true, false
	}
	if balance > 0 && p.addFinal {
		return true, true
	}
	return false, false
}

// fillRemainder is Phase 2 (spec.md §4.D): once the round-robin goal fill is
// done, allocate any further room largest to smaller while balance remains,
// favoring overshoot on larger denominations over undershoot.
func (p *denomPlan) fillRemainder(balance dcrutil.Amount) error {
	if !p.builder.CouldAddOutput(denom.Smallest()) || balance < denom.Smallest() {
		return nil
	}

	for _, d := range denom.All() {
		for balance > 0 && p.builder.CountOutputs() < p.params.Threshold {
			toCreateBySpace := p.maxFittingCount(d, p.params.Threshold-p.builder.CountOutputs())
			toCreateByValue := int(balance/d) + 1

			toCreate := toCreateBySpace
			if toCreateByValue < toCreate {
				toCreate = toCreateByValue
			}
			if d != denom.Largest() {
				headroom := p.params.HardCap - p.counts[d]
				if headroom < toCreate {
					toCreate = headroom
				}
			}
			if toCreate <= 0 {
				break
			}

			placed := 0
			for i := 0; i < toCreate; i++ {
				if !p.builder.CouldAddOutput(d) {
					break
				}
				if _, err := p.builder.AddOutput(d); err != nil {
					return errors.Errorf("planner: add_output(%v): %v", d, err)
				}
				p.counts[d]++
				balance -= d
				placed++
				if p.builder.CountOutputs() >= p.params.Threshold {
					break
				}
			}
			if placed == 0 {
				break
			}
		}
	}

	return nil
}

// maxFittingCount returns the largest n <= cap such that n outputs of
// amount d could still all be added given the builder's current
// amount_left/fee trajectory.
func (p *denomPlan) maxFittingCount(d dcrutil.Amount, cap int) int {
	amounts := make([]dcrutil.Amount, 0, cap)
	n := 0
	for n < cap {
		amounts = append(amounts, d)
		if !p.builder.CouldAddOutputs(amounts) {
			break
		}
		n++
	}
	return n
}
