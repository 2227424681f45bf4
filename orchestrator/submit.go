package orchestrator

import (
	"sort"

	"github.com/dashpay/privatesend/external"
	"github.com/dashpay/privatesend/keyscratch"
	"github.com/dashpay/privatesend/protocol"
	"github.com/dashpay/privatesend/wiremsg"
	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/decred/dcrd/wire"
	"github.com/go-errors/errors"
)

// ErrNoMatchingInputs is returned by SubmitDenominate when no candidate
// round window yields any usable denominated input.
var ErrNoMatchingInputs = errors.New("orchestrator: no denominated inputs match any candidate round window")

// roundsAwareWallet is an optional capability: wallets that track per-UTXO
// mix-round counts can implement it for round-accurate dry runs. Wallets
// that don't fall back to an any-round approximation.
type roundsAwareWallet interface {
	SelectDenominatedInputsAtRounds(minRounds, maxRounds int, maxTotal dcrutil.Amount) ([]external.UTXO, error)
}

func (o *Orchestrator) candidateInputs(minRounds, maxRounds int) ([]external.UTXO, error) {
	if raw, ok := o.wallet.(roundsAwareWallet); ok {
		return raw.SelectDenominatedInputsAtRounds(minRounds, maxRounds, 0)
	}
	items, err := o.wallet.SelectCoinsGroupedByAddress(false, true, true, 0)
	if err != nil {
		return nil, err
	}
	var out []external.UTXO
	for _, it := range items {
		out = append(out, it.Inputs...)
	}
	return out, nil
}

type roundOutcome struct {
	rounds int
	count  int
}

// SubmitDenominate implements spec.md §4.G's "submit denominate" step: a
// dry-run probe across [0, rounds+random_rounds) picks the round window
// with the most matching inputs (fewest rounds breaks ties), then builds
// the real entry, reserving keys and locking coins.
func (o *Orchestrator) SubmitDenominate(keys *keyscratch.Scratchpad) (*wiremsg.Entry, error) {
	var outcomes []roundOutcome
	for r := 0; r < o.cfg.Rounds+o.cfg.RandomRounds; r++ {
		utxos, err := o.candidateInputs(r, r)
		if err != nil {
			continue
		}
		outcomes = append(outcomes, roundOutcome{rounds: r, count: len(utxos)})
	}
	sort.SliceStable(outcomes, func(i, j int) bool {
		if outcomes[i].count != outcomes[j].count {
			return outcomes[i].count > outcomes[j].count
		}
		return outcomes[i].rounds < outcomes[j].rounds
	})

	for _, oc := range outcomes {
		if oc.count == 0 {
			continue
		}
		entry, err := o.buildEntry(oc.rounds, oc.rounds, keys)
		if err == nil {
			return entry, nil
		}
	}

	// Fall back to "any rounds" (spec.md §4.G).
	entry, err := o.buildEntry(0, o.cfg.Rounds-1, keys)
	if err != nil {
		return nil, ErrNoMatchingInputs
	}
	return entry, nil
}

// buildEntry selects denominated inputs in [minRounds, maxRounds], applying
// the 1/5 post-first-input drop probability (spec.md §9 randomness), and
// reserves a fresh change-style output script for each kept input.
func (o *Orchestrator) buildEntry(minRounds, maxRounds int, keys *keyscratch.Scratchpad) (*wiremsg.Entry, error) {
	utxos, err := o.candidateInputs(minRounds, maxRounds)
	if err != nil {
		return nil, err
	}
	if len(utxos) == 0 {
		return nil, ErrNoMatchingInputs
	}

	var inputs []*wire.TxIn
	var outputs []*wire.TxOut
	for i, u := range utxos {
		if len(inputs) >= protocol.EntryMaxSize {
			break
		}
		if i > 0 && o.rng.Intn(5) == 0 {
			continue
		}
		script, err := keys.Reserve()
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, wire.NewTxIn(&wire.OutPoint{Hash: u.Hash, Index: u.Index}, int64(u.Amount), nil))
		outputs = append(outputs, wire.NewTxOut(int64(u.Amount), script))
		o.wallet.LockCoin(u.Outpoint)
	}
	if len(inputs) == 0 {
		return nil, ErrNoMatchingInputs
	}
	return &wiremsg.Entry{Inputs: inputs, Outputs: outputs}, nil
}

// pickDenom implements spec.md §4.G's 1-in-2 bias towards a non-first
// denomination, guarded against an empty set (spec.md §9 open question).
func (o *Orchestrator) pickDenom(available []uint32) (uint32, bool) {
	if len(available) == 0 {
		return 0, false
	}
	if len(available) == 1 || o.rng.Intn(2) == 1 {
		return available[0], true
	}
	return available[1+o.rng.Intn(len(available)-1)], true
}

// StartNewQueue implements spec.md §4.G step 12: pick a coordinator not
// recently used, respecting each candidate's per-coordinator cooldown, up
// to 10 attempts. Returns the number of attempts actually made so callers
// can observe nTries (spec.md §8 scenario 5).
func (o *Orchestrator) StartNewQueue(availableDenoms []uint32) (coord external.Coordinator, denomination uint32, attempts int, ok bool) {
	excluded := make(map[external.Outpoint]bool)
	for attempts = 1; attempts <= 10; attempts++ {
		c, found := o.registry.RandomNotRecentlyUsed(excluded)
		if !found {
			return external.Coordinator{}, 0, attempts, false
		}
		excluded[c.Outpoint] = true

		lastDsq := o.registry.LastQueueTime(c.Outpoint)
		threshold := o.registry.DsqThreshold(c.Outpoint)
		count := o.registry.DsqCount(c.Outpoint)
		if !lastDsq.IsZero() && threshold > count {
			log.Debugf("orchestrator: coordinator %v rate-limited, skipping", c.Outpoint)
			continue
		}

		d, found := o.pickDenom(availableDenoms)
		if !found {
			return external.Coordinator{}, 0, attempts, false
		}
		return c, d, attempts, true
	}
	return external.Coordinator{}, 0, attempts - 1, false
}
