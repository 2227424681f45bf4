// Package txbuilder implements the draft-transaction scratchpad (spec.md
// §4.C / §3 "Draft transaction (builder state)"): a fixed input set from one
// tally item, a growing list of planned outputs, and a conservative
// running fee reservation that must never let amount_left go negative.
package txbuilder

import (
	"github.com/dashpay/privatesend/external"
	"github.com/dashpay/privatesend/input"
	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/decred/dcrd/wire"
	"github.com/decred/slog"
	"github.com/go-errors/errors"
)

var log = slog.Disabled

// UseLogger sets the package-wide logger.
func UseLogger(logger slog.Logger) { log = logger }

// FeeRate is the per-kilobyte fee rate used to reserve fee headroom as
// outputs are added.
type FeeRate dcrutil.Amount

// FeeForSize returns the fee for a transaction of the given estimated size
// in bytes at rate r (expressed in atoms/kB).
func (r FeeRate) FeeForSize(size int64) dcrutil.Amount {
	fee := dcrutil.Amount(size) * dcrutil.Amount(r) / 1000
	if fee == 0 {
		fee = 1
	}
	return fee
}

// OutputHandle references one output previously added by AddOutput, so its
// amount can later be rewritten with UpdateAmount.
type OutputHandle int

// Builder is a scratchpad for incrementally shaping one transaction from a
// single tally item's inputs.
type Builder struct {
	wallet  external.Wallet
	feeRate FeeRate

	inputs  []external.UTXO
	outputs []dcrutil.Amount
	scripts [][]byte

	size input.TxSizeEstimator
}

// New creates a builder spending exactly the inputs of item, at the given
// fee rate. The builder has no outputs yet.
func New(wallet external.Wallet, feeRate FeeRate, inputs []external.UTXO) *Builder {
	b := &Builder{wallet: wallet, feeRate: feeRate, inputs: inputs}
	for range inputs {
		b.size.AddP2PKHInput()
	}
	return b
}

func (b *Builder) totalIn() dcrutil.Amount {
	var total dcrutil.Amount
	for _, u := range b.inputs {
		total += u.Amount
	}
	return total
}

func (b *Builder) totalOut() dcrutil.Amount {
	var total dcrutil.Amount
	for _, a := range b.outputs {
		total += a
	}
	return total
}

// estimatedFee returns the fee reservation for the current (or
// additionalOutputs-larger) output count.
func (b *Builder) estimatedFee(additionalOutputs int) dcrutil.Amount {
	est := b.size
	for i := 0; i < additionalOutputs; i++ {
		est.AddP2PKHOutput()
	}
	return b.feeRate.FeeForSize(est.Size())
}

// GetAmountLeft returns sum(inputs) - sum(outputs) - estimated_fee for the
// outputs already placed.
func (b *Builder) GetAmountLeft() dcrutil.Amount {
	return b.totalIn() - b.totalOut() - b.estimatedFee(0)
}

// CouldAddOutput reports whether AddOutput(amount) would leave amount_left
// >= 0 after re-estimating fees with the additional output.
func (b *Builder) CouldAddOutput(amount dcrutil.Amount) bool {
	left := b.totalIn() - b.totalOut() - amount - b.estimatedFee(1)
	return left >= 0
}

// CouldAddOutputs reports whether all of amounts could be added in
// sequence, re-estimating the fee after each.
func (b *Builder) CouldAddOutputs(amounts []dcrutil.Amount) bool {
	in := b.totalIn()
	out := b.totalOut()
	extra := 0
	for _, a := range amounts {
		extra++
		out += a
		fee := b.estimatedFee(extra)
		if in-out-fee < 0 {
			return false
		}
	}
	return true
}

// AddOutput places a new output of amount, which may be zero as a
// placeholder for a later UpdateAmount call (used by the collateral
// planner). Returns an error if doing so would leave amount_left negative.
func (b *Builder) AddOutput(amount dcrutil.Amount) (OutputHandle, error) {
	if !b.CouldAddOutput(amount) {
		return 0, errors.Errorf("txbuilder: adding output of %v would overdraw amount_left", amount)
	}

	b.outputs = append(b.outputs, amount)
	b.scripts = append(b.scripts, nil)
	b.size.AddP2PKHOutput()

	return OutputHandle(len(b.outputs) - 1), nil
}

// UpdateAmount rewrites the amount of a previously-added output, typically
// used to fill in a placeholder with amount_left once all other outputs are
// placed.
func (b *Builder) UpdateAmount(h OutputHandle, amount dcrutil.Amount) error {
	if int(h) < 0 || int(h) >= len(b.outputs) {
		return errors.Errorf("txbuilder: invalid output handle %d", h)
	}
	b.outputs[h] = amount
	return nil
}

// CountOutputs returns the number of outputs placed so far.
func (b *Builder) CountOutputs() int { return len(b.outputs) }

// Commit finalizes the draft: builds the wire transaction from the fixed
// inputs and placed outputs (each routed to a freshly reserved wallet
// script), asks the wallet to sign it, and broadcasts it.
func (b *Builder) Commit() (chainhash.Hash, error) {
	if len(b.outputs) == 0 {
		return chainhash.Hash{}, errors.New("txbuilder: commit with zero outputs")
	}

	tx := wire.NewMsgTx()
	for _, u := range b.inputs {
		tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{
			Hash:  u.Hash,
			Index: u.Index,
		}, int64(u.Amount), nil))
	}

	for i, amount := range b.outputs {
		script := b.scripts[i]
		if script == nil {
			var idx uint32
			var err error
			idx, script, err = b.wallet.ReserveNewAddress()
			if err != nil {
				return chainhash.Hash{}, errors.Errorf("txbuilder: reserve output script: %v", err)
			}
			b.wallet.KeepReservedAddress(idx)
			b.scripts[i] = script
		}
		tx.AddTxOut(wire.NewTxOut(int64(amount), script))
	}

	if err := b.wallet.SignTransaction(tx); err != nil {
		return chainhash.Hash{}, errors.Errorf("txbuilder: sign: %v", err)
	}
	if err := b.wallet.BroadcastTransaction(tx); err != nil {
		return chainhash.Hash{}, errors.Errorf("txbuilder: broadcast: %v", err)
	}

	log.Debugf("committed transaction %v with %d inputs, %d outputs",
		tx.TxHash(), len(tx.TxIn), len(tx.TxOut))

	return tx.TxHash(), nil
}
