package orchestrator

import (
	"time"

	"github.com/dashpay/privatesend/denom"
	"github.com/dashpay/privatesend/external"
	"github.com/dashpay/privatesend/keyscratch"
	"github.com/dashpay/privatesend/pool"
	"github.com/dashpay/privatesend/session"
	"github.com/dashpay/privatesend/wiremsg"
	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/decred/dcrd/wire"
	"github.com/go-errors/errors"
)

// pendingDeadline bounds how long a freshly-started session waits for the
// pool to report its coordinator connected before Session.FlushPending
// gives up (spec.md §9 "pending request as send when connected").
const pendingDeadline = 15 * time.Second

// ErrNoCollateralAvailable is returned when the wallet has no collateral-sized
// UTXO to build a session collateral deposit from (spec.md §4.G step 10).
var ErrNoCollateralAvailable = errors.New("orchestrator: no collateral-sized UTXO available")

// startSession implements spec.md §4.G steps 10-12 (the caller has already
// pruned stale sessions): make sure a valid collateral deposit exists, try
// to join an advertised queue,
// and fall back to starting a new one. On success it creates and registers
// a new Session in Queue state with a pending Accept request.
func (o *Orchestrator) startSession() (bool, string) {
	collateralTx, lockedCollateral, err := o.ensureCollateralTransaction()
	if err != nil {
		return false, "no usable collateral"
	}

	if coord, d, ok := o.tryJoinQueue(); ok {
		return o.openSession(coord, d, collateralTx, lockedCollateral, "joined an existing queue")
	}

	available := o.availableDenoms()
	coord, d, _, ok := o.StartNewQueue(available)
	if !ok {
		return false, "no coordinator available to start a new queue"
	}
	o.registry.MarkUsed(coord.Outpoint, time.Now())
	return o.openSession(coord, d, collateralTx, lockedCollateral, "started a new queue")
}

// openSession creates the Session, registers it with the pool and the
// orchestrator's session set, and starts it, which arms the pending initial
// Accept request (spec.md §4.F Start); Session.FlushPending sends it.
func (o *Orchestrator) openSession(coord external.Coordinator, d uint32,
	collateralTx *wire.MsgTx, locked []external.Outpoint, status string) (bool, string) {

	keys := keyscratch.New(o.wallet)
	s := session.New(o.wallet, coord, d, keys)

	if !o.AddSession(s) {
		for _, op := range locked {
			o.wallet.UnlockCoin(op)
		}
		return false, "sessions_limit reached"
	}

	if err := s.Start(collateralTx, locked, time.Now().Add(pendingDeadline)); err != nil {
		return false, "failed to start session"
	}

	ref := pool.SessionRef{WalletID: o.WalletID, LocalID: o.nextLocalID()}
	if err := o.pool.AddPending(coord.Address, ref); err != nil {
		log.Warnf("orchestrator: could not reach coordinator %s: %v", coord.Address, err)
	}

	return true, status
}

func (o *Orchestrator) nextLocalID() int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.localIDSeq++
	return o.localIDSeq
}

// availableDenoms reports which standard denominations the wallet currently
// has a matching denominated input for (spec.md §4.G step 12's
// "denominations for which we have matching inputs").
func (o *Orchestrator) availableDenoms() []uint32 {
	want := make(map[dcrutil.Amount]bool, len(denom.All()))
	for _, a := range denom.All() {
		want[a] = true
	}
	got, err := o.wallet.SelectDenominatedAmounts(denom.Smallest(), want)
	if err != nil {
		return nil
	}
	var out []uint32
	for _, a := range denom.All() {
		if got[a] {
			if d, ok := denom.DenominationOf(a); ok {
				out = append(out, uint32(d))
			}
		}
	}
	return out
}

// tryJoinQueue implements spec.md §4.G step 11: scan pending public queue
// advertisements, filtering by matching denominated inputs, the
// coordinator's rate-limit state, and whether its connection is already in
// use.
func (o *Orchestrator) tryJoinQueue() (external.Coordinator, uint32, bool) {
	if o.queue == nil {
		return external.Coordinator{}, 0, false
	}

	var chosen external.Coordinator
	var chosenDenom uint32
	found := false

	_, _ = o.queue.NextNotTried(func(q wiremsg.Queue) bool {
		if found {
			return false
		}
		op := external.Outpoint{Hash: q.CoordOutpoint.Hash, Index: q.CoordOutpoint.Index}
		coord, ok := o.registry.ByOutpoint(op)
		if !ok {
			return false
		}
		if o.pool.IsPending(coord.Address) {
			return false // already in use
		}
		threshold := o.registry.DsqThreshold(op)
		count := o.registry.DsqCount(op)
		last := o.registry.LastQueueTime(op)
		if !last.IsZero() && threshold > count {
			return false
		}
		if !o.haveMatchingInput(q.Denomination) {
			return false
		}
		chosen = coord
		chosenDenom = q.Denomination
		found = true
		return true
	})

	return chosen, chosenDenom, found
}

func (o *Orchestrator) haveMatchingInput(d uint32) bool {
	for _, avail := range o.availableDenoms() {
		if avail == d {
			return true
		}
	}
	return false
}

// ensureCollateralTransaction implements spec.md §4.G step 10: revalidate
// the orchestrator's standing collateral deposit transaction, rebuilding it
// from a fresh collateral-sized UTXO if it is missing or no longer valid,
// and locking its input.
func (o *Orchestrator) ensureCollateralTransaction() (*wire.MsgTx, []external.Outpoint, error) {
	o.mu.Lock()
	tx := o.collateralTx
	locked := append([]external.Outpoint{}, o.collateralLocked...)
	o.mu.Unlock()

	if isCollateralTxValid(tx) {
		return tx, locked, nil
	}
	for _, op := range locked {
		o.wallet.UnlockCoin(op)
	}

	tx, op, err := o.buildCollateralTransaction()
	if err != nil {
		o.mu.Lock()
		o.collateralTx = nil
		o.collateralLocked = nil
		o.mu.Unlock()
		return nil, nil, err
	}

	o.wallet.LockCoin(op)
	o.mu.Lock()
	o.collateralTx = tx
	o.collateralLocked = []external.Outpoint{op}
	o.mu.Unlock()

	return tx, []external.Outpoint{op}, nil
}

// isCollateralTxValid is the is_collateral_valid predicate: exactly one
// input, one collateral-sized output.
func isCollateralTxValid(tx *wire.MsgTx) bool {
	if tx == nil || len(tx.TxIn) != 1 || len(tx.TxOut) != 1 {
		return false
	}
	return denom.IsCollateralAmount(dcrutil.Amount(tx.TxOut[0].Value))
}

// buildCollateralTransaction spends one collateral-sized UTXO back to
// itself, minus a small fee, to produce the self-contained anti-DoS deposit
// carried on Accept and Entry (spec.md §3 "collateral_tx"). It is signed but
// not broadcast: only the coordinator (or, on a cheating client, a slashing
// broadcast) ever puts it on chain.
func (o *Orchestrator) buildCollateralTransaction() (*wire.MsgTx, external.Outpoint, error) {
	items, err := o.wallet.SelectCoinsGroupedByAddress(false, true, true, 0)
	if err != nil {
		return nil, external.Outpoint{}, err
	}
	for _, item := range items {
		for _, u := range item.Inputs {
			if !denom.IsCollateralAmount(u.Amount) {
				continue
			}
			fee := o.cfg.FeeRate.FeeForSize(192)
			if u.Amount <= fee {
				continue
			}

			tx := wire.NewMsgTx()
			tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Hash: u.Hash, Index: u.Index}, int64(u.Amount), nil))
			tx.AddTxOut(wire.NewTxOut(int64(u.Amount-fee), u.PkScript))

			if err := o.wallet.SignTransaction(tx); err != nil {
				continue
			}
			return tx, u.Outpoint, nil
		}
	}
	return nil, external.Outpoint{}, ErrNoCollateralAvailable
}
