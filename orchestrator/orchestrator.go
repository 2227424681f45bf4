// Package orchestrator implements the per-wallet session orchestrator
// (spec.md §4.G): it drives do_automatic_denominating, which decides
// whether to create denominations, create collateral, join an existing
// queue, or start a new one.
package orchestrator

import (
	"math/rand"
	"sync"
	"time"

	"github.com/dashpay/privatesend/denom"
	"github.com/dashpay/privatesend/external"
	"github.com/dashpay/privatesend/planner"
	"github.com/dashpay/privatesend/pool"
	"github.com/dashpay/privatesend/protocol"
	"github.com/dashpay/privatesend/queue"
	"github.com/dashpay/privatesend/session"
	"github.com/dashpay/privatesend/txbuilder"
	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/decred/dcrd/wire"
	"github.com/decred/slog"
)

var log = slog.Disabled

// UseLogger sets the package-wide logger.
func UseLogger(logger slog.Logger) { log = logger }

// Config is the enumerated configuration of spec.md §6.3.
type Config struct {
	Enabled       bool
	Amount        dcrutil.Amount
	Rounds        int
	RandomRounds  int
	SessionsLimit int
	MultiSession  bool
	DenomsGoal    int
	DenomsHardCap int
	FeeRate       txbuilder.FeeRate
}

// Orchestrator drives one wallet's mixing activity.
type Orchestrator struct {
	WalletID string
	wallet   external.Wallet
	chain    external.ChainView
	registry external.CoordinatorRegistry
	pool     *pool.Pool
	queue    *queue.Listener
	cfg      Config
	rng      *rand.Rand

	mu         sync.Mutex
	mixing     bool
	sessions   []*session.Session
	localIDSeq int64

	collateralTx     *wire.MsgTx
	collateralLocked []external.Outpoint
}

// New creates an Orchestrator for one wallet. seed should be independent
// per process (spec.md §9: randomness is anti-fingerprinting, not
// secrecy-critical, but must not be shared across processes).
func New(walletID string, wallet external.Wallet, chain external.ChainView,
	registry external.CoordinatorRegistry, p *pool.Pool, q *queue.Listener,
	cfg Config, seed int64) *Orchestrator {
	return &Orchestrator{
		WalletID: walletID,
		wallet:   wallet,
		chain:    chain,
		registry: registry,
		pool:     p,
		queue:    q,
		cfg:      cfg,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// DoAutomaticDenominating runs one tick of spec.md §4.G's 12-step
// algorithm. It returns (true, status) on progress and (false, status)
// when nothing was done.
func (o *Orchestrator) DoAutomaticDenominating() (bool, string) {
	// Step 1: try_lock.
	o.mu.Lock()
	if o.mixing {
		o.mu.Unlock()
		return false, "already mixing"
	}
	o.mixing = true
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.mixing = false
		o.mu.Unlock()
	}()

	// Step 2: preconditions.
	if !o.cfg.Enabled {
		return false, "mixing disabled"
	}
	if o.wallet.IsEncrypted() {
		return false, "wallet locked"
	}
	if !o.chain.IsSynced() {
		return false, "blockchain not synced"
	}

	// Step 3-4: balance accounting.
	bal, err := o.wallet.Balance()
	if err != nil {
		return false, "failed to read balance"
	}
	needed := o.cfg.Amount - bal.Anonymized
	if needed <= 0 {
		return false, "Nothing to do"
	}

	// Step 5: round up to the next denomination so the final mix lands
	// on an exact denom. denom.All() is largest-first, so walk it back to
	// front to find the smallest denomination that still covers needed.
	if needed < denom.Smallest() {
		all := denom.All()
		for i := len(all) - 1; i >= 0; i-- {
			if all[i] >= needed {
				needed = all[i]
				break
			}
		}
	}

	// Step 6: create denominations if we have enough spare non-denominated
	// balance and still need to denominate.
	if bal.NonDenomAnonymizable >= denom.Smallest()+denom.MaxCollateral && needed > 0 {
		if ok, status := o.tryCreateDenominations(needed); ok {
			return true, status
		}
	}

	// Step 7: ensure collateral exists.
	hasCollateral, err := o.wallet.HasCollateralInputs(true)
	if err != nil {
		return false, "failed to check collateral"
	}
	if !hasCollateral {
		if ok, status := o.tryCreateCollateral(); ok {
			return true, status
		}
	}

	// Step 8: already in a session.
	o.mu.Lock()
	for _, s := range o.sessions {
		if s.SessionID != 0 {
			o.mu.Unlock()
			return true, "mixing in progress"
		}
	}
	o.mu.Unlock()

	// Step 9: clean stale session state before trying to start anything
	// new.
	o.pruneIdleSessions()

	// Steps 10-12: revalidate the collateral deposit, try to join an
	// advertised queue, and fall back to starting a new one.
	return o.startSession()
}

// tryCreateDenominations runs the denomination-creation planner (§4.D)
// against non-denominated tally items, largest first, until one commits.
func (o *Orchestrator) tryCreateDenominations(needed dcrutil.Amount) (bool, string) {
	items, err := o.wallet.SelectCoinsGroupedByAddress(true, true, true, 0)
	if err != nil || len(items) == 0 {
		return false, "no spendable non-denominated coins"
	}
	sortByTotalDesc(items)

	params := planner.DenomCreateParams{
		FeeRate:                    o.cfg.FeeRate,
		Goal:                       o.cfg.DenomsGoal,
		HardCap:                    o.cfg.DenomsHardCap,
		Threshold:                  protocol.DenomOutputsThreshold,
		AlsoCreateCollateralOutput: true,
	}
	for _, item := range items {
		if _, err := planner.CreateDenominated(o.wallet, item, needed, params); err == nil {
			return true, "Creating denominations"
		}
	}
	return false, "denomination creation failed for every candidate"
}

// tryCreateCollateral runs the collateral planner (§4.E) over
// non-denominated then denominated tally items, smallest first.
func (o *Orchestrator) tryCreateCollateral() (bool, string) {
	nonDenom, _ := o.wallet.SelectCoinsGroupedByAddress(true, true, true, 0)
	denominated, _ := o.wallet.SelectCoinsGroupedByAddress(false, true, true, 0)

	sortByTotalAsc(nonDenom)
	sortByTotalAsc(denominated)
	candidates := append(append([]external.TallyItem{}, nonDenom...), denominated...)

	for _, item := range candidates {
		if _, err := planner.CreateCollateral(o.wallet, item, o.cfg.FeeRate); err == nil {
			return true, "Creating collateral"
		}
	}
	return false, "collateral creation failed for every candidate"
}

// pruneIdleSessions drops sessions that returned to Idle, releasing the
// slice slot (their resources were already released by session.cleanup).
func (o *Orchestrator) pruneIdleSessions() {
	o.mu.Lock()
	defer o.mu.Unlock()
	kept := o.sessions[:0]
	for _, s := range o.sessions {
		if s.State != session.Idle {
			kept = append(kept, s)
		}
	}
	o.sessions = kept
}

// Sessions returns the orchestrator's current session set.
func (o *Orchestrator) Sessions() []*session.Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*session.Session{}, o.sessions...)
}

// AddSession registers a newly-created session, enforcing sessions_limit
// unless multi_session is disabled (in which case the limit is 1).
func (o *Orchestrator) AddSession(s *session.Session) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	limit := o.cfg.SessionsLimit
	if !o.cfg.MultiSession {
		limit = 1
	}
	if len(o.sessions) >= limit {
		return false
	}
	o.sessions = append(o.sessions, s)
	return true
}

// Tick runs check_timeout on every session (spec.md §4.K: the manager's
// 1 Hz tick delegates here per wallet).
func (o *Orchestrator) Tick(now time.Time) {
	for _, s := range o.Sessions() {
		s.CheckTimeout(now)
	}
	o.pruneIdleSessions()
}

func sortByTotalDesc(items []external.TallyItem) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && items[j].TotalAmount > items[j-1].TotalAmount; j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}

func sortByTotalAsc(items []external.TallyItem) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && items[j].TotalAmount < items[j-1].TotalAmount; j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}
