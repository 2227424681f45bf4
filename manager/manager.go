// Package manager implements the process-wide wallet registry and 1 Hz
// maintenance scheduler (spec.md §4.K).
package manager

import (
	"strconv"
	"sync"
	"time"

	"github.com/dashpay/privatesend/orchestrator"
	"github.com/dashpay/privatesend/progress"
	"github.com/dashpay/privatesend/queue"
	"github.com/dashpay/privatesend/session"
	"github.com/dashpay/privatesend/wiremsg"
	"github.com/decred/slog"
)

var log = slog.Disabled

// UseLogger sets the package-wide logger.
func UseLogger(logger slog.Logger) { log = logger }

// Scheduler submits a callback at a fixed rate (spec.md §6.2).
type Scheduler interface {
	ScheduleAtFixedRate(period time.Duration, fn func()) (cancel func())
}

// wallet bundles the per-wallet state the manager tracks.
type wallet struct {
	orch  *orchestrator.Orchestrator
	queue *queue.Listener
}

// Manager is the wallet-id -> {orchestrator, sessions} registry driving
// the process's single 1 Hz maintenance tick.
type Manager struct {
	observer *progress.Observer

	mu      sync.RWMutex
	wallets map[string]*wallet

	cancel func()
}

// New creates an empty Manager.
func New(observer *progress.Observer) *Manager {
	return &Manager{observer: observer, wallets: make(map[string]*wallet)}
}

// Register adds a wallet's orchestrator and queue listener under id.
func (m *Manager) Register(id string, orch *orchestrator.Orchestrator, q *queue.Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets[id] = &wallet{orch: orch, queue: q}
}

// Unregister removes a wallet from the registry.
func (m *Manager) Unregister(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.wallets, id)
}

// Start schedules the 1 Hz maintenance tick on sched.
func (m *Manager) Start(sched Scheduler) {
	m.cancel = sched.ScheduleAtFixedRate(time.Second, m.tick)
}

// Stop cancels the maintenance tick.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// tick runs, in order: queue-listener housekeeping, then each
// orchestrator's per-session check_timeout and (when idle) automatic
// denominating (spec.md §4.K).
func (m *Manager) tick() {
	now := time.Now()
	for _, w := range m.snapshot() {
		w.queue.Prune(now)
		w.orch.Tick(now)

		idle := true
		for _, s := range w.orch.Sessions() {
			if s.State != session.Idle {
				idle = false
				break
			}
		}
		if idle {
			if ok, status := w.orch.DoAutomaticDenominating(); ok {
				log.Debugf("manager: %s", status)
			}
		}
	}
}

func (m *Manager) snapshot() []*wallet {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*wallet, 0, len(m.wallets))
	for _, w := range m.wallets {
		out = append(out, w)
	}
	return out
}

// DispatchQueue routes an incoming Queue advertisement to walletID's
// listener.
func (m *Manager) DispatchQueue(walletID string, msg *wiremsg.Queue) bool {
	m.mu.RLock()
	w, ok := m.wallets[walletID]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	return w.queue.Handle(msg, time.Now())
}

// DispatchStatusUpdate routes a StatusUpdate to the matching session within
// walletID's orchestrator. fromAddr is the coordinator connection the
// message arrived on: the bootstrap STATUS_ACCEPTED that assigns a
// session's coordinator-side session_id (spec.md §4.F, invariant 1) still
// has a local SessionID of 0 when it arrives, so it can't be routed by
// session-id equality and is matched by coordinator address instead.
func (m *Manager) DispatchStatusUpdate(walletID, fromAddr string, msg *wiremsg.StatusUpdate) bool {
	s, ok := m.findSessionForStatusUpdate(walletID, fromAddr, msg.SessionID)
	if !ok {
		return false
	}
	s.HandleStatusUpdate(msg)
	return true
}

// DispatchFinalTransaction routes a FinalTransaction to the matching
// session.
func (m *Manager) DispatchFinalTransaction(walletID string, msg *wiremsg.FinalTransaction) (*wiremsg.SignedInputs, error) {
	s, ok := m.findSession(walletID, msg.SessionID)
	if !ok {
		return nil, nil
	}
	return s.HandleFinalTransaction(msg)
}

// DispatchComplete routes a Complete message to the matching session and
// records the outcome with the progress observer.
func (m *Manager) DispatchComplete(walletID string, msg *wiremsg.Complete) bool {
	s, ok := m.findSession(walletID, msg.SessionID)
	if !ok {
		return false
	}
	s.HandleComplete(msg)
	if m.observer != nil {
		m.observer.OnComplete(sessionKey(walletID, msg.SessionID), msg.MessageID)
	}
	return true
}

func (m *Manager) findSession(walletID string, sessionID int32) (*session.Session, bool) {
	m.mu.RLock()
	w, ok := m.wallets[walletID]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	for _, s := range w.orch.Sessions() {
		if s.SessionID == sessionID {
			return s, true
		}
	}
	return nil, false
}

// findSessionForStatusUpdate first tries the normal session-id match, then
// falls back to the single Queue-state session with no session-id yet
// assigned, on the connection identified by fromAddr (the bootstrap
// STATUS_ACCEPTED case).
func (m *Manager) findSessionForStatusUpdate(walletID, fromAddr string, sessionID int32) (*session.Session, bool) {
	m.mu.RLock()
	w, ok := m.wallets[walletID]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	sessions := w.orch.Sessions()
	for _, s := range sessions {
		if s.SessionID != 0 && s.SessionID == sessionID {
			return s, true
		}
	}
	for _, s := range sessions {
		if s.SessionID == 0 && s.State == session.Queue && s.Coordinator.Address == fromAddr {
			return s, true
		}
	}
	return nil, false
}

func sessionKey(walletID string, sessionID int32) string {
	return walletID + "/" + strconv.Itoa(int(sessionID))
}
