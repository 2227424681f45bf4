// Package pool implements the coordinator connection pool (spec.md §4.H): a
// specialized connection manager that only ever dials addresses synthesized
// from the set of sessions currently pending a coordinator connection.
package pool

import (
	"sync"

	"github.com/dashpay/privatesend/external"
	"github.com/decred/slog"
)

var log = slog.Disabled

// UseLogger sets the package-wide logger.
func UseLogger(logger slog.Logger) { log = logger }

// SessionRef is how the pool tracks a pending session without holding a
// strong reference to it (spec.md §9: avoid cyclic references between pool
// and session).
type SessionRef struct {
	WalletID string
	LocalID  int64
}

// Pool tracks coordinator connections driven entirely by the
// pending-session set. Its connection budget (MaxConnections) is the number
// of pending addresses clamped by sessionsLimit; AddPending does not enforce
// that budget and dials every newly pending address.
type Pool struct {
	registry external.CoordinatorRegistry
	network  external.Network

	mu             sync.Mutex
	pendingByAddr  map[string]map[SessionRef]bool
	maxConnections int
	sessionsLimit  int
}

// New creates a Pool whose reported connection budget is clamped by
// sessionsLimit.
func New(registry external.CoordinatorRegistry, network external.Network, sessionsLimit int) *Pool {
	p := &Pool{
		registry:      registry,
		network:       network,
		pendingByAddr: make(map[string]map[SessionRef]bool),
		sessionsLimit: sessionsLimit,
	}
	network.OnPeerDeath(p.onPeerDeath)
	return p
}

// AddPending records ref's interest in addr and triggers a connection
// attempt if this is the first pending session for that address
// (de-duplication: a second pending session to the same coordinator reuses
// the first connection).
func (p *Pool) AddPending(addr string, ref SessionRef) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.registry.BySocketAddress(addr); !ok {
		return errUnknownCoordinator
	}

	set, existed := p.pendingByAddr[addr]
	if !existed {
		set = make(map[SessionRef]bool)
		p.pendingByAddr[addr] = set
	}
	set[ref] = true
	p.recomputeMaxConnections()

	if !existed {
		log.Debugf("pool: discovering coordinator at %s", addr)
		return p.network.Connect(addr)
	}
	return nil
}

// IsPending reports whether any session is already pending a connection to
// addr, so the orchestrator can skip a queue whose coordinator it is already
// talking to (spec.md §4.G step 11: "... and by whether it is already in
// use").
func (p *Pool) IsPending(addr string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.pendingByAddr[addr]
	return ok
}

// ForPeer runs fn against the connected peer at addr, returning false if no
// such peer is connected.
func (p *Pool) ForPeer(addr string, fn func() error) bool {
	for _, connected := range p.network.ConnectedPeers() {
		if connected == addr {
			if err := fn(); err != nil {
				log.Warnf("pool: peer action at %s failed: %v", addr, err)
			}
			return true
		}
	}
	return false
}

// Disconnect queues addr's connection for closure and stops tracking it.
func (p *Pool) Disconnect(addr string) error {
	p.mu.Lock()
	delete(p.pendingByAddr, addr)
	p.recomputeMaxConnections()
	p.mu.Unlock()
	return p.network.Disconnect(addr)
}

// MaxConnections reports the pool's current connection budget, clamped by
// sessionsLimit.
func (p *Pool) MaxConnections() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxConnections
}

func (p *Pool) recomputeMaxConnections() {
	n := len(p.pendingByAddr)
	if n > p.sessionsLimit {
		n = p.sessionsLimit
	}
	p.maxConnections = n
}

// onPeerDeath removes every session pending on addr and re-evaluates
// max_connections (spec.md §4.H).
func (p *Pool) onPeerDeath(addr string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.pendingByAddr[addr]; ok {
		log.Infof("pool: peer %s died, clearing %d pending session(s)", addr, len(p.pendingByAddr[addr]))
		delete(p.pendingByAddr, addr)
		p.recomputeMaxConnections()
	}
}

type poolError string

func (e poolError) Error() string { return string(e) }

const errUnknownCoordinator = poolError("pool: coordinator not found for address")
