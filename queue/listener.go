// Package queue implements the public Queue(dsq) advertisement listener
// (spec.md §4.I).
package queue

import (
	"sync"
	"time"

	"github.com/dashpay/privatesend/external"
	"github.com/dashpay/privatesend/protocol"
	"github.com/dashpay/privatesend/wiremsg"
	"github.com/decred/slog"
	"golang.org/x/time/rate"
)

var log = slog.Disabled

// UseLogger sets the package-wide logger.
func UseLogger(logger slog.Logger) { log = logger }

// floodLimit bounds how many Queue advertisements the listener will
// process per second, independent of how many coordinators are on the
// network: a malicious or buggy peer relaying ads faster than any real
// masternode schedule should not get to burn signature-verification CPU.
const floodLimit = rate.Limit(50)
const floodBurst = 100

type entry struct {
	msg        wiremsg.Queue
	tried      bool
	receivedAt time.Time
}

// Listener tracks the most recent Queue advertisement per coordinator
// outpoint and hands out the next untried one to the orchestrator.
type Listener struct {
	registry external.CoordinatorRegistry
	limiter  *rate.Limiter

	mu      sync.Mutex
	entries map[external.Outpoint]*entry
}

// New creates a Listener that verifies advertisements against registry.
func New(registry external.CoordinatorRegistry) *Listener {
	return &Listener{
		registry: registry,
		limiter:  rate.NewLimiter(floodLimit, floodBurst),
		entries:  make(map[external.Outpoint]*entry),
	}
}

func toExternalOutpoint(op wiremsg.Outpoint) external.Outpoint {
	var h [32]byte = op.Hash
	return external.Outpoint{Hash: h, Index: op.Index}
}

// Handle verifies and records msg (spec.md §4.I). It returns false when the
// message was dropped (bad signature or outside the time window); true
// otherwise, including the "already tried" no-op case.
func (l *Listener) Handle(msg *wiremsg.Queue, now time.Time) bool {
	if !l.limiter.Allow() {
		log.Debugf("queue: flood limit exceeded, dropping advertisement")
		return false
	}

	op := toExternalOutpoint(msg.CoordOutpoint)

	if !l.registry.VerifyQueueSignature(op, msg.Denomination, op, msg.Time, msg.Ready, msg.Signature) {
		log.Debugf("queue: bad signature from %v, dropping", op)
		return false
	}
	age := now.Unix() - msg.Time
	if age < 0 {
		age = -age
	}
	if time.Duration(age)*time.Second > protocol.QueueTimeout {
		log.Debugf("queue: %v outside time window, dropping", op)
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.entries[op]; ok && e.tried {
		return true // already tried this round, second delivery is a no-op
	}
	l.entries[op] = &entry{msg: *msg, receivedAt: now}
	return true
}

// NextNotTried returns the first ready, untried advertisement for which
// match returns true, marking it tried. match lets the orchestrator filter
// by denomination availability and coordinator rate-limit state.
func (l *Listener) NextNotTried(match func(wiremsg.Queue) bool) (wiremsg.Queue, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.tried || !e.msg.Ready {
			continue
		}
		if !match(e.msg) {
			continue
		}
		e.tried = true
		return e.msg, true
	}
	return wiremsg.Queue{}, false
}

// Prune discards entries older than the queue timeout, independent of
// tried state.
func (l *Listener) Prune(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for op, e := range l.entries {
		if now.Sub(e.receivedAt) > protocol.QueueTimeout {
			delete(l.entries, op)
		}
	}
}
