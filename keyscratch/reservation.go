// Package keyscratch implements the per-session key reservation scratchpad
// (spec.md §4.B): every session must end by calling exactly one of KeepAll
// or ReturnAll so reserved addresses are never silently burned.
package keyscratch

import (
	"github.com/dashpay/privatesend/external"
	"github.com/decred/slog"
)

var log = slog.Disabled

// UseLogger sets the package-wide logger.
func UseLogger(logger slog.Logger) { log = logger }

// reservedKey is one address reserved from the wallet's free-key pool, not
// yet committed either way.
type reservedKey struct {
	index    uint32
	pkScript []byte
}

// Scratchpad tracks the keys reserved during one session's lifetime.
type Scratchpad struct {
	wallet external.Wallet
	keys   []reservedKey
	closed bool
}

// New creates a scratchpad bound to wallet.
func New(wallet external.Wallet) *Scratchpad {
	return &Scratchpad{wallet: wallet}
}

// Reserve allocates a fresh receiving script from the wallet and records it
// for later KeepAll/ReturnAll disposition.
func (s *Scratchpad) Reserve() ([]byte, error) {
	if s.closed {
		return nil, errScratchpadClosed
	}
	idx, script, err := s.wallet.ReserveNewAddress()
	if err != nil {
		return nil, err
	}
	s.keys = append(s.keys, reservedKey{index: idx, pkScript: script})
	return script, nil
}

// Count reports how many keys have been reserved so far.
func (s *Scratchpad) Count() int { return len(s.keys) }

// KeepAll commits every reserved key as used. Call this exactly once, on
// successful mix completion.
func (s *Scratchpad) KeepAll() {
	if s.closed {
		return
	}
	for _, k := range s.keys {
		s.wallet.KeepReservedAddress(k.index)
	}
	log.Debugf("kept %d reserved keys", len(s.keys))
	s.closed = true
}

// ReturnAll releases every reserved key back to the wallet's free-key pool.
// Call this exactly once, on any failure path.
func (s *Scratchpad) ReturnAll() {
	if s.closed {
		return
	}
	for _, k := range s.keys {
		s.wallet.ReturnReservedAddress(k.index)
	}
	log.Debugf("returned %d reserved keys", len(s.keys))
	s.closed = true
}

// errScratchpadClosed is returned by Reserve after KeepAll/ReturnAll.
type scratchpadClosedError struct{}

func (scratchpadClosedError) Error() string { return "keyscratch: scratchpad already closed" }

var errScratchpadClosed = scratchpadClosedError{}
