// Package session implements the PrivateSend per-round state machine
// (spec.md §4.F): Idle -> Queue -> AcceptingEntries -> Signing, with Error as
// a common recovery state reached from any of the others.
package session

import (
	"bytes"
	"sort"
	"time"

	"github.com/dashpay/privatesend/external"
	"github.com/dashpay/privatesend/keyscratch"
	"github.com/dashpay/privatesend/protocol"
	"github.com/dashpay/privatesend/wiremsg"
	"github.com/davecgh/go-spew/spew"
	"github.com/decred/dcrd/wire"
	"github.com/decred/slog"
	"github.com/go-errors/errors"
)

var log = slog.Disabled

// UseLogger sets the package-wide logger used by sessions.
func UseLogger(logger slog.Logger) { log = logger }

// logClosure defers an expensive log argument (e.g. a spew dump) until the
// logger actually decides to format it.
type logClosure func() string

func (c logClosure) String() string { return c() }

func newLogClosure(c func() string) logClosure { return logClosure(c) }

// State is the session's local protocol state.
type State int

const (
	Idle State = iota
	Queue
	AcceptingEntries
	Signing
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Queue:
		return "queue"
	case AcceptingEntries:
		return "accepting entries"
	case Signing:
		return "signing"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

var (
	// ErrWrongState is returned when a caller invokes an operation not
	// valid for the session's current state.
	ErrWrongState = errors.New("session: operation not valid in current state")

	// ErrRefuseToSign is returned by HandleFinalTransaction when the
	// final-tx verification in spec.md §4.F.1 steps 3-4 fails. The
	// session is already in Error by the time this is returned.
	ErrRefuseToSign = errors.New("session: refusing to sign, final transaction failed verification")
)

// ourEntry is what this session submitted to the coordinator, kept so the
// final-tx verification step can check everything we sent made it back.
type ourEntry struct {
	inputs  []*wire.TxIn
	outputs []*wire.TxOut
}

// Session is one mixing round for one denomination with one coordinator.
type Session struct {
	Wallet      external.Wallet
	Coordinator external.Coordinator

	Denomination uint32
	State        State
	SessionID    int32

	CollateralTx    *wire.MsgTx
	LockedOutpoints []external.Outpoint
	Keys            *keyscratch.Scratchpad

	mine         ourEntry
	signedInputs []int

	LastStepTime time.Time
	LastMessage  Status

	// Pending is the "send when connected" record from spec.md §9: held
	// until the network confirms a connection to Coordinator.Address.
	Pending *PendingRequest
}

// PendingRequest holds a message destined for Coordinator.Address until the
// network layer reports the peer connected, or the deadline passes.
type PendingRequest struct {
	Message  interface{}
	Deadline time.Time
}

// New creates an Idle session bound to wallet w.
func New(w external.Wallet, coord external.Coordinator, denom uint32, keys *keyscratch.Scratchpad) *Session {
	return &Session{
		Wallet:       w,
		Coordinator:  coord,
		Denomination: denom,
		State:        Idle,
		Keys:         keys,
		LastStepTime: time.Now(),
		LastMessage:  StatusIdle,
	}
}

// Start moves Idle -> Queue and arms a pending Accept request for the
// coordinator (spec.md §4.F).
func (s *Session) Start(collateralTx *wire.MsgTx, lockedOutpoints []external.Outpoint, deadline time.Time) error {
	if s.State != Idle {
		return ErrWrongState
	}
	s.CollateralTx = collateralTx
	s.LockedOutpoints = lockedOutpoints
	s.State = Queue
	s.LastStepTime = time.Now()
	s.LastMessage = StatusQueued
	s.Pending = &PendingRequest{
		Message:  &wiremsg.Accept{Denomination: s.Denomination, CollateralTx: collateralTx},
		Deadline: deadline,
	}
	log.Debugf("session: start queue denom=%d coordinator=%s", s.Denomination, s.Coordinator.Address)
	return nil
}

// FlushPending sends the pending request if net reports the coordinator
// connected, or transitions to Error via cleanup if the deadline passed.
func (s *Session) FlushPending(net external.Network) {
	if s.Pending == nil {
		return
	}
	connected := false
	for _, addr := range net.ConnectedPeers() {
		if addr == s.Coordinator.Address {
			connected = true
			break
		}
	}
	switch {
	case connected:
		if err := net.Send(s.Coordinator.Address, s.Pending.Message); err != nil {
			log.Warnf("session: send to %s failed: %v", s.Coordinator.Address, err)
			return
		}
		s.Pending = nil
	case time.Now().After(s.Pending.Deadline):
		log.Warnf("session: pending request to %s expired, no connection", s.Coordinator.Address)
		s.Pending = nil
		s.transitionToError(StatusErrSession)
	}
}

// SetEntry records what this session submitted, for later verification
// against the coordinator's final transaction.
func (s *Session) SetEntry(inputs []*wire.TxIn, outputs []*wire.TxOut) {
	s.mine = ourEntry{inputs: inputs, outputs: outputs}
	s.State = AcceptingEntries
	s.LastStepTime = time.Now()
	s.LastMessage = StatusAcceptingEntries
}

// HandleStatusUpdate applies an incoming StatusUpdate (spec.md §4.F).
func (s *Session) HandleStatusUpdate(msg *wiremsg.StatusUpdate) {
	if msg.Status == wiremsg.StatusRejected {
		s.LastMessage = StatusRejected
		s.cleanup(Error)
		return
	}
	if msg.Status != wiremsg.StatusAccepted {
		return // out-of-range status: drop, no transition
	}
	if s.State == Queue && msg.SessionID != 0 && s.SessionID == 0 {
		s.SessionID = msg.SessionID
		s.LastStepTime = time.Now()
		return
	}
	switch msg.State {
	case wiremsg.PoolStateAcceptingEntries:
		s.State = AcceptingEntries
		s.LastMessage = StatusAcceptingEntries
	case wiremsg.PoolStateSigning:
		s.State = Signing
		s.LastMessage = StatusSigning
	default:
		return // out-of-range state: drop
	}
	s.LastStepTime = time.Now()
}

// HandleFinalTransaction implements spec.md §4.F.1. On success it returns
// the SignedInputs message ready to send to the coordinator.
func (s *Session) HandleFinalTransaction(msg *wiremsg.FinalTransaction) (*wiremsg.SignedInputs, error) {
	if msg.SessionID != s.SessionID {
		return nil, nil // ignored: mismatched session
	}

	local := msg.Tx.Copy()

	// Step 2: canonical reorder; mismatch is logged, never fatal.
	canonical := canonicalCopy(local)
	if canonical.TxHash() != msg.Tx.TxHash() {
		log.Infof("session %d: final tx is not in canonical order, continuing anyway", s.SessionID)
	}

	// Step 3: basic validity.
	if !basicallyValid(local) {
		log.Debugf("session %d: final tx failed basic validation: %v", s.SessionID,
			newLogClosure(func() string { return spew.Sdump(local) }))
		s.LastMessage = StatusErrSession
		s.cleanup(Error)
		return nil, ErrRefuseToSign
	}

	// Step 4: everything we submitted must be present.
	if !s.allMineArePresent(local) {
		log.Debugf("session %d: final tx is missing a submitted input/output: %v", s.SessionID,
			newLogClosure(func() string { return spew.Sdump(s.mine) }))
		s.LastMessage = StatusErrSession
		s.cleanup(Error)
		return nil, ErrRefuseToSign
	}

	// Step 5: sign only our inputs.
	indices := s.ourInputIndices(local)
	if err := s.Wallet.SignTransactionInputs(local, indices); err != nil {
		s.LastMessage = StatusErrSession
		s.cleanup(Error)
		return nil, ErrRefuseToSign
	}
	s.signedInputs = indices
	s.State = Signing
	s.LastStepTime = time.Now()
	s.LastMessage = StatusSigning

	out := &wiremsg.SignedInputs{Inputs: make([]wiremsg.SignedTxIn, len(indices))}
	for i, idx := range indices {
		out.Inputs[i] = wiremsg.SignedTxIn{
			Index:           uint32(idx),
			SignatureScript: local.TxIn[idx].SignatureScript,
		}
	}
	return out, nil
}

// HandleComplete implements spec.md §4.F's terminal Complete handling.
func (s *Session) HandleComplete(msg *wiremsg.Complete) {
	if msg.SessionID != s.SessionID {
		return
	}
	if msg.MessageID == wiremsg.MsgSuccess {
		s.Keys.KeepAll()
		s.LastMessage = StatusSuccess
	} else {
		s.Keys.ReturnAll()
		s.LastMessage = StatusErrSession
	}
	s.unlockAll()
	s.State = Idle
	s.SessionID = 0
}

// CheckTimeout implements spec.md §4.F's timer-tick transitions.
func (s *Session) CheckTimeout(now time.Time) {
	elapsed := now.Sub(s.LastStepTime)
	switch s.State {
	case Error:
		if elapsed >= protocol.ErrorResetDelay {
			s.State = Idle
			s.LastMessage = StatusIdle
		}
	case Signing:
		if elapsed > protocol.SigningTimeout+protocol.TimeoutGrace {
			s.LastMessage = StatusErrSession
			s.cleanup(Error)
		}
	case Queue, AcceptingEntries:
		if elapsed > protocol.QueueTimeout+protocol.TimeoutGrace {
			s.LastMessage = StatusErrSession
			s.cleanup(Error)
		}
	}
}

// transitionToError is cleanup() specialized for the Pending-expiry path,
// which does not carry a fresh LastMessage of its own.
func (s *Session) transitionToError(msg Status) {
	s.LastMessage = msg
	s.cleanup(Error)
}

// cleanup releases every resource the session holds and moves to target
// (always Error here; check_timeout's Error->Idle path does not need
// cleanup because nothing is held in Error). Every exit path that leaves
// Queue/AcceptingEntries/Signing routes through this.
func (s *Session) cleanup(target State) {
	s.Keys.ReturnAll()
	s.unlockAll()
	s.State = target
	s.SessionID = 0
	s.Pending = nil
	s.LastStepTime = time.Now()
}

func (s *Session) unlockAll() {
	for _, op := range s.LockedOutpoints {
		s.Wallet.UnlockCoin(op)
	}
	s.LockedOutpoints = nil
}

// allMineArePresent implements §4.F.1 step 4.
func (s *Session) allMineArePresent(tx *wire.MsgTx) bool {
	for _, wantOut := range s.mine.outputs {
		found := false
		for _, got := range tx.TxOut {
			if got.Value == wantOut.Value && bytes.Equal(got.PkScript, wantOut.PkScript) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, wantIn := range s.mine.inputs {
		found := false
		for _, got := range tx.TxIn {
			if got.PreviousOutPoint == wantIn.PreviousOutPoint {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ourInputIndices returns, for every input we submitted, its index in tx.
func (s *Session) ourInputIndices(tx *wire.MsgTx) []int {
	var indices []int
	for _, wantIn := range s.mine.inputs {
		for i, got := range tx.TxIn {
			if got.PreviousOutPoint == wantIn.PreviousOutPoint {
				indices = append(indices, i)
				break
			}
		}
	}
	return indices
}

// basicallyValid implements the protocol's minimal validity predicate: no
// zero/negative amounts, no empty scripts.
func basicallyValid(tx *wire.MsgTx) bool {
	if len(tx.TxIn) == 0 || len(tx.TxOut) == 0 {
		return false
	}
	for _, out := range tx.TxOut {
		if out.Value <= 0 || len(out.PkScript) == 0 {
			return false
		}
	}
	return true
}

// canonicalCopy returns a copy of tx with inputs sorted by
// (prev_hash, index) and outputs sorted by (value, script): a BIP69
// equivalent (spec.md §4.F.1 step 2).
func canonicalCopy(tx *wire.MsgTx) *wire.MsgTx {
	out := tx.Copy()
	sort.SliceStable(out.TxIn, func(i, j int) bool {
		a, b := out.TxIn[i].PreviousOutPoint, out.TxIn[j].PreviousOutPoint
		if cmp := bytes.Compare(a.Hash[:], b.Hash[:]); cmp != 0 {
			return cmp < 0
		}
		return a.Index < b.Index
	})
	sort.SliceStable(out.TxOut, func(i, j int) bool {
		a, b := out.TxOut[i], out.TxOut[j]
		if a.Value != b.Value {
			return a.Value < b.Value
		}
		return bytes.Compare(a.PkScript, b.PkScript) < 0
	})
	return out
}
