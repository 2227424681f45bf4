// Package protocol holds the process-wide constants spec.md §6.4 names,
// shared by the planners, the session state machine and the orchestrator.
package protocol

import (
	"time"

	"github.com/decred/dcrd/dcrutil/v4"
)

const (
	// DenomOutputsThreshold bounds the number of outputs a single
	// create-denoms transaction may contain, keeping it under ~100kB.
	DenomOutputsThreshold = 400

	// EntryMaxSize bounds the number of inputs a single Entry message
	// may carry.
	EntryMaxSize = 9

	// QueueTimeout is how long a Queue (dsq) advertisement remains
	// valid.
	QueueTimeout = 30 * time.Second

	// SigningTimeout is how long a session may remain in the Signing
	// state before it is reset to Error.
	SigningTimeout = 10 * time.Second

	// ErrorResetDelay is how long a session remains in Error before
	// auto-resetting to Idle.
	ErrorResetDelay = 10 * time.Second

	// TimeoutGrace is the extra grace period spec.md §4.F adds on top of
	// QueueTimeout/SigningTimeout before check_timeout fires.
	TimeoutGrace = 10 * time.Second

	// DustThreshold is the minimum-relay dust bound the collateral
	// planner's leftover amount_left must fall under (spec.md §4.E). Kept
	// as an explicit constant rather than derived from chain parameters,
	// mirroring chanfunding/coin_select.go's own dustLimit: the teacher
	// threads dust as a plain dcrutil.Amount passed into its coin
	// selection, not something it reads off *chaincfg.Params.
	DustThreshold dcrutil.Amount = 1000
)
