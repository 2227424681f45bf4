// Package external declares the collaborator interfaces the mixing core is
// built against: wallet storage and signing, chain state, coordinator
// discovery, peer networking and task scheduling. None of these are
// implemented in this module — production wiring lives in the host wallet
// process; tests use small stand-ins (see the *_test.go files alongside the
// packages that consume them).
package external

import (
	"time"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/decred/dcrd/wire"
)

// Outpoint identifies a single unspent transaction output.
type Outpoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// UTXO is a spendable output the wallet is aware of.
type UTXO struct {
	Outpoint
	Amount        dcrutil.Amount
	PkScript      []byte
	Confirmations int32
}

// TallyItem groups a wallet's UTXOs that share a destination, as returned by
// Wallet.SelectCoinsGroupedByAddress. The grouping is the unit the
// denomination-creation and collateral planners operate on (spec.md §3
// "Grouped tally item").
type TallyItem struct {
	Destination []byte
	TotalAmount dcrutil.Amount
	Inputs      []UTXO
}

// Balance reports the wallet's view of its coins, broken down the way the
// orchestrator needs to compute balance_needs_anonymized (spec.md §4.G.3).
type Balance struct {
	Anonymized             dcrutil.Amount
	Anonymizable           dcrutil.Amount
	DenominatedConfirmed   dcrutil.Amount
	DenominatedUnconfirmed dcrutil.Amount
	NonDenomAnonymizable   dcrutil.Amount
}

// Coordinator identifies a PrivateSend coordinator (masternode) by its
// protocol outpoint and network address.
type Coordinator struct {
	Outpoint  Outpoint
	Address   string
	OperPubKey []byte
}

// Wallet is the external storage/signing collaborator (spec.md §6.2).
type Wallet interface {
	Balance() (Balance, error)

	// SelectCoinsGroupedByAddress groups UTXOs by destination script. Flags
	// control whether denominated, unconfirmed, and frozen/locked outputs
	// are skipped; maxInputs caps the number of inputs per returned item
	// (0 means unlimited).
	SelectCoinsGroupedByAddress(skipDenominated, skipUnconfirmed,
		skipFrozen bool, maxInputs int) ([]TallyItem, error)

	CountInputsWithAmount(amt dcrutil.Amount) (int, error)
	HasCollateralInputs(requireConfirmed bool) (bool, error)

	// SelectTxDSInsByDenomination returns up to maxTotal UTXOs matching
	// denomination d, appended to out.
	SelectTxDSInsByDenomination(d uint32, maxTotal dcrutil.Amount, out *[]UTXO) error

	// SelectDenominatedAmounts returns the subset of amounts the wallet can
	// currently back with a denominated, unspent output.
	SelectDenominatedAmounts(needed dcrutil.Amount, amounts map[dcrutil.Amount]bool) (map[dcrutil.Amount]bool, error)

	LockCoin(op Outpoint)
	UnlockCoin(op Outpoint)

	// ReserveNewAddress reserves a fresh receiving script for mixing
	// output use; it is not shown to the user until Keep is called.
	ReserveNewAddress() (scriptIndex uint32, pkScript []byte, err error)
	KeepReservedAddress(scriptIndex uint32)
	ReturnReservedAddress(scriptIndex uint32)

	SignTransaction(tx *wire.MsgTx) error
	SignTransactionInputs(tx *wire.MsgTx, indices []int) error
	BroadcastTransaction(tx *wire.MsgTx) error

	GetTransaction(txid chainhash.Hash) (*wire.MsgTx, error)
	FindKeyFromPubKeyHash(pkScript []byte) bool

	IsEncrypted() bool
}

// ChainView reports blockchain sync state (spec.md §6.2).
type ChainView interface {
	IsSynced() bool
}

// CoordinatorRegistry resolves coordinators and tracks their usage (spec.md
// §6.2). BLS verification of Queue message signatures lives here, not in
// the core, because it requires the coordinator's operator public key from
// the masternode list.
type CoordinatorRegistry interface {
	ByOutpoint(op Outpoint) (Coordinator, bool)
	BySocketAddress(addr string) (Coordinator, bool)

	// VerifyQueueSignature checks sig against the coordinator identified by
	// op over the given denomination/outpoint/time/ready tuple.
	VerifyQueueSignature(op Outpoint, denom uint32, coordOutpoint Outpoint,
		t int64, ready bool, sig []byte) bool

	LastQueueTime(op Outpoint) time.Time
	DsqCount(op Outpoint) int
	DsqThreshold(op Outpoint) int
	RandomNotRecentlyUsed(exclude map[Outpoint]bool) (Coordinator, bool)
	MarkUsed(op Outpoint, t time.Time)
}

// Network is the P2P abstraction the core drives (spec.md §6.2): connection
// establishment, framing and message serialization belong to the host
// process, not to this module.
type Network interface {
	Connect(addr string) error
	Disconnect(addr string) error
	Send(addr string, msg interface{}) error
	ConnectedPeers() []string
	OnPeerDeath(fn func(addr string))
}

// Scheduler submits a callback at a fixed rate (spec.md §6.2); the Manager
// (component K) uses it for its 1 Hz maintenance tick.
type Scheduler interface {
	ScheduleAtFixedRate(period time.Duration, fn func()) (cancel func())
}
