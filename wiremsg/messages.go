// Package wiremsg defines the PrivateSend wire messages (spec.md §6.1) and
// their binary encoding. Framing, transport and general message dispatch
// belong to the host's Network abstraction; this package only knows how to
// turn a message struct into bytes and back.
package wiremsg

import (
	"io"

	"github.com/decred/dcrd/wire"
)

// Command is the short wire tag identifying a message type, mirroring
// PrivateSend's historical dsa/dsq/dssu/... tags.
type Command string

const (
	CmdAccept          Command = "dsa"
	CmdQueue           Command = "dsq"
	CmdStatusUpdate    Command = "dssu"
	CmdEntry           Command = "dsi"
	CmdFinalTransaction Command = "dsf"
	CmdSignedInputs    Command = "dss"
	CmdComplete        Command = "dsc"
	CmdBroadcastTx     Command = "dstx"
)

// PoolState is the coordinator-declared protocol state carried on
// StatusUpdate (spec.md §3 Session.state has the same four+error values,
// but this is the wire-level copy sent by the coordinator).
type PoolState int32

const (
	PoolStateIdle PoolState = iota
	PoolStateQueue
	PoolStateAcceptingEntries
	PoolStateSigning
	PoolStateError
)

// PoolStatusUpdate is the accept/reject verdict attached to a StatusUpdate.
type PoolStatusUpdate int32

const (
	StatusRejected PoolStatusUpdate = iota
	StatusAccepted
)

// PoolMessage identifies why a StatusUpdate/Complete was sent.
type PoolMessage int32

const (
	MsgEntriesAdded PoolMessage = iota
	MsgSuccess
	ErrSession
	ErrQueueFull
	ErrDenomNotMatch
	ErrConnectionTimeout
	ErrMissingTx
)

// Outpoint mirrors wire.OutPoint for standalone (non-tx-input) use in Queue
// messages.
type Outpoint struct {
	Hash  [32]byte
	Index uint32
}

// Accept ("dsa"): client -> coordinator, requests to join or open a
// denomination's mixing queue.
type Accept struct {
	Denomination uint32
	CollateralTx *wire.MsgTx
}

// Queue ("dsq"): coordinator broadcast advertising readiness to mix at a
// denomination; BLS-signed over the first four fields by the coordinator's
// operator key (verification is external.CoordinatorRegistry's job).
type Queue struct {
	Denomination  uint32
	CoordOutpoint Outpoint
	Time          int64
	Ready         bool
	Signature     []byte
}

// StatusUpdate ("dssu"): coordinator -> client, reports session
// acceptance/progress.
type StatusUpdate struct {
	SessionID int32
	State     PoolState
	Status    PoolStatusUpdate
	MessageID PoolMessage
}

// Entry ("dsi"): client -> coordinator, one client's contribution to the
// session.
type Entry struct {
	Inputs       []*wire.TxIn
	Outputs      []*wire.TxOut
	CollateralTx *wire.MsgTx
}

// FinalTransaction ("dsf"): coordinator -> client, the assembled
// multi-party transaction awaiting signatures.
type FinalTransaction struct {
	SessionID int32
	Tx        *wire.MsgTx
}

// SignedTxIn is one signed input pushed back to the coordinator.
type SignedTxIn struct {
	Index           uint32
	SignatureScript []byte
}

// SignedInputs ("dss"): client -> coordinator.
type SignedInputs struct {
	Inputs []SignedTxIn
}

// Complete ("dsc"): coordinator -> client, terminal verdict for the round.
type Complete struct {
	SessionID int32
	MessageID PoolMessage
}

// BroadcastTx ("dstx"): coordinator -> mempool relay of the finished
// transaction, signed by the coordinator over the tx hash plus its
// outpoint/time.
type BroadcastTx struct {
	Tx            *wire.MsgTx
	CoordOutpoint Outpoint
	Time          int64
	Signature     []byte
}

// writeTx serializes tx, or a zero-length marker if tx is nil.
func writeTx(w io.Writer, tx *wire.MsgTx) error {
	if tx == nil {
		return wire.WriteVarInt(w, 0, 0)
	}
	if err := wire.WriteVarInt(w, 0, 1); err != nil {
		return err
	}
	return tx.Serialize(w)
}

func readTx(r io.Reader) (*wire.MsgTx, error) {
	present, err := wire.ReadVarInt(r, 0)
	if err != nil {
		return nil, err
	}
	if present == 0 {
		return nil, nil
	}
	tx := wire.NewMsgTx()
	if err := tx.Deserialize(r); err != nil {
		return nil, err
	}
	return tx, nil
}
