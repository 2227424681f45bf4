package session

import (
	"testing"
	"time"

	"github.com/dashpay/privatesend/external"
	"github.com/dashpay/privatesend/keyscratch"
	"github.com/dashpay/privatesend/protocol"
	"github.com/dashpay/privatesend/wiremsg"
	"github.com/decred/dcrd/wire"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) (*Session, *stubWallet) {
	t.Helper()
	w := &stubWallet{}
	keys := keyscratch.New(w)
	_, err := keys.Reserve()
	require.NoError(t, err)
	s := New(w, external.Coordinator{Address: "127.0.0.1:1234"}, 1, keys)
	locked := []external.Outpoint{{Index: 0}, {Index: 1}}
	require.NoError(t, s.Start(wire.NewMsgTx(), locked, time.Now().Add(time.Minute)))
	s.SessionID = 7
	return s, w
}

// scenario 3 (spec.md §8.3): refuse to sign when the final tx omits one of
// our submitted outputs.
func TestRefuseToSignOnMissingOutput(t *testing.T) {
	s, w := newTestSession(t)

	ourIn := &wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 5}}
	ourOut1 := &wire.TxOut{Value: 100000, PkScript: []byte{0x76, 0xa9, 0x01}}
	ourOut2 := &wire.TxOut{Value: 100000, PkScript: []byte{0x76, 0xa9, 0x02}}
	s.SetEntry([]*wire.TxIn{ourIn}, []*wire.TxOut{ourOut1, ourOut2})

	final := wire.NewMsgTx()
	final.AddTxIn(&wire.TxIn{PreviousOutPoint: ourIn.PreviousOutPoint, ValueIn: 200000})
	final.AddTxOut(ourOut1) // ourOut2 is missing

	resp, err := s.HandleFinalTransaction(&wiremsg.FinalTransaction{SessionID: 7, Tx: final})
	require.ErrorIs(t, err, ErrRefuseToSign)
	require.Nil(t, resp)
	require.Equal(t, Error, s.State)
	require.Len(t, w.unlocked, 2)
	require.Len(t, w.returned, 1)
	require.Empty(t, w.kept)
}

// scenario 4 (spec.md §8.4): queue timeout.
func TestQueueTimeout(t *testing.T) {
	s, w := newTestSession(t)
	t0 := s.LastStepTime

	s.CheckTimeout(t0.Add(protocol.QueueTimeout + protocol.TimeoutGrace + time.Second))
	require.Equal(t, Error, s.State)
	require.Equal(t, StatusErrSession, s.LastMessage)
	require.Len(t, w.unlocked, 2)
	require.Len(t, w.returned, 1)
}

func TestQueueTimeoutNotYetDue(t *testing.T) {
	s, _ := newTestSession(t)
	t0 := s.LastStepTime
	s.CheckTimeout(t0.Add(protocol.QueueTimeout))
	require.Equal(t, Queue, s.State)
}

// scenario 6 (spec.md §8.6), session-local slice: happy path from
// AcceptingEntries through a valid FinalTransaction to Complete(MSG_SUCCESS).
func TestHappyPathToComplete(t *testing.T) {
	s, w := newTestSession(t)

	ourIn := &wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 5}, ValueIn: 100000}
	ourOut := &wire.TxOut{Value: 99000, PkScript: []byte{0x76, 0xa9, 0x01}}
	s.SetEntry([]*wire.TxIn{ourIn}, []*wire.TxOut{ourOut})
	require.Equal(t, AcceptingEntries, s.State)

	s.HandleStatusUpdate(&wiremsg.StatusUpdate{
		SessionID: 7, State: wiremsg.PoolStateSigning, Status: wiremsg.StatusAccepted,
	})
	require.Equal(t, Signing, s.State)

	final := wire.NewMsgTx()
	final.AddTxIn(&wire.TxIn{PreviousOutPoint: ourIn.PreviousOutPoint, ValueIn: 100000})
	final.AddTxOut(ourOut)

	resp, err := s.HandleFinalTransaction(&wiremsg.FinalTransaction{SessionID: 7, Tx: final})
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.Len(t, resp.Inputs, 1)
	require.Equal(t, Signing, s.State)

	s.HandleComplete(&wiremsg.Complete{SessionID: 7, MessageID: wiremsg.MsgSuccess})
	require.Equal(t, Idle, s.State)
	require.Equal(t, StatusSuccess, s.LastMessage)
	require.Len(t, w.kept, 1)
	require.Empty(t, w.returned)
	require.Len(t, w.unlocked, 2)
}

func TestStatusRejectedAnyStateGoesToError(t *testing.T) {
	s, w := newTestSession(t)
	s.HandleStatusUpdate(&wiremsg.StatusUpdate{SessionID: 7, Status: wiremsg.StatusRejected})
	require.Equal(t, Error, s.State)
	require.Equal(t, StatusRejected, s.LastMessage)
	require.Len(t, w.returned, 1)
	require.Len(t, w.unlocked, 2)
}

func TestFinalTransactionIgnoredOnSessionMismatch(t *testing.T) {
	s, _ := newTestSession(t)
	s.SetEntry(nil, nil)
	resp, err := s.HandleFinalTransaction(&wiremsg.FinalTransaction{SessionID: 99, Tx: wire.NewMsgTx()})
	require.NoError(t, err)
	require.Nil(t, resp)
	require.Equal(t, AcceptingEntries, s.State)
}

func TestErrorResetsToIdleAfterDelay(t *testing.T) {
	s, _ := newTestSession(t)
	s.LastMessage = StatusErrSession
	s.State = Error
	t0 := time.Now()
	s.LastStepTime = t0
	s.CheckTimeout(t0.Add(protocol.ErrorResetDelay))
	require.Equal(t, Idle, s.State)
}
