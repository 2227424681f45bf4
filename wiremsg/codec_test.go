package wiremsg

import (
	"bytes"
	"testing"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/wire"
	"github.com/stretchr/testify/require"
)

func sampleTx() *wire.MsgTx {
	tx := wire.NewMsgTx()
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Index: 1},
		ValueIn:          1000,
	})
	tx.AddTxOut(&wire.TxOut{Value: 900, PkScript: []byte{0x76, 0xa9, 0x14}})
	return tx
}

func TestAcceptRoundTrip(t *testing.T) {
	in := &Accept{Denomination: 3, CollateralTx: sampleTx()}
	var buf bytes.Buffer
	require.NoError(t, in.Encode(&buf))

	out := new(Accept)
	require.NoError(t, out.Decode(&buf))
	require.Equal(t, in.Denomination, out.Denomination)
	require.Equal(t, in.CollateralTx.TxHash(), out.CollateralTx.TxHash())
}

func TestAcceptRoundTripNilCollateral(t *testing.T) {
	in := &Accept{Denomination: 7}
	var buf bytes.Buffer
	require.NoError(t, in.Encode(&buf))

	out := new(Accept)
	require.NoError(t, out.Decode(&buf))
	require.Nil(t, out.CollateralTx)
}

func TestQueueRoundTrip(t *testing.T) {
	in := &Queue{
		Denomination:  4,
		CoordOutpoint: Outpoint{Hash: chainhash.Hash{1, 2, 3}, Index: 5},
		Time:          1690000000,
		Ready:         true,
		Signature:     []byte{0xde, 0xad, 0xbe, 0xef},
	}
	var buf bytes.Buffer
	require.NoError(t, in.Encode(&buf))

	out := new(Queue)
	require.NoError(t, out.Decode(&buf))
	require.Equal(t, *in, *out)
}

func TestStatusUpdateRoundTrip(t *testing.T) {
	in := &StatusUpdate{SessionID: 42, State: PoolStateSigning, Status: StatusAccepted, MessageID: MsgEntriesAdded}
	var buf bytes.Buffer
	require.NoError(t, in.Encode(&buf))

	out := new(StatusUpdate)
	require.NoError(t, out.Decode(&buf))
	require.Equal(t, *in, *out)
}

func TestEntryRoundTrip(t *testing.T) {
	in := &Entry{
		Inputs: []*wire.TxIn{
			{PreviousOutPoint: wire.OutPoint{Index: 1}, ValueIn: 100000},
		},
		Outputs: []*wire.TxOut{
			{Value: 100000, PkScript: []byte{0x76, 0xa9, 0x14}},
		},
		CollateralTx: sampleTx(),
	}
	var buf bytes.Buffer
	require.NoError(t, in.Encode(&buf))

	out := new(Entry)
	require.NoError(t, out.Decode(&buf))
	require.Len(t, out.Inputs, 1)
	require.Len(t, out.Outputs, 1)
	require.Equal(t, in.Outputs[0].Value, out.Outputs[0].Value)
	require.Equal(t, in.CollateralTx.TxHash(), out.CollateralTx.TxHash())
}

func TestFinalTransactionRoundTrip(t *testing.T) {
	in := &FinalTransaction{SessionID: 9, Tx: sampleTx()}
	var buf bytes.Buffer
	require.NoError(t, in.Encode(&buf))

	out := new(FinalTransaction)
	require.NoError(t, out.Decode(&buf))
	require.Equal(t, in.SessionID, out.SessionID)
	require.Equal(t, in.Tx.TxHash(), out.Tx.TxHash())
}

func TestSignedInputsRoundTrip(t *testing.T) {
	in := &SignedInputs{Inputs: []SignedTxIn{
		{Index: 0, SignatureScript: []byte{1, 2, 3}},
		{Index: 2, SignatureScript: []byte{4, 5}},
	}}
	var buf bytes.Buffer
	require.NoError(t, in.Encode(&buf))

	out := new(SignedInputs)
	require.NoError(t, out.Decode(&buf))
	require.Equal(t, *in, *out)
}

func TestCompleteRoundTrip(t *testing.T) {
	in := &Complete{SessionID: 11, MessageID: MsgSuccess}
	var buf bytes.Buffer
	require.NoError(t, in.Encode(&buf))

	out := new(Complete)
	require.NoError(t, out.Decode(&buf))
	require.Equal(t, *in, *out)
}

func TestBroadcastTxRoundTrip(t *testing.T) {
	in := &BroadcastTx{
		Tx:            sampleTx(),
		CoordOutpoint: Outpoint{Hash: chainhash.Hash{9}, Index: 2},
		Time:          1690000001,
		Signature:     []byte{0xaa, 0xbb},
	}
	var buf bytes.Buffer
	require.NoError(t, in.Encode(&buf))

	out := new(BroadcastTx)
	require.NoError(t, out.Decode(&buf))
	require.Equal(t, in.Tx.TxHash(), out.Tx.TxHash())
	require.Equal(t, in.CoordOutpoint, out.CoordOutpoint)
	require.Equal(t, in.Time, out.Time)
	require.Equal(t, in.Signature, out.Signature)
}
