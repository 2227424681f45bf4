package wiremsg

import (
	"encoding/binary"
	"io"

	"github.com/decred/dcrd/wire"
)

func writeInt32(w io.Writer, v int32) error {
	return binary.Write(w, binary.LittleEndian, v)
}

func readInt32(r io.Reader) (int32, error) {
	var v int32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func writeInt64(w io.Writer, v int64) error {
	return binary.Write(w, binary.LittleEndian, v)
}

func readInt64(r io.Reader) (int64, error) {
	var v int64
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func writeBool(w io.Writer, v bool) error {
	var b byte
	if v {
		b = 1
	}
	_, err := w.Write([]byte{b})
	return err
}

func readBool(r io.Reader) (bool, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

func writeOutpoint(w io.Writer, op Outpoint) error {
	if _, err := w.Write(op.Hash[:]); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, op.Index)
}

func readOutpoint(r io.Reader) (Outpoint, error) {
	var op Outpoint
	if _, err := io.ReadFull(r, op.Hash[:]); err != nil {
		return op, err
	}
	err := binary.Read(r, binary.LittleEndian, &op.Index)
	return op, err
}

// Encode writes a on the wire: the fixed-width denomination followed by the
// collateral transaction behind a presence marker (see writeTx).
func (a *Accept) Encode(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, a.Denomination); err != nil {
		return err
	}
	return writeTx(w, a.CollateralTx)
}

// Decode reads a from r, overwriting its fields.
func (a *Accept) Decode(r io.Reader) error {
	if err := binary.Read(r, binary.LittleEndian, &a.Denomination); err != nil {
		return err
	}
	tx, err := readTx(r)
	if err != nil {
		return err
	}
	a.CollateralTx = tx
	return nil
}

func (q *Queue) Encode(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, q.Denomination); err != nil {
		return err
	}
	if err := writeOutpoint(w, q.CoordOutpoint); err != nil {
		return err
	}
	if err := writeInt64(w, q.Time); err != nil {
		return err
	}
	if err := writeBool(w, q.Ready); err != nil {
		return err
	}
	return wire.WriteVarBytes(w, 0, q.Signature)
}

func (q *Queue) Decode(r io.Reader) error {
	if err := binary.Read(r, binary.LittleEndian, &q.Denomination); err != nil {
		return err
	}
	op, err := readOutpoint(r)
	if err != nil {
		return err
	}
	q.CoordOutpoint = op
	if q.Time, err = readInt64(r); err != nil {
		return err
	}
	if q.Ready, err = readBool(r); err != nil {
		return err
	}
	q.Signature, err = wire.ReadVarBytes(r, 0, wire.MaxMessagePayload, "Queue.Signature")
	return err
}

func (s *StatusUpdate) Encode(w io.Writer) error {
	for _, v := range []int32{s.SessionID, int32(s.State), int32(s.Status), int32(s.MessageID)} {
		if err := writeInt32(w, v); err != nil {
			return err
		}
	}
	return nil
}

func (s *StatusUpdate) Decode(r io.Reader) error {
	vals := make([]int32, 4)
	for i := range vals {
		v, err := readInt32(r)
		if err != nil {
			return err
		}
		vals[i] = v
	}
	s.SessionID = vals[0]
	s.State = PoolState(vals[1])
	s.Status = PoolStatusUpdate(vals[2])
	s.MessageID = PoolMessage(vals[3])
	return nil
}

func (e *Entry) Encode(w io.Writer) error {
	if err := wire.WriteVarInt(w, 0, uint64(len(e.Inputs))); err != nil {
		return err
	}
	for _, in := range e.Inputs {
		if err := wire.WriteTxIn(w, 0, 0, in); err != nil {
			return err
		}
	}
	if err := wire.WriteVarInt(w, 0, uint64(len(e.Outputs))); err != nil {
		return err
	}
	for _, out := range e.Outputs {
		if err := wire.WriteTxOut(w, 0, 0, out); err != nil {
			return err
		}
	}
	return writeTx(w, e.CollateralTx)
}

func (e *Entry) Decode(r io.Reader) error {
	nIn, err := wire.ReadVarInt(r, 0)
	if err != nil {
		return err
	}
	e.Inputs = make([]*wire.TxIn, nIn)
	for i := range e.Inputs {
		in := new(wire.TxIn)
		if err := wire.ReadTxIn(r, 0, 0, in); err != nil {
			return err
		}
		e.Inputs[i] = in
	}
	nOut, err := wire.ReadVarInt(r, 0)
	if err != nil {
		return err
	}
	e.Outputs = make([]*wire.TxOut, nOut)
	for i := range e.Outputs {
		out := new(wire.TxOut)
		if err := wire.ReadTxOut(r, 0, 0, out); err != nil {
			return err
		}
		e.Outputs[i] = out
	}
	tx, err := readTx(r)
	if err != nil {
		return err
	}
	e.CollateralTx = tx
	return nil
}

func (f *FinalTransaction) Encode(w io.Writer) error {
	if err := writeInt32(w, f.SessionID); err != nil {
		return err
	}
	return f.Tx.Serialize(w)
}

func (f *FinalTransaction) Decode(r io.Reader) error {
	id, err := readInt32(r)
	if err != nil {
		return err
	}
	f.SessionID = id
	tx := wire.NewMsgTx()
	if err := tx.Deserialize(r); err != nil {
		return err
	}
	f.Tx = tx
	return nil
}

func (s *SignedInputs) Encode(w io.Writer) error {
	if err := wire.WriteVarInt(w, 0, uint64(len(s.Inputs))); err != nil {
		return err
	}
	for _, in := range s.Inputs {
		if err := binary.Write(w, binary.LittleEndian, in.Index); err != nil {
			return err
		}
		if err := wire.WriteVarBytes(w, 0, in.SignatureScript); err != nil {
			return err
		}
	}
	return nil
}

func (s *SignedInputs) Decode(r io.Reader) error {
	n, err := wire.ReadVarInt(r, 0)
	if err != nil {
		return err
	}
	s.Inputs = make([]SignedTxIn, n)
	for i := range s.Inputs {
		if err := binary.Read(r, binary.LittleEndian, &s.Inputs[i].Index); err != nil {
			return err
		}
		sig, err := wire.ReadVarBytes(r, 0, wire.MaxMessagePayload, "SignedTxIn.SignatureScript")
		if err != nil {
			return err
		}
		s.Inputs[i].SignatureScript = sig
	}
	return nil
}

func (c *Complete) Encode(w io.Writer) error {
	if err := writeInt32(w, c.SessionID); err != nil {
		return err
	}
	return writeInt32(w, int32(c.MessageID))
}

func (c *Complete) Decode(r io.Reader) error {
	id, err := readInt32(r)
	if err != nil {
		return err
	}
	msg, err := readInt32(r)
	if err != nil {
		return err
	}
	c.SessionID = id
	c.MessageID = PoolMessage(msg)
	return nil
}

func (b *BroadcastTx) Encode(w io.Writer) error {
	if err := b.Tx.Serialize(w); err != nil {
		return err
	}
	if err := writeOutpoint(w, b.CoordOutpoint); err != nil {
		return err
	}
	if err := writeInt64(w, b.Time); err != nil {
		return err
	}
	return wire.WriteVarBytes(w, 0, b.Signature)
}

func (b *BroadcastTx) Decode(r io.Reader) error {
	tx := wire.NewMsgTx()
	if err := tx.Deserialize(r); err != nil {
		return err
	}
	b.Tx = tx
	op, err := readOutpoint(r)
	if err != nil {
		return err
	}
	b.CoordOutpoint = op
	if b.Time, err = readInt64(r); err != nil {
		return err
	}
	b.Signature, err = wire.ReadVarBytes(r, 0, wire.MaxMessagePayload, "BroadcastTx.Signature")
	return err
}
