package session

import (
	"github.com/dashpay/privatesend/external"
	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/decred/dcrd/wire"
)

type stubWallet struct {
	nextIdx        uint32
	kept, returned []uint32
	unlocked       []external.Outpoint
	signedIndices  []int
}

func (w *stubWallet) Balance() (external.Balance, error) { panic("unused") }
func (w *stubWallet) SelectCoinsGroupedByAddress(bool, bool, bool, int) ([]external.TallyItem, error) {
	panic("unused")
}
func (w *stubWallet) CountInputsWithAmount(dcrutil.Amount) (int, error) { panic("unused") }
func (w *stubWallet) HasCollateralInputs(bool) (bool, error)            { panic("unused") }
func (w *stubWallet) SelectTxDSInsByDenomination(uint32, dcrutil.Amount, *[]external.UTXO) error {
	panic("unused")
}
func (w *stubWallet) SelectDenominatedAmounts(dcrutil.Amount, map[dcrutil.Amount]bool) (map[dcrutil.Amount]bool, error) {
	panic("unused")
}
func (w *stubWallet) LockCoin(external.Outpoint) {}
func (w *stubWallet) UnlockCoin(op external.Outpoint) {
	w.unlocked = append(w.unlocked, op)
}
func (w *stubWallet) ReserveNewAddress() (uint32, []byte, error) {
	w.nextIdx++
	return w.nextIdx, []byte{0x76, 0xa9, byte(w.nextIdx)}, nil
}
func (w *stubWallet) KeepReservedAddress(idx uint32)   { w.kept = append(w.kept, idx) }
func (w *stubWallet) ReturnReservedAddress(idx uint32) { w.returned = append(w.returned, idx) }
func (w *stubWallet) SignTransaction(*wire.MsgTx) error { return nil }
func (w *stubWallet) SignTransactionInputs(tx *wire.MsgTx, indices []int) error {
	w.signedIndices = indices
	for _, i := range indices {
		tx.TxIn[i].SignatureScript = []byte{0x47, 0x30}
	}
	return nil
}
func (w *stubWallet) BroadcastTransaction(tx *wire.MsgTx) error          { return nil }
func (w *stubWallet) GetTransaction(chainhash.Hash) (*wire.MsgTx, error) { panic("unused") }
func (w *stubWallet) FindKeyFromPubKeyHash([]byte) bool                  { return false }
func (w *stubWallet) IsEncrypted() bool                                  { return false }
