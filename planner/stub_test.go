package planner

import (
	"github.com/dashpay/privatesend/external"
	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/decred/dcrd/wire"
)

type stubWallet struct {
	nextIdx     uint32
	broadcastTx *wire.MsgTx
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
func (w *stubWallet) LockCoin(external.Outpoint)   {}
func (w *stubWallet) UnlockCoin(external.Outpoint) {}
func (w *stubWallet) ReserveNewAddress() (uint32, []byte, error) {
	w.nextIdx++
	return w.nextIdx, []byte{0x76, 0xa9, byte(w.nextIdx)}, nil
}
func (w *stubWallet) KeepReservedAddress(uint32)   {}
func (w *stubWallet) ReturnReservedAddress(uint32) {}
func (w *stubWallet) SignTransaction(*wire.MsgTx) error              { return nil }
func (w *stubWallet) SignTransactionInputs(*wire.MsgTx, []int) error { return nil }
func (w *stubWallet) BroadcastTransaction(tx *wire.MsgTx) error {
	w.broadcastTx = tx
	return nil
}
func (w *stubWallet) GetTransaction(chainhash.Hash) (*wire.MsgTx, error) { panic("unused") }
func (w *stubWallet) FindKeyFromPubKeyHash([]byte) bool                 { return false }
func (w *stubWallet) IsEncrypted() bool                                 { return false }

func oneInputItem(amount dcrutil.Amount) external.TallyItem {
	return external.TallyItem{
		TotalAmount: amount,
		Inputs: []external.UTXO{{
			Outpoint: external.Outpoint{Index: 0},
			Amount:   amount,
			PkScript: []byte{0x76, 0xa9},
		}},
	}
}
