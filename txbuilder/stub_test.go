package txbuilder

import (
	"github.com/dashpay/privatesend/external"
	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/decred/dcrd/wire"
)

// stubWallet is a minimal external.Wallet that signs/broadcasts
// successfully and hands out deterministic placeholder scripts.
type stubWallet struct {
	nextIdx      uint32
	signCalled   bool
	broadcastTx  *wire.MsgTx
	failSign     bool
	failBroadcast bool
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
func (w *stubWallet) SignTransaction(tx *wire.MsgTx) error {
	w.signCalled = true
	if w.failSign {
		return errSigningFailed
	}
	return nil
}
func (w *stubWallet) SignTransactionInputs(*wire.MsgTx, []int) error { return nil }
func (w *stubWallet) BroadcastTransaction(tx *wire.MsgTx) error {
	if w.failBroadcast {
		return errBroadcastFailed
	}
	w.broadcastTx = tx
	return nil
}
func (w *stubWallet) GetTransaction(chainhash.Hash) (*wire.MsgTx, error) { panic("unused") }
func (w *stubWallet) FindKeyFromPubKeyHash([]byte) bool                 { return false }
func (w *stubWallet) IsEncrypted() bool                                 { return false }

type sentinelError string

func (e sentinelError) Error() string { return string(e) }

const (
	errSigningFailed    = sentinelError("signing failed")
	errBroadcastFailed  = sentinelError("broadcast failed")
)

func makeInputs(amounts ...dcrutil.Amount) []external.UTXO {
	out := make([]external.UTXO, len(amounts))
	for i, a := range amounts {
		out[i] = external.UTXO{
			Outpoint: external.Outpoint{Index: uint32(i)},
			Amount:   a,
			PkScript: []byte{0x76, 0xa9},
		}
	}
	return out
}
