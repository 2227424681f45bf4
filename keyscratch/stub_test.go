package keyscratch

import (
	"github.com/dashpay/privatesend/external"
	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/decred/dcrd/wire"
)

// stubWallet implements external.Wallet with panics for most of what this
// package's tests don't exercise (coin locking and IsEncrypted are harmless
// no-ops); fakeWallet embeds it and overrides only the key-reservation
// methods.
type stubWallet struct{}

func (stubWallet) Balance() (external.Balance, error) { panic("unused") }
func (stubWallet) SelectCoinsGroupedByAddress(bool, bool, bool, int) ([]external.TallyItem, error) {
	panic("unused")
}
func (stubWallet) CountInputsWithAmount(dcrutil.Amount) (int, error)    { panic("unused") }
func (stubWallet) HasCollateralInputs(bool) (bool, error)               { panic("unused") }
func (stubWallet) SelectTxDSInsByDenomination(uint32, dcrutil.Amount, *[]external.UTXO) error {
	panic("unused")
}
func (stubWallet) SelectDenominatedAmounts(dcrutil.Amount, map[dcrutil.Amount]bool) (map[dcrutil.Amount]bool, error) {
	panic("unused")
}
func (stubWallet) LockCoin(external.Outpoint)                     {}
func (stubWallet) UnlockCoin(external.Outpoint)                   {}
func (stubWallet) ReserveNewAddress() (uint32, []byte, error)      { panic("unused") }
func (stubWallet) KeepReservedAddress(uint32)                      { panic("unused") }
func (stubWallet) ReturnReservedAddress(uint32)                    { panic("unused") }
func (stubWallet) SignTransaction(*wire.MsgTx) error               { panic("unused") }
func (stubWallet) SignTransactionInputs(*wire.MsgTx, []int) error  { panic("unused") }
func (stubWallet) BroadcastTransaction(*wire.MsgTx) error          { panic("unused") }
func (stubWallet) GetTransaction(chainhash.Hash) (*wire.MsgTx, error) {
	panic("unused")
}
func (stubWallet) FindKeyFromPubKeyHash([]byte) bool { panic("unused") }
func (stubWallet) IsEncrypted() bool                 { return false }
