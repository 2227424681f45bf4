package orchestrator

import (
	"time"

	"github.com/dashpay/privatesend/external"
	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/decred/dcrd/wire"
)

type stubWallet struct {
	balance       external.Balance
	encrypted     bool
	hasCollateral bool
	tallies       []external.TallyItem
	locked        []external.Outpoint
	denomAmounts  map[dcrutil.Amount]bool
}

func (w *stubWallet) Balance() (external.Balance, error) { return w.balance, nil }
func (w *stubWallet) SelectCoinsGroupedByAddress(bool, bool, bool, int) ([]external.TallyItem, error) {
	return w.tallies, nil
}
func (w *stubWallet) CountInputsWithAmount(dcrutil.Amount) (int, error) { return 0, nil }
func (w *stubWallet) HasCollateralInputs(bool) (bool, error)           { return w.hasCollateral, nil }
func (w *stubWallet) SelectTxDSInsByDenomination(uint32, dcrutil.Amount, *[]external.UTXO) error {
	return nil
}
func (w *stubWallet) SelectDenominatedAmounts(_ dcrutil.Amount, want map[dcrutil.Amount]bool) (map[dcrutil.Amount]bool, error) {
	if w.denomAmounts == nil {
		return nil, nil
	}
	out := make(map[dcrutil.Amount]bool)
	for a := range want {
		if w.denomAmounts[a] {
			out[a] = true
		}
	}
	return out, nil
}
func (w *stubWallet) LockCoin(op external.Outpoint)   { w.locked = append(w.locked, op) }
func (w *stubWallet) UnlockCoin(external.Outpoint)    {}
func (w *stubWallet) ReserveNewAddress() (uint32, []byte, error) {
	return 1, []byte{0x76, 0xa9}, nil
}
func (w *stubWallet) KeepReservedAddress(uint32)                         {}
func (w *stubWallet) ReturnReservedAddress(uint32)                       {}
func (w *stubWallet) SignTransaction(*wire.MsgTx) error                  { return nil }
func (w *stubWallet) SignTransactionInputs(*wire.MsgTx, []int) error     { return nil }
func (w *stubWallet) BroadcastTransaction(tx *wire.MsgTx) error          { return nil }
func (w *stubWallet) GetTransaction(chainhash.Hash) (*wire.MsgTx, error) { panic("unused") }
func (w *stubWallet) FindKeyFromPubKeyHash([]byte) bool                  { return false }
func (w *stubWallet) IsEncrypted() bool                                  { return w.encrypted }

type stubChain struct{ synced bool }

func (c *stubChain) IsSynced() bool { return c.synced }

type stubRegistry struct {
	randomCoords []external.Coordinator
	lastQueue    map[external.Outpoint]time.Time
	dsqCount     map[external.Outpoint]int
	dsqThreshold map[external.Outpoint]int
}

func (r *stubRegistry) ByOutpoint(op external.Outpoint) (external.Coordinator, bool) {
	for _, c := range r.randomCoords {
		if c.Outpoint == op {
			return c, true
		}
	}
	return external.Coordinator{}, false
}
func (r *stubRegistry) BySocketAddress(addr string) (external.Coordinator, bool) {
	for _, c := range r.randomCoords {
		if c.Address == addr {
			return c, true
		}
	}
	return external.Coordinator{}, false
}
func (r *stubRegistry) VerifyQueueSignature(external.Outpoint, uint32, external.Outpoint, int64, bool, []byte) bool {
	return true
}
func (r *stubRegistry) LastQueueTime(op external.Outpoint) time.Time { return r.lastQueue[op] }
func (r *stubRegistry) DsqCount(op external.Outpoint) int            { return r.dsqCount[op] }
func (r *stubRegistry) DsqThreshold(op external.Outpoint) int        { return r.dsqThreshold[op] }
func (r *stubRegistry) RandomNotRecentlyUsed(exclude map[external.Outpoint]bool) (external.Coordinator, bool) {
	for _, c := range r.randomCoords {
		if !exclude[c.Outpoint] {
			return c, true
		}
	}
	return external.Coordinator{}, false
}
func (r *stubRegistry) MarkUsed(external.Outpoint, time.Time) {}

type stubNetwork struct{}

func (n *stubNetwork) Connect(string) error          { return nil }
func (n *stubNetwork) Disconnect(string) error        { return nil }
func (n *stubNetwork) Send(string, interface{}) error { return nil }
func (n *stubNetwork) ConnectedPeers() []string        { return nil }
func (n *stubNetwork) OnPeerDeath(func(string))        {}
