// Package input holds a small, self-contained helper shared by the
// transaction-shaping components (builder, planners): estimating the
// serialized size of a still-being-built transaction. Adapted from the
// teacher's input.TxSizeEstimator, trimmed to the P2PKH-only shapes
// PrivateSend actually produces.
package input

const (
	// these are rough, conservative per-field byte costs for a Decred
	// P2PKH input/output; good enough for the fee-reservation estimate
	// the builder needs, not for exact byte-for-byte serialization.
	txOverheadEstimate  = 12
	p2pkhInputEstimate  = 166
	p2pkhOutputEstimate = 36
)

// TxSizeEstimator accumulates input/output counts and reports an estimated
// serialized transaction size.
type TxSizeEstimator struct {
	numP2PKHInputs  int
	numP2PKHOutputs int
}

// AddP2PKHInput records one more P2PKH input.
func (e *TxSizeEstimator) AddP2PKHInput() { e.numP2PKHInputs++ }

// AddP2PKHOutput records one more P2PKH output.
func (e *TxSizeEstimator) AddP2PKHOutput() { e.numP2PKHOutputs++ }

// Size returns the estimated serialized size in bytes.
func (e *TxSizeEstimator) Size() int64 {
	return int64(txOverheadEstimate) +
		int64(e.numP2PKHInputs)*p2pkhInputEstimate +
		int64(e.numP2PKHOutputs)*p2pkhOutputEstimate
}
