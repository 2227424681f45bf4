package privatesend

import (
	"time"

	"github.com/dashpay/privatesend/orchestrator"
	"github.com/dashpay/privatesend/txbuilder"
	"github.com/decred/dcrd/dcrutil/v4"
)

// Config is the enumerated configuration of spec.md §6.3, expressed as
// go-flags struct tags the way the teacher's daemon config does.
type Config struct {
	Enabled      bool    `long:"enabled" description:"Enable PrivateSend mixing"`
	Amount       float64 `long:"amount" description:"Target amount of anonymized balance, in DCR"`
	Rounds       int     `long:"rounds" description:"Required mixing rounds per coin before it is considered anonymized"`
	RandomRounds int     `long:"randomrounds" description:"Extra rounds randomly probed during submit-denominate"`
	Sessions     int     `long:"sessions" description:"Max concurrent sessions / coordinator connections"`
	MultiSession bool    `long:"multisession" description:"Allow more than one session concurrently"`
	DenomsGoal   int     `long:"denomsgoal" description:"Per-denomination soft target in create-denoms planning"`
	DenomsHardCap int    `long:"denomshardcap" description:"Per-denomination hard ceiling"`
	FeeRatePerKB int64   `long:"feerateperkb" description:"Fee rate in atoms per kilobyte used by the planners"`
}

// DefaultConfig matches the teacher's convention of a package-level
// default, applied before flag parsing overrides it.
func DefaultConfig() Config {
	return Config{
		Enabled:       false,
		Rounds:        4,
		RandomRounds:  2,
		Sessions:      1,
		MultiSession:  false,
		DenomsGoal:    11,
		DenomsHardCap: 20,
		FeeRatePerKB:  10000,
	}
}

// ToOrchestratorConfig converts the enumerated configuration into the
// orchestrator's internal Config.
func (c Config) ToOrchestratorConfig() orchestrator.Config {
	return orchestrator.Config{
		Enabled:       c.Enabled,
		Amount:        dcrutil.Amount(c.Amount * dcrutil.AmountPerCoin),
		Rounds:        c.Rounds,
		RandomRounds:  c.RandomRounds,
		SessionsLimit: c.Sessions,
		MultiSession:  c.MultiSession,
		DenomsGoal:    c.DenomsGoal,
		DenomsHardCap: c.DenomsHardCap,
		FeeRate:       txbuilder.FeeRate(c.FeeRatePerKB),
	}
}

// MaintenanceTickPeriod is the manager's 1 Hz scheduling period (spec.md
// §4.K).
const MaintenanceTickPeriod = time.Second
