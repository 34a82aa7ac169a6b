package scoring

import (
	"math"

	"github.com/sproutsell/agricredit/internal/contracts"
)

// Mobile-money signal calibration. Sub-scores saturate so a single large
// wallet cannot dominate the farm fundamentals.
const (
	stabilityFullCount = 30.0     // monthly inflow count for a full stability score
	stabilityMax       = 20.0     // stability sub-score ceiling
	liquidityFullFlow  = 100000.0 // inflow volume for a full liquidity score
	liquidityMax       = 20.0     // liquidity sub-score ceiling
	prudenceBonus      = 10.0     // awarded for positive net flow
	signalsMax         = stabilityMax + liquidityMax + prudenceBonus
)

// TransactionSignals summarizes mobile-money activity as bounded sub-scores.
type TransactionSignals struct {
	Stability float64 `json:"stability"` // inflow frequency, 0-20
	Liquidity float64 `json:"liquidity"` // inflow volume, 0-20
	Prudence  float64 `json:"prudence"`  // positive net flow, 0 or 10
}

// Total returns the combined sub-score, 0-50.
func (t TransactionSignals) Total() float64 {
	return t.Stability + t.Liquidity + t.Prudence
}

// ComputeTransactionSignals derives sub-scores from an M-Pesa summary.
func ComputeTransactionSignals(m *contracts.MpesaData) TransactionSignals {
	if m == nil {
		return TransactionSignals{}
	}

	return TransactionSignals{
		Stability: math.Min(float64(m.InflowCount)/stabilityFullCount*stabilityMax, stabilityMax),
		Liquidity: math.Min(m.TotalInflows/liquidityFullFlow*liquidityMax, liquidityMax),
		Prudence:  prudence(m),
	}
}

func prudence(m *contracts.MpesaData) float64 {
	if m.NetFlow() > 0 {
		return prudenceBonus
	}
	return 0
}

// transactionBonus maps the combined signal onto a bounded credit score
// adjustment. The heuristic score cap still applies afterwards.
func transactionBonus(m *contracts.MpesaData, maxBonus int) int {
	if maxBonus <= 0 {
		return 0
	}

	total := ComputeTransactionSignals(m).Total()
	bonus := int(math.Round(total / signalsMax * float64(maxBonus)))
	if bonus > maxBonus {
		bonus = maxBonus
	}
	return bonus
}
