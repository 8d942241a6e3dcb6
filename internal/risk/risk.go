package risk

import (
	"math"

	"safeloan/internal/forecast"
	"safeloan/internal/loan"
	"safeloan/internal/stats"
)

// Zone is the discrete band a risk score falls into.
type Zone string

const (
	ZoneSafe     Zone = "Safe"
	ZoneWatch    Zone = "Watch"
	ZoneCritical Zone = "Critical"
)

// Breakdown component names.
const (
	ComponentAffordability = "affordability_stress"
	ComponentVolatility    = "income_volatility"
	ComponentMissed        = "missed_payments"
)

const (
	MaxScore             = 100
	safeUpperBound       = 40
	watchUpperBound      = 70
	maxVolatilityPenalty = 20
	volatilityWeight     = 50
	missedPaymentPenalty = 15
)

// Assessment is the explainable risk view of a borrower for one month.
type Assessment struct {
	Score     int                `json:"risk_score"`
	Zone      Zone               `json:"zone"`
	RawScore  float64            `json:"raw_score"` // sum of breakdown before clamping
	Breakdown map[string]float64 `json:"breakdown"`
}

// Assess scores repayment stress from the forecast, the installment currently
// due and the number of recently missed payments.
func Assess(f forecast.IncomeForecast, currentInstallment float64, missedPayments int) (Assessment, error) {
	if currentInstallment < 0 || math.IsNaN(currentInstallment) {
		return Assessment{}, loan.Invalidf("current installment must be non-negative, got %v", currentInstallment)
	}
	if missedPayments < 0 {
		return Assessment{}, loan.Invalidf("missed payments must be non-negative, got %d", missedPayments)
	}

	// No safe income means any obligation is unaffordable.
	if f.SafeIncome == 0 {
		return Assessment{
			Score:     MaxScore,
			Zone:      ZoneCritical,
			RawScore:  MaxScore,
			Breakdown: map[string]float64{ComponentAffordability: MaxScore},
		}, nil
	}

	stressRatio := currentInstallment / f.SafeIncome
	exactBase := math.Min(MaxScore, stressRatio*100)
	exactVolatility := math.Min(maxVolatilityPenalty, f.Volatility*volatilityWeight)
	missed := float64(missedPayments * missedPaymentPenalty)

	// Score truncates the exact sum; rounding is for display only.
	score := int(stats.Clamp(exactBase+exactVolatility+missed, 0, MaxScore))

	base := stats.Round(exactBase, 2)
	volatility := stats.Round(exactVolatility, 2)

	return Assessment{
		Score:    score,
		Zone:     ZoneFor(score),
		RawScore: stats.Round(base+volatility+missed, 2),
		Breakdown: map[string]float64{
			ComponentAffordability: base,
			ComponentVolatility:    volatility,
			ComponentMissed:        missed,
		},
	}, nil
}

// ZoneFor maps a score to its zone using inclusive upper bounds.
func ZoneFor(score int) Zone {
	switch {
	case score <= safeUpperBound:
		return ZoneSafe
	case score <= watchUpperBound:
		return ZoneWatch
	default:
		return ZoneCritical
	}
}
