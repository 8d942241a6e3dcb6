package forecast

import (
	"math"

	"safeloan/internal/loan"
	"safeloan/internal/stats"
)

// DefaultWindow is the trailing number of months used when none is configured.
const DefaultWindow = 3

// IncomeForecast is the conservative and optimistic view of next month's income.
type IncomeForecast struct {
	SafeIncome      float64 `json:"safe_income"`      // mean - 1 std dev, floored at 0
	PotentialIncome float64 `json:"potential_income"` // mean + 0.5 std dev
	Volatility      float64 `json:"volatility"`       // coefficient of variation
}

// Forecaster derives an IncomeForecast from a trailing window of income history.
type Forecaster struct {
	window int
}

// New creates a Forecaster over the last window observations.
func New(window int) (*Forecaster, error) {
	if window < 1 {
		return nil, loan.Invalidf("lookback window must be positive, got %d", window)
	}
	return &Forecaster{window: window}, nil
}

// Window returns the trailing window size.
func (f *Forecaster) Window() int {
	return f.window
}

// Forecast analyzes the most recent observations of history. An empty history
// yields the zero forecast.
func (f *Forecaster) Forecast(history []float64) (IncomeForecast, error) {
	if len(history) == 0 {
		return IncomeForecast{}, nil
	}

	for i, v := range history {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return IncomeForecast{}, loan.Invalidf("income for month %d must be a non-negative number, got %v", i+1, v)
		}
	}

	recent := history[max(0, len(history)-f.window):]

	mean := stats.CalculateMean(recent)
	stdDev := stats.CalculatePopulationStdDev(recent)

	volatility := 0.0
	if mean > 0 {
		volatility = stdDev / mean
	}

	return IncomeForecast{
		SafeIncome:      stats.RoundMoney(math.Max(0, mean-stdDev)),
		PotentialIncome: stats.RoundMoney(mean + 0.5*stdDev),
		Volatility:      stats.Round(volatility, 3),
	}, nil
}
