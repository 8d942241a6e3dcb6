package simulation

import (
	"math"

	"safeloan/internal/forecast"
	"safeloan/internal/loan"
	"safeloan/internal/structuring"
)

// Settings are the engine parameters shared by every month of a run.
type Settings struct {
	LookbackWindow          int     `json:"lookback_window" yaml:"lookback_window" validate:"gte=1"`
	TargetDTI               float64 `json:"target_dti" yaml:"target_dti" validate:"gt=0,lt=1"`
	AnnualInterestRate      float64 `json:"annual_interest_rate" yaml:"annual_interest_rate" validate:"gte=0"`
	TenureCapMultiplier     float64 `json:"tenure_cap_multiplier" yaml:"tenure_cap_multiplier" validate:"gte=1"`
	MinimumTokenInstallment float64 `json:"minimum_token_installment" yaml:"minimum_token_installment" validate:"gt=0"`
}

// DefaultSettings returns the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		LookbackWindow:          forecast.DefaultWindow,
		TargetDTI:               0.40,
		AnnualInterestRate:      0.12,
		TenureCapMultiplier:     2,
		MinimumTokenInstallment: 100,
	}
}

// MonthlyRate is the periodic rate applied to the outstanding principal.
func (s Settings) MonthlyRate() float64 {
	return s.AnnualInterestRate / 12
}

// Policy maps the settings onto the structurer's policy.
func (s Settings) Policy() structuring.Policy {
	return structuring.Policy{
		TargetDTI:           s.TargetDTI,
		MonthlyRate:         s.MonthlyRate(),
		TenureCapMultiplier: s.TenureCapMultiplier,
		MinimumInstallment:  s.MinimumTokenInstallment,
	}
}

// Validate checks every setting against its documented domain.
func (s Settings) Validate() error {
	if s.LookbackWindow < 1 {
		return loan.Invalidf("lookback window must be positive, got %d", s.LookbackWindow)
	}
	if s.AnnualInterestRate < 0 || math.IsNaN(s.AnnualInterestRate) {
		return loan.Invalidf("annual interest rate must be non-negative, got %v", s.AnnualInterestRate)
	}
	return s.Policy().Validate()
}
