package loan

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidInput marks caller contract violations (negative principal,
// non-positive tenure, out-of-range rates). Callers test for it with errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// Invalidf formats a contract violation that wraps ErrInvalidInput.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Tenure is a remaining loan term in months.
type Tenure int

// Indefinite marks a schedule that does not amortize under current terms.
// It never counts down.
const Indefinite Tenure = -1

// IsIndefinite reports whether t is the Indefinite sentinel.
func (t Tenure) IsIndefinite() bool {
	return t == Indefinite
}

func (t Tenure) String() string {
	if t.IsIndefinite() {
		return "indefinite"
	}
	return strconv.Itoa(int(t)) + "m"
}

// Terms are the contractual starting conditions of a loan.
type Terms struct {
	Principal    float64 `json:"principal" yaml:"principal" validate:"gt=0"`
	TenureMonths int     `json:"tenure_months" yaml:"tenure_months" validate:"gte=1"`
}

// Validate checks that the terms describe a loan that can be simulated.
func (t Terms) Validate() error {
	if t.Principal <= 0 {
		return Invalidf("principal must be positive, got %.2f", t.Principal)
	}
	if t.TenureMonths <= 0 {
		return Invalidf("tenure must be at least one month, got %d", t.TenureMonths)
	}
	return nil
}

// State is the mutable part of an adaptive loan. It is owned by the driver
// and updated once per simulated month.
type State struct {
	RemainingPrincipal float64 `json:"remaining_principal"`
	RemainingTenure    Tenure  `json:"remaining_tenure"`
	CurrentInstallment float64 `json:"current_installment"`
}

// PaidOff reports whether the loan has reached its terminal state.
func (s State) PaidOff() bool {
	return s.RemainingPrincipal <= 0
}
