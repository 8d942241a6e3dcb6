package structuring

import (
	"fmt"
	"math"

	"safeloan/internal/forecast"
	"safeloan/internal/loan"
	"safeloan/internal/stats"
)

// Action labels which branch of the restructuring policy produced a decision.
type Action string

const (
	// MaintainStandard keeps the amortization schedule unchanged.
	MaintainStandard Action = "MaintainStandard"
	// AdjustTenureMinor caps the installment at the affordable amount and
	// lengthens the tenure accordingly.
	AdjustTenureMinor Action = "AdjustTenureMinor"
	// ExtendTenureRelief lowers the installment below the sufficiency
	// threshold and extends the tenure within the cap.
	ExtendTenureRelief Action = "ExtendTenureRelief"
	// InterestOnlyRelief freezes principal repayment because the affordable
	// installment does not cover interest.
	InterestOnlyRelief Action = "InterestOnlyRelief"
	// SafeguardInterestOnly switches to interest-only because the required
	// extension would exceed the tenure cap.
	SafeguardInterestOnly Action = "SafeguardInterestOnly"
	// LoanPaidOff is terminal and absorbing.
	LoanPaidOff Action = "LoanPaidOff"
)

var actionLabels = map[Action]string{
	MaintainStandard:      "Maintain Standard",
	AdjustTenureMinor:     "Adjust Tenure (Minor)",
	ExtendTenureRelief:    "Extend Tenure (Relief)",
	InterestOnlyRelief:    "Interest Only / Relief Mode",
	SafeguardInterestOnly: "Safeguard: Interest Only",
	LoanPaidOff:           "Loan Paid Off",
}

// Label returns the human-readable name of the action.
func (a Action) Label() string {
	if l, ok := actionLabels[a]; ok {
		return l
	}
	return string(a)
}

// IsInterestOnly reports whether the action stops principal repayment.
func (a Action) IsInterestOnly() bool {
	return a == InterestOnlyRelief || a == SafeguardInterestOnly
}

// IsRelief reports whether the action lowers the borrower's burden below schedule.
func (a Action) IsRelief() bool {
	return a == ExtendTenureRelief || a.IsInterestOnly()
}

// Actions lists every action in policy order.
func Actions() []Action {
	return []Action{MaintainStandard, AdjustTenureMinor, ExtendTenureRelief, InterestOnlyRelief, SafeguardInterestOnly, LoanPaidOff}
}

// Decision is the outcome of one month's restructuring.
type Decision struct {
	NewInstallment float64     `json:"new_installment"`
	NewTenure      loan.Tenure `json:"new_tenure"`
	Action         Action      `json:"action"`
	Rationale      string      `json:"rationale"`
}

// Policy holds the affordability and guardrail parameters.
type Policy struct {
	TargetDTI           float64 // share of safe income the installment may take, in (0,1)
	MonthlyRate         float64
	TenureCapMultiplier float64 // tenure may grow to this multiple of the original tenure
	MinimumInstallment  float64 // token floor while principal remains
}

// DefaultPolicy mirrors the documented configuration defaults.
func DefaultPolicy() Policy {
	return Policy{
		TargetDTI:           0.40,
		MonthlyRate:         0.12 / 12,
		TenureCapMultiplier: 2,
		MinimumInstallment:  100,
	}
}

// Validate checks policy bounds.
func (p Policy) Validate() error {
	if !(p.TargetDTI > 0 && p.TargetDTI < 1) {
		return loan.Invalidf("target DTI must be in (0,1), got %v", p.TargetDTI)
	}
	if p.MonthlyRate < 0 || math.IsNaN(p.MonthlyRate) {
		return loan.Invalidf("monthly rate must be non-negative, got %v", p.MonthlyRate)
	}
	if p.TenureCapMultiplier < 1 {
		return loan.Invalidf("tenure cap multiplier must be at least 1, got %v", p.TenureCapMultiplier)
	}
	if p.MinimumInstallment <= 0 {
		return loan.Invalidf("minimum installment must be positive, got %v", p.MinimumInstallment)
	}
	return nil
}

// Structurer decides each month's installment and tenure. It keeps no state
// between calls.
type Structurer struct {
	policy Policy
}

// New creates a Structurer for a validated policy.
func New(p Policy) (*Structurer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Structurer{policy: p}, nil
}

// Policy returns the structurer's policy.
func (s *Structurer) Policy() Policy {
	return s.policy
}

// TenureCap returns the longest tenure permitted for a loan originally
// contracted over originalTenure months.
func (s *Structurer) TenureCap(originalTenure int) int {
	return int(math.Floor(s.policy.TenureCapMultiplier * float64(originalTenure)))
}

// Structure computes the new installment and tenure for the remaining principal.
//
// Branches, evaluated in order:
//   - principal <= 0: LoanPaidOff.
//   - affordable installment covers interest plus straight-line principal:
//     MaintainStandard when the annuity installment fits, AdjustTenureMinor otherwise.
//   - affordable (floored) installment at or below interest: InterestOnlyRelief.
//   - solved tenure beyond the cap: SafeguardInterestOnly with tenure frozen.
//   - otherwise ExtendTenureRelief.
func (s *Structurer) Structure(f forecast.IncomeForecast, remainingPrincipal float64, currentTenure, originalTenure int) (Decision, error) {
	if math.IsNaN(remainingPrincipal) {
		return Decision{}, loan.Invalidf("remaining principal is not a number")
	}
	if remainingPrincipal <= 0 {
		return Decision{
			NewInstallment: 0,
			NewTenure:      0,
			Action:         LoanPaidOff,
			Rationale:      "Debt cleared.",
		}, nil
	}
	if currentTenure < 1 {
		return Decision{}, loan.Invalidf("current tenure must be at least one month, got %d", currentTenure)
	}
	if originalTenure < 1 {
		return Decision{}, loan.Invalidf("original tenure must be at least one month, got %d", originalTenure)
	}
	if f.SafeIncome < 0 {
		return Decision{}, loan.Invalidf("safe income must be non-negative, got %v", f.SafeIncome)
	}

	r := s.policy.MonthlyRate
	tenureCap := s.TenureCap(originalTenure)
	interestDue := stats.InterestDue(remainingPrincipal, r)
	adaptive := f.SafeIncome * s.policy.TargetDTI

	// Scenario: income supports at least straight-line repayment plus interest
	if adaptive >= interestDue+remainingPrincipal/float64(currentTenure) {
		standard := stats.AnnuityPayment(remainingPrincipal, r, currentTenure)
		return s.withinCapacity(remainingPrincipal, standard, adaptive, currentTenure), nil
	}

	// Scenario: income is weak, relief mode
	payable := math.Max(adaptive, s.policy.MinimumInstallment)

	if payable <= interestDue {
		return Decision{
			NewInstallment: stats.RoundMoney(interestDue),
			NewTenure:      loan.Indefinite,
			Action:         InterestOnlyRelief,
			Rationale:      "Critical income drop. Freezing principal repayment to prevent default. Interest-only mode activated.",
		}, nil
	}

	solved := solveTenure(remainingPrincipal, r, payable)
	if solved.IsIndefinite() || int(solved) > tenureCap {
		return Decision{
			NewInstallment: stats.RoundMoney(interestDue),
			NewTenure:      loan.Tenure(currentTenure),
			Action:         SafeguardInterestOnly,
			Rationale: fmt.Sprintf("Tenure extension cap (%dm) reached. Switching to Interest-Only to prevent eternal debt.",
				tenureCap),
		}, nil
	}

	return Decision{
		NewInstallment: stats.RoundMoney(payable),
		NewTenure:      solved,
		Action:         ExtendTenureRelief,
		Rationale:      "High stress detected. Extending tenure to lower monthly burden.",
	}, nil
}

// withinCapacity keeps the standard schedule when it is affordable and
// otherwise caps the installment at the affordable amount. The annuity
// installment never exceeds interest plus straight-line principal, so the
// capped path only fires on rounding at the sufficiency boundary.
func (s *Structurer) withinCapacity(principal, standard, adaptive float64, currentTenure int) Decision {
	if standard <= adaptive {
		return Decision{
			NewInstallment: stats.RoundMoney(standard),
			NewTenure:      loan.Tenure(currentTenure),
			Action:         MaintainStandard,
			Rationale:      "Income is sufficient to support standard repayment schedule.",
		}
	}

	return Decision{
		NewInstallment: stats.RoundMoney(adaptive),
		NewTenure:      solveTenure(principal, s.policy.MonthlyRate, adaptive),
		Action:         AdjustTenureMinor,
		Rationale: fmt.Sprintf("Income dip detected. Installment re-calibrated to %d%% of safe income to maintain affordability.",
			int(math.Round(s.policy.TargetDTI*100))),
	}
}

func solveTenure(p, r, installment float64) loan.Tenure {
	n, ok := stats.SolveTenure(p, r, installment)
	if !ok {
		return loan.Indefinite
	}
	return loan.Tenure(n)
}
