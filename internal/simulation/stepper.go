package simulation

import (
	"fmt"
	"math"
	"slices"

	"safeloan/internal/baseline"
	"safeloan/internal/contract"
	"safeloan/internal/forecast"
	"safeloan/internal/loan"
	"safeloan/internal/risk"
	"safeloan/internal/stats"
	"safeloan/internal/structuring"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// initialInstallmentLoad is the markup over straight-line repayment used for
// the installment in force before the first decision.
const initialInstallmentLoad = 1.1

// Snapshot is the immutable record of one simulated month.
type Snapshot struct {
	Month            int                     `json:"month"`
	Income           float64                 `json:"income"`
	Forecast         forecast.IncomeForecast `json:"forecast"`
	Risk             risk.Assessment         `json:"risk"`
	Decision         structuring.Decision    `json:"decision"`
	Contract         contract.Update         `json:"contract"`
	State            loan.State              `json:"state"` // loan state after applying the decision
	Shortfall        float64                 `json:"shortfall,omitempty"`
	AdaptiveDistress float64                 `json:"adaptive_distress"`
	Baseline         *baseline.Record        `json:"baseline,omitempty"`
}

// Stepper drives the adaptive loan one month at a time. It owns the loan
// state and the income history; the components it calls are stateless.
type Stepper struct {
	id         string
	terms      loan.Terms
	settings   Settings
	forecaster *forecast.Forecaster
	structurer *structuring.Structurer

	// trackBaseline recomputes the fixed-installment replay on every step.
	trackBaseline bool

	incomes      []float64
	state        loan.State
	distress     float64
	missedStreak int
	missedTotal  int
	snapshots    []Snapshot
}

// NewStepper opens an adaptive loan with the given terms.
func NewStepper(terms loan.Terms, settings Settings) (*Stepper, error) {
	return newStepper(terms, settings, true)
}

func newStepper(terms loan.Terms, settings Settings, trackBaseline bool) (*Stepper, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	forecaster, err := forecast.New(settings.LookbackWindow)
	if err != nil {
		return nil, err
	}
	structurer, err := structuring.New(settings.Policy())
	if err != nil {
		return nil, err
	}

	return &Stepper{
		id:            uuid.NewString(),
		terms:         terms,
		settings:      settings,
		forecaster:    forecaster,
		structurer:    structurer,
		trackBaseline: trackBaseline,
		state: loan.State{
			RemainingPrincipal: terms.Principal,
			RemainingTenure:    loan.Tenure(terms.TenureMonths),
			CurrentInstallment: stats.RoundMoney(terms.Principal / float64(terms.TenureMonths) * initialInstallmentLoad),
		},
	}, nil
}

// ID identifies the run this stepper belongs to.
func (s *Stepper) ID() string {
	return s.id
}

// State returns the current loan state.
func (s *Stepper) State() loan.State {
	return s.state
}

// Month returns the number of months simulated so far.
func (s *Stepper) Month() int {
	return len(s.incomes)
}

// Incomes returns a copy of the income history.
func (s *Stepper) Incomes() []float64 {
	return slices.Clone(s.incomes)
}

// MissedPayments returns the number of months the adaptive installment
// exceeded income.
func (s *Stepper) MissedPayments() int {
	return s.missedTotal
}

// Snapshots returns a copy of the monthly history.
func (s *Stepper) Snapshots() []Snapshot {
	return slices.Clone(s.snapshots)
}

// Step feeds one month of income through the engine and applies the resulting
// decision to the loan state.
func (s *Stepper) Step(income float64) (Snapshot, error) {
	if income < 0 || math.IsNaN(income) || math.IsInf(income, 0) {
		log.Warn().Float64("income", income).Int("month", s.Month()+1).Msg("Rejected invalid income observation")
		return Snapshot{}, loan.Invalidf("income for month %d must be a non-negative number, got %v", s.Month()+1, income)
	}

	incomes := append(slices.Clone(s.incomes), income)
	month := len(incomes)

	// 1. Forecast once; both consumers see the same view
	f, err := s.forecaster.Forecast(incomes)
	if err != nil {
		return Snapshot{}, err
	}

	// 2. Risk against the installment currently in force
	assessment, err := risk.Assess(f, s.state.CurrentInstallment, s.missedStreak)
	if err != nil {
		return Snapshot{}, err
	}

	// 3. Restructure
	decision, err := s.structurer.Structure(f, s.state.RemainingPrincipal, s.evaluationTenure(), s.terms.TenureMonths)
	if err != nil {
		return Snapshot{}, fmt.Errorf("month %d: %w", month, err)
	}

	update := contract.Compose(contract.Terms{
		Installment: s.state.CurrentInstallment,
		Tenure:      s.state.RemainingTenure,
	}, decision)

	var record *baseline.Record
	if s.trackBaseline {
		res, err := baseline.Simulate(incomes, s.terms.Principal, s.terms.TenureMonths, s.settings.AnnualInterestRate)
		if err != nil {
			return Snapshot{}, err
		}
		record = &res.Trajectory[len(res.Trajectory)-1]
	}

	// 4. Commit
	s.incomes = incomes
	shortfall := s.apply(decision, income)

	snap := Snapshot{
		Month:            month,
		Income:           income,
		Forecast:         f,
		Risk:             assessment,
		Decision:         decision,
		Contract:         update,
		State:            s.state,
		Shortfall:        shortfall,
		AdaptiveDistress: stats.RoundMoney(s.distress),
		Baseline:         record,
	}
	s.snapshots = append(s.snapshots, snap)

	log.Debug().
		Str("run", s.id).
		Int("month", month).
		Float64("income", income).
		Float64("safe_income", f.SafeIncome).
		Int("risk_score", assessment.Score).
		Str("action", string(decision.Action)).
		Float64("installment", decision.NewInstallment).
		Str("tenure", s.state.RemainingTenure.String()).
		Msg("Month simulated")

	if decision.Action == structuring.SafeguardInterestOnly {
		log.Info().Str("run", s.id).Int("month", month).Int("cap", s.structurer.TenureCap(s.terms.TenureMonths)).Msg("Tenure cap guardrail engaged")
	}

	return snap, nil
}

// evaluationTenure is the remaining tenure handed to the structurer. An
// indefinite schedule is re-evaluated against the tenure cap.
func (s *Stepper) evaluationTenure() int {
	if s.state.RemainingTenure.IsIndefinite() {
		return s.structurer.TenureCap(s.terms.TenureMonths)
	}
	return max(1, int(s.state.RemainingTenure))
}

// apply commits a decision to the loan state and returns the month's
// shortfall against income.
func (s *Stepper) apply(d structuring.Decision, income float64) float64 {
	prev := s.state

	if d.Action == structuring.LoanPaidOff {
		s.state = loan.State{}
	} else {
		interest := stats.InterestDue(prev.RemainingPrincipal, s.settings.MonthlyRate())
		principalPaid := math.Max(0, d.NewInstallment-interest)
		principal := math.Min(prev.RemainingPrincipal, stats.RoundMoney(math.Max(0, prev.RemainingPrincipal-principalPaid)))

		tenure := d.NewTenure
		switch {
		case tenure.IsIndefinite():
			// never counts down
		case d.Action == structuring.SafeguardInterestOnly:
			// frozen at the capped tenure
		default:
			tenure = max(0, tenure-1)
		}
		if principal == 0 {
			tenure = 0
		}

		s.state = loan.State{
			RemainingPrincipal: principal,
			RemainingTenure:    tenure,
			CurrentInstallment: d.NewInstallment,
		}
	}

	shortfall := stats.RoundMoney(math.Max(0, d.NewInstallment-income))
	s.distress += shortfall
	if shortfall > 0 {
		s.missedStreak++
		s.missedTotal++
	} else {
		s.missedStreak = 0
	}
	return shortfall
}
