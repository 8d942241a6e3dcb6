package simulation

import (
	"errors"
	"math"
	"testing"

	"safeloan/internal/loan"
	"safeloan/internal/structuring"
)

func zeroRateSettings() Settings {
	s := DefaultSettings()
	s.AnnualInterestRate = 0
	return s
}

func newTestStepper(t *testing.T, terms loan.Terms, settings Settings) *Stepper {
	t.Helper()
	st, err := NewStepper(terms, settings)
	if err != nil {
		t.Fatalf("Failed to create stepper: %v", err)
	}
	return st
}

func TestNewStepper_InitialState(t *testing.T) {
	st := newTestStepper(t, loan.Terms{Principal: 12000, TenureMonths: 12}, DefaultSettings())

	state := st.State()
	if state.RemainingPrincipal != 12000 {
		t.Errorf("Expected principal 12000, got %.2f", state.RemainingPrincipal)
	}
	if state.RemainingTenure != 12 {
		t.Errorf("Expected tenure 12, got %v", state.RemainingTenure)
	}
	if state.CurrentInstallment != 1100 {
		t.Errorf("Expected initial installment 1100 (P/T plus 10%%), got %.2f", state.CurrentInstallment)
	}
	if st.ID() == "" {
		t.Error("Expected a run ID")
	}
}

func TestStepper_DipAndRecovery(t *testing.T) {
	st := newTestStepper(t, loan.Terms{Principal: 12000, TenureMonths: 12}, zeroRateSettings())

	tests := []struct {
		income      float64
		action      structuring.Action
		installment float64
		principal   float64
		tenure      loan.Tenure
		score       int
		shortfall   float64
		distress    float64
	}{
		{5000, structuring.MaintainStandard, 1000, 11000, 11, 22, 0, 0},
		{5000, structuring.MaintainStandard, 1000, 10000, 10, 20, 0, 0},
		{5000, structuring.MaintainStandard, 1000, 9000, 9, 20, 0, 0},
		{500, structuring.ExtendTenureRelief, 551.47, 8448.53, 16, 92, 51.47, 51.47},
		{500, structuring.SafeguardInterestOnly, 0, 8448.53, 16, 100, 0, 51.47},
	}

	for i, tt := range tests {
		snap, err := st.Step(tt.income)
		if err != nil {
			t.Fatalf("Month %d: unexpected error: %v", i+1, err)
		}
		if snap.Month != i+1 {
			t.Errorf("Expected month %d, got %d", i+1, snap.Month)
		}
		if snap.Decision.Action != tt.action {
			t.Errorf("Month %d: expected action %s, got %s", i+1, tt.action, snap.Decision.Action)
		}
		if math.Abs(snap.Decision.NewInstallment-tt.installment) > 0.001 {
			t.Errorf("Month %d: expected installment %.2f, got %.2f", i+1, tt.installment, snap.Decision.NewInstallment)
		}
		if math.Abs(snap.State.RemainingPrincipal-tt.principal) > 0.001 {
			t.Errorf("Month %d: expected principal %.2f, got %.2f", i+1, tt.principal, snap.State.RemainingPrincipal)
		}
		if snap.State.RemainingTenure != tt.tenure {
			t.Errorf("Month %d: expected tenure %v, got %v", i+1, tt.tenure, snap.State.RemainingTenure)
		}
		if snap.Risk.Score != tt.score {
			t.Errorf("Month %d: expected risk score %d, got %d", i+1, tt.score, snap.Risk.Score)
		}
		if math.Abs(snap.Shortfall-tt.shortfall) > 0.001 {
			t.Errorf("Month %d: expected shortfall %.2f, got %.2f", i+1, tt.shortfall, snap.Shortfall)
		}
		if math.Abs(snap.AdaptiveDistress-tt.distress) > 0.001 {
			t.Errorf("Month %d: expected distress %.2f, got %.2f", i+1, tt.distress, snap.AdaptiveDistress)
		}
		if snap.Baseline == nil || snap.Baseline.Month != i+1 {
			t.Errorf("Month %d: expected baseline record for the same month", i+1)
		}
	}

	if st.MissedPayments() != 1 {
		t.Errorf("Expected 1 adaptive missed payment, got %d", st.MissedPayments())
	}
	if len(st.Snapshots()) != len(tests) {
		t.Errorf("Expected %d snapshots, got %d", len(tests), len(st.Snapshots()))
	}
}

func TestStepper_IndefiniteReevaluatedAgainstCap(t *testing.T) {
	st := newTestStepper(t, loan.Terms{Principal: 100000, TenureMonths: 12}, DefaultSettings())

	incomes := []float64{20000, 1000, 1000, 1000, 30000, 30000, 30000}
	want := []structuring.Action{
		structuring.ExtendTenureRelief,
		structuring.InterestOnlyRelief,
		structuring.InterestOnlyRelief,
		structuring.InterestOnlyRelief,
		structuring.InterestOnlyRelief,
		structuring.SafeguardInterestOnly,
		structuring.MaintainStandard,
	}

	var last Snapshot
	for i, income := range incomes {
		snap, err := st.Step(income)
		if err != nil {
			t.Fatalf("Month %d: unexpected error: %v", i+1, err)
		}
		if snap.Decision.Action != want[i] {
			t.Errorf("Month %d: expected %s, got %s", i+1, want[i], snap.Decision.Action)
		}
		if want[i] == structuring.InterestOnlyRelief {
			if !snap.State.RemainingTenure.IsIndefinite() {
				t.Errorf("Month %d: expected indefinite tenure, got %v", i+1, snap.State.RemainingTenure)
			}
			if snap.State.RemainingPrincipal != 93000 {
				t.Errorf("Month %d: expected principal frozen at 93000, got %.2f", i+1, snap.State.RemainingPrincipal)
			}
		}
		last = snap
	}

	// Month 6 freezes at the 24 month cap, month 7 amortizes over it.
	if last.Decision.NewTenure != 24 {
		t.Errorf("Expected standard schedule over the capped 24 months, got %v", last.Decision.NewTenure)
	}
	if last.State.RemainingTenure != 23 {
		t.Errorf("Expected remaining tenure 23, got %v", last.State.RemainingTenure)
	}
}

func TestStepper_PayoffIsAbsorbing(t *testing.T) {
	st := newTestStepper(t, loan.Terms{Principal: 12000, TenureMonths: 12}, DefaultSettings())

	prev := st.State().RemainingPrincipal
	for month := 1; month <= 14; month++ {
		snap, err := st.Step(20000)
		if err != nil {
			t.Fatalf("Month %d: unexpected error: %v", month, err)
		}
		if snap.State.RemainingPrincipal > prev {
			t.Errorf("Month %d: principal increased from %.2f to %.2f", month, prev, snap.State.RemainingPrincipal)
		}
		prev = snap.State.RemainingPrincipal

		switch {
		case month <= 12:
			if snap.Decision.Action != structuring.MaintainStandard {
				t.Errorf("Month %d: expected %s, got %s", month, structuring.MaintainStandard, snap.Decision.Action)
			}
		default:
			if snap.Decision.Action != structuring.LoanPaidOff {
				t.Errorf("Month %d: expected %s, got %s", month, structuring.LoanPaidOff, snap.Decision.Action)
			}
			if snap.Decision.NewInstallment != 0 || snap.Decision.NewTenure != 0 {
				t.Errorf("Month %d: expected zero terms after payoff, got %+v", month, snap.Decision)
			}
		}
	}

	if !st.State().PaidOff() {
		t.Errorf("Expected loan paid off, got %+v", st.State())
	}
}

func TestStepper_RejectsInvalidIncome(t *testing.T) {
	st := newTestStepper(t, loan.Terms{Principal: 12000, TenureMonths: 12}, DefaultSettings())

	for _, income := range []float64{-1, math.NaN(), math.Inf(1)} {
		if _, err := st.Step(income); !errors.Is(err, loan.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput for income %v, got %v", income, err)
		}
	}
	if st.Month() != 0 {
		t.Errorf("Expected rejected incomes to leave the history empty, got %d months", st.Month())
	}
}

func TestNewStepper_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name     string
		terms    loan.Terms
		settings func(*Settings)
	}{
		{"zero principal", loan.Terms{Principal: 0, TenureMonths: 12}, nil},
		{"zero tenure", loan.Terms{Principal: 1000, TenureMonths: 0}, nil},
		{"zero window", loan.Terms{Principal: 1000, TenureMonths: 12}, func(s *Settings) { s.LookbackWindow = 0 }},
		{"negative rate", loan.Terms{Principal: 1000, TenureMonths: 12}, func(s *Settings) { s.AnnualInterestRate = -0.1 }},
		{"dti out of range", loan.Terms{Principal: 1000, TenureMonths: 12}, func(s *Settings) { s.TargetDTI = 1.5 }},
		{"cap below one", loan.Terms{Principal: 1000, TenureMonths: 12}, func(s *Settings) { s.TenureCapMultiplier = 0.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := DefaultSettings()
			if tt.settings != nil {
				tt.settings(&settings)
			}
			if _, err := NewStepper(tt.terms, settings); !errors.Is(err, loan.ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput, got %v", err)
			}
		})
	}
}
