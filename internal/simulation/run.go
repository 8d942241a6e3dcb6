package simulation

import (
	"context"
	"time"

	"safeloan/internal/baseline"
	"safeloan/internal/loan"
	"safeloan/internal/stats"
	"safeloan/internal/structuring"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Summary condenses a run into the figures used to compare both tracks.
type Summary struct {
	Months                 int                        `json:"months"`
	MedianIncome           float64                    `json:"median_income"`
	AdaptiveMissedPayments int                        `json:"adaptive_missed_payments"`
	BaselineMissedPayments int                        `json:"baseline_missed_payments"`
	DefaultsAvoided        int                        `json:"defaults_avoided"`
	AdaptiveDistress       float64                    `json:"adaptive_distress"`
	BaselineDistress       float64                    `json:"baseline_distress"`
	BaselinePenalties      float64                    `json:"baseline_penalties"`
	FinalPrincipal         float64                    `json:"final_principal"`
	FinalInstallment       float64                    `json:"final_installment"`
	FinalTenure            loan.Tenure                `json:"final_tenure"`
	PaidOff                bool                       `json:"paid_off"`
	GuardrailMonths        int                        `json:"guardrail_months"`
	ActionCounts           map[structuring.Action]int `json:"action_counts"`
}

// Report is the complete output of a batch run.
type Report struct {
	RunID       string          `json:"run_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Terms       loan.Terms      `json:"terms"`
	Settings    Settings        `json:"settings"`
	Snapshots   []Snapshot      `json:"snapshots"`
	Baseline    baseline.Result `json:"baseline"`
	Summary     Summary         `json:"summary"`
}

// Run simulates the adaptive loan across a whole income history and replays
// the same history against the fixed-installment baseline.
func Run(ctx context.Context, incomes []float64, terms loan.Terms, settings Settings) (Report, error) {
	stepper, err := newStepper(terms, settings, false)
	if err != nil {
		return Report{}, err
	}

	var base baseline.Result
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for _, income := range incomes {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, err := stepper.Step(income); err != nil {
				return err
			}
		}
		return nil
	})

	g.Go(func() error {
		res, err := baseline.Simulate(incomes, terms.Principal, terms.TenureMonths, settings.AnnualInterestRate)
		if err != nil {
			return err
		}
		base = res
		return nil
	})

	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	snapshots := stepper.Snapshots()
	for i := range snapshots {
		snapshots[i].Baseline = &base.Trajectory[i]
	}

	report := Report{
		RunID:       stepper.ID(),
		GeneratedAt: time.Now().UTC(),
		Terms:       terms,
		Settings:    settings,
		Snapshots:   snapshots,
		Baseline:    base,
		Summary:     Summarize(incomes, snapshots, base, stepper.State()),
	}

	log.Info().
		Str("run", report.RunID).
		Int("months", report.Summary.Months).
		Int("adaptive_missed", report.Summary.AdaptiveMissedPayments).
		Int("baseline_missed", report.Summary.BaselineMissedPayments).
		Float64("adaptive_distress", report.Summary.AdaptiveDistress).
		Float64("baseline_distress", report.Summary.BaselineDistress).
		Msg("Simulation complete")

	return report, nil
}

// Summarize builds the comparison summary for a finished run.
func Summarize(incomes []float64, snapshots []Snapshot, base baseline.Result, final loan.State) Summary {
	s := Summary{
		Months:                 len(snapshots),
		MedianIncome:           stats.RoundMoney(stats.CalculateMedian(incomes)),
		BaselineMissedPayments: base.MissedPayments,
		BaselineDistress:       base.FinalDistress(),
		BaselinePenalties:      base.TotalPenalties,
		FinalPrincipal:         final.RemainingPrincipal,
		FinalInstallment:       final.CurrentInstallment,
		FinalTenure:            final.RemainingTenure,
		PaidOff:                final.PaidOff(),
		ActionCounts:           make(map[structuring.Action]int),
	}

	for _, snap := range snapshots {
		s.ActionCounts[snap.Decision.Action]++
		if snap.Shortfall > 0 {
			s.AdaptiveMissedPayments++
		}
		if snap.Decision.Action == structuring.SafeguardInterestOnly {
			s.GuardrailMonths++
		}
	}
	if n := len(snapshots); n > 0 {
		s.AdaptiveDistress = snapshots[n-1].AdaptiveDistress
	}
	s.DefaultsAvoided = max(0, s.BaselineMissedPayments-s.AdaptiveMissedPayments)
	return s
}
