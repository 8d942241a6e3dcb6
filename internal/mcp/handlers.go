package mcp

import (
	"context"
	"fmt"

	"safeloan/internal/baseline"
	"safeloan/internal/contract"
	"safeloan/internal/forecast"
	"safeloan/internal/income"
	"safeloan/internal/loan"
	"safeloan/internal/risk"
	"safeloan/internal/simulation"
	"safeloan/internal/structuring"
	"safeloan/internal/visuals"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// ForecastInput is the argument of forecast_income.
type ForecastInput struct {
	Incomes        []float64 `json:"incomes" jsonschema:"monthly income history, oldest first"`
	LookbackWindow int       `json:"lookback_window,omitempty" jsonschema:"number of recent months to analyze (default from configuration)"`
}

// ForecastOutput is the result of forecast_income.
type ForecastOutput struct {
	Forecast forecast.IncomeForecast `json:"forecast"`
	Window   int                     `json:"window"`
}

func (s *Server) handleForecastIncome(_ context.Context, _ *mcp.CallToolRequest, in ForecastInput) (*mcp.CallToolResult, ForecastOutput, error) {
	window := in.LookbackWindow
	if window == 0 {
		window = s.settings.LookbackWindow
	}
	f, err := forecast.New(window)
	if err != nil {
		return nil, ForecastOutput{}, fmt.Errorf("lookback_window: %w", err)
	}
	res, err := f.Forecast(in.Incomes)
	if err != nil {
		return nil, ForecastOutput{}, fmt.Errorf("incomes: %w", err)
	}
	return nil, ForecastOutput{Forecast: res, Window: window}, nil
}

// RiskInput is the argument of assess_risk.
type RiskInput struct {
	SafeIncome         float64 `json:"safe_income" jsonschema:"conservative monthly income estimate"`
	Volatility         float64 `json:"volatility,omitempty" jsonschema:"coefficient of variation of recent income"`
	CurrentInstallment float64 `json:"current_installment" jsonschema:"installment currently due"`
	MissedPayments     int     `json:"missed_payments,omitempty" jsonschema:"recently missed payments"`
}

func (s *Server) handleAssessRisk(_ context.Context, _ *mcp.CallToolRequest, in RiskInput) (*mcp.CallToolResult, risk.Assessment, error) {
	if in.SafeIncome < 0 {
		return nil, risk.Assessment{}, fmt.Errorf("safe_income: %w", loan.Invalidf("must be non-negative, got %v", in.SafeIncome))
	}
	a, err := risk.Assess(forecast.IncomeForecast{SafeIncome: in.SafeIncome, Volatility: in.Volatility}, in.CurrentInstallment, in.MissedPayments)
	if err != nil {
		return nil, risk.Assessment{}, err
	}
	return nil, a, nil
}

// StructureInput is the argument of structure_loan.
type StructureInput struct {
	SafeIncome         float64 `json:"safe_income" jsonschema:"conservative monthly income estimate"`
	Volatility         float64 `json:"volatility,omitempty" jsonschema:"coefficient of variation of recent income"`
	RemainingPrincipal float64 `json:"remaining_principal" jsonschema:"outstanding principal"`
	CurrentTenure      int     `json:"current_tenure" jsonschema:"remaining tenure in months"`
	OriginalTenure     int     `json:"original_tenure,omitempty" jsonschema:"contractual tenure in months, bounds the extension cap (defaults to current_tenure)"`
	CurrentInstallment float64 `json:"current_installment,omitempty" jsonschema:"installment in force before the decision, used for the contract message"`
}

// StructureOutput is the result of structure_loan.
type StructureOutput struct {
	Decision  structuring.Decision `json:"decision"`
	Label     string               `json:"label"`
	TenureCap int                  `json:"tenure_cap"`
	Contract  contract.Update      `json:"contract"`
}

func (s *Server) handleStructureLoan(_ context.Context, _ *mcp.CallToolRequest, in StructureInput) (*mcp.CallToolResult, StructureOutput, error) {
	st, err := structuring.New(s.settings.Policy())
	if err != nil {
		return nil, StructureOutput{}, err
	}

	original := in.OriginalTenure
	if original == 0 {
		original = in.CurrentTenure
	}

	f := forecast.IncomeForecast{SafeIncome: in.SafeIncome, Volatility: in.Volatility}
	d, err := st.Structure(f, in.RemainingPrincipal, in.CurrentTenure, original)
	if err != nil {
		return nil, StructureOutput{}, err
	}

	return nil, StructureOutput{
		Decision:  d,
		Label:     d.Action.Label(),
		TenureCap: st.TenureCap(original),
		Contract: contract.Compose(contract.Terms{
			Installment: in.CurrentInstallment,
			Tenure:      loan.Tenure(in.CurrentTenure),
		}, d),
	}, nil
}

// FixedLoanInput is the argument of simulate_fixed_loan.
type FixedLoanInput struct {
	Incomes            []float64 `json:"incomes" jsonschema:"monthly income history, oldest first"`
	Principal          float64   `json:"principal" jsonschema:"loan principal"`
	TenureMonths       int       `json:"tenure_months" jsonschema:"contractual tenure in months"`
	AnnualInterestRate *float64  `json:"annual_interest_rate,omitempty" jsonschema:"annual rate as a fraction (default from configuration)"`
}

func (s *Server) handleSimulateFixedLoan(_ context.Context, _ *mcp.CallToolRequest, in FixedLoanInput) (*mcp.CallToolResult, baseline.Result, error) {
	rate := s.settings.AnnualInterestRate
	if in.AnnualInterestRate != nil {
		rate = *in.AnnualInterestRate
	}
	res, err := baseline.Simulate(in.Incomes, in.Principal, in.TenureMonths, rate)
	if err != nil {
		return nil, baseline.Result{}, err
	}
	return nil, res, nil
}

// SimulationInput is the argument of run_simulation. Incomes take precedence
// over a generated profile.
type SimulationInput struct {
	Incomes       []float64 `json:"incomes,omitempty" jsonschema:"monthly income history, oldest first"`
	Profile       string    `json:"profile,omitempty" jsonschema:"borrower profile to generate income for: Gig Worker, Freelancer, Small Business or Salaried"`
	Months        int       `json:"months,omitempty" jsonschema:"months of income to generate for the profile (default 12)"`
	Seed          uint64    `json:"seed,omitempty" jsonschema:"random seed for generated income (default 42)"`
	Principal     float64   `json:"principal" jsonschema:"loan principal"`
	TenureMonths  int       `json:"tenure_months" jsonschema:"contractual tenure in months"`
	IncludeCharts bool      `json:"include_charts,omitempty" jsonschema:"attach Mermaid charts to the result"`
}

// SimulationOutput is the result of run_simulation.
type SimulationOutput struct {
	RunID   string             `json:"run_id"`
	Incomes []float64          `json:"incomes"`
	Summary simulation.Summary `json:"summary"`
	Charts  []string           `json:"charts,omitempty"`
}

const defaultGeneratedMonths = 12

func (s *Server) handleRunSimulation(ctx context.Context, _ *mcp.CallToolRequest, in SimulationInput) (*mcp.CallToolResult, SimulationOutput, error) {
	incomes := in.Incomes
	if len(incomes) == 0 {
		months := in.Months
		if months == 0 {
			months = defaultGeneratedMonths
		}
		seed := in.Seed
		if seed == 0 {
			seed = income.DefaultSeed
		}
		profile, err := income.ProfileByName(in.Profile)
		if err != nil {
			return nil, SimulationOutput{}, fmt.Errorf("profile: %w", err)
		}
		incomes, err = income.Generate(income.GeneratorConfig{
			Profile: profile,
			Months:  months,
			Seed:    seed,
		})
		if err != nil {
			return nil, SimulationOutput{}, fmt.Errorf("months: %w", err)
		}
	}

	report, err := simulation.Run(ctx, incomes, loan.Terms{Principal: in.Principal, TenureMonths: in.TenureMonths}, s.settings)
	if err != nil {
		return nil, SimulationOutput{}, err
	}

	s.ledger.Append(report.RunID, report.Snapshots)
	if s.ledgerDir != "" {
		if err := s.ledger.Save(s.ledgerDir, report.RunID); err != nil {
			log.Warn().Err(err).Str("run", report.RunID).Msg("Failed to persist simulation ledger")
		}
	}
	s.mu.Lock()
	s.lastRun = report.RunID
	s.mu.Unlock()

	out := SimulationOutput{
		RunID:   report.RunID,
		Incomes: incomes,
		Summary: report.Summary,
	}
	if in.IncludeCharts && s.charts {
		for _, chart := range []string{
			visuals.GenerateStressChart(report.Snapshots),
			visuals.GenerateAffordabilityChart(report.Snapshots, s.settings.TargetDTI),
			visuals.GenerateActionMix(report.Summary.ActionCounts),
		} {
			if chart != "" {
				out.Charts = append(out.Charts, chart)
			}
		}
	}
	return nil, out, nil
}
