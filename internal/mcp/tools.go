package mcp

import (
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func ptr[T any](v T) *T { return &v }

// schemaFor infers the input schema of T and lets bound tighten individual
// properties with numeric limits the struct tags cannot express.
func schemaFor[T any](bound func(props map[string]*jsonschema.Schema)) *jsonschema.Schema {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		// Input types are fixed at compile time; a failure here is a programming error.
		panic(err)
	}
	if bound != nil {
		bound(schema.Properties)
	}
	return schema
}

func nonNegative(s *jsonschema.Schema) {
	if s != nil {
		s.Minimum = ptr(0.0)
	}
}

func positive(s *jsonschema.Schema) {
	if s != nil {
		s.ExclusiveMinimum = ptr(0.0)
	}
}

func nonNegativeItems(s *jsonschema.Schema) {
	if s != nil && s.Items != nil {
		s.Items.Minimum = ptr(0.0)
	}
}

func (s *Server) registerTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "forecast_income",
		Description: "Forecast safe and potential monthly income from an income history. " +
			"Safe income is the recent mean minus one standard deviation; volatility is the coefficient of variation.",
		InputSchema: schemaFor[ForecastInput](func(p map[string]*jsonschema.Schema) {
			nonNegativeItems(p["incomes"])
			if w := p["lookback_window"]; w != nil {
				w.Minimum = ptr(1.0)
			}
		}),
	}, s.handleForecastIncome)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "assess_risk",
		Description: "Score repayment stress (0-100) for an installment against an income forecast, with Safe/Watch/Critical zone and breakdown.",
		InputSchema: schemaFor[RiskInput](func(p map[string]*jsonschema.Schema) {
			nonNegative(p["safe_income"])
			nonNegative(p["volatility"])
			nonNegative(p["current_installment"])
			nonNegative(p["missed_payments"])
		}),
	}, s.handleAssessRisk)

	mcp.AddTool(server, &mcp.Tool{
		Name: "structure_loan",
		Description: "Decide the next installment and tenure for a loan given an income forecast. " +
			"Never extends tenure beyond the configured cap; switches to interest-only instead.",
		InputSchema: schemaFor[StructureInput](func(p map[string]*jsonschema.Schema) {
			nonNegative(p["safe_income"])
			nonNegative(p["remaining_principal"])
			for _, k := range []string{"current_tenure", "original_tenure"} {
				if t := p[k]; t != nil {
					t.Minimum = ptr(1.0)
				}
			}
		}),
	}, s.handleStructureLoan)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "simulate_fixed_loan",
		Description: "Replay an income history against a traditional fixed-installment loan and report defaults, penalties and distress.",
		InputSchema: schemaFor[FixedLoanInput](func(p map[string]*jsonschema.Schema) {
			nonNegativeItems(p["incomes"])
			positive(p["principal"])
			nonNegative(p["annual_interest_rate"])
			if t := p["tenure_months"]; t != nil {
				t.Minimum = ptr(1.0)
			}
		}),
	}, s.handleSimulateFixedLoan)

	mcp.AddTool(server, &mcp.Tool{
		Name: "run_simulation",
		Description: "Run the adaptive loan month by month over an income history (or a generated profile) and compare it with the fixed-installment loan. " +
			"Returns the summary and, when enabled, Mermaid charts.",
		InputSchema: schemaFor[SimulationInput](func(p map[string]*jsonschema.Schema) {
			nonNegativeItems(p["incomes"])
			positive(p["principal"])
			if t := p["tenure_months"]; t != nil {
				t.Minimum = ptr(1.0)
			}
			if m := p["months"]; m != nil {
				m.Minimum = ptr(0.0)
			}
		}),
	}, s.handleRunSimulation)
}
