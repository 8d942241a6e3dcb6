package visuals

import (
	"strings"
	"testing"

	"safeloan/internal/baseline"
	"safeloan/internal/forecast"
	"safeloan/internal/simulation"
	"safeloan/internal/structuring"
)

func sampleSnapshots() []simulation.Snapshot {
	return []simulation.Snapshot{
		{
			Month:            1,
			Income:           5000,
			Forecast:         forecast.IncomeForecast{SafeIncome: 5000},
			Decision:         structuring.Decision{NewInstallment: 1000, Action: structuring.MaintainStandard},
			AdaptiveDistress: 0,
			Baseline:         &baseline.Record{Month: 1, Distress: 0},
		},
		{
			Month:            2,
			Income:           500,
			Forecast:         forecast.IncomeForecast{SafeIncome: 0},
			Decision:         structuring.Decision{NewInstallment: 100, Action: structuring.ExtendTenureRelief},
			AdaptiveDistress: 51.47,
			Baseline:         &baseline.Record{Month: 2, Distress: 1010},
		},
	}
}

func TestGenerateStressChart(t *testing.T) {
	chart := GenerateStressChart(sampleSnapshots())

	for _, want := range []string{
		"```mermaid",
		"xychart-beta",
		"x-axis [1, 2]",
		"y-axis \"Cumulative Distress\" 0 --> ",
		"line [0, 1010]",
		"line [0, 51]",
	} {
		if !strings.Contains(chart, want) {
			t.Errorf("Expected chart to contain %q, got:\n%s", want, chart)
		}
	}

	if GenerateStressChart(nil) != "" {
		t.Error("Expected empty chart for no snapshots")
	}
}

func TestGenerateAffordabilityChart(t *testing.T) {
	chart := GenerateAffordabilityChart(sampleSnapshots(), 0.4)

	if !strings.Contains(chart, "bar [20.0, 100.0]") {
		t.Errorf("Expected installment ratios 20%% and capped 100%%, got:\n%s", chart)
	}
	if !strings.Contains(chart, "line [40.0, 40.0]") {
		t.Errorf("Expected target DTI reference line, got:\n%s", chart)
	}
}

func TestGenerateIncomeChart(t *testing.T) {
	chart := GenerateIncomeChart(sampleSnapshots())
	if !strings.Contains(chart, "bar [5000, 500]") {
		t.Errorf("Expected income bars, got:\n%s", chart)
	}
	if !strings.Contains(chart, "line [1000, 100]") {
		t.Errorf("Expected installment line, got:\n%s", chart)
	}
}

func TestGenerateActionMix(t *testing.T) {
	chart := GenerateActionMix(map[structuring.Action]int{
		structuring.MaintainStandard:   3,
		structuring.ExtendTenureRelief: 1,
	})

	if !strings.Contains(chart, "\"Maintain Standard\" : 3") {
		t.Errorf("Expected standard slice, got:\n%s", chart)
	}
	if strings.Contains(chart, "Loan Paid Off") {
		t.Errorf("Expected unused actions to be omitted, got:\n%s", chart)
	}
	if GenerateActionMix(nil) != "" {
		t.Error("Expected empty pie for no actions")
	}
}
