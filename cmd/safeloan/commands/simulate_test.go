package commands

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"safeloan/internal/config"
	"safeloan/internal/income"
	"safeloan/internal/loan"
	"safeloan/internal/simulation"
)

func TestPrintReport(t *testing.T) {
	settings := simulation.DefaultSettings()
	settings.AnnualInterestRate = 0

	report, err := simulation.Run(context.Background(), []float64{5000, 5000, 5000, 500, 500}, loan.Terms{Principal: 12000, TenureMonths: 12}, settings)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var buf bytes.Buffer
	printReport(&buf, report)
	out := buf.String()

	for _, want := range []string{
		"Defaults: fixed 2, adaptive 1 (avoided 1)",
		"Distress: fixed 2020.00",
		"Maintain Standard",
		"Safeguard: Interest Only",
		"Run " + report.RunID,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRunInputs_Profile(t *testing.T) {
	prev := cfg
	cfg = &config.AppConfig{Engine: simulation.DefaultSettings()}
	t.Cleanup(func() { cfg = prev })

	in := runInputs{profile: "freelancer", months: 4, seed: income.DefaultSeed, principal: 10000, tenure: 12}
	incomes, terms, _, err := in.resolve()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(incomes) != 4 || terms.Principal != 10000 {
		t.Errorf("Expected 4 incomes for principal 10000, got %d for %v", len(incomes), terms.Principal)
	}

	in.profile = "Astronaut"
	if _, _, _, err := in.resolve(); !errors.Is(err, loan.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for unknown profile, got %v", err)
	}
}
