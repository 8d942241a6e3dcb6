package income

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"safeloan/internal/loan"
)

func TestGenerate_Reproducible(t *testing.T) {
	cfg := GeneratorConfig{Profile: Freelancer, Months: 24, Seed: DefaultSeed}

	a, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	b, _ := Generate(cfg)
	if !slices.Equal(a, b) {
		t.Error("Expected identical series for the same seed")
	}

	cfg.Seed = 7
	c, _ := Generate(cfg)
	if slices.Equal(a, c) {
		t.Error("Expected different series for a different seed")
	}

	if len(a) != 24 {
		t.Errorf("Expected 24 months, got %d", len(a))
	}
	for i, v := range a {
		if v < 0 {
			t.Errorf("Month %d: expected non-negative income, got %v", i+1, v)
		}
		if v != math.Trunc(v) {
			t.Errorf("Month %d: expected whole units, got %v", i+1, v)
		}
	}
}

func TestGenerate_CentersOnBaseIncome(t *testing.T) {
	incomes, err := Generate(GeneratorConfig{Profile: SmallBusiness, Months: 2000, Seed: DefaultSeed})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	sum := 0.0
	for _, v := range incomes {
		sum += v
	}
	mean := sum / float64(len(incomes))

	// Shocks are symmetric around 1.0, so the mean stays near the base.
	if math.Abs(mean-SmallBusiness.BaseIncome)/SmallBusiness.BaseIncome > 0.05 {
		t.Errorf("Expected mean near %.0f, got %.0f", SmallBusiness.BaseIncome, mean)
	}
}

func TestGenerate_Invalid(t *testing.T) {
	tests := []GeneratorConfig{
		{Profile: GigWorker, Months: 0},
		{Profile: Profile{Name: "broken", BaseIncome: -1}, Months: 12},
	}
	for _, cfg := range tests {
		if _, err := Generate(cfg); !errors.Is(err, loan.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput for %+v, got %v", cfg, err)
		}
	}
}

func TestSampleShock(t *testing.T) {
	tests := []struct {
		u    float64
		want float64
	}{
		{0, 0.5},
		{0.0999, 0.5},
		{0.1, 1.0},
		{0.8999, 1.0},
		{0.9, 1.5},
		{0.9999, 1.5},
	}
	for _, tt := range tests {
		if got := sampleShock(tt.u); got != tt.want {
			t.Errorf("sampleShock(%v): expected %v, got %v", tt.u, tt.want, got)
		}
	}
}

func TestProfileByName(t *testing.T) {
	tests := []struct {
		name string
		want Profile
	}{
		{"Gig Worker", GigWorker},
		{"gig worker", GigWorker},
		{" SMALL BUSINESS ", SmallBusiness},
		{"", Salaried},
	}
	for _, tt := range tests {
		got, err := ProfileByName(tt.name)
		if err != nil {
			t.Fatalf("Unexpected error for %q: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("ProfileByName(%q): expected %+v, got %+v", tt.name, tt.want, got)
		}
	}

	for _, name := range []string{"Astronaut", "gigworker"} {
		if _, err := ProfileByName(name); !errors.Is(err, loan.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput for profile %q, got %v", name, err)
		}
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history", "incomes.jsonl")
	incomes := []float64{52000, 48000, 30000}

	if err := Save(path, incomes); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("Expected temp file to be renamed away")
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !slices.Equal(got, incomes) {
		t.Errorf("Expected %v, got %v", incomes, got)
	}
}

func TestLoad_OrdersAndValidates(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	unordered := write("unordered.jsonl", `{"month":2,"income":200}
not json
{"month":1,"income":100}

{"month":3,"income":300}
`)
	got, err := Load(unordered)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !slices.Equal(got, []float64{100, 200, 300}) {
		t.Errorf("Expected month-ordered incomes, got %v", got)
	}

	dup := write("dup.jsonl", `{"month":1,"income":100}
{"month":1,"income":150}
`)
	if _, err := Load(dup); !errors.Is(err, loan.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for duplicate month, got %v", err)
	}

	neg := write("neg.jsonl", `{"month":1,"income":-100}`)
	if _, err := Load(neg); !errors.Is(err, loan.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for negative income, got %v", err)
	}

	if _, err := Load(filepath.Join(dir, "missing.jsonl")); err == nil {
		t.Error("Expected error for missing file")
	}
}
