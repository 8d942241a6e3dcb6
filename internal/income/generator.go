package income

import (
	"math"
	"math/rand/v2"
	"strings"

	"safeloan/internal/loan"
)

// DefaultSeed keeps generated series reproducible across runs.
const DefaultSeed uint64 = 42

// Profile describes a borrower's typical monthly income and how much it swings.
type Profile struct {
	Name       string  `json:"name" yaml:"name"`
	BaseIncome float64 `json:"base_income" yaml:"base_income"`
	Volatility float64 `json:"volatility" yaml:"volatility"` // std dev as a share of BaseIncome
}

var (
	GigWorker     = Profile{Name: "Gig Worker", BaseIncome: 30000, Volatility: 0.4}
	Freelancer    = Profile{Name: "Freelancer", BaseIncome: 60000, Volatility: 0.5}
	SmallBusiness = Profile{Name: "Small Business", BaseIncome: 100000, Volatility: 0.2}
	Salaried      = Profile{Name: "Salaried", BaseIncome: 40000, Volatility: 0.1}
)

// Profiles lists the built-in borrower profiles.
func Profiles() []Profile {
	return []Profile{GigWorker, Freelancer, SmallBusiness, Salaried}
}

// ProfileByName looks up a built-in profile, ignoring case. An empty name
// selects Salaried; any other unknown name is rejected.
func ProfileByName(name string) (Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Salaried, nil
	}
	names := make([]string, 0, len(Profiles()))
	for _, p := range Profiles() {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
		names = append(names, p.Name)
	}
	return Profile{}, loan.Invalidf("unknown income profile %q (choose one of: %s)", name, strings.Join(names, ", "))
}

// Shock multipliers and their cumulative probabilities.
var shocks = []struct {
	multiplier float64
	cumulative float64
}{
	{0.5, 0.1},
	{1.0, 0.9},
	{1.5, 1.0},
}

// GeneratorConfig controls a synthetic income series.
type GeneratorConfig struct {
	Profile Profile
	Months  int
	Seed    uint64
}

// Generate produces a monthly income series: Gaussian noise around the base
// income, occasionally halved or boosted by half, floored at zero and
// truncated to whole units.
func Generate(cfg GeneratorConfig) ([]float64, error) {
	if cfg.Months < 1 {
		return nil, loan.Invalidf("months must be positive, got %d", cfg.Months)
	}
	if cfg.Profile.BaseIncome < 0 || cfg.Profile.Volatility < 0 {
		return nil, loan.Invalidf("profile %q must have non-negative base income and volatility", cfg.Profile.Name)
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	sigma := cfg.Profile.Volatility * cfg.Profile.BaseIncome

	incomes := make([]float64, cfg.Months)
	for i := range incomes {
		noise := rng.NormFloat64() * sigma
		shock := sampleShock(rng.Float64())
		incomes[i] = math.Trunc(math.Max(0, (cfg.Profile.BaseIncome+noise)*shock))
	}
	return incomes, nil
}

func sampleShock(u float64) float64 {
	for _, s := range shocks {
		if u < s.cumulative {
			return s.multiplier
		}
	}
	return shocks[len(shocks)-1].multiplier
}
