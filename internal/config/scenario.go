package config

import (
	"fmt"
	"os"
	"path/filepath"

	"safeloan/internal/income"
	"safeloan/internal/loan"
	"safeloan/internal/simulation"

	"gopkg.in/yaml.v3"
)

// Scenario is a reproducible simulation setup read from a YAML file.
// Exactly one income source is used, in order of precedence: inline incomes,
// an income file, or the generator.
type Scenario struct {
	Name       string              `yaml:"name"`
	Loan       loan.Terms          `yaml:"loan"`
	Settings   simulation.Settings `yaml:"settings"`
	Incomes    []float64           `yaml:"incomes" validate:"dive,gte=0"`
	IncomeFile string              `yaml:"income_file"`
	Generator  *GeneratorSpec      `yaml:"generator"`

	dir string
}

// GeneratorSpec asks for a synthetic income series.
type GeneratorSpec struct {
	Profile string `yaml:"profile"`
	Months  int    `yaml:"months" validate:"gte=1"`
	Seed    uint64 `yaml:"seed"`
}

// LoadScenario reads a scenario file. Settings the file omits keep the
// values of defaults.
func LoadScenario(path string, defaults simulation.Settings) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}

	sc := &Scenario{
		Settings: defaults,
		dir:      filepath.Dir(path),
	}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, loan.Invalidf("parse scenario %s: %v", path, err)
	}

	if sc.Generator != nil {
		if sc.Generator.Seed == 0 {
			sc.Generator.Seed = income.DefaultSeed
		}
		if _, err := income.ProfileByName(sc.Generator.Profile); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", path, err)
		}
	}
	if err := Validate(sc); err != nil {
		return nil, err
	}
	if len(sc.Incomes) == 0 && sc.IncomeFile == "" && sc.Generator == nil {
		return nil, loan.Invalidf("scenario %s defines no income source", path)
	}
	return sc, nil
}

// ResolveIncomes returns the scenario's income history.
func (s *Scenario) ResolveIncomes() ([]float64, error) {
	switch {
	case len(s.Incomes) > 0:
		return s.Incomes, nil
	case s.IncomeFile != "":
		path := s.IncomeFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(s.dir, path)
		}
		return income.Load(path)
	case s.Generator != nil:
		profile, err := income.ProfileByName(s.Generator.Profile)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
		return income.Generate(income.GeneratorConfig{
			Profile: profile,
			Months:  s.Generator.Months,
			Seed:    s.Generator.Seed,
		})
	}
	return nil, loan.Invalidf("scenario %q defines no income source", s.Name)
}
