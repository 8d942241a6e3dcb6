package commands

import (
	"fmt"

	"safeloan/internal/config"
	"safeloan/internal/income"
	"safeloan/internal/loan"
	"safeloan/internal/simulation"

	"github.com/spf13/cobra"
)

// runInputs are the flags shared by commands that run a simulation.
type runInputs struct {
	scenario   string
	incomeFile string
	profile    string
	months     int
	seed       uint64
	principal  float64
	tenure     int
}

func (in *runInputs) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&in.scenario, "scenario", "s", "", "YAML scenario file (overrides the other input flags)")
	cmd.Flags().StringVar(&in.incomeFile, "incomes", "", "JSONL income history file")
	cmd.Flags().StringVar(&in.profile, "profile", income.GigWorker.Name, "generate income for this profile when no history is given")
	cmd.Flags().IntVar(&in.months, "months", 12, "months of income to generate")
	cmd.Flags().Uint64Var(&in.seed, "seed", income.DefaultSeed, "random seed for generated income")
	cmd.Flags().Float64Var(&in.principal, "principal", 500000, "loan principal")
	cmd.Flags().IntVar(&in.tenure, "tenure", 36, "contractual tenure in months")
}

// resolve returns the income history, loan terms and engine settings to run.
func (in *runInputs) resolve() ([]float64, loan.Terms, simulation.Settings, error) {
	if in.scenario != "" {
		sc, err := config.LoadScenario(in.scenario, cfg.Engine)
		if err != nil {
			return nil, loan.Terms{}, simulation.Settings{}, err
		}
		incomes, err := sc.ResolveIncomes()
		if err != nil {
			return nil, loan.Terms{}, simulation.Settings{}, fmt.Errorf("scenario %s: %w", in.scenario, err)
		}
		return incomes, sc.Loan, sc.Settings, nil
	}

	terms := loan.Terms{Principal: in.principal, TenureMonths: in.tenure}

	if in.incomeFile != "" {
		incomes, err := income.Load(in.incomeFile)
		if err != nil {
			return nil, loan.Terms{}, simulation.Settings{}, err
		}
		return incomes, terms, cfg.Engine, nil
	}

	profile, err := income.ProfileByName(in.profile)
	if err != nil {
		return nil, loan.Terms{}, simulation.Settings{}, err
	}
	incomes, err := income.Generate(income.GeneratorConfig{
		Profile: profile,
		Months:  in.months,
		Seed:    in.seed,
	})
	if err != nil {
		return nil, loan.Terms{}, simulation.Settings{}, err
	}
	return incomes, terms, cfg.Engine, nil
}
