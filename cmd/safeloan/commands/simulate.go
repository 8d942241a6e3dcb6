package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"safeloan/internal/ledger"
	"safeloan/internal/simulation"
	"safeloan/internal/structuring"
	"safeloan/internal/visuals"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	simInputs    runInputs
	simJSON      bool
	simCharts    bool
	simDashboard bool
	simOpen      bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the adaptive loan against an income history and compare it with a fixed loan",
	RunE: func(cmd *cobra.Command, args []string) error {
		incomes, terms, settings, err := simInputs.resolve()
		if err != nil {
			return err
		}

		report, err := simulation.Run(cmd.Context(), incomes, terms, settings)
		if err != nil {
			return err
		}

		store := ledger.NewStore()
		store.Append(report.RunID, report.Snapshots)
		if err := store.Save(cfg.LedgerDir, report.RunID); err != nil {
			log.Warn().Err(err).Msg("Failed to persist ledger")
		}
		if _, err := ledger.SaveReport(filepath.Join(cfg.CacheDir, "reports"), report); err != nil {
			log.Warn().Err(err).Msg("Failed to persist report")
		}

		out := cmd.OutOrStdout()
		if simJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		printReport(out, report)

		if simCharts && cfg.EnableMermaidCharts {
			fmt.Fprintln(out)
			fmt.Fprintln(out, visuals.GenerateStressChart(report.Snapshots))
			fmt.Fprintln(out, visuals.GenerateAffordabilityChart(report.Snapshots, settings.TargetDTI))
		}

		if simDashboard || simOpen {
			return writeDashboard(out, report, simOpen)
		}
		return nil
	},
}

func init() {
	simInputs.register(simulateCmd)
	simulateCmd.Flags().BoolVar(&simJSON, "json", false, "print the full report as JSON")
	simulateCmd.Flags().BoolVar(&simCharts, "charts", false, "print Mermaid charts")
	simulateCmd.Flags().BoolVar(&simDashboard, "dashboard", false, "write an HTML dashboard")
	simulateCmd.Flags().BoolVar(&simOpen, "open", false, "write the HTML dashboard and open it in a browser")
}

func printReport(out io.Writer, report simulation.Report) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Month\tIncome\tSafe\tRisk\tAction\tInstallment\tTenure\tPrincipal\tFixed distress\tAdaptive distress\t")
	for _, s := range report.Snapshots {
		fixed := 0.0
		if s.Baseline != nil {
			fixed = s.Baseline.Distress
		}
		fmt.Fprintf(w, "%d\t%.2f\t%.2f\t%d %s\t%s\t%.2f\t%s\t%.2f\t%.2f\t%.2f\t\n",
			s.Month, s.Income, s.Forecast.SafeIncome, s.Risk.Score, s.Risk.Zone,
			s.Decision.Action.Label(), s.Decision.NewInstallment, s.State.RemainingTenure,
			s.State.RemainingPrincipal, fixed, s.AdaptiveDistress)
	}
	w.Flush()

	sum := report.Summary
	fmt.Fprintf(out, "\nRun %s\n", report.RunID)
	fmt.Fprintf(out, "Defaults: fixed %d, adaptive %d (avoided %d)\n", sum.BaselineMissedPayments, sum.AdaptiveMissedPayments, sum.DefaultsAvoided)
	fmt.Fprintf(out, "Distress: fixed %.2f (penalties %.2f), adaptive %.2f\n", sum.BaselineDistress, sum.BaselinePenalties, sum.AdaptiveDistress)
	fmt.Fprintf(out, "Final principal %.2f, installment %.2f, tenure %s\n", sum.FinalPrincipal, sum.FinalInstallment, sum.FinalTenure)
	for _, a := range structuring.Actions() {
		if n := sum.ActionCounts[a]; n > 0 {
			fmt.Fprintf(out, "  %-28s %d\n", a.Label(), n)
		}
	}
}

func writeDashboard(out io.Writer, report simulation.Report, open bool) error {
	path, err := visuals.WriteDashboard(cfg.ReportDir, report)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Dashboard written to %s\n", path)
	if open {
		return visuals.OpenDashboard(path)
	}
	return nil
}
