package commands

import (
	"fmt"
	"path/filepath"

	"safeloan/internal/ledger"
	"safeloan/internal/visuals"

	"github.com/spf13/cobra"
)

var (
	reportOpen    bool
	reportMermaid bool
)

var reportCmd = &cobra.Command{
	Use:   "report <run-id | report.json>",
	Short: "Render the dashboard for a previous simulation run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := ledger.LoadReport(filepath.Join(cfg.CacheDir, "reports"), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if reportMermaid {
			fmt.Fprintln(out, visuals.GenerateStressChart(report.Snapshots))
			fmt.Fprintln(out, visuals.GenerateAffordabilityChart(report.Snapshots, report.Settings.TargetDTI))
			fmt.Fprintln(out, visuals.GenerateIncomeChart(report.Snapshots))
			fmt.Fprintln(out, visuals.GenerateActionMix(report.Summary.ActionCounts))
			return nil
		}
		return writeDashboard(out, report, reportOpen)
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportOpen, "open", false, "open the dashboard in a browser")
	reportCmd.Flags().BoolVar(&reportMermaid, "mermaid", false, "print Mermaid charts instead of writing HTML")
}
