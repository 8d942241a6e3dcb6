package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"safeloan/internal/simulation"

	"github.com/rs/zerolog/log"
)

// ReportPath returns where the report for runID is kept under dir.
func ReportPath(dir, runID string) string {
	return filepath.Join(dir, fmt.Sprintf("%s.report.json", runID))
}

// SaveReport persists a full run report as indented JSON, replacing any
// previous copy atomically.
func SaveReport(dir string, report simulation.Report) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	path := ReportPath(dir, report.RunID)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to rename report file: %w", err)
	}

	log.Debug().Str("run", report.RunID).Str("path", path).Msg("Report saved")
	return path, nil
}

// LoadReport reads a report by run ID from dir, or from ref directly when it
// names a JSON file.
func LoadReport(dir, ref string) (simulation.Report, error) {
	path := ref
	if !strings.HasSuffix(ref, ".json") {
		path = ReportPath(dir, ref)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return simulation.Report{}, fmt.Errorf("no report found for %q", ref)
		}
		return simulation.Report{}, fmt.Errorf("failed to read report: %w", err)
	}

	var report simulation.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return simulation.Report{}, fmt.Errorf("failed to decode report %s: %w", path, err)
	}
	return report, nil
}
