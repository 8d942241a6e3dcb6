package visuals

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"

	"safeloan/internal/simulation"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
)

// dashboardScript draws the distress comparison and the monthly decision table
// from the embedded report.
const dashboardScript = `
function formatAmount(value) {
  return Number(value || 0).toLocaleString(undefined, { minimumFractionDigits: 2, maximumFractionDigits: 2 });
}

function drawStress(svg, snapshots) {
  const width = 720, height = 240, pad = 32;
  const fixed = snapshots.map(s => (s.baseline ? s.baseline.distress : 0));
  const adaptive = snapshots.map(s => s.adaptive_distress);
  const maxY = Math.max(1, ...fixed, ...adaptive) * 1.1;
  const step = snapshots.length > 1 ? (width - 2 * pad) / (snapshots.length - 1) : 0;
  const toPoints = values => values
    .map((v, i) => (pad + i * step).toFixed(1) + "," + (height - pad - (v / maxY) * (height - 2 * pad)).toFixed(1))
    .join(" ");

  svg.setAttribute("viewBox", "0 0 " + width + " " + height);
  svg.innerHTML =
    '<polyline fill="none" stroke="#d9534f" stroke-width="2" points="' + toPoints(fixed) + '"/>' +
    '<polyline fill="none" stroke="#2e7d32" stroke-width="2" points="' + toPoints(adaptive) + '"/>';
}

function fillTable(tbody, snapshots) {
  for (const s of snapshots) {
    const row = document.createElement("tr");
    row.className = "zone-" + String(s.risk.zone).toLowerCase();
    const cells = [
      s.month,
      formatAmount(s.income),
      formatAmount(s.forecast.safe_income),
      s.risk.risk_score + " (" + s.risk.zone + ")",
      s.decision.action,
      formatAmount(s.decision.new_installment),
      s.state.remaining_tenure < 0 ? "indefinite" : s.state.remaining_tenure,
      formatAmount(s.state.remaining_principal),
      s.contract.message,
    ];
    for (const value of cells) {
      const cell = document.createElement("td");
      cell.textContent = value;
      row.appendChild(cell);
    }
    tbody.appendChild(row);
  }
}

window.addEventListener("DOMContentLoaded", () => {
  const report = window.SAFELOAN_REPORT;
  drawStress(document.getElementById("stress"), report.snapshots || []);
  fillTable(document.getElementById("months"), report.snapshots || []);
});
`

const dashboardTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>SafeLoan run {{.Report.RunID}}</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; color: #222; }
table { border-collapse: collapse; width: 100%; font-size: 0.9rem; }
th, td { border-bottom: 1px solid #ddd; padding: 0.3rem 0.5rem; text-align: right; }
td:last-child, th:last-child { text-align: left; }
.zone-watch { background: #fff8e1; }
.zone-critical { background: #fdecea; }
.summary span { display: inline-block; margin-right: 2rem; }
</style>
</head>
<body>
<h1>Adaptive vs Fixed Repayment</h1>
<p class="summary">
<span>Principal: {{printf "%.2f" .Report.Terms.Principal}}</span>
<span>Tenure: {{.Report.Terms.TenureMonths}}m</span>
<span>Defaults avoided: {{.Report.Summary.DefaultsAvoided}}</span>
<span>Fixed distress: {{printf "%.2f" .Report.Summary.BaselineDistress}}</span>
<span>Adaptive distress: {{printf "%.2f" .Report.Summary.AdaptiveDistress}}</span>
</p>
<svg id="stress" width="720" height="240" role="img" aria-label="Cumulative distress"></svg>
<table>
<thead><tr><th>Month</th><th>Income</th><th>Safe income</th><th>Risk</th><th>Action</th><th>Installment</th><th>Tenure</th><th>Principal</th><th>Contract</th></tr></thead>
<tbody id="months"></tbody>
</table>
<script>window.SAFELOAN_REPORT = {{.Report}};</script>
<script>{{.Script}}</script>
</body>
</html>
`

var dashboard = template.Must(template.New("dashboard").Parse(dashboardTemplate))

// MinifyScript compacts dashboard JavaScript with esbuild.
func MinifyScript(src string) (string, error) {
	result := api.Transform(src, api.TransformOptions{
		Loader:            api.LoaderJS,
		Target:            api.ES2018,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
	})
	if len(result.Errors) > 0 {
		msgs := make([]string, len(result.Errors))
		for i, m := range result.Errors {
			msgs[i] = m.Text
		}
		return "", fmt.Errorf("minify dashboard script: %s", strings.Join(msgs, "; "))
	}
	return string(result.Code), nil
}

// RenderDashboard writes a self-contained HTML page for report to w.
func RenderDashboard(w io.Writer, report simulation.Report) error {
	script, err := MinifyScript(dashboardScript)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	err = dashboard.Execute(&buf, struct {
		Report simulation.Report
		Script template.JS
	}{report, template.JS(script)})
	if err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}

	_, err = buf.WriteTo(w)
	return err
}

// WriteDashboard renders the report into dir and returns the file path.
func WriteDashboard(dir string, report simulation.Report) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s.html", report.RunID))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create dashboard: %w", err)
	}

	if err := RenderDashboard(f, report); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close dashboard: %w", err)
	}

	log.Info().Str("run", report.RunID).Str("path", path).Msg("Dashboard written")
	return path, nil
}

// OpenDashboard opens a rendered dashboard in the default browser.
func OpenDashboard(path string) error {
	// Browser launchers write to stdout, which belongs to the MCP transport.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	if err := browser.OpenFile(path); err != nil {
		return fmt.Errorf("open dashboard: %w", err)
	}
	return nil
}
