package visuals

import (
	"fmt"
	"math"
	"strings"

	"safeloan/internal/simulation"
	"safeloan/internal/structuring"
)

func monthLabels(snapshots []simulation.Snapshot) string {
	labels := make([]string, len(snapshots))
	for i, s := range snapshots {
		labels[i] = fmt.Sprintf("%d", s.Month)
	}
	return strings.Join(labels, ", ")
}

func series(values []float64, format string) string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf(format, v)
	}
	return strings.Join(out, ", ")
}

// ceilAxis gives the y-axis a little headroom above the largest value.
func ceilAxis(maxVal float64) int {
	return int(math.Ceil(math.Max(1, maxVal*1.1)))
}

// GenerateStressChart creates a Mermaid xychart comparing cumulative distress
// of the fixed-installment loan against the adaptive loan.
func GenerateStressChart(snapshots []simulation.Snapshot) string {
	if len(snapshots) == 0 {
		return ""
	}

	fixed := make([]float64, len(snapshots))
	adaptive := make([]float64, len(snapshots))
	maxY := 0.0
	for i, s := range snapshots {
		if s.Baseline != nil {
			fixed[i] = s.Baseline.Distress
		}
		adaptive[i] = s.AdaptiveDistress
		maxY = math.Max(maxY, math.Max(fixed[i], adaptive[i]))
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Financial Stress: Fixed vs Adaptive\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", monthLabels(snapshots)))
	sb.WriteString(fmt.Sprintf("    y-axis \"Cumulative Distress\" 0 --> %d\n", ceilAxis(maxY)))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", series(fixed, "%.0f")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", series(adaptive, "%.0f")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateAffordabilityChart creates a Mermaid xychart of the installment as a
// percentage of safe income, with the target DTI as a reference line.
// Months without safe income are charted at 100%.
func GenerateAffordabilityChart(snapshots []simulation.Snapshot, targetDTI float64) string {
	if len(snapshots) == 0 {
		return ""
	}

	ratios := make([]float64, len(snapshots))
	target := make([]float64, len(snapshots))
	maxY := targetDTI * 100
	for i, s := range snapshots {
		switch {
		case s.Decision.NewInstallment == 0:
			ratios[i] = 0
		case s.Forecast.SafeIncome == 0:
			ratios[i] = 100
		default:
			ratios[i] = math.Min(100, s.Decision.NewInstallment/s.Forecast.SafeIncome*100)
		}
		target[i] = targetDTI * 100
		maxY = math.Max(maxY, ratios[i])
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Affordability (Installment / Safe Income)\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", monthLabels(snapshots)))
	sb.WriteString(fmt.Sprintf("    y-axis \"Percent\" 0 --> %d\n", ceilAxis(maxY)))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", series(ratios, "%.1f")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", series(target, "%.1f")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateIncomeChart plots actual income, safe income and the installment due.
func GenerateIncomeChart(snapshots []simulation.Snapshot) string {
	if len(snapshots) == 0 {
		return ""
	}

	incomes := make([]float64, len(snapshots))
	safe := make([]float64, len(snapshots))
	installments := make([]float64, len(snapshots))
	maxY := 0.0
	for i, s := range snapshots {
		incomes[i] = s.Income
		safe[i] = s.Forecast.SafeIncome
		installments[i] = s.Decision.NewInstallment
		maxY = math.Max(maxY, math.Max(incomes[i], math.Max(safe[i], installments[i])))
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Income vs Installment\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", monthLabels(snapshots)))
	sb.WriteString(fmt.Sprintf("    y-axis \"Amount\" 0 --> %d\n", ceilAxis(maxY)))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", series(incomes, "%.0f")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", series(safe, "%.0f")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", series(installments, "%.0f")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateActionMix creates a Mermaid pie of how often each action was taken.
func GenerateActionMix(counts map[structuring.Action]int) string {
	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("pie title \"Restructuring Actions\"\n")
	for _, a := range structuring.Actions() {
		if n := counts[a]; n > 0 {
			sb.WriteString(fmt.Sprintf("    \"%s\" : %d\n", a.Label(), n))
		}
	}
	sb.WriteString("```")
	return sb.String()
}
