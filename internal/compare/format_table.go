package compare

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
)

// TableFormatter formats comparison results as a console table
type TableFormatter struct {
	Breakdown bool // append the per-scenario ratio table of every plan
}

// Format generates a formatted table comparing plans
func (tf *TableFormatter) Format(result *ComparisonResult) (string, error) {
	var sb strings.Builder

	// Header
	sb.WriteString(titleStyle.Render("HEALTH PLAN COMPARISON") + "\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	if result.ConfigPath != "" {
		sb.WriteString(fmt.Sprintf("Configuration: %s\n", result.ConfigPath))
	}
	sb.WriteString(fmt.Sprintf("Disposable income: %s (after tax %s, baseline %s)\n",
		formatDollars(result.Profile.DisposableIncome),
		formatDollars(result.Profile.AfterTax),
		formatDollars(result.Profile.BaselineSpend)))
	sb.WriteString(fmt.Sprintf("Scenario set: %s %s | ruin: %s | weighting: %s\n\n",
		result.ScenarioSetName, result.ScenarioSetVersion, result.Policy.Ruin, result.Policy.Weighting))

	rows := make([][]string, 0, len(result.Ranked))
	for _, r := range result.Ranked {
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.Rank),
			r.PlanName,
			r.NetworkType,
			formatDollars(r.TotalPremium),
			formatDollars(r.InNetworkOOPMax),
			formatScore(r.Score),
			formatDollarsFloat(r.GeometricMeanWealth),
			formatPercent(r.WorstRatio),
		})
	}
	sb.WriteString(renderTable(
		[]string{"Rank", "Plan", "Network", "Premium", "OOP Max", "Score", "GM Wealth", "Worst"},
		rows, 1, 2) + "\n")

	if len(result.Failed) > 0 {
		sb.WriteString("\nNOT SCORED\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, f := range result.Failed {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", f.PlanName, f.Reason))
		}
	}

	if tf.Breakdown {
		for _, r := range result.Ranked {
			sb.WriteString(fmt.Sprintf("\n%s\n", titleStyle.Render(r.PlanName)))
			breakdown := make([][]string, 0, len(r.Ratios))
			for _, sr := range r.Ratios {
				breakdown = append(breakdown, []string{
					sr.Scenario,
					formatDollars(sr.MedicalOOP.Add(sr.ExtraOON)),
					formatDollars(sr.Retained),
					formatPercent(sr.Ratio),
				})
			}
			sb.WriteString(renderTable([]string{"Scenario", "OOP", "Wealth", "Ratio"}, breakdown, 0) + "\n")
		}
	}

	// Recommendations
	if len(result.Recommendations) > 0 {
		sb.WriteString("\nRECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, rec := range result.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
	}

	return sb.String(), nil
}

// renderTable draws a bordered table; columns listed in textCols are left
// aligned, every other column is numeric and right aligned.
func renderTable(headers []string, rows [][]string, textCols ...int) string {
	isText := make(map[int]bool, len(textCols))
	for _, c := range textCols {
		isText[c] = true
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case isText[col]:
				return cellStyle
			}
			return numberStyle
		}).
		String()
}
