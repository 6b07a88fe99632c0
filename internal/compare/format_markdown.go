package compare

import (
	"fmt"
	"strings"
)

// MarkdownFormatter renders the ranking and per-plan breakdowns as markdown
// tables suitable for pasting into a report.
type MarkdownFormatter struct {
	Breakdown bool
}

// Format generates markdown output for comparison results
func (mf *MarkdownFormatter) Format(result *ComparisonResult) (string, error) {
	var sb strings.Builder

	sb.WriteString("## Plan Ranking\n\n")
	sb.WriteString(fmt.Sprintf("Disposable income: %s. Scenario set: %s %s.\n\n",
		formatDollars(result.Profile.DisposableIncome), result.ScenarioSetName, result.ScenarioSetVersion))
	sb.WriteString("| Rank | Plan | Premium | OOP Max | GM Wealth | E[log(W)] |\n")
	sb.WriteString("|------|------|---------|---------|-----------|-----------|\n")
	for _, r := range result.Ranked {
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s |\n",
			r.Rank, r.PlanName,
			formatDollars(r.TotalPremium),
			formatDollars(r.InNetworkOOPMax),
			formatDollarsFloat(r.GeometricMeanWealth),
			formatLogWealth(r.ExpectedLogWealth)))
	}

	if len(result.Failed) > 0 {
		sb.WriteString("\n### Not Scored\n\n")
		for _, f := range result.Failed {
			sb.WriteString(fmt.Sprintf("- **%s**: %s\n", f.PlanName, f.Reason))
		}
	}

	if mf.Breakdown {
		for _, r := range result.Ranked {
			sb.WriteString(fmt.Sprintf("\n### %s\n\n", r.PlanName))
			sb.WriteString("| Scenario | Wealth | Ratio |\n")
			sb.WriteString("|----------|--------|-------|\n")
			for _, sr := range r.Ratios {
				sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", sr.Scenario, formatDollars(sr.Retained), formatPercent(sr.Ratio)))
			}
		}
	}

	if len(result.Recommendations) > 0 {
		sb.WriteString("\n### Recommendations\n\n")
		for _, rec := range result.Recommendations {
			sb.WriteString("- " + rec + "\n")
		}
	}

	return sb.String(), nil
}
