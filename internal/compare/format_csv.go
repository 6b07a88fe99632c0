package compare

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// CSVFormatter formats comparison results as CSV, one row per plan and
// scenario so the matrix can be pivoted in a spreadsheet.
type CSVFormatter struct{}

// Format generates CSV output for comparison results
func (cf *CSVFormatter) Format(result *ComparisonResult) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	// Write header
	header := []string{
		"Rank",
		"Plan",
		"Network",
		"Total Premium",
		"In-Network OOP Max",
		"Score",
		"GM Wealth",
		"Scenario",
		"Probability",
		"Medical OOP",
		"Extra OON",
		"Retained",
		"Ratio",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	for _, r := range result.Ranked {
		for _, sr := range r.Ratios {
			row := []string{
				formatInt(r.Rank),
				r.PlanName,
				r.NetworkType,
				r.TotalPremium.StringFixed(2),
				r.InNetworkOOPMax.StringFixed(2),
				fmt.Sprintf("%.6f", r.Score),
				fmt.Sprintf("%.2f", r.GeometricMeanWealth),
				sr.Scenario,
				sr.Probability.String(),
				sr.MedicalOOP.StringFixed(2),
				sr.ExtraOON.StringFixed(2),
				sr.Retained.StringFixed(2),
				fmt.Sprintf("%.6f", sr.Ratio),
			}
			if err := writer.Write(row); err != nil {
				return "", err
			}
		}
	}

	// Failed plans carry no matrix; the reason goes in the scenario column
	for _, f := range result.Failed {
		row := make([]string, len(header))
		row[1] = f.PlanName
		row[7] = "not scored: " + f.Reason
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return sb.String(), nil
}

func formatInt(i int) string {
	return fmt.Sprintf("%d", i)
}
