package breakeven

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// TableFormatter formats break-even results as a console report
type TableFormatter struct{}

// Format generates a report for a single break-even search
func (tf *TableFormatter) Format(result *Result) string {
	var sb strings.Builder

	sb.WriteString("BREAK-EVEN PREMIUM\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")

	sb.WriteString(fmt.Sprintf("Plan:                %s\n", result.PlanName))
	if result.AgainstName != "" {
		sb.WriteString(fmt.Sprintf("Matching:            %s\n", result.AgainstName))
	}
	sb.WriteString(fmt.Sprintf("Target Score:        %.4f\n", result.TargetScore))
	sb.WriteString(fmt.Sprintf("Status:              %s\n", tf.formatStatus(result.Success)))
	sb.WriteString(fmt.Sprintf("Iterations:          %d\n", result.Iterations))
	if result.ConvergenceInfo != "" {
		sb.WriteString(fmt.Sprintf("Convergence:         %s\n", result.ConvergenceInfo))
	}
	sb.WriteString("\n")

	sb.WriteString("MEDICAL PREMIUM\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Current:             %s", tf.formatCurrency(result.CurrentPremium)))
	if result.CurrentScore != nil {
		sb.WriteString(fmt.Sprintf(" (score %.4f)\n", *result.CurrentScore))
	} else {
		sb.WriteString(" (ruin)\n")
	}
	sb.WriteString(fmt.Sprintf("Break-Even:          %s (score %.4f)\n", tf.formatCurrency(result.BreakEvenPremium), result.AchievedScore))
	sb.WriteString(fmt.Sprintf("Headroom:            %s%s\n", tf.deltaSymbol(result.Headroom), tf.formatCurrency(result.Headroom)))

	return sb.String()
}

// FormatLeader formats the break-even premiums of every plan against the leader
func (tf *TableFormatter) FormatLeader(result *LeaderResult) string {
	var sb strings.Builder

	sb.WriteString("BREAK-EVEN AGAINST LEADER\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Leader: %s (score %.4f)\n\n", result.Leader, result.LeaderScore))

	sb.WriteString(fmt.Sprintf("%-32s %12s %12s %12s\n", "Plan", "Current", "Break-Even", "Headroom"))
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	for _, r := range result.Results {
		sb.WriteString(fmt.Sprintf("%-32s %12s %12s %12s\n",
			tf.truncate(r.PlanName, 32),
			tf.formatCurrency(r.CurrentPremium),
			tf.formatCurrency(r.BreakEvenPremium),
			tf.deltaSymbol(r.Headroom)+tf.formatCurrency(r.Headroom)))
	}
	for _, u := range result.Unreachable {
		sb.WriteString(fmt.Sprintf("%-32s %s\n", tf.truncate(u.PlanName, 32), "unreachable"))
	}
	sb.WriteString("\n")

	if len(result.Recommendations) > 0 {
		sb.WriteString("RECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, rec := range result.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// JSONFormatter formats results as JSON
type JSONFormatter struct {
	Pretty bool
}

// Format generates JSON output for any break-even result
func (jf *JSONFormatter) Format(result interface{}) (string, error) {
	var data []byte
	var err error

	if jf.Pretty {
		data, err = json.MarshalIndent(result, "", "  ")
	} else {
		data, err = json.Marshal(result)
	}

	if err != nil {
		return "", err
	}

	return string(data), nil
}

// Helper methods

func (tf *TableFormatter) formatStatus(success bool) string {
	if success {
		return "✓ Converged"
	}
	return "⚠ Did not converge"
}

func (tf *TableFormatter) formatCurrency(d decimal.Decimal) string {
	return "$" + humanize.Comma(d.Abs().Round(0).IntPart())
}

func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.Round(0).IsPositive() {
		return "+"
	} else if delta.Round(0).IsNegative() {
		return "-"
	}
	return " "
}

func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
