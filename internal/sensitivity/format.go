package sensitivity

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	json "github.com/goccy/go-json"
	"github.com/rgehrsitz/planscore/internal/domain"
)

// Formatter renders a sensitivity analysis
type Formatter interface {
	Format(analysis *Analysis) (string, error)
	Name() string
}

// NewFormatter creates a formatter based on the format name
func NewFormatter(format string) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", "console", "table":
		return ConsoleFormatter{}, nil
	case "csv":
		return CSVFormatter{}, nil
	case "json":
		return JSONFormatter{Pretty: true}, nil
	}
	return nil, domain.NewConfigurationError("new_formatter", "unsupported format %q (valid: table, csv, json)", format)
}

// ConsoleFormatter renders one row per sweep value and one column per plan
type ConsoleFormatter struct{}

func (ConsoleFormatter) Name() string { return "console" }

func (cf ConsoleFormatter) Format(analysis *Analysis) (string, error) {
	if len(analysis.Points) == 0 {
		return "", fmt.Errorf("no results in analysis")
	}

	param := analysis.Sweep.Parameter
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s\n", lipgloss.NewStyle().Bold(true).Render(
		"SENSITIVITY ANALYSIS: "+strings.ToUpper(strings.ReplaceAll(string(param), "_", " "))))
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	if analysis.Sweep.Plan != "" {
		fmt.Fprintf(&sb, "Plan: %s\n", analysis.Sweep.Plan)
	}
	fmt.Fprintf(&sb, "Base Case: %s\n", param.FormatValue(analysis.BaseValue))
	fmt.Fprintf(&sb, "Range: %s to %s (%d steps)\n\n",
		param.FormatValue(analysis.Sweep.Min), param.FormatValue(analysis.Sweep.Max), analysis.Sweep.Steps)

	headers := append([]string{string(param), "Disposable", "Leader"}, analysis.Plans...)
	rows := make([][]string, 0, len(analysis.Points))
	for _, p := range analysis.Points {
		row := []string{param.FormatValue(p.Value), "$" + p.DisposableIncome.StringFixed(0), p.Leader}
		if p.Error != "" {
			row[2] = p.Error
		}
		for i := range analysis.Plans {
			cell := "-"
			if i < len(p.Scores) && p.Scores[i].Score != nil {
				cell = fmt.Sprintf("%.4f", *p.Scores[i].Score)
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}

	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	sb.WriteString(table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			if col == 2 {
				return cell
			}
			return cell.Align(lipgloss.Right)
		}).
		String())
	sb.WriteString("\n")

	if len(analysis.Recommendations) > 0 {
		sb.WriteString("\nRECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, rec := range analysis.Recommendations {
			fmt.Fprintf(&sb, "• %s\n", rec)
		}
	}

	return sb.String(), nil
}

// CSVFormatter writes one row per sweep value and plan
type CSVFormatter struct{}

func (CSVFormatter) Name() string { return "csv" }

func (CSVFormatter) Format(analysis *Analysis) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	if err := writer.Write([]string{"parameter_name", "parameter_value", "disposable_income", "leader", "plan", "rank", "score", "reason"}); err != nil {
		return "", err
	}

	for _, p := range analysis.Points {
		if p.Error != "" {
			row := []string{string(analysis.Sweep.Parameter), p.Value.String(), p.DisposableIncome.StringFixed(2), "", "", "", "", p.Error}
			if err := writer.Write(row); err != nil {
				return "", err
			}
			continue
		}
		for _, s := range p.Scores {
			score, rank := "", ""
			if s.Score != nil {
				score = fmt.Sprintf("%.6f", *s.Score)
				rank = fmt.Sprintf("%d", s.Rank)
			}
			row := []string{string(analysis.Sweep.Parameter), p.Value.String(), p.DisposableIncome.StringFixed(2), p.Leader, s.PlanName, rank, score, s.Reason}
			if err := writer.Write(row); err != nil {
				return "", err
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// JSONFormatter formats the analysis as JSON
type JSONFormatter struct {
	Pretty bool
}

func (JSONFormatter) Name() string { return "json" }

func (jf JSONFormatter) Format(analysis *Analysis) (string, error) {
	var data []byte
	var err error

	if jf.Pretty {
		data, err = json.MarshalIndent(analysis, "", "  ")
	} else {
		data, err = json.Marshal(analysis)
	}

	if err != nil {
		return "", err
	}

	return string(data), nil
}
