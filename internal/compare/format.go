package compare

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rgehrsitz/planscore/internal/domain"
	"github.com/shopspring/decimal"
)

// Formatter renders a comparison result
type Formatter interface {
	Format(result *ComparisonResult) (string, error)
}

// FormatNames lists the accepted output formats
var FormatNames = []string{"table", "markdown", "csv", "json"}

// NewFormatter returns the formatter for a format name
func NewFormatter(name string) (Formatter, error) {
	switch strings.ToLower(name) {
	case "", "table", "console":
		return &TableFormatter{}, nil
	case "markdown", "md":
		return &MarkdownFormatter{Breakdown: true}, nil
	case "csv":
		return &CSVFormatter{}, nil
	case "json":
		return &JSONFormatter{Pretty: true}, nil
	}
	return nil, domain.NewConfigurationError("new_formatter", "unsupported format %q (valid: %s)", name, strings.Join(FormatNames, ", "))
}

// formatDollars renders whole dollars with thousands separators, e.g. $96,176
func formatDollars(d decimal.Decimal) string {
	rounded := d.Round(0)
	if rounded.IsNegative() {
		return "-$" + humanize.Comma(rounded.Abs().IntPart())
	}
	return "$" + humanize.Comma(rounded.IntPart())
}

func formatDollarsFloat(f float64) string {
	return formatDollars(decimal.NewFromFloat(f))
}

// formatPercent renders a ratio as a percentage with one decimal, e.g. 82.0%
func formatPercent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

// formatPoints renders a score difference in percentage points
func formatPoints(diff float64) string {
	return fmt.Sprintf("%.1f pts", diff*100)
}

func formatScore(score float64) string {
	return fmt.Sprintf("%.4f", score)
}

func formatLogWealth(v float64) string {
	if math.IsInf(v, -1) {
		return "-inf"
	}
	return fmt.Sprintf("%.4f", v)
}
