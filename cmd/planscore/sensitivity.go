package main

import (
	"fmt"

	"github.com/rgehrsitz/planscore/internal/compare"
	"github.com/rgehrsitz/planscore/internal/domain"
	"github.com/rgehrsitz/planscore/internal/sensitivity"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func sensitivityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sensitivity [household-file]",
		Short: "Sweep one input and show how the ranking moves",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			household, log, err := loadHousehold(cmd, args[0])
			if err != nil {
				return err
			}
			policy, err := policyFromFlags(cmd, household.Policy)
			if err != nil {
				return err
			}

			sweep, err := sweepFromFlags(cmd)
			if err != nil {
				return err
			}

			format, _ := cmd.Flags().GetString("format")
			formatter, err := sensitivity.NewFormatter(format)
			if err != nil {
				return err
			}

			analyzer := sensitivity.NewAnalyzer(compare.CompareOptions{Policy: policy})
			analyzer.SetLogger(log)
			analysis, err := analyzer.Analyze(cmd.Context(), household.Profile, household.Bundles, household.Set, sweep)
			if err != nil {
				return fmt.Errorf("sensitivity analysis failed: %w", err)
			}

			out, err := formatter.Format(analysis)
			if err != nil {
				return fmt.Errorf("failed to format results: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().String("param", string(sensitivity.TaxRate), "Parameter to sweep (tax_rate, baseline_spend, premium)")
	cmd.Flags().String("min", "", "Lowest value of the sweep")
	cmd.Flags().String("max", "", "Highest value of the sweep")
	cmd.Flags().Int("steps", 5, "Number of evenly spaced values")
	cmd.Flags().String("plan", "", "Plan whose premium is swept (premium only)")
	cmd.Flags().StringP("format", "f", "console", "Output format (console, csv, json)")
	addPolicyFlags(cmd)
	_ = cmd.MarkFlagRequired("min")
	_ = cmd.MarkFlagRequired("max")
	return cmd
}

func sweepFromFlags(cmd *cobra.Command) (sensitivity.Sweep, error) {
	paramName, _ := cmd.Flags().GetString("param")
	param, err := sensitivity.ParseParameter(paramName)
	if err != nil {
		return sensitivity.Sweep{}, err
	}

	minValue, err := decimalFlag(cmd, "min")
	if err != nil {
		return sensitivity.Sweep{}, err
	}
	maxValue, err := decimalFlag(cmd, "max")
	if err != nil {
		return sensitivity.Sweep{}, err
	}
	steps, _ := cmd.Flags().GetInt("steps")
	plan, _ := cmd.Flags().GetString("plan")

	return sensitivity.Sweep{Parameter: param, Min: minValue, Max: maxValue, Steps: steps, Plan: plan}, nil
}

func decimalFlag(cmd *cobra.Command, name string) (decimal.Decimal, error) {
	raw, _ := cmd.Flags().GetString(name)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, domain.NewConfigurationError("parse_flag", "--%s=%q is not a number", name, raw)
	}
	return d, nil
}
