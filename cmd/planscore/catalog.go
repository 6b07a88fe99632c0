package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rgehrsitz/planscore/internal/catalog"
	"github.com/rgehrsitz/planscore/internal/domain"
	"github.com/rgehrsitz/planscore/internal/scenario"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the reference plan catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "PLAN CATALOG %s\n", catalog.Version)
			fmt.Fprintln(out, strings.Repeat("=", 80))
			fmt.Fprintf(out, "%-30s %-30s %-5s %9s %9s\n", "Key", "Plan", "Type", "Premium", "OOP Max")
			fmt.Fprintln(out, strings.Repeat("-", 80))
			for _, e := range catalog.Entries() {
				fmt.Fprintf(out, "%-30s %-30s %-5s %9s %9s\n",
					e.Key, e.Plan.Name, e.Plan.NetworkType(), dollars(e.Plan.AnnualPremium), dollars(e.Plan.InNetworkOOPMax))
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Add-ons: %s, %s\n", catalog.DeltaDental().Name, catalog.VSPVision().Name)
			return nil
		},
	}
}

func scenariosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "Show a standard scenario set resolved for a catalog plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			version, _ := cmd.Flags().GetString("version")
			planRef, _ := cmd.Flags().GetString("plan")

			set, err := scenario.Standard(version, catalog.ResearchTiers())
			if err != nil {
				return err
			}

			bundle, err := catalogBundle(planRef)
			if err != nil {
				return err
			}
			resolved, err := set.Resolve(bundle)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "SCENARIO SET %s %s\n", set.Name(), set.Version())
			fmt.Fprintln(out, strings.Repeat("=", 80))
			fmt.Fprintf(out, "Plan: %s\n\n", bundle.Name())
			fmt.Fprintf(out, "%-28s %11s %11s %11s %11s\n", "Scenario", "Probability", "Medical", "Extra OON", "Total OOP")
			fmt.Fprintln(out, strings.Repeat("-", 80))
			for _, rs := range resolved {
				fmt.Fprintf(out, "%-28s %11s %11s %11s %11s\n",
					rs.Name, rs.Probability.Mul(decimal.NewFromInt(100)).StringFixed(2)+"%",
					dollars(rs.MedicalOOP), dollars(rs.ExtraOON), dollars(rs.TotalOOP()))
			}
			return nil
		},
	}

	cmd.Flags().String("version", scenario.StandardV2026_1, "Standard scenario set version")
	cmd.Flags().String("plan", "kaiser_gold_hmo", "Catalog key or plan name to resolve against")
	return cmd
}

// catalogBundle finds a catalog bundle by key or by plan name
func catalogBundle(ref string) (*domain.PlanBundle, error) {
	for _, e := range catalog.Entries() {
		if e.Key == ref || strings.EqualFold(e.Plan.Name, ref) {
			return &domain.PlanBundle{Medical: e.Plan, Dental: catalog.DeltaDental(), Vision: catalog.VSPVision()}, nil
		}
	}
	return nil, domain.NewConfigurationError("catalog_plan", "no catalog plan %q (keys: %s)", ref, strings.Join(catalog.Keys(), ", "))
}

func dollars(d decimal.Decimal) string {
	return "$" + humanize.Comma(d.Round(0).IntPart())
}
