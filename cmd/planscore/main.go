package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"

	"github.com/rgehrsitz/planscore/internal/calculation"
	"github.com/rgehrsitz/planscore/internal/compare"
	"github.com/rgehrsitz/planscore/internal/config"
	"github.com/rgehrsitz/planscore/internal/domain"
	"github.com/rgehrsitz/planscore/internal/logger"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "planscore",
		Short: "Household health plan scorer",
		Long: `Rank health insurance plans for a household by the geometric mean of the
wealth it keeps across a set of healthcare scenarios. A plan that can wipe
out the household's disposable income is never hidden behind a good average.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().Bool("debug", false, "Enable debug output for detailed calculations")
	root.PersistentFlags().String("env-file", "", "Read PLANSCORE_* overrides from this file (default: .env if present)")

	root.AddCommand(
		compareCmd(),
		validateCmd(),
		scenariosCmd(),
		catalogCmd(),
		breakEvenCmd(),
		sensitivityCmd(),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "planscore %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.Main.Path + " " + bi.Main.Version
	}
	return ""
}

// loadHousehold reads the environment overrides, builds the logger and
// parses the household document.
func loadHousehold(cmd *cobra.Command, path string) (*config.Household, calculation.Logger, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	overrides, err := config.LoadEnv(files...)
	if err != nil {
		return nil, nil, err
	}

	level := overrides.LogLevel
	if debugFlag, _ := cmd.Flags().GetBool("debug"); debugFlag {
		level = "debug"
	}
	log := logger.NewAdapter(logger.New(logger.Config{Level: level, Pretty: true, Output: cmd.ErrOrStderr()}))

	parser := &config.InputParser{Overrides: overrides}
	household, err := parser.LoadHousehold(path)
	if err != nil {
		return nil, nil, err
	}
	return household, log, nil
}

// policyFromFlags applies --ruin-policy and --weighting over the document's policy
func policyFromFlags(cmd *cobra.Command, policy calculation.Policy) (calculation.Policy, error) {
	if cmd.Flags().Changed("ruin-policy") {
		value, _ := cmd.Flags().GetString("ruin-policy")
		ruin, err := calculation.ParseRuinPolicy(value)
		if err != nil {
			return policy, err
		}
		policy.Ruin = ruin
	}
	if cmd.Flags().Changed("weighting") {
		value, _ := cmd.Flags().GetString("weighting")
		weighting, err := calculation.ParseWeighting(value)
		if err != nil {
			return policy, err
		}
		policy.Weighting = weighting
	}
	return policy, nil
}

func addPolicyFlags(cmd *cobra.Command) {
	cmd.Flags().String("ruin-policy", "fail", "What a negative wealth ratio means: fail or clamp")
	cmd.Flags().String("weighting", "equal", "Scenario weighting: equal or probability")
}

func findBundle(bundles []domain.PlanBundle, name string) (*domain.PlanBundle, error) {
	for i := range bundles {
		if bundles[i].Name() == name {
			return &bundles[i], nil
		}
	}
	return nil, domain.NewConfigurationError("find_plan", "no plan named %q in the household", name)
}

func compareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [household-file]",
		Short: "Rank the household's plans by geometric-mean wealth",
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
			format, _ := cmd.Flags().GetString("format")
			formatter, err := compare.NewFormatter(format)
			if err != nil {
				return err
			}
			if breakdown, _ := cmd.Flags().GetBool("breakdown"); breakdown {
				if tf, ok := formatter.(*compare.TableFormatter); ok {
					tf.Breakdown = true
				}
			}

			parallel, _ := cmd.Flags().GetBool("parallel")
			comparator := compare.NewPlanComparator(compare.CompareOptions{Policy: policy, Parallel: parallel})
			comparator.SetLogger(log)

			result, err := comparator.Compare(cmd.Context(), household.Profile, household.Bundles, household.Set)
			if err != nil {
				return fmt.Errorf("comparison failed: %w", err)
			}
			result.ConfigPath = household.Source

			out, err := formatter.Format(result)
			if err != nil {
				return fmt.Errorf("failed to format results: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringP("format", "f", "table", "Output format (table, markdown, csv, json)")
	cmd.Flags().Bool("breakdown", false, "Show the per-scenario breakdown of every plan (table format)")
	cmd.Flags().Bool("parallel", false, "Score plans concurrently")
	addPolicyFlags(cmd)
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [household-file]",
		Short: "Validate a household file without scoring it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			household, _, err := loadHousehold(cmd, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ %s is valid\n", args[0])
			fmt.Fprintf(out, "  Plans: %d\n", len(household.Bundles))
			fmt.Fprintf(out, "  Scenario set: %s %s (%d scenarios)\n", household.Set.Name(), household.Set.Version(), household.Set.Len())
			fmt.Fprintf(out, "  Policy: ruin %s, weighting %s\n", household.Policy.Ruin, household.Policy.Weighting)

			disposable := household.Profile.DisposableIncome()
			fmt.Fprintf(out, "  Disposable income: $%s\n", disposable.StringFixed(0))
			if !disposable.IsPositive() {
				fmt.Fprintln(out, "⚠ Disposable income is not positive; plans cannot be compared")
			}
			return nil
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
