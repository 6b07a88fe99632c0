package main

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/planscore/internal/breakeven"
	"github.com/rgehrsitz/planscore/internal/domain"
	"github.com/spf13/cobra"
)

func breakEvenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "break-even [household-file]",
		Short: "Find the premium at which a plan matches a reference score",
		Long: `Solve for the medical premium at which a plan's score meets a target.
The target is either another plan's score (--against) or an explicit score
(--target). Without --plan, every plan is solved against the top-ranked plan.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			household, log, err := loadHousehold(cmd, args[0])
			if err != nil {
				return err
			}
			policy, err := policyFromFlags(cmd, household.Policy)
			if err != nil {
				return err
			}

			options := breakeven.DefaultSolverOptions()
			options.Policy = policy
			solver := breakeven.NewSolver(options)
			solver.SetLogger(log)

			format, _ := cmd.Flags().GetString("format")
			format = strings.ToLower(format)
			if format != "table" && format != "json" {
				return domain.NewConfigurationError("break_even", "unsupported format %q (valid: table, json)", format)
			}

			planName, _ := cmd.Flags().GetString("plan")
			var output interface{}
			if planName == "" {
				result, err := solver.SolveAgainstLeader(cmd.Context(), household.Profile, household.Bundles, household.Set)
				if err != nil {
					return fmt.Errorf("break-even analysis failed: %w", err)
				}
				if format == "table" {
					fmt.Fprint(cmd.OutOrStdout(), (&breakeven.TableFormatter{}).FormatLeader(result))
					return nil
				}
				output = result
			} else {
				req, err := breakEvenRequest(cmd, household.Profile, household.Bundles, planName)
				if err != nil {
					return err
				}
				req.Set = household.Set
				result, err := solver.Solve(cmd.Context(), *req)
				if err != nil {
					return fmt.Errorf("break-even analysis failed: %w", err)
				}
				if format == "table" {
					fmt.Fprint(cmd.OutOrStdout(), (&breakeven.TableFormatter{}).Format(result))
					return nil
				}
				output = result
			}

			out, err := (&breakeven.JSONFormatter{Pretty: true}).Format(output)
			if err != nil {
				return fmt.Errorf("failed to format results: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().String("plan", "", "Plan whose premium is solved for (default: every plan against the leader)")
	cmd.Flags().String("against", "", "Reference plan whose score is matched")
	cmd.Flags().Float64("target", 0, "Explicit target score in [0, 1]")
	cmd.Flags().StringP("format", "f", "table", "Output format (table, json)")
	addPolicyFlags(cmd)
	return cmd
}

func breakEvenRequest(cmd *cobra.Command, profile domain.FinancialProfile, bundles []domain.PlanBundle, planName string) (*breakeven.Request, error) {
	bundle, err := findBundle(bundles, planName)
	if err != nil {
		return nil, err
	}
	req := &breakeven.Request{Profile: profile, Bundle: *bundle}

	if against, _ := cmd.Flags().GetString("against"); against != "" {
		ref, err := findBundle(bundles, against)
		if err != nil {
			return nil, err
		}
		req.Against = ref
	}
	if cmd.Flags().Changed("target") {
		target, _ := cmd.Flags().GetFloat64("target")
		req.TargetScore = &target
	}
	return req, nil
}
