package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newBaselineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage suite baselines",
	}

	cmd.AddCommand(newBaselineGetCmd())
	cmd.AddCommand(newBaselineSetCmd())
	cmd.AddCommand(newBaselineClearCmd())

	return cmd
}

func newBaselineGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <suite-id>",
		Short: "Show the suite's baseline run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			suiteID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid suite ID: %s", args[0])
			}

			ctx := context.Background()
			b, err := apiClient.Suites().GetBaseline(ctx, suiteID)
			if err != nil {
				return fmt.Errorf("failed to get baseline: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(b)
			}

			if b.BaselineRunID == nil {
				fmt.Printf("Suite %d has no baseline set\n", suiteID)
				return nil
			}

			fmt.Printf("Suite:    %d\n", b.SuiteID)
			fmt.Printf("Baseline: run %d\n", *b.BaselineRunID)
			if b.SetAt != nil {
				fmt.Printf("Set at:   %s\n", b.SetAt.Format("2006-01-02 15:04:05"))
			}
			if b.Notes != "" {
				fmt.Printf("Notes:    %s\n", b.Notes)
			}
			return nil
		},
	}
}

func newBaselineSetCmd() *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "set <suite-id> <run-id>",
		Short: "Designate a run as the suite's baseline",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			suiteID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid suite ID: %s", args[0])
			}
			runID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid run ID: %s", args[1])
			}

			ctx := context.Background()
			if err := apiClient.Suites().SetBaseline(ctx, suiteID, runID, notes); err != nil {
				return fmt.Errorf("failed to set baseline: %w", err)
			}

			fmt.Printf("Suite %d baseline set to run %d\n", suiteID, runID)
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "baseline notes")

	return cmd
}

func newBaselineClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <suite-id>",
		Short: "Remove the suite's baseline designation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			suiteID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid suite ID: %s", args[0])
			}

			ctx := context.Background()
			if err := apiClient.Suites().ClearBaseline(ctx, suiteID); err != nil {
				return fmt.Errorf("failed to clear baseline: %w", err)
			}

			fmt.Printf("Suite %d baseline cleared\n", suiteID)
			return nil
		},
	}
}
