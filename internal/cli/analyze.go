package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <test-run-id>",
		Short: "Run regression analysis for a test run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid test run ID: %s", args[0])
			}

			ctx := context.Background()
			report, err := apiClient.Analysis().Run(ctx, runID)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(report)
			}

			if !report.Success {
				fmt.Printf("Analysis not performed: %s\n", report.Message)
				return nil
			}

			fmt.Printf("Analyzed test run %d against baseline run %d\n", report.TestRunID, report.BaselineRunID)
			fmt.Printf("  Comparisons:  %d\n", report.TotalComparisons)
			fmt.Printf("  Regressions:  %d (%d significant)\n", report.RegressionsFound, report.SignificantRegressions)
			fmt.Printf("  Avg diff:     %s\n", formatPercent(report.AverageDifference))
			if report.SkippedTriples > 0 {
				fmt.Printf("  Skipped:      %d (no matching baseline screenshot)\n", report.SkippedTriples)
			}
			if report.FailedComparisons > 0 {
				fmt.Printf("  Failed:       %d\n", report.FailedComparisons)
			}
			if report.Message != "" {
				fmt.Printf("  Note:         %s\n", report.Message)
			}

			if len(report.Details) == 0 {
				return nil
			}

			t := NewTable("ID", "TEST", "VIEWPORT", "STEP", "DIFF", "SIGNIFICANCE")
			for _, d := range report.Details {
				t.AddRow(
					strconv.FormatInt(d.RegressionID, 10),
					truncate(d.TestName, 40),
					d.Viewport,
					truncate(d.StepName, 20),
					formatPercent(d.PercentageDifferent),
					formatSignificance(d.IsSignificant),
				)
			}
			t.Render()
			return nil
		},
	}
}
