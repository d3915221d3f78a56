package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/snapdiff/snapdiff/pkg/client"
)

func newRegressionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regression",
		Short: "Review detected regressions",
	}

	cmd.AddCommand(newRegressionListCmd())
	cmd.AddCommand(newRegressionGetCmd())
	cmd.AddCommand(newRegressionReviewCmd())
	cmd.AddCommand(newRegressionStatsCmd())

	return cmd
}

func newRegressionListCmd() *cobra.Command {
	var status string
	var significant bool
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "list <test-run-id>",
		Short: "List regressions of a test run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid test run ID: %s", args[0])
			}

			opts := &client.RegressionListOptions{
				ListOptions: client.ListOptions{Page: page, PageSize: pageSize},
			}
			if status != "" {
				opts.Status = &status
			}
			if cmd.Flags().Changed("significant") {
				opts.Significant = &significant
			}

			ctx := context.Background()
			result, err := apiClient.Regressions().List(ctx, runID, opts)
			if err != nil {
				return fmt.Errorf("failed to list regressions: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(result)
			}

			t := NewTable("ID", "TEST", "VIEWPORT", "STEP", "DIFF", "SIGNIFICANCE", "STATUS")
			for _, reg := range result.Data {
				t.AddRow(
					strconv.FormatInt(reg.ID, 10),
					truncate(reg.TestName, 40),
					reg.Viewport,
					truncate(reg.StepName, 20),
					formatPercent(reg.PercentageDifferent),
					formatSignificance(reg.IsSignificant),
					formatStatus(reg.Status),
				)
			}
			t.Render()
			fmt.Printf("\nPage %d of %d (%d total)\n", result.Page, result.TotalPages, result.TotalItems)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by review status")
	cmd.Flags().BoolVar(&significant, "significant", false, "filter by significance")
	cmd.Flags().IntVar(&page, "page", 0, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "page size")

	return cmd
}

func newRegressionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get regression details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid regression ID: %s", args[0])
			}

			ctx := context.Background()
			reg, err := apiClient.Regressions().Get(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to get regression: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(reg)
			}

			fmt.Printf("ID:           %d\n", reg.ID)
			fmt.Printf("Test:         %s\n", reg.TestName)
			fmt.Printf("Viewport:     %s\n", reg.Viewport)
			if reg.StepName != "" {
				fmt.Printf("Step:         %s\n", reg.StepName)
			}
			fmt.Printf("Pixels:       %d of %d (%s)\n", reg.PixelsDifferent, int64(reg.Width)*int64(reg.Height), formatPercent(reg.PercentageDifferent))
			fmt.Printf("Threshold:    %.4f\n", reg.Threshold)
			fmt.Printf("Significance: %s\n", formatSignificance(reg.IsSignificant))
			fmt.Printf("Status:       %s\n", formatStatus(reg.Status))
			if reg.DiffRef != "" {
				fmt.Printf("Diff image:   %s\n", reg.DiffRef)
			}
			if reg.Annotation != "" {
				fmt.Printf("Annotation:   %s\n", reg.Annotation)
			}
			if reg.ReviewedBy != "" {
				fmt.Printf("Reviewed by:  %s", reg.ReviewedBy)
				if reg.ReviewedAt != nil {
					fmt.Printf(" at %s", reg.ReviewedAt.Format("2006-01-02 15:04:05"))
				}
				fmt.Println()
			}
			if reg.Notes != "" {
				fmt.Printf("Notes:        %s\n", reg.Notes)
			}
			fmt.Printf("Detected:     %s\n", reg.CreatedAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}

func newRegressionReviewCmd() *cobra.Command {
	var notes, reviewedBy string

	cmd := &cobra.Command{
		Use:   "review <id> <status>",
		Short: "Apply a review action (approved, bug_reported, investigating, false_positive)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid regression ID: %s", args[0])
			}

			ctx := context.Background()
			err = apiClient.Regressions().Review(ctx, id, client.ReviewRequest{
				Status:     args[1],
				Notes:      notes,
				ReviewedBy: reviewedBy,
			})
			if err != nil {
				return fmt.Errorf("failed to review regression: %w", err)
			}

			fmt.Printf("Regression %d marked as %s\n", id, args[1])
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "review notes")
	cmd.Flags().StringVar(&reviewedBy, "by", "", "reviewer name")

	return cmd
}

func newRegressionStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <test-run-id>",
		Short: "Show the regression summary of a test run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid test run ID: %s", args[0])
			}

			ctx := context.Background()
			stats, err := apiClient.Regressions().Stats(ctx, runID)
			if err != nil {
				return fmt.Errorf("failed to get regression stats: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(stats)
			}

			fmt.Printf("Total:       %d\n", stats.Total)
			fmt.Printf("Significant: %d\n", stats.Significant)
			fmt.Printf("Pending:     %d\n", stats.Pending)
			for status, count := range stats.ByStatus {
				fmt.Printf("  %-16s %d\n", status+":", count)
			}
			return nil
		},
	}
}
