package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newTrendsCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "trends <suite-id>",
		Short: "Show the suite's daily regression series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			suiteID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid suite ID: %s", args[0])
			}

			ctx := context.Background()
			points, err := apiClient.Suites().Trends(ctx, suiteID, days)
			if err != nil {
				return fmt.Errorf("failed to get trends: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(points)
			}

			if len(points) == 0 {
				fmt.Printf("No regressions recorded for suite %d in the last %d days\n", suiteID, days)
				return nil
			}

			t := NewTable("DATE", "REGRESSIONS", "SIGNIFICANT")
			for _, p := range points {
				t.AddRow(p.Date, strconv.Itoa(p.RegressionCount), strconv.Itoa(p.SignificantCount))
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "window in days")

	return cmd
}
