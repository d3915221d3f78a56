package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/snapdiff/snapdiff/pkg/client"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage suite comparison settings",
	}

	cmd.AddCommand(newSettingsGetCmd())
	cmd.AddCommand(newSettingsSetCmd())
	cmd.AddCommand(newIgnoreRegionCmd())

	return cmd
}

func newSettingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <suite-id>",
		Short: "Show suite comparison settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			suiteID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid suite ID: %s", args[0])
			}

			ctx := context.Background()
			set, err := apiClient.Suites().GetSettings(ctx, suiteID)
			if err != nil {
				return fmt.Errorf("failed to get settings: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(set)
			}

			fmt.Printf("Suite:                %d\n", set.SuiteID)
			if set.Threshold != nil {
				fmt.Printf("Threshold:            %.4f\n", *set.Threshold)
			} else {
				fmt.Printf("Threshold:            (default %.4f)\n", set.EffectiveThreshold)
			}
			fmt.Printf("Include antialiasing: %t\n", set.IncludeAntialiasing)
			return nil
		},
	}
}

func newSettingsSetCmd() *cobra.Command {
	var threshold float64
	var includeAA bool

	cmd := &cobra.Command{
		Use:   "set <suite-id>",
		Short: "Update suite comparison settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			suiteID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid suite ID: %s", args[0])
			}

			req := client.UpdateSettingsRequest{IncludeAntialiasing: includeAA}
			if cmd.Flags().Changed("threshold") {
				req.Threshold = &threshold
			}

			ctx := context.Background()
			if err := apiClient.Suites().UpdateSettings(ctx, suiteID, req); err != nil {
				return fmt.Errorf("failed to update settings: %w", err)
			}

			fmt.Printf("Suite %d settings updated\n", suiteID)
			return nil
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", 0, "significance threshold (fraction of pixels, 0-1)")
	cmd.Flags().BoolVar(&includeAA, "include-antialiasing", false, "count anti-aliased pixels as differences")

	return cmd
}

func newIgnoreRegionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ignore-region",
		Short: "Manage suite ignore regions",
	}

	cmd.AddCommand(newIgnoreRegionListCmd())
	cmd.AddCommand(newIgnoreRegionAddCmd())
	cmd.AddCommand(newIgnoreRegionRemoveCmd())

	return cmd
}

func newIgnoreRegionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <suite-id>",
		Short: "List ignore regions of a suite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			suiteID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid suite ID: %s", args[0])
			}

			ctx := context.Background()
			regions, err := apiClient.Suites().ListIgnoreRegions(ctx, suiteID)
			if err != nil {
				return fmt.Errorf("failed to list ignore regions: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(regions)
			}

			t := NewTable("ID", "TEST", "VIEWPORT", "X", "Y", "WIDTH", "HEIGHT")
			for _, reg := range regions {
				test := reg.TestName
				if test == "" {
					test = "(all)"
				}
				viewport := reg.Viewport
				if viewport == "" {
					viewport = "(all)"
				}
				t.AddRow(
					strconv.FormatInt(reg.ID, 10),
					truncate(test, 40),
					viewport,
					strconv.Itoa(reg.X),
					strconv.Itoa(reg.Y),
					strconv.Itoa(reg.Width),
					strconv.Itoa(reg.Height),
				)
			}
			t.Render()
			return nil
		},
	}
}

func newIgnoreRegionAddCmd() *cobra.Command {
	var testName, viewport string
	var x, y, width, height int

	cmd := &cobra.Command{
		Use:   "add <suite-id>",
		Short: "Add an ignore region to a suite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			suiteID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid suite ID: %s", args[0])
			}

			ctx := context.Background()
			id, err := apiClient.Suites().CreateIgnoreRegion(ctx, suiteID, client.CreateIgnoreRegionRequest{
				TestName: testName,
				Viewport: viewport,
				X:        x,
				Y:        y,
				Width:    width,
				Height:   height,
			})
			if err != nil {
				return fmt.Errorf("failed to add ignore region: %w", err)
			}

			fmt.Printf("Ignore region %d added to suite %d\n", id, suiteID)
			return nil
		},
	}

	cmd.Flags().StringVar(&testName, "test", "", "restrict to a test name (default: all tests)")
	cmd.Flags().StringVar(&viewport, "viewport", "", "restrict to a viewport (default: all viewports)")
	cmd.Flags().IntVar(&x, "x", 0, "region left edge")
	cmd.Flags().IntVar(&y, "y", 0, "region top edge")
	cmd.Flags().IntVar(&width, "width", 0, "region width")
	cmd.Flags().IntVar(&height, "height", 0, "region height")
	_ = cmd.MarkFlagRequired("width")
	_ = cmd.MarkFlagRequired("height")

	return cmd
}

func newIgnoreRegionRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <suite-id> <region-id>",
		Short: "Remove an ignore region from a suite",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			suiteID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid suite ID: %s", args[0])
			}
			regionID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid region ID: %s", args[1])
			}

			ctx := context.Background()
			if err := apiClient.Suites().DeleteIgnoreRegion(ctx, suiteID, regionID); err != nil {
				return fmt.Errorf("failed to remove ignore region: %w", err)
			}

			fmt.Printf("Ignore region %d removed from suite %d\n", regionID, suiteID)
			return nil
		},
	}
}
