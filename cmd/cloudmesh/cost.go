package main

import (
	"strings"

	"github.com/cloudmesh/cloudmesh-go/finops"
	"github.com/spf13/cobra"
)

var (
	costStart       string
	costEnd         string
	costGranularity string
	costGroupBy     string
	costDimensions  string
	costScope       string
	costResourceID  string
)

func init() {
	rootCmd.AddCommand(costCmd)

	costCmd.AddCommand(costDataCmd)
	costCmd.AddCommand(costSummaryCmd)
	costCmd.AddCommand(costTrendsCmd)
	costCmd.AddCommand(costResourceCmd)

	costCmd.PersistentFlags().StringVar(&costStart, "start", "", "Start date YYYY-MM-DD (default: last 30 days)")
	costCmd.PersistentFlags().StringVar(&costEnd, "end", "", "End date YYYY-MM-DD")
	costCmd.PersistentFlags().StringVar(&costScope, "scope", "", "Azure billing scope (subscription by default)")

	costDataCmd.Flags().StringVar(&costGranularity, "granularity", "", "DAILY or MONTHLY (provider default when empty)")
	costDataCmd.Flags().StringVar(&costGroupBy, "group-by", "", "Comma-separated grouping dimensions")
	costSummaryCmd.Flags().StringVar(&costDimensions, "dimensions", "", "Comma-separated analysis dimensions")
	costTrendsCmd.Flags().StringVar(&costGranularity, "granularity", "", "DAILY or MONTHLY")
	costResourceCmd.Flags().StringVar(&costResourceID, "resource", "", "Service name or resource ID (required)")
	costResourceCmd.MarkFlagRequired("resource")
}

var costCmd = &cobra.Command{
	Use:   "cost",
	Short: "View and analyze cloud costs",
	Long: `Fetch cost data from the selected provider's billing API.

Examples:
  cloudmesh cost data --provider aws --granularity DAILY
  cloudmesh cost summary --provider gcp --dimensions service,project
  cloudmesh cost trends --provider azure --start 2025-07-01 --end 2025-08-01`,
}

var costDataCmd = &cobra.Command{
	Use:   "data",
	Short: "Show raw cost rows",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		result, err := client.GetCostData(cmd.Context(), finops.CostDataRequest{
			StartDate:   costStart,
			EndDate:     costEnd,
			Granularity: costGranularity,
			GroupBy:     splitList(costGroupBy),
			Scope:       costScope,
		})
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var costSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show cost breakdown, top contributors and insights",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		result, err := client.GetCostAnalysis(cmd.Context(), finops.CostAnalysisRequest{
			StartDate:  costStart,
			EndDate:    costEnd,
			Dimensions: splitList(costDimensions),
			Scope:      costScope,
		})
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var costTrendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Show cost trend direction, peaks and patterns",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		result, err := client.GetCostTrends(cmd.Context(), finops.CostTrendsRequest{
			StartDate:   costStart,
			EndDate:     costEnd,
			Granularity: costGranularity,
			Scope:       costScope,
		})
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var costResourceCmd = &cobra.Command{
	Use:   "resource",
	Short: "Show costs and utilization for one service or resource",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		result, err := client.GetResourceCosts(cmd.Context(), finops.ResourceCostsRequest{
			ResourceID: costResourceID,
			StartDate:  costStart,
			EndDate:    costEnd,
			Scope:      costScope,
		})
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func splitList(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
