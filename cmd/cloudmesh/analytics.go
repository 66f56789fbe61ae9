package main

import (
	"github.com/cloudmesh/cloudmesh-go/finops"
	"github.com/spf13/cobra"
)

var (
	analyticsStart     string
	analyticsEnd       string
	forecastHorizon    int
	anomalyThreshold   float64
	anomalyImpactAbove float64
	efficiencyUsers    int64
	efficiencyTx       int64
	efficiencyUseML    bool
	reportType         string
)

func init() {
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(anomaliesCmd)
	rootCmd.AddCommand(efficiencyCmd)
	rootCmd.AddCommand(reportCmd)

	for _, c := range []*cobra.Command{forecastCmd, anomaliesCmd, efficiencyCmd, reportCmd} {
		c.Flags().StringVar(&analyticsStart, "start", "", "Start date YYYY-MM-DD")
		c.Flags().StringVar(&analyticsEnd, "end", "", "End date YYYY-MM-DD")
	}

	forecastCmd.Flags().IntVar(&forecastHorizon, "horizon", 0, "Forecast horizon in days (GCP)")
	anomaliesCmd.Flags().Float64Var(&anomalyThreshold, "threshold", 0, "Anomaly probability threshold 0..1 (GCP)")
	anomaliesCmd.Flags().Float64Var(&anomalyImpactAbove, "impact-above", 0, "Minimum dollar impact (AWS)")
	efficiencyCmd.Flags().Int64Var(&efficiencyUsers, "users", 0, "User count for per-user cost")
	efficiencyCmd.Flags().Int64Var(&efficiencyTx, "transactions", 0, "Transaction count for per-transaction cost")
	efficiencyCmd.Flags().BoolVar(&efficiencyUseML, "ml", false, "Use BigQuery ML anomaly detection (GCP)")
	reportCmd.Flags().StringVar(&reportType, "type", "monthly", "Report type: monthly, quarterly, annual, custom")
	reportCmd.Flags().Int64Var(&efficiencyUsers, "users", 0, "User count for per-user cost")
	reportCmd.Flags().Int64Var(&efficiencyTx, "transactions", 0, "Transaction count for per-transaction cost")
}

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast future spend",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		result, err := client.GetCostForecast(cmd.Context(), finops.ForecastRequest{
			StartDate:   analyticsStart,
			EndDate:     analyticsEnd,
			HorizonDays: forecastHorizon,
		})
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var anomaliesCmd = &cobra.Command{
	Use:   "anomalies",
	Short: "Detect cost anomalies",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		result, err := client.GetCostAnomalies(cmd.Context(), finops.AnomaliesRequest{
			StartDate:            analyticsStart,
			EndDate:              analyticsEnd,
			ProbabilityThreshold: anomalyThreshold,
			TotalImpactAbove:     anomalyImpactAbove,
		})
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var efficiencyCmd = &cobra.Command{
	Use:   "efficiency",
	Short: "Compute cost efficiency metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		result, err := client.GetCostEfficiencyMetrics(cmd.Context(), finops.EfficiencyRequest{
			StartDate:        analyticsStart,
			EndDate:          analyticsEnd,
			UserCount:        efficiencyUsers,
			TransactionCount: efficiencyTx,
			UseML:            efficiencyUseML,
		})
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a combined cost report",
	Long: `Produce a report combining breakdown, trends and efficiency metrics.

Examples:
  cloudmesh report --provider aws --type quarterly
  cloudmesh report --provider gcp --type custom --start 2025-07-01 --end 2025-08-01`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		result, err := client.GenerateCostReport(cmd.Context(), finops.ReportRequest{
			ReportType:       reportType,
			StartDate:        analyticsStart,
			EndDate:          analyticsEnd,
			UserCount:        efficiencyUsers,
			TransactionCount: efficiencyTx,
		})
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}
