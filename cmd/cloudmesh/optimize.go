package main

import (
	"github.com/cloudmesh/cloudmesh-go/finops"
	"github.com/spf13/cobra"
)

var (
	optimizeScope  string
	optimizeFilter string
	configRuleName string
)

func init() {
	rootCmd.AddCommand(optimizeCmd)
	rootCmd.AddCommand(governanceCmd)

	optimizeCmd.Flags().StringVar(&optimizeScope, "scope", "", "Azure scope or GCP location")
	optimizeCmd.Flags().StringVar(&optimizeFilter, "filter", "", "Provider-specific recommendation filter")
	governanceCmd.Flags().StringVar(&optimizeScope, "scope", "", "Azure scope")
	governanceCmd.Flags().StringVar(&configRuleName, "config-rule", "", "AWS Config rule to evaluate")
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Show cost optimization recommendations",
	Long: `Collect optimization recommendations from every source the provider
offers (savings plans, rightsizing, idle resources, advisor, recommenders).
Sources fail independently; partial results include per-source errors.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		result, err := client.GetOptimizationRecommendations(cmd.Context(), finops.OptimizationRequest{
			Scope:  optimizeScope,
			Filter: optimizeFilter,
		})
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var governanceCmd = &cobra.Command{
	Use:   "governance",
	Short: "Show cost governance posture",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		result, err := client.GetGovernancePolicies(cmd.Context(), finops.GovernanceRequest{
			Scope:          optimizeScope,
			ConfigRuleName: configRuleName,
		})
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}
