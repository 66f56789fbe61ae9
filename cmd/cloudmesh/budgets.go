package main

import (
	"github.com/cloudmesh/cloudmesh-go/finops"
	"github.com/spf13/cobra"
)

var (
	budgetAccountID      string
	budgetScope          string
	budgetBillingAccount string
	budgetName           string
)

func init() {
	rootCmd.AddCommand(budgetsCmd)

	budgetsCmd.AddCommand(budgetsListCmd)
	budgetsCmd.AddCommand(budgetsAlertsCmd)

	budgetsCmd.PersistentFlags().StringVar(&budgetAccountID, "account-id", "", "AWS account ID (default: caller identity)")
	budgetsCmd.PersistentFlags().StringVar(&budgetScope, "scope", "", "Azure billing scope")
	budgetsCmd.PersistentFlags().StringVar(&budgetBillingAccount, "billing-account", "", "GCP billing account ID")

	budgetsAlertsCmd.Flags().StringVar(&budgetName, "name", "", "Budget name (required)")
	budgetsAlertsCmd.MarkFlagRequired("name")
}

var budgetsCmd = &cobra.Command{
	Use:   "budgets",
	Short: "List budgets and inspect their alert configuration",
	Long: `Work with provider budgets.

Examples:
  cloudmesh budgets list --provider aws
  cloudmesh budgets list --provider gcp --billing-account 012345-567890-ABCDEF
  cloudmesh budgets alerts --provider azure --name monthly-infra`,
}

var budgetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List budgets",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		result, err := client.ListBudgets(cmd.Context(), finops.ListBudgetsRequest{
			AccountID:      budgetAccountID,
			Scope:          budgetScope,
			BillingAccount: budgetBillingAccount,
		})
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var budgetsAlertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show a budget's alert configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		result, err := client.GetBudgetAlerts(cmd.Context(), finops.BudgetAlertsRequest{
			AccountID:      budgetAccountID,
			BudgetName:     budgetName,
			Scope:          budgetScope,
			BillingAccount: budgetBillingAccount,
		})
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}
