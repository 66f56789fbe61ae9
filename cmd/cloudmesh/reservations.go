package main

import (
	"github.com/cloudmesh/cloudmesh-go/finops"
	"github.com/spf13/cobra"
)

var (
	resStart       string
	resEnd         string
	resGranularity string
	resLookback    string
	resTerm        string
	resPayment     string
	resScope       string
)

func init() {
	rootCmd.AddCommand(reservationsCmd)

	reservationsCmd.AddCommand(reservationsCostCmd)
	reservationsCmd.AddCommand(reservationsRecommendCmd)

	reservationsCostCmd.Flags().StringVar(&resStart, "start", "", "Start date YYYY-MM-DD")
	reservationsCostCmd.Flags().StringVar(&resEnd, "end", "", "End date YYYY-MM-DD")
	reservationsCostCmd.Flags().StringVar(&resGranularity, "granularity", "", "DAILY or MONTHLY")

	reservationsRecommendCmd.Flags().StringVar(&resLookback, "lookback", "", "Lookback period, e.g. THIRTY_DAYS")
	reservationsRecommendCmd.Flags().StringVar(&resTerm, "term", "", "Commitment term, e.g. ONE_YEAR")
	reservationsRecommendCmd.Flags().StringVar(&resPayment, "payment", "", "Payment option, e.g. NO_UPFRONT")
	reservationsRecommendCmd.Flags().StringVar(&resScope, "scope", "", "Azure recommendation scope")
}

var reservationsCmd = &cobra.Command{
	Use:   "reservations",
	Short: "Reservation spend and purchase recommendations",
	Long: `Inspect reservation utilization and purchase recommendations.

Examples:
  cloudmesh reservations cost --provider aws --granularity MONTHLY
  cloudmesh reservations recommendations --provider aws --term THREE_YEARS`,
}

var reservationsCostCmd = &cobra.Command{
	Use:   "cost",
	Short: "Show reservation utilization and spend",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		result, err := client.GetReservationCost(cmd.Context(), finops.ReservationCostRequest{
			StartDate:   resStart,
			EndDate:     resEnd,
			Granularity: resGranularity,
		})
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var reservationsRecommendCmd = &cobra.Command{
	Use:   "recommendations",
	Short: "Show reservation purchase recommendations",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		result, err := client.GetReservationRecommendations(cmd.Context(), finops.ReservationRecommendationsRequest{
			LookbackPeriod: resLookback,
			Term:           resTerm,
			PaymentOption:  resPayment,
			Scope:          resScope,
		})
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}
