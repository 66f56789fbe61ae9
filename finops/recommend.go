package finops

import "fmt"

// Recommendation priority tiers.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

const (
	// HighPriorityMonthlySavings is the monthly savings floor for high priority.
	HighPriorityMonthlySavings = 500.0
	// MediumPriorityMonthlySavings is the floor for medium priority.
	MediumPriorityMonthlySavings = 100.0
)

// PriorityForMonthlySavings ranks a recommendation by its estimated
// monthly savings in the billing currency.
func PriorityForMonthlySavings(amount float64) string {
	switch {
	case amount >= HighPriorityMonthlySavings:
		return PriorityHigh
	case amount >= MediumPriorityMonthlySavings:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// LowUtilizationThreshold triggers a rightsizing hint on resource costs.
const LowUtilizationThreshold = 0.5

// DeriveUtilization fills the activity fields of a resource cost result
// from its rows and attaches insights and recommendations.
func DeriveUtilization(rc *ResourceCosts) {
	rc.TotalPeriods = len(rc.Rows)
	for _, r := range rc.Rows {
		rc.TotalCost += r.Cost
		if r.Cost > 0 {
			rc.ActivePeriods++
		}
	}
	if rc.TotalPeriods > 0 {
		rc.UtilizationRate = float64(rc.ActivePeriods) / float64(rc.TotalPeriods)
	}
	rc.Insights = append(rc.Insights, fmt.Sprintf(
		"Active in %d of %d periods (%.1f%% utilization)",
		rc.ActivePeriods, rc.TotalPeriods, rc.UtilizationRate*100))
	if rc.TotalPeriods > 0 && rc.UtilizationRate < LowUtilizationThreshold {
		rc.Recommendations = append(rc.Recommendations,
			"Low utilization detected; consider rightsizing or decommissioning this resource")
	}
}
