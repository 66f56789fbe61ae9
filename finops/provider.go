package finops

import "context"

// Provider is the common FinOps surface implemented by each cloud provider.
// Every operation issues one or more blocking vendor API calls and returns
// once they complete; there is no internal retry or parallelism.
type Provider interface {
	// Name returns the provider identifier (aws, azure, gcp)
	Name() string

	// Cost visibility
	GetCostData(ctx context.Context, req CostDataRequest) (*CostData, error)
	GetCostAnalysis(ctx context.Context, req CostAnalysisRequest) (*CostAnalysis, error)
	GetCostTrends(ctx context.Context, req CostTrendsRequest) (*CostTrends, error)
	GetResourceCosts(ctx context.Context, req ResourceCostsRequest) (*ResourceCosts, error)

	// Budgets
	ListBudgets(ctx context.Context, req ListBudgetsRequest) (*BudgetList, error)
	CreateBudget(ctx context.Context, req CreateBudgetRequest) (*Budget, error)
	GetBudgetAlerts(ctx context.Context, req BudgetAlertsRequest) (*BudgetAlerts, error)

	// Reservations / committed use
	GetReservationCost(ctx context.Context, req ReservationCostRequest) (*ReservationCost, error)
	GetReservationRecommendations(ctx context.Context, req ReservationRecommendationsRequest) (*ReservationRecommendations, error)

	// Optimization and governance
	GetOptimizationRecommendations(ctx context.Context, req OptimizationRequest) (*OptimizationRecommendations, error)
	GetGovernancePolicies(ctx context.Context, req GovernanceRequest) (*GovernancePolicies, error)

	// Analytics
	GetCostForecast(ctx context.Context, req ForecastRequest) (*Forecast, error)
	GetCostAnomalies(ctx context.Context, req AnomaliesRequest) (*Anomalies, error)
	GetCostEfficiencyMetrics(ctx context.Context, req EfficiencyRequest) (*EfficiencyMetrics, error)
	GenerateCostReport(ctx context.Context, req ReportRequest) (*CostReport, error)
}
