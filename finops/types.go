package finops

import "time"

// Period is a half-open [Start, End) date range in YYYY-MM-DD form.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// CostRow is one cost observation: a time bucket, the group-by dimension
// values for that bucket, and the metric amounts the vendor reported.
type CostRow struct {
	Period   string             `json:"period"` // bucket start date
	Keys     []string           `json:"keys,omitempty"`
	Cost     float64            `json:"cost"` // primary cost metric
	Metrics  map[string]float64 `json:"metrics,omitempty"`
	Currency string             `json:"currency,omitempty"`
}

// CostData is the normalized projection of a raw cost query. Native holds
// the untouched vendor response for callers that need fields the
// projection drops.
type CostData struct {
	Provider    string    `json:"provider"`
	Period      Period    `json:"period"`
	Granularity string    `json:"granularity"`
	GroupBy     []string  `json:"group_by,omitempty"`
	Rows        []CostRow `json:"rows"`
	Native      any       `json:"-"`
}

type BreakdownEntry struct {
	Key  string  `json:"key"`
	Cost float64 `json:"cost"`
}

type CostAnalysis struct {
	Provider        string             `json:"provider"`
	Period          Period             `json:"period"`
	Dimensions      []string           `json:"dimensions"`
	TotalCost       float64            `json:"total_cost"`
	CostBreakdown   map[string]float64 `json:"cost_breakdown"`
	TopContributors []BreakdownEntry   `json:"top_contributors"`
	Insights        []string           `json:"insights"`
}

type TrendPoint struct {
	Date string  `json:"date"`
	Cost float64 `json:"cost"`
}

type CostTrends struct {
	Provider       string       `json:"provider"`
	Period         Period       `json:"period"`
	Granularity    string       `json:"granularity"`
	TotalPeriods   int          `json:"total_periods"`
	TotalCost      float64      `json:"total_cost"`
	AverageCost    float64      `json:"average_cost"`
	GrowthRate     float64      `json:"growth_rate"` // percent, first to last bucket
	TrendDirection string       `json:"trend_direction"`
	Points         []TrendPoint `json:"points"`
	PeakPeriods    []TrendPoint `json:"peak_periods"`
	LowPeriods     []TrendPoint `json:"low_periods"`
	Patterns       []string     `json:"patterns,omitempty"`
	Insights       []string     `json:"insights,omitempty"`
}

type ResourceCosts struct {
	Provider        string    `json:"provider"`
	ResourceID      string    `json:"resource_id"`
	Period          Period    `json:"period"`
	TotalCost       float64   `json:"total_cost"`
	ActivePeriods   int       `json:"active_periods"`
	TotalPeriods    int       `json:"total_periods"`
	UtilizationRate float64   `json:"utilization_rate"` // 0..1
	Rows            []CostRow `json:"rows"`
	Insights        []string  `json:"insights,omitempty"`
	Recommendations []string  `json:"recommendations,omitempty"`

	// Approximate is set when the provider cannot filter by an individual
	// resource and the figures cover a broader grouping instead.
	Approximate bool   `json:"approximate,omitempty"`
	Note        string `json:"note,omitempty"`
}

type Budget struct {
	Provider  string  `json:"provider"`
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency,omitempty"`
	TimeGrain string  `json:"time_grain,omitempty"`
	Scope     string  `json:"scope,omitempty"`
	Native    any     `json:"-"`
}

type BudgetList struct {
	Provider  string   `json:"provider"`
	Budgets   []Budget `json:"budgets"`
	NextToken string   `json:"next_token,omitempty"`
	Native    any      `json:"-"`
}

// BudgetAlerts lists the notification rules attached to a budget.
// ConfigurationOnly is set when the provider exposes the alert
// configuration but not the fired-alert history.
type BudgetAlerts struct {
	Provider          string           `json:"provider"`
	BudgetName        string           `json:"budget_name"`
	ConfigurationOnly bool             `json:"configuration_only,omitempty"`
	Alerts            []map[string]any `json:"alerts"`
	Message           string           `json:"message,omitempty"`
	Native            any              `json:"-"`
}

type ReservationCost struct {
	Provider string    `json:"provider"`
	Period   Period    `json:"period"`
	Rows     []CostRow `json:"rows"`
	Native   any       `json:"-"`
}

type Recommendation struct {
	Source         string  `json:"source"` // vendor recommender that produced it
	Name           string  `json:"name"`
	Description    string  `json:"description,omitempty"`
	MonthlySavings float64 `json:"monthly_savings"`
	Currency       string  `json:"currency,omitempty"`
	Priority       string  `json:"priority"` // high, medium or low
	Native         any     `json:"-"`
}

type ReservationRecommendations struct {
	Provider        string           `json:"provider"`
	Recommendations []Recommendation `json:"recommendations"`
	// Errors maps a recommendation source to the failure that kept its
	// results out, when other sources still succeeded.
	Errors map[string]string `json:"errors,omitempty"`
}

// SourceResult is one optimization source's outcome. Sources fail
// independently; an error in one never hides the others.
type SourceResult struct {
	Items any    `json:"items,omitempty"`
	Error string `json:"error,omitempty"`
}

type OptimizationRecommendations struct {
	Provider string                  `json:"provider"`
	Sources  map[string]SourceResult `json:"sources"`
}

type ForecastPoint struct {
	Date  string  `json:"date"`
	Mean  float64 `json:"mean"`
	Lower float64 `json:"lower,omitempty"`
	Upper float64 `json:"upper,omitempty"`
}

type Forecast struct {
	Provider string          `json:"provider"`
	Period   Period          `json:"period"`
	Method   string          `json:"method"` // vendor forecast API or model used
	Total    float64         `json:"total"`
	Points   []ForecastPoint `json:"points"`
	Native   any             `json:"-"`
}

// Anomaly detection result statuses.
const (
	StatusOK           = "ok"
	StatusNotAvailable = "not_available"
)

type Anomaly struct {
	Date         string  `json:"date"`
	Service      string  `json:"service,omitempty"`
	ActualCost   float64 `json:"actual_cost"`
	ExpectedCost float64 `json:"expected_cost"`
	Impact       float64 `json:"impact"`
	Description  string  `json:"description,omitempty"`
	Native       any     `json:"-"`
}

type Anomalies struct {
	Provider  string    `json:"provider"`
	Status    string    `json:"status"`
	Anomalies []Anomaly `json:"anomalies"`
	Message   string    `json:"message,omitempty"`
	Native    any       `json:"-"`
}

type EfficiencyMetrics struct {
	Provider string `json:"provider"`
	Method   string `json:"method"` // statistical or bigquery_ml
	Period   Period `json:"period"`

	TotalCost     float64 `json:"total_cost"`
	MeanCost      float64 `json:"mean_cost"`
	MinCost       float64 `json:"min_cost"`
	MaxCost       float64 `json:"max_cost"`
	StdDev        float64 `json:"std_dev"`
	VarianceRatio float64 `json:"variance_ratio"` // stddev / mean

	// CostPerUser and CostPerTransaction are nil when the corresponding
	// count was not supplied.
	CostPerUser        *float64 `json:"cost_per_user,omitempty"`
	CostPerTransaction *float64 `json:"cost_per_transaction,omitempty"`

	WastePeriods    int     `json:"waste_periods"`
	WastePercentage float64 `json:"waste_percentage"`
	EfficiencyScore float64 `json:"efficiency_score"` // 0..1, higher is better
}

type CostReport struct {
	Provider      string             `json:"provider"`
	ReportType    string             `json:"report_type"`
	Period        Period             `json:"period"`
	TotalCost     float64            `json:"total_cost"`
	CostBreakdown map[string]float64 `json:"cost_breakdown"`
	Trends        *CostTrends        `json:"trends,omitempty"`
	Efficiency    *EfficiencyMetrics `json:"efficiency,omitempty"`
	GeneratedAt   time.Time          `json:"generated_at"`
}

// ComplianceStatus summarizes cost governance compliance. Heuristic is set
// when the status is inferred from indirect signals rather than a native
// compliance API.
type ComplianceStatus struct {
	Status    string         `json:"status"`
	Heuristic bool           `json:"heuristic,omitempty"`
	Signals   map[string]any `json:"signals,omitempty"`
	Error     string         `json:"error,omitempty"`
}

type GovernancePolicies struct {
	Provider           string           `json:"provider"`
	CostAllocationTags SourceResult     `json:"cost_allocation_tags"`
	Compliance         ComplianceStatus `json:"compliance"`
	CostPolicies       SourceResult     `json:"cost_policies"`
}
