package finops

// CostDataRequest selects raw cost rows. Empty dates default to the last 30
// days (providers that bill monthly use the current month instead).
type CostDataRequest struct {
	StartDate   string // inclusive, YYYY-MM-DD
	EndDate     string // exclusive, YYYY-MM-DD
	Granularity string // DAILY, MONTHLY or HOURLY; provider default when empty
	Metrics     []string
	GroupBy     []string
	Filter      map[string]any

	// Scope is the Azure billing scope (subscription, resource group or
	// billing account resource ID). Ignored by other providers.
	Scope string

	// Extra carries provider-specific pass-through options that have no
	// portable field, keyed by the vendor API parameter name.
	Extra map[string]any
}

type CostAnalysisRequest struct {
	StartDate  string
	EndDate    string
	Dimensions []string // provider defaults apply when empty
	Scope      string
	Extra      map[string]any
}

type CostTrendsRequest struct {
	StartDate   string
	EndDate     string
	Granularity string
	Scope       string
	Extra       map[string]any
}

type ResourceCostsRequest struct {
	ResourceID  string // service name (AWS), resource ID (Azure) or service label (GCP)
	StartDate   string
	EndDate     string
	Granularity string
	Scope       string
	Extra       map[string]any
}

type ListBudgetsRequest struct {
	AccountID      string // AWS; falls back to the caller identity when empty
	Scope          string // Azure
	BillingAccount string // GCP billing account ID, e.g. 012345-567890-ABCDEF
	MaxResults     int32
	NextToken      string
	Extra          map[string]any
}

// CreateBudgetRequest holds exactly one provider-specific budget spec.
// Budget notification models differ too much across vendors to unify.
type CreateBudgetRequest struct {
	AWS   *AWSBudgetSpec
	Azure *AzureBudgetSpec
	GCP   *GCPBudgetSpec
}

type BudgetAlertsRequest struct {
	AccountID      string
	BudgetName     string
	Scope          string
	BillingAccount string
}

type ReservationCostRequest struct {
	StartDate   string
	EndDate     string
	Granularity string
}

type ReservationRecommendationsRequest struct {
	LookbackPeriod string // AWS: SEVEN_DAYS, THIRTY_DAYS, SIXTY_DAYS
	Term           string // AWS: ONE_YEAR, THREE_YEARS
	PaymentOption  string
	Scope          string // Azure
	Filter         string // Azure OData filter, e.g. properties/scope eq 'Shared'
	Extra          map[string]any
}

type OptimizationRequest struct {
	Scope  string
	Filter string
	Extra  map[string]any
}

type ForecastRequest struct {
	StartDate   string
	EndDate     string
	Granularity string
	Metric      string // AWS forecast metric, default UNBLENDED_COST

	// HorizonDays and LookbackDays drive the GCP BigQuery ML forecast.
	HorizonDays  int
	LookbackDays int
}

type AnomaliesRequest struct {
	StartDate  string
	EndDate    string
	MonitorARN string // AWS anomaly monitor, optional

	// ProbabilityThreshold filters GCP ML anomaly candidates (0..1).
	ProbabilityThreshold float64
	// TotalImpactAbove drops AWS anomalies below this dollar impact.
	TotalImpactAbove float64
}

type EfficiencyRequest struct {
	StartDate        string
	EndDate          string
	UserCount        int64 // 0 means unknown; per-user cost omitted
	TransactionCount int64 // 0 means unknown; per-transaction cost omitted
	UseML            bool  // GCP only: derive metrics from BigQuery ML output
}

type ReportRequest struct {
	ReportType       string // monthly, quarterly, annual or custom
	StartDate        string
	EndDate          string
	UserCount        int64
	TransactionCount int64
}

type GovernanceRequest struct {
	Scope          string
	ConfigRuleName string // AWS Config rule to check, optional
}

// AWSBudgetSpec mirrors the AWS Budgets CreateBudget shape.
type AWSBudgetSpec struct {
	AccountID     string // caller identity when empty
	BudgetName    string
	Amount        float64
	Unit          string // default USD
	BudgetType    string // default COST
	TimeUnit      string // default MONTHLY
	Notifications []AWSBudgetNotification
}

type AWSBudgetNotification struct {
	ComparisonOperator string  // GREATER_THAN, LESS_THAN, EQUAL_TO
	Threshold          float64 // percentage or absolute, per ThresholdType
	ThresholdType      string  // PERCENTAGE or ABSOLUTE_VALUE
	NotificationType   string  // ACTUAL or FORECASTED
	Subscribers        []AWSBudgetSubscriber
}

type AWSBudgetSubscriber struct {
	Type    string // EMAIL or SNS
	Address string
}

// AzureBudgetSpec mirrors the Consumption budget PUT body.
type AzureBudgetSpec struct {
	Scope         string
	BudgetName    string
	Amount        float64
	TimeGrain     string // Monthly, Quarterly, Annually
	StartDate     string // first day of a month; defaults to the current month
	EndDate       string // defaults to one year after StartDate
	Notifications []AzureBudgetNotification
}

type AzureBudgetNotification struct {
	Operator      string  // GreaterThan, GreaterThanOrEqualTo
	Threshold     float64 // percent of budget amount
	ThresholdType string  // Actual or Forecasted
	ContactEmails []string
	ContactRoles  []string
	ContactGroups []string
	Locale        string // default en-us
}

// GCPBudgetSpec mirrors the Cloud Billing Budgets CreateBudget shape.
type GCPBudgetSpec struct {
	BillingAccount                 string
	DisplayName                    string
	Amount                         float64
	CurrencyCode                   string // default USD
	Projects                       []string
	ThresholdRules                 []GCPThresholdRule
	PubSubTopic                    string
	MonitoringNotificationChannels []string
}

type GCPThresholdRule struct {
	ThresholdPercent float64 // 0.5 means 50%
	SpendBasis       string  // CURRENT_SPEND or FORECASTED_SPEND
}
