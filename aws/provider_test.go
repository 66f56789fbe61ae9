package aws

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/budgets"
	budgettypes "github.com/aws/aws-sdk-go-v2/service/budgets/types"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"go.uber.org/zap"

	"github.com/cloudmesh/cloudmesh-go/finops"
)

type fakeCostExplorer struct {
	CostExplorerAPI
	getCostAndUsage func(*costexplorer.GetCostAndUsageInput) (*costexplorer.GetCostAndUsageOutput, error)
	getAnomalies    func(*costexplorer.GetAnomaliesInput) (*costexplorer.GetAnomaliesOutput, error)
}

func (f *fakeCostExplorer) GetCostAndUsage(_ context.Context, in *costexplorer.GetCostAndUsageInput, _ ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error) {
	return f.getCostAndUsage(in)
}

func (f *fakeCostExplorer) GetAnomalies(_ context.Context, in *costexplorer.GetAnomaliesInput, _ ...func(*costexplorer.Options)) (*costexplorer.GetAnomaliesOutput, error) {
	return f.getAnomalies(in)
}

type fakeBudgets struct {
	BudgetsAPI
	describeBudgets func(*budgets.DescribeBudgetsInput) (*budgets.DescribeBudgetsOutput, error)
	createBudget    func(*budgets.CreateBudgetInput) (*budgets.CreateBudgetOutput, error)
}

func (f *fakeBudgets) DescribeBudgets(_ context.Context, in *budgets.DescribeBudgetsInput, _ ...func(*budgets.Options)) (*budgets.DescribeBudgetsOutput, error) {
	return f.describeBudgets(in)
}

func (f *fakeBudgets) CreateBudget(_ context.Context, in *budgets.CreateBudgetInput, _ ...func(*budgets.Options)) (*budgets.CreateBudgetOutput, error) {
	return f.createBudget(in)
}

type fakeSTS struct {
	account string
	calls   int
}

func (f *fakeSTS) GetCallerIdentity(context.Context, *sts.GetCallerIdentityInput, ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	f.calls++
	if f.account == "" {
		return nil, errors.New("no credentials")
	}
	return &sts.GetCallerIdentityOutput{Account: aws.String(f.account)}, nil
}

func groupedUsageOutput(period string, costs map[string]string) *costexplorer.GetCostAndUsageOutput {
	result := cetypes.ResultByTime{
		TimePeriod: &cetypes.DateInterval{Start: aws.String(period), End: aws.String(period)},
	}
	for key, amount := range costs {
		result.Groups = append(result.Groups, cetypes.Group{
			Keys: []string{key},
			Metrics: map[string]cetypes.MetricValue{
				"UnblendedCost": {Amount: aws.String(amount), Unit: aws.String("USD")},
			},
		})
	}
	return &costexplorer.GetCostAndUsageOutput{ResultsByTime: []cetypes.ResultByTime{result}}
}

func testProvider(ce CostExplorerAPI, b BudgetsAPI, s STSAPI) *Provider {
	return &Provider{ce: ce, budgets: b, sts: s, log: zap.NewNop()}
}

func TestGetCostDataParsesGroupedResults(t *testing.T) {
	var captured *costexplorer.GetCostAndUsageInput
	ce := &fakeCostExplorer{getCostAndUsage: func(in *costexplorer.GetCostAndUsageInput) (*costexplorer.GetCostAndUsageOutput, error) {
		captured = in
		return groupedUsageOutput("2025-01-01", map[string]string{"AmazonEC2": "12.5"}), nil
	}}
	p := testProvider(ce, nil, nil)

	data, err := p.GetCostData(context.Background(), finops.CostDataRequest{StartDate: "2025-01-01", EndDate: "2025-02-01", GroupBy: []string{"SERVICE"}})
	if err != nil {
		t.Fatalf("GetCostData: %v", err)
	}
	if captured.GroupBy[0].Key == nil || *captured.GroupBy[0].Key != "SERVICE" {
		t.Fatalf("group by = %+v, want SERVICE dimension", captured.GroupBy)
	}
	if len(data.Rows) != 1 || data.Rows[0].Cost != 12.5 {
		t.Fatalf("rows = %+v, want one row costing 12.5", data.Rows)
	}
	if data.Rows[0].Currency != "USD" {
		t.Fatalf("currency = %q, want USD", data.Rows[0].Currency)
	}
}

func TestGetCostAnalysisInsights(t *testing.T) {
	ce := &fakeCostExplorer{getCostAndUsage: func(*costexplorer.GetCostAndUsageInput) (*costexplorer.GetCostAndUsageOutput, error) {
		return groupedUsageOutput("2025-01-01", map[string]string{"A": "5", "B": "3"}), nil
	}}
	p := testProvider(ce, nil, nil)

	analysis, err := p.GetCostAnalysis(context.Background(), finops.CostAnalysisRequest{StartDate: "2025-01-01", EndDate: "2025-02-01", Dimensions: []string{"SERVICE"}})
	if err != nil {
		t.Fatalf("GetCostAnalysis: %v", err)
	}
	if analysis.TotalCost != 8 {
		t.Fatalf("total = %v, want 8", analysis.TotalCost)
	}
	if len(analysis.Insights) == 0 || !strings.Contains(analysis.Insights[0], "62.5%") {
		t.Fatalf("insights = %v, want 62.5%% share for service A", analysis.Insights)
	}
}

func TestListBudgetsResolvesAccountOnce(t *testing.T) {
	stsFake := &fakeSTS{account: "123456789012"}
	var captured *budgets.DescribeBudgetsInput
	b := &fakeBudgets{describeBudgets: func(in *budgets.DescribeBudgetsInput) (*budgets.DescribeBudgetsOutput, error) {
		captured = in
		return &budgets.DescribeBudgetsOutput{Budgets: []budgettypes.Budget{{
			BudgetName:  aws.String("monthly-cap"),
			BudgetLimit: &budgettypes.Spend{Amount: aws.String("250"), Unit: aws.String("USD")},
			TimeUnit:    budgettypes.TimeUnitMonthly,
		}}}, nil
	}}
	p := testProvider(nil, b, stsFake)

	for i := 0; i < 2; i++ {
		list, err := p.ListBudgets(context.Background(), finops.ListBudgetsRequest{})
		if err != nil {
			t.Fatalf("ListBudgets: %v", err)
		}
		if len(list.Budgets) != 1 || list.Budgets[0].Amount != 250 {
			t.Fatalf("budgets = %+v, want monthly-cap at 250", list.Budgets)
		}
	}
	if stsFake.calls != 1 {
		t.Fatalf("caller identity calls = %d, want 1 (cached)", stsFake.calls)
	}
	if *captured.AccountId != "123456789012" {
		t.Fatalf("account = %q, want resolved identity", *captured.AccountId)
	}
}

func TestCreateBudgetAppliesDefaults(t *testing.T) {
	var captured *budgets.CreateBudgetInput
	b := &fakeBudgets{createBudget: func(in *budgets.CreateBudgetInput) (*budgets.CreateBudgetOutput, error) {
		captured = in
		return &budgets.CreateBudgetOutput{}, nil
	}}
	p := testProvider(nil, b, &fakeSTS{account: "123456789012"})

	budget, err := p.CreateBudget(context.Background(), finops.CreateBudgetRequest{AWS: &finops.AWSBudgetSpec{BudgetName: "team-budget", Amount: 1000}})
	if err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}
	if budget.Currency != "USD" || budget.TimeGrain != "MONTHLY" {
		t.Fatalf("budget = %+v, want USD MONTHLY defaults", budget)
	}
	if captured.Budget.BudgetType != budgettypes.BudgetTypeCost {
		t.Fatalf("budget type = %v, want COST", captured.Budget.BudgetType)
	}
	if *captured.Budget.BudgetLimit.Amount != "1000" {
		t.Fatalf("amount = %q, want 1000", *captured.Budget.BudgetLimit.Amount)
	}
}

func TestCreateBudgetRequiresSpec(t *testing.T) {
	p := testProvider(nil, &fakeBudgets{}, &fakeSTS{account: "123456789012"})
	if _, err := p.CreateBudget(context.Background(), finops.CreateBudgetRequest{}); err == nil {
		t.Fatal("CreateBudget with no spec succeeded, want error")
	}
}

func TestBuildFilterCombinesDimensions(t *testing.T) {
	expr := buildFilter(map[string]any{
		"SERVICE": []string{"AmazonEC2"},
		"REGION":  "us-east-1",
	})
	if expr == nil || len(expr.And) != 2 {
		t.Fatalf("filter = %+v, want two dimensions joined with And", expr)
	}

	single := buildFilter(map[string]any{"SERVICE": "AmazonS3"})
	if single == nil || single.Dimensions == nil || single.And != nil {
		t.Fatalf("filter = %+v, want a bare dimension expression", single)
	}
}

func TestGetCostAnomaliesMapsImpact(t *testing.T) {
	ce := &fakeCostExplorer{getAnomalies: func(in *costexplorer.GetAnomaliesInput) (*costexplorer.GetAnomaliesOutput, error) {
		if in.TotalImpact == nil || in.TotalImpact.StartValue != 50 {
			t.Fatalf("impact filter = %+v, want start value 50", in.TotalImpact)
		}
		return &costexplorer.GetAnomaliesOutput{Anomalies: []cetypes.Anomaly{{
			AnomalyStartDate: aws.String("2025-01-15"),
			DimensionValue:   aws.String("AmazonEC2"),
			Impact: &cetypes.Impact{
				TotalImpact:        75,
				TotalActualSpend:   aws.Float64(175),
				TotalExpectedSpend: aws.Float64(100),
			},
		}}}, nil
	}}
	p := testProvider(ce, nil, nil)

	result, err := p.GetCostAnomalies(context.Background(), finops.AnomaliesRequest{TotalImpactAbove: 50})
	if err != nil {
		t.Fatalf("GetCostAnomalies: %v", err)
	}
	if result.Status != "ok" || len(result.Anomalies) != 1 {
		t.Fatalf("result = %+v, want one ok anomaly", result)
	}
	a := result.Anomalies[0]
	if a.ActualCost != 175 || a.ExpectedCost != 100 || a.Impact != 75 {
		t.Fatalf("anomaly = %+v, want mapped impact figures", a)
	}
}
