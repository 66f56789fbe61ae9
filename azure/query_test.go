package azure

import (
	"context"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"

	"github.com/cloudmesh/cloudmesh-go/finops"
)

func queryResult(columns []string, rows [][]any) armcostmanagement.QueryResult {
	var cols []*armcostmanagement.QueryColumn
	for _, name := range columns {
		n := name
		cols = append(cols, &armcostmanagement.QueryColumn{Name: &n})
	}
	return armcostmanagement.QueryResult{
		Properties: &armcostmanagement.QueryProperties{Columns: cols, Rows: rows},
	}
}

func TestParseQueryResultDailyRows(t *testing.T) {
	result := queryResult(
		[]string{"Cost", "UsageDate", "ServiceName", "Currency"},
		[][]any{
			{12.34, float64(20250101), "Virtual Machines", "EUR"},
			{5.0, float64(20250102), "Storage", "EUR"},
		},
	)

	rows := parseQueryResult(result, []string{"ServiceName"})
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Period != "2025-01-01" || rows[0].Cost != 12.34 {
		t.Fatalf("row = %+v, want 2025-01-01 costing 12.34", rows[0])
	}
	if rows[0].Keys[0] != "Virtual Machines" || rows[0].Currency != "EUR" {
		t.Fatalf("row = %+v, want service key and EUR", rows[0])
	}
}

func TestParseQueryResultMonthlyBillingMonth(t *testing.T) {
	result := queryResult(
		[]string{"Cost", "BillingMonth"},
		[][]any{{100.0, "2025-01-01T00:00:00"}},
	)

	rows := parseQueryResult(result, nil)
	if len(rows) != 1 || rows[0].Period != "2025-01-01" {
		t.Fatalf("rows = %+v, want one row dated 2025-01-01", rows)
	}
}

func TestParseQueryResultMissingCostColumn(t *testing.T) {
	result := queryResult([]string{"UsageDate"}, [][]any{{float64(20250101)}})
	if rows := parseQueryResult(result, nil); rows != nil {
		t.Fatalf("rows = %+v, want nil without a Cost column", rows)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{float64(20250115), "2025-01-15"},
		{int64(20250102), "2025-01-02"},
		{"2025-03-01T00:00:00", "2025-03-01"},
		{"bad", "bad"},
	}
	for _, tc := range tests {
		if got := parseDate(tc.in); got != tc.want {
			t.Fatalf("parseDate(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBuildQueryDefinition(t *testing.T) {
	def, err := buildQueryDefinition(
		finops.Period{Start: "2025-01-01", End: "2025-02-01"},
		"Daily", []string{"ServiceName"}, map[string]any{"ResourceGroup": "prod"},
	)
	if err != nil {
		t.Fatalf("buildQueryDefinition: %v", err)
	}
	if *def.Type != armcostmanagement.ExportTypeActualCost {
		t.Fatalf("type = %v, want ActualCost", *def.Type)
	}
	if *def.Timeframe != armcostmanagement.TimeframeTypeCustom {
		t.Fatalf("timeframe = %v, want Custom", *def.Timeframe)
	}
	agg := def.Dataset.Aggregation["totalCost"]
	if agg == nil || *agg.Name != "Cost" || *agg.Function != armcostmanagement.FunctionTypeSum {
		t.Fatalf("aggregation = %+v, want sum of Cost", agg)
	}
	if len(def.Dataset.Grouping) != 1 || *def.Dataset.Grouping[0].Name != "ServiceName" {
		t.Fatalf("grouping = %+v, want ServiceName", def.Dataset.Grouping)
	}
	if def.Dataset.Filter == nil || def.Dataset.Filter.Dimensions == nil {
		t.Fatalf("filter = %+v, want ResourceGroup dimension filter", def.Dataset.Filter)
	}

	if _, err := buildQueryDefinition(finops.Period{Start: "bad", End: "2025-02-01"}, "Daily", nil, nil); err == nil {
		t.Fatal("invalid start date accepted, want error")
	}
}

func TestNormalizeGranularity(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", "Daily"},
		{"daily", "Daily"},
		{"DAILY", "Daily"},
		{"MONTHLY", "Monthly"},
		{"Monthly", "Monthly"},
	}
	for _, tc := range tests {
		if got := normalizeGranularity(tc.in); got != tc.want {
			t.Fatalf("normalizeGranularity(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTermMonths(t *testing.T) {
	if termMonths("P3Y") != 36 || termMonths("P1Y") != 12 || termMonths("") != 12 {
		t.Fatal("termMonths mapping wrong")
	}
}

func TestStaticTokenCredential(t *testing.T) {
	cred := staticTokenCredential{token: "abc"}
	tok, err := cred.GetToken(context.Background(), policy.TokenRequestOptions{})
	if err != nil || tok.Token != "abc" {
		t.Fatalf("token = %+v, err = %v, want the pinned token", tok, err)
	}
}

func TestGetCostAnomaliesNotAvailable(t *testing.T) {
	p := &Provider{}
	result, err := p.GetCostAnomalies(context.Background(), finops.AnomaliesRequest{})
	if err != nil {
		t.Fatalf("GetCostAnomalies: %v", err)
	}
	if result.Status != finops.StatusNotAvailable {
		t.Fatalf("status = %q, want %q", result.Status, finops.StatusNotAvailable)
	}
	if result.Message == "" {
		t.Fatal("message empty, want guidance text")
	}
}

func TestBudgetTimePeriodDefaults(t *testing.T) {
	start, end, err := budgetTimePeriod("", "")
	if err != nil {
		t.Fatalf("budgetTimePeriod: %v", err)
	}
	if start.Day() != 1 {
		t.Fatalf("start = %v, want first of month", start)
	}
	if !end.Equal(start.AddDate(1, 0, 0)) {
		t.Fatalf("end = %v, want one year after start", end)
	}

	if _, _, err := budgetTimePeriod("not-a-date", ""); err == nil {
		t.Fatal("invalid start date accepted, want error")
	}
}
