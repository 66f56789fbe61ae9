package finops

import (
	"math"
	"strings"
	"testing"
)

func TestAnalyzeBreakdownAndInsights(t *testing.T) {
	rows := []CostRow{
		{Period: "2025-01-01", Keys: []string{"A"}, Cost: 5},
		{Period: "2025-01-01", Keys: []string{"B"}, Cost: 3},
	}
	a := Analyze("aws", Period{Start: "2025-01-01", End: "2025-02-01"}, []string{"SERVICE"}, rows)

	if a.TotalCost != 8 {
		t.Fatalf("total cost = %v, want 8", a.TotalCost)
	}
	if a.TopContributors[0].Key != "A" {
		t.Fatalf("top contributor = %q, want A", a.TopContributors[0].Key)
	}
	if len(a.Insights) == 0 || !strings.Contains(a.Insights[0], "62.5%") {
		t.Fatalf("insights = %v, want top-service insight with 62.5%%", a.Insights)
	}
	if !strings.Contains(a.Insights[0], "Top service 'A'") {
		t.Fatalf("insight = %q, want it to name service A", a.Insights[0])
	}
}

func TestAnalyzeBreakdownSumsToTotal(t *testing.T) {
	rows := []CostRow{
		{Period: "2025-01-01", Keys: []string{"Compute", "proj-1"}, Cost: 10.25},
		{Period: "2025-01-02", Keys: []string{"Compute", "proj-1"}, Cost: 4.75},
		{Period: "2025-01-01", Keys: []string{"Storage", "proj-2"}, Cost: 1.5},
	}
	a := Analyze("gcp", Period{}, []string{"service", "project"}, rows)

	var sum float64
	for _, v := range a.CostBreakdown {
		sum += v
	}
	if math.Abs(sum-a.TotalCost) > 1e-9 {
		t.Fatalf("breakdown sum %v != total %v", sum, a.TotalCost)
	}
	if _, ok := a.CostBreakdown["Compute|proj-1"]; !ok {
		t.Fatalf("breakdown keys = %v, want Compute|proj-1", a.CostBreakdown)
	}
}

func TestAnalyzeRankingAndLimit(t *testing.T) {
	var rows []CostRow
	for i := 0; i < 15; i++ {
		rows = append(rows, CostRow{
			Period: "2025-01-01",
			Keys:   []string{string(rune('a' + i))},
			Cost:   float64(i + 1),
		})
	}
	a := Analyze("azure", Period{}, []string{"ServiceName"}, rows)

	if len(a.TopContributors) != TopContributorLimit {
		t.Fatalf("top contributors = %d, want %d", len(a.TopContributors), TopContributorLimit)
	}
	for i := 1; i < len(a.TopContributors); i++ {
		if a.TopContributors[i].Cost > a.TopContributors[i-1].Cost {
			t.Fatalf("contributors not descending at %d: %v", i, a.TopContributors)
		}
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	a := Analyze("aws", Period{}, nil, nil)
	if a.TotalCost != 0 || len(a.Insights) != 0 {
		t.Fatalf("empty analysis = %+v, want zero total and no insights", a)
	}
}
