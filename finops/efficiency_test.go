package finops

import (
	"math"
	"testing"
)

func TestDeriveEfficiencyPerUnitCosts(t *testing.T) {
	var points []TrendPoint
	for i := 0; i < 10; i++ {
		points = append(points, TrendPoint{Date: "2025-01-01", Cost: 50})
	}
	m := DeriveEfficiency("aws", Period{}, points, 100, 0)

	if m.TotalCost != 500 {
		t.Fatalf("total = %v, want 500", m.TotalCost)
	}
	if m.CostPerUser == nil || math.Abs(*m.CostPerUser-5.00) > 1e-9 {
		t.Fatalf("cost per user = %v, want 5.00", m.CostPerUser)
	}
	if m.CostPerTransaction != nil {
		t.Fatalf("cost per transaction = %v, want nil without a count", m.CostPerTransaction)
	}
}

func TestDeriveEfficiencyStats(t *testing.T) {
	points := []TrendPoint{
		{Cost: 2}, {Cost: 4}, {Cost: 4}, {Cost: 4}, {Cost: 5}, {Cost: 5}, {Cost: 7}, {Cost: 9},
	}
	m := DeriveEfficiency("gcp", Period{}, points, 0, 0)

	if m.MeanCost != 5 {
		t.Fatalf("mean = %v, want 5", m.MeanCost)
	}
	if m.MinCost != 2 || m.MaxCost != 9 {
		t.Fatalf("min/max = %v/%v, want 2/9", m.MinCost, m.MaxCost)
	}
	if math.Abs(m.StdDev-2) > 1e-9 {
		t.Fatalf("stddev = %v, want 2", m.StdDev)
	}
	if math.Abs(m.VarianceRatio-0.4) > 1e-9 {
		t.Fatalf("variance ratio = %v, want 0.4", m.VarianceRatio)
	}
}

func TestDeriveEfficiencyWasteAndScore(t *testing.T) {
	points := []TrendPoint{
		{Cost: 10}, {Cost: 10}, {Cost: 10}, {Cost: 10}, {Cost: 10},
		{Cost: 10}, {Cost: 10}, {Cost: 10}, {Cost: 10}, {Cost: 100},
	}
	m := DeriveEfficiency("azure", Period{}, points, 0, 0)

	if m.WastePeriods != 1 {
		t.Fatalf("waste periods = %d, want 1", m.WastePeriods)
	}
	if m.WastePercentage <= 0 {
		t.Fatalf("waste percentage = %v, want > 0", m.WastePercentage)
	}
	if m.EfficiencyScore < 0 || m.EfficiencyScore > 1 {
		t.Fatalf("score = %v, want within [0,1]", m.EfficiencyScore)
	}
}

func TestDeriveEfficiencyEmpty(t *testing.T) {
	m := DeriveEfficiency("aws", Period{}, nil, 10, 10)
	if m.EfficiencyScore != 1 || m.CostPerUser != nil {
		t.Fatalf("empty metrics = %+v, want perfect score and no unit costs", m)
	}
}

func TestPriorityForMonthlySavings(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{750, PriorityHigh},
		{500, PriorityHigh},
		{499.99, PriorityMedium},
		{100, PriorityMedium},
		{99.99, PriorityLow},
		{0, PriorityLow},
	}
	for _, tc := range tests {
		if got := PriorityForMonthlySavings(tc.amount); got != tc.want {
			t.Fatalf("priority(%v) = %q, want %q", tc.amount, got, tc.want)
		}
	}
}

func TestDeriveUtilization(t *testing.T) {
	rc := &ResourceCosts{
		Rows: []CostRow{
			{Period: "2025-01-01", Cost: 3},
			{Period: "2025-01-02", Cost: 0},
			{Period: "2025-01-03", Cost: 0},
			{Period: "2025-01-04", Cost: 0},
		},
	}
	DeriveUtilization(rc)

	if rc.ActivePeriods != 1 || rc.TotalPeriods != 4 {
		t.Fatalf("activity = %d/%d, want 1/4", rc.ActivePeriods, rc.TotalPeriods)
	}
	if rc.UtilizationRate != 0.25 {
		t.Fatalf("utilization = %v, want 0.25", rc.UtilizationRate)
	}
	if len(rc.Recommendations) == 0 {
		t.Fatalf("recommendations empty, want rightsizing hint below %v utilization", LowUtilizationThreshold)
	}
}
