package finops

import (
	"slices"
	"testing"
)

func TestDeriveTrendsGrowthAndPeak(t *testing.T) {
	points := []TrendPoint{
		{Date: "2025-01-01", Cost: 4},
		{Date: "2025-01-02", Cost: 4},
		{Date: "2025-01-03", Cost: 8},
	}
	tr := DeriveTrends("aws", Period{}, "DAILY", points)

	if tr.GrowthRate != 100 {
		t.Fatalf("growth rate = %v, want 100", tr.GrowthRate)
	}
	if tr.TrendDirection != TrendIncreasing {
		t.Fatalf("direction = %q, want %q", tr.TrendDirection, TrendIncreasing)
	}
	if len(tr.PeakPeriods) != 1 || tr.PeakPeriods[0].Date != "2025-01-03" {
		t.Fatalf("peak periods = %v, want the third period", tr.PeakPeriods)
	}
	if len(tr.LowPeriods) != 2 {
		t.Fatalf("low periods = %v, want both 4.0 periods", tr.LowPeriods)
	}
}

func TestDeriveTrendsZeroFirstPeriod(t *testing.T) {
	points := []TrendPoint{
		{Date: "2025-01-01", Cost: 0},
		{Date: "2025-01-02", Cost: 50},
	}
	tr := DeriveTrends("azure", Period{}, "Daily", points)

	if tr.GrowthRate != 0 {
		t.Fatalf("growth rate = %v, want 0 when first period is zero", tr.GrowthRate)
	}
	if tr.TrendDirection != TrendStable {
		t.Fatalf("direction = %q, want %q", tr.TrendDirection, TrendStable)
	}
}

func TestDeriveTrendsDirections(t *testing.T) {
	tests := []struct {
		name   string
		first  float64
		last   float64
		expect string
	}{
		{"increasing", 100, 120, TrendIncreasing},
		{"decreasing", 100, 80, TrendDecreasing},
		{"stable within threshold", 100, 104, TrendStable},
		{"stable on negative side", 100, 96, TrendStable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := DeriveTrends("gcp", Period{}, "DAILY", []TrendPoint{
				{Date: "2025-01-01", Cost: tc.first},
				{Date: "2025-01-02", Cost: tc.last},
			})
			if tr.TrendDirection != tc.expect {
				t.Fatalf("direction = %q, want %q", tr.TrendDirection, tc.expect)
			}
		})
	}
}

func TestTrendPatterns(t *testing.T) {
	t.Run("consistent", func(t *testing.T) {
		tr := DeriveTrends("aws", Period{}, "DAILY", []TrendPoint{
			{Date: "2025-01-01", Cost: 10},
			{Date: "2025-01-02", Cost: 11},
			{Date: "2025-01-03", Cost: 10},
		})
		if !slices.Contains(tr.Patterns, PatternConsistent) {
			t.Fatalf("patterns = %v, want %q", tr.Patterns, PatternConsistent)
		}
	})

	t.Run("high variability", func(t *testing.T) {
		tr := DeriveTrends("aws", Period{}, "DAILY", []TrendPoint{
			{Date: "2025-01-01", Cost: 1},
			{Date: "2025-01-02", Cost: 100},
			{Date: "2025-01-03", Cost: 1},
		})
		if !slices.Contains(tr.Patterns, PatternHighVariability) {
			t.Fatalf("patterns = %v, want %q", tr.Patterns, PatternHighVariability)
		}
	})

	t.Run("many zero periods", func(t *testing.T) {
		tr := DeriveTrends("aws", Period{}, "DAILY", []TrendPoint{
			{Date: "2025-01-01", Cost: 0},
			{Date: "2025-01-02", Cost: 0},
			{Date: "2025-01-03", Cost: 0},
			{Date: "2025-01-04", Cost: 5},
		})
		if !slices.Contains(tr.Patterns, PatternManyZeroPeriods) {
			t.Fatalf("patterns = %v, want %q", tr.Patterns, PatternManyZeroPeriods)
		}
	})

	t.Run("weekend reduction", func(t *testing.T) {
		// 2025-01-06 is a Monday.
		points := []TrendPoint{
			{Date: "2025-01-06", Cost: 100},
			{Date: "2025-01-07", Cost: 100},
			{Date: "2025-01-08", Cost: 100},
			{Date: "2025-01-09", Cost: 100},
			{Date: "2025-01-10", Cost: 100},
			{Date: "2025-01-11", Cost: 20},
			{Date: "2025-01-12", Cost: 20},
		}
		tr := DeriveTrends("aws", Period{}, "DAILY", points)
		if !slices.Contains(tr.Patterns, PatternWeekendReduction) {
			t.Fatalf("patterns = %v, want %q", tr.Patterns, PatternWeekendReduction)
		}
	})
}

func TestDeriveTrendsEmpty(t *testing.T) {
	tr := DeriveTrends("aws", Period{}, "DAILY", nil)
	if tr.TrendDirection != TrendStable || tr.TotalPeriods != 0 {
		t.Fatalf("empty trend = %+v, want stable with zero periods", tr)
	}
}
