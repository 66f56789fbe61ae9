package finops

import (
	"fmt"
	"math"
	"time"

	"github.com/samber/lo"
)

// Trend direction values.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// Pattern labels attached to a trend when the matching condition holds.
const (
	PatternHighVariability  = "High cost variability"
	PatternConsistent       = "Consistent cost pattern"
	PatternManyZeroPeriods  = "Many zero-cost periods"
	PatternWeekendReduction = "Weekend cost reduction"
)

const (
	// StableGrowthThresholdPct bounds the growth rate considered stable.
	StableGrowthThresholdPct = 5.0
	// HighVariabilityRatio flags a trend when stddev exceeds this share of the mean.
	HighVariabilityRatio = 0.5
	// ZeroCostPeriodRatio flags a trend when more than this share of periods cost nothing.
	ZeroCostPeriodRatio = 0.5
	// WeekendReductionRatio flags daily trends whose weekend average falls below
	// this share of the weekday average.
	WeekendReductionRatio = 0.7
)

// DeriveTrends computes growth, direction, peaks, lows and recurring
// patterns from an ordered series of cost buckets.
func DeriveTrends(provider string, period Period, granularity string, points []TrendPoint) *CostTrends {
	t := &CostTrends{
		Provider:     provider,
		Period:       period,
		Granularity:  granularity,
		TotalPeriods: len(points),
		Points:       points,
	}
	if len(points) == 0 {
		t.TrendDirection = TrendStable
		return t
	}

	t.TotalCost = lo.SumBy(points, func(p TrendPoint) float64 { return p.Cost })
	t.AverageCost = t.TotalCost / float64(len(points))

	first, last := points[0].Cost, points[len(points)-1].Cost
	if first != 0 {
		t.GrowthRate = (last - first) / first * 100
	}
	switch {
	case t.GrowthRate > StableGrowthThresholdPct:
		t.TrendDirection = TrendIncreasing
	case t.GrowthRate < -StableGrowthThresholdPct:
		t.TrendDirection = TrendDecreasing
	default:
		t.TrendDirection = TrendStable
	}

	maxCost := lo.MaxBy(points, func(a, b TrendPoint) bool { return a.Cost > b.Cost }).Cost
	minCost := lo.MinBy(points, func(a, b TrendPoint) bool { return a.Cost < b.Cost }).Cost
	if maxCost > 0 {
		t.PeakPeriods = lo.Filter(points, func(p TrendPoint, _ int) bool { return p.Cost == maxCost })
	}
	t.LowPeriods = lo.Filter(points, func(p TrendPoint, _ int) bool { return p.Cost == minCost })

	t.Patterns = trendPatterns(points, t.AverageCost)
	t.Insights = trendInsights(t)
	return t
}

func trendPatterns(points []TrendPoint, mean float64) []string {
	var patterns []string

	stddev := stdDev(points, mean)
	if mean > 0 && stddev > HighVariabilityRatio*mean {
		patterns = append(patterns, PatternHighVariability)
	} else {
		patterns = append(patterns, PatternConsistent)
	}

	zeros := lo.CountBy(points, func(p TrendPoint) bool { return p.Cost == 0 })
	if float64(zeros) > ZeroCostPeriodRatio*float64(len(points)) {
		patterns = append(patterns, PatternManyZeroPeriods)
	}

	if wd, we, ok := weekdayWeekendAverages(points); ok && we < WeekendReductionRatio*wd {
		patterns = append(patterns, PatternWeekendReduction)
	}
	return patterns
}

// weekdayWeekendAverages splits daily points by day of week. It reports
// ok=false when dates do not parse or either bucket is empty.
func weekdayWeekendAverages(points []TrendPoint) (weekday, weekend float64, ok bool) {
	var wdSum, weSum float64
	var wdN, weN int
	for _, p := range points {
		d, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			return 0, 0, false
		}
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			weSum += p.Cost
			weN++
		} else {
			wdSum += p.Cost
			wdN++
		}
	}
	if wdN == 0 || weN == 0 {
		return 0, 0, false
	}
	return wdSum / float64(wdN), weSum / float64(weN), true
}

func trendInsights(t *CostTrends) []string {
	insights := []string{
		fmt.Sprintf("Total cost over %d periods: %.2f", t.TotalPeriods, t.TotalCost),
		fmt.Sprintf("Average cost per period: %.2f", t.AverageCost),
		fmt.Sprintf("Costs are %s (%.1f%% change from first to last period)", t.TrendDirection, t.GrowthRate),
	}
	if len(t.PeakPeriods) > 0 {
		insights = append(insights, fmt.Sprintf(
			"Peak cost of %.2f on %s", t.PeakPeriods[0].Cost, t.PeakPeriods[0].Date))
	}
	return insights
}

func stdDev(points []TrendPoint, mean float64) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		d := p.Cost - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(points)))
}
