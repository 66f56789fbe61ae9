package finops

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// GroupKeySeparator joins multi-dimension group values into one breakdown key.
const GroupKeySeparator = "|"

// TopContributorLimit caps the ranked contributor list in a cost analysis.
const TopContributorLimit = 10

// Analyze aggregates raw cost rows into a breakdown by group key, ranks the
// contributors and derives human-readable insights.
func Analyze(provider string, period Period, dims []string, rows []CostRow) *CostAnalysis {
	breakdown := make(map[string]float64)
	total := 0.0
	for _, r := range rows {
		key := strings.Join(r.Keys, GroupKeySeparator)
		if key == "" {
			key = "total"
		}
		breakdown[key] += r.Cost
		total += r.Cost
	}

	entries := lo.MapToSlice(breakdown, func(k string, v float64) BreakdownEntry {
		return BreakdownEntry{Key: k, Cost: v}
	})
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Cost != entries[j].Cost {
			return entries[i].Cost > entries[j].Cost
		}
		return entries[i].Key < entries[j].Key
	})
	if len(entries) > TopContributorLimit {
		entries = entries[:TopContributorLimit]
	}

	return &CostAnalysis{
		Provider:        provider,
		Period:          period,
		Dimensions:      dims,
		TotalCost:       total,
		CostBreakdown:   breakdown,
		TopContributors: entries,
		Insights:        analysisInsights(total, entries),
	}
}

func analysisInsights(total float64, top []BreakdownEntry) []string {
	var insights []string
	if total <= 0 || len(top) == 0 {
		return insights
	}
	first := top[0]
	insights = append(insights, fmt.Sprintf(
		"Top service '%s' accounts for %.1f%% of total costs",
		first.Key, first.Cost/total*100))
	if len(top) >= 3 {
		top3 := lo.SumBy(top[:3], func(e BreakdownEntry) float64 { return e.Cost })
		insights = append(insights, fmt.Sprintf(
			"Top 3 services account for %.1f%% of total costs", top3/total*100))
	}
	return insights
}
