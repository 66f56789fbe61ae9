package finops

// Efficiency derivation methods.
const (
	MethodStatistical = "statistical"
	MethodBigQueryML  = "bigquery_ml"
)

const (
	// WasteSigmaMultiplier marks a period as waste when its cost exceeds
	// the mean by this many standard deviations.
	WasteSigmaMultiplier = 2.0
	// VariabilityPenaltyWeight scales how much cost variance lowers the
	// efficiency score.
	VariabilityPenaltyWeight = 0.2
)

// DeriveEfficiency computes statistical efficiency metrics from an ordered
// cost series. Per-user and per-transaction costs are filled only when the
// corresponding count is positive.
func DeriveEfficiency(provider string, period Period, points []TrendPoint, userCount, txCount int64) *EfficiencyMetrics {
	m := &EfficiencyMetrics{
		Provider: provider,
		Method:   MethodStatistical,
		Period:   period,
	}
	if len(points) == 0 {
		m.EfficiencyScore = 1
		return m
	}

	m.MinCost = points[0].Cost
	m.MaxCost = points[0].Cost
	for _, p := range points {
		m.TotalCost += p.Cost
		if p.Cost < m.MinCost {
			m.MinCost = p.Cost
		}
		if p.Cost > m.MaxCost {
			m.MaxCost = p.Cost
		}
	}
	m.MeanCost = m.TotalCost / float64(len(points))
	m.StdDev = stdDev(points, m.MeanCost)
	if m.MeanCost > 0 {
		m.VarianceRatio = m.StdDev / m.MeanCost
	}

	if userCount > 0 {
		v := m.TotalCost / float64(userCount)
		m.CostPerUser = &v
	}
	if txCount > 0 {
		v := m.TotalCost / float64(txCount)
		m.CostPerTransaction = &v
	}

	threshold := m.MeanCost + WasteSigmaMultiplier*m.StdDev
	var excess float64
	for _, p := range points {
		if p.Cost > threshold {
			m.WastePeriods++
			excess += p.Cost - m.MeanCost
		}
	}
	if m.TotalCost > 0 {
		m.WastePercentage = excess / m.TotalCost * 100
	}

	penalty := m.WastePercentage/100 + VariabilityPenaltyWeight*min(m.VarianceRatio, 1)
	m.EfficiencyScore = clamp01(1 - penalty)
	return m
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
