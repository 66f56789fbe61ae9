package finops

import "time"

const dateLayout = "2006-01-02"

// DefaultPeriod fills empty dates with the trailing 30 days ending today.
func DefaultPeriod(start, end string) Period {
	if start != "" && end != "" {
		return Period{Start: start, End: end}
	}
	now := time.Now().UTC()
	if end == "" {
		end = now.Format(dateLayout)
	}
	if start == "" {
		start = now.AddDate(0, 0, -30).Format(dateLayout)
	}
	return Period{Start: start, End: end}
}

// CurrentMonthPeriod fills empty dates with the current calendar month,
// from its first day through today.
func CurrentMonthPeriod(start, end string) Period {
	if start != "" && end != "" {
		return Period{Start: start, End: end}
	}
	now := time.Now().UTC()
	if start == "" {
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).Format(dateLayout)
	}
	if end == "" {
		end = now.Format(dateLayout)
	}
	return Period{Start: start, End: end}
}

// PointsFromRows collapses cost rows into one trend point per period,
// preserving first-seen period order.
func PointsFromRows(rows []CostRow) []TrendPoint {
	idx := make(map[string]int)
	var points []TrendPoint
	for _, r := range rows {
		if i, ok := idx[r.Period]; ok {
			points[i].Cost += r.Cost
			continue
		}
		idx[r.Period] = len(points)
		points = append(points, TrendPoint{Date: r.Period, Cost: r.Cost})
	}
	return points
}
