package finops

import (
	"fmt"
	"time"
)

// Report types accepted by GenerateCostReport.
const (
	ReportMonthly   = "monthly"
	ReportQuarterly = "quarterly"
	ReportAnnual    = "annual"
	ReportCustom    = "custom"
)

// ReportPeriod resolves a report type to its date range. Explicit dates win
// and force the custom type; otherwise monthly covers the current month,
// quarterly the current quarter and annual the current year, each through
// today.
func ReportPeriod(reportType, start, end string) (Period, string, error) {
	if start != "" && end != "" {
		return Period{Start: start, End: end}, ReportCustom, nil
	}
	if reportType == "" {
		reportType = ReportMonthly
	}

	now := time.Now().UTC()
	var from time.Time
	switch reportType {
	case ReportMonthly:
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	case ReportQuarterly:
		quarterStart := time.Month((int(now.Month())-1)/3*3 + 1)
		from = time.Date(now.Year(), quarterStart, 1, 0, 0, 0, 0, time.UTC)
	case ReportAnnual:
		from = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	case ReportCustom:
		return Period{}, "", fmt.Errorf("custom report requires start and end dates")
	default:
		return Period{}, "", fmt.Errorf("unknown report type %q", reportType)
	}

	return Period{
		Start: from.Format(dateLayout),
		End:   now.Format(dateLayout),
	}, reportType, nil
}
