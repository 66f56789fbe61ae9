package azure

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"

	"github.com/cloudmesh/cloudmesh-go/finops"
)

// GetCostForecast runs the Cost Management forecast at the scope. The
// response is the same columnar table shape as a usage query.
func (p *Provider) GetCostForecast(ctx context.Context, req finops.ForecastRequest) (*finops.Forecast, error) {
	period := forecastPeriod(req)
	from, err := time.Parse("2006-01-02", period.Start)
	if err != nil {
		return nil, fmt.Errorf("invalid forecast start date %q: %w", period.Start, err)
	}
	to, err := time.Parse("2006-01-02", period.End)
	if err != nil {
		return nil, fmt.Errorf("invalid forecast end date %q: %w", period.End, err)
	}

	forecastType := armcostmanagement.ForecastTypeActualCost
	timeframe := armcostmanagement.ForecastTimeframeTypeCustom
	granularity := armcostmanagement.GranularityTypeDaily
	includeActual := false

	definition := armcostmanagement.ForecastDefinition{
		Type:      &forecastType,
		Timeframe: &timeframe,
		TimePeriod: &armcostmanagement.QueryTimePeriod{
			From: &from,
			To:   &to,
		},
		Dataset: &armcostmanagement.QueryDataset{
			Granularity: &granularity,
			Aggregation: map[string]*armcostmanagement.QueryAggregation{
				"totalCost": {
					Name:     stringPtr("Cost"),
					Function: functionPtr(armcostmanagement.FunctionTypeSum),
				},
			},
		},
		IncludeActualCost: &includeActual,
	}

	resp, err := p.forecast.Usage(ctx, p.defaultScope, definition, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get Azure cost forecast: %w", err)
	}

	f := &finops.Forecast{
		Provider: p.Name(),
		Period:   period,
		Method:   "cost_management_forecast",
		Native:   resp.QueryResult,
	}
	for _, row := range parseQueryResult(resp.QueryResult, nil) {
		f.Total += row.Cost
		f.Points = append(f.Points, finops.ForecastPoint{Date: row.Period, Mean: row.Cost})
	}
	return f, nil
}

// GetCostAnomalies reports that Azure exposes no anomaly detection API.
// Callers get a typed placeholder rather than an error.
func (p *Provider) GetCostAnomalies(ctx context.Context, req finops.AnomaliesRequest) (*finops.Anomalies, error) {
	return &finops.Anomalies{
		Provider: p.Name(),
		Status:   finops.StatusNotAvailable,
		Message:  "Azure Cost Management does not expose an anomaly detection API; configure anomaly alerts in the portal instead",
	}, nil
}

// GetCostEfficiencyMetrics derives statistical efficiency metrics from
// daily costs over the requested period.
func (p *Provider) GetCostEfficiencyMetrics(ctx context.Context, req finops.EfficiencyRequest) (*finops.EfficiencyMetrics, error) {
	data, err := p.GetCostData(ctx, finops.CostDataRequest{
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Granularity: "Daily",
	})
	if err != nil {
		return nil, err
	}
	points := finops.PointsFromRows(data.Rows)
	return finops.DeriveEfficiency(p.Name(), data.Period, points, req.UserCount, req.TransactionCount), nil
}

// GenerateCostReport assembles a breakdown, trend and efficiency summary.
func (p *Provider) GenerateCostReport(ctx context.Context, req finops.ReportRequest) (*finops.CostReport, error) {
	period, reportType, err := finops.ReportPeriod(req.ReportType, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	analysis, err := p.GetCostAnalysis(ctx, finops.CostAnalysisRequest{
		StartDate: period.Start, EndDate: period.End, Dimensions: []string{"ServiceName"},
	})
	if err != nil {
		return nil, err
	}
	trends, err := p.GetCostTrends(ctx, finops.CostTrendsRequest{
		StartDate: period.Start, EndDate: period.End,
	})
	if err != nil {
		return nil, err
	}
	efficiency, err := p.GetCostEfficiencyMetrics(ctx, finops.EfficiencyRequest{
		StartDate: period.Start, EndDate: period.End,
		UserCount: req.UserCount, TransactionCount: req.TransactionCount,
	})
	if err != nil {
		return nil, err
	}

	return &finops.CostReport{
		Provider:      p.Name(),
		ReportType:    reportType,
		Period:        period,
		TotalCost:     analysis.TotalCost,
		CostBreakdown: analysis.CostBreakdown,
		Trends:        trends,
		Efficiency:    efficiency,
		GeneratedAt:   time.Now().UTC(),
	}, nil
}

// forecastPeriod defaults to the next 30 days starting tomorrow.
func forecastPeriod(req finops.ForecastRequest) finops.Period {
	if req.StartDate != "" && req.EndDate != "" {
		return finops.Period{Start: req.StartDate, End: req.EndDate}
	}
	start := time.Now().UTC().AddDate(0, 0, 1)
	horizon := req.HorizonDays
	if horizon <= 0 {
		horizon = 30
	}
	return finops.Period{
		Start: start.Format("2006-01-02"),
		End:   start.AddDate(0, 0, horizon).Format("2006-01-02"),
	}
}
