package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer/types"

	"github.com/cloudmesh/cloudmesh-go/finops"
)

// GetCostForecast returns the Cost Explorer forecast with prediction
// intervals for the requested window.
func (p *Provider) GetCostForecast(ctx context.Context, req finops.ForecastRequest) (*finops.Forecast, error) {
	period := forecastPeriod(req)
	metric := req.Metric
	if metric == "" {
		metric = "UNBLENDED_COST"
	}
	granularity := req.Granularity
	if granularity == "" {
		granularity = "MONTHLY"
	}

	out, err := p.ce.GetCostForecast(ctx, &costexplorer.GetCostForecastInput{
		TimePeriod: &types.DateInterval{
			Start: aws.String(period.Start),
			End:   aws.String(period.End),
		},
		Metric:      types.Metric(metric),
		Granularity: types.Granularity(granularity),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get AWS cost forecast: %w", err)
	}

	f := &finops.Forecast{
		Provider: p.Name(),
		Period:   period,
		Method:   "cost_explorer_forecast",
		Native:   out,
	}
	if out.Total != nil {
		f.Total = parseAmount(out.Total.Amount)
	}
	for _, r := range out.ForecastResultsByTime {
		point := finops.ForecastPoint{
			Mean:  parseAmount(r.MeanValue),
			Lower: parseAmount(r.PredictionIntervalLowerBound),
			Upper: parseAmount(r.PredictionIntervalUpperBound),
		}
		if r.TimePeriod != nil && r.TimePeriod.Start != nil {
			point.Date = *r.TimePeriod.Start
		}
		f.Points = append(f.Points, point)
	}
	return f, nil
}

// GetCostAnomalies returns anomalies from the Cost Anomaly Detection
// service, optionally scoped to one monitor and a minimum impact.
func (p *Provider) GetCostAnomalies(ctx context.Context, req finops.AnomaliesRequest) (*finops.Anomalies, error) {
	period := finops.DefaultPeriod(req.StartDate, req.EndDate)

	input := &costexplorer.GetAnomaliesInput{
		DateInterval: &types.AnomalyDateInterval{
			StartDate: aws.String(period.Start),
			EndDate:   aws.String(period.End),
		},
	}
	if req.MonitorARN != "" {
		input.MonitorArn = aws.String(req.MonitorARN)
	}
	if req.TotalImpactAbove > 0 {
		input.TotalImpact = &types.TotalImpactFilter{
			NumericOperator: types.NumericOperatorGreaterThan,
			StartValue:      req.TotalImpactAbove,
		}
	}

	out, err := p.ce.GetAnomalies(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get AWS cost anomalies: %w", err)
	}

	result := &finops.Anomalies{Provider: p.Name(), Status: finops.StatusOK, Native: out}
	for _, a := range out.Anomalies {
		anomaly := finops.Anomaly{Native: a}
		if a.AnomalyStartDate != nil {
			anomaly.Date = *a.AnomalyStartDate
		}
		if a.DimensionValue != nil {
			anomaly.Service = *a.DimensionValue
		}
		if a.Impact != nil {
			anomaly.Impact = a.Impact.TotalImpact
			if a.Impact.TotalActualSpend != nil {
				anomaly.ActualCost = *a.Impact.TotalActualSpend
			}
			if a.Impact.TotalExpectedSpend != nil {
				anomaly.ExpectedCost = *a.Impact.TotalExpectedSpend
			}
		}
		result.Anomalies = append(result.Anomalies, anomaly)
	}
	return result, nil
}

// GetCostEfficiencyMetrics derives statistical efficiency metrics from
// daily costs over the requested period.
func (p *Provider) GetCostEfficiencyMetrics(ctx context.Context, req finops.EfficiencyRequest) (*finops.EfficiencyMetrics, error) {
	data, err := p.GetCostData(ctx, finops.CostDataRequest{
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Granularity: "DAILY",
	})
	if err != nil {
		return nil, err
	}
	points := finops.PointsFromRows(data.Rows)
	return finops.DeriveEfficiency(p.Name(), data.Period, points, req.UserCount, req.TransactionCount), nil
}

// GenerateCostReport assembles a breakdown, trend and efficiency summary
// for a monthly, quarterly, annual or custom period.
func (p *Provider) GenerateCostReport(ctx context.Context, req finops.ReportRequest) (*finops.CostReport, error) {
	period, reportType, err := finops.ReportPeriod(req.ReportType, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	analysis, err := p.GetCostAnalysis(ctx, finops.CostAnalysisRequest{
		StartDate: period.Start, EndDate: period.End, Dimensions: []string{"SERVICE"},
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
	now := time.Now().UTC()
	start := now.AddDate(0, 0, 1)
	horizon := req.HorizonDays
	if horizon <= 0 {
		horizon = 30
	}
	return finops.Period{
		Start: start.Format("2006-01-02"),
		End:   start.AddDate(0, 0, horizon).Format("2006-01-02"),
	}
}
