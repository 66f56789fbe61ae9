package gcp

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"github.com/cloudmesh/cloudmesh-go/finops"
)

const (
	defaultForecastHorizonDays  = 30
	defaultForecastLookbackDays = 90
	defaultAnomalyProbability   = 0.95
)

// GetCostForecast trains an ARIMA_PLUS model on recent daily costs and
// reads its forecast with prediction intervals.
func (p *Provider) GetCostForecast(ctx context.Context, req finops.ForecastRequest) (*finops.Forecast, error) {
	table, err := p.exportTable("GetCostForecast")
	if err != nil {
		return nil, err
	}

	horizon := req.HorizonDays
	if horizon <= 0 {
		horizon = defaultForecastHorizonDays
	}
	lookback := req.LookbackDays
	if lookback <= 0 {
		lookback = defaultForecastLookbackDays
	}
	model := modelFQN(p.opts.ProjectID, p.opts.BigQueryDataset)

	p.log.Debug("training cost forecast model",
		zap.Int("lookback_days", lookback), zap.Int("horizon_days", horizon))

	if err := p.runStatement(ctx, buildForecastModelSQL(model, table, lookback)); err != nil {
		return nil, fmt.Errorf("failed to train GCP forecast model: %w", err)
	}

	it, err := p.bq.Query(buildForecastSQL(model, horizon)).Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read GCP cost forecast: %w", err)
	}

	start := time.Now().UTC().AddDate(0, 0, 1)
	f := &finops.Forecast{
		Provider: p.Name(),
		Period: finops.Period{
			Start: start.Format("2006-01-02"),
			End:   start.AddDate(0, 0, horizon).Format("2006-01-02"),
		},
		Method: "bigquery_ml_arima_plus",
	}
	for {
		var values []bigquery.Value
		err := it.Next(&values)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read GCP forecast row: %w", err)
		}
		if len(values) < 4 {
			continue
		}
		point := finops.ForecastPoint{
			Date:  asString(values[0]),
			Mean:  asFloat(values[1]),
			Lower: asFloat(values[2]),
			Upper: asFloat(values[3]),
		}
		f.Total += point.Mean
		f.Points = append(f.Points, point)
	}
	return f, nil
}

// GetCostAnomalies runs ML anomaly detection over the period's daily
// costs, using the forecast model's view of normal spend.
func (p *Provider) GetCostAnomalies(ctx context.Context, req finops.AnomaliesRequest) (*finops.Anomalies, error) {
	table, err := p.exportTable("GetCostAnomalies")
	if err != nil {
		return nil, err
	}
	period := finops.DefaultPeriod(req.StartDate, req.EndDate)

	threshold := req.ProbabilityThreshold
	if threshold <= 0 {
		threshold = defaultAnomalyProbability
	}
	model := modelFQN(p.opts.ProjectID, p.opts.BigQueryDataset)

	q := p.bq.Query(buildAnomalySQL(model, table, threshold))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "start_date", Value: period.Start},
		{Name: "end_date", Value: period.End},
	}
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to detect GCP cost anomalies: %w", err)
	}

	result := &finops.Anomalies{Provider: p.Name(), Status: finops.StatusOK}
	for {
		var values []bigquery.Value
		err := it.Next(&values)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read GCP anomaly row: %w", err)
		}
		if len(values) < 4 {
			continue
		}
		result.Anomalies = append(result.Anomalies, finops.Anomaly{
			Date:        asString(values[0]),
			ActualCost:  asFloat(values[1]),
			Description: fmt.Sprintf("anomaly probability %.2f", asFloat(values[3])),
		})
	}
	return result, nil
}

// GetCostEfficiencyMetrics derives statistical metrics from daily costs.
// With UseML set, waste periods come from ML anomaly detection instead of
// the sigma rule; on ML failure the statistical result stands.
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
	metrics := finops.DeriveEfficiency(p.Name(), data.Period, points, req.UserCount, req.TransactionCount)

	if req.UseML {
		anomalies, err := p.GetCostAnomalies(ctx, finops.AnomaliesRequest{
			StartDate: data.Period.Start,
			EndDate:   data.Period.End,
		})
		if err != nil {
			p.log.Warn("ML efficiency fallback to statistical", zap.Error(err))
			return metrics, nil
		}
		metrics.Method = finops.MethodBigQueryML
		metrics.WastePeriods = len(anomalies.Anomalies)
	}
	return metrics, nil
}

// GenerateCostReport assembles a breakdown, trend and efficiency summary.
func (p *Provider) GenerateCostReport(ctx context.Context, req finops.ReportRequest) (*finops.CostReport, error) {
	period, reportType, err := finops.ReportPeriod(req.ReportType, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	analysis, err := p.GetCostAnalysis(ctx, finops.CostAnalysisRequest{
		StartDate: period.Start, EndDate: period.End, Dimensions: []string{"service"},
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

// runStatement executes DDL and waits for completion.
func (p *Provider) runStatement(ctx context.Context, sql string) error {
	job, err := p.bq.Query(sql).Run(ctx)
	if err != nil {
		return err
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return err
	}
	return status.Err()
}
