package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"github.com/cloudmesh/cloudmesh-go/finops"
)

// GetCostData queries the billing export and normalizes the result rows.
func (p *Provider) GetCostData(ctx context.Context, req finops.CostDataRequest) (*finops.CostData, error) {
	table, err := p.exportTable("GetCostData")
	if err != nil {
		return nil, err
	}
	period := finops.DefaultPeriod(req.StartDate, req.EndDate)
	granularity := req.Granularity
	if granularity == "" {
		granularity = "DAILY"
	}

	sql, err := buildCostSQL(table, period.Start, period.End, granularity, req.GroupBy)
	if err != nil {
		return nil, err
	}

	rows, err := p.runCostQuery(ctx, sql, period, len(req.GroupBy), nil)
	if err != nil {
		return nil, err
	}

	return &finops.CostData{
		Provider:    p.Name(),
		Period:      period,
		Granularity: granularity,
		GroupBy:     req.GroupBy,
		Rows:        rows,
	}, nil
}

// GetCostAnalysis queries costs grouped by the requested dimensions and
// derives a ranked breakdown with insights.
func (p *Provider) GetCostAnalysis(ctx context.Context, req finops.CostAnalysisRequest) (*finops.CostAnalysis, error) {
	dims := req.Dimensions
	if len(dims) == 0 {
		dims = []string{"service", "project"}
	}
	data, err := p.GetCostData(ctx, finops.CostDataRequest{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		GroupBy:   dims,
	})
	if err != nil {
		return nil, err
	}
	return finops.Analyze(p.Name(), data.Period, dims, data.Rows), nil
}

// GetCostTrends queries a daily series and derives growth and patterns.
func (p *Provider) GetCostTrends(ctx context.Context, req finops.CostTrendsRequest) (*finops.CostTrends, error) {
	granularity := req.Granularity
	if granularity == "" {
		granularity = "DAILY"
	}
	data, err := p.GetCostData(ctx, finops.CostDataRequest{
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Granularity: granularity,
	})
	if err != nil {
		return nil, err
	}
	return finops.DeriveTrends(p.Name(), data.Period, granularity, finops.PointsFromRows(data.Rows)), nil
}

// GetResourceCosts returns daily costs for one service label. The billing
// export has no per-resource identity beyond labels, so service is the
// finest portable grain.
func (p *Provider) GetResourceCosts(ctx context.Context, req finops.ResourceCostsRequest) (*finops.ResourceCosts, error) {
	table, err := p.exportTable("GetResourceCosts")
	if err != nil {
		return nil, err
	}
	period := finops.DefaultPeriod(req.StartDate, req.EndDate)

	rows, err := p.runCostQuery(ctx, buildServiceCostSQL(table), period, 0, []bigquery.QueryParameter{
		{Name: "service", Value: req.ResourceID},
	})
	if err != nil {
		return nil, err
	}

	rc := &finops.ResourceCosts{
		Provider:    p.Name(),
		ResourceID:  req.ResourceID,
		Period:      period,
		Rows:        rows,
		Approximate: true,
		Note:        "costs are aggregated per service; per-resource costs require resource labels",
	}
	finops.DeriveUtilization(rc)
	return rc, nil
}

// runCostQuery executes a parameterized export query whose first three
// columns are period, total cost and currency, followed by dimension
// values.
func (p *Provider) runCostQuery(ctx context.Context, sql string, period finops.Period, dimCount int, extra []bigquery.QueryParameter) ([]finops.CostRow, error) {
	q := p.bq.Query(sql)
	q.Parameters = append([]bigquery.QueryParameter{
		{Name: "start_date", Value: period.Start},
		{Name: "end_date", Value: period.End},
	}, extra...)

	p.log.Debug("running billing export query",
		zap.String("start", period.Start), zap.String("end", period.End))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query GCP billing export: %w", err)
	}

	var rows []finops.CostRow
	for {
		var values []bigquery.Value
		err := it.Next(&values)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read GCP billing export row: %w", err)
		}
		if len(values) < 3+dimCount {
			continue
		}
		row := finops.CostRow{
			Period:   asString(values[0]),
			Cost:     asFloat(values[1]),
			Currency: asString(values[2]),
		}
		for i := 0; i < dimCount; i++ {
			row.Keys = append(row.Keys, asString(values[3+i]))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func asString(v bigquery.Value) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func asFloat(v bigquery.Value) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	default:
		return 0
	}
}
