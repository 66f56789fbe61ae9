package aws

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"go.uber.org/zap"

	"github.com/cloudmesh/cloudmesh-go/finops"
)

const defaultCostMetric = "UnblendedCost"

// GetCostData queries Cost Explorer and normalizes the grouped results.
func (p *Provider) GetCostData(ctx context.Context, req finops.CostDataRequest) (*finops.CostData, error) {
	period := finops.DefaultPeriod(req.StartDate, req.EndDate)
	granularity := req.Granularity
	if granularity == "" {
		granularity = "MONTHLY"
	}
	metrics := req.Metrics
	if len(metrics) == 0 {
		metrics = []string{defaultCostMetric}
	}

	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &types.DateInterval{
			Start: aws.String(period.Start),
			End:   aws.String(period.End),
		},
		Granularity: types.Granularity(strings.ToUpper(granularity)),
		Metrics:     metrics,
	}
	for _, dim := range req.GroupBy {
		input.GroupBy = append(input.GroupBy, types.GroupDefinition{
			Type: types.GroupDefinitionTypeDimension,
			Key:  aws.String(dim),
		})
	}
	if expr := buildFilter(req.Filter); expr != nil {
		input.Filter = expr
	}

	p.log.Debug("querying cost and usage",
		zap.String("start", period.Start), zap.String("end", period.End),
		zap.String("granularity", granularity))

	out, err := p.ce.GetCostAndUsage(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get AWS cost data: %w", err)
	}

	return &finops.CostData{
		Provider:    p.Name(),
		Period:      period,
		Granularity: granularity,
		GroupBy:     req.GroupBy,
		Rows:        rowsFromResults(out.ResultsByTime, metrics[0]),
		Native:      out,
	}, nil
}

// GetCostAnalysis fetches costs grouped by the requested dimensions and
// derives a ranked breakdown with insights.
func (p *Provider) GetCostAnalysis(ctx context.Context, req finops.CostAnalysisRequest) (*finops.CostAnalysis, error) {
	dims := req.Dimensions
	if len(dims) == 0 {
		dims = []string{"SERVICE", "REGION"}
	}
	data, err := p.GetCostData(ctx, finops.CostDataRequest{
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Granularity: "MONTHLY",
		GroupBy:     dims,
	})
	if err != nil {
		return nil, err
	}
	return finops.Analyze(p.Name(), data.Period, dims, data.Rows), nil
}

// GetCostTrends fetches a daily cost series and derives growth, peaks and
// recurring patterns.
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

// GetResourceCosts approximates per-resource costs by filtering on the
// SERVICE dimension. Cost Explorer cannot address an individual resource
// without hourly resource-level data enabled.
func (p *Provider) GetResourceCosts(ctx context.Context, req finops.ResourceCostsRequest) (*finops.ResourceCosts, error) {
	granularity := req.Granularity
	if granularity == "" {
		granularity = "DAILY"
	}
	data, err := p.GetCostData(ctx, finops.CostDataRequest{
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Granularity: granularity,
		Filter:      map[string]any{"SERVICE": []string{req.ResourceID}},
	})
	if err != nil {
		return nil, err
	}

	rc := &finops.ResourceCosts{
		Provider:    p.Name(),
		ResourceID:  req.ResourceID,
		Period:      data.Period,
		Rows:        data.Rows,
		Approximate: true,
		Note:        "costs are aggregated at the service level, not per resource",
	}
	finops.DeriveUtilization(rc)
	return rc, nil
}

// buildFilter converts a portable dimension filter into a Cost Explorer
// expression. Map values may be a string or a list of strings; multiple
// dimensions are combined with And.
func buildFilter(filter map[string]any) *types.Expression {
	var exprs []types.Expression
	for key, raw := range filter {
		var values []string
		switch v := raw.(type) {
		case string:
			values = []string{v}
		case []string:
			values = v
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok {
					values = append(values, s)
				}
			}
		}
		if len(values) == 0 {
			continue
		}
		exprs = append(exprs, types.Expression{
			Dimensions: &types.DimensionValues{
				Key:    types.Dimension(key),
				Values: values,
			},
		})
	}
	switch len(exprs) {
	case 0:
		return nil
	case 1:
		return &exprs[0]
	default:
		return &types.Expression{And: exprs}
	}
}

// rowsFromResults flattens ResultsByTime into normalized rows. Ungrouped
// results use the period total; grouped results emit one row per group.
func rowsFromResults(results []types.ResultByTime, primaryMetric string) []finops.CostRow {
	var rows []finops.CostRow
	for _, period := range results {
		start := ""
		if period.TimePeriod != nil && period.TimePeriod.Start != nil {
			start = *period.TimePeriod.Start
		}
		if len(period.Groups) == 0 {
			cost, currency, metrics := parseMetrics(period.Total, primaryMetric)
			rows = append(rows, finops.CostRow{
				Period: start, Cost: cost, Metrics: metrics, Currency: currency,
			})
			continue
		}
		for _, group := range period.Groups {
			cost, currency, metrics := parseMetrics(group.Metrics, primaryMetric)
			rows = append(rows, finops.CostRow{
				Period: start, Keys: group.Keys, Cost: cost, Metrics: metrics, Currency: currency,
			})
		}
	}
	return rows
}

func parseMetrics(values map[string]types.MetricValue, primary string) (cost float64, currency string, metrics map[string]float64) {
	metrics = make(map[string]float64, len(values))
	for name, mv := range values {
		if mv.Amount == nil {
			continue
		}
		amount, _ := strconv.ParseFloat(*mv.Amount, 64)
		metrics[name] = amount
		if name == primary {
			cost = amount
			if mv.Unit != nil {
				currency = *mv.Unit
			}
		}
	}
	return cost, currency, metrics
}
