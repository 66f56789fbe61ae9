package azure

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"
	"go.uber.org/zap"

	"github.com/cloudmesh/cloudmesh-go/finops"
)

// GetCostData runs a Cost Management query at the requested scope and
// normalizes the row/column table it returns.
func (p *Provider) GetCostData(ctx context.Context, req finops.CostDataRequest) (*finops.CostData, error) {
	period := finops.DefaultPeriod(req.StartDate, req.EndDate)
	granularity := normalizeGranularity(req.Granularity)
	scope := p.scopeOrDefault(req.Scope)

	queryDef, err := buildQueryDefinition(period, granularity, req.GroupBy, req.Filter)
	if err != nil {
		return nil, err
	}

	p.log.Debug("querying cost management",
		zap.String("scope", scope),
		zap.String("start", period.Start), zap.String("end", period.End))

	resp, err := p.query.Usage(ctx, scope, *queryDef, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query Azure costs for scope %s: %w", scope, err)
	}

	return &finops.CostData{
		Provider:    p.Name(),
		Period:      period,
		Granularity: granularity,
		GroupBy:     req.GroupBy,
		Rows:        parseQueryResult(resp.QueryResult, req.GroupBy),
		Native:      resp.QueryResult,
	}, nil
}

// GetCostAnalysis queries costs grouped by the requested dimensions and
// derives a ranked breakdown with insights.
func (p *Provider) GetCostAnalysis(ctx context.Context, req finops.CostAnalysisRequest) (*finops.CostAnalysis, error) {
	dims := req.Dimensions
	if len(dims) == 0 {
		dims = []string{"ServiceName", "ResourceGroup"}
	}
	data, err := p.GetCostData(ctx, finops.CostDataRequest{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		GroupBy:   dims,
		Scope:     req.Scope,
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
		granularity = "Daily"
	}
	data, err := p.GetCostData(ctx, finops.CostDataRequest{
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Granularity: granularity,
		Scope:       req.Scope,
	})
	if err != nil {
		return nil, err
	}
	return finops.DeriveTrends(p.Name(), data.Period, data.Granularity, finops.PointsFromRows(data.Rows)), nil
}

// GetResourceCosts filters the query down to one resource ID.
func (p *Provider) GetResourceCosts(ctx context.Context, req finops.ResourceCostsRequest) (*finops.ResourceCosts, error) {
	data, err := p.GetCostData(ctx, finops.CostDataRequest{
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Granularity: req.Granularity,
		Scope:       req.Scope,
		Filter:      map[string]any{"ResourceId": req.ResourceID},
	})
	if err != nil {
		return nil, err
	}

	rc := &finops.ResourceCosts{
		Provider:   p.Name(),
		ResourceID: req.ResourceID,
		Period:     data.Period,
		Rows:       data.Rows,
	}
	finops.DeriveUtilization(rc)
	return rc, nil
}

func normalizeGranularity(g string) string {
	switch strings.ToLower(g) {
	case "", "daily":
		return "Daily"
	case "monthly":
		return "Monthly"
	default:
		return strings.ToUpper(g[:1]) + strings.ToLower(g[1:])
	}
}

// buildQueryDefinition assembles the ActualCost query with cost summed per
// bucket, optional dimension grouping and an optional dimension filter.
func buildQueryDefinition(period finops.Period, granularity string, groupBy []string, filter map[string]any) (*armcostmanagement.QueryDefinition, error) {
	from, err := time.Parse("2006-01-02", period.Start)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", period.Start, err)
	}
	to, err := time.Parse("2006-01-02", period.End)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", period.End, err)
	}

	queryType := armcostmanagement.ExportTypeActualCost
	timeframe := armcostmanagement.TimeframeTypeCustom
	gran := armcostmanagement.GranularityType(granularity)

	var grouping []*armcostmanagement.QueryGrouping
	groupType := armcostmanagement.QueryColumnTypeDimension
	for _, name := range groupBy {
		n := name
		grouping = append(grouping, &armcostmanagement.QueryGrouping{
			Type: &groupType,
			Name: &n,
		})
	}

	dataset := &armcostmanagement.QueryDataset{
		Granularity: &gran,
		Aggregation: map[string]*armcostmanagement.QueryAggregation{
			"totalCost": {
				Name:     stringPtr("Cost"),
				Function: functionPtr(armcostmanagement.FunctionTypeSum),
			},
		},
		Grouping: grouping,
	}
	if expr := buildQueryFilter(filter); expr != nil {
		dataset.Filter = expr
	}

	return &armcostmanagement.QueryDefinition{
		Type:      &queryType,
		Timeframe: &timeframe,
		TimePeriod: &armcostmanagement.QueryTimePeriod{
			From: &from,
			To:   &to,
		},
		Dataset: dataset,
	}, nil
}

// buildQueryFilter converts a portable dimension filter. Only single
// dimension filters are expressible; multiple entries are combined with And.
func buildQueryFilter(filter map[string]any) *armcostmanagement.QueryFilter {
	var exprs []*armcostmanagement.QueryFilter
	operator := armcostmanagement.QueryOperatorTypeIn
	for name, raw := range filter {
		var values []*string
		switch v := raw.(type) {
		case string:
			values = []*string{stringPtr(v)}
		case []string:
			for _, s := range v {
				values = append(values, stringPtr(s))
			}
		}
		if len(values) == 0 {
			continue
		}
		exprs = append(exprs, &armcostmanagement.QueryFilter{
			Dimensions: &armcostmanagement.QueryComparisonExpression{
				Name:     stringPtr(name),
				Operator: &operator,
				Values:   values,
			},
		})
	}
	switch len(exprs) {
	case 0:
		return nil
	case 1:
		return exprs[0]
	default:
		return &armcostmanagement.QueryFilter{And: exprs}
	}
}

// parseQueryResult flattens the columnar query response into rows. Cost
// comes from the Cost column, the bucket date from UsageDate or
// BillingMonth, and group keys from the requested dimension columns.
func parseQueryResult(result armcostmanagement.QueryResult, groupBy []string) []finops.CostRow {
	if result.Properties == nil || result.Properties.Rows == nil {
		return nil
	}
	columns := buildColumnMap(result.Properties.Columns)

	costIdx, hasCost := columns["Cost"]
	if !hasCost {
		return nil
	}
	dateIdx, hasDate := columns["UsageDate"]
	if !hasDate {
		dateIdx, hasDate = columns["BillingMonth"]
	}

	var rows []finops.CostRow
	for _, row := range result.Properties.Rows {
		if len(row) <= costIdx {
			continue
		}
		r := finops.CostRow{Cost: parseCost(row[costIdx])}
		if hasDate && len(row) > dateIdx {
			r.Period = parseDate(row[dateIdx])
		}
		for _, dim := range groupBy {
			r.Keys = append(r.Keys, getStringFromRow(row, columns, dim))
		}
		r.Currency = getStringFromRow(row, columns, "Currency")
		rows = append(rows, r)
	}
	return rows
}

func buildColumnMap(columns []*armcostmanagement.QueryColumn) map[string]int {
	m := make(map[string]int, len(columns))
	for i, col := range columns {
		if col.Name != nil {
			m[*col.Name] = i
		}
	}
	return m
}

func getStringFromRow(row []any, columns map[string]int, name string) string {
	if idx, ok := columns[name]; ok && len(row) > idx {
		value := fmt.Sprintf("%v", row[idx])
		if value != "" && value != "<nil>" {
			return value
		}
	}
	return ""
}

func parseCost(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

// parseDate normalizes the date column, which arrives as a numeric
// YYYYMMDD for daily buckets and an ISO timestamp for monthly ones.
func parseDate(value any) string {
	var raw string
	switch v := value.(type) {
	case int, int64:
		raw = fmt.Sprintf("%d", v)
	case float64:
		raw = fmt.Sprintf("%.0f", v)
	case string:
		raw = v
	default:
		raw = fmt.Sprintf("%v", v)
	}

	var digits strings.Builder
	for _, ch := range raw {
		if ch >= '0' && ch <= '9' {
			digits.WriteRune(ch)
		}
	}
	d := digits.String()
	if len(d) >= 8 {
		return fmt.Sprintf("%s-%s-%s", d[0:4], d[4:6], d[6:8])
	}
	return raw
}

func stringPtr(s string) *string { return &s }

func functionPtr(f armcostmanagement.FunctionType) *armcostmanagement.FunctionType { return &f }
