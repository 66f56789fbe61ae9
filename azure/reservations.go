package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/consumption/armconsumption"

	"github.com/cloudmesh/cloudmesh-go/finops"
)

// GetReservationCost returns daily reservation utilization summaries for
// the subscription.
func (p *Provider) GetReservationCost(ctx context.Context, req finops.ReservationCostRequest) (*finops.ReservationCost, error) {
	period := finops.DefaultPeriod(req.StartDate, req.EndDate)
	grain := armconsumption.DatagrainDailyGrain
	if normalizeGranularity(req.Granularity) == "Monthly" {
		grain = armconsumption.DatagrainMonthlyGrain
	}

	rc := &finops.ReservationCost{Provider: p.Name(), Period: period}
	pager := p.resSummaries.NewListPager(p.defaultScope, grain, &armconsumption.ReservationsSummariesClientListOptions{
		StartDate: &period.Start,
		EndDate:   &period.End,
	})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list Azure reservation summaries: %w", err)
		}
		for _, summary := range page.Value {
			if summary == nil || summary.Properties == nil {
				continue
			}
			props := summary.Properties
			row := finops.CostRow{Metrics: map[string]float64{}}
			if props.UsageDate != nil {
				row.Period = props.UsageDate.Format("2006-01-02")
			}
			if props.SKUName != nil {
				row.Keys = []string{*props.SKUName}
			}
			if props.AvgUtilizationPercentage != nil {
				row.Metrics["avg_utilization_percentage"] = *props.AvgUtilizationPercentage
			}
			if props.ReservedHours != nil {
				row.Metrics["reserved_hours"] = *props.ReservedHours
			}
			if props.UsedHours != nil {
				row.Metrics["used_hours"] = *props.UsedHours
			}
			rc.Rows = append(rc.Rows, row)
		}
	}
	return rc, nil
}

// GetReservationRecommendations lists reservation purchase advice at the
// scope, ranked by estimated monthly savings.
func (p *Provider) GetReservationRecommendations(ctx context.Context, req finops.ReservationRecommendationsRequest) (*finops.ReservationRecommendations, error) {
	scope := p.scopeOrDefault(req.Scope)

	opts := &armconsumption.ReservationRecommendationsClientListOptions{}
	if req.Filter != "" {
		opts.Filter = &req.Filter
	}

	result := &finops.ReservationRecommendations{Provider: p.Name()}
	pager := p.reservations.NewListPager(scope, opts)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list Azure reservation recommendations: %w", err)
		}
		for _, item := range page.Value {
			if rec, ok := reservationRecommendation(item); ok {
				result.Recommendations = append(result.Recommendations, rec)
			}
		}
	}
	return result, nil
}

// GetReservedInstanceRecommendations lists reservation purchase advice for
// one scope with a raw OData filter. Azure-specific; not part of the
// portable surface.
func (p *Provider) GetReservedInstanceRecommendations(ctx context.Context, scope, filter string) ([]finops.Recommendation, error) {
	result, err := p.GetReservationRecommendations(ctx, finops.ReservationRecommendationsRequest{
		Scope:  scope,
		Filter: filter,
	})
	if err != nil {
		return nil, err
	}
	return result.Recommendations, nil
}

// reservationRecommendation maps either the legacy or modern API shape.
// Net savings are reported over the full term, so they are normalized to
// a monthly figure before ranking.
func reservationRecommendation(item armconsumption.ReservationRecommendationClassification) (finops.Recommendation, bool) {
	switch rec := item.(type) {
	case *armconsumption.LegacyReservationRecommendation:
		if rec.Properties == nil {
			return finops.Recommendation{}, false
		}
		r := finops.Recommendation{Source: "legacy_reservation", Native: rec}
		if rec.Properties.ResourceType != nil {
			r.Name = *rec.Properties.ResourceType
		}
		var term string
		if rec.Properties.Term != nil {
			term = *rec.Properties.Term
		}
		if rec.Properties.NetSavings != nil {
			r.MonthlySavings = *rec.Properties.NetSavings / float64(termMonths(term))
		}
		if rec.Properties.RecommendedQuantity != nil {
			r.Description = fmt.Sprintf("purchase %.0f reserved instances for term %s", *rec.Properties.RecommendedQuantity, term)
		}
		r.Priority = finops.PriorityForMonthlySavings(r.MonthlySavings)
		return r, true
	case *armconsumption.ModernReservationRecommendation:
		if rec.Properties == nil {
			return finops.Recommendation{}, false
		}
		r := finops.Recommendation{Source: "modern_reservation", Native: rec}
		if rec.Properties.SKUName != nil {
			r.Name = *rec.Properties.SKUName
		}
		var term string
		if rec.Properties.Term != nil {
			term = *rec.Properties.Term
		}
		if rec.Properties.NetSavings != nil {
			r.MonthlySavings = *rec.Properties.NetSavings / float64(termMonths(term))
		}
		r.Priority = finops.PriorityForMonthlySavings(r.MonthlySavings)
		return r, true
	default:
		return finops.Recommendation{}, false
	}
}

// termMonths converts an ISO 8601 reservation term to months.
func termMonths(term string) int {
	switch term {
	case "P3Y":
		return 36
	case "P1Y", "":
		return 12
	default:
		return 12
	}
}

// GetReservationOrderDetails lists the subscription's reservation orders.
// Azure-specific; not part of the portable surface.
func (p *Provider) GetReservationOrderDetails(ctx context.Context) ([]map[string]any, error) {
	var orders []map[string]any
	pager := p.resOrders.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list Azure reservation orders: %w", err)
		}
		for _, order := range page.Value {
			if order == nil {
				continue
			}
			entry := map[string]any{}
			if order.ID != nil {
				entry["id"] = *order.ID
			}
			if order.Name != nil {
				entry["name"] = *order.Name
			}
			if order.Properties != nil {
				if order.Properties.DisplayName != nil {
					entry["display_name"] = *order.Properties.DisplayName
				}
				if order.Properties.Term != nil {
					entry["term"] = *order.Properties.Term
				}
				if order.Properties.OriginalQuantity != nil {
					entry["original_quantity"] = *order.Properties.OriginalQuantity
				}
			}
			orders = append(orders, entry)
		}
	}
	return orders, nil
}
