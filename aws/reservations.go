package aws

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer/types"

	"github.com/cloudmesh/cloudmesh-go/finops"
)

// reservationServices are the services queried for purchase recommendations.
var reservationServices = []string{
	"Amazon Elastic Compute Cloud - Compute",
	"Amazon Relational Database Service",
	"Amazon Redshift",
	"Amazon ElastiCache",
	"Amazon OpenSearch Service",
}

// GetReservationCost returns reserved instance utilization per period.
func (p *Provider) GetReservationCost(ctx context.Context, req finops.ReservationCostRequest) (*finops.ReservationCost, error) {
	period := finops.DefaultPeriod(req.StartDate, req.EndDate)
	granularity := req.Granularity
	if granularity == "" {
		granularity = "MONTHLY"
	}

	out, err := p.ce.GetReservationUtilization(ctx, &costexplorer.GetReservationUtilizationInput{
		TimePeriod: &types.DateInterval{
			Start: aws.String(period.Start),
			End:   aws.String(period.End),
		},
		Granularity: types.Granularity(strings.ToUpper(granularity)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get AWS reservation utilization: %w", err)
	}

	rc := &finops.ReservationCost{Provider: p.Name(), Period: period, Native: out}
	for _, u := range out.UtilizationsByTime {
		row := finops.CostRow{Metrics: map[string]float64{}}
		if u.TimePeriod != nil && u.TimePeriod.Start != nil {
			row.Period = *u.TimePeriod.Start
		}
		if u.Total != nil {
			row.Cost = parseAmount(u.Total.AmortizedRecurringFee)
			row.Metrics["utilization_percentage"] = parseAmount(u.Total.UtilizationPercentage)
			row.Metrics["purchased_hours"] = parseAmount(u.Total.PurchasedHours)
			row.Metrics["total_actual_hours"] = parseAmount(u.Total.TotalActualHours)
			row.Metrics["unused_hours"] = parseAmount(u.Total.UnusedHours)
			row.Metrics["net_ri_savings"] = parseAmount(u.Total.NetRISavings)
		}
		rc.Rows = append(rc.Rows, row)
	}
	return rc, nil
}

// GetReservationRecommendations collects purchase recommendations across
// the reservable services and ranks them by estimated savings. A failure
// for one service is recorded without discarding the others.
func (p *Provider) GetReservationRecommendations(ctx context.Context, req finops.ReservationRecommendationsRequest) (*finops.ReservationRecommendations, error) {
	lookback := req.LookbackPeriod
	if lookback == "" {
		lookback = "THIRTY_DAYS"
	}
	term := req.Term
	if term == "" {
		term = "ONE_YEAR"
	}
	payment := req.PaymentOption
	if payment == "" {
		payment = "NO_UPFRONT"
	}

	result := &finops.ReservationRecommendations{Provider: p.Name()}
	for _, service := range reservationServices {
		recs, err := p.GetReservationPurchaseRecommendations(ctx, service, lookback, term, payment)
		if err != nil {
			if result.Errors == nil {
				result.Errors = make(map[string]string)
			}
			result.Errors[service] = err.Error()
			continue
		}
		result.Recommendations = append(result.Recommendations, recs...)
	}
	return result, nil
}

// GetReservationPurchaseRecommendations queries purchase recommendations for
// one service. AWS-specific; not part of the portable surface.
func (p *Provider) GetReservationPurchaseRecommendations(ctx context.Context, service, lookback, term, payment string) ([]finops.Recommendation, error) {
	out, err := p.ce.GetReservationPurchaseRecommendation(ctx, &costexplorer.GetReservationPurchaseRecommendationInput{
		Service:              aws.String(service),
		LookbackPeriodInDays: types.LookbackPeriodInDays(lookback),
		TermInYears:          types.TermInYears(term),
		PaymentOption:        types.PaymentOption(payment),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get AWS reservation recommendations for %s: %w", service, err)
	}

	var recs []finops.Recommendation
	for _, rec := range out.Recommendations {
		for _, detail := range rec.RecommendationDetails {
			savings := parseAmount(detail.EstimatedMonthlySavingsAmount)
			r := finops.Recommendation{
				Source:         service,
				Name:           instanceName(detail.InstanceDetails),
				MonthlySavings: savings,
				Priority:       finops.PriorityForMonthlySavings(savings),
				Native:         detail,
			}
			if detail.CurrencyCode != nil {
				r.Currency = *detail.CurrencyCode
			}
			if detail.RecommendedNumberOfInstancesToPurchase != nil {
				r.Description = fmt.Sprintf("purchase %s reserved instances", *detail.RecommendedNumberOfInstancesToPurchase)
			}
			recs = append(recs, r)
		}
	}
	return recs, nil
}

// GetReservationCoverage reports how much eligible usage the account's
// reservations cover. AWS-specific; not part of the portable surface.
func (p *Provider) GetReservationCoverage(ctx context.Context, startDate, endDate, granularity string) (*finops.ReservationCost, error) {
	period := finops.DefaultPeriod(startDate, endDate)
	if granularity == "" {
		granularity = "MONTHLY"
	}

	out, err := p.ce.GetReservationCoverage(ctx, &costexplorer.GetReservationCoverageInput{
		TimePeriod: &types.DateInterval{
			Start: aws.String(period.Start),
			End:   aws.String(period.End),
		},
		Granularity: types.Granularity(strings.ToUpper(granularity)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get AWS reservation coverage: %w", err)
	}

	rc := &finops.ReservationCost{Provider: p.Name(), Period: period, Native: out}
	for _, c := range out.CoveragesByTime {
		row := finops.CostRow{Metrics: map[string]float64{}}
		if c.TimePeriod != nil && c.TimePeriod.Start != nil {
			row.Period = *c.TimePeriod.Start
		}
		if c.Total != nil && c.Total.CoverageHours != nil {
			row.Metrics["coverage_hours_percentage"] = parseAmount(c.Total.CoverageHours.CoverageHoursPercentage)
			row.Metrics["on_demand_hours"] = parseAmount(c.Total.CoverageHours.OnDemandHours)
			row.Metrics["reserved_hours"] = parseAmount(c.Total.CoverageHours.ReservedHours)
		}
		rc.Rows = append(rc.Rows, row)
	}
	return rc, nil
}

func instanceName(details *types.InstanceDetails) string {
	if details == nil {
		return "reserved instance"
	}
	switch {
	case details.EC2InstanceDetails != nil && details.EC2InstanceDetails.InstanceType != nil:
		return *details.EC2InstanceDetails.InstanceType
	case details.RDSInstanceDetails != nil && details.RDSInstanceDetails.InstanceType != nil:
		return *details.RDSInstanceDetails.InstanceType
	default:
		return "reserved instance"
	}
}

func parseAmount(s *string) float64 {
	if s == nil {
		return 0
	}
	v, _ := strconv.ParseFloat(*s, 64)
	return v
}
