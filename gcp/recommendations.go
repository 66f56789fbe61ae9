package gcp

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/recommender/apiv1/recommenderpb"
	"google.golang.org/api/iterator"

	"github.com/cloudmesh/cloudmesh-go/finops"
)

// Compute recommenders queried for optimization advice.
const (
	machineTypeRecommender  = "google.compute.instance.MachineTypeRecommender"
	idleResourceRecommender = "google.compute.instance.IdleResourceRecommender"
	commitmentRecommender   = "google.compute.commitment.UsageCommitmentRecommender"
)

// GetReservationCost sums committed use discount charges per day from the
// billing export.
func (p *Provider) GetReservationCost(ctx context.Context, req finops.ReservationCostRequest) (*finops.ReservationCost, error) {
	table, err := p.exportTable("GetReservationCost")
	if err != nil {
		return nil, err
	}
	period := finops.DefaultPeriod(req.StartDate, req.EndDate)

	rows, err := p.runCostQuery(ctx, buildCommitmentCostSQL(table), period, 0, nil)
	if err != nil {
		return nil, err
	}
	return &finops.ReservationCost{Provider: p.Name(), Period: period, Rows: rows}, nil
}

// GetReservationRecommendations aggregates the compute recommenders into
// one savings-ranked list. A failing recommender is recorded without
// discarding the others.
func (p *Provider) GetReservationRecommendations(ctx context.Context, req finops.ReservationRecommendationsRequest) (*finops.ReservationRecommendations, error) {
	location := "global"
	if loc, ok := req.Extra["location"].(string); ok && loc != "" {
		location = loc
	}

	result := &finops.ReservationRecommendations{Provider: p.Name()}
	for _, recommenderID := range []string{commitmentRecommender, machineTypeRecommender, idleResourceRecommender} {
		recs, err := p.listRecommendations(ctx, recommenderID, location)
		if err != nil {
			if result.Errors == nil {
				result.Errors = make(map[string]string)
			}
			result.Errors[recommenderID] = err.Error()
			continue
		}
		result.Recommendations = append(result.Recommendations, recs...)
	}
	sort.SliceStable(result.Recommendations, func(i, j int) bool {
		return result.Recommendations[i].MonthlySavings > result.Recommendations[j].MonthlySavings
	})
	return result, nil
}

// GetOptimizationRecommendations queries the machine type, idle resource
// and commitment recommenders. Each source fails independently.
func (p *Provider) GetOptimizationRecommendations(ctx context.Context, req finops.OptimizationRequest) (*finops.OptimizationRecommendations, error) {
	location := "global"
	if loc, ok := req.Extra["location"].(string); ok && loc != "" {
		location = loc
	}

	result := &finops.OptimizationRecommendations{
		Provider: p.Name(),
		Sources:  make(map[string]finops.SourceResult),
	}
	sources := map[string]string{
		"machine_type":   machineTypeRecommender,
		"idle_resources": idleResourceRecommender,
		"commitments":    commitmentRecommender,
	}
	for name, recommenderID := range sources {
		recs, err := p.listRecommendations(ctx, recommenderID, location)
		if err != nil {
			result.Sources[name] = finops.SourceResult{Error: err.Error()}
			continue
		}
		result.Sources[name] = finops.SourceResult{Items: recs}
	}
	return result, nil
}

// GetMachineTypeRecommendations lists machine type resize advice.
// GCP-specific; not part of the portable surface.
func (p *Provider) GetMachineTypeRecommendations(ctx context.Context, location string) ([]finops.Recommendation, error) {
	if location == "" {
		location = "global"
	}
	return p.listRecommendations(ctx, machineTypeRecommender, location)
}

// GetIdleResourceRecommendations lists idle compute instance advice.
// GCP-specific; not part of the portable surface.
func (p *Provider) GetIdleResourceRecommendations(ctx context.Context, location string) ([]finops.Recommendation, error) {
	if location == "" {
		location = "global"
	}
	return p.listRecommendations(ctx, idleResourceRecommender, location)
}

// GetCommittedUseRecommendations lists committed use discount purchase
// advice. GCP-specific; not part of the portable surface.
func (p *Provider) GetCommittedUseRecommendations(ctx context.Context, location string) ([]finops.Recommendation, error) {
	if location == "" {
		location = "global"
	}
	return p.listRecommendations(ctx, commitmentRecommender, location)
}

// GetSustainedUseInsights sums sustained use discount credits per day from
// the billing export. GCP-specific; not part of the portable surface.
func (p *Provider) GetSustainedUseInsights(ctx context.Context, startDate, endDate string) (*finops.CostData, error) {
	table, err := p.exportTable("GetSustainedUseInsights")
	if err != nil {
		return nil, err
	}
	period := finops.DefaultPeriod(startDate, endDate)

	rows, err := p.runCostQuery(ctx, buildSustainedUseSQL(table), period, 0, nil)
	if err != nil {
		return nil, err
	}
	return &finops.CostData{
		Provider:    p.Name(),
		Period:      period,
		Granularity: "DAILY",
		Rows:        rows,
	}, nil
}

// listRecommendations pages one recommender and normalizes its items.
func (p *Provider) listRecommendations(ctx context.Context, recommenderID, location string) ([]finops.Recommendation, error) {
	parent := fmt.Sprintf("projects/%s/locations/%s/recommenders/%s",
		p.opts.ProjectID, location, recommenderID)

	var recs []finops.Recommendation
	it := p.recommender.ListRecommendations(ctx, &recommenderpb.ListRecommendationsRequest{Parent: parent})
	for {
		rec, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %s recommendations: %w", recommenderID, err)
		}

		savings := monthlySavings(rec)
		r := finops.Recommendation{
			Source:         recommenderID,
			Name:           rec.GetName(),
			Description:    rec.GetDescription(),
			MonthlySavings: savings,
			Priority:       finops.PriorityForMonthlySavings(savings),
			Native:         rec,
		}
		if cost := rec.GetPrimaryImpact().GetCostProjection().GetCost(); cost != nil {
			r.Currency = cost.GetCurrencyCode()
		}
		recs = append(recs, r)
	}
	return recs, nil
}

// monthlySavings normalizes a cost projection to a monthly figure. The
// recommender reports negative cost over the projection duration for
// savings.
func monthlySavings(rec *recommenderpb.Recommendation) float64 {
	projection := rec.GetPrimaryImpact().GetCostProjection()
	if projection == nil || projection.GetCost() == nil {
		return 0
	}
	cost := floatFromMoney(projection.GetCost())
	if cost >= 0 {
		return 0
	}
	seconds := projection.GetDuration().GetSeconds()
	if seconds <= 0 {
		return -cost
	}
	const monthSeconds = 30 * 24 * 3600
	return -cost * monthSeconds / float64(seconds)
}
