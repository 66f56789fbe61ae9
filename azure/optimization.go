package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/advisor/armadvisor"

	"github.com/cloudmesh/cloudmesh-go/finops"
)

// GetOptimizationRecommendations combines Advisor cost recommendations
// with reservation purchase advice. Each source fails independently.
func (p *Provider) GetOptimizationRecommendations(ctx context.Context, req finops.OptimizationRequest) (*finops.OptimizationRecommendations, error) {
	result := &finops.OptimizationRecommendations{
		Provider: p.Name(),
		Sources:  make(map[string]finops.SourceResult),
	}

	if recs, err := p.GetAdvisorRecommendations(ctx); err != nil {
		result.Sources["advisor"] = finops.SourceResult{Error: err.Error()}
	} else {
		result.Sources["advisor"] = finops.SourceResult{Items: recs}
	}

	if recs, err := p.GetReservationRecommendations(ctx, finops.ReservationRecommendationsRequest{
		Scope:  req.Scope,
		Filter: req.Filter,
	}); err != nil {
		result.Sources["reservations"] = finops.SourceResult{Error: err.Error()}
	} else {
		result.Sources["reservations"] = finops.SourceResult{Items: recs.Recommendations}
	}

	return result, nil
}

// GetAdvisorRecommendations lists Advisor findings in the Cost category.
// Azure-specific; not part of the portable surface.
func (p *Provider) GetAdvisorRecommendations(ctx context.Context) ([]finops.Recommendation, error) {
	filter := "Category eq 'Cost'"
	var recs []finops.Recommendation

	pager := p.advisor.NewListPager(&armadvisor.RecommendationsClientListOptions{Filter: &filter})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list Azure advisor recommendations: %w", err)
		}
		for _, item := range page.Value {
			if item == nil || item.Properties == nil {
				continue
			}
			r := finops.Recommendation{Source: "advisor", Native: item}
			if item.Properties.ImpactedValue != nil {
				r.Name = *item.Properties.ImpactedValue
			}
			if item.Properties.ShortDescription != nil && item.Properties.ShortDescription.Solution != nil {
				r.Description = *item.Properties.ShortDescription.Solution
			}
			// Advisor reports impact tiers, not dollar figures.
			if item.Properties.Impact != nil {
				switch *item.Properties.Impact {
				case armadvisor.ImpactHigh:
					r.Priority = finops.PriorityHigh
				case armadvisor.ImpactMedium:
					r.Priority = finops.PriorityMedium
				default:
					r.Priority = finops.PriorityLow
				}
			} else {
				r.Priority = finops.PriorityLow
			}
			recs = append(recs, r)
		}
	}
	return recs, nil
}
