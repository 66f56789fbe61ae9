package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/policyinsights/armpolicyinsights"

	"github.com/cloudmesh/cloudmesh-go/finops"
)

// GetGovernancePolicies collects subscription tags and policy compliance
// state. Sources fail independently.
func (p *Provider) GetGovernancePolicies(ctx context.Context, req finops.GovernanceRequest) (*finops.GovernancePolicies, error) {
	gp := &finops.GovernancePolicies{Provider: p.Name()}

	if tags, err := p.subscriptionTags(ctx); err != nil {
		gp.CostAllocationTags = finops.SourceResult{Error: err.Error()}
	} else {
		gp.CostAllocationTags = finops.SourceResult{Items: tags}
	}

	compliant, nonCompliant, states, err := p.policyComplianceSummary(ctx)
	if err != nil {
		gp.CostPolicies = finops.SourceResult{Error: err.Error()}
		gp.Compliance = finops.ComplianceStatus{Status: "unknown", Error: err.Error()}
		return gp, nil
	}
	gp.CostPolicies = finops.SourceResult{Items: states}

	status := "good"
	if nonCompliant > 0 {
		status = "needs_attention"
	}
	gp.Compliance = finops.ComplianceStatus{
		Status: status,
		Signals: map[string]any{
			"compliant_states":     compliant,
			"non_compliant_states": nonCompliant,
		},
	}
	return gp, nil
}

// subscriptionTags lists tag names in use with their resource counts.
func (p *Provider) subscriptionTags(ctx context.Context) ([]map[string]any, error) {
	var tags []map[string]any
	pager := p.tags.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list Azure tags: %w", err)
		}
		for _, tag := range page.Value {
			if tag == nil || tag.TagName == nil {
				continue
			}
			entry := map[string]any{"tag_name": *tag.TagName}
			if tag.Count != nil && tag.Count.Value != nil {
				entry["count"] = *tag.Count.Value
			}
			tags = append(tags, entry)
		}
	}
	return tags, nil
}

// policyComplianceSummary counts compliant and non-compliant policy states
// across the subscription.
func (p *Provider) policyComplianceSummary(ctx context.Context) (compliant, nonCompliant int, states []map[string]any, err error) {
	pager := p.policyStates.NewListQueryResultsForSubscriptionPager(
		armpolicyinsights.PolicyStatesResourceLatest, p.subscriptionID, nil)
	for pager.More() {
		page, pageErr := pager.NextPage(ctx)
		if pageErr != nil {
			return 0, 0, nil, fmt.Errorf("failed to query Azure policy states: %w", pageErr)
		}
		for _, state := range page.Value {
			if state == nil {
				continue
			}
			entry := map[string]any{}
			if state.PolicyAssignmentName != nil {
				entry["policy_assignment"] = *state.PolicyAssignmentName
			}
			if state.ComplianceState != nil {
				entry["compliance_state"] = *state.ComplianceState
			}
			if state.IsCompliant != nil {
				if *state.IsCompliant {
					compliant++
				} else {
					nonCompliant++
				}
			}
			states = append(states, entry)
		}
	}
	return compliant, nonCompliant, states, nil
}
