package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/configservice"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	orgtypes "github.com/aws/aws-sdk-go-v2/service/organizations/types"

	"github.com/cloudmesh/cloudmesh-go/finops"
)

// GetGovernancePolicies collects cost allocation tags, organization
// policies and compliance signals. Sources fail independently.
func (p *Provider) GetGovernancePolicies(ctx context.Context, req finops.GovernanceRequest) (*finops.GovernancePolicies, error) {
	gp := &finops.GovernancePolicies{Provider: p.Name()}

	tags, err := p.ce.ListCostAllocationTags(ctx, &costexplorer.ListCostAllocationTagsInput{
		Status: cetypes.CostAllocationTagStatusActive,
	})
	if err != nil {
		gp.CostAllocationTags = finops.SourceResult{Error: fmt.Sprintf("failed to list cost allocation tags: %v", err)}
	} else {
		var keys []string
		for _, tag := range tags.CostAllocationTags {
			if tag.TagKey != nil {
				keys = append(keys, *tag.TagKey)
			}
		}
		gp.CostAllocationTags = finops.SourceResult{Items: keys}
	}

	policies, err := p.orgs.ListPolicies(ctx, &organizations.ListPoliciesInput{
		Filter: orgtypes.PolicyTypeServiceControlPolicy,
	})
	if err != nil {
		gp.CostPolicies = finops.SourceResult{Error: fmt.Sprintf("failed to list organization policies: %v", err)}
	} else {
		var summaries []map[string]any
		for _, pol := range policies.Policies {
			entry := map[string]any{"type": string(pol.Type)}
			if pol.Id != nil {
				entry["id"] = *pol.Id
			}
			if pol.Name != nil {
				entry["name"] = *pol.Name
			}
			if pol.Description != nil {
				entry["description"] = *pol.Description
			}
			summaries = append(summaries, entry)
		}
		gp.CostPolicies = finops.SourceResult{Items: summaries}
	}

	gp.Compliance = p.complianceStatus(ctx, req.ConfigRuleName, gp)
	return gp, nil
}

// complianceStatus checks a Config rule when one is named, and otherwise
// infers a heuristic status from the presence of tags and policies.
func (p *Provider) complianceStatus(ctx context.Context, ruleName string, gp *finops.GovernancePolicies) finops.ComplianceStatus {
	if ruleName != "" {
		out, err := p.cfgsvc.DescribeComplianceByConfigRule(ctx, &configservice.DescribeComplianceByConfigRuleInput{
			ConfigRuleNames: []string{ruleName},
		})
		if err != nil {
			return finops.ComplianceStatus{
				Status: "unknown",
				Error:  fmt.Sprintf("failed to check config rule %q: %v", ruleName, err),
			}
		}
		for _, rule := range out.ComplianceByConfigRules {
			if rule.Compliance != nil {
				return finops.ComplianceStatus{
					Status:  string(rule.Compliance.ComplianceType),
					Signals: map[string]any{"config_rule": ruleName},
				}
			}
		}
		return finops.ComplianceStatus{Status: "unknown", Signals: map[string]any{"config_rule": ruleName}}
	}

	hasTags := gp.CostAllocationTags.Error == ""
	hasPolicies := gp.CostPolicies.Error == ""
	status := "needs_attention"
	if hasTags && hasPolicies {
		status = "good"
	}
	return finops.ComplianceStatus{
		Status:    status,
		Heuristic: true,
		Signals: map[string]any{
			"cost_allocation_tags_accessible":  hasTags,
			"organization_policies_accessible": hasPolicies,
		},
	}
}
