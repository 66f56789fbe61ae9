package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/orgpolicy/apiv2/orgpolicypb"
	"cloud.google.com/go/resourcemanager/apiv3/resourcemanagerpb"
	"google.golang.org/api/iterator"

	"github.com/cloudmesh/cloudmesh-go/finops"
)

// GetGovernancePolicies collects project labels and organization policies.
// Labels are GCP's cost allocation mechanism. Sources fail independently.
func (p *Provider) GetGovernancePolicies(ctx context.Context, req finops.GovernanceRequest) (*finops.GovernancePolicies, error) {
	gp := &finops.GovernancePolicies{Provider: p.Name()}

	labels, labelsErr := p.projectLabels(ctx)
	if labelsErr != nil {
		gp.CostAllocationTags = finops.SourceResult{Error: labelsErr.Error()}
	} else {
		gp.CostAllocationTags = finops.SourceResult{Items: labels}
	}

	policies, policiesErr := p.organizationPolicies(ctx)
	if policiesErr != nil {
		gp.CostPolicies = finops.SourceResult{Error: policiesErr.Error()}
	} else {
		gp.CostPolicies = finops.SourceResult{Items: policies}
	}

	status := "needs_attention"
	if labelsErr == nil && len(labels) > 0 && policiesErr == nil {
		status = "good"
	}
	gp.Compliance = finops.ComplianceStatus{
		Status:    status,
		Heuristic: true,
		Signals: map[string]any{
			"project_labels":          len(labels),
			"org_policies_accessible": policiesErr == nil,
		},
	}
	return gp, nil
}

// projectLabels reads the project's labels.
func (p *Provider) projectLabels(ctx context.Context) (map[string]string, error) {
	project, err := p.projects.GetProject(ctx, &resourcemanagerpb.GetProjectRequest{
		Name: "projects/" + p.opts.ProjectID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get GCP project %s: %w", p.opts.ProjectID, err)
	}
	return project.GetLabels(), nil
}

// organizationPolicies lists org policies effective on the project.
func (p *Provider) organizationPolicies(ctx context.Context) ([]map[string]any, error) {
	var policies []map[string]any
	it := p.orgPolicy.ListPolicies(ctx, &orgpolicypb.ListPoliciesRequest{
		Parent: "projects/" + p.opts.ProjectID,
	})
	for {
		policy, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list GCP org policies: %w", err)
		}
		entry := map[string]any{"name": policy.GetName()}
		if spec := policy.GetSpec(); spec != nil {
			entry["rules"] = len(spec.GetRules())
		}
		policies = append(policies, entry)
	}
	return policies, nil
}
