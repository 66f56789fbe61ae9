package gcp

import (
	"context"
	"fmt"
	"math"
	"strings"

	"cloud.google.com/go/billing/budgets/apiv1/budgetspb"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/genproto/googleapis/type/money"

	"github.com/cloudmesh/cloudmesh-go/finops"
)

// ListBudgets lists the billing account's budgets.
func (p *Provider) ListBudgets(ctx context.Context, req finops.ListBudgetsRequest) (*finops.BudgetList, error) {
	parent, err := p.billingAccount(req.BillingAccount, "ListBudgets")
	if err != nil {
		return nil, err
	}

	list := &finops.BudgetList{Provider: p.Name()}
	it := p.budgets.ListBudgets(ctx, &budgetspb.ListBudgetsRequest{Parent: parent})
	for {
		b, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list GCP budgets: %w", err)
		}
		list.Budgets = append(list.Budgets, budgetFromProto(p.Name(), b))
	}
	return list, nil
}

// CreateBudget creates a billing budget with threshold rules and optional
// Pub/Sub and monitoring channel notifications.
func (p *Provider) CreateBudget(ctx context.Context, req finops.CreateBudgetRequest) (*finops.Budget, error) {
	spec := req.GCP
	if spec == nil {
		return nil, fmt.Errorf("gcp budget spec is required")
	}
	parent, err := p.billingAccount(spec.BillingAccount, "CreateBudget")
	if err != nil {
		return nil, err
	}

	currency := spec.CurrencyCode
	if currency == "" {
		currency = "USD"
	}

	budget := &budgetspb.Budget{
		DisplayName: spec.DisplayName,
		Amount: &budgetspb.BudgetAmount{
			BudgetAmount: &budgetspb.BudgetAmount_SpecifiedAmount{
				SpecifiedAmount: moneyFromFloat(spec.Amount, currency),
			},
		},
	}
	for _, rule := range spec.ThresholdRules {
		budget.ThresholdRules = append(budget.ThresholdRules, thresholdRule(rule))
	}
	if len(spec.ThresholdRules) == 0 {
		// Sensible default tiers when the caller specifies none.
		for _, pct := range []float64{0.5, 0.9, 1.0} {
			budget.ThresholdRules = append(budget.ThresholdRules, &budgetspb.ThresholdRule{
				ThresholdPercent: pct,
				SpendBasis:       budgetspb.ThresholdRule_CURRENT_SPEND,
			})
		}
	}
	if len(spec.Projects) > 0 {
		filter := &budgetspb.Filter{}
		for _, project := range spec.Projects {
			if !strings.HasPrefix(project, "projects/") {
				project = "projects/" + project
			}
			filter.Projects = append(filter.Projects, project)
		}
		budget.BudgetFilter = filter
	}
	if spec.PubSubTopic != "" || len(spec.MonitoringNotificationChannels) > 0 {
		budget.NotificationsRule = &budgetspb.NotificationsRule{
			PubsubTopic:                    spec.PubSubTopic,
			MonitoringNotificationChannels: spec.MonitoringNotificationChannels,
		}
	}

	created, err := p.budgets.CreateBudget(ctx, &budgetspb.CreateBudgetRequest{
		Parent: parent,
		Budget: budget,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GCP budget %q: %w", spec.DisplayName, err)
	}

	p.log.Info("created budget", zap.String("name", created.GetName()), zap.Float64("amount", spec.Amount))
	result := budgetFromProto(p.Name(), created)
	return &result, nil
}

// GetBudgetAlerts reads a budget's threshold rules. GCP exposes the alert
// configuration, not a fired-alert history.
func (p *Provider) GetBudgetAlerts(ctx context.Context, req finops.BudgetAlertsRequest) (*finops.BudgetAlerts, error) {
	parent, err := p.billingAccount(req.BillingAccount, "GetBudgetAlerts")
	if err != nil {
		return nil, err
	}

	it := p.budgets.ListBudgets(ctx, &budgetspb.ListBudgetsRequest{Parent: parent})
	for {
		b, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list GCP budgets: %w", err)
		}
		if b.GetDisplayName() != req.BudgetName && b.GetName() != req.BudgetName {
			continue
		}

		alerts := &finops.BudgetAlerts{
			Provider:          p.Name(),
			BudgetName:        b.GetDisplayName(),
			ConfigurationOnly: true,
			Native:            b,
		}
		for _, rule := range b.GetThresholdRules() {
			alerts.Alerts = append(alerts.Alerts, map[string]any{
				"threshold_percent": rule.GetThresholdPercent(),
				"spend_basis":       rule.GetSpendBasis().String(),
			})
		}
		if nr := b.GetNotificationsRule(); nr != nil {
			if nr.GetPubsubTopic() != "" {
				alerts.Message = "notifications published to " + nr.GetPubsubTopic()
			}
		}
		return alerts, nil
	}
	return nil, fmt.Errorf("gcp budget %q not found", req.BudgetName)
}

func budgetFromProto(provider string, b *budgetspb.Budget) finops.Budget {
	budget := finops.Budget{
		Provider: provider,
		Name:     b.GetDisplayName(),
		Native:   b,
	}
	if amount := b.GetAmount().GetSpecifiedAmount(); amount != nil {
		budget.Amount = floatFromMoney(amount)
		budget.Currency = amount.GetCurrencyCode()
	}
	return budget
}

func thresholdRule(rule finops.GCPThresholdRule) *budgetspb.ThresholdRule {
	basis := budgetspb.ThresholdRule_CURRENT_SPEND
	if strings.EqualFold(rule.SpendBasis, "FORECASTED_SPEND") {
		basis = budgetspb.ThresholdRule_FORECASTED_SPEND
	}
	return &budgetspb.ThresholdRule{
		ThresholdPercent: rule.ThresholdPercent,
		SpendBasis:       basis,
	}
}

func moneyFromFloat(amount float64, currency string) *money.Money {
	units := math.Trunc(amount)
	return &money.Money{
		CurrencyCode: currency,
		Units:        int64(units),
		Nanos:        int32(math.Round((amount - units) * 1e9)),
	}
}

func floatFromMoney(m *money.Money) float64 {
	return float64(m.GetUnits()) + float64(m.GetNanos())/1e9
}
