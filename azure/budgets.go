package azure

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/consumption/armconsumption"
	"go.uber.org/zap"

	"github.com/cloudmesh/cloudmesh-go/finops"
)

// ListBudgets pages through all budgets at the scope.
func (p *Provider) ListBudgets(ctx context.Context, req finops.ListBudgetsRequest) (*finops.BudgetList, error) {
	scope := p.scopeOrDefault(req.Scope)
	list := &finops.BudgetList{Provider: p.Name()}

	pager := p.budgets.NewListPager(scope, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list Azure budgets for scope %s: %w", scope, err)
		}
		for _, b := range page.Value {
			if b == nil {
				continue
			}
			budget := finops.Budget{Provider: p.Name(), Scope: scope, Native: b}
			if b.Name != nil {
				budget.Name = *b.Name
			}
			if b.Properties != nil {
				if b.Properties.Amount != nil {
					budget.Amount = *b.Properties.Amount
				}
				if b.Properties.TimeGrain != nil {
					budget.TimeGrain = string(*b.Properties.TimeGrain)
				}
				if b.Properties.CurrentSpend != nil && b.Properties.CurrentSpend.Unit != nil {
					budget.Currency = *b.Properties.CurrentSpend.Unit
				}
			}
			list.Budgets = append(list.Budgets, budget)
		}
	}
	return list, nil
}

// CreateBudget creates or replaces a consumption budget at the scope.
func (p *Provider) CreateBudget(ctx context.Context, req finops.CreateBudgetRequest) (*finops.Budget, error) {
	spec := req.Azure
	if spec == nil {
		return nil, fmt.Errorf("azure budget spec is required")
	}
	scope := p.scopeOrDefault(spec.Scope)

	timeGrain := armconsumption.TimeGrainTypeMonthly
	if spec.TimeGrain != "" {
		timeGrain = armconsumption.TimeGrainType(spec.TimeGrain)
	}
	start, end, err := budgetTimePeriod(spec.StartDate, spec.EndDate)
	if err != nil {
		return nil, err
	}

	category := armconsumption.CategoryTypeCost
	props := &armconsumption.BudgetProperties{
		Amount:    &spec.Amount,
		Category:  &category,
		TimeGrain: &timeGrain,
		TimePeriod: &armconsumption.BudgetTimePeriod{
			StartDate: &start,
			EndDate:   &end,
		},
	}
	if len(spec.Notifications) > 0 {
		props.Notifications = make(map[string]*armconsumption.Notification, len(spec.Notifications))
		for i, n := range spec.Notifications {
			props.Notifications[fmt.Sprintf("notification%d", i+1)] = budgetNotification(n)
		}
	}

	_, err = p.budgets.CreateOrUpdate(ctx, scope, spec.BudgetName, armconsumption.Budget{Properties: props}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure budget %q: %w", spec.BudgetName, err)
	}

	p.log.Info("created budget", zap.String("name", spec.BudgetName), zap.Float64("amount", spec.Amount))
	return &finops.Budget{
		Provider:  p.Name(),
		Name:      spec.BudgetName,
		Amount:    spec.Amount,
		TimeGrain: string(timeGrain),
		Scope:     scope,
	}, nil
}

// GetBudgetAlerts reads a budget's notification rules and current spend.
func (p *Provider) GetBudgetAlerts(ctx context.Context, req finops.BudgetAlertsRequest) (*finops.BudgetAlerts, error) {
	scope := p.scopeOrDefault(req.Scope)

	resp, err := p.budgets.Get(ctx, scope, req.BudgetName, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get Azure budget %q: %w", req.BudgetName, err)
	}

	alerts := &finops.BudgetAlerts{
		Provider:          p.Name(),
		BudgetName:        req.BudgetName,
		ConfigurationOnly: true,
		Native:            resp.Budget,
	}
	if resp.Properties == nil {
		return alerts, nil
	}
	for name, n := range resp.Properties.Notifications {
		if n == nil {
			continue
		}
		entry := map[string]any{"name": name}
		if n.Enabled != nil {
			entry["enabled"] = *n.Enabled
		}
		if n.Operator != nil {
			entry["operator"] = string(*n.Operator)
		}
		if n.Threshold != nil {
			entry["threshold"] = *n.Threshold
		}
		if n.ThresholdType != nil {
			entry["threshold_type"] = string(*n.ThresholdType)
		}
		alerts.Alerts = append(alerts.Alerts, entry)
	}
	if resp.Properties.CurrentSpend != nil && resp.Properties.CurrentSpend.Amount != nil {
		alerts.Message = fmt.Sprintf("current spend: %.2f", *resp.Properties.CurrentSpend.Amount)
	}
	return alerts, nil
}

// budgetTimePeriod defaults to the current month through one year out.
// Azure rejects budget start dates that are not the first of a month.
func budgetTimePeriod(startDate, endDate string) (time.Time, time.Time, error) {
	var start time.Time
	if startDate == "" {
		now := time.Now().UTC()
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	} else {
		var err error
		start, err = time.Parse("2006-01-02", startDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid budget start date %q: %w", startDate, err)
		}
	}

	end := start.AddDate(1, 0, 0)
	if endDate != "" {
		var err error
		end, err = time.Parse("2006-01-02", endDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid budget end date %q: %w", endDate, err)
		}
	}
	return start, end, nil
}

func budgetNotification(n finops.AzureBudgetNotification) *armconsumption.Notification {
	enabled := true
	operator := armconsumption.OperatorTypeGreaterThan
	if n.Operator != "" {
		operator = armconsumption.OperatorType(n.Operator)
	}
	threshold := n.Threshold
	locale := armconsumption.CultureCodeEnUs
	if n.Locale != "" {
		locale = armconsumption.CultureCode(n.Locale)
	}

	notification := &armconsumption.Notification{
		Enabled:   &enabled,
		Operator:  &operator,
		Threshold: &threshold,
		Locale:    &locale,
	}
	if n.ThresholdType != "" {
		t := armconsumption.ThresholdType(n.ThresholdType)
		notification.ThresholdType = &t
	}
	for _, email := range n.ContactEmails {
		e := email
		notification.ContactEmails = append(notification.ContactEmails, &e)
	}
	for _, role := range n.ContactRoles {
		r := role
		notification.ContactRoles = append(notification.ContactRoles, &r)
	}
	for _, group := range n.ContactGroups {
		g := group
		notification.ContactGroups = append(notification.ContactGroups, &g)
	}
	return notification
}
