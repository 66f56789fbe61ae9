package aws

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/budgets"
	"github.com/aws/aws-sdk-go-v2/service/budgets/types"
	"go.uber.org/zap"

	"github.com/cloudmesh/cloudmesh-go/finops"
)

// ListBudgets returns the account's budgets with pagination passthrough.
func (p *Provider) ListBudgets(ctx context.Context, req finops.ListBudgetsRequest) (*finops.BudgetList, error) {
	accountID, err := p.resolveAccountID(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}

	input := &budgets.DescribeBudgetsInput{AccountId: aws.String(accountID)}
	if req.MaxResults > 0 {
		input.MaxResults = aws.Int32(req.MaxResults)
	}
	if req.NextToken != "" {
		input.NextToken = aws.String(req.NextToken)
	}

	out, err := p.budgets.DescribeBudgets(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to list AWS budgets: %w", err)
	}

	list := &finops.BudgetList{Provider: p.Name(), Native: out}
	if out.NextToken != nil {
		list.NextToken = *out.NextToken
	}
	for _, b := range out.Budgets {
		budget := finops.Budget{Provider: p.Name(), Native: b}
		if b.BudgetName != nil {
			budget.Name = *b.BudgetName
		}
		if b.BudgetLimit != nil {
			if b.BudgetLimit.Amount != nil {
				budget.Amount, _ = strconv.ParseFloat(*b.BudgetLimit.Amount, 64)
			}
			if b.BudgetLimit.Unit != nil {
				budget.Currency = *b.BudgetLimit.Unit
			}
		}
		budget.TimeGrain = string(b.TimeUnit)
		list.Budgets = append(list.Budgets, budget)
	}
	return list, nil
}

// CreateBudget creates a budget with its notification rules in one call.
func (p *Provider) CreateBudget(ctx context.Context, req finops.CreateBudgetRequest) (*finops.Budget, error) {
	spec := req.AWS
	if spec == nil {
		return nil, fmt.Errorf("aws budget spec is required")
	}
	accountID, err := p.resolveAccountID(ctx, spec.AccountID)
	if err != nil {
		return nil, err
	}

	unit := spec.Unit
	if unit == "" {
		unit = "USD"
	}
	budgetType := spec.BudgetType
	if budgetType == "" {
		budgetType = "COST"
	}
	timeUnit := spec.TimeUnit
	if timeUnit == "" {
		timeUnit = "MONTHLY"
	}

	input := &budgets.CreateBudgetInput{
		AccountId: aws.String(accountID),
		Budget: &types.Budget{
			BudgetName: aws.String(spec.BudgetName),
			BudgetLimit: &types.Spend{
				Amount: aws.String(strconv.FormatFloat(spec.Amount, 'f', -1, 64)),
				Unit:   aws.String(unit),
			},
			BudgetType: types.BudgetType(budgetType),
			TimeUnit:   types.TimeUnit(timeUnit),
		},
	}
	for _, n := range spec.Notifications {
		nws := types.NotificationWithSubscribers{
			Notification: &types.Notification{
				ComparisonOperator: types.ComparisonOperator(n.ComparisonOperator),
				NotificationType:   types.NotificationType(n.NotificationType),
				Threshold:          n.Threshold,
				ThresholdType:      types.ThresholdType(n.ThresholdType),
			},
		}
		for _, s := range n.Subscribers {
			nws.Subscribers = append(nws.Subscribers, types.Subscriber{
				Address:          aws.String(s.Address),
				SubscriptionType: types.SubscriptionType(s.Type),
			})
		}
		input.NotificationsWithSubscribers = append(input.NotificationsWithSubscribers, nws)
	}

	if _, err := p.budgets.CreateBudget(ctx, input); err != nil {
		return nil, fmt.Errorf("failed to create AWS budget %q: %w", spec.BudgetName, err)
	}

	p.log.Info("created budget", zap.String("name", spec.BudgetName), zap.Float64("amount", spec.Amount))
	return &finops.Budget{
		Provider:  p.Name(),
		Name:      spec.BudgetName,
		Amount:    spec.Amount,
		Currency:  unit,
		TimeGrain: timeUnit,
	}, nil
}

// GetBudgetAlerts returns the notification rules configured on a budget.
// AWS exposes the configuration, not the history of fired alerts.
func (p *Provider) GetBudgetAlerts(ctx context.Context, req finops.BudgetAlertsRequest) (*finops.BudgetAlerts, error) {
	accountID, err := p.resolveAccountID(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}

	out, err := p.budgets.DescribeNotificationsForBudget(ctx, &budgets.DescribeNotificationsForBudgetInput{
		AccountId:  aws.String(accountID),
		BudgetName: aws.String(req.BudgetName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get AWS budget notifications for %q: %w", req.BudgetName, err)
	}

	alerts := &finops.BudgetAlerts{
		Provider:          p.Name(),
		BudgetName:        req.BudgetName,
		ConfigurationOnly: true,
		Native:            out,
	}
	for _, n := range out.Notifications {
		alerts.Alerts = append(alerts.Alerts, map[string]any{
			"notification_type":   string(n.NotificationType),
			"comparison_operator": string(n.ComparisonOperator),
			"threshold":           n.Threshold,
			"threshold_type":      string(n.ThresholdType),
			"state":               string(n.NotificationState),
		})
	}
	return alerts, nil
}
