// Package azure implements the FinOps provider backed by the Azure Cost
// Management, Consumption and Advisor APIs.
package azure

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/advisor/armadvisor"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/consumption/armconsumption"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/policyinsights/armpolicyinsights"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/reservations/armreservations"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"go.uber.org/zap"

	"github.com/cloudmesh/cloudmesh-go/internal/logging"
)

// Options configures the Azure provider. Token pins a pre-acquired bearer
// token; otherwise a client secret or the default credential chain is used.
type Options struct {
	SubscriptionID string `json:"subscription_id" yaml:"subscription_id"`
	TenantID       string `json:"tenant_id" yaml:"tenant_id"`
	ClientID       string `json:"client_id" yaml:"client_id"`
	ClientSecret   string `json:"client_secret" yaml:"client_secret"`
	Token          string `json:"token" yaml:"token"`

	// Credential wins over the fields above when set.
	Credential azcore.TokenCredential `json:"-" yaml:"-"`

	// Logger overrides the package logger for this provider's messages.
	Logger *zap.Logger `json:"-" yaml:"-"`
}

// staticTokenCredential serves a caller-supplied bearer token. The token is
// used as-is; expiry is the caller's problem.
type staticTokenCredential struct {
	token string
}

func (c staticTokenCredential) GetToken(context.Context, policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: c.token, ExpiresOn: time.Now().Add(time.Hour)}, nil
}

// Provider implements finops.Provider for Azure.
type Provider struct {
	subscriptionID string
	defaultScope   string

	query        *armcostmanagement.QueryClient
	forecast     *armcostmanagement.ForecastClient
	budgets      *armconsumption.BudgetsClient
	reservations *armconsumption.ReservationRecommendationsClient
	resSummaries *armconsumption.ReservationsSummariesClient
	resOrders    *armreservations.ReservationOrderClient
	advisor      *armadvisor.RecommendationsClient
	tags         *armresources.TagsClient
	policyStates *armpolicyinsights.PolicyStatesClient

	log *zap.Logger
}

// New builds all Azure clients from one resolved credential.
func New(opts Options) (*Provider, error) {
	if opts.SubscriptionID == "" {
		return nil, fmt.Errorf("azure subscription ID is required")
	}

	cred, err := resolveCredential(opts)
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = logging.With(zap.String("provider", "azure"))
	}
	p := &Provider{
		subscriptionID: opts.SubscriptionID,
		defaultScope:   "/subscriptions/" + opts.SubscriptionID,
		log:            log,
	}

	if p.query, err = armcostmanagement.NewQueryClient(cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create cost management query client: %w", err)
	}
	if p.forecast, err = armcostmanagement.NewForecastClient(cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create cost management forecast client: %w", err)
	}
	if p.budgets, err = armconsumption.NewBudgetsClient(cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create consumption budgets client: %w", err)
	}
	if p.reservations, err = armconsumption.NewReservationRecommendationsClient(cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create reservation recommendations client: %w", err)
	}
	if p.resSummaries, err = armconsumption.NewReservationsSummariesClient(cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create reservation summaries client: %w", err)
	}
	if p.resOrders, err = armreservations.NewReservationOrderClient(cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create reservation order client: %w", err)
	}
	if p.advisor, err = armadvisor.NewRecommendationsClient(opts.SubscriptionID, cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create advisor client: %w", err)
	}
	if p.tags, err = armresources.NewTagsClient(opts.SubscriptionID, cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create tags client: %w", err)
	}
	if p.policyStates, err = armpolicyinsights.NewPolicyStatesClient(cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create policy states client: %w", err)
	}

	return p, nil
}

func resolveCredential(opts Options) (azcore.TokenCredential, error) {
	switch {
	case opts.Credential != nil:
		return opts.Credential, nil
	case opts.Token != "":
		return staticTokenCredential{token: opts.Token}, nil
	case opts.ClientID != "" && opts.ClientSecret != "":
		cred, err := azidentity.NewClientSecretCredential(opts.TenantID, opts.ClientID, opts.ClientSecret, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure client secret credential: %w", err)
		}
		return cred, nil
	default:
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure default credential: %w", err)
		}
		return cred, nil
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return "azure" }

// scopeOrDefault falls back to the subscription scope.
func (p *Provider) scopeOrDefault(scope string) string {
	if scope != "" {
		return scope
	}
	return p.defaultScope
}
