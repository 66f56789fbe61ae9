// Package cloudmesh is a unified FinOps client over AWS, Azure and GCP.
// One constructor selects the provider; the returned client exposes the
// same cost, budget, reservation, optimization and analytics operations
// for all three.
package cloudmesh

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudmesh/cloudmesh-go/aws"
	"github.com/cloudmesh/cloudmesh-go/azure"
	"github.com/cloudmesh/cloudmesh-go/finops"
	"github.com/cloudmesh/cloudmesh-go/gcp"
	"github.com/cloudmesh/cloudmesh-go/internal/logging"
)

// Supported provider identifiers.
const (
	ProviderAWS   = "aws"
	ProviderAzure = "azure"
	ProviderGCP   = "gcp"
)

var validProviders = []string{ProviderAWS, ProviderAzure, ProviderGCP}

// Config selects and configures one provider. Exactly the section matching
// the provider passed to New must be set.
type Config struct {
	AWS   *aws.Options   `json:"aws,omitempty" yaml:"aws,omitempty"`
	Azure *azure.Options `json:"azure,omitempty" yaml:"azure,omitempty"`
	GCP   *gcp.Options   `json:"gcp,omitempty" yaml:"gcp,omitempty"`

	// KeyedReservationCache keys reservation memoization by request
	// parameters. Off by default for compatibility: the single-slot
	// cache returns the first result for every later call.
	KeyedReservationCache bool `json:"keyed_reservation_cache,omitempty" yaml:"keyed_reservation_cache,omitempty"`

	// Logging, when non-zero, initializes the package logger. Leave it
	// empty to keep the library silent.
	Logging logging.Config `json:"logging,omitempty" yaml:"logging,omitempty"`
}

// Client is a provider-backed FinOps client. All finops.Provider
// operations are available; reservation lookups are memoized.
type Client struct {
	finops.Provider
	cache *reservationCache
}

// New constructs the client for the named provider. Configuration is
// validated and the provider's API clients are built up front, so a
// returned client is ready to use.
func New(ctx context.Context, provider string, cfg Config) (*Client, error) {
	if cfg.Logging != (logging.Config{}) {
		if err := logging.Initialize(cfg.Logging); err != nil {
			return nil, &ConfigError{Msg: fmt.Sprintf("invalid logging configuration: %v", err)}
		}
	}

	var (
		backend finops.Provider
		err     error
	)
	switch strings.ToLower(provider) {
	case ProviderAWS:
		if cfg.AWS == nil {
			return nil, &ConfigError{Provider: ProviderAWS, Msg: "aws configuration section is required"}
		}
		backend, err = aws.New(ctx, *cfg.AWS)
	case ProviderAzure:
		if cfg.Azure == nil {
			return nil, &ConfigError{Provider: ProviderAzure, Msg: "azure configuration section is required"}
		}
		backend, err = azure.New(*cfg.Azure)
	case ProviderGCP:
		if cfg.GCP == nil {
			return nil, &ConfigError{Provider: ProviderGCP, Msg: "gcp configuration section is required"}
		}
		backend, err = gcp.New(ctx, *cfg.GCP)
	default:
		return nil, &ConfigError{Msg: fmt.Sprintf(
			"unknown provider %q: valid providers are %s",
			provider, strings.Join(validProviders, ", "))}
	}
	if err != nil {
		return nil, &InitError{Provider: strings.ToLower(provider), Err: err}
	}

	return &Client{
		Provider: backend,
		cache:    newReservationCache(cfg.KeyedReservationCache),
	}, nil
}

// GetReservationOrderDetails forwards to the Azure facade. Clients built
// for another provider get a ConfigError.
func (c *Client) GetReservationOrderDetails(ctx context.Context) ([]map[string]any, error) {
	azureProvider, ok := c.Provider.(*azure.Provider)
	if !ok {
		return nil, &ConfigError{
			Provider: c.Provider.Name(),
			Msg:      "reservation order details are only available on azure",
		}
	}
	return azureProvider.GetReservationOrderDetails(ctx)
}

// GetReservationCost memoizes the underlying provider call.
func (c *Client) GetReservationCost(ctx context.Context, req finops.ReservationCostRequest) (*finops.ReservationCost, error) {
	key := c.cache.costKey(req)
	if cached, ok := c.cache.getCost(key); ok {
		return cached, nil
	}
	result, err := c.Provider.GetReservationCost(ctx, req)
	if err != nil {
		return nil, err
	}
	c.cache.putCost(key, result)
	return result, nil
}

// GetReservationRecommendations memoizes the underlying provider call.
func (c *Client) GetReservationRecommendations(ctx context.Context, req finops.ReservationRecommendationsRequest) (*finops.ReservationRecommendations, error) {
	key := c.cache.recsKey(req)
	if cached, ok := c.cache.getRecs(key); ok {
		return cached, nil
	}
	result, err := c.Provider.GetReservationRecommendations(ctx, req)
	if err != nil {
		return nil, err
	}
	c.cache.putRecs(key, result)
	return result, nil
}
