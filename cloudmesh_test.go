package cloudmesh

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloudmesh/cloudmesh-go/finops"
)

type stubProvider struct {
	finops.Provider
	costCalls int
	recsCalls int
	costErr   error
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) GetReservationCost(ctx context.Context, req finops.ReservationCostRequest) (*finops.ReservationCost, error) {
	s.costCalls++
	if s.costErr != nil {
		err := s.costErr
		s.costErr = nil
		return nil, err
	}
	return &finops.ReservationCost{
		Provider: "stub",
		Period:   finops.Period{Start: req.StartDate, End: req.EndDate},
	}, nil
}

func (s *stubProvider) GetReservationRecommendations(ctx context.Context, req finops.ReservationRecommendationsRequest) (*finops.ReservationRecommendations, error) {
	s.recsCalls++
	return &finops.ReservationRecommendations{Provider: "stub"}, nil
}

func newTestClient(backend finops.Provider, keyed bool) *Client {
	return &Client{Provider: backend, cache: newReservationCache(keyed)}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), "oracle", Config{})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %T", err)
	}
	if !strings.Contains(err.Error(), "valid providers are aws, azure, gcp") {
		t.Errorf("error should name valid providers, got %q", err.Error())
	}
}

func TestNewMissingProviderSection(t *testing.T) {
	for _, provider := range []string{"aws", "azure", "gcp"} {
		_, err := New(context.Background(), provider, Config{})
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("%s: expected ConfigError, got %v", provider, err)
		}
		if cfgErr.Provider != provider {
			t.Errorf("%s: ConfigError.Provider = %q", provider, cfgErr.Provider)
		}
	}
}

func TestReservationCostMemoizedUnkeyed(t *testing.T) {
	stub := &stubProvider{}
	client := newTestClient(stub, false)

	first, err := client.GetReservationCost(context.Background(), finops.ReservationCostRequest{StartDate: "2025-01-01", EndDate: "2025-01-31"})
	if err != nil {
		t.Fatal(err)
	}
	if first.Period.Start != "2025-01-01" {
		t.Fatalf("first result period start = %q", first.Period.Start)
	}

	// The default cache has a single slot per operation: a later call
	// with different parameters still returns the first result.
	second, err := client.GetReservationCost(context.Background(), finops.ReservationCostRequest{StartDate: "2025-02-01", EndDate: "2025-02-28"})
	if err != nil {
		t.Fatal(err)
	}
	if second.Period.Start != "2025-01-01" {
		t.Errorf("expected cached first result, got period start %q", second.Period.Start)
	}
	if stub.costCalls != 1 {
		t.Errorf("provider called %d times, want 1", stub.costCalls)
	}
}

func TestReservationCostMemoizedKeyed(t *testing.T) {
	stub := &stubProvider{}
	client := newTestClient(stub, true)

	a, _ := client.GetReservationCost(context.Background(), finops.ReservationCostRequest{StartDate: "2025-01-01"})
	b, _ := client.GetReservationCost(context.Background(), finops.ReservationCostRequest{StartDate: "2025-02-01"})
	if a.Period.Start != "2025-01-01" || b.Period.Start != "2025-02-01" {
		t.Errorf("keyed cache should return per-request results: %q, %q", a.Period.Start, b.Period.Start)
	}
	if stub.costCalls != 2 {
		t.Errorf("provider called %d times, want 2", stub.costCalls)
	}

	c, _ := client.GetReservationCost(context.Background(), finops.ReservationCostRequest{StartDate: "2025-01-01"})
	if c != a {
		t.Error("repeated request should hit the cache")
	}
	if stub.costCalls != 2 {
		t.Errorf("provider called %d times after repeat, want 2", stub.costCalls)
	}
}

func TestReservationErrorsNotCached(t *testing.T) {
	stub := &stubProvider{costErr: errors.New("throttled")}
	client := newTestClient(stub, false)

	if _, err := client.GetReservationCost(context.Background(), finops.ReservationCostRequest{}); err == nil {
		t.Fatal("expected first call to fail")
	}
	result, err := client.GetReservationCost(context.Background(), finops.ReservationCostRequest{})
	if err != nil {
		t.Fatalf("second call should succeed: %v", err)
	}
	if result == nil || stub.costCalls != 2 {
		t.Errorf("failed call must not be cached: calls=%d", stub.costCalls)
	}
}

func TestReservationRecommendationsMemoized(t *testing.T) {
	stub := &stubProvider{}
	client := newTestClient(stub, false)

	first, err := client.GetReservationRecommendations(context.Background(), finops.ReservationRecommendationsRequest{LookbackPeriod: "THIRTY_DAYS"})
	if err != nil {
		t.Fatal(err)
	}
	second, _ := client.GetReservationRecommendations(context.Background(), finops.ReservationRecommendationsRequest{LookbackPeriod: "SIXTY_DAYS"})
	if second != first {
		t.Error("unkeyed cache should return the first result")
	}
	if stub.recsCalls != 1 {
		t.Errorf("provider called %d times, want 1", stub.recsCalls)
	}
}

func TestReservationOrderDetailsRequiresAzure(t *testing.T) {
	client := newTestClient(&stubProvider{}, false)

	_, err := client.GetReservationOrderDetails(context.Background())
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if cfgErr.Provider != "stub" {
		t.Errorf("ConfigError.Provider = %q", cfgErr.Provider)
	}
}

func TestFromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cloudmesh.yaml")
	content := `aws:
  region: eu-west-1
  profile: billing
keyed_reservation_cache: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := FromConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AWS == nil || cfg.AWS.Region != "eu-west-1" || cfg.AWS.Profile != "billing" {
		t.Errorf("unexpected aws section: %+v", cfg.AWS)
	}
	if !cfg.KeyedReservationCache {
		t.Error("keyed_reservation_cache should be true")
	}
}

func TestFromConfigFileErrors(t *testing.T) {
	if _, err := FromConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("aws: [not a map"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := FromConfigFile(bad); err == nil {
		t.Error("expected error for malformed yaml")
	}
}
