// Package gcp implements the FinOps provider backed by the BigQuery
// billing export, Cloud Billing Budgets and the Recommender API.
package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	budgets "cloud.google.com/go/billing/budgets/apiv1"
	orgpolicy "cloud.google.com/go/orgpolicy/apiv2"
	recommender "cloud.google.com/go/recommender/apiv1"
	resourcemanager "cloud.google.com/go/resourcemanager/apiv3"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/cloudmesh/cloudmesh-go/finops"
	"github.com/cloudmesh/cloudmesh-go/internal/logging"
)

// Options configures the GCP provider. Cost queries require the billing
// export dataset and table; budget operations require the billing account.
type Options struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
	BillingAccount  string `json:"billing_account" yaml:"billing_account"`

	// BigQueryDataset and BigQueryTable locate the standard billing
	// export, e.g. billing_export / gcp_billing_export_v1_XXXXXX.
	BigQueryDataset string `json:"bigquery_dataset" yaml:"bigquery_dataset"`
	BigQueryTable   string `json:"bigquery_table" yaml:"bigquery_table"`

	// Logger overrides the package logger for this provider's messages.
	Logger *zap.Logger `json:"-" yaml:"-"`
}

// Provider implements finops.Provider for GCP.
type Provider struct {
	opts Options

	bq          *bigquery.Client
	budgets     *budgets.BudgetClient
	recommender *recommender.Client
	projects    *resourcemanager.ProjectsClient
	orgPolicy   *orgpolicy.Client

	log *zap.Logger
}

// New builds all GCP clients with one shared credential option set.
func New(ctx context.Context, opts Options) (*Provider, error) {
	if opts.ProjectID == "" {
		return nil, fmt.Errorf("gcp project ID is required")
	}

	var clientOpts []option.ClientOption
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}

	bq, err := bigquery.NewClient(ctx, opts.ProjectID, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create BigQuery client: %w", err)
	}
	budgetClient, err := budgets.NewBudgetClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create budget client: %w", err)
	}
	recClient, err := recommender.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create recommender client: %w", err)
	}
	projectsClient, err := resourcemanager.NewProjectsClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource manager client: %w", err)
	}
	orgPolicyClient, err := orgpolicy.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create org policy client: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = logging.With(zap.String("provider", "gcp"))
	}
	return &Provider{
		opts:        opts,
		bq:          bq,
		budgets:     budgetClient,
		recommender: recClient,
		projects:    projectsClient,
		orgPolicy:   orgPolicyClient,
		log:         log,
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return "gcp" }

// Close releases the underlying client connections.
func (p *Provider) Close() error {
	p.bq.Close()
	p.budgets.Close()
	p.recommender.Close()
	p.projects.Close()
	p.orgPolicy.Close()
	return nil
}

// exportTable returns the fully qualified billing export table, or a
// precondition error when the export was never configured.
func (p *Provider) exportTable(operation string) (string, error) {
	if p.opts.BigQueryDataset == "" || p.opts.BigQueryTable == "" {
		return "", &finops.PreconditionError{
			Provider:     p.Name(),
			Operation:    operation,
			Precondition: "a BigQuery billing export",
			Remedy:       "enable the billing export and set bigquery_dataset and bigquery_table",
		}
	}
	return fmt.Sprintf("`%s.%s.%s`", p.opts.ProjectID, p.opts.BigQueryDataset, p.opts.BigQueryTable), nil
}

// billingAccount validates the billing account option for budget calls.
func (p *Provider) billingAccount(override, operation string) (string, error) {
	account := override
	if account == "" {
		account = p.opts.BillingAccount
	}
	if account == "" {
		return "", &finops.PreconditionError{
			Provider:     p.Name(),
			Operation:    operation,
			Precondition: "a billing account ID",
			Remedy:       "set billing_account, e.g. 012345-567890-ABCDEF",
		}
	}
	return "billingAccounts/" + account, nil
}
