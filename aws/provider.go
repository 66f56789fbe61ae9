// Package aws implements the FinOps provider backed by AWS Cost Explorer,
// Budgets and their supporting services.
package aws

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/budgets"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/configservice"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"go.uber.org/zap"

	"github.com/cloudmesh/cloudmesh-go/internal/logging"
)

// Options configures the AWS provider. When AccessKeyID is empty the
// default credential chain applies (environment, shared config, IMDS).
type Options struct {
	Region          string `json:"region" yaml:"region"`
	Profile         string `json:"profile" yaml:"profile"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
	SessionToken    string `json:"session_token" yaml:"session_token"`

	// AccountID overrides the caller-identity lookup used by budget
	// operations.
	AccountID string `json:"account_id" yaml:"account_id"`

	// Logger overrides the package logger for this provider's messages.
	Logger *zap.Logger `json:"-" yaml:"-"`
}

// Provider implements finops.Provider for AWS.
type Provider struct {
	ce      CostExplorerAPI
	budgets BudgetsAPI
	sts     STSAPI
	orgs    OrganizationsAPI
	cfgsvc  ConfigServiceAPI
	ec2     EC2API
	rds     RDSAPI
	cw      CloudWatchAPI

	mu        sync.Mutex
	accountID string

	log *zap.Logger
}

// New builds all AWS service clients from a single resolved SDK config.
func New(ctx context.Context, opts Options) (*Provider, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.Profile))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, opts.SessionToken)))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = logging.With(zap.String("provider", "aws"))
	}
	return &Provider{
		ce:        costexplorer.NewFromConfig(cfg),
		budgets:   budgets.NewFromConfig(cfg),
		sts:       sts.NewFromConfig(cfg),
		orgs:      organizations.NewFromConfig(cfg),
		cfgsvc:    configservice.NewFromConfig(cfg),
		ec2:       ec2.NewFromConfig(cfg),
		rds:       rds.NewFromConfig(cfg),
		cw:        cloudwatch.NewFromConfig(cfg),
		accountID: opts.AccountID,
		log:       log,
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return "aws" }

// resolveAccountID returns the configured account ID, looking it up once
// via STS when none was given.
func (p *Provider) resolveAccountID(ctx context.Context, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.accountID != "" {
		return p.accountID, nil
	}
	out, err := p.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("failed to resolve AWS account ID: %w", err)
	}
	if out.Account == nil {
		return "", fmt.Errorf("failed to resolve AWS account ID: caller identity has no account")
	}
	p.accountID = *out.Account
	return p.accountID, nil
}
