package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/rds"

	"github.com/cloudmesh/cloudmesh-go/finops"
)

const (
	// idleCPUThreshold marks an instance as idle when its average CPU
	// utilization stays below this percentage over the lookback window.
	idleCPUThreshold = 5.0
	idleLookbackDays = 7
)

// IdleResource is a running resource whose utilization suggests it can be
// stopped or downsized.
type IdleResource struct {
	ResourceID   string  `json:"resource_id"`
	ResourceType string  `json:"resource_type"`
	InstanceType string  `json:"instance_type,omitempty"`
	AvgCPU       float64 `json:"avg_cpu_percent"`
}

// GetOptimizationRecommendations aggregates savings plans, rightsizing,
// reserved instance and idle resource findings. Each source fails
// independently; its error is recorded in the result.
func (p *Provider) GetOptimizationRecommendations(ctx context.Context, req finops.OptimizationRequest) (*finops.OptimizationRecommendations, error) {
	result := &finops.OptimizationRecommendations{
		Provider: p.Name(),
		Sources:  make(map[string]finops.SourceResult),
	}

	if recs, err := p.GetSavingsPlansRecommendations(ctx); err != nil {
		result.Sources["savings_plans"] = finops.SourceResult{Error: err.Error()}
	} else {
		result.Sources["savings_plans"] = finops.SourceResult{Items: recs}
	}

	if recs, err := p.GetRightsizingRecommendations(ctx); err != nil {
		result.Sources["rightsizing"] = finops.SourceResult{Error: err.Error()}
	} else {
		result.Sources["rightsizing"] = finops.SourceResult{Items: recs}
	}

	if recs, err := p.GetReservationRecommendations(ctx, finops.ReservationRecommendationsRequest{}); err != nil {
		result.Sources["reserved_instances"] = finops.SourceResult{Error: err.Error()}
	} else {
		result.Sources["reserved_instances"] = finops.SourceResult{Items: recs.Recommendations}
	}

	if idle, err := p.GetIdleResources(ctx); err != nil {
		result.Sources["idle_resources"] = finops.SourceResult{Error: err.Error()}
	} else {
		result.Sources["idle_resources"] = finops.SourceResult{Items: idle}
	}

	return result, nil
}

// GetSavingsPlansRecommendations queries compute savings plan purchase
// advice. AWS-specific; not part of the portable surface.
func (p *Provider) GetSavingsPlansRecommendations(ctx context.Context) ([]finops.Recommendation, error) {
	out, err := p.ce.GetSavingsPlansPurchaseRecommendation(ctx, &costexplorer.GetSavingsPlansPurchaseRecommendationInput{
		SavingsPlansType:     cetypes.SupportedSavingsPlansTypeComputeSp,
		TermInYears:          cetypes.TermInYearsOneYear,
		PaymentOption:        cetypes.PaymentOptionNoUpfront,
		LookbackPeriodInDays: cetypes.LookbackPeriodInDaysThirtyDays,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get AWS savings plans recommendations: %w", err)
	}

	var recs []finops.Recommendation
	if out.SavingsPlansPurchaseRecommendation == nil {
		return recs, nil
	}
	for _, detail := range out.SavingsPlansPurchaseRecommendation.SavingsPlansPurchaseRecommendationDetails {
		savings := parseAmount(detail.EstimatedMonthlySavingsAmount)
		r := finops.Recommendation{
			Source:         "savings_plans",
			Name:           "Compute Savings Plan",
			MonthlySavings: savings,
			Priority:       finops.PriorityForMonthlySavings(savings),
			Native:         detail,
		}
		if detail.CurrencyCode != nil {
			r.Currency = *detail.CurrencyCode
		}
		if detail.HourlyCommitmentToPurchase != nil {
			r.Description = fmt.Sprintf("commit %s/hour for one year", *detail.HourlyCommitmentToPurchase)
		}
		recs = append(recs, r)
	}
	return recs, nil
}

// GetRightsizingRecommendations queries EC2 rightsizing advice.
func (p *Provider) GetRightsizingRecommendations(ctx context.Context) ([]finops.Recommendation, error) {
	out, err := p.ce.GetRightsizingRecommendation(ctx, &costexplorer.GetRightsizingRecommendationInput{
		Service: aws.String("AmazonEC2"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get AWS rightsizing recommendations: %w", err)
	}

	var recs []finops.Recommendation
	for _, rec := range out.RightsizingRecommendations {
		r := finops.Recommendation{
			Source: "rightsizing",
			Native: rec,
		}
		if rec.CurrentInstance != nil && rec.CurrentInstance.ResourceId != nil {
			r.Name = *rec.CurrentInstance.ResourceId
		}
		r.Description = fmt.Sprintf("%s this instance", string(rec.RightsizingType))
		if rec.TerminateRecommendationDetail != nil {
			r.MonthlySavings = parseAmount(rec.TerminateRecommendationDetail.EstimatedMonthlySavings)
			if rec.TerminateRecommendationDetail.CurrencyCode != nil {
				r.Currency = *rec.TerminateRecommendationDetail.CurrencyCode
			}
		}
		r.Priority = finops.PriorityForMonthlySavings(r.MonthlySavings)
		recs = append(recs, r)
	}
	return recs, nil
}

// GetIdleResources scans running EC2 and RDS instances and flags those
// whose recent average CPU utilization falls below idleCPUThreshold.
func (p *Provider) GetIdleResources(ctx context.Context) ([]IdleResource, error) {
	var idle []IdleResource

	instances, err := p.ec2.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{{
			Name:   aws.String("instance-state-name"),
			Values: []string{"running"},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe EC2 instances: %w", err)
	}
	for _, reservation := range instances.Reservations {
		for _, inst := range reservation.Instances {
			if inst.InstanceId == nil {
				continue
			}
			avg, err := p.averageCPU(ctx, "AWS/EC2", "InstanceId", *inst.InstanceId)
			if err != nil {
				continue
			}
			if avg < idleCPUThreshold {
				idle = append(idle, IdleResource{
					ResourceID:   *inst.InstanceId,
					ResourceType: "ec2_instance",
					InstanceType: string(inst.InstanceType),
					AvgCPU:       avg,
				})
			}
		}
	}

	dbs, err := p.rds.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe RDS instances: %w", err)
	}
	for _, db := range dbs.DBInstances {
		if db.DBInstanceIdentifier == nil {
			continue
		}
		if db.DBInstanceStatus != nil && *db.DBInstanceStatus != "available" {
			continue
		}
		avg, err := p.averageCPU(ctx, "AWS/RDS", "DBInstanceIdentifier", *db.DBInstanceIdentifier)
		if err != nil {
			continue
		}
		if avg < idleCPUThreshold {
			res := IdleResource{
				ResourceID:   *db.DBInstanceIdentifier,
				ResourceType: "rds_instance",
				AvgCPU:       avg,
			}
			if db.DBInstanceClass != nil {
				res.InstanceType = *db.DBInstanceClass
			}
			idle = append(idle, res)
		}
	}

	return idle, nil
}

// averageCPU returns the mean CPUUtilization over the idle lookback window.
func (p *Provider) averageCPU(ctx context.Context, namespace, dimension, value string) (float64, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -idleLookbackDays)

	out, err := p.cw.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String(namespace),
		MetricName: aws.String("CPUUtilization"),
		Dimensions: []cwtypes.Dimension{{
			Name:  aws.String(dimension),
			Value: aws.String(value),
		}},
		StartTime:  aws.Time(start),
		EndTime:    aws.Time(end),
		Period:     aws.Int32(3600),
		Statistics: []cwtypes.Statistic{cwtypes.StatisticAverage},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get CPU metrics for %s: %w", value, err)
	}
	if len(out.Datapoints) == 0 {
		return 0, fmt.Errorf("no CPU datapoints for %s", value)
	}

	var sum float64
	for _, dp := range out.Datapoints {
		if dp.Average != nil {
			sum += *dp.Average
		}
	}
	return sum / float64(len(out.Datapoints)), nil
}
