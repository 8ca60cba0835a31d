package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"

	"github.com/yairfalse/kartta/cost"
	"github.com/yairfalse/kartta/types"
)

// RDSScanner enumerates database instances in one region.
type RDSScanner struct {
	client func(region string) RDSAPI
}

// NewRDSScanner builds the scanner from a per-region client factory.
func NewRDSScanner(client func(region string) RDSAPI) *RDSScanner {
	return &RDSScanner{client: client}
}

func (s *RDSScanner) Service() string { return "rds" }
func (s *RDSScanner) Global() bool    { return false }

// ScanRegion enumerates DB instances in the region.
func (s *RDSScanner) ScanRegion(ctx context.Context, region string) ([]types.Resource, error) {
	client := s.client(region)
	var resources []types.Resource
	var marker *string

	for {
		output, err := client.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{Marker: marker})
		if err != nil {
			return nil, fmt.Errorf("describe db instances: %w", err)
		}

		for _, instance := range output.DBInstances {
			instanceClass := awssdk.ToString(instance.DBInstanceClass)
			status := awssdk.ToString(instance.DBInstanceStatus)

			resources = append(resources, types.Resource{
				ID:                   awssdk.ToString(instance.DBInstanceIdentifier),
				Type:                 "db_instance",
				Service:              "rds",
				Region:               region,
				Name:                 awssdk.ToString(instance.DBInstanceIdentifier),
				CreatedAt:            instance.InstanceCreateTime,
				State:                status,
				EstimatedMonthlyCost: cost.RDSInstance(instanceClass, status),
				AdditionalInfo: map[string]any{
					"engine":         awssdk.ToString(instance.Engine),
					"engine_version": awssdk.ToString(instance.EngineVersion),
					"instance_class": instanceClass,
					"storage_gb":     int(awssdk.ToInt32(instance.AllocatedStorage)),
					"multi_az":       awssdk.ToBool(instance.MultiAZ),
				},
			})
		}

		if output.Marker == nil {
			break
		}
		marker = output.Marker
	}

	return resources, nil
}
