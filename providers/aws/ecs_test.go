package aws

import (
	"context"
	"fmt"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeECS struct {
	clusters map[string]ecstypes.Cluster
	services map[string][]ecstypes.Service // keyed by cluster ARN

	describeClusterBatches []int
	describeServiceBatches []int
}

func (f *fakeECS) ListClusters(context.Context, *ecs.ListClustersInput, ...func(*ecs.Options)) (*ecs.ListClustersOutput, error) {
	var arns []string
	for arn := range f.clusters {
		arns = append(arns, arn)
	}
	return &ecs.ListClustersOutput{ClusterArns: arns}, nil
}

func (f *fakeECS) DescribeClusters(_ context.Context, params *ecs.DescribeClustersInput, _ ...func(*ecs.Options)) (*ecs.DescribeClustersOutput, error) {
	f.describeClusterBatches = append(f.describeClusterBatches, len(params.Clusters))
	var clusters []ecstypes.Cluster
	for _, arn := range params.Clusters {
		clusters = append(clusters, f.clusters[arn])
	}
	return &ecs.DescribeClustersOutput{Clusters: clusters}, nil
}

func (f *fakeECS) ListServices(_ context.Context, params *ecs.ListServicesInput, _ ...func(*ecs.Options)) (*ecs.ListServicesOutput, error) {
	var arns []string
	for _, svc := range f.services[awssdk.ToString(params.Cluster)] {
		arns = append(arns, awssdk.ToString(svc.ServiceArn))
	}
	return &ecs.ListServicesOutput{ServiceArns: arns}, nil
}

func (f *fakeECS) DescribeServices(_ context.Context, params *ecs.DescribeServicesInput, _ ...func(*ecs.Options)) (*ecs.DescribeServicesOutput, error) {
	f.describeServiceBatches = append(f.describeServiceBatches, len(params.Services))
	want := make(map[string]bool, len(params.Services))
	for _, arn := range params.Services {
		want[arn] = true
	}
	var services []ecstypes.Service
	for _, svc := range f.services[awssdk.ToString(params.Cluster)] {
		if want[awssdk.ToString(svc.ServiceArn)] {
			services = append(services, svc)
		}
	}
	return &ecs.DescribeServicesOutput{Services: services}, nil
}

func TestECSScanner(t *testing.T) {
	fake := &fakeECS{
		clusters: map[string]ecstypes.Cluster{
			"arn:ecs:cluster/prod": {
				ClusterArn:        awssdk.String("arn:ecs:cluster/prod"),
				ClusterName:       awssdk.String("prod"),
				Status:            awssdk.String("ACTIVE"),
				RunningTasksCount: 2,
				PendingTasksCount: 1,
			},
		},
		services: map[string][]ecstypes.Service{
			"arn:ecs:cluster/prod": {
				{
					ServiceArn:     awssdk.String("arn:ecs:service/prod/web"),
					ServiceName:    awssdk.String("web"),
					Status:         awssdk.String("ACTIVE"),
					LaunchType:     ecstypes.LaunchTypeFargate,
					DesiredCount:   3,
					RunningCount:   3,
					TaskDefinition: awssdk.String("arn:ecs:task-definition/web:7"),
				},
				{
					ServiceArn:   awssdk.String("arn:ecs:service/prod/batch"),
					ServiceName:  awssdk.String("batch"),
					Status:       awssdk.String("ACTIVE"),
					LaunchType:   ecstypes.LaunchTypeEc2,
					DesiredCount: 5,
				},
			},
		},
	}
	scanner := NewECSScanner(func(string) ECSAPI { return fake })

	resources, err := scanner.ScanRegion(context.Background(), "us-east-1")
	require.NoError(t, err)
	require.Len(t, resources, 3, "one cluster plus two services")

	cluster := resources[0]
	assert.Equal(t, "cluster", cluster.Type)
	assert.InDelta(t, 35.04, cluster.EstimatedMonthlyCost, 0.001, "two running tasks")
	assert.Equal(t, 2, cluster.AdditionalInfo["running_tasks"])

	byName := map[string]float64{}
	taskDefs := map[string]any{}
	for _, r := range resources[1:] {
		assert.Equal(t, "service", r.Type)
		byName[r.Name] = r.EstimatedMonthlyCost
		taskDefs[r.Name] = r.AdditionalInfo["task_definition"]
	}
	assert.InDelta(t, 52.56, byName["web"], 0.001, "three desired Fargate tasks")
	assert.Zero(t, byName["batch"], "EC2 launch type priced as instances")
	assert.Equal(t, "web:7", taskDefs["web"], "task definition ARN trimmed to family:revision")
}

func TestECSScanner_DescribesInBatches(t *testing.T) {
	fake := &fakeECS{clusters: map[string]ecstypes.Cluster{}}
	for i := 0; i < 150; i++ {
		arn := fmt.Sprintf("arn:ecs:cluster/c%03d", i)
		fake.clusters[arn] = ecstypes.Cluster{
			ClusterArn: awssdk.String(arn),
			Status:     awssdk.String("ACTIVE"),
		}
	}
	scanner := NewECSScanner(func(string) ECSAPI { return fake })

	_, err := scanner.ScanRegion(context.Background(), "us-east-1")
	require.NoError(t, err)

	require.Len(t, fake.describeClusterBatches, 2)
	total := fake.describeClusterBatches[0] + fake.describeClusterBatches[1]
	assert.Equal(t, 150, total)
	assert.LessOrEqual(t, fake.describeClusterBatches[0], 100, "DescribeClusters takes at most 100 ARNs")
}
