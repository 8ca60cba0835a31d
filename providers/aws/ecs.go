package aws

import (
	"context"
	"fmt"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"
	"github.com/samber/lo"

	"github.com/yairfalse/kartta/cost"
	"github.com/yairfalse/kartta/types"
)

// DescribeClusters takes at most 100 ARNs, DescribeServices at most 10.
const (
	ecsClusterBatch = 100
	ecsServiceBatch = 10
)

// ECSScanner enumerates clusters and their services in one region.
type ECSScanner struct {
	client func(region string) ECSAPI
}

// NewECSScanner builds the scanner from a per-region client factory.
func NewECSScanner(client func(region string) ECSAPI) *ECSScanner {
	return &ECSScanner{client: client}
}

func (s *ECSScanner) Service() string { return "ecs" }
func (s *ECSScanner) Global() bool    { return false }

// ScanRegion lists clusters, describes them in batches and then walks
// each cluster's services.
func (s *ECSScanner) ScanRegion(ctx context.Context, region string) ([]types.Resource, error) {
	client := s.client(region)

	arns, err := s.listClusterARNs(ctx, client)
	if err != nil {
		return nil, err
	}

	var resources []types.Resource
	for _, batch := range lo.Chunk(arns, ecsClusterBatch) {
		output, err := client.DescribeClusters(ctx, &ecs.DescribeClustersInput{
			Clusters: batch,
			Include: []ecstypes.ClusterField{
				ecstypes.ClusterFieldStatistics,
				ecstypes.ClusterFieldTags,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("describe clusters: %w", err)
		}

		for _, cluster := range output.Clusters {
			resources = append(resources, convertECSCluster(cluster, region))

			services, err := s.scanServices(ctx, client, awssdk.ToString(cluster.ClusterArn), region)
			if err != nil {
				return nil, err
			}
			resources = append(resources, services...)
		}
	}

	return resources, nil
}

func (s *ECSScanner) listClusterARNs(ctx context.Context, client ECSAPI) ([]string, error) {
	var arns []string
	var nextToken *string

	for {
		output, err := client.ListClusters(ctx, &ecs.ListClustersInput{NextToken: nextToken})
		if err != nil {
			return nil, fmt.Errorf("list clusters: %w", err)
		}
		arns = append(arns, output.ClusterArns...)

		if output.NextToken == nil {
			break
		}
		nextToken = output.NextToken
	}

	return arns, nil
}

func convertECSCluster(cluster ecstypes.Cluster, region string) types.Resource {
	runningTasks := int(cluster.RunningTasksCount)

	return types.Resource{
		ID:                   awssdk.ToString(cluster.ClusterArn),
		Type:                 "cluster",
		Service:              "ecs",
		Region:               region,
		Name:                 awssdk.ToString(cluster.ClusterName),
		State:                awssdk.ToString(cluster.Status),
		EstimatedMonthlyCost: cost.ECSCluster(runningTasks),
		AdditionalInfo: map[string]any{
			"running_tasks":       runningTasks,
			"pending_tasks":       int(cluster.PendingTasksCount),
			"active_services":     int(cluster.ActiveServicesCount),
			"container_instances": int(cluster.RegisteredContainerInstancesCount),
			"capacity_providers":  cluster.CapacityProviders,
		},
	}
}

func (s *ECSScanner) scanServices(ctx context.Context, client ECSAPI, clusterArn, region string) ([]types.Resource, error) {
	var arns []string
	var nextToken *string

	for {
		output, err := client.ListServices(ctx, &ecs.ListServicesInput{
			Cluster:   awssdk.String(clusterArn),
			NextToken: nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("list services: %w", err)
		}
		arns = append(arns, output.ServiceArns...)

		if output.NextToken == nil {
			break
		}
		nextToken = output.NextToken
	}

	var resources []types.Resource
	for _, batch := range lo.Chunk(arns, ecsServiceBatch) {
		output, err := client.DescribeServices(ctx, &ecs.DescribeServicesInput{
			Cluster:  awssdk.String(clusterArn),
			Services: batch,
			Include:  []ecstypes.ServiceField{ecstypes.ServiceFieldTags},
		})
		if err != nil {
			return nil, fmt.Errorf("describe services: %w", err)
		}

		for _, service := range output.Services {
			resources = append(resources, convertECSService(service, region))
		}
	}

	return resources, nil
}

func convertECSService(service ecstypes.Service, region string) types.Resource {
	launchType := string(service.LaunchType)
	desired := int(service.DesiredCount)

	info := map[string]any{
		"launch_type":     launchType,
		"desired_count":   desired,
		"running_count":   int(service.RunningCount),
		"pending_count":   int(service.PendingCount),
		"task_definition": taskDefinitionName(service.TaskDefinition),
	}
	if service.DeploymentController != nil {
		info["deployment_controller"] = string(service.DeploymentController.Type)
	}

	return types.Resource{
		ID:                   awssdk.ToString(service.ServiceArn),
		Type:                 "service",
		Service:              "ecs",
		Region:               region,
		Name:                 awssdk.ToString(service.ServiceName),
		CreatedAt:            service.CreatedAt,
		State:                awssdk.ToString(service.Status),
		EstimatedMonthlyCost: cost.ECSService(launchType, desired),
		AdditionalInfo:       info,
	}
}

// taskDefinitionName strips the ARN prefix, leaving family:revision.
func taskDefinitionName(arn *string) string {
	full := awssdk.ToString(arn)
	if i := strings.LastIndex(full, "/"); i >= 0 {
		return full[i+1:]
	}
	return full
}
