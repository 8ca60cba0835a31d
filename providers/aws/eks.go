package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eks"

	"github.com/yairfalse/kartta/cost"
	"github.com/yairfalse/kartta/types"
)

// EKSScanner enumerates clusters in one region.
type EKSScanner struct {
	client func(region string) EKSAPI
}

// NewEKSScanner builds the scanner from a per-region client factory.
func NewEKSScanner(client func(region string) EKSAPI) *EKSScanner {
	return &EKSScanner{client: client}
}

func (s *EKSScanner) Service() string { return "eks" }
func (s *EKSScanner) Global() bool    { return false }

// ScanRegion lists clusters and describes each for status and version.
func (s *EKSScanner) ScanRegion(ctx context.Context, region string) ([]types.Resource, error) {
	client := s.client(region)
	var resources []types.Resource
	var nextToken *string

	for {
		listOutput, err := client.ListClusters(ctx, &eks.ListClustersInput{NextToken: nextToken})
		if err != nil {
			return nil, fmt.Errorf("list clusters: %w", err)
		}

		for _, clusterName := range listOutput.Clusters {
			descOutput, err := client.DescribeCluster(ctx, &eks.DescribeClusterInput{
				Name: awssdk.String(clusterName),
			})
			if err != nil || descOutput.Cluster == nil {
				continue
			}
			cluster := descOutput.Cluster
			status := string(cluster.Status)

			resources = append(resources, types.Resource{
				ID:                   awssdk.ToString(cluster.Arn),
				Type:                 "cluster",
				Service:              "eks",
				Region:               region,
				Name:                 awssdk.ToString(cluster.Name),
				CreatedAt:            cluster.CreatedAt,
				State:                status,
				EstimatedMonthlyCost: cost.EKSCluster(status),
				AdditionalInfo: map[string]any{
					"version":  awssdk.ToString(cluster.Version),
					"endpoint": awssdk.ToString(cluster.Endpoint),
				},
			})
		}

		if listOutput.NextToken == nil {
			break
		}
		nextToken = listOutput.NextToken
	}

	return resources, nil
}
