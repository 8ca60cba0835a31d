package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"

	"github.com/yairfalse/kartta/cost"
	"github.com/yairfalse/kartta/types"
)

// ELBScanner enumerates v2 load balancers (ALB/NLB) in one region.
type ELBScanner struct {
	client func(region string) ELBAPI
}

// NewELBScanner builds the scanner from a per-region client factory.
func NewELBScanner(client func(region string) ELBAPI) *ELBScanner {
	return &ELBScanner{client: client}
}

func (s *ELBScanner) Service() string { return "elb" }
func (s *ELBScanner) Global() bool    { return false }

// ScanRegion enumerates load balancers in the region.
func (s *ELBScanner) ScanRegion(ctx context.Context, region string) ([]types.Resource, error) {
	client := s.client(region)
	var resources []types.Resource
	var marker *string

	for {
		output, err := client.DescribeLoadBalancers(ctx, &elasticloadbalancingv2.DescribeLoadBalancersInput{Marker: marker})
		if err != nil {
			return nil, fmt.Errorf("describe load balancers: %w", err)
		}

		for _, lb := range output.LoadBalancers {
			state := "unknown"
			if lb.State != nil {
				state = string(lb.State.Code)
			}

			resources = append(resources, types.Resource{
				ID:                   awssdk.ToString(lb.LoadBalancerArn),
				Type:                 "load_balancer",
				Service:              "elb",
				Region:               region,
				Name:                 awssdk.ToString(lb.LoadBalancerName),
				CreatedAt:            lb.CreatedTime,
				State:                state,
				EstimatedMonthlyCost: cost.LoadBalancer(state),
				AdditionalInfo: map[string]any{
					"type":     string(lb.Type),
					"scheme":   string(lb.Scheme),
					"vpc_id":   awssdk.ToString(lb.VpcId),
					"dns_name": awssdk.ToString(lb.DNSName),
				},
			})
		}

		if output.NextMarker == nil {
			break
		}
		marker = output.NextMarker
	}

	return resources, nil
}
