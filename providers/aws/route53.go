package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"

	"github.com/yairfalse/kartta/cost"
	"github.com/yairfalse/kartta/types"
)

// Route53Scanner enumerates hosted zones. Route53 is a global service.
type Route53Scanner struct {
	client Route53API
}

// NewRoute53Scanner builds the scanner from a single global client.
func NewRoute53Scanner(client Route53API) *Route53Scanner {
	return &Route53Scanner{client: client}
}

func (s *Route53Scanner) Service() string { return "route53" }
func (s *Route53Scanner) Global() bool    { return true }

// ScanRegion lists every hosted zone in the account. region is always
// the global pseudo-region.
func (s *Route53Scanner) ScanRegion(ctx context.Context, region string) ([]types.Resource, error) {
	var resources []types.Resource
	var marker *string

	for {
		output, err := s.client.ListHostedZones(ctx, &route53.ListHostedZonesInput{Marker: marker})
		if err != nil {
			return nil, fmt.Errorf("list hosted zones: %w", err)
		}

		for _, zone := range output.HostedZones {
			zoneType := "public"
			if zone.Config != nil && zone.Config.PrivateZone {
				zoneType = "private"
			}

			resources = append(resources, types.Resource{
				ID:                   awssdk.ToString(zone.Id),
				Type:                 "hosted_zone",
				Service:              "route53",
				Region:               region,
				Name:                 awssdk.ToString(zone.Name),
				State:                "active",
				EstimatedMonthlyCost: cost.Route53Zone(),
				AdditionalInfo: map[string]any{
					"zone_type":    zoneType,
					"record_count": awssdk.ToInt64(zone.ResourceRecordSetCount),
				},
			})
		}

		if !output.IsTruncated {
			break
		}
		marker = output.NextMarker
	}

	return resources, nil
}
