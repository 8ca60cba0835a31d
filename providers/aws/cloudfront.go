package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudfront/types"

	"github.com/yairfalse/kartta/cost"
	"github.com/yairfalse/kartta/types"
)

// CloudFrontScanner enumerates distributions. CloudFront is a global
// service.
type CloudFrontScanner struct {
	client CloudFrontAPI
}

// NewCloudFrontScanner builds the scanner from a single global client.
func NewCloudFrontScanner(client CloudFrontAPI) *CloudFrontScanner {
	return &CloudFrontScanner{client: client}
}

func (s *CloudFrontScanner) Service() string { return "cloudfront" }
func (s *CloudFrontScanner) Global() bool    { return true }

// ScanRegion lists every distribution and fetches each one's config.
// Distributions whose config cannot be read are skipped. region is
// always the global pseudo-region.
func (s *CloudFrontScanner) ScanRegion(ctx context.Context, region string) ([]types.Resource, error) {
	var resources []types.Resource
	var marker *string

	for {
		output, err := s.client.ListDistributions(ctx, &cloudfront.ListDistributionsInput{Marker: marker})
		if err != nil {
			return nil, fmt.Errorf("list distributions: %w", err)
		}
		list := output.DistributionList
		if list == nil {
			break
		}

		for _, summary := range list.Items {
			detail, err := s.client.GetDistribution(ctx, &cloudfront.GetDistributionInput{
				Id: summary.Id,
			})
			if err != nil || detail.Distribution == nil || detail.Distribution.DistributionConfig == nil {
				continue
			}
			resources = append(resources, convertDistribution(summary, detail.Distribution.DistributionConfig, region))
		}

		if !awssdk.ToBool(list.IsTruncated) {
			break
		}
		marker = list.NextMarker
	}

	return resources, nil
}

func convertDistribution(summary cftypes.DistributionSummary, config *cftypes.DistributionConfig, region string) types.Resource {
	enabled := awssdk.ToBool(config.Enabled)
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	priceClass := string(config.PriceClass)

	info := map[string]any{
		"domain_name":     awssdk.ToString(summary.DomainName),
		"price_class":     priceClass,
		"http_version":    string(config.HttpVersion),
		"is_ipv6_enabled": awssdk.ToBool(config.IsIPV6Enabled),
		"comment":         awssdk.ToString(config.Comment),
	}
	if config.Aliases != nil {
		info["aliases"] = config.Aliases.Items
	}
	if config.Origins != nil {
		info["origin_count"] = int(awssdk.ToInt32(config.Origins.Quantity))
	}

	return types.Resource{
		ID:                   awssdk.ToString(summary.Id),
		Type:                 "distribution",
		Service:              "cloudfront",
		Region:               region,
		Name:                 awssdk.ToString(summary.DomainName),
		CreatedAt:            summary.LastModifiedTime,
		State:                state,
		EstimatedMonthlyCost: cost.CloudFrontDistribution(enabled, priceClass),
		AdditionalInfo:       info,
	}
}
