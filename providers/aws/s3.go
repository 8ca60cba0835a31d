package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/yairfalse/kartta/cost"
	"github.com/yairfalse/kartta/types"
)

// S3Scanner enumerates buckets. S3 is a global service: the bucket list
// is account-wide, so the scanner runs once against the global
// pseudo-region and records each bucket's home region as detail.
type S3Scanner struct {
	client S3API
}

// NewS3Scanner builds the scanner from a single global client.
func NewS3Scanner(client S3API) *S3Scanner {
	return &S3Scanner{client: client}
}

func (s *S3Scanner) Service() string { return "s3" }
func (s *S3Scanner) Global() bool    { return true }

// ScanRegion lists every bucket in the account. region is always the
// global pseudo-region.
func (s *S3Scanner) ScanRegion(ctx context.Context, region string) ([]types.Resource, error) {
	output, err := s.client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}

	var resources []types.Resource
	for _, bucket := range output.Buckets {
		name := awssdk.ToString(bucket.Name)

		info := map[string]any{}
		// Location is best effort: a bucket we cannot query still counts.
		if loc, err := s.client.GetBucketLocation(ctx, &s3.GetBucketLocationInput{
			Bucket: bucket.Name,
		}); err == nil {
			bucketRegion := string(loc.LocationConstraint)
			if bucketRegion == "" {
				bucketRegion = "us-east-1"
			}
			info["bucket_region"] = bucketRegion
		}

		resources = append(resources, types.Resource{
			ID:                   name,
			Type:                 "bucket",
			Service:              "s3",
			Region:               region,
			Name:                 name,
			CreatedAt:            bucket.CreationDate,
			State:                "active",
			EstimatedMonthlyCost: cost.S3Bucket(),
			AdditionalInfo:       info,
		})
	}

	return resources, nil
}
