package aws

import (
	"context"
	"errors"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/kartta/types"
)

type fakeCloudFront struct {
	summaries []cftypes.DistributionSummary
	configs   map[string]*cftypes.DistributionConfig
	getErr    map[string]error
}

func (f *fakeCloudFront) ListDistributions(context.Context, *cloudfront.ListDistributionsInput, ...func(*cloudfront.Options)) (*cloudfront.ListDistributionsOutput, error) {
	return &cloudfront.ListDistributionsOutput{
		DistributionList: &cftypes.DistributionList{
			Items:       f.summaries,
			IsTruncated: awssdk.Bool(false),
		},
	}, nil
}

func (f *fakeCloudFront) GetDistribution(_ context.Context, params *cloudfront.GetDistributionInput, _ ...func(*cloudfront.Options)) (*cloudfront.GetDistributionOutput, error) {
	id := awssdk.ToString(params.Id)
	if err := f.getErr[id]; err != nil {
		return nil, err
	}
	return &cloudfront.GetDistributionOutput{
		Distribution: &cftypes.Distribution{
			Id:                 params.Id,
			DistributionConfig: f.configs[id],
		},
	}, nil
}

func TestCloudFrontScanner_Global(t *testing.T) {
	fake := &fakeCloudFront{
		summaries: []cftypes.DistributionSummary{
			{Id: awssdk.String("E1"), DomainName: awssdk.String("d1.cloudfront.net")},
			{Id: awssdk.String("E2"), DomainName: awssdk.String("d2.cloudfront.net")},
		},
		configs: map[string]*cftypes.DistributionConfig{
			"E1": {
				Enabled:    awssdk.Bool(true),
				PriceClass: cftypes.PriceClassPriceClassAll,
				Comment:    awssdk.String("static assets"),
			},
			"E2": {
				Enabled:    awssdk.Bool(false),
				PriceClass: cftypes.PriceClassPriceClass100,
			},
		},
	}
	scanner := NewCloudFrontScanner(fake)

	assert.True(t, scanner.Global())

	resources, err := scanner.ScanRegion(context.Background(), types.GlobalRegion)
	require.NoError(t, err)
	require.Len(t, resources, 2)

	assert.Equal(t, "distribution", resources[0].Type)
	assert.Equal(t, types.GlobalRegion, resources[0].Region)
	assert.Equal(t, "enabled", resources[0].State)
	assert.InDelta(t, 20.0, resources[0].EstimatedMonthlyCost, 0.001, "all edge locations")
	assert.Equal(t, "static assets", resources[0].AdditionalInfo["comment"])

	assert.Equal(t, "disabled", resources[1].State)
	assert.Zero(t, resources[1].EstimatedMonthlyCost)
}

func TestCloudFrontScanner_ConfigFailureSkipsDistribution(t *testing.T) {
	fake := &fakeCloudFront{
		summaries: []cftypes.DistributionSummary{
			{Id: awssdk.String("good"), DomainName: awssdk.String("ok.cloudfront.net")},
			{Id: awssdk.String("bad"), DomainName: awssdk.String("no.cloudfront.net")},
		},
		configs: map[string]*cftypes.DistributionConfig{
			"good": {Enabled: awssdk.Bool(true), PriceClass: cftypes.PriceClassPriceClass200},
		},
		getErr: map[string]error{"bad": errors.New("denied")},
	}

	resources, err := NewCloudFrontScanner(fake).ScanRegion(context.Background(), types.GlobalRegion)
	require.NoError(t, err)
	require.Len(t, resources, 1)
	assert.Equal(t, "good", resources[0].ID)
	assert.InDelta(t, 15.0, resources[0].EstimatedMonthlyCost, 0.001)
}
