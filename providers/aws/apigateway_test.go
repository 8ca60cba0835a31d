package aws

import (
	"context"
	"errors"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigateway"
	agwtypes "github.com/aws/aws-sdk-go-v2/service/apigateway/types"
	"github.com/aws/aws-sdk-go-v2/service/apigatewayv2"
	agwv2types "github.com/aws/aws-sdk-go-v2/service/apigatewayv2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPIGateway struct {
	apis      []agwtypes.RestApi
	stages    map[string][]agwtypes.Stage
	stagesErr map[string]error
}

func (f *fakeAPIGateway) GetRestApis(context.Context, *apigateway.GetRestApisInput, ...func(*apigateway.Options)) (*apigateway.GetRestApisOutput, error) {
	return &apigateway.GetRestApisOutput{Items: f.apis}, nil
}

func (f *fakeAPIGateway) GetStages(_ context.Context, params *apigateway.GetStagesInput, _ ...func(*apigateway.Options)) (*apigateway.GetStagesOutput, error) {
	id := awssdk.ToString(params.RestApiId)
	if err := f.stagesErr[id]; err != nil {
		return nil, err
	}
	return &apigateway.GetStagesOutput{Item: f.stages[id]}, nil
}

type fakeAPIGatewayV2 struct {
	apis   []agwv2types.Api
	stages map[string][]agwv2types.Stage
}

func (f *fakeAPIGatewayV2) GetApis(context.Context, *apigatewayv2.GetApisInput, ...func(*apigatewayv2.Options)) (*apigatewayv2.GetApisOutput, error) {
	return &apigatewayv2.GetApisOutput{Items: f.apis}, nil
}

func (f *fakeAPIGatewayV2) GetStages(_ context.Context, params *apigatewayv2.GetStagesInput, _ ...func(*apigatewayv2.Options)) (*apigatewayv2.GetStagesOutput, error) {
	return &apigatewayv2.GetStagesOutput{Items: f.stages[awssdk.ToString(params.ApiId)]}, nil
}

func newAPIGatewayScanner(v1 *fakeAPIGateway, v2 *fakeAPIGatewayV2) *APIGatewayScanner {
	return NewAPIGatewayScanner(
		func(string) APIGatewayAPI { return v1 },
		func(string) APIGatewayV2API { return v2 },
	)
}

func TestAPIGatewayScanner_RestAPIWithCache(t *testing.T) {
	fake := &fakeAPIGateway{
		apis: []agwtypes.RestApi{
			{Id: awssdk.String("rest1"), Name: awssdk.String("orders")},
		},
		stages: map[string][]agwtypes.Stage{
			"rest1": {
				{StageName: awssdk.String("prod"), CacheClusterEnabled: true, CacheClusterSize: agwtypes.CacheClusterSize("0.5")},
				{StageName: awssdk.String("dev")},
			},
		},
	}

	resources, err := newAPIGatewayScanner(fake, &fakeAPIGatewayV2{}).ScanRegion(context.Background(), "us-east-1")
	require.NoError(t, err)
	require.Len(t, resources, 1)

	assert.Equal(t, "rest_api", resources[0].Type)
	assert.Equal(t, "orders", resources[0].Name)
	assert.InDelta(t, 41.50, resources[0].EstimatedMonthlyCost, 0.001, "base plus one 0.5GB cache")
	assert.Equal(t, 2, resources[0].AdditionalInfo["stage_count"])
	assert.Equal(t, true, resources[0].AdditionalInfo["cache_enabled"])
}

func TestAPIGatewayScanner_StageFailureTolerated(t *testing.T) {
	fake := &fakeAPIGateway{
		apis:      []agwtypes.RestApi{{Id: awssdk.String("opaque"), Name: awssdk.String("legacy")}},
		stagesErr: map[string]error{"opaque": errors.New("denied")},
	}

	resources, err := newAPIGatewayScanner(fake, &fakeAPIGatewayV2{}).ScanRegion(context.Background(), "us-east-1")
	require.NoError(t, err)
	require.Len(t, resources, 1)
	assert.InDelta(t, 3.50, resources[0].EstimatedMonthlyCost, 0.001, "cache unknown, base rate only")
	assert.Equal(t, 0, resources[0].AdditionalInfo["stage_count"])
}

func TestAPIGatewayScanner_V2Protocols(t *testing.T) {
	v2 := &fakeAPIGatewayV2{
		apis: []agwv2types.Api{
			{
				ApiId:        awssdk.String("http1"),
				Name:         awssdk.String("webhooks"),
				ProtocolType: agwv2types.ProtocolTypeHttp,
			},
			{
				ApiId:        awssdk.String("ws1"),
				Name:         awssdk.String("live-feed"),
				ProtocolType: agwv2types.ProtocolTypeWebsocket,
			},
		},
		stages: map[string][]agwv2types.Stage{
			"http1": {{StageName: awssdk.String("$default")}},
		},
	}

	resources, err := newAPIGatewayScanner(&fakeAPIGateway{}, v2).ScanRegion(context.Background(), "eu-west-1")
	require.NoError(t, err)
	require.Len(t, resources, 2)

	assert.Equal(t, "http_api", resources[0].Type)
	assert.InDelta(t, 1.00, resources[0].EstimatedMonthlyCost, 0.001)
	assert.Equal(t, 1, resources[0].AdditionalInfo["stage_count"])

	assert.Equal(t, "websocket_api", resources[1].Type)
	assert.InDelta(t, 1.045, resources[1].EstimatedMonthlyCost, 0.001)
}
