package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigateway"
	agwtypes "github.com/aws/aws-sdk-go-v2/service/apigateway/types"
	"github.com/aws/aws-sdk-go-v2/service/apigatewayv2"
	agwv2types "github.com/aws/aws-sdk-go-v2/service/apigatewayv2/types"

	"github.com/yairfalse/kartta/cost"
	"github.com/yairfalse/kartta/types"
)

// APIGatewayScanner enumerates REST APIs and v2 HTTP/WebSocket APIs in
// one region.
type APIGatewayScanner struct {
	client   func(region string) APIGatewayAPI
	v2Client func(region string) APIGatewayV2API
}

// NewAPIGatewayScanner builds the scanner from per-region client
// factories, one for each API Gateway generation.
func NewAPIGatewayScanner(client func(region string) APIGatewayAPI, v2Client func(region string) APIGatewayV2API) *APIGatewayScanner {
	return &APIGatewayScanner{client: client, v2Client: v2Client}
}

func (s *APIGatewayScanner) Service() string { return "apigateway" }
func (s *APIGatewayScanner) Global() bool    { return false }

// ScanRegion enumerates both API generations.
func (s *APIGatewayScanner) ScanRegion(ctx context.Context, region string) ([]types.Resource, error) {
	resources, err := s.scanRestAPIs(ctx, s.client(region), region)
	if err != nil {
		return nil, err
	}

	v2, err := s.scanV2APIs(ctx, s.v2Client(region), region)
	if err != nil {
		return nil, err
	}
	return append(resources, v2...), nil
}

func (s *APIGatewayScanner) scanRestAPIs(ctx context.Context, client APIGatewayAPI, region string) ([]types.Resource, error) {
	var resources []types.Resource
	var position *string

	for {
		output, err := client.GetRestApis(ctx, &apigateway.GetRestApisInput{Position: position})
		if err != nil {
			return nil, fmt.Errorf("get rest apis: %w", err)
		}

		for _, api := range output.Items {
			// Stage info is decoration: an API whose stages cannot be
			// read still gets inventoried, cache costs unknown.
			var stages []agwtypes.Stage
			if stagesOutput, err := client.GetStages(ctx, &apigateway.GetStagesInput{
				RestApiId: api.Id,
			}); err == nil {
				stages = stagesOutput.Item
			}
			resources = append(resources, convertRestAPI(api, stages, region))
		}

		if output.Position == nil {
			break
		}
		position = output.Position
	}

	return resources, nil
}

func convertRestAPI(api agwtypes.RestApi, stages []agwtypes.Stage, region string) types.Resource {
	var cacheSizes []string
	cacheEnabled := false
	for _, stage := range stages {
		if stage.CacheClusterEnabled {
			cacheEnabled = true
			cacheSizes = append(cacheSizes, string(stage.CacheClusterSize))
		}
	}

	var endpointTypes []string
	if api.EndpointConfiguration != nil {
		for _, t := range api.EndpointConfiguration.Types {
			endpointTypes = append(endpointTypes, string(t))
		}
	}

	name := api.Tags["Name"]
	if name == "" {
		name = awssdk.ToString(api.Name)
	}

	return types.Resource{
		ID:                   awssdk.ToString(api.Id),
		Type:                 "rest_api",
		Service:              "apigateway",
		Region:               region,
		Name:                 name,
		CreatedAt:            api.CreatedDate,
		State:                "available",
		EstimatedMonthlyCost: cost.RESTAPI(cacheSizes),
		AdditionalInfo: map[string]any{
			"api_name":       awssdk.ToString(api.Name),
			"description":    awssdk.ToString(api.Description),
			"endpoint_types": endpointTypes,
			"stage_count":    len(stages),
			"cache_enabled":  cacheEnabled,
		},
	}
}

func (s *APIGatewayScanner) scanV2APIs(ctx context.Context, client APIGatewayV2API, region string) ([]types.Resource, error) {
	var resources []types.Resource
	var nextToken *string

	for {
		output, err := client.GetApis(ctx, &apigatewayv2.GetApisInput{NextToken: nextToken})
		if err != nil {
			return nil, fmt.Errorf("get apis: %w", err)
		}

		for _, api := range output.Items {
			stageCount := 0
			if stagesOutput, err := client.GetStages(ctx, &apigatewayv2.GetStagesInput{
				ApiId: api.ApiId,
			}); err == nil {
				stageCount = len(stagesOutput.Items)
			}
			resources = append(resources, convertV2API(api, stageCount, region))
		}

		if output.NextToken == nil {
			break
		}
		nextToken = output.NextToken
	}

	return resources, nil
}

func convertV2API(api agwv2types.Api, stageCount int, region string) types.Resource {
	protocolType := string(api.ProtocolType)

	resourceType := "http_api"
	if protocolType == "WEBSOCKET" {
		resourceType = "websocket_api"
	}

	name := api.Tags["Name"]
	if name == "" {
		name = awssdk.ToString(api.Name)
	}

	return types.Resource{
		ID:                   awssdk.ToString(api.ApiId),
		Type:                 resourceType,
		Service:              "apigateway",
		Region:               region,
		Name:                 name,
		CreatedAt:            api.CreatedDate,
		State:                "available",
		EstimatedMonthlyCost: cost.HTTPAPI(protocolType),
		AdditionalInfo: map[string]any{
			"api_name":      awssdk.ToString(api.Name),
			"protocol_type": protocolType,
			"api_endpoint":  awssdk.ToString(api.ApiEndpoint),
			"stage_count":   stageCount,
		},
	}
}
