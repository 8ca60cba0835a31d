package aws

import (
	"context"
	"fmt"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"

	"github.com/yairfalse/kartta/cost"
	"github.com/yairfalse/kartta/types"
)

// LambdaScanner enumerates functions in one region.
type LambdaScanner struct {
	client func(region string) LambdaAPI
}

// NewLambdaScanner builds the scanner from a per-region client factory.
func NewLambdaScanner(client func(region string) LambdaAPI) *LambdaScanner {
	return &LambdaScanner{client: client}
}

func (s *LambdaScanner) Service() string { return "lambda" }
func (s *LambdaScanner) Global() bool    { return false }

// ScanRegion enumerates functions in the region.
func (s *LambdaScanner) ScanRegion(ctx context.Context, region string) ([]types.Resource, error) {
	client := s.client(region)
	var resources []types.Resource
	var marker *string

	for {
		output, err := client.ListFunctions(ctx, &lambda.ListFunctionsInput{Marker: marker})
		if err != nil {
			return nil, fmt.Errorf("list functions: %w", err)
		}

		for _, fn := range output.Functions {
			memoryMB := int(awssdk.ToInt32(fn.MemorySize))

			var createdAt *time.Time
			// LastModified is an ISO8601 string in the Lambda API.
			if ts, err := time.Parse("2006-01-02T15:04:05.000-0700", awssdk.ToString(fn.LastModified)); err == nil {
				createdAt = &ts
			}

			resources = append(resources, types.Resource{
				ID:                   awssdk.ToString(fn.FunctionArn),
				Type:                 "function",
				Service:              "lambda",
				Region:               region,
				Name:                 awssdk.ToString(fn.FunctionName),
				CreatedAt:            createdAt,
				State:                string(fn.State),
				EstimatedMonthlyCost: cost.Lambda(memoryMB),
				AdditionalInfo: map[string]any{
					"runtime":     string(fn.Runtime),
					"memory_mb":   memoryMB,
					"timeout_sec": int(awssdk.ToInt32(fn.Timeout)),
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
