package aws

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/yairfalse/kartta/cost"
	"github.com/yairfalse/kartta/types"
)

// SQSScanner enumerates queues in one region.
type SQSScanner struct {
	client func(region string) SQSAPI
}

// NewSQSScanner builds the scanner from a per-region client factory.
func NewSQSScanner(client func(region string) SQSAPI) *SQSScanner {
	return &SQSScanner{client: client}
}

func (s *SQSScanner) Service() string { return "sqs" }
func (s *SQSScanner) Global() bool    { return false }

// ScanRegion enumerates queues in the region.
func (s *SQSScanner) ScanRegion(ctx context.Context, region string) ([]types.Resource, error) {
	client := s.client(region)
	var resources []types.Resource
	var nextToken *string

	for {
		output, err := client.ListQueues(ctx, &sqs.ListQueuesInput{NextToken: nextToken})
		if err != nil {
			return nil, fmt.Errorf("list queues: %w", err)
		}

		for _, queueURL := range output.QueueUrls {
			resources = append(resources, types.Resource{
				ID:                   queueURL,
				Type:                 "queue",
				Service:              "sqs",
				Region:               region,
				Name:                 queueName(queueURL),
				State:                "active",
				EstimatedMonthlyCost: cost.SQSQueue(),
				AdditionalInfo: map[string]any{
					"url": queueURL,
				},
			})
		}

		if output.NextToken == nil {
			break
		}
		nextToken = output.NextToken
	}

	return resources, nil
}

// queueName extracts the queue name from its URL.
func queueName(queueURL string) string {
	if i := strings.LastIndexByte(queueURL, '/'); i >= 0 {
		return queueURL[i+1:]
	}
	return queueURL
}
