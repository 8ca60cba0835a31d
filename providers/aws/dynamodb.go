package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/yairfalse/kartta/cost"
	"github.com/yairfalse/kartta/types"
)

// DynamoDBScanner enumerates tables in one region.
type DynamoDBScanner struct {
	client func(region string) DynamoDBAPI
}

// NewDynamoDBScanner builds the scanner from a per-region client factory.
func NewDynamoDBScanner(client func(region string) DynamoDBAPI) *DynamoDBScanner {
	return &DynamoDBScanner{client: client}
}

func (s *DynamoDBScanner) Service() string { return "dynamodb" }
func (s *DynamoDBScanner) Global() bool    { return false }

// ScanRegion lists tables and describes each for capacity and size.
func (s *DynamoDBScanner) ScanRegion(ctx context.Context, region string) ([]types.Resource, error) {
	client := s.client(region)
	var resources []types.Resource
	var lastTable *string

	for {
		output, err := client.ListTables(ctx, &dynamodb.ListTablesInput{ExclusiveStartTableName: lastTable})
		if err != nil {
			return nil, fmt.Errorf("list tables: %w", err)
		}

		for _, tableName := range output.TableNames {
			desc, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
				TableName: awssdk.String(tableName),
			})
			if err != nil {
				// A table deleted mid-scan is not worth failing the region.
				continue
			}
			resources = append(resources, convertTable(desc.Table, region))
		}

		if output.LastEvaluatedTableName == nil {
			break
		}
		lastTable = output.LastEvaluatedTableName
	}

	return resources, nil
}

func convertTable(table *ddbtypes.TableDescription, region string) types.Resource {
	billingMode := string(ddbtypes.BillingModeProvisioned)
	if table.BillingModeSummary != nil {
		billingMode = string(table.BillingModeSummary.BillingMode)
	}

	var readUnits, writeUnits int64
	if table.ProvisionedThroughput != nil {
		readUnits = awssdk.ToInt64(table.ProvisionedThroughput.ReadCapacityUnits)
		writeUnits = awssdk.ToInt64(table.ProvisionedThroughput.WriteCapacityUnits)
	}
	sizeBytes := awssdk.ToInt64(table.TableSizeBytes)

	return types.Resource{
		ID:                   awssdk.ToString(table.TableArn),
		Type:                 "table",
		Service:              "dynamodb",
		Region:               region,
		Name:                 awssdk.ToString(table.TableName),
		CreatedAt:            table.CreationDateTime,
		State:                string(table.TableStatus),
		EstimatedMonthlyCost: cost.DynamoDBTable(billingMode, readUnits, writeUnits, sizeBytes),
		AdditionalInfo: map[string]any{
			"billing_mode": billingMode,
			"item_count":   awssdk.ToInt64(table.ItemCount),
			"size_bytes":   sizeBytes,
		},
	}
}
