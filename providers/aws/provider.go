// Package aws implements the AWS provider for kartta.
package aws

import (
	"context"
	"fmt"
	"sort"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/apigateway"
	"github.com/aws/aws-sdk-go-v2/service/apigatewayv2"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/directconnect"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/yairfalse/kartta/providers"
	"github.com/yairfalse/kartta/scan"
)

func init() {
	providers.RegisterProvider("aws", func(ctx context.Context) (providers.CloudProvider, error) {
		return New(ctx)
	})
}

// Provider holds the shared AWS configuration. Regional clients are
// built per region at scan time, since SDK clients are region-bound.
type Provider struct {
	cfg awssdk.Config
}

// New loads the default credential chain.
func New(ctx context.Context) (*Provider, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Provider{cfg: cfg}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "aws"
}

// ListRegions enumerates the regions enabled for the account.
func (p *Provider) ListRegions(ctx context.Context) ([]string, error) {
	client := ec2.NewFromConfig(p.cfg, func(o *ec2.Options) {
		o.Region = "us-east-1"
	})

	output, err := client.DescribeRegions(ctx, &ec2.DescribeRegionsInput{})
	if err != nil {
		return nil, fmt.Errorf("describe regions: %w", err)
	}

	regions := make([]string, 0, len(output.Regions))
	for _, r := range output.Regions {
		regions = append(regions, awssdk.ToString(r.RegionName))
	}
	sort.Strings(regions)
	return regions, nil
}

// Scanners returns one RegionScanner per supported service.
func (p *Provider) Scanners() []scan.RegionScanner {
	return []scan.RegionScanner{
		NewEC2Scanner(p.ec2Client),
		NewS3Scanner(s3.NewFromConfig(p.cfg, func(o *s3.Options) { o.Region = "us-east-1" })),
		NewRDSScanner(func(region string) RDSAPI {
			return rds.NewFromConfig(p.cfg, func(o *rds.Options) { o.Region = region })
		}),
		NewLambdaScanner(func(region string) LambdaAPI {
			return lambda.NewFromConfig(p.cfg, func(o *lambda.Options) { o.Region = region })
		}),
		NewDynamoDBScanner(func(region string) DynamoDBAPI {
			return dynamodb.NewFromConfig(p.cfg, func(o *dynamodb.Options) { o.Region = region })
		}),
		NewELBScanner(func(region string) ELBAPI {
			return elasticloadbalancingv2.NewFromConfig(p.cfg, func(o *elasticloadbalancingv2.Options) { o.Region = region })
		}),
		NewSQSScanner(func(region string) SQSAPI {
			return sqs.NewFromConfig(p.cfg, func(o *sqs.Options) { o.Region = region })
		}),
		NewEKSScanner(func(region string) EKSAPI {
			return eks.NewFromConfig(p.cfg, func(o *eks.Options) { o.Region = region })
		}),
		NewECSScanner(func(region string) ECSAPI {
			return ecs.NewFromConfig(p.cfg, func(o *ecs.Options) { o.Region = region })
		}),
		NewVPCScanner(
			func(region string) VPCAPI {
				return ec2.NewFromConfig(p.cfg, func(o *ec2.Options) { o.Region = region })
			},
			func(region string) DirectConnectAPI {
				return directconnect.NewFromConfig(p.cfg, func(o *directconnect.Options) { o.Region = region })
			},
		),
		NewAPIGatewayScanner(
			func(region string) APIGatewayAPI {
				return apigateway.NewFromConfig(p.cfg, func(o *apigateway.Options) { o.Region = region })
			},
			func(region string) APIGatewayV2API {
				return apigatewayv2.NewFromConfig(p.cfg, func(o *apigatewayv2.Options) { o.Region = region })
			},
		),
		NewRoute53Scanner(route53.NewFromConfig(p.cfg, func(o *route53.Options) { o.Region = "us-east-1" })),
		NewCloudFrontScanner(cloudfront.NewFromConfig(p.cfg, func(o *cloudfront.Options) { o.Region = "us-east-1" })),
	}
}

func (p *Provider) ec2Client(region string) EC2API {
	return ec2.NewFromConfig(p.cfg, func(o *ec2.Options) { o.Region = region })
}
