package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/yairfalse/kartta/cost"
	"github.com/yairfalse/kartta/types"
)

// EC2Scanner enumerates instances, EBS volumes, snapshots, Elastic IPs
// and NAT gateways in one region.
type EC2Scanner struct {
	client func(region string) EC2API
}

// NewEC2Scanner builds the scanner from a per-region client factory.
func NewEC2Scanner(client func(region string) EC2API) *EC2Scanner {
	return &EC2Scanner{client: client}
}

func (s *EC2Scanner) Service() string { return "ec2" }
func (s *EC2Scanner) Global() bool    { return false }

// ScanRegion enumerates every EC2 resource kind in the region.
func (s *EC2Scanner) ScanRegion(ctx context.Context, region string) ([]types.Resource, error) {
	client := s.client(region)
	var resources []types.Resource

	steps := []func(context.Context, EC2API, string) ([]types.Resource, error){
		s.scanInstances,
		s.scanVolumes,
		s.scanSnapshots,
		s.scanElasticIPs,
		s.scanNATGateways,
	}
	for _, step := range steps {
		found, err := step(ctx, client, region)
		if err != nil {
			return nil, err
		}
		resources = append(resources, found...)
	}
	return resources, nil
}

func (s *EC2Scanner) scanInstances(ctx context.Context, client EC2API, region string) ([]types.Resource, error) {
	var resources []types.Resource
	var nextToken *string

	for {
		output, err := client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{NextToken: nextToken})
		if err != nil {
			return nil, fmt.Errorf("describe instances: %w", err)
		}

		for _, reservation := range output.Reservations {
			for _, instance := range reservation.Instances {
				if instance.State != nil && instance.State.Name == ec2types.InstanceStateNameTerminated {
					continue
				}
				resources = append(resources, convertInstance(instance, region))
			}
		}

		if output.NextToken == nil {
			break
		}
		nextToken = output.NextToken
	}

	return resources, nil
}

func convertInstance(instance ec2types.Instance, region string) types.Resource {
	instanceType := string(instance.InstanceType)
	state := "unknown"
	if instance.State != nil {
		state = string(instance.State.Name)
	}

	info := map[string]any{
		"instance_type": instanceType,
		"private_ip":    awssdk.ToString(instance.PrivateIpAddress),
		"vpc_id":        awssdk.ToString(instance.VpcId),
		"subnet_id":     awssdk.ToString(instance.SubnetId),
	}
	if instance.PublicIpAddress != nil {
		info["public_ip"] = awssdk.ToString(instance.PublicIpAddress)
	}
	if instance.Placement != nil {
		info["availability_zone"] = awssdk.ToString(instance.Placement.AvailabilityZone)
	}

	return types.Resource{
		ID:                   awssdk.ToString(instance.InstanceId),
		Type:                 "instance",
		Service:              "ec2",
		Region:               region,
		Name:                 nameTag(instance.Tags),
		CreatedAt:            instance.LaunchTime,
		State:                state,
		EstimatedMonthlyCost: cost.Instance(instanceType, state),
		AdditionalInfo:       info,
	}
}

func (s *EC2Scanner) scanVolumes(ctx context.Context, client EC2API, region string) ([]types.Resource, error) {
	var resources []types.Resource
	var nextToken *string

	for {
		output, err := client.DescribeVolumes(ctx, &ec2.DescribeVolumesInput{NextToken: nextToken})
		if err != nil {
			return nil, fmt.Errorf("describe volumes: %w", err)
		}

		for _, volume := range output.Volumes {
			if volume.State == ec2types.VolumeStateDeleted {
				continue
			}
			resources = append(resources, convertVolume(volume, region))
		}

		if output.NextToken == nil {
			break
		}
		nextToken = output.NextToken
	}

	return resources, nil
}

func convertVolume(volume ec2types.Volume, region string) types.Resource {
	volumeType := string(volume.VolumeType)
	sizeGB := int(awssdk.ToInt32(volume.Size))

	return types.Resource{
		ID:                   awssdk.ToString(volume.VolumeId),
		Type:                 "ebs_volume",
		Service:              "ec2",
		Region:               region,
		Name:                 nameTag(volume.Tags),
		CreatedAt:            volume.CreateTime,
		State:                string(volume.State),
		EstimatedMonthlyCost: cost.EBSVolume(volumeType, sizeGB),
		AdditionalInfo: map[string]any{
			"volume_type": volumeType,
			"size_gb":     sizeGB,
			"encrypted":   awssdk.ToBool(volume.Encrypted),
			"attachments": len(volume.Attachments),
		},
	}
}

func (s *EC2Scanner) scanSnapshots(ctx context.Context, client EC2API, region string) ([]types.Resource, error) {
	var resources []types.Resource
	var nextToken *string

	for {
		output, err := client.DescribeSnapshots(ctx, &ec2.DescribeSnapshotsInput{
			OwnerIds:  []string{"self"},
			NextToken: nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("describe snapshots: %w", err)
		}

		for _, snapshot := range output.Snapshots {
			resources = append(resources, convertSnapshot(snapshot, region))
		}

		if output.NextToken == nil {
			break
		}
		nextToken = output.NextToken
	}

	return resources, nil
}

func convertSnapshot(snapshot ec2types.Snapshot, region string) types.Resource {
	sizeGB := int(awssdk.ToInt32(snapshot.VolumeSize))

	name := nameTag(snapshot.Tags)
	if name == "" {
		name = awssdk.ToString(snapshot.Description)
	}

	return types.Resource{
		ID:                   awssdk.ToString(snapshot.SnapshotId),
		Type:                 "snapshot",
		Service:              "ec2",
		Region:               region,
		Name:                 name,
		CreatedAt:            snapshot.StartTime,
		State:                string(snapshot.State),
		EstimatedMonthlyCost: cost.Snapshot(sizeGB),
		AdditionalInfo: map[string]any{
			"volume_size_gb": sizeGB,
			"encrypted":      awssdk.ToBool(snapshot.Encrypted),
		},
	}
}

func (s *EC2Scanner) scanElasticIPs(ctx context.Context, client EC2API, region string) ([]types.Resource, error) {
	// DescribeAddresses is not paginated.
	output, err := client.DescribeAddresses(ctx, &ec2.DescribeAddressesInput{})
	if err != nil {
		return nil, fmt.Errorf("describe addresses: %w", err)
	}

	var resources []types.Resource
	for _, addr := range output.Addresses {
		resources = append(resources, convertElasticIP(addr, region))
	}
	return resources, nil
}

func convertElasticIP(addr ec2types.Address, region string) types.Resource {
	attached := addr.AssociationId != nil
	state := "unattached"
	if attached {
		state = "attached"
	}

	return types.Resource{
		ID:                   awssdk.ToString(addr.AllocationId),
		Type:                 "elastic_ip",
		Service:              "ec2",
		Region:               region,
		Name:                 awssdk.ToString(addr.PublicIp),
		State:                state,
		EstimatedMonthlyCost: cost.ElasticIP(attached),
		AdditionalInfo: map[string]any{
			"public_ip":   awssdk.ToString(addr.PublicIp),
			"instance_id": awssdk.ToString(addr.InstanceId),
		},
	}
}

func (s *EC2Scanner) scanNATGateways(ctx context.Context, client EC2API, region string) ([]types.Resource, error) {
	var resources []types.Resource
	var nextToken *string

	for {
		output, err := client.DescribeNatGateways(ctx, &ec2.DescribeNatGatewaysInput{NextToken: nextToken})
		if err != nil {
			return nil, fmt.Errorf("describe nat gateways: %w", err)
		}

		for _, nat := range output.NatGateways {
			if nat.State == ec2types.NatGatewayStateDeleted {
				continue
			}
			resources = append(resources, convertNATGateway(nat, region))
		}

		if output.NextToken == nil {
			break
		}
		nextToken = output.NextToken
	}

	return resources, nil
}

func convertNATGateway(nat ec2types.NatGateway, region string) types.Resource {
	state := string(nat.State)

	return types.Resource{
		ID:                   awssdk.ToString(nat.NatGatewayId),
		Type:                 "nat_gateway",
		Service:              "ec2",
		Region:               region,
		Name:                 nameTag(nat.Tags),
		CreatedAt:            nat.CreateTime,
		State:                state,
		EstimatedMonthlyCost: cost.NATGateway(state),
		AdditionalInfo: map[string]any{
			"vpc_id":    awssdk.ToString(nat.VpcId),
			"subnet_id": awssdk.ToString(nat.SubnetId),
		},
	}
}

// nameTag extracts the Name tag from EC2 tags.
func nameTag(tags []ec2types.Tag) string {
	for _, tag := range tags {
		if awssdk.ToString(tag.Key) == "Name" {
			return awssdk.ToString(tag.Value)
		}
	}
	return ""
}
