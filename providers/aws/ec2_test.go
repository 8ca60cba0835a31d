package aws

import (
	"context"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/kartta/types"
)

// fakeEC2 serves scripted responses, with one page split to exercise
// pagination.
type fakeEC2 struct {
	instances    []ec2types.Instance
	volumes      []ec2types.Volume
	snapshots    []ec2types.Snapshot
	addresses    []ec2types.Address
	natGateways  []ec2types.NatGateway
	instancePage int
}

func (f *fakeEC2) DescribeInstances(_ context.Context, params *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	// Two pages: first instance, then the rest.
	if params.NextToken == nil && len(f.instances) > 1 {
		f.instancePage++
		return &ec2.DescribeInstancesOutput{
			Reservations: []ec2types.Reservation{{Instances: f.instances[:1]}},
			NextToken:    awssdk.String("page2"),
		}, nil
	}
	rest := f.instances
	if params.NextToken != nil {
		rest = f.instances[1:]
	}
	return &ec2.DescribeInstancesOutput{
		Reservations: []ec2types.Reservation{{Instances: rest}},
	}, nil
}

func (f *fakeEC2) DescribeVolumes(context.Context, *ec2.DescribeVolumesInput, ...func(*ec2.Options)) (*ec2.DescribeVolumesOutput, error) {
	return &ec2.DescribeVolumesOutput{Volumes: f.volumes}, nil
}

func (f *fakeEC2) DescribeSnapshots(_ context.Context, params *ec2.DescribeSnapshotsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSnapshotsOutput, error) {
	if len(params.OwnerIds) != 1 || params.OwnerIds[0] != "self" {
		return &ec2.DescribeSnapshotsOutput{}, nil
	}
	return &ec2.DescribeSnapshotsOutput{Snapshots: f.snapshots}, nil
}

func (f *fakeEC2) DescribeAddresses(context.Context, *ec2.DescribeAddressesInput, ...func(*ec2.Options)) (*ec2.DescribeAddressesOutput, error) {
	return &ec2.DescribeAddressesOutput{Addresses: f.addresses}, nil
}

func (f *fakeEC2) DescribeNatGateways(context.Context, *ec2.DescribeNatGatewaysInput, ...func(*ec2.Options)) (*ec2.DescribeNatGatewaysOutput, error) {
	return &ec2.DescribeNatGatewaysOutput{NatGateways: f.natGateways}, nil
}

func (f *fakeEC2) DescribeRegions(context.Context, *ec2.DescribeRegionsInput, ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error) {
	return &ec2.DescribeRegionsOutput{}, nil
}

func instance(id, instanceType string, state ec2types.InstanceStateName) ec2types.Instance {
	return ec2types.Instance{
		InstanceId:   awssdk.String(id),
		InstanceType: ec2types.InstanceType(instanceType),
		State:        &ec2types.InstanceState{Name: state},
		Tags: []ec2types.Tag{
			{Key: awssdk.String("Name"), Value: awssdk.String("named-" + id)},
		},
	}
}

func TestEC2Scanner_Instances(t *testing.T) {
	fake := &fakeEC2{
		instances: []ec2types.Instance{
			instance("i-run", "t3.micro", ec2types.InstanceStateNameRunning),
			instance("i-stop", "t3.micro", ec2types.InstanceStateNameStopped),
			instance("i-term", "t3.micro", ec2types.InstanceStateNameTerminated),
		},
	}
	scanner := NewEC2Scanner(func(string) EC2API { return fake })

	resources, err := scanner.ScanRegion(context.Background(), "us-east-1")
	require.NoError(t, err)

	byID := map[string]types.Resource{}
	for _, r := range resources {
		byID[r.ID] = r
	}

	require.Contains(t, byID, "i-run")
	require.Contains(t, byID, "i-stop")
	assert.NotContains(t, byID, "i-term", "terminated instances are skipped")
	assert.GreaterOrEqual(t, fake.instancePage, 1, "pagination followed")

	running := byID["i-run"]
	assert.Equal(t, "instance", running.Type)
	assert.Equal(t, "ec2", running.Service)
	assert.Equal(t, "us-east-1", running.Region)
	assert.Equal(t, "named-i-run", running.Name)
	assert.InDelta(t, 7.50, running.EstimatedMonthlyCost, 0.001)

	assert.Zero(t, byID["i-stop"].EstimatedMonthlyCost, "stopped instances cost nothing")
}

func TestEC2Scanner_VolumesSnapshotsAddresses(t *testing.T) {
	fake := &fakeEC2{
		volumes: []ec2types.Volume{
			{
				VolumeId:   awssdk.String("vol-1"),
				VolumeType: ec2types.VolumeTypeGp3,
				Size:       awssdk.Int32(100),
				State:      ec2types.VolumeStateInUse,
			},
			{
				VolumeId: awssdk.String("vol-gone"),
				State:    ec2types.VolumeStateDeleted,
			},
		},
		snapshots: []ec2types.Snapshot{
			{
				SnapshotId: awssdk.String("snap-1"),
				VolumeSize: awssdk.Int32(40),
				State:      ec2types.SnapshotStateCompleted,
			},
		},
		addresses: []ec2types.Address{
			{
				AllocationId: awssdk.String("eip-idle"),
				PublicIp:     awssdk.String("3.3.3.3"),
			},
			{
				AllocationId:  awssdk.String("eip-used"),
				PublicIp:      awssdk.String("4.4.4.4"),
				AssociationId: awssdk.String("assoc-1"),
			},
		},
		natGateways: []ec2types.NatGateway{
			{
				NatGatewayId: awssdk.String("nat-1"),
				State:        ec2types.NatGatewayStateAvailable,
			},
		},
	}
	scanner := NewEC2Scanner(func(string) EC2API { return fake })

	resources, err := scanner.ScanRegion(context.Background(), "eu-west-1")
	require.NoError(t, err)

	byID := map[string]types.Resource{}
	for _, r := range resources {
		byID[r.ID] = r
	}

	assert.NotContains(t, byID, "vol-gone", "deleted volumes are skipped")
	assert.InDelta(t, 8.0, byID["vol-1"].EstimatedMonthlyCost, 0.001)
	assert.InDelta(t, 2.0, byID["snap-1"].EstimatedMonthlyCost, 0.001)
	assert.InDelta(t, 3.60, byID["eip-idle"].EstimatedMonthlyCost, 0.001)
	assert.Zero(t, byID["eip-used"].EstimatedMonthlyCost)
	assert.Equal(t, "attached", byID["eip-used"].State)
	assert.InDelta(t, 45.0, byID["nat-1"].EstimatedMonthlyCost, 0.001)
}
