package aws

import (
	"context"
	"fmt"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/directconnect"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/yairfalse/kartta/cost"
	"github.com/yairfalse/kartta/types"
)

// VPCScanner enumerates VPCs, transit gateways and their attachments,
// VPC endpoints, VPN connections and Direct Connect virtual interfaces
// in one region.
type VPCScanner struct {
	client   func(region string) VPCAPI
	dxClient func(region string) DirectConnectAPI
}

// NewVPCScanner builds the scanner from per-region client factories.
func NewVPCScanner(client func(region string) VPCAPI, dxClient func(region string) DirectConnectAPI) *VPCScanner {
	return &VPCScanner{client: client, dxClient: dxClient}
}

func (s *VPCScanner) Service() string { return "vpc" }
func (s *VPCScanner) Global() bool    { return false }

// ScanRegion enumerates every VPC networking resource kind in the region.
func (s *VPCScanner) ScanRegion(ctx context.Context, region string) ([]types.Resource, error) {
	client := s.client(region)
	var resources []types.Resource

	steps := []func(context.Context, VPCAPI, string) ([]types.Resource, error){
		s.scanVPCs,
		s.scanTransitGateways,
		s.scanTransitGatewayAttachments,
		s.scanEndpoints,
		s.scanVPNConnections,
	}
	for _, step := range steps {
		found, err := step(ctx, client, region)
		if err != nil {
			return nil, err
		}
		resources = append(resources, found...)
	}

	found, err := s.scanDirectConnect(ctx, s.dxClient(region), region)
	if err != nil {
		return nil, err
	}
	resources = append(resources, found...)

	return resources, nil
}

func (s *VPCScanner) scanVPCs(ctx context.Context, client VPCAPI, region string) ([]types.Resource, error) {
	var resources []types.Resource
	var nextToken *string

	for {
		output, err := client.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{NextToken: nextToken})
		if err != nil {
			return nil, fmt.Errorf("describe vpcs: %w", err)
		}

		for _, vpc := range output.Vpcs {
			// Default VPCs are account furniture, not something anyone
			// pays for or forgets about.
			if awssdk.ToBool(vpc.IsDefault) {
				continue
			}
			resources = append(resources, convertVPC(vpc, region))
		}

		if output.NextToken == nil {
			break
		}
		nextToken = output.NextToken
	}

	return resources, nil
}

func convertVPC(vpc ec2types.Vpc, region string) types.Resource {
	return types.Resource{
		ID:                   awssdk.ToString(vpc.VpcId),
		Type:                 "vpc",
		Service:              "vpc",
		Region:               region,
		Name:                 nameTag(vpc.Tags),
		State:                string(vpc.State),
		EstimatedMonthlyCost: cost.VPC(),
		AdditionalInfo: map[string]any{
			"cidr_block": awssdk.ToString(vpc.CidrBlock),
		},
	}
}

func (s *VPCScanner) scanTransitGateways(ctx context.Context, client VPCAPI, region string) ([]types.Resource, error) {
	var resources []types.Resource
	var nextToken *string

	for {
		output, err := client.DescribeTransitGateways(ctx, &ec2.DescribeTransitGatewaysInput{NextToken: nextToken})
		if err != nil {
			return nil, fmt.Errorf("describe transit gateways: %w", err)
		}

		for _, tgw := range output.TransitGateways {
			if gone(string(tgw.State)) {
				continue
			}
			resources = append(resources, convertTransitGateway(tgw, region))
		}

		if output.NextToken == nil {
			break
		}
		nextToken = output.NextToken
	}

	return resources, nil
}

func convertTransitGateway(tgw ec2types.TransitGateway, region string) types.Resource {
	state := string(tgw.State)

	info := map[string]any{
		"description": awssdk.ToString(tgw.Description),
	}
	if tgw.Options != nil {
		info["amazon_side_asn"] = awssdk.ToInt64(tgw.Options.AmazonSideAsn)
		info["dns_support"] = string(tgw.Options.DnsSupport)
		info["vpn_ecmp_support"] = string(tgw.Options.VpnEcmpSupport)
	}

	return types.Resource{
		ID:                   awssdk.ToString(tgw.TransitGatewayId),
		Type:                 "transit_gateway",
		Service:              "vpc",
		Region:               region,
		Name:                 nameTag(tgw.Tags),
		CreatedAt:            tgw.CreationTime,
		State:                state,
		EstimatedMonthlyCost: cost.TransitGateway(state),
		AdditionalInfo:       info,
	}
}

func (s *VPCScanner) scanTransitGatewayAttachments(ctx context.Context, client VPCAPI, region string) ([]types.Resource, error) {
	var resources []types.Resource
	var nextToken *string

	for {
		output, err := client.DescribeTransitGatewayAttachments(ctx, &ec2.DescribeTransitGatewayAttachmentsInput{NextToken: nextToken})
		if err != nil {
			return nil, fmt.Errorf("describe transit gateway attachments: %w", err)
		}

		for _, attachment := range output.TransitGatewayAttachments {
			if gone(string(attachment.State)) {
				continue
			}
			resources = append(resources, convertTGWAttachment(attachment, region))
		}

		if output.NextToken == nil {
			break
		}
		nextToken = output.NextToken
	}

	return resources, nil
}

func convertTGWAttachment(attachment ec2types.TransitGatewayAttachment, region string) types.Resource {
	state := string(attachment.State)
	resourceType := string(attachment.ResourceType)

	return types.Resource{
		ID:                   awssdk.ToString(attachment.TransitGatewayAttachmentId),
		Type:                 "transit_gateway_attachment",
		Service:              "vpc",
		Region:               region,
		Name:                 nameTag(attachment.Tags),
		CreatedAt:            attachment.CreationTime,
		State:                state,
		EstimatedMonthlyCost: cost.TransitGatewayAttachment(resourceType, state),
		AdditionalInfo: map[string]any{
			"transit_gateway_id": awssdk.ToString(attachment.TransitGatewayId),
			"resource_type":      resourceType,
			"resource_id":        awssdk.ToString(attachment.ResourceId),
		},
	}
}

func (s *VPCScanner) scanEndpoints(ctx context.Context, client VPCAPI, region string) ([]types.Resource, error) {
	var resources []types.Resource
	var nextToken *string

	for {
		output, err := client.DescribeVpcEndpoints(ctx, &ec2.DescribeVpcEndpointsInput{NextToken: nextToken})
		if err != nil {
			return nil, fmt.Errorf("describe vpc endpoints: %w", err)
		}

		for _, endpoint := range output.VpcEndpoints {
			if gone(string(endpoint.State)) {
				continue
			}
			resources = append(resources, convertVPCEndpoint(endpoint, region))
		}

		if output.NextToken == nil {
			break
		}
		nextToken = output.NextToken
	}

	return resources, nil
}

func convertVPCEndpoint(endpoint ec2types.VpcEndpoint, region string) types.Resource {
	state := string(endpoint.State)
	endpointType := string(endpoint.VpcEndpointType)

	return types.Resource{
		ID:                   awssdk.ToString(endpoint.VpcEndpointId),
		Type:                 "vpc_endpoint",
		Service:              "vpc",
		Region:               region,
		Name:                 nameTag(endpoint.Tags),
		CreatedAt:            endpoint.CreationTimestamp,
		State:                state,
		EstimatedMonthlyCost: cost.VPCEndpoint(endpointType, state),
		AdditionalInfo: map[string]any{
			"endpoint_type":       endpointType,
			"service_name":        awssdk.ToString(endpoint.ServiceName),
			"vpc_id":              awssdk.ToString(endpoint.VpcId),
			"private_dns_enabled": awssdk.ToBool(endpoint.PrivateDnsEnabled),
		},
	}
}

func (s *VPCScanner) scanVPNConnections(ctx context.Context, client VPCAPI, region string) ([]types.Resource, error) {
	// DescribeVpnConnections is not paginated.
	output, err := client.DescribeVpnConnections(ctx, &ec2.DescribeVpnConnectionsInput{})
	if err != nil {
		return nil, fmt.Errorf("describe vpn connections: %w", err)
	}

	var resources []types.Resource
	for _, vpn := range output.VpnConnections {
		if gone(string(vpn.State)) {
			continue
		}
		resources = append(resources, convertVPNConnection(vpn, region))
	}
	return resources, nil
}

func convertVPNConnection(vpn ec2types.VpnConnection, region string) types.Resource {
	state := string(vpn.State)

	return types.Resource{
		ID:                   awssdk.ToString(vpn.VpnConnectionId),
		Type:                 "vpn_connection",
		Service:              "vpc",
		Region:               region,
		Name:                 nameTag(vpn.Tags),
		State:                state,
		EstimatedMonthlyCost: cost.VPNConnection(state),
		AdditionalInfo: map[string]any{
			"type":                string(vpn.Type),
			"customer_gateway_id": awssdk.ToString(vpn.CustomerGatewayId),
			"vpn_gateway_id":      awssdk.ToString(vpn.VpnGatewayId),
			"transit_gateway_id":  awssdk.ToString(vpn.TransitGatewayId),
			"category":            awssdk.ToString(vpn.Category),
		},
	}
}

func (s *VPCScanner) scanDirectConnect(ctx context.Context, client DirectConnectAPI, region string) ([]types.Resource, error) {
	output, err := client.DescribeVirtualInterfaces(ctx, &directconnect.DescribeVirtualInterfacesInput{})
	if err != nil {
		return nil, fmt.Errorf("describe virtual interfaces: %w", err)
	}

	var resources []types.Resource
	for _, vif := range output.VirtualInterfaces {
		state := string(vif.VirtualInterfaceState)
		if gone(state) {
			continue
		}

		name := awssdk.ToString(vif.VirtualInterfaceName)
		if name == "" {
			name = awssdk.ToString(vif.VirtualInterfaceId)
		}

		resources = append(resources, types.Resource{
			ID:                   awssdk.ToString(vif.VirtualInterfaceId),
			Type:                 "direct_connect_vif",
			Service:              "vpc",
			Region:               region,
			Name:                 name,
			State:                state,
			EstimatedMonthlyCost: cost.DirectConnectVIF(state),
			AdditionalInfo: map[string]any{
				"connection_id":  awssdk.ToString(vif.ConnectionId),
				"vlan":           int(vif.Vlan),
				"asn":            int(vif.Asn),
				"interface_type": awssdk.ToString(vif.VirtualInterfaceType),
			},
		})
	}
	return resources, nil
}

// gone reports whether a resource is deleted or on its way out.
// Endpoint states come back in mixed case, so compare case-insensitively.
func gone(state string) bool {
	return strings.EqualFold(state, "deleted") || strings.EqualFold(state, "deleting")
}
