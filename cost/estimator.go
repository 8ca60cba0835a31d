package cost

import "strings"

// Instance estimates an EC2 instance. Only running instances cost money.
func Instance(instanceType, state string) float64 {
	if state != "running" {
		return 0
	}
	if price, ok := instancePricing[instanceType]; ok {
		return price
	}
	return defaultInstanceCost
}

// EBSVolume estimates a volume from its type and size.
func EBSVolume(volumeType string, sizeGB int) float64 {
	if sizeGB <= 0 {
		return 0
	}
	perGB, ok := ebsPricing[volumeType]
	if !ok {
		perGB = defaultEBSPerGB
	}
	return perGB * float64(sizeGB)
}

// Snapshot estimates an EBS snapshot from its source volume size.
func Snapshot(sizeGB int) float64 {
	if sizeGB <= 0 {
		return 0
	}
	return snapshotPerGB * float64(sizeGB)
}

// ElasticIP costs money only while it sits unattached.
func ElasticIP(attached bool) float64 {
	if attached {
		return 0
	}
	return elasticIPMonthly
}

// NATGateway estimates an available NAT gateway, data transfer excluded.
func NATGateway(state string) float64 {
	if state != "available" {
		return 0
	}
	return natGatewayBase
}

// RDSInstance estimates a database instance by class.
func RDSInstance(instanceClass, status string) float64 {
	if status != "available" {
		return 0
	}
	if price, ok := rdsPricing[instanceClass]; ok {
		return price
	}
	return defaultRDSCost
}

// Lambda estimates a function assuming a modest steady load: one
// million invocations a month at 100ms each.
func Lambda(memoryMB int) float64 {
	if memoryMB <= 0 {
		memoryMB = 128
	}
	const invocations = 1_000_000
	const avgSeconds = 0.1
	gbSeconds := float64(invocations) * avgSeconds * float64(memoryMB) / 1024
	return gbSeconds*lambdaGBSecond + lambdaPerMillionReqs
}

// DynamoDBTable estimates a table from billing mode, provisioned
// capacity and storage.
func DynamoDBTable(billingMode string, readUnits, writeUnits int64, sizeBytes int64) float64 {
	var capacity float64
	if billingMode == "PAY_PER_REQUEST" {
		capacity = dynamoOnDemandBase
	} else {
		capacity = float64(readUnits)*dynamoCapacityUnit + float64(writeUnits)*dynamoCapacityUnit
	}
	sizeGB := float64(sizeBytes) / (1024 * 1024 * 1024)
	return capacity + sizeGB*dynamoStoragePerGB
}

// LoadBalancer estimates an active ALB/NLB, LCU charges excluded.
func LoadBalancer(state string) float64 {
	if state != "active" {
		return 0
	}
	return loadBalancerMonthly
}

// EKSCluster estimates the control plane of an active cluster. Worker
// nodes show up as EC2 instances.
func EKSCluster(status string) float64 {
	if status != "ACTIVE" {
		return 0
	}
	return eksControlPlane
}

// Route53Zone estimates a hosted zone, query charges excluded.
func Route53Zone() float64 {
	return route53ZoneMonthly
}

// ECSCluster estimates a cluster from its running task count, each task
// priced as a small Fargate task. EC2-backed tasks show up as instances.
func ECSCluster(runningTasks int) float64 {
	if runningTasks <= 0 {
		return 0
	}
	return float64(runningTasks) * fargateTaskMonthly
}

// ECSService estimates a service from its desired count. Only Fargate
// services carry their own cost.
func ECSService(launchType string, desiredCount int) float64 {
	if launchType != "FARGATE" || desiredCount <= 0 {
		return 0
	}
	return float64(desiredCount) * fargateTaskMonthly
}

// CloudFrontDistribution estimates an enabled distribution by price
// class, traffic excluded.
func CloudFrontDistribution(enabled bool, priceClass string) float64 {
	if !enabled {
		return 0
	}
	switch {
	case strings.Contains(priceClass, "All"):
		return cloudFrontAllMonthly
	case strings.Contains(priceClass, "200"):
		return cloudFront200Monthly
	default:
		return cloudFront100Monthly
	}
}

// TransitGateway estimates an available transit gateway, data
// processing excluded.
func TransitGateway(state string) float64 {
	if state != "available" {
		return 0
	}
	return transitGatewayMonthly
}

// TransitGatewayAttachment estimates an attachment. Only VPN
// attachments cost money; VPC attachments are free.
func TransitGatewayAttachment(resourceType, state string) float64 {
	if resourceType != "vpn" || state != "available" {
		return 0
	}
	return transitGatewayMonthly
}

// VPCEndpoint estimates an endpoint. Gateway endpoints are free.
func VPCEndpoint(endpointType, state string) float64 {
	if !strings.EqualFold(endpointType, "Interface") || !strings.EqualFold(state, "available") {
		return 0
	}
	return interfaceEndpointMonthly
}

// VPNConnection estimates an available site-to-site VPN connection.
func VPNConnection(state string) float64 {
	if state != "available" {
		return 0
	}
	return vpnConnectionMonthly
}

// DirectConnectVIF estimates an available virtual interface. Actual
// cost depends on port speed and data transfer.
func DirectConnectVIF(state string) float64 {
	if state != "available" {
		return 0
	}
	return directConnectVIFMonthly
}

// VPC returns zero: VPCs themselves are free.
func VPC() float64 {
	return 0
}

// RESTAPI estimates a REST API assuming one million calls a month,
// plus any stage cache clusters by size.
func RESTAPI(cacheSizes []string) float64 {
	total := restAPIMonthly
	for _, size := range cacheSizes {
		total += apiGatewayCachePricing[size]
	}
	return total
}

// HTTPAPI estimates an HTTP or WebSocket API assuming one million
// calls or messages a month.
func HTTPAPI(protocolType string) float64 {
	if protocolType == "WEBSOCKET" {
		return websocketAPIMonthly
	}
	return httpAPIMonthly
}

// S3Bucket returns zero: bucket cost is storage-driven and unknown
// without CloudWatch metrics.
func S3Bucket() float64 {
	return 0
}

// SQSQueue returns zero: the free tier covers typical queue traffic.
func SQSQueue() float64 {
	return 0
}
