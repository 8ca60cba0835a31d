// Package cost estimates rough monthly USD costs for discovered
// resources. Every function is pure: same inputs, same answer, never an
// error, never negative. These are order-of-magnitude numbers for
// spotting waste, not a bill.
package cost

// EC2 on-demand, rough monthly USD.
var instancePricing = map[string]float64{
	"t2.nano":    4.25,
	"t2.micro":   8.50,
	"t2.small":   17.00,
	"t2.medium":  34.00,
	"t2.large":   68.00,
	"t2.xlarge":  136.00,
	"t2.2xlarge": 272.00,

	"t3.nano":    3.80,
	"t3.micro":   7.50,
	"t3.small":   15.00,
	"t3.medium":  30.00,
	"t3.large":   60.00,
	"t3.xlarge":  120.00,
	"t3.2xlarge": 240.00,

	"m5.large":   70.00,
	"m5.xlarge":  140.00,
	"m5.2xlarge": 280.00,
	"m5.4xlarge": 560.00,
	"m5.8xlarge": 1120.00,

	"c5.large":   62.00,
	"c5.xlarge":  124.00,
	"c5.2xlarge": 248.00,
	"c5.4xlarge": 496.00,

	"r5.large":   92.00,
	"r5.xlarge":  184.00,
	"r5.2xlarge": 368.00,
	"r5.4xlarge": 736.00,
}

// defaultInstanceCost is used for instance types missing from the table.
const defaultInstanceCost = 50.0

// EBS per GB per month by volume type.
var ebsPricing = map[string]float64{
	"gp3":      0.08,
	"gp2":      0.10,
	"io1":      0.125,
	"io2":      0.125,
	"st1":      0.045,
	"sc1":      0.025,
	"standard": 0.05,
}

const (
	defaultEBSPerGB  = 0.10 // gp2
	snapshotPerGB    = 0.05
	elasticIPMonthly = 3.60 // only while unattached
	natGatewayBase   = 45.00
)

// RDS instance classes, rough monthly USD.
var rdsPricing = map[string]float64{
	"db.t3.micro":   13.00,
	"db.t3.small":   26.00,
	"db.t3.medium":  52.00,
	"db.t3.large":   104.00,
	"db.m5.large":   125.00,
	"db.m5.xlarge":  250.00,
	"db.m5.2xlarge": 500.00,
	"db.r5.large":   180.00,
	"db.r5.xlarge":  360.00,
}

const defaultRDSCost = 100.0

const (
	loadBalancerMonthly  = 23.00 // ALB/NLB ~ $0.0225/hour
	eksControlPlane      = 73.00 // $0.10/hour
	dynamoOnDemandBase   = 5.00
	dynamoCapacityUnit   = 0.47 // per provisioned read or write unit
	dynamoStoragePerGB   = 0.25
	lambdaGBSecond       = 0.0000166667
	lambdaPerMillionReqs = 0.20
	route53ZoneMonthly   = 0.50
)

// fargateTaskMonthly is one 0.5 vCPU / 1 GB task at on-demand Fargate
// rates: (0.04*0.5 + 0.004*1) per hour over 730 hours.
const fargateTaskMonthly = 17.52

// CloudFront monthly minimums by price class, traffic excluded.
const (
	cloudFrontAllMonthly = 20.00
	cloudFront200Monthly = 15.00
	cloudFront100Monthly = 10.00
)

const (
	transitGatewayMonthly    = 36.50 // $0.05/hour, data processing excluded
	interfaceEndpointMonthly = 7.30  // $0.01/hour, data processing excluded
	vpnConnectionMonthly     = 36.50 // $0.05/hour
	directConnectVIFMonthly  = 30.00 // rough, varies by port speed
)

// API Gateway assumes one million calls or messages a month.
const (
	restAPIMonthly      = 3.50  // $3.50 per million REST calls
	httpAPIMonthly      = 1.00  // $1.00 per million HTTP calls
	websocketAPIMonthly = 1.045 // 1M messages plus modest connection minutes
)

// REST API stage cache by cluster size in GB.
var apiGatewayCachePricing = map[string]float64{
	"0.5": 38.00,
	"1.6": 106.00,
	"6.1": 365.00,
}
