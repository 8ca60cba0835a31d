package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegionScanResult_Failed(t *testing.T) {
	ok := RegionScanResult{Region: "us-east-1", Resources: []Resource{{ID: "i-1"}}}
	assert.False(t, ok.Failed())

	empty := RegionScanResult{Region: "eu-north-1"}
	assert.False(t, empty.Failed(), "empty region without error is a valid result")

	failed := RegionScanResult{Region: "us-west-2", Err: errors.New("denied")}
	assert.True(t, failed.Failed())
}

func TestServiceScanResult_FailedRegions(t *testing.T) {
	result := ServiceScanResult{
		Service: "ec2",
		Regions: []RegionScanResult{
			{Region: "us-east-1"},
			{Region: "us-west-2", Err: errors.New("throttled")},
			{Region: "eu-west-1", Err: errors.New("denied")},
		},
	}

	failed := result.FailedRegions()
	assert.Len(t, failed, 2)
	assert.Equal(t, "us-west-2", failed[0].Region)
	assert.Equal(t, "eu-west-1", failed[1].Region)
}

func TestScanReport_Totals(t *testing.T) {
	report := ScanReport{
		Services: []ServiceScanResult{
			{
				Service: "ec2",
				Resources: []Resource{
					{ID: "i-1", EstimatedMonthlyCost: 30.24},
					{ID: "i-2", EstimatedMonthlyCost: 16.56},
				},
				Count: 2,
				Cost:  46.80,
			},
			{
				Service:   "rds",
				Resources: []Resource{{ID: "db-1", EstimatedMonthlyCost: 24.82}},
				Count:     1,
				Cost:      24.82,
			},
		},
	}

	assert.Len(t, report.AllResources(), 3)
	assert.Equal(t, 3, report.TotalResources())
	assert.InDelta(t, 71.62, report.TotalMonthlyCost(), 0.001)
}

func TestResource_DisplayName(t *testing.T) {
	named := Resource{ID: "i-abc", Name: "web-1"}
	assert.Equal(t, "web-1", named.DisplayName())

	unnamed := Resource{ID: "i-abc"}
	assert.Equal(t, "i-abc", unnamed.DisplayName())
}
