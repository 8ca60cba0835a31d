package types

import "time"

// RegionScanResult records the outcome of scanning one service in one region.
// Resources and Err are mutually exclusive: a failed region contributes zero
// resources, and a zero Count with a nil Err means the region genuinely had
// none.
type RegionScanResult struct {
	Region    string        `json:"region"`
	Resources []Resource    `json:"resources,omitempty"`
	Count     int           `json:"resource_count"`
	Err       error         `json:"-"`
	Duration  time.Duration `json:"duration"`
}

// Failed reports whether the region scan ended in an error.
func (r RegionScanResult) Failed() bool {
	return r.Err != nil
}

// ServiceScanResult aggregates one service's scan across all its regions.
// Count and Cost are computed once at scan time so they stay valid after
// the Resources slices are dropped in streaming mode.
type ServiceScanResult struct {
	Service   string             `json:"service"`
	Resources []Resource         `json:"resources,omitempty"`
	Count     int                `json:"resource_count"`
	Cost      float64            `json:"estimated_monthly_cost"`
	Regions   []RegionScanResult `json:"regions,omitempty"`
	Duration  time.Duration      `json:"duration"`
	// Err is set only when the whole service failed before its region
	// fan-out could run (constructor error or panic).
	Err error `json:"-"`
}

// Failed reports whether the service never got to scan its regions.
func (s ServiceScanResult) Failed() bool {
	return s.Err != nil
}

// FailedRegions returns the regions that errored, preserving completion order.
func (s ServiceScanResult) FailedRegions() []RegionScanResult {
	var failed []RegionScanResult
	for _, r := range s.Regions {
		if r.Failed() {
			failed = append(failed, r)
		}
	}
	return failed
}

// ScanReport is the complete outcome of one scan run.
type ScanReport struct {
	StartedAt time.Time           `json:"started_at"`
	Duration  time.Duration       `json:"duration"`
	Services  []ServiceScanResult `json:"services"`
}

// AllResources flattens every service's resources in completion order.
// Empty in streaming mode, where resources are handed off as they arrive.
func (r ScanReport) AllResources() []Resource {
	var all []Resource
	for _, s := range r.Services {
		all = append(all, s.Resources...)
	}
	return all
}

// TotalResources sums the per-service counts.
func (r ScanReport) TotalResources() int {
	var total int
	for _, s := range r.Services {
		total += s.Count
	}
	return total
}

// TotalMonthlyCost sums cost estimates across all services.
func (r ScanReport) TotalMonthlyCost() float64 {
	var total float64
	for _, s := range r.Services {
		total += s.Cost
	}
	return total
}
