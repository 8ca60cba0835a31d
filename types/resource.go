// Package types defines the data model shared by scanners, reports and storage.
package types

import "time"

// GlobalRegion is the pseudo-region recorded for services that are not
// region-scoped (S3, Route53). Scanning them once is enough.
const GlobalRegion = "global"

// Resource is a normalized record for one discovered cloud object.
// Values are set once by the enumerator that discovered the resource
// and never mutated afterwards.
type Resource struct {
	ID                   string         `json:"id"`
	Type                 string         `json:"type"`
	Service              string         `json:"service"`
	Region               string         `json:"region"`
	Name                 string         `json:"name,omitempty"`
	CreatedAt            *time.Time     `json:"created_at,omitempty"`
	State                string         `json:"state,omitempty"`
	EstimatedMonthlyCost float64        `json:"estimated_monthly_cost"`
	AdditionalInfo       map[string]any `json:"additional_info,omitempty"`
}

// DisplayName returns the human-facing name, falling back to the ID.
func (r Resource) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

// IsGlobal reports whether the resource belongs to a global service.
func (r Resource) IsGlobal() bool {
	return r.Region == GlobalRegion
}
