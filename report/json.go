package report

import (
	"encoding/json"
	"io"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/yairfalse/kartta/types"
)

// jsonReport is the machine-readable report envelope.
type jsonReport struct {
	GeneratedAt      time.Time        `json:"generated_at"`
	TotalResources   int              `json:"total_resources"`
	TotalMonthlyCost float64          `json:"total_monthly_cost"`
	Services         []jsonService    `json:"services"`
	Resources        []types.Resource `json:"resources"`
}

type jsonService struct {
	Service     string  `json:"service"`
	Count       int     `json:"count"`
	MonthlyCost float64 `json:"monthly_cost"`
}

// WriteJSON renders the report as indented JSON.
func WriteJSON(w io.Writer, report types.ScanReport) error {
	resources := report.AllResources()

	byService := lo.GroupBy(resources, func(r types.Resource) string { return r.Service })
	services := make([]jsonService, 0, len(byService))
	for name, group := range byService {
		services = append(services, jsonService{
			Service:     name,
			Count:       len(group),
			MonthlyCost: lo.SumBy(group, func(r types.Resource) float64 { return r.EstimatedMonthlyCost }),
		})
	}
	sort.Slice(services, func(i, j int) bool { return services[i].Service < services[j].Service })

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		GeneratedAt:      time.Now().UTC(),
		TotalResources:   len(resources),
		TotalMonthlyCost: report.TotalMonthlyCost(),
		Services:         services,
		Resources:        resources,
	})
}
