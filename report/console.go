package report

import (
	"io"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/yairfalse/kartta/types"
)

// WriteConsoleSummary renders the per-service summary as a terminal
// table, one row per service plus a total footer. It reads the
// per-service tallies, so it works in streaming mode too, where the
// resource slices have been dropped.
func WriteConsoleSummary(w io.Writer, report types.ScanReport) {
	services := make([]types.ServiceScanResult, len(report.Services))
	copy(services, report.Services)
	sort.Slice(services, func(i, j int) bool { return services[i].Service < services[j].Service })

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("AWS Resources Summary")
	t.AppendHeader(table.Row{"Service", "Count", "Monthly Cost"})

	for _, svc := range services {
		t.AppendRow(table.Row{svc.Service, strconv.Itoa(svc.Count), money(svc.Cost)})
	}

	t.AppendFooter(table.Row{"TOTAL", strconv.Itoa(report.TotalResources()), money(report.TotalMonthlyCost())})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// WriteFailureSummary lists services that did not complete cleanly.
func WriteFailureSummary(w io.Writer, report types.ScanReport) {
	var rows []table.Row
	for _, svc := range report.Services {
		if svc.Err != nil {
			rows = append(rows, table.Row{svc.Service, "-", svc.Err.Error()})
			continue
		}
		for _, region := range svc.FailedRegions() {
			rows = append(rows, table.Row{svc.Service, region.Region, region.Err.Error()})
		}
	}
	if len(rows) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Scan Failures")
	t.AppendHeader(table.Row{"Service", "Region", "Error"})
	t.AppendRows(rows)
	t.SetStyle(table.StyleRounded)
	t.Render()
}
