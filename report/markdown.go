// Package report renders scan results as markdown, JSON, CSV, and
// console tables.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/yairfalse/kartta/types"
)

// maxDetailFields caps how many additional_info entries land in a
// resource's Details column.
const maxDetailFields = 3

// WriteMarkdown renders the full report: header, table of contents,
// summary by service, per-service per-region resource tables, and the
// top ten most expensive resources.
func WriteMarkdown(w io.Writer, report types.ScanReport) error {
	resources := report.AllResources()

	fmt.Fprintf(w, "# AWS Resources Report\n\n")
	fmt.Fprintf(w, "**Generated:** %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "**Total Resources Found:** %d\n", len(resources))
	fmt.Fprintf(w, "**Total Estimated Monthly Cost:** %s\n\n", money(report.TotalMonthlyCost()))

	if len(resources) == 0 {
		fmt.Fprintln(w, "No resources found.")
		return nil
	}

	byService := lo.GroupBy(resources, func(r types.Resource) string { return r.Service })
	services := lo.Keys(byService)
	sort.Strings(services)

	fmt.Fprintf(w, "## Table of Contents\n\n")
	for _, service := range services {
		fmt.Fprintf(w, "- [%s](#%s)\n", service, anchor(service))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "## Summary by Service\n\n")
	fmt.Fprintln(w, "| Service | Resource Count | Estimated Monthly Cost |")
	fmt.Fprintln(w, "|---------|----------------|----------------------|")
	for _, service := range services {
		group := byService[service]
		cost := lo.SumBy(group, func(r types.Resource) float64 { return r.EstimatedMonthlyCost })
		fmt.Fprintf(w, "| %s | %d | %s |\n", service, len(group), money(cost))
	}
	fmt.Fprintln(w)

	for _, service := range services {
		fmt.Fprintf(w, "## %s\n\n", service)

		byRegion := lo.GroupBy(byService[service], func(r types.Resource) string { return r.Region })
		regions := lo.Keys(byRegion)
		sort.Strings(regions)

		for _, region := range regions {
			fmt.Fprintf(w, "### %s\n\n", region)
			fmt.Fprintln(w, "| Type | Name/ID | State | Monthly Cost | Details |")
			fmt.Fprintln(w, "|------|---------|-------|--------------|----------|")
			for _, r := range byRegion[region] {
				writeResourceRow(w, r)
			}
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintf(w, "## Cost Breakdown\n\n")
	fmt.Fprintf(w, "### Top 10 Most Expensive Resources\n\n")
	fmt.Fprintln(w, "| Service | Type | Name/ID | Region | Monthly Cost |")
	fmt.Fprintln(w, "|---------|------|---------|--------|-------------|")
	for _, r := range topExpensive(resources, 10) {
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n",
			r.Service, r.Type, r.DisplayName(), r.Region, money(r.EstimatedMonthlyCost))
	}

	return nil
}

func writeResourceRow(w io.Writer, r types.Resource) {
	state := r.State
	if state == "" {
		state = "active"
	}
	fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n",
		r.Type, r.DisplayName(), state, money(r.EstimatedMonthlyCost), details(r))
}

// details flattens a few scalar additional_info entries into a cell.
func details(r types.Resource) string {
	keys := lo.Keys(r.AdditionalInfo)
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		v := r.AdditionalInfo[k]
		if v == nil || k == "tags" {
			continue
		}
		switch v.(type) {
		case map[string]any, []any, []string:
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %v", k, v))
		if len(parts) >= maxDetailFields {
			break
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

// topExpensive returns the n costliest resources, descending. Zero-cost
// resources never make the list.
func topExpensive(resources []types.Resource, n int) []types.Resource {
	costly := lo.Filter(resources, func(r types.Resource, _ int) bool {
		return r.EstimatedMonthlyCost > 0
	})
	sort.SliceStable(costly, func(i, j int) bool {
		return costly[i].EstimatedMonthlyCost > costly[j].EstimatedMonthlyCost
	})
	if len(costly) > n {
		costly = costly[:n]
	}
	return costly
}

func anchor(service string) string {
	return strings.ReplaceAll(strings.ToLower(service), " ", "-")
}

// money formats a dollar amount with thousands separators.
func money(amount float64) string {
	s := fmt.Sprintf("%.2f", amount)
	whole, frac, _ := strings.Cut(s, ".")

	neg := strings.HasPrefix(whole, "-")
	whole = strings.TrimPrefix(whole, "-")

	var b strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s$%s.%s", sign, b.String(), frac)
}
