package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/yairfalse/kartta/types"
)

type serviceTally struct {
	count int
	cost  float64
}

// StreamWriter emits a markdown report in a single pass: resource rows
// are written in arrival order while running aggregates accumulate, and
// the summary sections are appended when the stream closes. Memory
// stays bounded regardless of how many resources the scan finds.
type StreamWriter struct {
	w        io.Writer
	started  bool
	total    int
	cost     float64
	services map[string]*serviceTally
	top      []types.Resource
}

// NewStreamWriter wraps w. Call Add per resource, then Close.
func NewStreamWriter(w io.Writer) *StreamWriter {
	return &StreamWriter{
		w:        w,
		services: make(map[string]*serviceTally),
	}
}

// Add writes one resource row and folds it into the running totals.
func (sw *StreamWriter) Add(r types.Resource) error {
	if !sw.started {
		if err := sw.writeHeader(); err != nil {
			return err
		}
		sw.started = true
	}

	sw.total++
	sw.cost += r.EstimatedMonthlyCost

	tally, ok := sw.services[r.Service]
	if !ok {
		tally = &serviceTally{}
		sw.services[r.Service] = tally
	}
	tally.count++
	tally.cost += r.EstimatedMonthlyCost

	sw.track(r)

	state := r.State
	if state == "" {
		state = "active"
	}
	_, err := fmt.Fprintf(sw.w, "| %s | %s | %s | %s | %s | %s | %s |\n",
		r.Service, r.Region, r.Type, r.DisplayName(), state,
		money(r.EstimatedMonthlyCost), details(r))
	return err
}

// Close appends the summary sections built from the running aggregates.
func (sw *StreamWriter) Close() error {
	if !sw.started {
		if err := sw.writeHeader(); err != nil {
			return err
		}
	}

	if sw.total == 0 {
		_, err := fmt.Fprintln(sw.w, "No resources found.")
		return err
	}
	fmt.Fprintln(sw.w)

	fmt.Fprintf(sw.w, "## Summary by Service\n\n")
	fmt.Fprintln(sw.w, "| Service | Resource Count | Estimated Monthly Cost |")
	fmt.Fprintln(sw.w, "|---------|----------------|----------------------|")

	names := make([]string, 0, len(sw.services))
	for name := range sw.services {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		tally := sw.services[name]
		fmt.Fprintf(sw.w, "| %s | %d | %s |\n", name, tally.count, money(tally.cost))
	}

	fmt.Fprintf(sw.w, "\n**Total Resources Found:** %d\n", sw.total)
	fmt.Fprintf(sw.w, "**Total Estimated Monthly Cost:** %s\n\n", money(sw.cost))

	fmt.Fprintf(sw.w, "## Cost Breakdown\n\n")
	fmt.Fprintf(sw.w, "### Top 10 Most Expensive Resources\n\n")
	fmt.Fprintln(sw.w, "| Service | Type | Name/ID | Region | Monthly Cost |")
	fmt.Fprintln(sw.w, "|---------|------|---------|--------|-------------|")
	for _, r := range sw.top {
		if _, err := fmt.Fprintf(sw.w, "| %s | %s | %s | %s | %s |\n",
			r.Service, r.Type, r.DisplayName(), r.Region, money(r.EstimatedMonthlyCost)); err != nil {
			return err
		}
	}
	return nil
}

func (sw *StreamWriter) writeHeader() error {
	fmt.Fprintf(sw.w, "# AWS Resources Report\n\n")
	fmt.Fprintf(sw.w, "**Generated:** %s\n\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(sw.w, "## Resources\n\n")
	fmt.Fprintln(sw.w, "| Service | Region | Type | Name/ID | State | Monthly Cost | Details |")
	_, err := fmt.Fprintln(sw.w, "|---------|--------|------|---------|-------|--------------|----------|")
	return err
}

// track keeps the ten costliest resources seen so far.
func (sw *StreamWriter) track(r types.Resource) {
	if r.EstimatedMonthlyCost <= 0 {
		return
	}
	i := sort.Search(len(sw.top), func(i int) bool {
		return sw.top[i].EstimatedMonthlyCost < r.EstimatedMonthlyCost
	})
	if i >= 10 {
		return
	}
	sw.top = append(sw.top, types.Resource{})
	copy(sw.top[i+1:], sw.top[i:])
	sw.top[i] = r
	if len(sw.top) > 10 {
		sw.top = sw.top[:10]
	}
}
