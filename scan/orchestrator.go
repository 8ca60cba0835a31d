package scan

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yairfalse/kartta/config"
	"github.com/yairfalse/kartta/telemetry"
	"github.com/yairfalse/kartta/types"
)

// Orchestrator fans the registered services out, at most
// MaxConcurrentServices conductors at a time, and joins their results
// in completion order. One misbehaving service never takes down the
// run: constructor errors and panics are contained per service.
type Orchestrator struct {
	registry *Registry
	cfg      config.Config
	logger   *telemetry.Logger
	observer Observer
}

// NewOrchestrator wires the orchestrator. logger and observer may be nil.
func NewOrchestrator(registry *Registry, cfg config.Config, logger *telemetry.Logger, observer Observer) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		cfg:      cfg,
		logger:   logger,
		observer: observer,
	}
}

// Collect scans every service eagerly and returns the full report with
// all resources in memory.
func (o *Orchestrator) Collect(ctx context.Context, regions []string) (types.ScanReport, error) {
	report := types.ScanReport{StartedAt: time.Now()}

	err := o.run(ctx, regions, func(result types.ServiceScanResult) {
		report.Services = append(report.Services, result)
	})

	report.Duration = time.Since(report.StartedAt)
	return report, err
}

// Stream scans every service and hands resources to the caller as each
// service completes. At most one completed service's resources are
// buffered at a time. The report channel delivers exactly one report
// (resource slices stripped, per-service counts and costs kept) after
// the resource channel closes.
func (o *Orchestrator) Stream(ctx context.Context, regions []string) (<-chan types.Resource, <-chan types.ScanReport) {
	out := make(chan types.Resource)
	reportCh := make(chan types.ScanReport, 1)

	go func() {
		defer close(out)
		defer close(reportCh)

		report := types.ScanReport{StartedAt: time.Now()}
		_ = o.run(ctx, regions, func(result types.ServiceScanResult) {
			for _, res := range result.Resources {
				select {
				case out <- res:
				case <-ctx.Done():
					return
				}
			}
			report.Services = append(report.Services, stripResources(result))
		})

		report.Duration = time.Since(report.StartedAt)
		reportCh <- report
	}()

	return out, reportCh
}

// run executes the bounded service fan-out. handle is called from a
// single goroutine, once per completed service, in completion order.
func (o *Orchestrator) run(ctx context.Context, regions []string, handle func(types.ServiceScanResult)) error {
	services := o.cfg.FilterServices(o.registry.Names())
	if o.logger != nil {
		o.logger.LogScanStart(ctx, len(services), len(regions))
	}
	if len(services) == 0 {
		return nil
	}

	results := make(chan types.ServiceScanResult)
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for result := range results {
			o.finishService(ctx, result)
			handle(result)
		}
	}()

	var g errgroup.Group
	g.SetLimit(o.cfg.MaxConcurrentServices)

	for _, name := range services {
		if ctx.Err() != nil {
			// Cancelled: stop launching new services.
			break
		}
		scanner, ok := o.registry.Get(name)
		if !ok {
			continue
		}
		g.Go(func() error {
			select {
			case results <- o.scanService(ctx, scanner, regions):
			case <-ctx.Done():
			}
			return nil
		})
	}

	_ = g.Wait()
	close(results)
	<-collected

	return ctx.Err()
}

// scanService runs one service's conductor, containing panics so a
// broken scanner is reported as a failed service instead of crashing
// the run.
func (o *Orchestrator) scanService(ctx context.Context, scanner RegionScanner, regions []string) (result types.ServiceScanResult) {
	service := scanner.Service()

	defer func() {
		if r := recover(); r != nil {
			result = types.ServiceScanResult{
				Service: service,
				Err:     fmt.Errorf("service %s panicked: %v", service, r),
			}
		}
	}()

	conductor, err := NewConductor(scanner, o.cfg, o.logger, o.observer)
	if err != nil {
		return types.ServiceScanResult{Service: service, Err: err}
	}
	return conductor.ScanAllRegions(ctx, regions)
}

// finishService fires the per-service progress tick.
func (o *Orchestrator) finishService(ctx context.Context, result types.ServiceScanResult) {
	if result.Err != nil && o.logger != nil {
		o.logger.WithContext(ctx).Error().
			Err(result.Err).
			Str("scan_service", result.Service).
			Msg("service scan failed")
	}

	notify(o.observer, Event{
		Type:      EventServiceDone,
		Service:   result.Service,
		Resources: result.Count,
		Duration:  result.Duration,
		Err:       result.Err,
	})
}

func stripResources(result types.ServiceScanResult) types.ServiceScanResult {
	result.Resources = nil
	for i := range result.Regions {
		result.Regions[i].Resources = nil
	}
	return result
}
