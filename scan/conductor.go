package scan

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yairfalse/kartta/config"
	"github.com/yairfalse/kartta/ratelimit"
	"github.com/yairfalse/kartta/retry"
	"github.com/yairfalse/kartta/telemetry"
	"github.com/yairfalse/kartta/types"
)

// Conductor fans one service's scanner out across regions. All region
// workers share the service's rate limiter, so provider quotas hold no
// matter how many regions run in parallel.
type Conductor struct {
	scanner  RegionScanner
	limiter  *ratelimit.Limiter
	policy   retry.Policy
	cfg      config.Config
	logger   *telemetry.Logger
	observer Observer
}

// NewConductor builds a conductor for one service. The limiter is
// created from cfg.RequestsPerSecond and shared by every region worker.
func NewConductor(scanner RegionScanner, cfg config.Config, logger *telemetry.Logger, observer Observer) (*Conductor, error) {
	limiter, err := ratelimit.New(cfg.RequestsPerSecond, 0)
	if err != nil {
		return nil, fmt.Errorf("rate limiter for %s: %w", scanner.Service(), err)
	}

	policy := retry.Policy{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelayDuration(),
		Multiplier:   cfg.RetryBackoff,
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("retry policy for %s: %w", scanner.Service(), err)
	}

	return &Conductor{
		scanner:  scanner,
		limiter:  limiter,
		policy:   policy,
		cfg:      cfg,
		logger:   logger,
		observer: observer,
	}, nil
}

// ScanAllRegions scans every region that survives filtering, at most
// MaxConcurrentRegions at a time, and joins results in completion
// order. A failed region contributes zero resources and an error in its
// RegionScanResult; sibling regions are unaffected.
func (c *Conductor) ScanAllRegions(ctx context.Context, regions []string) types.ServiceScanResult {
	start := time.Now()
	service := c.scanner.Service()

	if c.scanner.Global() {
		regions = []string{types.GlobalRegion}
	} else {
		regions = c.cfg.FilterRegions(regions)
	}

	result := types.ServiceScanResult{Service: service}
	if len(regions) == 0 {
		result.Duration = time.Since(start)
		return result
	}

	notify(c.observer, Event{Type: EventServiceStart, Service: service})

	results := make(chan types.RegionScanResult, len(regions))
	var g errgroup.Group
	g.SetLimit(c.cfg.MaxConcurrentRegions)

	for _, region := range regions {
		if ctx.Err() != nil {
			// Cancelled: stop launching, let in-flight regions drain.
			break
		}
		g.Go(func() error {
			results <- c.scanRegion(ctx, region)
			return nil
		})
	}

	_ = g.Wait()
	close(results)

	for r := range results {
		result.Regions = append(result.Regions, r)
		result.Resources = append(result.Resources, r.Resources...)
	}
	result.Count = len(result.Resources)
	for _, r := range result.Resources {
		result.Cost += r.EstimatedMonthlyCost
	}
	result.Duration = time.Since(start)

	recordServiceDuration(ctx, service, result.Duration.Seconds())
	if c.logger != nil {
		c.logger.LogServiceDone(ctx, service, len(result.Resources),
			len(result.FailedRegions()), float64(result.Duration.Milliseconds()))
	}
	return result
}

// scanRegion runs one region under the rate limiter and retry policy.
func (c *Conductor) scanRegion(ctx context.Context, region string) (result types.RegionScanResult) {
	start := time.Now()
	service := c.scanner.Service()

	defer func() {
		if r := recover(); r != nil {
			result = types.RegionScanResult{
				Region:   region,
				Err:      fmt.Errorf("scanner panic in %s/%s: %v", service, region, r),
				Duration: time.Since(start),
			}
			c.finishRegion(ctx, result)
		}
	}()

	if _, err := c.limiter.Acquire(ctx, 1); err != nil {
		result = types.RegionScanResult{Region: region, Err: err, Duration: time.Since(start)}
		c.finishRegion(ctx, result)
		return result
	}

	resources, err := retry.Do(ctx, c.policy, ClassifyRetryable, func() ([]types.Resource, error) {
		return c.scanner.ScanRegion(ctx, region)
	})
	if err != nil {
		result = types.RegionScanResult{Region: region, Err: err, Duration: time.Since(start)}
	} else {
		result = types.RegionScanResult{
			Region:    region,
			Resources: resources,
			Count:     len(resources),
			Duration:  time.Since(start),
		}
	}
	c.finishRegion(ctx, result)
	return result
}

func (c *Conductor) finishRegion(ctx context.Context, r types.RegionScanResult) {
	service := c.scanner.Service()

	if r.Err != nil {
		kind := Classify(r.Err)
		recordScanError(ctx, service, r.Region, kind)
		if c.logger != nil {
			c.logger.LogRegionFailed(ctx, service, r.Region, kind.String(), r.Err)
		}
	} else {
		recordRegionScan(ctx, service, r.Region, len(r.Resources))
		if c.logger != nil {
			c.logger.LogRegionDone(ctx, service, r.Region, len(r.Resources),
				float64(r.Duration.Milliseconds()))
		}
	}

	notify(c.observer, Event{
		Type:      EventRegionDone,
		Service:   service,
		Region:    r.Region,
		Resources: len(r.Resources),
		Duration:  r.Duration,
		Err:       r.Err,
	})
}
