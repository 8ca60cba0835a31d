package scan

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/yairfalse/kartta/telemetry"
)

// Metric helpers. The instruments are nil until telemetry.InitOTEL runs
// (tests and library callers may skip it), so every recorder checks.

func recordRegionScan(ctx context.Context, service, region string, resources int) {
	attrs := metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("region", region),
	)
	if telemetry.RegionsScanned != nil {
		telemetry.RegionsScanned.Add(ctx, 1, attrs)
	}
	if telemetry.ResourcesScanned != nil {
		telemetry.ResourcesScanned.Add(ctx, int64(resources), attrs)
	}
}

func recordScanError(ctx context.Context, service, region string, kind Kind) {
	if telemetry.ScanErrors == nil {
		return
	}
	telemetry.ScanErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("region", region),
		attribute.String("kind", kind.String()),
	))
}

func recordServiceDuration(ctx context.Context, service string, seconds float64) {
	if telemetry.ScanDuration == nil {
		return
	}
	telemetry.ScanDuration.Record(ctx, seconds, metric.WithAttributes(
		attribute.String("service", service),
	))
}
