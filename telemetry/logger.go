// Package telemetry wires logging, tracing and metrics for the scanner.
package telemetry

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTELHook adds trace and span IDs to every log entry
type OTELHook struct{}

func (h OTELHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return
	}

	e.Str("trace_id", span.SpanContext().TraceID().String())
	e.Str("span_id", span.SpanContext().SpanID().String())

	if level == zerolog.ErrorLevel {
		span.SetStatus(codes.Error, msg)
	}
}

// Logger wraps zerolog with OTEL integration
type Logger struct {
	zerolog.Logger
}

// NewLogger creates a new logger with OTEL hooks
func NewLogger(service string) *Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", service).
		Logger().
		Hook(OTELHook{})

	return &Logger{Logger: logger}
}

// SetLevel adjusts the minimum level, accepting zerolog level names.
func (l *Logger) SetLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return
	}
	l.Logger = l.Logger.Level(parsed)
}

// WithContext returns a logger with context (for trace propagation)
func (l *Logger) WithContext(ctx context.Context) *zerolog.Logger {
	logger := l.Logger.With().Ctx(ctx).Logger()
	return &logger
}

// Convenience methods for scan progress

func (l *Logger) LogScanStart(ctx context.Context, services, regions int) {
	l.WithContext(ctx).Info().
		Int("services", services).
		Int("regions", regions).
		Str("operation", "scan").
		Msg("starting scan")
}

func (l *Logger) LogRegionDone(ctx context.Context, service, region string, count int, durationMs float64) {
	l.WithContext(ctx).Debug().
		Str("scan_service", service).
		Str("region", region).
		Int("resource_count", count).
		Float64("duration_ms", durationMs).
		Msg("region scanned")
}

func (l *Logger) LogRegionFailed(ctx context.Context, service, region, kind string, err error) {
	event := l.WithContext(ctx).Error()
	if kind == "access_denied" {
		// Denied regions are expected in most accounts, keep them quiet.
		event = l.WithContext(ctx).Warn()
	}
	event.
		Err(err).
		Str("scan_service", service).
		Str("region", region).
		Str("error_kind", kind).
		Msg("region scan failed")
}

func (l *Logger) LogServiceDone(ctx context.Context, service string, count, failedRegions int, durationMs float64) {
	l.WithContext(ctx).Info().
		Str("scan_service", service).
		Int("resource_count", count).
		Int("failed_regions", failedRegions).
		Float64("duration_ms", durationMs).
		Msg("service scanned")
}
