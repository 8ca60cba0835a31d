package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/yairfalse/kartta/config"
	"github.com/yairfalse/kartta/providers"
	"github.com/yairfalse/kartta/report"
	"github.com/yairfalse/kartta/scan"
	"github.com/yairfalse/kartta/telemetry"
)

var (
	daemonInterval     time.Duration
	daemonMetricsAddr  string
	daemonOTELEndpoint string
	daemonInsecure     bool
)

// daemonCmd represents the daemon command
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Rescan on an interval and export metrics",
	Long: `Run kartta continuously: scan all regions and services on a fixed
interval, record each run in the history database, and export scan
metrics.

Metrics are exported both ways: Prometheus scraping on /metrics and
OTLP push to a collector. Shuts down gracefully on SIGTERM/SIGINT.`,
	Example: `  kartta daemon                        # Scan hourly, metrics on :9090
  kartta daemon --interval 15m         # Scan every 15 minutes
  kartta daemon --metrics-addr :2112   # Custom metrics address
  kartta daemon --otel-endpoint otel-collector:4317`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)

	daemonCmd.Flags().DurationVar(&daemonInterval, "interval", time.Hour, "Rescan interval")
	daemonCmd.Flags().StringVar(&daemonMetricsAddr, "metrics-addr", ":9090", "Metrics HTTP server address")
	daemonCmd.Flags().StringVar(&daemonOTELEndpoint, "otel-endpoint", "", "OTLP collector endpoint (default $OTEL_EXPORTER_OTLP_ENDPOINT)")
	daemonCmd.Flags().BoolVar(&daemonInsecure, "insecure", true, "Use insecure gRPC for the OTLP exporter")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := telemetry.NewLogger("kartta")
	logger.SetLevel(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown, err := telemetry.InitOTEL(ctx, telemetry.Config{
		ServiceName:    "kartta",
		ServiceVersion: version,
		OTELEndpoint:   daemonOTELEndpoint,
		Insecure:       daemonInsecure,
	})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	provider, err := providers.GetProvider(ctx, "aws")
	if err != nil {
		return fmt.Errorf("initialize provider: %w", err)
	}
	regions, err := provider.ListRegions(ctx)
	if err != nil {
		return fmt.Errorf("list regions: %w", err)
	}

	registry := scan.NewRegistry()
	for _, s := range provider.Scanners() {
		if err := registry.Register(s); err != nil {
			return err
		}
	}
	orchestrator := scan.NewOrchestrator(registry, cfg, logger, nil)

	logger.Info().
		Dur("interval", daemonInterval).
		Str("metrics_addr", daemonMetricsAddr).
		Int("regions", len(regions)).
		Msg("daemon starting")

	var g run.Group

	// Signal handling
	g.Add(run.SignalHandler(ctx, syscall.SIGINT, syscall.SIGTERM))

	// Metrics server
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(telemetry.PrometheusRegistry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	server := &http.Server{Addr: daemonMetricsAddr, Handler: mux}
	g.Add(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}, func(error) {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = server.Shutdown(shutdownCtx)
	})

	// Scan loop
	loopCtx, loopCancel := context.WithCancel(ctx)
	g.Add(func() error {
		scanOnce(loopCtx, orchestrator, cfg, regions, logger)

		ticker := time.NewTicker(daemonInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				scanOnce(loopCtx, orchestrator, cfg, regions, logger)
			case <-loopCtx.Done():
				return loopCtx.Err()
			}
		}
	}, func(error) {
		loopCancel()
	})

	err = g.Run()
	var sig run.SignalError
	if errors.As(err, &sig) || errors.Is(err, context.Canceled) {
		logger.Info().Msg("daemon stopped")
		return nil
	}
	return err
}

// scanOnce runs one full scan, records it in history and updates the
// cost gauge. Failures are logged, never fatal: the next tick retries.
func scanOnce(ctx context.Context, orchestrator *scan.Orchestrator, cfg config.Config, regions []string, logger *telemetry.Logger) {
	scanReport, err := orchestrator.Collect(ctx, regions)
	if err != nil {
		logger.Error().Err(err).Msg("scan aborted")
		return
	}

	if telemetry.MonthlyCostFound != nil {
		telemetry.MonthlyCostFound.Record(ctx, scanReport.TotalMonthlyCost())
	}

	if err := recordHistory(cfg, scanReport); err != nil {
		logger.Warn().Err(err).Msg("failed to record scan history")
	}

	report.WriteFailureSummary(logWriter{logger}, scanReport)

	logger.Info().
		Int("resources", scanReport.TotalResources()).
		Float64("monthly_cost", scanReport.TotalMonthlyCost()).
		Dur("duration", scanReport.Duration).
		Msg("scan complete")
}

// logWriter routes table output through the structured logger.
type logWriter struct {
	logger *telemetry.Logger
}

func (w logWriter) Write(p []byte) (int, error) {
	w.logger.Warn().Msg(string(p))
	return len(p), nil
}
