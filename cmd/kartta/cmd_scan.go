package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/yairfalse/kartta/config"
	"github.com/yairfalse/kartta/providers"
	_ "github.com/yairfalse/kartta/providers/aws"
	"github.com/yairfalse/kartta/report"
	"github.com/yairfalse/kartta/scan"
	"github.com/yairfalse/kartta/storage"
	"github.com/yairfalse/kartta/telemetry"
	"github.com/yairfalse/kartta/types"
)

const defaultReportPath = "aws-resources-report.md"

var (
	scanProvider     string
	scanRegions      string
	scanSkipRegions  string
	scanServices     string
	scanSkipServices string
	scanOutput       string
	scanFormat       string
	scanStreaming    bool
	scanNoProgress   bool
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan all regions and services for resources and costs",
	Long: `Scan your AWS account across every enabled region and supported
service, estimate each resource's monthly cost, and write a report.

Regions and services fan out concurrently with per-service rate
limiting and retries. A failed region or service never aborts the
run: its error lands in the report's failure summary instead.`,
	Example: `  kartta scan                                # Scan everything, write markdown
  kartta scan --regions us-east-1,eu-west-1  # Only these regions
  kartta scan --skip-services ec2            # Everything but EC2
  kartta scan --format json -o report.json   # JSON report
  kartta scan --streaming                    # Constant-memory streaming report`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanProvider, "provider", "aws", "Cloud provider")
	scanCmd.Flags().StringVar(&scanRegions, "regions", "", "Comma-separated regions to scan (default: all enabled)")
	scanCmd.Flags().StringVar(&scanSkipRegions, "skip-regions", "", "Comma-separated regions to skip")
	scanCmd.Flags().StringVar(&scanServices, "services", "", "Comma-separated services to scan (default: all)")
	scanCmd.Flags().StringVar(&scanSkipServices, "skip-services", "", "Comma-separated services to skip")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "", "Output file path (- for stdout)")
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "", "Output format: markdown, json, csv")
	scanCmd.Flags().BoolVar(&scanStreaming, "streaming", false, "Stream resources to the report as they arrive")
	scanCmd.Flags().BoolVar(&scanNoProgress, "no-progress", false, "Disable the progress spinner")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyScanFlags(&cfg)

	switch cfg.OutputFormat {
	case "markdown", "json", "csv":
	default:
		return fmt.Errorf("invalid output format: %s (must be one of: markdown, json, csv)", cfg.OutputFormat)
	}

	logger := telemetry.NewLogger("kartta")
	logger.SetLevel(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	provider, err := providers.GetProvider(ctx, scanProvider)
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

	observer, stopProgress := progressObserver(len(cfg.FilterServices(registry.Names())))
	defer stopProgress()

	orchestrator := scan.NewOrchestrator(registry, cfg, logger, observer)

	var scanReport types.ScanReport
	if scanStreaming {
		scanReport, err = runStreaming(ctx, orchestrator, cfg, regions)
	} else {
		scanReport, err = runCollect(ctx, orchestrator, cfg, regions)
	}
	if err != nil {
		return err
	}
	stopProgress()

	report.WriteConsoleSummary(os.Stdout, scanReport)
	report.WriteFailureSummary(os.Stdout, scanReport)

	if err := recordHistory(cfg, scanReport); err != nil {
		logger.Warn().Err(err).Msg("failed to record scan history")
	}

	logger.Info().
		Int("resources", scanReport.TotalResources()).
		Float64("monthly_cost", scanReport.TotalMonthlyCost()).
		Dur("duration", scanReport.Duration).
		Msg("scan complete")
	return nil
}

func runCollect(ctx context.Context, orchestrator *scan.Orchestrator, cfg config.Config, regions []string) (types.ScanReport, error) {
	scanReport, err := orchestrator.Collect(ctx, regions)
	if err != nil {
		return scanReport, err
	}
	return scanReport, writeReport(cfg, scanReport)
}

func runStreaming(ctx context.Context, orchestrator *scan.Orchestrator, cfg config.Config, regions []string) (types.ScanReport, error) {
	if cfg.OutputFormat != "markdown" {
		fmt.Fprintf(os.Stderr, "format %q not supported in streaming mode, using markdown\n", cfg.OutputFormat)
	}

	out, err := os.Create(outputPath(cfg))
	if err != nil {
		return types.ScanReport{}, fmt.Errorf("create report file: %w", err)
	}
	defer out.Close()

	resources, reportCh := orchestrator.Stream(ctx, regions)

	sw := report.NewStreamWriter(out)
	for resource := range resources {
		if err := sw.Add(resource); err != nil {
			return types.ScanReport{}, fmt.Errorf("write report: %w", err)
		}
	}
	if err := sw.Close(); err != nil {
		return types.ScanReport{}, fmt.Errorf("finish report: %w", err)
	}

	return <-reportCh, ctx.Err()
}

func writeReport(cfg config.Config, scanReport types.ScanReport) error {
	var out *os.File
	if path := outputPath(cfg); path == "-" {
		out = os.Stdout
	} else {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create report file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch cfg.OutputFormat {
	case "json":
		return report.WriteJSON(out, scanReport)
	case "csv":
		return report.WriteCSV(out, scanReport)
	default:
		return report.WriteMarkdown(out, scanReport)
	}
}

func outputPath(cfg config.Config) string {
	if cfg.OutputPath != "" {
		return cfg.OutputPath
	}
	return defaultReportPath
}

// progressObserver renders a spinner that ticks per completed service.
// The returned stop function is idempotent.
func progressObserver(totalServices int) (scan.Observer, func()) {
	if scanNoProgress {
		return nil, func() {}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = fmt.Sprintf(" scanning %d services...", totalServices)
	s.Start()

	var done atomic.Int64
	observer := func(e scan.Event) {
		if e.Type != scan.EventServiceDone {
			return
		}
		s.Suffix = fmt.Sprintf(" scanned %d/%d services", done.Add(1), totalServices)
	}

	var stopped atomic.Bool
	stop := func() {
		if stopped.CompareAndSwap(false, true) {
			s.Stop()
		}
	}
	return observer, stop
}

func recordHistory(cfg config.Config, scanReport types.ScanReport) error {
	history, err := storage.Open(cfg.HistoryPath)
	if err != nil {
		return err
	}
	defer history.Close()
	return history.RecordRun(scanReport)
}

func applyScanFlags(cfg *config.Config) {
	if scanRegions != "" {
		cfg.OnlyRegions = splitFlagList(scanRegions)
	}
	if scanSkipRegions != "" {
		cfg.SkipRegions = splitFlagList(scanSkipRegions)
	}
	if scanServices != "" {
		cfg.OnlyServices = splitFlagList(scanServices)
	}
	if scanSkipServices != "" {
		cfg.SkipServices = splitFlagList(scanSkipServices)
	}
	if scanOutput != "" {
		cfg.OutputPath = scanOutput
	}
	if scanFormat != "" {
		cfg.OutputFormat = scanFormat
	}
}

func splitFlagList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
