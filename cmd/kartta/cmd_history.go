package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/yairfalse/kartta/storage"
)

var historyLimit int

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past scan runs",
	Long: `List summaries of past scan runs recorded in the local history
database: when each run started, how long it took, how many resources
it found, and the total estimated monthly cost.`,
	Example: `  kartta history             # Last 10 runs
  kartta history --limit 50  # Last 50 runs`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Maximum number of runs to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	history, err := storage.Open(cfg.HistoryPath)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer history.Close()

	runs, err := history.ListRuns(historyLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No scan runs recorded yet.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Scan History")
	t.AppendHeader(table.Row{"Started", "Duration", "Resources", "Monthly Cost", "Services", "Failures"})

	for _, run := range runs {
		var failures int
		for _, svc := range run.Services {
			failures += svc.FailedRegions
			if svc.Failed {
				failures++
			}
		}
		t.AppendRow(table.Row{
			run.StartedAt.Local().Format(time.DateTime),
			run.Duration.Round(time.Millisecond).String(),
			strconv.Itoa(run.TotalResources),
			fmt.Sprintf("$%.2f", run.TotalMonthlyCost),
			strconv.Itoa(len(run.Services)),
			strconv.Itoa(failures),
		})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}
