package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yairfalse/kartta/config"
)

var (
	version    = "0.1.0"
	configPath string

	rootCmd = &cobra.Command{
		Use:   "kartta",
		Short: "AWS Resource Inventory and Cost Scanner",
		Long: `Kartta - AWS Resource Inventory and Cost Scanner

Kartta maps every resource in your AWS account: it scans all enabled
regions and services concurrently, estimates monthly cost per resource,
and renders the inventory as markdown, JSON, CSV or a terminal summary.`,
		Version: version,
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate(`Kartta {{.Version}} - AWS Resource Inventory and Cost Scanner
`)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
}

// loadConfig loads the config file when --config is set, defaults otherwise.
func loadConfig() (config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}
