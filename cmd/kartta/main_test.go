package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yairfalse/kartta/config"
)

func TestApplyScanFlags(t *testing.T) {
	scanRegions = "us-east-1, eu-west-1"
	scanSkipRegions = "ap-south-1"
	scanServices = ""
	scanSkipServices = "ec2"
	scanOutput = "out.md"
	scanFormat = "json"
	t.Cleanup(func() {
		scanRegions, scanSkipRegions, scanServices, scanSkipServices = "", "", "", ""
		scanOutput, scanFormat = "", ""
	})

	cfg := config.Default()
	applyScanFlags(&cfg)

	assert.Equal(t, []string{"us-east-1", "eu-west-1"}, cfg.OnlyRegions)
	assert.Equal(t, []string{"ap-south-1"}, cfg.SkipRegions)
	assert.Empty(t, cfg.OnlyServices)
	assert.Equal(t, []string{"ec2"}, cfg.SkipServices)
	assert.Equal(t, "out.md", cfg.OutputPath)
	assert.Equal(t, "json", cfg.OutputFormat)
}

func TestOutputPath(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, defaultReportPath, outputPath(cfg))

	cfg.OutputPath = "custom.md"
	assert.Equal(t, "custom.md", outputPath(cfg))
}

func TestSplitFlagList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitFlagList("a, b,"))
	assert.Nil(t, splitFlagList(""))
}
