// Package main implements the unisbom command, which inventories the host's
// software, drivers, and operating system into a unified record set.
package main

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/unisbom/unisbom/internal/aggregator"
	"github.com/unisbom/unisbom/internal/collector"
	"github.com/unisbom/unisbom/internal/config"
	"github.com/unisbom/unisbom/internal/format"
	"github.com/unisbom/unisbom/internal/utils"
	"github.com/unisbom/unisbom/pkg/models"
)

var version = "1.0.0"

var (
	flagFormat   string
	flagOutput   string
	flagSnapshot string
	flagPlatform string
)

var rootCmd = &cobra.Command{
	Use:   "unisbom",
	Short: "Build a minimal software bill of materials of the current host",
	Long: `unisbom inventories the installed applications, drivers or kernel
extensions, and the operating system itself, and emits them as one unified,
platform-independent record set.

The inventory goes to stdout; logging and diagnostics go to stderr. With
--snapshot the raw sources are read from dump files in a directory instead
of the live host, which combined with --platform allows inspecting dumps
taken on another machine.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&flagFormat, "format", "", "output format: text or json (default text)")
	rootCmd.Flags().StringVar(&flagOutput, "output", "", "write the inventory to a file instead of stdout")
	rootCmd.Flags().StringVar(&flagSnapshot, "snapshot", "", "read raw sources from a snapshot directory instead of the host")
	rootCmd.Flags().StringVar(&flagPlatform, "platform", "", "force the platform branch: darwin, windows or linux")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	utils.InitDefaultLogger("unisbom")

	cfg := config.Load()
	if flagFormat != "" {
		cfg.Format = flagFormat
	}
	if flagOutput != "" {
		cfg.Output = flagOutput
	}
	if flagSnapshot != "" {
		cfg.Snapshot = flagSnapshot
	}
	if flagPlatform != "" {
		cfg.Platform = flagPlatform
	}

	mode, err := format.ParseMode(cfg.Format)
	if err != nil {
		return err
	}

	col, err := buildCollector(cfg)
	if err != nil {
		return err
	}

	runID := utils.GenerateRunID()
	utils.LogInfo("collecting inventory", map[string]string{
		"run_id":   runID,
		"platform": col.Platform(),
	})

	inv, err := aggregator.Run(col)
	if inv != nil {
		logDiagnostics(inv.Diagnostics)
	}
	if err != nil {
		utils.LogError("collection failed", map[string]string{
			"run_id": runID,
			"error":  err.Error(),
		})
		return err
	}

	utils.LogInfo("collection finished", map[string]string{
		"run_id":      runID,
		"records":     strconv.Itoa(len(inv.Records)),
		"diagnostics": strconv.Itoa(len(inv.Diagnostics)),
	})

	out := cmd.OutOrStdout()
	if cfg.Output != "" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	return format.Write(out, inv, mode)
}

// buildCollector picks the platform branch once at startup: the snapshot
// wiring when a dump directory is given, the live wiring otherwise.
func buildCollector(cfg *config.Config) (collector.Collector, error) {
	if cfg.Snapshot != "" {
		platform := cfg.Platform
		if platform == "" {
			platform = runtime.GOOS
		}
		return collector.ForSnapshot(platform, cfg.Snapshot)
	}
	if cfg.Platform != "" {
		return collector.ForPlatform(cfg.Platform)
	}
	return collector.ForHost()
}

func logDiagnostics(diags []models.Diagnostic) {
	for _, d := range diags {
		utils.LogWarn("skipped malformed fragment", map[string]string{
			"source": d.Source,
			"detail": d.Detail,
		})
	}
}
