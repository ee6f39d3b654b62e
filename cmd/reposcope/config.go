package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reposcope/reposcope/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage RepoScope configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file to .reposcope/config.yaml",
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if jsonOut {
		return printJSON(cfg)
	}

	fmt.Printf("⚙️  Configuration\n")
	fmt.Printf("%s\n", strings.Repeat("═", 50))
	fmt.Printf("\nHistory:\n")
	fmt.Printf("  max_snapshots: %d\n", cfg.History.MaxSnapshots)
	fmt.Printf("\nGit:\n")
	fmt.Printf("  max_commits: %d\n", cfg.Git.MaxCommits)
	fmt.Printf("  window_days: %d\n", cfg.Git.WindowDays)
	fmt.Printf("  concurrency: %d\n", cfg.Git.Concurrency)
	fmt.Printf("\nCoupling:\n")
	fmt.Printf("  min_strength: %.2f\n", cfg.Coupling.MinStrength)
	fmt.Printf("  hidden_threshold: %.2f\n", cfg.Coupling.HiddenThreshold)
	fmt.Printf("  suspicious_threshold: %.2f\n", cfg.Coupling.SuspiciousThreshold)
	fmt.Printf("\nBus factor:\n")
	fmt.Printf("  significant_share: %.2f\n", cfg.BusFactor.SignificantShare)
	fmt.Printf("  sole_owner_share: %.2f\n", cfg.BusFactor.SoleOwnerShare)
	fmt.Printf("  stale_days: %d\n", cfg.BusFactor.StaleDays)
	fmt.Printf("\nCost:\n")
	fmt.Printf("  hourly_rate: $%.0f\n", cfg.Cost.HourlyRate)
	fmt.Printf("  quick_win_max_hours: %.1f\n", cfg.Cost.QuickWinMax)
	fmt.Printf("  quick_win_min_cost: $%.0f\n", cfg.Cost.QuickWinMin)
	fmt.Printf("\nTrends:\n")
	fmt.Printf("  stable_band: %.1f\n", cfg.Trends.StableBand)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := config.WriteDefault(rootDir)
	if err != nil {
		return err
	}
	fmt.Printf("✅ Wrote default configuration to %s\n", path)
	return nil
}
