package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reposcope/reposcope/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage stored health snapshots",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots, newest first",
	RunE:  runHistoryList,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all stored snapshots",
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store := history.NewStore(cfg.History.MaxSnapshots, logger)
	snaps, err := store.LoadAll(rootDir)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(snaps)
	}

	fmt.Printf("📜 Snapshot History\n")
	fmt.Printf("%s\n", strings.Repeat("═", 50))

	if len(snaps) == 0 {
		fmt.Printf("\nNo snapshots stored.\n")
		return nil
	}

	fmt.Printf("\n%s (max %d):\n", plural(len(snaps), "snapshot"), cfg.History.MaxSnapshots)
	for _, s := range snaps {
		commit := ""
		if s.CommitHash != "" {
			commit = " @" + s.CommitHash[:min(8, len(s.CommitHash))]
		}
		fmt.Printf("  %s%s  health %.1f, %d files, avg complexity %.1f\n",
			s.ID, commit, s.Metrics.HealthScore, s.Metrics.FileCount, s.Metrics.AvgComplexity)
	}
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	store := history.NewStore(cfg.History.MaxSnapshots, logger)
	if err := store.Clear(rootDir); err != nil {
		return err
	}
	fmt.Printf("✅ Snapshot history cleared.\n")
	return nil
}
