package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/reposcope/reposcope/internal/graph"
	"github.com/reposcope/reposcope/internal/history"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show graph, history and git status for this repository",
	Long:  `Display whether a knowledge graph exists, how fresh it is, how many health snapshots are stored, and whether git history is available.`,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	fmt.Printf("🔍 RepoScope Status\n")
	fmt.Printf("%s\n", strings.Repeat("═", 50))

	fmt.Printf("\n📦 Knowledge Graph:\n")
	result := graph.NewStore(logger).Load(rootDir)
	switch result.State {
	case graph.StateMissing:
		fmt.Printf("  Status: ❌ Not scanned (run your scanner, then retry)\n")
	case graph.StateCorrupt:
		fmt.Printf("  Status: ⚠️  Corrupt state file: %v\n", result.Err)
		fmt.Printf("  Fix: delete %s and re-scan\n", graph.NewStore(logger).Path(rootDir))
	default:
		meta := result.Graph.Metadata
		fmt.Printf("  Status: ✅ Loaded\n")
		fmt.Printf("  Files: %d\n", meta.FileCount)
		fmt.Printf("  Lines: %d\n", meta.TotalLines)
		fmt.Printf("  Nodes: %d  Edges: %d\n", len(result.Graph.Nodes), len(result.Graph.Edges))
		if !meta.ScannedAt.IsZero() {
			fmt.Printf("  Scanned: %s (%s ago)\n",
				meta.ScannedAt.Format("2006-01-02 15:04:05"),
				formatDuration(time.Since(meta.ScannedAt)))
		}
	}

	fmt.Printf("\n📈 History:\n")
	snaps, err := history.NewStore(cfg.History.MaxSnapshots, logger).LoadAll(rootDir)
	if err != nil {
		fmt.Printf("  Status: ⚠️  %v\n", err)
	} else if len(snaps) == 0 {
		fmt.Printf("  Snapshots: none\n")
	} else {
		fmt.Printf("  Snapshots: %d (max %d)\n", len(snaps), cfg.History.MaxSnapshots)
		fmt.Printf("  Latest: %s (health %.1f)\n", snaps[0].ID, snaps[0].Metrics.HealthScore)
	}

	fmt.Printf("\n🔗 Git:\n")
	miner, closeCache := newMiner()
	defer closeCache()
	if miner.Available(ctx) {
		fmt.Printf("  Status: ✅ Repository detected\n")
		if head := miner.HeadSHA(ctx); head != "" {
			fmt.Printf("  HEAD: %s\n", head[:min(8, len(head))])
		}
		if tags := miner.Tags(ctx); len(tags) > 0 {
			latest := tags[len(tags)-1]
			fmt.Printf("  Tags: %d (latest %s, %s)\n", len(tags), latest.Name, latest.Date.Format("2006-01-02"))
		}
	} else {
		fmt.Printf("  Status: ❌ Not a git repository (history-based analysis degrades to empty)\n")
	}

	return nil
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%.1fh", d.Hours())
	}
	return fmt.Sprintf("%.1fd", d.Hours()/24)
}
