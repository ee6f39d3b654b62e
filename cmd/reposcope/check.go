package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reposcope/reposcope/internal/diff"
	"github.com/reposcope/reposcope/internal/risk"
)

var (
	checkBranch string
	checkCommit string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Assess the risk of pending changes",
	Long: `Scores the staged changes (or a branch diff, or one commit) across six
weighted factors: files changed, lines changed, complexity of touched
code, downstream dependents, bus factor and test coverage.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkBranch, "branch", "", "compare HEAD against this base branch")
	checkCmd.Flags().StringVar(&checkCommit, "commit", "", "assess one specific commit")
	checkCmd.MarkFlagsMutuallyExclusive("branch", "commit")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	g, err := loadGraph()
	if err != nil {
		return err
	}

	scope := diff.Scope{Staged: true}
	if checkBranch != "" {
		scope = diff.Scope{Branch: checkBranch}
	}
	if checkCommit != "" {
		scope = diff.Scope{Commit: checkCommit}
	}

	changes := diff.NewProvider(rootDir, logger).Collect(ctx, scope)

	miner, closeCache := newMiner()
	defer closeCache()
	paths := make([]string, 0, len(changes))
	for _, c := range changes {
		paths = append(paths, c.Path)
	}
	stats := miner.StatsBatch(ctx, paths)

	assessment := risk.Score(g, changes, stats)
	if jsonOut {
		return printJSON(assessment)
	}

	fmt.Printf("⚖️  Risk Assessment\n")
	fmt.Printf("%s\n", strings.Repeat("═", 50))
	fmt.Printf("\n%s %s (score %d/100)\n", levelEmoji(assessment.Level), assessment.Summary, assessment.Overall)

	names := make([]string, 0, len(assessment.Factors))
	for name := range assessment.Factors {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("\nFactors:\n")
	for _, name := range names {
		f := assessment.Factors[name]
		fmt.Printf("  %-14s %3d × %.2f  %s\n", name, f.Score, f.Weight, f.Details)
	}

	if len(assessment.Recommendations) > 0 {
		fmt.Printf("\n💡 Recommendations:\n")
		for _, r := range assessment.Recommendations {
			fmt.Printf("  - %s\n", r)
		}
	}
	return nil
}

func levelEmoji(l risk.Level) string {
	switch l {
	case risk.LevelLow:
		return "✅"
	case risk.LevelMedium:
		return "🟡"
	case risk.LevelHigh:
		return "🟠"
	}
	return "🔴"
}
