package cost

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reposcope/reposcope/internal/busfactor"
	"github.com/reposcope/reposcope/internal/config"
	"github.com/reposcope/reposcope/internal/cycles"
	"github.com/reposcope/reposcope/internal/gitminer"
	"github.com/reposcope/reposcope/internal/graph"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func intPtr(v int) *int { return &v }

func hotspotGraph() *graph.KnowledgeGraph {
	g := graph.NewKnowledgeGraph()
	g.Nodes["pkg/engine.go"] = &graph.Node{
		ID: "pkg/engine.go", Kind: graph.KindFile, FilePath: "pkg/engine.go",
		LineStart: 1, LineEnd: 400,
	}
	g.Nodes["pkg/engine.go:Run"] = &graph.Node{
		ID: "pkg/engine.go:Run", Kind: graph.KindFunction, FilePath: "pkg/engine.go",
		Complexity: intPtr(25), Exported: true,
	}
	g.Nodes["pkg/util.go"] = &graph.Node{
		ID: "pkg/util.go", Kind: graph.KindFile, FilePath: "pkg/util.go",
		LineStart: 1, LineEnd: 40,
	}
	g.Nodes["pkg/util.go:helper"] = &graph.Node{
		ID: "pkg/util.go:helper", Kind: graph.KindFunction, FilePath: "pkg/util.go",
		Complexity: intPtr(5),
	}
	g.Edges = append(g.Edges, graph.Edge{Source: "pkg/util.go", Target: "pkg/engine.go:Run", Type: graph.EdgeImports})
	return g
}

func commitsTouching(path string, n, linesEach int) []gitminer.Commit {
	var commits []gitminer.Commit
	for i := 0; i < n; i++ {
		commits = append(commits, gitminer.Commit{
			SHA:   "abc",
			Files: []gitminer.FileChange{{Path: path, Additions: linesEach}},
		})
	}
	return commits
}

func TestHotspotCosting(t *testing.T) {
	in := Inputs{Graph: hotspotGraph(), Commits: commitsTouching("pkg/engine.go", 5, 100)}
	result := Estimate(in, config.Default().Cost, quietLogger())

	var hotspots CategoryCost
	for _, cc := range result.Categories {
		if cc.Name == CategoryHotspots {
			hotspots = cc
		}
	}
	require.True(t, hotspots.Available)
	require.Len(t, hotspots.Items, 1, "low-complexity file must not be a hotspot")
	item := hotspots.Items[0]
	assert.Equal(t, "pkg/engine.go", item.File)
	// complexity 25 * 0.4 * churn factor (1 + 500/1000) * priority 1.5
	assert.InDelta(t, 22.5, item.Hours, 0.001)
	assert.InDelta(t, 2250, item.Cost, 0.001)
}

func TestHotspotRequiresBothComplexityAndChurn(t *testing.T) {
	// High complexity but only one commit: not a hotspot.
	in := Inputs{Graph: hotspotGraph(), Commits: commitsTouching("pkg/engine.go", 1, 100)}
	items, err := hotspotCosts(in, config.Default().Cost)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestHotspotLineChurnScalesEffort(t *testing.T) {
	// Same commit count, ten times the churned lines: more hours.
	quiet := commitsTouching("pkg/engine.go", 5, 10)
	noisy := commitsTouching("pkg/engine.go", 5, 100)

	quietItems, err := hotspotCosts(Inputs{Graph: hotspotGraph(), Commits: quiet}, config.Default().Cost)
	require.NoError(t, err)
	noisyItems, err := hotspotCosts(Inputs{Graph: hotspotGraph(), Commits: noisy}, config.Default().Cost)
	require.NoError(t, err)

	require.Len(t, quietItems, 1)
	require.Len(t, noisyItems, 1)
	assert.Greater(t, noisyItems[0].Hours, quietItems[0].Hours)
	// 50 churned lines: factor 1.05, hours = 25 * 0.4 * 1.05 * 1.5.
	assert.InDelta(t, 15.75, quietItems[0].Hours, 0.001)
}

func TestBusFactorCosting(t *testing.T) {
	g := hotspotGraph()
	busRisks := &busfactor.Result{Files: []busfactor.FileRisk{
		{Path: "pkg/engine.go", BusFactor: 1, TopOwner: "alice", TopOwnerShare: 0.9},
		{Path: "pkg/util.go", BusFactor: 3, TopOwner: "bob", TopOwnerShare: 0.4},
	}}

	items, err := busFactorCosts(Inputs{Graph: g, BusRisks: busRisks}, config.Default().Cost)
	require.NoError(t, err)
	require.Len(t, items, 1, "only bus-factor-1 files carry replacement cost")
	assert.Equal(t, "pkg/engine.go", items[0].File)
	// 400 lines / 50, no criticality bump (fewer than 5 importers)
	assert.InDelta(t, 8.0, items[0].Hours, 0.001)
	assert.Contains(t, items[0].Detail, "alice")
}

func TestCycleCostStepFunction(t *testing.T) {
	cyc := &cycles.Result{Cycles: []cycles.Cycle{
		{Files: []string{"a", "b", "c"}, Length: 3, Severity: cycles.SeverityLow},
		{Files: []string{"d", "e", "f", "g", "h"}, Length: 5, Severity: cycles.SeverityMedium},
		{Files: []string{"i", "j", "k", "l", "m", "n", "o"}, Length: 7, Severity: cycles.SeverityHigh},
	}}

	items, err := cycleCosts(Inputs{Cycles: cyc}, config.Default().Cost)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.InDelta(t, 4, items[0].Hours, 0.001)
	assert.InDelta(t, 12, items[1].Hours, 0.001)
	assert.InDelta(t, 40, items[2].Hours, 0.001)
}

func TestUnusedExports(t *testing.T) {
	g := graph.NewKnowledgeGraph()
	g.Nodes["a.go"] = &graph.Node{ID: "a.go", Kind: graph.KindFile, FilePath: "a.go"}
	g.Nodes["a.go:Used"] = &graph.Node{ID: "a.go:Used", Kind: graph.KindFunction, FilePath: "a.go", Exported: true}
	g.Nodes["a.go:Orphan"] = &graph.Node{ID: "a.go:Orphan", Kind: graph.KindFunction, FilePath: "a.go", Exported: true}
	g.Nodes["a.go:internal"] = &graph.Node{ID: "a.go:internal", Kind: graph.KindFunction, FilePath: "a.go"}
	g.Edges = []graph.Edge{
		{Source: "b.go", Target: "a.go:Used", Type: graph.EdgeImports},
		// Structural containment does not count as a reference.
		{Source: "a.go", Target: "a.go:Orphan", Type: graph.EdgeContains},
	}

	unused := UnusedExports(g)
	require.Len(t, unused, 1)
	assert.Equal(t, "a.go:Orphan", unused[0].ID)
}

func TestCategoryFaultIsolation(t *testing.T) {
	// No graph: hotspots and dead code fail, cycles still report.
	in := Inputs{Cycles: &cycles.Result{Cycles: []cycles.Cycle{
		{Files: []string{"a", "b"}, Length: 2, Severity: cycles.SeverityLow},
	}}}
	result := Estimate(in, config.Default().Cost, quietLogger())

	byName := make(map[string]CategoryCost)
	for _, cc := range result.Categories {
		byName[cc.Name] = cc
	}
	assert.False(t, byName[CategoryHotspots].Available)
	assert.NotEmpty(t, byName[CategoryHotspots].Reason)
	assert.False(t, byName[CategoryDeadCode].Available)
	assert.True(t, byName[CategoryCycles].Available)
	assert.InDelta(t, 400, result.TotalCost, 0.001, "unavailable categories contribute nothing")
}

func TestPanicInCategoryIsContained(t *testing.T) {
	cc := runCategory("boom", func(Inputs, config.CostConfig) ([]Item, error) {
		panic("exploded")
	}, Inputs{}, config.Default().Cost, quietLogger())

	assert.False(t, cc.Available)
	assert.Contains(t, cc.Reason, "boom")
}

func TestPerFileMergeAndQuickWins(t *testing.T) {
	categories := []CategoryCost{
		{Name: CategoryHotspots, Available: true, Items: []Item{
			{File: "x.go", Hours: 4, Cost: 400, Detail: "hot"},
			{File: "y.go", Hours: 20, Cost: 2000, Detail: "too big for a quick win"},
		}},
		{Name: CategoryBusFactor, Available: true, Items: []Item{
			{File: "x.go", Hours: 2, Cost: 600, Detail: "single owner"},
			{File: "z.go", Hours: 1, Cost: 100, Detail: "below the cost floor"},
		}},
		{Name: CategoryDeadCode, Available: false, Items: []Item{
			{File: "x.go", Hours: 99, Cost: 9900},
		}},
	}

	merged := mergePerFile(categories)
	require.Len(t, merged, 3)
	assert.Equal(t, "y.go", merged[0].File, "sorted by cost descending")
	assert.InDelta(t, 1000, costFor(merged, "x.go"), 0.001, "unavailable categories excluded from merge")

	wins := quickWins(categories, config.Default().Cost)
	require.Len(t, wins, 2)
	// x.go bus-factor item: 600/2 = 300 ROI beats x.go hotspot 400/4 = 100.
	assert.Equal(t, CategoryBusFactor, wins[0].Category)
	assert.InDelta(t, 300, wins[0].ROI, 0.001)
}

func costFor(files []FileCost, path string) float64 {
	for _, fc := range files {
		if fc.File == path {
			return fc.Cost
		}
	}
	return 0
}

func TestEstimateOnHealthyRepo(t *testing.T) {
	g := graph.NewKnowledgeGraph()
	g.Nodes["a.go"] = &graph.Node{ID: "a.go", Kind: graph.KindFile, FilePath: "a.go", LineStart: 1, LineEnd: 10}
	g.Metadata.ScannedAt = time.Now()

	in := Inputs{
		Graph:    g,
		BusRisks: &busfactor.Result{},
		Cycles:   &cycles.Result{},
	}
	result := Estimate(in, config.Default().Cost, quietLogger())

	assert.Zero(t, result.TotalCost)
	assert.Empty(t, result.QuickWins)
	for _, cc := range result.Categories {
		assert.True(t, cc.Available, cc.Name)
	}
}
