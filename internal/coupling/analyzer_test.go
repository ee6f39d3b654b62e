package coupling

import (
	"testing"

	"github.com/reposcope/reposcope/internal/config"
	"github.com/reposcope/reposcope/internal/gitminer"
	"github.com/reposcope/reposcope/internal/graph"
)

func trackedGraph(files []string, importEdges [][2]string) *graph.KnowledgeGraph {
	g := graph.NewKnowledgeGraph()
	for _, f := range files {
		g.Nodes[f] = &graph.Node{ID: f, Kind: graph.KindFile, Name: f, FilePath: f, LineStart: 1, LineEnd: 1}
	}
	for _, e := range importEdges {
		g.Edges = append(g.Edges, graph.Edge{Source: e[0], Target: e[1], Type: graph.EdgeImports})
	}
	return g
}

func commit(sha string, paths ...string) gitminer.Commit {
	c := gitminer.Commit{SHA: sha}
	for _, p := range paths {
		c.Files = append(c.Files, gitminer.FileChange{Path: p})
	}
	return c
}

func defaultCfg() config.CouplingConfig {
	return config.Default().Coupling
}

func TestAnalyzeMinNormalizedStrength(t *testing.T) {
	g := trackedGraph([]string{"a.go", "b.go"}, nil)
	commits := []gitminer.Commit{
		commit("1", "a.go", "b.go"),
		commit("2", "a.go", "b.go"),
		commit("3", "a.go"),
		commit("4", "a.go"),
	}

	result := Analyze(g, commits, defaultCfg())
	if len(result.Pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(result.Pairs))
	}

	p := result.Pairs[0]
	// a.go has 4 commits, b.go has 2, co-changes 2: strength = 2/min(4,2) = 1.0
	if p.Strength != 1.0 {
		t.Errorf("expected strength 1.0, got %f", p.Strength)
	}
	if p.CommitsA != 4 || p.CommitsB != 2 {
		t.Errorf("unexpected commit counts: %+v", p)
	}
}

func TestAnalyzeNoSharedCommitsNoPair(t *testing.T) {
	g := trackedGraph([]string{"a.go", "b.go"}, nil)
	commits := []gitminer.Commit{
		commit("1", "a.go"),
		commit("2", "b.go"),
	}

	cfg := defaultCfg()
	cfg.MinStrength = 0 // even with no threshold, disjoint files never pair
	result := Analyze(g, commits, cfg)
	if len(result.Pairs) != 0 {
		t.Errorf("files with zero shared commits must never pair, got %v", result.Pairs)
	}
}

func TestAnalyzeDropsBelowMinStrength(t *testing.T) {
	g := trackedGraph([]string{"a.go", "b.go"}, nil)
	commits := []gitminer.Commit{
		commit("1", "a.go", "b.go"),
		commit("2", "a.go"),
		commit("3", "a.go"),
		commit("4", "b.go"),
		commit("5", "b.go"),
	}

	cfg := defaultCfg()
	cfg.MinStrength = 0.5
	// strength = 1/min(3,3) = 0.33 < 0.5
	result := Analyze(g, commits, cfg)
	if len(result.Pairs) != 0 {
		t.Errorf("pairs below minStrength must be dropped, got %v", result.Pairs)
	}
}

func TestAnalyzeClassifications(t *testing.T) {
	g := trackedGraph(
		[]string{"a.go", "b.go", "c.go", "d.go"},
		[][2]string{{"c.go", "d.go"}}, // only c-d share an edge
	)

	commits := []gitminer.Commit{
		// a-b: strong coupling, no edge -> hidden
		commit("1", "a.go", "b.go"),
		commit("2", "a.go", "b.go"),
		commit("3", "a.go", "b.go"),
		// c-d: edge exists, rarely co-change -> suspicious
		commit("4", "c.go", "d.go"),
		commit("5", "c.go"), commit("6", "c.go"), commit("7", "c.go"),
		commit("8", "c.go"), commit("9", "c.go"), commit("10", "c.go"),
		commit("11", "d.go"), commit("12", "d.go"), commit("13", "d.go"),
		commit("14", "d.go"), commit("15", "d.go"), commit("16", "d.go"),
	}

	cfg := defaultCfg()
	cfg.MinStrength = 0.1
	result := Analyze(g, commits, cfg)

	byPair := make(map[string]Pair)
	for _, p := range result.Pairs {
		byPair[p.FileA+"|"+p.FileB] = p
	}

	ab, ok := byPair["a.go|b.go"]
	if !ok {
		t.Fatal("expected a-b pair")
	}
	if ab.Classification != Hidden {
		t.Errorf("a-b should be hidden (strength %.2f, no edge), got %s", ab.Strength, ab.Classification)
	}

	cd, ok := byPair["c.go|d.go"]
	if !ok {
		t.Fatal("expected c-d pair")
	}
	// strength = 1/min(7,7) ~ 0.14 < suspicious threshold 0.2
	if cd.Classification != Suspicious {
		t.Errorf("c-d should be suspicious (strength %.2f, edge exists), got %s", cd.Strength, cd.Classification)
	}

	if result.HiddenCount != 1 {
		t.Errorf("expected 1 hidden pair, got %d", result.HiddenCount)
	}
	if len(result.Recommendations) == 0 {
		t.Error("expected recommendations for hidden and suspicious pairs")
	}
}

func TestAnalyzeIgnoresUntrackedFiles(t *testing.T) {
	g := trackedGraph([]string{"a.go"}, nil)
	commits := []gitminer.Commit{
		commit("1", "a.go", "vendor/lib.go"),
		commit("2", "a.go", "vendor/lib.go"),
	}

	result := Analyze(g, commits, defaultCfg())
	if len(result.Pairs) != 0 {
		t.Errorf("untracked files must not form pairs, got %v", result.Pairs)
	}
}

func TestAnalyzeRankedByStrength(t *testing.T) {
	g := trackedGraph([]string{"a.go", "b.go", "x.go", "y.go"}, nil)
	commits := []gitminer.Commit{
		commit("1", "a.go", "b.go"),
		commit("2", "a.go", "b.go"),
		commit("3", "x.go", "y.go"),
		commit("4", "x.go"),
		commit("5", "y.go"),
	}

	cfg := defaultCfg()
	cfg.MinStrength = 0.1
	result := Analyze(g, commits, cfg)
	if len(result.Pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(result.Pairs))
	}
	if result.Pairs[0].Strength < result.Pairs[1].Strength {
		t.Error("pairs must be ranked by strength descending")
	}
}

func TestAnalyzeStrengthClamped(t *testing.T) {
	g := trackedGraph([]string{"a.go", "b.go"}, nil)
	// Duplicate path entries within one commit must not inflate counts.
	c := gitminer.Commit{SHA: "1", Files: []gitminer.FileChange{
		{Path: "a.go"}, {Path: "a.go"}, {Path: "b.go"},
	}}

	result := Analyze(g, []gitminer.Commit{c}, defaultCfg())
	if len(result.Pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(result.Pairs))
	}
	if result.Pairs[0].Strength > 1 {
		t.Errorf("strength must be clamped to [0,1], got %f", result.Pairs[0].Strength)
	}
}
