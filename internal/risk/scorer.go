package risk

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/reposcope/reposcope/internal/diff"
	"github.com/reposcope/reposcope/internal/gitminer"
	"github.com/reposcope/reposcope/internal/graph"
)

// Breakpoints mapping raw measurements to 0-100 factor scores. Kept in one
// place so they can be tuned and tested independently.
var (
	filesChangedBreaks = []breakpoint{{1, 10}, {3, 25}, {6, 45}, {10, 65}, {20, 80}}
	linesChangedBreaks = []breakpoint{{20, 10}, {100, 30}, {300, 55}, {600, 75}}
	complexityBreaks   = []breakpoint{{5, 10}, {10, 35}, {20, 65}}
	dependentsBreaks   = []breakpoint{{0, 0}, {2, 20}, {5, 40}, {10, 60}, {20, 80}}
)

const breakCeiling = 95 // score past the last breakpoint

type breakpoint struct {
	upTo  int
	score int
}

func scoreFromBreaks(value int, breaks []breakpoint) int {
	for _, b := range breaks {
		if value <= b.upTo {
			return b.score
		}
	}
	return breakCeiling
}

// Score assesses one pending diff against the knowledge graph and per-file
// history. stats may be nil when git history is unavailable; the history
// factors then score zero ("no signal") with an explanatory detail.
func Score(g *graph.KnowledgeGraph, changes []diff.FileChange, stats map[string]*gitminer.FileStats) *Assessment {
	a := &Assessment{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Factors:   make(map[string]Factor),
	}

	if len(changes) == 0 {
		for name, weight := range factorWeights {
			a.Factors[name] = Factor{Name: name, Score: 0, Weight: weight, Details: "no changes to assess"}
		}
		a.Overall = 0
		a.Level = LevelLow
		a.Summary = "No pending changes found - nothing to assess."
		return a
	}

	a.Factors[FactorFilesChanged] = filesChangedFactor(changes)
	a.Factors[FactorLinesChanged] = linesChangedFactor(changes)
	a.Factors[FactorComplexity] = complexityFactor(g, changes)
	a.Factors[FactorDependents] = dependentsFactor(g, changes)
	a.Factors[FactorBusFactor] = busFactorFactor(changes, stats)
	a.Factors[FactorTestCoverage] = testCoverageFactor(changes)

	weighted := 0.0
	for _, f := range a.Factors {
		weighted += float64(f.Score) * f.Weight
	}
	a.Overall = int(math.Round(weighted))
	if a.Overall < 0 {
		a.Overall = 0
	}
	if a.Overall > 100 {
		a.Overall = 100
	}
	a.Level = levelFor(a.Overall)
	a.Recommendations = recommend(a)
	a.Summary = summarize(a, len(changes))
	return a
}

func filesChangedFactor(changes []diff.FileChange) Factor {
	count := len(changes)
	return Factor{
		Name:    FactorFilesChanged,
		Score:   scoreFromBreaks(count, filesChangedBreaks),
		Weight:  factorWeights[FactorFilesChanged],
		Details: fmt.Sprintf("%d files changed", count),
	}
}

func linesChangedFactor(changes []diff.FileChange) Factor {
	lines := 0
	for _, c := range changes {
		lines += c.Additions + c.Deletions
	}
	return Factor{
		Name:    FactorLinesChanged,
		Score:   scoreFromBreaks(lines, linesChangedBreaks),
		Weight:  factorWeights[FactorLinesChanged],
		Details: fmt.Sprintf("%d lines added or deleted", lines),
	}
}

// complexityFactor scores the most complex symbol touched by the change.
func complexityFactor(g *graph.KnowledgeGraph, changes []diff.FileChange) Factor {
	maxComplexity := 0
	var worst string
	for _, c := range changes {
		for _, n := range g.NodesInFile(c.Path) {
			if n.Complexity != nil && *n.Complexity > maxComplexity {
				maxComplexity = *n.Complexity
				worst = n.Name
			}
		}
	}

	details := "no measured complexity in touched files"
	var items []string
	if maxComplexity > 0 {
		details = fmt.Sprintf("highest complexity touched: %d (%s)", maxComplexity, worst)
		items = []string{worst}
	}
	return Factor{
		Name:    FactorComplexity,
		Score:   scoreFromBreaks(maxComplexity, complexityBreaks),
		Weight:  factorWeights[FactorComplexity],
		Details: details,
		Items:   items,
	}
}

// dependentsFactor sizes the blast radius: how many files transitively
// import anything in the change.
func dependentsFactor(g *graph.KnowledgeGraph, changes []diff.FileChange) Factor {
	rev := g.ReverseImportAdjacency()
	changed := make(map[string]bool, len(changes))
	for _, c := range changes {
		changed[c.Path] = true
	}

	impacted := make(map[string]bool)
	for _, c := range changes {
		for _, importer := range g.TransitiveImporters(c.Path, rev) {
			if !changed[importer] {
				impacted[importer] = true
			}
		}
	}

	items := make([]string, 0, len(impacted))
	for f := range impacted {
		items = append(items, f)
	}
	sort.Strings(items)
	if len(items) > 10 {
		items = items[:10]
	}

	return Factor{
		Name:    FactorDependents,
		Score:   scoreFromBreaks(len(impacted), dependentsBreaks),
		Weight:  factorWeights[FactorDependents],
		Details: fmt.Sprintf("%d files depend on this change", len(impacted)),
		Items:   items,
	}
}

// busFactorFactor scores the fraction of touched files that few people
// understand, weighted up when any touched file has a single owner.
func busFactorFactor(changes []diff.FileChange, stats map[string]*gitminer.FileStats) Factor {
	weight := factorWeights[FactorBusFactor]
	if len(stats) == 0 {
		return Factor{
			Name:    FactorBusFactor,
			Score:   0,
			Weight:  weight,
			Details: "no git history available for ownership signals",
		}
	}

	withHistory, thin := 0, 0
	singleOwner := false
	var items []string
	for _, c := range changes {
		fs, ok := stats[c.Path]
		if !ok || fs.TotalCommits == 0 {
			continue
		}
		withHistory++
		if len(fs.Contributors) <= 2 {
			thin++
			items = append(items, c.Path)
		}
		if len(fs.Contributors) == 1 {
			singleOwner = true
		}
	}

	if withHistory == 0 {
		return Factor{
			Name:    FactorBusFactor,
			Score:   0,
			Weight:  weight,
			Details: "touched files have no recorded history",
		}
	}

	fraction := float64(thin) / float64(withHistory)
	score := int(math.Round(fraction * 70))
	if singleOwner {
		score += 30
	}
	if score > 100 {
		score = 100
	}

	sort.Strings(items)
	return Factor{
		Name:    FactorBusFactor,
		Score:   score,
		Weight:  weight,
		Details: fmt.Sprintf("%d of %d touched files are known by two or fewer people", thin, withHistory),
		Items:   items,
	}
}

// testCoverageFactor is a heuristic: source files changed without a
// correspondingly-named test file in the same diff.
func testCoverageFactor(changes []diff.FileChange) Factor {
	weight := factorWeights[FactorTestCoverage]

	changedTests := make(map[string]bool)
	var sources []diff.FileChange
	for _, c := range changes {
		if isTestFile(c.Path) {
			changedTests[testBaseName(c.Path)] = true
		} else if isSourceFile(c.Path) {
			sources = append(sources, c)
		}
	}

	if len(sources) == 0 {
		return Factor{
			Name:    FactorTestCoverage,
			Score:   0,
			Weight:  weight,
			Details: "no source files changed",
		}
	}

	var untested []string
	for _, c := range sources {
		if c.Status == diff.StatusDeleted {
			continue
		}
		if !changedTests[sourceBaseName(c.Path)] {
			untested = append(untested, c.Path)
		}
	}
	sort.Strings(untested)

	fraction := float64(len(untested)) / float64(len(sources))
	return Factor{
		Name:    FactorTestCoverage,
		Score:   int(math.Round(fraction * 100)),
		Weight:  weight,
		Details: fmt.Sprintf("%d of %d changed source files have no matching test change", len(untested), len(sources)),
		Items:   untested,
	}
}

var sourceExtensions = map[string]bool{
	".go": true, ".ts": true, ".tsx": true, ".js": true, ".jsx": true,
	".py": true, ".rb": true, ".java": true, ".rs": true, ".c": true,
	".cc": true, ".cpp": true, ".cs": true, ".kt": true, ".swift": true,
}

func isSourceFile(path string) bool {
	return sourceExtensions[filepath.Ext(path)]
}

func isTestFile(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, "_test.go") ||
		strings.Contains(base, ".test.") ||
		strings.Contains(base, ".spec.") ||
		strings.HasPrefix(base, "test_")
}

// sourceBaseName and testBaseName normalize a path to a comparable stem so
// "parser.go" matches "parser_test.go" and "api.ts" matches "api.spec.ts".
func sourceBaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func testBaseName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.TrimSuffix(base, "_test")
	base = strings.TrimSuffix(base, ".test")
	base = strings.TrimSuffix(base, ".spec")
	base = strings.TrimPrefix(base, "test_")
	return base
}

func recommend(a *Assessment) []string {
	var recs []string

	if f := a.Factors[FactorDependents]; f.Score >= 60 {
		recs = append(recs, "This change has a wide blast radius - run the full test suite and stage the rollout")
	}
	if f := a.Factors[FactorComplexity]; f.Score >= 65 {
		recs = append(recs, "High-complexity code is being touched - request a second reviewer familiar with it")
	}
	if f := a.Factors[FactorTestCoverage]; f.Score >= 50 {
		recs = append(recs, "Most changed files have no matching test changes - add or update tests before merging")
	}
	if f := a.Factors[FactorBusFactor]; f.Score >= 50 {
		recs = append(recs, "Changed files are known by very few people - use the review to spread context")
	}
	if f := a.Factors[FactorFilesChanged]; f.Score >= 65 {
		recs = append(recs, "Large change surface - consider splitting into smaller reviewable commits")
	}

	if len(recs) == 0 {
		recs = append(recs, "Change looks routine - normal review process applies")
	}
	return recs
}

func summarize(a *Assessment, fileCount int) string {
	return fmt.Sprintf("%d files assessed: overall risk %d/100 (%s)", fileCount, a.Overall, a.Level)
}
