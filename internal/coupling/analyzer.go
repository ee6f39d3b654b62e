package coupling

import (
	"fmt"
	"sort"

	"github.com/reposcope/reposcope/internal/config"
	"github.com/reposcope/reposcope/internal/gitminer"
	"github.com/reposcope/reposcope/internal/graph"
)

// Classification says how a coupled pair relates to the import structure.
type Classification string

const (
	// Expected - the files co-change and a direct imports edge links them.
	Expected Classification = "expected"
	// Hidden - strong co-change with no direct edge. The classic smell of a
	// missing abstraction or implicit coupling through copy-paste.
	Hidden Classification = "hidden"
	// Suspicious - an imports edge exists but co-change is unusually weak,
	// suggesting the dependency is stale.
	Suspicious Classification = "suspicious"
)

// Pair is one coupled file pair. FileA < FileB lexicographically.
type Pair struct {
	FileA          string         `json:"fileA"`
	FileB          string         `json:"fileB"`
	CoChanges      int            `json:"coChanges"`
	CommitsA       int            `json:"commitsA"`
	CommitsB       int            `json:"commitsB"`
	Strength       float64        `json:"strength"` // 0..1
	Classification Classification `json:"classification"`
}

// Result is the full coupling analysis.
type Result struct {
	AnalyzedCommits int      `json:"analyzedCommits"`
	Pairs           []Pair   `json:"pairs"`
	HiddenCount     int      `json:"hiddenCount"`
	Recommendations []string `json:"recommendations"`
}

// Analyze mines co-change pairs from commit history and classifies them
// against the graph's import edges.
//
// Strength is min-normalized support: coChanges / min(commits(A),
// commits(B)), clamped to [0,1]. Dividing by the rarer file's commit count
// answers "when the less active file changes, how often does its partner
// move too", which surfaces asymmetric coupling that a max- or
// Jaccard-normalized measure would dilute.
func Analyze(g *graph.KnowledgeGraph, commits []gitminer.Commit, cfg config.CouplingConfig) *Result {
	tracked := make(map[string]bool)
	for _, p := range g.FilePaths() {
		tracked[p] = true
	}

	fileCommits := make(map[string]int)
	pairCounts := make(map[[2]string]int)

	for _, commit := range commits {
		// Dedupe files within one commit and restrict to tracked files.
		var files []string
		seen := make(map[string]bool)
		for _, fc := range commit.Files {
			if tracked[fc.Path] && !seen[fc.Path] {
				seen[fc.Path] = true
				files = append(files, fc.Path)
			}
		}
		sort.Strings(files)

		for _, f := range files {
			fileCommits[f]++
		}
		if len(files) < 2 {
			continue
		}
		for i := 0; i < len(files); i++ {
			for j := i + 1; j < len(files); j++ {
				pairCounts[[2]string{files[i], files[j]}]++
			}
		}
	}

	var pairs []Pair
	for key, coChanges := range pairCounts {
		fileA, fileB := key[0], key[1]
		commitsA, commitsB := fileCommits[fileA], fileCommits[fileB]
		minCommits := commitsA
		if commitsB < minCommits {
			minCommits = commitsB
		}
		if minCommits == 0 {
			continue
		}

		strength := float64(coChanges) / float64(minCommits)
		if strength > 1 {
			strength = 1
		}
		if strength < cfg.MinStrength {
			continue
		}

		pairs = append(pairs, Pair{
			FileA:          fileA,
			FileB:          fileB,
			CoChanges:      coChanges,
			CommitsA:       commitsA,
			CommitsB:       commitsB,
			Strength:       strength,
			Classification: classify(g, fileA, fileB, strength, cfg),
		})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Strength != pairs[j].Strength {
			return pairs[i].Strength > pairs[j].Strength
		}
		if pairs[i].FileA != pairs[j].FileA {
			return pairs[i].FileA < pairs[j].FileA
		}
		return pairs[i].FileB < pairs[j].FileB
	})

	result := &Result{
		AnalyzedCommits: len(commits),
		Pairs:           pairs,
		Recommendations: recommend(pairs),
	}
	for _, p := range pairs {
		if p.Classification == Hidden {
			result.HiddenCount++
		}
	}
	return result
}

func classify(g *graph.KnowledgeGraph, fileA, fileB string, strength float64, cfg config.CouplingConfig) Classification {
	hasEdge := g.HasImportEdge(fileA, fileB)
	switch {
	case !hasEdge && strength >= cfg.HiddenThreshold:
		return Hidden
	case hasEdge && strength < cfg.SuspiciousThreshold:
		return Suspicious
	case hasEdge:
		return Expected
	default:
		// Coupled without an edge but below the hidden threshold: treat as
		// expected noise rather than raising a false alarm.
		return Expected
	}
}

func recommend(pairs []Pair) []string {
	var recs []string
	for _, p := range pairs {
		switch p.Classification {
		case Hidden:
			recs = append(recs, fmt.Sprintf(
				"%s and %s change together %.0f%% of the time with no import between them - consider extracting a shared interface",
				p.FileA, p.FileB, p.Strength*100))
		case Suspicious:
			recs = append(recs, fmt.Sprintf(
				"%s imports %s but they rarely change together (%.0f%%) - the dependency may be stale",
				p.FileA, p.FileB, p.Strength*100))
		}
		if len(recs) >= 5 {
			break
		}
	}
	if len(recs) == 0 && len(pairs) > 0 {
		recs = append(recs, "All coupled pairs follow declared import relationships - no hidden coupling detected")
	}
	return recs
}
