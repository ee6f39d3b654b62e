package cycles

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reposcope/reposcope/internal/graph"
)

// Severity classifies a cycle by how hard it is to break.
type Severity string

const (
	SeverityLow    Severity = "low"    // length <= 3
	SeverityMedium Severity = "medium" // length 4-5
	SeverityHigh   Severity = "high"   // length >= 6
)

func severityRank(s Severity) int {
	switch s {
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

// Cycle is one import cycle. Files holds the cycle in order without closing
// it; the last element implicitly imports the first.
type Cycle struct {
	Files    []string `json:"files"`
	Length   int      `json:"length"`
	Severity Severity `json:"severity"`
}

// Result is the full cycle analysis.
type Result struct {
	TotalCycles   int      `json:"totalCycles"`
	Cycles        []Cycle  `json:"cycles"`
	AffectedFiles []string `json:"affectedFiles"`
	WorstCycle    *Cycle   `json:"worstCycle,omitempty"`
	Suggestions   []string `json:"suggestions"`
}

// Detect finds import cycles in the graph's file-level import structure.
// Pure computation: no I/O, the graph is read-only.
func Detect(g *graph.KnowledgeGraph) *Result {
	adj := g.ImportAdjacency()

	// Deterministic traversal order keeps output stable across runs.
	roots := make([]string, 0, len(adj))
	for file := range adj {
		roots = append(roots, file)
	}
	sort.Strings(roots)

	seen := make(map[string]bool) // dedupe key: canonical joined paths
	var found []Cycle

	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var stack []string

	var dfs func(file string)
	dfs = func(file string) {
		visited[file] = true
		onStack[file] = true
		stack = append(stack, file)

		for _, next := range adj[file] {
			if !visited[next] {
				dfs(next)
			} else if onStack[next] {
				// Back-edge into the current stack: the cycle is the stack
				// slice from the revisited node to the top.
				start := -1
				for i, f := range stack {
					if f == next {
						start = i
						break
					}
				}
				if start < 0 {
					continue
				}
				raw := append([]string(nil), stack[start:]...)
				if len(raw) < 2 {
					continue // self-import, not a meaningful cycle
				}
				canonical := canonicalize(raw)
				key := strings.Join(canonical, " -> ")
				if !seen[key] {
					seen[key] = true
					found = append(found, Cycle{
						Files:    canonical,
						Length:   len(canonical),
						Severity: classify(len(canonical)),
					})
				}
			}
		}

		stack = stack[:len(stack)-1]
		onStack[file] = false
	}

	for _, root := range roots {
		if !visited[root] {
			dfs(root)
		}
	}

	sort.Slice(found, func(i, j int) bool {
		ri, rj := severityRank(found[i].Severity), severityRank(found[j].Severity)
		if ri != rj {
			return ri > rj
		}
		if found[i].Length != found[j].Length {
			return found[i].Length > found[j].Length
		}
		return strings.Join(found[i].Files, "|") < strings.Join(found[j].Files, "|")
	})

	result := &Result{
		TotalCycles:   len(found),
		Cycles:        found,
		AffectedFiles: affectedFiles(found),
		Suggestions:   suggest(found),
	}
	if len(found) > 0 {
		result.WorstCycle = &found[0]
	}
	return result
}

// canonicalize rotates the cycle to start at its lexicographically smallest
// file so rotational equivalents share one representation.
func canonicalize(files []string) []string {
	smallest := 0
	for i, f := range files {
		if f < files[smallest] {
			smallest = i
		}
	}
	rotated := make([]string, 0, len(files))
	rotated = append(rotated, files[smallest:]...)
	rotated = append(rotated, files[:smallest]...)
	return rotated
}

func classify(length int) Severity {
	switch {
	case length <= 3:
		return SeverityLow
	case length <= 5:
		return SeverityMedium
	default:
		return SeverityHigh
	}
}

func affectedFiles(cycles []Cycle) []string {
	set := make(map[string]bool)
	for _, c := range cycles {
		for _, f := range c.Files {
			set[f] = true
		}
	}
	files := make([]string, 0, len(set))
	for f := range set {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// suggest produces heuristic remediation advice.
func suggest(cycles []Cycle) []string {
	if len(cycles) == 0 {
		return []string{"No import cycles detected - the dependency structure is clean. Keep it that way."}
	}

	var suggestions []string

	// Flag the file participating in the most cycles.
	freq := make(map[string]int)
	for _, c := range cycles {
		for _, f := range c.Files {
			freq[f]++
		}
	}
	hottest, hottestCount := "", 0
	for f, n := range freq {
		if n > hottestCount || (n == hottestCount && f < hottest) {
			hottest, hottestCount = f, n
		}
	}
	if hottestCount > 1 {
		suggestions = append(suggestions, fmt.Sprintf(
			"%s appears in %d cycles - breaking its dependencies would resolve the most cycles at once", hottest, hottestCount))
	}

	if len(cycles) > 5 {
		suggestions = append(suggestions, fmt.Sprintf(
			"%d cycles detected - consider introducing interface modules to invert the heaviest dependencies", len(cycles)))
	}

	for _, c := range cycles {
		if c.Length == 2 {
			suggestions = append(suggestions, fmt.Sprintf(
				"%s and %s import each other - extract the shared pieces into a module both can depend on", c.Files[0], c.Files[1]))
			break // one example is enough
		}
	}

	if len(suggestions) == 0 {
		suggestions = append(suggestions, fmt.Sprintf(
			"Break the %s-severity cycle %s first; longer cycles get harder to untangle over time",
			cycles[0].Severity, strings.Join(cycles[0].Files, " -> ")))
	}
	return suggestions
}
