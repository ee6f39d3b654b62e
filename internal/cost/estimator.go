package cost

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/reposcope/reposcope/internal/busfactor"
	"github.com/reposcope/reposcope/internal/config"
	"github.com/reposcope/reposcope/internal/cycles"
	"github.com/reposcope/reposcope/internal/errors"
	"github.com/reposcope/reposcope/internal/gitminer"
	"github.com/reposcope/reposcope/internal/graph"
)

// Category names.
const (
	CategoryHotspots  = "hotspots"
	CategoryBusFactor = "bus_factor"
	CategoryCycles    = "cycles"
	CategoryDeadCode  = "dead_code"
)

// Cycle refactor effort is a step function of cycle length.
const (
	shortCycleHours  = 4  // length <= 3
	mediumCycleHours = 12 // length 4-5
	longCycleHours   = 40 // length >= 6
)

// Item is one costed finding, attributed to a file where possible.
type Item struct {
	File   string  `json:"file,omitempty"`
	Hours  float64 `json:"hours"`
	Cost   float64 `json:"cost"`
	Detail string  `json:"detail"`
}

// CategoryCost is one debt category's estimate. Unavailable categories
// carry the failure reason instead of numbers.
type CategoryCost struct {
	Name      string  `json:"name"`
	Available bool    `json:"available"`
	Reason    string  `json:"reason,omitempty"`
	Hours     float64 `json:"hours"`
	Cost      float64 `json:"cost"`
	Items     []Item  `json:"items,omitempty"`
}

// FileCost merges a file's costs across categories.
type FileCost struct {
	File  string  `json:"file"`
	Hours float64 `json:"hours"`
	Cost  float64 `json:"cost"`
}

// QuickWin is a finding cheap enough to fix soon with outsized return.
type QuickWin struct {
	File     string  `json:"file"`
	Category string  `json:"category"`
	Hours    float64 `json:"hours"`
	Cost     float64 `json:"cost"`
	ROI      float64 `json:"roi"` // cost per fix hour
	Detail   string  `json:"detail"`
}

// Result is the full technical-debt estimate.
type Result struct {
	HourlyRate float64        `json:"hourlyRate"`
	TotalHours float64        `json:"totalHours"`
	TotalCost  float64        `json:"totalCost"`
	Categories []CategoryCost `json:"categories"`
	PerFile    []FileCost     `json:"perFile"`
	QuickWins  []QuickWin     `json:"quickWins"`
}

// Inputs collects what the estimator draws from. Any field may be nil or
// empty; the corresponding categories then estimate from what remains.
type Inputs struct {
	Graph    *graph.KnowledgeGraph
	Commits  []gitminer.Commit
	BusRisks *busfactor.Result
	Cycles   *cycles.Result
}

// Estimate aggregates the four debt categories. Each category runs
// fault-isolated: a panic or error in one marks that category unavailable
// and the siblings still report.
func Estimate(in Inputs, cfg config.CostConfig, logger *logrus.Logger) *Result {
	result := &Result{HourlyRate: cfg.HourlyRate}

	categories := []struct {
		name string
		fn   func(Inputs, config.CostConfig) ([]Item, error)
	}{
		{CategoryHotspots, hotspotCosts},
		{CategoryBusFactor, busFactorCosts},
		{CategoryCycles, cycleCosts},
		{CategoryDeadCode, deadCodeCosts},
	}

	for _, cat := range categories {
		cc := runCategory(cat.name, cat.fn, in, cfg, logger)
		result.Categories = append(result.Categories, cc)
		if cc.Available {
			result.TotalHours += cc.Hours
			result.TotalCost += cc.Cost
		}
	}

	result.PerFile = mergePerFile(result.Categories)
	result.QuickWins = quickWins(result.Categories, cfg)
	return result
}

// runCategory isolates one category: errors and panics become an
// unavailable category, never a failed estimate.
func runCategory(name string, fn func(Inputs, config.CostConfig) ([]Item, error), in Inputs, cfg config.CostConfig, logger *logrus.Logger) (cc CategoryCost) {
	cc = CategoryCost{Name: name}

	defer func() {
		if r := recover(); r != nil {
			err := errors.AnalyzerFailure(name, fmt.Errorf("panic: %v", r))
			logger.WithError(err).Warn("cost category failed")
			cc = CategoryCost{Name: name, Available: false, Reason: err.Error()}
		}
	}()

	items, err := fn(in, cfg)
	if err != nil {
		wrapped := errors.AnalyzerFailure(name, err)
		logger.WithError(wrapped).Warn("cost category failed")
		cc.Reason = wrapped.Error()
		return cc
	}

	cc.Available = true
	cc.Items = items
	for _, item := range items {
		cc.Hours += item.Hours
		cc.Cost += item.Cost
	}
	return cc
}

// hotspotCosts prices files combining high complexity with high churn:
// hours = complexity * churn factor * priority multiplier.
func hotspotCosts(in Inputs, cfg config.CostConfig) ([]Item, error) {
	if in.Graph == nil {
		return nil, fmt.Errorf("no graph available")
	}

	commitCounts := gitminer.CommitsPerFile(in.Commits)
	churned := gitminer.ChurnPerFile(in.Commits)
	var items []Item
	for _, path := range in.Graph.FilePaths() {
		complexity := in.Graph.MaxComplexityInFile(path)
		commits := commitCounts[path]
		if complexity < 10 || commits < 3 {
			continue // not a hotspot
		}

		// Line churn scales the effort: heavily rewritten complex code
		// costs more to stabilize than complex code nobody touches.
		churnFactor := 1 + float64(churned[path])/1000
		if churnFactor > 3 {
			churnFactor = 3
		}
		priority := 1.0
		if complexity > 20 {
			priority = 1.5
		}

		hours := float64(complexity) * 0.4 * churnFactor * priority
		items = append(items, Item{
			File:   path,
			Hours:  hours,
			Cost:   hours * cfg.HourlyRate,
			Detail: fmt.Sprintf("complexity %d, %d lines churned across %d recent commits", complexity, churned[path], commits),
		})
	}
	sortItems(items)
	return items, nil
}

// busFactorCosts prices knowledge replacement for single-owner files,
// scaled by size and by how many files depend on them.
func busFactorCosts(in Inputs, cfg config.CostConfig) ([]Item, error) {
	if in.BusRisks == nil {
		return nil, fmt.Errorf("no bus-factor analysis available")
	}

	var rev map[string][]string
	if in.Graph != nil {
		rev = in.Graph.ReverseImportAdjacency()
	}

	var items []Item
	for _, fr := range in.BusRisks.Files {
		if fr.BusFactor != 1 {
			continue
		}

		loc := 200 // assumed size when the graph has no file node
		if in.Graph != nil {
			if n, ok := in.Graph.Nodes[fr.Path]; ok && n.LineEnd >= n.LineStart {
				loc = n.LineEnd - n.LineStart + 1
			}
		}

		criticality := 1.0
		if in.Graph != nil && len(in.Graph.TransitiveImporters(fr.Path, rev)) >= 5 {
			criticality = 1.5
		}

		// Rough knowledge-transfer effort: an hour per 50 lines.
		hours := float64(loc) / 50 * criticality
		items = append(items, Item{
			File:   fr.Path,
			Hours:  hours,
			Cost:   hours * cfg.HourlyRate,
			Detail: fmt.Sprintf("single owner %s holds %.0f%% of commits", fr.TopOwner, fr.TopOwnerShare*100),
		})
	}
	sortItems(items)
	return items, nil
}

// cycleCosts prices breaking each import cycle with the step function.
func cycleCosts(in Inputs, cfg config.CostConfig) ([]Item, error) {
	if in.Cycles == nil {
		return nil, fmt.Errorf("no cycle analysis available")
	}

	var items []Item
	for _, c := range in.Cycles.Cycles {
		hours := float64(longCycleHours)
		switch {
		case c.Length <= 3:
			hours = shortCycleHours
		case c.Length <= 5:
			hours = mediumCycleHours
		}
		items = append(items, Item{
			File:   c.Files[0],
			Hours:  hours,
			Cost:   hours * cfg.HourlyRate,
			Detail: fmt.Sprintf("%d-file %s-severity import cycle", c.Length, c.Severity),
		})
	}
	return items, nil
}

// deadCodeCosts prices the drag of unused exported symbols: maintenance
// attention proportional to their share of the codebase.
func deadCodeCosts(in Inputs, cfg config.CostConfig) ([]Item, error) {
	if in.Graph == nil {
		return nil, fmt.Errorf("no graph available")
	}

	unused := UnusedExports(in.Graph)
	if len(unused) == 0 {
		return nil, nil
	}

	exported := 0
	for _, n := range in.Graph.Nodes {
		if n.Exported && n.Kind != graph.KindFile {
			exported++
		}
	}

	ratio := float64(len(unused)) / float64(exported)
	totalLines := in.Graph.Metadata.TotalLines
	if totalLines == 0 {
		totalLines = 10000
	}
	// Dead exports tax every reader; prune cost scales with how much of
	// the API surface is noise.
	hours := ratio * float64(totalLines) / 500

	byFile := make(map[string]int)
	for _, n := range unused {
		byFile[n.FilePath]++
	}
	var items []Item
	perFileHours := hours / float64(len(byFile))
	for file, count := range byFile {
		items = append(items, Item{
			File:   file,
			Hours:  perFileHours,
			Cost:   perFileHours * cfg.HourlyRate,
			Detail: fmt.Sprintf("%d exported symbols with no references", count),
		})
	}
	sortItems(items)
	return items, nil
}

// UnusedExports returns exported symbol nodes that no imports or exports
// edge references. Contains edges are structural and do not count as use.
func UnusedExports(g *graph.KnowledgeGraph) []*graph.Node {
	referenced := make(map[string]bool)
	for _, e := range g.Edges {
		if e.Type == graph.EdgeImports || e.Type == graph.EdgeExports {
			referenced[e.Target] = true
		}
	}

	var unused []*graph.Node
	for _, n := range g.Nodes {
		if n.Kind == graph.KindFile || !n.Exported {
			continue
		}
		if !referenced[n.ID] {
			unused = append(unused, n)
		}
	}
	sort.Slice(unused, func(i, j int) bool { return unused[i].ID < unused[j].ID })
	return unused
}

func sortItems(items []Item) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Cost != items[j].Cost {
			return items[i].Cost > items[j].Cost
		}
		return items[i].File < items[j].File
	})
}

// mergePerFile sums every available category's items by file.
func mergePerFile(categories []CategoryCost) []FileCost {
	byFile := make(map[string]*FileCost)
	for _, cc := range categories {
		if !cc.Available {
			continue
		}
		for _, item := range cc.Items {
			if item.File == "" {
				continue
			}
			if fc, ok := byFile[item.File]; ok {
				fc.Hours += item.Hours
				fc.Cost += item.Cost
			} else {
				byFile[item.File] = &FileCost{File: item.File, Hours: item.Hours, Cost: item.Cost}
			}
		}
	}

	out := make([]FileCost, 0, len(byFile))
	for _, fc := range byFile {
		out = append(out, *fc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cost != out[j].Cost {
			return out[i].Cost > out[j].Cost
		}
		return out[i].File < out[j].File
	})
	return out
}

// quickWins picks findings fixable within the quick-win budget whose cost
// clears the floor, ranked by return on invested fix time.
func quickWins(categories []CategoryCost, cfg config.CostConfig) []QuickWin {
	var wins []QuickWin
	for _, cc := range categories {
		if !cc.Available {
			continue
		}
		for _, item := range cc.Items {
			if item.File == "" || item.Hours <= 0 || item.Hours > cfg.QuickWinMax || item.Cost <= cfg.QuickWinMin {
				continue
			}
			wins = append(wins, QuickWin{
				File:     item.File,
				Category: cc.Name,
				Hours:    item.Hours,
				Cost:     item.Cost,
				ROI:      item.Cost / item.Hours,
				Detail:   item.Detail,
			})
		}
	}
	sort.Slice(wins, func(i, j int) bool {
		if wins[i].ROI != wins[j].ROI {
			return wins[i].ROI > wins[j].ROI
		}
		return wins[i].File < wins[j].File
	})
	return wins
}
