package report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/reposcope/reposcope/internal/busfactor"
	"github.com/reposcope/reposcope/internal/config"
	"github.com/reposcope/reposcope/internal/cost"
	"github.com/reposcope/reposcope/internal/coupling"
	"github.com/reposcope/reposcope/internal/cycles"
	"github.com/reposcope/reposcope/internal/errors"
	"github.com/reposcope/reposcope/internal/gitminer"
	"github.com/reposcope/reposcope/internal/graph"
)

// Section names, used in unavailability notes.
const (
	SectionCycles    = "cycles"
	SectionCoupling  = "coupling"
	SectionBusFactor = "bus_factor"
	SectionCost      = "cost"
)

// Report aggregates every analyzer's output over one graph. A nil section
// with an entry in Unavailable means that analyzer failed; the rest of the
// report is still valid.
type Report struct {
	GeneratedAt  time.Time                 `json:"generatedAt"`
	RootDir      string                    `json:"rootDir"`
	Contributors []gitminer.ContributorStat `json:"contributors,omitempty"` // busiest first, capped
	Cycles       *cycles.Result            `json:"cycles,omitempty"`
	Coupling     *coupling.Result          `json:"coupling,omitempty"`
	BusFactor    *busfactor.Result         `json:"busFactor,omitempty"`
	Cost         *cost.Result              `json:"cost,omitempty"`
	Unavailable  map[string]string         `json:"unavailable,omitempty"`
}

const maxReportContributors = 5

// Generator runs the analyzers concurrently over a loaded graph.
type Generator struct {
	cfg    *config.Config
	miner  *gitminer.Miner
	logger *logrus.Logger
}

func NewGenerator(cfg *config.Config, miner *gitminer.Miner, logger *logrus.Logger) *Generator {
	return &Generator{cfg: cfg, miner: miner, logger: logger}
}

// Generate mines history once, then fans the analyzers out. Analyzer
// panics are contained per section; mining degrades to empty data and the
// analyzers report on what remains.
func (gen *Generator) Generate(ctx context.Context, g *graph.KnowledgeGraph) *Report {
	report := &Report{
		GeneratedAt: time.Now().UTC(),
		RootDir:     g.Metadata.RootDir,
		Unavailable: make(map[string]string),
	}

	commits := gen.miner.Log(ctx)
	stats := gen.miner.StatsBatch(ctx, g.FilePaths())

	report.Contributors = gitminer.TopContributors(commits)
	if len(report.Contributors) > maxReportContributors {
		report.Contributors = report.Contributors[:maxReportContributors]
	}

	var mu sync.Mutex
	fail := func(section string, r any) {
		err := errors.AnalyzerFailure(section, fmt.Errorf("panic: %v", r))
		gen.logger.WithError(err).Warn("report section failed")
		mu.Lock()
		report.Unavailable[section] = err.Error()
		mu.Unlock()
	}

	eg, _ := errgroup.WithContext(ctx)

	eg.Go(func() error {
		defer func() {
			if r := recover(); r != nil {
				fail(SectionCycles, r)
			}
		}()
		report.Cycles = cycles.Detect(g)
		return nil
	})
	eg.Go(func() error {
		defer func() {
			if r := recover(); r != nil {
				fail(SectionCoupling, r)
			}
		}()
		report.Coupling = coupling.Analyze(g, commits, gen.cfg.Coupling)
		return nil
	})
	eg.Go(func() error {
		defer func() {
			if r := recover(); r != nil {
				fail(SectionBusFactor, r)
			}
		}()
		report.BusFactor = busfactor.Analyze(stats, gen.cfg.BusFactor, time.Now())
		return nil
	})

	// The sections run to completion regardless of each other.
	_ = eg.Wait()

	// Cost feeds on the sibling results, so it runs after the fan-out.
	// Its categories fault-isolate internally.
	func() {
		defer func() {
			if r := recover(); r != nil {
				fail(SectionCost, r)
			}
		}()
		report.Cost = cost.Estimate(cost.Inputs{
			Graph:    g,
			Commits:  commits,
			BusRisks: report.BusFactor,
			Cycles:   report.Cycles,
		}, gen.cfg.Cost, gen.logger)
	}()

	return report
}

// Healthy reports whether every section ran.
func (r *Report) Healthy() bool {
	return len(r.Unavailable) == 0
}
