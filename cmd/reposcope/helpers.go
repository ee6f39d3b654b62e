package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/reposcope/reposcope/internal/cache"
	"github.com/reposcope/reposcope/internal/errors"
	"github.com/reposcope/reposcope/internal/gitminer"
	"github.com/reposcope/reposcope/internal/graph"
)

// loadGraph reads the persisted knowledge graph, turning the missing and
// corrupt states into actionable errors.
func loadGraph() (*graph.KnowledgeGraph, error) {
	result := graph.NewStore(logger).Load(rootDir)
	switch result.State {
	case graph.StateMissing:
		return nil, errors.NotScanned(rootDir)
	case graph.StateCorrupt:
		return nil, errors.CorruptState(graph.NewStore(logger).Path(rootDir), result.Err)
	}
	return result.Graph, nil
}

// newMiner builds a git miner with the bbolt query cache attached when it
// opens; a locked or unwritable cache just disables caching.
func newMiner() (*gitminer.Miner, func()) {
	cacheStore, err := cache.Open(rootDir, logger)
	if err != nil {
		logger.WithError(err).Debug("git query cache unavailable")
		cacheStore = nil
	}

	miner := gitminer.New(rootDir, gitminer.Options{
		MaxCommits:  cfg.Git.MaxCommits,
		WindowDays:  cfg.Git.WindowDays,
		Concurrency: cfg.Git.Concurrency,
	}, cacheStore, logger)

	return miner, func() {
		if cacheStore != nil {
			_ = cacheStore.Close()
		}
	}
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
