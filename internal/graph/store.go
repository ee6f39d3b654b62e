package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/reposcope/reposcope/internal/config"
)

const graphFileName = "graph.json"

// LoadState distinguishes "no signal" outcomes from real failures so
// callers never have to guess what a nil graph means.
type LoadState int

const (
	// StateOK - a graph was loaded.
	StateOK LoadState = iota
	// StateMissing - no graph file exists; the repository was never scanned.
	StateMissing
	// StateCorrupt - a graph file exists but could not be parsed.
	StateCorrupt
)

// LoadResult carries the graph together with how loading went.
type LoadResult struct {
	State LoadState
	Graph *KnowledgeGraph
	Err   error
}

// Store persists the knowledge graph as a single JSON document under the
// project-local state directory.
type Store struct {
	logger *logrus.Logger
}

// NewStore creates a graph store.
func NewStore(logger *logrus.Logger) *Store {
	return &Store{logger: logger}
}

// Path returns the graph file location for a repository root.
func (s *Store) Path(rootDir string) string {
	return filepath.Join(rootDir, config.StateDirName, graphFileName)
}

// Load reads the persisted graph. A missing file yields StateMissing and a
// corrupt file StateCorrupt; neither is surfaced as a hard failure here so
// callers can print "run scan first" remediation instead of a stack trace.
func (s *Store) Load(rootDir string) LoadResult {
	path := s.Path(rootDir)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return LoadResult{State: StateMissing}
		}
		return LoadResult{State: StateCorrupt, Err: fmt.Errorf("read %s: %w", path, err)}
	}

	var g KnowledgeGraph
	if err := json.Unmarshal(data, &g); err != nil {
		s.logger.WithError(err).WithField("path", path).Warn("graph file is corrupt")
		return LoadResult{State: StateCorrupt, Err: fmt.Errorf("parse %s: %w", path, err)}
	}
	if g.Nodes == nil {
		g.Nodes = make(map[string]*Node)
	}

	s.logger.WithFields(logrus.Fields{
		"nodes": len(g.Nodes),
		"edges": len(g.Edges),
	}).Debug("loaded knowledge graph")

	return LoadResult{State: StateOK, Graph: &g}
}

// Save writes the graph atomically: marshal to a temp file in the same
// directory, then rename over the old file. A crash mid-write leaves the
// previous graph intact instead of a truncated document.
func (s *Store) Save(rootDir string, g *KnowledgeGraph) error {
	path := s.Path(rootDir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal graph: %w", err)
	}

	return writeFileAtomic(path, data)
}

// writeFileAtomic writes data to a sibling temp file and renames it into
// place. Rename is atomic on POSIX filesystems within one directory.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
