package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/reposcope/reposcope/internal/config"
)

const historyDirName = "history"

// Store persists one JSON file per snapshot under
// <root>/.reposcope/history/. Filenames are sanitized ISO timestamps so
// lexical order approximates time order, but loaders always parse the
// embedded timestamp rather than trusting filenames.
type Store struct {
	maxSnapshots int
	logger       *logrus.Logger
}

// NewStore creates a snapshot store retaining at most maxSnapshots records.
func NewStore(maxSnapshots int, logger *logrus.Logger) *Store {
	return &Store{maxSnapshots: maxSnapshots, logger: logger}
}

// Dir returns the history directory for a repository root.
func (s *Store) Dir(rootDir string) string {
	return filepath.Join(rootDir, config.StateDirName, historyDirName)
}

// fileName encodes a snapshot id as a filename: colons are not portable,
// so they become dashes.
func fileName(id string) string {
	return strings.ReplaceAll(id, ":", "-") + ".json"
}

// Save writes the snapshot atomically, then prunes old records.
func (s *Store) Save(rootDir string, snap *Snapshot) error {
	dir := s.Dir(rootDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", snap.ID, err)
	}

	path := filepath.Join(dir, fileName(snap.ID))
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("write snapshot %s: %w", snap.ID, err)
	}

	s.prune(rootDir)
	return nil
}

// LoadAll returns every readable snapshot, newest first. Corrupt files are
// skipped individually; a bad record never makes the whole history
// unavailable.
func (s *Store) LoadAll(rootDir string) ([]*Snapshot, error) {
	dir := s.Dir(rootDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history dir: %w", err)
	}

	var snaps []*Snapshot
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.WithError(err).WithField("path", path).Warn("skipping unreadable snapshot")
			continue
		}
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			s.logger.WithError(err).WithField("path", path).Warn("skipping corrupt snapshot")
			continue
		}
		snaps = append(snaps, &snap)
	}

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].Timestamp.After(snaps[j].Timestamp)
	})
	return snaps, nil
}

// LoadInRange returns snapshots with from <= timestamp <= to, newest first.
func (s *Store) LoadInRange(rootDir string, from, to time.Time) ([]*Snapshot, error) {
	all, err := s.LoadAll(rootDir)
	if err != nil {
		return nil, err
	}
	var filtered []*Snapshot
	for _, snap := range all {
		if snap.Timestamp.Before(from) || snap.Timestamp.After(to) {
			continue
		}
		filtered = append(filtered, snap)
	}
	return filtered, nil
}

// Latest returns the newest snapshot, or nil when no history exists.
func (s *Store) Latest(rootDir string) (*Snapshot, error) {
	all, err := s.LoadAll(rootDir)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

// ByID returns the snapshot with the given id, or nil when absent.
func (s *Store) ByID(rootDir, id string) (*Snapshot, error) {
	all, err := s.LoadAll(rootDir)
	if err != nil {
		return nil, err
	}
	for _, snap := range all {
		if snap.ID == id {
			return snap, nil
		}
	}
	return nil, nil
}

// Clear removes the entire history directory.
func (s *Store) Clear(rootDir string) error {
	if err := os.RemoveAll(s.Dir(rootDir)); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// prune keeps the maxSnapshots newest snapshots and deletes the rest.
// Deletion is best-effort; a file that cannot be removed is logged and left.
func (s *Store) prune(rootDir string) {
	snaps, err := s.LoadAll(rootDir)
	if err != nil || len(snaps) <= s.maxSnapshots {
		return
	}

	dir := s.Dir(rootDir)
	for _, snap := range snaps[s.maxSnapshots:] {
		path := filepath.Join(dir, fileName(snap.ID))
		if err := os.Remove(path); err != nil {
			s.logger.WithError(err).WithField("path", path).Debug("failed to prune snapshot")
		}
	}
}

// writeFileAtomic writes data via a sibling temp file plus rename.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
