package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"

	"github.com/reposcope/reposcope/internal/config"
)

const (
	cacheFileName = "cache.db"
	statsBucket   = "filestats"
)

// Store is a bbolt-backed cache for expensive git queries. Per-file log
// queries dominate analyzer wall-clock time; their results only change when
// HEAD moves, so entries are keyed by (head SHA, file path).
//
// Every operation is best-effort: a broken cache degrades to recomputing
// from git, never to a failed analysis.
type Store struct {
	db     *bolt.DB
	logger *logrus.Logger
}

// Open opens (or creates) the cache database under the state directory.
func Open(rootDir string, logger *logrus.Logger) (*Store, error) {
	dir := filepath.Join(rootDir, config.StateDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	db, err := bolt.Open(filepath.Join(dir, cacheFileName), 0600, &bolt.Options{
		Timeout: time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func statsKey(headSHA, path string) []byte {
	return []byte(headSHA + "|" + path)
}

// GetFileStats returns a cached value for (headSHA, path), unmarshalled
// into out. The second return is false on miss or any cache failure.
func (s *Store) GetFileStats(headSHA, path string, out any) bool {
	if s == nil || s.db == nil {
		return false
	}

	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(statsBucket))
		if b == nil {
			return nil
		}
		if v := b.Get(statsKey(headSHA, path)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil || raw == nil {
		return false
	}

	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.WithError(err).WithField("path", path).Debug("discarding corrupt cache entry")
		return false
	}
	return true
}

// PutFileStats stores a value for (headSHA, path). Failures are logged and
// swallowed.
func (s *Store) PutFileStats(headSHA, path string, value any) {
	if s == nil || s.db == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		s.logger.WithError(err).Debug("failed to marshal cache entry")
		return
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(statsBucket))
		if err != nil {
			return err
		}
		return b.Put(statsKey(headSHA, path), data)
	})
	if err != nil {
		s.logger.WithError(err).WithField("path", path).Debug("failed to write cache entry")
	}
}

// InvalidateBefore drops every entry not belonging to the given HEAD.
// Called when HEAD moves so stale per-file stats do not accumulate.
func (s *Store) InvalidateBefore(headSHA string) {
	if s == nil || s.db == nil {
		return
	}

	prefix := []byte(headSHA + "|")
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(statsBucket))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		var stale [][]byte
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if len(k) < len(prefix) || string(k[:len(prefix)]) != string(prefix) {
				stale = append(stale, append([]byte(nil), k...))
			}
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.WithError(err).Debug("failed to invalidate cache")
	}
}
