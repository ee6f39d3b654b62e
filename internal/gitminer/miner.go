package gitminer

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/reposcope/reposcope/internal/cache"
)

// Options bound how much history the miner reads.
type Options struct {
	MaxCommits  int // cap on commits parsed per git log invocation
	WindowDays  int // how far back history reaches
	Concurrency int // parallel per-file git subprocesses
}

// Miner issues read-only git queries against one repository.
//
// Contract: mining is best effort. "Not a git repository" and any git
// failure degrade to empty results; analyzers treat missing history as
// "no signal", never as an error to propagate.
type Miner struct {
	repoPath string
	opts     Options
	cache    *cache.Store // optional, nil disables caching
	logger   *logrus.Logger

	headOnce sync.Once
	headSHA  string
}

// New creates a miner for the repository at repoPath.
func New(repoPath string, opts Options, cacheStore *cache.Store, logger *logrus.Logger) *Miner {
	if opts.MaxCommits <= 0 {
		opts.MaxCommits = 500
	}
	if opts.WindowDays <= 0 {
		opts.WindowDays = 90
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	return &Miner{repoPath: repoPath, opts: opts, cache: cacheStore, logger: logger}
}

// run executes one git command in the repository directory.
func (m *Miner) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = m.repoPath
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return string(output), nil
}

// Available reports whether repoPath is inside a git working tree.
func (m *Miner) Available(ctx context.Context) bool {
	_, err := m.run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil
}

// HeadSHA returns the current HEAD commit, or "" outside a repository.
// Cached for the lifetime of the miner; one invocation sees one HEAD.
func (m *Miner) HeadSHA(ctx context.Context) string {
	m.headOnce.Do(func() {
		out, err := m.run(ctx, "rev-parse", "HEAD")
		if err != nil {
			m.logger.WithError(err).Debug("no HEAD commit available")
			return
		}
		m.headSHA = strings.TrimSpace(out)
	})
	return m.headSHA
}

// Log returns the bounded commit history with per-file numstat changes,
// newest first. Returns an empty slice when history is unavailable.
func (m *Miner) Log(ctx context.Context) []Commit {
	out, err := m.run(ctx, "log",
		fmt.Sprintf("--max-count=%d", m.opts.MaxCommits),
		fmt.Sprintf("--since=%d days ago", m.opts.WindowDays),
		"--numstat",
		"--pretty=format:%H|%an|%ae|%ad|%s",
		"--date=iso-strict")
	if err != nil {
		m.logger.WithError(err).Debug("git log unavailable, degrading to empty history")
		return nil
	}

	commits, err := parseLog(out)
	if err != nil {
		m.logger.WithError(err).Warn("failed to parse git log output")
		return nil
	}
	return commits
}

// FileStats aggregates one file's contributor history. Returns nil when the
// file has no reachable history.
func (m *Miner) FileStats(ctx context.Context, path string) *FileStats {
	head := m.HeadSHA(ctx)
	if head != "" && m.cache != nil {
		var cached FileStats
		if m.cache.GetFileStats(head, path, &cached) {
			return &cached
		}
	}

	out, err := m.run(ctx, "log",
		fmt.Sprintf("--max-count=%d", m.opts.MaxCommits),
		"--follow",
		"--pretty=format:%an|%ae|%ad",
		"--date=iso-strict",
		"--", path)
	if err != nil {
		m.logger.WithError(err).WithField("path", path).Debug("file history unavailable")
		return nil
	}

	stats := parseFileStats(path, out)
	if stats == nil {
		return nil
	}

	if head != "" && m.cache != nil {
		m.cache.PutFileStats(head, path, stats)
	}
	return stats
}

// StatsBatch mines per-file stats for many files through a bounded worker
// pool, cutting wall-clock time without flooding the process table. Files
// with no history are omitted from the result.
func (m *Miner) StatsBatch(ctx context.Context, paths []string) map[string]*FileStats {
	// Resolve HEAD up front so workers hit the cached value.
	if head := m.HeadSHA(ctx); head != "" && m.cache != nil {
		m.cache.InvalidateBefore(head)
	}

	var mu sync.Mutex
	results := make(map[string]*FileStats, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Concurrency)

	for _, path := range paths {
		path := path
		g.Go(func() error {
			if stats := m.FileStats(gctx, path); stats != nil {
				mu.Lock()
				results[path] = stats
				mu.Unlock()
			}
			return nil // per-file failures never abort the batch
		})
	}

	// Workers only return nil; Wait surfaces context cancellation at most.
	if err := g.Wait(); err != nil {
		m.logger.WithError(err).Debug("stats batch interrupted")
	}
	return results
}

// Tags returns the repository's tags with creation dates, oldest first.
func (m *Miner) Tags(ctx context.Context) []Tag {
	out, err := m.run(ctx, "for-each-ref", "refs/tags",
		"--sort=creatordate",
		"--format=%(refname:short)|%(creatordate:iso-strict)")
	if err != nil {
		m.logger.WithError(err).Debug("tags unavailable")
		return nil
	}
	return parseTags(out)
}

// CommitsPerFile counts, from an already-mined commit list, how many
// commits touched each file.
func CommitsPerFile(commits []Commit) map[string]int {
	counts := make(map[string]int)
	for _, c := range commits {
		for _, f := range c.Files {
			counts[f.Path]++
		}
	}
	return counts
}

// ChurnPerFile sums added+deleted lines per file across the commit list.
func ChurnPerFile(commits []Commit) map[string]int {
	churn := make(map[string]int)
	for _, c := range commits {
		for _, f := range c.Files {
			churn[f.Path] += f.Additions + f.Deletions
		}
	}
	return churn
}

// TopContributors returns contributor names ordered by total commits
// across the whole mined history.
func TopContributors(commits []Commit) []ContributorStat {
	byEmail := make(map[string]*ContributorStat)
	for _, c := range commits {
		email := strings.ToLower(c.Email)
		if s, ok := byEmail[email]; ok {
			s.Commits++
		} else {
			byEmail[email] = &ContributorStat{Name: c.Author, Email: email, Commits: 1}
		}
	}

	out := make([]ContributorStat, 0, len(byEmail))
	for _, s := range byEmail {
		if len(commits) > 0 {
			s.Share = float64(s.Commits) / float64(len(commits))
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Commits != out[j].Commits {
			return out[i].Commits > out[j].Commits
		}
		return out[i].Email < out[j].Email
	})
	return out
}
