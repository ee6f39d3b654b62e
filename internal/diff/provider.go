package diff

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Status classifies how a file changed.
type Status string

const (
	StatusAdded    Status = "added"
	StatusModified Status = "modified"
	StatusDeleted  Status = "deleted"
	StatusRenamed  Status = "renamed"
)

// FileChange is one changed file within a pending diff.
type FileChange struct {
	Path      string `json:"path"`
	Status    Status `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// Scope selects which pending change to assess.
type Scope struct {
	// Staged assesses the index (git diff --cached). Default scope.
	Staged bool
	// Branch compares HEAD against the given base branch.
	Branch string
	// Commit assesses one specific commit.
	Commit string
}

// Provider collects changed files for the risk scorer. Like the miner, it
// degrades to an empty diff when git is unavailable.
type Provider struct {
	repoPath string
	logger   *logrus.Logger
}

// NewProvider creates a diff provider for the repository at repoPath.
func NewProvider(repoPath string, logger *logrus.Logger) *Provider {
	return &Provider{repoPath: repoPath, logger: logger}
}

// Collect returns the changed files for the given scope.
func (p *Provider) Collect(ctx context.Context, scope Scope) []FileChange {
	var args []string
	switch {
	case scope.Commit != "":
		args = []string{"show", "--numstat", "--format=", scope.Commit}
	case scope.Branch != "":
		args = []string{"diff", "--numstat", scope.Branch + "...HEAD"}
	default:
		args = []string{"diff", "--cached", "--numstat"}
	}

	numstat, err := p.run(ctx, args...)
	if err != nil {
		p.logger.WithError(err).Debug("diff unavailable, treating as empty change")
		return nil
	}

	changes := parseNumstat(numstat)
	p.applyStatuses(ctx, scope, changes)
	return changes
}

func (p *Provider) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = p.repoPath
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return string(out), nil
}

// applyStatuses overlays per-file statuses from --name-status output onto
// the numstat changes. Status detection failing is cosmetic; everything
// stays "modified".
func (p *Provider) applyStatuses(ctx context.Context, scope Scope, changes []FileChange) {
	var args []string
	switch {
	case scope.Commit != "":
		args = []string{"show", "--name-status", "--format=", scope.Commit}
	case scope.Branch != "":
		args = []string{"diff", "--name-status", scope.Branch + "...HEAD"}
	default:
		args = []string{"diff", "--cached", "--name-status"}
	}

	out, err := p.run(ctx, args...)
	if err != nil {
		return
	}

	statuses := make(map[string]Status)
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		path := fields[len(fields)-1] // renames list old then new path
		switch fields[0][0] {
		case 'A':
			statuses[path] = StatusAdded
		case 'D':
			statuses[path] = StatusDeleted
		case 'R':
			statuses[path] = StatusRenamed
		default:
			statuses[path] = StatusModified
		}
	}

	for i := range changes {
		if s, ok := statuses[changes[i].Path]; ok {
			changes[i].Status = s
		}
	}
}

// parseNumstat parses "additions deletions path" lines. Binary files
// (numstat "-") count as zero-line changes but are still listed.
func parseNumstat(output string) []FileChange {
	var changes []FileChange
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		additions, _ := strconv.Atoi(fields[0])
		deletions, _ := strconv.Atoi(fields[1])
		// Rename lines look like "old => new" or "{a => b}/c"; keep the
		// new path.
		path := strings.Join(fields[2:], " ")
		if idx := strings.Index(path, " => "); idx >= 0 && !strings.Contains(path, "{") {
			path = path[idx+4:]
		}
		changes = append(changes, FileChange{
			Path:      path,
			Status:    StatusModified,
			Additions: additions,
			Deletions: deletions,
		})
	}
	return changes
}
