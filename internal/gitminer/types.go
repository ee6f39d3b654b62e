package gitminer

import "time"

// Commit is one mined git commit with its per-file change stats.
type Commit struct {
	SHA       string       `json:"sha"`
	Author    string       `json:"author"`
	Email     string       `json:"email"`
	Timestamp time.Time    `json:"timestamp"`
	Message   string       `json:"message"`
	Files     []FileChange `json:"files"`
}

// FileChange records one file touched by a commit.
type FileChange struct {
	Path      string `json:"path"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// ContributorStat aggregates one author's activity on a file.
type ContributorStat struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Commits int     `json:"commits"`
	Share   float64 `json:"share"` // fraction of the file's commits, 0..1
}

// FileStats aggregates a single file's history: total commits, contributor
// shares sorted most-significant-first, and last modification time.
type FileStats struct {
	Path         string            `json:"path"`
	TotalCommits int               `json:"totalCommits"`
	Contributors []ContributorStat `json:"contributors"`
	LastModified time.Time         `json:"lastModified"`
}

// Tag is a repository tag with its creation date.
type Tag struct {
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}
