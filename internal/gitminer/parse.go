package gitminer

import (
	"bufio"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// parseLog turns `git log --numstat --pretty=format:%H|%an|%ae|%ad|%s`
// output into commits. Binary file entries (numstat "-") are skipped.
func parseLog(output string) ([]Commit, error) {
	var commits []Commit
	var current *Commit

	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if line == "" {
			if current != nil {
				commits = append(commits, *current)
				current = nil
			}
			continue
		}

		if isHeaderLine(line) {
			if current != nil {
				commits = append(commits, *current)
			}
			parts := strings.SplitN(line, "|", 5)
			if len(parts) != 5 {
				current = nil
				continue
			}
			ts, err := time.Parse(time.RFC3339, parts[3])
			if err != nil {
				ts = time.Time{}
			}
			current = &Commit{
				SHA:       parts[0],
				Author:    parts[1],
				Email:     strings.ToLower(parts[2]),
				Timestamp: ts,
				Message:   parts[4],
			}
			continue
		}

		if current == nil {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		if fields[0] == "-" || fields[1] == "-" {
			continue // binary file
		}
		additions, _ := strconv.Atoi(fields[0])
		deletions, _ := strconv.Atoi(fields[1])
		current.Files = append(current.Files, FileChange{
			Path:      strings.Join(fields[2:], " "),
			Additions: additions,
			Deletions: deletions,
		})
	}

	if current != nil {
		commits = append(commits, *current)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning git log output: %w", err)
	}
	return commits, nil
}

// isHeaderLine distinguishes a pretty-format commit header from a numstat
// line. Headers are "sha|author|email|date|subject"; numstat lines start
// with a count (or "-") and never contain the 40-char sha prefix.
func isHeaderLine(line string) bool {
	idx := strings.IndexByte(line, '|')
	if idx != 40 {
		return false
	}
	for _, r := range line[:idx] {
		if !isHexDigit(r) {
			return false
		}
	}
	return true
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// parseFileStats aggregates `git log --follow --pretty=format:%an|%ae|%ad`
// output for one file into contributor shares sorted most-significant-first.
func parseFileStats(path, output string) *FileStats {
	type authorAgg struct {
		name    string
		commits int
	}
	byEmail := make(map[string]*authorAgg)
	total := 0
	var lastModified time.Time

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 3)
		if len(parts) != 3 {
			continue
		}
		email := strings.ToLower(parts[1])
		if agg, ok := byEmail[email]; ok {
			agg.commits++
		} else {
			byEmail[email] = &authorAgg{name: parts[0], commits: 1}
		}
		total++

		if ts, err := time.Parse(time.RFC3339, parts[2]); err == nil && ts.After(lastModified) {
			lastModified = ts
		}
	}

	if total == 0 {
		return nil
	}

	contributors := make([]ContributorStat, 0, len(byEmail))
	for email, agg := range byEmail {
		contributors = append(contributors, ContributorStat{
			Name:    agg.name,
			Email:   email,
			Commits: agg.commits,
			Share:   float64(agg.commits) / float64(total),
		})
	}
	sort.Slice(contributors, func(i, j int) bool {
		if contributors[i].Commits != contributors[j].Commits {
			return contributors[i].Commits > contributors[j].Commits
		}
		return contributors[i].Email < contributors[j].Email
	})

	return &FileStats{
		Path:         path,
		TotalCommits: total,
		Contributors: contributors,
		LastModified: lastModified,
	}
}

// parseTags parses `git for-each-ref` output into tags.
func parseTags(output string) []Tag {
	var tags []Tag
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 2)
		if len(parts) != 2 {
			continue
		}
		ts, err := time.Parse(time.RFC3339, parts[1])
		if err != nil {
			continue
		}
		tags = append(tags, Tag{Name: parts[0], Date: ts})
	}
	return tags
}
