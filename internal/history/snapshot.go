package history

import (
	"time"
)

// Metrics are the point-in-time aggregates captured by a scan.
type Metrics struct {
	FileCount     int     `json:"fileCount"`
	TotalLines    int     `json:"totalLines"`
	AvgComplexity float64 `json:"avgComplexity"`
	MaxComplexity int     `json:"maxComplexity"`
	HotspotCount  int     `json:"hotspotCount"`
	HealthScore   float64 `json:"healthScore"`
}

// Distribution buckets files by complexity band.
type Distribution struct {
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	VeryHigh int `json:"veryHigh"`
}

// Snapshot is one immutable health record. It is created by the scan step,
// appended to the history store, and never mutated afterwards.
type Snapshot struct {
	ID           string       `json:"id"` // ISO timestamp, doubles as identity
	Timestamp    time.Time    `json:"timestamp"`
	CommitHash   string       `json:"commitHash,omitempty"`
	Metrics      Metrics      `json:"metrics"`
	Distribution Distribution `json:"distribution"`
}

// HealthScore derives the repository health score from average complexity:
// 100 - avgComplexity*5, clamped to [0,100].
func HealthScore(avgComplexity float64) float64 {
	score := 100 - avgComplexity*5
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// NewSnapshot builds a snapshot at the given instant. Milliseconds are
// stripped so the id survives the filename round trip unchanged.
func NewSnapshot(at time.Time, commitHash string, metrics Metrics, dist Distribution) *Snapshot {
	at = at.UTC().Truncate(time.Second)
	metrics.HealthScore = HealthScore(metrics.AvgComplexity)
	return &Snapshot{
		ID:           at.Format(time.RFC3339),
		Timestamp:    at,
		CommitHash:   commitHash,
		Metrics:      metrics,
		Distribution: dist,
	}
}
