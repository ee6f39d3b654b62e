package risk

import "time"

// Level buckets the overall score.
type Level string

const (
	LevelLow      Level = "low"      // overall <= 25
	LevelMedium   Level = "medium"   // overall <= 50
	LevelHigh     Level = "high"     // overall <= 75
	LevelCritical Level = "critical" // overall > 75
)

// Factor names. Every assessment carries all six.
const (
	FactorFilesChanged = "files_changed"
	FactorLinesChanged = "lines_changed"
	FactorComplexity   = "complexity"
	FactorDependents   = "dependents"
	FactorBusFactor    = "bus_factor"
	FactorTestCoverage = "test_coverage"
)

// factorWeights must sum to exactly 1.0.
var factorWeights = map[string]float64{
	FactorFilesChanged: 0.15,
	FactorLinesChanged: 0.15,
	FactorComplexity:   0.25,
	FactorDependents:   0.25,
	FactorBusFactor:    0.10,
	FactorTestCoverage: 0.10,
}

// Factor is one scored risk dimension.
type Factor struct {
	Name    string   `json:"name"`
	Score   int      `json:"score"` // 0..100
	Weight  float64  `json:"weight"`
	Details string   `json:"details"`
	Items   []string `json:"items,omitempty"` // the concrete files/symbols behind the score
}

// Assessment is the full multi-factor risk score for one pending change.
type Assessment struct {
	ID              string            `json:"id"`
	CreatedAt       time.Time         `json:"createdAt"`
	Overall         int               `json:"overall"` // 0..100
	Level           Level             `json:"level"`
	Factors         map[string]Factor `json:"factors"`
	Recommendations []string          `json:"recommendations"`
	Summary         string            `json:"summary"`
}

func levelFor(overall int) Level {
	switch {
	case overall <= 25:
		return LevelLow
	case overall <= 50:
		return LevelMedium
	case overall <= 75:
		return LevelHigh
	default:
		return LevelCritical
	}
}
