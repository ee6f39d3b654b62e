package busfactor

import (
	"fmt"
	"sort"
	"time"

	"github.com/reposcope/reposcope/internal/config"
	"github.com/reposcope/reposcope/internal/gitminer"
)

// RiskLevel classifies how exposed a file's knowledge is.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

func riskRank(r RiskLevel) int {
	switch r {
	case RiskCritical:
		return 3
	case RiskHigh:
		return 2
	case RiskMedium:
		return 1
	default:
		return 0
	}
}

// FileRisk is the knowledge-distribution assessment for one file.
type FileRisk struct {
	Path                string    `json:"path"`
	BusFactor           int       `json:"busFactor"`
	TopOwner            string    `json:"topOwner"`
	TopOwnerShare       float64   `json:"topOwnerShare"`
	Contributors        int       `json:"contributors"`
	DaysSinceLastChange int       `json:"daysSinceLastChange"`
	RiskLevel           RiskLevel `json:"riskLevel"`
}

// Owner aggregates one contributor's footprint across analyzed files.
type Owner struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	FilesOwned int    `json:"filesOwned"` // files where they are top contributor
	Commits    int    `json:"commits"`
}

// Result is the repository-wide knowledge-distribution analysis.
type Result struct {
	AnalyzedFiles    int        `json:"analyzedFiles"`
	OverallBusFactor float64    `json:"overallBusFactor"` // mean per-file bus factor
	Files            []FileRisk `json:"files"`            // riskiest first
	TopOwners        []Owner    `json:"topOwners"`
	Insights         []string   `json:"insights"`
}

// Analyze computes per-file bus factors from contributor commit shares.
// A contributor is significant at cfg.SignificantShare of the file's
// commits; the bus factor is the significant-contributor count, floored
// at 1 - someone always holds the knowledge, however thinly.
func Analyze(stats map[string]*gitminer.FileStats, cfg config.BusFactorConfig, now time.Time) *Result {
	result := &Result{}
	ownerAgg := make(map[string]*Owner)

	for path, fs := range stats {
		if fs == nil || fs.TotalCommits == 0 {
			continue
		}

		significant := 0
		for _, c := range fs.Contributors {
			if c.Share >= cfg.SignificantShare {
				significant++
			}
		}
		busFactor := significant
		if busFactor < 1 {
			busFactor = 1
		}

		top := fs.Contributors[0]
		days := -1
		if !fs.LastModified.IsZero() {
			days = int(now.Sub(fs.LastModified).Hours() / 24)
		}

		risk := classify(busFactor, top.Share, days, cfg)
		result.Files = append(result.Files, FileRisk{
			Path:                path,
			BusFactor:           busFactor,
			TopOwner:            top.Name,
			TopOwnerShare:       top.Share,
			Contributors:        len(fs.Contributors),
			DaysSinceLastChange: days,
			RiskLevel:           risk,
		})

		if agg, ok := ownerAgg[top.Email]; ok {
			agg.FilesOwned++
			agg.Commits += top.Commits
		} else {
			ownerAgg[top.Email] = &Owner{Name: top.Name, Email: top.Email, FilesOwned: 1, Commits: top.Commits}
		}
	}

	result.AnalyzedFiles = len(result.Files)
	if result.AnalyzedFiles > 0 {
		sum := 0
		for _, f := range result.Files {
			sum += f.BusFactor
		}
		result.OverallBusFactor = float64(sum) / float64(result.AnalyzedFiles)
	}

	sort.Slice(result.Files, func(i, j int) bool {
		ri, rj := riskRank(result.Files[i].RiskLevel), riskRank(result.Files[j].RiskLevel)
		if ri != rj {
			return ri > rj
		}
		if result.Files[i].TopOwnerShare != result.Files[j].TopOwnerShare {
			return result.Files[i].TopOwnerShare > result.Files[j].TopOwnerShare
		}
		return result.Files[i].Path < result.Files[j].Path
	})

	for _, o := range ownerAgg {
		result.TopOwners = append(result.TopOwners, *o)
	}
	sort.Slice(result.TopOwners, func(i, j int) bool {
		if result.TopOwners[i].FilesOwned != result.TopOwners[j].FilesOwned {
			return result.TopOwners[i].FilesOwned > result.TopOwners[j].FilesOwned
		}
		return result.TopOwners[i].Email < result.TopOwners[j].Email
	})

	result.Insights = insights(result, cfg)
	return result
}

// classify applies the ownership thresholds, then bumps risk one level for
// stale single-owner files: even a known owner forgets code they have not
// touched in months.
func classify(busFactor int, topShare float64, daysSince int, cfg config.BusFactorConfig) RiskLevel {
	var risk RiskLevel
	switch {
	case busFactor == 1 && topShare >= cfg.SoleOwnerShare:
		risk = RiskCritical
	case busFactor == 1:
		risk = RiskHigh
	case busFactor == 2:
		risk = RiskMedium
	default:
		risk = RiskLow
	}

	if daysSince > cfg.StaleDays && busFactor <= 2 && risk != RiskCritical {
		risk = bump(risk)
	}
	return risk
}

func bump(r RiskLevel) RiskLevel {
	switch r {
	case RiskLow:
		return RiskMedium
	case RiskMedium:
		return RiskHigh
	default:
		return RiskCritical
	}
}

func insights(r *Result, cfg config.BusFactorConfig) []string {
	if r.AnalyzedFiles == 0 {
		return []string{"No file history available - bus factor analysis needs git history"}
	}

	var out []string

	critical := 0
	for _, f := range r.Files {
		if f.RiskLevel == RiskCritical {
			critical++
		}
	}
	if critical > 0 {
		out = append(out, fmt.Sprintf(
			"%d of %d files are critically owned by a single person (>= %.0f%% of commits)",
			critical, r.AnalyzedFiles, cfg.SoleOwnerShare*100))
	}

	if len(r.TopOwners) > 0 && r.AnalyzedFiles >= 4 {
		top := r.TopOwners[0]
		if top.FilesOwned*2 >= r.AnalyzedFiles {
			out = append(out, fmt.Sprintf(
				"%s is the primary owner of %d of %d analyzed files - onboarding a second maintainer would cut concentration risk",
				top.Name, top.FilesOwned, r.AnalyzedFiles))
		}
	}

	if r.OverallBusFactor < 1.5 {
		out = append(out, fmt.Sprintf(
			"Overall bus factor is %.1f - most files would lose their expert with one departure", r.OverallBusFactor))
	} else if critical == 0 {
		out = append(out, fmt.Sprintf(
			"Knowledge is reasonably distributed (overall bus factor %.1f)", r.OverallBusFactor))
	}

	return out
}
