package trends

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/reposcope/reposcope/internal/config"
	"github.com/reposcope/reposcope/internal/errors"
	"github.com/reposcope/reposcope/internal/history"
)

// Period selects how far back the comparison reaches.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

// ParsePeriod validates a user-supplied period name.
func ParsePeriod(s string) (Period, error) {
	switch Period(strings.ToLower(s)) {
	case PeriodDay:
		return PeriodDay, nil
	case PeriodWeek:
		return PeriodWeek, nil
	case PeriodMonth:
		return PeriodMonth, nil
	case PeriodAll, Period(""):
		return PeriodAll, nil
	}
	return "", errors.Configf("unknown trend period %q (want day, week, month or all)", s)
}

// Direction classifies the health movement over the period.
type Direction string

const (
	DirectionImproving Direction = "improving"
	DirectionDeclining Direction = "declining"
	DirectionStable    Direction = "stable"
)

// MetricDelta compares one metric between the period's endpoints.
type MetricDelta struct {
	Name          string  `json:"name"`
	Old           float64 `json:"old"`
	New           float64 `json:"new"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

// Result is a period comparison between the oldest and newest snapshot.
type Result struct {
	Period        Period        `json:"period"`
	From          time.Time     `json:"from"`
	To            time.Time     `json:"to"`
	Snapshots     int           `json:"snapshots"`
	Direction     Direction     `json:"direction"`
	HealthOld     float64       `json:"healthOld"`
	HealthNew     float64       `json:"healthNew"`
	HealthChange  float64       `json:"healthChange"`
	Metrics       []MetricDelta `json:"metrics"`
	Insights      []string      `json:"insights"`
}

// periodStart returns the cutoff for a period ending at now. PeriodAll
// returns the zero time, admitting every snapshot.
func periodStart(p Period, now time.Time) time.Time {
	switch p {
	case PeriodDay:
		return now.AddDate(0, 0, -1)
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodMonth:
		return now.AddDate(0, -1, 0)
	}
	return time.Time{}
}

// Analyze compares the oldest and newest snapshot inside the period.
// Snapshots must be ordered newest-first, as the history store returns
// them. At least two in-period snapshots are required.
func Analyze(snapshots []*history.Snapshot, p Period, cfg config.TrendsConfig, now time.Time) (*Result, error) {
	cutoff := periodStart(p, now)
	var inPeriod []*history.Snapshot
	for _, s := range snapshots {
		if cutoff.IsZero() || !s.Timestamp.Before(cutoff) {
			inPeriod = append(inPeriod, s)
		}
	}

	if len(inPeriod) < 2 {
		return nil, errors.Configf("need at least 2 snapshots in period %q to compare, have %d", p, len(inPeriod))
	}

	newest := inPeriod[0]
	oldest := inPeriod[len(inPeriod)-1]

	result := &Result{
		Period:       p,
		From:         oldest.Timestamp,
		To:           newest.Timestamp,
		Snapshots:    len(inPeriod),
		HealthOld:    oldest.Metrics.HealthScore,
		HealthNew:    newest.Metrics.HealthScore,
		HealthChange: newest.Metrics.HealthScore - oldest.Metrics.HealthScore,
	}

	switch {
	case result.HealthChange > cfg.StableBand:
		result.Direction = DirectionImproving
	case result.HealthChange < -cfg.StableBand:
		result.Direction = DirectionDeclining
	default:
		result.Direction = DirectionStable
	}

	result.Metrics = []MetricDelta{
		delta("healthScore", oldest.Metrics.HealthScore, newest.Metrics.HealthScore),
		delta("avgComplexity", oldest.Metrics.AvgComplexity, newest.Metrics.AvgComplexity),
		delta("maxComplexity", float64(oldest.Metrics.MaxComplexity), float64(newest.Metrics.MaxComplexity)),
		delta("fileCount", float64(oldest.Metrics.FileCount), float64(newest.Metrics.FileCount)),
		delta("totalLines", float64(oldest.Metrics.TotalLines), float64(newest.Metrics.TotalLines)),
		delta("hotspotCount", float64(oldest.Metrics.HotspotCount), float64(newest.Metrics.HotspotCount)),
		delta("dist.low", float64(oldest.Distribution.Low), float64(newest.Distribution.Low)),
		delta("dist.medium", float64(oldest.Distribution.Medium), float64(newest.Distribution.Medium)),
		delta("dist.high", float64(oldest.Distribution.High), float64(newest.Distribution.High)),
		delta("dist.veryHigh", float64(oldest.Distribution.VeryHigh), float64(newest.Distribution.VeryHigh)),
	}
	result.Insights = insights(result, oldest, newest)
	return result, nil
}

func delta(name string, oldV, newV float64) MetricDelta {
	d := MetricDelta{Name: name, Old: oldV, New: newV, Change: newV - oldV}
	if oldV != 0 {
		d.ChangePercent = (newV - oldV) / oldV * 100
	}
	return d
}

// insights renders the material movements as prose. Noise inside the
// stable band stays silent.
func insights(r *Result, oldest, newest *history.Snapshot) []string {
	var out []string

	switch r.Direction {
	case DirectionImproving:
		out = append(out, fmt.Sprintf("Health improved from %.1f to %.1f (%+.1f) over %d snapshots.",
			r.HealthOld, r.HealthNew, r.HealthChange, r.Snapshots))
	case DirectionDeclining:
		out = append(out, fmt.Sprintf("Health declined from %.1f to %.1f (%+.1f) over %d snapshots.",
			r.HealthOld, r.HealthNew, r.HealthChange, r.Snapshots))
	default:
		out = append(out, fmt.Sprintf("Health is stable around %.1f.", r.HealthNew))
	}

	complexityDelta := newest.Metrics.AvgComplexity - oldest.Metrics.AvgComplexity
	if math.Abs(complexityDelta) >= 0.5 {
		verb := "rose"
		if complexityDelta < 0 {
			verb = "fell"
		}
		out = append(out, fmt.Sprintf("Average complexity %s from %.1f to %.1f.",
			verb, oldest.Metrics.AvgComplexity, newest.Metrics.AvgComplexity))
	}

	if hotDelta := newest.Metrics.HotspotCount - oldest.Metrics.HotspotCount; hotDelta != 0 {
		if hotDelta > 0 {
			out = append(out, fmt.Sprintf("%d new hotspot(s) appeared.", hotDelta))
		} else {
			out = append(out, fmt.Sprintf("%d hotspot(s) were resolved.", -hotDelta))
		}
	}

	heavyOld := oldest.Distribution.High + oldest.Distribution.VeryHigh
	heavyNew := newest.Distribution.High + newest.Distribution.VeryHigh
	if heavyDelta := heavyNew - heavyOld; heavyDelta != 0 {
		if heavyDelta > 0 {
			out = append(out, fmt.Sprintf("%d more file(s) moved into the high-complexity buckets (%d → %d).",
				heavyDelta, heavyOld, heavyNew))
		} else {
			out = append(out, fmt.Sprintf("%d file(s) left the high-complexity buckets (%d → %d).",
				-heavyDelta, heavyOld, heavyNew))
		}
	}

	grownFiles := newest.Metrics.FileCount - oldest.Metrics.FileCount
	if grownFiles > 0 && r.Direction != DirectionDeclining {
		out = append(out, fmt.Sprintf("The codebase grew by %d files without hurting health.", grownFiles))
	}

	return out
}
