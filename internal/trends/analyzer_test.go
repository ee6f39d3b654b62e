package trends

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reposcope/reposcope/internal/config"
	"github.com/reposcope/reposcope/internal/history"
)

func snap(at time.Time, health float64, m history.Metrics) *history.Snapshot {
	m.HealthScore = health
	return &history.Snapshot{
		ID:        at.Format(time.RFC3339),
		Timestamp: at,
		Metrics:   m,
	}
}

// newestFirst mimics the history store's ordering contract.
func newestFirst(snaps ...*history.Snapshot) []*history.Snapshot {
	out := make([]*history.Snapshot, len(snaps))
	copy(out, snaps)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func TestImprovingTrend(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	snaps := newestFirst(
		snap(now.Add(-48*time.Hour), 70, history.Metrics{AvgComplexity: 6}),
		snap(now.Add(-24*time.Hour), 74, history.Metrics{AvgComplexity: 5.2}),
		snap(now.Add(-1*time.Hour), 80, history.Metrics{AvgComplexity: 4}),
	)

	result, err := Analyze(snaps, PeriodAll, config.Default().Trends, now)
	require.NoError(t, err)

	assert.Equal(t, DirectionImproving, result.Direction)
	assert.InDelta(t, 10, result.HealthChange, 0.001)
	assert.Equal(t, 3, result.Snapshots)

	health := result.Metrics[0]
	require.Equal(t, "healthScore", health.Name)
	assert.InDelta(t, 14.285, health.ChangePercent, 0.01)
}

func TestStableWithinBand(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	snaps := newestFirst(
		snap(now.Add(-24*time.Hour), 70, history.Metrics{}),
		snap(now.Add(-1*time.Hour), 71, history.Metrics{}),
	)

	result, err := Analyze(snaps, PeriodAll, config.Default().Trends, now)
	require.NoError(t, err)
	assert.Equal(t, DirectionStable, result.Direction)
	assert.Contains(t, result.Insights[0], "stable")
}

func TestDecliningTrend(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	snaps := newestFirst(
		snap(now.Add(-24*time.Hour), 85, history.Metrics{HotspotCount: 1}),
		snap(now.Add(-1*time.Hour), 78, history.Metrics{HotspotCount: 4}),
	)

	result, err := Analyze(snaps, PeriodAll, config.Default().Trends, now)
	require.NoError(t, err)
	assert.Equal(t, DirectionDeclining, result.Direction)
	assert.Contains(t, result.Insights, "3 new hotspot(s) appeared.")
}

func TestPeriodFiltering(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	snaps := newestFirst(
		snap(now.AddDate(0, -2, 0), 40, history.Metrics{}), // outside month window
		snap(now.AddDate(0, 0, -10), 60, history.Metrics{}),
		snap(now.AddDate(0, 0, -2), 65, history.Metrics{}),
	)

	result, err := Analyze(snaps, PeriodMonth, config.Default().Trends, now)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Snapshots)
	assert.InDelta(t, 60, result.HealthOld, 0.001, "the two-month-old snapshot must be excluded")

	week, err := Analyze(snaps, PeriodWeek, config.Default().Trends, now)
	require.Error(t, err, "only one snapshot inside the week window")
	assert.Nil(t, week)
}

func TestNotEnoughSnapshots(t *testing.T) {
	now := time.Now()
	_, err := Analyze([]*history.Snapshot{snap(now, 70, history.Metrics{})}, PeriodAll, config.Default().Trends, now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 2")
}

func TestParsePeriod(t *testing.T) {
	for in, want := range map[string]Period{
		"day": PeriodDay, "WEEK": PeriodWeek, "Month": PeriodMonth, "all": PeriodAll, "": PeriodAll,
	} {
		got, err := ParsePeriod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParsePeriod("fortnight")
	assert.Error(t, err)
}

func TestZeroOldMetricAvoidsDivisionByZero(t *testing.T) {
	now := time.Now()
	snaps := newestFirst(
		snap(now.Add(-2*time.Hour), 50, history.Metrics{HotspotCount: 0}),
		snap(now.Add(-1*time.Hour), 50, history.Metrics{HotspotCount: 3}),
	)

	result, err := Analyze(snaps, PeriodAll, config.Default().Trends, now)
	require.NoError(t, err)
	for _, m := range result.Metrics {
		if m.Name == "hotspotCount" {
			assert.Zero(t, m.ChangePercent, "percent change from zero baseline reports 0")
			assert.InDelta(t, 3, m.Change, 0.001)
		}
	}
}

func TestDistributionBucketsCompared(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	older := snap(now.Add(-24*time.Hour), 80, history.Metrics{})
	older.Distribution = history.Distribution{Low: 40, Medium: 8, High: 2, VeryHigh: 0}
	newer := snap(now.Add(-1*time.Hour), 76, history.Metrics{})
	newer.Distribution = history.Distribution{Low: 38, Medium: 7, High: 4, VeryHigh: 1}

	result, err := Analyze(newestFirst(older, newer), PeriodAll, config.Default().Trends, now)
	require.NoError(t, err)

	byName := make(map[string]MetricDelta)
	for _, m := range result.Metrics {
		byName[m.Name] = m
	}
	require.Contains(t, byName, "dist.veryHigh")
	assert.InDelta(t, 1, byName["dist.veryHigh"].Change, 0.001)
	assert.InDelta(t, 2, byName["dist.high"].Change, 0.001)
	assert.InDelta(t, -2, byName["dist.low"].Change, 0.001)

	assert.Contains(t, result.Insights, "3 more file(s) moved into the high-complexity buckets (2 → 5).")
}

func TestUnchangedDistributionStaysSilent(t *testing.T) {
	now := time.Now()
	older := snap(now.Add(-2*time.Hour), 70, history.Metrics{})
	older.Distribution = history.Distribution{Low: 10}
	newer := snap(now.Add(-1*time.Hour), 70, history.Metrics{})
	newer.Distribution = history.Distribution{Low: 10}

	result, err := Analyze(newestFirst(older, newer), PeriodAll, config.Default().Trends, now)
	require.NoError(t, err)
	for _, in := range result.Insights {
		assert.NotContains(t, in, "complexity buckets")
	}
}
