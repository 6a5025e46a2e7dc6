package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/straja-ai/rakshak/internal/detect"
	"github.com/straja-ai/rakshak/internal/safety"
)

var now = time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func TestRecordScanAssignsID(t *testing.T) {
	l := New(WithClock(clock))
	l.RecordScan(context.Background(), detect.ScanRecord{
		Timestamp: now,
		Kind:      detect.KindURL,
		Result:    detect.ResultPhishing,
		Tier:      safety.High,
		Category:  "Phishing Link",
		Input:     "http://192.168.1.1/login",
	})

	entries := l.Snapshot()
	require.Len(t, entries, 1)
	_, err := uuid.Parse(entries[0].ID)
	assert.NoError(t, err)
	assert.Equal(t, detect.KindURL, entries[0].Kind)
	assert.Equal(t, "Phishing Link", entries[0].Category)
}

func TestAppendDefaultsTimestamp(t *testing.T) {
	l := New(WithClock(clock))
	e := l.Append(Entry{Kind: detect.KindJob, Result: detect.ResultLegit})
	assert.Equal(t, now, e.Timestamp)
	assert.NotEmpty(t, e.ID)
}

func TestEntryJSONShape(t *testing.T) {
	e := Entry{
		ID:        "id-1",
		Timestamp: now,
		Kind:      detect.KindMessage,
		Result:    detect.ResultScam,
		Tier:      safety.Critical,
		Category:  "Lottery Scam",
	}
	raw, err := json.Marshal(e)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "message", got["type"])
	assert.Equal(t, "scam", got["result"])
	assert.Equal(t, "CRITICAL", got["risk_level"])
	assert.Equal(t, "Lottery Scam", got["category"])
	assert.NotContains(t, got, "input")
}

func TestSnapshotIsACopy(t *testing.T) {
	l := New()
	l.Append(Entry{Kind: detect.KindMessage})
	snap := l.Snapshot()
	snap[0].Kind = detect.KindJob
	assert.Equal(t, detect.KindMessage, l.Snapshot()[0].Kind)
}

func TestMaxEntriesEvictsOldest(t *testing.T) {
	l := New(WithMaxEntries(3))
	for i := 0; i < 5; i++ {
		l.Append(Entry{ID: fmt.Sprint(i)})
	}
	var ids []string
	for _, e := range l.Snapshot() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"2", "3", "4"}, ids)
}

func TestConcurrentAppends(t *testing.T) {
	l := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.RecordScan(context.Background(), detect.ScanRecord{Kind: detect.KindMessage, Result: detect.ResultSafe})
			_ = l.Analytics(AnalyticsOptions{})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, l.Len())
}

func TestAnalyticsEmpty(t *testing.T) {
	a := New(WithClock(clock)).Analytics(AnalyticsOptions{Location: time.UTC})

	assert.Zero(t, a.TotalScans)
	assert.Zero(t, a.DetectionRate)
	assert.Empty(t, a.RecentScans)
	assert.NotNil(t, a.RecentScans)
	require.Len(t, a.DailyTrend, DefaultTrendDays)
	assert.Equal(t, "2024-06-04", a.DailyTrend[0].Date)
	assert.Equal(t, "2024-06-10", a.DailyTrend[6].Date)
	assert.Equal(t, now, a.Timestamp)
}

func TestAnalyticsAggregates(t *testing.T) {
	l := New(WithClock(clock))
	add := func(ts time.Time, kind detect.Kind, res detect.Result, tier safety.Tier, cat string) {
		l.Append(Entry{Timestamp: ts, Kind: kind, Result: res, Tier: tier, Category: cat})
	}
	add(now.AddDate(0, 0, -10), detect.KindMessage, detect.ResultSafe, safety.Safe, "")
	add(now.AddDate(0, 0, -6), detect.KindMessage, detect.ResultScam, safety.Critical, "Lottery Scam")
	add(now.AddDate(0, 0, -1), detect.KindURL, detect.ResultSafe, safety.Low, "")
	add(now, detect.KindJob, detect.ResultFake, safety.Medium, "Fake Job Scam")
	add(now, detect.KindMessage, detect.ResultScam, safety.High, "Lottery Scam")
	add(now, detect.KindURL, detect.ResultPhishing, safety.High, "Phishing Link")

	a := l.Analytics(AnalyticsOptions{Location: time.UTC, ModelsActive: 4})

	assert.Equal(t, 6, a.TotalScans)
	assert.Equal(t, 4, a.ThreatsDetected)
	assert.Equal(t, 66.7, a.DetectionRate)
	assert.Equal(t, 4, a.ModelsActive)
	assert.Equal(t, map[string]int{"Lottery Scam": 2, "Fake Job Scam": 1, "Phishing Link": 1}, a.CategoryDistribution)
	assert.Equal(t, map[string]int{"SAFE": 1, "LOW": 1, "MEDIUM": 1, "HIGH": 2, "CRITICAL": 1}, a.RiskDistribution)
	assert.Equal(t, map[string]int{"message": 3, "url": 2, "job": 1}, a.ScanTypeDistribution)
	assert.Equal(t, map[string]int{"safe": 2, "scam": 2, "fake": 1, "phishing": 1}, a.ResultDistribution)

	assert.Equal(t, []DailyCount{
		{Date: "2024-06-04", Scans: 1, Threats: 1},
		{Date: "2024-06-05"},
		{Date: "2024-06-06"},
		{Date: "2024-06-07"},
		{Date: "2024-06-08"},
		{Date: "2024-06-09", Scans: 1},
		{Date: "2024-06-10", Scans: 3, Threats: 3},
	}, a.DailyTrend)

	require.Len(t, a.RecentScans, 6)
	assert.Equal(t, detect.ResultPhishing, a.RecentScans[0].Result, "newest first")
	assert.Equal(t, detect.ResultSafe, a.RecentScans[5].Result)
}

func TestAnalyticsRecentLimit(t *testing.T) {
	l := New(WithClock(clock))
	for i := 0; i < 25; i++ {
		l.Append(Entry{ID: fmt.Sprint(i), Timestamp: now})
	}

	a := l.Analytics(AnalyticsOptions{})
	require.Len(t, a.RecentScans, DefaultRecentLimit)
	assert.Equal(t, "24", a.RecentScans[0].ID)
	assert.Equal(t, "5", a.RecentScans[19].ID)

	a = l.Analytics(AnalyticsOptions{RecentLimit: 3})
	assert.Len(t, a.RecentScans, 3)
}

func TestAnalyticsTrendUsesLocation(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)
	l := New(WithClock(clock))
	// 20:00 UTC on June 9 is June 10 in IST.
	l.Append(Entry{Timestamp: time.Date(2024, 6, 9, 20, 0, 0, 0, time.UTC), Result: detect.ResultScam})

	a := l.Analytics(AnalyticsOptions{Location: kolkata, TrendDays: 2})
	assert.Equal(t, []DailyCount{
		{Date: "2024-06-09"},
		{Date: "2024-06-10", Scans: 1, Threats: 1},
	}, a.DailyTrend)
}

func TestAnalyticsModelInfo(t *testing.T) {
	a := New().Analytics(AnalyticsOptions{ModelInfo: map[string]map[string]any{
		"text": {
			"logistic_regression": 0.971234567,
			"feature_names":       []any{"a", "b"},
			"samples":             5572,
		},
	}})
	assert.Equal(t, map[string]map[string]any{
		"text": {"logistic_regression": 0.9712, "samples": 5572},
	}, a.ModelInfo)
}
