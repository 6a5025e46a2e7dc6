package ledger

import (
	"math"
	"time"
)

// Analytics defaults.
const (
	DefaultRecentLimit = 20
	DefaultTrendDays   = 7
)

const dayLayout = "2006-01-02"

// DailyCount is one day of the scan trend.
type DailyCount struct {
	Date    string `json:"date"`
	Scans   int    `json:"scans"`
	Threats int    `json:"threats"`
}

// Analytics aggregates the scan history for the dashboard.
type Analytics struct {
	TotalScans           int                       `json:"total_scans"`
	ThreatsDetected      int                       `json:"threats_detected"`
	DetectionRate        float64                   `json:"detection_rate"`
	ModelsActive         int                       `json:"models_active"`
	CategoryDistribution map[string]int            `json:"category_distribution"`
	RiskDistribution     map[string]int            `json:"risk_distribution"`
	ScanTypeDistribution map[string]int            `json:"scan_type_distribution"`
	ResultDistribution   map[string]int            `json:"result_distribution"`
	DailyTrend           []DailyCount              `json:"daily_trend"`
	RecentScans          []Entry                   `json:"recent_scans"`
	ModelInfo            map[string]map[string]any `json:"model_info"`
	Timestamp            time.Time                 `json:"timestamp"`
}

// AnalyticsOptions carries the parts of the report the ledger does not own.
type AnalyticsOptions struct {
	RecentLimit  int
	TrendDays    int
	ModelsActive int
	// ModelInfo is per model family metadata; list values are dropped and
	// floats rounded to four decimals.
	ModelInfo map[string]map[string]any
	// Location sets the calendar used for the daily trend. Defaults to
	// time.Local.
	Location *time.Location
}

// Analytics computes the dashboard report over a snapshot of the history.
func (l *Ledger) Analytics(opts AnalyticsOptions) Analytics {
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = DefaultRecentLimit
	}
	if opts.TrendDays <= 0 {
		opts.TrendDays = DefaultTrendDays
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	now := l.now()
	entries := l.Snapshot()

	a := Analytics{
		TotalScans:           len(entries),
		ModelsActive:         opts.ModelsActive,
		CategoryDistribution: map[string]int{},
		RiskDistribution:     map[string]int{},
		ScanTypeDistribution: map[string]int{},
		ResultDistribution:   map[string]int{},
		ModelInfo:            summarizeInfo(opts.ModelInfo),
		Timestamp:            now,
	}

	days := make([]DailyCount, opts.TrendDays)
	dayIndex := make(map[string]int, opts.TrendDays)
	today := now.In(loc)
	for i := range days {
		// oldest first
		date := today.AddDate(0, 0, i-opts.TrendDays+1).Format(dayLayout)
		days[i].Date = date
		dayIndex[date] = i
	}

	for _, e := range entries {
		threat := e.Result.IsThreat()
		if threat {
			a.ThreatsDetected++
		}
		if e.Category != "" {
			a.CategoryDistribution[e.Category]++
		}
		a.RiskDistribution[e.Tier.String()]++
		a.ScanTypeDistribution[string(e.Kind)]++
		a.ResultDistribution[string(e.Result)]++

		if i, ok := dayIndex[e.Timestamp.In(loc).Format(dayLayout)]; ok {
			days[i].Scans++
			if threat {
				days[i].Threats++
			}
		}
	}
	a.DailyTrend = days

	rate := float64(a.ThreatsDetected) / float64(max(a.TotalScans, 1)) * 100
	a.DetectionRate = math.Round(rate*10) / 10

	n := min(opts.RecentLimit, len(entries))
	a.RecentScans = make([]Entry, 0, n)
	for i := len(entries) - 1; i >= len(entries)-n; i-- {
		a.RecentScans = append(a.RecentScans, entries[i])
	}
	return a
}

func summarizeInfo(info map[string]map[string]any) map[string]map[string]any {
	out := make(map[string]map[string]any, len(info))
	for family, fields := range info {
		kept := make(map[string]any, len(fields))
		for k, v := range fields {
			switch val := v.(type) {
			case []any, []string, []float64, []int:
				continue
			case float64:
				kept[k] = math.Round(val*1e4) / 1e4
			case float32:
				kept[k] = math.Round(float64(val)*1e4) / 1e4
			default:
				kept[k] = v
			}
		}
		out[family] = kept
	}
	return out
}
