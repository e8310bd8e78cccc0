package tracking

import (
	"math"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Filter narrows an aggregation to a slice of the store. All fields are
// optional. Date bounds are inclusive and compared as ISO strings against
// the record timestamp, matching the persisted representation. A
// date-only bound like "2026-08-01" therefore behaves as a prefix
// comparison, not end-of-day.
type Filter struct {
	DateFrom  string
	DateTo    string
	Template  string
	Recipient string
}

// TemplateCount is the per-template slice of an overview.
type TemplateCount struct {
	Sent    int `json:"sent"`
	Opened  int `json:"opened"`
	Clicked int `json:"clicked"`
}

// Summary is the full overview computed over the filtered records.
type Summary struct {
	Total                 int                       `json:"total"`
	Opened                int                       `json:"opened"`
	Clicked               int                       `json:"clicked"`
	OpenRate              float64                   `json:"openRate"`
	ClickRate             float64                   `json:"clickRate"`
	TotalClicks           int                       `json:"totalClicks"`
	UniqueClicks          int                       `json:"uniqueClicks"`
	AverageClicksPerEmail float64                   `json:"averageClicksPerEmail"`
	TemplateStats         map[string]*TemplateCount `json:"templateStats"`
	HourlyStats           [24]int                   `json:"hourlyStats"`
	DailyStats            map[string]int            `json:"dailyStats"`
	RecentActivity        []*EmailRecord            `json:"recentActivity"`
}

// URLCount annotates one click target with its count.
type URLCount struct {
	URL   string `json:"url"`
	Count int    `json:"count"`
}

// TemplateSummary extends Summary with per-template click and browser
// breakdowns.
type TemplateSummary struct {
	Summary
	ClickAnalysis  map[string]int `json:"clickAnalysis"`
	UserAgents     map[string]int `json:"userAgents"`
	TopClickedURLs []URLCount     `json:"topClickedUrls"`
}

// Aggregator computes rate metrics over the store's current snapshot.
// Nothing is cached or pre-aggregated; every call folds over the records
// fresh. All time bucketing is UTC.
type Aggregator struct {
	store *Store
}

// NewAggregator creates an aggregator reading from store.
func NewAggregator(store *Store) *Aggregator {
	return &Aggregator{store: store}
}

// Overview computes the engagement summary for records matching f.
func (a *Aggregator) Overview(f Filter) *Summary {
	return summarize(a.filtered(f))
}

// TemplateAnalytics computes the overview for one template plus its click
// target and browser breakdowns.
func (a *Aggregator) TemplateAnalytics(templateName string, f Filter) *TemplateSummary {
	f.Template = templateName
	recs := a.filtered(f)

	out := &TemplateSummary{
		Summary:       *summarize(recs),
		ClickAnalysis: make(map[string]int),
		UserAgents:    make(map[string]int),
	}

	for _, r := range recs {
		for _, c := range r.Clicks {
			out.ClickAnalysis[clickHost(c.URL)]++
		}
		if r.UserAgent != "" {
			out.UserAgents[browserLabel(r.UserAgent)]++
		}
	}

	for host, n := range out.ClickAnalysis {
		out.TopClickedURLs = append(out.TopClickedURLs, URLCount{URL: host, Count: n})
	}
	sort.Slice(out.TopClickedURLs, func(i, j int) bool {
		if out.TopClickedURLs[i].Count != out.TopClickedURLs[j].Count {
			return out.TopClickedURLs[i].Count > out.TopClickedURLs[j].Count
		}
		return out.TopClickedURLs[i].URL < out.TopClickedURLs[j].URL
	})
	if len(out.TopClickedURLs) > 10 {
		out.TopClickedURLs = out.TopClickedURLs[:10]
	}

	return out
}

func (a *Aggregator) filtered(f Filter) []*EmailRecord {
	var out []*EmailRecord
	for _, r := range a.store.Records() {
		ts := r.Timestamp.UTC().Format(time.RFC3339)
		if f.DateFrom != "" && ts < f.DateFrom {
			continue
		}
		if f.DateTo != "" && ts > f.DateTo {
			continue
		}
		if f.Template != "" && r.Template != f.Template {
			continue
		}
		if f.Recipient != "" && r.Recipient != f.Recipient {
			continue
		}
		out = append(out, r)
	}
	return out
}

func summarize(recs []*EmailRecord) *Summary {
	s := &Summary{
		TemplateStats: make(map[string]*TemplateCount),
		DailyStats:    make(map[string]int),
	}

	for _, r := range recs {
		s.Total++
		if r.Opened {
			s.Opened++
		}
		if len(r.Clicks) > 0 {
			s.Clicked++
		}
		s.TotalClicks += len(r.Clicks)

		tc := s.TemplateStats[r.Template]
		if tc == nil {
			tc = &TemplateCount{}
			s.TemplateStats[r.Template] = tc
		}
		tc.Sent++
		if r.Opened {
			tc.Opened++
		}
		if len(r.Clicks) > 0 {
			tc.Clicked++
		}

		ts := r.Timestamp.UTC()
		s.HourlyStats[ts.Hour()]++
		s.DailyStats[ts.Format("2006-01-02")]++
	}

	// uniqueClicks duplicates clicked for API stability
	s.UniqueClicks = s.Clicked

	if s.Total > 0 {
		s.OpenRate = round2(float64(s.Opened) / float64(s.Total) * 100)
		s.ClickRate = round2(float64(s.Clicked) / float64(s.Total) * 100)
		s.AverageClicksPerEmail = round2(float64(s.TotalClicks) / float64(s.Total))
	}

	recent := make([]*EmailRecord, len(recs))
	copy(recent, recs)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Timestamp.After(recent[j].Timestamp)
	})
	if len(recent) > 10 {
		recent = recent[:10]
	}
	s.RecentActivity = recent

	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// clickHost extracts the hostname from a click target; unparsable URLs
// fall back to the raw string so no click is ever dropped.
func clickHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}

// browserLabel maps a user-agent string to a coarse browser family.
// Edge and IE are checked first: an Edge UA also contains "chrome" and
// "safari", and a Chrome UA also contains "safari".
func browserLabel(ua string) string {
	l := strings.ToLower(ua)
	switch {
	case strings.Contains(l, "edg"):
		return "Edge"
	case strings.Contains(l, "trident") || strings.Contains(l, "msie"):
		return "Internet Explorer"
	case strings.Contains(l, "firefox"):
		return "Firefox"
	case strings.Contains(l, "chrome"):
		return "Chrome"
	case strings.Contains(l, "safari"):
		return "Safari"
	default:
		return "Other"
	}
}
