// Package stats computes aggregate performance figures for published
// content sessions. The computation is a pure single-pass reduction so it
// can be exercised without any storage dependency.
package stats

import (
	"math"
	"time"
)

// PerformanceRecord is one published session's recorded metrics, pre-joined
// with the session title by the storage layer. A nil metric means the value
// was never recorded, which is distinct from zero.
type PerformanceRecord struct {
	SessionID  string
	Title      string
	Views      *int64
	Likes      *int64
	Comments   *int64
	Reposts    *int64
	RecordedAt time.Time
}

// BestEntry identifies the record holding the maximum observed value for a
// single metric.
type BestEntry struct {
	SessionID string `json:"session_id"`
	Title     string `json:"title"`
	Value     int64  `json:"value"`
}

// MetricTotals holds per-metric sums over non-nil observations.
type MetricTotals struct {
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
	Reposts  int64 `json:"reposts"`
}

// MetricAverages holds per-metric means rounded to one decimal place. A
// metric with no observations reports 0 rather than NaN.
type MetricAverages struct {
	Views    float64 `json:"views"`
	Likes    float64 `json:"likes"`
	Comments float64 `json:"comments"`
	Reposts  float64 `json:"reposts"`
}

// BestPerforming reports, per metric, the record with the greatest non-nil
// value. Entries are nil when no record observed that metric.
type BestPerforming struct {
	ByViews    *BestEntry `json:"by_views"`
	ByLikes    *BestEntry `json:"by_likes"`
	ByComments *BestEntry `json:"by_comments"`
	ByReposts  *BestEntry `json:"by_reposts"`
}

// AggregateStats is the summary recomputed fresh on every read. It has no
// identity and is never persisted.
type AggregateStats struct {
	TotalPublished      int64          `json:"total_published"`
	SessionsWithMetrics int            `json:"sessions_with_metrics"`
	Totals              MetricTotals   `json:"totals"`
	Averages            MetricAverages `json:"averages"`
	BestPerforming      BestPerforming `json:"best_performing"`
}

type accumulator struct {
	sum   int64
	count int64
	best  *BestEntry
}

// observe folds one metric value into the accumulator. Ties keep the
// earliest-encountered record: the comparison is strictly greater-than and
// iteration follows the caller's input order with no secondary sort.
func (a *accumulator) observe(rec PerformanceRecord, value *int64) {
	if value == nil {
		return
	}
	v := *value
	a.sum += v
	a.count++
	if a.best == nil || v > a.best.Value {
		a.best = &BestEntry{SessionID: rec.SessionID, Title: rec.Title, Value: v}
	}
}

func (a *accumulator) average() float64 {
	if a.count == 0 {
		return 0
	}
	return math.Round(float64(a.sum)/float64(a.count)*10) / 10
}

// Compute reduces the supplied records into an AggregateStats value. It is
// total over well-formed input: an empty slice yields zero totals, zero
// averages and nil best entries. totalPublished counts every published
// session and may legitimately exceed len(records), since publishing does
// not require recorded metrics. Records for unpublished sessions must be
// filtered out by the caller; Compute does not re-check session status.
func Compute(totalPublished int64, records []PerformanceRecord) AggregateStats {
	var views, likes, comments, reposts accumulator
	for _, rec := range records {
		views.observe(rec, rec.Views)
		likes.observe(rec, rec.Likes)
		comments.observe(rec, rec.Comments)
		reposts.observe(rec, rec.Reposts)
	}
	return AggregateStats{
		TotalPublished:      totalPublished,
		SessionsWithMetrics: len(records),
		Totals: MetricTotals{
			Views:    views.sum,
			Likes:    likes.sum,
			Comments: comments.sum,
			Reposts:  reposts.sum,
		},
		Averages: MetricAverages{
			Views:    views.average(),
			Likes:    likes.average(),
			Comments: comments.average(),
			Reposts:  reposts.average(),
		},
		BestPerforming: BestPerforming{
			ByViews:    views.best,
			ByLikes:    likes.best,
			ByComments: comments.best,
			ByReposts:  reposts.best,
		},
	}
}
