package report

import (
	"time"

	"fintrack/internal/core"
)

// Granularity is the bucket width of a spending trend.
type Granularity string

const (
	Daily   Granularity = "daily"
	Monthly Granularity = "monthly"
)

// TrendPoint is one bucket of a spending trend series.
type TrendPoint struct {
	BucketStart time.Time
	Total       core.Money
}

// GranularityFor picks the bucket width for an analysis preset. Only the
// year-wide presets ("This Year", "All Time") render month by month; every
// other range, "Last 6 Months" included, stays daily.
func GranularityFor(period string) Granularity {
	switch period {
	case PeriodThisYear, PeriodAllTime:
		return Monthly
	}
	return Daily
}

// SpendingTrend buckets expense amounts over [start, end] inclusive. The
// result covers every bucket in the range: buckets without spend are
// gap-filled with 0, not omitted, so the series is evenly spaced.
func SpendingTrend(expenses []core.Expense, start, end time.Time, g Granularity) []TrendPoint {
	if end.Before(start) {
		return nil
	}

	totals := make(map[time.Time]int64)
	for _, e := range expenses {
		if !inRange(e.Date.Time, start, end) {
			continue
		}
		totals[bucketStart(e.Date.Time, g)] += e.Amount.Cents
	}

	var points []TrendPoint
	last := bucketStart(end, g)
	for b := bucketStart(start, g); !b.After(last); b = nextBucket(b, g) {
		points = append(points, TrendPoint{
			BucketStart: b,
			Total:       core.Money{Cents: totals[b]},
		})
	}
	return points
}

// Cumulative derives the running sum over a trend series.
func Cumulative(points []TrendPoint) []TrendPoint {
	out := make([]TrendPoint, len(points))
	var running int64
	for i, p := range points {
		running += p.Total.Cents
		out[i] = TrendPoint{BucketStart: p.BucketStart, Total: core.Money{Cents: running}}
	}
	return out
}

func bucketStart(t time.Time, g Granularity) time.Time {
	if g == Monthly {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func nextBucket(t time.Time, g Granularity) time.Time {
	if g == Monthly {
		return t.AddDate(0, 1, 0)
	}
	return t.AddDate(0, 0, 1)
}
