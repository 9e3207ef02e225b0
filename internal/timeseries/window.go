// FilePath: internal/timeseries/window.go

// Package timeseries plans fixed aggregation windows and reduces sensor
// and manual-report history into per-bucket chart series.
package timeseries

import (
	"time"

	"github.com/mirnanodes/broilink-backend/internal/errors"
)

// Range selects one of the four supported aggregation windows.
type Range string

const (
	RangeDay       Range = "1_day"
	RangeWeek      Range = "1_week"
	RangeMonth     Range = "1_month"
	RangeSixMonths Range = "6_months"
)

// ParseRange validates a range keyword. Anything outside the four
// supported values is rejected; a bad range is never silently defaulted.
func ParseRange(raw string) (Range, error) {
	switch Range(raw) {
	case RangeDay, RangeWeek, RangeMonth, RangeSixMonths:
		return Range(raw), nil
	}
	return "", errors.NewValidationError("invalid range: "+raw, nil)
}

// Window is a planned aggregation window: the inclusive start/end
// instants, the fixed ordered bucket labels and the mapping from a
// timestamp to its bucket slot. Windows are derived per request and
// never persisted.
type Window struct {
	Range  Range
	Anchor time.Time
	Start  time.Time
	End    time.Time
	Labels []string
}

// BucketCount returns the fixed number of buckets for the window.
func (w Window) BucketCount() int { return len(w.Labels) }

// BucketIndex maps a timestamp to its bucket slot, or -1 when the
// timestamp falls outside the window.
func (w Window) BucketIndex(t time.Time) int {
	if t.Before(w.Start) || t.After(w.End) {
		return -1
	}
	switch w.Range {
	case RangeDay:
		return t.Hour() / 4
	case RangeWeek:
		return daysBetween(w.Start, t)
	case RangeMonth:
		// Days 29-31 fold into the fourth segment.
		idx := (t.Day() - 1) / 7
		if idx > 3 {
			idx = 3
		}
		return idx
	case RangeSixMonths:
		return monthsBetween(w.Start, t)
	}
	return -1
}

// Plan computes the window for a range keyword anchored at the given
// date. The anchor's location is kept throughout so day boundaries follow
// the caller's timezone.
func Plan(r Range, anchor time.Time) (Window, error) {
	switch r {
	case RangeDay:
		start := startOfDay(anchor)
		return Window{
			Range:  r,
			Anchor: anchor,
			Start:  start,
			End:    endOfDay(anchor),
			Labels: dayBucketLabels(),
		}, nil

	case RangeWeek:
		// Seven days ending at the anchor, anchor day inclusive.
		start := startOfDay(anchor.AddDate(0, 0, -6))
		labels := make([]string, 0, 7)
		for i := 0; i < 7; i++ {
			labels = append(labels, WeekdayNameID(start.AddDate(0, 0, i).Weekday()))
		}
		return Window{
			Range:  r,
			Anchor: anchor,
			Start:  start,
			End:    endOfDay(anchor),
			Labels: labels,
		}, nil

	case RangeMonth:
		start := startOfMonth(anchor)
		return Window{
			Range:  r,
			Anchor: anchor,
			Start:  start,
			End:    endOfMonth(anchor),
			Labels: monthSegmentLabels(),
		}, nil

	case RangeSixMonths:
		// Normalize to the first of the month before stepping back so
		// 31-day anchors cannot skid across month boundaries.
		start := startOfMonth(anchor).AddDate(0, -5, 0)
		labels := make([]string, 0, 6)
		for i := 0; i < 6; i++ {
			labels = append(labels, MonthAbbrevID(start.AddDate(0, i, 0).Month()))
		}
		return Window{
			Range:  r,
			Anchor: anchor,
			Start:  start,
			End:    endOfMonth(anchor),
			Labels: labels,
		}, nil
	}
	return Window{}, errors.NewValidationError("invalid range: "+string(r), nil)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

func endOfMonth(t time.Time) time.Time {
	return startOfMonth(t).AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// daysBetween counts calendar days from a to b, DST-safe.
func daysBetween(a, b time.Time) int {
	return int(startOfDay(b).Sub(startOfDay(a)).Hours()/24 + 0.5)
}

func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}
