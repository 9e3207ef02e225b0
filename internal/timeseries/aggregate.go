// FilePath: internal/timeseries/aggregate.go
package timeseries

import (
	"math"
	"time"

	"github.com/mirnanodes/broilink-backend/internal/models"
	"github.com/mirnanodes/broilink-backend/internal/status"
)

// Meta describes a composed series: the window it covers and the farm it
// belongs to. Start and End are the inclusive window instants in ISO-8601.
type Meta struct {
	Range  Range  `json:"range"`
	FarmID int64  `json:"farm_id"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Source string `json:"source,omitempty"`
}

// SensorSeries is the bucketed reduction of IoT readings. A nil element
// marks a bucket with no data, which is distinct from a measured zero.
type SensorSeries struct {
	Labels      []string `json:"labels"`
	Temperature []*int   `json:"temperature"`
	Humidity    []*int   `json:"humidity"`
	Ammonia     []*int   `json:"ammonia"`
	Meta        Meta     `json:"meta"`
}

// ManualSeries is the bucketed reduction of daily manual reports plus the
// farm's current-condition overview.
type ManualSeries struct {
	Labels    []string  `json:"labels"`
	Feed      []*int    `json:"feed"`
	Water     []*int    `json:"water"`
	AvgWeight []*int    `json:"avg_weight"`
	Mortality []*int    `json:"mortality"`
	Overview  *Overview `json:"overview,omitempty"`
	Meta      Meta      `json:"meta"`
}

// Overview carries the classified status of the farm's most recent
// reading together with its raw values. The raw values are nil when the
// farm has no readings at all.
type Overview struct {
	Status      status.Status `json:"status"`
	Temperature *float64      `json:"temperature"`
	Humidity    *float64      `json:"humidity"`
	Ammonia     *float64      `json:"ammonia"`
}

// AggregateSensor reduces readings into the window's buckets: arithmetic
// mean per bucket, rounded to the nearest whole unit. Records outside the
// window are ignored.
func AggregateSensor(farmID int64, w Window, readings []models.SensorReading) SensorSeries {
	n := w.BucketCount()
	temp := newAccumulators(n)
	hum := newAccumulators(n)
	amm := newAccumulators(n)

	for _, r := range readings {
		idx := w.BucketIndex(r.Timestamp)
		if idx < 0 {
			continue
		}
		temp[idx].add(r.Temperature)
		hum[idx].add(r.Humidity)
		amm[idx].add(r.Ammonia)
	}

	return SensorSeries{
		Labels:      w.Labels,
		Temperature: means(temp),
		Humidity:    means(hum),
		Ammonia:     means(amm),
		Meta:        newMeta(farmID, w, "iot_data"),
	}
}

// AggregateManual reduces manual reports into the window's buckets: sums
// for feed, water and mortality, mean for average weight. For the 1_day
// range reports are bucketed by their last-modified time so same-day edits
// land in the slot matching edit time; every other range buckets by the
// logical report date. Empty buckets stay nil across all ranges.
func AggregateManual(farmID int64, w Window, reports []models.ManualReport) ManualSeries {
	n := w.BucketCount()
	feed := newAccumulators(n)
	water := newAccumulators(n)
	weight := newAccumulators(n)
	mortality := newAccumulators(n)

	for _, rep := range reports {
		idx := w.BucketIndex(manualBucketTime(w.Range, rep))
		if idx < 0 {
			continue
		}
		feed[idx].add(rep.FeedKg)
		water[idx].add(rep.WaterL)
		weight[idx].add(rep.AvgWeight)
		mortality[idx].add(float64(rep.MortalityCount))
	}

	return ManualSeries{
		Labels:    w.Labels,
		Feed:      sums(feed),
		Water:     sums(water),
		AvgWeight: means(weight),
		Mortality: sums(mortality),
		Meta:      newMeta(farmID, w, "manual_data"),
	}
}

// ComposeOverview classifies the latest reading against the farm's
// thresholds and exposes its raw values for the dashboard header.
func ComposeOverview(latest *models.SensorReading, t status.Thresholds) Overview {
	ov := Overview{Status: status.Classify(latest, t)}
	if latest != nil {
		ov.Temperature = ptr(latest.Temperature)
		ov.Humidity = ptr(latest.Humidity)
		ov.Ammonia = ptr(latest.Ammonia)
	}
	return ov
}

func manualBucketTime(r Range, rep models.ManualReport) time.Time {
	if r == RangeDay {
		return rep.UpdatedAt
	}
	return rep.ReportDate
}

func newMeta(farmID int64, w Window, source string) Meta {
	return Meta{
		Range:  w.Range,
		FarmID: farmID,
		Start:  w.Start.Format(time.RFC3339),
		End:    w.End.Format(time.RFC3339),
		Source: source,
	}
}

// accumulator collects a running sum and count for one bucket.
type accumulator struct {
	sum   float64
	count int
}

func (a *accumulator) add(v float64) {
	a.sum += v
	a.count++
}

func newAccumulators(n int) []accumulator {
	return make([]accumulator, n)
}

func means(accs []accumulator) []*int {
	out := make([]*int, len(accs))
	for i, a := range accs {
		if a.count == 0 {
			continue
		}
		out[i] = ptr(int(math.Round(a.sum / float64(a.count))))
	}
	return out
}

func sums(accs []accumulator) []*int {
	out := make([]*int, len(accs))
	for i, a := range accs {
		if a.count == 0 {
			continue
		}
		out[i] = ptr(int(math.Round(a.sum)))
	}
	return out
}

func ptr[T any](v T) *T { return &v }
