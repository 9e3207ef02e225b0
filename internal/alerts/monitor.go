// FilePath: internal/alerts/monitor.go
package alerts

import (
	"context"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/mirnanodes/broilink-backend/internal/models"
	"github.com/mirnanodes/broilink-backend/internal/monitoring"
	"github.com/mirnanodes/broilink-backend/internal/status"
)

// Notifier delivers a fired alert to its audience. The telegram package
// provides the production implementation.
type Notifier interface {
	NotifyFarmAlert(ctx context.Context, farm *models.Farm, st status.Status, reading *models.SensorReading) error
}

// ConditionSource yields the data the monitor needs per farm: the farms
// to watch, each farm's thresholds and its latest reading.
type ConditionSource interface {
	ListMonitoredFarms(ctx context.Context) ([]*models.Farm, error)
	FarmThresholds(ctx context.Context, farmID int64) (status.Thresholds, error)
	LatestReading(ctx context.Context, farmID int64) (*models.SensorReading, error)
}

// Monitor periodically classifies every farm's latest reading and fires
// an alert when the farm is in waspada or bahaya, at most once per
// reading per suppression window.
type Monitor struct {
	source   ConditionSource
	dedup    Deduplicator
	notifier Notifier
	interval time.Duration
	ttl      time.Duration
}

func NewMonitor(source ConditionSource, dedup Deduplicator, notifier Notifier, interval, ttl time.Duration) *Monitor {
	if interval <= 0 {
		interval = time.Minute
	}
	if ttl <= 0 {
		ttl = DefaultSuppressionTTL
	}
	return &Monitor{
		source:   source,
		dedup:    dedup,
		notifier: notifier,
		interval: interval,
		ttl:      ttl,
	}
}

// Run blocks until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	nuts.L.Infof("[AlertMonitor] Started (interval %v, suppression %v)", m.interval, m.ttl)
	for {
		select {
		case <-ctx.Done():
			nuts.L.Infof("[AlertMonitor] Stopped")
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Sweep runs one pass over all farms. Exposed for tests and for manual
// triggering after ingest.
func (m *Monitor) Sweep(ctx context.Context) {
	farms, err := m.source.ListMonitoredFarms(ctx)
	if err != nil {
		nuts.L.Errorf("[AlertMonitor] Failed to list farms: %v", err)
		return
	}

	for _, farm := range farms {
		if err := m.CheckFarm(ctx, farm); err != nil {
			nuts.L.Errorf("[AlertMonitor] Check failed for farm %d: %v", farm.ID, err)
		}
	}
}

// CheckFarm classifies one farm and fires the alert if warranted.
func (m *Monitor) CheckFarm(ctx context.Context, farm *models.Farm) error {
	thresholds, err := m.source.FarmThresholds(ctx, farm.ID)
	if err != nil {
		return err
	}

	reading, err := m.source.LatestReading(ctx, farm.ID)
	if err != nil {
		return err
	}

	st := status.Classify(reading, thresholds)
	if st != status.StatusWarning && st != status.StatusCritical {
		return nil
	}

	ok, err := m.dedup.Acquire(ctx, AlertKey(reading.ID), m.ttl)
	if err != nil {
		// Dedup backend down: deliver anyway, a duplicate beats silence.
		nuts.L.Errorf("[AlertMonitor] Dedup check failed for farm %d: %v", farm.ID, err)
		ok = true
	}
	if !ok {
		monitoring.AlertsSuppressedTotal.Inc()
		return nil
	}

	if err := m.notifier.NotifyFarmAlert(ctx, farm, st, reading); err != nil {
		return err
	}

	monitoring.AlertsFiredTotal.WithLabelValues(string(st)).Inc()
	nuts.L.Infof("[AlertMonitor] Alert fired for farm %d (%s): status %s", farm.ID, farm.Name, st)
	return nil
}
