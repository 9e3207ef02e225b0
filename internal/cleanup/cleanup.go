// FilePath: internal/cleanup/cleanup.go
package cleanup

import (
	"context"
	"fmt"

	nuts "github.com/vaudience/go-nuts"

	"github.com/mirnanodes/broilink-backend/internal/repository"
)

// CleanupService coordinates deletion of a farm and everything hanging
// off it: threshold config, manual reports and environment readings.
type CleanupService struct {
	farms      repository.FarmRepository
	configs    repository.FarmConfigRepository
	reports    repository.ManualReportRepository
	sensorData repository.SensorDataRepository
	events     *nuts.EventEmitter
}

// New creates a new CleanupService
func New(
	farms repository.FarmRepository,
	configs repository.FarmConfigRepository,
	reports repository.ManualReportRepository,
	sensorData repository.SensorDataRepository,
) *CleanupService {
	return &CleanupService{
		farms:      farms,
		configs:    configs,
		reports:    reports,
		sensorData: sensorData,
		events:     nuts.NewEventEmitter(),
	}
}

// DeleteFarm deletes a farm and all its associated data in one
// transaction on the app database. Readings live in the timeseries
// store and are removed in their own transaction afterwards; a farm
// must never reappear with stale config, so the app rows go first.
func (s *CleanupService) DeleteFarm(ctx context.Context, farmID int64) error {
	tx, err := s.farms.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Will be ignored if transaction is committed

	if err := s.configs.DeleteByFarmID(ctx, farmID, tx); err != nil {
		return fmt.Errorf("failed to delete farm config: %w", err)
	}
	s.events.Emit("config.deleted", farmID)

	if err := s.reports.DeleteByFarmID(ctx, farmID, tx); err != nil {
		return fmt.Errorf("failed to delete manual reports: %w", err)
	}
	s.events.Emit("reports.deleted", farmID)

	if err := s.farms.DeleteWithChildren(ctx, farmID, tx); err != nil {
		return fmt.Errorf("failed to delete farm: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	// Readings cascade in the timeseries store.
	dataTx, err := s.sensorData.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin timeseries transaction: %w", err)
	}
	defer dataTx.Rollback()

	if err := s.sensorData.DeleteByFarmID(ctx, farmID, dataTx); err != nil {
		return fmt.Errorf("failed to delete readings: %w", err)
	}
	if err := dataTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit timeseries transaction: %w", err)
	}

	s.events.Emit("farm.deleted", farmID)
	return nil
}

// OnCleanup registers a callback for cleanup events
func (s *CleanupService) OnCleanup(event string, handler func(farmID int64)) {
	s.events.On(event, "cleanup_handler", func(args ...interface{}) {
		if len(args) > 0 {
			if id, ok := args[0].(int64); ok {
				handler(id)
			}
		}
	})
}
