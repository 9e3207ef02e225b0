// FilePath: internal/repository/timescale/timescale.sensor_data.go
package timescale

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mirnanodes/broilink-backend/internal/database"
	"github.com/mirnanodes/broilink-backend/internal/errors"
	"github.com/mirnanodes/broilink-backend/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

type SensorDataRepo struct {
	TimeScaleBaseRepo
}

func NewSensorDataRepository(db database.DB) (*SensorDataRepo, error) {
	repo := &SensorDataRepo{TimeScaleBaseRepo: TimeScaleBaseRepo{db: db}}
	err := repo.initializeSchema()
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *SensorDataRepo) initializeSchema() error {
	// Create hypertable for environment readings
	queries := []string{
		`CREATE TABLE IF NOT EXISTS iot_data (
			id TEXT NOT NULL,
			farm_id BIGINT NOT NULL,
			temperature DOUBLE PRECISION NOT NULL,
			humidity DOUBLE PRECISION NOT NULL,
			ammonia DOUBLE PRECISION NOT NULL,
			data_source TEXT NOT NULL DEFAULT 'iot',
			timestamp TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (id, timestamp)
		)`,
		`SELECT create_hypertable('iot_data', 'timestamp',
			chunk_time_interval => INTERVAL '1 day',
			if_not_exists => TRUE
		)`,
		// Continuous aggregate backing the six-month monitoring range
		`CREATE MATERIALIZED VIEW IF NOT EXISTS iot_data_daily
			WITH (timescaledb.continuous) AS
			SELECT farm_id,
				time_bucket('1 day', timestamp) AS bucket,
				AVG(temperature) as avg_temperature,
				AVG(humidity) as avg_humidity,
				AVG(ammonia) as avg_ammonia,
				COUNT(*) as reading_count
			FROM iot_data
			GROUP BY farm_id, time_bucket('1 day', timestamp)`,
		// Index for latest-reading queries
		`CREATE INDEX IF NOT EXISTS idx_iot_data_farm_timestamp
         ON iot_data(farm_id, timestamp DESC)`,
	}

	for _, query := range queries {
		_, err := r.db.GetDB().Exec(query)
		if err != nil {
			return errors.NewDatabaseError("failed to initialize schema", err)
		}
	}

	r.setupRetentionPolicies()
	return nil
}

func (r *SensorDataRepo) setupRetentionPolicies() {
	// Raw readings outlive the longest monitoring range (6 months) with
	// margin for a full grow-out cycle of history.
	policies := []struct {
		name     string
		interval string
	}{
		{"raw_readings", "13 months"},
	}

	for _, policy := range policies {
		query := fmt.Sprintf(`
			SELECT add_retention_policy('iot_data',
				INTERVAL '%s',
				if_not_exists => TRUE
			)`, policy.interval)

		_, err := r.db.GetDB().Exec(query)
		if err != nil {
			nuts.L.Errorf("[TimescaleDB] Failed to set up retention policy %s: %v", policy.name, err)
		}
	}
}

func (r *SensorDataRepo) InsertReading(ctx context.Context, reading *models.SensorReading) error {
	if reading.ID == "" {
		reading.ID = nuts.NID("rd", 12)
	}
	if reading.Timestamp.IsZero() {
		reading.Timestamp = time.Now()
	}
	if reading.DataSource == "" {
		reading.DataSource = models.SourceIoT
	}

	query := `
		INSERT INTO iot_data (id, farm_id, temperature, humidity, ammonia, data_source, timestamp)
		VALUES (:id, :farm_id, :temperature, :humidity, :ammonia, :data_source, :timestamp)`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, reading)
	if err != nil {
		return errors.NewDatabaseError("failed to insert reading", err)
	}
	return nil
}

// InsertReadings writes a batch in one transaction, used by the CSV
// importer. Either all rows land or none do.
func (r *SensorDataRepo) InsertReadings(ctx context.Context, readings []models.SensorReading) error {
	if len(readings) == 0 {
		return nil
	}

	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO iot_data (id, farm_id, temperature, humidity, ammonia, data_source, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for i := range readings {
		rd := &readings[i]
		if rd.ID == "" {
			rd.ID = nuts.NID("rd", 12)
		}
		if rd.DataSource == "" {
			rd.DataSource = models.SourceCSV
		}
		if _, err := tx.ExecContext(ctx, query,
			rd.ID, rd.FarmID, rd.Temperature, rd.Humidity, rd.Ammonia, rd.DataSource, rd.Timestamp,
		); err != nil {
			tx.Rollback()
			return errors.NewDatabaseError("failed to insert reading batch", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewDatabaseError("failed to commit reading batch", err)
	}

	nuts.L.Infof("[TimescaleDB] Inserted %d readings for farm %d", len(readings), readings[0].FarmID)
	return nil
}

func (r *SensorDataRepo) GetRange(ctx context.Context, farmID int64, start, end time.Time) ([]models.SensorReading, error) {
	readings := []models.SensorReading{}
	query := `
		SELECT id, farm_id, temperature, humidity, ammonia, data_source, timestamp
		FROM iot_data
		WHERE farm_id = $1 AND timestamp BETWEEN $2 AND $3
		ORDER BY timestamp ASC`

	err := r.db.GetDB().SelectContext(ctx, &readings, query, farmID, start, end)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to get readings", err)
	}
	return readings, nil
}

func (r *SensorDataRepo) GetLatest(ctx context.Context, farmID int64) (*models.SensorReading, error) {
	reading := &models.SensorReading{}
	query := `
        SELECT id, farm_id, temperature, humidity, ammonia, data_source, timestamp
        FROM iot_data
        WHERE farm_id = $1
        ORDER BY timestamp DESC
        LIMIT 1`

	err := r.db.GetDB().GetContext(ctx, reading, query, farmID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("no readings for farm", err)
		}
		return nil, errors.NewDatabaseError("failed to get latest reading", err)
	}
	return reading, nil
}

func (r *SensorDataRepo) DeleteOldData(ctx context.Context, before time.Time) error {
	query := `DELETE FROM iot_data WHERE timestamp < $1`

	result, err := r.db.GetDB().ExecContext(ctx, query, before)
	if err != nil {
		return errors.NewDatabaseError("failed to delete old data", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	nuts.L.Infof("[TimescaleDB] Deleted %d readings before %v", rows, before)
	return nil
}

func (r *SensorDataRepo) DeleteByFarmID(ctx context.Context, farmID int64, tx database.Transaction) error {
	query := `DELETE FROM iot_data WHERE farm_id = $1`

	result, err := tx.ExecContext(ctx, query, farmID)
	if err != nil {
		return errors.NewDatabaseError("failed to delete farm readings", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	nuts.L.Infof("[TimescaleDB] Deleted %d readings for farm %d", rows, farmID)
	return nil
}
