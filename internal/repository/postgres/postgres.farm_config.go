// FilePath: internal/repository/postgres/postgres.farm_config.go
package postgres

import (
	"context"

	"github.com/mirnanodes/broilink-backend/internal/database"
	"github.com/mirnanodes/broilink-backend/internal/errors"
	"github.com/mirnanodes/broilink-backend/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

type FarmConfigRepo struct {
	PostgresBaseRepo
}

func NewFarmConfigRepository(db database.DB) *FarmConfigRepo {
	repo := &PostgresBaseRepo{db: db}
	return &FarmConfigRepo{PostgresBaseRepo: *repo}
}

// GetAll returns the farm's threshold rows as a parameter/value map. A
// farm with no rows yields an empty map, not an error.
func (r *FarmConfigRepo) GetAll(ctx context.Context, farmID int64) (map[string]string, error) {
	rows := []models.FarmConfig{}
	query := `SELECT * FROM farm_configs WHERE farm_id = $1`

	err := r.db.GetDB().SelectContext(ctx, &rows, query, farmID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to get farm config", err)
	}

	config := make(map[string]string, len(rows))
	for _, row := range rows {
		config[row.ParameterName] = row.Value
	}
	return config, nil
}

// SetValues upserts the given parameters, leaving rows not named in the
// map untouched.
func (r *FarmConfigRepo) SetValues(ctx context.Context, farmID int64, values map[string]string) error {
	query := `
		INSERT INTO farm_configs (farm_id, parameter_name, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (farm_id, parameter_name)
		DO UPDATE SET value = EXCLUDED.value`

	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}

	for name, value := range values {
		if _, err := tx.ExecContext(ctx, query, farmID, name, value); err != nil {
			tx.Rollback()
			return errors.NewDatabaseError("failed to set farm config value", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewDatabaseError("failed to commit farm config", err)
	}
	return nil
}

// Replace deletes every row for the farm and writes the given set. Used
// for config reset back to defaults.
func (r *FarmConfigRepo) Replace(ctx context.Context, farmID int64, values map[string]string) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM farm_configs WHERE farm_id = $1`, farmID); err != nil {
		tx.Rollback()
		return errors.NewDatabaseError("failed to clear farm config", err)
	}

	insert := `INSERT INTO farm_configs (farm_id, parameter_name, value) VALUES ($1, $2, $3)`
	for name, value := range values {
		if _, err := tx.ExecContext(ctx, insert, farmID, name, value); err != nil {
			tx.Rollback()
			return errors.NewDatabaseError("failed to write farm config value", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewDatabaseError("failed to commit farm config", err)
	}

	nuts.L.Infof("[FarmConfigRepo] Replaced config for farm %d (%d parameters)", farmID, len(values))
	return nil
}

func (r *FarmConfigRepo) DeleteByFarmID(ctx context.Context, farmID int64, tx database.Transaction) error {
	query := `DELETE FROM farm_configs WHERE farm_id = $1`

	if _, err := tx.ExecContext(ctx, query, farmID); err != nil {
		return errors.NewDatabaseError("failed to delete farm config", err)
	}
	return nil
}
