// FilePath: internal/repository/postgres/postgres.farm.go
package postgres

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

type FarmRepo struct {
	PostgresBaseRepo
}

func NewFarmRepository(db database.DB) *FarmRepo {
	repo := &PostgresBaseRepo{db: db}
	return &FarmRepo{PostgresBaseRepo: *repo}
}

func (r *FarmRepo) Create(ctx context.Context, farm *models.Farm) error {
	query := `
		INSERT INTO farms (
			owner_id, peternak_id, farm_name, location,
			initial_population, initial_weight, farm_area,
			created_at, updated_at
		) VALUES (
			:owner_id, :peternak_id, :farm_name, :location,
			:initial_population, :initial_weight, :farm_area,
			:created_at, :updated_at
		) RETURNING farm_id`

	now := time.Now()
	farm.CreatedAt = now
	farm.UpdatedAt = now

	rows, err := r.db.GetDB().NamedQueryContext(ctx, query, farm)
	if err != nil {
		return errors.NewDatabaseError("failed to create farm", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&farm.ID); err != nil {
			return errors.NewDatabaseError("failed to read new farm id", err)
		}
	}
	return nil
}

func (r *FarmRepo) Get(ctx context.Context, id int64) (*models.Farm, error) {
	farm := &models.Farm{}
	query := `SELECT * FROM farms WHERE farm_id = $1`

	err := r.db.GetDB().GetContext(ctx, farm, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("farm not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get farm", err)
	}
	return farm, nil
}

func (r *FarmRepo) Update(ctx context.Context, farm *models.Farm) error {
	query := `
		UPDATE farms SET
			owner_id = :owner_id,
			peternak_id = :peternak_id,
			farm_name = :farm_name,
			location = :location,
			initial_population = :initial_population,
			initial_weight = :initial_weight,
			farm_area = :farm_area,
			updated_at = :updated_at
		WHERE farm_id = :farm_id`

	farm.UpdatedAt = time.Now()

	result, err := r.db.GetDB().NamedExecContext(ctx, query, farm)
	if err != nil {
		return errors.NewDatabaseError("failed to update farm", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("farm not found", nil)
	}

	return nil
}

func (r *FarmRepo) AssignPeternak(ctx context.Context, farmID int64, peternakID *int64) error {
	query := `UPDATE farms SET peternak_id = $1, updated_at = $2 WHERE farm_id = $3`

	result, err := r.db.GetDB().ExecContext(ctx, query, peternakID, time.Now(), farmID)
	if err != nil {
		return errors.NewDatabaseError("failed to assign peternak", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("farm not found", nil)
	}

	return nil
}

func (r *FarmRepo) List(ctx context.Context, filters models.FarmFilters, page, limit int) (int64, []*models.Farm, error) {
	query := `SELECT * FROM farms WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM farms WHERE 1=1`

	args := []interface{}{}
	if filters.OwnerID != 0 {
		args = append(args, filters.OwnerID)
		clause := fmt.Sprintf(` AND owner_id = $%d`, len(args))
		query += clause
		countQuery += clause
	}
	if filters.PeternakID != 0 {
		args = append(args, filters.PeternakID)
		clause := fmt.Sprintf(` AND peternak_id = $%d`, len(args))
		query += clause
		countQuery += clause
	}

	count := int64(0)
	if err := r.db.GetDB().GetContext(ctx, &count, countQuery, args...); err != nil {
		return 0, nil, errors.NewDatabaseError("failed to count farms", err)
	}

	args = append(args, limit, (page-1)*limit)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	farms := []*models.Farm{}
	if err := r.db.GetDB().SelectContext(ctx, &farms, query, args...); err != nil {
		return 0, nil, errors.NewDatabaseError("failed to list farms", err)
	}

	return count, farms, nil
}

func (r *FarmRepo) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM farms WHERE farm_id = $1`

	result, err := r.db.GetDB().ExecContext(ctx, query, id)
	if err != nil {
		return errors.NewDatabaseError("failed to delete farm", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("farm not found", nil)
	}

	return nil
}

// DeleteWithChildren removes the farm row inside an open transaction. The
// caller deletes dependent config, report and reading rows first.
func (r *FarmRepo) DeleteWithChildren(ctx context.Context, id int64, tx database.Transaction) error {
	query := `DELETE FROM farms WHERE farm_id = $1`

	result, err := tx.ExecContext(ctx, query, id)
	if err != nil {
		return errors.NewDatabaseError("failed to delete farm", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("farm not found", nil)
	}

	nuts.L.Infof("[FarmRepo] Deleted farm %d", id)
	return nil
}
