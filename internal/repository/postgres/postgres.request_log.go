// FilePath: internal/repository/postgres/postgres.request_log.go
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/mirnanodes/broilink-backend/internal/database"
	"github.com/mirnanodes/broilink-backend/internal/errors"
	"github.com/mirnanodes/broilink-backend/internal/models"
)

type RequestLogRepo struct {
	PostgresBaseRepo
}

func NewRequestLogRepository(db database.DB) *RequestLogRepo {
	repo := &PostgresBaseRepo{db: db}
	return &RequestLogRepo{PostgresBaseRepo: *repo}
}

func (r *RequestLogRepo) Create(ctx context.Context, req *models.RequestLog) error {
	query := `
		INSERT INTO request_logs (
			user_id, sender_name, phone_number, request_type,
			request_content, status, sent_time, created_at, updated_at
		) VALUES (
			:user_id, :sender_name, :phone_number, :request_type,
			:request_content, :status, :sent_time, :created_at, :updated_at
		) RETURNING request_id`

	now := time.Now()
	if req.Status == "" {
		req.Status = models.RequestStatusPending
	}
	if req.SentTime.IsZero() {
		req.SentTime = now
	}
	req.CreatedAt = now
	req.UpdatedAt = now

	rows, err := r.db.GetDB().NamedQueryContext(ctx, query, req)
	if err != nil {
		return errors.NewDatabaseError("failed to create request log", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&req.RequestID); err != nil {
			return errors.NewDatabaseError("failed to read new request id", err)
		}
	}
	return nil
}

func (r *RequestLogRepo) Get(ctx context.Context, id int64) (*models.RequestLog, error) {
	req := &models.RequestLog{}
	query := `SELECT * FROM request_logs WHERE request_id = $1`

	err := r.db.GetDB().GetContext(ctx, req, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("request not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get request", err)
	}
	return req, nil
}

func (r *RequestLogRepo) List(ctx context.Context, status string, offset, limit int) ([]*models.RequestLog, error) {
	reqs := []*models.RequestLog{}

	if status != "" {
		query := `
			SELECT * FROM request_logs
			WHERE status = $1
			ORDER BY sent_time DESC
			LIMIT $2 OFFSET $3`
		if err := r.db.GetDB().SelectContext(ctx, &reqs, query, status, limit, offset); err != nil {
			return nil, errors.NewDatabaseError("failed to list requests", err)
		}
		return reqs, nil
	}

	query := `SELECT * FROM request_logs ORDER BY sent_time DESC LIMIT $1 OFFSET $2`
	if err := r.db.GetDB().SelectContext(ctx, &reqs, query, limit, offset); err != nil {
		return nil, errors.NewDatabaseError("failed to list requests", err)
	}
	return reqs, nil
}

func (r *RequestLogRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE request_logs SET status = $1, updated_at = $2 WHERE request_id = $3`

	result, err := r.db.GetDB().ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return errors.NewDatabaseError("failed to update request status", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("request not found", nil)
	}

	return nil
}
