// FilePath: internal/repository/postgres/postgres.telegram_link.go
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/mirnanodes/broilink-backend/internal/database"
	"github.com/mirnanodes/broilink-backend/internal/errors"
	"github.com/mirnanodes/broilink-backend/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

type TelegramLinkRepo struct {
	PostgresBaseRepo
}

func NewTelegramLinkRepository(db database.DB) *TelegramLinkRepo {
	repo := &PostgresBaseRepo{db: db}
	return &TelegramLinkRepo{PostgresBaseRepo: *repo}
}

// Link binds a chat to a user. Any previous binding of either side is
// removed first so both directions stay one-to-one.
func (r *TelegramLinkRepo) Link(ctx context.Context, userID, chatID int64) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM telegram_links WHERE user_id = $1 OR telegram_chat_id = $2`,
		userID, chatID); err != nil {
		tx.Rollback()
		return errors.NewDatabaseError("failed to clear stale telegram links", err)
	}

	now := time.Now()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO telegram_links (user_id, telegram_chat_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $3)`,
		userID, chatID, now); err != nil {
		tx.Rollback()
		return errors.NewDatabaseError("failed to create telegram link", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewDatabaseError("failed to commit telegram link", err)
	}

	nuts.L.Infof("[TelegramLinkRepo] Linked user %d to chat %d", userID, chatID)
	return nil
}

func (r *TelegramLinkRepo) GetByChatID(ctx context.Context, chatID int64) (*models.TelegramLink, error) {
	link := &models.TelegramLink{}
	query := `SELECT * FROM telegram_links WHERE telegram_chat_id = $1`

	err := r.db.GetDB().GetContext(ctx, link, query, chatID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("telegram link not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get telegram link", err)
	}
	return link, nil
}

func (r *TelegramLinkRepo) GetByUserID(ctx context.Context, userID int64) (*models.TelegramLink, error) {
	link := &models.TelegramLink{}
	query := `SELECT * FROM telegram_links WHERE user_id = $1`

	err := r.db.GetDB().GetContext(ctx, link, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("telegram link not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get telegram link", err)
	}
	return link, nil
}

// ListAll returns every chat binding, for admin broadcasts.
func (r *TelegramLinkRepo) ListAll(ctx context.Context) ([]models.TelegramLink, error) {
	links := []models.TelegramLink{}
	query := `SELECT * FROM telegram_links ORDER BY user_id ASC`

	err := r.db.GetDB().SelectContext(ctx, &links, query)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list telegram links", err)
	}
	return links, nil
}

func (r *TelegramLinkRepo) Unlink(ctx context.Context, userID int64) error {
	query := `DELETE FROM telegram_links WHERE user_id = $1`

	result, err := r.db.GetDB().ExecContext(ctx, query, userID)
	if err != nil {
		return errors.NewDatabaseError("failed to unlink telegram chat", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("telegram link not found", nil)
	}

	return nil
}
