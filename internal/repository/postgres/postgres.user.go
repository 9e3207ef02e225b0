// FilePath: internal/repository/postgres/postgres.user.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mirnanodes/broilink-backend/internal/database"
	"github.com/mirnanodes/broilink-backend/internal/errors"
	"github.com/mirnanodes/broilink-backend/internal/models"
)

type UserRepo struct {
	PostgresBaseRepo
}

func NewUserRepository(db database.DB) *UserRepo {
	repo := &PostgresBaseRepo{db: db}
	return &UserRepo{PostgresBaseRepo: *repo}
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (
			role_id, username, email, password, name,
			phone_number, profile_pic, status, date_joined
		) VALUES (
			:role_id, :username, :email, :password, :name,
			:phone_number, :profile_pic, :status, :date_joined
		) RETURNING user_id`

	user.DateJoined = time.Now()
	if user.Status == "" {
		user.Status = "active"
	}

	rows, err := r.db.GetDB().NamedQueryContext(ctx, query, user)
	if err != nil {
		return errors.NewDatabaseError("failed to create user", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&user.ID); err != nil {
			return errors.NewDatabaseError("failed to read new user id", err)
		}
	}
	return nil
}

func (r *UserRepo) Get(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	query := `SELECT * FROM users WHERE user_id = $1`

	err := r.db.GetDB().GetContext(ctx, user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("user not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get user", err)
	}
	return user, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT * FROM users WHERE email = $1`

	err := r.db.GetDB().GetContext(ctx, user, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("user not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get user", err)
	}
	return user, nil
}

func (r *UserRepo) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			role_id = :role_id,
			username = :username,
			email = :email,
			password = :password,
			name = :name,
			phone_number = :phone_number,
			profile_pic = :profile_pic,
			status = :status
		WHERE user_id = :user_id`

	result, err := r.db.GetDB().NamedExecContext(ctx, query, user)
	if err != nil {
		return errors.NewDatabaseError("failed to update user", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("user not found", nil)
	}

	return nil
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, id int64, lastLogin time.Time) error {
	query := `UPDATE users SET last_login = $1 WHERE user_id = $2`

	result, err := r.db.GetDB().ExecContext(ctx, query, lastLogin, id)
	if err != nil {
		return errors.NewDatabaseError("failed to update last login", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("user not found", nil)
	}

	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM users WHERE user_id = $1`

	result, err := r.db.GetDB().ExecContext(ctx, query, id)
	if err != nil {
		return errors.NewDatabaseError("failed to delete user", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("user not found", nil)
	}

	return nil
}

func (r *UserRepo) List(ctx context.Context, filters models.UserFilters, page, limit int) (int64, []*models.User, error) {
	query := `SELECT * FROM users WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM users WHERE 1=1`

	args := []interface{}{}
	if filters.RoleID != 0 {
		args = append(args, filters.RoleID)
		clause := fmt.Sprintf(` AND role_id = $%d`, len(args))
		query += clause
		countQuery += clause
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		clause := fmt.Sprintf(` AND (name ILIKE $%d OR email ILIKE $%d)`, len(args), len(args))
		query += clause
		countQuery += clause
	}

	count := int64(0)
	if err := r.db.GetDB().GetContext(ctx, &count, countQuery, args...); err != nil {
		return 0, nil, errors.NewDatabaseError("failed to count users", err)
	}

	args = append(args, limit, (page-1)*limit)
	query += fmt.Sprintf(` ORDER BY date_joined DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	users := []*models.User{}
	if err := r.db.GetDB().SelectContext(ctx, &users, query, args...); err != nil {
		return 0, nil, errors.NewDatabaseError("failed to list users", err)
	}

	return count, users, nil
}
