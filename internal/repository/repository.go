// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"time"

	"github.com/mirnanodes/broilink-backend/internal/database"
	"github.com/mirnanodes/broilink-backend/internal/models"
)

var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")
	// ErrDuplicate indicates that a resource already exists
	ErrDuplicate = errors.New("resource already exists")
	// ErrInvalidInput indicates that the input data is invalid
	ErrInvalidInput = errors.New("invalid input")
)

// FarmRepository defines the interface for farm data operations
type FarmRepository interface {
	database.Repository
	Create(ctx context.Context, farm *models.Farm) error
	Get(ctx context.Context, id int64) (*models.Farm, error)
	Update(ctx context.Context, farm *models.Farm) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filters models.FarmFilters, page, limit int) (int64, []*models.Farm, error)
	AssignPeternak(ctx context.Context, farmID int64, peternakID *int64) error
	DeleteWithChildren(ctx context.Context, id int64, tx database.Transaction) error
}

// FarmConfigRepository defines the interface for per-farm threshold rows
type FarmConfigRepository interface {
	database.Repository
	GetAll(ctx context.Context, farmID int64) (map[string]string, error)
	SetValues(ctx context.Context, farmID int64, values map[string]string) error
	Replace(ctx context.Context, farmID int64, values map[string]string) error
	DeleteByFarmID(ctx context.Context, farmID int64, tx database.Transaction) error
}

// SensorDataRepository defines the interface for environment measurements
type SensorDataRepository interface {
	database.Repository
	InsertReading(ctx context.Context, reading *models.SensorReading) error
	InsertReadings(ctx context.Context, readings []models.SensorReading) error
	GetRange(ctx context.Context, farmID int64, start, end time.Time) ([]models.SensorReading, error)
	GetLatest(ctx context.Context, farmID int64) (*models.SensorReading, error)
	DeleteOldData(ctx context.Context, before time.Time) error
	DeleteByFarmID(ctx context.Context, farmID int64, tx database.Transaction) error
}

// ManualReportRepository defines the interface for daily manual reports
type ManualReportRepository interface {
	database.Repository
	Upsert(ctx context.Context, report *models.ManualReport) error
	GetByDate(ctx context.Context, farmID int64, reportDate time.Time) (*models.ManualReport, error)
	GetRange(ctx context.Context, farmID int64, start, end time.Time) ([]models.ManualReport, error)
	GetRangeByUpdatedAt(ctx context.Context, farmID int64, start, end time.Time) ([]models.ManualReport, error)
	DeleteByFarmID(ctx context.Context, farmID int64, tx database.Transaction) error
}

// UserRepository defines the interface for account operations
type UserRepository interface {
	database.Repository
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id int64, lastLogin time.Time) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filters models.UserFilters, page, limit int) (int64, []*models.User, error)
}

// TelegramLinkRepository defines the interface for user/chat bindings
type TelegramLinkRepository interface {
	database.Repository
	Link(ctx context.Context, userID, chatID int64) error
	GetByChatID(ctx context.Context, chatID int64) (*models.TelegramLink, error)
	GetByUserID(ctx context.Context, userID int64) (*models.TelegramLink, error)
	ListAll(ctx context.Context) ([]models.TelegramLink, error)
	Unlink(ctx context.Context, userID int64) error
}

// RequestLogRepository defines the interface for admin request inbox rows
type RequestLogRepository interface {
	database.Repository
	Create(ctx context.Context, req *models.RequestLog) error
	Get(ctx context.Context, id int64) (*models.RequestLog, error)
	List(ctx context.Context, status string, offset, limit int) ([]*models.RequestLog, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

// FileRepository defines the interface for profile photo storage
type FileRepository interface {
	Store(ctx context.Context, ownerID int64, fileData *multipart.FileHeader) (string, error)
	Stream(ctx context.Context, path string, w io.Writer) error
	Delete(ctx context.Context, path string) error
}
