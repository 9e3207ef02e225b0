// FilePath: internal/farmservice/farmservice.go
package farmservice

import (
	"github.com/mirnanodes/broilink-backend/internal/cleanup"
	"github.com/mirnanodes/broilink-backend/internal/errors"
	"github.com/mirnanodes/broilink-backend/internal/repository"
)

// FarmService contains all repositories and service-wide dependencies
type FarmService struct {
	Farms         repository.FarmRepository
	Configs       repository.FarmConfigRepository
	SensorData    repository.SensorDataRepository
	Reports       repository.ManualReportRepository
	Users         repository.UserRepository
	TelegramLinks repository.TelegramLinkRepository
	Requests      repository.RequestLogRepository
	Files         repository.FileRepository
	Cleanup       *cleanup.CleanupService
}

// New creates a new FarmService instance
func New(
	farms repository.FarmRepository,
	configs repository.FarmConfigRepository,
	sensorData repository.SensorDataRepository,
	reports repository.ManualReportRepository,
	users repository.UserRepository,
	telegramLinks repository.TelegramLinkRepository,
	requests repository.RequestLogRepository,
	files repository.FileRepository,
) *FarmService {
	svc := &FarmService{
		Farms:         farms,
		Configs:       configs,
		SensorData:    sensorData,
		Reports:       reports,
		Users:         users,
		TelegramLinks: telegramLinks,
		Requests:      requests,
		Files:         files,
	}
	svc.Cleanup = cleanup.New(farms, configs, reports, sensorData)
	return svc
}

// Validate checks if all required repositories are initialized
func (s *FarmService) Validate() error {
	if s.Farms == nil {
		return ErrMissingRepository("farms")
	}
	if s.Configs == nil {
		return ErrMissingRepository("configs")
	}
	if s.SensorData == nil {
		return ErrMissingRepository("sensorData")
	}
	if s.Reports == nil {
		return ErrMissingRepository("reports")
	}
	if s.Users == nil {
		return ErrMissingRepository("users")
	}
	return nil
}

func ErrMissingRepository(name string) error {
	return errors.NewInternalError("missing repository: "+name, nil)
}
