// FilePath: internal/farmservice/farmservice.config.go
package farmservice

import (
	"context"
	"strconv"

	nuts "github.com/vaudience/go-nuts"

	"github.com/mirnanodes/broilink-backend/internal/errors"
	"github.com/mirnanodes/broilink-backend/internal/models"
	"github.com/mirnanodes/broilink-backend/internal/status"
)

var knownParams = map[string]bool{
	models.ParamTempNormalMin:    true,
	models.ParamTempNormalMax:    true,
	models.ParamTempCriticalLow:  true,
	models.ParamTempCriticalHigh: true,
	models.ParamHumNormalMin:     true,
	models.ParamHumNormalMax:     true,
	models.ParamHumCriticalLow:   true,
	models.ParamHumCriticalHigh:  true,
	models.ParamAmmoniaMax:       true,
	models.ParamAmmoniaCritical:  true,
}

// GetFarmConfig returns the farm's threshold parameters. Missing rows
// fall back to the defaults so the response is always complete.
func (s *FarmService) GetFarmConfig(ctx context.Context, farmID int64) (map[string]string, error) {
	if _, err := s.Farms.Get(ctx, farmID); err != nil {
		return nil, err
	}

	stored, err := s.Configs.GetAll(ctx, farmID)
	if err != nil {
		return nil, err
	}

	config := models.DefaultFarmConfig()
	for name, value := range stored {
		config[name] = value
	}
	return config, nil
}

// UpdateFarmConfig upserts the given threshold parameters. Unknown
// parameter names and non-numeric values are rejected before anything
// is written.
func (s *FarmService) UpdateFarmConfig(ctx context.Context, farmID int64, values map[string]string) error {
	if _, err := s.Farms.Get(ctx, farmID); err != nil {
		return err
	}
	if len(values) == 0 {
		return errors.NewValidationError("no config values provided", nil)
	}

	for name, value := range values {
		if !knownParams[name] {
			return errors.NewValidationError("unknown config parameter: "+name, nil)
		}
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return errors.NewValidationError("config parameter "+name+" must be numeric", err)
		}
	}

	if err := s.Configs.SetValues(ctx, farmID, values); err != nil {
		return err
	}

	nuts.L.Infof("[FarmService] Updated config for farm %d (%d parameters)", farmID, len(values))
	return nil
}

// ResetFarmConfig restores the farm's thresholds to the defaults.
func (s *FarmService) ResetFarmConfig(ctx context.Context, farmID int64) (map[string]string, error) {
	if _, err := s.Farms.Get(ctx, farmID); err != nil {
		return nil, err
	}

	defaults := models.DefaultFarmConfig()
	if err := s.Configs.Replace(ctx, farmID, defaults); err != nil {
		return nil, err
	}

	nuts.L.Infof("[FarmService] Reset config for farm %d to defaults", farmID)
	return defaults, nil
}

// FarmThresholds resolves the farm's stored config into typed bounds.
// Classification reads the raw rows without the defaults overlay, so a
// farm whose config rows are gone classifies as unknown rather than
// silently against the defaults.
func (s *FarmService) FarmThresholds(ctx context.Context, farmID int64) (status.Thresholds, error) {
	if _, err := s.Farms.Get(ctx, farmID); err != nil {
		return status.Thresholds{}, err
	}
	stored, err := s.Configs.GetAll(ctx, farmID)
	if err != nil {
		return status.Thresholds{}, err
	}
	return status.ResolveThresholds(stored), nil
}
