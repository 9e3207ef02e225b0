// FilePath: internal/status/thresholds_test.go
package status

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mirnanodes/broilink-backend/internal/models"
)

func TestResolveThresholdsFullConfig(t *testing.T) {
	cfg := ResolveThresholds(models.DefaultFarmConfig())

	assert.False(t, cfg.Empty())
	assert.Equal(t, Bound{Value: 28, Set: true}, cfg.TempNormalMin)
	assert.Equal(t, Bound{Value: 35, Set: true}, cfg.TempCriticalHigh)
	assert.Equal(t, Bound{Value: 40, Set: true}, cfg.HumCriticalLow)
	assert.Equal(t, Bound{Value: 20, Set: true}, cfg.AmmoniaWarnMax)
	assert.Equal(t, Bound{Value: 30, Set: true}, cfg.AmmoniaCriticalMax)
}

func TestResolveThresholdsSparseConfig(t *testing.T) {
	cfg := ResolveThresholds(map[string]string{
		models.ParamTempNormalMax: "32",
	})

	assert.False(t, cfg.Empty())
	assert.True(t, cfg.TempNormalMax.Set)
	assert.False(t, cfg.TempNormalMin.Set)
	assert.False(t, cfg.TempCriticalLow.Set)
	assert.False(t, cfg.HumNormalMax.Set)
	assert.False(t, cfg.AmmoniaWarnMax.Set)
}

func TestResolveThresholdsEmpty(t *testing.T) {
	assert.True(t, ResolveThresholds(nil).Empty())
	assert.True(t, ResolveThresholds(map[string]string{}).Empty())
}

func TestResolveThresholdsAmmoniaActivation(t *testing.T) {
	// Ammonia bounds activate only for positive values.
	for _, raw := range []string{"0", "-5"} {
		cfg := ResolveThresholds(map[string]string{
			models.ParamAmmoniaMax:      raw,
			models.ParamAmmoniaCritical: raw,
		})
		assert.False(t, cfg.AmmoniaWarnMax.Set, "amonia_max=%s must stay disabled", raw)
		assert.False(t, cfg.AmmoniaCriticalMax.Set, "amonia_kritis=%s must stay disabled", raw)
	}

	cfg := ResolveThresholds(map[string]string{models.ParamAmmoniaCritical: "0.5"})
	assert.Equal(t, Bound{Value: 0.5, Set: true}, cfg.AmmoniaCriticalMax)
}

func TestResolveThresholdsIgnoresGarbageValues(t *testing.T) {
	cfg := ResolveThresholds(map[string]string{
		models.ParamTempNormalMax: "not-a-number",
		models.ParamHumNormalMin:  "55",
	})

	assert.False(t, cfg.TempNormalMax.Set)
	assert.Equal(t, Bound{Value: 55, Set: true}, cfg.HumNormalMin)
}

func TestResolveThresholdsNegativeTempBoundStaysActive(t *testing.T) {
	// Only the ammonia dimension has the positive-to-activate rule.
	cfg := ResolveThresholds(map[string]string{
		models.ParamTempCriticalLow: "-2",
	})
	assert.Equal(t, Bound{Value: -2, Set: true}, cfg.TempCriticalLow)
}
