// FilePath: internal/status/thresholds.go
package status

import (
	"strconv"

	"github.com/mirnanodes/broilink-backend/internal/models"
)

// Bound is an optional numeric threshold. The zero value means "not set":
// an unset bound never triggers a comparison. This replaces the -INF/INF
// sentinels the previous system relied on.
type Bound struct {
	Value float64
	Set   bool
}

// Comparison helpers. Each returns false for an unset bound, so disabled
// thresholds can never trigger.

func below(v float64, b Bound) bool { return b.Set && v < b.Value }

func above(v float64, b Bound) bool { return b.Set && v > b.Value }

func atOrBelow(v float64, b Bound) bool { return b.Set && v <= b.Value }

func atOrAbove(v float64, b Bound) bool { return b.Set && v >= b.Value }

// Thresholds is a fully resolved per-farm threshold set. Temperature and
// humidity each carry a normal range and a critical range; ammonia has
// only upper bounds. Ammonia bounds are active only when configured to a
// value greater than zero, so a stored 0 disables the check instead of
// acting as a literal ceiling.
type Thresholds struct {
	TempNormalMin    Bound
	TempNormalMax    Bound
	TempCriticalLow  Bound
	TempCriticalHigh Bound

	HumNormalMin    Bound
	HumNormalMax    Bound
	HumCriticalLow  Bound
	HumCriticalHigh Bound

	AmmoniaWarnMax     Bound
	AmmoniaCriticalMax Bound

	// empty is true when no recognized parameter was configured at all,
	// which the classifier maps to StatusUnknown.
	empty bool
}

// Empty reports whether the source configuration carried no parameters.
func (t Thresholds) Empty() bool { return t.empty }

// ResolveThresholds turns a sparse parameter/value map into a usable
// threshold set. Missing or unparseable values resolve to inert bounds and
// never to an error; absence of a parameter must not cause a false alarm.
func ResolveThresholds(config map[string]string) Thresholds {
	t := Thresholds{empty: len(config) == 0}

	t.TempNormalMin = bound(config, models.ParamTempNormalMin)
	t.TempNormalMax = bound(config, models.ParamTempNormalMax)
	t.TempCriticalLow = bound(config, models.ParamTempCriticalLow)
	t.TempCriticalHigh = bound(config, models.ParamTempCriticalHigh)

	t.HumNormalMin = bound(config, models.ParamHumNormalMin)
	t.HumNormalMax = bound(config, models.ParamHumNormalMax)
	t.HumCriticalLow = bound(config, models.ParamHumCriticalLow)
	t.HumCriticalHigh = bound(config, models.ParamHumCriticalHigh)

	// Ammonia bounds must be positive to be active. Configs default these
	// to nonzero values, so 0 is the conventional "disabled" marker.
	t.AmmoniaWarnMax = positiveBound(config, models.ParamAmmoniaMax)
	t.AmmoniaCriticalMax = positiveBound(config, models.ParamAmmoniaCritical)

	return t
}

func bound(config map[string]string, param string) Bound {
	raw, ok := config[param]
	if !ok {
		return Bound{}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Bound{}
	}
	return Bound{Value: v, Set: true}
}

func positiveBound(config map[string]string, param string) Bound {
	b := bound(config, param)
	if !b.Set || b.Value <= 0 {
		return Bound{}
	}
	return b
}
