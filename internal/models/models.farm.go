// FilePath: internal/models/models.farm.go
package models

import "time"

// Farm represents a single broiler house (kandang) owned by an owner and
// worked by at most one assigned peternak at a time.
type Farm struct {
	ID                int64     `json:"farm_id" db:"farm_id"`
	OwnerID           int64     `json:"owner_id" db:"owner_id"`
	PeternakID        *int64    `json:"peternak_id" db:"peternak_id"`
	Name              string    `json:"farm_name" db:"farm_name"`
	Location          string    `json:"location" db:"location"`
	InitialPopulation int       `json:"initial_population" db:"initial_population" readxs:"*" writexs:"admin"`
	InitialWeight     float64   `json:"initial_weight" db:"initial_weight" readxs:"*" writexs:"admin"`
	FarmArea          float64   `json:"farm_area" db:"farm_area" readxs:"*" writexs:"admin"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// FarmConfig is one sparse parameter/value row of a farm's threshold
// configuration. Values are stored as numeric strings; resolution into
// typed bounds happens in the status package.
type FarmConfig struct {
	ConfigID      int64  `json:"config_id" db:"config_id"`
	FarmID        int64  `json:"farm_id" db:"farm_id"`
	ParameterName string `json:"parameter_name" db:"parameter_name"`
	Value         string `json:"value" db:"value"`
}

// Recognized threshold parameter names. The Indonesian names are the wire
// and storage contract shared with existing consumers.
const (
	ParamTempNormalMin    = "suhu_normal_min"
	ParamTempNormalMax    = "suhu_normal_max"
	ParamTempCriticalLow  = "suhu_kritis_rendah"
	ParamTempCriticalHigh = "suhu_kritis_tinggi"
	ParamHumNormalMin     = "kelembapan_normal_min"
	ParamHumNormalMax     = "kelembapan_normal_max"
	ParamHumCriticalLow   = "kelembapan_kritis_rendah"
	ParamHumCriticalHigh  = "kelembapan_kritis_tinggi"
	ParamAmmoniaMax       = "amonia_max"
	ParamAmmoniaCritical  = "amonia_kritis"
)

// DefaultFarmConfig returns the threshold set applied to every new farm
// and restored on config reset.
func DefaultFarmConfig() map[string]string {
	return map[string]string{
		ParamTempNormalMin:    "28",
		ParamTempNormalMax:    "32",
		ParamTempCriticalLow:  "25",
		ParamTempCriticalHigh: "35",
		ParamHumNormalMin:     "50",
		ParamHumNormalMax:     "70",
		ParamHumCriticalLow:   "40",
		ParamHumCriticalHigh:  "80",
		ParamAmmoniaMax:       "20",
		ParamAmmoniaCritical:  "30",
	}
}
