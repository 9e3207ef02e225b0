// FilePath: internal/models/models.manual_report.go
package models

import "time"

// ManualReport is the daily report a peternak submits for their farm:
// feed and water consumption, average bird weight and mortality. Unique
// per (farm_id, report_date); a resubmission for the same date overwrites
// the previous values and bumps UpdatedAt.
type ManualReport struct {
	ID             int64     `json:"id" db:"id"`
	FarmID         int64     `json:"farm_id" db:"farm_id"`
	ReportedBy     int64     `json:"user_id_input" db:"user_id_input"`
	ReportDate     time.Time `json:"report_date" db:"report_date"`
	FeedKg         float64   `json:"konsumsi_pakan" db:"konsumsi_pakan"`
	WaterL         float64   `json:"konsumsi_air" db:"konsumsi_air"`
	AvgWeight      float64   `json:"rata_rata_bobot" db:"rata_rata_bobot"`
	MortalityCount int       `json:"jumlah_kematian" db:"jumlah_kematian"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
