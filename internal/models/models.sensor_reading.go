// FilePath: internal/models/models.sensor_reading.go
package models

import "time"

// Data source tags for sensor readings.
const (
	SourceIoT    = "iot"
	SourceManual = "manual"
	SourceCSV    = "csv"
)

// SensorReading is a single environment measurement for a farm. Readings
// are immutable once stored; "latest" is defined by timestamp order.
type SensorReading struct {
	ID          string    `json:"id" db:"id"`
	FarmID      int64     `json:"farm_id" db:"farm_id"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
	Temperature float64   `json:"temperature" db:"temperature"`
	Humidity    float64   `json:"humidity" db:"humidity"`
	Ammonia     float64   `json:"ammonia" db:"ammonia"`
	DataSource  string    `json:"data_source" db:"data_source"`
}
