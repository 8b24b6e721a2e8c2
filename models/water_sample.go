package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WaterSample is one submitted data-entry form.
type WaterSample struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;index;not null"              json:"userId"`
	ProjectType     string         `gorm:"column:project_type;size:50"           json:"projectType"`
	WaterType       string         `gorm:"column:water_type;size:50;not null"    json:"waterType"`
	Date            string         `gorm:"column:date;size:20"                   json:"date"`
	Time            string         `gorm:"column:time;size:20"                   json:"time"`
	Latitude        float64        `gorm:"column:latitude;not null"              json:"latitude"`
	Longitude       float64        `gorm:"column:longitude;not null"             json:"longitude"`
	PinID           string         `gorm:"column:pin_id;size:20;not null"        json:"pinId"`
	BluetoothDevice string         `gorm:"column:bluetooth_device;size:100"      json:"bluetoothDevice,omitempty"`
	Photos          pq.StringArray `gorm:"column:photos;type:text[]"             json:"photos"`
	Temperature     *float64       `gorm:"column:temperature"                    json:"temperature"`
	PH              *float64       `gorm:"column:ph"                             json:"pH"`
	DO              *float64       `gorm:"column:do"                             json:"DO"`
	TDS             *float64       `gorm:"column:tds"                            json:"TDS"`
	Chlorophyll     *float64       `gorm:"column:chlorophyll"                    json:"chlorophyll"`
	TA              *float64       `gorm:"column:ta"                             json:"TA"`
	DIC             *float64       `gorm:"column:dic"                            json:"DIC"`
	SensorRaw       datatypes.JSON `gorm:"column:sensor_raw;type:jsonb"          json:"sensorRaw,omitempty"`
	SubmittedAt     JSONTime       `gorm:"column:submitted_at;not null"          json:"submittedAt"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index"          json:"-"`
}

// SetReading stores a sensor value by its form name.
func (w *WaterSample) SetReading(name string, v float64) bool {
	switch name {
	case "temperature":
		w.Temperature = &v
	case "pH":
		w.PH = &v
	case "DO":
		w.DO = &v
	case "TDS":
		w.TDS = &v
	case "chlorophyll":
		w.Chlorophyll = &v
	case "TA":
		w.TA = &v
	case "DIC":
		w.DIC = &v
	default:
		return false
	}
	return true
}

// Reading returns a sensor value by its form name.
func (w *WaterSample) Reading(name string) *float64 {
	switch name {
	case "temperature":
		return w.Temperature
	case "pH":
		return w.PH
	case "DO":
		return w.DO
	case "TDS":
		return w.TDS
	case "chlorophyll":
		return w.Chlorophyll
	case "TA":
		return w.TA
	case "DIC":
		return w.DIC
	}
	return nil
}
