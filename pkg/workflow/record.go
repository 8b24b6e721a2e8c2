package workflow

import (
	"strconv"
	"time"

	"github.com/paulmach/orb"
	"p9e.in/aquaentry/models"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Field is a form control whose availability depends on workflow progress.
type Field int

const (
	FieldLatitude Field = iota
	FieldLongitude
	FieldWaterType
	FieldPinID
	FieldScan
	FieldReadSensor
	FieldSensorValues
	FieldImage
	FieldSubmit
)

var allFields = []Field{
	FieldLatitude, FieldLongitude, FieldWaterType, FieldPinID, FieldScan,
	FieldReadSensor, FieldSensorValues, FieldImage, FieldSubmit,
}

func (f Field) String() string {
	switch f {
	case FieldLatitude:
		return "latitude"
	case FieldLongitude:
		return "longitude"
	case FieldWaterType:
		return "water_type"
	case FieldPinID:
		return "pin_id"
	case FieldScan:
		return "scan"
	case FieldReadSensor:
		return "read_sensor"
	case FieldSensorValues:
		return "sensor_values"
	case FieldImage:
		return "image"
	case FieldSubmit:
		return "submit"
	}
	return "unknown"
}

// Attachment is an image picked for upload.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// FormRecord is the in-progress submission.
type FormRecord struct {
	ProjectType     string
	Date            string
	Time            string
	Location        *orb.Point
	WaterType       string
	PinID           string
	BluetoothDevice string
	Readings        *models.SensorReadings
	Image           *Attachment
}

// Latitude returns the latitude with six decimals, or "" before detection.
func (r FormRecord) Latitude() string {
	if r.Location == nil {
		return ""
	}
	return strconv.FormatFloat(r.Location.Lat(), 'f', 6, 64)
}

// Longitude returns the longitude with six decimals, or "" before detection.
func (r FormRecord) Longitude() string {
	if r.Location == nil {
		return ""
	}
	return strconv.FormatFloat(r.Location.Lon(), 'f', 6, 64)
}

// Values flattens the record into submission form fields.
func (r FormRecord) Values() map[string]string {
	out := map[string]string{
		"project_type":     r.ProjectType,
		"date":             r.Date,
		"time":             r.Time,
		"latitude":         r.Latitude(),
		"longitude":        r.Longitude(),
		"water_type":       r.WaterType,
		"pin_id":           r.PinID,
		"bluetooth_device": r.BluetoothDevice,
	}
	if r.Readings != nil {
		for k, v := range r.Readings.FormValues() {
			out[k] = v
		}
	} else {
		for _, f := range models.SensorFields {
			out[f.Name] = ""
		}
	}
	return out
}

func (r *FormRecord) stamp(now time.Time) {
	r.Date = now.Format(DateLayout)
	r.Time = now.Format(TimeLayout)
}

func (r FormRecord) clone() FormRecord {
	out := r
	if r.Location != nil {
		p := *r.Location
		out.Location = &p
	}
	if r.Readings != nil {
		rd := *r.Readings
		out.Readings = &rd
	}
	if r.Image != nil {
		img := *r.Image
		img.Data = append([]byte(nil), r.Image.Data...)
		out.Image = &img
	}
	return out
}
