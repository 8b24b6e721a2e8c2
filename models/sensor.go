package models

import (
	"fmt"
	"math"
	"strconv"
)

// SensorReadings is one set of water-quality values as carried by the
// /api/sensor_data payload and the submission form.
type SensorReadings struct {
	Temperature float64 `json:"temperature"`
	PH          float64 `json:"pH"`
	DO          float64 `json:"DO"`
	TDS         float64 `json:"TDS"`
	Chlorophyll float64 `json:"chlorophyll"`
	TA          float64 `json:"TA"`
	DIC         float64 `json:"DIC"`
}

// SensorField describes one reading: its form name, the simulated range and
// how many decimals the value is rounded to.
type SensorField struct {
	Name     string
	Min      float64
	Max      float64
	Decimals int
}

// SensorFields lists the readings in form order.
var SensorFields = []SensorField{
	{Name: "temperature", Min: 22, Max: 27, Decimals: 2},
	{Name: "pH", Min: 7, Max: 8, Decimals: 2},
	{Name: "DO", Min: 6, Max: 8, Decimals: 2},
	{Name: "TDS", Min: 300, Max: 350, Decimals: 1},
	{Name: "chlorophyll", Min: 1, Max: 3, Decimals: 2},
	{Name: "TA", Min: 100, Max: 120, Decimals: 1},
	{Name: "DIC", Min: 2, Max: 2.5, Decimals: 2},
}

// Get returns the value for a form field name.
func (s SensorReadings) Get(name string) (float64, bool) {
	switch name {
	case "temperature":
		return s.Temperature, true
	case "pH":
		return s.PH, true
	case "DO":
		return s.DO, true
	case "TDS":
		return s.TDS, true
	case "chlorophyll":
		return s.Chlorophyll, true
	case "TA":
		return s.TA, true
	case "DIC":
		return s.DIC, true
	}
	return 0, false
}

// Set stores the value for a form field name.
func (s *SensorReadings) Set(name string, v float64) error {
	switch name {
	case "temperature":
		s.Temperature = v
	case "pH":
		s.PH = v
	case "DO":
		s.DO = v
	case "TDS":
		s.TDS = v
	case "chlorophyll":
		s.Chlorophyll = v
	case "TA":
		s.TA = v
	case "DIC":
		s.DIC = v
	default:
		return fmt.Errorf("unknown sensor field %q", name)
	}
	return nil
}

// FormValues renders each reading with its field precision, keyed by form name.
func (s SensorReadings) FormValues() map[string]string {
	out := make(map[string]string, len(SensorFields))
	for _, f := range SensorFields {
		v, _ := s.Get(f.Name)
		out[f.Name] = strconv.FormatFloat(v, 'f', f.Decimals, 64)
	}
	return out
}

// Round rounds v half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
