package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/xuri/excelize/v2"
	"p9e.in/aquaentry/middleware"
	"p9e.in/aquaentry/models"
)

const maxPageLimit = 100

func requestUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return uuid.Nil, false
	}
	return id, true
}

// ListSamples pages through the caller's submissions, newest first.
func (h *Handlers) ListSamples(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}

	page := 1
	limit := 10
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	offset := (page - 1) * limit

	samples, total, err := h.Samples.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if samples == nil {
		samples = []models.WaterSample{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total": total,
		"page":  page,
		"limit": limit,
		"data":  samples,
	})
}

var exportHeaders = []string{
	"Submitted At", "Project", "Water Type", "Date", "Time",
	"Latitude", "Longitude", "Pin ID", "Device",
}

// ExportSamplesXLSX streams the caller's submissions as a spreadsheet.
func (h *Handlers) ExportSamplesXLSX(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	samples, err := h.Samples.AllByUser(r.Context(), userID)
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	f, err := samplesWorkbook(samples)
	if err != nil {
		log.Printf("[EXPORT] workbook: %v", err)
		http.Error(w, "Failed to generate Excel file", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	buffer, err := f.WriteToBuffer()
	if err != nil {
		http.Error(w, "Failed to write Excel file", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("samples_%s.xlsx", h.now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buffer.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buffer.Bytes())
}

func samplesWorkbook(samples []models.WaterSample) (*excelize.File, error) {
	const sheet = "Samples"
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})

	headers := append([]string{}, exportHeaders...)
	for _, sf := range models.SensorFields {
		headers = append(headers, sf.Name)
	}
	for col, label := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, label)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for i, s := range samples {
		row := []interface{}{
			s.SubmittedAt.Time().Format("2006-01-02 15:04"),
			s.ProjectType, s.WaterType, s.Date, s.Time,
			s.Latitude, s.Longitude, s.PinID, s.BluetoothDevice,
		}
		for _, sf := range models.SensorFields {
			if v := s.Reading(sf.Name); v != nil {
				row = append(row, *v)
			} else {
				row = append(row, "")
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// SamplesGeoJSON returns the caller's submissions as a FeatureCollection of
// points for map layers.
func (h *Handlers) SamplesGeoJSON(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	samples, err := h.Samples.AllByUser(r.Context(), userID)
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeEncoded(w, http.StatusOK, "application/geo+json", samplesCollection(samples))
}

func samplesCollection(samples []models.WaterSample) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, s := range samples {
		feature := geojson.NewFeature(orb.Point{s.Longitude, s.Latitude})
		feature.ID = s.ID.String()
		feature.Properties["pin_id"] = s.PinID
		feature.Properties["water_type"] = s.WaterType
		feature.Properties["project_type"] = s.ProjectType
		feature.Properties["submitted_at"] = s.SubmittedAt
		for _, sf := range models.SensorFields {
			if v := s.Reading(sf.Name); v != nil {
				feature.Properties[sf.Name] = *v
			}
		}
		if len(s.Photos) > 0 {
			feature.Properties["photos"] = []string(s.Photos)
		}
		fc.Append(feature)
	}
	return fc
}
