package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"p9e.in/aquaentry/metrics"
	"p9e.in/aquaentry/middleware"
	"p9e.in/aquaentry/models"
	"p9e.in/aquaentry/utils"
)

const maxSubmitMemory = 10 << 20

// Submit stores one data-entry form.
//
//	@Summary	Submit a water-quality sample
//	@Tags		samples
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		water_type	formData	string	true	"Water body type"
//	@Param		pin_id		formData	string	true	"Sampling pin"
//	@Param		latitude	formData	number	true	"Latitude"
//	@Param		longitude	formData	number	true	"Longitude"
//	@Param		image		formData	file	false	"Site photo"
//	@Success	200	{object}	map[string]interface{}
//	@Failure	400	{object}	map[string]interface{}
//	@Router		/submit [post]
func (h *Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		submitFailure(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	if err := r.ParseMultipartForm(maxSubmitMemory); err != nil {
		metrics.ObserveSubmission("rejected")
		submitFailure(w, http.StatusBadRequest, "bad multipart form: "+err.Error())
		return
	}

	sample, err := h.sampleFromForm(r)
	if err != nil {
		metrics.ObserveSubmission("rejected")
		submitFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	sample.UserID = userID

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		metrics.ObserveSubmission("rejected")
		submitFailure(w, http.StatusBadRequest, "invalid image: "+err.Error())
		return
	default:
		defer file.Close()
		name := SecureFilename(header.Filename)
		if name == "" || !AllowedImage(name) {
			metrics.ObserveSubmission("rejected")
			submitFailure(w, http.StatusBadRequest, "image must be png, jpg, jpeg or gif")
			return
		}
		url, err := h.Images.Save(r.Context(), uuid.NewString()+"-"+name, header.Header.Get("Content-Type"), file)
		if err != nil {
			log.Printf("[SUBMIT] image upload failed user=%s: %v", userID, err)
			metrics.ObserveSubmission("failed")
			submitFailure(w, http.StatusInternalServerError, "failed to store image")
			return
		}
		sample.Photos = append(sample.Photos, url)
	}

	if err := h.Samples.Create(r.Context(), sample); err != nil {
		log.Printf("[SUBMIT] db error user=%s pin=%s: %v", userID, sample.PinID, err)
		metrics.ObserveSubmission("failed")
		submitFailure(w, http.StatusInternalServerError, "db error")
		return
	}

	log.Printf("[SUBMIT] stored sample id=%s user=%s pin=%s water=%s", sample.ID, userID, sample.PinID, sample.WaterType)
	metrics.ObserveSubmission("accepted")
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "id": sample.ID})
}

func (h *Handlers) sampleFromForm(r *http.Request) (*models.WaterSample, error) {
	get := func(k string) string { return strings.TrimSpace(r.FormValue(k)) }

	s := &models.WaterSample{
		ID:              uuid.New(),
		ProjectType:     get("project_type"),
		WaterType:       get("water_type"),
		Date:            get("date"),
		Time:            get("time"),
		PinID:           get("pin_id"),
		BluetoothDevice: get("bluetooth_device"),
	}
	if s.WaterType == "" {
		return nil, errors.New("water_type is required")
	}
	if s.PinID == "" {
		return nil, errors.New("pin_id is required")
	}
	if len(s.PinID) > 20 {
		return nil, errors.New("pin_id must be at most 20 characters")
	}

	pt, err := utils.ParseCoordinate(get("latitude"), get("longitude"))
	if err != nil {
		return nil, err
	}
	s.Latitude, s.Longitude = pt.Lat(), pt.Lon()

	raw := map[string]string{}
	for _, f := range models.SensorFields {
		v := get(f.Name)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("%s must be numeric", f.Name)
		}
		s.SetReading(f.Name, n)
		raw[f.Name] = v
	}
	if len(raw) > 0 {
		b, _ := json.Marshal(raw)
		s.SensorRaw = datatypes.JSON(b)
	}

	submitted, err := models.ParseJSONTime(s.Date+" "+s.Time, time.Local)
	if err != nil {
		submitted = models.JSONTime(h.now())
	}
	s.SubmittedAt = submitted
	return s, nil
}
