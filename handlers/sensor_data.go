package handlers

import (
	"log"
	"net/http"

	"p9e.in/aquaentry/metrics"
	"p9e.in/aquaentry/models"
)

// SensorData returns one set of readings. In stub mode every value is zero.
//
//	@Summary	Current sensor readings
//	@Tags		sensor
//	@Produce	json
//	@Success	200	{object}	models.SensorReadings
//	@Router		/api/sensor_data [get]
func (h *Handlers) SensorData(w http.ResponseWriter, r *http.Request) {
	mode := h.SensorMode
	if mode != SensorModeSimulated || h.Sensor == nil {
		mode = SensorModeStub
	}
	metrics.ObserveSensorRead(mode)

	if mode == SensorModeStub {
		writeJSON(w, http.StatusOK, models.SensorReadings{})
		return
	}

	readings, err := h.Sensor.Read(r.Context())
	if err != nil {
		log.Printf("[SENSOR] read failed: %v", err)
		submitFailure(w, http.StatusBadGateway, "sensor unavailable")
		return
	}
	writeJSON(w, http.StatusOK, readings)
}
