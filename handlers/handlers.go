package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"p9e.in/aquaentry/pkg/workflow"
)

const (
	SensorModeStub      = "stub"
	SensorModeSimulated = "simulated"
)

// Handlers carries the dependencies of the HTTP endpoints.
type Handlers struct {
	Users      UserRepository
	Samples    SampleRepository
	Images     ImageStore
	Sensor     workflow.SensorSource
	SensorMode string
	Now        func() time.Time
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// writeJSON marshals v before writing the header so an unencodable value
// becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	writeEncoded(w, status, "application/json", v)
}

func writeEncoded(w http.ResponseWriter, status int, contentType string, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Printf("[HTTP] encode %T: %v", v, err)
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		log.Printf("[HTTP] write response: %v", err)
	}
}

func submitFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{"success": false, "error": msg})
}
