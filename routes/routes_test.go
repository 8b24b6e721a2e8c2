package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"p9e.in/aquaentry/handlers"
	"p9e.in/aquaentry/middleware"
)

func TestRoutesAuthentication(t *testing.T) {
	middleware.SetSecret("routes-secret")
	r := RegisterRoutes(&handlers.Handlers{SensorMode: handlers.SensorModeStub}, t.TempDir())

	tests := []struct {
		name     string
		method   string
		path     string
		want     int
		jsonBody bool
	}{
		{"submit without token", http.MethodPost, "/submit", http.StatusUnauthorized, true},
		{"sensor without token", http.MethodGet, "/api/sensor_data", http.StatusUnauthorized, true},
		{"samples without token", http.MethodGet, "/api/v1/samples", http.StatusUnauthorized, false},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK, false},
		{"swagger", http.MethodGet, "/swagger/doc.json", http.StatusOK, true},
		{"submit wrong method", http.MethodGet, "/submit", http.StatusMethodNotAllowed, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.jsonBody && !json.Valid(rec.Body.Bytes()) {
				t.Errorf("body is not JSON: %s", rec.Body)
			}
		})
	}
}

func TestSensorDataWithToken(t *testing.T) {
	middleware.SetSecret("routes-secret")
	r := RegisterRoutes(&handlers.Handlers{SensorMode: handlers.SensorModeStub}, t.TempDir())
	token, err := middleware.GenerateToken("9b2e6a4c-0d59-4c1e-9b55-3c4bd7a0f001", "asha")
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/sensor_data", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"pH":0`) {
		t.Errorf("got %d %s", rec.Code, rec.Body)
	}
}
