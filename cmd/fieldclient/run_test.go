package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeBackend struct {
	mu         sync.Mutex
	forms      []map[string][]string
	images     []string
	reject     string
	sensorHits int
}

func (b *fakeBackend) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["username"] != "asha" || req["password"] != "secret1" {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"token": "tok"})
	})
	mux.HandleFunc("/api/sensor_data", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.sensorHits++
		b.mu.Unlock()
		w.Write([]byte(`{"temperature":24.5,"pH":7.25,"DO":6.8,"TDS":320.4,"chlorophyll":1.75,"TA":110.2,"DIC":2.15}`))
	})
	mux.HandleFunc("/submit", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"success":false,"error":"Not authenticated"}`))
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.reject != "" {
			w.Write([]byte(`{"success":false,"error":"` + b.reject + `"}`))
			return
		}
		b.forms = append(b.forms, r.MultipartForm.Value)
		if files := r.MultipartForm.File["image"]; len(files) > 0 {
			b.images = append(b.images, files[0].Filename)
		}
		w.Write([]byte(`{"success":true,"id":"sample-1"}`))
	})
	return mux
}

func testProfile(server string) *Profile {
	return &Profile{
		Server:      server,
		Username:    "asha",
		Password:    "secret1",
		ProjectType: "Water Quality",
		WaterType:   "lake",
		PinID:       "P-7",
		Sensor:      "api",
		Position:    &PositionSpec{Latitude: 12.9715987, Longitude: 77.5945627},
		Device:      &DeviceSpec{Name: "Sonde-1"},
	}
}

func TestRunWorkflowSubmits(t *testing.T) {
	backend := &fakeBackend{}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	img := filepath.Join(t.TempDir(), "site.png")
	if err := os.WriteFile(img, []byte("\x89PNG\r\n\x1a\nnot-really"), 0o600); err != nil {
		t.Fatal(err)
	}
	p := testProfile(srv.URL)
	p.Image = img

	var slept time.Duration
	id, err := runWorkflow(t.Context(), p, zap.NewNop(), func(d time.Duration) { slept += d })
	if err != nil {
		t.Fatal(err)
	}
	if id != "sample-1" {
		t.Errorf("id = %q", id)
	}
	if slept != 2*time.Second {
		t.Errorf("dwell = %v, want 2s", slept)
	}
	if backend.sensorHits != 1 || len(backend.forms) != 1 {
		t.Fatalf("sensor hits %d, forms %d", backend.sensorHits, len(backend.forms))
	}
	form := backend.forms[0]
	want := map[string]string{
		"latitude":         "12.971599",
		"longitude":        "77.594563",
		"water_type":       "lake",
		"pin_id":           "P-7",
		"bluetooth_device": "Sonde-1",
		"TDS":              "320.4",
		"project_type":     "Water Quality",
	}
	for k, v := range want {
		if got := form[k]; len(got) != 1 || got[0] != v {
			t.Errorf("%s = %v, want %q", k, got, v)
		}
	}
	if len(backend.images) != 1 || backend.images[0] != "site.png" {
		t.Errorf("images = %v", backend.images)
	}
}

func TestRunWorkflowFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Profile, *fakeBackend)
		want   string
	}{
		{"bad password", func(p *Profile, b *fakeBackend) { p.Password = "nope" }, "login"},
		{"no location capability", func(p *Profile, b *fakeBackend) { p.Position = nil }, "detect location"},
		{"pairing cancelled", func(p *Profile, b *fakeBackend) { p.Device.Error = "not_found" }, "scan bluetooth"},
		{"server rejects", func(p *Profile, b *fakeBackend) { b.reject = "db error" }, "db error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{}
			srv := httptest.NewServer(backend.handler(t))
			defer srv.Close()

			p := testProfile(srv.URL)
			tt.mutate(p, backend)
			_, err := runWorkflow(t.Context(), p, zap.NewNop(), func(time.Duration) {})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestRunWorkflowUnlockedSkipsFailedPairing(t *testing.T) {
	backend := &fakeBackend{}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	p := testProfile(srv.URL)
	p.Gating = "unlocked"
	p.Sensor = "simulated"
	p.Device.Error = "not_supported"

	if _, err := runWorkflow(t.Context(), p, zap.NewNop(), func(time.Duration) {}); err != nil {
		t.Fatal(err)
	}
	if backend.sensorHits != 0 {
		t.Errorf("simulated run hit the sensor endpoint %d times", backend.sensorHits)
	}
	if got := backend.forms[0]["bluetooth_device"]; len(got) != 1 || got[0] != "" {
		t.Errorf("bluetooth_device = %v, want empty", got)
	}
}
