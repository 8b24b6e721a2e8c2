package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"p9e.in/aquaentry/models"
)

func TestSimulatedSensorIndependentDraws(t *testing.T) {
	s := NewSimulatedSensor(rand.New(rand.NewPCG(1, 2)))
	first, _ := s.Read(context.Background())
	second, _ := s.Read(context.Background())
	if first == second {
		t.Errorf("two reads returned identical values: %+v", first)
	}

	for i := 0; i < 500; i++ {
		r, err := s.Read(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		for _, f := range models.SensorFields {
			v, _ := r.Get(f.Name)
			if v < f.Min || v > f.Max {
				t.Fatalf("%s = %v outside [%v, %v]", f.Name, v, f.Min, f.Max)
			}
			if models.Round(v, f.Decimals) != v {
				t.Fatalf("%s = %v not rounded to %d decimals", f.Name, v, f.Decimals)
			}
		}
	}
}

func TestAPISensor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sensor_data" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			http.Error(w, "no", http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"temperature":24.5,"pH":7.2,"DO":6.6,"TDS":310.1,"chlorophyll":2,"TA":101.5,"DIC":2.1}`))
	}))
	defer srv.Close()

	s := &APISensor{BaseURL: srv.URL + "/", Token: "tok"}
	r, err := s.Read(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if r.PH != 7.2 || r.TDS != 310.1 || r.DIC != 2.1 {
		t.Errorf("readings = %+v", r)
	}

	s.Token = ""
	if _, err := s.Read(context.Background()); err == nil {
		t.Error("expected error for unauthorized response")
	}
}

func TestHTTPSubmitter(t *testing.T) {
	var gotFields map[string]string
	var gotImage []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/submit" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotFields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			gotFields[k] = v[0]
		}
		if f, _, err := r.FormFile("image"); err == nil {
			gotImage, _ = io.ReadAll(f)
			f.Close()
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "id": "abc"})
	}))
	defer srv.Close()

	sub := &HTTPSubmitter{BaseURL: srv.URL}
	res, err := sub.Submit(context.Background(), Submission{
		Fields: map[string]string{"pin_id": "PIN-42", "water_type": "river"},
		Image:  &Attachment{Filename: "a.png", ContentType: "image/png", Data: []byte("png-bytes")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success || res.ID != "abc" {
		t.Errorf("result = %+v", res)
	}
	if gotFields["pin_id"] != "PIN-42" || gotFields["water_type"] != "river" {
		t.Errorf("fields = %v", gotFields)
	}
	if string(gotImage) != "png-bytes" {
		t.Errorf("image = %q", gotImage)
	}
}

func TestHTTPSubmitterResponses(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantErr     error
		wantSuccess bool
		wantReason  string
	}{
		{"success", 200, `{"success":true}`, nil, true, ""},
		{"rejected", 200, `{"success":false,"error":"bad pin"}`, nil, false, "bad pin"},
		{"unauthorized", 401, `{"success":false}`, nil, false, "401 Unauthorized"},
		{"html error page", 502, `<html>bad gateway</html>`, ErrMalformedResponse, false, ""},
		{"empty body", 200, ``, ErrMalformedResponse, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			res, err := (&HTTPSubmitter{BaseURL: srv.URL}).Submit(context.Background(), Submission{Fields: map[string]string{}})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if res.Success != tt.wantSuccess || res.Error != tt.wantReason {
				t.Errorf("result = %+v", res)
			}
		})
	}
}

func TestDataURLDecoder(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	url, err := DataURLDecoder{}.Decode(context.Background(), Attachment{Filename: "x.png", Data: buf.Bytes()})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Errorf("url = %.40s", url)
	}

	if _, err := (DataURLDecoder{}).Decode(context.Background(), Attachment{Filename: "x.png", Data: []byte("not an image")}); err == nil {
		t.Error("expected error for garbage")
	}
	if _, err := (DataURLDecoder{}).Decode(context.Background(), Attachment{}); err == nil {
		t.Error("expected error for empty attachment")
	}
}

func TestGeoJSONMap(t *testing.T) {
	m := &GeoJSONMap{}
	if m.Instances() != 0 {
		t.Fatal("map created before first show")
	}
	m.Show(orb.Point{77.5946, 12.9716}, 15)
	m.Show(orb.Point{78, 13}, 15)
	if m.Instances() != 1 {
		t.Errorf("instances = %d", m.Instances())
	}

	raw, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	var fc struct {
		Type     string `json:"type"`
		Zoom     int    `json:"zoom"`
		Features []struct {
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}
	if err := json.Unmarshal(raw, &fc); err != nil {
		t.Fatal(err)
	}
	if fc.Type != "FeatureCollection" || fc.Zoom != 15 || len(fc.Features) != 1 {
		t.Fatalf("collection = %s", raw)
	}
	if c := fc.Features[0].Geometry.Coordinates; c[0] != 78 || c[1] != 13 {
		t.Errorf("marker at %v", c)
	}
}

func TestParseGating(t *testing.T) {
	for in, want := range map[string]Gating{"": GatingSequential, "Sequential": GatingSequential, "unlocked": GatingUnlocked} {
		got, err := ParseGating(in)
		if err != nil || got != want {
			t.Errorf("ParseGating(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseGating("staged"); err == nil {
		t.Error("expected error")
	}
}
