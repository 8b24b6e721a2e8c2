package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DSN", "JWT_SECRET", "UPLOAD_DIR", "USE_GCS", "GCS_BUCKET", "SENSOR_MODE", "K_SERVICE"} {
		t.Setenv(k, "")
	}

	s := Load()
	if s.Port != "8080" {
		t.Errorf("Port = %q, want 8080", s.Port)
	}
	if s.UploadDir != "./static/img/uploads" {
		t.Errorf("UploadDir = %q", s.UploadDir)
	}
	if s.SensorMode != "stub" {
		t.Errorf("SensorMode = %q, want stub", s.SensorMode)
	}
	if s.UseGCS {
		t.Error("UseGCS enabled by default")
	}
}

func TestLoadRespectsEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("UPLOAD_DIR", "/tmp/up")
	t.Setenv("SENSOR_MODE", "Simulated")
	t.Setenv("GCS_BUCKET", "samples")
	t.Setenv("K_SERVICE", "aquaentry")
	t.Setenv("USE_GCS", "")

	s := Load()
	if s.Port != "9090" || s.UploadDir != "/tmp/up" {
		t.Errorf("settings = %+v", s)
	}
	if s.SensorMode != "simulated" {
		t.Errorf("SensorMode = %q", s.SensorMode)
	}
	if !s.UseGCS || s.GCSBucket != "samples" {
		t.Errorf("GCS = %v %q", s.UseGCS, s.GCSBucket)
	}
}
