package utils

import (
	"math"
	"testing"
)

func TestValidateCoordinate(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{"origin", 0, 0, false},
		{"bangalore", 12.971599, 77.594566, false},
		{"north pole", 90, 0, false},
		{"date line", 0, -180, false},

		// Out of range
		{"latitude too high", 90.000001, 0, true},
		{"latitude too low", -91, 0, true},
		{"longitude too high", 0, 180.5, true},
		{"longitude too low", 0, -181, true},

		// Not finite
		{"nan latitude", math.NaN(), 0, true},
		{"inf longitude", 0, math.Inf(1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinate(tt.lat, tt.lng)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCoordinate(%v, %v) error = %v, wantErr %v", tt.lat, tt.lng, err, tt.wantErr)
			}
		})
	}
}

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		name    string
		lat     string
		lng     string
		wantLat float64
		wantLng float64
		wantErr bool
	}{
		{"rounds to six decimals", "12.9715987", "77.5945627", 12.971599, 77.594563, false},
		{"trims spaces", " -33.8688 ", "151.2093", -33.8688, 151.2093, false},
		{"empty latitude", "", "77.5", 0, 0, true},
		{"text longitude", "12.5", "east", 0, 0, true},
		{"out of range", "120", "10", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pt, err := ParseCoordinate(tt.lat, tt.lng)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if pt.Lat() != tt.wantLat || pt.Lon() != tt.wantLng {
				t.Errorf("got (%v, %v), want (%v, %v)", pt.Lat(), pt.Lon(), tt.wantLat, tt.wantLng)
			}
		})
	}
}
