package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// CoordinateDecimals is the precision stored for latitude and longitude.
const CoordinateDecimals = 6

// ValidateCoordinate checks that lat/lng are finite and within range.
func ValidateCoordinate(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return fmt.Errorf("coordinate is not a finite number")
	}
	// Latitude must be between -90 and 90
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %.6f is out of valid range [-90, 90]", lat)
	}
	// Longitude must be between -180 and 180
	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude %.6f is out of valid range [-180, 180]", lng)
	}
	return nil
}

// ValidatePoint is ValidateCoordinate for an orb point (lon, lat).
func ValidatePoint(p orb.Point) error {
	return ValidateCoordinate(p.Lat(), p.Lon())
}

// RoundPoint rounds both axes to CoordinateDecimals.
func RoundPoint(p orb.Point) orb.Point {
	return orb.Point{roundTo(p.Lon(), CoordinateDecimals), roundTo(p.Lat(), CoordinateDecimals)}
}

// ParseCoordinate parses form values into a validated, rounded point.
func ParseCoordinate(latStr, lngStr string) (orb.Point, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("invalid latitude %q", latStr)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("invalid longitude %q", lngStr)
	}
	if err := ValidateCoordinate(lat, lng); err != nil {
		return orb.Point{}, err
	}
	return RoundPoint(orb.Point{lng, lat}), nil
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
