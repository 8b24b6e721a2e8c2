package workflow

import (
	"errors"
	"slices"
)

// ErrUnknownWaterType is returned for a selection outside WaterTypes.
var ErrUnknownWaterType = errors.New("unknown water type")

// ErrMalformedResponse means the backend answer could not be decoded.
var ErrMalformedResponse = errors.New("malformed server response")

// WaterTypes are the selectable water bodies.
var WaterTypes = []string{"river", "lake", "pond", "reservoir", "canal", "groundwater", "estuary", "sea", "wetland"}

// IsWaterType reports whether v is one of WaterTypes.
func IsWaterType(v string) bool {
	return slices.Contains(WaterTypes, v)
}

// SubmitError is an answer from the backend with success=false.
type SubmitError struct {
	Reason string
}

func (e *SubmitError) Error() string {
	if e.Reason == "" {
		return "server rejected submission"
	}
	return "server rejected submission: " + e.Reason
}
