package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONTime wraps time.Time so submission timestamps serialize as RFC3339
// and store as TIMESTAMPTZ.
type JSONTime time.Time

var jsonTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// ParseJSONTime accepts RFC3339, zone-less ISO timestamps, or the
// "date time" pair the data-entry form submits.
func ParseJSONTime(s string, loc *time.Location) (JSONTime, error) {
	for _, layout := range jsonTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return JSONTime(t), nil
		}
	}
	return JSONTime{}, fmt.Errorf("cannot parse time %q", s)
}

func (jt *JSONTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("JSONTime.UnmarshalJSON: %w", err)
	}
	t, err := ParseJSONTime(s, time.UTC)
	if err != nil {
		return fmt.Errorf("JSONTime.UnmarshalJSON: %w", err)
	}
	*jt = t
	return nil
}

// MarshalJSON always emits RFC3339.
func (jt JSONTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(jt).Format(time.RFC3339))
}

// Value implements driver.Valuer.
func (jt JSONTime) Value() (driver.Value, error) {
	return time.Time(jt), nil
}

// Scan implements sql.Scanner.
func (jt *JSONTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*jt = JSONTime(time.Time{})
	case time.Time:
		*jt = JSONTime(v)
	case []byte:
		return jt.Scan(string(v))
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return fmt.Errorf("JSONTime.Scan: parse %q: %w", v, err)
		}
		*jt = JSONTime(t)
	default:
		return fmt.Errorf("JSONTime.Scan: unsupported type %T", src)
	}
	return nil
}

// Time returns the wrapped time.Time.
func (jt JSONTime) Time() time.Time {
	return time.Time(jt)
}
