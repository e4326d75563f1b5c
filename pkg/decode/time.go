package decode

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// timeLayouts are the timestamp forms the supported backends emit. Naive
// timestamps are interpreted as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02",
}

// Time decodes a timestamp given as an ISO-8601 string (with or without
// zone), as Unix seconds, or as null.
type Time struct {
	time.Time
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Time) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*t = Time{}
		return nil
	}
	if data[0] != '"' {
		secs, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("timestamp %s is neither a string nor a number", data)
		}
		if secs == 0 {
			*t = Time{}
			return nil
		}
		whole := int64(secs)
		*t = Time{Time: time.Unix(whole, int64((secs-float64(whole))*1e9)).UTC(), Valid: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*t = Time{}
		return nil
	}
	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}
	*t = Time{Time: parsed, Valid: true}
	return nil
}

// MarshalJSON renders the time as RFC 3339 or null.
func (t Time) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.UTC().Format(time.RFC3339))
}

// Ptr returns the time or nil when unset.
func (t Time) Ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// ParseTime parses a backend timestamp string.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// UnixPtr converts optional Unix seconds into a time. Zero means unset.
func UnixPtr(secs *int64) *time.Time {
	if secs == nil || *secs == 0 {
		return nil
	}
	t := time.Unix(*secs, 0).UTC()
	return &t
}
