package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// naiveLayout is an ISO 8601 timestamp without a zone offset. Such values
// are read as UTC.
const naiveLayout = "2006-01-02T15:04:05.999999999"

// ParseTimestamp parses an RFC 3339 timestamp, or a zone-less ISO 8601 one
// which is taken to be UTC.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(naiveLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: expected RFC 3339 or YYYY-MM-DDTHH:MM:SS", s)
	}
	return t, nil
}

func unmarshalTimestamp(data []byte, dst *time.Time) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*dst = t
	return nil
}
