package utils

import (
	"fmt"
	"strings"
	"time"
)

// pickupLayouts are the formats accepted for a preferred pickup time: full
// RFC3339 from API clients, the value of an HTML datetime-local input, and a
// bare date.
var pickupLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func ParsePickupTime(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	for _, layout := range pickupLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}

	return nil, fmt.Errorf("unrecognised time %q", value)
}

func FormatTimeISO(t time.Time) string {
	return t.Format(time.RFC3339)
}
