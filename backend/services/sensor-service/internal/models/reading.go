package models

import (
	"errors"
	"strings"
	"time"
)

// Layouts for the calendar date and hour bucket labels.
const (
	DateLayout = "2006-01-02"
	HourLayout = "2006-01-02 15:00:00"
)

// ErrTimestampMissing is returned by ParseTimestamp for blank input.
var ErrTimestampMissing = errors.New("timestamp is required")

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseTimestamp parses a caller-supplied event timestamp. Timestamps without an offset are
// read as UTC; timestamps with an offset keep it, so Date and Hour reflect the wall clock the
// reading was written with.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrTimestampMissing
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// Reading is one stored sensor sample. MQ135 is gasA and MQ2 is gasB.
type Reading struct {
	ID          int64     `json:"id,omitempty"`
	Temperature *float64  `json:"temperature"`
	Humidity    *float64  `json:"humidity"`
	MQ135       *float64  `json:"mq135"`
	MQ2         *float64  `json:"mq2"`
	Timestamp   string    `json:"timestamp"`
	EventTime   time.Time `json:"-"`
}

// Date returns the calendar date bucket of the reading.
func (r Reading) Date() string {
	return r.EventTime.Format(DateLayout)
}

// Hour returns the reading's event time truncated to the hour, on its own wall clock.
func (r Reading) Hour() time.Time {
	t := r.EventTime
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

// RawReading is the inbound wire shape of a sample.
type RawReading struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	MQ135       *float64 `json:"mq135"`
	MQ2         *float64 `json:"mq2"`
	Timestamp   string   `json:"timestamp"`
}

// Float returns a pointer to v; handy for literals.
func Float(v float64) *float64 {
	return &v
}
