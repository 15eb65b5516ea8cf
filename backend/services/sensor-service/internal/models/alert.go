package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Severity classifies a reading against the gas thresholds.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityElevated
	SeverityDanger
)

// String returns the wire name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityElevated:
		return "elevated"
	case SeverityDanger:
		return "danger"
	default:
		return "none"
	}
}

// MarshalText lets Severity appear as a string in JSON.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Condition labels shown to humans.
const (
	ConditionNormal   = "Normal Environment"
	ConditionElevated = "High Gas Concentration Detected"
	ConditionDanger   = "DANGER! Possible Smoke/Gas Leak"
)

// Notification is an announced alert for one reading.
type Notification struct {
	ID          string    `json:"id"`
	Severity    Severity  `json:"severity"`
	Condition   string    `json:"condition"`
	Temperature *float64  `json:"temperature"`
	Humidity    *float64  `json:"humidity"`
	MQ135       *float64  `json:"mq135"`
	MQ2         *float64  `json:"mq2"`
	Timestamp   string    `json:"timestamp"`
	EventTime   time.Time `json:"eventTime"`
}

// Body renders the notification as an SMS text.
func (n Notification) Body() string {
	var b strings.Builder
	fmt.Fprintf(&b, "EMERGENCY ALERT! %s\n", n.Condition)
	fmt.Fprintf(&b, "Gas Level (MQ2): %s ppm\n", formatValue(n.MQ2))
	fmt.Fprintf(&b, "Air Quality (MQ135): %s ppm\n", formatValue(n.MQ135))
	fmt.Fprintf(&b, "Temperature: %s C\n", formatValue(n.Temperature))
	fmt.Fprintf(&b, "Humidity: %s %%\n", formatValue(n.Humidity))
	fmt.Fprintf(&b, "Time: %s\n", n.Timestamp)
	b.WriteString("Immediate Action Required!")
	return b.String()
}

func formatValue(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
