package service

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"airwatch/backend/services/sensor-service/internal/metrics"
	"airwatch/backend/services/sensor-service/internal/models"
)

// Thresholds are strict lower bounds; a channel must exceed them. The danger and elevated
// tiers deliberately use different values per channel.
type Thresholds struct {
	DangerMQ2     float64
	DangerMQ135   float64
	ElevatedMQ2   float64
	ElevatedMQ135 float64
}

// DefaultThresholds returns the production alert thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DangerMQ2:     50,
		DangerMQ135:   50,
		ElevatedMQ2:   80,
		ElevatedMQ135: 120,
	}
}

// Classify returns the severity and condition label for a reading. Danger is checked first.
func Classify(r models.Reading, th Thresholds) (models.Severity, string) {
	switch {
	case exceeds(r.MQ2, th.DangerMQ2) || exceeds(r.MQ135, th.DangerMQ135):
		return models.SeverityDanger, models.ConditionDanger
	case exceeds(r.MQ2, th.ElevatedMQ2) || exceeds(r.MQ135, th.ElevatedMQ135):
		return models.SeverityElevated, models.ConditionElevated
	default:
		return models.SeverityNone, models.ConditionNormal
	}
}

func exceeds(v *float64, limit float64) bool {
	return v != nil && *v > limit
}

// AlertState is the process-wide dedup memory for one sensor stream.
type AlertState struct {
	mu             sync.Mutex
	thresholds     Thresholds
	lastAnnounced  *time.Time
	activeSeverity models.Severity
	condition      string
	latest         *models.Reading
}

// NewAlertState returns an empty state using the given thresholds.
func NewAlertState(th Thresholds) *AlertState {
	return &AlertState{
		thresholds: th,
		condition:  models.ConditionNormal,
	}
}

// AlertSnapshot is a point-in-time copy of AlertState.
type AlertSnapshot struct {
	ActiveSeverity         models.Severity `json:"activeSeverity"`
	Condition              string          `json:"condition"`
	LastAnnouncedEventTime *time.Time      `json:"lastAnnouncedEventTime"`
	Latest                 *models.Reading `json:"latest"`
}

// Snapshot copies the current state.
func (s *AlertState) Snapshot() AlertSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := AlertSnapshot{
		ActiveSeverity: s.activeSeverity,
		Condition:      s.condition,
	}
	if s.lastAnnounced != nil {
		t := *s.lastAnnounced
		snap.LastAnnouncedEventTime = &t
	}
	if s.latest != nil {
		r := *s.latest
		snap.Latest = &r
	}
	return snap
}

// Evaluate classifies reading and records the result in state. It returns a Notification
// only for an alert-worthy reading whose event time is strictly newer than the last
// announced one. The whole read-modify-write runs under the state lock.
func Evaluate(reading models.Reading, state *AlertState) *models.Notification {
	state.mu.Lock()
	defer state.mu.Unlock()

	severity, condition := Classify(reading, state.thresholds)
	state.activeSeverity = severity
	state.condition = condition
	// Set under the lock so the gauge follows the same order as the state.
	metrics.ActiveSeverity.Set(float64(severity))
	latest := reading
	state.latest = &latest

	if severity == models.SeverityNone {
		return nil
	}
	if state.lastAnnounced != nil && !reading.EventTime.After(*state.lastAnnounced) {
		return nil
	}

	announced := reading.EventTime
	state.lastAnnounced = &announced

	return &models.Notification{
		ID:          uuid.NewString(),
		Severity:    severity,
		Condition:   condition,
		Temperature: reading.Temperature,
		Humidity:    reading.Humidity,
		MQ135:       reading.MQ135,
		MQ2:         reading.MQ2,
		Timestamp:   reading.Timestamp,
		EventTime:   reading.EventTime,
	}
}
