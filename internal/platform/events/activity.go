// Package events defines shared cross-service event payloads.
package events

import "time"

// EventActivityTracked is the outbox event type for newly tracked activities.
const EventActivityTracked = "activity.tracked"

// Kafka header keys set by the outbox dispatcher.
const (
	HeaderEventType     = "event_type"
	HeaderTenantID      = "tenant_id"
	HeaderSchemaSubject = "schema_subject"
)

// ActivityTracked is emitted once an activity has been persisted. The
// recommendation consumer builds its analysis from this payload alone.
type ActivityTracked struct {
	ActivityID        string             `json:"activity_id"`
	TenantID          string             `json:"tenant_id"`
	UserID            string             `json:"user_id"`
	ActivityType      string             `json:"activity_type"`
	DurationMin       int                `json:"duration_min"`
	CaloriesBurned    int                `json:"calories_burned"`
	StartedAt         time.Time          `json:"started_at"`
	AdditionalMetrics map[string]float64 `json:"additional_metrics,omitempty"`
	Version           string             `json:"version"`
}
