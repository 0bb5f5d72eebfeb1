package events

import "time"

const NotificationTopic = "hr.panel.notifications.v1"

const (
	EventEmployeeAdded      = "employee_added"
	EventVacationRegistered = "vacation_registered"
	EventVacationCancelled  = "vacation_cancelled"
)

// NotificationEvent is the payload delivered to the Teams webhook. Text is
// the final human-readable message; the consumer does no templating.
type NotificationEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	Text       string    `json:"text"`
	OccurredAt time.Time `json:"occurred_at"`
}
