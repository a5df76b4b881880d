package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventPermissionsReplaced EventType = "permissions_replaced"
	EventMailAlertComposed   EventType = "mail_alert_composed"
	EventResponseSubmitted   EventType = "response_submitted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with a fresh id and the current UTC time.
func New(eventType EventType, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// PermissionsReplacedPayload payload.
type PermissionsReplacedPayload struct {
	PairCount int `json:"pair_count"`
}

// MailAlertComposedPayload payload.
type MailAlertComposedPayload struct {
	UsersConsidered int `json:"users_considered"`
	Notifications   int `json:"notifications"`
	Delivered       int `json:"delivered"`
}

// ResponseSubmittedPayload payload.
type ResponseSubmittedPayload struct {
	ResponseID      int64 `json:"response_id"`
	SurveyID        int64 `json:"survey_id"`
	UserID          int64 `json:"user_id"`
	AnswersSaved    int   `json:"answers_saved"`
	AnswersSkipped  int   `json:"answers_skipped"`
	AnswersRejected bool  `json:"answers_rejected"`
}
