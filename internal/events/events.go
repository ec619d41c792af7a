package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is the envelope for everything published to the message broker.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Event types published by the service. Downstream consumers (notification
// fan-out, analytics) route on these.
const (
	EventAccountCreated   = "directory.account_created"
	EventMenteeEnrolled   = "directory.mentee_enrolled"
	EventRoleChanged      = "directory.role_changed"
	EventPrimaryAssigned  = "delegation.primary_assigned"
	EventSlotCommitted    = "delegation.slot_committed"
	EventSlotReleased     = "delegation.slot_released"
	EventEditGranted      = "grant.edit_granted"
	EventEditConsumed     = "grant.edit_consumed"
	EventReportSubmitted  = "report.submitted"
	EventReportReviewed   = "report.reviewed"
	EventQueryAsked       = "query.asked"
	EventQueryAnswered    = "query.answered"
	EventIdentitySwitched = "identity.switched"
	EventBulkNotification = "system.bulk_notification"
)

const eventSource = "mentorship-service"

// NewEvent builds an envelope with a fresh ID and the current timestamp.
func NewEvent(eventType string, data interface{}) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    eventSource,
		Version:   "1.0",
		Timestamp: time.Now(),
		Data:      data,
	}
}

// EventPublisher abstracts the broker so services can be tested without one.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
