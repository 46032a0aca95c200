package events

import (
	"time"

	"github.com/civicwatch/hazard-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketEscalated     EventType = "ticket_escalated"
	EventAuthorityAssigned   EventType = "authority_assigned"
	EventMessageAdded        EventType = "message_added"
	EventParticipantAdded    EventType = "participant_added"
	EventParticipantRemoved  EventType = "participant_removed"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Role   domain.Role `json:"role"`
	UserID *string     `json:"user_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	ReportID  string                `json:"report_id"`
	Priority  domain.TicketPriority `json:"priority"`
	Composite float64               `json:"composite"`
	Decision  domain.Decision       `json:"decision"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketEscalatedPayload payload.
type TicketEscalatedPayload struct {
	FromAuthorityID *string   `json:"from_authority_id,omitempty"`
	ToAuthorityID   string    `json:"to_authority_id"`
	ResolutionDue   time.Time `json:"resolution_due"`
}

// AuthorityAssignedPayload payload.
type AuthorityAssignedPayload struct {
	AuthorityID string `json:"authority_id"`
}

// MessageAddedPayload payload.
type MessageAddedPayload struct {
	MessageID      string        `json:"message_id"`
	Thread         domain.Thread `json:"thread"`
	SenderRole     domain.Role   `json:"sender_role"`
	ContentPreview string        `json:"content_preview"`
}

// ParticipantPayload payload for add/remove events.
type ParticipantPayload struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}
