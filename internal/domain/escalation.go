package domain

import "time"

// MinEscalationReasonLength is the shortest accepted escalation justification.
const MinEscalationReasonLength = 10

// EscalationRecord is the immutable audit entry for one ownership re-route.
type EscalationRecord struct {
	ID         string
	TicketID   string
	FromUserID *string
	ToUserID   string
	Reason     string
	CreatedAt  time.Time
}

// AuthorityAssignment grants worklist visibility to an authority without
// altering participants or status. One row per (ticket, authority);
// re-assignment overwrites the message.
type AuthorityAssignment struct {
	ID          string
	TicketID    string
	AuthorityID string
	Message     string
	AssignedAt  time.Time
}
