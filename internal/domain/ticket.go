package domain

import "time"

// TicketStatus enumerates lifecycle states for verification tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusAssigned   TicketStatus = "assigned"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusEscalated  TicketStatus = "escalated"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// Ticket is the aggregate for a report held for manual review. Exactly one
// reporter, at most one analyst and at most one primary authority.
type Ticket struct {
	ID                string
	ReportID          string
	Status            TicketStatus
	Priority          TicketPriority
	ReporterID        string
	AssignedAnalystID *string
	AuthorityID       *string
	Region            string
	HazardType        HazardType
	ResponseDue       time.Time
	ResolutionDue     time.Time
	RespondedAt       *time.Time
	ResolvedAt        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:       {TicketStatusAssigned},
	TicketStatusAssigned:   {TicketStatusInProgress, TicketStatusEscalated},
	TicketStatusInProgress: {TicketStatusResolved, TicketStatusEscalated},
	TicketStatusEscalated:  {TicketStatusAssigned, TicketStatusInProgress},
	TicketStatusResolved:   {TicketStatusClosed},
	TicketStatusClosed:     {},
}

// IsValidTransition reports whether next is a declared successor of current.
func IsValidTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// IsSettled reports whether the ticket has reached resolved or closed;
// settled tickets accept only internal notes.
func (t *Ticket) IsSettled() bool {
	return t.Status == TicketStatusResolved || t.Status == TicketStatusClosed
}

// CanEscalate reports whether the current status permits escalation.
func (t *Ticket) CanEscalate() bool {
	return t.Status == TicketStatusAssigned || t.Status == TicketStatusInProgress
}
