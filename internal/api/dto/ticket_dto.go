package dto

import (
	"time"

	"github.com/civicwatch/hazard-service/internal/domain"
)

// TicketDetailResponse provides full ticket info including SLA state.
type TicketDetailResponse struct {
	ID                string                `json:"id"`
	ReportID          string                `json:"report_id"`
	Status            domain.TicketStatus   `json:"status"`
	Priority          domain.TicketPriority `json:"priority"`
	ReporterID        string                `json:"reporter_id"`
	AssignedAnalystID *string               `json:"assigned_analyst_id"`
	AuthorityID       *string               `json:"authority_id"`
	Region            string                `json:"region"`
	HazardType        domain.HazardType     `json:"hazard_type"`
	ResponseDue       time.Time             `json:"response_due"`
	ResolutionDue     time.Time             `json:"resolution_due"`
	RespondedAt       *time.Time            `json:"responded_at"`
	ResolvedAt        *time.Time            `json:"resolved_at"`
	IsOverdue         bool                  `json:"is_overdue"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// TicketSummary is the compact worklist row.
type TicketSummary struct {
	ID            string                `json:"id"`
	ReportID      string                `json:"report_id"`
	Status        domain.TicketStatus   `json:"status"`
	Priority      domain.TicketPriority `json:"priority"`
	Region        string                `json:"region"`
	HazardType    domain.HazardType     `json:"hazard_type"`
	ResolutionDue time.Time             `json:"resolution_due"`
	IsOverdue     bool                  `json:"is_overdue"`
	CreatedAt     time.Time             `json:"created_at"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	Thread  domain.Thread `json:"thread"`
	Content string        `json:"content"`
}

// MessageResponse represents one thread entry.
type MessageResponse struct {
	ID         string        `json:"id"`
	Thread     domain.Thread `json:"thread"`
	SenderID   *string       `json:"sender_id"`
	SenderRole domain.Role   `json:"sender_role"`
	Content    string        `json:"content"`
	IsInternal bool          `json:"is_internal"`
	CreatedAt  time.Time     `json:"created_at"`
}

// AddParticipantRequest payload.
type AddParticipantRequest struct {
	UserID     string `json:"user_id"`
	CanMessage bool   `json:"can_message"`
	Notes      string `json:"notes"`
}

// ParticipantResponse represents a roster entry.
type ParticipantResponse struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	Role       domain.Role `json:"role"`
	CanMessage bool        `json:"can_message"`
	Notes      string      `json:"notes,omitempty"`
	IsActive   bool        `json:"is_active"`
	CreatedAt  time.Time   `json:"created_at"`
}

// HistoryResponse is one audit trail entry.
type HistoryResponse struct {
	ID         string         `json:"id"`
	ChangeType string         `json:"change_type"`
	ActorRole  domain.Role    `json:"actor_role"`
	ActorID    *string        `json:"actor_id"`
	OldValue   map[string]any `json:"old_value,omitempty"`
	NewValue   map[string]any `json:"new_value,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
