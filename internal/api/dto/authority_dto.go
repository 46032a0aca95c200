package dto

import (
	"time"

	"github.com/civicwatch/hazard-service/internal/domain"
)

// AuthorityResponse is a directory entry.
type AuthorityResponse struct {
	UserID       string              `json:"user_id"`
	Name         string              `json:"name"`
	Organization string              `json:"organization"`
	Region       string              `json:"region"`
	HazardTypes  []domain.HazardType `json:"hazard_types"`
	Active       bool                `json:"active"`
}

// AssignAuthorityRequest payload.
type AssignAuthorityRequest struct {
	AuthorityID string `json:"authority_id"`
	Message     string `json:"message"`
}

// AssignmentResponse represents a worklist grant.
type AssignmentResponse struct {
	ID          string    `json:"id"`
	TicketID    string    `json:"ticket_id"`
	AuthorityID string    `json:"authority_id"`
	Message     string    `json:"message,omitempty"`
	AssignedAt  time.Time `json:"assigned_at"`
}

// EscalateRequest payload.
type EscalateRequest struct {
	ToUserID string `json:"to_user_id"`
	Reason   string `json:"reason"`
}

// EscalationResponse is one audit entry of an ownership re-route.
type EscalationResponse struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	FromUserID *string   `json:"from_user_id"`
	ToUserID   string    `json:"to_user_id"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}
