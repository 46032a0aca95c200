package dto

import (
	"time"

	"github.com/civicwatch/hazard-service/internal/domain"
)

// VerifyReportRequest payload for the internal pipeline endpoint.
type VerifyReportRequest struct {
	ReportID string `json:"report_id"`
}

// LayerResultResponse is one scoring layer outcome.
type LayerResultResponse struct {
	Name   string             `json:"name"`
	Score  float64            `json:"score"`
	Status domain.LayerStatus `json:"status"`
}

// VerificationResponse carries the composite outcome and, when a review
// ticket was opened, its id.
type VerificationResponse struct {
	ReportID  string                `json:"report_id"`
	Layers    []LayerResultResponse `json:"layers"`
	Composite float64               `json:"composite"`
	Decision  domain.Decision       `json:"decision"`
	TicketID  *string               `json:"ticket_id,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}
