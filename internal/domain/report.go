package domain

import "time"

// HazardType categorizes a citizen hazard report.
type HazardType string

const (
	HazardFlood     HazardType = "flood"
	HazardFire      HazardType = "fire"
	HazardLandslide HazardType = "landslide"
	HazardStorm     HazardType = "storm"
	HazardOther     HazardType = "other"
)

// Severity is the reporter-supplied 1-5 urgency estimate.
type Severity int

// Report holds hazard metadata, location and raw evidence references as
// submitted through the ingestion pipeline. The report store itself is
// external; this core only reads it.
type Report struct {
	ID          string
	ReporterID  string
	HazardType  HazardType
	Severity    Severity
	Region      string
	Latitude    float64
	Longitude   float64
	Description string
	EvidenceIDs []string
	CreatedAt   time.Time
}

// Priority maps reporter-declared severity to a ticket priority.
func (r *Report) Priority() TicketPriority {
	switch {
	case r.Severity >= 5:
		return TicketPriorityUrgent
	case r.Severity == 4:
		return TicketPriorityHigh
	case r.Severity == 3:
		return TicketPriorityMedium
	default:
		return TicketPriorityLow
	}
}
