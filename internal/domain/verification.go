package domain

import "time"

// LayerStatus describes the outcome of a single scoring layer run.
type LayerStatus string

const (
	LayerStatusPass    LayerStatus = "pass"
	LayerStatusFail    LayerStatus = "fail"
	LayerStatusSkipped LayerStatus = "skipped"
)

// LayerResult is the normalized output of one scoring layer.
type LayerResult struct {
	Name   string
	Score  float64 // in [0,1]
	Status LayerStatus
}

// Decision is derived from the composite score against fixed thresholds.
type Decision string

const (
	DecisionAutoApproved Decision = "auto_approved"
	DecisionManualReview Decision = "manual_review"
	DecisionAutoRejected Decision = "auto_rejected"
)

// Composite decision thresholds.
const (
	AutoApproveThreshold = 75.0
	AutoRejectThreshold  = 40.0
)

// DecisionFor maps a composite score to a decision.
func DecisionFor(composite float64) Decision {
	switch {
	case composite >= AutoApproveThreshold:
		return DecisionAutoApproved
	case composite >= AutoRejectThreshold:
		return DecisionManualReview
	default:
		return DecisionAutoRejected
	}
}

// VerificationResult aggregates per-layer results into a composite score
// and decision for one report.
type VerificationResult struct {
	ReportID  string
	Layers    []LayerResult
	Composite float64 // in [0,100]
	Decision  Decision
	CreatedAt time.Time
}
