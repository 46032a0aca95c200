// Package verification combines weighted scoring-layer results into a
// composite score and a decision.
package verification

import (
	"time"

	"github.com/civicwatch/hazard-service/internal/domain"
)

// Aggregator computes the composite score from per-layer results.
type Aggregator struct {
	weights map[string]float64
}

// NewAggregator builds an aggregator over the configured layer weights.
func NewAggregator(weights map[string]float64) *Aggregator {
	copied := make(map[string]float64, len(weights))
	for name, weight := range weights {
		if weight > 0 {
			copied[name] = weight
		}
	}
	return &Aggregator{weights: copied}
}

// Aggregate excludes skipped layers, renormalizes the remaining weights to
// sum to 1.0 and computes composite = sum(weight * score * 100). Missing
// evidence therefore neither lowers nor inflates the composite. When no
// layer produced a usable result the decision falls back to manual review
// rather than auto-approving on partial failure.
func (a *Aggregator) Aggregate(reportID string, layers []domain.LayerResult) domain.VerificationResult {
	result := domain.VerificationResult{
		ReportID:  reportID,
		Layers:    layers,
		CreatedAt: time.Now(),
	}

	var totalWeight float64
	for _, layer := range layers {
		if layer.Status == domain.LayerStatusSkipped {
			continue
		}
		totalWeight += a.weights[layer.Name]
	}

	if totalWeight <= 0 {
		result.Composite = 0
		result.Decision = domain.DecisionManualReview
		return result
	}

	var composite float64
	for _, layer := range layers {
		if layer.Status == domain.LayerStatusSkipped {
			continue
		}
		weight := a.weights[layer.Name] / totalWeight
		composite += weight * clampUnit(layer.Score) * 100
	}

	if composite < 0 {
		composite = 0
	}
	if composite > 100 {
		composite = 100
	}
	result.Composite = composite
	result.Decision = domain.DecisionFor(composite)
	return result
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
