package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/civicwatch/hazard-service/internal/domain"
	"github.com/civicwatch/hazard-service/internal/observability"
	"github.com/civicwatch/hazard-service/internal/repository"
	"github.com/civicwatch/hazard-service/internal/verification"
	"github.com/civicwatch/hazard-service/pkg/util/errorutil"
)

// VerificationService runs the multi-signal verification pipeline for a
// report and opens a review ticket when the decision is manual_review.
type VerificationService struct {
	reports   repository.ReportRepository
	results   repository.VerificationRepository
	collector *verification.Collector
	aggregate *verification.Aggregator
	tickets   *TicketService
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// VerificationDependencies bundles collaborators for the pipeline.
type VerificationDependencies struct {
	ReportRepo       repository.ReportRepository
	VerificationRepo repository.VerificationRepository
	Collector        *verification.Collector
	Aggregator       *verification.Aggregator
	Tickets          *TicketService
	Metrics          *observability.Metrics
	Logger           *zap.Logger
}

// NewVerificationService constructs the pipeline.
func NewVerificationService(deps VerificationDependencies) *VerificationService {
	return &VerificationService{
		reports:   deps.ReportRepo,
		results:   deps.VerificationRepo,
		collector: deps.Collector,
		aggregate: deps.Aggregator,
		tickets:   deps.Tickets,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
	}
}

// VerifyReport scores a report across all layers and acts on the decision.
// Layer failures degrade to skipped; they never abort the pipeline or
// auto-approve. Returns the stored result and, for manual_review, the
// ticket that was opened.
func (s *VerificationService) VerifyReport(ctx context.Context, reportID string) (*domain.VerificationResult, *domain.Ticket, error) {
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, errorutil.NewNotFound("report", map[string]any{"report_id": reportID})
		}
		return nil, nil, errorutil.MapError(err)
	}

	layers := s.collector.Collect(ctx, report)
	result := s.aggregate.Aggregate(report.ID, layers)
	s.metrics.RecordDecision(string(result.Decision))
	s.logger.Info("report verified",
		zap.String("report_id", report.ID),
		zap.Float64("composite", result.Composite),
		zap.String("decision", string(result.Decision)))

	if s.results != nil {
		if err := s.results.Create(ctx, &result); err != nil {
			return nil, nil, errorutil.MapError(err)
		}
	}

	if result.Decision != domain.DecisionManualReview {
		return &result, nil, nil
	}

	ticket, err := s.tickets.CreateTicket(ctx, report, &result)
	if err != nil {
		return nil, nil, err
	}
	return &result, ticket, nil
}

// History returns stored verification runs for a report, newest last.
func (s *VerificationService) History(ctx context.Context, reportID string) ([]domain.VerificationResult, error) {
	if _, err := s.reports.GetByID(ctx, reportID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("report", map[string]any{"report_id": reportID})
		}
		return nil, errorutil.MapError(err)
	}
	if s.results == nil {
		return nil, nil
	}
	results, err := s.results.ListByReport(ctx, reportID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	return results, nil
}
