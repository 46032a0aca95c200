package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"

	"github.com/civicwatch/hazard-service/internal/domain"
	"github.com/civicwatch/hazard-service/internal/events"
	"github.com/civicwatch/hazard-service/internal/observability"
	"github.com/civicwatch/hazard-service/internal/repository"
	"github.com/civicwatch/hazard-service/pkg/util/errorutil"
)

// EscalationService re-routes ticket ownership to a different authority
// with an audit trail and a tightened resolution deadline.
type EscalationService struct {
	tickets         *TicketService
	ticketRepo      repository.TicketRepository
	escalations     repository.EscalationRepository
	authorities     repository.AuthorityRepository
	tx              repository.TxRunner
	locker          *TicketLocker
	metrics         *observability.Metrics
	escalatedWindow time.Duration
}

// EscalationDependencies bundles collaborators for the escalation service.
type EscalationDependencies struct {
	Tickets         *TicketService
	TicketRepo      repository.TicketRepository
	EscalationRepo  repository.EscalationRepository
	AuthorityRepo   repository.AuthorityRepository
	Tx              repository.TxRunner
	Locker          *TicketLocker
	Metrics         *observability.Metrics
	EscalatedWindow time.Duration
}

// NewEscalationService constructs the service.
func NewEscalationService(deps EscalationDependencies) *EscalationService {
	return &EscalationService{
		tickets:         deps.Tickets,
		ticketRepo:      deps.TicketRepo,
		escalations:     deps.EscalationRepo,
		authorities:     deps.AuthorityRepo,
		tx:              deps.Tx,
		locker:          deps.Locker,
		metrics:         deps.Metrics,
		escalatedWindow: deps.EscalatedWindow,
	}
}

// GetTargets returns authorities whose jurisdiction matches the ticket's
// region and hazard type, excluding the current primary authority.
func (s *EscalationService) GetTargets(ctx context.Context, actor Actor, ticketID string) ([]domain.Authority, error) {
	if !actor.IsStaff() {
		return nil, errorutil.NewForbidden("staff role required")
	}
	ticket, err := s.tickets.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.authorities.ListByJurisdiction(ctx, ticket.Region, ticket.HazardType)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	targets := make([]domain.Authority, 0, len(candidates))
	for _, candidate := range candidates {
		if ticket.AuthorityID != nil && candidate.UserID == *ticket.AuthorityID {
			continue
		}
		targets = append(targets, candidate)
	}
	return targets, nil
}

// Escalate validates the reason and target, records the escalation,
// transitions the ticket to escalated, re-points the primary authority and
// tightens the resolution deadline. A failed guard leaves no record and no
// status change behind.
func (s *EscalationService) Escalate(ctx context.Context, actor Actor, ticketID, targetUserID, reason string) (*domain.Ticket, error) {
	if !actor.IsStaff() {
		return nil, errorutil.NewForbidden("staff role required")
	}
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) < domain.MinEscalationReasonLength {
		return nil, errorutil.NewValidationError(
			fmt.Sprintf("escalation reason must be at least %d characters", domain.MinEscalationReasonLength),
			map[string]any{"reason_length": utf8.RuneCountInString(reason)})
	}

	unlock := s.locker.Lock(ticketID)
	defer unlock()

	ticket, err := s.tickets.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.CanEscalate() {
		return nil, errorutil.NewInvalidStateTransition("ticket cannot be escalated from its current status", map[string]any{
			"status": ticket.Status,
		})
	}
	if ticket.AuthorityID != nil && *ticket.AuthorityID == targetUserID {
		return nil, errorutil.NewValidationError("target is already the primary authority", map[string]any{
			"authority_id": targetUserID,
		})
	}

	target, err := s.authorities.GetByUserID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("authority", map[string]any{"user_id": targetUserID})
		}
		return nil, errorutil.MapError(err)
	}
	if !target.CoversHazard(ticket.Region, ticket.HazardType) {
		return nil, errorutil.NewValidationError("target authority does not cover this region and hazard type", map[string]any{
			"user_id": targetUserID,
			"region":  ticket.Region,
			"hazard":  ticket.HazardType,
		})
	}

	oldStatus := ticket.Status
	oldAuthority := ticket.AuthorityID
	oldResolutionDue := ticket.ResolutionDue

	record := &domain.EscalationRecord{
		TicketID:   ticket.ID,
		FromUserID: ticket.AuthorityID,
		ToUserID:   targetUserID,
		Reason:     reason,
	}
	if err := s.tickets.transitionLocked(ticket, domain.TicketStatusEscalated); err != nil {
		return nil, err
	}
	authorityID := targetUserID
	ticket.AuthorityID = &authorityID
	ticket.TightenResolutionDue(time.Now(), s.escalatedWindow)

	// Record and ticket update commit together; a half-applied escalation
	// must never survive a crash between the two writes.
	if err := s.persistEscalation(ctx, record, ticket); err != nil {
		return nil, err
	}

	s.tickets.recordHistory(ctx, actor, ticket.ID, repository.ChangeTypeEscalation,
		map[string]any{"status": oldStatus, "authority_id": oldAuthority, "resolution_due": oldResolutionDue},
		map[string]any{"status": ticket.Status, "authority_id": targetUserID, "resolution_due": ticket.ResolutionDue})

	// The public thread gets a summary; the full reason stays on the
	// internal thread for staff.
	s.tickets.postSystemMessage(ctx, ticket, domain.ThreadAll,
		fmt.Sprintf("Ticket escalated to %s.", target.Name), false)
	s.tickets.postSystemMessage(ctx, ticket, domain.ThreadInternal,
		fmt.Sprintf("Escalation reason: %s", reason), true)

	s.tickets.publishEvent(ctx, events.Event{
		Type:     events.EventTicketEscalated,
		TicketID: ticket.ID,
		Actor:    actor.eventActor(),
		Payload: events.TicketEscalatedPayload{
			FromAuthorityID: oldAuthority,
			ToAuthorityID:   targetUserID,
			ResolutionDue:   ticket.ResolutionDue,
		},
	})
	s.metrics.RecordEscalation()
	return ticket, nil
}

func (s *EscalationService) persistEscalation(ctx context.Context, record *domain.EscalationRecord, ticket *domain.Ticket) error {
	write := func(ctx context.Context) error {
		if err := s.escalations.Create(ctx, record); err != nil {
			return errorutil.MapError(err)
		}
		if err := s.ticketRepo.Update(ctx, ticket); err != nil {
			return errorutil.MapError(err)
		}
		return nil
	}
	if s.tx == nil {
		return write(ctx)
	}
	return s.tx.WithinTx(ctx, write)
}

// History returns the escalation audit trail for a ticket.
func (s *EscalationService) History(ctx context.Context, actor Actor, ticketID string) ([]domain.EscalationRecord, error) {
	if !actor.IsStaff() {
		return nil, errorutil.NewForbidden("staff role required")
	}
	if _, err := s.tickets.loadTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	records, err := s.escalations.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	return records, nil
}
