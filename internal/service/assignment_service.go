package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/civicwatch/hazard-service/internal/domain"
	"github.com/civicwatch/hazard-service/internal/events"
	"github.com/civicwatch/hazard-service/internal/repository"
	"github.com/civicwatch/hazard-service/pkg/util/errorutil"
)

// AssignmentService grants authorities worklist visibility on tickets
// without touching the participant roster or status.
type AssignmentService struct {
	tickets     *TicketService
	assignments repository.AssignmentRepository
	authorities repository.AuthorityRepository
	ticketRepo  repository.TicketRepository
	locker      *TicketLocker
}

// NewAssignmentService constructs the service.
func NewAssignmentService(tickets *TicketService, assignments repository.AssignmentRepository, authorities repository.AuthorityRepository, ticketRepo repository.TicketRepository, locker *TicketLocker) *AssignmentService {
	return &AssignmentService{
		tickets:     tickets,
		assignments: assignments,
		authorities: authorities,
		ticketRepo:  ticketRepo,
		locker:      locker,
	}
}

// Assign hands a ticket to an authority's worklist. Re-assigning the same
// authority overwrites the message instead of creating a second record.
func (s *AssignmentService) Assign(ctx context.Context, actor Actor, ticketID, authorityID, message string) (*domain.AuthorityAssignment, error) {
	if !actor.IsStaff() {
		return nil, errorutil.NewForbidden("staff role required")
	}

	unlock := s.locker.Lock(ticketID)
	defer unlock()

	ticket, err := s.tickets.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.IsSettled() {
		return nil, errorutil.NewInvalidStateTransition("cannot assign an authority to a settled ticket", map[string]any{
			"status": ticket.Status,
		})
	}

	authority, err := s.authorities.GetByUserID(ctx, authorityID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("authority", map[string]any{"user_id": authorityID})
		}
		return nil, errorutil.MapError(err)
	}
	if !authority.Active {
		return nil, errorutil.NewValidationError("authority is inactive", map[string]any{"user_id": authorityID})
	}

	assignment := &domain.AuthorityAssignment{
		TicketID:    ticketID,
		AuthorityID: authorityID,
		Message:     message,
	}
	if err := s.assignments.Upsert(ctx, assignment); err != nil {
		return nil, errorutil.MapError(err)
	}

	s.tickets.recordHistory(ctx, actor, ticketID, repository.ChangeTypeAuthority,
		nil,
		map[string]any{"authority_id": authorityID, "action": "assigned"})
	s.tickets.postSystemMessage(ctx, ticket, domain.ThreadInternal,
		fmt.Sprintf("Ticket shared with %s (%s).", authority.Name, authority.Organization), true)
	s.tickets.publishEvent(ctx, events.Event{
		Type:     events.EventAuthorityAssigned,
		TicketID: ticketID,
		Actor:    actor.eventActor(),
		Payload:  events.AuthorityAssignedPayload{AuthorityID: authorityID},
	})
	return assignment, nil
}

// Worklist lists the tickets visible to an authority, owned or assigned.
func (s *AssignmentService) Worklist(ctx context.Context, actor Actor, limit, offset int) ([]domain.Ticket, error) {
	if actor.Role != domain.RoleAuthority && actor.Role != domain.RoleAdmin {
		return nil, errorutil.NewForbidden("authority role required")
	}
	tickets, err := s.ticketRepo.ListByAuthority(ctx, actor.ID, limit, offset)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	return tickets, nil
}

// SearchAuthorities is the paginated directory lookup by name or
// organization.
func (s *AssignmentService) SearchAuthorities(ctx context.Context, actor Actor, term string, limit, offset int) ([]domain.Authority, error) {
	if !actor.IsStaff() {
		return nil, errorutil.NewForbidden("staff role required")
	}
	authorities, err := s.authorities.Search(ctx, term, limit, offset)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	return authorities, nil
}
