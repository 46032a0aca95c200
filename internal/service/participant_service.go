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

// ParticipantService maintains the additional-participant roster.
type ParticipantService struct {
	tickets      *TicketService
	participants repository.ParticipantRepository
	users        repository.UserRepository
	locker       *TicketLocker
}

// NewParticipantService constructs the service.
func NewParticipantService(tickets *TicketService, participants repository.ParticipantRepository, users repository.UserRepository, locker *TicketLocker) *ParticipantService {
	return &ParticipantService{
		tickets:      tickets,
		participants: participants,
		users:        users,
		locker:       locker,
	}
}

// AddParticipant attaches a user to a ticket. The roster is re-read at
// write time under the ticket lock, so a user already present as reporter,
// analyst, authority or active participant is rejected with DUPLICATE.
func (s *ParticipantService) AddParticipant(ctx context.Context, actor Actor, ticketID, userID string, canMessage bool, notes string) (*domain.Participant, error) {
	if !actor.IsStaff() {
		return nil, errorutil.NewForbidden("staff role required")
	}

	unlock := s.locker.Lock(ticketID)
	defer unlock()

	ticket, err := s.tickets.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, errorutil.MapError(err)
	}

	roster, err := s.tickets.ResolveRoster(ctx, ticket)
	if err != nil {
		return nil, err
	}
	if roster.Contains(userID) {
		return nil, errorutil.NewDuplicate("user already participates in ticket", map[string]any{
			"ticket_id": ticketID,
			"user_id":   userID,
		})
	}

	participant := &domain.Participant{
		TicketID:   ticketID,
		UserID:     userID,
		Role:       user.Role,
		CanMessage: canMessage,
		Notes:      notes,
	}
	if err := s.participants.Create(ctx, participant); err != nil {
		return nil, err
	}

	s.tickets.recordHistory(ctx, actor, ticketID, repository.ChangeTypeParticipant,
		nil,
		map[string]any{"user_id": userID, "action": "added"})
	s.tickets.postSystemMessage(ctx, ticket, domain.ThreadInternal,
		fmt.Sprintf("%s added to the ticket roster.", user.Name), true)
	s.tickets.publishEvent(ctx, events.Event{
		Type:     events.EventParticipantAdded,
		TicketID: ticketID,
		Actor:    actor.eventActor(),
		Payload:  events.ParticipantPayload{UserID: userID, Role: user.Role},
	})
	return participant, nil
}

// RemoveParticipant soft-deletes an additional participant. The row stays
// behind inactive for audit.
func (s *ParticipantService) RemoveParticipant(ctx context.Context, actor Actor, ticketID, userID string) error {
	if !actor.IsStaff() {
		return errorutil.NewForbidden("staff role required")
	}

	unlock := s.locker.Lock(ticketID)
	defer unlock()

	ticket, err := s.tickets.loadTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if err := s.participants.Deactivate(ctx, ticketID, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errorutil.NewNotFound("participant", map[string]any{
				"ticket_id": ticketID,
				"user_id":   userID,
			})
		}
		return errorutil.MapError(err)
	}

	s.tickets.recordHistory(ctx, actor, ticketID, repository.ChangeTypeParticipant,
		map[string]any{"user_id": userID, "is_active": true},
		map[string]any{"user_id": userID, "is_active": false})
	s.tickets.postSystemMessage(ctx, ticket, domain.ThreadInternal,
		"A participant was removed from the ticket roster.", true)
	s.tickets.publishEvent(ctx, events.Event{
		Type:     events.EventParticipantRemoved,
		TicketID: ticketID,
		Actor:    actor.eventActor(),
		Payload:  events.ParticipantPayload{UserID: userID},
	})
	return nil
}

// ListParticipants returns the additional participants of a ticket,
// including removed ones when history is requested.
func (s *ParticipantService) ListParticipants(ctx context.Context, actor Actor, ticketID string, includeInactive bool) ([]domain.Participant, error) {
	ticket, err := s.tickets.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.tickets.checkTicketAccess(ctx, actor, ticket); err != nil {
		return nil, err
	}
	if includeInactive && !actor.IsStaff() {
		includeInactive = false
	}
	participants, err := s.participants.ListByTicket(ctx, ticketID, !includeInactive)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	return participants, nil
}
