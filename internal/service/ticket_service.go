package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/civicwatch/hazard-service/internal/domain"
	"github.com/civicwatch/hazard-service/internal/events"
	"github.com/civicwatch/hazard-service/internal/repository"
	"github.com/civicwatch/hazard-service/pkg/util/errorutil"
)

// TicketService owns ticket creation, the status state machine, threaded
// messaging and SLA stamping.
type TicketService struct {
	tickets      repository.TicketRepository
	messages     repository.MessageRepository
	participants repository.ParticipantRepository
	assignments  repository.AssignmentRepository
	history      repository.HistoryRepository
	dispatcher   events.Dispatcher
	locker       *TicketLocker
	slaTable     domain.SLATable
	logger       *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo      repository.TicketRepository
	MessageRepo     repository.MessageRepository
	ParticipantRepo repository.ParticipantRepository
	AssignmentRepo  repository.AssignmentRepository
	HistoryRepo     repository.HistoryRepository
	Dispatcher      events.Dispatcher
	Locker          *TicketLocker
	SLATable        domain.SLATable
	Logger          *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	locker := deps.Locker
	if locker == nil {
		locker = NewTicketLocker()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:      deps.TicketRepo,
		messages:     deps.MessageRepo,
		participants: deps.ParticipantRepo,
		assignments:  deps.AssignmentRepo,
		history:      deps.HistoryRepo,
		dispatcher:   deps.Dispatcher,
		locker:       locker,
		slaTable:     deps.SLATable,
		logger:       logger,
	}
}

// CreateTicket opens a review ticket for a report whose verification
// decision is manual_review. The unique constraint on report_id makes
// concurrent duplicate creates fail with a DUPLICATE error.
func (s *TicketService) CreateTicket(ctx context.Context, report *domain.Report, result *domain.VerificationResult) (*domain.Ticket, error) {
	if result.Decision != domain.DecisionManualReview {
		return nil, errorutil.NewValidationError("ticket creation requires a manual_review decision", map[string]any{
			"decision": result.Decision,
		})
	}

	ticket := &domain.Ticket{
		ReportID:   report.ID,
		Status:     domain.TicketStatusOpen,
		Priority:   report.Priority(),
		ReporterID: report.ReporterID,
		Region:     report.Region,
		HazardType: report.HazardType,
	}
	ticket.ArmSLA(s.slaTable, time.Now())

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.postSystemMessage(ctx, ticket, domain.ThreadAll,
		fmt.Sprintf("Report held for manual review (composite score %.1f). A verification analyst will follow up.", result.Composite),
		false)

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    systemEventActor(),
		Payload: events.TicketCreatedPayload{
			ReportID:  report.ID,
			Priority:  ticket.Priority,
			Composite: result.Composite,
			Decision:  result.Decision,
		},
	})
	return ticket, nil
}

// GetTicket loads a ticket enforcing roster-based access.
func (s *TicketService) GetTicket(ctx context.Context, actor Actor, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.checkTicketAccess(ctx, actor, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// ResolveRoster returns the canonical participant set for a ticket. Every
// mutating operation consults this, never a caller-supplied snapshot.
func (s *TicketService) ResolveRoster(ctx context.Context, ticket *domain.Ticket) (domain.Roster, error) {
	additional, err := s.participants.ListByTicket(ctx, ticket.ID, true)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	return domain.BuildRoster(ticket, additional), nil
}

// ListMessages returns thread messages visible to the actor. With no
// thread filter, all threads the role may read are merged in order.
func (s *TicketService) ListMessages(ctx context.Context, actor Actor, ticketID string, thread *domain.Thread) ([]domain.Message, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.checkTicketAccess(ctx, actor, ticket); err != nil {
		return nil, err
	}
	if thread != nil {
		if !domain.ValidThread(*thread) {
			return nil, errorutil.NewValidationError("unknown thread", map[string]any{"thread": *thread})
		}
		if !domain.CanAccessThread(actor.Role, *thread) {
			return nil, errorutil.NewForbidden("thread not visible to role")
		}
	}
	msgs, err := s.messages.ListByTicket(ctx, ticketID, thread)
	if err != nil {
		return nil, errorutil.MapError(err)
	}

	visible := make([]domain.Message, 0, len(msgs))
	for _, msg := range msgs {
		if !domain.CanAccessThread(actor.Role, msg.Thread) {
			continue
		}
		if msg.IsInternal && !actor.IsStaff() {
			continue
		}
		visible = append(visible, msg)
	}
	return visible, nil
}

// ThreadCounts derives per-thread message counts for the threads visible
// to the actor.
func (s *TicketService) ThreadCounts(ctx context.Context, actor Actor, ticketID string) (map[domain.Thread]int, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.checkTicketAccess(ctx, actor, ticket); err != nil {
		return nil, err
	}
	counts, err := s.messages.CountByThread(ctx, ticketID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	visible := make(map[domain.Thread]int, len(counts))
	for _, thread := range domain.AllowedThreads(actor.Role) {
		visible[thread] = counts[thread]
	}
	return visible, nil
}

// SendMessage appends a message to a ticket thread after role, roster and
// status checks. The first non-internal analyst or authority message
// stamps responded_at.
func (s *TicketService) SendMessage(ctx context.Context, actor Actor, ticketID string, thread domain.Thread, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errorutil.NewValidationError("content required", nil)
	}
	if !domain.ValidThread(thread) {
		return nil, errorutil.NewValidationError("unknown thread", map[string]any{"thread": thread})
	}
	if !domain.CanAccessThread(actor.Role, thread) {
		return nil, errorutil.NewForbidden("thread not allowed for role")
	}

	unlock := s.locker.Lock(ticketID)
	defer unlock()

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	// Write access never exceeds read access: the same roster and
	// assignment-grant rules that gate GetTicket gate posting.
	if err := s.checkTicketAccess(ctx, actor, ticket); err != nil {
		return nil, err
	}
	if !actor.IsStaff() {
		if err := s.checkMessagingRights(ctx, ticket, actor.ID); err != nil {
			return nil, err
		}
	}

	isInternal := thread == domain.ThreadInternal
	if ticket.IsSettled() && !isInternal {
		return nil, errorutil.NewInvalidStateTransition("ticket is settled; only internal notes are accepted", map[string]any{
			"status": ticket.Status,
		})
	}

	senderID := actor.ID
	msg := &domain.Message{
		TicketID:   ticket.ID,
		Thread:     thread,
		SenderID:   &senderID,
		SenderRole: actor.Role,
		Content:    content,
		IsInternal: isInternal,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, errorutil.MapError(err)
	}

	if !isInternal && ticket.RespondedAt == nil &&
		(actor.Role == domain.RoleAnalyst || actor.Role == domain.RoleAuthority) {
		now := time.Now()
		ticket.RespondedAt = &now
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return nil, errorutil.MapError(err)
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventMessageAdded,
		TicketID: ticket.ID,
		Actor:    actor.eventActor(),
		Payload: events.MessageAddedPayload{
			MessageID:      msg.ID,
			Thread:         msg.Thread,
			SenderRole:     msg.SenderRole,
			ContentPreview: contentPreview(msg.Content, 120),
		},
	})
	return msg, nil
}

// UpdateStatus moves a ticket along the declared status graph. Escalation
// has its own entry point carrying a target and reason, so escalated is
// rejected here.
func (s *TicketService) UpdateStatus(ctx context.Context, actor Actor, ticketID string, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	if !actor.IsStaff() {
		return nil, errorutil.NewForbidden("staff role required")
	}
	if newStatus == domain.TicketStatusEscalated {
		return nil, errorutil.NewValidationError("use the escalate operation to move a ticket to escalated", nil)
	}

	unlock := s.locker.Lock(ticketID)
	defer unlock()

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !domain.IsValidTransition(ticket.Status, newStatus) {
		return nil, errorutil.NewInvalidStateTransition("status transition not allowed", map[string]any{
			"from": ticket.Status,
			"to":   newStatus,
		})
	}

	oldStatus := ticket.Status
	ticket.Status = newStatus
	switch newStatus {
	case domain.TicketStatusAssigned:
		if actor.Role == domain.RoleAnalyst && ticket.AssignedAnalystID == nil {
			analystID := actor.ID
			ticket.AssignedAnalystID = &analystID
		}
	case domain.TicketStatusResolved:
		now := time.Now()
		ticket.ResolvedAt = &now
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, errorutil.MapError(err)
	}

	s.recordHistory(ctx, actor, ticket.ID, repository.ChangeTypeStatus,
		map[string]any{"status": oldStatus},
		map[string]any{"status": newStatus})
	s.postSystemMessage(ctx, ticket, domain.ThreadAll,
		fmt.Sprintf("Status changed from %s to %s.", oldStatus, newStatus), false)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    actor.eventActor(),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})
	return ticket, nil
}

// ListHistory returns the audit trail for a ticket. Staff only.
func (s *TicketService) ListHistory(ctx context.Context, actor Actor, ticketID string, limit, offset int) ([]repository.TicketHistory, error) {
	if !actor.IsStaff() {
		return nil, errorutil.NewForbidden("staff role required")
	}
	if _, err := s.loadTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByTicket(ctx, ticketID, limit, offset)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	return entries, nil
}

// transitionLocked applies a transition for callers that already hold the
// ticket lock (escalation). The caller is responsible for persisting.
func (s *TicketService) transitionLocked(ticket *domain.Ticket, to domain.TicketStatus) error {
	if !domain.IsValidTransition(ticket.Status, to) {
		return errorutil.NewInvalidStateTransition("status transition not allowed", map[string]any{
			"from": ticket.Status,
			"to":   to,
		})
	}
	ticket.Status = to
	return nil
}

func (s *TicketService) checkMessagingRights(ctx context.Context, ticket *domain.Ticket, userID string) error {
	if ticket.ReporterID == userID {
		return nil
	}
	additional, err := s.participants.ListByTicket(ctx, ticket.ID, true)
	if err != nil {
		return errorutil.MapError(err)
	}
	for _, p := range additional {
		if p.UserID == userID {
			if !p.CanMessage {
				return errorutil.NewForbidden("participant has no messaging rights")
			}
			return nil
		}
	}
	return nil
}

// checkTicketAccess grants analysts and admins global read access;
// citizens and authorities must appear on the roster or hold an
// assignment grant.
func (s *TicketService) checkTicketAccess(ctx context.Context, actor Actor, ticket *domain.Ticket) error {
	if actor.Role == domain.RoleAnalyst || actor.Role == domain.RoleAdmin {
		return nil
	}
	roster, err := s.ResolveRoster(ctx, ticket)
	if err != nil {
		return err
	}
	if roster.Contains(actor.ID) {
		return nil
	}
	if actor.Role == domain.RoleAuthority {
		assignments, err := s.assignments.ListByTicket(ctx, ticket.ID)
		if err != nil {
			return errorutil.MapError(err)
		}
		for _, a := range assignments {
			if a.AuthorityID == actor.ID {
				return nil
			}
		}
	}
	return errorutil.NewForbidden("no access to this ticket")
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, errorutil.MapError(err)
	}
	return ticket, nil
}

// postSystemMessage writes a system-authored message. System messages
// bypass sender checks but stay thread-scoped, and are the only
// participant-visible writes allowed by status transitions themselves.
func (s *TicketService) postSystemMessage(ctx context.Context, ticket *domain.Ticket, thread domain.Thread, content string, isInternal bool) {
	msg := &domain.Message{
		TicketID:   ticket.ID,
		Thread:     thread,
		SenderID:   nil,
		SenderRole: domain.RoleSystem,
		Content:    content,
		IsInternal: isInternal,
	}
	// System notes are best-effort; the triggering transition already
	// committed.
	if err := s.messages.Create(ctx, msg); err != nil {
		s.logger.Warn("system message write failed",
			zap.String("ticket_id", ticket.ID),
			zap.String("thread", string(thread)),
			zap.Error(err))
	}
}

func (s *TicketService) recordHistory(ctx context.Context, actor Actor, ticketID string, changeType repository.TicketChangeType, oldValue, newValue map[string]any) {
	if s.history == nil {
		return
	}
	actorID := actor.ID
	entry := &repository.TicketHistory{
		TicketID:   ticketID,
		ActorRole:  actor.Role,
		ActorID:    &actorID,
		ChangeType: changeType,
		OldValue:   oldValue,
		NewValue:   newValue,
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Warn("history write failed",
			zap.String("ticket_id", ticketID),
			zap.String("change_type", string(changeType)),
			zap.Error(err))
	}
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
}

func contentPreview(content string, max int) string {
	content = strings.TrimSpace(content)
	if len(content) <= max {
		return content
	}
	if max <= 3 {
		return content[:max]
	}
	return content[:max-3] + "..."
}
