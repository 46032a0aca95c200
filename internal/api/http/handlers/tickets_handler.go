package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/civicwatch/hazard-service/internal/api/dto"
	"github.com/civicwatch/hazard-service/internal/domain"
	"github.com/civicwatch/hazard-service/internal/service"
	apperrors "github.com/civicwatch/hazard-service/pkg/util/errorutil"
)

// TicketsHandler exposes ticket read, messaging, status and participant
// endpoints.
type TicketsHandler struct {
	tickets      *service.TicketService
	participants *service.ParticipantService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, participants *service.ParticipantService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, participants: participants}
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.GetTicket(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// ListMessages GET /tickets/:id/messages.
func (h *TicketsHandler) ListMessages(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var thread *domain.Thread
	if threadStr := c.Query("thread"); threadStr != "" {
		t := domain.Thread(threadStr)
		thread = &t
	}
	msgs, err := h.tickets.ListMessages(c.UserContext(), actor, c.Params("id"), thread)
	if err != nil {
		return err
	}
	items := make([]dto.MessageResponse, 0, len(msgs))
	for i := range msgs {
		items = append(items, messageResponse(&msgs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ThreadCounts GET /tickets/:id/threads.
func (h *TicketsHandler) ThreadCounts(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	counts, err := h.tickets.ThreadCounts(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": counts})
}

// SendMessage POST /tickets/:id/messages.
func (h *TicketsHandler) SendMessage(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Content) == "" {
		return apperrors.NewValidationError("content required", nil)
	}
	msg, err := h.tickets.SendMessage(c.UserContext(), actor, c.Params("id"), req.Thread, req.Content)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": messageResponse(msg)})
}

// UpdateStatus PATCH /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}
	ticket, err := h.tickets.UpdateStatus(c.UserContext(), actor, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// ListParticipants GET /tickets/:id/participants.
func (h *TicketsHandler) ListParticipants(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	includeInactive := c.Query("include_inactive") == "true"
	participants, err := h.participants.ListParticipants(c.UserContext(), actor, c.Params("id"), includeInactive)
	if err != nil {
		return err
	}
	items := make([]dto.ParticipantResponse, 0, len(participants))
	for i := range participants {
		items = append(items, participantResponse(&participants[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddParticipant POST /tickets/:id/participants.
func (h *TicketsHandler) AddParticipant(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.AddParticipantRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID == "" {
		return apperrors.NewValidationError("user_id required", nil)
	}
	participant, err := h.participants.AddParticipant(c.UserContext(), actor, c.Params("id"), req.UserID, req.CanMessage, req.Notes)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": participantResponse(participant)})
}

// RemoveParticipant DELETE /tickets/:id/participants/:userId.
func (h *TicketsHandler) RemoveParticipant(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	if err := h.participants.RemoveParticipant(c.UserContext(), actor, c.Params("id"), c.Params("userId")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListHistory GET /tickets/:id/history.
func (h *TicketsHandler) ListHistory(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	limit, offset := parsePagination(c)
	entries, err := h.tickets.ListHistory(c.UserContext(), actor, c.Params("id"), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.HistoryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.HistoryResponse{
			ID:         entry.ID,
			ChangeType: string(entry.ChangeType),
			ActorRole:  entry.ActorRole,
			ActorID:    entry.ActorID,
			OldValue:   entry.OldValue,
			NewValue:   entry.NewValue,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func ticketDetail(ticket *domain.Ticket) dto.TicketDetailResponse {
	return dto.TicketDetailResponse{
		ID:                ticket.ID,
		ReportID:          ticket.ReportID,
		Status:            ticket.Status,
		Priority:          ticket.Priority,
		ReporterID:        ticket.ReporterID,
		AssignedAnalystID: ticket.AssignedAnalystID,
		AuthorityID:       ticket.AuthorityID,
		Region:            ticket.Region,
		HazardType:        ticket.HazardType,
		ResponseDue:       ticket.ResponseDue,
		ResolutionDue:     ticket.ResolutionDue,
		RespondedAt:       ticket.RespondedAt,
		ResolvedAt:        ticket.ResolvedAt,
		IsOverdue:         ticket.IsOverdue(time.Now()),
		CreatedAt:         ticket.CreatedAt,
		UpdatedAt:         ticket.UpdatedAt,
	}
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:            ticket.ID,
		ReportID:      ticket.ReportID,
		Status:        ticket.Status,
		Priority:      ticket.Priority,
		Region:        ticket.Region,
		HazardType:    ticket.HazardType,
		ResolutionDue: ticket.ResolutionDue,
		IsOverdue:     ticket.IsOverdue(time.Now()),
		CreatedAt:     ticket.CreatedAt,
	}
}

func messageResponse(msg *domain.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:         msg.ID,
		Thread:     msg.Thread,
		SenderID:   msg.SenderID,
		SenderRole: msg.SenderRole,
		Content:    msg.Content,
		IsInternal: msg.IsInternal,
		CreatedAt:  msg.CreatedAt,
	}
}

func participantResponse(p *domain.Participant) dto.ParticipantResponse {
	return dto.ParticipantResponse{
		ID:         p.ID,
		UserID:     p.UserID,
		Role:       p.Role,
		CanMessage: p.CanMessage,
		Notes:      p.Notes,
		IsActive:   p.IsActive,
		CreatedAt:  p.CreatedAt,
	}
}
