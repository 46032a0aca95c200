package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civicwatch/hazard-service/internal/api/dto"
	"github.com/civicwatch/hazard-service/internal/domain"
	"github.com/civicwatch/hazard-service/internal/service"
	apperrors "github.com/civicwatch/hazard-service/pkg/util/errorutil"
)

// EscalationsHandler exposes escalation targeting and execution.
type EscalationsHandler struct {
	escalations *service.EscalationService
}

// NewEscalationsHandler constructs handler.
func NewEscalationsHandler(escalations *service.EscalationService) *EscalationsHandler {
	return &EscalationsHandler{escalations: escalations}
}

// GetTargets GET /tickets/:id/escalation-targets.
func (h *EscalationsHandler) GetTargets(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	targets, err := h.escalations.GetTargets(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.AuthorityResponse, 0, len(targets))
	for i := range targets {
		items = append(items, authorityResponse(&targets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Escalate POST /tickets/:id/escalate.
func (h *EscalationsHandler) Escalate(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.EscalateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ToUserID == "" {
		return apperrors.NewValidationError("to_user_id required", nil)
	}
	ticket, err := h.escalations.Escalate(c.UserContext(), actor, c.Params("id"), req.ToUserID, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// History GET /tickets/:id/escalations.
func (h *EscalationsHandler) History(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	records, err := h.escalations.History(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.EscalationResponse, 0, len(records))
	for _, record := range records {
		items = append(items, dto.EscalationResponse{
			ID:         record.ID,
			TicketID:   record.TicketID,
			FromUserID: record.FromUserID,
			ToUserID:   record.ToUserID,
			Reason:     record.Reason,
			CreatedAt:  record.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func authorityResponse(a *domain.Authority) dto.AuthorityResponse {
	return dto.AuthorityResponse{
		UserID:       a.UserID,
		Name:         a.Name,
		Organization: a.Organization,
		Region:       a.Region,
		HazardTypes:  a.HazardTypes,
		Active:       a.Active,
	}
}
