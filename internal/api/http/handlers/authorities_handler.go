package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civicwatch/hazard-service/internal/api/dto"
	"github.com/civicwatch/hazard-service/internal/service"
	apperrors "github.com/civicwatch/hazard-service/pkg/util/errorutil"
)

// AuthoritiesHandler exposes the authority directory and worklist grants.
type AuthoritiesHandler struct {
	assignments *service.AssignmentService
}

// NewAuthoritiesHandler constructs handler.
func NewAuthoritiesHandler(assignments *service.AssignmentService) *AuthoritiesHandler {
	return &AuthoritiesHandler{assignments: assignments}
}

// Search GET /authorities.
func (h *AuthoritiesHandler) Search(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	limit, offset := parsePagination(c)
	authorities, err := h.assignments.SearchAuthorities(c.UserContext(), actor, c.Query("search"), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.AuthorityResponse, 0, len(authorities))
	for i := range authorities {
		items = append(items, authorityResponse(&authorities[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Assign POST /tickets/:id/authority.
func (h *AuthoritiesHandler) Assign(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.AssignAuthorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AuthorityID == "" {
		return apperrors.NewValidationError("authority_id required", nil)
	}
	assignment, err := h.assignments.Assign(c.UserContext(), actor, c.Params("id"), req.AuthorityID, req.Message)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.AssignmentResponse{
		ID:          assignment.ID,
		TicketID:    assignment.TicketID,
		AuthorityID: assignment.AuthorityID,
		Message:     assignment.Message,
		AssignedAt:  assignment.AssignedAt,
	}})
}

// Worklist GET /authorities/worklist.
func (h *AuthoritiesHandler) Worklist(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	limit, offset := parsePagination(c)
	tickets, err := h.assignments.Worklist(c.UserContext(), actor, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
