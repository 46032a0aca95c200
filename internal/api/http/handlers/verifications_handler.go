package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civicwatch/hazard-service/internal/api/dto"
	"github.com/civicwatch/hazard-service/internal/domain"
	"github.com/civicwatch/hazard-service/internal/service"
	apperrors "github.com/civicwatch/hazard-service/pkg/util/errorutil"
)

// VerificationsHandler receives pipeline callbacks for report scoring.
// The route is guarded by the internal service key, not bearer auth.
type VerificationsHandler struct {
	verifications *service.VerificationService
}

// NewVerificationsHandler constructs handler.
func NewVerificationsHandler(verifications *service.VerificationService) *VerificationsHandler {
	return &VerificationsHandler{verifications: verifications}
}

// VerifyReport POST /internal/verifications.
func (h *VerificationsHandler) VerifyReport(c *fiber.Ctx) error {
	var req dto.VerifyReportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ReportID == "" {
		return apperrors.NewValidationError("report_id required", nil)
	}

	result, ticket, err := h.verifications.VerifyReport(c.UserContext(), req.ReportID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": verificationResponse(result, ticket)})
}

// History GET /internal/verifications/:reportId.
func (h *VerificationsHandler) History(c *fiber.Ctx) error {
	results, err := h.verifications.History(c.UserContext(), c.Params("reportId"))
	if err != nil {
		return err
	}
	items := make([]dto.VerificationResponse, 0, len(results))
	for i := range results {
		items = append(items, verificationResponse(&results[i], nil))
	}
	return c.JSON(fiber.Map{"data": items})
}

func verificationResponse(result *domain.VerificationResult, ticket *domain.Ticket) dto.VerificationResponse {
	layers := make([]dto.LayerResultResponse, 0, len(result.Layers))
	for _, layer := range result.Layers {
		layers = append(layers, dto.LayerResultResponse{
			Name:   layer.Name,
			Score:  layer.Score,
			Status: layer.Status,
		})
	}
	resp := dto.VerificationResponse{
		ReportID:  result.ReportID,
		Layers:    layers,
		Composite: result.Composite,
		Decision:  result.Decision,
		CreatedAt: result.CreatedAt,
	}
	if ticket != nil {
		ticketID := ticket.ID
		resp.TicketID = &ticketID
	}
	return resp
}
