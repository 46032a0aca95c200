package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/civicwatch/hazard-service/internal/auth"
	"github.com/civicwatch/hazard-service/internal/service"
	apperrors "github.com/civicwatch/hazard-service/pkg/util/errorutil"
)

func actorFromContext(c *fiber.Ctx) (service.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return service.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return service.Actor{ID: principal.User.ID, Role: principal.Role}, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func parsePagination(c *fiber.Ctx) (limit, offset int) {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	return pageSize, (page - 1) * pageSize
}
