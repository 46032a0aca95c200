package auth

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/civicwatch/hazard-service/internal/config"
	"github.com/civicwatch/hazard-service/pkg/util/errorutil"
)

const serviceKeyHeader = "X-Service-Key"

// RequireServiceKey gates internal pipeline endpoints on a shared service
// key checked against its bcrypt hash from configuration.
func RequireServiceKey(cfg config.AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !cfg.InternalKeyEnabled {
			return c.Next()
		}
		if cfg.InternalKeyHash == "" {
			return errorutil.NewUnauthorized("internal access not configured")
		}
		key := c.Get(serviceKeyHeader)
		if key == "" {
			return errorutil.NewUnauthorized("missing service key")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(cfg.InternalKeyHash), []byte(key)); err != nil {
			return errorutil.NewUnauthorized("invalid service key")
		}
		return c.Next()
	}
}
