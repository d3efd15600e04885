package middleware

import (
	"strings"

	"edutrack/identity"
	"edutrack/models"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const principalKey = "principal"

// Auth verifies the bearer token and stores the caller in the request
// context. The local users row is refreshed from the token so joins can
// resolve names and emails.
func Auth(verifier identity.Verifier, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Missing or invalid Authorization header", nil)
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid Authorization header format", nil)
		}

		principal, err := verifier.Verify(c.UserContext(), strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid or expired token", nil)
		}

		if err := syncUser(c, db, principal); err != nil {
			log.Warn().Err(err).Str("user_id", principal.UserID).Msg("user sync failed")
		}

		c.Locals(principalKey, principal)
		return c.Next()
	}
}

func syncUser(c *fiber.Ctx, db *gorm.DB, p identity.Principal) error {
	if db == nil {
		return nil
	}
	user := models.User{ID: p.UserID, FullName: p.Name, Email: p.Email}
	return db.WithContext(c.UserContext()).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"full_name", "email", "updated_at"}),
	}).Create(&user).Error
}

// CurrentPrincipal returns the caller stored by Auth.
func CurrentPrincipal(c *fiber.Ctx) (identity.Principal, bool) {
	p, ok := c.Locals(principalKey).(identity.Principal)
	return p, ok
}
