package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// RequireRole returns a middleware that only lets callers with the given role
// through. It must run after Auth.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := CurrentPrincipal(c)
		if !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User ID not found", nil)
		}
		if principal.Role != role {
			return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
		}
		return c.Next()
	}
}

// HasRole reports whether the authenticated caller carries role.
func HasRole(c *fiber.Ctx, role string) bool {
	principal, ok := CurrentPrincipal(c)
	return ok && principal.Role == role
}

// IsSelfOrRole reports whether the caller is userID or carries role.
func IsSelfOrRole(c *fiber.Ctx, userID, role string) bool {
	principal, ok := CurrentPrincipal(c)
	if !ok {
		return false
	}
	return (userID != "" && principal.UserID == userID) || principal.Role == role
}

func Forbidden(c *fiber.Ctx) error {
	return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
}
