package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole returns a middleware that enforces that the
// authenticated user has one of the given roles, as stored in the
// JWT's "role" claim by JWTAuth. Requests with a missing or
// unlisted role are rejected with 403 Forbidden.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
