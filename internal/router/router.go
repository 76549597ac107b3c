package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/DJaayy/slot-booking/internal/handler"
	"github.com/DJaayy/slot-booking/internal/middleware"
)

// RegisterRoutes registers routes that do not require
// authentication. Currently that is only the health check, used by
// load balancers and monitoring to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers registration and login under /api/auth and
// the authenticated identity endpoint at /api/me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	e.GET("/api/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterBooking registers the deployment calendar endpoints. The
// read endpoints (week view, release list, statistics) are open so
// wallboards and dashboards can poll them without a session, and
// they run behind the response cache. Mutations require a valid
// token with any known role and are rate limited.
func RegisterBooking(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, cache *middleware.Cache, limit echo.MiddlewareFunc) {
	reads := e.Group("/api", cache.Middleware())
	reads.GET("/slots", h.GetSlots)
	reads.GET("/releases", h.GetReleases)
	reads.GET("/stats", h.GetStats)

	writes := e.Group(
		"/api",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN", "MEMBER"),
	)
	if limit != nil {
		writes.Use(limit)
	}
	writes.POST("/slots/book", h.BookSlot)
	writes.DELETE("/releases/:id", h.CancelBooking)
	writes.PATCH("/releases/:id/status", h.UpdateReleaseStatus)
}

// RegisterTemplates registers email template CRUD. Reading and
// previewing requires any authenticated role; create, update and
// delete are restricted to ADMIN.
func RegisterTemplates(e *echo.Echo, t *handler.TemplateHandler, jwtSecret string) {
	reads := e.Group(
		"/api/templates",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN", "MEMBER"),
	)
	reads.GET("", t.List)
	reads.GET("/:id", t.Get)
	reads.POST("/:id/preview", t.Preview)

	admin := e.Group(
		"/api/templates",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)
	admin.POST("", t.Create)
	admin.PUT("/:id", t.Update)
	admin.DELETE("/:id", t.Delete)
}
