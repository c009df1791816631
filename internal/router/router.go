package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/seat-commit-coordinator/internal/handler"    // booking and health handlers
	"github.com/iliyamo/seat-commit-coordinator/internal/middleware" // JWT authentication and rate limiting
)

// Options controls how the booking routes are protected.
type Options struct {
	// JWTSecret, when set, requires a bearer token on the write routes and
	// makes its subject the claimant.
	JWTSecret string
	// RateLimit wraps the write routes; nil disables it.
	RateLimit echo.MiddlewareFunc
}

// RegisterRoutes registers the health endpoints on the provided Echo instance.
func RegisterRoutes(e *echo.Echo, checks map[string]handler.Pinger) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(checks))
}

// RegisterBookings registers the seat map, hold, confirm and summary routes
// under /api/bookings.  Reads are public; hold and confirm go through the
// optional JWT check first and the rate limiter second, so the limiter can
// key on the authenticated claimant.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, opts Options) {
	g := e.Group("/api/bookings")
	g.GET("/status/:showId", h.SeatMap)
	g.GET("/summary/:showId", h.Summary)

	var write []echo.MiddlewareFunc
	if opts.JWTSecret != "" {
		write = append(write, middleware.JWTAuth(opts.JWTSecret))
	}
	if opts.RateLimit != nil {
		write = append(write, opts.RateLimit)
	}
	g.POST("/hold", h.Hold, write...)
	g.POST("/confirm", h.Confirm, write...)
}
