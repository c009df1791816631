package middleware

// identity.go carries the claimant identity between middleware and handlers.
// JWTAuth is the only writer; the rate limiter and the booking handlers read it.

import (
    "github.com/labstack/echo/v4"
)

// claimantKey is the echo context key holding the authenticated claimant.
const claimantKey = "claimant_id"

// ClaimantID returns the authenticated claimant of the request, or "" when
// the route is not protected by JWTAuth.
func ClaimantID(c echo.Context) string {
    if v, ok := c.Get(claimantKey).(string); ok {
        return v
    }
    return ""
}
