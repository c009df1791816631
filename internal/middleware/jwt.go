package middleware

import (
    "net/http"
    "strings"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
)

// JWTAuth returns an Echo middleware that validates an HS256 Bearer token
// and stores its subject as the claimant identity of the request.  Handlers
// read it back with ClaimantID.  Requests without a valid token, or with a
// token that has no subject, are rejected with 401.
func JWTAuth(secret string) echo.MiddlewareFunc {
    keyFunc := func(*jwt.Token) (interface{}, error) { return []byte(secret), nil }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            // only HMAC-SHA256 is accepted; "none" and asymmetric algs are refused
            claims := &jwt.RegisteredClaims{}
            tok, err := jwt.ParseWithClaims(raw, claims, keyFunc, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            if claims.Subject == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }

            c.Set(claimantKey, claims.Subject)
            return next(c)
        }
    }
}
