package middleware

import (
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    "go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger logs one line per request with its outcome.  An incoming
// X-Request-ID is kept, otherwise a fresh UUID is assigned and echoed back.
func RequestLogger(log *zap.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            req := c.Request()

            rid := req.Header.Get(requestIDHeader)
            if rid == "" {
                rid = uuid.NewString()
            }
            c.Response().Header().Set(requestIDHeader, rid)

            err := next(c)
            if err != nil {
                // let echo's error handler write the response so the status is known
                c.Error(err)
            }

            fields := []zap.Field{
                zap.String("request_id", rid),
                zap.String("method", req.Method),
                zap.String("path", c.Path()),
                zap.String("uri", req.RequestURI),
                zap.Int("status", c.Response().Status),
                zap.Int64("bytes", c.Response().Size),
                zap.Duration("duration", time.Since(start)),
                zap.String("ip", c.RealIP()),
            }
            if id := ClaimantID(c); id != "" {
                fields = append(fields, zap.String("claimant_id", id))
            }
            switch s := c.Response().Status; {
            case s >= 500:
                log.Error("HTTP request", append(fields, zap.Error(err))...)
            case s >= 400:
                log.Warn("HTTP request", fields...)
            default:
                log.Info("HTTP request", fields...)
            }
            return nil
        }
    }
}
