package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"
)

// Recover turns a panic in a handler into a 500 and logs it with the stack.
func Recover(log *zap.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) (err error) {
            defer func() {
                if r := recover(); r != nil {
                    if r == http.ErrAbortHandler {
                        panic(r)
                    }
                    log.Error("PANIC recovered",
                        zap.Any("error", r),
                        zap.String("path", c.Request().URL.Path),
                        zap.String("method", c.Request().Method),
                        zap.Stack("stack"),
                    )
                    err = echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
                }
            }()
            return next(c)
        }
    }
}
