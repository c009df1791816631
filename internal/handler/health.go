package handler // declare the package name; contains HTTP handlers

import (
    "context"  // context bounds each dependency check
    "net/http" // net/http provides status codes and response helpers
    "time"     // time sets the readiness timeout

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health is a simple liveness endpoint used by load balancers and
// monitoring systems.  It returns a plain text "ok" with status 200.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// Pinger checks one dependency, e.g. (*sql.DB).PingContext.
type Pinger func(ctx context.Context) error

// Ready reports 200 only when every named dependency answers within two
// seconds, otherwise 503 with the failing checks.
func Ready(checks map[string]Pinger) echo.HandlerFunc {
    return func(c echo.Context) error {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()
        failed := echo.Map{}
        for name, ping := range checks {
            if err := ping(ctx); err != nil {
                failed[name] = err.Error()
            }
        }
        if len(failed) > 0 {
            return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable", "checks": failed})
        }
        return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
    }
}
