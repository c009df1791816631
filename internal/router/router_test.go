package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/seat-commit-coordinator/internal/handler"
	"github.com/iliyamo/seat-commit-coordinator/internal/service"
)

// stubCoordinator answers every call with ErrNotFound; only routing is under test.
type stubCoordinator struct{}

func (stubCoordinator) SeatMap(context.Context, uint64) (*service.SeatMap, error) {
	return nil, service.ErrNotFound
}
func (stubCoordinator) Hold(context.Context, service.HoldRequest) (*service.HoldResult, error) {
	return nil, service.ErrNotFound
}
func (stubCoordinator) Commit(context.Context, service.CommitRequest) (*service.CommitResult, error) {
	return nil, service.ErrNotFound
}
func (stubCoordinator) Summary(context.Context, uint64) (*service.Summary, error) {
	return nil, service.ErrNotFound
}

func serve(e *echo.Echo, method, path, body string) int {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code
}

func TestRoutes(t *testing.T) {
	e := echo.New()
	RegisterRoutes(e, nil)
	RegisterBookings(e, handler.NewBookingHandler(stubCoordinator{}, nil), Options{JWTSecret: "s"})

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/healthz", ""))
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/readyz", ""))
	assert.Equal(t, http.StatusNotFound, serve(e, http.MethodGet, "/api/bookings/status/1", ""))
	assert.Equal(t, http.StatusNotFound, serve(e, http.MethodGet, "/api/bookings/summary/1", ""))

	body := `{"showId":1,"seatNumber":"S1","userId":"u1"}`
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodPost, "/api/bookings/hold", body))
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodPost, "/api/bookings/confirm", body))
}

func TestRoutes_OpenWritesWithoutSecret(t *testing.T) {
	e := echo.New()
	RegisterBookings(e, handler.NewBookingHandler(stubCoordinator{}, nil), Options{})

	body := `{"showId":1,"seatNumber":"S1","userId":"u1"}`
	assert.Equal(t, http.StatusNotFound, serve(e, http.MethodPost, "/api/bookings/hold", body))
}
