package handler

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/seat-commit-coordinator/internal/middleware"
    "github.com/iliyamo/seat-commit-coordinator/internal/service"
)

// Coordinator is the subset of *service.Coordinator the booking routes use.
type Coordinator interface {
    SeatMap(ctx context.Context, showID uint64) (*service.SeatMap, error)
    Hold(ctx context.Context, req service.HoldRequest) (*service.HoldResult, error)
    Commit(ctx context.Context, req service.CommitRequest) (*service.CommitResult, error)
    Summary(ctx context.Context, showID uint64) (*service.Summary, error)
}

// BookingHandler serves the /api/bookings routes.
type BookingHandler struct {
    svc Coordinator
    log *zap.Logger
}

// NewBookingHandler panics on a nil coordinator, like the other constructors
// that are only called from main.
func NewBookingHandler(svc Coordinator, log *zap.Logger) *BookingHandler {
    if svc == nil {
        panic("nil coordinator passed to NewBookingHandler")
    }
    if log == nil {
        log = zap.NewNop()
    }
    return &BookingHandler{svc: svc, log: log.With(zap.String("component", "booking-handler"))}
}

// SeatMap handles GET /api/bookings/status/:showId.
func (h *BookingHandler) SeatMap(c echo.Context) error {
    showID, ok := parseShowID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "A valid Show ID is required"})
    }
    m, err := h.svc.SeatMap(c.Request().Context(), showID)
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusOK, m)
}

// Hold handles POST /api/bookings/hold.  The body names a show, one or more
// seats and the claimant; when the route is behind JWTAuth the claimant is
// the token subject.
func (h *BookingHandler) Hold(c echo.Context) error {
    body, claimant, rerr := h.bind(c)
    if rerr != nil {
        return c.JSON(rerr.status, rerr.body)
    }
    res, err := h.svc.Hold(c.Request().Context(), service.HoldRequest{
        ShowID:     body.ShowID,
        Seats:      body.SeatNumber,
        ClaimantID: claimant,
    })
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "message":   fmt.Sprintf("Success! %d seat(s) are reserved for you for %s. Please complete your booking.", len(res.Seats), service.HumanDuration(res.TTL)),
        "seats":     res.Seats,
        "expiresAt": res.ExpiresAt,
    })
}

// Confirm handles POST /api/bookings/confirm.  A new booking answers 201;
// repeating a confirmation that already succeeded answers 200.
func (h *BookingHandler) Confirm(c echo.Context) error {
    body, claimant, rerr := h.bind(c)
    if rerr != nil {
        return c.JSON(rerr.status, rerr.body)
    }
    res, err := h.svc.Commit(c.Request().Context(), service.CommitRequest{
        ShowID:     body.ShowID,
        Seats:      body.SeatNumber,
        ClaimantID: claimant,
    })
    if err != nil {
        return h.fail(c, err)
    }
    ids := make([]string, len(res.Bookings))
    for i, b := range res.Bookings {
        ids[i] = b.ID
    }
    if res.AlreadyConfirmed {
        return c.JSON(http.StatusOK, echo.Map{
            "message":    "Your booking is already confirmed. Enjoy your movie!",
            "seats":      res.Seats,
            "bookingIds": ids,
        })
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "message":    "Booking confirmed! Your tickets are ready.",
        "seats":      res.Seats,
        "bookingIds": ids,
    })
}

// Summary handles GET /api/bookings/summary/:showId.
func (h *BookingHandler) Summary(c echo.Context) error {
    showID, ok := parseShowID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "A valid Show ID is required"})
    }
    s, err := h.svc.Summary(c.Request().Context(), showID)
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusOK, s)
}

// requestError is a response decided before the coordinator is called.
type requestError struct {
    status int
    body   echo.Map
}

func missingInput(fields map[string]string) *requestError {
    body := echo.Map{"error": "Unable to proceed. Missing show, seat, or user information."}
    if fields != nil {
        body["fields"] = fields
    }
    return &requestError{status: http.StatusBadRequest, body: body}
}

// bind decodes and validates a hold/confirm body and resolves the claimant.
func (h *BookingHandler) bind(c echo.Context) (*seatRequest, string, *requestError) {
    var body seatRequest
    if err := c.Bind(&body); err != nil {
        return nil, "", missingInput(nil)
    }
    if fields := validateStruct(&body); fields != nil {
        return nil, "", missingInput(fields)
    }

    claimant := strings.TrimSpace(body.UserID)
    if authed := middleware.ClaimantID(c); authed != "" {
        if claimant != "" && claimant != authed {
            return nil, "", &requestError{
                status: http.StatusForbidden,
                body:   echo.Map{"error": "userId does not match the authenticated user"},
            }
        }
        claimant = authed
    }
    if claimant == "" {
        return nil, "", missingInput(map[string]string{"userId": "This field is required"})
    }
    return &body, claimant, nil
}

// fail maps a coordinator error onto a status code and message.  Anything
// not recognised is an internal error: logged, and answered generically.
func (h *BookingHandler) fail(c echo.Context, err error) error {
    seats := service.SeatsOf(err)
    first := ""
    if len(seats) > 0 {
        first = seats[0]
    }
    var status int
    var msg string
    switch {
    case errors.Is(err, service.ErrInvalidInput):
        status, msg = http.StatusBadRequest, "Unable to proceed. Missing show, seat, or user information."
    case errors.Is(err, service.ErrInvalidSeat):
        status, msg = http.StatusBadRequest, fmt.Sprintf("Seat(s) %s do not exist for this show.", strings.Join(seats, ", "))
    case errors.Is(err, service.ErrNotFound):
        status, msg = http.StatusNotFound, "Show not found"
    case errors.Is(err, service.ErrAlreadyBooked):
        status, msg = http.StatusBadRequest, fmt.Sprintf("Sorry, seat %s has just been sold. Please select another seat.", first)
    case errors.Is(err, service.ErrConflict):
        status, msg = http.StatusConflict, "One of your selected seats is currently being held or has been purchased by another user. Please try again in a moment."
    case errors.Is(err, service.ErrLostRace):
        status, msg = http.StatusConflict, "This seat was just purchased by another customer."
    case errors.Is(err, service.ErrHoldExpired):
        status, msg = http.StatusGone, fmt.Sprintf("Your session for seat %s has expired. Please select your seats again.", first)
    case errors.Is(err, service.ErrNotYourHold):
        status, msg = http.StatusForbidden, fmt.Sprintf("Seat %s is no longer reserved for you.", first)
    default:
        h.log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal Server Error"})
    }
    resp := echo.Map{"error": msg}
    if len(seats) > 0 {
        resp["seats"] = seats
    }
    return c.JSON(status, resp)
}

func parseShowID(c echo.Context) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param("showId"), 10, 64)
    return id, err == nil && id > 0
}
