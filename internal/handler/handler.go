package handler // handler defines http handlers

import (
    "log/slog"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-booking/internal/apperr"
    "github.com/iliyamo/cinema-booking/internal/service"
)

// Handler exposes the booking services over HTTP.  Every method assumes
// that any authentication required for its route was enforced by
// middleware.  Expected failures are rendered from the *apperr.Error
// kind; anything else is logged and answered with 500.
type Handler struct {
    Rooms        *service.RoomCatalog
    Showtimes    *service.ShowtimeScheduler
    Seats        *service.SeatAvailabilityIndex
    Reservations *service.ReservationCoordinator
    Logger       *slog.Logger
}

// New constructs a Handler and panics if any dependency is nil.
func New(rooms *service.RoomCatalog, showtimes *service.ShowtimeScheduler, seats *service.SeatAvailabilityIndex,
    reservations *service.ReservationCoordinator, logger *slog.Logger) *Handler {
    if rooms == nil || showtimes == nil || seats == nil || reservations == nil || logger == nil {
        panic("nil dependency passed to handler.New")
    }
    return &Handler{
        Rooms:        rooms,
        Showtimes:    showtimes,
        Seats:        seats,
        Reservations: reservations,
        Logger:       logger,
    }
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
    Error   string         `json:"error"`
    Kind    apperr.Kind    `json:"kind"`
    Details map[string]any `json:"details,omitempty"`
}

// fail renders err.  Internal errors are logged with their stack and
// answered with a generic message.
func (h *Handler) fail(c echo.Context, err error) error {
    e := apperr.From(err, "unhandled")
    if e.Kind == apperr.KindInternal {
        h.Logger.Error("request failed",
            "method", c.Request().Method,
            "path", c.Path(),
            "error", apperr.Detail(e.Unwrap()))
    }
    return c.JSON(e.HTTPStatus(), errorBody{Error: e.Message, Kind: e.Kind, Details: e.Fields})
}

func badRequest(c echo.Context, msg string) error {
    return c.JSON(http.StatusBadRequest, errorBody{Error: msg, Kind: apperr.KindInvalidArgument})
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, false
    }
    return id, true
}
