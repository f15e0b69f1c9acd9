package handler

import (
    "fmt"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-booking/internal/model"
)

type createShowtimeRequest struct {
    MovieID  uint64 `json:"movie_id"`
    RoomID   uint64 `json:"room_id"`
    StartsAt string `json:"starts_at"` // RFC3339
}

// CreateShowtime handles POST /v1/showtimes.  It answers 409 when the
// room already has an overlapping showtime.
func (h *Handler) CreateShowtime(c echo.Context) error {
    var body createShowtimeRequest
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    if body.MovieID == 0 || body.RoomID == 0 {
        return badRequest(c, "movie_id and room_id are required")
    }
    startsAt, err := time.Parse(time.RFC3339, body.StartsAt)
    if err != nil {
        return badRequest(c, "starts_at must be an RFC3339 timestamp")
    }
    st, err := h.Showtimes.Create(c.Request().Context(), body.MovieID, body.RoomID, startsAt)
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusCreated, st)
}

// CancelShowtime handles DELETE /v1/showtimes/:id.
func (h *Handler) CancelShowtime(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return badRequest(c, "invalid showtime id")
    }
    if err := h.Showtimes.Cancel(c.Request().Context(), id); err != nil {
        return h.fail(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// ListShowtimes handles GET /v1/showtimes.
func (h *Handler) ListShowtimes(c echo.Context) error {
    list, err := h.Showtimes.ListActive(c.Request().Context())
    if err != nil {
        return h.fail(c, err)
    }
    if list == nil {
        list = []model.ShowtimeListing{}
    }
    return c.JSON(http.StatusOK, echo.Map{"showtimes": list})
}

// FindShowtime handles GET /v1/showtimes/:id.
func (h *Handler) FindShowtime(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return badRequest(c, "invalid showtime id")
    }
    st, err := h.Showtimes.FindByID(c.Request().Context(), id)
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusOK, st)
}

// AvailableSeats handles GET /v1/showtimes/:id/seats.
func (h *Handler) AvailableSeats(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return badRequest(c, "invalid showtime id")
    }
    seats, err := h.Seats.AvailableSeats(c.Request().Context(), id)
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"showtime_id": id, "seats": seats})
}

// SeatStatus handles GET /v1/showtimes/:id/seats/:ubication.
func (h *Handler) SeatStatus(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return badRequest(c, "invalid showtime id")
    }
    ubication := c.Param("ubication")
    status, err := h.Seats.Status(c.Request().Context(), id, ubication)
    if err != nil {
        return h.fail(c, err)
    }
    msg := fmt.Sprintf("The seat %s is available", ubication)
    if status == model.SeatTaken {
        msg = fmt.Sprintf("The seat %s is already taken", ubication)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "showtime_id": id,
        "ubication":   ubication,
        "status":      status,
        "message":     msg,
    })
}
