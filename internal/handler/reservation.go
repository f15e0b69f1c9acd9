package handler

import (
    "net/http"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-booking/internal/model"
)

type createReservationRequest struct {
    ShowtimeID uint64   `json:"showtime_id"`
    SeatIDs    []uint64 `json:"seat_ids"`
    UserID     string   `json:"user_id"`
}

// CreateReservation handles POST /v1/reservations.  Either every seat is
// booked or none is: 409 means at least one seat was already taken and
// lists the taken ids under details.taken_seat_ids.
func (h *Handler) CreateReservation(c echo.Context) error {
    var body createReservationRequest
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    if body.ShowtimeID == 0 {
        return badRequest(c, "showtime_id is required")
    }
    userID, err := uuid.Parse(body.UserID)
    if err != nil {
        return badRequest(c, "user_id must be a UUID")
    }
    res, err := h.Reservations.CreateReservation(c.Request().Context(), body.ShowtimeID, body.SeatIDs, userID)
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusCreated, res)
}

// CancelReservation handles DELETE /v1/reservations/:id.  Cancelling is
// refused with 409 once the showtime has started.
func (h *Handler) CancelReservation(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return badRequest(c, "invalid reservation id")
    }
    if err := h.Reservations.CancelReservation(c.Request().Context(), id); err != nil {
        return h.fail(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// ListUserReservations handles GET /v1/users/:user_id/reservations.
func (h *Handler) ListUserReservations(c echo.Context) error {
    userID, err := uuid.Parse(c.Param("user_id"))
    if err != nil {
        return badRequest(c, "user_id must be a UUID")
    }
    list, err := h.Reservations.ListByUser(c.Request().Context(), userID)
    if err != nil {
        return h.fail(c, err)
    }
    if list == nil {
        list = []model.Reservation{}
    }
    return c.JSON(http.StatusOK, echo.Map{"reservations": list})
}

// ReservationSummary handles GET /v1/reservations.
func (h *Handler) ReservationSummary(c echo.Context) error {
    summary, err := h.Reservations.ListAll(c.Request().Context())
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusOK, summary)
}
