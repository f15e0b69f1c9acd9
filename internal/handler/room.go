package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-booking/internal/model"
)

type createRoomRequest struct {
    Name       string `json:"name"`
    TotalSeats int    `json:"total_seats"`
}

type resizeRoomRequest struct {
    TotalSeats int `json:"total_seats"`
}

// CreateRoom handles POST /v1/rooms.
func (h *Handler) CreateRoom(c echo.Context) error {
    var body createRoomRequest
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    room, err := h.Rooms.CreateRoom(c.Request().Context(), body.Name, body.TotalSeats)
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusCreated, room)
}

// ListRooms handles GET /v1/rooms.
func (h *Handler) ListRooms(c echo.Context) error {
    rooms, err := h.Rooms.ListRooms(c.Request().Context())
    if err != nil {
        return h.fail(c, err)
    }
    if rooms == nil {
        rooms = []model.Room{}
    }
    return c.JSON(http.StatusOK, echo.Map{"rooms": rooms})
}

// GetRoom handles GET /v1/rooms/:id.
func (h *Handler) GetRoom(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return badRequest(c, "invalid room id")
    }
    room, err := h.Rooms.GetRoom(c.Request().Context(), id)
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusOK, room)
}

// ResizeRoom handles PATCH /v1/rooms/:id.  The seat grid is regenerated;
// the call fails with 409 while the room has active reservations.
func (h *Handler) ResizeRoom(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return badRequest(c, "invalid room id")
    }
    var body resizeRoomRequest
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    room, err := h.Rooms.ResizeRoom(c.Request().Context(), id, body.TotalSeats)
    if err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusOK, room)
}

// RemoveRoom handles DELETE /v1/rooms/:id.
func (h *Handler) RemoveRoom(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return badRequest(c, "invalid room id")
    }
    if err := h.Rooms.RemoveRoom(c.Request().Context(), id); err != nil {
        return h.fail(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}
