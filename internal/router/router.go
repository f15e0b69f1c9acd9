package router // package router defines how HTTP routes are registered for the API

import (
    "log/slog"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/cinema-booking/internal/config"
    "github.com/iliyamo/cinema-booking/internal/handler"
    "github.com/iliyamo/cinema-booking/internal/middleware"
)

// Options carries the optional infrastructure the routes are wrapped with.
// A nil Redis client disables caching and rate limiting; an empty
// JWTSecret leaves the management routes open.
type Options struct {
    JWTSecret string
    Redis     *redis.Client
    Cache     config.CacheConfig
    RateLimit config.RateLimitConfig
    Logger    *slog.Logger
}

// Register maps every booking endpoint onto e.
func Register(e *echo.Echo, h *handler.Handler, store handler.Pinger, opts Options) {
    logger := opts.Logger
    if logger == nil {
        logger = slog.Default()
    }

    e.GET("/healthz", handler.Health(store))

    cache := middleware.NewRedisCache(opts.Cache, opts.Redis, logger)
    invalidate := middleware.InvalidateCache(opts.Cache, opts.Redis, logger)
    limit := middleware.NewTokenBucket(opts.RateLimit, opts.Redis, logger)

    v1 := e.Group("/v1")

    // Management routes: rooms and showtime writes.
    manage := []echo.MiddlewareFunc{invalidate}
    if opts.JWTSecret != "" {
        manage = append([]echo.MiddlewareFunc{
            middleware.JWTAuth(opts.JWTSecret),
            middleware.RequireRole("OWNER"),
        }, manage...)
    }
    v1.POST("/rooms", h.CreateRoom, manage...)
    v1.PATCH("/rooms/:id", h.ResizeRoom, manage...)
    v1.DELETE("/rooms/:id", h.RemoveRoom, manage...)
    v1.POST("/showtimes", h.CreateShowtime, manage...)
    v1.DELETE("/showtimes/:id", h.CancelShowtime, manage...)

    v1.GET("/rooms", h.ListRooms, cache)
    v1.GET("/rooms/:id", h.GetRoom, cache)
    v1.GET("/showtimes", h.ListShowtimes, cache)
    v1.GET("/showtimes/:id", h.FindShowtime, cache)

    // Seat maps always come from the store.  A cache fill racing an
    // invalidation would show a booked seat as free until the TTL.
    v1.GET("/showtimes/:id/seats", h.AvailableSeats)
    v1.GET("/showtimes/:id/seats/:ubication", h.SeatStatus)

    // Reservation reads go straight to the store.
    v1.POST("/reservations", h.CreateReservation, limit, invalidate)
    v1.DELETE("/reservations/:id", h.CancelReservation, limit, invalidate)
    v1.GET("/reservations", h.ReservationSummary)
    v1.GET("/users/:user_id/reservations", h.ListUserReservations)
}
