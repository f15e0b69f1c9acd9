package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// Pinger is implemented by the persistent store.
type Pinger interface {
    Ping(ctx context.Context) error
}

// Health returns a health-check endpoint used by load balancers and
// monitoring systems.  It answers 200 "ok" while the store responds and
// 503 otherwise.
func Health(store Pinger) echo.HandlerFunc {
    return func(c echo.Context) error {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()
        if err := store.Ping(ctx); err != nil {
            return c.String(http.StatusServiceUnavailable, "store unavailable")
        }
        return c.String(http.StatusOK, "ok")
    }
}
