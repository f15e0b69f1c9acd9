// Package service implements the booking core: the room catalog, the
// showtime scheduler, the seat availability index and the reservation
// coordinator.  Every read-then-write path runs inside a single store
// transaction and returns *apperr.Error values for expected failures.
package service

import (
    "context"
    "log/slog"
    "time"

    "github.com/cockroachdb/errors"

    "github.com/iliyamo/cinema-booking/internal/apperr"
    "github.com/iliyamo/cinema-booking/internal/queue"
    "github.com/iliyamo/cinema-booking/internal/repository"
)

const publishTimeout = 3 * time.Second

// notFoundAs translates repository.ErrNotFound into a NotFound error with
// the given message and leaves any other error untouched.
func notFoundAs(err error, format string, args ...any) error {
    if errors.Is(err, repository.ErrNotFound) {
        return apperr.NotFound(format, args...)
    }
    return err
}

// publish delivers events after commit.  Failures are logged and never
// reach the caller: the reservation is already durable.
func publish(ctx context.Context, p queue.Publisher, logger *slog.Logger, events ...queue.ReservationEvent) {
    if len(events) == 0 {
        return
    }
    ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
    defer cancel()
    for _, ev := range events {
        if err := p.Publish(ctx, ev); err != nil {
            logger.Warn("publish reservation event failed",
                "type", ev.Type, "reservation_id", ev.ReservationID, "error", err)
        }
    }
}
