// Package queue carries reservation events over RabbitMQ: the publisher
// used by the booking services and the audit consumer that appends
// every event to logs/booking.log.
package queue

import (
    "context"
    "time"
)

// Event types.
const (
    EventReservationCreated   = "reservation.created"
    EventReservationCancelled = "reservation.cancelled"
)

// ReservationEvent is published after a reservation is committed or
// cancelled.  It carries enough for downstream consumers to log or
// notify without querying the primary database.
type ReservationEvent struct {
    Type          string    `json:"type"`
    ReservationID uint64    `json:"reservation_id"`
    ShowtimeID    uint64    `json:"showtime_id"`
    RoomID        uint64    `json:"room_id"`
    UserID        string    `json:"user_id"`
    SeatIDs       []uint64  `json:"seat_ids"`
    PriceCents    int64     `json:"price_cents"`
    StartsAt      time.Time `json:"starts_at"`
    OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher delivers reservation events.
type Publisher interface {
    Publish(ctx context.Context, ev ReservationEvent) error
}

// NopPublisher drops every event.  It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ReservationEvent) error { return nil }
