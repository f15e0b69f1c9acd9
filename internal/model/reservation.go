package model

import (
    "time"

    "github.com/google/uuid"
)

// Reservation records one booking transaction of a user for a showtime.
// The seats it holds are stored as SeatBinding rows created in the same
// transaction as the reservation itself.  Cancelling a reservation sets
// DeletedAt; bindings of a cancelled reservation no longer count as
// taking their seat.
//
// Fields:
//  ID         – primary key identifier.
//  ShowtimeID – showtime being reserved.
//  UserID     – external user identifier.
//  PriceCents – total price of the booking in cents.
//  SeatIDs    – seats bound to this reservation (read back from bindings).
//  CreatedAt  – creation timestamp.
//  DeletedAt  – tombstone set on cancellation.
type Reservation struct {
    ID         uint64     `json:"id"`          // reservations.id
    ShowtimeID uint64     `json:"showtime_id"` // reservations.showtime_id
    UserID     uuid.UUID  `json:"user_id"`     // reservations.user_id
    PriceCents int64      `json:"price_cents"` // reservations.price_cents
    SeatIDs    []uint64   `json:"seat_ids"`    // seat_bindings.seat_id
    CreatedAt  time.Time  `json:"created_at"`  // reservations.created_at
    DeletedAt  *time.Time `json:"-"`           // reservations.deleted_at (nullable)
}

// Active reports whether the reservation has not been cancelled.
func (r Reservation) Active() bool { return r.DeletedAt == nil }

// SeatBinding links a seat to a reservation for a showtime.  A seat is
// taken for a showtime when a binding exists whose reservation is active.
type SeatBinding struct {
    SeatID        uint64 // seat_bindings.seat_id
    ReservationID uint64 // seat_bindings.reservation_id
    ShowtimeID    uint64 // seat_bindings.showtime_id
}

// ReservationSummary aggregates every active reservation.
type ReservationSummary struct {
    RevenueCents      int64         `json:"revenue_cents"`
    TotalReservations int           `json:"total_reservations"`
    Reservations      []Reservation `json:"reservations"`
}
