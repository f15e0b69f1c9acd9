package repository

import (
    "context"
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/cinema-booking/internal/model"
)

// Store runs units of work.  fn receives a Tx whose repositories all
// share one transaction; returning an error rolls everything back.
type Store interface {
    WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
    Ping(ctx context.Context) error
}

// Tx exposes the repositories bound to a running transaction.
type Tx interface {
    Rooms() RoomRepository
    Seats() SeatRepository
    Showtimes() ShowtimeRepository
    Reservations() ReservationRepository
}

// RoomRepository persists rooms.  Get, Lock and ListActive only see
// rooms whose deleted_at is NULL.
type RoomRepository interface {
    Create(ctx context.Context, room *model.Room) error
    Get(ctx context.Context, id uint64) (*model.Room, error)
    // Lock is Get plus a row lock held until the transaction ends.
    Lock(ctx context.Context, id uint64) (*model.Room, error)
    UpdateTotalSeats(ctx context.Context, id uint64, totalSeats int) error
    ListActive(ctx context.Context) ([]model.Room, error)
    Tombstone(ctx context.Context, id uint64, at time.Time) error
}

// SeatRepository persists the seat grid of rooms.  Lists are row-major.
type SeatRepository interface {
    CreateBulk(ctx context.Context, seats []model.Seat) error
    ListActiveByRoom(ctx context.Context, roomID uint64) ([]model.Seat, error)
    ListActiveByIDs(ctx context.Context, roomID uint64, ids []uint64) ([]model.Seat, error)
    FindActiveByPosition(ctx context.Context, roomID uint64, row string, number int) (*model.Seat, error)
    TombstoneByRoom(ctx context.Context, roomID uint64, at time.Time) error
}

// ShowtimeRepository persists showtimes and their capacity counter.
type ShowtimeRepository interface {
    Create(ctx context.Context, s *model.Showtime) error
    Get(ctx context.Context, id uint64) (*model.Showtime, error)
    Lock(ctx context.Context, id uint64) (*model.Showtime, error)
    ListActiveByRoom(ctx context.Context, roomID uint64) ([]model.Showtime, error)
    // LockActiveByRoom is ListActiveByRoom with row locks on every result.
    LockActiveByRoom(ctx context.Context, roomID uint64) ([]model.Showtime, error)
    ListActive(ctx context.Context) ([]model.Showtime, error)
    Tombstone(ctx context.Context, id uint64, at time.Time) error
    // DecrementCapacity subtracts n unless that would go below zero, in
    // which case it returns ErrCapacityExhausted.
    DecrementCapacity(ctx context.Context, id uint64, n int) error
    IncrementCapacity(ctx context.Context, id uint64, n int) error
    ResetCapacityByRoom(ctx context.Context, roomID uint64, capacity int) error
}

// ReservationRepository persists reservations and their seat bindings.
type ReservationRepository interface {
    // Create inserts the reservation and one active binding per entry of
    // r.SeatIDs.  ErrDuplicateBinding is returned when a seat already has
    // an active binding for the showtime.
    Create(ctx context.Context, r *model.Reservation) error
    Get(ctx context.Context, id uint64) (*model.Reservation, error)
    // Cancel tombstones the reservation and releases its bindings.
    Cancel(ctx context.Context, id uint64, at time.Time) error
    ListActiveByShowtime(ctx context.Context, showtimeID uint64) ([]model.Reservation, error)
    ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]model.Reservation, error)
    ListActive(ctx context.Context) ([]model.Reservation, error)
    // TakenSeatIDs returns, in ascending order, the seats with an active
    // binding for the showtime.  A nil filter returns every taken seat.
    TakenSeatIDs(ctx context.Context, showtimeID uint64, filter []uint64) ([]uint64, error)
    CountActiveByRoom(ctx context.Context, roomID uint64) (int, error)
}
