package service

import (
    "context"
    "slices"

    "github.com/iliyamo/cinema-booking/internal/apperr"
    "github.com/iliyamo/cinema-booking/internal/model"
    "github.com/iliyamo/cinema-booking/internal/repository"
)

// SeatAvailabilityIndex answers which seats of a showtime are free.  A
// seat is taken when an active reservation holds a binding for it.
type SeatAvailabilityIndex struct {
    store     repository.Store
    scheduler *ShowtimeScheduler
}

func NewSeatAvailabilityIndex(store repository.Store, scheduler *ShowtimeScheduler) *SeatAvailabilityIndex {
    return &SeatAvailabilityIndex{store: store, scheduler: scheduler}
}

// AvailableSeats lists the free seats of the showtime's room, row-major.
func (x *SeatAvailabilityIndex) AvailableSeats(ctx context.Context, showtimeID uint64) ([]model.Seat, error) {
    var free []model.Seat
    err := x.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
        st, err := x.scheduler.getShowtime(ctx, tx, showtimeID)
        if err != nil {
            return err
        }
        seats, err := tx.Seats().ListActiveByRoom(ctx, st.RoomID)
        if err != nil {
            return err
        }
        taken, err := tx.Reservations().TakenSeatIDs(ctx, st.ID, nil)
        if err != nil {
            return err
        }
        free = make([]model.Seat, 0, len(seats))
        for _, seat := range seats {
            if _, hit := slices.BinarySearch(taken, seat.ID); !hit {
                free = append(free, seat)
            }
        }
        return nil
    })
    if err != nil {
        return nil, apperr.From(err, "available seats")
    }
    return free, nil
}

// Status reports whether the seat at ubication (e.g. "B5") is free for
// the showtime.
func (x *SeatAvailabilityIndex) Status(ctx context.Context, showtimeID uint64, ubication string) (model.SeatStatus, error) {
    row, number, err := ParseUbication(ubication)
    if err != nil {
        return "", err
    }

    status := model.SeatAvailable
    err = x.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
        st, err := x.scheduler.getShowtime(ctx, tx, showtimeID)
        if err != nil {
            return err
        }
        seat, err := tx.Seats().FindActiveByPosition(ctx, st.RoomID, row, number)
        if err != nil {
            return notFoundAs(err, "seat %s%d not found in room %d", row, number, st.RoomID)
        }
        taken, err := x.TakenAmong(ctx, tx, st.ID, []uint64{seat.ID})
        if err != nil {
            return err
        }
        if len(taken) > 0 {
            status = model.SeatTaken
        }
        return nil
    })
    if err != nil {
        return "", apperr.From(err, "seat status")
    }
    return status, nil
}

// TakenAmong returns the subset of seatIDs already bound for the
// showtime, within the caller's transaction.
func (x *SeatAvailabilityIndex) TakenAmong(ctx context.Context, tx repository.Tx, showtimeID uint64, seatIDs []uint64) ([]uint64, error) {
    if len(seatIDs) == 0 {
        return nil, nil
    }
    return tx.Reservations().TakenSeatIDs(ctx, showtimeID, seatIDs)
}

// verifySeats fails with NotFound unless every id is an active seat of
// the room.
func (x *SeatAvailabilityIndex) verifySeats(ctx context.Context, tx repository.Tx, roomID uint64, seatIDs []uint64) error {
    seats, err := tx.Seats().ListActiveByIDs(ctx, roomID, seatIDs)
    if err != nil {
        return err
    }
    if len(seats) == len(seatIDs) {
        return nil
    }
    known := make(map[uint64]bool, len(seats))
    for _, s := range seats {
        known[s.ID] = true
    }
    var missing []uint64
    for _, id := range seatIDs {
        if !known[id] {
            missing = append(missing, id)
        }
    }
    return apperr.NotFound("seats %v do not belong to room %d", missing, roomID).
        WithField("missing_seat_ids", missing)
}
