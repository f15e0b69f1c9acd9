package service

import (
    "context"
    "log/slog"
    "slices"

    "github.com/cockroachdb/errors"
    "github.com/google/uuid"

    "github.com/iliyamo/cinema-booking/internal/apperr"
    "github.com/iliyamo/cinema-booking/internal/model"
    "github.com/iliyamo/cinema-booking/internal/queue"
    "github.com/iliyamo/cinema-booking/internal/repository"
)

// msgSeatsTaken is returned whenever any requested seat is already bound.
const msgSeatsTaken = "one or more selected seats are taken"

// ReservationCoordinator books and cancels seats for showtimes.  Each
// booking is all-or-nothing: the reservation, its seat bindings and the
// capacity decrement commit together or not at all.
type ReservationCoordinator struct {
    store     repository.Store
    scheduler *ShowtimeScheduler
    index     *SeatAvailabilityIndex
    prices    PriceTable
    publisher queue.Publisher
    clock     Clock
    logger    *slog.Logger
}

func NewReservationCoordinator(store repository.Store, scheduler *ShowtimeScheduler, index *SeatAvailabilityIndex,
    prices PriceTable, publisher queue.Publisher, clock Clock, logger *slog.Logger) *ReservationCoordinator {
    return &ReservationCoordinator{
        store:     store,
        scheduler: scheduler,
        index:     index,
        prices:    prices,
        publisher: publisher,
        clock:     clock,
        logger:    logger,
    }
}

// CreateReservation books seatIDs for userID.  Duplicate ids collapse to
// one seat.  The showtime row is locked while the seats are checked and
// bound; the unique index on active bindings rejects whatever a racing
// transaction slips past the pre-check.
func (c *ReservationCoordinator) CreateReservation(ctx context.Context, showtimeID uint64, seatIDs []uint64, userID uuid.UUID) (*model.Reservation, error) {
    if userID == uuid.Nil {
        return nil, apperr.InvalidArgument("user id is required")
    }
    ids := dedupe(seatIDs)
    if len(ids) == 0 {
        return nil, apperr.InvalidArgument("at least one seat is required")
    }

    now := c.clock.Now()
    var (
        res *model.Reservation
        st  *model.Showtime
    )
    err := c.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
        var err error
        if st, err = c.scheduler.lockShowtime(ctx, tx, showtimeID); err != nil {
            return err
        }
        if !now.Before(st.StartsAt) {
            return apperr.InvalidState("showtime %d already started", showtimeID)
        }
        if err := c.index.verifySeats(ctx, tx, st.RoomID, ids); err != nil {
            return err
        }
        taken, err := c.index.TakenAmong(ctx, tx, st.ID, ids)
        if err != nil {
            return err
        }
        if len(taken) > 0 {
            return apperr.Conflict(msgSeatsTaken).WithField("taken_seat_ids", taken)
        }

        res = &model.Reservation{
            ShowtimeID: st.ID,
            UserID:     userID,
            PriceCents: c.prices.Price(len(ids)),
            SeatIDs:    ids,
            CreatedAt:  now,
        }
        if err := tx.Reservations().Create(ctx, res); err != nil {
            if errors.Is(err, repository.ErrDuplicateBinding) {
                return apperr.Conflict(msgSeatsTaken)
            }
            return err
        }
        if err := tx.Showtimes().DecrementCapacity(ctx, st.ID, len(ids)); err != nil {
            if errors.Is(err, repository.ErrCapacityExhausted) {
                return apperr.Conflict("showtime %d has only %d seats left", st.ID, st.RemainingCapacity)
            }
            return err
        }
        return nil
    })
    if err != nil {
        return nil, apperr.From(err, "create reservation")
    }

    c.logger.Info("reservation created", "reservation_id", res.ID, "showtime_id", st.ID,
        "seats", len(ids), "price_cents", res.PriceCents)
    publish(ctx, c.publisher, c.logger, reservationEvent(queue.EventReservationCreated, *res, *st, now))
    return res, nil
}

// CancelReservation releases the seats of a reservation and restores the
// showtime's capacity.  Only allowed before the showtime starts.
func (c *ReservationCoordinator) CancelReservation(ctx context.Context, reservationID uint64) error {
    now := c.clock.Now()
    var (
        res *model.Reservation
        st  *model.Showtime
    )
    err := c.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
        var err error
        if res, err = tx.Reservations().Get(ctx, reservationID); err != nil {
            return notFoundAs(err, "reservation %d not found", reservationID)
        }
        if st, err = c.scheduler.lockShowtime(ctx, tx, res.ShowtimeID); err != nil {
            return err
        }
        if !now.Before(st.StartsAt) {
            return apperr.InvalidState("showtime already started")
        }
        // A concurrent cancel of the same reservation loses here.
        if err := tx.Reservations().Cancel(ctx, reservationID, now); err != nil {
            return notFoundAs(err, "reservation %d not found", reservationID)
        }
        return tx.Showtimes().IncrementCapacity(ctx, st.ID, len(res.SeatIDs))
    })
    if err != nil {
        return apperr.From(err, "cancel reservation")
    }

    c.logger.Info("reservation cancelled", "reservation_id", reservationID, "showtime_id", st.ID)
    publish(ctx, c.publisher, c.logger, reservationEvent(queue.EventReservationCancelled, *res, *st, now))
    return nil
}

// ListByUser returns the active reservations of userID.
func (c *ReservationCoordinator) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Reservation, error) {
    var list []model.Reservation
    err := c.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
        var err error
        list, err = tx.Reservations().ListActiveByUser(ctx, userID)
        return err
    })
    if err != nil {
        return nil, apperr.From(err, "list reservations by user")
    }
    return list, nil
}

// ListAll summarizes every active reservation.
func (c *ReservationCoordinator) ListAll(ctx context.Context) (*model.ReservationSummary, error) {
    var list []model.Reservation
    err := c.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
        var err error
        list, err = tx.Reservations().ListActive(ctx)
        return err
    })
    if err != nil {
        return nil, apperr.From(err, "list reservations")
    }

    summary := &model.ReservationSummary{TotalReservations: len(list), Reservations: list}
    if summary.Reservations == nil {
        summary.Reservations = []model.Reservation{}
    }
    for _, r := range list {
        summary.RevenueCents += r.PriceCents
    }
    return summary, nil
}

// dedupe returns the distinct ids in ascending order.  Binding seats in a
// fixed order keeps concurrent transactions from locking index entries in
// opposite orders.
func dedupe(ids []uint64) []uint64 {
    out := slices.Clone(ids)
    slices.Sort(out)
    return slices.Compact(out)
}
