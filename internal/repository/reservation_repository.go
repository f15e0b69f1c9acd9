package repository // reservations and seat_bindings table access

import (
    "context"
    "strings"
    "time"

    "github.com/cockroachdb/errors"
    "github.com/google/uuid"

    "github.com/iliyamo/cinema-booking/internal/database"
    "github.com/iliyamo/cinema-booking/internal/model"
)

type reservationRepo struct {
    c sqlConn
}

const reservationColumns = `id, showtime_id, user_id, price_cents, created_at`

// activeBinding is the predicate for a binding that still takes its seat.
const activeBinding = `b.active IS NOT NULL AND r.deleted_at IS NULL`

// Create inserts the reservation row followed by its bindings.  A unique
// violation on the bindings means another transaction won the seat.
func (r *reservationRepo) Create(ctx context.Context, res *model.Reservation) error {
    const q = `INSERT INTO reservations (showtime_id, user_id, price_cents, created_at) VALUES (?, ?, ?, ?)`
    id, err := r.c.insert(ctx, q, res.ShowtimeID, res.UserID, res.PriceCents, res.CreatedAt.UTC())
    if err != nil {
        return errors.Wrap(err, "insert reservation")
    }
    res.ID = id
    if len(res.SeatIDs) == 0 {
        return nil
    }

    var b strings.Builder
    b.WriteString(`INSERT INTO seat_bindings (reservation_id, showtime_id, seat_id) VALUES `)
    args := make([]any, 0, len(res.SeatIDs)*3)
    for i, seatID := range res.SeatIDs {
        if i > 0 {
            b.WriteString(",")
        }
        b.WriteString("(?, ?, ?)")
        args = append(args, res.ID, res.ShowtimeID, seatID)
    }
    if _, err := r.c.exec(ctx, b.String(), args...); err != nil {
        if database.IsUniqueViolation(err) {
            return ErrDuplicateBinding
        }
        return errors.Wrap(err, "insert seat bindings")
    }
    return nil
}

func (r *reservationRepo) Get(ctx context.Context, id uint64) (*model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ? AND deleted_at IS NULL`
    var res model.Reservation
    err := r.c.queryRow(ctx, q, id).Scan(&res.ID, &res.ShowtimeID, &res.UserID, &res.PriceCents, &res.CreatedAt)
    if err != nil {
        return nil, notFound(err, "get reservation")
    }
    list := []model.Reservation{res}
    if err := r.attachSeats(ctx, list); err != nil {
        return nil, err
    }
    return &list[0], nil
}

// Cancel tombstones the reservation and clears the active marker of its
// bindings so the unique index no longer holds the seats.
func (r *reservationRepo) Cancel(ctx context.Context, id uint64, at time.Time) error {
    const q = `UPDATE reservations SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`
    res, err := r.c.exec(ctx, q, at.UTC(), id)
    if err != nil {
        return errors.Wrap(err, "tombstone reservation")
    }
    if err := requireAffected(res); err != nil {
        return err
    }
    const release = `UPDATE seat_bindings SET active = NULL WHERE reservation_id = ?`
    if _, err := r.c.exec(ctx, release, id); err != nil {
        return errors.Wrap(err, "release seat bindings")
    }
    return nil
}

func (r *reservationRepo) ListActiveByShowtime(ctx context.Context, showtimeID uint64) ([]model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations
               WHERE showtime_id = ? AND deleted_at IS NULL ORDER BY id`
    return r.list(ctx, q, showtimeID)
}

func (r *reservationRepo) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations
               WHERE user_id = ? AND deleted_at IS NULL ORDER BY id`
    return r.list(ctx, q, userID)
}

func (r *reservationRepo) ListActive(ctx context.Context) ([]model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE deleted_at IS NULL ORDER BY id`
    return r.list(ctx, q)
}

func (r *reservationRepo) TakenSeatIDs(ctx context.Context, showtimeID uint64, filter []uint64) ([]uint64, error) {
    q := `SELECT b.seat_id FROM seat_bindings b
          JOIN reservations r ON r.id = b.reservation_id
          WHERE b.showtime_id = ? AND ` + activeBinding
    args := []any{showtimeID}
    if filter != nil {
        if len(filter) == 0 {
            return nil, nil
        }
        q += ` AND b.seat_id IN (` + placeholders(len(filter)) + `)`
        args = append(args, idArgs(filter)...)
    }
    q += ` ORDER BY b.seat_id`

    rows, err := r.c.query(ctx, q, args...)
    if err != nil {
        return nil, errors.Wrap(err, "taken seats")
    }
    defer rows.Close()
    var ids []uint64
    for rows.Next() {
        var id uint64
        if err := rows.Scan(&id); err != nil {
            return nil, errors.Wrap(err, "scan taken seat")
        }
        ids = append(ids, id)
    }
    if err := rows.Err(); err != nil {
        return nil, errors.Wrap(err, "taken seats")
    }
    return ids, nil
}

func (r *reservationRepo) CountActiveByRoom(ctx context.Context, roomID uint64) (int, error) {
    const q = `SELECT COUNT(*) FROM reservations r
               JOIN showtimes s ON s.id = r.showtime_id
               WHERE s.room_id = ? AND s.deleted_at IS NULL AND r.deleted_at IS NULL`
    var n int
    if err := r.c.queryRow(ctx, q, roomID).Scan(&n); err != nil {
        return 0, errors.Wrap(err, "count reservations")
    }
    return n, nil
}

func (r *reservationRepo) list(ctx context.Context, q string, args ...any) ([]model.Reservation, error) {
    rows, err := r.c.query(ctx, q, args...)
    if err != nil {
        return nil, errors.Wrap(err, "list reservations")
    }
    defer rows.Close()

    var result []model.Reservation
    for rows.Next() {
        var res model.Reservation
        if err := rows.Scan(&res.ID, &res.ShowtimeID, &res.UserID, &res.PriceCents, &res.CreatedAt); err != nil {
            return nil, errors.Wrap(err, "scan reservation")
        }
        result = append(result, res)
    }
    if err := rows.Err(); err != nil {
        return nil, errors.Wrap(err, "list reservations")
    }
    if err := r.attachSeats(ctx, result); err != nil {
        return nil, err
    }
    return result, nil
}

// attachSeats fills SeatIDs from the bindings with one query.
func (r *reservationRepo) attachSeats(ctx context.Context, list []model.Reservation) error {
    if len(list) == 0 {
        return nil
    }
    index := make(map[uint64]int, len(list))
    ids := make([]uint64, len(list))
    for i := range list {
        list[i].CreatedAt = list[i].CreatedAt.UTC()
        index[list[i].ID] = i
        ids[i] = list[i].ID
    }
    q := `SELECT reservation_id, seat_id FROM seat_bindings
          WHERE reservation_id IN (` + placeholders(len(ids)) + `) ORDER BY reservation_id, seat_id`
    rows, err := r.c.query(ctx, q, idArgs(ids)...)
    if err != nil {
        return errors.Wrap(err, "list seat bindings")
    }
    defer rows.Close()
    for rows.Next() {
        var resID, seatID uint64
        if err := rows.Scan(&resID, &seatID); err != nil {
            return errors.Wrap(err, "scan seat binding")
        }
        i := index[resID]
        list[i].SeatIDs = append(list[i].SeatIDs, seatID)
    }
    return errors.Wrap(rows.Err(), "list seat bindings")
}
