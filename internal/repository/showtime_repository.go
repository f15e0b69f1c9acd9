package repository // showtimes table access

import (
    "context"
    "time"

    "github.com/cockroachdb/errors"

    "github.com/iliyamo/cinema-booking/internal/model"
)

type showtimeRepo struct {
    c sqlConn
}

const showtimeColumns = `id, movie_id, room_id, starts_at, duration_minutes, remaining_capacity, created_at`

func scanShowtime(row interface{ Scan(...any) error }) (*model.Showtime, error) {
    var s model.Showtime
    if err := row.Scan(&s.ID, &s.MovieID, &s.RoomID, &s.StartsAt, &s.DurationMinutes,
        &s.RemainingCapacity, &s.CreatedAt); err != nil {
        return nil, err
    }
    s.StartsAt = s.StartsAt.UTC()
    s.CreatedAt = s.CreatedAt.UTC()
    return &s, nil
}

func (r *showtimeRepo) Create(ctx context.Context, s *model.Showtime) error {
    const q = `INSERT INTO showtimes (movie_id, room_id, starts_at, duration_minutes, remaining_capacity, created_at)
               VALUES (?, ?, ?, ?, ?, ?)`
    id, err := r.c.insert(ctx, q, s.MovieID, s.RoomID, s.StartsAt.UTC(), s.DurationMinutes,
        s.RemainingCapacity, s.CreatedAt.UTC())
    if err != nil {
        return errors.Wrap(err, "insert showtime")
    }
    s.ID = id
    return nil
}

func (r *showtimeRepo) Get(ctx context.Context, id uint64) (*model.Showtime, error) {
    const q = `SELECT ` + showtimeColumns + ` FROM showtimes WHERE id = ? AND deleted_at IS NULL`
    s, err := scanShowtime(r.c.queryRow(ctx, q, id))
    if err != nil {
        return nil, notFound(err, "get showtime")
    }
    return s, nil
}

// Lock serializes reservation create/cancel on the same showtime.
func (r *showtimeRepo) Lock(ctx context.Context, id uint64) (*model.Showtime, error) {
    const q = `SELECT ` + showtimeColumns + ` FROM showtimes WHERE id = ? AND deleted_at IS NULL FOR UPDATE`
    s, err := scanShowtime(r.c.queryRow(ctx, q, id))
    if err != nil {
        return nil, notFound(err, "lock showtime")
    }
    return s, nil
}

func (r *showtimeRepo) ListActiveByRoom(ctx context.Context, roomID uint64) ([]model.Showtime, error) {
    const q = `SELECT ` + showtimeColumns + ` FROM showtimes
               WHERE room_id = ? AND deleted_at IS NULL ORDER BY starts_at, id`
    return r.list(ctx, q, roomID)
}

func (r *showtimeRepo) LockActiveByRoom(ctx context.Context, roomID uint64) ([]model.Showtime, error) {
    const q = `SELECT ` + showtimeColumns + ` FROM showtimes
               WHERE room_id = ? AND deleted_at IS NULL ORDER BY id FOR UPDATE`
    return r.list(ctx, q, roomID)
}

func (r *showtimeRepo) ListActive(ctx context.Context) ([]model.Showtime, error) {
    const q = `SELECT ` + showtimeColumns + ` FROM showtimes WHERE deleted_at IS NULL ORDER BY starts_at, id`
    return r.list(ctx, q)
}

func (r *showtimeRepo) Tombstone(ctx context.Context, id uint64, at time.Time) error {
    const q = `UPDATE showtimes SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`
    res, err := r.c.exec(ctx, q, at.UTC(), id)
    if err != nil {
        return errors.Wrap(err, "tombstone showtime")
    }
    return requireAffected(res)
}

// DecrementCapacity is a guarded update: it only matches while enough
// capacity remains, so the counter never goes negative.
func (r *showtimeRepo) DecrementCapacity(ctx context.Context, id uint64, n int) error {
    const q = `UPDATE showtimes SET remaining_capacity = remaining_capacity - ?
               WHERE id = ? AND deleted_at IS NULL AND remaining_capacity >= ?`
    res, err := r.c.exec(ctx, q, n, id, n)
    if err != nil {
        return errors.Wrap(err, "decrement capacity")
    }
    if err := requireAffected(res); err != nil {
        if errors.Is(err, ErrNotFound) {
            return ErrCapacityExhausted
        }
        return err
    }
    return nil
}

func (r *showtimeRepo) IncrementCapacity(ctx context.Context, id uint64, n int) error {
    const q = `UPDATE showtimes SET remaining_capacity = remaining_capacity + ? WHERE id = ?`
    res, err := r.c.exec(ctx, q, n, id)
    if err != nil {
        return errors.Wrap(err, "increment capacity")
    }
    return requireAffected(res)
}

func (r *showtimeRepo) ResetCapacityByRoom(ctx context.Context, roomID uint64, capacity int) error {
    const q = `UPDATE showtimes SET remaining_capacity = ? WHERE room_id = ? AND deleted_at IS NULL`
    if _, err := r.c.exec(ctx, q, capacity, roomID); err != nil {
        return errors.Wrap(err, "reset capacity")
    }
    return nil
}

func (r *showtimeRepo) list(ctx context.Context, q string, args ...any) ([]model.Showtime, error) {
    rows, err := r.c.query(ctx, q, args...)
    if err != nil {
        return nil, errors.Wrap(err, "list showtimes")
    }
    defer rows.Close()

    var result []model.Showtime
    for rows.Next() {
        s, err := scanShowtime(rows)
        if err != nil {
            return nil, errors.Wrap(err, "scan showtime")
        }
        result = append(result, *s)
    }
    if err := rows.Err(); err != nil {
        return nil, errors.Wrap(err, "list showtimes")
    }
    return result, nil
}
