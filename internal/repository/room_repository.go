package repository // rooms table access

import (
    "context"
    "time"

    "github.com/cockroachdb/errors"

    "github.com/iliyamo/cinema-booking/internal/model"
)

type roomRepo struct {
    c sqlConn
}

const roomColumns = `id, name, total_seats, created_at`

func scanRoom(row interface{ Scan(...any) error }) (*model.Room, error) {
    var r model.Room
    if err := row.Scan(&r.ID, &r.Name, &r.TotalSeats, &r.CreatedAt); err != nil {
        return nil, err
    }
    return &r, nil
}

// Create inserts the room and sets its generated ID.
func (r *roomRepo) Create(ctx context.Context, room *model.Room) error {
    const q = `INSERT INTO rooms (name, total_seats, created_at) VALUES (?, ?, ?)`
    id, err := r.c.insert(ctx, q, room.Name, room.TotalSeats, room.CreatedAt.UTC())
    if err != nil {
        return errors.Wrap(err, "insert room")
    }
    room.ID = id
    return nil
}

func (r *roomRepo) Get(ctx context.Context, id uint64) (*model.Room, error) {
    const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ? AND deleted_at IS NULL`
    room, err := scanRoom(r.c.queryRow(ctx, q, id))
    if err != nil {
        return nil, notFound(err, "get room")
    }
    return room, nil
}

// Lock reads the room with FOR UPDATE so concurrent schedulers and
// resizes of the same room queue behind this transaction.
func (r *roomRepo) Lock(ctx context.Context, id uint64) (*model.Room, error) {
    const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ? AND deleted_at IS NULL FOR UPDATE`
    room, err := scanRoom(r.c.queryRow(ctx, q, id))
    if err != nil {
        return nil, notFound(err, "lock room")
    }
    return room, nil
}

// UpdateTotalSeats expects the caller to hold the room lock.  The row
// count is not checked: MySQL reports changed rows, which is zero when
// the size stays the same.
func (r *roomRepo) UpdateTotalSeats(ctx context.Context, id uint64, totalSeats int) error {
    const q = `UPDATE rooms SET total_seats = ? WHERE id = ? AND deleted_at IS NULL`
    if _, err := r.c.exec(ctx, q, totalSeats, id); err != nil {
        return errors.Wrap(err, "update room seats")
    }
    return nil
}

func (r *roomRepo) ListActive(ctx context.Context) ([]model.Room, error) {
    const q = `SELECT ` + roomColumns + ` FROM rooms WHERE deleted_at IS NULL ORDER BY id`
    rows, err := r.c.query(ctx, q)
    if err != nil {
        return nil, errors.Wrap(err, "list rooms")
    }
    defer rows.Close()

    var result []model.Room
    for rows.Next() {
        room, err := scanRoom(rows)
        if err != nil {
            return nil, errors.Wrap(err, "scan room")
        }
        result = append(result, *room)
    }
    if err := rows.Err(); err != nil {
        return nil, errors.Wrap(err, "list rooms")
    }
    return result, nil
}

func (r *roomRepo) Tombstone(ctx context.Context, id uint64, at time.Time) error {
    const q = `UPDATE rooms SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`
    res, err := r.c.exec(ctx, q, at.UTC(), id)
    if err != nil {
        return errors.Wrap(err, "tombstone room")
    }
    return requireAffected(res)
}
