package repository // seats table access

import (
    "context"
    "strings"
    "time"

    "github.com/cockroachdb/errors"

    "github.com/iliyamo/cinema-booking/internal/model"
)

type seatRepo struct {
    c sqlConn
}

// seatOrder sorts row-major; CHAR_LENGTH keeps row Z ahead of row AA.
const seatOrder = ` ORDER BY CHAR_LENGTH(row_label), row_label, seat_number`

// CreateBulk inserts all seats in a single statement.
func (r *seatRepo) CreateBulk(ctx context.Context, seats []model.Seat) error {
    if len(seats) == 0 {
        return nil
    }
    var b strings.Builder
    b.WriteString(`INSERT INTO seats (room_id, row_label, seat_number) VALUES `)
    args := make([]any, 0, len(seats)*3)
    for i, s := range seats {
        if i > 0 {
            b.WriteString(",")
        }
        b.WriteString("(?, ?, ?)")
        args = append(args, s.RoomID, s.Row, s.Number)
    }
    if _, err := r.c.exec(ctx, b.String(), args...); err != nil {
        return errors.Wrap(err, "insert seats")
    }
    return nil
}

func (r *seatRepo) ListActiveByRoom(ctx context.Context, roomID uint64) ([]model.Seat, error) {
    const q = `SELECT id, room_id, row_label, seat_number FROM seats
               WHERE room_id = ? AND deleted_at IS NULL` + seatOrder
    return r.list(ctx, q, roomID)
}

// ListActiveByIDs returns the subset of ids that are active seats of the
// room.  Unknown ids are silently dropped; callers compare lengths.
func (r *seatRepo) ListActiveByIDs(ctx context.Context, roomID uint64, ids []uint64) ([]model.Seat, error) {
    if len(ids) == 0 {
        return nil, nil
    }
    q := `SELECT id, room_id, row_label, seat_number FROM seats
          WHERE room_id = ? AND deleted_at IS NULL AND id IN (` + placeholders(len(ids)) + `)` + seatOrder
    args := append([]any{roomID}, idArgs(ids)...)
    return r.list(ctx, q, args...)
}

func (r *seatRepo) FindActiveByPosition(ctx context.Context, roomID uint64, row string, number int) (*model.Seat, error) {
    const q = `SELECT id, room_id, row_label, seat_number FROM seats
               WHERE room_id = ? AND row_label = ? AND seat_number = ? AND deleted_at IS NULL`
    var s model.Seat
    err := r.c.queryRow(ctx, q, roomID, row, number).Scan(&s.ID, &s.RoomID, &s.Row, &s.Number)
    if err != nil {
        return nil, notFound(err, "find seat")
    }
    return &s, nil
}

// TombstoneByRoom retires the whole grid of a room.  Old seat ids stay in
// the table so historic bindings keep their foreign keys.
func (r *seatRepo) TombstoneByRoom(ctx context.Context, roomID uint64, at time.Time) error {
    const q = `UPDATE seats SET deleted_at = ? WHERE room_id = ? AND deleted_at IS NULL`
    if _, err := r.c.exec(ctx, q, at.UTC(), roomID); err != nil {
        return errors.Wrap(err, "tombstone seats")
    }
    return nil
}

func (r *seatRepo) list(ctx context.Context, q string, args ...any) ([]model.Seat, error) {
    rows, err := r.c.query(ctx, q, args...)
    if err != nil {
        return nil, errors.Wrap(err, "list seats")
    }
    defer rows.Close()

    var result []model.Seat
    for rows.Next() {
        var s model.Seat
        if err := rows.Scan(&s.ID, &s.RoomID, &s.Row, &s.Number); err != nil {
            return nil, errors.Wrap(err, "scan seat")
        }
        result = append(result, s)
    }
    if err := rows.Err(); err != nil {
        return nil, errors.Wrap(err, "list seats")
    }
    return result, nil
}
