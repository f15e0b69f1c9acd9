package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/cockroachdb/errors"

    "github.com/iliyamo/cinema-booking/internal/database"
)

// SQLStore is the Store backed by MySQL or PostgreSQL.
type SQLStore struct {
    db      *sql.DB
    dialect database.Dialect
}

// NewSQLStore wraps an open connection pool.
func NewSQLStore(db *sql.DB, dialect database.Dialect) *SQLStore {
    return &SQLStore{db: db, dialect: dialect}
}

// WithinTx begins a transaction, runs fn and commits.  The transaction is
// rolled back when fn returns an error or panics.
func (s *SQLStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return errors.Wrap(err, "begin tx")
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    if err := fn(ctx, &sqlTx{conn: sqlConn{tx: tx, d: s.dialect}}); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return errors.Wrap(err, "commit tx")
    }
    committed = true
    return nil
}

// Ping checks the connection pool.
func (s *SQLStore) Ping(ctx context.Context) error {
    return s.db.PingContext(ctx)
}

type sqlTx struct {
    conn sqlConn
}

func (t *sqlTx) Rooms() RoomRepository               { return &roomRepo{t.conn} }
func (t *sqlTx) Seats() SeatRepository               { return &seatRepo{t.conn} }
func (t *sqlTx) Showtimes() ShowtimeRepository       { return &showtimeRepo{t.conn} }
func (t *sqlTx) Reservations() ReservationRepository { return &reservationRepo{t.conn} }

// sqlConn runs "?" placeholder queries against the transaction in the
// store's dialect.
type sqlConn struct {
    tx *sql.Tx
    d  database.Dialect
}

func (c sqlConn) exec(ctx context.Context, q string, args ...any) (sql.Result, error) {
    return c.tx.ExecContext(ctx, c.d.Rebind(q), args...)
}

func (c sqlConn) query(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
    return c.tx.QueryContext(ctx, c.d.Rebind(q), args...)
}

func (c sqlConn) queryRow(ctx context.Context, q string, args ...any) *sql.Row {
    return c.tx.QueryRowContext(ctx, c.d.Rebind(q), args...)
}

func (c sqlConn) insert(ctx context.Context, q string, args ...any) (uint64, error) {
    return c.d.InsertID(ctx, c.tx, q, args...)
}

// placeholders returns "?, ?, ..." with n markers.
func placeholders(n int) string {
    if n <= 0 {
        return ""
    }
    return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func idArgs(ids []uint64) []any {
    args := make([]any, len(ids))
    for i, id := range ids {
        args[i] = id
    }
    return args
}

// notFound maps sql.ErrNoRows to ErrNotFound and wraps anything else.
func notFound(err error, msg string) error {
    if errors.Is(err, sql.ErrNoRows) {
        return ErrNotFound
    }
    return errors.Wrap(err, msg)
}

// requireAffected turns an UPDATE that touched nothing into ErrNotFound.
func requireAffected(res sql.Result) error {
    n, err := res.RowsAffected()
    if err != nil {
        return errors.Wrap(err, "rows affected")
    }
    if n == 0 {
        return ErrNotFound
    }
    return nil
}
