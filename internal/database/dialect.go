package database

import (
    "context"
    "database/sql"
    "strconv"
    "strings"

    "github.com/cockroachdb/errors"
    "github.com/go-sql-driver/mysql"
    "github.com/jackc/pgx/v5/pgconn"
)

// Dialect captures the differences between MySQL and PostgreSQL that the
// repositories care about.  Queries are written with "?" placeholders
// and rebound for PostgreSQL.
type Dialect struct {
    Name       string
    driverName string
    numbered   bool
}

var (
    MySQL    = Dialect{Name: "mysql", driverName: "mysql"}
    Postgres = Dialect{Name: "postgres", driverName: "pgx", numbered: true}
)

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
    switch name {
    case "mysql":
        return MySQL, nil
    case "postgres":
        return Postgres, nil
    }
    return Dialect{}, errors.Newf("unsupported sql driver %q", name)
}

// Rebind rewrites "?" placeholders into "$1, $2, ..." for PostgreSQL.
func (d Dialect) Rebind(q string) string {
    if !d.numbered {
        return q
    }
    var b strings.Builder
    b.Grow(len(q) + 8)
    n := 0
    for i := 0; i < len(q); i++ {
        if q[i] == '?' {
            n++
            b.WriteByte('$')
            b.WriteString(strconv.Itoa(n))
            continue
        }
        b.WriteByte(q[i])
    }
    return b.String()
}

// Querier is the subset of *sql.Tx used by InsertID.
type Querier interface {
    ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
    QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// InsertID executes an INSERT and returns the generated id.  MySQL
// reports it through LastInsertId; PostgreSQL needs RETURNING.
func (d Dialect) InsertID(ctx context.Context, q Querier, query string, args ...any) (uint64, error) {
    if d.numbered {
        var id uint64
        err := q.QueryRowContext(ctx, d.Rebind(query+" RETURNING id"), args...).Scan(&id)
        return id, err
    }
    res, err := q.ExecContext(ctx, query, args...)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// IsUniqueViolation reports whether err was caused by a unique index.
func IsUniqueViolation(err error) bool {
    var myErr *mysql.MySQLError
    if errors.As(err, &myErr) {
        return myErr.Number == 1062
    }
    var pgErr *pgconn.PgError
    if errors.As(err, &pgErr) {
        return pgErr.Code == "23505"
    }
    return false
}
