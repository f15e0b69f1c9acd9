package database

import (
    "context"
    "database/sql"
    "time"

    "github.com/cockroachdb/errors"
    _ "github.com/go-sql-driver/mysql"
    _ "github.com/jackc/pgx/v5/stdlib"
)

// Open connects to the configured SQL server and verifies the connection.
// driver is "mysql" or "postgres".
func Open(driver, dsn string) (*sql.DB, Dialect, error) {
    dialect, err := DialectFor(driver)
    if err != nil {
        return nil, Dialect{}, err
    }
    db, err := sql.Open(dialect.driverName, dsn)
    if err != nil {
        return nil, Dialect{}, err
    }

    // Pool settings
    db.SetMaxOpenConns(25)
    db.SetMaxIdleConns(25)
    db.SetConnMaxLifetime(30 * time.Minute)

    // Ping with timeout
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := db.PingContext(ctx); err != nil {
        _ = db.Close()
        return nil, Dialect{}, errors.Wrapf(err, "ping %s", driver)
    }
    return db, dialect, nil
}
