package database

import (
    "context"
    "database/sql"
    "embed"
    "strings"

    "github.com/cockroachdb/errors"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Migrate creates the tables used by the booking core if they do not
// exist yet.  Statements are separated by semicolons and executed one at
// a time so the MySQL DSN does not need multiStatements.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
    raw, err := schemaFS.ReadFile("schema/" + d.Name + ".sql")
    if err != nil {
        return errors.Wrap(err, "read schema")
    }
    for _, stmt := range splitStatements(string(raw)) {
        if _, err := db.ExecContext(ctx, stmt); err != nil {
            return errors.Wrapf(err, "migrate %s", d.Name)
        }
    }
    return nil
}

func splitStatements(src string) []string {
    var lines []string
    for _, line := range strings.Split(src, "\n") {
        if strings.HasPrefix(strings.TrimSpace(line), "--") {
            continue
        }
        lines = append(lines, line)
    }
    var out []string
    for _, part := range strings.Split(strings.Join(lines, "\n"), ";") {
        if stmt := strings.TrimSpace(part); stmt != "" {
            out = append(out, stmt)
        }
    }
    return out
}
