// Package catalog provides read access to the movie catalog.  The booking
// core only needs a movie's duration (to place showtimes) and its title
// (to label listings); movies are ingested elsewhere.
package catalog

//go:generate mockgen -source=catalog.go -destination=mock/catalog_mock.go -package=mock

import (
    "context"
    "database/sql"
    "encoding/json"
    "os"

    "github.com/cockroachdb/errors"

    "github.com/iliyamo/cinema-booking/internal/database"
    "github.com/iliyamo/cinema-booking/internal/model"
)

// ErrMovieNotFound is returned for unknown movie ids.
var ErrMovieNotFound = errors.New("movie not found")

// MovieCatalog resolves movie attributes by id.
type MovieCatalog interface {
    MovieDuration(ctx context.Context, movieID uint64) (int, error)
    MovieTitle(ctx context.Context, movieID uint64) (string, error)
}

// SQLCatalog reads the movies table.
type SQLCatalog struct {
    db *sql.DB
    d  database.Dialect
}

func NewSQLCatalog(db *sql.DB, d database.Dialect) *SQLCatalog {
    return &SQLCatalog{db: db, d: d}
}

func (c *SQLCatalog) movie(ctx context.Context, id uint64) (*model.Movie, error) {
    q := c.d.Rebind(`SELECT id, title, duration_minutes FROM movies WHERE id = ?`)
    var m model.Movie
    if err := c.db.QueryRowContext(ctx, q, id).Scan(&m.ID, &m.Title, &m.DurationMinutes); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrMovieNotFound
        }
        return nil, errors.Wrapf(err, "get movie %d", id)
    }
    return &m, nil
}

func (c *SQLCatalog) MovieDuration(ctx context.Context, movieID uint64) (int, error) {
    m, err := c.movie(ctx, movieID)
    if err != nil {
        return 0, err
    }
    return m.DurationMinutes, nil
}

func (c *SQLCatalog) MovieTitle(ctx context.Context, movieID uint64) (string, error) {
    m, err := c.movie(ctx, movieID)
    if err != nil {
        return "", err
    }
    return m.Title, nil
}

// MemoryCatalog serves a fixed set of movies.
type MemoryCatalog struct {
    movies map[uint64]model.Movie
}

func NewMemoryCatalog(movies ...model.Movie) *MemoryCatalog {
    c := &MemoryCatalog{movies: make(map[uint64]model.Movie, len(movies))}
    for _, m := range movies {
        c.movies[m.ID] = m
    }
    return c
}

// LoadMemoryCatalog reads a JSON array of movies from path.  An empty
// path yields an empty catalog.
func LoadMemoryCatalog(path string) (*MemoryCatalog, error) {
    if path == "" {
        return NewMemoryCatalog(), nil
    }
    raw, err := os.ReadFile(path)
    if err != nil {
        return nil, errors.Wrap(err, "read movies file")
    }
    var movies []model.Movie
    if err := json.Unmarshal(raw, &movies); err != nil {
        return nil, errors.Wrap(err, "decode movies file")
    }
    return NewMemoryCatalog(movies...), nil
}

func (c *MemoryCatalog) MovieDuration(_ context.Context, movieID uint64) (int, error) {
    m, ok := c.movies[movieID]
    if !ok {
        return 0, ErrMovieNotFound
    }
    return m.DurationMinutes, nil
}

func (c *MemoryCatalog) MovieTitle(_ context.Context, movieID uint64) (string, error) {
    m, ok := c.movies[movieID]
    if !ok {
        return "", ErrMovieNotFound
    }
    return m.Title, nil
}
