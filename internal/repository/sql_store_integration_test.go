//go:build integration

package repository

import (
    "context"
    "database/sql"
    "fmt"
    "sync/atomic"
    "testing"
    "time"

    "github.com/cockroachdb/errors"
    "github.com/docker/go-connections/nat"
    "github.com/google/uuid"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "github.com/testcontainers/testcontainers-go"
    "github.com/testcontainers/testcontainers-go/wait"
    "golang.org/x/sync/errgroup"

    "github.com/iliyamo/cinema-booking/internal/database"
    "github.com/iliyamo/cinema-booking/internal/model"
)

const (
    mysqlUser     = "cinema"
    mysqlPassword = "cinema"
    mysqlDB       = "cinema"
)

func mysqlDSN(host string, port nat.Port) string {
    return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
        mysqlUser, mysqlPassword, host, port.Port(), mysqlDB)
}

// startMySQL boots a throwaway MySQL server and returns a migrated store.
func startMySQL(t *testing.T) (*SQLStore, *sql.DB) {
    t.Helper()
    ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
    defer cancel()

    req := testcontainers.ContainerRequest{
        Image:        "mysql:8.0",
        ExposedPorts: []string{"3306/tcp"},
        Env: map[string]string{
            "MYSQL_ROOT_PASSWORD": "root",
            "MYSQL_USER":          mysqlUser,
            "MYSQL_PASSWORD":      mysqlPassword,
            "MYSQL_DATABASE":      mysqlDB,
        },
        Tmpfs: map[string]string{"/var/lib/mysql": "rw"},
        WaitingFor: wait.ForSQL("3306/tcp", "mysql", mysqlDSN).
            WithStartupTimeout(2 * time.Minute),
    }
    ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
        ContainerRequest: req,
        Started:          true,
    })
    require.NoError(t, err)
    t.Cleanup(func() {
        ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
        defer cancel()
        _ = ctr.Terminate(ctx)
    })

    host, err := ctr.Host(ctx)
    require.NoError(t, err)
    port, err := ctr.MappedPort(ctx, nat.Port("3306/tcp"))
    require.NoError(t, err)

    db, dialect, err := database.Open("mysql", mysqlDSN(host, port))
    require.NoError(t, err)
    t.Cleanup(func() { _ = db.Close() })
    require.NoError(t, database.Migrate(ctx, db, dialect))
    return NewSQLStore(db, dialect), db
}

func TestSQLStore(t *testing.T) {
    store, db := startMySQL(t)
    ctx := context.Background()

    t.Run("unique index rejects a second active binding", func(t *testing.T) {
        st, seats := seedShowtime(t, store)
        book := func() error {
            return store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
                return tx.Reservations().Create(ctx, &model.Reservation{
                    ShowtimeID: st.ID, UserID: uuid.New(), PriceCents: 1199,
                    SeatIDs: []uint64{seats[0].ID}, CreatedAt: t0,
                })
            })
        }
        require.NoError(t, book())
        require.ErrorIs(t, book(), ErrDuplicateBinding)
    })

    t.Run("cancel releases the seat", func(t *testing.T) {
        st, seats := seedShowtime(t, store)
        res := &model.Reservation{ShowtimeID: st.ID, UserID: uuid.New(), PriceCents: 1199, SeatIDs: []uint64{seats[1].ID}, CreatedAt: t0}
        require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
            return tx.Reservations().Create(ctx, res)
        }))
        require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
            return tx.Reservations().Cancel(ctx, res.ID, t0)
        }))
        require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
            if err := tx.Reservations().Cancel(ctx, res.ID, t0); !errors.Is(err, ErrNotFound) {
                return errors.Newf("second cancel: %v", err)
            }
            taken, err := tx.Reservations().TakenSeatIDs(ctx, st.ID, nil)
            if err != nil {
                return err
            }
            assert.Empty(t, taken)
            return tx.Reservations().Create(ctx, &model.Reservation{
                ShowtimeID: st.ID, UserID: uuid.New(), PriceCents: 1199, SeatIDs: []uint64{seats[1].ID}, CreatedAt: t0,
            })
        }))
    })

    t.Run("guarded decrement", func(t *testing.T) {
        st, _ := seedShowtime(t, store)
        err := store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
            return tx.Showtimes().DecrementCapacity(ctx, st.ID, 4)
        })
        require.ErrorIs(t, err, ErrCapacityExhausted)
        require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
            return tx.Showtimes().DecrementCapacity(ctx, st.ID, 3)
        }))
        require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
            got, err := tx.Showtimes().Get(ctx, st.ID)
            if err != nil {
                return err
            }
            assert.Equal(t, 0, got.RemainingCapacity)
            return nil
        }))
    })

    t.Run("rollback leaves no rows", func(t *testing.T) {
        boom := errors.New("boom")
        var roomID uint64
        err := store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
            room := &model.Room{Name: "ghost", TotalSeats: 1, CreatedAt: t0}
            if err := tx.Rooms().Create(ctx, room); err != nil {
                return err
            }
            roomID = room.ID
            return boom
        })
        require.ErrorIs(t, err, boom)
        err = store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
            _, err := tx.Rooms().Get(ctx, roomID)
            return err
        })
        require.ErrorIs(t, err, ErrNotFound)
    })

    t.Run("concurrent bookings of one seat", func(t *testing.T) {
        st, seats := seedShowtime(t, store)
        var won, lost atomic.Int32
        var g errgroup.Group
        for i := 0; i < 16; i++ {
            g.Go(func() error {
                err := store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
                    if _, err := tx.Showtimes().Lock(ctx, st.ID); err != nil {
                        return err
                    }
                    res := &model.Reservation{ShowtimeID: st.ID, UserID: uuid.New(), PriceCents: 1199,
                        SeatIDs: []uint64{seats[2].ID}, CreatedAt: t0}
                    if err := tx.Reservations().Create(ctx, res); err != nil {
                        return err
                    }
                    return tx.Showtimes().DecrementCapacity(ctx, st.ID, 1)
                })
                switch {
                case err == nil:
                    won.Add(1)
                case errors.Is(err, ErrDuplicateBinding):
                    lost.Add(1)
                default:
                    return err
                }
                return nil
            })
        }
        require.NoError(t, g.Wait())
        assert.Equal(t, int32(1), won.Load())
        assert.Equal(t, int32(15), lost.Load())

        require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
            got, err := tx.Showtimes().Get(ctx, st.ID)
            if err != nil {
                return err
            }
            assert.Equal(t, 2, got.RemainingCapacity)
            return nil
        }))
    })

    t.Run("resize to the same size", func(t *testing.T) {
        st, _ := seedShowtime(t, store)
        require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
            if _, err := tx.Rooms().Lock(ctx, st.RoomID); err != nil {
                return err
            }
            return tx.Rooms().UpdateTotalSeats(ctx, st.RoomID, 3)
        }))
        require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
            got, err := tx.Rooms().Get(ctx, st.RoomID)
            if err != nil {
                return err
            }
            assert.Equal(t, 3, got.TotalSeats)
            return nil
        }))
    })

    t.Run("tombstones are stored in UTC", func(t *testing.T) {
        st, _ := seedShowtime(t, store)
        at := t0.In(time.FixedZone("UTC+3", 3*60*60))
        require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
            if err := tx.Seats().TombstoneByRoom(ctx, st.RoomID, at); err != nil {
                return err
            }
            return tx.Rooms().Tombstone(ctx, st.RoomID, at)
        }))

        var roomDeleted, seatDeleted time.Time
        require.NoError(t, db.QueryRowContext(ctx, `SELECT deleted_at FROM rooms WHERE id = ?`, st.RoomID).Scan(&roomDeleted))
        require.NoError(t, db.QueryRowContext(ctx, `SELECT MAX(deleted_at) FROM seats WHERE room_id = ?`, st.RoomID).Scan(&seatDeleted))
        assert.True(t, t0.Equal(roomDeleted), "room deleted_at %s", roomDeleted)
        assert.True(t, t0.Equal(seatDeleted), "seat deleted_at %s", seatDeleted)
    })

    t.Run("concurrent overlapping showtimes in one room", func(t *testing.T) {
        seed, _ := seedShowtime(t, store)
        errOverlap := errors.New("overlap")
        later := t0.Add(3 * time.Hour)
        var created, rejected atomic.Int32
        var g errgroup.Group
        for i := 0; i < 12; i++ {
            start := later.Add(time.Duration(i) * time.Minute)
            g.Go(func() error {
                err := store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
                    if _, err := tx.Rooms().Lock(ctx, seed.RoomID); err != nil {
                        return err
                    }
                    existing, err := tx.Showtimes().ListActiveByRoom(ctx, seed.RoomID)
                    if err != nil {
                        return err
                    }
                    end := start.Add(90 * time.Minute)
                    for _, other := range existing {
                        if other.Overlaps(start, end) {
                            return errOverlap
                        }
                    }
                    return tx.Showtimes().Create(ctx, &model.Showtime{MovieID: 1, RoomID: seed.RoomID, StartsAt: start,
                        DurationMinutes: 90, RemainingCapacity: 3, CreatedAt: t0})
                })
                switch {
                case err == nil:
                    created.Add(1)
                case errors.Is(err, errOverlap):
                    rejected.Add(1)
                default:
                    return err
                }
                return nil
            })
        }
        require.NoError(t, g.Wait())
        assert.Equal(t, int32(1), created.Load())
        assert.Equal(t, int32(11), rejected.Load())

        require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
            list, err := tx.Showtimes().ListActiveByRoom(ctx, seed.RoomID)
            if err != nil {
                return err
            }
            assert.Len(t, list, 2)
            return nil
        }))
    })
}
