package repository

import (
    "context"
    "testing"
    "time"

    "github.com/cockroachdb/errors"
    "github.com/google/uuid"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/cinema-booking/internal/model"
)

var t0 = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

func seedShowtime(t *testing.T, store Store) (model.Showtime, []model.Seat) {
    t.Helper()
    var st model.Showtime
    var seats []model.Seat
    err := store.WithinTx(context.Background(), func(ctx context.Context, tx Tx) error {
        room := &model.Room{Name: "Sala 1", TotalSeats: 3, CreatedAt: t0}
        if err := tx.Rooms().Create(ctx, room); err != nil {
            return err
        }
        grid := []model.Seat{{RoomID: room.ID, Row: "A", Number: 1}, {RoomID: room.ID, Row: "A", Number: 2}, {RoomID: room.ID, Row: "A", Number: 3}}
        if err := tx.Seats().CreateBulk(ctx, grid); err != nil {
            return err
        }
        var err error
        if seats, err = tx.Seats().ListActiveByRoom(ctx, room.ID); err != nil {
            return err
        }
        st = model.Showtime{MovieID: 1, RoomID: room.ID, StartsAt: t0, DurationMinutes: 90, RemainingCapacity: 3, CreatedAt: t0}
        return tx.Showtimes().Create(ctx, &st)
    })
    require.NoError(t, err)
    return st, seats
}

func TestMemoryStoreRollsBackOnError(t *testing.T) {
    store := NewMemoryStore()
    boom := errors.New("boom")

    err := store.WithinTx(context.Background(), func(ctx context.Context, tx Tx) error {
        if err := tx.Rooms().Create(ctx, &model.Room{Name: "ghost", TotalSeats: 1}); err != nil {
            return err
        }
        return boom
    })
    require.ErrorIs(t, err, boom)

    _ = store.WithinTx(context.Background(), func(ctx context.Context, tx Tx) error {
        rooms, err := tx.Rooms().ListActive(ctx)
        require.NoError(t, err)
        assert.Empty(t, rooms)
        return nil
    })
}

func TestMemoryStoreRejectsSecondActiveBinding(t *testing.T) {
    store := NewMemoryStore()
    st, seats := seedShowtime(t, store)
    ctx := context.Background()

    first := &model.Reservation{ShowtimeID: st.ID, UserID: uuid.New(), SeatIDs: []uint64{seats[0].ID}}
    require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
        return tx.Reservations().Create(ctx, first)
    }))

    err := store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
        return tx.Reservations().Create(ctx, &model.Reservation{ShowtimeID: st.ID, UserID: uuid.New(), SeatIDs: []uint64{seats[1].ID, seats[0].ID}})
    })
    require.ErrorIs(t, err, ErrDuplicateBinding)

    // Releasing the first booking frees the seat again.
    require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
        return tx.Reservations().Cancel(ctx, first.ID, t0)
    }))
    require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
        taken, err := tx.Reservations().TakenSeatIDs(ctx, st.ID, nil)
        require.NoError(t, err)
        assert.Empty(t, taken)
        return tx.Reservations().Create(ctx, &model.Reservation{ShowtimeID: st.ID, UserID: uuid.New(), SeatIDs: []uint64{seats[0].ID}})
    }))
}

func TestMemoryStoreGuardedDecrement(t *testing.T) {
    store := NewMemoryStore()
    st, _ := seedShowtime(t, store)

    err := store.WithinTx(context.Background(), func(ctx context.Context, tx Tx) error {
        require.NoError(t, tx.Showtimes().DecrementCapacity(ctx, st.ID, 2))
        return tx.Showtimes().DecrementCapacity(ctx, st.ID, 2)
    })
    require.ErrorIs(t, err, ErrCapacityExhausted)

    _ = store.WithinTx(context.Background(), func(ctx context.Context, tx Tx) error {
        got, err := tx.Showtimes().Get(ctx, st.ID)
        require.NoError(t, err)
        assert.Equal(t, 3, got.RemainingCapacity)
        return nil
    })
}

func TestMemoryStoreTombstonedRowsAreInvisible(t *testing.T) {
    store := NewMemoryStore()
    st, seats := seedShowtime(t, store)

    require.NoError(t, store.WithinTx(context.Background(), func(ctx context.Context, tx Tx) error {
        if err := tx.Seats().TombstoneByRoom(ctx, st.RoomID, t0); err != nil {
            return err
        }
        return tx.Showtimes().Tombstone(ctx, st.ID, t0)
    }))

    _ = store.WithinTx(context.Background(), func(ctx context.Context, tx Tx) error {
        _, err := tx.Showtimes().Get(ctx, st.ID)
        assert.ErrorIs(t, err, ErrNotFound)
        _, err = tx.Seats().FindActiveByPosition(ctx, st.RoomID, "A", 1)
        assert.ErrorIs(t, err, ErrNotFound)
        left, err := tx.Seats().ListActiveByIDs(ctx, st.RoomID, []uint64{seats[0].ID})
        require.NoError(t, err)
        assert.Empty(t, left)
        return nil
    })
}

func TestPlaceholders(t *testing.T) {
    assert.Equal(t, "", placeholders(0))
    assert.Equal(t, "?", placeholders(1))
    assert.Equal(t, "?, ?, ?", placeholders(3))
}
