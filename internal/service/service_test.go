package service

import (
    "context"
    "io"
    "log/slog"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/require"

    "github.com/iliyamo/cinema-booking/internal/catalog"
    "github.com/iliyamo/cinema-booking/internal/model"
    "github.com/iliyamo/cinema-booking/internal/queue"
    "github.com/iliyamo/cinema-booking/internal/repository"
)

var (
    now0    = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
    evening = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
)

const (
    movieLong  uint64 = 1 // 120 minutes
    movieShort uint64 = 2 // 30 minutes
)

func discardLogger() *slog.Logger {
    return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingPublisher struct {
    mu     sync.Mutex
    events []queue.ReservationEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.ReservationEvent) error {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.events = append(p.events, ev)
    return nil
}

func (p *recordingPublisher) types() []string {
    p.mu.Lock()
    defer p.mu.Unlock()
    out := make([]string, len(p.events))
    for i, ev := range p.events {
        out[i] = ev.Type
    }
    return out
}

type fixture struct {
    store     *repository.MemoryStore
    clock     *FixedClock
    pub       *recordingPublisher
    rooms     *RoomCatalog
    scheduler *ShowtimeScheduler
    index     *SeatAvailabilityIndex
    coord     *ReservationCoordinator
}

func newFixture(t *testing.T) *fixture {
    t.Helper()
    return newFixtureWithCatalog(t, catalog.NewMemoryCatalog(
        model.Movie{ID: movieLong, Title: "Metropolis", DurationMinutes: 120},
        model.Movie{ID: movieShort, Title: "Un chien andalou", DurationMinutes: 30},
    ))
}

func newFixtureWithCatalog(t *testing.T, movies catalog.MovieCatalog) *fixture {
    t.Helper()
    f := &fixture{
        store: repository.NewMemoryStore(),
        clock: NewFixedClock(now0),
        pub:   &recordingPublisher{},
    }
    logger := discardLogger()
    f.rooms = NewRoomCatalog(f.store, f.clock, logger)
    f.scheduler = NewShowtimeScheduler(f.store, f.rooms, movies, f.pub, f.clock, logger)
    f.index = NewSeatAvailabilityIndex(f.store, f.scheduler)
    f.coord = NewReservationCoordinator(f.store, f.scheduler, f.index, DefaultPriceTable(), f.pub, f.clock, logger)
    return f
}

func (f *fixture) room(t *testing.T, seats int) *model.Room {
    t.Helper()
    room, err := f.rooms.CreateRoom(context.Background(), "Sala", seats)
    require.NoError(t, err)
    return room
}

func (f *fixture) showtime(t *testing.T, roomID uint64, start time.Time) *model.Showtime {
    t.Helper()
    st, err := f.scheduler.Create(context.Background(), movieLong, roomID, start)
    require.NoError(t, err)
    return st
}

// seatIDs resolves ubications such as "A1" to the active seat ids of a room.
func (f *fixture) seatIDs(t *testing.T, roomID uint64, ubications ...string) []uint64 {
    t.Helper()
    ids := make([]uint64, 0, len(ubications))
    err := f.store.WithinTx(context.Background(), func(ctx context.Context, tx repository.Tx) error {
        for _, u := range ubications {
            row, n, err := ParseUbication(u)
            require.NoError(t, err)
            seat, err := tx.Seats().FindActiveByPosition(ctx, roomID, row, n)
            if err != nil {
                return err
            }
            ids = append(ids, seat.ID)
        }
        return nil
    })
    require.NoError(t, err)
    return ids
}

func (f *fixture) remaining(t *testing.T, showtimeID uint64) int {
    t.Helper()
    st, err := f.scheduler.FindByID(context.Background(), showtimeID)
    require.NoError(t, err)
    return st.RemainingCapacity
}

func ubications(seats []model.Seat) []string {
    out := make([]string, len(seats))
    for i, s := range seats {
        out[i] = s.Ubication()
    }
    return out
}
