package service

import (
    "context"
    "sync/atomic"
    "testing"
    "time"

    "github.com/cockroachdb/errors"
    "github.com/google/uuid"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/mock/gomock"
    "golang.org/x/sync/errgroup"

    "github.com/iliyamo/cinema-booking/internal/apperr"
    "github.com/iliyamo/cinema-booking/internal/catalog"
    catalogmock "github.com/iliyamo/cinema-booking/internal/catalog/mock"
    "github.com/iliyamo/cinema-booking/internal/model"
    "github.com/iliyamo/cinema-booking/internal/queue"
    "github.com/iliyamo/cinema-booking/internal/repository"
)

func TestCreateShowtimeOverlap(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()
    room := f.room(t, 10)

    s1 := f.showtime(t, room.ID, evening)
    assert.Equal(t, 10, s1.RemainingCapacity)
    assert.Equal(t, 120, s1.DurationMinutes)

    _, err := f.scheduler.Create(ctx, movieLong, room.ID, evening.Add(60*time.Minute))
    require.Error(t, err)
    assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

    s2, err := f.scheduler.Create(ctx, movieLong, room.ID, evening.Add(130*time.Minute))
    require.NoError(t, err)
    assert.NotEqual(t, s1.ID, s2.ID)
}

func TestCreateShowtimeBoundaries(t *testing.T) {
    testCases := []struct {
        name     string
        movie    uint64
        offset   time.Duration
        conflict bool
    }{
        {name: "starts exactly at existing end", movie: movieLong, offset: 120 * time.Minute},
        {name: "ends exactly at existing start", movie: movieShort, offset: -30 * time.Minute},
        {name: "one minute into existing", movie: movieLong, offset: 119 * time.Minute, conflict: true},
        {name: "short movie inside existing", movie: movieShort, offset: 45 * time.Minute, conflict: true},
        {name: "long movie covering existing start", movie: movieLong, offset: -60 * time.Minute, conflict: true},
    }
    for _, tc := range testCases {
        t.Run(tc.name, func(t *testing.T) {
            f := newFixture(t)
            room := f.room(t, 10)
            f.showtime(t, room.ID, evening)

            _, err := f.scheduler.Create(context.Background(), tc.movie, room.ID, evening.Add(tc.offset))
            if tc.conflict {
                assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)
                return
            }
            require.NoError(t, err)
        })
    }
}

func TestCreateShowtimeUsesExistingDuration(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()
    room := f.room(t, 10)

    // A 30 minute showtime at 18:00 leaves 18:30 free for a long movie,
    // even though the new movie itself runs 120 minutes.
    _, err := f.scheduler.Create(ctx, movieShort, room.ID, evening)
    require.NoError(t, err)
    _, err = f.scheduler.Create(ctx, movieLong, room.ID, evening.Add(30*time.Minute))
    require.NoError(t, err)
}

func TestCreateShowtimeOtherRoomDoesNotConflict(t *testing.T) {
    f := newFixture(t)
    r1 := f.room(t, 10)
    r2 := f.room(t, 10)
    f.showtime(t, r1.ID, evening)
    f.showtime(t, r2.ID, evening)
}

func TestCreateShowtimeNotFound(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()
    room := f.room(t, 10)

    _, err := f.scheduler.Create(ctx, 99, room.ID, evening)
    assert.True(t, apperr.Is(err, apperr.KindNotFound))

    _, err = f.scheduler.Create(ctx, movieLong, room.ID+1, evening)
    assert.True(t, apperr.Is(err, apperr.KindNotFound))

    _, err = f.scheduler.Create(ctx, movieLong, room.ID, time.Time{})
    assert.True(t, apperr.Is(err, apperr.KindInvalidArgument))
}

func TestCancelShowtimeFreesSlotAndCascades(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()
    room := f.room(t, 10)
    st := f.showtime(t, room.ID, evening)

    res, err := f.coord.CreateReservation(ctx, st.ID, f.seatIDs(t, room.ID, "A1", "A2"), uuid.New())
    require.NoError(t, err)

    require.NoError(t, f.scheduler.Cancel(ctx, st.ID))

    _, err = f.scheduler.FindByID(ctx, st.ID)
    assert.True(t, apperr.Is(err, apperr.KindNotFound))
    err = f.scheduler.Cancel(ctx, st.ID)
    assert.True(t, apperr.Is(err, apperr.KindNotFound))

    // The reservation went with the showtime.
    err = f.coord.CancelReservation(ctx, res.ID)
    assert.True(t, apperr.Is(err, apperr.KindNotFound))
    summary, err := f.coord.ListAll(ctx)
    require.NoError(t, err)
    assert.Zero(t, summary.TotalReservations)

    // The interval is free again.
    f.showtime(t, room.ID, evening)

    assert.Equal(t, []string{queue.EventReservationCreated, queue.EventReservationCancelled}, f.pub.types())
}

func TestListActiveShowtimes(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()
    r1 := f.room(t, 10)
    r2, err := f.rooms.CreateRoom(ctx, "Sala 2", 20)
    require.NoError(t, err)

    later := f.showtime(t, r1.ID, evening.Add(3*time.Hour))
    first := f.showtime(t, r2.ID, evening)

    list, err := f.scheduler.ListActive(ctx)
    require.NoError(t, err)
    require.Len(t, list, 2)
    assert.Equal(t, first.ID, list[0].ID)
    assert.Equal(t, "Sala 2", list[0].RoomName)
    assert.Equal(t, "Metropolis", list[0].MovieTitle)
    assert.Equal(t, later.ID, list[1].ID)
    assert.Equal(t, 20, list[0].RemainingCapacity)
}

func TestSchedulerWithMockCatalog(t *testing.T) {
    ctrl := gomock.NewController(t)
    movies := catalogmock.NewMockMovieCatalog(ctrl)
    f := newFixtureWithCatalog(t, movies)
    ctx := context.Background()
    room := f.room(t, 10)

    movies.EXPECT().MovieDuration(gomock.Any(), uint64(7)).Return(95, nil).Times(1)
    st, err := f.scheduler.Create(ctx, 7, room.ID, evening)
    require.NoError(t, err)
    assert.Equal(t, 95, st.DurationMinutes)

    movies.EXPECT().MovieDuration(gomock.Any(), uint64(8)).Return(0, catalog.ErrMovieNotFound).Times(1)
    _, err = f.scheduler.Create(ctx, 8, room.ID, evening.Add(4*time.Hour))
    assert.True(t, apperr.Is(err, apperr.KindNotFound))

    movies.EXPECT().MovieDuration(gomock.Any(), uint64(9)).Return(0, errors.New("catalog down")).Times(1)
    _, err = f.scheduler.Create(ctx, 9, room.ID, evening.Add(4*time.Hour))
    assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))

    // Listings tolerate movies that vanished from the catalog.
    movies.EXPECT().MovieTitle(gomock.Any(), uint64(7)).Return("", catalog.ErrMovieNotFound).Times(1)
    list, err := f.scheduler.ListActive(ctx)
    require.NoError(t, err)
    require.Len(t, list, 1)
    assert.Empty(t, list[0].MovieTitle)
}

type inTxKey struct{}

// txMarkingStore marks the context handed to transaction bodies.
type txMarkingStore struct {
    *repository.MemoryStore
}

func (s txMarkingStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
    return s.MemoryStore.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
        return fn(context.WithValue(ctx, inTxKey{}, true), tx)
    })
}

// txAwareCatalog counts lookups made from inside a transaction body.
type txAwareCatalog struct {
    catalog.MovieCatalog
    inTx    atomic.Int32
    lookups atomic.Int32
}

func (c *txAwareCatalog) record(ctx context.Context) {
    c.lookups.Add(1)
    if ctx.Value(inTxKey{}) != nil {
        c.inTx.Add(1)
    }
}

func (c *txAwareCatalog) MovieDuration(ctx context.Context, movieID uint64) (int, error) {
    c.record(ctx)
    return c.MovieCatalog.MovieDuration(ctx, movieID)
}

func (c *txAwareCatalog) MovieTitle(ctx context.Context, movieID uint64) (string, error) {
    c.record(ctx)
    return c.MovieCatalog.MovieTitle(ctx, movieID)
}

func TestCreateShowtimeResolvesMovieOutsideTransaction(t *testing.T) {
    store := txMarkingStore{MemoryStore: repository.NewMemoryStore()}
    movies := &txAwareCatalog{
        MovieCatalog: catalog.NewMemoryCatalog(model.Movie{ID: movieLong, Title: "Metropolis", DurationMinutes: 120}),
    }
    clock := NewFixedClock(now0)
    rooms := NewRoomCatalog(store, clock, discardLogger())
    scheduler := NewShowtimeScheduler(store, rooms, movies, queue.NopPublisher{}, clock, discardLogger())
    ctx := context.Background()

    // One room per goroutine, so every create is expected to succeed.
    const n = 32
    roomIDs := make([]uint64, n)
    for i := range roomIDs {
        room, err := rooms.CreateRoom(ctx, "Sala", 5)
        require.NoError(t, err)
        roomIDs[i] = room.ID
    }

    var g errgroup.Group
    for _, roomID := range roomIDs {
        g.Go(func() error {
            _, err := scheduler.Create(ctx, movieLong, roomID, evening)
            return err
        })
    }
    require.NoError(t, g.Wait())

    list, err := scheduler.ListActive(ctx)
    require.NoError(t, err)
    assert.Len(t, list, n)

    assert.Positive(t, movies.lookups.Load())
    assert.Zero(t, movies.inTx.Load(), "catalog consulted inside a transaction")
}

func TestConcurrentOverlappingShowtimes(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()
    room := f.room(t, 10)

    var created, conflicts atomic.Int32
    var g errgroup.Group
    for i := range 24 {
        start := evening.Add(time.Duration(i) * time.Minute)
        g.Go(func() error {
            _, err := f.scheduler.Create(ctx, movieLong, room.ID, start)
            switch {
            case err == nil:
                created.Add(1)
            case apperr.Is(err, apperr.KindConflict):
                conflicts.Add(1)
            default:
                return err
            }
            return nil
        })
    }
    require.NoError(t, g.Wait())

    assert.Equal(t, int32(1), created.Load())
    assert.Equal(t, int32(23), conflicts.Load())

    list, err := f.scheduler.ListActive(ctx)
    require.NoError(t, err)
    assert.Len(t, list, 1)
}
