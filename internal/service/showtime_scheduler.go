package service

import (
    "context"
    "log/slog"
    "time"

    "github.com/cockroachdb/errors"
    "golang.org/x/sync/errgroup"

    "github.com/iliyamo/cinema-booking/internal/apperr"
    "github.com/iliyamo/cinema-booking/internal/catalog"
    "github.com/iliyamo/cinema-booking/internal/model"
    "github.com/iliyamo/cinema-booking/internal/queue"
    "github.com/iliyamo/cinema-booking/internal/repository"
)

// titleLookups bounds concurrent catalog calls while enriching listings.
const titleLookups = 8

// ShowtimeScheduler places showtimes in rooms so that no two active
// showtimes of a room overlap in time.
type ShowtimeScheduler struct {
    store     repository.Store
    rooms     *RoomCatalog
    movies    catalog.MovieCatalog
    publisher queue.Publisher
    clock     Clock
    logger    *slog.Logger
}

func NewShowtimeScheduler(store repository.Store, rooms *RoomCatalog, movies catalog.MovieCatalog,
    publisher queue.Publisher, clock Clock, logger *slog.Logger) *ShowtimeScheduler {
    return &ShowtimeScheduler{
        store:     store,
        rooms:     rooms,
        movies:    movies,
        publisher: publisher,
        clock:     clock,
        logger:    logger,
    }
}

// Create schedules movieID in roomID at startsAt.  The occupied interval
// is [startsAt, startsAt+duration) and is compared against each active
// showtime of the room using that showtime's own stored duration.  The
// room row stays locked from the overlap scan until the insert commits.
func (s *ShowtimeScheduler) Create(ctx context.Context, movieID, roomID uint64, startsAt time.Time) (*model.Showtime, error) {
    if startsAt.IsZero() {
        return nil, apperr.InvalidArgument("start time is required")
    }

    // The catalog may share the store's connection pool, so it is never
    // consulted while a transaction holds a connection.
    duration, err := s.movies.MovieDuration(ctx, movieID)
    if err != nil {
        if errors.Is(err, catalog.ErrMovieNotFound) {
            return nil, apperr.NotFound("movie %d not found", movieID)
        }
        return nil, apperr.From(errors.Wrapf(err, "movie %d duration", movieID), "create showtime")
    }
    if duration <= 0 {
        return nil, apperr.InvalidState("movie %d has no duration", movieID)
    }

    var created *model.Showtime
    err = s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
        room, err := s.rooms.lock(ctx, tx, roomID)
        if err != nil {
            return err
        }

        candidate := model.Showtime{
            MovieID:           movieID,
            RoomID:            room.ID,
            StartsAt:          startsAt.UTC(),
            DurationMinutes:   duration,
            RemainingCapacity: room.TotalSeats,
            CreatedAt:         s.clock.Now(),
        }
        existing, err := tx.Showtimes().ListActiveByRoom(ctx, room.ID)
        if err != nil {
            return err
        }
        for _, e := range existing {
            if e.Overlaps(candidate.StartsAt, candidate.EndsAt()) {
                return apperr.Conflict("room %d is already booked from %s to %s", room.ID,
                    e.StartsAt.Format(time.RFC3339), e.EndsAt().Format(time.RFC3339)).
                    WithField("showtime_id", e.ID)
            }
        }
        if err := tx.Showtimes().Create(ctx, &candidate); err != nil {
            return err
        }
        created = &candidate
        return nil
    })
    if err != nil {
        return nil, apperr.From(err, "create showtime")
    }
    s.logger.Info("showtime scheduled", "showtime_id", created.ID, "room_id", roomID,
        "movie_id", movieID, "starts_at", created.StartsAt)
    return created, nil
}

// Cancel tombstones a showtime.  Its active reservations are cancelled in
// the same transaction so no binding outlives the showtime.
func (s *ShowtimeScheduler) Cancel(ctx context.Context, showtimeID uint64) error {
    var (
        st        *model.Showtime
        cancelled []model.Reservation
    )
    now := s.clock.Now()
    err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
        var err error
        if st, err = s.lockShowtime(ctx, tx, showtimeID); err != nil {
            return err
        }
        if cancelled, err = tx.Reservations().ListActiveByShowtime(ctx, showtimeID); err != nil {
            return err
        }
        for _, r := range cancelled {
            if err := tx.Reservations().Cancel(ctx, r.ID, now); err != nil {
                return err
            }
        }
        return tx.Showtimes().Tombstone(ctx, showtimeID, now)
    })
    if err != nil {
        return apperr.From(err, "cancel showtime")
    }

    s.logger.Info("showtime cancelled", "showtime_id", showtimeID, "reservations_cancelled", len(cancelled))
    events := make([]queue.ReservationEvent, 0, len(cancelled))
    for _, r := range cancelled {
        events = append(events, reservationEvent(queue.EventReservationCancelled, r, *st, now))
    }
    publish(ctx, s.publisher, s.logger, events...)
    return nil
}

// FindByID returns an active showtime with its movie title and room name.
func (s *ShowtimeScheduler) FindByID(ctx context.Context, showtimeID uint64) (*model.ShowtimeListing, error) {
    var (
        st   *model.Showtime
        room *model.Room
    )
    err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
        var err error
        if st, err = s.getShowtime(ctx, tx, showtimeID); err != nil {
            return err
        }
        room, err = s.rooms.get(ctx, tx, st.RoomID)
        return err
    })
    if err != nil {
        return nil, apperr.From(err, "find showtime")
    }
    listings, err := s.enrich(ctx, []model.Showtime{*st}, map[uint64]string{room.ID: room.Name})
    if err != nil {
        return nil, err
    }
    return &listings[0], nil
}

// ListActive returns every active showtime ordered by start time.
func (s *ShowtimeScheduler) ListActive(ctx context.Context) ([]model.ShowtimeListing, error) {
    var showtimes []model.Showtime
    roomNames := map[uint64]string{}
    err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
        var err error
        if showtimes, err = tx.Showtimes().ListActive(ctx); err != nil {
            return err
        }
        rooms, err := tx.Rooms().ListActive(ctx)
        if err != nil {
            return err
        }
        for _, r := range rooms {
            roomNames[r.ID] = r.Name
        }
        return nil
    })
    if err != nil {
        return nil, apperr.From(err, "list showtimes")
    }
    return s.enrich(ctx, showtimes, roomNames)
}

// enrich resolves movie titles concurrently.  A movie missing from the
// catalog leaves an empty title rather than failing the listing.
func (s *ShowtimeScheduler) enrich(ctx context.Context, showtimes []model.Showtime, roomNames map[uint64]string) ([]model.ShowtimeListing, error) {
    listings := make([]model.ShowtimeListing, len(showtimes))
    g, gctx := errgroup.WithContext(ctx)
    g.SetLimit(titleLookups)
    for i, st := range showtimes {
        listings[i] = model.ShowtimeListing{Showtime: st, RoomName: roomNames[st.RoomID]}
        g.Go(func() error {
            title, err := s.movies.MovieTitle(gctx, st.MovieID)
            switch {
            case errors.Is(err, catalog.ErrMovieNotFound):
                s.logger.Warn("showtime references unknown movie", "showtime_id", st.ID, "movie_id", st.MovieID)
            case err != nil:
                return errors.Wrapf(err, "movie %d title", st.MovieID)
            default:
                listings[i].MovieTitle = title
            }
            return nil
        })
    }
    if err := g.Wait(); err != nil {
        return nil, apperr.From(err, "resolve movie titles")
    }
    return listings, nil
}

func (s *ShowtimeScheduler) getShowtime(ctx context.Context, tx repository.Tx, id uint64) (*model.Showtime, error) {
    st, err := tx.Showtimes().Get(ctx, id)
    if err != nil {
        return nil, notFoundAs(err, "showtime %d not found", id)
    }
    return st, nil
}

// lockShowtime reads the showtime with a row lock held until tx ends.
// Reservation create and cancel both go through it.
func (s *ShowtimeScheduler) lockShowtime(ctx context.Context, tx repository.Tx, id uint64) (*model.Showtime, error) {
    st, err := tx.Showtimes().Lock(ctx, id)
    if err != nil {
        return nil, notFoundAs(err, "showtime %d not found", id)
    }
    return st, nil
}

func reservationEvent(typ string, r model.Reservation, st model.Showtime, at time.Time) queue.ReservationEvent {
    return queue.ReservationEvent{
        Type:          typ,
        ReservationID: r.ID,
        ShowtimeID:    st.ID,
        RoomID:        st.RoomID,
        UserID:        r.UserID.String(),
        SeatIDs:       r.SeatIDs,
        PriceCents:    r.PriceCents,
        StartsAt:      st.StartsAt,
        OccurredAt:    at,
    }
}
