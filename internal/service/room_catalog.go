package service

import (
    "context"
    "log/slog"
    "strings"

    "github.com/iliyamo/cinema-booking/internal/apperr"
    "github.com/iliyamo/cinema-booking/internal/model"
    "github.com/iliyamo/cinema-booking/internal/repository"
)

// RoomCatalog owns rooms and their seat grids.
type RoomCatalog struct {
    store  repository.Store
    clock  Clock
    logger *slog.Logger
}

func NewRoomCatalog(store repository.Store, clock Clock, logger *slog.Logger) *RoomCatalog {
    return &RoomCatalog{store: store, clock: clock, logger: logger}
}

// CreateRoom stores a room and generates its seat grid.
func (c *RoomCatalog) CreateRoom(ctx context.Context, name string, totalSeats int) (*model.Room, error) {
    name = strings.TrimSpace(name)
    if name == "" {
        return nil, apperr.InvalidArgument("room name is required")
    }
    if totalSeats < 1 {
        return nil, apperr.InvalidArgument("total seats must be at least 1")
    }

    room := &model.Room{Name: name, TotalSeats: totalSeats, CreatedAt: c.clock.Now()}
    err := c.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
        if err := tx.Rooms().Create(ctx, room); err != nil {
            return err
        }
        return tx.Seats().CreateBulk(ctx, GenerateSeats(room.ID, totalSeats))
    })
    if err != nil {
        return nil, apperr.From(err, "create room")
    }
    c.logger.Info("room created", "room_id", room.ID, "total_seats", totalSeats)
    return room, nil
}

// ResizeRoom replaces the seat grid of a room.  Existing seats are
// tombstoned and a fresh grid is generated.  The resize is refused while
// any active showtime of the room still holds reservations; otherwise the
// remaining capacity of those showtimes follows the new size.
func (c *RoomCatalog) ResizeRoom(ctx context.Context, roomID uint64, newTotalSeats int) (*model.Room, error) {
    if newTotalSeats < 1 {
        return nil, apperr.InvalidArgument("total seats must be at least 1")
    }

    var room *model.Room
    err := c.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
        var err error
        if room, err = c.lock(ctx, tx, roomID); err != nil {
            return err
        }
        // Reservations lock their showtime first; taking the same locks
        // here orders a resize against in-flight bookings.
        if _, err := tx.Showtimes().LockActiveByRoom(ctx, roomID); err != nil {
            return err
        }
        n, err := tx.Reservations().CountActiveByRoom(ctx, roomID)
        if err != nil {
            return err
        }
        if n > 0 {
            return apperr.Conflict("room %d has %d active reservations and cannot be resized", roomID, n).
                WithField("active_reservations", n)
        }

        now := c.clock.Now()
        if err := tx.Seats().TombstoneByRoom(ctx, roomID, now); err != nil {
            return err
        }
        if err := tx.Seats().CreateBulk(ctx, GenerateSeats(roomID, newTotalSeats)); err != nil {
            return err
        }
        if err := tx.Rooms().UpdateTotalSeats(ctx, roomID, newTotalSeats); err != nil {
            return err
        }
        room.TotalSeats = newTotalSeats
        return tx.Showtimes().ResetCapacityByRoom(ctx, roomID, newTotalSeats)
    })
    if err != nil {
        return nil, apperr.From(err, "resize room")
    }
    c.logger.Info("room resized", "room_id", roomID, "total_seats", newTotalSeats)
    return room, nil
}

// GetRoom returns an active room.
func (c *RoomCatalog) GetRoom(ctx context.Context, roomID uint64) (*model.Room, error) {
    var room *model.Room
    err := c.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
        var err error
        room, err = c.get(ctx, tx, roomID)
        return err
    })
    if err != nil {
        return nil, apperr.From(err, "get room")
    }
    return room, nil
}

// ListRooms returns all active rooms ordered by id.
func (c *RoomCatalog) ListRooms(ctx context.Context) ([]model.Room, error) {
    var rooms []model.Room
    err := c.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
        var err error
        rooms, err = tx.Rooms().ListActive(ctx)
        return err
    })
    if err != nil {
        return nil, apperr.From(err, "list rooms")
    }
    return rooms, nil
}

// RemoveRoom tombstones a room and its seats.  Rooms with active
// showtimes cannot be removed.
func (c *RoomCatalog) RemoveRoom(ctx context.Context, roomID uint64) error {
    err := c.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
        if _, err := c.lock(ctx, tx, roomID); err != nil {
            return err
        }
        showtimes, err := tx.Showtimes().LockActiveByRoom(ctx, roomID)
        if err != nil {
            return err
        }
        if len(showtimes) > 0 {
            return apperr.Conflict("room %d still has %d active showtimes", roomID, len(showtimes))
        }
        now := c.clock.Now()
        if err := tx.Seats().TombstoneByRoom(ctx, roomID, now); err != nil {
            return err
        }
        return tx.Rooms().Tombstone(ctx, roomID, now)
    })
    if err != nil {
        return apperr.From(err, "remove room")
    }
    c.logger.Info("room removed", "room_id", roomID)
    return nil
}

func (c *RoomCatalog) get(ctx context.Context, tx repository.Tx, roomID uint64) (*model.Room, error) {
    room, err := tx.Rooms().Get(ctx, roomID)
    if err != nil {
        return nil, notFoundAs(err, "room %d not found", roomID)
    }
    return room, nil
}

// lock reads the room with a row lock held until tx ends.
func (c *RoomCatalog) lock(ctx context.Context, tx repository.Tx, roomID uint64) (*model.Room, error) {
    room, err := tx.Rooms().Lock(ctx, roomID)
    if err != nil {
        return nil, notFoundAs(err, "room %d not found", roomID)
    }
    return room, nil
}
