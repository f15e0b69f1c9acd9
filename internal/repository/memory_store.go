package repository

import (
    "cmp"
    "context"
    "slices"
    "sync"
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/cinema-booking/internal/model"
)

// MemoryStore keeps all state in process.  Transactions are serialized by
// a single mutex and run against a copy of the state that replaces the
// live state only on success, which gives the same all-or-nothing and
// one-active-binding guarantees as the SQL store.
type MemoryStore struct {
    mu    sync.Mutex
    state *memState
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
    return &MemoryStore{state: newMemState()}
}

func (s *MemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if err := ctx.Err(); err != nil {
        return err
    }
    work := s.state.clone()
    if err := fn(ctx, work); err != nil {
        return err
    }
    s.state = work
    return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

type memBinding struct {
    model.SeatBinding
    active bool
}

type memState struct {
    seq          map[string]uint64
    rooms        map[uint64]model.Room
    seats        map[uint64]model.Seat
    showtimes    map[uint64]model.Showtime
    reservations map[uint64]model.Reservation
    bindings     []memBinding
}

func newMemState() *memState {
    return &memState{
        seq:          map[string]uint64{},
        rooms:        map[uint64]model.Room{},
        seats:        map[uint64]model.Seat{},
        showtimes:    map[uint64]model.Showtime{},
        reservations: map[uint64]model.Reservation{},
    }
}

func (m *memState) clone() *memState {
    c := newMemState()
    for k, v := range m.seq {
        c.seq[k] = v
    }
    for k, v := range m.rooms {
        c.rooms[k] = v
    }
    for k, v := range m.seats {
        c.seats[k] = v
    }
    for k, v := range m.showtimes {
        c.showtimes[k] = v
    }
    for k, v := range m.reservations {
        v.SeatIDs = slices.Clone(v.SeatIDs)
        c.reservations[k] = v
    }
    c.bindings = slices.Clone(m.bindings)
    return c
}

func (m *memState) next(table string) uint64 {
    m.seq[table]++
    return m.seq[table]
}

func (m *memState) Rooms() RoomRepository               { return memRooms{m} }
func (m *memState) Seats() SeatRepository               { return memSeats{m} }
func (m *memState) Showtimes() ShowtimeRepository       { return memShowtimes{m} }
func (m *memState) Reservations() ReservationRepository { return memReservations{m} }

func tombstone(at time.Time) *time.Time {
    t := at.UTC()
    return &t
}

type memRooms struct{ m *memState }

func (r memRooms) Create(_ context.Context, room *model.Room) error {
    room.ID = r.m.next("rooms")
    r.m.rooms[room.ID] = *room
    return nil
}

func (r memRooms) Get(_ context.Context, id uint64) (*model.Room, error) {
    room, ok := r.m.rooms[id]
    if !ok || !room.Active() {
        return nil, ErrNotFound
    }
    return &room, nil
}

func (r memRooms) Lock(ctx context.Context, id uint64) (*model.Room, error) {
    return r.Get(ctx, id)
}

func (r memRooms) UpdateTotalSeats(_ context.Context, id uint64, totalSeats int) error {
    room, ok := r.m.rooms[id]
    if !ok || !room.Active() {
        return ErrNotFound
    }
    room.TotalSeats = totalSeats
    r.m.rooms[id] = room
    return nil
}

func (r memRooms) ListActive(context.Context) ([]model.Room, error) {
    var out []model.Room
    for _, room := range r.m.rooms {
        if room.Active() {
            out = append(out, room)
        }
    }
    slices.SortFunc(out, func(a, b model.Room) int { return cmp.Compare(a.ID, b.ID) })
    return out, nil
}

func (r memRooms) Tombstone(_ context.Context, id uint64, at time.Time) error {
    room, ok := r.m.rooms[id]
    if !ok || !room.Active() {
        return ErrNotFound
    }
    room.DeletedAt = tombstone(at)
    r.m.rooms[id] = room
    return nil
}

type memSeats struct{ m *memState }

func (r memSeats) CreateBulk(_ context.Context, seats []model.Seat) error {
    for i := range seats {
        seats[i].ID = r.m.next("seats")
        r.m.seats[seats[i].ID] = seats[i]
    }
    return nil
}

func (r memSeats) ListActiveByRoom(_ context.Context, roomID uint64) ([]model.Seat, error) {
    return r.filter(func(s model.Seat) bool { return s.RoomID == roomID }), nil
}

func (r memSeats) ListActiveByIDs(_ context.Context, roomID uint64, ids []uint64) ([]model.Seat, error) {
    if len(ids) == 0 {
        return nil, nil
    }
    return r.filter(func(s model.Seat) bool {
        return s.RoomID == roomID && slices.Contains(ids, s.ID)
    }), nil
}

func (r memSeats) FindActiveByPosition(_ context.Context, roomID uint64, row string, number int) (*model.Seat, error) {
    found := r.filter(func(s model.Seat) bool {
        return s.RoomID == roomID && s.Row == row && s.Number == number
    })
    if len(found) == 0 {
        return nil, ErrNotFound
    }
    return &found[0], nil
}

func (r memSeats) TombstoneByRoom(_ context.Context, roomID uint64, at time.Time) error {
    for id, s := range r.m.seats {
        if s.RoomID == roomID && s.Active() {
            s.DeletedAt = tombstone(at)
            r.m.seats[id] = s
        }
    }
    return nil
}

func (r memSeats) filter(keep func(model.Seat) bool) []model.Seat {
    var out []model.Seat
    for _, s := range r.m.seats {
        if s.Active() && keep(s) {
            out = append(out, s)
        }
    }
    slices.SortFunc(out, model.CompareSeats)
    return out
}

type memShowtimes struct{ m *memState }

func (r memShowtimes) Create(_ context.Context, s *model.Showtime) error {
    s.ID = r.m.next("showtimes")
    r.m.showtimes[s.ID] = *s
    return nil
}

func (r memShowtimes) Get(_ context.Context, id uint64) (*model.Showtime, error) {
    s, ok := r.m.showtimes[id]
    if !ok || !s.Active() {
        return nil, ErrNotFound
    }
    return &s, nil
}

func (r memShowtimes) Lock(ctx context.Context, id uint64) (*model.Showtime, error) {
    return r.Get(ctx, id)
}

func (r memShowtimes) ListActiveByRoom(_ context.Context, roomID uint64) ([]model.Showtime, error) {
    return r.filter(func(s model.Showtime) bool { return s.RoomID == roomID }), nil
}

func (r memShowtimes) LockActiveByRoom(ctx context.Context, roomID uint64) ([]model.Showtime, error) {
    return r.ListActiveByRoom(ctx, roomID)
}

func (r memShowtimes) ListActive(context.Context) ([]model.Showtime, error) {
    return r.filter(func(model.Showtime) bool { return true }), nil
}

func (r memShowtimes) Tombstone(_ context.Context, id uint64, at time.Time) error {
    s, ok := r.m.showtimes[id]
    if !ok || !s.Active() {
        return ErrNotFound
    }
    s.DeletedAt = tombstone(at)
    r.m.showtimes[id] = s
    return nil
}

func (r memShowtimes) DecrementCapacity(_ context.Context, id uint64, n int) error {
    s, ok := r.m.showtimes[id]
    if !ok || !s.Active() || s.RemainingCapacity < n {
        return ErrCapacityExhausted
    }
    s.RemainingCapacity -= n
    r.m.showtimes[id] = s
    return nil
}

func (r memShowtimes) IncrementCapacity(_ context.Context, id uint64, n int) error {
    s, ok := r.m.showtimes[id]
    if !ok {
        return ErrNotFound
    }
    s.RemainingCapacity += n
    r.m.showtimes[id] = s
    return nil
}

func (r memShowtimes) ResetCapacityByRoom(_ context.Context, roomID uint64, capacity int) error {
    for id, s := range r.m.showtimes {
        if s.RoomID == roomID && s.Active() {
            s.RemainingCapacity = capacity
            r.m.showtimes[id] = s
        }
    }
    return nil
}

func (r memShowtimes) filter(keep func(model.Showtime) bool) []model.Showtime {
    var out []model.Showtime
    for _, s := range r.m.showtimes {
        if s.Active() && keep(s) {
            out = append(out, s)
        }
    }
    slices.SortFunc(out, func(a, b model.Showtime) int {
        if c := a.StartsAt.Compare(b.StartsAt); c != 0 {
            return c
        }
        return cmp.Compare(a.ID, b.ID)
    })
    return out
}

type memReservations struct{ m *memState }

func (r memReservations) Create(_ context.Context, res *model.Reservation) error {
    for _, seatID := range res.SeatIDs {
        if r.bound(res.ShowtimeID, seatID) {
            return ErrDuplicateBinding
        }
    }
    res.ID = r.m.next("reservations")
    res.SeatIDs = slices.Clone(res.SeatIDs)
    r.m.reservations[res.ID] = *res
    for _, seatID := range res.SeatIDs {
        r.m.bindings = append(r.m.bindings, memBinding{
            SeatBinding: model.SeatBinding{SeatID: seatID, ReservationID: res.ID, ShowtimeID: res.ShowtimeID},
            active:      true,
        })
    }
    return nil
}

func (r memReservations) bound(showtimeID, seatID uint64) bool {
    for _, b := range r.m.bindings {
        if b.active && b.ShowtimeID == showtimeID && b.SeatID == seatID {
            return true
        }
    }
    return false
}

func (r memReservations) Get(_ context.Context, id uint64) (*model.Reservation, error) {
    res, ok := r.m.reservations[id]
    if !ok || !res.Active() {
        return nil, ErrNotFound
    }
    res.SeatIDs = slices.Clone(res.SeatIDs)
    return &res, nil
}

func (r memReservations) Cancel(_ context.Context, id uint64, at time.Time) error {
    res, ok := r.m.reservations[id]
    if !ok || !res.Active() {
        return ErrNotFound
    }
    res.DeletedAt = tombstone(at)
    r.m.reservations[id] = res
    for i := range r.m.bindings {
        if r.m.bindings[i].ReservationID == id {
            r.m.bindings[i].active = false
        }
    }
    return nil
}

func (r memReservations) ListActiveByShowtime(_ context.Context, showtimeID uint64) ([]model.Reservation, error) {
    return r.filter(func(res model.Reservation) bool { return res.ShowtimeID == showtimeID }), nil
}

func (r memReservations) ListActiveByUser(_ context.Context, userID uuid.UUID) ([]model.Reservation, error) {
    return r.filter(func(res model.Reservation) bool { return res.UserID == userID }), nil
}

func (r memReservations) ListActive(context.Context) ([]model.Reservation, error) {
    return r.filter(func(model.Reservation) bool { return true }), nil
}

func (r memReservations) TakenSeatIDs(_ context.Context, showtimeID uint64, filter []uint64) ([]uint64, error) {
    var ids []uint64
    for _, b := range r.m.bindings {
        if !b.active || b.ShowtimeID != showtimeID {
            continue
        }
        if filter != nil && !slices.Contains(filter, b.SeatID) {
            continue
        }
        ids = append(ids, b.SeatID)
    }
    slices.Sort(ids)
    return ids, nil
}

func (r memReservations) CountActiveByRoom(_ context.Context, roomID uint64) (int, error) {
    n := 0
    for _, res := range r.m.reservations {
        s, ok := r.m.showtimes[res.ShowtimeID]
        if res.Active() && ok && s.Active() && s.RoomID == roomID {
            n++
        }
    }
    return n, nil
}

func (r memReservations) filter(keep func(model.Reservation) bool) []model.Reservation {
    var out []model.Reservation
    for _, res := range r.m.reservations {
        if res.Active() && keep(res) {
            res.SeatIDs = slices.Clone(res.SeatIDs)
            out = append(out, res)
        }
    }
    slices.SortFunc(out, func(a, b model.Reservation) int { return cmp.Compare(a.ID, b.ID) })
    return out
}
