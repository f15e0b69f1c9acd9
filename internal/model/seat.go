package model

import (
    "strconv"
    "time"
)

// Seat describes a physical seat in a room.  Seats are uniquely
// identified among the active seats of a room by their row letter and
// seat number.  Resizing a room tombstones its seats and generates new
// ones, so a seat ID is only meaningful while DeletedAt is nil.
//
// Fields:
//  ID        – primary key identifier.
//  RoomID    – room to which this seat belongs.
//  Row       – row letter (A, B, C, ...).
//  Number    – position in the row, starting at 1.
//  DeletedAt – tombstone; nil while the seat is active.
type Seat struct {
    ID        uint64     `json:"id"`      // seats.id
    RoomID    uint64     `json:"room_id"` // seats.room_id
    Row       string     `json:"row"`     // seats.row_label
    Number    int        `json:"number"`  // seats.seat_number
    DeletedAt *time.Time `json:"-"`       // seats.deleted_at (nullable)
}

// Ubication returns the human readable position of the seat, e.g. "B5".
func (s Seat) Ubication() string {
    return s.Row + strconv.Itoa(s.Number)
}

// Active reports whether the seat has not been tombstoned.
func (s Seat) Active() bool { return s.DeletedAt == nil }

// SeatStatus is the availability of a seat for a particular showtime.
type SeatStatus string

const (
    SeatAvailable SeatStatus = "AVAILABLE"
    SeatTaken     SeatStatus = "TAKEN"
)

// CompareSeats orders seats row-major: shorter row labels first (A..Z
// before AA), then alphabetically, then by seat number.
func CompareSeats(a, b Seat) int {
    switch {
    case len(a.Row) != len(b.Row):
        return len(a.Row) - len(b.Row)
    case a.Row != b.Row:
        if a.Row < b.Row {
            return -1
        }
        return 1
    default:
        return a.Number - b.Number
    }
}
