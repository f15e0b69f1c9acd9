package model

import "time"

// SeatsPerRow is the fixed width of every generated seat grid.
const SeatsPerRow = 10

// Room represents a screening room.  TotalSeats drives the seat grid:
// seats are laid out row-major with SeatsPerRow seats per row and a
// possibly partial final row.  This struct corresponds to a row in the
// `rooms` table.
//
// Fields:
//  ID         – primary key identifier.
//  Name       – human readable room name.
//  TotalSeats – number of seats generated for the room.
//  CreatedAt  – creation timestamp.
//  DeletedAt  – tombstone; nil while the room is active.
type Room struct {
    ID         uint64     `json:"id"`          // rooms.id
    Name       string     `json:"name"`        // rooms.name
    TotalSeats int        `json:"total_seats"` // rooms.total_seats
    CreatedAt  time.Time  `json:"created_at"`  // rooms.created_at
    DeletedAt  *time.Time `json:"-"`           // rooms.deleted_at (nullable)
}

// Active reports whether the room has not been tombstoned.
func (r Room) Active() bool { return r.DeletedAt == nil }
