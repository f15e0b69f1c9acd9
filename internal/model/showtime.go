package model

import "time"

// Showtime represents a scheduled screening of a movie in a room.  The
// duration is copied from the movie when the showtime is created so the
// occupied interval [StartsAt, StartsAt+DurationMinutes) stays stable
// even if the catalog changes later.
//
// Fields:
//  ID                – primary key identifier.
//  MovieID           – movie being screened.
//  RoomID            – room where the showtime takes place.
//  StartsAt          – when the showtime begins (UTC).
//  DurationMinutes   – length of the screening in minutes.
//  RemainingCapacity – seats still bookable; never negative.
//  CreatedAt         – creation timestamp.
//  DeletedAt         – tombstone set when the showtime is cancelled.
type Showtime struct {
    ID                uint64     `json:"id"`                 // showtimes.id
    MovieID           uint64     `json:"movie_id"`           // showtimes.movie_id
    RoomID            uint64     `json:"room_id"`            // showtimes.room_id
    StartsAt          time.Time  `json:"starts_at"`          // showtimes.starts_at
    DurationMinutes   int        `json:"duration_minutes"`   // showtimes.duration_minutes
    RemainingCapacity int        `json:"remaining_capacity"` // showtimes.remaining_capacity
    CreatedAt         time.Time  `json:"created_at"`         // showtimes.created_at
    DeletedAt         *time.Time `json:"-"`                  // showtimes.deleted_at (nullable)
}

// EndsAt returns the exclusive end of the occupied interval.
func (s Showtime) EndsAt() time.Time {
    return s.StartsAt.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// Overlaps reports whether the half-open intervals of s and the
// candidate [start, end) intersect.
func (s Showtime) Overlaps(start, end time.Time) bool {
    return start.Before(s.EndsAt()) && s.StartsAt.Before(end)
}

// Active reports whether the showtime has not been cancelled.
func (s Showtime) Active() bool { return s.DeletedAt == nil }

// ShowtimeListing is the read model returned when listing showtimes.  It
// adds the movie title and room name resolved from their catalogs.
type ShowtimeListing struct {
    Showtime
    MovieTitle string `json:"movie_title"`
    RoomName   string `json:"room_name"`
}
