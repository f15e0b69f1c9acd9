package model

// Movie is the read-only view of a catalog movie that scheduling needs.
type Movie struct {
    ID              uint64 `json:"id"`
    Title           string `json:"title"`
    DurationMinutes int    `json:"duration_minutes"`
}
