package service

import (
    "strconv"
    "strings"

    "github.com/iliyamo/cinema-booking/internal/apperr"
    "github.com/iliyamo/cinema-booking/internal/model"
)

// GenerateSeats lays out total seats row-major, model.SeatsPerRow per
// row.  Rows are labelled A..Z, then AA, AB, ...; the last row may be
// partial and numbering restarts at 1 in every row.
func GenerateSeats(roomID uint64, total int) []model.Seat {
    seats := make([]model.Seat, 0, total)
    for i := 0; i < total; i++ {
        seats = append(seats, model.Seat{
            RoomID: roomID,
            Row:    rowLabel(i / model.SeatsPerRow),
            Number: i%model.SeatsPerRow + 1,
        })
    }
    return seats
}

// rowLabel converts a zero-based row index to A, B, ..., Z, AA, AB, ...
func rowLabel(i int) string {
    if i < 0 {
        return ""
    }
    var res []byte
    for {
        res = append(res, byte('A'+i%26))
        i = i/26 - 1
        if i < 0 {
            break
        }
    }
    for j, k := 0, len(res)-1; j < k; j, k = j+1, k-1 {
        res[j], res[k] = res[k], res[j]
    }
    return string(res)
}

// ParseUbication splits a seat position such as "b5" into its row label
// ("B") and number (5).  The row is one or more letters, the number one
// or more digits, case-insensitive and with nothing in between.
func ParseUbication(raw string) (string, int, error) {
    s := strings.ToUpper(strings.TrimSpace(raw))
    split := 0
    for split < len(s) && s[split] >= 'A' && s[split] <= 'Z' {
        split++
    }
    row, digits := s[:split], s[split:]
    if row == "" || digits == "" {
        return "", 0, apperr.InvalidArgument("invalid seat position %q", raw)
    }
    for i := 0; i < len(digits); i++ {
        if digits[i] < '0' || digits[i] > '9' {
            return "", 0, apperr.InvalidArgument("invalid seat position %q", raw)
        }
    }
    n, err := strconv.Atoi(digits)
    if err != nil || n < 1 {
        return "", 0, apperr.InvalidArgument("invalid seat position %q", raw)
    }
    return row, n, nil
}
