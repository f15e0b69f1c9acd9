package queue

import (
    "encoding/json"
    "io"
    "log/slog"
    "os"
    "path/filepath"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func sampleEvent() ReservationEvent {
    return ReservationEvent{
        Type:          EventReservationCreated,
        ReservationID: 42,
        ShowtimeID:    7,
        RoomID:        3,
        UserID:        "0b0c6a2e-4b8e-4d59-9d1a-4a1cdb5d4f11",
        SeatIDs:       []uint64{11, 12},
        PriceCents:    1999,
        OccurredAt:    time.Date(2026, 3, 1, 17, 0, 0, 0, time.UTC),
    }
}

func TestFormatAuditLine(t *testing.T) {
    got := FormatAuditLine(sampleEvent())
    assert.Equal(t,
        "[2026-03-01T17:00:00Z] reservation.created | reservation_id=42 | user_id=0b0c6a2e-4b8e-4d59-9d1a-4a1cdb5d4f11 | showtime_id=7 | room_id=3 | total=1999 cents | seats=[11,12]\n",
        got)
}

func TestAuditConsumerAppendsLines(t *testing.T) {
    path := filepath.Join(t.TempDir(), "logs", "booking.log")
    c := NewAuditConsumer("", path, slog.New(slog.NewTextHandler(io.Discard, nil)))

    body, err := json.Marshal(sampleEvent())
    require.NoError(t, err)
    require.NoError(t, c.handle(body))
    require.NoError(t, c.handle(body))

    raw, err := os.ReadFile(path)
    require.NoError(t, err)
    assert.Equal(t, 2*len(FormatAuditLine(sampleEvent())), len(raw))
}

func TestAuditConsumerRejectsGarbage(t *testing.T) {
    c := NewAuditConsumer("", filepath.Join(t.TempDir(), "booking.log"), slog.New(slog.NewTextHandler(io.Discard, nil)))
    require.Error(t, c.handle([]byte("not json")))
}
