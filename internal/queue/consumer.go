package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "log/slog"
    "os"
    "path/filepath"
    "strconv"
    "strings"
    "time"

    "github.com/cockroachdb/errors"
    amqp "github.com/rabbitmq/amqp091-go"
)

// AuditConsumer appends one line per reservation event to a log file.
type AuditConsumer struct {
    url     string
    logPath string
    logger  *slog.Logger
}

func NewAuditConsumer(url, logPath string, logger *slog.Logger) *AuditConsumer {
    if logPath == "" {
        logPath = filepath.Join("logs", "booking.log")
    }
    return &AuditConsumer{url: url, logPath: logPath, logger: logger}
}

// Run connects to the broker and consumes until ctx is cancelled,
// reconnecting with exponential backoff when the connection drops.
func (c *AuditConsumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(c.url)
        if err != nil {
            c.logger.Warn("audit consumer: dial failed", "error", err, "retry_in", backoff.String())
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = c.consume(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.logger.Warn("audit consumer: consume loop ended, reconnecting", "error", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func (c *AuditConsumer) consume(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return errors.Wrap(err, "channel open")
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.logger.Warn("audit consumer: set QoS failed", "error", err)
    }
    if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
        return errors.Wrap(err, "queue declare")
    }
    msgs, err := ch.Consume(QueueName, "", false, false, false, false, nil)
    if err != nil {
        return errors.Wrap(err, "queue consume")
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := c.handle(d.Body); err != nil {
                c.logger.Error("audit consumer: handle message failed", "error", err)
                _ = d.Nack(false, false) // reject without requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func (c *AuditConsumer) handle(body []byte) error {
    var ev ReservationEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return errors.Wrap(err, "unmarshal")
    }
    if err := os.MkdirAll(filepath.Dir(c.logPath), 0o755); err != nil {
        return errors.Wrap(err, "mkdir logs")
    }
    f, err := os.OpenFile(c.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return errors.Wrap(err, "open log file")
    }
    defer f.Close()

    if _, err := f.WriteString(FormatAuditLine(ev)); err != nil {
        return errors.Wrap(err, "write log")
    }
    return nil
}

// FormatAuditLine renders ev as a single human friendly log line.
func FormatAuditLine(ev ReservationEvent) string {
    seats := make([]string, len(ev.SeatIDs))
    for i, id := range ev.SeatIDs {
        seats[i] = strconv.FormatUint(id, 10)
    }
    return fmt.Sprintf("[%s] %s | reservation_id=%d | user_id=%s | showtime_id=%d | room_id=%d | total=%d cents | seats=[%s]\n",
        ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type, ev.ReservationID, ev.UserID,
        ev.ShowtimeID, ev.RoomID, ev.PriceCents, strings.Join(seats, ","))
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
