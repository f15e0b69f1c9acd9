package queue

import (
    "context"
    "encoding/json"
    "log/slog"
    "sync"
    "time"

    "github.com/cockroachdb/errors"
    amqp "github.com/rabbitmq/amqp091-go"
)

// QueueName is the durable queue reservation events are routed to.
const QueueName = "reservation.events"

// AMQPPublisher publishes events to QueueName through the default
// exchange.  The connection is opened lazily and reopened after a
// failure, so a broker outage never blocks startup.
type AMQPPublisher struct {
    url    string
    logger *slog.Logger

    mu   sync.Mutex
    conn *amqp.Connection
    ch   *amqp.Channel
}

func NewAMQPPublisher(url string, logger *slog.Logger) *AMQPPublisher {
    return &AMQPPublisher{url: url, logger: logger}
}

func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
    if p.ch != nil && !p.ch.IsClosed() {
        return p.ch, nil
    }
    p.closeLocked()
    conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(3 * time.Second)})
    if err != nil {
        return nil, errors.Wrap(err, "rabbitmq dial")
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return nil, errors.Wrap(err, "rabbitmq channel")
    }
    // Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
        _ = ch.Close()
        _ = conn.Close()
        return nil, errors.Wrap(err, "rabbitmq queue declare")
    }
    p.conn, p.ch = conn, ch
    return ch, nil
}

// Publish sends ev as a persistent JSON message.
func (p *AMQPPublisher) Publish(ctx context.Context, ev ReservationEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return errors.Wrap(err, "marshal event")
    }

    p.mu.Lock()
    defer p.mu.Unlock()
    ch, err := p.channel()
    if err != nil {
        return err
    }
    err = ch.PublishWithContext(ctx, "", QueueName, false, false, amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    ev.OccurredAt,
        Type:         ev.Type,
        Body:         body,
    })
    if err != nil {
        p.closeLocked()
        return errors.Wrap(err, "rabbitmq publish")
    }
    p.logger.Debug("event published", "type", ev.Type, "reservation_id", ev.ReservationID)
    return nil
}

// Close releases the broker connection.
func (p *AMQPPublisher) Close() {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.closeLocked()
}

func (p *AMQPPublisher) closeLocked() {
    if p.ch != nil {
        _ = p.ch.Close()
        p.ch = nil
    }
    if p.conn != nil {
        _ = p.conn.Close()
        p.conn = nil
    }
}
