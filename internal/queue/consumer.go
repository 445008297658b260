package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/rs/zerolog"
)

// Consumer listens to the booking.created queue and appends one line per
// booking to <dir>/booking.log.
type Consumer struct {
    url string
    dir string
    log zerolog.Logger
}

// NewConsumer returns a Consumer for the broker at url writing into dir.
func NewConsumer(url, dir string, log zerolog.Logger) *Consumer {
    return &Consumer{url: url, dir: dir, log: log}
}

// Run connects, declares the queue and consumes until ctx is cancelled.
// Broken connections are re-dialled with exponential backoff capped at
// 30 seconds.  Messages that cannot be handled are rejected without
// requeue so a poison message cannot spin the loop.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.DialConfig(c.url, amqp.Config{Dial: amqp.DefaultDial(5 * time.Second)})
        if err != nil {
            c.log.Warn().Err(err).Dur("retry_in", backoff).Msg("booking-consumer: failed to dial broker")
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.log.Warn().Err(err).Msg("booking-consumer: consume loop ended; reconnecting")
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
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

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.log.Warn().Err(err).Msg("booking-consumer: set QoS failed")
    }
    if _, err := ch.QueueDeclare(BookingCreatedQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.ConsumeWithContext(ctx, BookingCreatedQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for d := range msgs {
        if err := c.handleMessage(d.Body); err != nil {
            c.log.Error().Err(err).Msg("booking-consumer: handle message failed")
            _ = d.Nack(false, false)
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

func (c *Consumer) handleMessage(body []byte) error {
    var ev BookingCreatedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.BookingReference == "" {
        return errors.New("event without booking_reference")
    }
    if err := os.MkdirAll(c.dir, 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(filepath.Join(c.dir, "booking.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(formatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

func formatLine(ev BookingCreatedEvent) string {
    return fmt.Sprintf("[%s] Booking created | reference=%s | booking_id=%d | match_id=%d | email=%s | ticket=%s x%d | total=%s | status=%s\n",
        ev.CreatedAt, ev.BookingReference, ev.BookingID, ev.MatchID, ev.CustomerEmail,
        ev.TicketType, ev.Quantity, ev.TotalAmount, ev.PaymentStatus)
}
