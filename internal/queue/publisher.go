package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/rs/zerolog"

    "github.com/iliyamo/club-ledger/internal/monitoring"
)

// Publisher sends domain events to RabbitMQ.  It dials per publish, which
// keeps it free of connection state.  Errors are returned for the caller
// to log or ignore.
type Publisher struct {
    url         string
    dialTimeout time.Duration
    log         zerolog.Logger
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string, log zerolog.Logger) *Publisher {
    return &Publisher{url: url, dialTimeout: 3 * time.Second, log: log}
}

// PublishBookingCreated publishes ev to the booking.created queue as a
// persistent message.
func (p *Publisher) PublishBookingCreated(ctx context.Context, ev BookingCreatedEvent) error {
    err := p.publish(ctx, BookingCreatedQueue, ev)
    monitoring.EventPublished(BookingCreatedQueue, err)
    if err != nil {
        return fmt.Errorf("rabbitmq: publish to %s: %w", BookingCreatedQueue, err)
    }
    p.log.Debug().Str("queue", BookingCreatedQueue).Str("booking_reference", ev.BookingReference).Msg("rabbitmq: published")
    return nil
}

func (p *Publisher) publish(ctx context.Context, queueName string, payload any) error {
    body, err := json.Marshal(payload)
    if err != nil {
        return err
    }
    conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(p.dialTimeout)})
    if err != nil {
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        return err
    }
    defer func() { _ = ch.Close() }()

    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        queueName, // name
        true,      // durable
        false,     // autoDelete
        false,     // exclusive
        false,     // noWait
        nil,       // args
    ); err != nil {
        return err
    }

    return ch.PublishWithContext(ctx,
        "",        // default exchange
        queueName, // routing key = queue name
        false,     // mandatory
        false,     // immediate
        amqp.Publishing{
            ContentType:  "application/json",
            DeliveryMode: amqp.Persistent, // store on disk
            Timestamp:    time.Now().UTC(),
            Body:         body,
        },
    )
}
