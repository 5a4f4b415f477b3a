package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/blog-backend/internal/logging"
)

// Publisher sends post events to the broker.  Callers treat errors as
// advisory; a failed publish never fails the request that caused it.
type Publisher interface {
    Publish(ctx context.Context, ev PostEvent) error
}

// NopPublisher drops every event.  It is used when events are disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, PostEvent) error { return nil }

// AMQPPublisher dials the broker per publish.  Post writes are infrequent, so
// a short-lived connection keeps the publisher free of reconnect state.
type AMQPPublisher struct {
    url   string
    queue string
}

func NewAMQPPublisher(url, queue string) *AMQPPublisher {
    return &AMQPPublisher{url: url, queue: queue}
}

// Publish declares the durable queue (idempotent) and sends ev as a
// persistent JSON message through the default exchange.
func (p *AMQPPublisher) Publish(ctx context.Context, ev PostEvent) error {
    log := logging.From(ctx)

    conn, err := amqp.Dial(p.url)
    if err != nil {
        log.Warn("rabbitmq: dial failed", "err", err)
        return fmt.Errorf("dial broker: %w", err)
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Warn("rabbitmq: channel open failed", "err", err)
        return fmt.Errorf("open channel: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if _, err := ch.QueueDeclare(
        p.queue, // name
        true,    // durable
        false,   // autoDelete
        false,   // exclusive
        false,   // noWait
        nil,     // args
    ); err != nil {
        log.Warn("rabbitmq: queue declare failed", "err", err)
        return fmt.Errorf("declare queue: %w", err)
    }

    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Type:         ev.Type,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
        log.Warn("rabbitmq: publish failed", "err", err, "type", ev.Type)
        return fmt.Errorf("publish: %w", err)
    }
    return nil
}
