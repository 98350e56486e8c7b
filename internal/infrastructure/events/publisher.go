package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

// Routing keys for integration events published on the topic exchange.
const (
	KeyConversationAssigned = "inbox.conversation.assigned"
	KeyConversationResolved = "inbox.conversation.resolved"
	KeyMessageInbound       = "inbox.message.inbound"
	KeySMSSent              = "inbox.sms.sent"
)

// Meta carries event identity and provenance.
type Meta struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	BusinessID string    `json:"business_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Envelope is the wire format for every integration event: a stable meta
// header plus an event-specific payload.
type Envelope struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

// Publisher emits integration events for downstream consumers (CRM sync,
// analytics). Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, key string, env Envelope) error
	Close() error
}

type rmqPublisher struct {
	conn     *amqp091.Connection
	exchange string
	log      *slog.Logger
}

// New connects to RabbitMQ and declares the topic exchange.
func New(url, exchange string, logger *slog.Logger) (Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(
		exchange, "topic", true, false, false, false, nil,
	); err != nil {
		conn.Close()
		return nil, err
	}
	return &rmqPublisher{conn: conn, exchange: exchange, log: logger}, nil
}

// NewFromEnv builds a Publisher from AMQP_URL and AMQP_EXCHANGE. It returns
// (nil, nil) when AMQP_URL is unset so deployments without a broker run
// without event emission.
func NewFromEnv(logger *slog.Logger) (Publisher, error) {
	url := os.Getenv("AMQP_URL")
	if url == "" {
		return nil, nil
	}
	exchange := os.Getenv("AMQP_EXCHANGE")
	if exchange == "" {
		exchange = "textback.events"
	}
	return New(url, exchange, logger)
}

func (p *rmqPublisher) Publish(ctx context.Context, key string, env Envelope) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if env.Meta.ID == "" {
		env.Meta.ID = uuid.NewString()
	}
	if env.Meta.Type == "" {
		env.Meta.Type = key
	}
	if env.Meta.OccurredAt.IsZero() {
		env.Meta.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(
		ctx, p.exchange, key, false, false,
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    env.Meta.ID,
			Timestamp:    env.Meta.OccurredAt,
			Body:         body,
		},
	)
	if err == nil {
		p.log.Info("event published", slog.String("key", key), slog.String("exchange", p.exchange))
	}
	return err
}

func (p *rmqPublisher) Close() error {
	return p.conn.Close()
}
