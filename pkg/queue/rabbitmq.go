package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"girlfanz/pkg/config"
	"girlfanz/pkg/logger"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange = "platform.events"

	EventPurchaseCompleted = "purchase.completed"
	EventPostPublished     = "post.published"
	EventPostDeleted       = "post.deleted"
)

var (
	ErrMalformedEvent = errors.New("malformed event")
	// ErrUnprocessable marks handler failures that redelivery cannot fix.
	// Such messages are rejected without requeue.
	ErrUnprocessable = errors.New("unprocessable event")
)

// Event is the envelope published on the platform exchange. The routing key
// equals Type.
type Event struct {
	Type         string     `json:"type"`
	ViewerID     string     `json:"viewer_id,omitempty"`
	CreatorID    string     `json:"creator_id,omitempty"`
	PostID       string     `json:"post_id,omitempty"`
	PriceInCents int        `json:"price_in_cents,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	OccurredAt   time.Time  `json:"occurred_at"`
}

// DecodeEvent parses a message body and checks the fields its type requires.
func DecodeEvent(body []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	switch event.Type {
	case EventPurchaseCompleted:
		if event.ViewerID == "" || event.PostID == "" {
			return Event{}, fmt.Errorf("%w: purchase requires viewer_id and post_id", ErrMalformedEvent)
		}
		if _, err := uuid.Parse(event.ViewerID); err != nil {
			return Event{}, fmt.Errorf("%w: viewer_id: %v", ErrMalformedEvent, err)
		}
		if _, err := uuid.Parse(event.PostID); err != nil {
			return Event{}, fmt.Errorf("%w: post_id: %v", ErrMalformedEvent, err)
		}
		if event.PriceInCents <= 0 {
			return Event{}, fmt.Errorf("%w: purchase requires a positive price", ErrMalformedEvent)
		}
	case EventPostPublished, EventPostDeleted:
		if event.PostID == "" {
			return Event{}, fmt.Errorf("%w: %s requires post_id", ErrMalformedEvent, event.Type)
		}
	default:
		return Event{}, fmt.Errorf("%w: unknown type %q", ErrMalformedEvent, event.Type)
	}
	return event, nil
}

type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *logger.Logger
}

func NewRabbitMQClient(cfg *config.Config, log *logger.Logger) (*Client, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.RabbitMQUser,
		cfg.RabbitMQPassword,
		cfg.RabbitMQHost,
		cfg.RabbitMQPort,
	)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		EventsExchange, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	log.Info("Connected to RabbitMQ at %s:%s", cfg.RabbitMQHost, cfg.RabbitMQPort)

	return &Client{
		conn:    conn,
		channel: channel,
		logger:  log,
	}, nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Publish sends an event to the platform exchange using its type as routing key.
func (c *Client) Publish(ctx context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = c.channel.PublishWithContext(ctx,
		EventsExchange, // exchange
		event.Type,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
		},
	)
	if err != nil {
		c.logger.Error("[RABBITMQ] Failed to publish event type=%s: %v", event.Type, err)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	c.logger.Debug("[RABBITMQ] Published event type=%s post_id=%s", event.Type, event.PostID)
	return nil
}

// Consume binds a durable queue to the given routing keys and blocks, handing
// each decoded event to handler, until ctx is cancelled or the channel closes.
// Malformed messages and ErrUnprocessable failures are dropped. Other handler
// errors requeue the message.
func (c *Client) Consume(ctx context.Context, queueName string, routingKeys []string, handler func(context.Context, Event) error) error {
	if _, err := c.channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	for _, key := range routingKeys {
		if err := c.channel.QueueBind(queueName, key, EventsExchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue to %s: %w", key, err)
		}
	}

	msgs, err := c.channel.ConsumeWithContext(ctx,
		queueName, // queue
		"",        // consumer
		false,     // auto-ack
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("[RABBITMQ] Started consuming from queue: %s", queueName)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("consumer channel closed for queue %s", queueName)
			}

			c.dispatch(ctx, queueName, msg, handler)
		}
	}
}

// dispatch settles one delivery: malformed and unprocessable messages are
// rejected, other handler errors are requeued.
func (c *Client) dispatch(ctx context.Context, queueName string, msg amqp.Delivery, handler func(context.Context, Event) error) {
	event, err := DecodeEvent(msg.Body)
	if err != nil {
		c.logger.Warn("[RABBITMQ] Dropping message from %s: %v", queueName, err)
		msg.Nack(false, false)
		return
	}

	if err := handler(ctx, event); err != nil {
		if errors.Is(err, ErrUnprocessable) {
			c.logger.Warn("[RABBITMQ] Dropping event type=%s from %s: %v", event.Type, queueName, err)
			msg.Nack(false, false)
			return
		}
		c.logger.Error("[RABBITMQ] Handler failed for event type=%s: %v", event.Type, err)
		msg.Nack(false, true)
		return
	}

	msg.Ack(false)
}
