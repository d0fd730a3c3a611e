package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"fiscora/internal/core"
)

const publishTimeout = 5 * time.Second

type Client struct {
	mu           sync.Mutex
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
	now          func() time.Time
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
		now:          time.Now,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

// setup declares a durable direct exchange and a durable queue bound to it
// with the queue name as routing key.
func (c *Client) setup() error {
	if err := c.channel.ExchangeDeclare(c.exchangeName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := c.channel.QueueDeclare(c.queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := c.channel.QueueBind(c.queueName, c.queueName, c.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// PublishTransactionEvent publishes a persistent change notification for tx.
// previous holds the stored version an update replaced, if any.
func (c *Client) PublishTransactionEvent(ctx context.Context, kind EventKind, tx core.Transaction, previous ...core.Transaction) error {
	evt := NewTransactionEvent(kind, tx, c.now(), previous...)
	body, err := evt.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	c.mu.Lock()
	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName,
		c.queueName,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    evt.Timestamp,
			Type:         string(kind),
			Body:         body,
		},
	)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	slog.InfoContext(ctx, "Published transaction event",
		"component", "amqp",
		"event_kind", kind,
		"transaction_id", tx.ID,
		"years", evt.Years,
		"exchange", c.exchangeName)

	return nil
}

// EventHandler processes one decoded event
type EventHandler func(context.Context, *TransactionEvent) error

// ConsumeTransactionEvents blocks delivering events to handler until ctx
// is cancelled or the channel closes. Malformed messages are dropped,
// handler failures are requeued.
func (c *Client) ConsumeTransactionEvents(ctx context.Context, handler EventHandler) error {
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set prefetch: %w", err)
	}
	msgs, err := c.channel.Consume(c.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming transaction events", "component", "amqp", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping event consumption", "component", "amqp", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			switch dispatch(ctx, delivery.Body, handler) {
			case outcomeAck:
				_ = delivery.Ack(false)
			case outcomeDrop:
				_ = delivery.Nack(false, false)
			case outcomeRequeue:
				_ = delivery.Nack(false, true)
			}
		}
	}
}

type outcome int

const (
	outcomeAck outcome = iota
	outcomeDrop
	outcomeRequeue
)

func dispatch(ctx context.Context, body []byte, handler EventHandler) outcome {
	evt, err := TransactionEventFromJSON(body)
	if err != nil {
		slog.ErrorContext(ctx, "Dropping malformed event", "component", "amqp", "error", err)
		return outcomeDrop
	}
	if err := handler(ctx, evt); err != nil {
		slog.ErrorContext(ctx, "Failed to handle event",
			"component", "amqp",
			"error", err,
			"event_kind", evt.Kind,
			"transaction_id", evt.TransactionID)
		return outcomeRequeue
	}
	slog.DebugContext(ctx, "Processed transaction event",
		"component", "amqp",
		"event_kind", evt.Kind,
		"transaction_id", evt.TransactionID)
	return outcomeAck
}

// Ping reports whether the broker connection is still open
func (c *Client) Ping(context.Context) error {
	if c.conn == nil || c.conn.IsClosed() {
		return fmt.Errorf("amqp connection closed")
	}
	return nil
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
