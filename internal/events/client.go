// Package events publishes and consumes ledger change events over
// AMQP. Publishing is best-effort everywhere: a nil client skips
// silently and publish failures never fail the originating request.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
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
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = c.channel.QueueBind(
		c.queueName,    // queue name
		c.queueName,    // routing key (same as queue name for direct exchange)
		c.exchangeName, // exchange
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// PublishDayChanged publishes a day change event.
func (c *Client) PublishDayChanged(ctx context.Context, msg *DayChangedMessage) error {
	body, err := wrap(KindDayChanged, msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published day change event",
		"ledger", msg.Ledger,
		"day_id", msg.DayID,
		"date", msg.Date,
		"deleted", msg.Deleted)
	return nil
}

// PublishBalanceUpdated publishes a balance update event.
func (c *Client) PublishBalanceUpdated(ctx context.Context, msg *BalanceUpdatedMessage) error {
	body, err := wrap(KindBalanceUpdated, msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published balance update event", "ledger", msg.Ledger)
	return nil
}

func (c *Client) publish(ctx context.Context, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// Handlers receives decoded messages during consumption. A nil handler
// acks and drops that message kind.
type Handlers struct {
	DayChanged     func(context.Context, *DayChangedMessage) error
	BalanceUpdated func(context.Context, *BalanceUpdatedMessage) error
}

// ConsumeMessages reads events from the queue until ctx is done.
// Handler errors nack with requeue; undecodable messages are dropped.
func (c *Client) ConsumeMessages(ctx context.Context, handlers Handlers) error {
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack (we want manual ack)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming change events", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping event consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			if err := c.dispatch(ctx, delivery.Body, handlers); err != nil {
				slog.ErrorContext(ctx, "Failed to handle event", "error", err)
				delivery.Nack(false, true) // reject and requeue
				continue
			}

			delivery.Ack(false)
		}
	}
}

func (c *Client) dispatch(ctx context.Context, body []byte, handlers Handlers) error {
	kind, payload, err := unwrap(body)
	if err != nil {
		// Undecodable messages would requeue forever; log and drop.
		slog.ErrorContext(ctx, "Failed to unmarshal event, dropping", "error", err)
		return nil
	}

	switch kind {
	case KindDayChanged:
		if handlers.DayChanged == nil {
			return nil
		}
		var msg DayChangedMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			slog.ErrorContext(ctx, "Malformed day change event, dropping", "error", err)
			return nil
		}
		return handlers.DayChanged(ctx, &msg)
	case KindBalanceUpdated:
		if handlers.BalanceUpdated == nil {
			return nil
		}
		var msg BalanceUpdatedMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			slog.ErrorContext(ctx, "Malformed balance update event, dropping", "error", err)
			return nil
		}
		return handlers.BalanceUpdated(ctx, &msg)
	default:
		slog.WarnContext(ctx, "Unknown event kind, dropping", "kind", kind)
		return nil
	}
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
