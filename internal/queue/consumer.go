package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/spacelink/internal/model"
)

// Inbox stores delivered notifications.
type Inbox interface {
	Create(ctx context.Context, n *model.Notification) error
}

// Consumer drains NotificationQueue into an Inbox.
type Consumer struct {
	url   string
	inbox Inbox
	log   *zap.Logger
}

// NewConsumer returns a consumer for the broker at url.
func NewConsumer(url string, inbox Inbox, log *zap.Logger) *Consumer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Consumer{url: url, inbox: inbox, log: log.Named("notification-consumer")}
}

// Run connects to RabbitMQ, declares the notification queue and consumes
// until ctx is cancelled.  Broken connections are redialled with an
// exponential backoff capped at 30s.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("dial broker failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(NotificationQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(NotificationQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.Handle(ctx, d.Body); err != nil {
				c.log.Error("handle message failed", zap.Error(err))
				_ = d.Nack(false, false) // drop, requeueing a bad payload loops forever
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Handle decodes one event body and stores it.
func (c *Consumer) Handle(ctx context.Context, body []byte) error {
	var ev NotificationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if strings.TrimSpace(ev.UserID) == "" || strings.TrimSpace(ev.Message) == "" {
		return errors.New("event missing user_id or message")
	}
	createdAt := time.Now().UTC()
	if ev.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, ev.CreatedAt); err == nil {
			createdAt = t.UTC()
		}
	}
	n := &model.Notification{
		UserID:    ev.UserID,
		Type:      ev.Type,
		Message:   ev.Message,
		CreatedAt: createdAt,
	}
	if err := c.inbox.Create(ctx, n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	c.log.Debug("notification stored", zap.String("user_id", ev.UserID), zap.String("type", ev.Type))
	return nil
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
