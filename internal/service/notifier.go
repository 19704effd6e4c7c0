package service

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/spacelink/internal/model"
	"github.com/iliyamo/spacelink/internal/queue"
)

// AMQPNotifier publishes notification events to RabbitMQ.  A connection is
// opened per publish; booking transitions are rare enough that keeping a
// long-lived channel healthy is not worth the bookkeeping.
type AMQPNotifier struct {
	url string
	now func() time.Time
}

// NewAMQPNotifier returns a notifier publishing to the broker at url.
func NewAMQPNotifier(url string) *AMQPNotifier {
	return &AMQPNotifier{url: url, now: func() time.Time { return time.Now().UTC() }}
}

// Notify publishes a persistent NotificationEvent on queue.NotificationQueue.
func (n *AMQPNotifier) Notify(ctx context.Context, userID, kind, message string) error {
	body, err := json.Marshal(queue.NotificationEvent{
		UserID:    userID,
		Type:      kind,
		Message:   message,
		CreatedAt: n.now().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.Dial(n.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queue.NotificationQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    n.now(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.NotificationQueue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

// InboxNotifier writes notifications straight into the inbox.  Used when no
// broker is configured.
type InboxNotifier struct {
	inbox queue.Inbox
	now   func() time.Time
}

// NewInboxNotifier returns a notifier backed by inbox.
func NewInboxNotifier(inbox queue.Inbox) *InboxNotifier {
	return &InboxNotifier{inbox: inbox, now: func() time.Time { return time.Now().UTC() }}
}

func (n *InboxNotifier) Notify(ctx context.Context, userID, kind, message string) error {
	return n.inbox.Create(ctx, &model.Notification{
		UserID:    userID,
		Type:      kind,
		Message:   message,
		CreatedAt: n.now(),
	})
}
