// Package queue defines message payloads exchanged over the message broker
// and the consumer that drains them.
package queue

// NotificationQueue is the durable queue notification events travel on.
const NotificationQueue = "spacelink.notifications"

// NotificationEvent is published whenever a booking changes in a way a
// user should hear about.  The consumer stores it in the user's inbox.
type NotificationEvent struct {
	UserID    string `json:"user_id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}
