// Package notify sends transactional account emails. Delivery is best
// effort: callers enqueue and move on, failures are logged.
package notify

import (
	"context"
	"fmt"
	"log/slog"
)

// Message is a plain text email
type Message struct {
	To      string
	Name    string
	Subject string
	Body    string
}

// Notifier delivers a message
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(ctx context.Context, msg Message) error

// Send implements Notifier
func (f NotifierFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// Welcome is sent after a successful registration
func Welcome(email, name string) Message {
	return Message{
		To:      email,
		Name:    name,
		Subject: "Thanks for joining in!",
		Body:    fmt.Sprintf("Welcome to the app, %s. Let me know how you get along with the app.", name),
	}
}

// Farewell is sent after an account is deleted
func Farewell(email, name string) Message {
	return Message{
		To:      email,
		Name:    name,
		Subject: "Sorry to see you go!",
		Body:    fmt.Sprintf("Thanks for using the app %s, I'm sad to see you go. I hope to see you back sometime soon", name),
	}
}

// LogNotifier writes messages to the log instead of delivering them. Used
// when no mail transport is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

// Send implements Notifier
func (n LogNotifier) Send(_ context.Context, msg Message) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("notification not delivered, no mail transport configured",
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}
