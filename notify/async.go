package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrQueueFull is returned when the dispatcher can not accept more messages
var ErrQueueFull = errors.New("notify: queue full")

// ErrClosed is returned after Close
var ErrClosed = errors.New("notify: dispatcher closed")

// Async delivers messages on a background worker so request handlers never
// wait on the mail transport.
type Async struct {
	next        Notifier
	logger      *slog.Logger
	sendTimeout time.Duration

	queue chan Message
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// AsyncOption configures the dispatcher
type AsyncOption func(*Async)

// WithQueueSize sets how many pending messages are buffered
func WithQueueSize(n int) AsyncOption {
	return func(a *Async) {
		if n > 0 {
			a.queue = make(chan Message, n)
		}
	}
}

// WithSendTimeout bounds each delivery attempt
func WithSendTimeout(d time.Duration) AsyncOption {
	return func(a *Async) {
		if d > 0 {
			a.sendTimeout = d
		}
	}
}

// WithLogger sets the logger used for delivery failures
func WithLogger(l *slog.Logger) AsyncOption {
	return func(a *Async) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAsync starts a dispatcher in front of next
func NewAsync(next Notifier, opts ...AsyncOption) *Async {
	a := &Async{
		next:        next,
		logger:      slog.Default(),
		sendTimeout: 15 * time.Second,
		queue:       make(chan Message, 64),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.wg.Add(1)
	go a.run()
	return a
}

// Send enqueues msg. It never blocks on delivery.
func (a *Async) Send(_ context.Context, msg Message) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return ErrClosed
	}

	select {
	case a.queue <- msg:
		return nil
	default:
		a.logger.Warn("notification dropped, queue full", "to", msg.To, "subject", msg.Subject)
		return ErrQueueFull
	}
}

// Close stops accepting messages and waits for pending ones to be delivered
func (a *Async) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	a.wg.Wait()
}

func (a *Async) run() {
	defer a.wg.Done()
	for msg := range a.queue {
		a.deliver(msg)
	}
}

func (a *Async) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), a.sendTimeout)
	defer cancel()

	if err := a.next.Send(ctx, msg); err != nil {
		a.logger.Error("notification delivery failed",
			"to", msg.To,
			"subject", msg.Subject,
			"error", err,
		)
	}
}
