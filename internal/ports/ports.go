// Package ports models the named one-way signal paths between the host application and the backend.
package ports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Port names shared with the host application.
const (
	GetQuizFromLocalStorage = "getQuizFromLocalStorage" // inbound: quiz identifier
	SendQuiz                = "sendQuiz"                // outbound: quiz payload
	QuizNotFound            = "quizNotFound"            // outbound: identifier that could not be served
)

var (
	ErrUnknownPort = errors.New("no subscriber for port")
	ErrEmptyPort   = errors.New("port name is empty")
)

// Handler receives the raw payload of an inbound signal.
type Handler func(ctx context.Context, payload json.RawMessage)

// Host is the host application as seen from the backend: it lets handlers
// subscribe to inbound ports and send values on outbound ports.
type Host interface {
	Subscribe(port string, fn Handler)
	Send(ctx context.Context, port string, payload any) error
}

// Sender delivers an outbound signal to the host.
type Sender interface {
	Send(ctx context.Context, port string, payload any) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, port string, payload any) error

func (f SenderFunc) Send(ctx context.Context, port string, payload any) error {
	return f(ctx, port, payload)
}

// Router keeps the subscriptions of one application session and delegates
// outbound signals to a Sender. It is safe for concurrent use.
type Router struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	sender   Sender
}

// NewRouter creates a Router that sends outbound signals through sender.
func NewRouter(sender Sender) *Router {
	return &Router{
		handlers: make(map[string][]Handler),
		sender:   sender,
	}
}

// Subscribe registers fn for every future signal on port.
func (r *Router) Subscribe(port string, fn Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[port] = append(r.handlers[port], fn)
}

// Send forwards an outbound signal to the sender.
func (r *Router) Send(ctx context.Context, port string, payload any) error {
	if port == "" {
		return ErrEmptyPort
	}
	return r.sender.Send(ctx, port, payload)
}

// Dispatch delivers an inbound signal to every subscriber of port, in subscription order.
func (r *Router) Dispatch(ctx context.Context, port string, payload json.RawMessage) error {
	r.mu.RLock()
	handlers := append([]Handler(nil), r.handlers[port]...)
	r.mu.RUnlock()

	if len(handlers) == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownPort, port)
	}

	for _, h := range handlers {
		h(ctx, payload)
	}

	return nil
}

// Subscribed reports whether port has at least one subscriber.
func (r *Router) Subscribed(port string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[port]) > 0
}
