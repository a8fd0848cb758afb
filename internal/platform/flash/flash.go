package flash

import (
	"context"
	"time"
)

// Level of a flash message
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// DefaultTTL bounds how long an unread message survives
const DefaultTTL = 5 * time.Minute

// Message is a one-shot notification shown on the next page render
type Message struct {
	Level     Level     `json:"level"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Store queues messages per session key. Pop drains the queue in push order.
type Store interface {
	Push(ctx context.Context, key string, msg Message) error
	Pop(ctx context.Context, key string) ([]Message, error)
}

type contextKey struct{}

// WithKey attaches the flash queue key (the browser session id) to ctx
func WithKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, contextKey{}, key)
}

// KeyFromContext returns the flash queue key carried by ctx
func KeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(contextKey{}).(string)
	return key, ok && key != ""
}
