package flash

import (
	"context"
	"time"

	"github.com/kislikjeka/finpanel/pkg/logger"
)

// Notifier queues toasts for the session found in ctx. Messages without a
// session key or that fail to store are logged and dropped.
type Notifier struct {
	store  Store
	logger *logger.Logger
	now    func() time.Time
}

// NewNotifier creates a notifier backed by store
func NewNotifier(store Store, log *logger.Logger) *Notifier {
	return &Notifier{
		store:  store,
		logger: log.WithField("component", "flash"),
		now:    time.Now,
	}
}

// Success queues a success toast
func (n *Notifier) Success(ctx context.Context, message string) {
	n.push(ctx, LevelSuccess, message)
}

// Error queues an error toast
func (n *Notifier) Error(ctx context.Context, message string) {
	n.push(ctx, LevelError, message)
}

func (n *Notifier) push(ctx context.Context, level Level, text string) {
	log := n.logger.WithContext(ctx)

	key, ok := KeyFromContext(ctx)
	if !ok {
		log.Warn("dropping flash message without session", "level", level, "text", text)
		return
	}

	msg := Message{Level: level, Text: text, CreatedAt: n.now().UTC()}
	if err := n.store.Push(context.WithoutCancel(ctx), key, msg); err != nil {
		log.WithError(err).Error("failed to store flash message", "level", level)
	}
}
