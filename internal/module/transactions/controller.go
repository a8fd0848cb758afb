package transactions

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kislikjeka/finpanel/internal/platform/transaction"
	"github.com/kislikjeka/finpanel/pkg/logger"
)

// User-facing messages
const (
	LoadErrorMessage     = "Failed to load transactions. Please try again later."
	DeleteSuccessMessage = "Transaction deleted successfully!"
	DeleteErrorMessage   = "Failed to delete transaction. Please try again later."
)

// Controller owns the list state of the transactions page: fetch on period
// change, local search filtering, and delete with removal on confirmation.
//
// It is safe for concurrent use. Network calls run outside the lock so the
// state stays readable while they are in flight. Each fetch takes a
// generation number and only the latest generation may write its result.
type Controller struct {
	service  TransactionService
	notifier Notifier
	logger   *logger.Logger

	mu         sync.Mutex
	period     transaction.Period
	items      []transaction.Transaction
	filtered   []transaction.Transaction
	loading    bool
	errMsg     string
	searchText string
	deleting   map[string]struct{}
	lastDelete string
	generation uint64
}

// NewController creates a controller scoped to the initial period. Call
// Load to perform the first fetch.
func NewController(service TransactionService, notifier Notifier, log *logger.Logger, initial transaction.Period) *Controller {
	return &Controller{
		service:  service,
		notifier: notifier,
		logger:   log.WithField("component", "transactions"),
		period:   initial,
		items:    []transaction.Transaction{},
		filtered: []transaction.Transaction{},
		deleting: make(map[string]struct{}),
	}
}

// Load fetches the current period (the initial mount).
func (c *Controller) Load(ctx context.Context) {
	c.mu.Lock()
	period := c.period
	c.mu.Unlock()

	c.fetch(ctx, period)
}

// Retry refetches the current period, typically after an error.
func (c *Controller) Retry(ctx context.Context) {
	c.Load(ctx)
}

// SetPeriod switches to a new (year, month) and fetches it. An invalid
// period is rejected without touching the state.
func (c *Controller) SetPeriod(ctx context.Context, period transaction.Period) error {
	if err := period.Validate(); err != nil {
		return err
	}
	c.fetch(ctx, period)
	return nil
}

func (c *Controller) fetch(ctx context.Context, period transaction.Period) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.period = period
	c.loading = true
	c.errMsg = ""
	c.mu.Unlock()

	log := c.logger.WithContext(ctx)
	start := time.Now()

	items, err := c.service.ListTransactions(ctx, period)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		log.Debug("discarding stale transactions response",
			"period", period.String(),
			"generation", gen,
			"latest_generation", c.generation,
		)
		return
	}

	c.loading = false
	if err != nil {
		c.errMsg = LoadErrorMessage
		log.Error("failed to load transactions", "period", period.String(), "error", err)
		return
	}

	c.items = append([]transaction.Transaction{}, items...)
	c.filtered = Filter(c.items, c.searchText)
	log.Debug("transactions loaded",
		"period", period.String(),
		"count", len(c.items),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// SetSearchText narrows the visible list. No network call is made.
func (c *Controller) SetSearchText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.searchText = text
	c.filtered = Filter(c.items, text)
}

// Delete removes a transaction on the server and, once confirmed, from the
// local list. Failures are logged and notified, never returned. Reports
// whether the deletion succeeded.
func (c *Controller) Delete(ctx context.Context, id string) bool {
	c.mu.Lock()
	c.deleting[id] = struct{}{}
	c.lastDelete = id
	c.mu.Unlock()

	err := c.service.DeleteTransaction(ctx, id)

	c.mu.Lock()
	delete(c.deleting, id)
	if c.lastDelete == id {
		c.lastDelete = ""
	}
	if err == nil {
		c.items = without(c.items, id)
		c.filtered = without(c.filtered, id)
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.WithContext(ctx).Error("failed to delete transaction", "transaction_id", id, "error", err)
		c.notifier.Error(ctx, DeleteErrorMessage)
		return false
	}

	c.logger.WithContext(ctx).Info("transaction deleted", "transaction_id", id)
	c.notifier.Success(ctx, DeleteSuccessMessage)
	return true
}

// Period returns the period currently in scope
func (c *Controller) Period() transaction.Period {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.period
}

// State returns a snapshot of the list state
func (c *Controller) State() ListState {
	c.mu.Lock()
	defer c.mu.Unlock()

	deleting := make([]string, 0, len(c.deleting))
	for id := range c.deleting {
		deleting = append(deleting, id)
	}
	sort.Strings(deleting)

	return ListState{
		Period:        c.period,
		Items:         append([]transaction.Transaction{}, c.items...),
		FilteredItems: append([]transaction.Transaction{}, c.filtered...),
		Loading:       c.loading,
		Error:         c.errMsg,
		DeletingID:    c.lastDelete,
		DeletingIDs:   deleting,
		SearchText:    c.searchText,
	}
}
