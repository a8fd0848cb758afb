package transactions_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/finpanel/internal/module/transactions"
	"github.com/kislikjeka/finpanel/internal/platform/transaction"
)

// =============================================================================
// Mock TransactionService
// =============================================================================

type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) ListTransactions(ctx context.Context, period transaction.Period) ([]transaction.Transaction, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]transaction.Transaction), args.Error(1)
}

func (m *MockTransactionService) DeleteTransaction(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ transactions.TransactionService = (*MockTransactionService)(nil)
var _ transactions.TransactionService = (*transaction.Service)(nil)

// =============================================================================
// Recording notifier
// =============================================================================

type notification struct {
	Level   string
	Message string
}

type recordingNotifier struct {
	mu    sync.Mutex
	items []notification
}

func (n *recordingNotifier) Success(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, notification{Level: "success", Message: message})
}

func (n *recordingNotifier) Error(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, notification{Level: "error", Message: message})
}

func (n *recordingNotifier) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.items...)
}

// =============================================================================
// Gated service: every call blocks until the test releases it
// =============================================================================

type listResult struct {
	items []transaction.Transaction
	err   error
}

type gatedService struct {
	mu      sync.Mutex
	lists   map[transaction.Period]chan listResult
	deletes map[string]chan error
	started chan string
}

func newGatedService() *gatedService {
	return &gatedService{
		lists:   make(map[transaction.Period]chan listResult),
		deletes: make(map[string]chan error),
		started: make(chan string, 16),
	}
}

func (g *gatedService) listGate(p transaction.Period) chan listResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.lists[p]; !ok {
		g.lists[p] = make(chan listResult, 1)
	}
	return g.lists[p]
}

func (g *gatedService) deleteGate(id string) chan error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.deletes[id]; !ok {
		g.deletes[id] = make(chan error, 1)
	}
	return g.deletes[id]
}

func (g *gatedService) ListTransactions(ctx context.Context, period transaction.Period) ([]transaction.Transaction, error) {
	gate := g.listGate(period)
	g.started <- "list:" + period.String()
	res := <-gate
	return res.items, res.err
}

func (g *gatedService) DeleteTransaction(ctx context.Context, id string) error {
	gate := g.deleteGate(id)
	g.started <- "delete:" + id
	return <-gate
}

func (g *gatedService) releaseList(p transaction.Period, items []transaction.Transaction, err error) {
	g.listGate(p) <- listResult{items: items, err: err}
}

func (g *gatedService) releaseDelete(id string, err error) {
	g.deleteGate(id) <- err
}

func waitStarted(t *testing.T, g *gatedService, want string) {
	t.Helper()
	select {
	case got := <-g.started:
		require.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", want)
	}
}

// =============================================================================
// Fixtures
// =============================================================================

var (
	may2024  = transaction.Period{Year: 2024, Month: 5}
	june2024 = transaction.Period{Year: 2024, Month: 6}
)

func tx(id, description string, amount int64, typ transaction.Type) transaction.Transaction {
	return transaction.Transaction{
		ID:          id,
		Description: description,
		Amount:      decimal.NewFromInt(amount),
		Date:        transaction.NewDate(2024, time.May, 1),
		Type:        typ,
		Category:    transaction.Category{Name: "General", Color: "#888888"},
	}
}

func ids(items []transaction.Transaction) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}
