package transactions

import (
	"context"

	"github.com/kislikjeka/finpanel/internal/platform/transaction"
)

// TransactionService is what the controller needs from the transaction platform
type TransactionService interface {
	ListTransactions(ctx context.Context, period transaction.Period) ([]transaction.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
}

// Notifier surfaces transient success/error messages to the user
type Notifier interface {
	Success(ctx context.Context, message string)
	Error(ctx context.Context, message string)
}
