package transactions

import (
	"strings"

	"github.com/kislikjeka/finpanel/internal/platform/transaction"
)

// Filter keeps the transactions whose description contains text,
// comparing upper-cased strings. Order is preserved. An empty text keeps
// every item. The result never aliases items.
func Filter(items []transaction.Transaction, text string) []transaction.Transaction {
	out := make([]transaction.Transaction, 0, len(items))
	if text == "" {
		return append(out, items...)
	}

	needle := strings.ToUpper(text)
	for _, item := range items {
		if strings.Contains(strings.ToUpper(item.Description), needle) {
			out = append(out, item)
		}
	}
	return out
}

// without returns items minus the transaction with the given id
func without(items []transaction.Transaction, id string) []transaction.Transaction {
	out := make([]transaction.Transaction, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out
}
