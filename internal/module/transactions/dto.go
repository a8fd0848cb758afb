package transactions

import (
	"github.com/shopspring/decimal"

	"github.com/kislikjeka/finpanel/internal/platform/transaction"
	"github.com/kislikjeka/finpanel/pkg/money"
)

// TransactionRow is a transaction prepared for display
type TransactionRow struct {
	ID            string `json:"id"`
	Description   string `json:"description"`
	Type          string `json:"type"`
	Direction     string `json:"direction"` // "in" or "out"
	Amount        string `json:"amount"`
	DisplayAmount string `json:"display_amount"` // "R$ 1.200,00"
	Date          string `json:"date"`           // "2024-05-01"
	DisplayDate   string `json:"display_date"`   // "01/05/2024"
	CategoryName  string `json:"category_name"`
	CategoryColor string `json:"category_color"`
	Deleting      bool   `json:"deleting"`
}

// StateResponse is the JSON shape of a ListState
type StateResponse struct {
	Year        int              `json:"year"`
	Month       int              `json:"month"`
	View        View             `json:"view"`
	Loading     bool             `json:"loading"`
	Error       string           `json:"error,omitempty"`
	SearchText  string           `json:"search_text"`
	Total       int              `json:"total"`
	DeletingID  string           `json:"deleting_id,omitempty"`
	DeletingIDs []string         `json:"deleting_ids"`
	Rows        []TransactionRow `json:"rows"`
}

// NewRow converts a transaction for display
func NewRow(tx transaction.Transaction, deleting bool) TransactionRow {
	direction := "out"
	if tx.IsIncome() {
		direction = "in"
	}

	date := ""
	if !tx.Date.IsZero() {
		date = tx.Date.Format("2006-01-02")
	}

	return TransactionRow{
		ID:            tx.ID,
		Description:   tx.Description,
		Type:          string(tx.Type),
		Direction:     direction,
		Amount:        tx.Amount.String(),
		DisplayAmount: money.Format(tx.Amount),
		Date:          date,
		DisplayDate:   money.FormatDate(tx.Date.Time),
		CategoryName:  tx.Category.Name,
		CategoryColor: tx.Category.Color,
		Deleting:      deleting,
	}
}

// Rows converts the filtered items of a state for display
func (s ListState) Rows() []TransactionRow {
	rows := make([]TransactionRow, 0, len(s.FilteredItems))
	for _, tx := range s.FilteredItems {
		rows = append(rows, NewRow(tx, s.IsDeleting(tx.ID)))
	}
	return rows
}

// Response converts a state to its JSON shape
func (s ListState) Response() StateResponse {
	return StateResponse{
		Year:        s.Period.Year,
		Month:       s.Period.Month,
		View:        s.View(),
		Loading:     s.Loading,
		Error:       s.Error,
		SearchText:  s.SearchText,
		Total:       len(s.Items),
		DeletingID:  s.DeletingID,
		DeletingIDs: s.DeletingIDs,
		Rows:        s.Rows(),
	}
}

// Totals sums income and expense amounts of items, formatted for display
func Totals(items []transaction.Transaction) (income, expense string) {
	in, out := decimal.Zero, decimal.Zero
	for _, tx := range items {
		if tx.IsIncome() {
			in = in.Add(tx.Amount)
		} else {
			out = out.Add(tx.Amount)
		}
	}
	return money.Format(in), money.Format(out)
}
