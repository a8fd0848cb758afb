package transactions

import (
	"github.com/kislikjeka/finpanel/internal/platform/transaction"
)

// View is what the list page should render for a given state
type View string

const (
	ViewLoading View = "loading"
	ViewError   View = "error"
	ViewEmpty   View = "empty"
	ViewList    View = "list"
)

// ListState is a snapshot of the controller state. Slices are copies.
type ListState struct {
	Period        transaction.Period        `json:"period"`
	Items         []transaction.Transaction `json:"items"`
	FilteredItems []transaction.Transaction `json:"filtered_items"`
	Loading       bool                      `json:"loading"`
	Error         string                    `json:"error,omitempty"`
	// DeletingID is the most recently started deletion still in flight
	DeletingID string `json:"deleting_id,omitempty"`
	// DeletingIDs holds every deletion in flight, sorted
	DeletingIDs []string `json:"deleting_ids"`
	SearchText  string   `json:"search_text"`
}

// View classifies the state. An empty list without an error is its own
// state, distinct from the error state.
func (s ListState) View() View {
	switch {
	case s.Loading:
		return ViewLoading
	case s.Error != "":
		return ViewError
	case len(s.Items) == 0:
		return ViewEmpty
	default:
		return ViewList
	}
}

// IsDeleting reports whether a deletion of id is in flight
func (s ListState) IsDeleting(id string) bool {
	for _, d := range s.DeletingIDs {
		if d == id {
			return true
		}
	}
	return false
}
