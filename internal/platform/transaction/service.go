package transaction

import (
	"context"
	"net/url"
	"strconv"

	"github.com/kislikjeka/finpanel/internal/infra/gateway/financeapi"
	apperrors "github.com/kislikjeka/finpanel/internal/shared/errors"
)

const resourcePath = "/transactions"

// Service issues transaction requests to the finance API. It does not retry.
type Service struct {
	client APIClient
}

// NewService creates a new transaction service
func NewService(client APIClient) *Service {
	return &Service{client: client}
}

// ListTransactions fetches every transaction in the period
func (s *Service) ListTransactions(ctx context.Context, period Period) ([]Transaction, error) {
	if err := period.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid period")
	}

	query := url.Values{}
	query.Set("year", strconv.Itoa(period.Year))
	query.Set("month", strconv.Itoa(period.Month))

	var items []Transaction
	if err := s.client.Get(ctx, resourcePath, query, &items); err != nil {
		return nil, classify(err, "failed to list transactions")
	}

	if items == nil {
		items = []Transaction{}
	}
	return items, nil
}

// DeleteTransaction deletes a transaction by id. A 2xx status is taken as
// success; nothing else is verified.
func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.Wrap(ErrEmptyID, apperrors.ErrCodeValidation, "invalid transaction id")
	}

	if err := s.client.Delete(ctx, resourcePath+"/"+url.PathEscape(id)); err != nil {
		return classify(err, "failed to delete transaction")
	}
	return nil
}

func classify(err error, message string) error {
	switch {
	case financeapi.IsUnauthorized(err):
		return apperrors.Unauthorized(message, err)
	case financeapi.IsNotFound(err):
		return apperrors.NotFound("transaction", err)
	default:
		return apperrors.Upstream(message, err)
	}
}
