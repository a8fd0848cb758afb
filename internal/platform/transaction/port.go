package transaction

import (
	"context"
	"net/url"
)

// APIClient is the subset of the finance API client the service needs
type APIClient interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Delete(ctx context.Context, path string) error
}
