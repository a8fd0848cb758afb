package financeapi

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/kislikjeka/finpanel/internal/platform/identity"
)

// RequestHook mutates a draft request before it is sent. Hooks run in
// registration order. A hook that fails or panics is logged and skipped;
// it never blocks later hooks or the request itself.
type RequestHook interface {
	Name() string
	BeforeRequest(req *http.Request) error
}

// HookFunc adapts a function to RequestHook
type HookFunc struct {
	HookName string
	Fn       func(req *http.Request) error
}

// Name implements RequestHook
func (h HookFunc) Name() string { return h.HookName }

// BeforeRequest implements RequestHook
func (h HookFunc) BeforeRequest(req *http.Request) error { return h.Fn(req) }

func (c *Client) runHooks(req *http.Request) {
	for _, hook := range c.hooks {
		if err := c.runHook(hook, req); err != nil {
			c.logger.WithContext(req.Context()).Error("request hook failed, continuing",
				"hook", hook.Name(),
				"method", req.Method,
				"url", req.URL.String(),
				"error", err,
			)
		}
	}
}

func (c *Client) runHook(hook RequestHook, req *http.Request) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v\n%s", rec, debug.Stack())
		}
	}()
	return hook.BeforeRequest(req)
}

// bearerTokenHook attaches the current principal's token
type bearerTokenHook struct {
	provider identity.Provider
}

// BearerToken returns a hook that sets "Authorization: Bearer <token>" when
// the provider reports a signed-in principal. Without a principal the request
// goes out unauthenticated. If the token cannot be obtained the error is
// returned to the pipeline (which logs it) and no header is set.
func BearerToken(provider identity.Provider) RequestHook {
	return bearerTokenHook{provider: provider}
}

func (h bearerTokenHook) Name() string { return "bearer_token" }

func (h bearerTokenHook) BeforeRequest(req *http.Request) error {
	principal, ok := h.provider.CurrentPrincipal(req.Context())
	if !ok {
		return nil
	}

	token, err := principal.Token(req.Context())
	if err != nil {
		return fmt.Errorf("failed to get token for %s: %w", principal.Subject(), err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}
