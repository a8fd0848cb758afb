package financeapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"

	"golang.org/x/net/publicsuffix"
)

type cookieJarKey struct{}

// NewCookieJar creates the jar that holds one browser session's API cookies
func NewCookieJar() (http.CookieJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return jar, nil
}

// WithCookieJar attaches the jar requests made with ctx send and store
// cookies through. Without one no cookies are forwarded.
func WithCookieJar(ctx context.Context, jar http.CookieJar) context.Context {
	if jar == nil {
		return ctx
	}
	return context.WithValue(ctx, cookieJarKey{}, jar)
}

// CookieJarFromContext returns the jar set by WithCookieJar
func CookieJarFromContext(ctx context.Context) (http.CookieJar, bool) {
	jar, ok := ctx.Value(cookieJarKey{}).(http.CookieJar)
	return jar, ok && jar != nil
}
