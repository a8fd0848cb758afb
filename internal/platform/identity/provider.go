// Package identity supplies bearer tokens for outgoing finance API requests.
//
// A Provider reports the currently authenticated Principal, if any, and the
// Principal mints a fresh short-lived token on every call. Tokens are never
// cached here.
package identity

import "context"

// Principal is an authenticated identity able to produce bearer tokens
type Principal interface {
	// Subject identifies the principal (the user ID)
	Subject() string
	// Token returns a fresh bearer token
	Token(ctx context.Context) (string, error)
}

// Provider reports the currently authenticated principal
type Provider interface {
	CurrentPrincipal(ctx context.Context) (Principal, bool)
}

type principalKey struct{}

// WithPrincipal returns a context carrying p as the current principal
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	if p == nil {
		return ctx
	}
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext extracts the principal stored by WithPrincipal
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok && p != nil
}

// ContextProvider reads the current principal from the request context.
// The web session middleware puts it there.
type ContextProvider struct{}

// CurrentPrincipal implements Provider
func (ContextProvider) CurrentPrincipal(ctx context.Context) (Principal, bool) {
	return PrincipalFromContext(ctx)
}

// StaticProvider always reports the same principal; a nil principal means
// nobody is signed in.
type StaticProvider struct {
	Principal Principal
}

// CurrentPrincipal implements Provider
func (s StaticProvider) CurrentPrincipal(context.Context) (Principal, bool) {
	return s.Principal, s.Principal != nil
}

// PrincipalFunc adapts a function to Principal, mostly for tests and tools
type PrincipalFunc struct {
	ID      string
	TokenFn func(ctx context.Context) (string, error)
}

// Subject implements Principal
func (p PrincipalFunc) Subject() string { return p.ID }

// Token implements Principal
func (p PrincipalFunc) Token(ctx context.Context) (string, error) { return p.TokenFn(ctx) }
