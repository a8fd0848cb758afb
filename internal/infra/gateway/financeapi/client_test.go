package financeapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/finpanel/internal/infra/gateway/financeapi"
	"github.com/kislikjeka/finpanel/internal/platform/identity"
	"github.com/kislikjeka/finpanel/pkg/logger"
)

func newTestClient(t *testing.T, serverURL string, hooks ...financeapi.RequestHook) *financeapi.Client {
	t.Helper()
	client, err := financeapi.NewClient(financeapi.Config{RootURL: serverURL + "/"}, logger.Discard(), hooks...)
	require.NoError(t, err)
	return client
}

func tokenPrincipal(token string, err error) identity.Principal {
	return identity.PrincipalFunc{
		ID: "user-1",
		TokenFn: func(context.Context) (string, error) {
			return token, err
		},
	}
}

// =============================================================================
// Base URL and defaults
// =============================================================================

func TestBaseURL(t *testing.T) {
	assert.Equal(t, "https://api.example.com/api", financeapi.BaseURL("https://api.example.com/"))
	assert.Equal(t, "https://api.example.com/api", financeapi.BaseURL("https://api.example.com"))
	assert.Equal(t, "https://api.example.com//api", financeapi.BaseURL("https://api.example.com//"), "only one trailing slash is trimmed")
}

func TestNewClient_Defaults(t *testing.T) {
	client, err := financeapi.NewClient(financeapi.Config{RootURL: "http://localhost:3333/"}, logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3333/api", client.BaseURL())
	assert.Equal(t, 10*time.Second, client.Timeout())
}

func TestNewClient_RequiresRootURL(t *testing.T) {
	_, err := financeapi.NewClient(financeapi.Config{}, logger.Discard())
	assert.Error(t, err)
}

// =============================================================================
// Bearer token hook
// =============================================================================

func TestClient_BearerToken_WithPrincipal(t *testing.T) {
	var receivedAuth []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = append(receivedAuth, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	provider := identity.StaticProvider{Principal: tokenPrincipal("T", nil)}
	client := newTestClient(t, server.URL, financeapi.BearerToken(provider))

	require.NoError(t, client.Get(context.Background(), "/transactions", nil, nil))
	require.NoError(t, client.Delete(context.Background(), "/transactions/1"))

	assert.Equal(t, []string{"Bearer T", "Bearer T"}, receivedAuth)
}

func TestClient_BearerToken_NoPrincipal(t *testing.T) {
	var hasAuth atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.Header["Authorization"]
		hasAuth.Store(present)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, financeapi.BearerToken(identity.StaticProvider{}))

	require.NoError(t, client.Get(context.Background(), "/transactions", nil, nil))
	assert.False(t, hasAuth.Load())
}

func TestClient_BearerToken_FromContext(t *testing.T) {
	var receivedAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, financeapi.BearerToken(identity.ContextProvider{}))

	ctx := identity.WithPrincipal(context.Background(), tokenPrincipal("ctx-token", nil))
	require.NoError(t, client.Get(ctx, "/transactions", nil, nil))
	assert.Equal(t, "Bearer ctx-token", receivedAuth)
}

func TestClient_BearerToken_FailureFailsOpen(t *testing.T) {
	var calls int32
	var hasAuth atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, present := r.Header["Authorization"]
		hasAuth.Store(present)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	provider := identity.StaticProvider{Principal: tokenPrincipal("", errors.New("identity provider down"))}
	client := newTestClient(t, server.URL, financeapi.BearerToken(provider))

	require.NoError(t, client.Get(context.Background(), "/transactions", nil, nil))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "request is sent once, not blocked or retried")
	assert.False(t, hasAuth.Load())
}

// =============================================================================
// Hook pipeline
// =============================================================================

func TestClient_HooksRunInOrderAndIsolateFailures(t *testing.T) {
	var received http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	var order []string
	record := func(name string, fn func(*http.Request) error) financeapi.RequestHook {
		return financeapi.HookFunc{HookName: name, Fn: func(r *http.Request) error {
			order = append(order, name)
			return fn(r)
		}}
	}

	client := newTestClient(t, server.URL,
		record("first", func(r *http.Request) error {
			r.Header.Set("X-First", "1")
			return nil
		}),
		record("failing", func(*http.Request) error { return errors.New("boom") }),
		record("panicking", func(*http.Request) error { panic("oops") }),
	)
	client.Use(record("last", func(r *http.Request) error {
		r.Header.Set("X-Last", "1")
		return nil
	}))

	require.NoError(t, client.Get(context.Background(), "/ping", nil, nil))

	assert.Equal(t, []string{"first", "failing", "panicking", "last"}, order)
	assert.Equal(t, "1", received.Get("X-First"))
	assert.Equal(t, "1", received.Get("X-Last"))
	assert.Equal(t, "application/json", received.Get("Accept"))
}

// =============================================================================
// Requests and responses
// =============================================================================

func TestClient_GetDecodesJSONAndSendsQuery(t *testing.T) {
	var receivedPath, receivedQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedPath = r.URL.Path
		receivedQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	var out map[string]string
	err := client.Get(context.Background(), "transactions", url.Values{"year": {"2024"}, "month": {"5"}}, &out)
	require.NoError(t, err)

	assert.Equal(t, "/api/transactions", receivedPath)
	assert.Equal(t, "month=5&year=2024", receivedQuery)
	assert.Equal(t, "ok", out["status"])
}

func TestClient_DoEncodesBody(t *testing.T) {
	var contentType string
	var payload map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	err := client.Do(context.Background(), http.MethodPost, "/echo", nil, map[string]string{"a": "b"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "b", payload["a"])
}

func TestClient_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	err := client.Delete(context.Background(), "/transactions/missing")
	require.Error(t, err)

	var httpErr *financeapi.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, http.MethodDelete, httpErr.Method)
	assert.Contains(t, httpErr.Body, "not found")
	assert.True(t, financeapi.IsNotFound(err))
	assert.False(t, financeapi.IsUnauthorized(err))
}

func TestClient_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	err := newTestClient(t, server.URL).Get(context.Background(), "/transactions", nil, nil)
	assert.True(t, financeapi.IsUnauthorized(err))
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := newTestClient(t, server.URL)
	server.Close()

	err := client.Get(context.Background(), "/transactions", nil, nil)
	require.Error(t, err)
	assert.Equal(t, 0, financeapi.StatusCode(err))
	assert.Contains(t, err.Error(), "failed to execute request")
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client, err := financeapi.NewClient(financeapi.Config{RootURL: server.URL, Timeout: 50 * time.Millisecond}, logger.Discard())
	require.NoError(t, err)

	err = client.Get(context.Background(), "/slow", nil, nil)
	require.Error(t, err)
}

func TestClient_ForwardsCookies(t *testing.T) {
	var secondCookie string
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.SetCookie(w, &http.Cookie{Name: "sid", Value: "abc", Path: "/"})
		} else if c, err := r.Cookie("sid"); err == nil {
			secondCookie = c.Value
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	jar, err := financeapi.NewCookieJar()
	require.NoError(t, err)
	ctx := financeapi.WithCookieJar(context.Background(), jar)

	client := newTestClient(t, server.URL)
	require.NoError(t, client.Get(ctx, "/login", nil, nil))
	require.NoError(t, client.Get(ctx, "/transactions", nil, nil))

	assert.Equal(t, "abc", secondCookie)
}

func TestClient_CookiesStayWithTheirJar(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie := ""
		if c, err := r.Cookie("api_session"); err == nil {
			cookie = c.Value
		}
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization")+"|"+cookie)
		mu.Unlock()

		if r.Header.Get("Authorization") == "Bearer alice" {
			http.SetCookie(w, &http.Cookie{Name: "api_session", Value: "alice-secret", Path: "/"})
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, financeapi.BearerToken(identity.ContextProvider{}))

	session := func(token string) context.Context {
		jar, err := financeapi.NewCookieJar()
		require.NoError(t, err)
		ctx := financeapi.WithCookieJar(context.Background(), jar)
		return identity.WithPrincipal(ctx, tokenPrincipal(token, nil))
	}
	alice := session("alice")
	bob := session("bob")

	require.NoError(t, client.Delete(alice, "/transactions/1"))
	require.NoError(t, client.Delete(bob, "/transactions/2"))
	require.NoError(t, client.Delete(alice, "/transactions/3"))
	require.NoError(t, client.Delete(context.Background(), "/transactions/4"))

	assert.Equal(t, []string{
		"Bearer alice|",
		"Bearer bob|",
		"Bearer alice|alice-secret",
		"|",
	}, seen)
}
