package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kislikjeka/finpanel/internal/infra/gateway/financeapi"
	"github.com/kislikjeka/finpanel/internal/module/transactions"
	"github.com/kislikjeka/finpanel/internal/platform/flash"
	"github.com/kislikjeka/finpanel/internal/platform/identity"
	"github.com/kislikjeka/finpanel/pkg/logger"
)

// SessionCookieName is the cookie carrying the browser session id
const SessionCookieName = "finpanel_session"

// ControllerFactory builds the list controller of a newly signed-in session
type ControllerFactory func() *transactions.Controller

// Session is the server-side state of one signed-in browser. It owns the
// principal, that user's transactions controller and the jar holding the
// finance API cookies. The id never changes; signing in again starts a new
// session.
type Session struct {
	id  string
	jar http.CookieJar

	mu         sync.Mutex
	principal  identity.Principal
	email      string
	controller *transactions.Controller
	loaded     bool
	lastSeen   time.Time
}

// ID returns the session id, which is also its flash key
func (s *Session) ID() string {
	return s.id
}

// SignOut drops the principal and its controller. Requests still holding
// the session see it signed out.
func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principal = nil
	s.email = ""
	s.controller = nil
	s.loaded = false
}

// Principal returns the signed-in principal, if any
func (s *Session) Principal() (identity.Principal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.principal, s.principal != nil
}

// Email returns the signed-in email or ""
func (s *Session) Email() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.email
}

// Controller returns the session's controller, nil when signed out
func (s *Session) Controller() *transactions.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller
}

// MarkLoaded records that the first fetch happened and reports whether it
// had already been recorded
func (s *Session) MarkLoaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	was := s.loaded
	s.loaded = true
	return was
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SessionOptions configures a SessionStore
type SessionOptions struct {
	IdleTimeout  time.Duration
	SecureCookie bool
}

// SessionStore keeps signed-in sessions in memory and expires idle ones.
// Anonymous requests are never stored.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	factory  ControllerFactory
	opts     SessionOptions
	logger   *logger.Logger
	now      func() time.Time
}

// NewSessionStore creates a session store. factory builds a controller on
// every sign-in.
func NewSessionStore(factory ControllerFactory, opts SessionOptions, log *logger.Logger) *SessionStore {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 30 * time.Minute
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		factory:  factory,
		opts:     opts,
		logger:   log.WithField("component", "sessions"),
		now:      time.Now,
	}
}

func (st *SessionStore) lookup(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	if st.now().Sub(sess.idleSince()) > st.opts.IdleTimeout {
		delete(st.sessions, id)
		return nil, false
	}
	return sess, true
}

func (st *SessionStore) open(p identity.Principal, email string) (*Session, error) {
	jar, err := financeapi.NewCookieJar()
	if err != nil {
		return nil, err
	}

	sess := &Session{
		id:         uuid.NewString(),
		jar:        jar,
		principal:  p,
		email:      email,
		controller: st.factory(),
		lastSeen:   st.now(),
	}

	st.mu.Lock()
	st.sessions[sess.id] = sess
	st.mu.Unlock()

	return sess, nil
}

func (st *SessionStore) forget(sess *Session) {
	st.mu.Lock()
	delete(st.sessions, sess.id)
	st.mu.Unlock()
}

func (st *SessionStore) setCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   st.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// Start signs p in under a fresh session id and issues its cookie. A
// session already attached to ctx is signed out and forgotten, so a
// previous id cannot be reused.
func (st *SessionStore) Start(ctx context.Context, w http.ResponseWriter, p identity.Principal, email string) (*Session, error) {
	if prev, ok := SessionFromContext(ctx); ok {
		prev.SignOut()
		st.forget(prev)
	}

	sess, err := st.open(p, email)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	st.setCookie(w, sess.id)
	return sess, nil
}

// Destroy signs sess out, forgets it and expires its cookie
func (st *SessionStore) Destroy(w http.ResponseWriter, sess *Session) {
	sess.SignOut()
	st.forget(sess)

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   st.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// Len returns the number of live sessions
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep removes sessions idle past the timeout
func (st *SessionStore) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	removed := 0
	for id, sess := range st.sessions {
		if now.Sub(sess.idleSince()) > st.opts.IdleTimeout {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps idle sessions until ctx is done
func (st *SessionStore) Run(ctx context.Context) error {
	interval := st.opts.IdleTimeout / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := st.Sweep(); n > 0 {
				st.logger.Debug("expired idle sessions", "count", n, "remaining", st.Len())
			}
		}
	}
}

// Middleware resolves the session cookie. A known session goes into the
// request context with its principal, flash key and API cookie jar;
// requests without one pass through anonymous.
func (st *SessionStore) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(SessionCookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		sess, ok := st.lookup(c.Value)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		sess.touch(st.now())

		ctx := WithSession(r.Context(), sess)
		ctx = context.WithValue(ctx, logger.SessionIDKey, sess.id)
		ctx = flash.WithKey(ctx, sess.id)
		ctx = financeapi.WithCookieJar(ctx, sess.jar)
		if p, ok := sess.Principal(); ok {
			ctx = identity.WithPrincipal(ctx, p)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type sessionKey struct{}

// WithSession attaches sess to ctx
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// SessionFromContext returns the session set by the middleware
func SessionFromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(*Session)
	return sess, ok && sess != nil
}

// RequireSignIn redirects signed-out browsers to loginPath
func RequireSignIn(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !signedIn(r) {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSignInJSON answers 401 with a JSON error for signed-out callers
func RequireSignInJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !signedIn(r) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"sign in required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func signedIn(r *http.Request) bool {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		return false
	}
	_, ok = sess.Principal()
	return ok && sess.Controller() != nil
}
