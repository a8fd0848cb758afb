package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/kislikjeka/finpanel/internal/platform/identity"
	"github.com/kislikjeka/finpanel/internal/platform/user"
	"github.com/kislikjeka/finpanel/internal/transport/web/middleware"
	"github.com/kislikjeka/finpanel/pkg/logger"
)

// UserServiceInterface defines the user operations needed by AuthHandler
type UserServiceInterface interface {
	Login(ctx context.Context, email, password string) (*user.User, error)
}

// AuthHandler handles sign-in and sign-out
type AuthHandler struct {
	userService UserServiceInterface
	issuer      *identity.TokenIssuer
	sessions    *middleware.SessionStore
	render      *Renderer
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userService UserServiceInterface, issuer *identity.TokenIssuer, sessions *middleware.SessionStore, render *Renderer, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		issuer:      issuer,
		sessions:    sessions,
		render:      render,
		logger:      log.WithField("component", "auth"),
	}
}

// LoginPage is the data of login.html
type LoginPage struct {
	Title string
	Email string
	Error string
}

// GetLogin handles GET /login
func (h *AuthHandler) GetLogin(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.SessionFromContext(r.Context()); ok {
		if _, signedIn := sess.Principal(); signedIn {
			redirect(w, r, "/transactions")
			return
		}
	}

	h.render.Render(w, r, http.StatusOK, "login.html", LoginPage{Title: "Sign in"})
}

// PostLogin handles POST /login
func (h *AuthHandler) PostLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render.Render(w, r, http.StatusBadRequest, "login.html", LoginPage{Title: "Sign in", Error: "Invalid form submission."})
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	page := LoginPage{Title: "Sign in", Email: email}

	if email == "" || password == "" {
		page.Error = "Email and password are required."
		h.render.Render(w, r, http.StatusBadRequest, "login.html", page)
		return
	}

	u, err := h.userService.Login(r.Context(), email, password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrInvalidPassword), errors.Is(err, user.ErrInvalidEmail):
			h.logger.WithContext(r.Context()).Info("sign-in rejected", "email", email)
			page.Error = "Invalid email or password."
			h.render.Render(w, r, http.StatusUnauthorized, "login.html", page)
		default:
			h.logger.WithContext(r.Context()).WithError(err).Error("sign-in failed", "email", email)
			page.Error = "Sign-in is unavailable right now. Please try again later."
			h.render.Render(w, r, http.StatusInternalServerError, "login.html", page)
		}
		return
	}

	sess, err := h.sessions.Start(r.Context(), w, identity.NewSessionPrincipal(h.issuer, u.ID, u.Email), u.Email)
	if err != nil {
		h.logger.WithContext(r.Context()).WithError(err).Error("failed to start session", "user_id", u.ID)
		page.Error = "Sign-in is unavailable right now. Please try again later."
		h.render.Render(w, r, http.StatusInternalServerError, "login.html", page)
		return
	}
	h.logger.WithContext(r.Context()).Info("user signed in", "user_id", u.ID, "session_id", sess.ID())

	redirect(w, r, "/transactions")
}

// PostLogout handles POST /logout
func (h *AuthHandler) PostLogout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.SessionFromContext(r.Context()); ok {
		h.sessions.Destroy(w, sess)
	}
	redirect(w, r, "/login")
}
