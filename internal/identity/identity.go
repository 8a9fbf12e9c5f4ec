// Package identity provides cookie-based login session primitives.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/pskhi/smartstudent/internal/domain"
	"github.com/pskhi/smartstudent/internal/store"
)

const (
	// SessionCookieName carries the login session token.
	SessionCookieName = "spss_session"
	sessionTTL        = 30 * 24 * time.Hour
)

type contextKey int

const userKey contextKey = iota

// UserFromContext extracts the authenticated user from the request context.
// Returns nil outside the auth middleware.
func UserFromContext(ctx context.Context) *domain.User {
	if u, ok := ctx.Value(userKey).(*domain.User); ok {
		return u
	}
	return nil
}

// WithUser returns a context carrying the authenticated user. Exposed for
// handler tests.
func WithUser(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func generateToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// IssueSession creates a login session for the user and sets the cookie.
func IssueSession(ctx context.Context, w http.ResponseWriter, repo store.Repository, userID string, isDev bool) error {
	token, err := generateToken()
	if err != nil {
		return err
	}

	if err := repo.CreateAuthSession(ctx, token, userID, time.Now().Add(sessionTTL)); err != nil {
		return fmt.Errorf("store session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		Expires:  time.Now().Add(sessionTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !isDev,
	})
	return nil
}

// ClearSession deletes the login session and expires the cookie.
func ClearSession(ctx context.Context, w http.ResponseWriter, r *http.Request, repo store.Repository) {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		_ = repo.DeleteAuthSession(ctx, c.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Middleware resolves the session cookie to a user and injects it into the
// request context. Requests without a valid session get 401.
func Middleware(repo store.Repository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(SessionCookieName)
			if err != nil || c.Value == "" {
				unauthorized(w)
				return
			}

			userID, err := repo.GetAuthSession(r.Context(), c.Value)
			if err != nil {
				http.Error(w, `{"error":"failed to resolve session"}`, http.StatusInternalServerError)
				return
			}
			if userID == "" {
				unauthorized(w)
				return
			}

			user, err := repo.GetUser(r.Context(), userID)
			if err != nil {
				http.Error(w, `{"error":"failed to load user"}`, http.StatusInternalServerError)
				return
			}
			if user == nil {
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"not authenticated"}`))
}
