// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/pskhi/smartstudent/internal/domain"
)

// ErrUsernameTaken is returned by CreateUser when the username is already
// registered (case-insensitively).
var ErrUsernameTaken = errors.New("username already taken")

// Repository defines the interface for persisting users, chat state, and
// escalation records.
type Repository interface {
	// GetUser retrieves a user by ID. Returns (nil, nil) if absent.
	GetUser(ctx context.Context, userID string) (*domain.User, error)

	// GetUserByUsername retrieves a user by username, case-insensitively.
	// Returns (nil, nil) if absent.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// CreateUser inserts a new user. Returns ErrUsernameTaken if the
	// username is already in use.
	CreateUser(ctx context.Context, user *domain.User) error

	// UpdateUser updates mutable profile fields (avatar, school, class).
	UpdateUser(ctx context.Context, user *domain.User) error

	// CreateAuthSession stores a login session token for a user.
	CreateAuthSession(ctx context.Context, token, userID string, expiresAt time.Time) error

	// GetAuthSession resolves a token to a user ID. Returns "" if the token
	// is unknown or expired.
	GetAuthSession(ctx context.Context, token string) (string, error)

	// DeleteAuthSession removes a login session token.
	DeleteAuthSession(ctx context.Context, token string) error

	// GetChatState loads a user's per-persona chat history. Missing or
	// malformed rows degrade to an empty ChatState, never an error the
	// caller must render.
	GetChatState(ctx context.Context, userID string) (domain.ChatState, error)

	// SaveChatState persists a user's full chat history.
	SaveChatState(ctx context.Context, userID string, state domain.ChatState) error

	// AppendAlert stores an escalation record, trimming the feed to the
	// configured retention bound.
	AppendAlert(ctx context.Context, alert *domain.StudentAlert) error

	// ListAlerts returns up to limit escalation records, newest first.
	ListAlerts(ctx context.Context, limit int) ([]*domain.StudentAlert, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
