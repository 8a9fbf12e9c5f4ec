package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pskhi/smartstudent/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db             *sql.DB
	alertRetention int
}

// NewSQLite creates a new SQLite-backed repository. alertRetention bounds
// the escalation feed to the most recent N records.
func NewSQLite(dbPath string, alertRetention int) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if alertRetention <= 0 {
		alertRetention = 50
	}

	store := &SQLiteStore{db: db, alertRetention: alertRetention}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		username_lower TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		role TEXT NOT NULL,
		avatar TEXT NOT NULL,
		school TEXT NOT NULL DEFAULT '',
		class TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS auth_sessions (
		token TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		expires_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_auth_sessions_expires ON auth_sessions(expires_at);

	CREATE TABLE IF NOT EXISTS chat_states (
		user_id TEXT PRIMARY KEY,
		state_json TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS alerts (
		id TEXT PRIMARY KEY,
		student_name TEXT NOT NULL,
		risk_level TEXT NOT NULL,
		last_message TEXT NOT NULL,
		persona TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_alerts_created ON alerts(created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const userColumns = `user_id, username, password, role, avatar, school, class, created_at, updated_at`

func scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	var createdAt, updatedAt int64

	err := row.Scan(
		&user.ID, &user.Username, &user.Password, &user.Role,
		&user.Avatar, &user.School, &user.Class, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}

	user.CreatedAt = time.Unix(createdAt, 0)
	user.UpdatedAt = time.Unix(updatedAt, 0)
	return &user, nil
}

// GetUser retrieves a user by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = ?`
	return scanUser(s.db.QueryRowContext(ctx, query, userID))
}

// GetUserByUsername retrieves a user by username, case-insensitively.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username_lower = ?`
	return scanUser(s.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(username))))
}

// CreateUser inserts a new user record.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
	INSERT INTO users (user_id, username, username_lower, password, role, avatar, school, class, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.Username, strings.ToLower(user.Username),
		user.Password, user.Role, user.Avatar, user.School, user.Class,
		user.CreatedAt.Unix(), user.UpdatedAt.Unix(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// UpdateUser updates mutable profile fields.
func (s *SQLiteStore) UpdateUser(ctx context.Context, user *domain.User) error {
	query := `UPDATE users SET avatar = ?, school = ?, class = ?, updated_at = ? WHERE user_id = ?`
	result, err := s.db.ExecContext(ctx, query,
		user.Avatar, user.School, user.Class, time.Now().Unix(), user.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

// CreateAuthSession stores a login session token.
func (s *SQLiteStore) CreateAuthSession(ctx context.Context, token, userID string, expiresAt time.Time) error {
	query := `INSERT INTO auth_sessions (token, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, token, userID, expiresAt.Unix(), time.Now().Unix()); err != nil {
		return fmt.Errorf("insert auth session: %w", err)
	}
	return nil
}

// GetAuthSession resolves a token to a user ID, ignoring expired tokens.
func (s *SQLiteStore) GetAuthSession(ctx context.Context, token string) (string, error) {
	query := `SELECT user_id FROM auth_sessions WHERE token = ? AND expires_at > ?`
	var userID string
	err := s.db.QueryRowContext(ctx, query, token, time.Now().Unix()).Scan(&userID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("scan auth session: %w", err)
	}
	return userID, nil
}

// DeleteAuthSession removes a login session token.
func (s *SQLiteStore) DeleteAuthSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete auth session: %w", err)
	}
	return nil
}

// GetChatState loads a user's chat history. A missing row or malformed JSON
// degrades to an empty ChatState so the conversation can always render.
func (s *SQLiteStore) GetChatState(ctx context.Context, userID string) (domain.ChatState, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT state_json FROM chat_states WHERE user_id = ?`, userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return domain.ChatState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan chat state: %w", err)
	}

	var state domain.ChatState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		slog.Warn("Malformed chat state, starting empty", "user_id", userID, "error", err)
		return domain.ChatState{}, nil
	}
	if state == nil {
		state = domain.ChatState{}
	}
	return state, nil
}

// SaveChatState persists a user's full chat history as one JSON document.
func (s *SQLiteStore) SaveChatState(ctx context.Context, userID string, state domain.ChatState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal chat state: %w", err)
	}

	query := `
	INSERT INTO chat_states (user_id, state_json, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		state_json = excluded.state_json,
		updated_at = excluded.updated_at`

	_, err = s.db.ExecContext(ctx, query, userID, string(raw), time.Now().Unix())
	if err != nil && isSQLiteBusy(err) {
		// One retry on lock contention; the busy_timeout pragma covers the rest.
		_, err = s.db.ExecContext(ctx, query, userID, string(raw), time.Now().Unix())
	}
	if err != nil {
		return fmt.Errorf("upsert chat state: %w", err)
	}
	return nil
}

// AppendAlert stores an escalation record and trims the feed to the
// retention bound.
func (s *SQLiteStore) AppendAlert(ctx context.Context, alert *domain.StudentAlert) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin alert tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO alerts (id, student_name, risk_level, last_message, persona, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		alert.ID, alert.StudentName, alert.RiskLevel, alert.LastMessage, alert.PersonaUsed, alert.Timestamp.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM alerts WHERE id NOT IN (
			SELECT id FROM alerts ORDER BY created_at DESC, rowid DESC LIMIT ?
		)`, s.alertRetention)
	if err != nil {
		return fmt.Errorf("trim alerts: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit alert tx: %w", err)
	}
	return nil
}

// ListAlerts returns up to limit escalation records, newest first.
func (s *SQLiteStore) ListAlerts(ctx context.Context, limit int) ([]*domain.StudentAlert, error) {
	if limit <= 0 || limit > s.alertRetention {
		limit = s.alertRetention
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, student_name, risk_level, last_message, persona, created_at
		FROM alerts ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var alerts []*domain.StudentAlert
	for rows.Next() {
		var a domain.StudentAlert
		var createdAt int64
		if err := rows.Scan(&a.ID, &a.StudentName, &a.RiskLevel, &a.LastMessage, &a.PersonaUsed, &createdAt); err != nil {
			return nil, fmt.Errorf("scan alert row: %w", err)
		}
		a.Timestamp = time.Unix(createdAt, 0)
		alerts = append(alerts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alert rows: %w", err)
	}
	return alerts, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "SQLITE_BUSY") ||
		strings.Contains(err.Error(), "database is locked")
}
