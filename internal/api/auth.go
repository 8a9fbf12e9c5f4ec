package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pskhi/smartstudent/internal/domain"
	"github.com/pskhi/smartstudent/internal/identity"
	"github.com/pskhi/smartstudent/internal/store"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func defaultAvatar(username string) string {
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + username
}

// HandleRegister creates an account and logs it in.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		Error(w, http.StatusBadRequest, "username and password are required")
		return
	}

	role := domain.UserRole(req.Role)
	if req.Role == "" {
		role = domain.RoleStudent
	}
	if !role.IsValid() {
		Error(w, http.StatusBadRequest, "role must be student or teacher")
		return
	}

	now := time.Now()
	user := &domain.User{
		ID:        uuid.NewString(),
		Username:  username,
		Password:  req.Password,
		Role:      role,
		Avatar:    defaultAvatar(username),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.repo.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			Error(w, http.StatusConflict, "username already taken")
			return
		}
		slog.Error("Failed to create user", "error", err)
		Error(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	if err := identity.IssueSession(r.Context(), w, h.repo, user.ID, h.isDev); err != nil {
		slog.Error("Failed to issue session", "user_id", user.ID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	slog.Info("User registered", "user_id", user.ID, "role", user.Role)
	JSON(w, http.StatusCreated, user)
}

// HandleLogin authenticates by username (case-insensitive) and password.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.repo.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		slog.Error("Failed to look up user", "error", err)
		Error(w, http.StatusInternalServerError, "failed to log in")
		return
	}
	if user == nil || user.Password != req.Password {
		Error(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	if err := identity.IssueSession(r.Context(), w, h.repo, user.ID, h.isDev); err != nil {
		slog.Error("Failed to issue session", "user_id", user.ID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	JSON(w, http.StatusOK, user)
}

// HandleLogout ends the session and evicts the chat controller.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	user := identity.UserFromContext(r.Context())
	identity.ClearSession(r.Context(), w, r, h.repo)
	if user != nil {
		h.chats.Remove(user.ID)
	}
	JSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// HandleMe returns the authenticated user.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, identity.UserFromContext(r.Context()))
}

type profileRequest struct {
	Avatar string `json:"avatar"`
	School string `json:"school"`
	Class  string `json:"class"`
}

// HandleUpdateProfile updates avatar, school, and class.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := identity.UserFromContext(r.Context())

	var req profileRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}
	user.School = strings.TrimSpace(req.School)
	user.Class = strings.TrimSpace(req.Class)

	if err := h.repo.UpdateUser(r.Context(), user); err != nil {
		slog.Error("Failed to update profile", "user_id", user.ID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	JSON(w, http.StatusOK, user)
}
