package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"kvr/userdb/internal/models"
	"kvr/userdb/internal/repositories"
	"kvr/userdb/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UserHandler serves the public, API-key-protected user endpoints.
type UserHandler struct {
	Repo   UserRepository
	Logger *zap.Logger
}

func NewUserHandler(repo UserRepository, logger *zap.Logger) *UserHandler {
	return &UserHandler{Repo: repo, Logger: logger}
}

type createUserRequest struct {
	Username    string  `json:"username"`
	Pin         string  `json:"pin"`
	Kvrcoin     float64 `json:"kvrcoin"`
	ChessPoints float64 `json:"chess_points"`
}

// CreateUserHandler handles POST /users.
func (h *UserHandler) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "Invalid request payload.")
		return
	}
	if req.Username == "" || req.Pin == "" {
		utils.JSONError(w, http.StatusBadRequest, "'username' and 'pin' are required.")
		return
	}

	user := &models.User{
		Username:    req.Username,
		Pin:         req.Pin,
		Kvrcoin:     req.Kvrcoin,
		ChessPoints: req.ChessPoints,
	}
	if err := h.Repo.CreateUser(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			utils.JSONError(w, http.StatusConflict, "Conflict: username or pin already exists.")
			return
		}
		h.Logger.Error("failed to create user", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "Failed to create user.")
		return
	}

	utils.JSON(w, http.StatusCreated, user)
}

// GetUserByUsernameHandler handles GET /users/{username}.
func (h *UserHandler) GetUserByUsernameHandler(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := h.Repo.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			utils.JSONError(w, http.StatusNotFound, fmt.Sprintf("No user with username '%s'.", username))
			return
		}
		h.Logger.Error("failed to retrieve user", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "Failed to retrieve user.")
		return
	}

	utils.JSON(w, http.StatusOK, user)
}

// GetUserByPinHandler handles GET /users/pin/{pin}.
func (h *UserHandler) GetUserByPinHandler(w http.ResponseWriter, r *http.Request) {
	pin := chi.URLParam(r, "pin")

	user, err := h.Repo.GetUserByPin(pin)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			utils.JSONError(w, http.StatusNotFound, fmt.Sprintf("No user with pin '%s'.", pin))
			return
		}
		h.Logger.Error("failed to retrieve user", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "Failed to retrieve user.")
		return
	}

	utils.JSON(w, http.StatusOK, user)
}

// LeaderboardHandler handles GET /leaderboard/chess. An unrecognized order
// value silently falls back to descending; a non-positive or unparsable
// limit means no cap.
func (h *UserHandler) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	order := r.URL.Query().Get("order")
	if order != "asc" && order != "desc" {
		order = "desc"
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := h.Repo.Leaderboard(order, limit)
	if err != nil {
		h.Logger.Error("failed to query leaderboard", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "Failed to query leaderboard.")
		return
	}

	utils.JSON(w, http.StatusOK, entries)
}

// UpdateUserHandler handles PATCH /users/{username}. Only pin, kvrcoin and
// chess_points may change here; unknown keys are dropped, not rejected,
// unless nothing usable remains.
func (h *UserHandler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "Invalid request payload.")
		return
	}

	updates := map[string]any{}
	for field, value := range payload {
		if models.MutableFields[field] {
			updates[field] = value
		}
	}
	if len(updates) == 0 {
		utils.JSONError(w, http.StatusBadRequest, "No valid fields provided for update.")
		return
	}

	user, err := h.Repo.UpdateUser(username, updates)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserNotFound):
			utils.JSONError(w, http.StatusNotFound, fmt.Sprintf("No user with username '%s'.", username))
		case errors.Is(err, repositories.ErrDuplicate):
			utils.JSONError(w, http.StatusConflict, "Conflict: pin already exists.")
		default:
			h.Logger.Error("failed to update user", zap.Error(err))
			utils.JSONError(w, http.StatusInternalServerError, "Failed to update user.")
		}
		return
	}

	utils.JSON(w, http.StatusOK, user)
}

// DeleteUserHandler handles DELETE /users/{username}.
func (h *UserHandler) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	if err := h.Repo.DeleteUser(username); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			utils.JSONError(w, http.StatusNotFound, fmt.Sprintf("No user with username '%s'.", username))
			return
		}
		h.Logger.Error("failed to delete user", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "Failed to delete user.")
		return
	}

	utils.JSONMessage(w, http.StatusOK, fmt.Sprintf("User '%s' deleted.", username))
}
